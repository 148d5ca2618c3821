package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors shared across the service.
var (
	// ErrNotFound means a mutation target vanished between read and write.
	ErrNotFound = errors.New("listing not found")
	// ErrUnauthorized means no authenticated principal is present, or the
	// presented credentials/token are invalid. Callers surface it without
	// detail so a failed login does not reveal which credential was wrong.
	ErrUnauthorized = errors.New("authentication required")
)

// ValidationError reports malformed or missing form fields, keyed by field
// name. Submission is blocked but the view stays usable.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "validation failed: " + strings.Join(names, ", ")
}

// StoreError wraps a transport or permission failure from the remote store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// SubscriptionError means the live query behind the feed failed to establish
// or was terminated by the store. The feed does not reconnect on its own.
type SubscriptionError struct {
	Err error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("subscription failed: %v", e.Err)
}

func (e *SubscriptionError) Unwrap() error { return e.Err }
