// Package workflow manages the transient lifecycle around editing or
// deleting a single listing: a detached draft for edits, a two-step
// confirmation for deletions. At most one of either is open at a time.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"motorvault-api/internal/domain"
	"motorvault-api/internal/gateway"
)

// State is the workflow's current phase.
type State int

const (
	StateIdle State = iota
	StateEditing
	StateConfirmingDelete
)

// ErrBusy is returned when an edit or deletion is already open, or a
// confirmation for this workflow is still in flight.
var ErrBusy = errors.New("another edit or deletion is already in progress")

// Outcome reports how a confirmation ended. The workflow is closed either
// way; it never reopens on failure.
type Outcome struct {
	Message string
	Err     error
}

// Workflow drives one operator's edit/delete lifecycle.
type Workflow struct {
	gateway *gateway.Gateway

	mu         sync.Mutex
	state      State
	draftID    string
	draft      domain.CarInput
	target     *domain.Car
	confirming bool
}

// New returns an idle workflow.
func New(gw *gateway.Gateway) *Workflow {
	return &Workflow{gateway: gw}
}

// State returns the current phase.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// OpenEdit copies the record into a detached draft. Concurrent feed updates
// do not perturb the draft; only confirm or cancel ends the edit.
func (w *Workflow) OpenEdit(car domain.Car) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateIdle {
		return ErrBusy
	}
	w.state = StateEditing
	w.draftID = car.ID
	w.draft = domain.InputFromCar(car)
	return nil
}

// Draft returns the working copy, if an edit is open.
func (w *Workflow) Draft() (domain.CarInput, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateEditing {
		return domain.CarInput{}, false
	}
	return w.draft, true
}

// SetDraft replaces the working copy. Field changes touch only the draft,
// never the cached record.
func (w *Workflow) SetDraft(input domain.CarInput) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateEditing {
		return ErrBusy
	}
	w.draft = input
	return nil
}

// ConfirmEdit validates the draft and submits the update, then closes the
// workflow regardless of the result.
func (w *Workflow) ConfirmEdit(ctx context.Context) Outcome {
	w.mu.Lock()
	if w.state != StateEditing || w.confirming {
		w.mu.Unlock()
		return Outcome{Err: ErrBusy}
	}
	w.confirming = true
	id := w.draftID
	draft := w.draft
	w.mu.Unlock()

	err := w.gateway.Update(ctx, id, draft)

	w.close()
	if err != nil {
		return Outcome{Message: fmt.Sprintf("Error updating car: %v", err), Err: err}
	}
	return Outcome{Message: "Car updated successfully!"}
}

// RequestDelete opens the confirmation step. The workflow keeps a reference
// to the target, not a copy: nothing is read from it until confirm.
func (w *Workflow) RequestDelete(car domain.Car) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateIdle {
		return ErrBusy
	}
	w.state = StateConfirmingDelete
	w.target = &car
	return nil
}

// Target returns the record pending deletion, if any.
func (w *Workflow) Target() (*domain.Car, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateConfirmingDelete {
		return nil, false
	}
	return w.target, true
}

// ConfirmDelete submits the deletion and closes the workflow. There is no
// single-step delete path: every deletion goes through RequestDelete first.
func (w *Workflow) ConfirmDelete(ctx context.Context) Outcome {
	w.mu.Lock()
	if w.state != StateConfirmingDelete || w.confirming {
		w.mu.Unlock()
		return Outcome{Err: ErrBusy}
	}
	w.confirming = true
	id := w.target.ID
	w.mu.Unlock()

	err := w.gateway.Delete(ctx, id)

	w.close()
	if err != nil {
		return Outcome{Message: fmt.Sprintf("Error deleting car: %v", err), Err: err}
	}
	return Outcome{Message: "Car deleted successfully."}
}

// Cancel discards the draft or pending deletion without a store call.
func (w *Workflow) Cancel() {
	w.close()
}

func (w *Workflow) close() {
	w.mu.Lock()
	w.state = StateIdle
	w.draftID = ""
	w.draft = domain.CarInput{}
	w.target = nil
	w.confirming = false
	w.mu.Unlock()
}
