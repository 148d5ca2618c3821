package handler

import (
	"motorvault-api/internal/feed"
)

// Handler contains the cross-cutting HTTP handlers (health, readiness).
type Handler struct {
	version string
	feed    *feed.Feed
}

// New creates a new handler.
func New(version string, f *feed.Feed) *Handler {
	return &Handler{version: version, feed: f}
}
