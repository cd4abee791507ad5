// Package repository provides data access for the active labeling session.
package repository

import (
	"context"

	"github.com/amirphl/Kushinada-Labeling/models"
)

// SessionRepository owns the single active labeling session. It is the only
// mutable state in the system; every entry point (manual start, demo load,
// session import) goes through the same Initialize path.
type SessionRepository interface {
	// Initialize replaces the entire session state.
	Initialize(ctx context.Context, session *models.Session) error

	// Current returns a deep copy of the active session, or nil when none exists.
	Current(ctx context.Context) (*models.Session, error)

	// ToggleTag removes the tag when the image already carries it, otherwise
	// appends it to the end of the image's tag list. An unknown image ID is a
	// no-op reported through the returned bool, not an error.
	ToggleTag(ctx context.Context, imageID, tag string) (*models.ImageItem, bool, error)

	// Reset clears all session state. Confirming destructive intent with the
	// user is the caller's responsibility.
	Reset(ctx context.Context) error
}
