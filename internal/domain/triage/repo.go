package triage

import (
	"context"
)

// Repository persists the whole roster as one document.
//
// Load always returns a usable roster. When the error is non-nil the roster
// is empty and the error describes why the stored data could not be used.
type Repository interface {
	Load(ctx context.Context) (*Roster, error)
	Save(ctx context.Context, r *Roster) error
}
