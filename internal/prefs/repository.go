package prefs

import "context"

// Repository defines the interface for preference storage.
type Repository interface {
	// Get retrieves preferences by user ID.
	// Returns ErrNotFound if the user has never saved any.
	Get(ctx context.Context, userID string) (*Preferences, error)

	// Put stores preferences, replacing any existing entry for the user.
	Put(ctx context.Context, p *Preferences) error
}
