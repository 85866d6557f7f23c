package prefs

import (
	"context"
	"errors"
	"time"
)

// Service provides preference operations.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new preference service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Get retrieves preferences for a user. Users that have never saved any get
// the defaults.
func (s *Service) Get(ctx context.Context, userID string) (*Preferences, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return DefaultPreferences(userID), nil
		}
		return nil, err
	}

	return p, nil
}

// Create stores preferences for the user named in the payload.
func (s *Service) Create(ctx context.Context, p *Preferences) (*Preferences, error) {
	if p.UserID == "" {
		return nil, ErrUserIDRequired
	}

	p.UpdatedAt = s.now()
	if err := s.repo.Put(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

// Update replaces the stored preferences for userID. The payload must name
// the same user.
func (s *Service) Update(ctx context.Context, userID string, p *Preferences) (*Preferences, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if p.UserID != userID {
		return nil, ErrUserIDMismatch
	}

	p.UpdatedAt = s.now()
	if err := s.repo.Put(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}
