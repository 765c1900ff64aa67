package session

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("session not found")

// Session is a logged-in panel user. Passwords are never stored.
type Session struct {
	ID        string
	Username  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type Store interface {
	Create(ctx context.Context, username string, ttl time.Duration) (Session, error)
	// Get returns ErrNotFound for unknown or expired sessions.
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}
