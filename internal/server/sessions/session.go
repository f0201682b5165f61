// Package sessions manages server-side login sessions referenced by an
// opaque cookie value.
package sessions

import (
	"context"
	"time"
)

// Identity is what a session remembers about the administrator.
type Identity struct {
	Email       string
	DisplayName string
}

// Session is a server-side login record. ID is the cookie value.
type Session struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store persists sessions. Get returns common.ErrorNotFound for unknown ids.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}
