// Package session implements the server side session store: an opaque token,
// carried by a cookie, mapped to the authenticated user's id.
package session

import (
	"context"
	"errors"
)

// CookieName is the cookie the token travels in.
const CookieName = "recipebox_session"

var ErrNotFound = errors.New("session not found")

type Store interface {
	// Create issues a fresh opaque token for userID.
	Create(ctx context.Context, userID string) (string, error)
	// Get resolves a token to a user id, ErrNotFound for unknown or expired
	// tokens.
	Get(ctx context.Context, token string) (string, error)
	// Delete destroys the session. Deleting an unknown token reports
	// ErrNotFound.
	Delete(ctx context.Context, token string) error
	// Ping checks backing store connectivity for readiness probes.
	Ping(ctx context.Context) error
}
