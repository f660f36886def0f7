// Package store persists sessions. Sessions are small JSON documents
// keyed by user id; the Redis implementation gives them a TTL so idle
// players age out on their own.
package store

import (
	"context"
	"errors"

	"github.com/questline-rpg/engine/pkg/session"
)

// ErrNotFound is returned when no session exists for a user.
var ErrNotFound = errors.New("session not found")

// Store is the session persistence interface.
type Store interface {
	// Load returns the session for a user, or ErrNotFound.
	Load(ctx context.Context, userID string) (*session.Session, error)

	// Save writes the session, refreshing its TTL.
	Save(ctx context.Context, sess *session.Session) error

	// Delete removes a user's session. Deleting a missing session is
	// not an error.
	Delete(ctx context.Context, userID string) error

	// Ping checks backend connectivity.
	Ping(ctx context.Context) error

	Close() error
}
