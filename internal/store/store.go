// Package store persists sessions between CLI invocations and server restarts.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dekic648/segmentator/internal/session"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrExists   = errors.New("session already exists")
)

// Store is a named collection of sessions.
type Store interface {
	// Create saves a new session and fails with ErrExists if the name is taken.
	Create(ctx context.Context, s *session.Session) error
	// Save overwrites an existing session and fails with ErrNotFound otherwise.
	Save(ctx context.Context, s *session.Session) error
	Get(ctx context.Context, name string) (*session.Session, error)
	List(ctx context.Context) ([]session.Summary, error)
	Delete(ctx context.Context, name string) error
	Close() error
}

// Open returns the backend named by kind: "file" (default) under dir, or
// "postgres" at databaseURL.
func Open(ctx context.Context, kind, dir, databaseURL string) (Store, error) {
	switch kind {
	case "", "file":
		return NewFileStore(dir)
	case "postgres":
		if databaseURL == "" {
			return nil, errors.New("postgres store requires database_url")
		}
		return NewPostgresStore(ctx, databaseURL)
	default:
		return nil, fmt.Errorf("unknown store %q (want file or postgres)", kind)
	}
}
