// Package mux provides an abstraction over the terminal multiplexer backend.
//
// This package is pure transport: it runs backend commands and returns what
// the backend printed. Deciding which sessions are visible, and which ones are
// zombies, belongs to the resolver.
package mux

import (
	"context"
	"fmt"

	"github.com/timvw/byobu-select/internal/model"
)

// Multiplexer abstracts the backend operations the session resolver needs.
type Multiplexer interface {
	// Name returns the backend name (e.g., "tmux").
	Name() string

	// Binary returns the executable used to talk to the backend.
	Binary() string

	// ListSessions returns every session known to the backend, in listing order.
	// A backend with no running server returns an empty list and no error.
	ListSessions(ctx context.Context) ([]model.Session, error)

	// SetEnvironment sets key=value in the session's environment.
	SetEnvironment(ctx context.Context, session, key, value string) error

	// KillSession destroys the named session.
	KillSession(ctx context.Context, session string) error
}

// BackendError is returned when a backend command exits unsuccessfully.
type BackendError struct {
	Command string // backend subcommand, e.g. "list-sessions"
	Stderr  string
	Err     error
}

func (e *BackendError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("tmux %s: %v: %s", e.Command, e.Err, e.Stderr)
	}
	return fmt.Sprintf("tmux %s: %v", e.Command, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }
