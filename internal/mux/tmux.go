package mux

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/timvw/byobu-select/internal/model"
)

// DefaultTmuxBinary is used when no explicit tmux path is configured.
const DefaultTmuxBinary = "tmux"

// Tmux implements the Multiplexer interface for tmux.
type Tmux struct {
	binary string
}

// NewTmux creates a tmux multiplexer that runs the given binary.
// An empty binary means "tmux" from PATH.
func NewTmux(binary string) *Tmux {
	if binary == "" {
		binary = DefaultTmuxBinary
	}
	return &Tmux{binary: binary}
}

// Name returns "tmux".
func (t *Tmux) Name() string {
	return model.BackendTmux
}

// Binary returns the tmux executable.
func (t *Tmux) Binary() string {
	return t.binary
}

// ListSessions runs "tmux list-sessions" with the default output format so the
// raw lines match what users see on the command line (including the
// "(group N)" and "(attached)" annotations).
func (t *Tmux) ListSessions(ctx context.Context) ([]model.Session, error) {
	out, err := t.run(ctx, "list-sessions")
	if err != nil {
		// No server running is not an error for listing purposes.
		var be *BackendError
		if errors.As(err, &be) && isNoServer(be.Stderr) {
			return nil, nil
		}
		return nil, err
	}
	return model.ParseSessions(strings.ToValidUTF8(out, "\uFFFD")), nil
}

// SetEnvironment runs "tmux setenv -t session key value".
func (t *Tmux) SetEnvironment(ctx context.Context, session, key, value string) error {
	_, err := t.run(ctx, "setenv", "-t", session, key, value)
	return err
}

// KillSession runs "tmux kill-session -t session".
func (t *Tmux) KillSession(ctx context.Context, session string) error {
	_, err := t.run(ctx, "kill-session", "-t", session)
	return err
}

// run executes a tmux command and returns its stdout.
func (t *Tmux) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, t.binary, args...)
	out, err := cmd.Output()
	if err != nil {
		be := &BackendError{Command: args[0], Err: err}
		if exitErr, ok := err.(*exec.ExitError); ok {
			be.Stderr = strings.TrimSpace(string(exitErr.Stderr))
		}
		return "", be
	}
	return string(out), nil
}

// isNoServer reports whether tmux stderr says there is no server to talk to.
func isNoServer(stderr string) bool {
	return strings.Contains(stderr, "no server running") ||
		strings.Contains(stderr, "error connecting to") ||
		strings.Contains(stderr, "no sessions")
}
