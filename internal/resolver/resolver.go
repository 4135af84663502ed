// Package resolver decides which multiplexer session this process should
// become.
//
// Resolution enumerates visible sessions, offers NEW/SHELL escapes when the
// choice is ambiguous, selects one (automatically or through a numbered
// prompt) and prepares the target session: environment variables are pushed
// into it and orphaned group satellites are killed. The result is an Action;
// exec is left to the caller.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/timvw/byobu-select/internal/logging"
	"github.com/timvw/byobu-select/internal/model"
	"github.com/timvw/byobu-select/internal/mux"
	bsotel "github.com/timvw/byobu-select/internal/otel"
)

var tracer = otel.Tracer("byobu-select")

// ErrInterrupted is returned when the user interrupts the prompt. Callers
// exit with status 0 without attaching.
var ErrInterrupted = errors.New("selection interrupted")

// EntryKind distinguishes real sessions from the synthetic choices.
type EntryKind int

const (
	KindSession EntryKind = iota
	KindNew
	KindShell
)

// Entry is one numbered line of the selection menu.
type Entry struct {
	Kind   EntryKind
	Handle model.Handle // zero for KindNew and KindShell
	Label  string
}

// Resolver holds everything a resolution needs. It is built once per run
// from the loaded configuration.
type Resolver struct {
	Mux mux.Multiplexer

	// Shell is the resolved default shell ($SHELL or /bin/bash).
	Shell string
	// Reuse selects grouped-session attach instead of plain reattach.
	Reuse bool
	// AlwaysSelect forces the NEW/SHELL choices even with at most one session.
	AlwaysSelect bool

	// Prompter reads the user's answer. Required only when a prompt is shown.
	Prompter Prompter
	// Out receives the numbered menu; ErrOut receives input errors.
	Out    io.Writer
	ErrOut io.Writer

	// LookupEnv reads the current process environment. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)

	Metrics *bsotel.Metrics // nil-safe
}

// IsHiddenSession reports whether a session is reserved for internal use.
// Names starting with '_' are never offered.
func IsHiddenSession(name string) bool {
	return strings.HasPrefix(name, "_")
}

// IsGroupSatellite reports whether a session looks like a per-client member of
// a session group. Any '-' in the name counts, which also hides user sessions
// such as "my-project".
func IsGroupSatellite(name string) bool {
	return strings.Contains(name, "-")
}

// IsVisible is the listing filter applied by Enumerate.
func IsVisible(name string) bool {
	return name != "" && !IsHiddenSession(name) && !IsGroupSatellite(name)
}

// Enumerate lists visible sessions in backend order. Backend failures yield
// an empty list.
func (r *Resolver) Enumerate(ctx context.Context) []Entry {
	sessions, err := r.Mux.ListSessions(ctx)
	if err != nil {
		logging.Debugf("list sessions: %v", err)
		return nil
	}

	var entries []Entry
	for _, s := range sessions {
		if !IsVisible(s.Name) {
			continue
		}
		entries = append(entries, Entry{
			Kind:   KindSession,
			Handle: s.Handle(),
			Label:  r.Mux.Name() + ": " + s.Raw,
		})
	}
	return entries
}

// Augment appends the NEW and SHELL choices when there is more than one
// session or force is set. They always come last, in that order.
func Augment(entries []Entry, force bool, shell string) []Entry {
	if len(entries) <= 1 && !force {
		return entries
	}
	return append(entries,
		Entry{Kind: KindNew, Label: "Create a new Byobu session (tmux)"},
		Entry{Kind: KindShell, Label: fmt.Sprintf("Run a shell without Byobu (%s)", shell)},
	)
}

// Resolve runs the whole selection and returns the action to exec.
// The only error is ErrInterrupted.
func (r *Resolver) Resolve(ctx context.Context) (Action, error) {
	ctx, span := tracer.Start(ctx, "resolve")
	defer span.End()

	entries := r.Enumerate(ctx)
	r.Metrics.RecordEnumerated(ctx, len(entries))
	span.SetAttributes(attribute.Int("sessions.visible", len(entries)))

	entries = Augment(entries, r.AlwaysSelect, r.Shell)

	entry, ok, err := r.Select(ctx, entries)
	if err != nil {
		span.SetAttributes(attribute.Bool("interrupted", true))
		return nil, err
	}

	action := r.actionFor(ctx, entry, ok)
	r.Metrics.RecordSelection(ctx, action.Kind())
	span.SetAttributes(attribute.String("selection.kind", action.Kind()))
	logging.Debugf("resolved action %s", action.Kind())
	return action, nil
}

func (r *Resolver) actionFor(ctx context.Context, entry Entry, ok bool) Action {
	if !ok {
		return DefaultAttach{}
	}
	switch entry.Kind {
	case KindNew:
		return CreateNew{Shell: r.Shell}
	case KindShell:
		return RunShell{Shell: r.Shell}
	default:
		r.PropagateEnv(ctx, entry.Handle.Name)
		r.ReapZombies(ctx, entry.Handle.Name)
		return AttachExisting{Handle: entry.Handle, Reuse: r.Reuse}
	}
}

func (r *Resolver) out() io.Writer {
	if r.Out != nil {
		return r.Out
	}
	return os.Stdout
}

func (r *Resolver) errOut() io.Writer {
	if r.ErrOut != nil {
		return r.ErrOut
	}
	return os.Stderr
}
