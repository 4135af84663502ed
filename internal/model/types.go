package model

import (
	"regexp"
	"strings"
)

// BackendTmux is the only multiplexer backend sessions are resolved against.
const BackendTmux = "tmux"

// Handle identifies a session on a specific backend.
type Handle struct {
	// Backend is the multiplexer that owns the session (e.g., "tmux").
	Backend string `json:"backend"`
	// Name is the backend-assigned session name.
	Name string `json:"name"`
}

// String returns "backend:name" for logs and labels.
func (h Handle) String() string {
	return h.Backend + ":" + h.Name
}

// Session is one line of the backend's session listing.
type Session struct {
	// Name is the session name (text before the first ':').
	Name string `json:"name"`
	// Raw is the listing line as printed by the backend, trimmed.
	Raw string `json:"raw"`
	// Group is the session group id from a "(group N)" annotation, empty if ungrouped.
	Group string `json:"group,omitempty"`
	// Attached is true when at least one client is attached.
	Attached bool `json:"attached"`
}

// Handle returns the tmux handle for this session.
func (s Session) Handle() Handle {
	return Handle{Backend: BackendTmux, Name: s.Name}
}

var groupRe = regexp.MustCompile(`\(group ([^)]+)\)`)

// ParseSessionLine parses a single "tmux list-sessions" line, e.g.
//
//	work: 2 windows (created Mon Oct 19 10:00:00 2026) (group 5) (attached)
//
// Returns false for blank lines and lines without a ':' separator.
func ParseSessionLine(line string) (Session, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Session{}, false
	}
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return Session{}, false
	}
	s := Session{
		Name:     line[:idx],
		Raw:      line,
		Attached: strings.HasSuffix(line, "(attached)"),
	}
	if m := groupRe.FindStringSubmatch(line[idx:]); m != nil {
		s.Group = m[1]
	}
	return s, true
}

// ParseSessions parses a full listing. Unparseable lines are dropped; order is preserved.
func ParseSessions(output string) []Session {
	var sessions []Session
	for _, line := range strings.Split(output, "\n") {
		if s, ok := ParseSessionLine(line); ok {
			sessions = append(sessions, s)
		}
	}
	return sessions
}
