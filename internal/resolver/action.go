package resolver

import "github.com/timvw/byobu-select/internal/model"

// Action is the terminal decision of a resolution. The caller carries it out
// by replacing the process image; the resolver itself never execs.
type Action interface {
	// Kind is a short name used in logs and metrics.
	Kind() string
	isAction()
}

// AttachExisting attaches to a live session. With Reuse set, a new grouped
// session is created for this client and destroyed when it detaches;
// otherwise the client attaches to the session directly.
type AttachExisting struct {
	Handle model.Handle
	Reuse  bool
}

// CreateNew starts a brand-new wrapper session running Shell.
type CreateNew struct {
	Shell string
}

// RunShell bypasses the multiplexer and runs Shell directly.
type RunShell struct {
	Shell string
}

// DefaultAttach hands control to the backend's own default: attach to the
// most recent session or create one.
type DefaultAttach struct{}

func (AttachExisting) Kind() string { return "session" }
func (CreateNew) Kind() string      { return "new" }
func (RunShell) Kind() string       { return "shell" }
func (DefaultAttach) Kind() string  { return "default" }

func (AttachExisting) isAction() {}
func (CreateNew) isAction()      {}
func (RunShell) isAction()       {}
func (DefaultAttach) isAction()  {}
