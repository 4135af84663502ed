// Package launch turns a resolved Action into a command line and replaces
// the current process with it.
package launch

import (
	"fmt"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"

	"github.com/timvw/byobu-select/internal/logging"
	"github.com/timvw/byobu-select/internal/resolver"
)

// Binaries names the programs an Action may exec.
type Binaries struct {
	Tmux    string // multiplexer client, default "tmux"
	Wrapper string // byobu wrapper used to start new sessions, default "byobu"
}

func (b Binaries) tmux() string {
	if b.Tmux == "" {
		return "tmux"
	}
	return b.Tmux
}

func (b Binaries) wrapper() string {
	if b.Wrapper == "" {
		return "byobu"
	}
	return b.Wrapper
}

// Command returns the program and argv (argv[0] included) for an action.
//
//	AttachExisting, Reuse   tmux -u new-session -t NAME ; set-option destroy-unattached
//	AttachExisting          tmux -u attach -t NAME
//	CreateNew               byobu new-session SHELL
//	RunShell                SHELL
//	DefaultAttach           tmux
func Command(action resolver.Action, bin Binaries) (string, []string, error) {
	switch a := action.(type) {
	case resolver.AttachExisting:
		if a.Handle.Name == "" {
			return "", nil, fmt.Errorf("attach: empty session name")
		}
		if a.Reuse {
			// The trailing set-option applies to the grouped session created
			// for this client, so it goes away once the client detaches.
			return bin.tmux(), []string{bin.tmux(), "-u", "new-session", "-t", a.Handle.Name,
				";", "set-option", "destroy-unattached"}, nil
		}
		return bin.tmux(), []string{bin.tmux(), "-u", "attach", "-t", a.Handle.Name}, nil
	case resolver.CreateNew:
		return bin.wrapper(), []string{bin.wrapper(), "new-session", a.Shell}, nil
	case resolver.RunShell:
		if a.Shell == "" {
			return "", nil, fmt.Errorf("shell: empty shell path")
		}
		return a.Shell, []string{a.Shell}, nil
	case resolver.DefaultAttach:
		return bin.tmux(), []string{bin.tmux()}, nil
	default:
		return "", nil, fmt.Errorf("unknown action %T", action)
	}
}

// execFunc is swapped in tests.
var execFunc = unix.Exec

// Exec replaces the current process with the action's command. It only
// returns on failure. Callers flush logs and telemetry before calling it.
func Exec(action resolver.Action, bin Binaries) error {
	name, argv, err := Command(action, bin)
	if err != nil {
		return err
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return fmt.Errorf("%s not found in PATH: %w", name, err)
	}

	logging.Debugf("exec %s %v", path, argv[1:])
	if err := execFunc(path, argv, os.Environ()); err != nil {
		return fmt.Errorf("exec %s: %w", path, err)
	}
	return nil
}
