// Package prefs reads and writes the byobu preferences edited by the
// configuration menu: status notifications, the escape key, login
// autolaunch and the help text.
//
// Files live in the byobu config directory; system defaults come from the
// install prefix. Writes that change how tmux is configured also touch the
// reload-required flag so the running byobu picks them up.
package prefs

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/timvw/byobu-select/internal/config"
	"github.com/timvw/byobu-select/internal/logging"
	bsotel "github.com/timvw/byobu-select/internal/otel"
)

const (
	statusFile      = "status"
	keybindingsFile = "keybindings.tmux"
	disableAutoFile = "disable-autolaunch"
	reloadFlagFile  = "reload-required"
	statusLockFile  = "status.lock"

	// DefaultProfileScript is installed by byobu-launcher-install for all users.
	DefaultProfileScript = "/etc/profile.d/Z97-byobu.sh"
)

// Runner executes an external helper and waits for it. Output is discarded.
type Runner func(ctx context.Context, name string, args ...string) error

// ExecRunner runs the helper with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Store gives access to the preference files of one user.
type Store struct {
	ConfigDir string
	RunDir    string
	ShareDir  string   // $PREFIX/share/byobu
	DocDirs   []string // searched in order for help.tmux.txt
	Home      string

	// ProfileScript is the system-wide launcher hook checked by Autolaunch.
	ProfileScript string
	// HelpStyle is the glamour style for the built-in help ("dark", "light").
	HelpStyle string

	Run     Runner
	Metrics *bsotel.Metrics
}

// New builds a Store from the loaded settings.
func New(cfg *config.Config, metrics *bsotel.Metrics) *Store {
	return &Store{
		ConfigDir: cfg.ConfigDir,
		RunDir:    cfg.RunDir,
		ShareDir:  cfg.ShareDir(),
		DocDirs: []string{
			cfg.DocDir(),
			filepath.Join(cfg.Prefix, "share", "doc", "packages", "byobu"),
		},
		Home:          cfg.Home,
		ProfileScript: DefaultProfileScript,
		HelpStyle:     cfg.Theme,
		Run:           ExecRunner,
		Metrics:       metrics,
	}
}

// MarkReloadRequired touches the reload flag in the run directory.
func (s *Store) MarkReloadRequired() error {
	if err := os.MkdirAll(s.RunDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(s.RunDir, reloadFlagFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	logging.Debugf("reload required: %s", path)
	return f.Close()
}

// ReloadRequired reports whether the reload flag is present.
func (s *Store) ReloadRequired() bool {
	return exists(filepath.Join(s.RunDir, reloadFlagFile))
}

func (s *Store) run(ctx context.Context, name string, args ...string) error {
	run := s.Run
	if run == nil {
		run = ExecRunner
	}
	logging.Debugf("run %s %v", name, args)
	return run(ctx, name, args...)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
