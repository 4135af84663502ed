package prefs

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
)

// Autolaunch reports whether byobu starts at login: never when the user
// disabled it, otherwise when ~/.profile runs byobu-launch or the system-wide
// profile hook is installed.
func (s *Store) Autolaunch() bool {
	if exists(filepath.Join(s.ConfigDir, disableAutoFile)) {
		return false
	}
	f, err := os.Open(filepath.Join(s.Home, ".profile"))
	if err != nil {
		return false
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if strings.Contains(sc.Text(), "byobu-launch") {
			return true
		}
	}
	return s.ProfileScript != "" && exists(s.ProfileScript)
}

// SetAutolaunch installs or removes the login hook.
func (s *Store) SetAutolaunch(ctx context.Context, on bool) error {
	helper := "byobu-launcher-uninstall"
	if on {
		helper = "byobu-launcher-install"
	}
	if err := s.run(ctx, helper); err != nil {
		return err
	}
	s.Metrics.RecordPrefChange(ctx, "autolaunch")
	return nil
}
