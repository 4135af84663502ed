package prefs

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/timvw/byobu-select/internal/logging"
)

// statusKeys are the status file variables holding notification items.
var statusKeys = []string{"tmux_left", "tmux_right"}

const statusLockTimeout = 5 * time.Second

// StatusItem is one status notification and whether it is shown.
type StatusItem struct {
	Name    string
	Enabled bool
}

// SystemStatusPath is the status file shipped with byobu.
func (s *Store) SystemStatusPath() string {
	return filepath.Join(s.ShareDir, "status", statusFile)
}

// UserStatusPath is the per-user status file.
func (s *Store) UserStatusPath() string {
	return filepath.Join(s.ConfigDir, statusFile)
}

// ReadStatus merges the system and user status files, the user file winning,
// and returns the items sorted by name. Missing files are skipped.
func (s *Store) ReadStatus() ([]StatusItem, error) {
	state := map[string]bool{}
	for _, path := range []string{s.SystemStatusPath(), s.UserStatusPath()} {
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		vars := parseStatusVars(string(data))
		for _, key := range statusKeys {
			for _, tok := range strings.Fields(vars[key]) {
				name, enabled := parseStatusToken(tok)
				if name != "" {
					state[name] = enabled
				}
			}
		}
	}

	items := make([]StatusItem, 0, len(state))
	for name, enabled := range state {
		items = append(items, StatusItem{Name: name, Enabled: enabled})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

// WriteStatus rewrites the tmux_left and tmux_right lines of the user status
// file so each listed item carries the requested state; unlisted items keep
// their current state. Items keep the order of the system default and other
// lines are preserved. When the user has no status file yet it is seeded from
// the system default.
func (s *Store) WriteStatus(ctx context.Context, items []StatusItem) error {
	unlock, err := s.lockStatus(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	current, err := s.ReadStatus()
	if err != nil {
		return err
	}
	want := make(map[string]bool, len(current)+len(items))
	for _, it := range current {
		want[it.Name] = it.Enabled
	}
	for _, it := range items {
		want[it.Name] = it.Enabled
	}

	userPath := s.UserStatusPath()
	content, err := os.ReadFile(userPath)
	if os.IsNotExist(err) {
		content, err = os.ReadFile(s.SystemStatusPath())
	}
	if err != nil {
		return fmt.Errorf("reading status: %w", err)
	}

	// Item order per key comes from the system default when available.
	order := parseStatusVars(string(content))
	if sys, err := os.ReadFile(s.SystemStatusPath()); err == nil {
		for k, v := range parseStatusVars(string(sys)) {
			order[k] = v
		}
	}

	var b strings.Builder
	sc := bufio.NewScanner(strings.NewReader(string(content)))
	for sc.Scan() {
		line := sc.Text()
		if key, ok := statusKeyOf(line); ok {
			line = fmt.Sprintf("%s=%q", key, renderStatus(order[key], want))
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading status: %w", err)
	}

	if err := os.MkdirAll(s.ConfigDir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(userPath, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing status: %w", err)
	}
	logging.Infof("status items written to %s", userPath)
	s.Metrics.RecordPrefChange(ctx, "status")
	return nil
}

// SetStatusItems enables or disables the named items, leaving the others as
// they are. Unknown names are an error.
func (s *Store) SetStatusItems(ctx context.Context, enabled bool, names ...string) error {
	items, err := s.ReadStatus()
	if err != nil {
		return err
	}
	index := make(map[string]int, len(items))
	for i, it := range items {
		index[it.Name] = i
	}
	for _, name := range names {
		i, ok := index[name]
		if !ok {
			return fmt.Errorf("unknown status item %q", name)
		}
		items[i].Enabled = enabled
	}
	return s.WriteStatus(ctx, items)
}

func (s *Store) lockStatus(ctx context.Context) (func(), error) {
	if err := os.MkdirAll(s.RunDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}
	lock := flock.New(filepath.Join(s.RunDir, statusLockFile))

	ctx, cancel := context.WithTimeout(ctx, statusLockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("status lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("status lock held by another process")
	}
	return func() { _ = lock.Unlock() }, nil
}

// renderStatus rebuilds a status value in template order with the wanted
// states. Items not in want keep their template state.
func renderStatus(template string, want map[string]bool) string {
	var parts []string
	for _, tok := range strings.Fields(template) {
		name, enabled := parseStatusToken(tok)
		if name == "" {
			continue
		}
		if v, ok := want[name]; ok {
			enabled = v
		}
		if enabled {
			parts = append(parts, name)
		} else {
			parts = append(parts, "#"+name)
		}
	}
	return " " + strings.Join(parts, " ")
}

// parseStatusVars extracts the status keys from a status file. The last
// assignment of a key wins.
func parseStatusVars(content string) map[string]string {
	vars := map[string]string{}
	for _, line := range strings.Split(content, "\n") {
		key, ok := statusKeyOf(line)
		if !ok {
			continue
		}
		value := strings.TrimSpace(strings.TrimPrefix(line, key+"="))
		vars[key] = strings.Trim(value, `"'`)
	}
	return vars
}

func statusKeyOf(line string) (string, bool) {
	for _, key := range statusKeys {
		if strings.HasPrefix(line, key+"=") {
			return key, true
		}
	}
	return "", false
}

func parseStatusToken(tok string) (string, bool) {
	if strings.HasPrefix(tok, "#") {
		return strings.TrimLeft(tok, "#"), false
	}
	return tok, true
}
