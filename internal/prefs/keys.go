package prefs

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// DefaultEscapeKey is the ctrl-key byobu uses when none is configured.
const DefaultEscapeKey = "A"

// ErrInvalidEscapeKey is returned for keys that are not a single letter.
var ErrInvalidEscapeKey = errors.New("escape key must be a single letter")

// EscapeKey returns the configured escape key from the last
// "set -g prefix ^X" line of keybindings.tmux. A backtick means space.
func (s *Store) EscapeKey() string {
	f, err := os.Open(filepath.Join(s.ConfigDir, keybindingsFile))
	if err != nil {
		return DefaultEscapeKey
	}
	defer f.Close()

	line := ""
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if strings.HasPrefix(sc.Text(), "set -g prefix ") {
			line = sc.Text()
		}
	}

	i := strings.IndexByte(line, '^')
	if i < 0 || i+1 >= len(line) {
		return DefaultEscapeKey
	}
	key := line[i+1 : i+2]
	if key == "`" {
		return " "
	}
	return key
}

// NormalizeEscapeKey reduces typed input to a candidate key: the last
// character typed, with '/', '\' and digits replaced by the default.
func NormalizeEscapeKey(input string) string {
	runes := []rune(strings.TrimSpace(input))
	if len(runes) == 0 {
		return DefaultEscapeKey
	}
	r := runes[len(runes)-1]
	if r == '/' || r == '\\' || unicode.IsDigit(r) {
		return DefaultEscapeKey
	}
	return string(r)
}

// SetEscapeKey installs key as the escape key through byobu-ctrl-a and marks
// byobu for reload.
func (s *Store) SetEscapeKey(ctx context.Context, key string) error {
	key = NormalizeEscapeKey(key)
	r := []rune(key)[0]
	// tmux prefix keys are ASCII control combinations.
	if r > unicode.MaxASCII || !unicode.IsLetter(r) {
		return ErrInvalidEscapeKey
	}
	if err := s.run(ctx, "byobu-ctrl-a", "screen", key); err != nil {
		return err
	}
	s.Metrics.RecordPrefChange(ctx, "escape")
	return s.MarkReloadRequired()
}
