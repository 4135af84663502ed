package prefs

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/timvw/byobu-select/internal/logging"
)

const helpFile = "help.tmux.txt"

//go:embed quickstart.md
var quickstart string

// HelpText returns the installed help with the first "<esckey>" replaced by
// the configured escape key. Without an installed help file the built-in
// quick start is rendered for a terminal of the given width.
func (s *Store) HelpText(width int) string {
	for _, dir := range s.DocDirs {
		data, err := os.ReadFile(filepath.Join(dir, helpFile))
		if err != nil {
			continue
		}
		return strings.Replace(string(data), "<esckey>", s.EscapeKey(), 1)
	}

	md := strings.Replace(quickstart, "<esckey>", s.EscapeKey(), 1)
	style := s.HelpStyle
	if style != "light" {
		style = "dark"
	}
	if width < 20 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		logging.Debugf("help renderer: %v", err)
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		logging.Debugf("help render: %v", err)
		return md
	}
	return out
}
