// Package menu is the interactive byobu configuration menu: help, status
// notifications, the escape key and login autolaunch.
package menu

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/timvw/byobu-select/internal/logging"
	"github.com/timvw/byobu-select/internal/prefs"
)

// Prefs is the preference store the menu edits.
type Prefs interface {
	ReadStatus() ([]prefs.StatusItem, error)
	WriteStatus(ctx context.Context, items []prefs.StatusItem) error
	EscapeKey() string
	SetEscapeKey(ctx context.Context, key string) error
	Autolaunch() bool
	SetAutolaunch(ctx context.Context, on bool) error
	MarkReloadRequired() error
	HelpText(width int) string
}

type viewMode int

const (
	modeMain viewMode = iota
	modeHelp
	modeStatus
	modeEscape
	modeMessage
)

type mainEntry int

const (
	entryHelp mainEntry = iota
	entryStatus
	entryEscape
	entryAutolaunch
	entryExit
)

const reloadHint = "Changes take effect the next time byobu reloads its configuration (F5)."

// Menu runs the configuration menu.
type Menu struct {
	Prefs Prefs
	Theme Theme
}

type menuModel struct {
	prefs  Prefs
	ctx    context.Context
	styles styles

	mode   viewMode
	cursor int

	autolaunch bool

	// status notifications
	items        []prefs.StatusItem
	statusCursor int

	escInput   textinput.Model
	escCurrent string // key shown when the prompt opened
	help       viewport.Model

	message    string
	messageErr bool

	width  int
	height int
}

// Run shows the menu until the user exits.
func (mu *Menu) Run(ctx context.Context) error {
	m := newModel(ctx, mu.Prefs, mu.Theme)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func newModel(ctx context.Context, p Prefs, theme Theme) *menuModel {
	ti := textinput.New()
	ti.Prompt = "ctrl-"
	ti.CharLimit = 1
	ti.Width = 4

	return &menuModel{
		prefs:      p,
		ctx:        ctx,
		styles:     newStyles(theme),
		autolaunch: p.Autolaunch(),
		escInput:   ti,
		help:       viewport.New(0, 0),
	}
}

func (m *menuModel) Init() tea.Cmd {
	return nil
}

// autolaunchLabel describes the current state and what selecting it does.
func (m *menuModel) autolaunchLabel() string {
	if m.autolaunch {
		return "Byobu currently launches at login (toggle off)"
	}
	return "Byobu currently does not launch at login (toggle on)"
}

func (m *menuModel) entries() []string {
	return []string{
		"Help -- Quick Start Guide",
		"Toggle status notifications",
		"Change escape sequence",
		m.autolaunchLabel(),
		"Exit",
	}
}

func (m *menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width - 4
		m.help.Height = msg.Height - 4
		return m, nil
	}
	return m, nil
}

func (m *menuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.mode {
	case modeMain:
		return m.handleMainKey(msg)
	case modeHelp:
		return m.handleHelpKey(msg)
	case modeStatus:
		return m.handleStatusKey(msg)
	case modeEscape:
		return m.handleEscapeKey(msg)
	case modeMessage:
		m.mode = modeMain
		return m, nil
	}
	return m, nil
}

func (m *menuModel) handleMainKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "escape":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries())-1 {
			m.cursor++
		}
	case "1", "2", "3", "4", "5":
		m.cursor = int(msg.String()[0] - '1')
		return m.activate()
	case "enter":
		return m.activate()
	}
	return m, nil
}

// activate opens the entry under the cursor.
func (m *menuModel) activate() (tea.Model, tea.Cmd) {
	switch mainEntry(m.cursor) {
	case entryHelp:
		m.help.SetContent(m.prefs.HelpText(m.help.Width))
		m.help.GotoTop()
		m.mode = modeHelp
	case entryStatus:
		items, err := m.prefs.ReadStatus()
		if err != nil {
			m.showMessage(fmt.Sprintf("Reading status failed: %v", err), true)
			return m, nil
		}
		m.items = items
		m.statusCursor = 0
		m.mode = modeStatus
	case entryEscape:
		key := m.prefs.EscapeKey()
		if key == " " {
			key = "`"
		}
		m.escCurrent = key
		m.escInput.SetValue(key)
		m.escInput.CursorEnd()
		m.mode = modeEscape
		return m, m.escInput.Focus()
	case entryAutolaunch:
		m.toggleAutolaunch()
	case entryExit:
		return m, tea.Quit
	}
	return m, nil
}

func (m *menuModel) toggleAutolaunch() {
	on := !m.autolaunch
	if err := m.prefs.SetAutolaunch(m.ctx, on); err != nil {
		logging.Warnf("autolaunch: %v", err)
		m.showMessage(fmt.Sprintf("Changing autolaunch failed: %v", err), true)
		return
	}
	m.autolaunch = m.prefs.Autolaunch()
	if on {
		m.showMessage("Byobu will be launched automatically next time you login.", false)
	} else {
		m.showMessage("Byobu will not be launched next time you login.", false)
	}
}

func (m *menuModel) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "escape", "enter":
		m.mode = modeMain
		return m, nil
	}
	var cmd tea.Cmd
	m.help, cmd = m.help.Update(msg)
	return m, cmd
}

func (m *menuModel) handleStatusKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "escape", "q":
		m.mode = modeMain
	case "up", "k":
		if m.statusCursor > 0 {
			m.statusCursor--
		}
	case "down", "j":
		if m.statusCursor < len(m.items)-1 {
			m.statusCursor++
		}
	case " ", "x":
		if len(m.items) > 0 {
			m.items[m.statusCursor].Enabled = !m.items[m.statusCursor].Enabled
		}
	case "enter":
		if err := m.prefs.WriteStatus(m.ctx, m.items); err != nil {
			m.showMessage(fmt.Sprintf("Saving status failed: %v", err), true)
			return m, nil
		}
		m.markReload()
		m.showMessage("Status notifications saved. "+reloadHint, false)
	}
	return m, nil
}

func (m *menuModel) handleEscapeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "escape":
		m.escInput.Blur()
		m.mode = modeMain
		return m, nil
	case "enter":
		m.escInput.Blur()
		if m.escInput.Value() == m.escCurrent {
			m.mode = modeMain
			return m, nil
		}
		key := prefs.NormalizeEscapeKey(m.escInput.Value())
		if err := m.prefs.SetEscapeKey(m.ctx, key); err != nil {
			m.showMessage(fmt.Sprintf("Changing escape key failed: %v", err), true)
			return m, nil
		}
		m.showMessage(fmt.Sprintf("Escape key set to ctrl-%s. %s", key, reloadHint), false)
		return m, nil
	}

	// Typing over a full field replaces the key.
	if msg.Type == tea.KeyRunes && len(m.escInput.Value()) >= m.escInput.CharLimit {
		m.escInput.SetValue("")
	}
	var cmd tea.Cmd
	m.escInput, cmd = m.escInput.Update(msg)
	return m, cmd
}

func (m *menuModel) markReload() {
	if err := m.prefs.MarkReloadRequired(); err != nil {
		logging.Warnf("reload flag: %v", err)
	}
}

func (m *menuModel) showMessage(text string, isErr bool) {
	m.message = text
	m.messageErr = isErr
	m.mode = modeMessage
}

func (m *menuModel) View() string {
	switch m.mode {
	case modeHelp:
		return m.viewHelp()
	case modeStatus:
		return m.viewStatus()
	case modeEscape:
		return m.viewEscape()
	case modeMessage:
		return m.viewMessage()
	}
	return m.viewMain()
}

func (m *menuModel) frame(title, body, hints string) string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("  " + title))
	b.WriteString("\n")
	b.WriteString(m.styles.header.Render("  " + strings.Repeat("─", 41)))
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(m.styles.dim.Render("  " + hints))
	b.WriteString("\n")
	return b.String()
}

func (m *menuModel) viewMain() string {
	var b strings.Builder
	for i, e := range m.entries() {
		line := fmt.Sprintf("%d. %s", i+1, e)
		if i == m.cursor {
			b.WriteString(m.styles.title.Render("> "))
			b.WriteString(m.styles.selected.Render(line))
		} else {
			b.WriteString("  ")
			b.WriteString(m.styles.text.Render(line))
		}
		b.WriteString("\n")
	}
	return m.frame("Byobu Configuration Menu", b.String(), "↑↓=select  Enter=open  q=quit")
}

func (m *menuModel) viewHelp() string {
	return m.frame("Byobu Help", m.help.View()+"\n", "↑↓/PgUp/PgDn=scroll  Enter/Esc=menu")
}

func (m *menuModel) viewStatus() string {
	var b strings.Builder
	if len(m.items) == 0 {
		b.WriteString(m.styles.dim.Render("  No status notifications found."))
		b.WriteString("\n")
	}
	for i, it := range m.items {
		box := "[ ]"
		style := m.styles.dim
		if it.Enabled {
			box = "[*]"
			style = m.styles.enabled
		}
		line := fmt.Sprintf("%s %s", box, it.Name)
		if i == m.statusCursor {
			b.WriteString(m.styles.title.Render("> "))
			b.WriteString(m.styles.selected.Render(line))
		} else {
			b.WriteString("  ")
			b.WriteString(style.Render(line))
		}
		b.WriteString("\n")
	}
	return m.frame("Toggle status notifications", b.String(), "Space=toggle  Enter=apply  Esc=cancel")
}

func (m *menuModel) viewEscape() string {
	body := "  Escape key: " + m.escInput.View() + "\n"
	return m.frame("Change escape sequence", body, "Enter=apply  Esc=cancel")
}

func (m *menuModel) viewMessage() string {
	style := m.styles.text
	if m.messageErr {
		style = m.styles.err
	}
	return m.frame("Byobu", "  "+style.Render(m.message)+"\n", "press any key")
}
