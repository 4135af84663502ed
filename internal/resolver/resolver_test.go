package resolver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/timvw/byobu-select/internal/model"
)

// mockMultiplexer implements mux.Multiplexer for testing.
type mockMultiplexer struct {
	listings [][]model.Session // returned in order; the last one repeats
	listErr  error
	setErr   map[string]error // key -> error

	listCalls int
	setCalls  []string // "session KEY=VALUE"
	killed    []string
}

func (m *mockMultiplexer) Name() string   { return "tmux" }
func (m *mockMultiplexer) Binary() string { return "tmux" }

func (m *mockMultiplexer) ListSessions(_ context.Context) ([]model.Session, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	if len(m.listings) == 0 {
		return nil, nil
	}
	idx := m.listCalls - 1
	if idx >= len(m.listings) {
		idx = len(m.listings) - 1
	}
	return m.listings[idx], nil
}

func (m *mockMultiplexer) SetEnvironment(_ context.Context, session, key, value string) error {
	if err := m.setErr[key]; err != nil {
		return err
	}
	m.setCalls = append(m.setCalls, fmt.Sprintf("%s %s=%s", session, key, value))
	return nil
}

func (m *mockMultiplexer) KillSession(_ context.Context, session string) error {
	m.killed = append(m.killed, session)
	return nil
}

// listing parses raw tmux lines the way the real backend does.
func listing(lines ...string) []model.Session {
	return model.ParseSessions(strings.Join(lines, "\n"))
}

// scriptedPrompter replays canned answers; once they run out it returns io.EOF.
type scriptedPrompter struct {
	answers []string
	errs    map[int]error // call index -> error
	calls   int
}

func (p *scriptedPrompter) Prompt(_ context.Context, _ string) (string, error) {
	i := p.calls
	p.calls++
	if err := p.errs[i]; err != nil {
		return "", err
	}
	if i >= len(p.answers) {
		return "", io.EOF
	}
	return p.answers[i], nil
}

func newResolver(m *mockMultiplexer, p Prompter) (*Resolver, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	r := &Resolver{
		Mux:       m,
		Shell:     "/bin/zsh",
		Prompter:  p,
		Out:       &out,
		ErrOut:    &errOut,
		LookupEnv: func(string) (string, bool) { return "", false },
	}
	return r, &out, &errOut
}

func names(entries []Entry) []string {
	var out []string
	for _, e := range entries {
		switch e.Kind {
		case KindNew:
			out = append(out, "NEW")
		case KindShell:
			out = append(out, "SHELL")
		default:
			out = append(out, e.Handle.Name)
		}
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestVisibilityPredicates(t *testing.T) {
	tests := []struct {
		name      string
		hidden    bool
		satellite bool
		visible   bool
	}{
		{name: "work", visible: true},
		{name: "0", visible: true},
		{name: "_work", hidden: true},
		{name: "_work-1", hidden: true, satellite: true},
		{name: "my-project", satellite: true},
		{name: "", visible: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsHiddenSession(tt.name); got != tt.hidden {
				t.Errorf("IsHiddenSession: got %v, want %v", got, tt.hidden)
			}
			if got := IsGroupSatellite(tt.name); got != tt.satellite {
				t.Errorf("IsGroupSatellite: got %v, want %v", got, tt.satellite)
			}
			if got := IsVisible(tt.name); got != tt.visible {
				t.Errorf("IsVisible: got %v, want %v", got, tt.visible)
			}
		})
	}
}

func TestEnumerate_FiltersAndPreservesOrder(t *testing.T) {
	m := &mockMultiplexer{listings: [][]model.Session{listing(
		"zeta: 1 windows (created Mon Oct 19 10:00:00 2026)",
		"_hidden: 1 windows",
		"alpha: 2 windows (group 3) (attached)",
		"alpha-1: 2 windows (group 3)",
		"",
		"mid: 1 windows",
	)}}
	r, _, _ := newResolver(m, nil)

	entries := r.Enumerate(context.Background())

	if got, want := names(entries), []string{"zeta", "alpha", "mid"}; !equalStrings(got, want) {
		t.Fatalf("entries: got %v, want %v", got, want)
	}
	if entries[1].Label != "tmux: alpha: 2 windows (group 3) (attached)" {
		t.Errorf("label: got %q", entries[1].Label)
	}
	if entries[0].Handle != (model.Handle{Backend: "tmux", Name: "zeta"}) {
		t.Errorf("handle: got %+v", entries[0].Handle)
	}
}

func TestEnumerate_BackendErrorIsEmpty(t *testing.T) {
	m := &mockMultiplexer{listErr: errors.New("tmux: not found")}
	r, _, _ := newResolver(m, nil)

	if entries := r.Enumerate(context.Background()); len(entries) != 0 {
		t.Errorf("expected no entries, got %v", entries)
	}
}

func TestAugment(t *testing.T) {
	one := []Entry{{Kind: KindSession, Handle: model.Handle{Backend: "tmux", Name: "a"}}}
	two := append(append([]Entry{}, one...), Entry{Kind: KindSession, Handle: model.Handle{Backend: "tmux", Name: "b"}})

	tests := []struct {
		name    string
		entries []Entry
		force   bool
		want    []string
	}{
		{name: "none", entries: nil, want: nil},
		{name: "none forced", entries: nil, force: true, want: []string{"NEW", "SHELL"}},
		{name: "one", entries: one, want: []string{"a"}},
		{name: "one forced", entries: one, force: true, want: []string{"a", "NEW", "SHELL"}},
		{name: "two", entries: two, want: []string{"a", "b", "NEW", "SHELL"}},
		{name: "two forced", entries: two, force: true, want: []string{"a", "b", "NEW", "SHELL"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := append([]Entry{}, tt.entries...)
			got := Augment(in, tt.force, "/bin/zsh")
			if !equalStrings(names(got), tt.want) {
				t.Errorf("got %v, want %v", names(got), tt.want)
			}
		})
	}

	got := Augment(append([]Entry{}, two...), false, "/bin/zsh")
	if got[3].Label != "Run a shell without Byobu (/bin/zsh)" {
		t.Errorf("shell label: got %q", got[3].Label)
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		input  string
		n      int
		want   int
		wantOK bool
	}{
		{input: "", n: 3, want: 1, wantOK: true},
		{input: "  ", n: 3, want: 1, wantOK: true},
		{input: "2", n: 3, want: 2, wantOK: true},
		{input: " 3 ", n: 3, want: 3, wantOK: true},
		{input: "0", n: 3},
		{input: "4", n: 3},
		{input: "-1", n: 3},
		{input: "abc", n: 3},
		{input: "1+1", n: 3},
		{input: "__import__('os')", n: 3},
		{input: "", n: 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q/%d", tt.input, tt.n), func(t *testing.T) {
			got, ok := ParseChoice(tt.input, tt.n)
			if ok != tt.wantOK || (ok && got != tt.want) {
				t.Errorf("got (%d, %v), want (%d, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func threeSessions() []Entry {
	return []Entry{
		{Kind: KindSession, Handle: model.Handle{Backend: "tmux", Name: "a"}, Label: "tmux: a"},
		{Kind: KindSession, Handle: model.Handle{Backend: "tmux", Name: "b"}, Label: "tmux: b"},
		{Kind: KindSession, Handle: model.Handle{Backend: "tmux", Name: "c"}, Label: "tmux: c"},
	}
}

func TestSelect_NoEntries(t *testing.T) {
	p := &scriptedPrompter{}
	r, _, _ := newResolver(&mockMultiplexer{}, p)

	_, ok, err := r.Select(context.Background(), nil)
	if err != nil || ok {
		t.Fatalf("got ok=%v err=%v, want fallthrough", ok, err)
	}
	if p.calls != 0 {
		t.Errorf("prompted %d times, want 0", p.calls)
	}
}

func TestSelect_SingleEntryAutoSelects(t *testing.T) {
	p := &scriptedPrompter{}
	r, out, _ := newResolver(&mockMultiplexer{}, p)
	entries := threeSessions()[:1]

	e, ok, err := r.Select(context.Background(), entries)
	if err != nil || !ok {
		t.Fatalf("got ok=%v err=%v", ok, err)
	}
	if e.Handle.Name != "a" {
		t.Errorf("selected %q, want a", e.Handle.Name)
	}
	if p.calls != 0 || out.Len() != 0 {
		t.Error("expected no prompt for a single entry")
	}
}

func TestSelect_EmptyInputDefaultsToFirst(t *testing.T) {
	p := &scriptedPrompter{answers: []string{""}}
	r, out, _ := newResolver(&mockMultiplexer{}, p)

	e, ok, err := r.Select(context.Background(), threeSessions())
	if err != nil || !ok {
		t.Fatalf("got ok=%v err=%v", ok, err)
	}
	if e.Handle.Name != "a" {
		t.Errorf("selected %q, want a", e.Handle.Name)
	}
	for _, want := range []string{"Byobu sessions...", "  1. tmux: a", "  3. tmux: c"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("menu missing %q:\n%s", want, out.String())
		}
	}
}

func TestSelect_EOFDefaultsToFirst(t *testing.T) {
	p := &scriptedPrompter{}
	r, _, _ := newResolver(&mockMultiplexer{}, p)

	e, ok, err := r.Select(context.Background(), threeSessions())
	if err != nil || !ok || e.Handle.Name != "a" {
		t.Fatalf("got %q ok=%v err=%v, want a", e.Handle.Name, ok, err)
	}
}

func TestSelect_RetriesThenSucceeds(t *testing.T) {
	p := &scriptedPrompter{answers: []string{"99", "abc", "2"}}
	r, _, errOut := newResolver(&mockMultiplexer{}, p)

	e, ok, err := r.Select(context.Background(), threeSessions())
	if err != nil || !ok {
		t.Fatalf("got ok=%v err=%v", ok, err)
	}
	if e.Handle.Name != "b" {
		t.Errorf("selected %q, want b", e.Handle.Name)
	}
	if p.calls != 3 {
		t.Errorf("prompted %d times, want 3", p.calls)
	}
	if got := strings.Count(errOut.String(), "ERROR: Invalid input"); got != 2 {
		t.Errorf("invalid input errors: got %d, want 2", got)
	}
}

func TestSelect_ExhaustedRetriesFallThrough(t *testing.T) {
	p := &scriptedPrompter{answers: []string{"9", "x", "0", "7"}}
	r, _, _ := newResolver(&mockMultiplexer{}, p)

	_, ok, err := r.Select(context.Background(), threeSessions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected fallthrough after exhausting retries")
	}
	if p.calls != MaxAttempts {
		t.Errorf("prompted %d times, want %d", p.calls, MaxAttempts)
	}
}

func TestSelect_Interrupt(t *testing.T) {
	p := &scriptedPrompter{errs: map[int]error{0: ErrInterrupted}}
	r, _, _ := newResolver(&mockMultiplexer{}, p)

	_, ok, err := r.Select(context.Background(), threeSessions())
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("got err=%v, want ErrInterrupted", err)
	}
	if ok {
		t.Error("expected no selection on interrupt")
	}
}

func TestSelect_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &scriptedPrompter{answers: []string{"1"}}
	r, _, _ := newResolver(&mockMultiplexer{}, p)

	if _, _, err := r.Select(ctx, threeSessions()); !errors.Is(err, ErrInterrupted) {
		t.Fatalf("got err=%v, want ErrInterrupted", err)
	}
}

func TestSelect_NoPrompterFallsThrough(t *testing.T) {
	r, out, _ := newResolver(&mockMultiplexer{}, nil)

	_, ok, err := r.Select(context.Background(), threeSessions())
	if err != nil || ok {
		t.Fatalf("got ok=%v err=%v, want fallthrough", ok, err)
	}
	if out.Len() != 0 {
		t.Errorf("expected no menu without a prompter, got:\n%s", out.String())
	}
}

func TestResolve_NoPrompterUsesDefault(t *testing.T) {
	m := &mockMultiplexer{listings: [][]model.Session{listing("a: 1 windows", "b: 1 windows")}}
	r, _, _ := newResolver(m, nil)

	action, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, ok := action.(DefaultAttach); !ok {
		t.Errorf("action: got %#v, want DefaultAttach", action)
	}
	if len(m.setCalls) != 0 || len(m.killed) != 0 {
		t.Error("expected no session side effects on fallthrough")
	}
}

func TestPropagateEnv(t *testing.T) {
	env := map[string]string{
		"DISPLAY":       ":1",
		"SSH_AUTH_SOCK": "/tmp/agent.sock",
		"WINDOWID":      "",
		"UNRELATED":     "x",
	}
	m := &mockMultiplexer{}
	r, _, _ := newResolver(m, nil)
	r.LookupEnv = func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	set := r.PropagateEnv(context.Background(), "work")

	if want := []string{"DISPLAY", "SSH_AUTH_SOCK"}; !equalStrings(set, want) {
		t.Errorf("set: got %v, want %v", set, want)
	}
	want := []string{"work DISPLAY=:1", "work SSH_AUTH_SOCK=/tmp/agent.sock"}
	if !equalStrings(m.setCalls, want) {
		t.Errorf("setenv calls: got %v, want %v", m.setCalls, want)
	}
}

func TestPropagateEnv_FailuresAreSkipped(t *testing.T) {
	m := &mockMultiplexer{setErr: map[string]error{"DISPLAY": errors.New("no such session")}}
	r, _, _ := newResolver(m, nil)
	r.LookupEnv = func(k string) (string, bool) {
		if k == "DISPLAY" || k == "SSH_AGENT_PID" {
			return "v", true
		}
		return "", false
	}

	set := r.PropagateEnv(context.Background(), "work")
	if !equalStrings(set, []string{"SSH_AGENT_PID"}) {
		t.Errorf("set: got %v", set)
	}
}

func TestEnvPropagationSetHasNoDuplicates(t *testing.T) {
	seen := map[string]bool{}
	for _, k := range EnvPropagationSet {
		if seen[k] {
			t.Errorf("duplicate variable %s", k)
		}
		seen[k] = true
	}
}

func TestReapZombies_OnlySameGroup(t *testing.T) {
	m := &mockMultiplexer{listings: [][]model.Session{listing(
		"work: 2 windows (group 5) (attached)",
		"_work-1: 1 windows (group 5)",
		"_work-2: 1 windows (group 6)",
	)}}
	r, _, _ := newResolver(m, nil)

	killed := r.ReapZombies(context.Background(), "work")

	if !equalStrings(killed, []string{"_work-1"}) {
		t.Errorf("killed: got %v, want [_work-1]", killed)
	}
	if !equalStrings(m.killed, []string{"_work-1"}) {
		t.Errorf("kill calls: got %v", m.killed)
	}
}

func TestReapZombies_SkipsAttachedAndLookalikes(t *testing.T) {
	m := &mockMultiplexer{listings: [][]model.Session{listing(
		"work: 2 windows (group 5) (attached)",
		"_work-1: 1 windows (group 5) (attached)",
		"_work-x: 1 windows (group 5)",
		"_workshop-1: 1 windows (group 5)",
		"_work-12: 1 windows (group 5)",
	)}}
	r, _, _ := newResolver(m, nil)

	killed := r.ReapZombies(context.Background(), "work")
	if !equalStrings(killed, []string{"_work-12"}) {
		t.Errorf("killed: got %v, want [_work-12]", killed)
	}
}

func TestReapZombies_NoMasterIsNoop(t *testing.T) {
	tests := []struct {
		name    string
		listing []model.Session
	}{
		{name: "ungrouped master", listing: listing("work: 1 windows", "_work-1: 1 windows (group 5)")},
		{name: "master vanished", listing: listing("_work-1: 1 windows (group 5)")},
		{name: "empty", listing: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockMultiplexer{listings: [][]model.Session{tt.listing}}
			r, _, _ := newResolver(m, nil)
			if killed := r.ReapZombies(context.Background(), "work"); len(killed) != 0 {
				t.Errorf("expected no kills, got %v", killed)
			}
			if len(m.killed) != 0 {
				t.Errorf("kill calls: %v", m.killed)
			}
		})
	}
}

func TestReapZombies_NameWithRegexMetacharacters(t *testing.T) {
	m := &mockMultiplexer{listings: [][]model.Session{listing(
		"a.b: 1 windows (group 1)",
		"_axb-1: 1 windows (group 1)",
		"_a.b-1: 1 windows (group 1)",
	)}}
	r, _, _ := newResolver(m, nil)

	if killed := r.ReapZombies(context.Background(), "a.b"); !equalStrings(killed, []string{"_a.b-1"}) {
		t.Errorf("killed: got %v, want [_a.b-1]", killed)
	}
}

func TestResolve_SingleSessionAttaches(t *testing.T) {
	session := listing("work: 2 windows (group 5) (attached)", "_work-3: 1 windows (group 5)")
	m := &mockMultiplexer{listings: [][]model.Session{session}}
	p := &scriptedPrompter{}
	r, _, _ := newResolver(m, p)
	r.Reuse = true
	r.LookupEnv = func(k string) (string, bool) {
		if k == "DISPLAY" {
			return ":0", true
		}
		return "", false
	}

	action, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := AttachExisting{Handle: model.Handle{Backend: "tmux", Name: "work"}, Reuse: true}
	if action != want {
		t.Errorf("action: got %#v, want %#v", action, want)
	}
	if p.calls != 0 {
		t.Error("expected no prompt for a single session")
	}
	if m.listCalls != 2 {
		t.Errorf("list calls: got %d, want 2 (enumerate + reap)", m.listCalls)
	}
	if !equalStrings(m.setCalls, []string{"work DISPLAY=:0"}) {
		t.Errorf("setenv calls: %v", m.setCalls)
	}
	if !equalStrings(m.killed, []string{"_work-3"}) {
		t.Errorf("killed: %v", m.killed)
	}
}

func TestResolve_NoSessionsFallsBackToDefault(t *testing.T) {
	p := &scriptedPrompter{}
	r, _, _ := newResolver(&mockMultiplexer{}, p)

	action, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, ok := action.(DefaultAttach); !ok {
		t.Errorf("action: got %#v, want DefaultAttach", action)
	}
	if p.calls != 0 {
		t.Error("expected no prompt")
	}
}

func TestResolve_ShellBypassesMultiplexer(t *testing.T) {
	m := &mockMultiplexer{listings: [][]model.Session{listing("a: 1 windows", "b: 1 windows", "c: 1 windows")}}
	// a, b, c, NEW, SHELL
	p := &scriptedPrompter{answers: []string{"5"}}
	r, _, _ := newResolver(m, p)
	r.LookupEnv = func(string) (string, bool) { return "set", true }

	action, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if action != (RunShell{Shell: "/bin/zsh"}) {
		t.Errorf("action: got %#v, want RunShell", action)
	}
	if len(m.setCalls) != 0 || len(m.killed) != 0 {
		t.Errorf("expected no backend calls, got setenv=%v kill=%v", m.setCalls, m.killed)
	}
	if m.listCalls != 1 {
		t.Errorf("list calls: got %d, want 1", m.listCalls)
	}
}

func TestResolve_ForcedMenuWithoutSessions(t *testing.T) {
	p := &scriptedPrompter{answers: []string{"1"}}
	r, _, _ := newResolver(&mockMultiplexer{}, p)
	r.AlwaysSelect = true

	action, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if action != (CreateNew{Shell: "/bin/zsh"}) {
		t.Errorf("action: got %#v, want CreateNew", action)
	}
	if p.calls != 1 {
		t.Errorf("prompted %d times, want 1", p.calls)
	}
}

func TestResolve_Interrupted(t *testing.T) {
	m := &mockMultiplexer{listings: [][]model.Session{listing("a: 1 windows", "b: 1 windows")}}
	p := &scriptedPrompter{errs: map[int]error{0: ErrInterrupted}}
	r, _, _ := newResolver(m, p)

	action, err := r.Resolve(context.Background())
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("got err=%v, want ErrInterrupted", err)
	}
	if action != nil {
		t.Errorf("expected no action, got %#v", action)
	}
}
