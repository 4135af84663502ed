package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/timvw/byobu-select/internal/config"
	"github.com/timvw/byobu-select/internal/resolver"
)

func TestSelectWithoutTmuxOffersShell(t *testing.T) {
	home := t.TempDir()
	configDir := filepath.Join(home, ".byobu")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, ".always-select"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("BYOBU_CONFIG_DIR", "")
	t.Setenv("BYOBU_RUN_DIR", "")
	t.Setenv("SHELL", "/bin/sh")
	t.Setenv("PATH", t.TempDir())

	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.AlwaysSelect {
		t.Fatal("expected the always-select marker to be picked up")
	}

	var out, errOut bytes.Buffer
	r, err := newSelectResolver(cfg, nil, strings.NewReader("2\n"), &out, &errOut)
	if err != nil {
		t.Fatalf("building resolver without tmux: %v", err)
	}

	action, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if want := (resolver.RunShell{Shell: "/bin/sh"}); action != want {
		t.Errorf("action: got %#v, want %#v", action, want)
	}
	if !strings.Contains(out.String(), "Run a shell without Byobu (/bin/sh)") {
		t.Errorf("menu output missing shell entry:\n%s", out.String())
	}
}

func TestNewSelectResolverRejectsUnknownBackend(t *testing.T) {
	old := flagMux
	flagMux = "zellij"
	t.Cleanup(func() { flagMux = old })

	if _, err := newSelectResolver(config.Defaults(), nil, strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{}); err == nil {
		t.Error("expected an error for an unknown multiplexer")
	}
}
