package mux

import (
	"fmt"
	"os/exec"
)

// Detect returns a tmux multiplexer if the binary can be found.
// Unlike FromName it fails early, which suits commands that only talk to
// the backend and have no sensible fallback.
func Detect(binary string) (Multiplexer, error) {
	if binary == "" {
		binary = DefaultTmuxBinary
	}
	if _, err := exec.LookPath(binary); err != nil {
		return nil, fmt.Errorf("tmux not found (looked for %q): %w", binary, err)
	}
	return NewTmux(binary), nil
}

// FromName creates a Multiplexer by backend name.
func FromName(name, binary string) (Multiplexer, error) {
	switch name {
	case "", "tmux":
		return NewTmux(binary), nil
	case "screen":
		return nil, fmt.Errorf("screen backend is not supported")
	default:
		return nil, fmt.Errorf("unknown multiplexer: %q (supported: tmux)", name)
	}
}
