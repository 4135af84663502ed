package cmd

import (
	"errors"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/timvw/byobu-select/internal/config"
	"github.com/timvw/byobu-select/internal/launch"
	"github.com/timvw/byobu-select/internal/logging"
	"github.com/timvw/byobu-select/internal/mux"
	telem "github.com/timvw/byobu-select/internal/otel"
	"github.com/timvw/byobu-select/internal/resolver"
)

// runSelect resolves the session and replaces this process with it.
func runSelect(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cfg, tel, err := setup(ctx)
	if err != nil {
		return err
	}

	r, err := newSelectResolver(cfg, metricsOf(tel), os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		teardown(ctx, tel)
		return err
	}

	action, err := r.Resolve(ctx)
	// The signal context is done after an interrupt; flush with a fresh one.
	flushCtx := cmd.Context()
	if errors.Is(err, resolver.ErrInterrupted) {
		logging.Debugf("selection interrupted")
		teardown(flushCtx, tel)
		return nil
	}
	if err != nil {
		teardown(flushCtx, tel)
		return err
	}

	bin := launch.Binaries{Tmux: cfg.TmuxBinary, Wrapper: cfg.WrapperBinary}
	teardown(flushCtx, tel)
	stop()
	if err := launch.Exec(action, bin); err != nil {
		logging.Errorf("launching %s: %v", action.Kind(), err)
		return err
	}
	return nil
}

// newSelectResolver builds the interactive resolver. The backend binary is
// not looked up here: a missing tmux lists as zero sessions so the shell
// entry stays reachable.
func newSelectResolver(cfg *config.Config, metrics *telem.Metrics, in io.Reader, out, errOut io.Writer) (*resolver.Resolver, error) {
	m, err := mux.FromName(flagMux, cfg.TmuxBinary)
	if err != nil {
		return nil, err
	}
	return &resolver.Resolver{
		Mux:          m,
		Shell:        cfg.Shell,
		Reuse:        cfg.ReuseSessions,
		AlwaysSelect: cfg.AlwaysSelect,
		Prompter:     &resolver.LinePrompter{In: in, Out: out},
		Out:          out,
		ErrOut:       errOut,
		Metrics:      metrics,
	}, nil
}
