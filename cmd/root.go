package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/timvw/byobu-select/internal/config"
	"github.com/timvw/byobu-select/internal/logging"
	"github.com/timvw/byobu-select/internal/mux"
	telem "github.com/timvw/byobu-select/internal/otel"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=...".
var Version = "dev"

var (
	// Global flags.
	flagMux      string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "byobu-select",
	Short: "Choose the byobu session this terminal attaches to",
	Long: `byobu-select runs when a byobu terminal starts and decides what it
becomes: an existing tmux session, a new byobu session, or a plain shell.

With more than one session (or ~/.byobu/.always-select present) a numbered
menu is shown. Before attaching, display and agent variables are pushed into
the chosen session and orphaned group sessions left behind by earlier
clients are killed. The process then execs the chosen command.`,
	Version:      Version,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSelect(cmd)
	},
}

// Execute runs the root command.
func Execute() {
	rootCmd.Version = Version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagMux, "mux", "", "terminal multiplexer backend (only tmux is supported)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
}

// setup loads configuration and starts logging and telemetry. Telemetry
// failures are reported and otherwise ignored.
func setup(ctx context.Context) (*config.Config, *telem.Telemetry, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}

	level := logging.ParseLevel(cfg.LogLevel)
	if err := logging.ConfigureFile(level, logFilePath(cfg, level)); err != nil {
		fmt.Fprintf(os.Stderr, "warning: log file: %v\n", err)
	}
	if cfg.ConfigFile != "" {
		logging.Debugf("config: loaded %s", cfg.ConfigFile)
	}

	// Wire build version into OTEL service metadata
	telem.Version = Version

	tel, err := telem.Init(ctx, telem.OTELConfig{
		Endpoint: cfg.OTELEndpoint,
		Headers:  cfg.OTELHeaders,
	})
	if err != nil {
		logging.Warnf("otel init failed: %v", err)
	}
	return cfg, tel, nil
}

// teardown flushes telemetry and closes the log file. It runs before exec,
// which never returns.
func teardown(ctx context.Context, tel *telem.Telemetry) {
	if err := tel.Shutdown(ctx); err != nil {
		logging.Debugf("otel shutdown: %v", err)
	}
	logging.Close()
}

// logFilePath picks the log destination. Debug logs go to the run directory
// so they do not interleave with the session menu; otherwise stderr.
func logFilePath(cfg *config.Config, level logging.LogLevel) string {
	if cfg.LogFile != "" {
		return cfg.LogFile
	}
	if level == logging.LevelDebug {
		return filepath.Join(cfg.RunDir, "select.log")
	}
	return ""
}

// getMultiplexer returns the configured or auto-detected multiplexer.
func getMultiplexer(cfg *config.Config) (mux.Multiplexer, error) {
	if flagMux != "" {
		return mux.FromName(flagMux, cfg.TmuxBinary)
	}
	return mux.Detect(cfg.TmuxBinary)
}

func metricsOf(tel *telem.Telemetry) *telem.Metrics {
	if tel == nil {
		return nil
	}
	return tel.Metrics
}
