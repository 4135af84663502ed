package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/timvw/byobu-select/internal/menu"
	"github.com/timvw/byobu-select/internal/prefs"
)

var flagTheme string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Interactive byobu configuration menu",
	Long: `Open the byobu configuration menu: quick start help, status
notifications, the escape key and whether byobu launches at login.

Changes that affect the running byobu mark it for reload.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("config menu requires a terminal")
		}

		ctx := cmd.Context()
		cfg, tel, err := setup(ctx)
		if err != nil {
			return err
		}
		defer teardown(ctx, tel)

		if flagTheme != "" {
			cfg.Theme = flagTheme
		}
		store := prefs.New(cfg, metricsOf(tel))

		mu := &menu.Menu{
			Prefs: store,
			Theme: menu.ThemeByName(cfg.Theme),
		}
		return mu.Run(ctx)
	},
}

func init() {
	configCmd.Flags().StringVar(&flagTheme, "theme", "",
		"Color theme: dark, light (default from config)")
	rootCmd.AddCommand(configCmd)
}
