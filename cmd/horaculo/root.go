package main

import (
	"github.com/spf13/cobra"

	"github.com/jask/horaculo/internal/tui"
)

type globalFlags struct {
	configPath string
	mock       bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:           "horaculo",
		Short:         "Horaculo: market intelligence dashboard",
		Long:          "horaculo scans macro themes and crypto assets through the analysis backend and shows the result across five terminal screens.",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := wireApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()
			return tui.Run(tui.Deps{
				Context:     cmd.Context(),
				Controller:  a.controller,
				History:     a.history,
				Prefs:       a.prefs,
				Logger:      a.logger.Named("tui"),
				DefaultMode: a.defaultMode,
			})
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default ~/.config/horaculo/config.toml)")
	pf.BoolVar(&flags.mock, "mock", false, "serve the bundled demo payload instead of calling the backend")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(
		newScanCmd(flags),
		newHistoryCmd(flags),
		newTokenCmd(),
		newConfigCmd(flags),
	)
	return rootCmd
}
