package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quotadeck/quotadeck/internal/config"
	"github.com/quotadeck/quotadeck/internal/logging"
)

func main() {
	log := logging.New()

	var (
		configPath string
		endpoint   string
	)

	root := cobra.Command{
		Use:   "quotadeck",
		Short: "quotadeck is a terminal dashboard for per-account provider quota on a CLI proxy server.",
		RunE: func(_ *cobra.Command, _ []string) error {
			if configPath == "" {
				configPath = config.ConfigPath()
			}
			holder, err := config.NewHolder(configPath, log)
			if err != nil {
				return fmt.Errorf("loading config %s: %w", configPath, err)
			}
			return runDashboard(holder, endpoint, log)
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to settings.json")
	root.Flags().StringVar(&endpoint, "endpoint", "", "management server base URL (overrides config)")

	root.AddCommand(newVersionCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
