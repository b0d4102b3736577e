package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quotadeck/quotadeck/internal/appupdate"
	"github.com/quotadeck/quotadeck/internal/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version and check for a newer release",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Printf("quotadeck %s (%s, %s)\n", version.Version, version.Commit, version.Date)

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
			defer cancel()

			result, err := appupdate.Check(ctx, appupdate.Options{CurrentVersion: version.Version})
			if err != nil || result.LatestVersion == "" {
				return
			}
			if result.UpdateAvailable {
				fmt.Printf("update available: %s\n", result.LatestVersion)
			}
		},
	}
}
