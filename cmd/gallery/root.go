package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fdqms/gallery-backend/pkg/cli"
)

// Global flags
var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Gallery account lifecycle service",
	Long: `Gallery runs deferred account deletion for the gallery backend.

A deletion request schedules the account for removal once the grace period
has elapsed. Logging in again cancels it. A periodic sweep purges matured
accounts: their images, posts, friendships and the user record.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with a status derived from the
// returned error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults and GALLERY_* environment when empty)")
}
