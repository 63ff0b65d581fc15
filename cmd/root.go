// Package cmd defines the CLI commands for the profile-scout executable.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile-scout",
		Short: "Discovers and qualifies social profiles by walking the follower graph",
		Long: `profile-scout runs a headless browsing session against the platform,
seeds a crawl from configured topics, and expands through follower lists,
keeping only the profiles that pass every qualification stage. Progress is
persisted so an interrupted run resumes where it stopped.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./scout.yaml)")
	cmd.AddCommand(newHuntCmd())
	return cmd
}

// Execute runs the CLI.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
