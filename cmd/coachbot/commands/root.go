// Package commands implements the CoachBot CLI using cobra.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root CLI command. CoachBot is a single long-running
// daemon, so a bare invocation starts it directly; `serve` is the explicit
// alias and `setup` creates the initial configuration.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "coachbot",
		Short: "CoachBot - daily check-in coach over Discord DMs",
		Long: `CoachBot sends scheduled morning and evening check-in prompts to a single
user over Discord DMs and appends their replies to today's Craft daily note.

Examples:
  coachbot                  start the daemon
  coachbot serve --config ./config.yaml
  coachbot setup`,
		Version: version,
		RunE:    runServe,
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newSetupCmd(),
	)

	rootCmd.PersistentFlags().StringP("config", "c", "", "path to the configuration file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	return rootCmd
}
