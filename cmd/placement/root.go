package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/placement/pkg/cli"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "placement",
	Short: "Placement - conditional layout targeting and rendering",
	Long: `Placement decides which reusable layouts appear in which slots of a site
page and renders them.

Each layout carries display conditions made of OR-groups of AND-ed atoms over
request categories (post type, archive, user role, cart state, ...). For a
slot the service filters candidates by slot, hook and expiration, evaluates
their conditions, orders the survivors by priority and renders their bodies
with magic tags such as {post_title} substituted.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil && !cli.Silent(err) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.ExitCode(err))
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults apply when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
