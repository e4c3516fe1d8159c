// Package main provides the entry point for the silentcrawl CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for silentcrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "silentcrawl",
		Short: "Quiet site mapper: URLs, directories, and subdomains from one seed",
		Long: `silentcrawl crawls a website breadth-first from a single seed URL,
staying on the seed's domain and its subdomains. It reports three sets:
every URL visited, the directory paths those URLs imply, and the
subdomains discovered along the way.

Crawling is polite by default: requests are spaced out with a randomized
delay and robots.txt disallow rules are honored.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
