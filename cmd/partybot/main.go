// Package main is the entry point for the partybot CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/plu-programming-party/partybot/internal/telemetry"
)

// Version information set at build time.
var version = "0.2.0"

// Global flags.
var verbose bool

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "partybot",
		Short: "Programming Party website assistant and story voting service",
		Long: `Partybot turns chat messages into committed website changes via a
tool-calling model loop, and runs the webwritten collaborative
story voting API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")

	root.AddCommand(newServeCmd())
	root.AddCommand(newAskCmd())
	root.AddCommand(newWinnerCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return telemetry.NewLogger(os.Stdout, level)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
