package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/phanxgames/motion/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "motion",
	Short: "Motion is a declarative animation orchestration engine",
	Long: `Motion resolves named variants into per-property animations, staggers them
through a node tree and sequences entrances and exits. This tool checks
definition files and simulates scripted scenes without a renderer.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn or error")
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	return logging.New(logging.ParseLevel(level))
}
