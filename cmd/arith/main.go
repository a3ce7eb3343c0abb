// Package main is the entry point for the arith calculator.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "arith",
		Short:         "Arithmetic expression evaluator",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	rootCmd.Version = version + " (commit=" + commit + ", built=" + date + ")"
	rootCmd.SetVersionTemplate("arith version {{.Version}}\n")

	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (default info, env LOG_LEVEL)")

	rootCmd.AddCommand(newREPLCmd(), newEvalCmd(), newRunCmd(), newServeCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the console logger from --log-level or LOG_LEVEL.
func newLogger(cmd *cobra.Command) zerolog.Logger {
	levelName := envOrDefault("LOG_LEVEL", "info")
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		levelName = v
	}
	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).
		With().Timestamp().Str("service", "arith").Logger().
		Level(level)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// formatResult prints v in its shortest round-trip form.
func formatResult(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
