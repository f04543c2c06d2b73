package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgPath     string
	datasetName string
	sourcePath  string
	logLevel    string
	logFormat   string

	logger *slog.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "trellis.hcl", "Path to dataset config file")
	rootCmd.PersistentFlags().StringVarP(&datasetName, "dataset", "d", "", "Dataset name from the config (default: first)")
	rootCmd.PersistentFlags().StringVarP(&sourcePath, "source", "s", "", "Dataset file to open directly, bypassing the config")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
}

var rootCmd = &cobra.Command{
	Use:   "trellis",
	Short: "Trellis: a browser for nested, repeated-field datasets",
	Long: `Trellis explores datasets of nested records (JSON / JSONL). Field paths
may contain "*" wildcard segments that repeat over every element of an
array, at any depth; trellis resolves them into concrete values and
renders each repetition as its own block.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = newLogger(logLevel, logFormat, os.Stderr)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the process logger. It does not touch the slog default,
// so tests can construct isolated instances.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if formatStr == "json" {
		handler = slog.NewJSONHandler(outW, opts)
	} else {
		handler = slog.NewTextHandler(outW, opts)
	}
	return slog.New(handler)
}
