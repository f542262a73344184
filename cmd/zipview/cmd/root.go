// Package cmd implements the zipview command line.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/meigma/zipview/config"
	"github.com/meigma/zipview/task"
)

var (
	verbose    bool
	quiet      bool
	configPath string

	logger *slog.Logger
	prefs  *config.Preferences
	runner *task.Runner
)

var rootCmd = &cobra.Command{
	Use:   "zipview",
	Short: "Browse, extract and compare zip archives",
	Long: `zipview reads the central directory of a zip archive and lets you list,
extract and compare its entries.

Extracted files are written through temporary files and checked against the
CRC-32 recorded in the archive.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "do not show progress")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "preferences file (default: user config directory)")

	initList()
	initExtract()
	initCompare()
	rootCmd.AddCommand(infoCmd, listCmd, extractCmd, compareCmd)
}

// Execute runs the root command. Interrupts cancel the running operation.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	runner = task.NewRunner(task.WithLogger(logger))

	if configPath == "" {
		path, err := config.DefaultPath()
		if err != nil {
			logger.Debug("no config directory, using defaults", "error", err)
			prefs = config.Default()
			return nil
		}
		configPath = path
	}
	p, err := config.Load(configPath)
	if err != nil {
		return err
	}
	prefs = p
	logger.Debug("loaded preferences", "path", configPath)
	return nil
}
