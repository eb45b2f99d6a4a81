package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/cheval/config"
	"github.com/bnema/cheval/internal/infrastructure/logger"
)

var version = "dev"

var (
	configPath string
	logLevel   string
	jsonOutput bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "cheval",
	Short: "Drive ffmpeg and yt-dlp from exact, validated recipes",
	Long: `cheval - video toolbox around ffmpeg and yt-dlp

Every operation is turned into one exact argument vector, run with live
progress, and recorded in a local history.

Run 'cheval serve' for the HTTP API.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: discovered)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("cheval {{.Version}}\n")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	// Diagnostics go to stderr; stdout carries command output.
	logger.SetOutput(os.Stderr)

	path := configPath
	if path == "" {
		found, err := config.Discover()
		switch {
		case errors.Is(err, config.ErrNotFound):
		case err != nil:
			return err
		default:
			path = found
		}
	}

	c, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if err := logger.SetLevel(c.LogLevel); err != nil {
		return err
	}
	if path != "" {
		logger.Debug.Printf("loaded config from %s", path)
	}
	cfg = c
	return nil
}

// exitError carries a process exit code without printing anything more.
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
