package main

import (
	"fmt"
	"os"

	"github.com/phanxgames/hotspot"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "hotspot",
	Short: "Interactive image mapper",
	Long: `hotspot shows a background image with clickable hotspots that zoom
into nested content, reveal side panels and walk through markers with
scroll, swipe and keyboard input.

Mappers are described by a layout file (YAML or JSON). Settings come from
an optional config file overlaid with HOTSPOT_* environment variables.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "hotspot.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func loadConfig() (*hotspot.Config, error) {
	cfg, err := hotspot.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	if verbose && cfg.LogLevel != "trace" {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *hotspot.Config) zerolog.Logger {
	return hotspot.NewLogger(cfg, os.Stderr)
}
