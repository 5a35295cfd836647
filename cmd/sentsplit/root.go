package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	sentsplit "github.com/jamesainslie/go-sentsplit"
	"github.com/jamesainslie/go-sentsplit/config"
)

var (
	verbose    bool
	configPath string
	logger     = slog.Default()
)

// newSegmenter is replaced in tests.
var newSegmenter = sentsplit.New

var rootCmd = &cobra.Command{
	Use:   "sentsplit",
	Short: "Split text into sentences",
	Long: `sentsplit splits text into sentences with a character-level boundary
model, regex rules and length limits configured per language.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "TOML file with per-language settings")
}

// fileOverrides returns the settings the --config file holds for lang.
func fileOverrides(lang string) (config.Overrides, error) {
	if configPath == "" {
		return config.Overrides{}, nil
	}
	f, unknown, err := config.LoadFile(configPath)
	if err != nil {
		return config.Overrides{}, err
	}
	for _, key := range unknown {
		logger.Warn("ignoring unknown config key", "path", configPath, "key", key)
	}
	ov, _ := f.For(lang)
	return ov, nil
}
