package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/go-sentsplit/config"
)

var (
	configSettings settingsFlags
	configList     bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration as TOML",
	Long: `Prints the settings a segment run would use for --lang: the language
default, then the --config file, then any setting flags.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configSettings.register(configCmd.Flags())
	configCmd.Flags().BoolVar(&configList, "list", false, "list the languages with built-in defaults")
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	if configList {
		for _, lang := range config.Builtin().Languages() {
			fmt.Fprintln(cmd.OutOrStdout(), lang)
		}
		return nil
	}

	c, err := configSettings.resolved(cmd)
	if err != nil {
		return err
	}
	data, err := config.Encode(config.Normalize(configSettings.lang), c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
