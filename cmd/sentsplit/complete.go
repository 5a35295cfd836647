package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var completeSettings settingsFlags

var completeCmd = &cobra.Command{
	Use:   "complete <text>...",
	Short: "Report whether text ends at a sentence boundary",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runComplete,
}

func init() {
	completeSettings.register(completeCmd.Flags())
	rootCmd.AddCommand(completeCmd)
}

func runComplete(cmd *cobra.Command, args []string) error {
	opts, err := completeSettings.options(cmd)
	if err != nil {
		return err
	}
	seg, err := newSegmenter(completeSettings.lang, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = seg.Close() }() // Cleanup error ignored in CLI

	text := strings.Join(args, " ")
	complete, err := seg.IsComplete(cmd.Context(), text)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Text: %q\nComplete: %v\n", text, complete)
	return nil
}
