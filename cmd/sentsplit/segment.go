package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	sentsplit "github.com/jamesainslie/go-sentsplit"
)

// batchPerCore is how many lines each worker receives per SegmentAll call.
const batchPerCore = 64

var (
	segmentSettings settingsFlags
	segmentOutput   string
	segmentCores    int
)

var segmentCmd = &cobra.Command{
	Use:     "segment [input]",
	Aliases: []string{"split"},
	Short:   "Segment a text file into one sentence per line",
	Long: `Segments every line of the input and writes one sentence per line.
Without an input file the text is read from stdin. The output defaults to
<input>.segment, or stdout when reading stdin; "-o -" forces stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSegment,
}

func init() {
	segmentSettings.register(segmentCmd.Flags())
	segmentCmd.Flags().StringVarP(&segmentOutput, "output", "o", "", "output file")
	segmentCmd.Flags().IntVarP(&segmentCores, "cores", "c", runtime.NumCPU(), "number of lines segmented in parallel")
	rootCmd.AddCommand(segmentCmd)
}

func runSegment(cmd *cobra.Command, args []string) error {
	opts, err := segmentSettings.options(cmd)
	if err != nil {
		return err
	}
	seg, err := newSegmenter(segmentSettings.lang, append(opts, sentsplit.WithPoolSize(segmentCores))...)
	if err != nil {
		return err
	}
	defer func() { _ = seg.Close() }() // Cleanup error ignored in CLI

	var (
		in     io.Reader = cmd.InOrStdin()
		out    io.Writer = cmd.OutOrStdout()
		inName           = "stdin"
		output           = segmentOutput
	)
	if len(args) == 1 {
		inName = args[0]
		f, err := os.Open(inName)
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		in = f
		if output == "" {
			output = inName + ".segment"
		}
	}
	outName := "stdout"
	if output != "" && output != "-" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		out, outName = f, output
	}

	lines, sentences, err := segmentStream(cmd.Context(), seg, in, out, max(segmentCores, 1)*batchPerCore)
	if err != nil {
		return err
	}
	logger.Info("segmented input",
		"input", inName,
		"output", outName,
		"lines", lines,
		"sentences", sentences,
	)
	return nil
}

// segmentStream segments in line by line and writes one sentence per line
// to out, batching lines so the pool stays busy.
func segmentStream(ctx context.Context, seg *sentsplit.Segmenter, in io.Reader, out io.Writer, batchSize int) (lines, sentences int, err error) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	w := bufio.NewWriter(out)

	batch := make([]string, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		results, err := seg.SegmentAll(ctx, batch)
		if err != nil {
			return err
		}
		for _, sents := range results {
			for _, s := range sents {
				if _, err := fmt.Fprintln(w, s); err != nil {
					return fmt.Errorf("writing output: %w", err)
				}
			}
			sentences += len(sents)
		}
		batch = batch[:0]
		return nil
	}

	for scanner.Scan() {
		batch = append(batch, scanner.Text())
		lines++
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return lines, sentences, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return lines, sentences, fmt.Errorf("reading input: %w", err)
	}
	if err := flush(); err != nil {
		return lines, sentences, err
	}
	return lines, sentences, w.Flush()
}
