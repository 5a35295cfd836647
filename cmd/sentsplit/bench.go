package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	sentsplit "github.com/jamesainslie/go-sentsplit"
	"github.com/jamesainslie/go-sentsplit/internal/bench"
)

var (
	benchSettings  settingsFlags
	benchCorpus    string
	benchTolerance int
	benchWP        float64
	benchWR        float64
	benchSweep     bool
	benchSweepMin  int
	benchSweepMax  int
	benchSweepStep int
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Evaluate segmentation against a gold corpus",
	Long: `Scores predicted sentence boundaries against a directory of gold files
(.txt with one sentence per line, or .json from scripts/process-ud-ewt.go).
With --sweep every mincut in the range is evaluated.`,
	Args: cobra.NoArgs,
	RunE: runBench,
}

func init() {
	benchSettings.register(benchCmd.Flags())
	def := bench.DefaultConfig()
	benchCmd.Flags().StringVar(&benchCorpus, "corpus", "testdata/gold", "directory containing gold files")
	benchCmd.Flags().IntVar(&benchTolerance, "tolerance", def.Tolerance, "character tolerance for boundary matching")
	benchCmd.Flags().Float64Var(&benchWP, "wp", def.PrecisionWeight, "precision weight")
	benchCmd.Flags().Float64Var(&benchWR, "wr", def.RecallWeight, "recall weight")
	benchCmd.Flags().BoolVar(&benchSweep, "sweep", false, "run a mincut sweep")
	benchCmd.Flags().IntVar(&benchSweepMin, "sweep-min", 0, "sweep minimum mincut")
	benchCmd.Flags().IntVar(&benchSweepMax, "sweep-max", 20, "sweep maximum mincut")
	benchCmd.Flags().IntVar(&benchSweepStep, "sweep-step", 1, "sweep step size")
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, _ []string) error {
	docs, err := bench.LoadCorpus(benchCorpus)
	if err != nil {
		return fmt.Errorf("loading corpus: %w", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Loaded %d documents from %s\n\n", len(docs), benchCorpus)

	opts, err := benchSettings.options(cmd)
	if err != nil {
		return err
	}
	cfg := bench.Config{
		Tolerance:       benchTolerance,
		PrecisionWeight: benchWP,
		RecallWeight:    benchWR,
	}

	if benchSweep {
		return runSweep(cmd, out, docs, opts, cfg)
	}

	seg, err := newSegmenter(benchSettings.lang, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = seg.Close() }() // Cleanup error ignored in CLI

	m, err := bench.EvaluateCorpus(cmd.Context(), seg, docs, cfg)
	if err != nil {
		return err
	}
	printMetrics(out, m)
	return nil
}

func runSweep(cmd *cobra.Command, out io.Writer, docs []*bench.Document, opts []sentsplit.Option, cfg bench.Config) error {
	mincuts := bench.SweepRange(benchSweepMin, benchSweepMax, benchSweepStep)
	newSeg := func(mincut int) (*sentsplit.Segmenter, error) {
		return newSegmenter(benchSettings.lang, append(slices.Clip(opts), sentsplit.WithMincut(mincut))...)
	}

	results, err := bench.Sweep(cmd.Context(), docs, newSeg, cfg, mincuts)
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}

	fmt.Fprintf(out, "Mincut Sweep Results (wp=%.1f, wr=%.1f)\n", cfg.PrecisionWeight, cfg.RecallWeight)
	fmt.Fprintln(out, strings.Repeat("-", 50))
	fmt.Fprintf(out, "%-8s %-8s %-8s %-8s %-8s\n", "Mincut", "Prec", "Rec", "F1", "Weighted")

	// Print sorted by mincut for readability
	byMincut := slices.Clone(results)
	slices.SortFunc(byMincut, func(a, b bench.SweepResult) int { return a.Mincut - b.Mincut })
	for _, r := range byMincut {
		fmt.Fprintf(out, "%-8d %-8.2f %-8.2f %-8.2f %-8.2f\n",
			r.Mincut, r.Metrics.Precision, r.Metrics.Recall, r.Metrics.F1, r.Metrics.WeightedScore)
	}

	fmt.Fprintln(out, strings.Repeat("-", 50))
	if len(results) > 0 {
		best := results[0]
		fmt.Fprintf(out, "Optimal: %d (Weighted: %.2f)\n", best.Mincut, best.Metrics.WeightedScore)
	}
	return nil
}

func printMetrics(out io.Writer, m bench.Metrics) {
	fmt.Fprintf(out, "Precision: %.2f  Recall: %.2f  F1: %.2f  Weighted: %.2f\n",
		m.Precision, m.Recall, m.F1, m.WeightedScore)
	fmt.Fprintf(out, "(TP: %d, FP: %d, FN: %d)\n", m.TruePositives, m.FalsePositives, m.FalseNegatives)
}
