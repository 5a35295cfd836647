package bench

import (
	"context"
	"fmt"
	"sort"

	sentsplit "github.com/jamesainslie/go-sentsplit"
)

// SweepResult holds metrics for one mincut value.
type SweepResult struct {
	Mincut  int
	Metrics Metrics
}

// SweepRange generates mincut values from min up to and including max.
func SweepRange(min, max, step int) []int {
	if step <= 0 {
		step = 1
	}
	var values []int
	for v := min; v <= max; v += step {
		values = append(values, v)
	}
	return values
}

// NewFunc builds the segmenter evaluated for one mincut value.
type NewFunc func(mincut int) (*sentsplit.Segmenter, error)

// Sweep evaluates each mincut and returns results sorted by weighted score.
func Sweep(ctx context.Context, docs []*Document, newSeg NewFunc, cfg Config, mincuts []int) ([]SweepResult, error) {
	var results []SweepResult

	for _, mincut := range mincuts {
		seg, err := newSeg(mincut)
		if err != nil {
			return nil, fmt.Errorf("mincut %d: %w", mincut, err)
		}

		m, err := EvaluateCorpus(ctx, seg, docs, cfg)
		_ = seg.Close()
		if err != nil {
			return nil, fmt.Errorf("mincut %d: %w", mincut, err)
		}

		results = append(results, SweepResult{
			Mincut:  mincut,
			Metrics: m,
		})
	}

	// Sort by weighted score descending
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Metrics.WeightedScore > results[j].Metrics.WeightedScore
	})

	return results, nil
}
