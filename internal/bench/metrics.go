package bench

import (
	"context"
	"fmt"
	"unicode/utf8"

	sentsplit "github.com/jamesainslie/go-sentsplit"
)

// Config holds evaluation parameters.
type Config struct {
	Tolerance       int // character match tolerance
	PrecisionWeight float64
	RecallWeight    float64
}

// DefaultConfig returns default evaluation configuration.
func DefaultConfig() Config {
	return Config{
		Tolerance:       3,
		PrecisionWeight: 1.0,
		RecallWeight:    1.0,
	}
}

// Metrics holds evaluation results.
type Metrics struct {
	TruePositives  int
	FalsePositives int
	FalseNegatives int
	Precision      float64
	Recall         float64
	F1             float64
	WeightedScore  float64
}

// Add returns the counts of m and o summed, with the ratios recomputed.
func (m Metrics) Add(o Metrics, cfg Config) Metrics {
	return Score(m.TruePositives+o.TruePositives, m.FalsePositives+o.FalsePositives, m.FalseNegatives+o.FalseNegatives, cfg)
}

// Score computes precision, recall, F1 and the weighted score from counts.
func Score(tp, fp, fn int, cfg Config) Metrics {
	m := Metrics{
		TruePositives:  tp,
		FalsePositives: fp,
		FalseNegatives: fn,
	}

	if tp+fp > 0 {
		m.Precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		m.Recall = float64(tp) / float64(tp+fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}

	wp := cfg.PrecisionWeight
	wr := cfg.RecallWeight
	if wp+wr > 0 {
		m.WeightedScore = (wp*m.Precision + wr*m.Recall) / (wp + wr)
	}
	return m
}

// Evaluate compares predicted boundaries against ground truth.
// Uses greedy left-to-right matching within tolerance.
func Evaluate(predicted, truth []int, cfg Config) Metrics {
	matched := make([]bool, len(truth))
	tp := 0

	for _, p := range predicted {
		for i, t := range truth {
			if matched[i] {
				continue
			}
			diff := p - t
			if diff < 0 {
				diff = -diff
			}
			if diff <= cfg.Tolerance {
				matched[i] = true
				tp++
				break
			}
		}
	}

	return Score(tp, len(predicted)-tp, len(truth)-tp, cfg)
}

// Boundaries returns the rune offset just past each sentence. The end of
// the text is not a boundary.
func Boundaries(sentences []string) []int {
	var out []int
	offset := 0
	for _, s := range sentences {
		offset += utf8.RuneCountInString(s)
		out = append(out, offset)
	}
	if len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out
}

// Segmenter is the part of sentsplit.Segmenter the benchmark uses.
type Segmenter interface {
	Segment(ctx context.Context, text string, opts ...sentsplit.CallOption) ([]string, error)
}

// EvaluateDocument segments doc and scores the internal boundaries.
func EvaluateDocument(ctx context.Context, seg Segmenter, doc *Document, cfg Config) (Metrics, error) {
	sentences, err := seg.Segment(ctx, doc.Text, sentsplit.Strip(false))
	if err != nil {
		return Metrics{}, fmt.Errorf("segmenting %s: %w", doc.ID, err)
	}

	truth := doc.Boundaries
	if n := len(truth); n > 0 && truth[n-1] == utf8.RuneCountInString(doc.Text) {
		truth = truth[:n-1]
	}
	return Evaluate(Boundaries(sentences), truth, cfg), nil
}

// EvaluateCorpus scores every document and aggregates the counts.
func EvaluateCorpus(ctx context.Context, seg Segmenter, docs []*Document, cfg Config) (Metrics, error) {
	var total Metrics
	for _, doc := range docs {
		m, err := EvaluateDocument(ctx, seg, doc, cfg)
		if err != nil {
			return Metrics{}, err
		}
		total = total.Add(m, cfg)
	}
	return total, nil
}
