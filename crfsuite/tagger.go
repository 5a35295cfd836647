package crfsuite

import (
	"context"
	"fmt"
	"math"

	"github.com/jamesainslie/go-sentsplit/features"
	"github.com/jamesainslie/go-sentsplit/labeler"
)

// Item is the attribute set of one position. Every attribute has weight 1.
type Item []string

// Tag returns the most likely label sequence for items.
func (m *Model) Tag(items []Item) ([]string, error) {
	ids, err := m.viterbi(items)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		label, ok := m.labels.str(id)
		if !ok {
			return nil, fmt.Errorf("%w: no string for label %d", ErrInvalidModel, id)
		}
		out[i] = label
	}
	return out, nil
}

func (m *Model) viterbi(items []Item) ([]int, error) {
	n, nl := len(items), m.NumLabels()
	if n == 0 {
		return nil, nil
	}
	if nl == 0 {
		return nil, fmt.Errorf("%w: model has no labels", ErrInvalidModel)
	}

	// state[t*nl+j] = score of label j at position t
	state := make([]float64, n*nl)
	for t, item := range items {
		row := state[t*nl : (t+1)*nl]
		for _, attr := range item {
			if aid, ok := m.AttributeID(attr); ok {
				m.addState(row, aid, 1)
			}
		}
	}

	// best[t*nl+j] = best score of a path ending in label j at position t
	best := make([]float64, n*nl)
	// back[t*nl+j] = previous label on that path
	back := make([]int, n*nl)
	copy(best[:nl], state[:nl])

	for t := 1; t < n; t++ {
		for j := range nl {
			maxScore, argmax := math.Inf(-1), 0
			for i := range nl {
				score := best[(t-1)*nl+i] + m.trans[i*nl+j]
				if score > maxScore {
					maxScore, argmax = score, i
				}
			}
			best[t*nl+j] = maxScore + state[t*nl+j]
			back[t*nl+j] = argmax
		}
	}

	// Backtrack from the best final label
	ids := make([]int, n)
	last := best[(n-1)*nl:]
	maxScore := math.Inf(-1)
	for j, score := range last {
		if score > maxScore {
			maxScore, ids[n-1] = score, j
		}
	}
	for t := n - 1; t > 0; t-- {
		ids[t-1] = back[t*nl+ids[t]]
	}
	return ids, nil
}

// NewLabeler returns a Tagger over m, making Model a labeler.Backend.
func (m *Model) NewLabeler() (labeler.Labeler, error) {
	return NewTagger(m)
}

// Tagger adapts a Model to the labeler.Labeler interface. Taggers hold no
// state of their own and may be used concurrently.
type Tagger struct {
	model *Model
	eos   int
}

// NewTagger checks that m carries the O and EOS labels and returns a Tagger.
func NewTagger(m *Model) (*Tagger, error) {
	eos, ok := m.LabelID(labeler.EOS.String())
	if !ok {
		return nil, fmt.Errorf("%w: no %s label", ErrInvalidModel, labeler.EOS)
	}
	if _, ok := m.LabelID(labeler.O.String()); !ok {
		return nil, fmt.Errorf("%w: no %s label", ErrInvalidModel, labeler.O)
	}
	return &Tagger{model: m, eos: eos}, nil
}

// Label tags each bundle O or EOS.
func (t *Tagger) Label(ctx context.Context, bundles []features.Bundle) ([]labeler.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items := make([]Item, len(bundles))
	for i, b := range bundles {
		items[i] = b.Attributes
	}
	ids, err := t.model.viterbi(items)
	if err != nil {
		return nil, err
	}
	tags := make([]labeler.Tag, len(ids))
	for i, id := range ids {
		if id == t.eos {
			tags[i] = labeler.EOS
		}
	}
	return tags, nil
}

// Close is a no-op; the Model owns the mapped file.
func (t *Tagger) Close() error { return nil }
