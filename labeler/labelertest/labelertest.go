// Package labelertest provides deterministic labelers for tests.
package labelertest

import (
	"context"
	"sync/atomic"
	"unicode"

	"github.com/jamesainslie/go-sentsplit/features"
	"github.com/jamesainslie/go-sentsplit/labeler"
)

// Punctuation tags a sentence-final mark as EOS when it ends the input, or
// when exactly one whitespace character separates it from the next
// non-space character. It approximates the behaviour of the trained English
// model on simple prose: a double space after a period is not a boundary.
func Punctuation() labeler.Labeler {
	return labeler.Func(func(_ context.Context, bundles []features.Bundle) ([]labeler.Tag, error) {
		chars := features.Chars(bundles)
		tags := make([]labeler.Tag, len(chars))
		for i, c := range chars {
			if !isFinal(c) {
				continue
			}
			switch {
			case i == len(chars)-1:
				tags[i] = labeler.EOS
			case unicode.IsSpace(chars[i+1]) && (i+2 == len(chars) || !unicode.IsSpace(chars[i+2])):
				tags[i] = labeler.EOS
			}
		}
		return tags, nil
	})
}

// Positions tags the given indices as EOS and everything else as O.
func Positions(eos ...int) labeler.Labeler {
	return labeler.Func(func(_ context.Context, bundles []features.Bundle) ([]labeler.Tag, error) {
		tags := make([]labeler.Tag, len(bundles))
		for _, i := range eos {
			if i >= 0 && i < len(tags) {
				tags[i] = labeler.EOS
			}
		}
		return tags, nil
	})
}

// Failing returns err from every Label call.
func Failing(err error) labeler.Labeler {
	return labeler.Func(func(context.Context, []features.Bundle) ([]labeler.Tag, error) {
		return nil, err
	})
}

// Truncating returns one tag fewer than requested.
func Truncating() labeler.Labeler {
	return labeler.Func(func(_ context.Context, bundles []features.Bundle) ([]labeler.Tag, error) {
		if len(bundles) == 0 {
			return nil, nil
		}
		return make([]labeler.Tag, len(bundles)-1), nil
	})
}

// Backend counts the labelers it opens and closes. Released is set once the
// backend itself is closed.
type Backend struct {
	New      func() labeler.Labeler
	Opened   atomic.Int32
	Closed   atomic.Int32
	Released atomic.Bool
}

// NewLabeler opens a labeler from b.New.
func (b *Backend) NewLabeler() (labeler.Labeler, error) {
	b.Opened.Add(1)
	return &counted{Labeler: b.New(), closed: &b.Closed}, nil
}

// Close marks the backend released.
func (b *Backend) Close() error {
	b.Released.Store(true)
	return nil
}

type counted struct {
	labeler.Labeler
	closed *atomic.Int32
}

func (c *counted) Close() error {
	c.closed.Add(1)
	return c.Labeler.Close()
}

func isFinal(c rune) bool {
	switch c {
	case '.', '?', '!', '。', '？', '！', '．':
		return true
	}
	return false
}
