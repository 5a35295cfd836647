package sentsplit

import (
	"context"
	"errors"
	"fmt"
	"unicode"

	"github.com/jamesainslie/go-sentsplit/features"
	"github.com/jamesainslie/go-sentsplit/internal/resolve"
	"github.com/jamesainslie/go-sentsplit/internal/whitespace"
	"github.com/jamesainslie/go-sentsplit/labeler"
)

// splitFragments cuts text after every newline. Newlines stay with the
// fragment they end; an empty tail is dropped.
func splitFragments(text string) [][]rune {
	var frags [][]rune
	chars := []rune(text)
	start := 0
	for i, c := range chars {
		if c == '\n' {
			frags = append(frags, chars[start:i+1])
			start = i + 1
		}
	}
	if start < len(chars) {
		frags = append(frags, chars[start:])
	}
	return frags
}

func lastNonSpace(chars []rune) int {
	for i := len(chars) - 1; i >= 0; i-- {
		if !unicode.IsSpace(chars[i]) {
			return i
		}
	}
	return -1
}

// segmentLine runs the full pipeline over one input.
func (s *Segmenter) segmentLine(ctx context.Context, text string, strip bool) ([]string, error) {
	frags := splitFragments(text)
	if len(frags) == 0 {
		return []string{}, nil
	}

	l, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Release(l)

	res := resolve.New(resolve.Policy{
		StripSpaces: strip,
		Mincut:      s.cfg.Mincut,
		Maxcut:      s.cfg.Maxcut,
	})
	for i, chars := range frags {
		tags, err := s.tagFragment(ctx, l, chars)
		if err != nil {
			return nil, fmt.Errorf("fragment %d: %w", i, err)
		}
		if err := s.adjuster.Apply(chars, tags); err != nil {
			return nil, fmt.Errorf("fragment %d: %w", i, err)
		}
		if err := res.Fragment(chars, tags); err != nil {
			if errors.Is(err, resolve.ErrIrreducible) {
				return nil, fmt.Errorf("%w: %w", ErrIrreducibleSpan, err)
			}
			return nil, fmt.Errorf("fragment %d: %w", i, err)
		}
	}

	sents := res.Sentences()
	if sents == nil {
		sents = []string{}
	}
	s.logger.Debug("segmented line",
		"fragments", len(frags),
		"sentences", len(sents),
	)
	return sents, nil
}

// tagFragment labels one fragment and returns one tag per original
// character.
func (s *Segmenter) tagFragment(ctx context.Context, l labeler.Labeler, chars []rune) ([]labeler.Tag, error) {
	input := chars
	var runs []whitespace.Run
	if s.cfg.HandleMultipleSpaces {
		input, runs = whitespace.Collapse(chars)
	}

	tags, err := labeler.Run(ctx, l, features.Extract(input, s.cfg.Ngram))
	if err != nil {
		return nil, fmt.Errorf("labeling: %w", err)
	}
	if len(runs) == 0 {
		return tags, nil
	}
	return whitespace.Restore(tags, runs, len(chars))
}
