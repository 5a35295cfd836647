// Package labeler defines the character tagging capability the segmentation
// pipeline consumes, and a pool that hands out per-worker instances.
package labeler

import (
	"context"
	"errors"
	"fmt"

	"github.com/jamesainslie/go-sentsplit/features"
)

// Tag is the label assigned to a single character.
type Tag uint8

const (
	// O marks a character that does not end a sentence.
	O Tag = iota
	// EOS marks the last character of a sentence.
	EOS
)

// String returns the label name used by the trained models.
func (t Tag) String() string {
	switch t {
	case O:
		return "O"
	case EOS:
		return "EOS"
	default:
		return fmt.Sprintf("Tag(%d)", uint8(t))
	}
}

// ParseTag maps a model label to a Tag. Anything other than "EOS" is O.
func ParseTag(label string) Tag {
	if label == "EOS" {
		return EOS
	}
	return O
}

// ErrLengthMismatch indicates a labeler returned a different number of tags
// than it was given bundles.
var ErrLengthMismatch = errors.New("labeler: tag count does not match input length")

// Labeler assigns one tag per feature bundle.
type Labeler interface {
	Label(ctx context.Context, bundles []features.Bundle) ([]Tag, error)
	Close() error
}

// Backend opens labeler instances over a shared model resource.
type Backend interface {
	// NewLabeler returns an instance owned by the caller.
	NewLabeler() (Labeler, error)
	Close() error
}

// Func adapts a plain function to the Labeler interface.
type Func func(ctx context.Context, bundles []features.Bundle) ([]Tag, error)

// Label calls f.
func (f Func) Label(ctx context.Context, bundles []features.Bundle) ([]Tag, error) {
	return f(ctx, bundles)
}

// Close is a no-op.
func (f Func) Close() error { return nil }

// Shared is a Backend that hands out the same reentrant Labeler to every
// caller. Closing the backend closes the labeler.
type Shared struct {
	Labeler Labeler
}

// NewLabeler returns the shared labeler wrapped so that per-instance Close
// calls do not release it.
func (s Shared) NewLabeler() (Labeler, error) {
	if s.Labeler == nil {
		return nil, errors.New("labeler: shared backend has no labeler")
	}
	return nopCloser{s.Labeler}, nil
}

// Close closes the shared labeler.
func (s Shared) Close() error {
	if s.Labeler == nil {
		return nil
	}
	return s.Labeler.Close()
}

type nopCloser struct {
	Labeler
}

func (nopCloser) Close() error { return nil }

// Run labels bundles with l and checks the length contract.
func Run(ctx context.Context, l Labeler, bundles []features.Bundle) ([]Tag, error) {
	if len(bundles) == 0 {
		return []Tag{}, nil
	}
	tags, err := l.Label(ctx, bundles)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(bundles) {
		return nil, fmt.Errorf("%w: got %d tags for %d characters", ErrLengthMismatch, len(tags), len(bundles))
	}
	return tags, nil
}
