// Package punkt adapts the unsupervised Punkt sentence tokenizer to the
// labeler interface, for languages without a trained character model.
package punkt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/neurosnap/sentences"
	sentencesdata "github.com/neurosnap/sentences/data"

	"github.com/jamesainslie/go-sentsplit/features"
	"github.com/jamesainslie/go-sentsplit/labeler"
)

// Prefix marks a model reference that selects this backend, as in
// "punkt:english".
const Prefix = "punkt:"

// ErrUnknownLanguage indicates there is no bundled training data for a name.
var ErrUnknownLanguage = errors.New("punkt: no training data for language")

// IsRef reports whether ref selects the Punkt backend.
func IsRef(ref string) bool {
	return strings.HasPrefix(ref, Prefix)
}

// Labeler marks the last character of every Punkt sentence as EOS. It holds
// only read-only training data and is safe for concurrent use.
type Labeler struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

// Open loads training data named by ref. The part after the prefix is either
// a bundled language ("english", "german", ...) or a path to a JSON training
// file.
func Open(ref string) (*Labeler, error) {
	name := strings.TrimPrefix(ref, Prefix)
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrUnknownLanguage)
	}

	var (
		data []byte
		err  error
	)
	if strings.HasSuffix(name, ".json") {
		data, err = os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("reading punkt training data: %w", err)
		}
	} else {
		data, err = sentencesdata.Asset("data/" + strings.ToLower(name) + ".json")
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, name)
		}
	}
	return Load(data)
}

// Load builds a labeler from Punkt JSON training data.
func Load(data []byte) (*Labeler, error) {
	training, err := sentences.LoadTraining(data)
	if err != nil {
		return nil, fmt.Errorf("parsing punkt training data: %w", err)
	}
	return &Labeler{tokenizer: sentences.NewSentenceTokenizer(training)}, nil
}

// Label implements labeler.Labeler.
func (l *Labeler) Label(ctx context.Context, bundles []features.Bundle) ([]labeler.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	chars := features.Chars(bundles)
	tags := make([]labeler.Tag, len(chars))
	text := string(chars)

	// Locate each sentence in the input rather than trusting reported
	// offsets, so tags stay aligned whatever whitespace Punkt trims.
	cursor := 0
	for _, sent := range l.tokenizer.Tokenize(text) {
		s := strings.TrimSpace(sent.Text)
		if s == "" {
			continue
		}
		i := strings.Index(text[cursor:], s)
		if i < 0 {
			continue
		}
		end := cursor + i + len(s)
		tags[utf8.RuneCountInString(text[:end])-1] = labeler.EOS
		cursor = end
	}
	return tags, nil
}

// Close is a no-op.
func (l *Labeler) Close() error { return nil }
