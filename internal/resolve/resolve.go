// Package resolve turns character tags into sentences, enforcing the mincut
// and maxcut length policies.
package resolve

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/jamesainslie/go-sentsplit/labeler"
)

// ErrIrreducible indicates a buffer at or above maxcut that could neither be
// split nor flushed.
var ErrIrreducible = errors.New("resolve: cannot reduce buffer below maxcut")

// Policy holds the length and trimming rules applied to every sentence.
type Policy struct {
	StripSpaces bool
	Mincut      int
	Maxcut      int
}

// Resolver accumulates sentences across the fragments of one line.
type Resolver struct {
	policy    Policy
	sentences []string
}

// New returns a Resolver for policy.
func New(p Policy) *Resolver {
	return &Resolver{policy: p}
}

// Resolve segments every fragment in order and returns all sentences.
func Resolve(chars [][]rune, tags [][]labeler.Tag, p Policy) ([]string, error) {
	if len(chars) != len(tags) {
		return nil, fmt.Errorf("%w: %d tag sequences for %d fragments", labeler.ErrLengthMismatch, len(tags), len(chars))
	}
	r := New(p)
	for i := range chars {
		if err := r.Fragment(chars[i], tags[i]); err != nil {
			return nil, err
		}
	}
	return r.Sentences(), nil
}

// Sentences returns what has been emitted so far.
func (r *Resolver) Sentences() []string {
	return r.sentences
}

// Fragment walks one fragment and emits its sentences.
func (r *Resolver) Fragment(chars []rune, tags []labeler.Tag) error {
	if len(chars) != len(tags) {
		return fmt.Errorf("%w: %d tags for %d characters", labeler.ErrLengthMismatch, len(tags), len(chars))
	}

	total := len(chars)
	buf := make([]rune, 0, min(total, max(r.policy.Maxcut, 0)+1))
	for i, c := range chars {
		var err error
		if buf, err = r.reduce(buf); err != nil {
			return err
		}
		buf = append(buf, c)
		if tags[i] == labeler.EOS && r.accept(buf, total, i, false) {
			buf = buf[:0]
		}
	}
	if len(buf) > 0 {
		r.accept(buf, total, total-1, true)
	}
	return nil
}

// accept decides whether sent can close a sentence and emits it if so. cur
// is the index of sent's last character within a sequence of total
// characters. A candidate that strips to nothing is consumed without being
// emitted.
func (r *Resolver) accept(sent []rune, total, cur int, leftover bool) bool {
	if len(sent) <= r.policy.Mincut && !leftover {
		return false
	}
	if len(sent) == 0 {
		return false
	}
	// Keep going rather than strand a tail no longer than mincut.
	if !leftover && total-cur <= r.policy.Mincut {
		return false
	}
	if r.policy.StripSpaces {
		sent = trimSpace(sent)
	}
	if len(sent) > 0 {
		r.sentences = append(r.sentences, string(sent))
	}
	return true
}

func trimSpace(s []rune) []rune {
	start, end := 0, len(s)
	for start < end && unicode.IsSpace(s[start]) {
		start++
	}
	for end > start && unicode.IsSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}
