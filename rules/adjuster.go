package rules

import (
	"fmt"
	"unicode"

	"github.com/jamesainslie/go-sentsplit/labeler"
)

// punctuation may legitimately end a sentence inside a run of non-space
// characters, so word-split protection leaves these boundaries alone.
var punctuation = map[rune]bool{
	'.': true, '?': true, '!': true, '"': true, '\'': true, '”': true,
	'．': true, '？': true, '！': true, '。': true, '…': true,
}

// Adjuster corrects a tag sequence with segment and prevent rules. It is
// immutable and safe for concurrent use.
type Adjuster struct {
	segment          []compiled
	prevent          []compiled
	maxcut           int
	preventWordSplit bool
}

// NewAdjuster compiles the rules. Rules without a pattern are looked up by name.
func NewAdjuster(segment, prevent []Rule, maxcut int, preventWordSplit bool) (*Adjuster, error) {
	a := &Adjuster{maxcut: maxcut, preventWordSplit: preventWordSplit}
	for _, r := range segment {
		c, err := compile(r, true)
		if err != nil {
			return nil, err
		}
		a.segment = append(a.segment, c)
	}
	for _, r := range prevent {
		c, err := compile(r, false)
		if err != nil {
			return nil, err
		}
		a.prevent = append(a.prevent, c)
	}
	return a, nil
}

// Apply runs the segment pass and then the prevent pass. tags is owned by
// the caller and overwritten in place.
func (a *Adjuster) Apply(chars []rune, tags []labeler.Tag) error {
	if len(chars) != len(tags) {
		return fmt.Errorf("%w: %d tags for %d characters", labeler.ErrLengthMismatch, len(tags), len(chars))
	}
	if err := a.Segment(chars, tags); err != nil {
		return err
	}
	return a.Prevent(chars, tags)
}

// Segment forces EOS at the anchor of every segment rule match. Rules apply
// in order, so a later rule overwrites an earlier one at the same position.
func (a *Adjuster) Segment(chars []rune, tags []labeler.Tag) error {
	for _, rule := range a.segment {
		spans, err := rule.matches(chars)
		if err != nil {
			return err
		}
		for _, s := range spans {
			pos := s.end - 1
			if rule.At == AnchorStart {
				pos = s.start
			}
			if pos < 0 || pos >= len(tags) {
				// empty match at an edge
				continue
			}
			tags[pos] = labeler.EOS
		}
	}
	return nil
}

// Prevent clears boundaries inside words (if enabled) and inside every
// prevent rule match.
func (a *Adjuster) Prevent(chars []rune, tags []labeler.Tag) error {
	if a.preventWordSplit {
		protectWords(chars, tags)
	}
	for _, rule := range a.prevent {
		spans, err := rule.matches(chars)
		if err != nil {
			return err
		}
		for _, s := range spans {
			if s.end <= s.start {
				continue
			}
			for pos := s.start; pos < s.end; pos++ {
				tags[pos] = labeler.O
			}
			a.cutBefore(tags, s.start, s.end-1)
		}
	}
	return nil
}

// protectWords clears EOS on a character that is neither punctuation nor
// whitespace and is directly followed by a non-space character.
func protectWords(chars []rune, tags []labeler.Tag) {
	for i := 0; i < len(tags)-1; i++ {
		if tags[i] != labeler.EOS {
			continue
		}
		c := chars[i]
		if !punctuation[c] && !unicode.IsSpace(c) && !unicode.IsSpace(chars[i+1]) {
			tags[i] = labeler.O
		}
	}
}

// cutBefore forces a boundary right before a protected span [start, end]
// (end inclusive) when the next maxcut cut would otherwise fall inside it.
func (a *Adjuster) cutBefore(tags []labeler.Tag, start, end int) {
	if a.maxcut <= 0 || end < a.maxcut {
		return
	}
	from := lastBoundary(tags, start) + 1
	cover := end - from + 1
	chunks := cover / a.maxcut
	if chunks < 1 {
		chunks = 1
	}
	next := from + chunks*a.maxcut - 1
	if start <= next && next < end && start-1 > 0 {
		tags[start-1] = labeler.EOS
	}
}

// lastBoundary returns the closest EOS strictly before pivot, or -1.
func lastBoundary(tags []labeler.Tag, pivot int) int {
	for i := pivot - 1; i >= 0; i-- {
		if tags[i] == labeler.EOS {
			return i
		}
	}
	return -1
}
