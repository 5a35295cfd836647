// Package whitespace collapses runs of whitespace before tagging and restores
// the tag sequence to the original length afterwards.
package whitespace

import (
	"fmt"
	"unicode"

	"github.com/jamesainslie/go-sentsplit/labeler"
)

// Run is a half-open range [Start, End) of two or more whitespace characters,
// in coordinates of the uncollapsed line.
type Run struct {
	Start int
	End   int
}

// Len returns the number of characters in the run.
func (r Run) Len() int { return r.End - r.Start }

// Collapse replaces every maximal run of two or more whitespace characters
// with a single space and reports the runs, left to right.
func Collapse(line []rune) ([]rune, []Run) {
	var runs []Run
	out := make([]rune, 0, len(line))
	for i := 0; i < len(line); {
		if !unicode.IsSpace(line[i]) {
			out = append(out, line[i])
			i++
			continue
		}
		j := i + 1
		for j < len(line) && unicode.IsSpace(line[j]) {
			j++
		}
		if j-i >= 2 {
			runs = append(runs, Run{Start: i, End: j})
			out = append(out, ' ')
		} else {
			out = append(out, line[i])
		}
		i = j
	}
	return out, runs
}

// Restore re-expands tags produced for a collapsed line. For each run, in
// ascending order, Len()-1 O tags are inserted right after the run start.
// original is the length of the uncollapsed line.
func Restore(tags []labeler.Tag, runs []Run, original int) ([]labeler.Tag, error) {
	want := len(tags)
	for _, r := range runs {
		want += r.Len() - 1
	}
	if want != original {
		return nil, fmt.Errorf("restoring %d tags over %d runs gives %d, want %d", len(tags), len(runs), want, original)
	}
	if len(runs) == 0 {
		return tags, nil
	}

	out := make([]labeler.Tag, 0, original)
	src := 0
	for _, r := range runs {
		// r.Start is in original coordinates; out already has that many tags
		// before the collapsed space once earlier runs are expanded.
		keep := r.Start + 1 - len(out)
		out = append(out, tags[src:src+keep]...)
		src += keep
		for k := 1; k < r.Len(); k++ {
			out = append(out, labeler.O)
		}
	}
	out = append(out, tags[src:]...)
	return out, nil
}
