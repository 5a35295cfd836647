package resolve

import (
	"fmt"

	"github.com/dlclark/regexp2"
)

// heuristics are tried in order on an over-long buffer; each matches exactly
// one character after which the buffer may be split.
var heuristics = []*regexp2.Regexp{
	// sentence punctuation followed by a closing quote or bracket
	regexp2.MustCompile(`(?<=[\.。︀?？!！…])['"’”❜❞›»❯」』)）\]］】〟]`, regexp2.None),
	// closing quote or bracket followed by sentence punctuation
	regexp2.MustCompile(`(?<=['"’”❜❞›»❯」』)）\]］】〟])[\.。︀?？!！…]`, regexp2.None),
	// dash after whitespace
	regexp2.MustCompile(`(?<=\s)\p{Pd}`, regexp2.None),
	// colons and semicolons
	regexp2.MustCompile(`[:﹕：;﹔；؛⁏]`, regexp2.None),
	// closing quote or bracket between a non-space and a space
	regexp2.MustCompile(`(?<=[^\s])['"’”❜❞›»❯」』)）\]］】〟](?=\s)`, regexp2.None),
	// commas
	regexp2.MustCompile(`[,，﹐]`, regexp2.None),
	// any closing quote or bracket
	regexp2.MustCompile(`[’”❜❞›»❯」』)）\]］】〟]`, regexp2.None),
	// any whitespace
	regexp2.MustCompile(`\s`, regexp2.None),
}

// reduce shrinks buf below maxcut, emitting sentences on the way.
func (r *Resolver) reduce(buf []rune) ([]rune, error) {
	for r.policy.Maxcut > 0 && len(buf) >= r.policy.Maxcut {
		rest, err := r.splitOne(buf)
		if err != nil {
			return nil, err
		}
		if len(rest) >= len(buf) {
			return nil, fmt.Errorf("%w: no progress on %q", ErrIrreducible, string(buf))
		}
		// rest aliases buf; copy so later appends cannot clobber emitted text.
		buf = append(buf[:0], rest...)
	}
	return buf, nil
}

// splitOne emits at most one sentence from the front of buf and returns the
// remainder. Every match of each heuristic is tried, in priority order, until
// one yields an acceptable first half; failing that buf is flushed whole.
func (r *Resolver) splitOne(buf []rune) ([]rune, error) {
	for _, re := range heuristics {
		m, err := re.FindRunesMatch(buf)
		for m != nil && err == nil {
			cut := m.Index + m.Length
			if r.accept(buf[:cut], len(buf), cut, false) {
				return buf[cut:], nil
			}
			m, err = re.FindNextMatch(m)
		}
		if err != nil {
			return nil, fmt.Errorf("splitting over-long buffer: %w", err)
		}
	}
	if r.accept(buf, len(buf), len(buf)-1, true) {
		return buf[:0], nil
	}
	return nil, fmt.Errorf("%w: %q", ErrIrreducible, string(buf))
}
