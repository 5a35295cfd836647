// Package rules holds the regex rules that force or forbid sentence
// boundaries, and the Adjuster that applies them to a tag sequence.
package rules

import (
	"errors"
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
)

// Anchor selects which end of a segment match receives the boundary.
type Anchor string

const (
	// AnchorStart puts the boundary on the first matched character.
	AnchorStart Anchor = "start"
	// AnchorEnd puts the boundary on the last matched character.
	AnchorEnd Anchor = "end"
)

var (
	// ErrUnknownRule indicates a rule given only by name that has no built-in pattern.
	ErrUnknownRule = errors.New("rules: unknown rule")
	// ErrInvalidRule indicates a rule whose pattern or anchor is unusable.
	ErrInvalidRule = errors.New("rules: invalid rule")
)

// Rule is a named regular expression. At is only meaningful for segment rules.
type Rule struct {
	Name  string `toml:"name" json:"name"`
	Regex string `toml:"regex,omitempty" json:"regex,omitempty"`
	At    Anchor `toml:"at,omitempty" json:"at,omitempty"`
}

// liberalURL follows https://gist.github.com/gruber/249502#gistcomment-1328838
const liberalURL = `\b((?:[a-z][\w\-]+:(?:\/{1,3}|[a-z0-9%])|www\d{0,3}[.]|[a-z0-9.\-]+[.][a-z]{2,4}\/)` +
	`(?:[^\s()<>]|\((?:[^\s()<>]|(?:\([^\s()<>]+\)))*\))+` +
	`(?:\((?:[^\s()<>]|(?:\([^\s()<>]+\)))*\)|[^\s` + "`" + `!()\[\]{};:'".,<>?«»“”‘’]))`

var builtins = map[string]Rule{
	// segment
	"newline":         {Name: "newline", Regex: `\n`, At: AnchorEnd},
	"ellipsis":        {Name: "ellipsis", Regex: `…(?![\!\?\.．？！])`, At: AnchorEnd},
	"after_semicolon": {Name: "after_semicolon", Regex: ` *;`, At: AnchorEnd},

	// prevent
	"liberal_url":                  {Name: "liberal_url", Regex: liberalURL},
	"period_followed_by_lowercase": {Name: "period_followed_by_lowercase", Regex: `\.(?= *[a-z])`},
}

// Builtin returns the built-in rule registered under name.
func Builtin(name string) (Rule, bool) {
	r, ok := builtins[name]
	return r, ok
}

// Resolve fills in the pattern of a rule given only by name.
func (r Rule) Resolve() (Rule, error) {
	if r.Regex != "" {
		return r, nil
	}
	b, ok := Builtin(r.Name)
	if !ok {
		return Rule{}, fmt.Errorf("%w: %q", ErrUnknownRule, r.Name)
	}
	return b, nil
}

// ResolveAll resolves every rule in order.
func ResolveAll(rs []Rule) ([]Rule, error) {
	out := make([]Rule, len(rs))
	for i, r := range rs {
		resolved, err := r.Resolve()
		if err != nil {
			return nil, err
		}
		out[i] = resolved
	}
	return out, nil
}

// matchTimeout bounds a single regex evaluation; regexp2 backtracks.
const matchTimeout = 5 * time.Second

type compiled struct {
	Rule
	re *regexp2.Regexp
}

func compile(r Rule, segment bool) (compiled, error) {
	r, err := r.Resolve()
	if err != nil {
		return compiled{}, err
	}
	if segment && r.At != AnchorStart && r.At != AnchorEnd {
		return compiled{}, fmt.Errorf("%w: %q: anchor must be %q or %q, got %q", ErrInvalidRule, r.Name, AnchorStart, AnchorEnd, r.At)
	}
	re, err := regexp2.Compile(r.Regex, regexp2.None)
	if err != nil {
		return compiled{}, fmt.Errorf("%w: %q: %w", ErrInvalidRule, r.Name, err)
	}
	re.MatchTimeout = matchTimeout
	return compiled{Rule: r, re: re}, nil
}

// span is a half-open match range in rune offsets.
type span struct {
	start, end int
}

// matches returns all non-overlapping matches, leftmost first.
func (c compiled) matches(chars []rune) ([]span, error) {
	var out []span
	m, err := c.re.FindRunesMatch(chars)
	for m != nil && err == nil {
		out = append(out, span{m.Index, m.Index + m.Length})
		m, err = c.re.FindNextMatch(m)
	}
	if err != nil {
		return nil, fmt.Errorf("matching rule %q: %w", c.Name, err)
	}
	return out, nil
}
