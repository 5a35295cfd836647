package rules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/go-sentsplit/labeler"
)

const (
	o = labeler.O
	e = labeler.EOS
)

// render shows tags as a string of '.' and '|' for compact assertions.
func render(tags []labeler.Tag) string {
	var b strings.Builder
	for _, t := range tags {
		if t == labeler.EOS {
			b.WriteByte('|')
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

func parse(s string) []labeler.Tag {
	tags := make([]labeler.Tag, len(s))
	for i := range s {
		if s[i] == '|' {
			tags[i] = labeler.EOS
		}
	}
	return tags
}

func TestResolve(t *testing.T) {
	r, err := Rule{Name: "newline"}.Resolve()
	require.NoError(t, err)
	assert.Equal(t, `\n`, r.Regex)
	assert.Equal(t, AnchorEnd, r.At)

	custom := Rule{Name: "tilde", Regex: `~+`, At: AnchorEnd}
	r, err = custom.Resolve()
	require.NoError(t, err)
	assert.Equal(t, custom, r)

	_, err = Rule{Name: "nope"}.Resolve()
	assert.ErrorIs(t, err, ErrUnknownRule)
}

func TestResolveAll(t *testing.T) {
	rs, err := ResolveAll([]Rule{{Name: "ellipsis"}, {Name: "liberal_url"}})
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.NotEmpty(t, rs[1].Regex)

	_, err = ResolveAll([]Rule{{Name: "ellipsis"}, {Name: "missing"}})
	assert.ErrorIs(t, err, ErrUnknownRule)
}

func TestNewAdjuster_Invalid(t *testing.T) {
	_, err := NewAdjuster([]Rule{{Name: "x", Regex: `a`}}, nil, 500, true)
	assert.ErrorIs(t, err, ErrInvalidRule, "segment rule without anchor")

	_, err = NewAdjuster(nil, []Rule{{Name: "bad", Regex: `(`}}, 500, true)
	assert.ErrorIs(t, err, ErrInvalidRule)

	_, err = NewAdjuster(nil, []Rule{{Name: "unknown"}}, 500, true)
	assert.ErrorIs(t, err, ErrUnknownRule)
}

func TestBuiltins_Compile(t *testing.T) {
	for name, r := range builtins {
		_, err := compile(r, r.At != "")
		assert.NoError(t, err, name)
	}
}

func TestSegment_Anchors(t *testing.T) {
	chars := []rune("ab~~ cd;")
	a, err := NewAdjuster([]Rule{
		{Name: "tilde", Regex: `~+`, At: AnchorEnd},
		{Name: "semi", Regex: ` *;`, At: AnchorEnd},
		{Name: "c", Regex: `c`, At: AnchorStart},
	}, nil, 500, false)
	require.NoError(t, err)

	tags := make([]labeler.Tag, len(chars))
	require.NoError(t, a.Segment(chars, tags))
	assert.Equal(t, "...|.|.|", render(tags))
}

func TestSegment_BuiltinEllipsisAndNewline(t *testing.T) {
	a, err := NewAdjuster([]Rule{{Name: "ellipsis"}, {Name: "newline"}}, nil, 500, false)
	require.NoError(t, err)

	chars := []rune("wait… what…? ok\n")
	tags := make([]labeler.Tag, len(chars))
	require.NoError(t, a.Segment(chars, tags))
	// the second ellipsis is followed by '?', so only the first is forced
	assert.Equal(t, "....|..........|", render(tags))
}

func TestProtectWords(t *testing.T) {
	chars := []rune(`ab cd. "x" e`)
	tags := parse(`|||||||||||.`)
	protectWords(chars, tags)
	// 'a', 'c', 'd' and 'x' are followed by a non-space character; 'b'
	// precedes a space; '.' and '"' are punctuation.
	assert.Equal(t, `.||..|||.||.`, render(tags))
}

func TestProtectWords_LastPositionUntouched(t *testing.T) {
	chars := []rune("abc")
	tags := parse("|||")
	protectWords(chars, tags)
	assert.Equal(t, "..|", render(tags))
}

func TestPrevent_ClearsMatches(t *testing.T) {
	a, err := NewAdjuster(nil, []Rule{{Name: "period_followed_by_lowercase"}}, 500, false)
	require.NoError(t, err)

	chars := []rune("e.g. this. That.")
	tags := make([]labeler.Tag, len(chars))
	for _, i := range []int{1, 3, 9, 15} {
		tags[i] = e
	}
	require.NoError(t, a.Prevent(chars, tags))
	assert.Equal(t, ".........|.....|", render(tags))
}

func TestPrevent_QuotedPeriod(t *testing.T) {
	a, err := NewAdjuster(nil, []Rule{{Name: "period_inside_quote", Regex: `\.(?= *[^"]+")`}}, 500, true)
	require.NoError(t, err)

	chars := []rune(`"Hello world. This is a sentence."`)
	tags := make([]labeler.Tag, len(chars))
	tags[12] = e
	tags[len(tags)-2] = e
	require.NoError(t, a.Prevent(chars, tags))
	assert.Equal(t, o, tags[12])
	assert.Equal(t, e, tags[len(tags)-2])
}

func TestPrevent_LiberalURL(t *testing.T) {
	a, err := NewAdjuster(nil, []Rule{{Name: "liberal_url"}}, 500, false)
	require.NoError(t, err)

	chars := []rune("see www.example.com/a.b now")
	tags := make([]labeler.Tag, len(chars))
	for i, c := range chars {
		if c == '.' {
			tags[i] = e
		}
	}
	require.NoError(t, a.Prevent(chars, tags))
	for i, tag := range tags {
		assert.Equal(t, o, tag, "position %d", i)
	}
}

func TestPrevent_CutsBeforeOverlongSpan(t *testing.T) {
	// maxcut 10: the protected span [8, 13] straddles the cut that would
	// fall on index 9, so a boundary is forced at index 7.
	a, err := NewAdjuster(nil, []Rule{{Name: "x", Regex: `x+`}}, 10, false)
	require.NoError(t, err)

	chars := []rune("abcdefghxxxxxxyz")
	tags := make([]labeler.Tag, len(chars))
	require.NoError(t, a.Prevent(chars, tags))
	assert.Equal(t, strings.Repeat(".", 7)+"|"+strings.Repeat(".", 8), render(tags))
}

func TestPrevent_CutUsesLastBoundary(t *testing.T) {
	// An earlier EOS at index 5 moves the next maxcut cut to index 15,
	// which is before the span, so nothing is forced.
	a, err := NewAdjuster(nil, []Rule{{Name: "x", Regex: `x+`}}, 10, false)
	require.NoError(t, err)

	chars := []rune("abcdefghijklmnopxxxxz")
	tags := make([]labeler.Tag, len(chars))
	tags[5] = e
	require.NoError(t, a.Prevent(chars, tags))
	assert.Equal(t, strings.Repeat(".", 5)+"|"+strings.Repeat(".", 15), render(tags))
}

func TestPrevent_NoCutWhenSpanEndsBeforeMaxcut(t *testing.T) {
	a, err := NewAdjuster(nil, []Rule{{Name: "x", Regex: `x+`}}, 10, false)
	require.NoError(t, err)

	chars := []rune("abxxxxc")
	tags := make([]labeler.Tag, len(chars))
	require.NoError(t, a.Prevent(chars, tags))
	assert.Equal(t, ".......", render(tags))
}

func TestPrevent_NoCutAtLineStart(t *testing.T) {
	// start-1 must be > 0, so a span starting at index 1 is never preceded
	// by a forced cut.
	a, err := NewAdjuster(nil, []Rule{{Name: "x", Regex: `x+`}}, 4, false)
	require.NoError(t, err)

	chars := []rune("axxxxxxb")
	tags := make([]labeler.Tag, len(chars))
	require.NoError(t, a.Prevent(chars, tags))
	assert.Equal(t, "........", render(tags))
}

func TestApply_PreventRunsAfterSegment(t *testing.T) {
	a, err := NewAdjuster(
		[]Rule{{Name: "tilde", Regex: `~`, At: AnchorEnd}},
		[]Rule{{Name: "tilde_guard", Regex: `a~`}},
		500, false)
	require.NoError(t, err)

	chars := []rune("a~ b~ c")
	tags := make([]labeler.Tag, len(chars))
	require.NoError(t, a.Apply(chars, tags))
	assert.Equal(t, "....|..", render(tags))
}

func TestApply_LengthMismatch(t *testing.T) {
	a, err := NewAdjuster(nil, nil, 500, false)
	require.NoError(t, err)
	err = a.Apply([]rune("abc"), make([]labeler.Tag, 2))
	assert.ErrorIs(t, err, labeler.ErrLengthMismatch)
}
