package resolve

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/go-sentsplit/labeler"
)

const hello = "Hello world. This is a sentence."

func tagsAt(n int, eos ...int) []labeler.Tag {
	tags := make([]labeler.Tag, n)
	for _, i := range eos {
		tags[i] = labeler.EOS
	}
	return tags
}

func resolveOne(t *testing.T, text string, tags []labeler.Tag, p Policy) []string {
	t.Helper()
	got, err := Resolve([][]rune{[]rune(text)}, [][]labeler.Tag{tags}, p)
	require.NoError(t, err)
	return got
}

func TestResolve_Scenarios(t *testing.T) {
	tags := tagsAt(len(hello), 11, len(hello)-1)

	tests := []struct {
		name   string
		policy Policy
		want   []string
	}{
		{"defaults", Policy{Mincut: 7, Maxcut: 500}, []string{"Hello world.", " This is a sentence."}},
		{"large mincut", Policy{Mincut: 13, Maxcut: 500}, []string{hello}},
		{"small maxcut", Policy{Mincut: 7, Maxcut: 13}, []string{"Hello world.", " This is a se", "ntence."}},
		{"strip", Policy{StripSpaces: true, Mincut: 7, Maxcut: 500}, []string{"Hello world.", "This is a sentence."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveOne(t, hello, tags, tt.policy))
		})
	}
}

func TestResolve_TrailingSpaces(t *testing.T) {
	text := "Hello world.  "
	tags := tagsAt(len(text), 11)

	assert.Equal(t, []string{"Hello world.  "}, resolveOne(t, text, tags, Policy{Mincut: 7, Maxcut: 500}))
	assert.Equal(t, []string{"Hello world."}, resolveOne(t, text, tags, Policy{StripSpaces: true, Mincut: 7, Maxcut: 500}))
}

func TestResolve_EmptyAndBlank(t *testing.T) {
	got, err := Resolve(nil, nil, Policy{Mincut: 7, Maxcut: 500})
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.Empty(t, resolveOne(t, "", nil, Policy{Mincut: 7, Maxcut: 500}))
	assert.Empty(t, resolveOne(t, "   ", tagsAt(3, 2), Policy{StripSpaces: true, Mincut: 7, Maxcut: 500}))
	assert.Equal(t, []string{"   "}, resolveOne(t, "   ", tagsAt(3, 2), Policy{Mincut: 7, Maxcut: 500}))
}

func TestResolve_ShortInputIsLeftover(t *testing.T) {
	assert.Equal(t, []string{"Hi."}, resolveOne(t, "Hi.", tagsAt(3, 2), Policy{Mincut: 7, Maxcut: 500}))
}

// Boundaries closer than mincut to the fragment end are deferred and merge
// into the leftover.
func TestResolve_DefersShortTail(t *testing.T) {
	text := "Alpha beta gamma. Delta. Eps."
	tags := tagsAt(len(text), 16, 23, 28)

	got := resolveOne(t, text, tags, Policy{Mincut: 7, Maxcut: 500})
	assert.Equal(t, []string{"Alpha beta gamma.", " Delta. Eps."}, got)

	// 13 characters follow the first boundary.
	got = resolveOne(t, text, tags, Policy{Mincut: 12, Maxcut: 500})
	assert.Equal(t, []string{"Alpha beta gamma.", " Delta. Eps."}, got)

	got = resolveOne(t, text, tags, Policy{Mincut: 13, Maxcut: 500})
	assert.Equal(t, []string{text}, got)
}

func TestResolve_FragmentsAreIndependent(t *testing.T) {
	a, b := "First line here.\n", "Second line here."
	chars := [][]rune{[]rune(a), []rune(b)}
	tags := [][]labeler.Tag{tagsAt(len(a)), tagsAt(len(b))}

	got, err := Resolve(chars, tags, Policy{Mincut: 7, Maxcut: 500})
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, got)
}

func TestResolve_LengthMismatch(t *testing.T) {
	_, err := Resolve([][]rune{[]rune("abc")}, [][]labeler.Tag{tagsAt(2)}, Policy{Maxcut: 10})
	require.ErrorIs(t, err, labeler.ErrLengthMismatch)

	_, err = Resolve([][]rune{[]rune("abc")}, nil, Policy{Maxcut: 10})
	require.ErrorIs(t, err, labeler.ErrLengthMismatch)
}

func TestSplitOne_HeuristicPriority(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"quote after period", `He said "stop." and then, left; ok`, `He said "stop."`},
		{"period after bracket", `a note (see below). Then, more text here`, `a note (see below).`},
		{"dash after space", "words words - more, words here", "words words -"},
		{"semicolon", "first clause here; second, clause", "first clause here;"},
		{"comma", "one two three, four five six", "one two three,"},
		{"whitespace", "aaaaaaaaa bbbbbbbbb ccc", "aaaaaaaaa "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(Policy{Mincut: 7, Maxcut: 10})
			rest, err := r.splitOne([]rune(tt.text))
			require.NoError(t, err)
			require.Len(t, r.Sentences(), 1)
			assert.Equal(t, tt.want, r.Sentences()[0])
			assert.Equal(t, tt.text, tt.want+string(rest))
		})
	}
}

func TestSplitOne_SkipsUnacceptableMatches(t *testing.T) {
	// The first comma leaves too short a head; the second is accepted.
	r := New(Policy{Mincut: 7, Maxcut: 10})
	rest, err := r.splitOne([]rune("ab, cdefghij, klmnopqrst"))
	require.NoError(t, err)
	assert.Equal(t, []string{"ab, cdefghij,"}, r.Sentences())
	assert.Equal(t, " klmnopqrst", string(rest))
}

func TestSplitOne_FlushesWhenNothingMatches(t *testing.T) {
	r := New(Policy{Mincut: 7, Maxcut: 10})
	rest, err := r.splitOne([]rune("abcdefghijklmnop"))
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, []string{"abcdefghijklmnop"}, r.Sentences())
}

func TestSplitOne_Irreducible(t *testing.T) {
	r := New(Policy{StripSpaces: true, Mincut: 7, Maxcut: 3})
	_, err := r.splitOne([]rune(""))
	require.ErrorIs(t, err, ErrIrreducible)
}

func TestResolve_MaxcutProperty(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor, sit amet; ", 40)
	p := Policy{Mincut: 7, Maxcut: 50}
	got := resolveOne(t, text, tagsAt(len(text)), p)

	require.NotEmpty(t, got)
	assert.Equal(t, text, strings.Join(got, ""))
	for i, s := range got {
		n := len([]rune(s))
		assert.LessOrEqual(t, n, p.Maxcut, "sentence %d", i)
		if i < len(got)-1 {
			assert.Greater(t, n, p.Mincut, "sentence %d", i)
		}
	}
}

func TestResolve_ConcatenationWithoutStrip(t *testing.T) {
	text := "Один. Два три четыре. Пять шесть семь восемь. Девять."
	var eos []int
	for i, c := range []rune(text) {
		if c == '.' {
			eos = append(eos, i)
		}
	}
	got, err := Resolve([][]rune{[]rune(text)}, [][]labeler.Tag{tagsAt(len([]rune(text)), eos...)}, Policy{Mincut: 7, Maxcut: 500})
	require.NoError(t, err)
	assert.Equal(t, text, strings.Join(got, ""))
	assert.Equal(t, []string{"Один. Два три четыре.", " Пять шесть семь восемь.", " Девять."}, got)
}
