package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_LengthPreserving(t *testing.T) {
	for _, s := range []string{"", "a", "Hello world.", "これはテスト。"} {
		chars := []rune(s)
		assert.Len(t, Extract(chars, 5), len(chars), "input %q", s)
	}
}

func TestExtract_Attributes(t *testing.T) {
	bundles := Extract([]rune("aB3"), 2)
	require.Len(t, bundles, 3)

	assert.Equal(t, 'a', bundles[0].Char)
	assert.Equal(t, []string{
		"bias", "char=a", "char.isdigit=False", "char.isupper=False",
		"+1:char=B", "+2:char=3",
	}, bundles[0].Attributes)

	assert.Equal(t, []string{
		"bias", "char=B", "char.isdigit=False", "char.isupper=True",
		"-1:char=a", "+1:char=3",
	}, bundles[1].Attributes)

	assert.Equal(t, []string{
		"bias", "char=3", "char.isdigit=True", "char.isupper=False",
		"-1:char=B", "-2:char=a",
	}, bundles[2].Attributes)
}

func TestExtract_NgramLimitsContext(t *testing.T) {
	bundles := Extract([]rune("abcdefg"), 1)
	assert.Equal(t, []string{
		"bias", "char=d", "char.isdigit=False", "char.isupper=False",
		"-1:char=c", "+1:char=e",
	}, bundles[3].Attributes)

	bundles = Extract([]rune("abc"), 0)
	for _, b := range bundles {
		assert.Len(t, b.Attributes, 4)
	}
}

func TestChars(t *testing.T) {
	in := []rune("Hi. 你好")
	assert.Equal(t, in, Chars(Extract(in, 3)))
}
