// Package features turns a character sequence into the per-position attribute
// bundles consumed by a labeler.
//
// Attribute strings match the ones the CRFsuite models were trained on, so
// bundles can be fed to those models unchanged.
package features

import (
	"strconv"
	"unicode"
)

const bias = "bias"

// Bundle holds the features of one character position.
type Bundle struct {
	// Char is the character at this position.
	Char rune
	// Attributes are the string features, in a stable order.
	Attributes []string
}

// Extract builds one Bundle per character. Context features look at most
// ngram characters to either side and are omitted where they would run off
// the sequence.
func Extract(chars []rune, ngram int) []Bundle {
	if ngram < 0 {
		ngram = 0
	}
	bundles := make([]Bundle, len(chars))
	for i, c := range chars {
		left := min(i, ngram)
		right := min(len(chars)-1-i, ngram)

		attrs := make([]string, 0, 4+left+right)
		attrs = append(attrs,
			bias,
			"char="+string(c),
			"char.isdigit="+pyBool(unicode.IsDigit(c)),
			"char.isupper="+pyBool(unicode.IsUpper(c)),
		)
		for j := 1; j <= left; j++ {
			attrs = append(attrs, "-"+strconv.Itoa(j)+":char="+string(chars[i-j]))
		}
		for j := 1; j <= right; j++ {
			attrs = append(attrs, "+"+strconv.Itoa(j)+":char="+string(chars[i+j]))
		}
		bundles[i] = Bundle{Char: c, Attributes: attrs}
	}
	return bundles
}

// Chars returns the characters the bundles were built from.
func Chars(bundles []Bundle) []rune {
	chars := make([]rune, len(bundles))
	for i, b := range bundles {
		chars[i] = b.Char
	}
	return chars
}

// pyBool renders flags the way the training pipeline serialised them.
func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
