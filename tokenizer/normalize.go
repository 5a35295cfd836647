package tokenizer

import "unicode"

const sentencePieceSpace = '▁' // U+2581 LOWER ONE EIGHTH BLOCK

// normalize prepares text for tokenization following XLM-RoBERTa conventions.
// - Adds dummy prefix (space at start)
// - Replaces spaces with ▁
// - Normalizes whitespace (collapses runs, trims trailing)
//
// offsets[k] is the index in text of normalized rune k. A ▁ maps to the
// first character of the word it precedes.
func normalize(text []rune) (normalized []rune, offsets []int) {
	if len(text) == 0 {
		return nil, nil
	}

	normalized = make([]rune, 0, len(text)+1)
	offsets = make([]int, 0, len(text)+1)
	needSpace := true // start true to add dummy prefix before first non-space

	for i, r := range text {
		if unicode.IsSpace(r) {
			// Only separate words once something has been written
			if len(normalized) > 0 {
				needSpace = true
			}
			continue
		}
		if needSpace {
			normalized = append(normalized, sentencePieceSpace)
			offsets = append(offsets, i)
			needSpace = false
		}
		normalized = append(normalized, r)
		offsets = append(offsets, i)
	}

	return normalized, offsets
}
