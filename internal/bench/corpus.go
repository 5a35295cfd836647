// Package bench evaluates sentence segmentation against gold corpora.
package bench

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Header contains metadata parsed from a gold file header.
type Header struct {
	Source   string
	Language string
	Title    string
}

// ParseHeader extracts metadata from "# Key: value" comment lines.
// Returns the header, remaining text after header, and any error.
func ParseHeader(text string) (Header, string, error) {
	var h Header
	scanner := bufio.NewScanner(strings.NewReader(text))
	bodyStart := len(text)
	var lineEnd int

	for scanner.Scan() {
		line := scanner.Text()
		lineEnd += len(line) + 1 // +1 for newline

		if !strings.HasPrefix(line, "#") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			bodyStart = lineEnd - len(line) - 1
			break
		}

		line = strings.TrimPrefix(line, "# ")
		if value, ok := strings.CutPrefix(line, "Source:"); ok {
			h.Source = strings.TrimSpace(value)
		} else if value, ok := strings.CutPrefix(line, "Language:"); ok {
			h.Language = strings.TrimSpace(value)
		} else if value, ok := strings.CutPrefix(line, "Title:"); ok {
			h.Title = strings.TrimSpace(value)
		}
	}

	if err := scanner.Err(); err != nil {
		return Header{}, "", fmt.Errorf("scan header: %w", err)
	}

	if h.Source == "" {
		return Header{}, "", errors.New("missing Source in header")
	}

	return h, text[bodyStart:], nil
}

// ParseSentences reads one gold sentence per line. Blank lines are skipped
// and surrounding whitespace is trimmed.
func ParseSentences(body string) []string {
	var sentences []string
	for line := range strings.Lines(body) {
		if s := strings.TrimSpace(line); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// Join concatenates sentences with single spaces and returns the rune
// offset just past the last character of each sentence.
func Join(sentences []string) (string, []int) {
	var text strings.Builder
	boundaries := make([]int, 0, len(sentences))
	offset := 0

	for i, s := range sentences {
		if i > 0 {
			text.WriteByte(' ')
			offset++
		}
		text.WriteString(s)
		offset += utf8.RuneCountInString(s)
		boundaries = append(boundaries, offset)
	}
	return text.String(), boundaries
}

// Document is a gold text with the rune offsets where its sentences end.
type Document struct {
	ID         string `json:"-"`
	Name       string `json:"name"`
	Source     string `json:"source"`
	Language   string `json:"language,omitempty"`
	Text       string `json:"text"`
	Sentences  int    `json:"sentences"`
	Boundaries []int  `json:"boundaries"`
}

// LoadDocument loads a gold file. A .json file holds a Document; any other
// file is a header followed by one sentence per line.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	base := filepath.Base(path)
	id := strings.TrimSuffix(base, filepath.Ext(base))

	if filepath.Ext(path) == ".json" {
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		if err := doc.validate(); err != nil {
			return nil, err
		}
		doc.ID = id
		return &doc, nil
	}

	header, body, err := ParseHeader(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}
	sentences := ParseSentences(body)
	text, boundaries := Join(sentences)

	return &Document{
		ID:         id,
		Name:       header.Title,
		Source:     header.Source,
		Language:   header.Language,
		Text:       text,
		Sentences:  len(sentences),
		Boundaries: boundaries,
	}, nil
}

func (d *Document) validate() error {
	n := utf8.RuneCountInString(d.Text)
	prev := 0
	for i, b := range d.Boundaries {
		if b < prev || b > n {
			return fmt.Errorf("boundary %d (%d) out of order or beyond text length %d", i, b, n)
		}
		prev = b
	}
	return nil
}

// LoadCorpus loads all .txt and .json gold files from a directory.
func LoadCorpus(dir string) ([]*Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var docs []*Document
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".txt", ".json":
		default:
			continue
		}

		path := filepath.Join(dir, entry.Name())
		doc, err := LoadDocument(path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", entry.Name(), err)
		}
		docs = append(docs, doc)
	}

	return docs, nil
}
