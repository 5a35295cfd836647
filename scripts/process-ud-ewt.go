//go:build ignore

// Process UD English Web Treebank CoNLL-U files into gold corpora for
// `sentsplit bench`. Each split becomes a JSON document whose boundaries are
// rune offsets just past the last character of every sentence.
// Usage: go run ./scripts/process-ud-ewt.go [-in dir] [-out dir]
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const source = "https://github.com/UniversalDependencies/UD_English-EWT"

// Corpus mirrors bench.Document.
type Corpus struct {
	Name       string `json:"name"`
	Source     string `json:"source"`
	Language   string `json:"language"`
	Text       string `json:"text"`
	Sentences  int    `json:"sentences"`
	Boundaries []int  `json:"boundaries"`
}

func main() {
	inDir := flag.String("in", "testdata/ud-ewt", "directory with en_ewt-ud-*.conllu")
	outDir := flag.String("out", "testdata/ud-ewt", "output directory")
	flag.Parse()

	var all []string
	for _, split := range []string{"train", "dev", "test"} {
		inFile := filepath.Join(*inDir, fmt.Sprintf("en_ewt-ud-%s.conllu", split))
		outFile := filepath.Join(*outDir, split+".json")

		fmt.Printf("Processing %s...\n", split)
		sentences, err := readCoNLLU(inFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", inFile, err)
			continue
		}
		all = append(all, sentences...)

		corpus := build("UD-EWT-"+split, sentences)
		if err := writeCorpus(outFile, corpus); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", outFile, err)
			continue
		}
		fmt.Printf("  -> %s (%d sentences, %d chars)\n", outFile, corpus.Sentences, utf8.RuneCountInString(corpus.Text))
	}

	if len(all) == 0 {
		fmt.Fprintln(os.Stderr, "No sentences found.")
		os.Exit(1)
	}

	combined := build("UD-EWT-combined", all)
	outPath := filepath.Join(*outDir, "combined.json")
	if err := writeCorpus(outPath, combined); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating combined corpus: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  -> %s (%d sentences)\n", outPath, combined.Sentences)
}

// readCoNLLU collects the "# text = " line of every sentence block.
func readCoNLLU(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	var (
		sentences  []string
		currentTxt string
	)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if text, ok := strings.CutPrefix(line, "# text = "); ok {
			currentTxt = strings.TrimSpace(text)
			continue
		}

		// Blank line = end of sentence
		if line == "" && currentTxt != "" {
			sentences = append(sentences, currentTxt)
			currentTxt = ""
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning file: %w", err)
	}

	if currentTxt != "" {
		sentences = append(sentences, currentTxt)
	}
	return sentences, nil
}

func build(name string, sentences []string) *Corpus {
	var text strings.Builder
	boundaries := make([]int, 0, len(sentences))
	offset := 0

	for i, sent := range sentences {
		if i > 0 {
			text.WriteString(" ")
			offset++
		}
		text.WriteString(sent)
		offset += utf8.RuneCountInString(sent)
		boundaries = append(boundaries, offset)
	}

	return &Corpus{
		Name:       name,
		Source:     source,
		Language:   "en",
		Text:       text.String(),
		Sentences:  len(sentences),
		Boundaries: boundaries,
	}
}

func writeCorpus(path string, corpus *Corpus) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(corpus)
}
