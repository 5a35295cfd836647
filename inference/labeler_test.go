package inference

import (
	"context"
	"errors"
	"os"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/jamesainslie/go-sentsplit/features"
	"github.com/jamesainslie/go-sentsplit/labeler"
	"github.com/jamesainslie/go-sentsplit/tokenizer"
)

// testTokenizer knows a handful of words; every other character becomes its
// own <unk> token.
func testTokenizer(t *testing.T) *tokenizer.Tokenizer {
	t.Helper()
	model := &tokenizer.Model{
		ModelType: tokenizer.ModelUnigram,
		Pieces: []tokenizer.Piece{
			{Piece: "<unk>", Type: tokenizer.PieceUnknown},
			{Piece: "<s>", Type: tokenizer.PieceControl},
			{Piece: "</s>", Type: tokenizer.PieceControl},
			{Piece: "▁Hello", Score: -1, Type: tokenizer.PieceNormal},
			{Piece: "▁world", Score: -1, Type: tokenizer.PieceNormal},
			{Piece: "▁Bye", Score: -1, Type: tokenizer.PieceNormal},
			{Piece: ".", Score: -1, Type: tokenizer.PieceNormal},
			{Piece: "▁a", Score: -1, Type: tokenizer.PieceNormal},
		},
	}
	tok, err := tokenizer.FromModel(model)
	if err != nil {
		t.Fatalf("FromModel failed: %v", err)
	}
	return tok
}

// periodID is the HF id of ".", SP index 6 shifted by one.
const periodID = 7

// fakeInferer emits a high logit for periods and records chunk sizes.
type fakeInferer struct {
	mu     sync.Mutex
	chunks []int
	err    error
	short  bool
	closed bool
}

func (f *fakeInferer) Infer(ctx context.Context, inputIDs, attentionMask []int64) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.chunks = append(f.chunks, len(inputIDs))
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	logits := make([]float32, len(inputIDs))
	for i, id := range inputIDs {
		logits[i] = -10
		if id == periodID {
			logits[i] = 10
		}
	}
	if f.short {
		logits = logits[:len(logits)-1]
	}
	return logits, nil
}

func (f *fakeInferer) Close() error {
	f.closed = true
	return nil
}

func label(t *testing.T, l labeler.Labeler, text string) []labeler.Tag {
	t.Helper()
	tags, err := labeler.Run(context.Background(), l, features.Extract([]rune(text), 0))
	if err != nil {
		t.Fatalf("Label failed: %v", err)
	}
	return tags
}

func eosPositions(tags []labeler.Tag) []int {
	var out []int
	for i, tag := range tags {
		if tag == labeler.EOS {
			out = append(out, i)
		}
	}
	return out
}

func TestLabeler_Label(t *testing.T) {
	inf := &fakeInferer{}
	l := NewLabeler(inf, testTokenizer(t), DefaultThreshold)

	tests := []struct {
		name string
		text string
		want []int
	}{
		{"two sentences", "Hello world. Bye.", []int{11, 16}},
		{"leading spaces", "   Hello.  Bye", []int{8}},
		{"no boundary", "Hello world", nil},
		{"whitespace only", "   ", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tags := label(t, l, tc.text)
			if len(tags) != len([]rune(tc.text)) {
				t.Fatalf("got %d tags for %d characters", len(tags), len([]rune(tc.text)))
			}
			if got := eosPositions(tags); !slices.Equal(got, tc.want) {
				t.Errorf("EOS at %v, want %v", got, tc.want)
			}
		})
	}
}

func TestLabeler_Threshold(t *testing.T) {
	// sigmoid(10) is just below 1, so nothing passes a threshold of 1.
	l := NewLabeler(&fakeInferer{}, testTokenizer(t), 1)
	if got := eosPositions(label(t, l, "Hello world.")); got != nil {
		t.Errorf("expected no boundaries, got %v", got)
	}
}

func TestLabeler_Chunking(t *testing.T) {
	inf := &fakeInferer{}
	l := NewLabeler(inf, testTokenizer(t), DefaultThreshold)

	// 700 tokens: "▁a" and "." alternate
	text := strings.Repeat("a.", 350)
	tags := label(t, l, text)

	if !slices.Equal(inf.chunks, []int{maxSeqLen, 700 - (maxSeqLen - chunkOverlap)}) {
		t.Errorf("chunk sizes = %v", inf.chunks)
	}
	// Only the first "a" carries the ▁ prefix; the rest are <unk> characters.
	for i := 1; i < len(text); i += 2 {
		if tags[i] != labeler.EOS {
			t.Fatalf("expected EOS at %d", i)
		}
	}
}

func TestLabeler_Errors(t *testing.T) {
	boom := errors.New("boom")
	l := NewLabeler(&fakeInferer{err: boom}, testTokenizer(t), DefaultThreshold)
	_, err := l.Label(context.Background(), features.Extract([]rune("Hello."), 0))
	if !errors.Is(err, boom) {
		t.Errorf("expected inferer error, got %v", err)
	}

	l = NewLabeler(&fakeInferer{short: true}, testTokenizer(t), DefaultThreshold)
	if _, err := l.Label(context.Background(), features.Extract([]rune("Hello."), 0)); err == nil {
		t.Error("expected error for short logits")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l = NewLabeler(&fakeInferer{}, testTokenizer(t), DefaultThreshold)
	if _, err := l.Label(ctx, features.Extract([]rune("Hello."), 0)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestLabeler_Close(t *testing.T) {
	inf := &fakeInferer{}
	l := NewLabeler(inf, testTokenizer(t), DefaultThreshold)
	if err := l.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !inf.closed {
		t.Error("expected inferer to be closed")
	}
}

func TestNewBackend_FileNotFound(t *testing.T) {
	_, err := NewBackend("../testdata/nonexistent.onnx", "../testdata/sentencepiece.bpe.model", 0)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestBackend_SaT(t *testing.T) {
	const tokenizerPath = "../testdata/sentencepiece.bpe.model"
	if _, err := os.Stat(tokenizerPath); err != nil {
		t.Skipf("Skipping: tokenizer not available at %s", tokenizerPath)
	}
	session := openSession(t)
	_ = session.Close()

	b, err := NewBackend(testModelPath, tokenizerPath, 0)
	if err != nil {
		t.Fatalf("NewBackend failed: %v", err)
	}
	defer func() { _ = b.Close() }()

	l, err := b.NewLabeler()
	if err != nil {
		t.Fatalf("NewLabeler failed: %v", err)
	}
	defer func() { _ = l.Close() }()

	text := "This is a test. This is another test."
	tags := label(t, l, text)
	if got := eosPositions(tags); len(got) == 0 {
		t.Error("expected at least one boundary")
	}
}
