package inference

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/jamesainslie/go-sentsplit/features"
	"github.com/jamesainslie/go-sentsplit/labeler"
	"github.com/jamesainslie/go-sentsplit/tokenizer"
)

const (
	// maxSeqLen is the maximum sequence length supported by the model.
	// The model supports positions 0-513, so max is 514 tokens.
	// We use 512 to leave margin for safety.
	maxSeqLen = 512

	// chunkOverlap is the number of overlapping tokens between chunks.
	// This ensures boundary detection works properly at chunk boundaries.
	chunkOverlap = 64

	// DefaultThreshold is the boundary probability above which a token ends
	// a sentence.
	DefaultThreshold = 0.025
)

// Inferer produces one boundary logit per input token.
type Inferer interface {
	Infer(ctx context.Context, inputIDs, attentionMask []int64) ([]float32, error)
	Close() error
}

// Backend opens one ONNX session per labeler over a shared tokenizer.
type Backend struct {
	modelPath string
	tokenizer *tokenizer.Tokenizer
	threshold float32
}

// NewBackend checks the model file and loads the tokenizer. A threshold of
// zero or less selects DefaultThreshold.
func NewBackend(modelPath, tokenizerPath string, threshold float32) (*Backend, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file: %w", err)
	}
	tok, err := tokenizer.New(tokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("loading tokenizer: %w", err)
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Backend{modelPath: modelPath, tokenizer: tok, threshold: threshold}, nil
}

// NewLabeler opens a new ONNX session.
func (b *Backend) NewLabeler() (labeler.Labeler, error) {
	session, err := NewSession(b.modelPath)
	if err != nil {
		return nil, err
	}
	return NewLabeler(session, b.tokenizer, b.threshold), nil
}

// Close releases the tokenizer. Sessions are closed by their labelers.
func (b *Backend) Close() error {
	return b.tokenizer.Close()
}

// Labeler tags the last character of every token whose boundary
// probability exceeds the threshold as EOS.
type Labeler struct {
	inferer   Inferer
	tokenizer *tokenizer.Tokenizer
	threshold float32
}

// NewLabeler wraps inf. The labeler owns inf and closes it.
func NewLabeler(inf Inferer, tok *tokenizer.Tokenizer, threshold float32) *Labeler {
	return &Labeler{inferer: inf, tokenizer: tok, threshold: threshold}
}

// Label implements labeler.Labeler. Only the characters of the bundles are
// used; the model brings its own context.
func (l *Labeler) Label(ctx context.Context, bundles []features.Bundle) ([]labeler.Tag, error) {
	chars := features.Chars(bundles)
	tags := make([]labeler.Tag, len(chars))

	tokens := l.tokenizer.EncodeRunes(chars)
	if len(tokens) == 0 {
		return tags, nil
	}

	// Get logits for all tokens, handling chunking if needed
	logits, err := l.getLogits(ctx, tokens)
	if err != nil {
		return nil, err
	}
	if len(logits) != len(tokens) {
		return nil, fmt.Errorf("model returned %d logits for %d tokens", len(logits), len(tokens))
	}

	for i, logit := range logits {
		if sigmoid(logit) > l.threshold {
			tags[tokens[i].End-1] = labeler.EOS
		}
	}
	return tags, nil
}

// getLogits returns logits for all tokens, chunking if necessary.
func (l *Labeler) getLogits(ctx context.Context, tokens []tokenizer.TokenInfo) ([]float32, error) {
	// If sequence fits in one chunk, process directly
	if len(tokens) <= maxSeqLen {
		return l.inferChunk(ctx, tokens)
	}

	// Process in overlapping chunks
	logits := make([]float32, len(tokens))
	counts := make([]int, len(tokens)) // Track how many times each position was processed

	stride := maxSeqLen - chunkOverlap
	for start := 0; start < len(tokens); start += stride {
		end := min(start+maxSeqLen, len(tokens))

		chunkLogits, err := l.inferChunk(ctx, tokens[start:end])
		if err != nil {
			return nil, err
		}
		if len(chunkLogits) != end-start {
			return nil, fmt.Errorf("model returned %d logits for a chunk of %d tokens", len(chunkLogits), end-start)
		}

		// Accumulate logits (for averaging in overlap regions)
		for i, logit := range chunkLogits {
			logits[start+i] += logit
			counts[start+i]++
		}

		// Stop if we've reached the end
		if end >= len(tokens) {
			break
		}
	}

	// Average logits in overlapping regions
	for i := range logits {
		if counts[i] > 1 {
			logits[i] /= float32(counts[i])
		}
	}

	return logits, nil
}

// inferChunk runs inference on a single chunk of tokens.
func (l *Labeler) inferChunk(ctx context.Context, tokens []tokenizer.TokenInfo) ([]float32, error) {
	inputIDs := make([]int64, len(tokens))
	attentionMask := make([]int64, len(tokens))
	for i, t := range tokens {
		inputIDs[i] = int64(t.ID)
		attentionMask[i] = 1
	}

	return l.inferer.Infer(ctx, inputIDs, attentionMask)
}

// Close closes the underlying session.
func (l *Labeler) Close() error {
	if l.inferer == nil {
		return errors.New("inference: labeler has no session")
	}
	return l.inferer.Close()
}

func sigmoid(x float32) float32 {
	return float32(1.0 / (1.0 + math.Exp(float64(-x))))
}
