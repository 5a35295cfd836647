package sentsplit

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/go-sentsplit/config"
	"github.com/jamesainslie/go-sentsplit/crfsuite"
	"github.com/jamesainslie/go-sentsplit/inference"
	"github.com/jamesainslie/go-sentsplit/labeler"
	"github.com/jamesainslie/go-sentsplit/punkt"
	"github.com/jamesainslie/go-sentsplit/tokenizer"
)

// openBackend loads the model cfg refers to and returns the backend that
// serves it.
func openBackend(cfg config.Config, o options) (labeler.Backend, string, error) {
	if punkt.IsRef(cfg.Model) {
		l, err := punkt.Open(cfg.Model)
		switch {
		case errors.Is(err, punkt.ErrUnknownLanguage), errors.Is(err, os.ErrNotExist):
			return nil, "", fmt.Errorf("%w: %w", ErrModelNotFound, err)
		case err != nil:
			return nil, "", fmt.Errorf("%w: %w", ErrInvalidModel, err)
		}
		return labeler.Shared{Labeler: l}, "punkt", nil
	}

	path, err := config.Locate(cfg.Model, o.modelDir)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrModelNotFound, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".onnx") {
		if cfg.Tokenizer == "" {
			return nil, "", fmt.Errorf("%w: onnx model %s needs a tokenizer", ErrInvalidConfig, path)
		}
		tokPath, err := config.Locate(cfg.Tokenizer, o.modelDir)
		if err != nil {
			return nil, "", fmt.Errorf("%w: tokenizer: %w", ErrModelNotFound, err)
		}
		b, err := inference.NewBackend(path, tokPath, o.threshold)
		switch {
		case errors.Is(err, tokenizer.ErrInvalidModel):
			return nil, "", fmt.Errorf("%w: %w", ErrInvalidModel, err)
		case err != nil:
			return nil, "", fmt.Errorf("loading onnx backend: %w", err)
		}
		return b, "onnx", nil
	}

	m, err := crfsuite.Open(path)
	switch {
	case errors.Is(err, crfsuite.ErrInvalidModel):
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidModel, err)
	case err != nil:
		return nil, "", fmt.Errorf("loading crfsuite model: %w", err)
	}
	return m, "crfsuite", nil
}
