package sentsplit

import "errors"

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrInvalidConfig indicates settings that cannot drive a segmenter.
	ErrInvalidConfig = errors.New("sentsplit: invalid configuration")

	// ErrModelNotFound indicates the model reference does not resolve to a file.
	ErrModelNotFound = errors.New("sentsplit: model not found")

	// ErrInvalidModel indicates the model exists but cannot be loaded.
	ErrInvalidModel = errors.New("sentsplit: invalid model")

	// ErrIrreducibleSpan indicates text that could not be cut below maxcut,
	// usually because maxcut is not larger than mincut.
	ErrIrreducibleSpan = errors.New("sentsplit: span cannot be reduced below maxcut")

	// ErrClosed is returned by calls made after Close.
	ErrClosed = errors.New("sentsplit: segmenter is closed")
)
