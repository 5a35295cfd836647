package sentsplit

import (
	"log/slog"
	"runtime"

	"github.com/jamesainslie/go-sentsplit/config"
	"github.com/jamesainslie/go-sentsplit/inference"
	"github.com/jamesainslie/go-sentsplit/labeler"
	"github.com/jamesainslie/go-sentsplit/rules"
)

// Option configures a Segmenter.
type Option func(*options)

type options struct {
	overrides config.Overrides
	modelDir  string
	registry  *config.Registry
	threshold float32
	poolSize  int
	cacheSize int
	logger    *slog.Logger
	backend   labeler.Backend
}

func defaultOptions() options {
	return options{
		modelDir:  config.DefaultModelDir(),
		threshold: inference.DefaultThreshold,
		poolSize:  runtime.NumCPU(),
		logger:    slog.Default(),
	}
}

// WithModel sets the model reference, overriding the language default.
func WithModel(ref string) Option {
	return func(o *options) {
		o.overrides.Model = &ref
	}
}

// WithTokenizer sets the SentencePiece tokenizer used by ONNX models.
func WithTokenizer(path string) Option {
	return func(o *options) {
		o.overrides.Tokenizer = &path
	}
}

// WithModelDir sets the directory relative model paths are resolved
// against (default: $SENTSPLIT_MODEL_DIR).
func WithModelDir(dir string) Option {
	return func(o *options) {
		o.modelDir = dir
	}
}

// WithNgram sets how many characters of context each feature bundle sees on
// either side.
func WithNgram(n int) Option {
	return func(o *options) {
		o.overrides.Ngram = &n
	}
}

// WithMincut sets the length a sentence must exceed unless it ends its
// fragment.
func WithMincut(n int) Option {
	return func(o *options) {
		o.overrides.Mincut = &n
	}
}

// WithMaxcut sets the length at which a running sentence is force-split.
func WithMaxcut(n int) Option {
	return func(o *options) {
		o.overrides.Maxcut = &n
	}
}

// WithStripSpaces trims whitespace around every emitted sentence.
func WithStripSpaces(b bool) Option {
	return func(o *options) {
		o.overrides.StripSpaces = &b
	}
}

// WithHandleMultipleSpaces collapses whitespace runs before tagging.
func WithHandleMultipleSpaces(b bool) Option {
	return func(o *options) {
		o.overrides.HandleMultipleSpaces = &b
	}
}

// WithPreventWordSplit removes boundaries that fall inside a word.
func WithPreventWordSplit(b bool) Option {
	return func(o *options) {
		o.overrides.PreventWordSplit = &b
	}
}

// WithSegmentRegexes replaces the rules that force boundaries.
func WithSegmentRegexes(rs ...rules.Rule) Option {
	return func(o *options) {
		o.overrides.SegmentRegexes = &rs
	}
}

// WithPreventRegexes replaces the rules that forbid boundaries.
func WithPreventRegexes(rs ...rules.Rule) Option {
	return func(o *options) {
		o.overrides.PreventRegexes = &rs
	}
}

// WithOverrides applies every non-nil field of ov, typically from a config
// file.
func WithOverrides(ov config.Overrides) Option {
	return func(o *options) {
		o.overrides = o.overrides.Merge(ov)
	}
}

// WithRegistry sets the language defaults (default: config.Builtin()).
func WithRegistry(r *config.Registry) Option {
	return func(o *options) {
		if r != nil {
			o.registry = r
		}
	}
}

// WithThreshold sets the boundary probability threshold of ONNX models
// (default: 0.025).
func WithThreshold(t float32) Option {
	return func(o *options) {
		if t > 0 {
			o.threshold = t
		}
	}
}

// WithPoolSize sets the number of labeler instances (default: runtime.NumCPU()).
func WithPoolSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.poolSize = n
		}
	}
}

// WithCacheSize caches the sentences of up to n distinct lines
// (default: 0, no cache).
func WithCacheSize(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.cacheSize = n
		}
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithBackend supplies the labeler backend instead of loading a model. The
// Segmenter takes ownership and closes it.
func WithBackend(b labeler.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithLabeler supplies a single reentrant labeler shared by all workers.
// The Segmenter takes ownership and closes it.
func WithLabeler(l labeler.Labeler) Option {
	return func(o *options) {
		if l != nil {
			o.backend = labeler.Shared{Labeler: l}
		}
	}
}

// CallOption adjusts a single Segment call.
type CallOption func(*callOptions)

type callOptions struct {
	strip *bool
}

// Strip overrides the strip_spaces setting for one call.
func Strip(b bool) CallOption {
	return func(c *callOptions) {
		c.strip = &b
	}
}
