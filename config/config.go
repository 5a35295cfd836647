// Package config holds the per-language segmentation settings, their
// built-in defaults and the TOML override files that adjust them.
package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/jamesainslie/go-sentsplit/rules"
)

// ErrInvalid indicates a configuration that cannot drive a segmenter.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the complete set of settings for one language. Values are
// treated as immutable once handed to a segmenter; use Clone before
// modifying a copy.
type Config struct {
	Model     string `toml:"model"`
	Tokenizer string `toml:"tokenizer,omitempty"`

	Ngram  int `toml:"ngram"`
	Mincut int `toml:"mincut"`
	Maxcut int `toml:"maxcut"`

	StripSpaces          bool `toml:"strip_spaces"`
	HandleMultipleSpaces bool `toml:"handle_multiple_spaces"`
	PreventWordSplit     bool `toml:"prevent_word_split"`

	SegmentRegexes []rules.Rule `toml:"segment_regexes"`
	PreventRegexes []rules.Rule `toml:"prevent_regexes"`
}

// Overrides carries caller-supplied values; a nil field leaves the default
// in place.
type Overrides struct {
	Model     *string `toml:"model"`
	Tokenizer *string `toml:"tokenizer"`

	Ngram  *int `toml:"ngram"`
	Mincut *int `toml:"mincut"`
	Maxcut *int `toml:"maxcut"`

	StripSpaces          *bool `toml:"strip_spaces"`
	HandleMultipleSpaces *bool `toml:"handle_multiple_spaces"`
	PreventWordSplit     *bool `toml:"prevent_word_split"`

	SegmentRegexes *[]rules.Rule `toml:"segment_regexes"`
	PreventRegexes *[]rules.Rule `toml:"prevent_regexes"`
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	c.SegmentRegexes = slices.Clone(c.SegmentRegexes)
	c.PreventRegexes = slices.Clone(c.PreventRegexes)
	return c
}

// Merge returns a copy of c with every non-nil field of o applied.
func (c Config) Merge(o Overrides) Config {
	c = c.Clone()
	set(&c.Model, o.Model)
	set(&c.Tokenizer, o.Tokenizer)
	set(&c.Ngram, o.Ngram)
	set(&c.Mincut, o.Mincut)
	set(&c.Maxcut, o.Maxcut)
	set(&c.StripSpaces, o.StripSpaces)
	set(&c.HandleMultipleSpaces, o.HandleMultipleSpaces)
	set(&c.PreventWordSplit, o.PreventWordSplit)
	if o.SegmentRegexes != nil {
		c.SegmentRegexes = slices.Clone(*o.SegmentRegexes)
	}
	if o.PreventRegexes != nil {
		c.PreventRegexes = slices.Clone(*o.PreventRegexes)
	}
	return c
}

// Merge combines o with later, later values winning.
func (o Overrides) Merge(later Overrides) Overrides {
	pick(&o.Model, later.Model)
	pick(&o.Tokenizer, later.Tokenizer)
	pick(&o.Ngram, later.Ngram)
	pick(&o.Mincut, later.Mincut)
	pick(&o.Maxcut, later.Maxcut)
	pick(&o.StripSpaces, later.StripSpaces)
	pick(&o.HandleMultipleSpaces, later.HandleMultipleSpaces)
	pick(&o.PreventWordSplit, later.PreventWordSplit)
	pick(&o.SegmentRegexes, later.SegmentRegexes)
	pick(&o.PreventRegexes, later.PreventRegexes)
	return o
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func pick[T any](dst **T, v *T) {
	if v != nil {
		*dst = v
	}
}

// Validate reports every problem with c, joined. Rules given only by name
// must be built-in.
func (c Config) Validate() error {
	var errs []error
	if c.Model == "" {
		errs = append(errs, fmt.Errorf("%w: model is required", ErrInvalid))
	}
	return errors.Join(append(errs, c.ValidateSettings())...)
}

// ValidateSettings is Validate without the model requirement, for callers
// that supply their own labeler.
func (c Config) ValidateSettings() error {
	var errs []error
	if c.Ngram < 0 {
		errs = append(errs, fmt.Errorf("%w: ngram must be >= 0, got %d", ErrInvalid, c.Ngram))
	}
	if c.Mincut < 0 {
		errs = append(errs, fmt.Errorf("%w: mincut must be >= 0, got %d", ErrInvalid, c.Mincut))
	}
	if c.Maxcut <= 0 {
		errs = append(errs, fmt.Errorf("%w: maxcut must be > 0, got %d", ErrInvalid, c.Maxcut))
	}
	if _, err := rules.ResolveAll(c.SegmentRegexes); err != nil {
		errs = append(errs, fmt.Errorf("%w: segment_regexes: %w", ErrInvalid, err))
	}
	if _, err := rules.ResolveAll(c.PreventRegexes); err != nil {
		errs = append(errs, fmt.Errorf("%w: prevent_regexes: %w", ErrInvalid, err))
	}
	return errors.Join(errs...)
}

// Ptr returns a pointer to v, for building Overrides literals.
func Ptr[T any](v T) *T {
	return &v
}
