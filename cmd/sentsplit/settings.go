package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	sentsplit "github.com/jamesainslie/go-sentsplit"
	"github.com/jamesainslie/go-sentsplit/config"
	"github.com/jamesainslie/go-sentsplit/inference"
	"github.com/jamesainslie/go-sentsplit/rules"
)

// settingsFlags are the segmenter settings every command accepts. Only
// flags given on the command line override the language defaults.
type settingsFlags struct {
	lang           string
	model          string
	tokenizer      string
	modelDir       string
	ngram          int
	mincut         int
	maxcut         int
	strip          bool
	handleSpaces   bool
	preventSplit   bool
	segmentRegexes string
	preventRegexes string
	threshold      float32
}

func (f *settingsFlags) register(fs *pflag.FlagSet) {
	base := config.Base()
	fs.StringVarP(&f.lang, "lang", "l", "en", "language code")
	fs.StringVarP(&f.model, "model", "m", "", "model path or punkt:<language>")
	fs.StringVar(&f.tokenizer, "tokenizer", "", "SentencePiece model for ONNX models")
	fs.StringVar(&f.modelDir, "model-dir", config.DefaultModelDir(), "directory relative model paths resolve against")
	fs.IntVar(&f.ngram, "ngram", base.Ngram, "characters of context on either side")
	fs.IntVar(&f.mincut, "mincut", base.Mincut, "a sentence must be longer than this unless it ends its line")
	fs.IntVar(&f.maxcut, "maxcut", base.Maxcut, "force-split sentences reaching this length")
	fs.BoolVar(&f.strip, "strip-spaces", base.StripSpaces, "trim whitespace around sentences")
	fs.BoolVar(&f.handleSpaces, "handle-multiple-spaces", base.HandleMultipleSpaces, "collapse whitespace runs before tagging")
	fs.BoolVar(&f.preventSplit, "prevent-word-split", base.PreventWordSplit, "remove boundaries inside words")
	fs.StringVar(&f.segmentRegexes, "segment-regexes", "", `JSON list of segment rules, e.g. '[{"name":"tilde","regex":"~+","at":"end"}]'`)
	fs.StringVar(&f.preventRegexes, "prevent-regexes", "", `JSON list of prevent rules, e.g. '[{"name":"liberal_url"}]'`)
	fs.Float32Var(&f.threshold, "threshold", inference.DefaultThreshold, "boundary probability threshold for ONNX models")
}

// overrides returns the settings whose flags were set.
func (f *settingsFlags) overrides(fs *pflag.FlagSet) (config.Overrides, error) {
	var o config.Overrides
	if fs.Changed("model") {
		o.Model = &f.model
	}
	if fs.Changed("tokenizer") {
		o.Tokenizer = &f.tokenizer
	}
	if fs.Changed("ngram") {
		o.Ngram = &f.ngram
	}
	if fs.Changed("mincut") {
		o.Mincut = &f.mincut
	}
	if fs.Changed("maxcut") {
		o.Maxcut = &f.maxcut
	}
	if fs.Changed("strip-spaces") {
		o.StripSpaces = &f.strip
	}
	if fs.Changed("handle-multiple-spaces") {
		o.HandleMultipleSpaces = &f.handleSpaces
	}
	if fs.Changed("prevent-word-split") {
		o.PreventWordSplit = &f.preventSplit
	}
	if fs.Changed("segment-regexes") {
		rs, err := parseRules(f.segmentRegexes)
		if err != nil {
			return config.Overrides{}, fmt.Errorf("--segment-regexes: %w", err)
		}
		o.SegmentRegexes = &rs
	}
	if fs.Changed("prevent-regexes") {
		rs, err := parseRules(f.preventRegexes)
		if err != nil {
			return config.Overrides{}, fmt.Errorf("--prevent-regexes: %w", err)
		}
		o.PreventRegexes = &rs
	}
	return o, nil
}

// resolved merges the language default, the config file and the flags.
func (f *settingsFlags) resolved(cmd *cobra.Command) (config.Config, error) {
	fileOv, err := fileOverrides(f.lang)
	if err != nil {
		return config.Config{}, err
	}
	flagOv, err := f.overrides(cmd.Flags())
	if err != nil {
		return config.Config{}, err
	}
	c, ok := config.Builtin().Lookup(f.lang)
	if !ok {
		c = config.Base()
	}
	return c.Merge(fileOv.Merge(flagOv)), nil
}

// options builds the segmenter options for the command.
func (f *settingsFlags) options(cmd *cobra.Command) ([]sentsplit.Option, error) {
	fileOv, err := fileOverrides(f.lang)
	if err != nil {
		return nil, err
	}
	flagOv, err := f.overrides(cmd.Flags())
	if err != nil {
		return nil, err
	}
	return []sentsplit.Option{
		sentsplit.WithLogger(logger),
		sentsplit.WithModelDir(f.modelDir),
		sentsplit.WithThreshold(f.threshold),
		sentsplit.WithOverrides(fileOv),
		sentsplit.WithOverrides(flagOv),
	}, nil
}

func parseRules(s string) ([]rules.Rule, error) {
	var rs []rules.Rule
	if err := json.Unmarshal([]byte(s), &rs); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}
	return rs, nil
}
