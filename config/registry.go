package config

import (
	"maps"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/language"

	"github.com/jamesainslie/go-sentsplit/rules"
)

// Base returns the settings every built-in language starts from. It has no
// model.
func Base() Config {
	return Config{
		Ngram:                5,
		Mincut:               7,
		Maxcut:               500,
		StripSpaces:          false,
		HandleMultipleSpaces: true,
		PreventWordSplit:     true,
		SegmentRegexes: []rules.Rule{
			{Name: "after_semicolon"},
			{Name: "ellipsis"},
			{Name: "newline"},
		},
		PreventRegexes: []rules.Rule{
			{Name: "liberal_url"},
			{Name: "period_followed_by_lowercase"},
		},
	}
}

// Registry maps normalised language codes to configurations. It is safe for
// concurrent use.
type Registry struct {
	mu    sync.RWMutex
	langs map[string]Config
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{langs: make(map[string]Config)}
}

// Builtin returns a fresh registry holding the shipped language defaults.
func Builtin() *Registry {
	r := NewRegistry()
	for _, lang := range []string{"de", "en", "fr", "it", "lt", "pl", "pt", "ru", "tr"} {
		c := Base()
		c.Model = "crf_models/" + lang + "-default-25032021.model"
		r.Register(lang, c)
	}

	ko := Base()
	ko.Model = "crf_models/ko-default-05042021.model"
	ko.Mincut = 5
	r.Register("ko", ko)

	for _, lang := range []string{"ja", "zh"} {
		c := Base()
		c.Model = "crf_models/" + lang + "-default-05042021.model"
		c.Mincut = 5
		c.PreventWordSplit = false
		r.Register(lang, c)
	}
	return r
}

// Register stores c under lang, replacing any previous entry.
func (r *Registry) Register(lang string, c Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.langs[Normalize(lang)] = c.Clone()
}

// Lookup returns a copy of the configuration registered for lang.
func (r *Registry) Lookup(lang string) (Config, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.langs[Normalize(lang)]
	if !ok {
		return Config{}, false
	}
	return c.Clone(), true
}

// Languages returns the registered codes in sorted order.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.langs))
}

// Normalize reduces a language tag to its base ISO code, so "en-US" and
// "EN" both become "en". Unparseable input is only lower-cased.
func Normalize(lang string) string {
	lang = strings.TrimSpace(lang)
	tag, err := language.Parse(lang)
	if err != nil {
		return strings.ToLower(lang)
	}
	base, _ := tag.Base()
	return base.String()
}
