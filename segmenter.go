package sentsplit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/jamesainslie/go-sentsplit/config"
	"github.com/jamesainslie/go-sentsplit/labeler"
	"github.com/jamesainslie/go-sentsplit/rules"
)

type cacheKey struct {
	text  string
	strip bool
}

// Segmenter splits text into sentences for one language.
// It is safe for concurrent use.
type Segmenter struct {
	lang     string
	cfg      config.Config
	adjuster *rules.Adjuster
	backend  labeler.Backend
	pool     *labeler.Pool
	cache    *lru.Cache[cacheKey, []string]
	logger   *slog.Logger

	mu       sync.RWMutex
	closed   bool
	inflight sync.WaitGroup
}

// New creates a Segmenter for lang. The language default from the registry
// is merged with the options; a language without a default needs WithModel
// or a labeler of its own.
func New(lang string, opts ...Option) (*Segmenter, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = config.Builtin()
	}

	cfg, ok := o.registry.Lookup(lang)
	if !ok {
		o.logger.Warn("unsupported language, falling back to base configuration",
			"lang", lang)
		cfg = config.Base()
	}
	cfg = cfg.Merge(o.overrides)

	validate := cfg.Validate
	if o.backend != nil {
		validate = cfg.ValidateSettings
	}
	if err := validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if cfg.Maxcut <= cfg.Mincut {
		o.logger.Warn("maxcut is not larger than mincut; long spans may fail to split",
			"mincut", cfg.Mincut, "maxcut", cfg.Maxcut)
	}

	adjuster, err := rules.NewAdjuster(cfg.SegmentRegexes, cfg.PreventRegexes, cfg.Maxcut, cfg.PreventWordSplit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	backend, kind := o.backend, "custom"
	if backend == nil {
		if backend, kind, err = openBackend(cfg, o); err != nil {
			return nil, err
		}
	}

	pool, err := labeler.NewPool(backend, o.poolSize)
	if err != nil {
		_ = backend.Close() // Best-effort cleanup; original error takes precedence
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}

	s := &Segmenter{
		lang:     config.Normalize(lang),
		cfg:      cfg,
		adjuster: adjuster,
		backend:  backend,
		pool:     pool,
		logger:   o.logger,
	}
	if o.cacheSize > 0 {
		if s.cache, err = lru.New[cacheKey, []string](o.cacheSize); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("creating cache: %w", err)
		}
	}

	o.logger.Info("segmenter loaded",
		"lang", s.lang,
		"model", cfg.Model,
		"backend", kind,
		"ngram", cfg.Ngram,
		"mincut", cfg.Mincut,
		"maxcut", cfg.Maxcut,
		"strip_spaces", cfg.StripSpaces,
		"handle_multiple_spaces", cfg.HandleMultipleSpaces,
		"prevent_word_split", cfg.PreventWordSplit,
		"segment_regexes", ruleNames(cfg.SegmentRegexes),
		"prevent_regexes", ruleNames(cfg.PreventRegexes),
		"pool_size", pool.Size(),
	)
	return s, nil
}

func ruleNames(rs []rules.Rule) []string {
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = r.Name
	}
	return names
}

// Lang returns the normalised language code.
func (s *Segmenter) Lang() string { return s.lang }

// Config returns a copy of the resolved configuration.
func (s *Segmenter) Config() config.Config { return s.cfg.Clone() }

// Segment splits text into sentences. Embedded newlines end fragments that
// are segmented independently; their sentences are returned in order.
func (s *Segmenter) Segment(ctx context.Context, text string, opts ...CallOption) ([]string, error) {
	if err := s.enter(); err != nil {
		return nil, err
	}
	defer s.inflight.Done()

	return s.segment(ctx, text, s.strip(opts))
}

// SegmentAll segments every text, in parallel up to the pool size. The
// result has one entry per text, in order.
func (s *Segmenter) SegmentAll(ctx context.Context, texts []string, opts ...CallOption) ([][]string, error) {
	if err := s.enter(); err != nil {
		return nil, err
	}
	defer s.inflight.Done()

	strip := s.strip(opts)
	results := make([][]string, len(texts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.pool.Size())
	for i, text := range texts {
		g.Go(func() error {
			sents, err := s.segment(ctx, text, strip)
			if err != nil {
				return fmt.Errorf("text %d: %w", i, err)
			}
			results[i] = sents
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// IsComplete reports whether text ends at a sentence boundary, ignoring
// trailing whitespace.
func (s *Segmenter) IsComplete(ctx context.Context, text string) (bool, error) {
	if err := s.enter(); err != nil {
		return false, err
	}
	defer s.inflight.Done()

	frags := splitFragments(text)
	if len(frags) == 0 {
		return false, nil
	}
	last := frags[len(frags)-1]
	end := lastNonSpace(last)
	if end < 0 {
		return false, nil
	}

	l, err := s.acquire(ctx)
	if err != nil {
		return false, err
	}
	defer s.pool.Release(l)

	tags, err := s.tagFragment(ctx, l, last[:end+1])
	if err != nil {
		return false, err
	}
	return tags[end] == labeler.EOS, nil
}

func (s *Segmenter) enter() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	s.inflight.Add(1)
	return nil
}

func (s *Segmenter) strip(opts []CallOption) bool {
	var c callOptions
	for _, opt := range opts {
		opt(&c)
	}
	if c.strip != nil {
		return *c.strip
	}
	return s.cfg.StripSpaces
}

func (s *Segmenter) acquire(ctx context.Context) (labeler.Labeler, error) {
	l, err := s.pool.Acquire(ctx)
	if errors.Is(err, labeler.ErrPoolClosed) {
		return nil, ErrClosed
	}
	return l, err
}

func (s *Segmenter) segment(ctx context.Context, text string, strip bool) ([]string, error) {
	key := cacheKey{text: text, strip: strip}
	if s.cache != nil {
		if sents, ok := s.cache.Get(key); ok {
			return slices.Clone(sents), nil
		}
	}

	sents, err := s.segmentLine(ctx, text, strip)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Add(key, slices.Clone(sents))
	}
	return sents, nil
}

// Close releases the labelers and the model. It waits for calls in flight
// and is safe to call more than once.
func (s *Segmenter) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.inflight.Wait()

	var errs []error
	if err := s.pool.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.backend.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
