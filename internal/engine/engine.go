// Package engine implements the public Engine facade: the single entry
// point that orchestrates chunking, embedding, deduplication,
// classification, storage, retrieval scoring, and diversity reranking. No
// other package in this repo is imported by external callers directly —
// Storage is an implementation detail behind this facade.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/agentcore/ramengine/internal/annindex"
	"github.com/agentcore/ramengine/internal/chunker"
	"github.com/agentcore/ramengine/internal/classify"
	"github.com/agentcore/ramengine/internal/embedding"
	"github.com/agentcore/ramengine/internal/errs"
	"github.com/agentcore/ramengine/internal/metrics"
	"github.com/agentcore/ramengine/internal/model"
	"github.com/agentcore/ramengine/internal/store"
	"github.com/agentcore/ramengine/internal/tokenizer"
)

const queryEmbedCacheCapacity = 512

// Engine owns one Storage handle plus the process-wide caches, all
// constructed explicitly by New. It is safe for concurrent use: Storage
// serializes writes internally, and the classifier and query cache guard
// their own state.
type Engine struct {
	store      store.Store
	embedder   embedding.Embedder
	tokenizer  tokenizer.Tokenizer
	classifier *classify.Classifier
	chunkOpts  chunker.Options
	cache      *ristretto.Cache
	validate   *validator.Validate
	log        zerolog.Logger
	metrics    *metrics.Metrics
	dbPath     string
}

// Config wires an Engine's injected capabilities. Embedder may be nil — the
// engine then still functions for content that never needs embedding
// (nothing does, in practice, since remember always embeds; a nil embedder
// makes remember/recall fail NotConfigured rather than panic).
type Config struct {
	DBPath    string
	Embedder  embedding.Embedder
	Tokenizer tokenizer.Tokenizer
	Logger    zerolog.Logger
	Metrics   *metrics.Metrics

	// ANNIndex overrides the default Enabled chromem-go index. Used by
	// tests that force the index Disabled; production callers leave this
	// nil.
	ANNIndex *annindex.Index
}

// annDensity adapts store.Store's ANNQuery method to the classify.Density
// interface, whose method is named Query — Storage can't satisfy that
// interface directly since Go interface satisfaction requires an exact
// method name match.
type annDensity struct{ s store.Store }

func (d annDensity) Query(ctx context.Context, vec model.Vector, k int, scope *model.Scope) ([]annindex.Neighbor, error) {
	return d.s.ANNQuery(ctx, vec, k, scope)
}

// New opens Storage at cfg.DBPath, rebuilds the ANN index, and wires the
// classifier and query-embedding cache. cfg.Tokenizer is required: New
// fails NotConfigured when it is nil.
func New(ctx context.Context, cfg Config) (*Engine, error) {
	if cfg.Tokenizer == nil {
		return nil, fmt.Errorf("%w: no tokenizer configured", errs.ErrNotConfigured)
	}

	log := cfg.Logger
	m := cfg.Metrics
	if m == nil {
		m = metrics.New()
	}

	ann := cfg.ANNIndex
	if ann == nil {
		ann = annindex.New()
	}
	st, err := store.Open(ctx, cfg.DBPath, ann, log)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStorageError, err)
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: queryEmbedCacheCapacity * 10,
		MaxCost:     queryEmbedCacheCapacity,
		BufferItems: 64,
	})
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("%w: query cache init: %v", errs.ErrStorageError, err)
	}

	e := &Engine{
		store:     st,
		embedder:  cfg.Embedder,
		tokenizer: cfg.Tokenizer,
		chunkOpts: chunker.DefaultOptions(),
		cache:     cache,
		validate:  validator.New(),
		log:       log,
		metrics:   m,
		dbPath:    cfg.DBPath,
	}
	e.classifier = classify.New(cfg.Embedder, annDensity{s: st})

	return e, nil
}

// Close releases the underlying Storage handle.
func (e *Engine) Close() error {
	e.cache.Close()
	return e.store.Close()
}

func (e *Engine) validateOpts(opts interface{}) error {
	if err := e.validate.Struct(opts); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInputInvalid, err)
	}
	return nil
}

// instrument wraps op with a structured log line and a Prometheus
// counter/histogram observation.
func (e *Engine) instrument(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	dur := time.Since(start).Seconds()

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	e.metrics.Observe(op, outcome, dur)

	evt := e.log.Info()
	if err != nil {
		evt = e.log.Warn().Err(err)
	}
	evt.Str("op", op).Dur("duration", time.Since(start)).Msg("engine operation")

	return err
}

// embedCached embeds text, serving from the query-embedding LRU when
// present.
func (e *Engine) embedCached(ctx context.Context, text string) (model.Vector, error) {
	if e.embedder == nil {
		return nil, fmt.Errorf("%w: no embedder configured", errs.ErrNotConfigured)
	}
	if v, ok := e.cache.Get(text); ok {
		return v.(model.Vector), nil
	}
	vec, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.Set(text, vec, 1)
	return vec, nil
}
