// Package annindex wraps chromem-go as the engine's approximate-nearest-
// neighbor vector index. It owns an Uninitialized -> Enabled |
// Disabled("<reason>") lifecycle: construction never fails outright, it
// degrades to Disabled with a human-readable reason instead, so Storage
// can keep functioning with lexical-only recall.
package annindex

import (
	"context"
	"fmt"
	"sort"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/agentcore/ramengine/internal/model"
)

const collectionName = "memories"

const (
	scopeMetaKey = "scope"
	kindMetaKey  = "kind"
)

// Neighbor is one k-NN result, distance ascending (smaller is closer).
// Kind is carried alongside so the classifier's density score can group
// neighbors without a second round-trip through Storage.
type Neighbor struct {
	ID       string
	Distance float64
	Kind     model.Kind
}

// Index is the ANN capability: insert/replace by id, delete by id, k-NN
// query with optional scope filter.
type Index struct {
	mu      sync.RWMutex
	col     *chromem.Collection
	enabled bool
	reason  string
}

// New creates an in-process chromem-go collection. It never returns an
// error: any failure to initialize leaves the Index Disabled with a
// human-readable reason, matching the ANN state machine's requirement
// that engine startup never hard-fails on a missing/broken ANN backend.
func New() *Index {
	db := chromem.NewDB()
	col, err := db.CreateCollection(collectionName, nil, nil)
	if err != nil {
		return &Index{enabled: false, reason: fmt.Sprintf("chromem-go collection init failed: %v", err)}
	}
	return &Index{col: col, enabled: true}
}

// NewDisabled returns an Index that reports Disabled(reason) without ever
// attempting to construct a chromem-go backend — used by tests exercising
// the ANN-disabled graceful-degradation path.
func NewDisabled(reason string) *Index {
	return &Index{enabled: false, reason: reason}
}

// Status reports the ANN backend's current state for the engine's
// status() payload.
func (idx *Index) Status() (enabled bool, message string) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if idx.enabled {
		return true, "ok"
	}
	return false, idx.reason
}

// Upsert inserts or replaces the vector for id, tagged with scope and kind
// metadata for filtering and density scoring. A no-op success when the
// index is Disabled.
func (idx *Index) Upsert(ctx context.Context, id string, vec model.Vector, scope model.Scope, kind model.Kind) error {
	idx.mu.RLock()
	enabled, col := idx.enabled, idx.col
	idx.mu.RUnlock()
	if !enabled {
		return nil
	}

	// chromem-go has no direct update-by-id; delete first so re-adding
	// the same id never errors as a duplicate.
	_ = col.Delete(ctx, nil, nil, id)

	doc := chromem.Document{
		ID:        id,
		Embedding: vec,
		Metadata:  map[string]string{scopeMetaKey: string(scope), kindMetaKey: string(kind)},
	}
	if err := col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("annindex: add document: %w", err)
	}
	return nil
}

// Delete removes id from the index. No-op success if the index is
// Disabled or id is absent.
func (idx *Index) Delete(ctx context.Context, id string) error {
	idx.mu.RLock()
	enabled, col := idx.enabled, idx.col
	idx.mu.RUnlock()
	if !enabled {
		return nil
	}
	if err := col.Delete(ctx, nil, nil, id); err != nil {
		return fmt.Errorf("annindex: delete: %w", err)
	}
	return nil
}

// Query returns up to k nearest neighbors of vec, distance ascending,
// optionally restricted to scope. Returns an empty (nil, nil) result when
// the index is Disabled or the collection is empty — callers must treat
// this as "no ANN signal", never as an error.
func (idx *Index) Query(ctx context.Context, vec model.Vector, k int, scope *model.Scope) ([]Neighbor, error) {
	idx.mu.RLock()
	enabled, col := idx.enabled, idx.col
	idx.mu.RUnlock()
	if !enabled || k <= 0 {
		return nil, nil
	}

	var where map[string]string
	if scope != nil {
		where = map[string]string{scopeMetaKey: string(*scope)}
	}

	size := col.Count()
	if size == 0 {
		return nil, nil
	}
	if k > size {
		k = size
	}

	results, err := col.QueryEmbedding(ctx, vec, k, where, nil)
	if err != nil {
		return nil, fmt.Errorf("annindex: query: %w", err)
	}

	neighbors := make([]Neighbor, 0, len(results))
	for _, r := range results {
		neighbors = append(neighbors, Neighbor{
			ID:       r.ID,
			Distance: 1 - float64(r.Similarity),
			Kind:     model.Kind(r.Metadata[kindMetaKey]),
		})
	}
	sort.Slice(neighbors, func(i, j int) bool { return neighbors[i].Distance < neighbors[j].Distance })
	return neighbors, nil
}

// Rebuild upserts a caller-supplied set of (id, embedding, scope) rows into
// the index — used on startup to reconstruct the ANN index from the durable
// record table. It does not clear the index first: entries whose ids are
// absent from rows stay in place.
func (idx *Index) Rebuild(ctx context.Context, rows []RebuildRow) error {
	idx.mu.RLock()
	enabled := idx.enabled
	idx.mu.RUnlock()
	if !enabled {
		return nil
	}
	for _, row := range rows {
		if len(row.Embedding) == 0 {
			continue
		}
		if err := idx.Upsert(ctx, row.ID, row.Embedding, row.Scope, row.Kind); err != nil {
			return err
		}
	}
	return nil
}

// RebuildRow is one record's data as needed to reinsert it into the ANN
// index during startup rebuild.
type RebuildRow struct {
	ID        string
	Embedding model.Vector
	Scope     model.Scope
	Kind      model.Kind
}
