// Package store implements the durable record table plus the FTS and ANN
// indexes that back it: transactional writes, the semantic-dedup probe,
// merge-in-place, recall-metric bumps, and the query paths the engine
// facade composes into remember/recall.
package store

import (
	"context"
	"time"

	"github.com/agentcore/ramengine/internal/annindex"
	"github.com/agentcore/ramengine/internal/model"
)

// ListOptions filters and paginates List.
type ListOptions struct {
	Scope  *model.Scope
	Kind   *model.Kind
	Query  string // case-insensitive substring match against content
	Limit  int    // clamped to [1,200], default 30
	Offset int    // >= 0
}

// Stats is the human-facing corpus summary; the status() payload takes its
// corpus size from it.
type Stats struct {
	CorpusSize  int
	ByKind      map[model.Kind]int
	ByScope     map[model.Scope]int
	DBSizeBytes int64
	ANNEnabled  bool
	ANNMessage  string
	// HumanSummary is a one-line human-readable rendering of the above,
	// e.g. "1,204 memories, 3.2 MB", for callers displaying stats to a
	// person. No CLI command prints it; status reports only the raw
	// corpus size.
	HumanSummary string
}

// Store is the persistence capability the engine facade drives. It is
// expressed as an interface — capability, not inheritance — so the
// ANN/FTS backends and the SQL backend can each be swapped or faked
// independently in tests.
type Store interface {
	// InsertRows atomically inserts every row. Rows must already carry an
	// id, parentId, chunkIndex, and timestamps; embeddings may be nil.
	InsertRows(ctx context.Context, rows []model.Record) error

	// FindSemanticDuplicate probes for a near-duplicate: ANN top-12 within
	// scope, exact cosine check against threshold. Returns nil if no
	// candidate clears the threshold or the embedding is empty.
	FindSemanticDuplicate(ctx context.Context, emb model.Vector, scope model.Scope, threshold float64) (*model.Record, error)

	// MergeInto overwrites an existing row's content/kind/embedding per
	// the merge policy: importance <- min(1, 0.9*old + 0.1*newImportance),
	// validityScore <- min(1, old + 0.01). Returns the updated row.
	MergeInto(ctx context.Context, targetID, content string, kind model.Kind, emb model.Vector, tokenCount int, newImportance float64) (model.Record, error)

	// BumpRecallMetrics increments recallCount and bumps importance/
	// lastRecalledAt for every id in one transaction.
	BumpRecallMetrics(ctx context.Context, ids []string, boost float64, now time.Time) error

	// LoadByIDs loads full records (with embeddings) for the given ids,
	// skipping any id that no longer exists.
	LoadByIDs(ctx context.Context, ids []string) ([]model.Record, error)

	// LoadByID loads one full record, or nil if id is unknown.
	LoadByID(ctx context.Context, id string) (*model.Record, error)

	// Siblings returns chunks of parentID with chunkIndex in
	// [chunkIndex-radius, chunkIndex+radius], excluding ids in exclude.
	Siblings(ctx context.Context, parentID string, chunkIndex, radius int, exclude map[string]bool) ([]model.Record, error)

	// ANNQuery returns up to k nearest neighbors of vec, scope-filtered.
	// Empty (nil, nil) if the ANN backend is Disabled or the index is
	// empty — never an error for that case.
	ANNQuery(ctx context.Context, vec model.Vector, k int, scope *model.Scope) ([]annindex.Neighbor, error)

	// FTSQuery returns up to k ids whose content matches text under the
	// FTS5 index, best-effort: an index failure yields (nil, nil), not an
	// error.
	FTSQuery(ctx context.Context, text string, k int) ([]string, error)

	// List returns paginated summaries ordered by updatedAt desc.
	List(ctx context.Context, opts ListOptions) ([]model.Summary, error)

	// Delete removes a row plus its FTS and ANN entries. Idempotent.
	Delete(ctx context.Context, id string) error

	// CountByKind returns a zero-filled map over every enum value.
	CountByKind(ctx context.Context, scope *model.Scope, query string) (map[model.Kind]int, error)

	// MarkInvalid sets validityScore and isNegative on id.
	MarkInvalid(ctx context.Context, id string, score float64, now time.Time) error

	// CorpusSize returns the total non-deleted row count.
	CorpusSize(ctx context.Context) (int, error)

	// Stats returns the corpus summary used by status()/stats.
	Stats(ctx context.Context) (Stats, error)

	// ExportAll returns every row for backup/migration.
	ExportAll(ctx context.Context) ([]model.Record, error)

	// Import re-inserts a previously exported record set, skipping ids
	// that already exist.
	Import(ctx context.Context, records []model.Record) (int, error)

	// ANNStatus reports the ANN backend's Enabled/Disabled state.
	ANNStatus() (enabled bool, message string)

	// Close releases the underlying database handle.
	Close() error
}
