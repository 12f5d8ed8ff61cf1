package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/agentcore/ramengine/internal/errs"
	"github.com/agentcore/ramengine/internal/model"
	"github.com/agentcore/ramengine/internal/store"
)

const markInvalidDefaultScore = 0.2

// Open returns a full record by id, or nil if it doesn't exist. NotFound is
// not treated as an error here.
func (e *Engine) Open(ctx context.Context, id string) (*model.Record, error) {
	var result *model.Record
	err := e.instrument("open", func() error {
		rec, err := e.store.LoadByID(ctx, id)
		if err != nil {
			return err
		}
		result = rec
		return nil
	})
	return result, err
}

// Forget deletes a record and its index entries. Idempotent: forgetting an
// unknown id is a no-op success.
func (e *Engine) Forget(ctx context.Context, id string) error {
	return e.instrument("forget", func() error {
		return e.store.Delete(ctx, id)
	})
}

// List returns paginated summaries ordered by updatedAt desc.
func (e *Engine) List(ctx context.Context, opts ListOptions) ([]model.Summary, error) {
	var result []model.Summary
	err := e.instrument("list", func() error {
		if err := e.validateOpts(opts); err != nil {
			return err
		}
		summaries, err := e.store.List(ctx, store.ListOptions{
			Scope:  opts.Scope,
			Kind:   opts.Kind,
			Query:  opts.Query,
			Limit:  opts.Limit,
			Offset: opts.Offset,
		})
		if err != nil {
			return err
		}
		result = summaries
		return nil
	})
	return result, err
}

// CountByKind returns a zero-filled map over every enum value.
func (e *Engine) CountByKind(ctx context.Context, opts CountByKindOptions) (map[model.Kind]int, error) {
	var result map[model.Kind]int
	err := e.instrument("count-by-kind", func() error {
		if err := e.validateOpts(opts); err != nil {
			return err
		}
		counts, err := e.store.CountByKind(ctx, opts.Scope, opts.Query)
		if err != nil {
			return err
		}
		result = counts
		return nil
	})
	return result, err
}

// MarkInvalid sets validityScore and isNegative on id. score is clamped to
// [0,1]; nil means unset and defaults to 0.2, matching
// RememberOptions.Importance's nil-means-unset convention. An explicit 0 is
// a valid request meaning "fully invalid" and is honored as-is.
func (e *Engine) MarkInvalid(ctx context.Context, id string, score *float64) error {
	return e.instrument("mark-invalid", func() error {
		s := markInvalidDefaultScore
		if score != nil {
			s = *score
		}
		if s < 0 {
			s = 0
		}
		if s > 1 {
			s = 1
		}
		return e.store.MarkInvalid(ctx, id, s, time.Now().UTC())
	})
}

// Status returns the read-only status payload.
func (e *Engine) Status(ctx context.Context) (Status, error) {
	var result Status
	err := e.instrument("status", func() error {
		stats, err := e.store.Stats(ctx)
		if err != nil {
			return err
		}
		abs, err := filepath.Abs(e.dbPath)
		if err != nil {
			abs = e.dbPath
		}
		result = Status{
			Path:       abs,
			ANN:        ANNStatus{Enabled: stats.ANNEnabled, Message: stats.ANNMessage},
			CorpusSize: stats.CorpusSize,
		}
		return nil
	})
	return result, err
}

// Export returns every stored record for backup or migration.
func (e *Engine) Export(ctx context.Context) ([]model.Record, error) {
	var result []model.Record
	err := e.instrument("export", func() error {
		records, err := e.store.ExportAll(ctx)
		if err != nil {
			return err
		}
		result = records
		return nil
	})
	return result, err
}

// Import inserts every record whose id doesn't already exist, skipping
// the rest. It does not run the semantic-dedup probe: two different ids
// with near-identical content will both be kept. Returns the count of
// rows actually inserted.
func (e *Engine) Import(ctx context.Context, records []model.Record) (int, error) {
	var result int
	err := e.instrument("import", func() error {
		if len(records) == 0 {
			return fmt.Errorf("%w: no records to import", errs.ErrInputInvalid)
		}
		n, err := e.store.Import(ctx, records)
		if err != nil {
			return err
		}
		result = n
		return nil
	})
	return result, err
}
