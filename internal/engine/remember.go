package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/agentcore/ramengine/internal/chunker"
	"github.com/agentcore/ramengine/internal/errs"
	"github.com/agentcore/ramengine/internal/model"
)

// dedupThreshold is the exact-cosine bar a candidate must clear to be
// treated as a duplicate of an in-flight chunk.
const dedupThreshold = 0.95

// Remember chunks, embeds, deduplicates, and (if requested) classifies
// content, then inserts every non-duplicate chunk in one transaction.
// Chunks of one call share a parentId. Returns the first newly-inserted
// row, or else the first merged row.
func (e *Engine) Remember(ctx context.Context, content string, opts RememberOptions) (model.Record, error) {
	var result model.Record
	err := e.instrument("remember", func() error {
		content = strings.TrimSpace(content)
		if content == "" {
			return fmt.Errorf("%w: empty content", errs.ErrInputInvalid)
		}
		if err := e.validateOpts(opts); err != nil {
			return err
		}
		if e.embedder == nil {
			return fmt.Errorf("%w: no embedder configured", errs.ErrNotConfigured)
		}

		scope := opts.Scope
		if scope == "" {
			scope = model.ScopeGlobal
		}
		importance := 0.5
		if opts.Importance != nil {
			importance = *opts.Importance
		}
		validity := 1.0
		if opts.ValidityScore != nil {
			validity = *opts.ValidityScore
		}

		chunks := chunker.Chunk(content, e.tokenizer, e.chunkOpts)
		if len(chunks) == 0 {
			return fmt.Errorf("%w: chunking produced no content", errs.ErrEmptyMemoryChunks)
		}

		parentID := ulid.Make().String()
		now := time.Now().UTC()

		var newRows []model.Record
		var firstMerged *model.Record

		for i, chunkText := range chunks {
			emb, err := e.embedder.Embed(ctx, chunkText)
			if err != nil {
				return err
			}

			dup, err := e.store.FindSemanticDuplicate(ctx, emb, scope, dedupThreshold)
			if err != nil {
				return err
			}

			tokenCount := len(e.tokenizer.Tokenize(chunkText))
			kind, err := e.resolveKind(ctx, opts.Kind, emb, scope)
			if err != nil {
				return err
			}

			if dup != nil {
				merged, err := e.store.MergeInto(ctx, dup.ID, chunkText, kind, emb, tokenCount, importance)
				if err != nil {
					return err
				}
				if firstMerged == nil {
					firstMerged = &merged
				}
				continue
			}

			newRows = append(newRows, model.Record{
				ID:            ulid.Make().String(),
				ParentID:      parentID,
				ChunkIndex:    i,
				Content:       chunkText,
				Kind:          kind,
				Scope:         scope,
				Importance:    importance,
				TokenCount:    tokenCount,
				ValidityScore: validity,
				IsNegative:    opts.IsNegative,
				CreatedAt:     now,
				UpdatedAt:     now,
				Embedding:     emb,
			})
		}

		if len(newRows) > 0 {
			if err := e.store.InsertRows(ctx, newRows); err != nil {
				return err
			}
			result = newRows[0]
			return nil
		}

		if firstMerged != nil {
			result = *firstMerged
			return nil
		}

		return fmt.Errorf("%w: no row created or merged", errs.ErrEmptyMemoryChunks)
	})
	return result, err
}

// resolveKind returns kindDirective as an enum value, or classifies emb via
// the classifier when kindDirective is empty or the "auto" directive.
// "auto" is an input directive; it is never itself a stored kind value.
func (e *Engine) resolveKind(ctx context.Context, kindDirective string, emb model.Vector, scope model.Scope) (model.Kind, error) {
	if kindDirective != "" && kindDirective != KindAuto {
		return model.Kind(kindDirective), nil
	}
	result, err := e.classifier.Classify(ctx, emb, &scope)
	if err != nil {
		return "", err
	}
	return result.Kind, nil
}
