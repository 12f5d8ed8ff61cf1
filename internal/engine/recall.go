package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/agentcore/ramengine/internal/errs"
	"github.com/agentcore/ramengine/internal/model"
	"github.com/agentcore/ramengine/internal/queryexpand"
	"github.com/agentcore/ramengine/internal/rerank"
	"github.com/agentcore/ramengine/internal/scoring"
)

const (
	defaultRecallLimit = 8
	recallBoost        = 0.04
	siblingRadius      = 1
	vectorSiblingDecay = 0.08
	lexicalSiblingDecay = 0.05
	scoreSiblingDecay   = 0.10
)

// dynamicRecallWidth picks a default recallLimit scaled to corpus size.
func dynamicRecallWidth(corpusSize int) int {
	switch {
	case corpusSize > 50000:
		return 200
	case corpusSize > 5000:
		return 100
	default:
		return 50
	}
}

func decayFloor(v, delta float64) float64 {
	v -= delta
	if v < 0 {
		return 0
	}
	return v
}

// RecallScored runs the full hybrid retrieval pipeline and returns
// candidates with their score breakdown.
func (e *Engine) RecallScored(ctx context.Context, query string, opts RecallOptions) ([]scoring.Scored, error) {
	var result []scoring.Scored
	err := e.instrument("recall", func() error {
		trimmed := strings.TrimSpace(query)
		if trimmed == "" {
			return fmt.Errorf("%w: empty query", errs.ErrInputInvalid)
		}
		if err := e.validateOpts(opts); err != nil {
			return err
		}
		if e.embedder == nil {
			return fmt.Errorf("%w: no embedder configured", errs.ErrNotConfigured)
		}

		limit := opts.Limit
		if limit <= 0 {
			limit = defaultRecallLimit
		}

		corpusSize, err := e.store.CorpusSize(ctx)
		if err != nil {
			return err
		}
		recallLimit := dynamicRecallWidth(corpusSize)
		if opts.RecallLimit != nil {
			recallLimit = *opts.RecallLimit
		}

		expansions := queryexpand.Expand(trimmed)
		if len(expansions) == 0 {
			expansions = []string{trimmed}
		}

		k := recallLimit
		if limit*8 > k {
			k = limit * 8
		}

		var canonicalEmb model.Vector
		candidateIDs := make(map[string]bool)
		ftsHits := make(map[string]bool)

		for i, expansion := range expansions {
			emb, err := e.embedCached(ctx, expansion)
			if err != nil {
				return err
			}
			if i == 0 {
				canonicalEmb = emb
			}

			neighbors, err := e.store.ANNQuery(ctx, emb, k, opts.Scope)
			if err != nil {
				return err
			}
			for _, n := range neighbors {
				candidateIDs[n.ID] = true
			}

			ftsIDs, err := e.store.FTSQuery(ctx, expansion, k)
			if err != nil {
				return err
			}
			for _, id := range ftsIDs {
				candidateIDs[id] = true
				ftsHits[id] = true
			}
		}

		if len(candidateIDs) == 0 {
			result = nil
			return nil
		}

		ids := make([]string, 0, len(candidateIDs))
		for id := range candidateIDs {
			ids = append(ids, id)
		}
		rows, err := e.store.LoadByIDs(ctx, ids)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		scored := make([]scoring.Scored, 0, len(rows))
		for _, rec := range rows {
			if opts.Scope != nil && rec.Scope != *opts.Scope {
				continue
			}
			scored = append(scored, scoring.Score(trimmed, canonicalEmb, rec, ftsHits[rec.ID], now))
		}

		sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
		if len(scored) > recallLimit {
			scored = scored[:recallLimit]
		}

		selected := rerank.Select(scored, limit)

		withSiblings, err := e.expandSiblings(ctx, selected)
		if err != nil {
			return err
		}
		final := rerank.Select(withSiblings, limit)

		finalIDs := make([]string, 0, len(final))
		for _, s := range final {
			finalIDs = append(finalIDs, s.Record.ID)
		}
		if len(finalIDs) > 0 {
			if err := e.store.BumpRecallMetrics(ctx, finalIDs, recallBoost, time.Now().UTC()); err != nil {
				return err
			}
		}

		result = final
		return nil
	})
	return result, err
}

// expandSiblings pulls in not-already-present chunks of the same parent
// within radius 1 for each surviving item, carrying decayed scores.
func (e *Engine) expandSiblings(ctx context.Context, selected []scoring.Scored) ([]scoring.Scored, error) {
	present := make(map[string]bool, len(selected))
	for _, s := range selected {
		present[s.Record.ID] = true
	}

	out := make([]scoring.Scored, len(selected))
	copy(out, selected)

	for _, s := range selected {
		sibs, err := e.store.Siblings(ctx, s.Record.ParentID, s.Record.ChunkIndex, siblingRadius, present)
		if err != nil {
			return nil, err
		}
		for _, sib := range sibs {
			present[sib.ID] = true
			out = append(out, scoring.Scored{
				Record:          sib,
				VectorScore:     decayFloor(s.VectorScore, vectorSiblingDecay),
				LexicalScore:    decayFloor(s.LexicalScore, lexicalSiblingDecay),
				RecencyScore:    s.RecencyScore,
				ImportanceScore: s.ImportanceScore,
				Score:           decayFloor(s.Score, scoreSiblingDecay),
			})
		}
	}

	return out, nil
}

// Recall runs RecallScored and returns just the matched records, in the
// same order.
func (e *Engine) Recall(ctx context.Context, query string, opts RecallOptions) ([]model.Record, error) {
	scored, err := e.RecallScored(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	out := make([]model.Record, len(scored))
	for i, s := range scored {
		out[i] = s.Record
	}
	return out, nil
}

// BuildContext renders recalled chunks into a fixed presentation format,
// grouping chunks by parentId and greedily filling up to maxChars.
func (e *Engine) BuildContext(ctx context.Context, query string, opts BuildContextOptions) (string, error) {
	var result string
	err := e.instrument("build-context", func() error {
		if err := e.validateOpts(opts); err != nil {
			return err
		}
		limit := opts.Limit
		if limit <= 0 {
			limit = 5
		}
		maxChars := opts.MaxChars
		if maxChars <= 0 {
			maxChars = 2400
		}
		recallLimit := 6 * limit
		if recallLimit < 30 {
			recallLimit = 30
		}

		scored, err := e.RecallScored(ctx, query, RecallOptions{Limit: limit, RecallLimit: &recallLimit})
		if err != nil {
			return err
		}

		type group struct {
			maxScore float64
			kind     model.Kind
			scope    model.Scope
			chunks   []scoring.Scored
		}
		groups := make(map[string]*group)
		var order []string
		for _, s := range scored {
			g, ok := groups[s.Record.ParentID]
			if !ok {
				g = &group{}
				groups[s.Record.ParentID] = g
				order = append(order, s.Record.ParentID)
			}
			g.chunks = append(g.chunks, s)
			if s.Score > g.maxScore || len(g.chunks) == 1 {
				g.maxScore = s.Score
				g.kind = s.Record.Kind
				g.scope = s.Record.Scope
			}
		}

		sort.SliceStable(order, func(i, j int) bool { return groups[order[i]].maxScore > groups[order[j]].maxScore })

		var lines []string
		total := 0
		for _, pid := range order {
			g := groups[pid]
			sort.SliceStable(g.chunks, func(i, j int) bool { return g.chunks[i].Record.ChunkIndex < g.chunks[j].Record.ChunkIndex })
			parts := make([]string, len(g.chunks))
			for i, c := range g.chunks {
				parts[i] = c.Record.Content
			}
			line := fmt.Sprintf("- (%s/%s|score=%.3f) %s", g.kind, g.scope, g.maxScore, strings.Join(parts, " "))

			addLen := len(line)
			if len(lines) > 0 {
				addLen++
			}
			if total+addLen > maxChars {
				break
			}
			lines = append(lines, line)
			total += addLen
		}

		result = strings.Join(lines, "\n")
		return nil
	})
	return result, err
}
