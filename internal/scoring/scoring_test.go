package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentcore/ramengine/internal/model"
)

func baseRecord(now time.Time) model.Record {
	return model.Record{
		ID:            "r1",
		Content:       "freedom is the goal",
		Importance:    0.5,
		ValidityScore: 1.0,
		UpdatedAt:     now,
		Embedding:     model.Vector{1, 0, 0},
	}
}

// TestScore_ValidityMonotonic checks that increasing validityScore cannot
// decrease the final score.
func TestScore_ValidityMonotonic(t *testing.T) {
	now := time.Now()
	rec := baseRecord(now)
	rec.ValidityScore = 0.4
	low := Score("freedom", model.Vector{1, 0, 0}, rec, true, now)

	rec.ValidityScore = 0.9
	high := Score("freedom", model.Vector{1, 0, 0}, rec, true, now)

	assert.GreaterOrEqual(t, high.Score, low.Score, "expected higher validity to not decrease score")
}

// TestScore_IsNegativePenalty checks that isNegative strictly decreases
// the score by exactly 0.25, floored at 0.
func TestScore_IsNegativePenalty(t *testing.T) {
	now := time.Now()
	rec := baseRecord(now)
	positive := Score("freedom", model.Vector{1, 0, 0}, rec, true, now)

	rec.IsNegative = true
	negative := Score("freedom", model.Vector{1, 0, 0}, rec, true, now)

	want := positive.Score - 0.25
	if want < 0 {
		want = 0
	}
	require.InDelta(t, want, negative.Score, 1e-9, "expected penalty of exactly 0.25 (floored at 0)")
}

func TestScore_NoEmbeddingYieldsZeroVectorScore(t *testing.T) {
	now := time.Now()
	rec := baseRecord(now)
	rec.Embedding = nil
	scored := Score("freedom", model.Vector{1, 0, 0}, rec, false, now)
	assert.Zero(t, scored.VectorScore, "expected zero vector score with no embedding")
}

func TestScore_FTSHitBoostsLexical(t *testing.T) {
	now := time.Now()
	rec := baseRecord(now)
	// Half of the query tokens overlap, so lexical starts at 0.5 and the
	// FTS boost has room below the clamp at 1.
	withoutHit := Score("goal reached", nil, rec, false, now)
	withHit := Score("goal reached", nil, rec, true, now)
	assert.Greater(t, withHit.LexicalScore, withoutHit.LexicalScore, "expected FTS hit to raise lexical score")
}

func TestScore_SubstringBonus(t *testing.T) {
	now := time.Now()
	rec := baseRecord(now)
	rec.Content = "the exact phrase freedom is the goal appears here"
	// The trailing partial word "go" is no token of either content, so both
	// overlap on 3 of 4 tokens (0.75) and only the exact substring adds 0.3.
	exact := Score("freedom is the go", nil, rec, false, now)
	rec.Content = "goal freedom is the scattered around"
	scattered := Score("freedom is the go", nil, rec, false, now)
	assert.Greater(t, exact.LexicalScore, scattered.LexicalScore, "expected exact substring match to score higher")
}

func TestScore_OlderRecordDecaysImportanceAndRecency(t *testing.T) {
	now := time.Now()
	fresh := baseRecord(now)
	old := baseRecord(now)
	old.UpdatedAt = now.Add(-72 * time.Hour)

	freshScored := Score("freedom", nil, fresh, false, now)
	oldScored := Score("freedom", nil, old, false, now)

	assert.Less(t, oldScored.RecencyScore, freshScored.RecencyScore, "expected older record to have lower recency score")
	assert.Less(t, oldScored.ImportanceScore, freshScored.ImportanceScore, "expected older record to have decayed importance score")
}
