// Package scoring implements the hybrid candidate scorer: vector
// similarity, lexical overlap, recency, and importance combined into a
// single ranking score, gated by validity and negative-memory penalties.
// The recency/importance weighting follows the same shape as the
// context-relevance scoring in the original store's context ranking.
package scoring

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/agentcore/ramengine/internal/embedding"
	"github.com/agentcore/ramengine/internal/model"
)

// tokenRe mirrors the query expander's tokenization: letter/digit runs,
// with each CJK ideograph (U+4E00..U+9FA5) as its own token.
var tokenRe = regexp.MustCompile(`[\x{4E00}-\x{9FA5}]|(?:[^\x{4E00}-\x{9FA5}\P{L}]|\p{N})+`)

const negativePenalty = 0.25

// Scored augments a record with the five partial scores plus the final
// combined score.
type Scored struct {
	Record          model.Record
	VectorScore     float64
	LexicalScore    float64
	RecencyScore    float64
	ImportanceScore float64
	Score           float64
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func tokenize(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range tokenRe.FindAllString(strings.ToLower(s), -1) {
		set[t] = true
	}
	return set
}

func lexicalOverlap(query, content string) float64 {
	qTokens := tokenize(query)
	if len(qTokens) == 0 {
		return 0
	}
	cTokens := tokenize(content)
	var hits int
	for t := range qTokens {
		if cTokens[t] {
			hits++
		}
	}
	overlap := float64(hits) / float64(len(qTokens))
	if strings.Contains(strings.ToLower(content), strings.ToLower(query)) {
		overlap += 0.3
	}
	return clamp01(overlap)
}

// Score computes the final hybrid score plus its five partial components
// for one candidate record.
func Score(query string, queryEmb model.Vector, rec model.Record, ftsHit bool, now time.Time) Scored {
	vectorScore := 0.0
	if len(queryEmb) > 0 && len(rec.Embedding) > 0 {
		if cos := embedding.CosineSimilarity(queryEmb, rec.Embedding); cos > 0 {
			vectorScore = cos
		}
	}

	lexical := lexicalOverlap(query, rec.Content)
	lexicalScore := lexical
	if ftsHit {
		lexicalScore = clamp01(lexical + 0.4)
	}

	ageHours := now.Sub(rec.UpdatedAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	recencyScore := 24 / max1(ageHours)
	if recencyScore > 1 {
		recencyScore = 1
	}

	ageDays := ageHours / 24
	importanceScore := clamp01(rec.Importance) * math.Pow(0.99, ageDays)

	base := 0.6*vectorScore + 0.2*lexicalScore + 0.1*importanceScore + 0.1*recencyScore
	score := base * clamp01(rec.ValidityScore)
	if rec.IsNegative {
		score -= negativePenalty
	}
	if score < 0 {
		score = 0
	}

	return Scored{
		Record:          rec,
		VectorScore:     vectorScore,
		LexicalScore:    lexicalScore,
		RecencyScore:    recencyScore,
		ImportanceScore: importanceScore,
		Score:           score,
	}
}

func max1(v float64) float64 {
	if v < 1 {
		return 1
	}
	return v
}
