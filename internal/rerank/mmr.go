// Package rerank implements the Maximal Marginal Relevance diversity
// selector used to keep recall results from clustering on near-duplicate
// content.
package rerank

import (
	"sort"

	"github.com/agentcore/ramengine/internal/embedding"
	"github.com/agentcore/ramengine/internal/scoring"
)

// Lambda is the fixed MMR relevance/diversity tradeoff.
const Lambda = 0.75

// Select picks k items from candidates using MMR with the fixed lambda
// above. If len(candidates) <= k, the input order is returned unchanged.
// Otherwise selection proceeds by greedily maximizing
// lambda*score - (1-lambda)*maxSim(candidate, selected), ties broken by
// earlier position in the score-descending order. The result is finally
// re-sorted by (score desc, updatedAt desc, id asc) for presentation.
func Select(candidates []scoring.Scored, k int) []scoring.Scored {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}
	if len(candidates) <= k {
		out := make([]scoring.Scored, len(candidates))
		copy(out, candidates)
		return out
	}

	ordered := make([]scoring.Scored, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Score > ordered[j].Score })

	chosen := make([]bool, len(ordered))
	var selected []scoring.Scored

	for len(selected) < k {
		bestIdx := -1
		bestVal := 0.0
		for i, cand := range ordered {
			if chosen[i] {
				continue
			}
			maxSim := 0.0
			for _, s := range selected {
				if sim := embedding.CosineSimilarity(cand.Record.Embedding, s.Record.Embedding); sim > maxSim {
					maxSim = sim
				}
			}
			val := Lambda*cand.Score - (1-Lambda)*maxSim
			if bestIdx == -1 || val > bestVal {
				bestIdx = i
				bestVal = val
			}
		}
		if bestIdx == -1 {
			break
		}
		chosen[bestIdx] = true
		selected = append(selected, ordered[bestIdx])
	}

	sort.SliceStable(selected, func(i, j int) bool {
		a, b := selected[i], selected[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.Record.UpdatedAt.Equal(b.Record.UpdatedAt) {
			return a.Record.UpdatedAt.After(b.Record.UpdatedAt)
		}
		return a.Record.ID < b.Record.ID
	})

	return selected
}
