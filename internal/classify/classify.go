// Package classify infers a memory's kind from its embedding using a
// static prototype table, ANN-neighbor density, and online prototype
// learning. The shared prototype cache and learned queues are guarded by
// a sync.RWMutex, the same discipline chromem-go's collection map uses.
package classify

import (
	"context"
	"sync"

	"github.com/agentcore/ramengine/internal/annindex"
	"github.com/agentcore/ramengine/internal/embedding"
	"github.com/agentcore/ramengine/internal/model"
)

const (
	protoTopThreshold    = 0.52
	protoGapThreshold    = 0.045
	protoDensityGate     = 0.35
	gatedDensityDiscount = 0.25
	confidenceThreshold  = 0.28
	learnThreshold       = 0.93
	learnedCapacity      = 64
	annNeighborCount     = 20
)

// staticExemplars seeds each classifiable kind's prototype set. Map order
// carries no meaning; decision path 2 breaks ties in the order of
// model.ClassifiableKinds.
var staticExemplars = map[model.Kind][]string{
	model.KindIdentity: {
		"My name is Alex and I work as a backend engineer.",
		"I live in Toronto and was born in 1990.",
		"You can reach me at alex@example.com.",
		"I am married with two kids.",
		"Call me Sam, I go by that nickname.",
		"My job title is senior platform engineer.",
		"I identify as a night owl who codes best after midnight.",
	},
	model.KindTask: {
		"Remind me to renew the domain next week.",
		"TODO: finish the quarterly report by Friday.",
		"Action item: follow up with the vendor about pricing.",
		"Schedule a meeting with the design team on Monday.",
		"Deadline is end of month for the migration.",
		"Next step is to deploy the hotfix to production.",
		"Need to complete the security review before launch.",
	},
	model.KindKnowledge: {
		"The capital of France is Paris.",
		"Water boils at 100 degrees Celsius at sea level.",
		"Photosynthesis converts sunlight into chemical energy.",
		"In general relativity, gravity is the curvature of spacetime.",
		"The quicksort algorithm has average case O(n log n) time.",
		"A transaction is atomic, consistent, isolated, and durable.",
		"The mitochondria is the powerhouse of the cell.",
	},
	model.KindReference: {
		"See docs at https://example.com/manual for the full API.",
		"Refer to the manual, chapter 4, for setup instructions.",
		"Source: https://arxiv.org/abs/1234.5678",
		"Documentation is available at docs.example.com.",
		"Link: https://github.com/example/repo/blob/main/README.md",
		"Citation: Smith et al., 2021, Journal of Systems.",
	},
	model.KindNote: {
		"Just a quick note to self about the weather today.",
		"Random thought: the coffee here is surprisingly good.",
		"FYI, the office will be closed on Friday.",
		"Jotting down an idea before I forget it.",
		"Misc: parking validation is at the front desk.",
		"Quick reminder that this isn't urgent, just musing.",
	},
}

// Density is the neighbor-density lookup the classifier needs; satisfied
// by *annindex.Index. Declared as an interface so the classifier can be
// tested against a fake without a real vector backend.
type Density interface {
	Query(ctx context.Context, vec model.Vector, k int, scope *model.Scope) ([]annindex.Neighbor, error)
}

// Classifier infers kind from an embedding vector.
type Classifier struct {
	embedder embedding.Embedder
	density  Density

	protoOnce sync.Once
	protoErr  error
	static    map[model.Kind][]model.Vector

	mu      sync.RWMutex
	learned map[model.Kind][]model.Vector
}

// New constructs a Classifier. embedder is used once, lazily, to embed the
// static exemplar table on first classification.
func New(embedder embedding.Embedder, density Density) *Classifier {
	return &Classifier{
		embedder: embedder,
		density:  density,
		learned:  make(map[model.Kind][]model.Vector),
	}
}

// Result carries the decision plus enough detail for the online-learning
// step and for callers who want to log the reasoning.
type Result struct {
	Kind       model.Kind
	Confidence float64
}

func (c *Classifier) ensureStatic(ctx context.Context) error {
	c.protoOnce.Do(func() {
		if c.embedder == nil {
			c.protoErr = nil
			c.static = map[model.Kind][]model.Vector{}
			return
		}
		static := make(map[model.Kind][]model.Vector, len(staticExemplars))
		for kind, exemplars := range staticExemplars {
			vecs := make([]model.Vector, 0, len(exemplars))
			for _, ex := range exemplars {
				v, err := c.embedder.Embed(ctx, ex)
				if err != nil {
					c.protoErr = err
					return
				}
				vecs = append(vecs, v)
			}
			static[kind] = vecs
		}
		c.static = static
	})
	return c.protoErr
}

// Classify returns the inferred kind and confidence for memEmb, optionally
// restricting ANN density lookup to scope.
func (c *Classifier) Classify(ctx context.Context, memEmb model.Vector, scope *model.Scope) (Result, error) {
	if len(memEmb) == 0 {
		return Result{Kind: model.KindUnclassified, Confidence: 0}, nil
	}
	if err := c.ensureStatic(ctx); err != nil {
		return Result{}, err
	}

	protoScore := make(map[model.Kind]float64, len(model.ClassifiableKinds))
	for _, kind := range model.ClassifiableKinds {
		protoScore[kind] = c.protoScore(kind, memEmb)
	}

	top, second := topTwo(protoScore)
	if protoScore[top] >= protoTopThreshold && protoScore[top]-protoScore[second] >= protoGapThreshold {
		confidence := protoScore[top]
		if confidence > learnThreshold {
			c.learn(top, memEmb)
		}
		return Result{Kind: top, Confidence: confidence}, nil
	}

	density := c.densityScores(ctx, memEmb, scope)

	var winner model.Kind
	var winnerCombined float64
	first := true
	for _, kind := range model.ClassifiableKinds {
		p := protoScore[kind]
		d := density[kind]
		gated := d
		if p < protoDensityGate {
			gated = gatedDensityDiscount * d
		}
		combined := 0.9*p + 0.1*gated
		if first || combined > winnerCombined {
			winner = kind
			winnerCombined = combined
			first = false
		}
	}

	if winnerCombined < confidenceThreshold {
		return Result{Kind: model.KindUnclassified, Confidence: winnerCombined}, nil
	}
	if winnerCombined > learnThreshold {
		c.learn(winner, memEmb)
	}
	return Result{Kind: winner, Confidence: winnerCombined}, nil
}

func (c *Classifier) protoScore(kind model.Kind, memEmb model.Vector) float64 {
	best := 0.0
	for _, p := range c.static[kind] {
		if sim := embedding.CosineSimilarity(memEmb, p); sim > best {
			best = sim
		}
	}
	c.mu.RLock()
	learned := c.learned[kind]
	c.mu.RUnlock()
	for _, p := range learned {
		if sim := embedding.CosineSimilarity(memEmb, p); sim > best {
			best = sim
		}
	}
	return best
}

func (c *Classifier) densityScores(ctx context.Context, memEmb model.Vector, scope *model.Scope) map[model.Kind]float64 {
	scores := make(map[model.Kind]float64, len(model.ClassifiableKinds))
	if c.density == nil {
		return scores
	}
	neighbors, err := c.density.Query(ctx, memEmb, annNeighborCount, scope)
	if err != nil || len(neighbors) == 0 {
		return scores
	}

	sums := make(map[model.Kind]float64)
	counts := make(map[model.Kind]int)
	for _, n := range neighbors {
		if !model.ValidKinds[n.Kind] || n.Kind == model.KindUnclassified {
			continue
		}
		d := n.Distance
		if d < 0 {
			d = 0
		}
		sums[n.Kind] += 1 / (1 + d)
		counts[n.Kind]++
	}
	for kind, sum := range sums {
		scores[kind] = sum / float64(counts[kind])
	}
	return scores
}

func (c *Classifier) learn(kind model.Kind, vec model.Vector) {
	c.mu.Lock()
	defer c.mu.Unlock()
	q := c.learned[kind]
	q = append(q, vec)
	if len(q) > learnedCapacity {
		q = q[len(q)-learnedCapacity:]
	}
	c.learned[kind] = q
}

// topTwo returns the two highest-scoring classifiable kinds, ties broken
// by enum order (model.ClassifiableKinds order).
func topTwo(scores map[model.Kind]float64) (top, second model.Kind) {
	first := true
	for _, kind := range model.ClassifiableKinds {
		s := scores[kind]
		if first {
			top, second = kind, kind
			first = false
			continue
		}
		if s > scores[top] {
			second = top
			top = kind
		} else if s > scores[second] || second == top {
			second = kind
		}
	}
	return top, second
}
