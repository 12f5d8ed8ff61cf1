package classify

import (
	"context"
	"strings"
	"testing"

	"github.com/agentcore/ramengine/internal/annindex"
	"github.com/agentcore/ramengine/internal/model"
)

// keywordEmbedder maps text to one of a small number of orthogonal basis
// vectors chosen by keyword, so unit tests can exercise the classifier's
// decision logic deterministically without a real semantic embedder.
type keywordEmbedder struct{}

var keywordAxis = []struct {
	axis     int
	keywords []string
}{
	{0, []string{"docs", "http", "manual", "citation", "link", "source:"}},
	{1, []string{"todo", "remind", "deadline", "schedule", "action item", "next step", "need to complete"}},
	{2, []string{"capital", "boils", "photosynthesis", "algorithm", "relativity", "mitochondria", "transaction"}},
	{3, []string{"my name is", "i live in", "i am married", "call me", "i work as", "reach me", "job title", "identify as"}},
	{4, []string{"quick note", "random thought", "fyi", "jotting", "misc:"}},
}

func (keywordEmbedder) Embed(_ context.Context, text string) (model.Vector, error) {
	lower := strings.ToLower(text)
	vec := make(model.Vector, 8)
	for _, entry := range keywordAxis {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				vec[entry.axis] = 1
				return vec, nil
			}
		}
	}
	vec[7] = 1 // unrecognized text: an axis no static exemplar occupies
	return vec, nil
}

func (keywordEmbedder) Dims() int { return 8 }

type fakeDensity struct {
	neighbors []annindex.Neighbor
}

func (f fakeDensity) Query(_ context.Context, _ model.Vector, _ int, _ *model.Scope) ([]annindex.Neighbor, error) {
	return f.neighbors, nil
}

func TestClassify_DocumentationLinkIsReference(t *testing.T) {
	c := New(keywordEmbedder{}, nil)
	emb, _ := keywordEmbedder{}.Embed(context.Background(), "See docs at https://example.com/manual")
	result, err := c.Classify(context.Background(), emb, nil)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if result.Kind != model.KindReference {
		t.Errorf("expected kind reference, got %s (confidence %f)", result.Kind, result.Confidence)
	}
}

func TestClassify_EmptyEmbeddingIsUnclassified(t *testing.T) {
	c := New(keywordEmbedder{}, nil)
	result, err := c.Classify(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if result.Kind != model.KindUnclassified || result.Confidence != 0 {
		t.Errorf("expected unclassified with 0 confidence, got %s/%f", result.Kind, result.Confidence)
	}
}

// TestClassify_Totality checks that every embedding returns a value in the
// enum; unclassified iff confidence < 0.28 or embedding is empty.
func TestClassify_Totality(t *testing.T) {
	c := New(keywordEmbedder{}, nil)
	texts := []string{
		"See docs at https://example.com",
		"TODO: remind me tomorrow",
		"The capital of a country is its seat of government",
		"My name is Casey and I live in Berlin",
		"Just a quick note to self",
		"completely unrelated text with no keyword hits at all",
	}
	for _, text := range texts {
		emb, _ := keywordEmbedder{}.Embed(context.Background(), text)
		result, err := c.Classify(context.Background(), emb, nil)
		if err != nil {
			t.Fatalf("classify(%q): %v", text, err)
		}
		if !model.ValidKinds[result.Kind] {
			t.Errorf("classify(%q) returned invalid kind %q", text, result.Kind)
		}
		if result.Kind == model.KindUnclassified && result.Confidence >= confidenceThreshold {
			t.Errorf("classify(%q): unclassified but confidence %f >= threshold", text, result.Confidence)
		}
		if result.Kind != model.KindUnclassified && result.Confidence < confidenceThreshold {
			t.Errorf("classify(%q): classified as %s but confidence %f < threshold", text, result.Kind, result.Confidence)
		}
	}
}

func TestClassify_UnrecognizedTextIsUnclassified(t *testing.T) {
	c := New(keywordEmbedder{}, nil)
	emb, _ := keywordEmbedder{}.Embed(context.Background(), "completely unrelated text with no keyword hits at all")
	result, err := c.Classify(context.Background(), emb, nil)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if result.Kind != model.KindUnclassified {
		t.Errorf("expected unclassified for text matching no prototype, got %s", result.Kind)
	}
}

// TestClassify_DensityBreaksProtoTie exercises decision path 2: when the
// two top prototype scores are too close for the fast-path gap, ANN
// neighbor density tips the balance toward whichever kind the neighbors
// support.
func TestClassify_DensityBreaksProtoTie(t *testing.T) {
	density := fakeDensity{neighbors: []annindex.Neighbor{
		{ID: "n1", Distance: 0.1, Kind: model.KindTask},
		{ID: "n2", Distance: 0.1, Kind: model.KindTask},
		{ID: "n3", Distance: 0.2, Kind: model.KindTask},
	}}
	c := New(keywordEmbedder{}, density)
	// Equal weight on the reference axis (0) and the task axis (1) gives
	// Task and Reference near-identical prototype scores, well inside the
	// fast-path gap threshold, so the classifier falls through to density.
	// All three ANN neighbors are tagged Task, so density should break the
	// tie in Task's favor.
	vec := model.Vector{0.1, 0.1, 0, 0, 0, 0, 0, 0}
	result, err := c.Classify(context.Background(), vec, nil)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if result.Kind != model.KindTask {
		t.Errorf("expected density to break the tie toward task, got %s (confidence %f)", result.Kind, result.Confidence)
	}
}

func TestClassify_LearnsHighConfidencePrototype(t *testing.T) {
	c := New(keywordEmbedder{}, nil)
	emb, _ := keywordEmbedder{}.Embed(context.Background(), "See docs at https://example.com")
	if _, err := c.Classify(context.Background(), emb, nil); err != nil {
		t.Fatalf("classify: %v", err)
	}
	c.mu.RLock()
	learned := len(c.learned[model.KindReference])
	c.mu.RUnlock()
	if learned == 0 {
		t.Error("expected an exact prototype match (confidence 1.0) to push a learned prototype")
	}
}
