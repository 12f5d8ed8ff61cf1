package engine

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/agentcore/ramengine/internal/annindex"
	"github.com/agentcore/ramengine/internal/model"
	"github.com/agentcore/ramengine/internal/tokenizer"
)

// testKindKeywords holds substrings drawn verbatim from classify.go's static
// exemplar table, so text containing one maps to the same basis vector as
// the matching exemplar and reliably classifies via the fast prototype
// path -- MockEmbedder's hash-based vectors carry no semantic structure and
// can't exercise this.
var testKindKeywords = map[model.Kind][]string{
	model.KindIdentity:  {"my name is", "i live in", "i am married", "call me", "i work as", "job title", "identify as"},
	model.KindTask:      {"remind me", "todo:", "action item", "schedule a meeting", "deadline is", "next step", "security review"},
	model.KindKnowledge: {"capital of", "boils at", "photosynthesis", "general relativity", "quicksort algorithm", "atomic, consistent", "mitochondria"},
	model.KindReference: {"see docs at", "refer to the manual", "source:", "documentation is available", "link:", "citation:"},
	model.KindNote:      {"quick note", "random thought", "fyi,", "jotting down", "misc:", "quick reminder"},
}

var testKindAxis = map[model.Kind]int{
	model.KindIdentity:  0,
	model.KindTask:      1,
	model.KindKnowledge: 2,
	model.KindReference: 3,
	model.KindNote:      4,
}

// keywordVectorEmbedder is a deterministic test double: text matching one
// of the classifier's own exemplar keywords maps to a one-hot basis vector
// so classification tests exercise the real decision logic; everything
// else falls back to a hash-seeded pseudo-random unit vector so dedup and
// generic recall behavior still work.
type keywordVectorEmbedder struct{}

func (keywordVectorEmbedder) Dims() int { return model.Dims }

func (keywordVectorEmbedder) Embed(_ context.Context, text string) (model.Vector, error) {
	lower := strings.ToLower(text)
	for kind, keywords := range testKindKeywords {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				vec := make(model.Vector, model.Dims)
				vec[testKindAxis[kind]] = 1
				return vec, nil
			}
		}
	}
	return bagOfWordsVector(text), nil
}

// bagOfWordsVector sums a per-word hash vector for every word in text and
// normalizes to unit length, so cosine similarity tracks shared vocabulary
// the same way MockEmbedder's whole-string hash can't -- needed for tests
// that check recall ranks chunks by word overlap with the query.
func bagOfWordsVector(text string) model.Vector {
	sum := make([]float64, model.Dims)
	words := strings.Fields(strings.ToLower(text))
	for _, w := range words {
		wv := wordHashVector(w)
		for i, v := range wv {
			sum[i] += float64(v)
		}
	}
	vec := make(model.Vector, model.Dims)
	var norm float64
	for _, v := range sum {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	inv := 1 / math.Sqrt(norm)
	for i, v := range sum {
		vec[i] = float32(v * inv)
	}
	return vec
}

func wordHashVector(word string) model.Vector {
	h := fnv.New64a()
	h.Write([]byte(word))
	seed := h.Sum64()
	if seed == 0 {
		seed = 1
	}
	vec := make(model.Vector, model.Dims)
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(int64(seed)) / float32(1<<63-1)
	}
	return vec
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	dir := t.TempDir()
	e, err := New(context.Background(), Config{
		DBPath:    filepath.Join(dir, "test.db"),
		Embedder:  keywordVectorEmbedder{},
		Tokenizer: tokenizer.NewSimple(),
		Logger:    zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestRemember_DedupMergesIdenticalContent(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	if _, err := e.Remember(ctx, "freedom is the goal", RememberOptions{Kind: string(model.KindNote)}); err != nil {
		t.Fatalf("remember 1: %v", err)
	}
	second, err := e.Remember(ctx, "freedom is the goal", RememberOptions{Kind: string(model.KindNote)})
	if err != nil {
		t.Fatalf("remember 2: %v", err)
	}

	status, err := e.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.CorpusSize != 1 {
		t.Errorf("expected corpus size 1 after dedup, got %d", status.CorpusSize)
	}
	if second.Importance != 0.5 {
		t.Errorf("expected merged importance 0.5, got %f", second.Importance)
	}
}

func TestRemember_AutoClassifiesReference(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	rec, err := e.Remember(ctx, "See docs at https://example.com/manual", RememberOptions{Kind: KindAuto})
	if err != nil {
		t.Fatalf("remember: %v", err)
	}
	if rec.Kind != model.KindReference {
		t.Errorf("expected kind reference, got %s", rec.Kind)
	}
}

func TestRemember_EmptyContentIsInputInvalid(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	_, err := e.Remember(ctx, "   ", RememberOptions{})
	if err == nil {
		t.Fatal("expected error for empty content")
	}
}

func TestRecall_EmptyQueryIsInputInvalid(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	_, err := e.Recall(ctx, "  ", RecallOptions{})
	if err == nil {
		t.Fatal("expected error for empty query")
	}
}

// TestRecall_SiblingExpansion checks that recalling a query matching only
// one chunk of a multi-chunk document pulls in its neighboring chunks at a
// lower score.
func TestRecall_SiblingExpansion(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	// Build a long document from three visibly distinct segments. Under the
	// tokenizer's word-run tokenization it splits into several overlapping
	// chunks of up to 110 words, so the "bravo" chunks have neighbors.
	segment := func(word string, n int) string {
		words := make([]string, n)
		for i := range words {
			words[i] = word
		}
		return strings.Join(words, " ")
	}
	doc := segment("alpha", 230) + " " + segment("bravo", 230) + " " + segment("charlie", 230)

	if _, err := e.Remember(ctx, doc, RememberOptions{Kind: string(model.KindKnowledge)}); err != nil {
		t.Fatalf("remember: %v", err)
	}

	scored, err := e.RecallScored(ctx, "bravo", RecallOptions{Limit: 3})
	if err != nil {
		t.Fatalf("recall: %v", err)
	}
	if len(scored) < 2 {
		t.Fatalf("expected sibling expansion to pull in more than the direct hit, got %d results", len(scored))
	}

	byIndex := make(map[int]float64)
	center, centerScore := -1, -1.0
	for _, s := range scored {
		byIndex[s.Record.ChunkIndex] = s.Score
		if s.Score > centerScore {
			center, centerScore = s.Record.ChunkIndex, s.Score
		}
	}
	for idx, sc := range byIndex {
		if idx != center && sc >= centerScore {
			t.Errorf("expected sibling chunk %d score %f to be strictly lower than center chunk %d score %f", idx, sc, center, centerScore)
		}
	}
}

func TestRecall_MetricsMonotonic(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	rec, err := e.Remember(ctx, "the quick brown fox jumps", RememberOptions{Kind: string(model.KindNote)})
	if err != nil {
		t.Fatalf("remember: %v", err)
	}

	if _, err := e.Recall(ctx, "quick brown fox", RecallOptions{Limit: 5}); err != nil {
		t.Fatalf("recall 1: %v", err)
	}
	first, err := e.Open(ctx, rec.ID)
	if err != nil || first == nil {
		t.Fatalf("open after recall 1: %v", err)
	}
	if first.RecallCount != 1 {
		t.Fatalf("expected recall count 1, got %d", first.RecallCount)
	}

	if _, err := e.Recall(ctx, "quick brown fox", RecallOptions{Limit: 5}); err != nil {
		t.Fatalf("recall 2: %v", err)
	}
	second, err := e.Open(ctx, rec.ID)
	if err != nil || second == nil {
		t.Fatalf("open after recall 2: %v", err)
	}
	if second.RecallCount != 2 {
		t.Fatalf("expected recall count 2, got %d", second.RecallCount)
	}
	if !second.LastRecalledAt.After(*first.LastRecalledAt) && !second.LastRecalledAt.Equal(*first.LastRecalledAt) {
		t.Error("expected last recalled to move forward or stay equal under fast successive calls")
	}
}

func TestStatus_ANNDisabled(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	e, err := New(ctx, Config{
		DBPath:    filepath.Join(dir, "test.db"),
		Embedder:  keywordVectorEmbedder{},
		Tokenizer: tokenizer.NewSimple(),
		Logger:    zerolog.Nop(),
		ANNIndex:  annindex.NewDisabled("test: forced disabled"),
	})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	defer e.Close()

	if _, err := e.Remember(ctx, "database connection pooling notes", RememberOptions{Kind: string(model.KindKnowledge)}); err != nil {
		t.Fatalf("remember should succeed with ann disabled: %v", err)
	}

	scored, err := e.RecallScored(ctx, "database pooling", RecallOptions{Limit: 5})
	if err != nil {
		t.Fatalf("recall should succeed with ann disabled: %v", err)
	}
	if len(scored) == 0 {
		t.Error("expected lexical-only recall to still find the record")
	}

	status, err := e.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.ANN.Enabled {
		t.Error("expected ann disabled")
	}
}

func TestForget_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	rec, err := e.Remember(ctx, "ephemeral content", RememberOptions{Kind: string(model.KindNote)})
	if err != nil {
		t.Fatalf("remember: %v", err)
	}
	if err := e.Forget(ctx, rec.ID); err != nil {
		t.Fatalf("forget: %v", err)
	}
	if err := e.Forget(ctx, rec.ID); err != nil {
		t.Fatalf("forget again should be a no-op success: %v", err)
	}
	got, err := e.Open(ctx, rec.ID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got != nil {
		t.Error("expected record to be gone")
	}
}

func TestListAndCountByKind(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	if _, err := e.Remember(ctx, "a task to do", RememberOptions{Kind: string(model.KindTask)}); err != nil {
		t.Fatalf("remember: %v", err)
	}
	if _, err := e.Remember(ctx, "a note to self", RememberOptions{Kind: string(model.KindNote)}); err != nil {
		t.Fatalf("remember: %v", err)
	}

	list, err := e.List(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("expected 2 records, got %d", len(list))
	}

	counts, err := e.CountByKind(ctx, CountByKindOptions{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if counts[model.KindTask] != 1 || counts[model.KindNote] != 1 {
		t.Errorf("unexpected counts: %+v", counts)
	}
	if _, ok := counts[model.KindUnclassified]; !ok {
		t.Error("expected zero-filled unclassified entry")
	}
}

func TestMarkInvalid(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	rec, err := e.Remember(ctx, "content to invalidate", RememberOptions{Kind: string(model.KindNote)})
	if err != nil {
		t.Fatalf("remember: %v", err)
	}
	score := 0.1
	if err := e.MarkInvalid(ctx, rec.ID, &score); err != nil {
		t.Fatalf("mark invalid: %v", err)
	}
	got, err := e.Open(ctx, rec.ID)
	if err != nil || got == nil {
		t.Fatalf("open: %v", err)
	}
	if !got.IsNegative || got.ValidityScore != 0.1 {
		t.Errorf("expected invalidated record, got %+v", got)
	}
}

func TestMarkInvalid_NilScoreDefaultsPointZeroTwo(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	rec, err := e.Remember(ctx, "content to invalidate", RememberOptions{Kind: string(model.KindNote)})
	if err != nil {
		t.Fatalf("remember: %v", err)
	}
	if err := e.MarkInvalid(ctx, rec.ID, nil); err != nil {
		t.Fatalf("mark invalid: %v", err)
	}
	got, err := e.Open(ctx, rec.ID)
	if err != nil || got == nil {
		t.Fatalf("open: %v", err)
	}
	if got.ValidityScore != 0.2 {
		t.Errorf("expected default validity score of 0.2, got %f", got.ValidityScore)
	}
}

func TestMarkInvalid_ExplicitZeroIsHonored(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	rec, err := e.Remember(ctx, "content to invalidate", RememberOptions{Kind: string(model.KindNote)})
	if err != nil {
		t.Fatalf("remember: %v", err)
	}
	score := 0.0
	if err := e.MarkInvalid(ctx, rec.ID, &score); err != nil {
		t.Fatalf("mark invalid: %v", err)
	}
	got, err := e.Open(ctx, rec.ID)
	if err != nil || got == nil {
		t.Fatalf("open: %v", err)
	}
	if got.ValidityScore != 0 {
		t.Errorf("expected explicit score of 0 to be honored, got %f", got.ValidityScore)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	if _, err := e.Remember(ctx, "exportable content", RememberOptions{Kind: string(model.KindNote)}); err != nil {
		t.Fatalf("remember: %v", err)
	}

	records, err := e.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 exported record, got %d", len(records))
	}

	n, err := e.Import(ctx, records)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 newly imported (already present), got %d", n)
	}
}

func TestBuildContext_RespectsMaxChars(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	for i := 0; i < 5; i++ {
		content := fmt.Sprintf("keyword marker entry number %d with unique filler content", i)
		if _, err := e.Remember(ctx, content, RememberOptions{Kind: string(model.KindKnowledge)}); err != nil {
			t.Fatalf("remember: %v", err)
		}
	}

	out, err := e.BuildContext(ctx, "keyword marker", BuildContextOptions{Limit: 5, MaxChars: 100})
	if err != nil {
		t.Fatalf("build context: %v", err)
	}
	if len(out) > 100 {
		t.Errorf("expected output within maxChars budget, got %d chars", len(out))
	}
	if out == "" {
		t.Error("expected at least one line to fit within the budget")
	}
}
