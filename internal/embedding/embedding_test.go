package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/agentcore/ramengine/internal/model"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     model.Vector
		expected float64
		delta    float64
	}{
		{"identical", model.Vector{1, 0, 0}, model.Vector{1, 0, 0}, 1.0, 0.001},
		{"orthogonal", model.Vector{1, 0, 0}, model.Vector{0, 1, 0}, 0.0, 0.001},
		{"opposite", model.Vector{1, 0, 0}, model.Vector{-1, 0, 0}, -1.0, 0.001},
		{"similar", model.Vector{1, 1, 0}, model.Vector{1, 0, 0}, 0.707, 0.01},
		{"empty", model.Vector{}, model.Vector{}, 0.0, 0.001},
		{"different lengths", model.Vector{1, 0}, model.Vector{1, 0, 0}, 0.0, 0.001},
		{"zero vector", model.Vector{0, 0, 0}, model.Vector{1, 0, 0}, 0.0, 0.001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.expected) > tt.delta {
				t.Errorf("CosineSimilarity(%v, %v) = %f, want %f (±%f)", tt.a, tt.b, got, tt.expected, tt.delta)
			}
		})
	}
}

func TestNewFromEnv_Disabled(t *testing.T) {
	t.Setenv("RAM_ENGINE_EMBED_PROVIDER", "")
	if e := NewFromEnv(); e != nil {
		t.Error("expected nil embedder when no provider configured")
	}
}

func TestMockEmbedder_Deterministic(t *testing.T) {
	m := NewMock()
	v1, err := m.Embed(context.Background(), "freedom is the goal")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	v2, err := m.Embed(context.Background(), "freedom is the goal")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(v1) != model.Dims {
		t.Fatalf("expected %d dims, got %d", model.Dims, len(v1))
	}
	for i := range v1 {
		if v1[i] != v2[i] {
			t.Fatalf("same text produced different vectors at index %d: %f vs %f", i, v1[i], v2[i])
		}
	}
}

func TestMockEmbedder_UnitNorm(t *testing.T) {
	m := NewMock()
	v, err := m.Embed(context.Background(), "unit norm check")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	norm = math.Sqrt(norm)
	if math.Abs(norm-1.0) > 1e-4 {
		t.Errorf("expected unit norm, got %f", norm)
	}
}

func TestMockEmbedder_DistinctTextsDiffer(t *testing.T) {
	m := NewMock()
	a, _ := m.Embed(context.Background(), "alpha")
	b, _ := m.Embed(context.Background(), "beta")
	if CosineSimilarity(a, b) > 0.999999 {
		t.Error("expected distinct texts to produce distinct vectors")
	}
}
