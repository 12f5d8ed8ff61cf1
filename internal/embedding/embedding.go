// Package embedding provides a pluggable interface for text embedding
// providers, plus the fixed-dimension unit-norm contract the engine
// requires of every implementation.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/agentcore/ramengine/internal/model"
)

// Embedder generates unit-norm, model.Dims-length embedding vectors from
// text. Implementations are injected capabilities — the engine never
// assumes a specific model or vocabulary.
type Embedder interface {
	Embed(ctx context.Context, text string) (model.Vector, error)
	Dims() int
}

// CosineSimilarity computes cosine similarity between two vectors. Returns 0
// for mismatched lengths, empty vectors, or a zero-norm vector.
func CosineSimilarity(a, b model.Vector) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// normalize converts vec to a unit vector in place. Every wire-facing
// embedder must call this before returning: stored embeddings require
// ‖v‖₂≈1, and upstream providers are not trusted to guarantee it themselves.
func normalize(vec model.Vector) model.Vector {
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	n := float32(math.Sqrt(norm))
	out := make(model.Vector, len(vec))
	for i, v := range vec {
		out[i] = v / n
	}
	return out
}

func dimsMismatch(got, want int) error {
	return fmt.Errorf("embedding: provider returned %d dims, want %d", got, want)
}

// --- Ollama Provider ---

// OllamaEmbedder uses a local Ollama instance for embeddings.
type OllamaEmbedder struct {
	baseURL string
	model   string
	client  *http.Client
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaResponse struct {
	Embedding []float32 `json:"embedding"`
}

// NewOllamaEmbedder creates an embedder using Ollama's API. The caller is
// responsible for choosing a model that emits model.Dims-length vectors
// (e.g. all-minilm); Embed rejects any other output length.
func NewOllamaEmbedder(embedModel string) *OllamaEmbedder {
	baseURL := os.Getenv("OLLAMA_HOST")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &OllamaEmbedder{
		baseURL: baseURL,
		model:   embedModel,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) (model.Vector, error) {
	body, _ := json.Marshal(ollamaRequest{Model: e.model, Prompt: text})
	req, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama error %d: %s", resp.StatusCode, string(b))
	}

	var result ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	if len(result.Embedding) != model.Dims {
		return nil, dimsMismatch(len(result.Embedding), model.Dims)
	}
	return normalize(result.Embedding), nil
}

func (e *OllamaEmbedder) Dims() int { return model.Dims }

// --- OpenAI-compatible Provider ---

// OpenAIEmbedder uses any OpenAI-compatible embedding API that has been
// configured to emit model.Dims-length vectors.
type OpenAIEmbedder struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

type openaiEmbedRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type openaiEmbedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// NewOpenAIEmbedder creates an embedder using an OpenAI-compatible API.
func NewOpenAIEmbedder(baseURL, apiKey, embedModel string) *OpenAIEmbedder {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if embedModel == "" {
		embedModel = "text-embedding-3-small"
	}
	return &OpenAIEmbedder{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   embedModel,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) (model.Vector, error) {
	body, _ := json.Marshal(openaiEmbedRequest{Input: text, Model: e.model})
	req, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("openai error %d: %s", resp.StatusCode, string(b))
	}

	var result openaiEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	vec := result.Data[0].Embedding
	if len(vec) != model.Dims {
		return nil, dimsMismatch(len(vec), model.Dims)
	}
	return normalize(vec), nil
}

func (e *OpenAIEmbedder) Dims() int { return model.Dims }

// --- Factory ---

// NewFromEnv creates an embedder from environment variables, or nil if
// embedding is unconfigured — engine.New treats a nil Embedder as
// errs.ErrNotConfigured for any operation that needs one.
//
// RAM_ENGINE_EMBED_PROVIDER: "ollama" | "openai" | "" (disabled)
// RAM_ENGINE_EMBED_MODEL: model name
// RAM_ENGINE_EMBED_URL: base URL override
// OPENAI_API_KEY: for openai provider
func NewFromEnv() Embedder {
	provider := os.Getenv("RAM_ENGINE_EMBED_PROVIDER")
	embedModel := os.Getenv("RAM_ENGINE_EMBED_MODEL")

	switch provider {
	case "ollama":
		if embedModel == "" {
			embedModel = "all-minilm"
		}
		return NewOllamaEmbedder(embedModel)
	case "openai":
		url := os.Getenv("RAM_ENGINE_EMBED_URL")
		key := os.Getenv("OPENAI_API_KEY")
		return NewOpenAIEmbedder(url, key, embedModel)
	default:
		return nil
	}
}
