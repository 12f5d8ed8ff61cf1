//go:build onnx

// Package onnx embeds text locally with a sentence-transformer ONNX model,
// avoiding any network round trip. Building it requires libonnxruntime.so
// on the host, which is why it sits behind the "onnx" build tag rather than
// being part of the default embedding.NewFromEnv wiring.
package onnx

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/agentcore/ramengine/internal/model"
)

// bertTokenizer is a minimal WordPiece tokenizer sufficient to feed a
// BERT-family sentence encoder.
type bertTokenizer struct {
	vocab    map[string]int
	clsToken int
	sepToken int
	unkToken int
}

// Config configures the ONNX embedder.
type Config struct {
	// ModelPath is the path to the ONNX model file.
	ModelPath string
	// TokenizerPath is the path to the tokenizer.json vocab file.
	TokenizerPath string
	// SharedLibraryPath overrides the location of libonnxruntime.so.
	SharedLibraryPath string
	// MaxSeqLen bounds the token sequence fed to the model.
	MaxSeqLen int
}

// Embedder generates model.Dims embeddings using ONNX Runtime, satisfying
// embedding.Embedder without importing it (Embed/Dims match structurally).
type Embedder struct {
	session   *ort.DynamicAdvancedSession
	tokenizer *bertTokenizer
	maxSeqLen int
}

// New loads the model and tokenizer and initializes an ONNX Runtime
// session. The returned Embedder always yields model.Dims (384) vectors —
// callers must supply a model with that hidden size.
func New(cfg Config) (*Embedder, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("onnx: ModelPath is required")
	}
	if cfg.MaxSeqLen == 0 {
		cfg.MaxSeqLen = 128
	}

	if cfg.SharedLibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.SharedLibraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("onnx: initialize runtime: %w", err)
	}

	tok, err := loadBERTTokenizer(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: load tokenizer: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("onnx: create session: %w", err)
	}

	return &Embedder{session: session, tokenizer: tok, maxSeqLen: cfg.MaxSeqLen}, nil
}

// Embed tokenizes text, runs the model, and mean-pools (or extracts, if
// already pooled) the hidden states into a unit-norm vector.
func (e *Embedder) Embed(_ context.Context, text string) (model.Vector, error) {
	tokens := e.tokenizer.tokenize(text)

	maxLen := e.maxSeqLen
	inputIDs := make([]int64, maxLen)
	attentionMask := make([]int64, maxLen)
	tokenTypeIDs := make([]int64, maxLen)

	inputIDs[0] = int64(e.tokenizer.clsToken)
	attentionMask[0] = 1

	tokenLen := len(tokens)
	if tokenLen > maxLen-2 {
		tokenLen = maxLen - 2
	}
	for i := 0; i < tokenLen; i++ {
		inputIDs[i+1] = tokens[i]
		attentionMask[i+1] = 1
	}
	endPos := tokenLen + 1
	inputIDs[endPos] = int64(e.tokenizer.sepToken)
	attentionMask[endPos] = 1

	shape := ort.NewShape(1, int64(maxLen))
	inputIDsTensor, err := ort.NewTensor(shape, inputIDs)
	if err != nil {
		return nil, fmt.Errorf("onnx: input_ids tensor: %w", err)
	}
	defer inputIDsTensor.Destroy()

	attentionMaskTensor, err := ort.NewTensor(shape, attentionMask)
	if err != nil {
		return nil, fmt.Errorf("onnx: attention_mask tensor: %w", err)
	}
	defer attentionMaskTensor.Destroy()

	tokenTypeIDsTensor, err := ort.NewTensor(shape, tokenTypeIDs)
	if err != nil {
		return nil, fmt.Errorf("onnx: token_type_ids tensor: %w", err)
	}
	defer tokenTypeIDsTensor.Destroy()

	inputs := []ort.Value{inputIDsTensor, attentionMaskTensor, tokenTypeIDsTensor}
	outputs := []ort.Value{nil}
	if err := e.session.Run(inputs, outputs); err != nil {
		return nil, fmt.Errorf("onnx: inference: %w", err)
	}
	defer func() {
		for _, o := range outputs {
			if o != nil {
				o.Destroy()
			}
		}
	}()

	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok || out == nil {
		return nil, fmt.Errorf("onnx: unexpected output tensor type")
	}

	data := out.GetData()
	shp := out.GetShape()

	var embedding model.Vector
	switch len(shp) {
	case 2:
		if len(data) < model.Dims {
			return nil, fmt.Errorf("onnx: output dim %d, want %d", len(data), model.Dims)
		}
		embedding = append(model.Vector{}, data[:model.Dims]...)
	case 3:
		hidden := int(shp[2])
		if hidden != model.Dims {
			return nil, fmt.Errorf("onnx: hidden size %d, want %d", hidden, model.Dims)
		}
		seqLen := int(shp[1])
		embedding = make(model.Vector, model.Dims)
		var attended float32
		for i := 0; i < seqLen; i++ {
			if attentionMask[i] == 0 {
				continue
			}
			attended++
			off := i * hidden
			for j := 0; j < hidden; j++ {
				embedding[j] += data[off+j]
			}
		}
		if attended > 0 {
			for j := range embedding {
				embedding[j] /= attended
			}
		}
	default:
		return nil, fmt.Errorf("onnx: unexpected output shape %v", shp)
	}

	return normalize(embedding), nil
}

func (e *Embedder) Dims() int { return model.Dims }

// Close releases the ONNX Runtime session.
func (e *Embedder) Close() error {
	if e.session != nil {
		return e.session.Destroy()
	}
	return nil
}

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

func loadBERTTokenizer(path string) (*bertTokenizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Model struct {
			Vocab map[string]int `json:"vocab"`
		} `json:"model"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, err
	}
	return &bertTokenizer{
		vocab:    parsed.Model.Vocab,
		clsToken: 101,
		sepToken: 102,
		unkToken: 100,
	}, nil
}

func (t *bertTokenizer) tokenize(text string) []int64 {
	words := strings.Fields(strings.ToLower(text))
	var tokens []int64
	for _, word := range words {
		word = strings.Trim(word, ".,!?;:\"'")
		if id, ok := t.vocab[word]; ok {
			tokens = append(tokens, int64(id))
			continue
		}
		for _, sub := range t.wordPiece(word) {
			if id, ok := t.vocab[sub]; ok {
				tokens = append(tokens, int64(id))
			} else {
				tokens = append(tokens, int64(t.unkToken))
			}
		}
	}
	return tokens
}

func (t *bertTokenizer) wordPiece(word string) []string {
	if len(word) == 0 {
		return nil
	}
	var subwords []string
	start := 0
	for start < len(word) {
		end := len(word)
		found := false
		for end > start {
			substr := word[start:end]
			if start > 0 {
				substr = "##" + substr
			}
			if _, ok := t.vocab[substr]; ok {
				subwords = append(subwords, substr)
				start = end
				found = true
				break
			}
			end--
		}
		if !found {
			subwords = append(subwords, "[UNK]")
			start++
		}
	}
	return subwords
}
