// Package chunker splits normalized text into overlapping token windows for
// storage as individual MemoryRecord chunks.
package chunker

import (
	"strings"

	"github.com/agentcore/ramengine/internal/tokenizer"
)

const (
	// DefaultChunkTokens is the target window size, in tokens.
	DefaultChunkTokens = 220
	// DefaultOverlapTokens is how many trailing tokens of a window are
	// repeated at the start of the next window.
	DefaultOverlapTokens = 40
)

// Options configures chunking behavior.
type Options struct {
	ChunkTokens   int
	OverlapTokens int
}

// DefaultOptions returns the default window/overlap sizes.
func DefaultOptions() Options {
	return Options{ChunkTokens: DefaultChunkTokens, OverlapTokens: DefaultOverlapTokens}
}

// normalize trims and collapses internal whitespace runs to a single space.
func normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Chunk splits text into a sequence of overlapping token windows using tok
// to tokenize/detokenize. Short text (token count <= opts.ChunkTokens)
// returns a single chunk containing the whole normalized text. Empty input
// returns nil.
func Chunk(text string, tok tokenizer.Tokenizer, opts Options) []string {
	if opts.ChunkTokens <= 0 {
		opts = DefaultOptions()
	}

	normalized := normalize(text)
	if normalized == "" {
		return nil
	}

	ids := tok.Tokenize(normalized)
	if len(ids) <= opts.ChunkTokens {
		return []string{normalized}
	}

	stride := opts.ChunkTokens - opts.OverlapTokens
	if stride < 1 {
		stride = 1
	}

	var chunks []string
	total := len(ids)
	for start := 0; start < total; start += stride {
		end := start + opts.ChunkTokens
		if end > total {
			end = total
		}
		window := tok.Decode(ids[start:end])
		window = strings.TrimSpace(window)
		if window != "" {
			chunks = append(chunks, window)
		}
		if end == total {
			break
		}
	}

	return chunks
}
