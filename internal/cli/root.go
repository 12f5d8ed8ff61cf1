// Package cli implements the ramengine CLI commands: a thin cobra layer
// over the Engine facade, for manual exercising and scripting.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentcore/ramengine/internal/embedding"
	"github.com/agentcore/ramengine/internal/engine"
	"github.com/agentcore/ramengine/internal/model"
	"github.com/agentcore/ramengine/internal/tokenizer"
)

var (
	dbPath     string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "ramd",
	Short: "Retrieval-augmented memory for AI agents",
	Long:  "A retrieval-augmented memory engine for AI agents. Text in, ranked memories out. SQLite-backed, single binary.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $RAM_ENGINE_DB or ~/.ram-engine/memory.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format (not read by any command; all output is JSON)")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("RAM_ENGINE_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".ram-engine", "memory.db")
}

func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if os.Getenv("RAM_ENGINE_DEBUG") != "" {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// openEngine wires the Engine facade for one CLI invocation: tiktoken
// tokenizer, an embedder resolved from RAM_ENGINE_EMBED_PROVIDER (nil when
// unconfigured, which makes embedder-dependent operations fail
// NotConfigured rather than silently use a fake), console-writer logger.
func openEngine(ctx context.Context) (*engine.Engine, error) {
	tok, err := tokenizer.NewTiktoken("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("tokenizer: %w", err)
	}

	return engine.New(ctx, engine.Config{
		DBPath:    getDBPath(),
		Embedder:  embedding.NewFromEnv(),
		Tokenizer: tok,
		Logger:    newLogger(),
	})
}

// scopeOrEmpty returns s as model.Scope, or "" when empty, so the Engine
// applies its own default rather than the CLI baking one in.
func scopeOrEmpty(s string) model.Scope {
	if s == "" {
		return ""
	}
	return model.Scope(s)
}

// scopePtr returns nil for an unset/empty scope flag, or a pointer to the
// parsed value — engine list/recall/count-by-kind options treat a nil
// scope as "no filter".
func scopePtr(s string) *model.Scope {
	if s == "" {
		return nil
	}
	sc := model.Scope(s)
	return &sc
}

// kindPtr mirrors scopePtr for the kind filter.
func kindPtr(s string) *model.Kind {
	if s == "" {
		return nil
	}
	k := model.Kind(s)
	return &k
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
