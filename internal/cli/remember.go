package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentcore/ramengine/internal/engine"
)

func init() {
	cmd := &cobra.Command{
		Use:   "remember [content]",
		Short: "Store a memory",
		Long:  "Chunk, embed, deduplicate, and (optionally) classify content. Content can be a positional arg or piped via stdin.",
		Run:   runRemember,
	}

	cmd.Flags().String("kind", engine.KindAuto, "Kind: identity, task, knowledge, reference, note, unclassified, or auto")
	cmd.Flags().String("scope", "global", "Scope: session, project, or global")
	cmd.Flags().Float64("importance", 0, "Importance in [0,1] (default 0.5 if unset)")
	cmd.Flags().Bool("negative", false, "Mark as a negative/corrective memory")

	RootCmd.AddCommand(cmd)
}

func runRemember(cmd *cobra.Command, args []string) {
	kind, _ := cmd.Flags().GetString("kind")
	scope, _ := cmd.Flags().GetString("scope")
	importance, _ := cmd.Flags().GetFloat64("importance")
	negative, _ := cmd.Flags().GetBool("negative")

	var content string
	if len(args) > 0 {
		content = strings.Join(args, " ")
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				exitErr("read stdin", err)
			}
			content = string(b)
		}
	}

	opts := engine.RememberOptions{
		Kind:       kind,
		Scope:      scopeOrEmpty(scope),
		IsNegative: negative,
	}
	if cmd.Flags().Changed("importance") {
		opts.Importance = &importance
	}

	e, err := openEngine(cmd.Context())
	if err != nil {
		exitErr("open engine", err)
	}
	defer e.Close()

	rec, err := e.Remember(cmd.Context(), content, opts)
	if err != nil {
		exitErr("remember", err)
	}

	b, _ := json.Marshal(rec)
	fmt.Println(string(b))
}
