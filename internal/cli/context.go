package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentcore/ramengine/internal/engine"
)

func init() {
	cmd := &cobra.Command{
		Use:   "build-context [query]",
		Short: "Assemble relevant memories for a task",
		Long:  "Recall memories for a query, group by source document, and greedily pack them into a character budget.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runBuildContext,
	}

	cmd.Flags().IntP("limit", "l", 5, "Max source documents")
	cmd.Flags().Int("max-chars", 2400, "Character budget for the assembled context")

	RootCmd.AddCommand(cmd)
}

func runBuildContext(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	maxChars, _ := cmd.Flags().GetInt("max-chars")
	query := strings.Join(args, " ")

	e, err := openEngine(cmd.Context())
	if err != nil {
		exitErr("open engine", err)
	}
	defer e.Close()

	out, err := e.BuildContext(cmd.Context(), query, engine.BuildContextOptions{Limit: limit, MaxChars: maxChars})
	if err != nil {
		exitErr("build-context", err)
	}

	fmt.Println(out)
}
