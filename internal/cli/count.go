package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentcore/ramengine/internal/engine"
)

func init() {
	cmd := &cobra.Command{
		Use:   "count-by-kind",
		Short: "Count memories grouped by kind",
		Run:   runCountByKind,
	}

	cmd.Flags().String("scope", "", "Filter by scope: session, project, or global")
	cmd.Flags().StringP("query", "q", "", "Filter by a content substring")

	RootCmd.AddCommand(cmd)
}

func runCountByKind(cmd *cobra.Command, args []string) {
	scope, _ := cmd.Flags().GetString("scope")
	query, _ := cmd.Flags().GetString("query")

	e, err := openEngine(cmd.Context())
	if err != nil {
		exitErr("open engine", err)
	}
	defer e.Close()

	counts, err := e.CountByKind(cmd.Context(), engine.CountByKindOptions{Scope: scopePtr(scope), Query: query})
	if err != nil {
		exitErr("count-by-kind", err)
	}

	b, _ := json.MarshalIndent(counts, "", "  ")
	fmt.Println(string(b))
}
