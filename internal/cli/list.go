package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentcore/ramengine/internal/engine"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List memories",
		Run:   runList,
	}

	cmd.Flags().String("scope", "", "Filter by scope: session, project, or global")
	cmd.Flags().String("kind", "", "Filter by kind")
	cmd.Flags().StringP("query", "q", "", "Filter by a content substring")
	cmd.Flags().IntP("limit", "l", 30, "Max results")
	cmd.Flags().Int("offset", 0, "Pagination offset")
	cmd.Flags().Bool("ids-only", false, "Only output ids")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	scope, _ := cmd.Flags().GetString("scope")
	kind, _ := cmd.Flags().GetString("kind")
	query, _ := cmd.Flags().GetString("query")
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")
	idsOnly, _ := cmd.Flags().GetBool("ids-only")

	e, err := openEngine(cmd.Context())
	if err != nil {
		exitErr("open engine", err)
	}
	defer e.Close()

	summaries, err := e.List(cmd.Context(), engine.ListOptions{
		Scope:  scopePtr(scope),
		Kind:   kindPtr(kind),
		Query:  query,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		exitErr("list", err)
	}

	if idsOnly {
		for _, s := range summaries {
			fmt.Println(s.ID)
		}
		return
	}

	b, _ := json.MarshalIndent(summaries, "", "  ")
	fmt.Println(string(b))
}
