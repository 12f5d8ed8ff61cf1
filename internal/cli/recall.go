package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentcore/ramengine/internal/engine"
)

func init() {
	cmd := &cobra.Command{
		Use:   "recall [query]",
		Short: "Retrieve ranked memories for a query",
		Long:  "Runs the hybrid vector/lexical/recency/importance retrieval pipeline and returns the top matches.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runRecall,
	}

	cmd.Flags().String("scope", "", "Filter by scope: session, project, or global")
	cmd.Flags().IntP("limit", "l", 8, "Max results")
	cmd.Flags().Bool("scored", false, "Include per-candidate score breakdown")

	RootCmd.AddCommand(cmd)
}

func runRecall(cmd *cobra.Command, args []string) {
	scope, _ := cmd.Flags().GetString("scope")
	limit, _ := cmd.Flags().GetInt("limit")
	scored, _ := cmd.Flags().GetBool("scored")
	query := strings.Join(args, " ")

	e, err := openEngine(cmd.Context())
	if err != nil {
		exitErr("open engine", err)
	}
	defer e.Close()

	opts := engine.RecallOptions{Limit: limit, Scope: scopePtr(scope)}

	if scored {
		results, err := e.RecallScored(cmd.Context(), query, opts)
		if err != nil {
			exitErr("recall", err)
		}
		b, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(b))
		return
	}

	results, err := e.Recall(cmd.Context(), query, opts)
	if err != nil {
		exitErr("recall", err)
	}
	b, _ := json.MarshalIndent(results, "", "  ")
	fmt.Println(string(b))
}
