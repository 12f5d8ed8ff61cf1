package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "mark-invalid [id]",
		Short: "Flag a memory as invalid or corrected",
		Long:  "Sets validityScore and isNegative on a memory, demoting it in future recall without deleting it.",
		Args:  cobra.ExactArgs(1),
		Run:   runMarkInvalid,
	}

	cmd.Flags().Float64("score", 0, "New validity score in [0,1] (default 0.2 if unset)")

	RootCmd.AddCommand(cmd)
}

func runMarkInvalid(cmd *cobra.Command, args []string) {
	var score *float64
	if cmd.Flags().Changed("score") {
		v, _ := cmd.Flags().GetFloat64("score")
		score = &v
	}

	e, err := openEngine(cmd.Context())
	if err != nil {
		exitErr("open engine", err)
	}
	defer e.Close()

	if err := e.MarkInvalid(cmd.Context(), args[0], score); err != nil {
		exitErr("mark-invalid", err)
	}

	fmt.Printf(`{"ok":true,"id":%q}`+"\n", args[0])
}
