package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "open [id]",
		Short: "Retrieve a memory by id",
		Args:  cobra.ExactArgs(1),
		Run:   runOpen,
	}

	RootCmd.AddCommand(cmd)
}

func runOpen(cmd *cobra.Command, args []string) {
	e, err := openEngine(cmd.Context())
	if err != nil {
		exitErr("open engine", err)
	}
	defer e.Close()

	rec, err := e.Open(cmd.Context(), args[0])
	if err != nil {
		exitErr("open", err)
	}
	if rec == nil {
		fmt.Println("null")
		return
	}

	b, _ := json.MarshalIndent(rec, "", "  ")
	fmt.Println(string(b))
}
