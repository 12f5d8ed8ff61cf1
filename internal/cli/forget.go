package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "forget [id]",
		Short: "Delete a memory",
		Long:  "Delete a memory by id. Forgetting an unknown id is a no-op success.",
		Args:  cobra.ExactArgs(1),
		Run:   runForget,
	}

	RootCmd.AddCommand(cmd)
}

func runForget(cmd *cobra.Command, args []string) {
	e, err := openEngine(cmd.Context())
	if err != nil {
		exitErr("open engine", err)
	}
	defer e.Close()

	if err := e.Forget(cmd.Context(), args[0]); err != nil {
		exitErr("forget", err)
	}

	fmt.Printf(`{"ok":true,"id":%q}`+"\n", args[0])
}
