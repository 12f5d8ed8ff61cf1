package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show engine status: db path, ANN health, corpus size",
		Run:   runStatus,
	}

	RootCmd.AddCommand(cmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	e, err := openEngine(cmd.Context())
	if err != nil {
		exitErr("open engine", err)
	}
	defer e.Close()

	status, err := e.Status(cmd.Context())
	if err != nil {
		exitErr("status", err)
	}

	b, _ := json.MarshalIndent(status, "", "  ")
	fmt.Println(string(b))
}
