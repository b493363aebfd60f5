package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/totegamma/admindata"
	"github.com/totegamma/admindata/client"
)

func newGetCmd() *cobra.Command {
	var (
		server string
		token  string
	)
	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "Fetch an API path, e.g. /data/types",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(server, client.WithToken(token))
			body, err := client.Get[json.RawMessage](cmd.Context(), c, args[0])
			if err != nil {
				return err
			}
			admindata.JsonPrint(args[0], body)
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", "http://localhost:8000/api", "API base URL")
	cmd.Flags().StringVar(&token, "token", os.Getenv("ADMINDATA_TOKEN"), "Session token")
	return cmd
}
