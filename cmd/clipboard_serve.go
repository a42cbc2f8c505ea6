package cmd

import (
	"encoding/json"

	"mdclip/pkg/clipboard"

	"github.com/spf13/cobra"
)

var clipboardServeCmd = &cobra.Command{
	Use:    clipboard.ServeCommand,
	Hidden: true,
	Short:  "Internal: serve clipboard content over Wayland (do not call directly)",
	RunE: func(cmd *cobra.Command, args []string) error {
		var offers []clipboard.Offer
		if err := json.NewDecoder(cmd.InOrStdin()).Decode(&offers); err != nil {
			return err
		}
		return clipboard.Serve(offers)
	},
}
