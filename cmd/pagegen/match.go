package main

import (
	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match <prompt...>",
	Short: "Show the requirement record and best template for a prompt",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, cleanup, err := loadService(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		req, match, namespace, err := svc.Match(promptFrom(args))
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), map[string]interface{}{
			"analyzer":    svc.Analyzer.Name(),
			"namespace":   namespace,
			"requirement": req,
			"match":       match,
		})
	},
}
