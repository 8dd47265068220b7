package main

import (
	"fmt"
	"text/tabwriter"

	"pagegen-workers/internal/catalog"

	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog [namespace]",
	Short: "List the parsed entries of a catalog namespace",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cfg, cleanup, err := loadService(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		namespace := cfg.Catalog.DefaultNamespace
		if len(args) == 1 {
			namespace = args[0]
		}

		entries := svc.Catalog.Load(namespace)
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTHEME\tDIFFICULTY\tFEATURES\tDESCRIPTION")
		for _, id := range catalog.IDs(entries) {
			e := entries[id]
			fmt.Fprintf(w, "%d\t%s\t%s\t%v\t%s\n", e.ID, e.PrimaryTheme, e.DifficultyLevel, e.SupportedFeatures, e.Description)
		}
		return w.Flush()
	},
}
