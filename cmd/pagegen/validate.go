package main

import (
	"fmt"
	"os"
	"strings"

	"pagegen-workers/internal/htmlcheck"

	"github.com/spf13/cobra"
)

var (
	minLength int
	repair    bool
)

var validateCmd = &cobra.Command{
	Use:   "validate <file.html>",
	Short: "Check an HTML file against the page validation rules",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		v := htmlcheck.NewValidator(minLength)
		html := htmlcheck.Clean(string(data))

		if repair {
			fixed, ok := v.Repair(html)
			if !ok {
				return fmt.Errorf("not repairable: %s", strings.Join(v.Problems(fixed), "; "))
			}
			if fixed != string(data) {
				if err := os.WriteFile(args[0], []byte(fixed), 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: repaired\n", args[0])
				return nil
			}
		}

		if problems := v.Problems(html); len(problems) > 0 {
			return fmt.Errorf("%s: %s", args[0], strings.Join(problems, "; "))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: valid\n", args[0])
		return nil
	},
}

func init() {
	validateCmd.Flags().IntVar(&minLength, "min-length", htmlcheck.DefaultMinLength, "Minimum document length")
	validateCmd.Flags().BoolVar(&repair, "repair", false, "Insert missing closing tags in place")
}
