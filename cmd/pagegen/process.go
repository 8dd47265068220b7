package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	callerID   string
	outputPath string
	selfTest   bool
	asJSON     bool
)

var processCmd = &cobra.Command{
	Use:   "process <prompt...>",
	Short: "Run the full pipeline for a prompt",
	Long: `Analyze the prompt, match it against the catalog and either return the
matched template or generate an enhanced page through the provider chain.

The generated page is written to --out when given, and to the artifact
directory when artifacts are enabled.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVar(&callerID, "caller", "cli", "Caller id used in artifact names")
	processCmd.Flags().StringVarP(&outputPath, "out", "o", "", "Write the generated HTML to this file")
	processCmd.Flags().BoolVar(&selfTest, "self-test", false, "Probe providers before processing")
	processCmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON")
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, cfg, cleanup, err := loadService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if selfTest || cfg.Orchestrator.SelfTest {
		available := svc.Orchestrator.SelfTest(ctx)
		fmt.Fprintf(cmd.ErrOrStderr(), "providers available: %v\n", available)
	}

	res, err := svc.Process(ctx, promptFrom(args), callerID)
	if err != nil {
		return err
	}

	if outputPath != "" && res.HTML != "" {
		if err := os.WriteFile(outputPath, []byte(res.HTML), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", outputPath, err)
		}
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return printJSON(out, res)
	}

	fmt.Fprintf(out, "request:   %s\n", res.RequestID)
	fmt.Fprintf(out, "template:  %d (%s, %.2f)\n", res.TemplateID, res.Tier, res.MatchScore)
	fmt.Fprintf(out, "enhanced:  %t\n", res.Enhanced)
	fmt.Fprintf(out, "provider:  %s\n", res.ProviderUsed)
	if res.ArtifactPath != "" {
		fmt.Fprintf(out, "artifact:  %s\n", res.ArtifactPath)
	}
	if outputPath != "" && res.HTML != "" {
		fmt.Fprintf(out, "written:   %s\n", outputPath)
	}
	fmt.Fprintf(out, "\n%s\n", res.Narrative)
	return nil
}
