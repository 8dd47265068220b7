package main

import (
	"fmt"

	"pagegen-workers/pkg/registry"

	"github.com/spf13/cobra"
)

var registryPath string

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Inspect the activity registry",
}

var registryValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the activity registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		if err := reg.Validate(); err != nil {
			return fmt.Errorf("registry validation failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d activities.\n", len(reg.Activities))
		return nil
	},
}

var registryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered activities",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		for _, a := range reg.Activities {
			timeout, err := a.TimeoutDuration()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-22s %-12s %-8s %s\n", a.TaskType, a.ImplementationStatus, timeout, a.DisplayName)
		}
		return nil
	},
}

func init() {
	registryCmd.PersistentFlags().StringVar(&registryPath, "path", "", "Registry file (default: embedded registry)")
	registryCmd.AddCommand(registryValidateCmd, registryListCmd)
}

func loadRegistry() (*registry.ActivityRegistry, error) {
	if registryPath == "" {
		return registry.Default()
	}
	return registry.LoadRegistry(registryPath)
}
