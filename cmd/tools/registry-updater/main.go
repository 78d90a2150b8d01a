// cmd/tools/registry-updater/main.go
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"onboarding-workers/pkg/registry"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var path string

	root := &cobra.Command{
		Use:           "registry-updater",
		Short:         "Maintain the onboarding activity registry",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&path, "path", "configs/activity-registry.json", "path to registry file")

	root.AddCommand(addCmd(&path))
	root.AddCommand(updateCmd(&path))
	root.AddCommand(validateCmd(&path))
	root.AddCommand(listCmd(&path))
	return root
}

func addCmd(path *string) *cobra.Command {
	var a registry.Activity
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new activity to the registry",
		Example: `  registry-updater add --id notify-onboarding-status --displayName "Notify Onboarding Status" \
    --description "Emails the employee about review outcomes" --category communication --taskType notify-onboarding-status`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(*path)
			if os.IsNotExist(err) {
				reg = registry.New()
			} else if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}

			a.InputSchema = map[string]interface{}{}
			a.OutputSchema = map[string]interface{}{}
			a.ErrorCodes = []string{}
			a.Workflows = []string{}
			a.Tags = []string{}
			if err := reg.Add(a); err != nil {
				return err
			}
			if err := reg.Save(*path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added activity: %s\n", a.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&a.ID, "id", "", "activity id")
	cmd.Flags().StringVar(&a.DisplayName, "displayName", "", "display name")
	cmd.Flags().StringVar(&a.Description, "description", "", "description")
	cmd.Flags().StringVar(&a.Category, "category", "", "category (onboarding, data-access, communication)")
	cmd.Flags().StringVar(&a.TaskType, "taskType", "", "Zeebe job type")
	cmd.Flags().StringVar(&a.Version, "version", "1.0.0", "version")
	cmd.Flags().StringVar(&a.ImplementationStatus, "status", registry.StatusPlanned, "implementation status (planned, in-progress, completed, verified)")
	cmd.Flags().StringVar(&a.Timeout, "timeout", "10s", "job timeout")
	cmd.Flags().IntVar(&a.Retries, "retries", 0, "job retries")
	for _, name := range []string{"id", "displayName", "description", "category", "taskType"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func updateCmd(path *string) *cobra.Command {
	var id, field, value string
	cmd := &cobra.Command{
		Use:     "update",
		Short:   "Update a field of an existing activity",
		Example: "  registry-updater update --id notify-onboarding-status --field status --value completed",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(*path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := reg.Update(id, field, value); err != nil {
				return err
			}
			if err := reg.Save(*path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated activity %s, field %s to %s\n", id, field, value)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "activity id to update")
	cmd.Flags().StringVar(&field, "field", "", "field to update (status, version, displayName, description, category, taskType, timeout, retries)")
	cmd.Flags().StringVar(&value, "value", "", "new value for the field")
	for _, name := range []string{"id", "field", "value"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func validateCmd(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the registry file",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(*path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := reg.Validate(); err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d activities.\n", len(reg.Activities))
			return nil
		},
	}
}

func listCmd(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered activities",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(*path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"ID", "Task Type", "Category", "Status", "Version", "Timeout"})
			for _, a := range reg.Activities {
				tw.AppendRow(table.Row{a.ID, a.TaskType, a.Category, a.ImplementationStatus, a.Version, a.Timeout})
			}
			tw.Render()
			return nil
		},
	}
}
