package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewRulesCmd creates the root rules command with all subcommands.
func NewRulesCmd() *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage detection rules",
		Long:  "List, import and export the detection rules evaluated against every analysis.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}

	rulesCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output in JSON format")
	rulesCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rulesCmd.PersistentFlags().BoolVar(&quiet, "quiet", true, "Suppress log output")

	rulesCmd.AddCommand(newRulesListCmd())
	rulesCmd.AddCommand(newRulesImportCmd())
	rulesCmd.AddCommand(newRulesExportCmd())
	rulesCmd.AddCommand(newRulesToggleCmd())

	return rulesCmd
}

func newRulesListCmd() *cobra.Command {
	var showDisabled bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
			defer cancel()

			b, cleanup, err := initBackend(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			rules, err := b.Rules.GetRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to list rules: %w", err)
			}

			if outputJSON {
				return outputAsJSON(rules)
			}

			headerColor.Printf("%-38s %-30s %-10s %s\n", "ID", "NAME", "SEVERITY", "ENABLED")
			for _, rule := range rules {
				if !rule.Enabled && !showDisabled {
					continue
				}
				fmt.Printf("%-38s %-30s %-10s %v\n", rule.ID, rule.Name, rule.Severity, rule.Enabled)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showDisabled, "all", false, "Show disabled rules")
	return cmd
}

func newRulesImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import rules from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
			defer cancel()

			b, cleanup, err := initBackend(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			count, err := b.Rules.ImportRules(ctx, args[0])
			if err != nil {
				return fmt.Errorf("import failed after %d rules: %w", count, err)
			}
			successColor.Printf("Imported %d rules\n", count)
			return nil
		},
	}
}

func newRulesExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Export all rules to a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
			defer cancel()

			b, cleanup, err := initBackend(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			count, err := b.Rules.ExportRules(ctx, args[0])
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}
			successColor.Printf("Exported %d rules to %s\n", count, args[0])
			return nil
		},
	}
}

func newRulesToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Enable or disable a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
			defer cancel()

			b, cleanup, err := initBackend(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			rule, err := b.Rules.ToggleRule(ctx, args[0])
			if err != nil {
				return fmt.Errorf("toggle failed: %w", err)
			}
			state := "disabled"
			if rule.Enabled {
				state = "enabled"
			}
			successColor.Printf("Rule %q is now %s\n", rule.Name, state)
			return nil
		},
	}
}
