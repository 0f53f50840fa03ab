package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"argus/core"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewAnalyzeCmd creates the one-shot analyze command
func NewAnalyzeCmd() *cobra.Command {
	var typeHint string

	cmd := &cobra.Command{
		Use:   "analyze <indicator>",
		Short: "Analyze a single indicator",
		Long: `Run one indicator through the full pipeline: classification, external
enrichment, persistence and rule evaluation. The result is stored in the
local database and printed to stdout.`,
		Args: cobra.ExactArgs(1),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
			defer cancel()

			b, cleanup, err := initBackend(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var s *spinner.Spinner
			observer := func(stage string) {
				if quiet || outputJSON {
					return
				}
				if s != nil {
					s.Stop()
				}
				s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
				s.Suffix = " " + stage + "..."
				s.Start()
			}

			result, err := b.Analyses.Analyze(ctx, args[0], core.IndicatorType(typeHint), observer)
			if s != nil {
				s.Stop()
			}
			if err != nil {
				errorColor.Printf("Analysis failed: %v\n", err)
				return err
			}

			if outputJSON {
				return outputAsJSON(result)
			}

			renderAnalysis(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&typeHint, "type", "", "Indicator type (ip, domain, hash, url); auto-detected when omitted")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&quiet, "quiet", true, "Suppress log output")

	return cmd
}

// renderAnalysis prints a human-readable analysis summary
func renderAnalysis(result *core.AnalysisResult) {
	headerColor.Printf("\n%s (%s)\n", result.IOC, result.Type)
	fmt.Printf("Risk score: %d/100\n", result.RiskScore)

	switch result.Verdict {
	case core.VerdictCritical, core.VerdictHigh:
		errorColor.Printf("Verdict: %s\n", result.Verdict)
	case core.VerdictMedium:
		warningColor.Printf("Verdict: %s\n", result.Verdict)
	default:
		successColor.Printf("Verdict: %s\n", result.Verdict)
	}

	fmt.Printf("\n%s\n", result.Description)

	if len(result.MitigationSteps) > 0 {
		infoColor.Println("\nMitigation:")
		for _, step := range result.MitigationSteps {
			fmt.Printf("  - %s\n", step)
		}
	}

	if len(result.ThreatActors) > 0 {
		fmt.Printf("\nThreat actors: %s\n", strings.Join(result.ThreatActors, ", "))
	}

	if len(result.ExternalIntel) > 0 {
		infoColor.Println("\nExternal intel:")
		for _, entry := range result.ExternalIntel {
			if entry.Error != "" {
				warningColor.Printf("  %s: unavailable (%s)\n", entry.Source, entry.Error)
				continue
			}
			line := "  " + entry.Source
			if entry.Score != nil && entry.MaxScore != nil {
				line += fmt.Sprintf(": %.0f/%.0f", *entry.Score, *entry.MaxScore)
			} else if entry.Score != nil {
				line += fmt.Sprintf(": %.0f", *entry.Score)
			}
			fmt.Println(line)
			if len(entry.Tags) > 0 {
				fmt.Printf("    tags: %s\n", strings.Join(entry.Tags, ", "))
			}
		}
	}
	fmt.Println()
}
