package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lockplane/schemacore/ddlrender"
	"github.com/lockplane/schemacore/destructive"
	"github.com/lockplane/schemacore/orchestrator"
	"github.com/lockplane/schemacore/sqlparse"
)

var (
	diffSchemaFile string
	diffCheck      bool
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Diff the connected database against a SQL schema file and render the migration script",
	RunE:  runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().StringVar(&diffSchemaFile, "schema", "", "path to a SQL DDL file describing the desired schema")
	diffCmd.Flags().BoolVar(&diffCheck, "check-destructive", false, "run the destructive-change checker against the resulting steps")
	diffCmd.MarkFlagRequired("schema")
}

func runDiff(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	o, err := newOrchestrator(ctx)
	if err != nil {
		return fatal(err)
	}

	sql, err := os.ReadFile(diffSchemaFile)
	if err != nil {
		return fatal(err)
	}

	d, err := parseDialect(flagDialect)
	if err != nil {
		return fatal(err)
	}
	next, err := sqlparse.Parse(string(sql), d)
	if err != nil {
		return fatal(fmt.Errorf("parsing %s: %w", diffSchemaFile, err))
	}

	steps, err := o.Diff(ctx, orchestrator.DiffTarget{Kind: orchestrator.TargetDatabase}, next)
	if err != nil {
		return fatal(err)
	}

	for _, impact := range o.LockImpacts(steps) {
		if impact.Impact >= ddlrender.ImpactMedium {
			color.New(color.FgYellow).Fprintf(cmd.OutOrStdout(), "-- %s acquires %s (impact: %s)\n", impact.Operation, impact.LockMode, impact.Impact)
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), o.RenderScript(steps))

	if diffCheck {
		findings, err := o.CheckDestructive(ctx, steps)
		if err != nil {
			return fatal(err)
		}
		for _, f := range findings {
			printFinding(cmd, f)
		}
	}
	return nil
}

// printFinding renders a destructive-change finding the way sqlhost colors
// its own notices: yellow for a warning, red for an outright unexecutable
// step, plain for anything that turned out safe after probing.
func printFinding(cmd *cobra.Command, f destructive.Finding) {
	out := cmd.OutOrStdout()
	line := fmt.Sprintf("[%s] %s: %s", f.Severity, f.TableName, f.Detail)
	switch f.Severity {
	case destructive.Unexecutable:
		color.New(color.FgRed, color.Bold).Fprintln(out, line)
	case destructive.Warning:
		color.New(color.FgYellow).Fprintln(out, line)
	default:
		fmt.Fprintln(out, line)
	}
}
