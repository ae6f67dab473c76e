package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lockplane/schemacore/ddlrender"
	"github.com/lockplane/schemacore/destructive"
	"github.com/lockplane/schemacore/internal/wizard"
	"github.com/lockplane/schemacore/orchestrator"
	"github.com/lockplane/schemacore/sqlparse"
)

var (
	applySchemaFile string
	applyYes        bool
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Diff the connected database against a SQL schema file and apply the resulting migration",
	RunE:  runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().StringVar(&applySchemaFile, "schema", "", "path to a SQL DDL file describing the desired schema")
	applyCmd.Flags().BoolVar(&applyYes, "yes", false, "skip the interactive confirmation wizard (for non-interactive use only)")
	applyCmd.MarkFlagRequired("schema")
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	o, err := newOrchestrator(ctx)
	if err != nil {
		return fatal(err)
	}

	sql, err := os.ReadFile(applySchemaFile)
	if err != nil {
		return fatal(err)
	}
	d, err := parseDialect(flagDialect)
	if err != nil {
		return fatal(err)
	}
	next, err := sqlparse.Parse(string(sql), d)
	if err != nil {
		return fatal(fmt.Errorf("parsing %s: %w", applySchemaFile, err))
	}

	steps, err := o.Diff(ctx, orchestrator.DiffTarget{Kind: orchestrator.TargetDatabase}, next)
	if err != nil {
		return fatal(err)
	}
	if len(steps) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "database already matches the schema, nothing to apply")
		return nil
	}

	findings, err := o.CheckDestructive(ctx, steps)
	if err != nil {
		return fatal(err)
	}

	impactsByTable := make(map[string]ddlrender.LockImpact, len(steps))
	for i, impact := range o.LockImpacts(steps) {
		impactsByTable[steps[i].TableName] = impact
	}

	script := o.RenderScript(steps)

	apply := func() error {
		return o.ApplyScript(ctx, script)
	}

	if applyYes {
		if len(findings) > 0 {
			for _, f := range findings {
				if f.Severity == destructive.Unexecutable {
					return fatal(fmt.Errorf("refusing --yes apply: %s has an unexecutable finding on %s: %s", f.Severity, f.TableName, f.Detail))
				}
			}
		}
		return apply()
	}

	result, err := wizard.RunWithImpacts(findings, impactsByTable, apply)
	if err != nil {
		return fatal(err)
	}
	if result.Cancelled {
		color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(), "apply cancelled")
		return nil
	}
	if result.Err != nil {
		return fatal(result.Err)
	}
	if result.Applied {
		color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "migration applied")
	}
	return nil
}
