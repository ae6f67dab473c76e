package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var diagnoseHistoryDir string

var diagnoseHistoryCmd = &cobra.Command{
	Use:   "diagnose-history",
	Short: "Compare the on-disk migrations directory against the connected database's migrations table",
	RunE:  runDiagnoseHistory,
}

func init() {
	rootCmd.AddCommand(diagnoseHistoryCmd)
	diagnoseHistoryCmd.Flags().StringVar(&diagnoseHistoryDir, "dir", "migrations", "path to the migrations directory")
}

func runDiagnoseHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	o, err := newOrchestrator(ctx)
	if err != nil {
		return fatal(err)
	}

	d, err := o.DiagnoseMigrationHistory(ctx, diagnoseHistoryDir)
	if err != nil {
		return fatal(err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "status: %s\n", d.Status)
	for _, name := range d.Pending {
		fmt.Fprintf(out, "  pending: %s\n", name)
	}
	for _, name := range d.Modified {
		color.New(color.FgYellow).Fprintf(out, "  modified: %s\n", name)
	}
	for _, name := range d.Orphaned {
		color.New(color.FgYellow).Fprintf(out, "  orphaned: %s\n", name)
	}
	if d.Stale != nil {
		color.New(color.FgRed).Fprintf(out, "  stale reservation: %s (operation %s, started %s)\n",
			d.Stale.Migration, d.Stale.Operation, d.Stale.StartedAt)
	}
	return nil
}
