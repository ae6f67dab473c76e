package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lockplane/schemacore/dml"
)

var introspectPriorFile string

var introspectCmd = &cobra.Command{
	Use:   "introspect",
	Short: "Introspect the connected database and print the reconciled document as JSON",
	RunE:  runIntrospect,
}

func init() {
	rootCmd.AddCommand(introspectCmd)
	introspectCmd.Flags().StringVar(&introspectPriorFile, "prior", "", "path to a prior document (JSON) to reconcile against, for stable naming")
}

func runIntrospect(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	o, err := newOrchestrator(ctx)
	if err != nil {
		return fatal(err)
	}

	var prior *dml.Document
	if introspectPriorFile != "" {
		raw, err := os.ReadFile(introspectPriorFile)
		if err != nil {
			return fatal(err)
		}
		var doc dml.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fatal(fmt.Errorf("parsing %s: %w", introspectPriorFile, err))
		}
		prior = &doc
	}

	result, err := o.Introspect(ctx, prior)
	if err != nil {
		return fatal(err)
	}

	for _, w := range result.Warnings {
		color.New(color.FgYellow).Fprintf(cmd.ErrOrStderr(), "warning[%s] %s.%s: %s\n", w.Code, w.Model, w.Field, w.Message)
	}

	out, err := json.MarshalIndent(result.Document, "", "  ")
	if err != nil {
		return fatal(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
