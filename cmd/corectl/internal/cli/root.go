// Package cli is corectl's Cobra command tree, grounded on the teacher's
// cmd/root.go (a package-level rootCmd plus one file per subcommand
// registering itself via init()).
package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "corectl",
	Short: "Development harness for the schema core: diff, introspect, and diagnose migration history.",
}

var (
	flagDriver  string
	flagDSN     string
	flagDialect string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDriver, "driver", "postgres", "database/sql driver name (postgres, sqlite, libsql)")
	rootCmd.PersistentFlags().StringVar(&flagDSN, "dsn", "", "connection string for the target database")
	rootCmd.PersistentFlags().StringVar(&flagDialect, "dialect", "postgres", "dialect adapter to use (postgres, mysql, sqlite, cockroachdb, vitess)")
}

// Execute runs the command tree, the way the teacher's cmd.Execute does.
func Execute() error {
	return rootCmd.Execute()
}

func fatal(err error) error {
	color.New(color.FgRed).Fprintln(rootCmd.ErrOrStderr(), err.Error())
	return err
}
