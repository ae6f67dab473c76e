package ddlrender

import (
	"fmt"
	"strings"

	"github.com/lockplane/schemacore/dialect"
	"github.com/lockplane/schemacore/differ"
)

func renderCreateEnum(step differ.MigrationStep, ad dialect.Adapter) []string {
	quoted := make([]string, len(step.Enum.Variants))
	for i, v := range step.Enum.Variants {
		quoted[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
	}
	return []string{fmt.Sprintf("CREATE TYPE %s AS ENUM (%s);", ad.QuoteIdentifier(step.Enum.Name), strings.Join(quoted, ", "))}
}

// renderAlterEnum appends each added variant with its own statement (most
// dialects disallow adding more than one value per ALTER TYPE statement)
// and only comments on removed variants, since dropping an enum variant
// that might still be referenced by a row is unsupported by every target
// dialect modeled here.
func renderAlterEnum(step differ.MigrationStep, ad dialect.Adapter) []string {
	var out []string
	for _, v := range step.AddedVariants {
		out = append(out, fmt.Sprintf("ALTER TYPE %s ADD VALUE '%s';", ad.QuoteIdentifier(step.Enum.Name), strings.ReplaceAll(v, "'", "''")))
	}
	for _, v := range step.RemovedVariants {
		out = append(out, fmt.Sprintf("-- cannot drop enum variant %q from %s in place; requires a full type rebuild", v, step.Enum.Name))
	}
	return out
}
