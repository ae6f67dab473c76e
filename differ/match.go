package differ

import (
	"sort"

	"github.com/lockplane/schemacore/sqlir"
)

// entityKey pairs entities by (namespace name, name) case-sensitively, per
// spec §4.2's matching algorithm. Namespace is compared by name (not by
// index) since previous and next schemas own distinct Namespace arenas.
type entityKey struct {
	ns   string
	name string
}

func nsName(s *sqlir.Schema, id sqlir.NamespaceID) string {
	if id == sqlir.NoNamespace {
		return ""
	}
	return s.Namespaces[id].Name
}

func indexTablesByKey(s *sqlir.Schema) map[entityKey]sqlir.TableID {
	out := make(map[entityKey]sqlir.TableID, len(s.Tables))
	for i, t := range s.Tables {
		out[entityKey{ns: nsName(s, t.NamespaceID), name: t.Name}] = sqlir.TableID(i)
	}
	return out
}

func indexEnumsByKey(s *sqlir.Schema) map[entityKey]sqlir.EnumID {
	out := make(map[entityKey]sqlir.EnumID, len(s.Enums))
	for i, e := range s.Enums {
		out[entityKey{ns: nsName(s, e.NamespaceID), name: e.Name}] = sqlir.EnumID(i)
	}
	return out
}

func indexNamespacesByName(s *sqlir.Schema) map[string]bool {
	out := make(map[string]bool, len(s.Namespaces))
	for _, ns := range s.Namespaces {
		out[ns.Name] = true
	}
	return out
}

// sortedEntityKeys returns m's keys in a fixed (namespace, name) order, so
// Diff's callers iterate entity maps deterministically instead of relying
// on Go's randomized map iteration order (spec §4.7: diff always produces
// a deterministic Migration value).
func sortedEntityKeys[V any](m map[entityKey]V) []entityKey {
	keys := make([]entityKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ns != keys[j].ns {
			return keys[i].ns < keys[j].ns
		}
		return keys[i].name < keys[j].name
	})
	return keys
}

// sortedStringKeys is sortedEntityKeys's counterpart for the plain
// map[string]V indexes (namespaces, extensions).
func sortedStringKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
