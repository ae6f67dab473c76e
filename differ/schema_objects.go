package differ

import "github.com/lockplane/schemacore/sqlir"

// enumDiff captures variant-level changes for a matched enum pair.
type enumDiff struct {
	Enum            sqlir.Enum
	AddedVariants   []string
	RemovedVariants []string
}

func diffEnumVariants(prev, next sqlir.Enum) enumDiff {
	prevSet := make(map[string]bool, len(prev.Variants))
	for _, v := range prev.Variants {
		prevSet[v] = true
	}
	nextSet := make(map[string]bool, len(next.Variants))
	for _, v := range next.Variants {
		nextSet[v] = true
	}

	d := enumDiff{Enum: next}
	for _, v := range next.Variants {
		if !prevSet[v] {
			d.AddedVariants = append(d.AddedVariants, v)
		}
	}
	for _, v := range prev.Variants {
		if !nextSet[v] {
			d.RemovedVariants = append(d.RemovedVariants, v)
		}
	}
	return d
}

func indexSequencesByKey(s *sqlir.Schema) map[entityKey]sqlir.SequenceID {
	out := make(map[entityKey]sqlir.SequenceID, len(s.Sequences))
	for i, seq := range s.Sequences {
		out[entityKey{ns: nsName(s, seq.NamespaceID), name: seq.Name}] = sqlir.SequenceID(i)
	}
	return out
}

func indexViewsByKey(s *sqlir.Schema) map[entityKey]sqlir.ViewID {
	out := make(map[entityKey]sqlir.ViewID, len(s.Views))
	for i, v := range s.Views {
		out[entityKey{ns: nsName(s, v.NamespaceID), name: v.Name}] = sqlir.ViewID(i)
	}
	return out
}

func indexUDTsByKey(s *sqlir.Schema) map[entityKey]sqlir.UserDefinedTypeID {
	out := make(map[entityKey]sqlir.UserDefinedTypeID, len(s.UserDefinedTypes))
	for i, t := range s.UserDefinedTypes {
		out[entityKey{ns: nsName(s, t.NamespaceID), name: t.Name}] = sqlir.UserDefinedTypeID(i)
	}
	return out
}

func indexExtensionsByName(s *sqlir.Schema) map[string]sqlir.ExtensionID {
	out := make(map[string]sqlir.ExtensionID, len(s.Extensions))
	for i, e := range s.Extensions {
		out[e.Name] = sqlir.ExtensionID(i)
	}
	return out
}
