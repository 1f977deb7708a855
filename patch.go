package typegen

import "context"

// ApplyPatches applies Settings.Patches/Replacements/Conversions to every Interned type in ts,
// per spec.md §4.5: "Patches are applied after all schemas are converted and before emission."
// A Replacement or matching Conversion bypasses further emission but remains queryable by
// dependents (its TypeId is unchanged; only its Kind/Native fields are overwritten).
func ApplyPatches(ts *TypeSpace) error {
	for _, id := range ts.types.Keys() {
		t, _ := ts.types.Get(id)

		if repl, ok := ts.settings.Replacements[t.Name]; ok {
			t.Kind = TypeNative
			t.NativeImportPath = repl.ImportPath
			t.NativeExpr = repl.TypeExpr
			t.Aliases = append(t.Aliases, repl.ExtraDerives...)
			ts.types.Overwrite(id, t)
			continue
		}

		for _, conv := range ts.settings.Conversions {
			if conversionMatches(conv, t) {
				t.Kind = TypeNative
				t.NativeImportPath = conv.ImportPath
				t.NativeExpr = conv.TypeExpr
				ts.types.Overwrite(id, t)
				break
			}
		}

		if patch, ok := ts.settings.Patches[t.Name]; ok {
			if patch.Rename != "" {
				delete(ts.byName, t.Name)
				t.Name = patch.Rename
				ts.byName[t.Name] = id
			}
			t.Aliases = append(t.Aliases, patch.ExtraDerives...)
			ts.types.Overwrite(id, t)
		}
	}
	return nil
}

// conversionMatches reports whether t's structural hash projection equals the schema a
// ConversionSpec targets. Since Conversions are keyed on schema equality rather than name
// (spec.md §4.5), matching is done by re-running the same bundling/canonicalization/conversion
// steps on conv.Schema in isolation and comparing the resulting TypeId's hash projection.
func conversionMatches(conv ConversionSpec, t Type) bool {
	raw, err := newRawSchema(conv.Schema)
	if err != nil {
		return false
	}
	bundler := NewBundler(NullLoader{})
	bundler.AddDocument("conversion:", raw)
	g, err := Bundle(context.Background(), bundler, raw, "conversion:")
	if err != nil {
		return false
	}
	canon, err := Canonicalize(g)
	if err != nil {
		return false
	}
	probe := New(Settings{})
	names := ResolveNames(canon, g.Root, probe.taken)
	id, err := probe.convert(canon, g.Root, names)
	if err != nil {
		return false
	}
	candidate, ok := probe.lookup(id)
	if !ok {
		return false
	}
	return hashType(candidate) == hashType(t)
}
