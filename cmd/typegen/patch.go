package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/typelift/typegen"
)

// patchFile is the on-disk shape of the --patch document: a JSON object whose sections mirror
// typegen.Settings' patch-layer fields directly (spec.md §4.5/§6), so the CLI need not invent a
// second configuration vocabulary. Generated/consumer-facing tooling reads ordinary
// encoding/json here — this file is user-authored config, not pipeline-internal data, so there
// is no determinism requirement pulling it onto go-json-experiment/json the way the core
// package's own marshaling is (see DESIGN.md).
type patchFile struct {
	MapType       string                               `json:"mapType"`
	StructBuilder bool                                  `json:"structBuilder"`
	Derives       []string                              `json:"derives"`
	Patches       map[string]typegen.PatchSpec          `json:"patches"`
	Replacements  map[string]typegen.ReplacementSpec    `json:"replacements"`
	Conversions   []typegen.ConversionSpec              `json:"conversions"`
	Packages      map[string]typegen.PackageSpec        `json:"packages"`
}

// applyPatchFile reads path and merges its contents into settings, per the --patch flag
// described in SPEC_FULL.md §6.
func applyPatchFile(settings *typegen.Settings, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read patch file: %w", err)
	}
	var pf patchFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return fmt.Errorf("parse patch file %s: %w", path, err)
	}

	if pf.MapType != "" {
		settings.MapType = pf.MapType
	}
	if pf.StructBuilder {
		settings.StructBuilder = true
	}
	settings.Derives = append(settings.Derives, pf.Derives...)

	if len(pf.Patches) > 0 {
		if settings.Patches == nil {
			settings.Patches = make(map[string]typegen.PatchSpec)
		}
		for k, v := range pf.Patches {
			settings.Patches[k] = v
		}
	}
	if len(pf.Replacements) > 0 {
		if settings.Replacements == nil {
			settings.Replacements = make(map[string]typegen.ReplacementSpec)
		}
		for k, v := range pf.Replacements {
			settings.Replacements[k] = v
		}
	}
	settings.Conversions = append(settings.Conversions, pf.Conversions...)

	if len(pf.Packages) > 0 {
		if settings.Packages == nil {
			settings.Packages = make(map[string]typegen.PackageSpec)
		}
		for k, v := range pf.Packages {
			settings.Packages[k] = v
		}
	}
	return nil
}
