// Copyright (c) 2026 natgw authors. Licensed under the Apache License, Version 2.0.

package reload

import (
	"github.com/pmezard/go-difflib/difflib"

	"github.com/natgw/natgw/internal/config"
)

// Diff renders a unified diff of old and next's YAML dumps, for the
// admin reload response's human-readable change summary (SPEC_FULL.md
// §4.J). Errors from DumpYAML fall back to an empty string rather than
// failing the reload itself — the diff is a courtesy, not a correctness
// gate.
func Diff(old, next *config.Config) string {
	oldYAML, err := old.DumpYAML()
	if err != nil {
		return ""
	}
	nextYAML, err := next.DumpYAML()
	if err != nil {
		return ""
	}

	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(oldYAML)),
		B:        difflib.SplitLines(string(nextYAML)),
		FromFile: "previous",
		ToFile:   "next",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return ""
	}
	return text
}
