// Package scan runs the layered-import analysis over a source tree: it
// discovers candidate files, parses their imports, classifies both sides of
// every import edge and evaluates the forbidden-direction policy.
package scan

import (
	"fmt"
	"sort"
	"time"
)

// ParseErrorModule is the sentinel imported-module value carried by the
// synthetic violation that stands in for a file that could not be analyzed.
const ParseErrorModule = "(parse error)"

// Violation is one recorded instance of a forbidden import edge, or an
// analysis failure standing in for that file. Col is stored 0-based and
// rendered 1-based.
type Violation struct {
	File        string `json:"file" yaml:"file"`
	FileLayer   string `json:"file_layer" yaml:"file_layer"`
	Module      string `json:"module" yaml:"module"`
	ModuleLayer string `json:"module_layer" yaml:"module_layer"`
	Line        uint32 `json:"line" yaml:"line"`
	Col         uint32 `json:"col" yaml:"col"`
	Reason      string `json:"reason" yaml:"reason"`
}

// Location renders the violation position as path:line:col with a 1-based
// column.
func (v Violation) Location() string {
	return fmt.Sprintf("%s:%d:%d", v.File, v.Line, v.Col+1)
}

// Result is the outcome of one complete scan.
type Result struct {
	Violations   []Violation
	FilesScanned int
	Elapsed      time.Duration
}

// Clean reports whether the scan found no violations.
func (r *Result) Clean() bool {
	return len(r.Violations) == 0
}

// sortViolations orders violations by (file path, line, column) ascending.
// The order is total and independent of discovery or worker scheduling.
func sortViolations(violations []Violation) {
	sort.Slice(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]

		if a.File != b.File {
			return a.File < b.File
		}

		if a.Line != b.Line {
			return a.Line < b.Line
		}

		return a.Col < b.Col
	})
}
