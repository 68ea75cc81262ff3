// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/citeseek/internal/bib"
	"github.com/pdiddy/citeseek/internal/normalize"
)

// CheckFile validates every entry in a .bib file: each must carry the
// required fields of its entry type, and labels must be unique. Problems
// are described on w. It returns the sorted 1-based starting line numbers
// of the offending entries.
func CheckFile(path string, w io.Writer) ([]int, error) {
	if filepath.Ext(path) != ".bib" {
		return nil, fmt.Errorf("not a .bib file: %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	parsed, err := ReadFile(path, normalize.Options{})
	if err != nil {
		return nil, err
	}

	errLines := map[int]bool{}

	for i, rec := range parsed.Records {
		line := parsed.LineNumbers[i] + 1
		if err := rec.CheckRequiredFields(); err != nil {
			var required []string
			for _, spec := range bib.RequiredFields(rec.EntryType()) {
				required = append(required, spec.String())
			}
			fmt.Fprintf(w, "entry %q starting from line %d is not valid: %v\n", rec.Label(), line, err)
			fmt.Fprintf(w, "    entry type %q requires: %s\n", rec.EntryType(), strings.Join(required, ", "))
			errLines[line] = true
		}
	}

	// Duplicate labels invalidate both occurrences.
	for i, ri := range parsed.Records {
		for j := i + 1; j < len(parsed.Records); j++ {
			rj := parsed.Records[j]
			if ri.Label() != rj.Label() {
				continue
			}
			li, lj := parsed.LineNumbers[i]+1, parsed.LineNumbers[j]+1
			fmt.Fprintf(w, "entries %q starting from lines %d and %d are duplicate\n", ri.Label(), li, lj)
			errLines[li] = true
			errLines[lj] = true
		}
	}

	lines := make([]int, 0, len(errLines))
	for line := range errLines {
		lines = append(lines, line)
	}
	sort.Ints(lines)
	return lines, nil
}
