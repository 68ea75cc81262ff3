// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/citeseek/internal/bib"
)

// header is the parsed "@<entry_type>{<label>" opening of an entry.
type header struct {
	EntryType string
	Label     string
}

var headerPattern = regexp.MustCompile(`^@(\w+)\{([^,]+)`)

// closerArtifact collapses "} <junk> }" tails left over from whitespace
// normalization into a single closing brace. Braces are excluded from the
// junk class so the "}}}" run of a double-braced value survives.
var closerArtifact = regexp.MustCompile(`\}[^\w{}]+\}`)

// splitEntry cuts a whitespace-normalized entry into its header line and
// (key, value) field tokens.
//
// Provider text cannot be split on newlines: a single field value may wrap
// across lines, and after whitespace normalization there are no newlines
// left at all. Instead the tokenizer scans for "," followed by a registered
// field name and "=", and cuts there. A "key = value" candidate whose key is
// not a registered field is folded into the previous field's value with a
// separating space (the continuation rule).
func splitEntry(text string) (header, []bib.Field, error) {
	text = strings.Join(strings.Fields(text), " ")

	cuts := fieldBoundaries(text)
	segments := make([]string, 0, len(cuts)+1)
	prev := 0
	for _, c := range cuts {
		segments = append(segments, text[prev:c])
		prev = c
	}
	segments = append(segments, text[prev:])

	// When the text does not end with a bare closer the final segment still
	// carries a field; give it a synthetic closer so the loop below can
	// treat the last segment uniformly.
	if len(fieldBoundaries(segments[len(segments)-1])) > 0 {
		segments = append(segments, "}")
	}

	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		seg = strings.Trim(seg, ", ")
		if seg == "" {
			continue
		}
		lines = append(lines, closerArtifact.ReplaceAllString(seg, "}"))
	}
	if len(lines) == 0 {
		return header{}, nil, fmt.Errorf("empty entry")
	}

	m := headerPattern.FindStringSubmatch(lines[0])
	if m == nil {
		return header{}, nil, fmt.Errorf("malformed entry header %q", lines[0])
	}
	hdr := header{EntryType: m[1], Label: strings.TrimSpace(m[2])}

	if len(lines) >= 2 {
		lines = lines[1 : len(lines)-1]
	} else {
		lines = nil
	}

	var fields []bib.Field
	for _, line := range lines {
		key, value, found := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if found && bib.IsRecognizedField(key) {
			fields = append(fields, bib.Field{Name: key, Value: strings.TrimSpace(value)})
			continue
		}
		// Line wrap inside the previous field's value.
		if len(fields) > 0 {
			fields[len(fields)-1].Value += " " + strings.TrimSpace(line)
		}
	}
	return hdr, fields, nil
}

// fieldBoundaries returns the indices of every ", <field> =" occurrence
// whose field name is registered. The scan is byte-wise: field names in the
// constrained dialect are ASCII letters.
func fieldBoundaries(s string) []int {
	lower := strings.ToLower(s)
	var cuts []int
	for i := 0; i < len(lower); i++ {
		if lower[i] != ',' {
			continue
		}
		j := i + 1
		for j < len(lower) && lower[j] == ' ' {
			j++
		}
		start := j
		for j < len(lower) && (lower[j] >= 'a' && lower[j] <= 'z') {
			j++
		}
		if j == start {
			continue
		}
		name := lower[start:j]
		for j < len(lower) && lower[j] == ' ' {
			j++
		}
		if j < len(lower) && lower[j] == '=' && bib.IsRecognizedField(name) {
			cuts = append(cuts, i)
		}
	}
	return cuts
}
