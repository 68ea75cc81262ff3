// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize converts raw provider payloads — BibTeX-dialect free
// text or structured key/value pairs — into validated bib.Records. It owns
// all field cleanup: brace/quote unwrapping, HTML stripping, escaping,
// month conversion, field ordering, and optional title casing.
package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/citeseek/internal/bib"
)

// Options control normalization of a single entry.
type Options struct {
	// Label overrides the label parsed from the payload header.
	Label string
	// IgnoreFields are dropped from the record (case insensitive).
	IgnoreFields []string
	// Ordering is the field priority order; fields not listed keep their
	// arrival order after the listed ones. Defaults to title, author,
	// journal, booktitle.
	Ordering []string
	// Align is the rendering alignment name (default middle).
	Align string
	// TitleCase rewrites the title field with headline capitalization.
	TitleCase bool
	// StrictFields overrides the record's strict-equality field set.
	StrictFields []string
}

// DefaultOrdering is the field priority order applied when Options.Ordering
// is empty.
var DefaultOrdering = []string{"title", "author", "journal", "booktitle"}

// monthNumbers maps three-letter month abbreviations to their 1-12 value.
var monthNumbers = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// Pair is one ordered key/value of a structured provider payload. The value
// may be a string or a number; it is stringified during normalization.
type Pair struct {
	Key   string
	Value any
}

// ParseText normalizes a free-text bibliography entry into a record. The
// text must open with a "@<entry_type>{<label>" header; a malformed header
// is a fatal parse error for this entry only. identifier may be empty, in
// which case the header label is used.
func ParseText(identifier, text string, opts Options) (*bib.Record, error) {
	hdr, fields, err := splitEntry(text)
	if err != nil {
		return nil, err
	}
	return build(identifier, hdr, fields, opts)
}

// FromPairs normalizes a structured payload into a record. The keys
// "entry_type" and "label" form the header; every other pair becomes a
// field in arrival order.
func FromPairs(identifier string, pairs []Pair, opts Options) (*bib.Record, error) {
	var hdr header
	var fields []bib.Field
	for _, p := range pairs {
		value := strings.Trim(fmt.Sprint(p.Value), ", ")
		switch strings.TrimSpace(p.Key) {
		case "entry_type":
			hdr.EntryType = value
		case "label":
			hdr.Label = value
		default:
			fields = append(fields, bib.Field{Name: strings.TrimSpace(p.Key), Value: value})
		}
	}
	if hdr.EntryType == "" {
		return nil, fmt.Errorf("payload has no entry_type")
	}
	return build(identifier, hdr, fields, opts)
}

// build applies the common post-processing pipeline and constructs the
// record. Step order is load-bearing: escaping happens after unwrapping and
// HTML stripping, reordering last.
func build(identifier string, hdr header, rawFields []bib.Field, opts Options) (*bib.Record, error) {
	align, err := bib.ParseAlignment(opts.Align)
	if err != nil {
		return nil, err
	}

	label := hdr.Label
	if opts.Label != "" {
		label = opts.Label
	}

	ignore := make(map[string]bool, len(opts.IgnoreFields))
	for _, f := range opts.IgnoreFields {
		ignore[strings.ToLower(f)] = true
	}

	fields := make([]bib.Field, 0, len(rawFields))
	for _, f := range rawFields {
		name := strings.ToLower(strings.TrimSpace(f.Name))
		if ignore[name] {
			continue
		}
		value := strings.Trim(f.Value, ", ")
		if name == "title" {
			value = escapeOnce(value, "_")
		}

		value, doubleBraced := unwrapValue(value)
		value = StripHTML(value)
		value = escapeOnce(value, "&")

		if name == "month" {
			if n, ok := monthNumbers[strings.ToLower(value)]; ok {
				value = strconv.Itoa(n)
			}
		}
		fields = append(fields, bib.Field{Name: name, Value: value, DoubleBraced: doubleBraced})
	}

	fields = reorder(fields, opts.Ordering)

	if opts.TitleCase {
		for i, f := range fields {
			if f.Name == "title" {
				fields[i].Value = TitleCase(f.Value)
			}
		}
	}

	recordOpts := []bib.Option{bib.WithAlign(align)}
	if len(opts.StrictFields) > 0 {
		recordOpts = append(recordOpts, bib.WithStrictFields(opts.StrictFields))
	}
	return bib.NewRecord(identifier, hdr.EntryType, label, fields, recordOpts...)
}

// escapeOnce escapes every occurrence of ch with a backslash, idempotently:
// already-escaped occurrences are not escaped again.
func escapeOnce(s, ch string) string {
	s = strings.ReplaceAll(s, ch, `\`+ch)
	return strings.ReplaceAll(s, `\\`+ch, `\`+ch)
}

// unwrapValue strips redundant grouping from a raw field value: first a
// trailing unmatched closing brace (a provider quirk, e.g. "month=jun }"),
// then one pair of surrounding double or single quotes, or every layer of
// braces that wraps the entire value. Values originally wrapped in two or
// more brace layers report doubleBraced so rendering can restore the extra
// layer.
//
// "Wraps the entire value" is decided by removing balanced nested brace
// groups and checking what remains. This is a best-effort heuristic; values
// with unbalanced braces may not unwrap cleanly.
func unwrapValue(v string) (value string, doubleBraced bool) {
	v = strings.TrimSpace(v)
	if strings.HasSuffix(v, "}") && !strings.HasPrefix(v, "{") {
		v = strings.TrimSpace(strings.TrimSuffix(v, "}"))
	}

	if len(v) >= 2 {
		if (strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`)) ||
			(strings.HasPrefix(v, "'") && strings.HasSuffix(v, "'")) {
			return v[1 : len(v)-1], false
		}
	}

	layers := 0
	for braceWrapped(v) {
		v = strings.TrimSpace(v[1 : len(v)-1])
		layers++
	}
	return v, layers >= 2
}

// braceWrapped reports whether a single brace pair wraps the whole value.
// Balanced nested groups are removed first so interior groups ("2016 {IEEE}
// Conference ({CVPR})") do not count as wrapping.
func braceWrapped(v string) bool {
	if len(v) < 2 || !strings.HasPrefix(v, "{") || !strings.HasSuffix(v, "}") {
		return false
	}
	inner := v[1 : len(v)-1]
	stripped := removeBalancedGroups(inner)
	return !strings.ContainsAny(stripped, "{}")
}

// removeBalancedGroups deletes innermost balanced {...} groups until none
// remain.
func removeBalancedGroups(s string) string {
	for {
		start := -1
		removed := false
		for i := 0; i < len(s); i++ {
			switch s[i] {
			case '{':
				start = i
			case '}':
				if start >= 0 {
					s = s[:start] + s[i+1:]
					removed = true
				}
			}
			if removed {
				break
			}
		}
		if !removed {
			return s
		}
	}
}

// reorder sorts fields by the priority list: listed fields first in list
// order, the rest in arrival order.
func reorder(fields []bib.Field, ordering []string) []bib.Field {
	if len(ordering) == 0 {
		ordering = DefaultOrdering
	}
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		index[f.Name] = i
	}

	out := make([]bib.Field, 0, len(fields))
	taken := make(map[string]bool, len(fields))
	for _, name := range ordering {
		name = strings.ToLower(name)
		if i, ok := index[name]; ok && !taken[name] {
			out = append(out, fields[i])
			taken[name] = true
		}
	}
	for _, f := range fields {
		if !taken[f.Name] {
			out = append(out, f)
		}
	}
	return out
}

// StripHTML removes markup tags and decodes HTML entities, returning plain
// text. Provider payloads (notably the text bibliography format and
// CrossRef abstracts) embed both.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return doc.Text()
}
