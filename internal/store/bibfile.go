// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/citeseek/internal/bib"
	"github.com/pdiddy/citeseek/internal/normalize"
)

// SkipMode controls dedup when appending records to a .bib file.
type SkipMode int

const (
	// SkipNone always appends.
	SkipNone SkipMode = iota
	// SkipLoose skips records whose label matches an existing entry.
	SkipLoose
	// SkipStrict skips records matching an existing entry under strict
	// (title/author) equality.
	SkipStrict
)

// ParseSkipMode parses the "false", "true", "strict" flag syntax.
func ParseSkipMode(s string) (SkipMode, error) {
	switch strings.ToLower(s) {
	case "", "false", "no", "0":
		return SkipNone, nil
	case "true", "yes", "1":
		return SkipLoose, nil
	case "strict":
		return SkipStrict, nil
	default:
		return SkipNone, fmt.Errorf("skip-existing must be false, true or strict, got %q", s)
	}
}

// administrativeTypes are the @-block types that carry no bibliographic
// record and are skipped on read.
var administrativeTypes = []string{"string", "preamble", "comment", "bstctl", "alias"}

func isAdministrative(headerLine string) bool {
	lower := strings.ToLower(headerLine)
	for _, t := range administrativeTypes {
		if strings.HasPrefix(lower, "@"+t) {
			return true
		}
	}
	return false
}

// ParsedFile is the result of reading a .bib file. Line numbers (0-based)
// index the start of each record's block, for error reporting.
type ParsedFile struct {
	Records     []*bib.Record
	LineNumbers []int
}

// ReadFile parses a .bib file into records. Comment lines starting with "%"
// and blank lines are ignored; administrative blocks (@string, @preamble,
// @comment, @bstctl, @alias) are recognized and skipped. Each remaining
// block runs through the free-text normalizer with an empty ignore set so
// fields survive the round trip. A missing file yields an empty result.
func ReadFile(path string, opts normalize.Options) (ParsedFile, error) {
	opts.IgnoreFields = nil

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ParsedFile{}, nil
		}
		return ParsedFile{}, fmt.Errorf("reading %s: %w", path, err)
	}

	var parsed ParsedFile
	var block []string
	blockStart := 0

	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		defer func() { block = nil }()
		if isAdministrative(block[0]) {
			return nil
		}
		rec, err := normalize.ParseText("", strings.Join(block, "\n"), opts)
		if err != nil {
			return fmt.Errorf("%s line %d: %w", path, blockStart+1, err)
		}
		parsed.Records = append(parsed.Records, rec)
		parsed.LineNumbers = append(parsed.LineNumbers, blockStart)
		return nil
	}

	for i, line := range strings.Split(string(data), "\n") {
		// Commas stay on the lines: the tokenizer cuts on the original
		// ", field =" boundaries, and a value wrapped across lines must
		// rejoin without gaining one.
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		if strings.HasPrefix(line, "@") {
			if err := flush(); err != nil {
				return ParsedFile{}, err
			}
			blockStart = i
		}
		block = append(block, line)
	}
	if err := flush(); err != nil {
		return ParsedFile{}, err
	}
	return parsed, nil
}

// WriteFile appends records to a .bib file, creating parent directories as
// needed. Depending on mode, records equal to an entry already in the file
// are skipped. It returns the records actually written.
func WriteFile(path string, records []*bib.Record, mode SkipMode) ([]*bib.Record, error) {
	if filepath.Ext(path) != ".bib" {
		return nil, fmt.Errorf("output file must be a .bib file, got %q", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var existing []*bib.Record
	if mode != SkipNone {
		parsed, err := ReadFile(path, normalize.Options{})
		if err != nil {
			return nil, err
		}
		existing = parsed.Records
	}

	var keep []*bib.Record
	for _, rec := range records {
		if mode != SkipNone && containsEqual(existing, rec, mode == SkipStrict) {
			continue
		}
		keep = append(keep, rec)
	}
	if len(keep) == 0 {
		return nil, nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	for _, rec := range keep {
		if _, err := fmt.Fprintf(f, "%s\n", rec); err != nil {
			return nil, fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return keep, nil
}

func containsEqual(existing []*bib.Record, rec *bib.Record, strict bool) bool {
	for _, e := range existing {
		if rec.Equal(e, strict) {
			return true
		}
	}
	return false
}
