// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lookup orchestrates identifier resolution: classify the input,
// fetch the provider payload, normalize it into a record, and keep the
// result in the in-memory store (and, when configured, the persistent
// citation cache). Batches run strictly sequentially in input order; a
// failed item yields its sentinel without aborting the rest.
package lookup

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdiddy/citeseek/internal/bib"
	"github.com/pdiddy/citeseek/internal/classify"
	"github.com/pdiddy/citeseek/internal/fetch"
	"github.com/pdiddy/citeseek/internal/normalize"
	"github.com/pdiddy/citeseek/internal/store"
	"github.com/pdiddy/citeseek/pkg/types"
)

// Cache is the persistent citation cache the lookuper writes through to.
// Implemented by the cache package; nil disables persistence.
type Cache interface {
	Get(identifier string) (entry string, ok bool, err error)
	Put(identifier, entry string) error
}

// Lookuper resolves identifiers to records. It is single-threaded by
// design; wrap Store mutation in a mutex before sharing one across
// goroutines.
type Lookuper struct {
	cfg    types.LookupConfig
	out    types.OutputConfig
	client *fetch.Client
	store  *store.Store
	cache  Cache
}

// New builds a lookuper. Like the transport, a format other than bibtex or
// bibentry forces arXiv-via-DOI resolution, since only doi.org serves the
// other formats.
func New(cfg types.LookupConfig, out types.OutputConfig, limit int, cache Cache) (*Lookuper, error) {
	if cfg.Format == "" {
		cfg.Format = "bibtex"
	}
	cfg.Format = strings.ToLower(cfg.Format)
	if _, err := classify.AcceptHeader(cfg.Format, cfg.Style); err != nil {
		return nil, err
	}
	if _, err := bib.ParseAlignment(out.Align); err != nil {
		return nil, err
	}
	if !isBibFormat(cfg.Format) && !cfg.ArxivToDOI {
		fmt.Fprintf(os.Stderr, "warning: format %q requires arXiv-via-DOI resolution; enabling it\n", cfg.Format)
		cfg.ArxivToDOI = true
	}

	return &Lookuper{
		cfg:    cfg,
		out:    out,
		client: fetch.NewClient(cfg),
		store:  store.New(limit),
		cache:  cache,
	}, nil
}

// Store exposes the in-memory record store.
func (l *Lookuper) Store() *store.Store { return l.store }

// Overrides are per-call settings taking precedence over the configured
// defaults. Zero values defer to the configuration.
type Overrides struct {
	// Label replaces the provider-supplied citation key.
	Label string
	// Format overrides the DOI output format.
	Format string
	// Style overrides the text citation style.
	Style string
}

// One resolves a single identifier and returns the rendered entry (for
// bibtex formats), the plain-text citation (text format), the raw provider
// body (other formats), or a lookup sentinel. Configuration misuse (an
// unknown format) is returned as an error; lookup failures never are.
func (l *Lookuper) One(ctx context.Context, identifier string, ov Overrides) (string, error) {
	format := l.cfg.Format
	if ov.Format != "" {
		format = strings.ToLower(ov.Format)
	}
	style := l.cfg.Style
	if ov.Style != "" {
		style = ov.Style
	}
	if _, err := classify.AcceptHeader(format, style); err != nil {
		return "", err
	}

	if isBibFormat(format) && l.cache != nil && ov.Label == "" {
		if entry, ok, err := l.cache.Get(identifier); err == nil && ok {
			if rec, err := l.normalizeText(identifier, entry, ov.Label); err == nil {
				l.store.Put(rec)
				return rec.String(), nil
			}
		}
	}

	res, err := classify.Resolve(identifier, classify.Options{
		Format:     format,
		Style:      style,
		ArxivToDOI: l.cfg.ArxivToDOI,
	})
	if err != nil {
		return "", err
	}
	if res.Category == classify.CategoryUnknown {
		fmt.Fprintf(os.Stderr, "warning: unrecognized identifier %q (none of doi, pmid, pmcid, arxiv)\n", identifier)
		return l.sentinel(fetch.NotFound), nil
	}
	if res.Category != classify.CategoryDOI && !isBibFormat(format) {
		fmt.Fprintf(os.Stderr, "warning: format %q is not supported for %s, thus ignored\n", format, res.Category)
	}

	payload := l.client.Fetch(ctx, res)
	if s := payload.Err(); s != "" {
		return l.sentinel(s), nil
	}

	if isBibFormat(format) {
		rec, err := l.normalizePayload(identifier, payload, ov.Label)
		if err != nil {
			// Malformed provider output is a per-entry failure, not
			// a batch abort.
			return l.sentinel(fetch.NotFound), nil
		}
		l.store.Put(rec)
		rendered := rec.String()
		if l.cache != nil {
			if err := l.cache.Put(identifier, rendered); err != nil {
				fmt.Fprintf(os.Stderr, "warning: citation cache write failed: %v\n", err)
			}
		}
		return rendered, nil
	}

	if format == "text" {
		return strings.TrimSpace(normalize.StripHTML(payload.Text)), nil
	}
	return payload.Text, nil
}

// BatchResult holds the outcome of a batch lookup run.
type BatchResult struct {
	Resolved int
	Failed   int
	Results  []string
}

// Total returns the number of identifiers processed.
func (r BatchResult) Total() int { return r.Resolved + r.Failed }

// HasFailures reports whether any identifier failed to resolve.
func (r BatchResult) HasFailures() bool { return r.Failed > 0 }

// Batch resolves identifiers strictly sequentially, preserving input order
// in Results. labels, when non-nil, must be the same length as identifiers
// and supplies a per-item label override. Per-item status lines go to w.
func (l *Lookuper) Batch(ctx context.Context, identifiers, labels []string, w io.Writer) (BatchResult, error) {
	if labels != nil && len(labels) != len(identifiers) {
		return BatchResult{}, fmt.Errorf("got %d labels for %d identifiers", len(labels), len(identifiers))
	}

	var result BatchResult
	for i, id := range identifiers {
		var ov Overrides
		if labels != nil {
			ov.Label = labels[i]
		}
		res, err := l.One(ctx, id, ov)
		if err != nil {
			return result, err
		}
		result.Results = append(result.Results, res)
		if fetch.IsLookupError(res) {
			fmt.Fprintf(w, "failed:   %s (%s)\n", id, res)
			result.Failed++
			continue
		}
		if res == "" {
			// Sentinel suppressed by ignore-errors mode.
			result.Failed++
			continue
		}
		fmt.Fprintf(w, "resolved: %s\n", id)
		result.Resolved++
	}
	fmt.Fprintf(w, "\nBatch summary: %d resolved, %d failed (total: %d)\n",
		result.Resolved, result.Failed, result.Total())
	return result, nil
}

// Save appends the stored records to a .bib file using the configured
// skip-existing mode and removes the written records from the store.
func (l *Lookuper) Save(path string) (int, error) {
	if path == "" {
		path = l.out.File
	}
	if path == "" {
		return 0, fmt.Errorf("no output file specified")
	}
	mode, err := store.ParseSkipMode(l.out.SkipExisting)
	if err != nil {
		return 0, err
	}
	written, err := store.WriteFile(path, l.store.All(), mode)
	if err != nil {
		return 0, err
	}
	for _, rec := range written {
		l.store.Pop(rec.Identifier())
	}
	return len(written), nil
}

// isBibFormat reports whether a format produces parseable BibTeX.
func isBibFormat(format string) bool {
	return format == "bibtex" || format == "bibentry"
}

// sentinel applies ignore-errors mode to a lookup sentinel.
func (l *Lookuper) sentinel(s string) string {
	if l.cfg.IgnoreErrors {
		return ""
	}
	return s
}

func (l *Lookuper) normalizeText(identifier, text, label string) (*bib.Record, error) {
	return normalize.ParseText(identifier, text, l.normalizeOptions(label))
}

func (l *Lookuper) normalizePayload(identifier string, payload fetch.Payload, label string) (*bib.Record, error) {
	if payload.Pairs != nil {
		return normalize.FromPairs(identifier, payload.Pairs, l.normalizeOptions(label))
	}
	return l.normalizeText(identifier, payload.Text, label)
}

func (l *Lookuper) normalizeOptions(label string) normalize.Options {
	return normalize.Options{
		Label:        label,
		IgnoreFields: l.cfg.IgnoreFields,
		Ordering:     l.cfg.Ordering,
		Align:        l.out.Align,
	}
}
