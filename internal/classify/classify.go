// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify categorizes bibliographic identifiers (DOI, PubMed ID,
// arXiv ID, and their URL variants) and builds the provider request each
// category needs. Classification is pure string matching; no network calls
// happen here.
package classify

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Category is the identifier class an input string resolves to.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryDOI
	CategoryPubMed
	CategoryArxiv
)

func (c Category) String() string {
	switch c {
	case CategoryDOI:
		return "doi"
	case CategoryPubMed:
		return "pubmed"
	case CategoryArxiv:
		return "arxiv"
	default:
		return "unknown"
	}
}

// Base URLs for the provider endpoints. Declared as vars so tests can
// substitute httptest servers.
var (
	DOIBase    = "https://doi.org/"
	PubMedBase = "https://www.ncbi.nlm.nih.gov/pmc/utils/idconv/v1.0/?format=json&ids="
	ArxivBase  = "https://export.arxiv.org/api/query?id_list="
)

// Identifier patterns. Inputs are trimmed and lower-cased before matching,
// so the patterns only spell lowercase forms.
var (
	doiPrefix  = regexp.MustCompile(`doi\s*:\s*|(?:https?://)?(?:dx\.)?doi\.org/`)
	doiPattern = regexp.MustCompile(`^(?:doi\s*:\s*|(?:https?://)?(?:dx\.)?doi\.org/)?10\..+/.+$`)

	pubmedPrefix  = regexp.MustCompile(`(?:https?://)?(?:pubmed\.ncbi\.nlm\.nih\.gov/|www\.ncbi\.nlm\.nih\.gov/pubmed/)|pmid\s*:\s*|pmcid\s*:\s*`)
	pubmedPattern = regexp.MustCompile(`^(?:(?:https?://)?(?:pubmed\.ncbi\.nlm\.nih\.gov/|www\.ncbi\.nlm\.nih\.gov/pubmed/)|pmid\s*:\s*|pmcid\s*:\s*)?(?:\d+|pmc\d+(?:\.\d+)?)/?$`)

	arxivPrefix  = regexp.MustCompile(`(?:(?:https?://)?arxiv\.org/)?abs/|arxiv\s*:\s*`)
	arxivPattern = regexp.MustCompile(`^(?:(?:(?:https?://)?arxiv\.org/)?abs/|arxiv\s*:\s*)?(?:[\w-]+/\d+|\d+\.\d+(?:v\d+)?)$`)

	arxivVersion = regexp.MustCompile(`v\d+$`)
)

// exceptionalDOIDomains lists DOI registrants that never serve bibliography
// exports (China-DOI/CNKI); lookups against them short-circuit to Not Found.
var exceptionalDOIDomains = []string{"cnki"}

// acceptHeaders maps the DOI content-negotiation format to its MIME type.
var acceptHeaders = map[string]string{
	"rdf-xml":      "application/rdf+xml",
	"turtle":       "text/turtle",
	"text":         "text/x-bibliography",
	"ris":          "application/x-research-info-systems",
	"bibtex":       "application/x-bibtex",
	"crossref-xml": "application/vnd.crossref.unixref+xml",
	"datacite-xml": "application/vnd.datacite.datacite+xml",
	"bibentry":     "application/x-bibtex",
	"crossref-tdm": "application/vnd.crossref.unixsd+xml",
}

// Formats returns the supported DOI output format names, sorted.
func Formats() []string {
	names := make([]string, 0, len(acceptHeaders))
	for n := range acceptHeaders {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// AcceptHeader returns the Accept header value for a DOI lookup in the
// given format. The style parameter is appended only for the "text" format.
func AcceptHeader(format, style string) (string, error) {
	mime, ok := acceptHeaders[strings.ToLower(format)]
	if !ok {
		return "", fmt.Errorf("format must be one of %v, got %q", Formats(), format)
	}
	accept := mime + "; charset=utf-8"
	if strings.EqualFold(format, "text") {
		accept += "; style = " + strings.ToLower(style)
	}
	return accept, nil
}

// Classify determines the identifier category and its normalized form: the
// provider prefix and protocol/host are stripped, and for arXiv the version
// suffix is removed. Matching is case insensitive and the first matching
// category in DOI, PubMed, arXiv priority order wins.
func Classify(identifier string) (Category, string) {
	id := strings.ToLower(strings.TrimSpace(identifier))
	switch {
	case doiPattern.MatchString(id):
		return CategoryDOI, strings.Trim(doiPrefix.ReplaceAllString(id, ""), "/")
	case pubmedPattern.MatchString(id):
		return CategoryPubMed, strings.Trim(pubmedPrefix.ReplaceAllString(id, ""), "/")
	case arxivPattern.MatchString(id):
		stripped := strings.Trim(arxivPrefix.ReplaceAllString(id, ""), "/")
		return CategoryArxiv, arxivVersion.ReplaceAllString(stripped, "")
	default:
		return CategoryUnknown, id
	}
}

// IsExceptionalDOI reports whether a normalized DOI belongs to a registrant
// known to never support bibliography export.
func IsExceptionalDOI(id string) bool {
	for _, domain := range exceptionalDOIDomains {
		if strings.Contains(strings.ToLower(id), domain) {
			return true
		}
	}
	return false
}

// Request holds the category-specific parameters the transport needs for
// one lookup: the target URL and, for DOI, the Accept header carrying the
// negotiated format.
type Request struct {
	URL    string
	Accept string
}

// Options control request building.
type Options struct {
	// Format is the DOI content-negotiation format (default bibtex).
	Format string
	// Style is the citation style for the text format.
	Style string
	// ArxivToDOI resolves arXiv identifiers via their registered DOI
	// (10.48550/arXiv.<id>) instead of the arXiv feed.
	ArxivToDOI bool
}

// Resolution is the classifier output consumed by the transport.
type Resolution struct {
	Category Category
	// ID is the normalized identifier (prefix stripped; arXiv version
	// suffix removed).
	ID      string
	Request Request
	// Format and Style are the negotiated content format, carried so
	// two-hop lookups build their second request with the same
	// negotiation as the first.
	Format string
	Style  string
}

// Resolve classifies an identifier and builds its provider request. When
// opts.ArxivToDOI is set, an arXiv match recurses into DOI classification
// using the synthesized DOI equivalent. An unrecognized identifier returns
// CategoryUnknown with an empty request; callers treat that as a
// recoverable not-found outcome, not an error.
func Resolve(identifier string, opts Options) (Resolution, error) {
	id := strings.ToLower(strings.TrimSpace(identifier))
	format := defaultFormat(opts.Format)
	switch {
	case doiPattern.MatchString(id):
		norm := strings.Trim(doiPrefix.ReplaceAllString(id, ""), "/")
		accept, err := AcceptHeader(format, opts.Style)
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{
			Category: CategoryDOI,
			ID:       norm,
			Request:  Request{URL: DOIBase + norm, Accept: accept},
			Format:   format,
			Style:    opts.Style,
		}, nil

	case pubmedPattern.MatchString(id):
		norm := strings.Trim(pubmedPrefix.ReplaceAllString(id, ""), "/")
		return Resolution{
			Category: CategoryPubMed,
			ID:       norm,
			Request:  Request{URL: PubMedBase + norm},
			Format:   format,
			Style:    opts.Style,
		}, nil

	case arxivPattern.MatchString(id):
		// The feed URL keeps the version suffix; the normalized
		// identifier used for labels and DOI synthesis drops it.
		raw := strings.Trim(arxivPrefix.ReplaceAllString(id, ""), "/")
		norm := arxivVersion.ReplaceAllString(raw, "")
		if opts.ArxivToDOI {
			return Resolve("10.48550/arXiv."+norm, Options{Format: opts.Format, Style: opts.Style})
		}
		return Resolution{
			Category: CategoryArxiv,
			ID:       norm,
			Request:  Request{URL: ArxivBase + raw},
			Format:   format,
			Style:    opts.Style,
		}, nil

	default:
		return Resolution{Category: CategoryUnknown, ID: id}, nil
	}
}

func defaultFormat(format string) string {
	if format == "" {
		return "bibtex"
	}
	return format
}
