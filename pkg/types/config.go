package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "citeseek/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// LookupConfig holds settings for identifier resolution.
//
// Precedence for every setting, highest first: explicit per-call option,
// the LookupConfig value, the on-disk config file merged by the CLI, the
// built-in default. The merge itself happens in cmd/citeseek; library code
// only ever sees the final struct.
type LookupConfig struct {
	HTTPConfig `yaml:",inline"`

	// Format selects the DOI content negotiation format (default "bibtex").
	// Only "bibtex" and "bibentry" results are parsed into records.
	Format string `json:"format" yaml:"format"`

	// Style is the citation style used when Format is "text" (default "apa").
	Style string `json:"style" yaml:"style"`

	// ArxivToDOI resolves arXiv identifiers through their registered
	// DOI (10.48550/arXiv.<id>) instead of the arXiv Atom feed (default true).
	ArxivToDOI bool `json:"arxiv_to_doi" yaml:"arxiv_to_doi"`

	// Email is sent to NCBI with PubMed ID conversion requests.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// IgnoreFields lists field names dropped from every record
	// (default url, abstract). Case insensitive.
	IgnoreFields []string `json:"ignore_fields" yaml:"ignore_fields"`

	// Ordering is the field priority order for rendered entries
	// (default title, author, journal, booktitle). Case insensitive.
	Ordering []string `json:"ordering" yaml:"ordering"`

	// IgnoreErrors replaces lookup error sentinels with an empty string
	// in batch output (default false).
	IgnoreErrors bool `json:"ignore_errors" yaml:"ignore_errors"`

	// RequestsPerSecond caps the request rate against any single provider
	// (default 5).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`

	// MaxRetries is the number of retry attempts on rate-limited responses
	// (default 2).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// OutputConfig holds settings for rendering and saving entries.
type OutputConfig struct {
	// Align selects the field alignment policy: middle, left, or left-middle.
	Align string `json:"align" yaml:"align"`

	// File is the .bib file lookup results are appended to. Empty means
	// results are only printed.
	File string `json:"file,omitempty" yaml:"file,omitempty"`

	// SkipExisting controls dedup when appending: "false", "true" (label
	// comparison) or "strict" (title/author comparison).
	SkipExisting string `json:"skip_existing" yaml:"skip_existing"`
}

// CacheConfig holds settings for the persistent citation cache.
type CacheConfig struct {
	// Dir is the cache directory (default ~/.cache/citeseek).
	Dir string `json:"dir" yaml:"dir"`

	// Limit is the maximum number of records held in the in-memory store
	// before FIFO eviction (default 1e6). Zero or negative means unbounded.
	Limit int `json:"limit" yaml:"limit"`
}

// Config groups all component configurations for the CLI.
type Config struct {
	Lookup LookupConfig `json:"lookup" yaml:"lookup"`
	Output OutputConfig `json:"output" yaml:"output"`
	Cache  CacheConfig  `json:"cache" yaml:"cache"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Lookup: LookupConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   6 * time.Second,
				UserAgent: "citeseek/0.1",
			},
			Format:            "bibtex",
			Style:             "apa",
			ArxivToDOI:        true,
			IgnoreFields:      []string{"url", "abstract"},
			Ordering:          []string{"title", "author", "journal", "booktitle"},
			RequestsPerSecond: 5,
			MaxRetries:        2,
		},
		Output: OutputConfig{
			Align:        "middle",
			SkipExisting: "true",
		},
		Cache: CacheConfig{
			Limit: 1_000_000,
		},
	}
}
