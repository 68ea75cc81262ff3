// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch performs the provider round-trips for classified
// identifiers: doi.org content negotiation, the NCBI ID converter, and the
// arXiv Atom feed. Transport failures never surface as errors; each handler
// returns one of the three lookup sentinels instead, so batch callers
// degrade entry by entry.
package fetch

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/citeseek/internal/classify"
	"github.com/pdiddy/citeseek/internal/httputil"
	"github.com/pdiddy/citeseek/internal/normalize"
	"github.com/pdiddy/citeseek/pkg/types"
)

// Lookup error sentinels. These are values, not error types: they flow
// through the same string channel as successful payloads.
const (
	NotFound     = "Not Found"
	NetworkError = "Network Error"
	TimeoutError = "Timeout Error"
)

// IsLookupError reports whether a payload string is one of the sentinels.
func IsLookupError(s string) bool {
	return s == NotFound || s == NetworkError || s == TimeoutError
}

// networkErrorPhrases are HTTP reason phrases providers return as response
// bodies; their presence marks a transport-level failure.
var networkErrorPhrases = []string{
	"Bad Request",
	"Unauthorized",
	"Forbidden",
	"Internal Server Error",
	"Bad Gateway",
	"Service Unavailable",
	"Gateway Timeout",
}

// Payload is the outcome of one provider fetch. Exactly one of Text and
// Pairs is meaningful: DOI lookups return raw text (or a sentinel), the
// arXiv feed path returns structured pairs.
type Payload struct {
	Text  string
	Pairs []normalize.Pair
}

// Err returns the sentinel carried by the payload, or "".
func (p Payload) Err() string {
	if IsLookupError(p.Text) {
		return p.Text
	}
	return ""
}

// Client is the provider HTTP client. A rate limiter keeps request bursts
// polite across all providers.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	cfg     types.LookupConfig
}

// NewClient builds a provider client from the lookup configuration.
func NewClient(cfg types.LookupConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 6 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		cfg:     cfg,
	}
}

// Fetch dispatches a classified identifier to its category handler. An
// unknown category (including CNKI-style DOIs that never serve
// bibliography exports) resolves to the Not Found sentinel.
func (c *Client) Fetch(ctx context.Context, res classify.Resolution) Payload {
	if res.Category == classify.CategoryDOI && classify.IsExceptionalDOI(res.ID) {
		return Payload{Text: NotFound}
	}
	switch res.Category {
	case classify.CategoryDOI:
		return Payload{Text: c.fetchDOI(ctx, res.Request)}
	case classify.CategoryPubMed:
		return Payload{Text: c.fetchPubMed(ctx, res)}
	case classify.CategoryArxiv:
		return c.fetchArxiv(ctx, res)
	default:
		return Payload{Text: NotFound}
	}
}

// fetchDOI performs the doi.org content-negotiation request and returns
// the decoded body or a sentinel.
func (c *Client) fetchDOI(ctx context.Context, req classify.Request) string {
	body, errStr := c.get(ctx, req.URL, req.Accept)
	if errStr != "" {
		return errStr
	}
	if strings.Contains(body, "DOI Not Found") {
		return NotFound
	}
	for _, phrase := range networkErrorPhrases {
		if strings.Contains(body, phrase) {
			return NetworkError
		}
	}
	return body
}

// idconvResponse is the NCBI ID converter JSON shape.
type idconvResponse struct {
	Records []struct {
		DOI    string `json:"doi"`
		PMID   string `json:"pmid"`
		PMCID  string `json:"pmcid"`
		Status string `json:"status"`
	} `json:"records"`
}

// fetchPubMed converts a PubMed/PMC identifier to its DOI via the NCBI
// converter, then resolves that DOI. This is the one two-hop category.
func (c *Client) fetchPubMed(ctx context.Context, res classify.Resolution) string {
	url := res.Request.URL
	if c.cfg.Email != "" {
		url += "&tool=citeseek&email=" + c.cfg.Email
	}
	body, errStr := c.get(ctx, url, "")
	if errStr != "" {
		return errStr
	}

	var conv idconvResponse
	if err := json.Unmarshal([]byte(body), &conv); err != nil {
		return NetworkError
	}
	if len(conv.Records) == 0 || conv.Records[0].DOI == "" {
		return NotFound
	}

	// The second hop inherits the negotiation the caller resolved,
	// which may override the configured format per call.
	doiRes, err := classify.Resolve(conv.Records[0].DOI, classify.Options{
		Format: res.Format,
		Style:  res.Style,
	})
	if err != nil || doiRes.Category != classify.CategoryDOI {
		return NotFound
	}
	return c.fetchDOI(ctx, doiRes.Request)
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// fetchArxiv queries the arXiv Atom feed and maps the first entry into
// structured pairs. The journal field keeps the versioned identifier for
// display; the synthesized DOI drops the version suffix.
func (c *Client) fetchArxiv(ctx context.Context, res classify.Resolution) Payload {
	body, errStr := c.get(ctx, res.Request.URL, "")
	if errStr != "" {
		return Payload{Text: errStr}
	}

	var feed arxivFeed
	if err := xml.Unmarshal([]byte(body), &feed); err != nil {
		return Payload{Text: NetworkError}
	}
	if len(feed.Entries) == 0 {
		return Payload{Text: NotFound}
	}

	entry := feed.Entries[0]
	title := strings.Join(strings.Fields(entry.Title), " ")
	if title == "" || title == "Error" {
		return Payload{Text: NotFound}
	}

	// The entry id has the form http://arxiv.org/abs/<id><vN>.
	arxivID := entry.ID
	if i := strings.LastIndex(arxivID, "arxiv.org/abs/"); i >= 0 {
		arxivID = arxivID[i+len("arxiv.org/abs/"):]
	}

	year, month := 0, 0
	if t, err := time.Parse(time.RFC3339, entry.Published); err == nil {
		year, month = t.Year(), int(t.Month())
	}

	names := make([]string, 0, len(entry.Authors))
	for _, a := range entry.Authors {
		names = append(names, strings.TrimSpace(a.Name))
	}

	// arXiv lists surnames last in full names.
	surname := ""
	if len(names) > 0 {
		parts := strings.Fields(names[0])
		surname = strings.ToLower(parts[len(parts)-1])
	}

	return Payload{Pairs: []normalize.Pair{
		{Key: "title", Value: title},
		{Key: "author", Value: strings.Join(names, " and ")},
		{Key: "year", Value: year},
		{Key: "month", Value: month},
		{Key: "journal", Value: "arXiv preprint arXiv:" + arxivID},
		{Key: "label", Value: fmt.Sprintf("%s%d_%s", surname, year, arxivID)},
		{Key: "entry_type", Value: "article"},
		{Key: "doi", Value: "10.48550/arXiv." + res.ID},
	}}
}

// get performs one rate-limited, retrying GET and returns the body, or a
// sentinel in the second return.
func (c *Client) get(ctx context.Context, url, accept string) (body, sentinel string) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", sentinelFor(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", NetworkError
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxRetries)
	if err != nil {
		return "", sentinelFor(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", sentinelFor(err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return "", NotFound
	}
	if resp.StatusCode != http.StatusOK {
		return "", NetworkError
	}
	return string(data), ""
}

// sentinelFor maps a transport error to its sentinel: timeouts (client
// timeout or context deadline) become Timeout Error, everything else
// Network Error.
func sentinelFor(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return TimeoutError
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return TimeoutError
	}
	return NetworkError
}
