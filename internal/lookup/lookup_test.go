// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lookup

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citeseek/internal/classify"
	"github.com/pdiddy/citeseek/internal/fetch"
	"github.com/pdiddy/citeseek/pkg/types"
)

const sampleBibtex = `@article{Wen_2017, title={An Open-Source Toolkit}, ` +
	`author={Wen, Hao}, journal={Frontiers}, year={2017}}`

// mapCache is an in-memory Cache for tests.
type mapCache struct {
	entries map[string]string
}

func newMapCache() *mapCache { return &mapCache{entries: map[string]string{}} }

func (m *mapCache) Get(identifier string) (string, bool, error) {
	entry, ok := m.entries[identifier]
	return entry, ok, nil
}

func (m *mapCache) Put(identifier, entry string) error {
	m.entries[identifier] = entry
	return nil
}

func withDOIBase(t *testing.T, base string) {
	t.Helper()
	orig := classify.DOIBase
	t.Cleanup(func() { classify.DOIBase = orig })
	classify.DOIBase = base
}

func testConfig() (types.LookupConfig, types.OutputConfig) {
	return types.LookupConfig{
		HTTPConfig:        types.HTTPConfig{Timeout: 2 * time.Second},
		Format:            "bibtex",
		IgnoreFields:      []string{"url", "abstract"},
		RequestsPerSecond: 1000,
	}, types.OutputConfig{Align: "middle", SkipExisting: "true"}
}

func TestLookupOne(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleBibtex)
	}))
	defer srv.Close()
	withDOIBase(t, srv.URL+"/")

	cfg, out := testConfig()
	lk, err := New(cfg, out, 0, nil)
	require.NoError(t, err)

	entry, err := lk.One(context.Background(), "10.1109/cvpr.2016.90", Overrides{})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(entry, "@article{Wen_2017,"), "entry = %s", entry)
	assert.Contains(t, entry, "title = {An Open-Source Toolkit}")

	// The record is kept in the in-memory store under its identifier.
	rec, ok := lk.Store().Get("10.1109/cvpr.2016.90")
	require.True(t, ok)
	assert.Equal(t, "Wen_2017", rec.Label())
}

func TestLookupOneLabelOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleBibtex)
	}))
	defer srv.Close()
	withDOIBase(t, srv.URL+"/")

	cfg, out := testConfig()
	lk, err := New(cfg, out, 0, nil)
	require.NoError(t, err)

	entry, err := lk.One(context.Background(), "10.1109/cvpr.2016.90", Overrides{Label: "wen2017toolkit"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(entry, "@article{wen2017toolkit,"))
}

func TestLookupOneUnknownIdentifier(t *testing.T) {
	cfg, out := testConfig()
	lk, err := New(cfg, out, 0, nil)
	require.NoError(t, err)

	entry, err := lk.One(context.Background(), "not an identifier", Overrides{})
	require.NoError(t, err)
	assert.Equal(t, fetch.NotFound, entry)
}

func TestLookupOneIgnoreErrors(t *testing.T) {
	cfg, out := testConfig()
	cfg.IgnoreErrors = true
	lk, err := New(cfg, out, 0, nil)
	require.NoError(t, err)

	entry, err := lk.One(context.Background(), "not an identifier", Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "", entry)
}

func TestLookupOneBadFormat(t *testing.T) {
	cfg, out := testConfig()
	cfg.Format = "pdf"
	_, err := New(cfg, out, 0, nil)
	assert.Error(t, err, "unsupported format is a construction error")
}

func TestLookupOneTextFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept"), "text/x-bibliography")
		fmt.Fprint(w, "Wen, H. (2017). <i>An Open-Source Toolkit</i>. Frontiers.\n")
	}))
	defer srv.Close()
	withDOIBase(t, srv.URL+"/")

	cfg, out := testConfig()
	cfg.Format = "text"
	cfg.Style = "apa"
	cfg.ArxivToDOI = true
	lk, err := New(cfg, out, 0, nil)
	require.NoError(t, err)

	citation, err := lk.One(context.Background(), "10.1109/cvpr.2016.90", Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "Wen, H. (2017). An Open-Source Toolkit. Frontiers.", citation)
}

func TestLookupCacheWriteThroughAndHit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, sampleBibtex)
	}))
	defer srv.Close()
	withDOIBase(t, srv.URL+"/")

	cache := newMapCache()
	cfg, out := testConfig()

	lk, err := New(cfg, out, 0, cache)
	require.NoError(t, err)
	first, err := lk.One(context.Background(), "10.1109/cvpr.2016.90", Overrides{})
	require.NoError(t, err)
	require.Equal(t, int32(1), calls.Load())

	// A fresh lookuper sharing the cache never hits the network.
	lk2, err := New(cfg, out, 0, cache)
	require.NoError(t, err)
	second, err := lk2.One(context.Background(), "10.1109/cvpr.2016.90", Overrides{})
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load(), "second lookup should be served from cache")
	assert.Equal(t, first, second)
}

func TestLookupBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleBibtex)
	}))
	defer srv.Close()
	withDOIBase(t, srv.URL+"/")

	cfg, out := testConfig()
	lk, err := New(cfg, out, 0, nil)
	require.NoError(t, err)

	var log strings.Builder
	result, err := lk.Batch(context.Background(),
		[]string{"10.1109/cvpr.2016.90", "garbage input"}, nil, &log)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Resolved)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 2, result.Total())
	assert.True(t, result.HasFailures())

	// Results preserve input order.
	require.Len(t, result.Results, 2)
	assert.Contains(t, result.Results[0], "@article{Wen_2017,")
	assert.Equal(t, fetch.NotFound, result.Results[1])

	assert.Contains(t, log.String(), "resolved: 10.1109/cvpr.2016.90")
	assert.Contains(t, log.String(), "failed:   garbage input (Not Found)")
	assert.Contains(t, log.String(), "Batch summary: 1 resolved, 1 failed (total: 2)")
}

func TestLookupBatchLabelCountMismatch(t *testing.T) {
	cfg, out := testConfig()
	lk, err := New(cfg, out, 0, nil)
	require.NoError(t, err)

	_, err = lk.Batch(context.Background(), []string{"a", "b"}, []string{"only-one"}, os.Stderr)
	assert.Error(t, err)
}

func TestLookupSave(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleBibtex)
	}))
	defer srv.Close()
	withDOIBase(t, srv.URL+"/")

	outFile := filepath.Join(t.TempDir(), "refs.bib")
	cfg, out := testConfig()
	out.File = outFile

	lk, err := New(cfg, out, 0, nil)
	require.NoError(t, err)
	_, err = lk.One(context.Background(), "10.1109/cvpr.2016.90", Overrides{})
	require.NoError(t, err)

	written, err := lk.Save("")
	require.NoError(t, err)
	assert.Equal(t, 1, written)
	assert.Equal(t, 0, lk.Store().Len(), "saved records leave the store")

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "@article{Wen_2017,")

	// Saving again with nothing in the store writes nothing.
	written, err = lk.Save("")
	require.NoError(t, err)
	assert.Equal(t, 0, written)
}
