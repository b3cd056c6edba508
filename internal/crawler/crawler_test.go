package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xab-mack/optistats/internal/cache"
	"github.com/xab-mack/optistats/internal/config"
)

func explorer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		q := r.URL.Query()
		assert.Equal(t, "contract", q.Get("module"))
		assert.Equal(t, "getsourcecode", q.Get("action"))
		assert.Equal(t, "secret", q.Get("apikey"))
		switch addr := q.Get("address"); addr {
		case "0xempty":
			fmt.Fprint(w, `{"status":"1","message":"OK","result":[{"SourceCode":"","ContractName":""}]}`)
		case "0xbroken":
			w.WriteHeader(http.StatusBadGateway)
		case "0xjunk":
			fmt.Fprint(w, `<html>`)
		case "0xdenied":
			fmt.Fprint(w, `{"status":"0","message":"NOTOK","result":"Invalid API Key"}`)
		default:
			fmt.Fprintf(w, `{"status":"1","message":"OK","result":[{"SourceCode":"contract C_%s {}","ContractName":"C"}]}`, addr)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, endpoint string) (*Client, *cache.Store) {
	t.Helper()
	store, err := cache.New(filepath.Join(t.TempDir(), "crawl_data"))
	require.NoError(t, err)
	cfg := config.Default().Crawler
	cfg.Endpoint = endpoint
	cfg.RequestsPerSecond = 1000
	return New(cfg, "secret", store), store
}

func TestFetch(t *testing.T) {
	var hits int32
	srv := explorer(t, &hits)
	c, _ := newClient(t, srv.URL)
	ctx := context.Background()

	src, err := c.Fetch(ctx, "0xgood")
	require.NoError(t, err)
	assert.Equal(t, "contract C_0xgood {}", src)

	_, err = c.Fetch(ctx, "0xempty")
	assert.ErrorIs(t, err, ErrNoSource)

	_, err = c.Fetch(ctx, "0xbroken")
	assert.ErrorContains(t, err, "502")

	_, err = c.Fetch(ctx, "0xjunk")
	assert.ErrorContains(t, err, "decode response")

	_, err = c.Fetch(ctx, "0xdenied")
	assert.ErrorContains(t, err, "Invalid API Key")
}

func TestCrawlSkipsFailuresAndCached(t *testing.T) {
	var hits int32
	srv := explorer(t, &hits)
	c, store := newClient(t, srv.URL)
	require.NoError(t, store.Store("0xcached", []byte("old")))

	addrs := []string{"0xskipped", "0xa", "0xempty", "0xbroken", "0xcached", "0xjunk", "0xb", "0xafter"}
	stats, err := c.Crawl(context.Background(), addrs, 1, 7)
	require.NoError(t, err)

	assert.Equal(t, CrawlStats{Requested: 6, Fetched: 2, Cached: 1, Empty: 1, Failed: 2}, stats)
	assert.Equal(t, int32(5), atomic.LoadInt32(&hits))
	assert.True(t, store.Has("0xa"))
	assert.True(t, store.Has("0xb"))
	assert.False(t, store.Has("0xempty"))
	assert.False(t, store.Has("0xskipped"))
	assert.False(t, store.Has("0xafter"))
	b, err := os.ReadFile(store.Path("0xcached"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(b))
}

func TestCrawlRange(t *testing.T) {
	var hits int32
	c, _ := newClient(t, explorer(t, &hits).URL)

	stats, err := c.Crawl(context.Background(), []string{"0xa", "0xb"}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Requested, "end is clamped to the list")

	_, err = c.Crawl(context.Background(), []string{"0xa"}, 2, 1)
	assert.Error(t, err)
}

func TestCrawlStopsOnCancel(t *testing.T) {
	var hits int32
	c, _ := newClient(t, explorer(t, &hits).URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := c.Crawl(ctx, []string{"0xa", "0xb"}, 0, 2)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, stats.Fetched)
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}

func TestLoadAddresses(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "list.json")
	require.NoError(t, os.WriteFile(good, []byte(`["0xa","0xb"]`), 0o644))
	addrs, err := LoadAddresses(good)
	require.NoError(t, err)
	assert.Equal(t, []string{"0xa", "0xb"}, addrs)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"a":1}`), 0o644))
	_, err = LoadAddresses(bad)
	assert.ErrorContains(t, err, "JSON array")
}

func TestCrawlRefetchesEmptyCacheEntry(t *testing.T) {
	var hits int32
	c, store := newClient(t, explorer(t, &hits).URL)
	require.NoError(t, os.WriteFile(store.Path("0xa"), nil, 0o644))

	stats, err := c.Crawl(context.Background(), []string{"0xa"}, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, CrawlStats{Requested: 1, Fetched: 1}, stats)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	b, err := os.ReadFile(store.Path("0xa"))
	require.NoError(t, err)
	assert.Equal(t, "contract C_0xa {}", string(b))
}
