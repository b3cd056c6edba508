// Package crawler downloads verified contract sources from an Etherscan
// compatible explorer API.
package crawler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/xab-mack/optistats/internal/cache"
	"github.com/xab-mack/optistats/internal/config"
)

// ErrNoSource is returned by Fetch when the explorer has no verified source
// for an address.
var ErrNoSource = errors.New("no verified source")

type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	limiter  *rate.Limiter
	store    *cache.Store
	logger   *slog.Logger
}

func New(cfg config.Crawler, apiKey string, store *cache.Store) *Client {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = config.DefaultRequestsPerSecond
	}
	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = config.DefaultTimeoutMs * time.Millisecond
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = config.DefaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
		store:    store,
		logger:   slog.Default(),
	}
}

type sourceResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type sourceEntry struct {
	SourceCode   string `json:"SourceCode"`
	ContractName string `json:"ContractName"`
}

// Fetch returns the verified source of address. It waits on the client's
// rate limiter before sending the request.
func (c *Client) Fetch(ctx context.Context, address string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set("module", "contract")
	q.Set("action", "getsourcecode")
	q.Set("address", address)
	q.Set("apikey", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close() //nolint:errcheck
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("explorer returned %s", resp.Status)
	}

	var sr sourceResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	// On failure the explorer puts the error text in "result" instead of a list.
	if !bytes.HasPrefix(bytes.TrimSpace(sr.Result), []byte("[")) {
		var msg string
		_ = json.Unmarshal(sr.Result, &msg)
		return "", fmt.Errorf("explorer error: %s %s", sr.Message, msg)
	}
	var entries []sourceEntry
	if err := json.Unmarshal(sr.Result, &entries); err != nil {
		return "", fmt.Errorf("decode result: %w", err)
	}
	if len(entries) == 0 || entries[0].SourceCode == "" {
		return "", ErrNoSource
	}
	return entries[0].SourceCode, nil
}

type CrawlStats struct {
	Requested int `json:"requested"`
	Fetched   int `json:"fetched"`
	Cached    int `json:"cached"`
	Empty     int `json:"empty"`
	Failed    int `json:"failed"`
}

// Crawl fetches addresses[start:end] into the store. Addresses already stored
// are skipped. A failed address is logged and counted; only cancellation of
// ctx stops the batch early.
func (c *Client) Crawl(ctx context.Context, addresses []string, start, end int) (CrawlStats, error) {
	if end < 0 || end > len(addresses) {
		end = len(addresses)
	}
	if start < 0 || start > end {
		return CrawlStats{}, fmt.Errorf("invalid range [%d, %d) for %d addresses", start, end, len(addresses))
	}
	stats := CrawlStats{Requested: end - start}
	for i := start; i < end; i++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		addr := addresses[i]
		if c.store.Has(addr) {
			stats.Cached++
			continue
		}
		src, err := c.Fetch(ctx, addr)
		switch {
		case ctx.Err() != nil:
			return stats, ctx.Err()
		case errors.Is(err, ErrNoSource):
			c.logger.Debug("no verified source", "index", i, "address", addr)
			stats.Empty++
			continue
		case err != nil:
			c.logger.Warn("fetch failed", "index", i, "address", addr, "error", err)
			stats.Failed++
			continue
		}
		if err := c.store.Store(addr, []byte(src)); err != nil {
			c.logger.Warn("store failed", "index", i, "address", addr, "error", err)
			stats.Failed++
			continue
		}
		c.logger.Info("fetched source", "index", i, "address", addr, "bytes", len(src))
		stats.Fetched++
	}
	return stats, nil
}

// LoadAddresses reads a JSON array of addresses.
func LoadAddresses(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("crawler: read %s: %w", path, err)
	}
	var out []string
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("crawler: %s must be a JSON array of addresses: %w", path, err)
	}
	return out, nil
}
