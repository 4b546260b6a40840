// Package feed ingests live market snapshots from the game's market
// API into the normalized store, between full sync cycles.
package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"game-market-tracker/internal/domain"
)

// SnapshotFetcher retrieves the latest market snapshot.
type SnapshotFetcher interface {
	Fetch(ctx context.Context) (*domain.MarketSnapshot, error)
}

// Client fetches snapshots over HTTP.
type Client struct {
	http *resty.Client
	url  string
}

// NewClient creates a snapshot client for the given endpoint URL.
func NewClient(url string, timeout time.Duration) *Client {
	http := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(2 * time.Second)
	return &Client{http: http, url: url}
}

// Compile-time interface check.
var _ SnapshotFetcher = (*Client)(nil)

// Fetch retrieves and decodes the latest snapshot.
func (c *Client) Fetch(ctx context.Context) (*domain.MarketSnapshot, error) {
	var snap domain.MarketSnapshot

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&snap).
		Get(c.url)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("snapshot request failed: %s", resp.Status())
	}
	if snap.Time <= 0 {
		return nil, fmt.Errorf("snapshot missing timestamp")
	}
	return &snap, nil
}
