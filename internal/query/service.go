// Package query is the stateless read surface over the normalized
// market store. Every call recomputes from current facts; the optional
// cache is an optimization with recomputation as its invalidation
// ground truth.
package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"game-market-tracker/internal/domain"
	"game-market-tracker/internal/stats"
	"game-market-tracker/internal/storage"
	"game-market-tracker/internal/trend"
)

// Defaults applied to zero-valued request parameters.
const (
	DefaultBucket      = 24 * time.Hour
	DefaultLongWindow  = 7 * 24 * time.Hour
	DefaultShortWindow = 24 * time.Hour
	DefaultHistoryDays = 7

	defaultCacheTTL = time.Minute
)

// DefaultMAWindows are the moving-average windows served when a trend
// request does not specify its own.
var DefaultMAWindows = []int{5, 10}

// Options configures a Service.
type Options struct {
	// Cache enables result caching for trend and ranking queries.
	Cache Cache

	// CacheTTL defaults to one minute.
	CacheTTL time.Duration

	// Now is a clock hook for tests; defaults to time.Now.
	Now func() time.Time

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Service answers read queries from the presentation layer.
type Service struct {
	items  storage.ItemStore
	prices storage.PriceStore

	cache    Cache
	cacheTTL time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewService creates a query service.
func NewService(items storage.ItemStore, prices storage.PriceStore, opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		items:    items,
		prices:   prices,
		cache:    opts.Cache,
		cacheTTL: ttl,
		now:      now,
		logger:   logger,
	}
}

// ItemSummary is one row of the item listing. CurrentPrice and
// PriceUpdatedAt are nil when the item has no ask observations yet;
// absence is never encoded as zero.
type ItemSummary struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	CurrentPrice   *float64 `json:"current_price"`
	PriceUpdatedAt *int64   `json:"price_updated_at"`
}

// Items lists all registered items with their latest ask price.
func (s *Service) Items(ctx context.Context) ([]ItemSummary, error) {
	items, err := s.items.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list items: %w", ErrInternal, err)
	}

	latest, err := s.prices.LatestPrices(ctx, domain.SideAsk)
	if err != nil {
		return nil, fmt.Errorf("%w: latest prices: %w", ErrInternal, err)
	}

	summaries := make([]ItemSummary, 0, len(items))
	for _, it := range items {
		sum := ItemSummary{ID: it.ID, Name: it.Name}
		if o, ok := latest[it.ID]; ok {
			price := o.Price
			ts := o.Timestamp
			sum.CurrentPrice = &price
			sum.PriceUpdatedAt = &ts
		}
		summaries = append(summaries, sum)
	}
	return summaries, nil
}

// TrendParams selects the market trend computation.
type TrendParams struct {
	// Side selects the bucketing source; defaults to ask.
	Side domain.Side

	// Bucket is the candle duration; defaults to DefaultBucket.
	Bucket time.Duration

	// MAWindows are moving-average window sizes in buckets; defaults
	// to DefaultMAWindows.
	MAWindows []int

	// Days limits history to the last N days; 0 means all history.
	Days int
}

func (p *TrendParams) normalize() error {
	if p.Side == "" {
		p.Side = domain.SideAsk
	}
	if _, err := domain.ParseSide(string(p.Side)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if p.Bucket == 0 {
		p.Bucket = DefaultBucket
	}
	if p.Bucket < time.Second {
		return fmt.Errorf("%w: bucket duration must be at least one second", ErrInvalidParams)
	}
	if len(p.MAWindows) == 0 {
		p.MAWindows = DefaultMAWindows
	}
	for _, w := range p.MAWindows {
		if w <= 0 {
			return fmt.Errorf("%w: moving-average window must be positive, got %d", ErrInvalidParams, w)
		}
	}
	if p.Days < 0 {
		return fmt.Errorf("%w: days must not be negative, got %d", ErrInvalidParams, p.Days)
	}
	return nil
}

// Trend computes OHLC candles with moving averages over the market
// index series. Deterministic for a fixed store and fixed params.
func (s *Service) Trend(ctx context.Context, p TrendParams) ([]domain.Candle, error) {
	if err := p.normalize(); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("trend:%s:%d:%v:%d", p.Side, int64(p.Bucket/time.Second), p.MAWindows, p.Days)
	var cached []domain.Candle
	if s.cacheLookup(ctx, key, &cached) {
		return cached, nil
	}

	until := s.now().Unix()
	from := int64(0)
	if p.Days > 0 {
		from = until - int64(p.Days)*86400
	}

	points, err := s.prices.IndexSeries(ctx, p.Side, from, until)
	if err != nil {
		return nil, fmt.Errorf("%w: index series: %w", ErrInternal, err)
	}

	candles := trend.ApplyMovingAverages(trend.BuildCandles(points, p.Bucket), p.MAWindows)
	s.cacheStore(ctx, key, candles)
	return candles, nil
}

// RankingParams selects the change-ranking windows.
type RankingParams struct {
	// Long defaults to DefaultLongWindow (7 days).
	Long time.Duration

	// Short defaults to DefaultShortWindow (24 hours).
	Short time.Duration
}

func (p *RankingParams) normalize() error {
	if p.Long == 0 {
		p.Long = DefaultLongWindow
	}
	if p.Short == 0 {
		p.Short = DefaultShortWindow
	}
	if p.Long <= 0 || p.Short <= 0 {
		return fmt.Errorf("%w: lookback windows must be positive", ErrInvalidParams)
	}
	return nil
}

// Rankings holds both standard leaderboards.
type Rankings struct {
	Day7 domain.ChangeRanking `json:"day7"`
	Day1 domain.ChangeRanking `json:"day1"`
}

// ChangeRankings computes gainers/losers over the long and short
// lookback windows from ask-side observations. Items lacking data in a
// window are omitted from that window's ranking only.
func (s *Service) ChangeRankings(ctx context.Context, p RankingParams) (*Rankings, error) {
	if err := p.normalize(); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("rankings:%d:%d", int64(p.Long/time.Second), int64(p.Short/time.Second))
	var cached Rankings
	if s.cacheLookup(ctx, key, &cached) {
		return &cached, nil
	}

	now := s.now()
	obs, err := s.prices.ObservationsBySide(ctx, domain.SideAsk, now.Unix())
	if err != nil {
		return nil, fmt.Errorf("%w: load observations: %w", ErrInternal, err)
	}

	items, err := s.items.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list items: %w", ErrInternal, err)
	}
	names := make(map[int64]string, len(items))
	for _, it := range items {
		names[it.ID] = it.Name
	}

	rankings := &Rankings{
		Day7: stats.ComputeChangeRanking(obs, names, p.Long, now),
		Day1: stats.ComputeChangeRanking(obs, names, p.Short, now),
	}
	s.cacheStore(ctx, key, rankings)
	return rankings, nil
}

// ItemHistory is one item's recent observations, both sides.
type ItemHistory struct {
	Item   domain.Item               `json:"item"`
	Prices []domain.PriceObservation `json:"prices"`
}

// PriceHistory returns one item's observations over the last N days.
// days of 0 defaults to DefaultHistoryDays.
func (s *Service) PriceHistory(ctx context.Context, itemID int64, days int) (*ItemHistory, error) {
	if days == 0 {
		days = DefaultHistoryDays
	}
	if days < 0 {
		return nil, fmt.Errorf("%w: days must not be negative, got %d", ErrInvalidParams, days)
	}

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrItemNotFound, itemID)
		}
		return nil, fmt.Errorf("%w: load item: %w", ErrInternal, err)
	}

	until := s.now().Unix()
	from := until - int64(days)*86400

	obs, err := s.prices.ObservationsByItem(ctx, itemID, from, until)
	if err != nil {
		return nil, fmt.Errorf("%w: item observations: %w", ErrInternal, err)
	}

	return &ItemHistory{Item: *item, Prices: obs}, nil
}

// cacheLookup loads a cached result into out. Any failure is a miss.
func (s *Service) cacheLookup(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}
	payload, ok := s.cache.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(payload, out); err != nil {
		s.logger.Warn("discarding undecodable cache entry", "key", key, "error", err)
		return false
	}
	return true
}

// cacheStore saves a result, best effort.
func (s *Service) cacheStore(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("could not encode cache entry", "key", key, "error", err)
		return
	}
	s.cache.Set(ctx, key, payload, s.cacheTTL)
}
