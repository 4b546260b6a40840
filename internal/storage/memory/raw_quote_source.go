package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"game-market-tracker/internal/domain"
	"game-market-tracker/internal/storage"
)

// RawQuoteSource is an in-memory implementation of
// storage.RawQuoteSource: two wide fixture tables whose cells hold raw
// numeric values of mixed storage types, mirroring the production
// store's integer and fractional price columns.
type RawQuoteSource struct {
	mu     sync.RWMutex
	tables map[domain.Side]*wideTable
}

// wideTable is one raw table: a column list plus sparse rows.
type wideTable struct {
	columns []string                 // discovery order
	rows    map[int64]map[string]any // timestamp -> item -> raw cell
}

// NewRawQuoteSource creates an empty in-memory raw store.
func NewRawQuoteSource() *RawQuoteSource {
	return &RawQuoteSource{
		tables: map[domain.Side]*wideTable{
			domain.SideAsk: {rows: make(map[int64]map[string]any)},
			domain.SideBid: {rows: make(map[int64]map[string]any)},
		},
	}
}

// Compile-time interface check.
var _ storage.RawQuoteSource = (*RawQuoteSource)(nil)

// SetCell stores one raw cell, registering the item column on first
// use. value keeps its raw type (int, int64, float64, ...) so scans
// exercise the coercion path.
func (s *RawQuoteSource) SetCell(side domain.Side, ts int64, item string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.tables[side]
	if _, known := s.columnIndex(t, item); !known {
		t.columns = append(t.columns, item)
	}
	row, ok := t.rows[ts]
	if !ok {
		row = make(map[string]any)
		t.rows[ts] = row
	}
	row[item] = value
}

// AddColumn registers an item column without any cells, modeling a raw
// table that gained a column before receiving data.
func (s *RawQuoteSource) AddColumn(side domain.Side, item string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.tables[side]
	if _, known := s.columnIndex(t, item); !known {
		t.columns = append(t.columns, item)
	}
}

func (s *RawQuoteSource) columnIndex(t *wideTable, item string) (int, bool) {
	for i, c := range t.columns {
		if c == item {
			return i, true
		}
	}
	return 0, false
}

// ItemNames returns the distinct column names across both tables,
// sorted ascending.
func (s *RawQuoteSource) ItemNames(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, t := range s.tables {
		for _, c := range t.columns {
			seen[c] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// ScanQuotes streams every present cell of both tables in deterministic
// order: ask before bid, timestamps ascending, columns in discovery
// order. Absent cells are skipped; negative cells are the no-order
// sentinel and skipped likewise.
func (s *RawQuoteSource) ScanQuotes(_ context.Context, fn func(domain.RawQuote) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, side := range []domain.Side{domain.SideAsk, domain.SideBid} {
		t := s.tables[side]

		timestamps := make([]int64, 0, len(t.rows))
		for ts := range t.rows {
			timestamps = append(timestamps, ts)
		}
		sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })

		for _, ts := range timestamps {
			row := t.rows[ts]
			for _, item := range t.columns {
				cell, present := row[item]
				if !present {
					continue
				}
				price, err := coercePrice(cell)
				if err != nil {
					return fmt.Errorf("raw cell (%d, %s, %s): %w", ts, item, side, err)
				}
				if price < 0 {
					continue
				}
				if err := fn(domain.RawQuote{Timestamp: ts, ItemName: item, Price: price, Side: side}); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// coercePrice converts a raw cell to the canonical float64 price type.
// The conversion is exact for integral values and never rounds or
// clamps fractional ones.
func coercePrice(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("unexpected column type %T", v)
	}
}
