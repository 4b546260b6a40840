package clickhouse

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"game-market-tracker/internal/domain"
	"game-market-tracker/internal/storage"
)

// Raw table names in the quote store. Each table is keyed by a leading
// timestamp column with one price column per tracked item.
const (
	askTable = "ask"
	bidTable = "bid"

	timestampColumn = "timestamp"
)

// RawQuoteSource implements storage.RawQuoteSource over the ClickHouse
// raw quote store. The set of item columns is rediscovered on every
// scan since tracked items grow over time.
type RawQuoteSource struct {
	conn *Conn
}

// NewRawQuoteSource creates a new RawQuoteSource.
func NewRawQuoteSource(conn *Conn) *RawQuoteSource {
	return &RawQuoteSource{conn: conn}
}

// Compile-time interface check.
var _ storage.RawQuoteSource = (*RawQuoteSource)(nil)

// ItemNames returns the distinct non-timestamp column names across both
// raw tables, sorted ascending.
func (s *RawQuoteSource) ItemNames(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	for _, table := range []string{askTable, bidTable} {
		cols, err := s.itemColumns(ctx, table)
		if err != nil {
			return nil, err
		}
		for _, c := range cols {
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

// ScanQuotes streams every present, non-null price cell of both tables.
// Negative cells are the source's no-order sentinel and are skipped the
// same way null cells are.
func (s *RawQuoteSource) ScanQuotes(ctx context.Context, fn func(domain.RawQuote) error) error {
	tables := []struct {
		name string
		side domain.Side
	}{
		{askTable, domain.SideAsk},
		{bidTable, domain.SideBid},
	}

	for _, t := range tables {
		if err := s.scanTable(ctx, t.name, t.side, fn); err != nil {
			return err
		}
	}
	return nil
}

// scanTable pivots one wide table into RawQuote tuples.
func (s *RawQuoteSource) scanTable(ctx context.Context, table string, side domain.Side, fn func(domain.RawQuote) error) error {
	cols, err := s.itemColumns(ctx, table)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return nil
	}

	// Coerce every price column to Nullable(Float64) server-side; the
	// cast is exact for integral storage types.
	selects := make([]string, 0, len(cols)+1)
	selects = append(selects, quoteIdent(timestampColumn))
	for _, c := range cols {
		selects = append(selects, fmt.Sprintf("CAST(%s AS Nullable(Float64))", quoteIdent(c)))
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY %s ASC",
		strings.Join(selects, ", "), quoteIdent(table), quoteIdent(timestampColumn),
	)

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("scan raw table %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var ts int64
		prices := make([]*float64, len(cols))

		dest := make([]any, 0, len(cols)+1)
		dest = append(dest, &ts)
		for i := range prices {
			dest = append(dest, &prices[i])
		}

		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("scan raw row in %s: %w", table, err)
		}

		for i, p := range prices {
			if p == nil || *p < 0 {
				continue
			}
			q := domain.RawQuote{
				Timestamp: ts,
				ItemName:  cols[i],
				Price:     *p,
				Side:      side,
			}
			if err := fn(q); err != nil {
				return err
			}
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate raw rows in %s: %w", table, err)
	}

	return nil
}

// itemColumns enumerates a table's price columns, validating that each
// carries a numeric storage type.
func (s *RawQuoteSource) itemColumns(ctx context.Context, table string) ([]string, error) {
	query := `
		SELECT name, type
		FROM system.columns
		WHERE database = currentDatabase() AND table = ?
		ORDER BY position ASC
	`

	rows, err := s.conn.Query(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("describe raw table %s: %w", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name, typ string
		if err := rows.Scan(&name, &typ); err != nil {
			return nil, fmt.Errorf("scan column of %s: %w", table, err)
		}
		if name == timestampColumn {
			continue
		}
		if !isNumericType(typ) {
			return nil, fmt.Errorf("raw table %s column %q has unexpected type %s", table, name, typ)
		}
		cols = append(cols, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns of %s: %w", table, err)
	}

	return cols, nil
}

// isNumericType reports whether a ClickHouse column type can be cast to
// Float64 without surprises.
func isNumericType(typ string) bool {
	t := strings.TrimSuffix(strings.TrimPrefix(typ, "Nullable("), ")")
	for _, prefix := range []string{"Int", "UInt", "Float", "Decimal"} {
		if strings.HasPrefix(t, prefix) {
			return true
		}
	}
	return false
}

// quoteIdent backtick-quotes an identifier. Item names come from raw
// column discovery and may contain spaces or punctuation.
func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "\\`") + "`"
}
