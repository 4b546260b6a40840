package clickhouse

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"game-market-tracker/internal/domain"
)

// setupTestDB creates a ClickHouse container with the raw quote tables
// and returns a connection plus a cleanup function.
func setupTestDB(t *testing.T) (*Conn, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "clickhouse/clickhouse-server:24.1-alpine",
		ExposedPorts: []string{"9000/tcp", "8123/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForLog("Application: Ready for connections").
				WithStartupTimeout(60*time.Second),
			wait.ForListeningPort("9000/tcp"),
		),
		Env: map[string]string{
			"CLICKHOUSE_DB":       "test",
			"CLICKHOUSE_USER":     "default",
			"CLICKHOUSE_PASSWORD": "",
		},
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "9000")
	require.NoError(t, err)

	dsn := fmt.Sprintf("clickhouse://%s:%s/test", host, port.Port())

	conn, err := NewConn(ctx, dsn)
	require.NoError(t, err)

	createRawTables(t, conn)

	cleanup := func() {
		conn.Close()
		_ = container.Terminate(ctx)
	}

	return conn, cleanup
}

// createRawTables builds the two wide fixture tables.
func createRawTables(t *testing.T, conn *Conn) {
	t.Helper()
	ctx := context.Background()

	for _, table := range []string{askTable, bidTable} {
		err := conn.Exec(ctx, fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s (timestamp Int64) ENGINE = MergeTree ORDER BY timestamp",
			quoteIdent(table)))
		require.NoError(t, err, "create raw table %s", table)
	}
}

// addItemColumn mirrors how the production store grows: one nullable
// price column per item.
func addItemColumn(t *testing.T, conn *Conn, table, item, typ string) {
	t.Helper()
	err := conn.Exec(context.Background(), fmt.Sprintf(
		"ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s Nullable(%s)",
		quoteIdent(table), quoteIdent(item), typ))
	require.NoError(t, err, "add column %s to %s", item, table)
}

// insertRow inserts one wide row; values align with the given columns.
func insertRow(t *testing.T, conn *Conn, table string, columns []string, values []any) {
	t.Helper()

	cols := quoteIdent(timestampColumn)
	marks := "?"
	for _, c := range columns {
		cols += ", " + quoteIdent(c)
		marks += ", ?"
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quoteIdent(table), cols, marks)
	require.NoError(t, conn.Exec(context.Background(), query, values...))
}

// collectQuotes drains ScanQuotes into a slice.
func collectQuotes(t *testing.T, src *RawQuoteSource) []domain.RawQuote {
	t.Helper()
	var quotes []domain.RawQuote
	err := src.ScanQuotes(context.Background(), func(q domain.RawQuote) error {
		quotes = append(quotes, q)
		return nil
	})
	require.NoError(t, err)
	return quotes
}
