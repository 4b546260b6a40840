package migrations

import "embed"

// PostgresFS embeds all PostgreSQL migration files.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS embeds ClickHouse fixture schemas. The production raw
// store is externally owned; these exist for local development and
// integration tests only.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS
