// Package migrations embeds the SQL schema migrations shipped with the binaries.
package migrations

import "embed"

// ClickHouse holds the ClickHouse migrations under the "clickhouse" directory.
//
//go:embed clickhouse/*.sql
var ClickHouse embed.FS
