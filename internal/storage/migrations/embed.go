package migrations

import "embed"

// The schema ships inside the binary so every entry point can migrate
// on startup without a files-on-disk convention.

//go:embed postgres/*.sql
var PostgresFS embed.FS

//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS
