package postgres

import "embed"

// Migrations holds the schema migrations, applied by `fraudctl migrate`.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory of Migrations that holds the .sql files.
const MigrationsDir = "migrations"
