package store

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS techtrack_kv (
    key        TEXT PRIMARY KEY,
    value      BYTEA NOT NULL,
    updated_at BIGINT NOT NULL
)`

var postgresQueries = sqlQueries{
	get: `SELECT value FROM techtrack_kv WHERE key = $1`,
	set: `
		INSERT INTO techtrack_kv (key, value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`,
	remove: `DELETE FROM techtrack_kv WHERE key = $1`,
	keys: `
		SELECT key FROM techtrack_kv
		WHERE starts_with(key, $1)
		ORDER BY key COLLATE "C" ASC
	`,
	keysArgs: func(prefix string) []any { return []any{prefix} },
}

// OpenPostgres connects to PostgreSQL using a lib/pq DSN and creates the
// techtrack_kv table if needed.
func OpenPostgres(dsn string) (*SQLMedium, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec(postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLMedium{db: db, q: postgresQueries}, nil
}
