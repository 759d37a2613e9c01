package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "github.com/marcboeker/go-duckdb" // registers the "duckdb" driver
)

// Dialect carries the schema statements for one SQL engine. The DML is
// shared: both engines accept $n placeholders and INSERT ... RETURNING.
type Dialect struct {
	Name       string
	DriverName string
	Schema     []string
}

// Postgres stores history in a PostgreSQL table via pgx.
var Postgres = Dialect{
	Name:       "postgres",
	DriverName: "pgx",
	Schema: []string{`
CREATE TABLE IF NOT EXISTS history (
  id           BIGSERIAL PRIMARY KEY,
  filename     TEXT             NOT NULL,
  upload_time  TEXT             NOT NULL,
  units        INTEGER          NOT NULL,
  avg_pressure DOUBLE PRECISION,
  ingested_at  TIMESTAMPTZ      NOT NULL
)`},
}

// DuckDB stores history in an embedded, file-backed DuckDB database.
var DuckDB = Dialect{
	Name:       "duckdb",
	DriverName: "duckdb",
	Schema: []string{
		`CREATE SEQUENCE IF NOT EXISTS history_id_seq`,
		`
CREATE TABLE IF NOT EXISTS history (
  id           BIGINT PRIMARY KEY DEFAULT nextval('history_id_seq'),
  filename     VARCHAR   NOT NULL,
  upload_time  VARCHAR   NOT NULL,
  units        INTEGER   NOT NULL,
  avg_pressure DOUBLE,
  ingested_at  TIMESTAMP NOT NULL
)`,
	},
}

const (
	insertEntry = `
INSERT INTO history (filename, upload_time, units, avg_pressure, ingested_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`

	trimEntries = `
DELETE FROM history
WHERE id NOT IN (SELECT id FROM history ORDER BY id DESC LIMIT $1)`

	listEntries = `
SELECT id, filename, units, avg_pressure, ingested_at
FROM history
ORDER BY id DESC
LIMIT $1`
)

// SQLStore is a Store backed by a database/sql handle.
type SQLStore struct {
	db        *sql.DB
	dialect   Dialect
	retention int
}

// NewSQLStore wraps an existing *sql.DB. A retention below one falls back
// to DefaultRetention.
func NewSQLStore(db *sql.DB, dialect Dialect, retention int) *SQLStore {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &SQLStore{db: db, dialect: dialect, retention: retention}
}

// Open connects to the named driver ("postgres" or "duckdb") and returns a
// store that owns the connection.
func Open(driver, dsn string, retention int) (*SQLStore, error) {
	var dialect Dialect
	switch driver {
	case Postgres.Name:
		dialect = Postgres
	case DuckDB.Name:
		dialect = DuckDB
	default:
		return nil, fmt.Errorf("unknown history driver %q", driver)
	}

	db, err := sql.Open(dialect.DriverName, dsn)
	if err != nil {
		return nil, unavailable("open", err)
	}
	return NewSQLStore(db, dialect, retention), nil
}

// Init creates the history schema if it does not exist yet.
func (s *SQLStore) Init(ctx context.Context) error {
	for _, stmt := range s.dialect.Schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return unavailable("init", err)
		}
	}
	return nil
}

// Record inserts e and trims older entries in a single transaction.
func (s *SQLStore) Record(ctx context.Context, e Entry) (Entry, error) {
	if err := checkEntry(e); err != nil {
		return Entry{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Entry{}, unavailable("record", err)
	}
	defer tx.Rollback()

	ingestedAt := e.IngestedAt.UTC()
	err = tx.QueryRowContext(ctx, insertEntry,
		e.SourceName,
		e.UploadTime(),
		e.UnitCount,
		nullFloat(e.AvgPressure),
		ingestedAt,
	).Scan(&e.ID)
	if err != nil {
		return Entry{}, unavailable("record: insert", err)
	}

	if _, err := tx.ExecContext(ctx, trimEntries, s.retention); err != nil {
		return Entry{}, unavailable("record: trim", err)
	}

	if err := tx.Commit(); err != nil {
		return Entry{}, unavailable("record: commit", err)
	}
	return e, nil
}

// List returns the retained entries, newest first.
func (s *SQLStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, listEntries, s.retention)
	if err != nil {
		return nil, unavailable("list", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, s.retention)
	for rows.Next() {
		var (
			e   Entry
			avg sql.NullFloat64
			at  time.Time
		)
		if err := rows.Scan(&e.ID, &e.SourceName, &e.UnitCount, &avg, &at); err != nil {
			return nil, unavailable("list: scan", err)
		}
		if avg.Valid {
			v := avg.Float64
			e.AvgPressure = &v
		}
		e.IngestedAt = at
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list: rows", err)
	}
	return entries, nil
}

// Close releases the underlying connection pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
