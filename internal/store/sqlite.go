package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/cmdvault/internal/record"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Table created by the legacy tool (nullable used_times)
// 1 - used_times backfilled to 0
// 2 - legacy table rebuilt with AUTOINCREMENT ids
const currentSchemaVersion = 2

// driverName is go-sqlite3 with a REGEXP function registered on every
// connection, so "command REGEXP ?" works in queries.
const driverName = "sqlite3_cmdvault"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("regexp", matchRegexp, true)
		},
	})
}

var regexpCache sync.Map // string -> *regexp.Regexp

// matchRegexp backs "X REGEXP Y", which SQLite calls as regexp(Y, X).
func matchRegexp(expr, text string) (bool, error) {
	if cached, ok := regexpCache.Load(expr); ok {
		return cached.(*regexp.Regexp).MatchString(text), nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return false, err
	}
	regexpCache.Store(expr, re)
	return re.MatchString(text), nil
}

// SQLStore is the relational Backend.
type SQLStore struct {
	db *sql.DB
}

// OpenSQL creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// This function is idempotent - safe to call multiple times.
func OpenSQL(path string) (*SQLStore, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, &StorageError{Backend: "sqlite", Op: "open", Err: err}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &StorageError{Backend: "sqlite", Op: "open", Err: err}
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, &StorageError{Backend: "sqlite", Op: "open", Err: err}
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, &StorageError{Backend: "sqlite", Op: "open", Err: err}
	}

	return &SQLStore{db: db}, nil
}

// Name implements Backend.
func (s *SQLStore) Name() string {
	return "sqlite"
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Add implements Backend.
func (s *SQLStore) Add(ctx context.Context, text string) error {
	text = record.Normalize(text)
	_, err := s.db.ExecContext(ctx, `INSERT INTO cmd (command, used_times) VALUES (?, 0)`, text)
	if err != nil {
		if isUniqueViolation(err) {
			return duplicate(text)
		}
		return s.fail("add", err)
	}
	return nil
}

// Upsert implements Backend.
func (s *SQLStore) Upsert(ctx context.Context, rec record.Record) error {
	if rec.UsageCount < 0 {
		return s.fail("upsert", fmt.Errorf("negative usage count %d for %q", rec.UsageCount, rec.Text))
	}
	// New rows start at 1 regardless of the incoming count.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cmd (command, used_times) VALUES (?1, 1)
		ON CONFLICT(command) DO UPDATE SET used_times = ?2
	`, record.Normalize(rec.Text), rec.UsageCount)
	if err != nil {
		return s.fail("upsert", err)
	}
	return nil
}

// InsertOrReplace implements Backend.
// The row keeps its id when the text already exists.
func (s *SQLStore) InsertOrReplace(ctx context.Context, rec record.Record) error {
	if rec.UsageCount < 0 {
		return s.fail("insert or replace", fmt.Errorf("negative usage count %d for %q", rec.UsageCount, rec.Text))
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cmd (command, used_times) VALUES (?, ?)
		ON CONFLICT(command) DO UPDATE SET used_times = excluded.used_times
	`, record.Normalize(rec.Text), rec.UsageCount)
	if err != nil {
		return s.fail("insert or replace", err)
	}
	return nil
}

// Query implements Backend.
// Rows come back by usage count descending, then id.
func (s *SQLStore) Query(ctx context.Context, f record.Filter) ([]record.Record, error) {
	var (
		conds []string
		args  []any
	)
	if expr := f.Expression(); expr != "" {
		conds = append(conds, "command REGEXP ?")
		args = append(args, expr)
	}
	if f.UsedOnly {
		conds = append(conds, "used_times > 0")
	}

	query := "SELECT id, command, COALESCE(used_times, 0) FROM cmd"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY used_times DESC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.fail("query", err)
	}
	defer rows.Close()

	records := []record.Record{}
	for rows.Next() {
		var r record.Record
		if err := rows.Scan(&r.ID, &r.Text, &r.UsageCount); err != nil {
			return nil, s.fail("query", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("query", err)
	}
	return records, nil
}

// Delete implements Backend.
func (s *SQLStore) Delete(ctx context.Context, rec record.Record) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cmd WHERE command = ?`, record.Normalize(rec.Text)); err != nil {
		return s.fail("delete", err)
	}
	return nil
}

// Clear implements Backend.
// sqlite_sequence is left alone so ids are not reused.
func (s *SQLStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cmd`); err != nil {
		return s.fail("clear", err)
	}
	return nil
}

// Summary implements Backend.
func (s *SQLStore) Summary(ctx context.Context) ([]UsageGroup, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(used_times, 0) AS used, COUNT(*)
		FROM cmd
		GROUP BY used
		ORDER BY used DESC
	`)
	if err != nil {
		return nil, s.fail("summary", err)
	}
	defer rows.Close()

	var groups []UsageGroup
	for rows.Next() {
		var g UsageGroup
		if err := rows.Scan(&g.UsageCount, &g.Commands); err != nil {
			return nil, s.fail("summary", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("summary", err)
	}
	return groups, nil
}

func (s *SQLStore) fail(op string, err error) error {
	return &StorageError{Backend: s.Name(), Op: op, Err: err}
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}
	if version < 2 {
		if err := migrateToV2(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 backfills used_times on tables created by the legacy tool,
// whose schema allowed NULL counts. CREATE TABLE IF NOT EXISTS leaves such
// tables untouched, so the NOT NULL default never applies to them.
func migrateToV1(db *sql.DB) error {
	if _, err := db.Exec(`UPDATE cmd SET used_times = 0 WHERE used_times IS NULL`); err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// migrateToV2 rebuilds a legacy table into the current layout. Its plain
// INTEGER PRIMARY KEY lets SQLite hand the id of a deleted last row out
// again. Ids and counts are carried over; rows without text are dropped.
func migrateToV2(db *sql.DB) error {
	var ddl string
	if err := db.QueryRow(`SELECT sql FROM sqlite_master WHERE type = 'table' AND name = 'cmd'`).Scan(&ddl); err != nil {
		return fmt.Errorf("migrate to v2: %w", err)
	}
	if strings.Contains(strings.ToUpper(ddl), "AUTOINCREMENT") {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("migrate to v2: %w", err)
	}
	defer tx.Rollback()

	steps := []string{
		`DROP INDEX IF EXISTS commands_ind`,
		`ALTER TABLE cmd RENAME TO cmd_legacy`,
		schemaSQL,
		`INSERT INTO cmd (id, command, used_times)
			SELECT id, command, COALESCE(used_times, 0) FROM cmd_legacy WHERE command IS NOT NULL`,
		`DROP TABLE cmd_legacy`,
	}
	for _, step := range steps {
		if _, err := tx.Exec(step); err != nil {
			return fmt.Errorf("migrate to v2: %w", err)
		}
	}
	return tx.Commit()
}
