package cachestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteVersion = 1

// SQLite keeps buckets in a single database file so they survive restarts.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and runs migrations.
func OpenSQLite(path string) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewSQLiteMemory creates an in-memory database for tests.
func NewSQLiteMemory() (*SQLite, error) {
	return OpenSQLite(":memory:")
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if version >= sqliteVersion {
		return nil
	}

	const ddl = `
	CREATE TABLE IF NOT EXISTS buckets (
		id    INTEGER PRIMARY KEY AUTOINCREMENT,
		name  TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS entries (
		bucket_id  INTEGER NOT NULL REFERENCES buckets(id) ON DELETE CASCADE,
		key        TEXT NOT NULL,
		status     INTEGER NOT NULL,
		header     TEXT NOT NULL DEFAULT '{}',
		body       BLOB,
		stored_at  TEXT NOT NULL,
		PRIMARY KEY (bucket_id, key)
	);`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("migrate v1: %w", err)
	}

	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", sqliteVersion))
	return err
}

func (s *SQLite) Open(ctx context.Context, name string) (Bucket, error) {
	if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO buckets (name) VALUES (?)`, name); err != nil {
		return nil, fmt.Errorf("create bucket %q: %w", name, err)
	}
	var id int64
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM buckets WHERE name = ?`, name).Scan(&id); err != nil {
		return nil, fmt.Errorf("lookup bucket %q: %w", name, err)
	}
	return &sqliteBucket{db: s.db, id: id, name: name}, nil
}

func (s *SQLite) Has(ctx context.Context, name string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM buckets WHERE name = ?`, name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("lookup bucket %q: %w", name, err)
	}
	return n > 0, nil
}

func (s *SQLite) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM buckets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (s *SQLite) Delete(ctx context.Context, name string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM buckets WHERE name = ?`, name)
	if err != nil {
		return false, fmt.Errorf("delete bucket %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLite) Match(ctx context.Context, key string) (Snapshot, bool, error) {
	var (
		snap   Snapshot
		header string
		stored string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT e.status, e.header, e.body, e.stored_at
		FROM entries e JOIN buckets b ON b.id = e.bucket_id
		WHERE e.key = ?
		ORDER BY b.id
		LIMIT 1`, key).Scan(&snap.Status, &header, &snap.Body, &stored)
	return scanSnapshot(snap, header, stored, err)
}

type sqliteBucket struct {
	db   *sql.DB
	id   int64
	name string
}

func (b *sqliteBucket) Name() string { return b.name }

func (b *sqliteBucket) Match(ctx context.Context, key string) (Snapshot, bool, error) {
	var (
		snap   Snapshot
		header string
		stored string
	)
	err := b.db.QueryRowContext(ctx,
		`SELECT status, header, body, stored_at FROM entries WHERE bucket_id = ? AND key = ?`,
		b.id, key).Scan(&snap.Status, &header, &snap.Body, &stored)
	return scanSnapshot(snap, header, stored, err)
}

func (b *sqliteBucket) Put(ctx context.Context, key string, snap Snapshot) error {
	header, err := json.Marshal(snap.Header)
	if err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	body := snap.Body
	if body == nil {
		body = []byte{}
	}
	_, err = b.db.ExecContext(ctx, `
		INSERT INTO entries (bucket_id, key, status, header, body, stored_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (bucket_id, key) DO UPDATE SET
			status = excluded.status,
			header = excluded.header,
			body = excluded.body,
			stored_at = excluded.stored_at`,
		b.id, key, snap.Status, string(header), body, snap.StoredAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("put %q in %q: %w", key, b.name, err)
	}
	return nil
}

func (b *sqliteBucket) Keys(ctx context.Context) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT key FROM entries WHERE bucket_id = ? ORDER BY key`, b.id)
	if err != nil {
		return nil, fmt.Errorf("list keys of %q: %w", b.name, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func scanSnapshot(snap Snapshot, header, stored string, err error) (Snapshot, bool, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("read entry: %w", err)
	}
	snap.Header = http.Header{}
	if err := json.Unmarshal([]byte(header), &snap.Header); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode header: %w", err)
	}
	if snap.StoredAt, err = time.Parse(time.RFC3339Nano, stored); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode stored_at: %w", err)
	}
	return snap, true, nil
}
