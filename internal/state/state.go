// Package state persists per-bookmark sync state in SQLite. It drives
// the create/update/skip decision for each bookmark and remembers the
// cursor of the last completed pass.
package state

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS bookmarks (
	id          INTEGER PRIMARY KEY,
	path        TEXT NOT NULL,
	checksum    TEXT NOT NULL DEFAULT '',
	last_update TEXT NOT NULL DEFAULT '',
	synced_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS checkpoints (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_bookmarks_path ON bookmarks(path);
`

const lastSyncKey = "last_sync"

// Row is the persisted state of one synced bookmark.
type Row struct {
	ID         int64
	Path       string
	Checksum   string
	LastUpdate string
	SyncedAt   time.Time
}

// Store is the interface the syncer depends on; *DB is the SQLite
// implementation.
type Store interface {
	Get(id int64) (Row, bool, error)
	Upsert(r Row) error
	AllPaths() (map[int64]string, error)
	LastSync() (string, error)
	SetLastSync(value string) error
	Close() error
}

var _ Store = (*DB)(nil)

// DB wraps a sql.DB with sync-state operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("state: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("state: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("state: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Get returns the state row for a bookmark, with ok=false when the
// bookmark has never been synced.
func (db *DB) Get(id int64) (Row, bool, error) {
	var r Row
	err := db.conn.QueryRow(
		`SELECT id, path, checksum, last_update, synced_at FROM bookmarks WHERE id = ?`, id,
	).Scan(&r.ID, &r.Path, &r.Checksum, &r.LastUpdate, &r.SyncedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Row{}, false, nil
	}
	if err != nil {
		return Row{}, false, fmt.Errorf("state: get %d: %w", id, err)
	}
	return r, true, nil
}

// Upsert inserts or replaces a bookmark's state row; synced_at is set
// to the current time.
func (db *DB) Upsert(r Row) error {
	_, err := db.conn.Exec(`
		INSERT INTO bookmarks (id, path, checksum, last_update, synced_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			path        = excluded.path,
			checksum    = excluded.checksum,
			last_update = excluded.last_update,
			synced_at   = excluded.synced_at
	`, r.ID, r.Path, r.Checksum, r.LastUpdate, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("state: upsert %d: %w", r.ID, err)
	}
	return nil
}

// AllPaths returns every synced bookmark's note path keyed by identifier.
func (db *DB) AllPaths() (map[int64]string, error) {
	rows, err := db.conn.Query(`SELECT id, path FROM bookmarks`)
	if err != nil {
		return nil, fmt.Errorf("state: all paths: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]string)
	for rows.Next() {
		var id int64
		var p string
		if err := rows.Scan(&id, &p); err != nil {
			return nil, err
		}
		out[id] = p
	}
	return out, rows.Err()
}

// LastSync returns the stored cursor of the last completed pass, or
// empty string if no pass has finished yet.
func (db *DB) LastSync() (string, error) {
	var v string
	err := db.conn.QueryRow(`SELECT value FROM checkpoints WHERE key = ?`, lastSyncKey).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("state: last sync: %w", err)
	}
	return v, nil
}

// SetLastSync stores the cursor of a completed pass.
func (db *DB) SetLastSync(value string) error {
	_, err := db.conn.Exec(`
		INSERT INTO checkpoints (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, lastSyncKey, value)
	if err != nil {
		return fmt.Errorf("state: set last sync: %w", err)
	}
	return nil
}
