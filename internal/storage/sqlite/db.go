// Package sqlite is the investigator's local store. The database lives
// in a single file next to the tool; schema changes are applied on
// open through a versioned migration list.
package sqlite

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// migrations are applied in order; the current position is tracked in
// PRAGMA user_version. Append only, never edit a shipped entry.
var migrations = []string{
	`
	CREATE TABLE sites (
		id                   INTEGER PRIMARY KEY AUTOINCREMENT,
		domain               TEXT NOT NULL UNIQUE,
		name                 TEXT NOT NULL DEFAULT '',
		site_type            TEXT NOT NULL DEFAULT '',
		status               TEXT NOT NULL DEFAULT 'unknown',
		priority             TEXT NOT NULL DEFAULT 'medium',
		recommendation       TEXT NOT NULL DEFAULT '',
		source_ref           INTEGER,
		traffic_monthly      TEXT NOT NULL DEFAULT '',
		global_rank          TEXT NOT NULL DEFAULT '',
		unique_visitors      TEXT NOT NULL DEFAULT '',
		investigation_status TEXT NOT NULL DEFAULT 'pending',
		notes                TEXT NOT NULL DEFAULT '',
		created_at           TIMESTAMP NOT NULL,
		updated_at           TIMESTAMP NOT NULL,
		last_synced_at       TIMESTAMP
	);

	CREATE TABLE domain_history (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		site_id     INTEGER NOT NULL REFERENCES sites(id),
		domain      TEXT NOT NULL,
		status      TEXT NOT NULL,
		detected_at TIMESTAMP NOT NULL,
		source      TEXT NOT NULL DEFAULT '',
		note        TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX idx_domain_history_domain ON domain_history(domain);
	CREATE INDEX idx_domain_history_site ON domain_history(site_id);

	CREATE TABLE timeline_events (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		entity_type TEXT NOT NULL,
		entity_id   INTEGER NOT NULL,
		event_type  TEXT NOT NULL,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		occurred_at TIMESTAMP NOT NULL,
		source      TEXT NOT NULL DEFAULT '',
		importance  TEXT NOT NULL DEFAULT 'normal'
	);
	CREATE INDEX idx_timeline_entity ON timeline_events(entity_type, entity_id);

	CREATE TABLE osint_records (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		site_id     INTEGER NOT NULL REFERENCES sites(id),
		content     TEXT NOT NULL,
		record_type TEXT NOT NULL DEFAULT '',
		confidence  REAL NOT NULL DEFAULT 0,
		source      TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMP NOT NULL
	);
	CREATE INDEX idx_osint_site ON osint_records(site_id);

	CREATE TABLE sync_logs (
		id            TEXT PRIMARY KEY,
		status        TEXT NOT NULL,
		sites_added   INTEGER NOT NULL DEFAULT 0,
		sites_updated INTEGER NOT NULL DEFAULT 0,
		error         TEXT NOT NULL DEFAULT '',
		started_at    TIMESTAMP NOT NULL,
		finished_at   TIMESTAMP NOT NULL
	);
	`,
}

// Open connects to the store at path and brings the schema up to date.
func Open(path string) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL", path)

	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate applies any pending migrations, each in its own transaction.
func Migrate(db *sqlx.DB) error {
	var version int
	if err := db.Get(&version, "PRAGMA user_version"); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for i := version; i < len(migrations); i++ {
		tx, err := db.Beginx()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", i+1, err)
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", i+1, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("bump schema version to %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", i+1, err)
		}
	}

	return nil
}
