package db

import (
	"database/sql"
	"fmt"
)

// migrations is an ordered list of SQL statements to run.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS visitors (
		id                TEXT     PRIMARY KEY,
		full_name         TEXT     NOT NULL,
		id_number         TEXT     NOT NULL,
		phone_number      TEXT     NOT NULL,
		email             TEXT     NOT NULL DEFAULT '',
		company           TEXT     NOT NULL DEFAULT '',
		purpose           TEXT     NOT NULL,
		host_name         TEXT     NOT NULL,
		visit_date        TEXT     NOT NULL,
		pass_id           TEXT     NOT NULL,
		status            TEXT     NOT NULL CHECK (status IN ('Checked In', 'Checked Out')),
		check_in_time     DATETIME NOT NULL,
		check_out_time    DATETIME,
		expected_duration INTEGER  NOT NULL DEFAULT 60,
		actual_duration   INTEGER,
		is_overstayed     INTEGER  NOT NULL DEFAULT 0,
		overstay_minutes  INTEGER  NOT NULL DEFAULT 0 CHECK (overstay_minutes >= 0),
		alerts_triggered  INTEGER  NOT NULL DEFAULT 0,
		last_activity     DATETIME NOT NULL,
		notes             TEXT     NOT NULL DEFAULT '',
		created_at        DATETIME NOT NULL,
		updated_at        DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_visitors_status ON visitors(status)`,
	`CREATE INDEX IF NOT EXISTS idx_visitors_visit_date ON visitors(visit_date)`,
	`CREATE TABLE IF NOT EXISTS visitor_alerts (
		id              TEXT     PRIMARY KEY,
		visitor_id      TEXT     NOT NULL REFERENCES visitors(id) ON DELETE CASCADE,
		seq             INTEGER  NOT NULL,
		alert_type      TEXT     NOT NULL,
		message         TEXT     NOT NULL,
		triggered_at    DATETIME NOT NULL,
		acknowledged    INTEGER  NOT NULL DEFAULT 0,
		acknowledged_by TEXT     NOT NULL DEFAULT '',
		acknowledged_at DATETIME,
		UNIQUE (visitor_id, seq)
	)`,
	`CREATE TABLE IF NOT EXISTS api_keys (
		id           INTEGER  PRIMARY KEY AUTOINCREMENT,
		name         TEXT     NOT NULL,
		key_prefix   TEXT     NOT NULL,
		key_hash     TEXT     NOT NULL UNIQUE,
		created_at   DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_used_at DATETIME
	)`,
}

// migrate runs all migrations in order.
func migrate(db *sql.DB) error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}

	// Column additions, skipped when the column already exists.
	columnMigrations := []struct {
		table, column, definition string
	}{
		{"visitors", "location", "TEXT NOT NULL DEFAULT ''"},
		{"api_keys", "owner", "TEXT NOT NULL DEFAULT ''"},
	}

	for _, cm := range columnMigrations {
		if err := addColumnIfNotExists(db, cm.table, cm.column, cm.definition); err != nil {
			return fmt.Errorf("adding %s.%s: %w", cm.table, cm.column, err)
		}
	}

	return nil
}

// addColumnIfNotExists adds a column to a table if it doesn't already exist.
func addColumnIfNotExists(db *sql.DB, table, column, definition string) (err error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("checking table info: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", cerr)
		}
	}()

	found := false
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return fmt.Errorf("scanning column info: %w", err)
		}
		if name == column {
			found = true
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating columns: %w", err)
	}
	if found {
		return nil
	}

	_, err = db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
	return err
}
