package database

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Init opens the sqlite database at dbPath and ensures all tables exist.
func Init(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	// sqlite serialises writers anyway, and ":memory:" is per connection.
	db.SetMaxOpenConns(1)

	timedTasksSchema := `
    CREATE TABLE IF NOT EXISTS timed_tasks (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        guild_id TEXT NOT NULL,
        user_id TEXT NOT NULL,
        role_id TEXT NOT NULL,
        remove_at DATETIME NOT NULL
    );`
	if _, err := db.Exec(timedTasksSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create timed_tasks table: %w", err)
	}

	// Older databases predate case tracking.
	alter := `ALTER TABLE timed_tasks ADD COLUMN case_id TEXT NOT NULL DEFAULT ''`
	if _, err := db.Exec(alter); err != nil && !strings.Contains(err.Error(), "duplicate column name") {
		db.Close()
		return nil, fmt.Errorf("failed to execute ALTER statement %s: %w", alter, err)
	}

	moderationSchema := `
    CREATE TABLE IF NOT EXISTS moderation_log (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        case_id TEXT NOT NULL UNIQUE,
        guild_id TEXT NOT NULL,
        user_id TEXT NOT NULL,
        moderator_id TEXT NOT NULL,
        action TEXT NOT NULL,
        role_id TEXT NOT NULL DEFAULT '',
        duration_ms INTEGER NOT NULL DEFAULT 0,
        input TEXT NOT NULL DEFAULT '',
        reason TEXT NOT NULL DEFAULT '',
        created_at DATETIME NOT NULL,
        expires_at DATETIME
    );`
	if _, err := db.Exec(moderationSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create moderation_log table: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_timed_tasks_remove_at ON timed_tasks (remove_at)`,
		`CREATE INDEX IF NOT EXISTS idx_moderation_log_member ON moderation_log (guild_id, user_id)`,
	}
	for _, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create index: %w", err)
		}
	}

	return db, nil
}
