package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"timeout-helper/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrRecordNotFound is returned when no moderation record matches a case ID.
var ErrRecordNotFound = errors.New("moderation record not found")

// ErrAmbiguousCase is returned when a case ID prefix matches several records.
var ErrAmbiguousCase = errors.New("case ID matches more than one record")

const moderationColumns = `id, case_id, guild_id, user_id, moderator_id, action, role_id, duration_ms, input, reason, created_at, expires_at`

// InsertModerationRecord stores record and returns it with its ID and case
// ID filled in. A case ID is generated when the record has none.
func InsertModerationRecord(db *sqlx.DB, record model.ModerationRecord) (model.ModerationRecord, error) {
	if record.CaseID == "" {
		record.CaseID = uuid.NewString()
	}
	record.CreatedAt = storedTime(record.CreatedAt)
	if record.ExpiresAt.Valid {
		record.ExpiresAt.Time = storedTime(record.ExpiresAt.Time)
	}

	query := `INSERT INTO moderation_log (case_id, guild_id, user_id, moderator_id, action, role_id, duration_ms, input, reason, created_at, expires_at)
              VALUES (:case_id, :guild_id, :user_id, :moderator_id, :action, :role_id, :duration_ms, :input, :reason, :created_at, :expires_at)`
	result, err := db.NamedExec(query, record)
	if err != nil {
		return record, fmt.Errorf("failed to insert moderation record: %w", err)
	}
	record.ID, err = result.LastInsertId()
	if err != nil {
		return record, fmt.Errorf("failed to read moderation record id: %w", err)
	}
	return record, nil
}

// GetModerationHistory returns up to limit records for a member, newest first.
func GetModerationHistory(db *sqlx.DB, guildID, userID string, limit int) ([]model.ModerationRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	var records []model.ModerationRecord
	query := `SELECT ` + moderationColumns + ` FROM moderation_log
              WHERE guild_id = ? AND user_id = ?
              ORDER BY created_at DESC, id DESC
              LIMIT ?`
	if err := db.Select(&records, query, guildID, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to get moderation history for user %s in guild %s: %w", userID, guildID, err)
	}
	return records, nil
}

// GetModerationRecord looks up one record of a guild by case ID. A unique
// prefix of the case ID, such as the short form shown in replies, also matches.
func GetModerationRecord(db *sqlx.DB, guildID, caseID string) (model.ModerationRecord, error) {
	var record model.ModerationRecord
	caseID = strings.TrimSpace(caseID)
	if caseID == "" || strings.ContainsAny(caseID, `%_\`) {
		return record, fmt.Errorf("%w: %q", ErrRecordNotFound, caseID)
	}

	var records []model.ModerationRecord
	query := `SELECT ` + moderationColumns + ` FROM moderation_log
              WHERE guild_id = ? AND (case_id = ? OR case_id LIKE ?)
              ORDER BY case_id = ? DESC
              LIMIT 2`
	if err := db.Select(&records, query, guildID, caseID, caseID+"%", caseID); err != nil {
		return record, fmt.Errorf("failed to get moderation record %s: %w", caseID, err)
	}
	switch {
	case len(records) == 0:
		return record, fmt.Errorf("%w: %s", ErrRecordNotFound, caseID)
	case len(records) > 1 && records[0].CaseID != caseID:
		return record, fmt.Errorf("%w: %s", ErrAmbiguousCase, caseID)
	}
	return records[0], nil
}

type countRow struct {
	Label string `db:"label"`
	Total int    `db:"total"`
}

func countBy(db *sqlx.DB, column, guildID string, since time.Time) (map[string]int, error) {
	var rows []countRow
	query := `SELECT ` + column + ` AS label, COUNT(*) AS total FROM moderation_log
              WHERE guild_id = ? AND created_at >= ?
              GROUP BY ` + column
	if err := db.Select(&rows, query, guildID, storedTime(since)); err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Label] = r.Total
	}
	return counts, nil
}

// GetModeratorStats counts the actions each moderator took in a guild since the given time.
func GetModeratorStats(db *sqlx.DB, guildID string, since time.Time) (map[string]int, error) {
	stats, err := countBy(db, "moderator_id", guildID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get moderator stats for guild %s: %w", guildID, err)
	}
	return stats, nil
}

// GetActionCounts counts the actions of each kind in a guild since the given time.
func GetActionCounts(db *sqlx.DB, guildID string, since time.Time) (map[string]int, error) {
	counts, err := countBy(db, "action", guildID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get action counts for guild %s: %w", guildID, err)
	}
	return counts, nil
}
