package model

import (
	"database/sql"
	"time"
)

// Moderation actions recorded in the moderation log.
const (
	ActionTimeout    = "timeout"
	ActionUntimeout  = "untimeout"
	ActionTempRole   = "temprole"
	ActionRevokeRole = "untemprole"
)

// ModerationRecord is one entry of the moderation log.
type ModerationRecord struct {
	ID          int64        `db:"id"`
	CaseID      string       `db:"case_id"`
	GuildID     string       `db:"guild_id"`
	UserID      string       `db:"user_id"`
	ModeratorID string       `db:"moderator_id"`
	Action      string       `db:"action"`
	RoleID      string       `db:"role_id"`
	DurationMS  int64        `db:"duration_ms"`
	Input       string       `db:"input"`
	Reason      string       `db:"reason"`
	CreatedAt   time.Time    `db:"created_at"`
	ExpiresAt   sql.NullTime `db:"expires_at"`
}

// Duration returns the applied duration.
func (r ModerationRecord) Duration() time.Duration {
	return time.Duration(r.DurationMS) * time.Millisecond
}
