package model

import "time"

// TimedTask is a temporary role grant that expires at RemoveAt.
type TimedTask struct {
	ID       int64     `db:"id"`
	GuildID  string    `db:"guild_id"`
	UserID   string    `db:"user_id"`
	RoleID   string    `db:"role_id"`
	RemoveAt time.Time `db:"remove_at"`
	CaseID   string    `db:"case_id"`
}
