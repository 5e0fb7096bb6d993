package database

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"timeout-helper/model"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Init(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInitIsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.db")

	db, err := Init(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Init(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestGetDueTasks(t *testing.T) {
	db := openTestDB(t)
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	_, err := AddTimedTask(db, model.TimedTask{GuildID: "g", UserID: "u1", RoleID: "r", RemoveAt: now.Add(-time.Hour)})
	require.NoError(t, err)
	_, err = AddTimedTask(db, model.TimedTask{GuildID: "g", UserID: "u2", RoleID: "r", RemoveAt: now})
	require.NoError(t, err)
	_, err = AddTimedTask(db, model.TimedTask{GuildID: "g", UserID: "u3", RoleID: "r", RemoveAt: now.Add(time.Minute)})
	require.NoError(t, err)

	due, err := GetDueTasks(db, now)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "u1", due[0].UserID)
	assert.Equal(t, "u2", due[1].UserID)
	assert.True(t, due[0].RemoveAt.Equal(now.Add(-time.Hour)))

	count, err := CountTimedTasks(db)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestGetDueTasksAcrossTimezones(t *testing.T) {
	db := openTestDB(t)
	tokyo := time.FixedZone("JST", 9*60*60)
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	_, err := AddTimedTask(db, model.TimedTask{GuildID: "g", UserID: "u", RoleID: "r", RemoveAt: now.Add(-time.Minute).In(tokyo)})
	require.NoError(t, err)

	due, err := GetDueTasks(db, now)
	require.NoError(t, err)
	assert.Len(t, due, 1)
}

func TestReplaceTimedTask(t *testing.T) {
	db := openTestDB(t)
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	_, err := ReplaceTimedTask(db, model.TimedTask{GuildID: "g", UserID: "u", RoleID: "r", RemoveAt: now.Add(time.Hour), CaseID: "first"})
	require.NoError(t, err)
	id, err := ReplaceTimedTask(db, model.TimedTask{GuildID: "g", UserID: "u", RoleID: "r", RemoveAt: now.Add(2 * time.Hour), CaseID: "second"})
	require.NoError(t, err)
	_, err = ReplaceTimedTask(db, model.TimedTask{GuildID: "g", UserID: "u", RoleID: "other", RemoveAt: now.Add(3 * time.Hour)})
	require.NoError(t, err)

	tasks, err := GetTasksForUser(db, "g", "u")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, id, tasks[0].ID)
	assert.Equal(t, "second", tasks[0].CaseID)
	assert.Equal(t, "other", tasks[1].RoleID)
}

func TestDeleteTask(t *testing.T) {
	db := openTestDB(t)

	id, err := AddTimedTask(db, model.TimedTask{GuildID: "g", UserID: "u", RoleID: "r", RemoveAt: time.Now()})
	require.NoError(t, err)

	require.NoError(t, DeleteTask(db, id))
	err = DeleteTask(db, id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no task found")

	_, err = AddTimedTask(db, model.TimedTask{GuildID: "g", UserID: "u", RoleID: "r", RemoveAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, DeleteTaskByDetails(db, "g", "u", "r"))

	count, err := CountTimedTasks(db)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestModerationHistory(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	first, err := InsertModerationRecord(db, model.ModerationRecord{
		GuildID: "g", UserID: "u", ModeratorID: "mod", Action: model.ActionTimeout,
		DurationMS: (6 * time.Hour).Milliseconds(), Input: "6h", Reason: "spam",
		CreatedAt: base, ExpiresAt: sql.NullTime{Time: base.Add(6 * time.Hour), Valid: true},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.CaseID)
	assert.NotZero(t, first.ID)

	_, err = InsertModerationRecord(db, model.ModerationRecord{
		GuildID: "g", UserID: "u", ModeratorID: "mod", Action: model.ActionUntimeout, CreatedAt: base.Add(time.Hour),
	})
	require.NoError(t, err)
	_, err = InsertModerationRecord(db, model.ModerationRecord{
		GuildID: "g", UserID: "someone-else", ModeratorID: "mod", Action: model.ActionTimeout, CreatedAt: base,
	})
	require.NoError(t, err)

	history, err := GetModerationHistory(db, "g", "u", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.ActionUntimeout, history[0].Action)
	assert.False(t, history[0].ExpiresAt.Valid)
	assert.Equal(t, 6*time.Hour, history[1].Duration())
	assert.True(t, history[1].ExpiresAt.Time.Equal(base.Add(6*time.Hour)))

	limited, err := GetModerationHistory(db, "g", "u", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	got, err := GetModerationRecord(db, "g", first.CaseID)
	require.NoError(t, err)
	assert.Equal(t, "spam", got.Reason)

	_, err = GetModerationRecord(db, "g", "missing")
	assert.ErrorIs(t, err, ErrRecordNotFound)
	_, err = GetModerationRecord(db, "other-guild", first.CaseID)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestGetModerationRecordByPrefix(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	for _, caseID := range []string{"abcd1111-0000", "abcd2222-0000", "abcd"} {
		_, err := InsertModerationRecord(db, model.ModerationRecord{
			CaseID: caseID, GuildID: "g", UserID: "u", ModeratorID: "m", Action: model.ActionTimeout, CreatedAt: base,
		})
		require.NoError(t, err)
	}

	got, err := GetModerationRecord(db, "g", "abcd1")
	require.NoError(t, err)
	assert.Equal(t, "abcd1111-0000", got.CaseID)

	got, err = GetModerationRecord(db, "g", " abcd ")
	require.NoError(t, err)
	assert.Equal(t, "abcd", got.CaseID, "an exact match wins over prefix matches")

	_, err = GetModerationRecord(db, "g", "abc")
	assert.ErrorIs(t, err, ErrAmbiguousCase)

	for _, pattern := range []string{"", "%", "abcd_", `ab\`} {
		_, err = GetModerationRecord(db, "g", pattern)
		assert.ErrorIs(t, err, ErrRecordNotFound, pattern)
	}
}

func TestModerationStats(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	for _, rec := range []model.ModerationRecord{
		{GuildID: "g", UserID: "u1", ModeratorID: "alice", Action: model.ActionTimeout, CreatedAt: base},
		{GuildID: "g", UserID: "u2", ModeratorID: "alice", Action: model.ActionTempRole, CreatedAt: base},
		{GuildID: "g", UserID: "u3", ModeratorID: "bob", Action: model.ActionTimeout, CreatedAt: base},
		{GuildID: "g", UserID: "u4", ModeratorID: "bob", Action: model.ActionTimeout, CreatedAt: base.Add(-48 * time.Hour)},
		{GuildID: "other", UserID: "u5", ModeratorID: "carol", Action: model.ActionTimeout, CreatedAt: base},
	} {
		_, err := InsertModerationRecord(db, rec)
		require.NoError(t, err)
	}

	since := base.Add(-24 * time.Hour)
	stats, err := GetModeratorStats(db, "g", since)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"alice": 2, "bob": 1}, stats)

	actions, err := GetActionCounts(db, "g", since)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{model.ActionTimeout: 2, model.ActionTempRole: 1}, actions)
}
