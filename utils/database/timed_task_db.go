package database

import (
	"fmt"
	"time"

	"timeout-helper/model"

	"github.com/jmoiron/sqlx"
)

// storedTime normalises times so string comparison in sqlite orders them.
func storedTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

const insertTimedTask = `INSERT INTO timed_tasks (guild_id, user_id, role_id, remove_at, case_id)
              VALUES (:guild_id, :user_id, :role_id, :remove_at, :case_id)`

// AddTimedTask adds a new timed task to the database and returns its ID.
func AddTimedTask(db *sqlx.DB, task model.TimedTask) (int64, error) {
	task.RemoveAt = storedTime(task.RemoveAt)
	result, err := db.NamedExec(insertTimedTask, task)
	if err != nil {
		return 0, fmt.Errorf("failed to insert timed task: %w", err)
	}
	return result.LastInsertId()
}

// ReplaceTimedTask stores task, dropping any pending task for the same guild,
// user and role so a member never holds two expiries for one role.
func ReplaceTimedTask(db *sqlx.DB, task model.TimedTask) (int64, error) {
	task.RemoveAt = storedTime(task.RemoveAt)

	tx, err := db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec("DELETE FROM timed_tasks WHERE guild_id = ? AND user_id = ? AND role_id = ?", task.GuildID, task.UserID, task.RoleID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear previous timed task: %w", err)
	}
	result, err := tx.NamedExec(insertTimedTask, task)
	if err != nil {
		return 0, fmt.Errorf("failed to insert timed task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit timed task: %w", err)
	}
	return id, nil
}

// GetDueTasks retrieves all tasks whose removal time is at or before now.
func GetDueTasks(db *sqlx.DB, now time.Time) ([]model.TimedTask, error) {
	var tasks []model.TimedTask
	query := "SELECT id, guild_id, user_id, role_id, remove_at, case_id FROM timed_tasks WHERE remove_at <= ? ORDER BY remove_at"
	err := db.Select(&tasks, query, storedTime(now))
	if err != nil {
		return nil, fmt.Errorf("failed to get due tasks: %w", err)
	}
	return tasks, nil
}

// GetTasksForUser lists the pending tasks of one member, soonest first.
func GetTasksForUser(db *sqlx.DB, guildID, userID string) ([]model.TimedTask, error) {
	var tasks []model.TimedTask
	query := "SELECT id, guild_id, user_id, role_id, remove_at, case_id FROM timed_tasks WHERE guild_id = ? AND user_id = ? ORDER BY remove_at"
	err := db.Select(&tasks, query, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks for user %s in guild %s: %w", userID, guildID, err)
	}
	return tasks, nil
}

// CountTimedTasks returns the number of pending tasks.
func CountTimedTasks(db *sqlx.DB) (int, error) {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM timed_tasks"); err != nil {
		return 0, fmt.Errorf("failed to count timed tasks: %w", err)
	}
	return count, nil
}

// DeleteTask deletes a task from the database by its ID.
func DeleteTask(db *sqlx.DB, taskID int64) error {
	query := "DELETE FROM timed_tasks WHERE id = ?"
	result, err := db.Exec(query, taskID)
	if err != nil {
		return fmt.Errorf("failed to delete task %d: %w", taskID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for task id %d: %w", taskID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no task found with id %d", taskID)
	}
	return nil
}

// DeleteTaskByDetails deletes a task from the database by guild, user, and role ID.
func DeleteTaskByDetails(db *sqlx.DB, guildID, userID, roleID string) error {
	query := "DELETE FROM timed_tasks WHERE guild_id = ? AND user_id = ? AND role_id = ?"
	_, err := db.Exec(query, guildID, userID, roleID)
	if err != nil {
		return fmt.Errorf("failed to delete task by details for user %s in guild %s: %w", userID, guildID, err)
	}
	return nil
}
