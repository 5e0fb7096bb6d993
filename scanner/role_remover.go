package scanner

import (
	"errors"
	"fmt"
	"log"
	"time"

	"timeout-helper/utils"
	"timeout-helper/utils/database"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

// RoleRemover is the part of *discordgo.Session the sweep needs.
type RoleRemover interface {
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

// Session is what the sweep loop needs: role removal plus the log channel.
type Session interface {
	RoleRemover
	utils.MessageSender
}

// SweepResult counts the outcome of one sweep.
type SweepResult struct {
	Removed int
	Dropped int
	Failed  int
}

// gone reports whether Discord says the member or role no longer exists, so
// retrying the removal can never succeed.
func gone(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Message == nil {
		return false
	}
	switch restErr.Message.Code {
	case discordgo.ErrCodeUnknownMember, discordgo.ErrCodeUnknownRole, discordgo.ErrCodeUnknownGuild:
		return true
	}
	return false
}

// SweepExpiredRoles removes every temporary role whose time is up. Tasks
// that fail are kept so the next sweep retries them.
func SweepExpiredRoles(s RoleRemover, db *sqlx.DB, now time.Time) (SweepResult, error) {
	var result SweepResult

	tasks, err := database.GetDueTasks(db, now)
	if err != nil {
		return result, err
	}

	for _, task := range tasks {
		err := s.GuildMemberRoleRemove(task.GuildID, task.UserID, task.RoleID)
		switch {
		case err == nil:
			log.Printf("Successfully removed role %s from user %s (case %s)", task.RoleID, task.UserID, task.CaseID)
			result.Removed++
		case gone(err):
			log.Printf("Dropping task %d: member %s or role %s no longer exists", task.ID, task.UserID, task.RoleID)
			result.Dropped++
		default:
			log.Printf("Failed to remove role %s from user %s: %v", task.RoleID, task.UserID, err)
			result.Failed++
			continue
		}

		if err := database.DeleteTask(db, task.ID); err != nil {
			log.Printf("Failed to delete task %d: %v", task.ID, err)
		}
	}
	return result, nil
}

// RunRoleRemover sweeps once immediately and then every interval until done
// is closed. Sweeps that drop or fail grants are reported to logChannelID.
func RunRoleRemover(s Session, db *sqlx.DB, interval time.Duration, logChannelID string, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		result, err := SweepExpiredRoles(s, db, time.Now())
		if err != nil {
			log.Printf("Error getting due tasks: %v", err)
			if logErr := utils.LogError(s, logChannelID, "RoleRemover", "Sweep", err.Error()); logErr != nil {
				log.Printf("[RoleRemover] Failed to send log: %v", logErr)
			}
		} else if result != (SweepResult{}) {
			log.Printf("[RoleRemover] sweep finished - removed=%d dropped=%d failed=%d", result.Removed, result.Dropped, result.Failed)
			if result.Dropped > 0 || result.Failed > 0 {
				details := fmt.Sprintf("Removed %d, dropped %d for missing members or roles, %d failed and will be retried.", result.Removed, result.Dropped, result.Failed)
				if logErr := utils.LogWarn(s, logChannelID, "RoleRemover", "Sweep", details); logErr != nil {
					log.Printf("[RoleRemover] Failed to send log: %v", logErr)
				}
			}
		}

		select {
		case <-done:
			return
		case <-ticker.C:
		}
	}
}
