package moderation

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"timeout-helper/model"
	"timeout-helper/utils/database"
	"timeout-helper/utils/duration"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// DiscordTimeoutLimit is the longest timeout Discord accepts.
const DiscordTimeoutLimit = 28 * duration.Day

var (
	ErrDurationRequired = errors.New("a duration is required")
	ErrNotPositive      = errors.New("duration must be longer than zero")
	ErrDurationTooLong  = errors.New("duration is too long")
	ErrSelfTarget       = errors.New("moderators cannot target themselves")
	ErrMissingRole      = errors.New("a role is required")
	ErrDiscord          = errors.New("discord request failed")
	ErrStorage          = errors.New("storage failure")
)

// Discord is the subset of *discordgo.Session the moderation commands call.
type Discord interface {
	GuildMemberTimeout(guildID, userID string, until *time.Time, options ...discordgo.RequestOption) error
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
}

// Request describes one moderation command invocation.
type Request struct {
	GuildID     string
	UserID      string
	ModeratorID string
	RoleID      string
	Input       string
	Reason      string
}

// Result is what a successful moderation action applied.
type Result struct {
	Record   model.ModerationRecord
	Duration time.Duration
	Until    time.Time
	Recorded bool
}

// Service applies moderation actions and records them.
type Service struct {
	discord Discord
	db      *sqlx.DB
	now     func() time.Time
}

func NewService(discord Discord, db *sqlx.DB) *Service {
	return &Service{discord: discord, db: db, now: time.Now}
}

// ResolveDuration parses input into a duration. Blank input falls back to
// fallback; a zero fallback makes the duration mandatory. A positive limit
// caps the result.
func ResolveDuration(input string, fallback, limit time.Duration) (time.Duration, error) {
	var d time.Duration
	if strings.TrimSpace(input) == "" {
		if fallback <= 0 {
			return 0, ErrDurationRequired
		}
		d = fallback
	} else {
		parsed, err := duration.Parse(input)
		if err != nil {
			return 0, err
		}
		d = parsed
	}

	if d <= 0 {
		return 0, ErrNotPositive
	}
	if limit > 0 && d > limit {
		return 0, fmt.Errorf("%w: %s exceeds the maximum of %s", ErrDurationTooLong, duration.Format(d), duration.Format(limit))
	}
	return d, nil
}

// TimeoutLimit returns the strictest positive limit among the guild
// override, the global setting and Discord's own cap.
func TimeoutLimit(settings model.Settings, guild model.GuildConfig) time.Duration {
	limit := DiscordTimeoutLimit
	for _, l := range []time.Duration{settings.MaxTimeout, guild.MaxTimeout} {
		if l > 0 && l < limit {
			limit = l
		}
	}
	return limit
}

func (s *Service) validate(req Request) error {
	if req.UserID == req.ModeratorID {
		return ErrSelfTarget
	}
	return nil
}

// record stores the moderation record. Failures are logged rather than
// returned because the Discord side has already been applied.
func (s *Service) record(rec model.ModerationRecord) (model.ModerationRecord, bool) {
	stored, err := database.InsertModerationRecord(s.db, rec)
	if err != nil {
		log.Printf("[Moderation] Failed to record %s case %s for user %s: %v", rec.Action, rec.CaseID, rec.UserID, err)
		return rec, false
	}
	return stored, true
}

func (s *Service) newRecord(action string, req Request, d time.Duration, now time.Time) model.ModerationRecord {
	rec := model.ModerationRecord{
		CaseID:      uuid.NewString(),
		GuildID:     req.GuildID,
		UserID:      req.UserID,
		ModeratorID: req.ModeratorID,
		Action:      action,
		RoleID:      req.RoleID,
		DurationMS:  d.Milliseconds(),
		Input:       strings.TrimSpace(req.Input),
		Reason:      req.Reason,
		CreatedAt:   now,
	}
	if d > 0 {
		rec.ExpiresAt = sql.NullTime{Time: now.Add(d), Valid: true}
	}
	return rec
}

// Timeout times a member out for the requested duration.
func (s *Service) Timeout(cfg *model.Config, req Request) (*Result, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	guild, _ := cfg.Guild(req.GuildID)
	d, err := ResolveDuration(req.Input, cfg.Settings.DefaultTimeout, TimeoutLimit(cfg.Settings, guild))
	if err != nil {
		return nil, err
	}

	now := s.now()
	until := now.Add(d)
	if err := s.discord.GuildMemberTimeout(req.GuildID, req.UserID, &until); err != nil {
		return nil, fmt.Errorf("%w: timeout user %s: %w", ErrDiscord, req.UserID, err)
	}

	rec, ok := s.record(s.newRecord(model.ActionTimeout, req, d, now))
	return &Result{Record: rec, Duration: d, Until: until, Recorded: ok}, nil
}

// Untimeout lifts a member's timeout.
func (s *Service) Untimeout(cfg *model.Config, req Request) (*Result, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	if err := s.discord.GuildMemberTimeout(req.GuildID, req.UserID, nil); err != nil {
		return nil, fmt.Errorf("%w: clear timeout for user %s: %w", ErrDiscord, req.UserID, err)
	}

	rec, ok := s.record(s.newRecord(model.ActionUntimeout, req, 0, s.now()))
	return &Result{Record: rec, Recorded: ok}, nil
}

// TempRole grants a role that the role remover takes away once the
// duration has elapsed. A new grant replaces the expiry of an earlier one.
func (s *Service) TempRole(cfg *model.Config, req Request) (*Result, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	if req.RoleID == "" {
		return nil, ErrMissingRole
	}
	d, err := ResolveDuration(req.Input, 0, cfg.Settings.MaxTempRole)
	if err != nil {
		return nil, err
	}

	member, err := s.discord.GuildMember(req.GuildID, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: look up user %s: %w", ErrDiscord, req.UserID, err)
	}
	hadRole := slices.Contains(member.Roles, req.RoleID)

	now := s.now()
	rec := s.newRecord(model.ActionTempRole, req, d, now)
	if err := s.discord.GuildMemberRoleAdd(req.GuildID, req.UserID, req.RoleID); err != nil {
		return nil, fmt.Errorf("%w: add role %s to user %s: %w", ErrDiscord, req.RoleID, req.UserID, err)
	}

	task := model.TimedTask{
		GuildID:  req.GuildID,
		UserID:   req.UserID,
		RoleID:   req.RoleID,
		RemoveAt: now.Add(d),
		CaseID:   rec.CaseID,
	}
	if _, err := database.ReplaceTimedTask(s.db, task); err != nil {
		// Without a stored expiry the role would never be removed. A role the
		// member already held is left in place.
		if !hadRole {
			if rmErr := s.discord.GuildMemberRoleRemove(req.GuildID, req.UserID, req.RoleID); rmErr != nil {
				log.Printf("[Moderation] Failed to roll back role %s for user %s: %v", req.RoleID, req.UserID, rmErr)
			}
		}
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	rec, ok := s.record(rec)
	return &Result{Record: rec, Duration: d, Until: task.RemoveAt, Recorded: ok}, nil
}

// RevokeTempRole removes a temporary role before it expires and cancels its
// pending removal.
func (s *Service) RevokeTempRole(cfg *model.Config, req Request) (*Result, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	if req.RoleID == "" {
		return nil, ErrMissingRole
	}

	if err := s.discord.GuildMemberRoleRemove(req.GuildID, req.UserID, req.RoleID); err != nil {
		return nil, fmt.Errorf("%w: remove role %s from user %s: %w", ErrDiscord, req.RoleID, req.UserID, err)
	}
	if err := database.DeleteTaskByDetails(s.db, req.GuildID, req.UserID, req.RoleID); err != nil {
		// The sweeper would retry a removal that is already done, which is harmless.
		log.Printf("[Moderation] Failed to cancel role removal for user %s: %v", req.UserID, err)
	}

	rec, ok := s.record(s.newRecord(model.ActionRevokeRole, req, 0, s.now()))
	return &Result{Record: rec, Recorded: ok}, nil
}

// Case looks up one moderation record of a guild by its case ID or a
// prefix of it.
func (s *Service) Case(guildID, caseID string) (model.ModerationRecord, error) {
	rec, err := database.GetModerationRecord(s.db, guildID, caseID)
	if errors.Is(err, database.ErrRecordNotFound) || errors.Is(err, database.ErrAmbiguousCase) {
		return rec, err
	}
	if err != nil {
		return rec, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return rec, nil
}

// PendingRoles returns a member's temporary roles that are still to be removed.
func (s *Service) PendingRoles(guildID, userID string) ([]model.TimedTask, error) {
	tasks, err := database.GetTasksForUser(s.db, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return tasks, nil
}

// History returns the most recent moderation records for a member.
func (s *Service) History(cfg *model.Config, guildID, userID string) ([]model.ModerationRecord, error) {
	records, err := database.GetModerationHistory(s.db, guildID, userID, cfg.Settings.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return records, nil
}
