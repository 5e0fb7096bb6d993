package moderation

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"timeout-helper/model"
	"timeout-helper/utils"
	"timeout-helper/utils/database"
	"timeout-helper/utils/duration"

	"github.com/bwmarrin/discordgo"
)

// UsageHint explains the duration grammar to users.
const UsageHint = "Use forms like `3d6h`, `1w 2d` or `90m`. Units: `y` (365d), `mo` (30d), `w`, `d`, `h`, `m`, `s`, `ms`."

const (
	colorTimeout = 0xE67E22
	colorLift    = 0x2ECC71
	colorRole    = 0x5865F2
)

type options map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionMap(i *discordgo.InteractionCreate) options {
	opts := make(options)
	for _, opt := range i.ApplicationCommandData().Options {
		opts[opt.Name] = opt
	}
	return opts
}

func (o options) str(name string) string {
	if opt, ok := o[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func (o options) user(name string) string {
	if opt, ok := o[name]; ok {
		if u := opt.UserValue(nil); u != nil {
			return u.ID
		}
	}
	return ""
}

func (o options) role(name, guildID string) string {
	if opt, ok := o[name]; ok {
		if r := opt.RoleValue(nil, guildID); r != nil {
			return r.ID
		}
	}
	return ""
}

// authorize replies with an error and returns false unless the invoking
// member holds at least the required level.
func authorize(s utils.InteractionResponder, i *discordgo.InteractionCreate, cfg *model.Config, required string) bool {
	if i.Member == nil || i.Member.User == nil {
		utils.SendErrorResponse(s, i, "This command can only be used in a server.")
		return false
	}
	guild, _ := cfg.Guild(i.GuildID)
	level := utils.CheckPermission(i.Member.Roles, i.Member.User.ID, guild, cfg.DeveloperUserIDs)
	if !utils.HasPermission(level, required) {
		utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
		return false
	}
	return true
}

func requestFrom(i *discordgo.InteractionCreate, opts options) Request {
	return Request{
		GuildID:     i.GuildID,
		UserID:      opts.user("user"),
		ModeratorID: i.Member.User.ID,
		RoleID:      opts.role("role", i.GuildID),
		Input:       opts.str("duration"),
		Reason:      strings.TrimSpace(opts.str("reason")),
	}
}

// lockMember serialises actions on one member so two moderators cannot
// race each other.
func lockMember(s utils.InteractionResponder, i *discordgo.InteractionCreate, req Request) bool {
	if utils.CheckAndSetMemberLock(req.GuildID, req.UserID) {
		return true
	}
	utils.SendErrorResponse(s, i, "Another moderation action on this member is in progress, try again in a moment.")
	return false
}

// HandleTimeout handles /timeout.
func HandleTimeout(s *discordgo.Session, i *discordgo.InteractionCreate, b model.Bot) {
	cfg := b.GetConfig()
	if !authorize(s, i, cfg, utils.ModeratorPermission) {
		return
	}
	req := requestFrom(i, optionMap(i))
	if !lockMember(s, i, req) {
		return
	}
	defer utils.ReleaseMemberLock(req.GuildID, req.UserID)
	result, err := NewService(s, b.GetDB()).Timeout(cfg, req)
	respond(s, i, cfg, req, result, err)
}

// HandleUntimeout handles /untimeout.
func HandleUntimeout(s *discordgo.Session, i *discordgo.InteractionCreate, b model.Bot) {
	cfg := b.GetConfig()
	if !authorize(s, i, cfg, utils.ModeratorPermission) {
		return
	}
	req := requestFrom(i, optionMap(i))
	if !lockMember(s, i, req) {
		return
	}
	defer utils.ReleaseMemberLock(req.GuildID, req.UserID)
	result, err := NewService(s, b.GetDB()).Untimeout(cfg, req)
	respond(s, i, cfg, req, result, err)
}

// HandleTempRole handles /temprole.
func HandleTempRole(s *discordgo.Session, i *discordgo.InteractionCreate, b model.Bot) {
	cfg := b.GetConfig()
	if !authorize(s, i, cfg, utils.ModeratorPermission) {
		return
	}
	req := requestFrom(i, optionMap(i))
	if !lockMember(s, i, req) {
		return
	}
	defer utils.ReleaseMemberLock(req.GuildID, req.UserID)
	result, err := NewService(s, b.GetDB()).TempRole(cfg, req)
	respond(s, i, cfg, req, result, err)
}

// HandleUntempRole handles /untemprole.
func HandleUntempRole(s *discordgo.Session, i *discordgo.InteractionCreate, b model.Bot) {
	cfg := b.GetConfig()
	if !authorize(s, i, cfg, utils.ModeratorPermission) {
		return
	}
	req := requestFrom(i, optionMap(i))
	if !lockMember(s, i, req) {
		return
	}
	defer utils.ReleaseMemberLock(req.GuildID, req.UserID)
	result, err := NewService(s, b.GetDB()).RevokeTempRole(cfg, req)
	respond(s, i, cfg, req, result, err)
}

// HandleCase handles /case.
func HandleCase(s *discordgo.Session, i *discordgo.InteractionCreate, b model.Bot) {
	cfg := b.GetConfig()
	if !authorize(s, i, cfg, utils.ModeratorPermission) {
		return
	}
	caseID := optionMap(i).str("id")
	rec, err := NewService(s, b.GetDB()).Case(i.GuildID, caseID)
	if err != nil {
		if errors.Is(err, ErrStorage) {
			log.Printf("[Moderation] Case lookup %q failed: %v", caseID, err)
		}
		utils.SendErrorResponse(s, i, UserMessage(err))
		return
	}
	utils.SendEmbedResponse(s, i, CaseEmbed(rec), true)
}

// HandleHistory handles /history.
func HandleHistory(s *discordgo.Session, i *discordgo.InteractionCreate, b model.Bot) {
	cfg := b.GetConfig()
	if !authorize(s, i, cfg, utils.ModeratorPermission) {
		return
	}
	userID := optionMap(i).user("user")
	svc := NewService(s, b.GetDB())
	records, err := svc.History(cfg, i.GuildID, userID)
	if err != nil {
		log.Printf("[Moderation] History lookup for user %s failed: %v", userID, err)
		utils.SendErrorResponse(s, i, UserMessage(err))
		return
	}
	pending, err := svc.PendingRoles(i.GuildID, userID)
	if err != nil {
		log.Printf("[Moderation] Pending role lookup for user %s failed: %v", userID, err)
	}
	utils.SendEmbedResponse(s, i, HistoryEmbed(userID, records, pending), true)
}

// HandleDurationPreview handles /duration, which shows how a duration
// string would be understood without applying anything.
func HandleDurationPreview(s *discordgo.Session, i *discordgo.InteractionCreate) {
	msg, ok := PreviewMessage(optionMap(i).str("text"))
	if !ok {
		utils.SendErrorResponse(s, i, msg)
		return
	}
	utils.SendSimpleResponse(s, i, msg)
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, cfg *model.Config, req Request, result *Result, err error) {
	if err != nil {
		if errors.Is(err, ErrDiscord) || errors.Is(err, ErrStorage) {
			command := i.ApplicationCommandData().Name
			log.Printf("[Moderation] Command %s by %s failed: %v", command, req.ModeratorID, err)
			details := fmt.Sprintf("/%s by <@%s> on <@%s>: %v", command, req.ModeratorID, req.UserID, err)
			if logErr := utils.LogError(s, cfg.LogChannelID, "Moderation", command, details); logErr != nil {
				log.Printf("[Moderation] Failed to send log: %v", logErr)
			}
		}
		utils.SendErrorResponse(s, i, UserMessage(err))
		return
	}

	utils.SendEmbedResponse(s, i, ResultEmbed(result), false)

	details := fmt.Sprintf("<@%s> %s <@%s>", req.ModeratorID, result.Record.Action, req.UserID)
	if result.Duration > 0 {
		details += " for " + duration.Format(result.Duration)
	}
	if req.Reason != "" {
		details += ": " + req.Reason
	}
	if err := utils.LogInfo(s, cfg.LogChannelID, "Moderation", result.Record.Action, details); err != nil {
		log.Printf("[Moderation] Failed to send log: %v", err)
	}

	if cfg.Settings.NotifyMembers {
		guild, _ := cfg.Guild(req.GuildID)
		if err := utils.SendPrivateEmbedMessage(s, req.UserID, NoticeEmbed(guild.Name, result)); err != nil {
			log.Printf("[Moderation] Could not notify member: %v", err)
		}
	}
}

// UserMessage turns a moderation error into a reply for the moderator.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, duration.ErrInvalidDuration):
		return "That is not a valid duration. " + UsageHint
	case errors.Is(err, ErrDurationRequired):
		return "A duration is required. " + UsageHint
	case errors.Is(err, ErrNotPositive), errors.Is(err, ErrDurationTooLong):
		return capitalize(err.Error()) + "."
	case errors.Is(err, ErrSelfTarget):
		return "You cannot use this command on yourself."
	case errors.Is(err, ErrMissingRole):
		return "Please choose a role."
	case errors.Is(err, database.ErrRecordNotFound):
		return "No case with that ID in this server."
	case errors.Is(err, database.ErrAmbiguousCase):
		return "That case ID matches several cases, please give more of it."
	case errors.Is(err, ErrDiscord):
		return "Discord rejected the request. Check the bot's role position and permissions."
	default:
		return "Something went wrong, please try again later."
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// PreviewMessage describes how text parses. The boolean is false when text
// is not a valid duration, in which case the message explains the grammar.
func PreviewMessage(text string) (string, bool) {
	d, ok := duration.TryParse(text)
	if !ok {
		return fmt.Sprintf("`%s` is not a valid duration. %s", strings.TrimSpace(text), UsageHint), false
	}
	return fmt.Sprintf("`%s` → **%s** (`%s`)", strings.TrimSpace(text), duration.Format(d), duration.Shorthand(d)), true
}

func shortCase(caseID string) string {
	if len(caseID) > 8 {
		return caseID[:8]
	}
	return caseID
}

// ResultEmbed renders a successful moderation action.
func ResultEmbed(result *Result) *discordgo.MessageEmbed {
	rec := result.Record
	embed := &discordgo.MessageEmbed{
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Member", Value: fmt.Sprintf("<@%s>", rec.UserID), Inline: true},
			{Name: "Moderator", Value: fmt.Sprintf("<@%s>", rec.ModeratorID), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Case " + shortCase(rec.CaseID)},
	}

	switch rec.Action {
	case model.ActionTimeout:
		embed.Title = "Member timed out"
		embed.Color = colorTimeout
	case model.ActionUntimeout:
		embed.Title = "Timeout lifted"
		embed.Color = colorLift
	case model.ActionTempRole:
		embed.Title = "Temporary role granted"
		embed.Color = colorRole
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Role", Value: fmt.Sprintf("<@&%s>", rec.RoleID), Inline: true})
	case model.ActionRevokeRole:
		embed.Title = "Temporary role revoked"
		embed.Color = colorLift
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Role", Value: fmt.Sprintf("<@&%s>", rec.RoleID), Inline: true})
	}

	if result.Duration > 0 {
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "Duration", Value: fmt.Sprintf("%s (`%s`)", duration.Format(result.Duration), duration.Shorthand(result.Duration)), Inline: true},
			&discordgo.MessageEmbedField{Name: "Ends", Value: fmt.Sprintf("<t:%d:f> (<t:%d:R>)", result.Until.Unix(), result.Until.Unix()), Inline: true},
		)
	}
	if rec.Reason != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Reason", Value: rec.Reason})
	}
	if !result.Recorded {
		embed.Footer.Text += " (not recorded)"
	}
	return embed
}

// NoticeEmbed is the direct message sent to the member an action applies to.
func NoticeEmbed(guildName string, result *Result) *discordgo.MessageEmbed {
	rec := result.Record
	if guildName == "" {
		guildName = "the server"
	}

	embed := &discordgo.MessageEmbed{
		Footer: &discordgo.MessageEmbedFooter{Text: "Case " + shortCase(rec.CaseID)},
	}
	switch rec.Action {
	case model.ActionTimeout:
		embed.Title = "You have been timed out"
		embed.Color = colorTimeout
		embed.Description = fmt.Sprintf("You were timed out in %s for %s.", guildName, duration.Format(result.Duration))
	case model.ActionUntimeout:
		embed.Title = "Your timeout was lifted"
		embed.Color = colorLift
		embed.Description = fmt.Sprintf("Your timeout in %s has been lifted.", guildName)
	case model.ActionTempRole:
		embed.Title = "You were given a temporary role"
		embed.Color = colorRole
		embed.Description = fmt.Sprintf("You were given a role in %s for %s.", guildName, duration.Format(result.Duration))
	case model.ActionRevokeRole:
		embed.Title = "A temporary role was removed"
		embed.Color = colorLift
		embed.Description = fmt.Sprintf("A temporary role you held in %s was removed early.", guildName)
	}
	if result.Duration > 0 {
		embed.Description += fmt.Sprintf(" It ends <t:%d:R>.", result.Until.Unix())
	}
	if rec.Reason != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Reason", Value: rec.Reason})
	}
	return embed
}

// HistoryEmbed renders a member's moderation history and the temporary
// roles still waiting to be removed.
func HistoryEmbed(userID string, records []model.ModerationRecord, pending []model.TimedTask) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Moderation history",
		Color: colorRole,
	}
	if len(records) == 0 {
		embed.Description = fmt.Sprintf("<@%s> has no moderation history.", userID)
	} else {
		var b strings.Builder
		fmt.Fprintf(&b, "<@%s>\n", userID)
		for _, rec := range records {
			fmt.Fprintf(&b, "`%s` **%s**", shortCase(rec.CaseID), rec.Action)
			if d := rec.Duration(); d > 0 {
				fmt.Fprintf(&b, " %s", duration.Format(d))
			}
			fmt.Fprintf(&b, " by <@%s> <t:%d:R>", rec.ModeratorID, rec.CreatedAt.Unix())
			if rec.Reason != "" {
				fmt.Fprintf(&b, " - %s", rec.Reason)
			}
			b.WriteByte('\n')
		}
		embed.Description = b.String()
	}

	if len(pending) > 0 {
		var b strings.Builder
		for _, task := range pending {
			fmt.Fprintf(&b, "<@&%s> removed <t:%d:R>\n", task.RoleID, task.RemoveAt.Unix())
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Temporary roles", Value: b.String()})
	}
	return embed
}

// CaseEmbed renders a single moderation record.
func CaseEmbed(rec model.ModerationRecord) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Case " + shortCase(rec.CaseID),
		Color: colorRole,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Action", Value: rec.Action, Inline: true},
			{Name: "Member", Value: fmt.Sprintf("<@%s>", rec.UserID), Inline: true},
			{Name: "Moderator", Value: fmt.Sprintf("<@%s>", rec.ModeratorID), Inline: true},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: rec.CaseID},
		Timestamp: rec.CreatedAt.Format(time.RFC3339),
	}
	if rec.RoleID != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Role", Value: fmt.Sprintf("<@&%s>", rec.RoleID), Inline: true})
	}
	if d := rec.Duration(); d > 0 {
		value := fmt.Sprintf("%s (`%s`)", duration.Format(d), duration.Shorthand(d))
		if rec.Input != "" {
			value += fmt.Sprintf(" from `%s`", rec.Input)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Duration", Value: value, Inline: true})
	}
	if rec.ExpiresAt.Valid {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Ends", Value: fmt.Sprintf("<t:%d:f>", rec.ExpiresAt.Time.Unix()), Inline: true})
	}
	if rec.Reason != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Reason", Value: rec.Reason})
	}
	return embed
}
