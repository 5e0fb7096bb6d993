package tasks

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"timeout-helper/model"
	"timeout-helper/utils"
	"timeout-helper/utils/database"
	"timeout-helper/utils/duration"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

var actionLabels = []struct {
	action string
	label  string
}{
	{model.ActionTimeout, "Timeouts"},
	{model.ActionUntimeout, "Lifted"},
	{model.ActionTempRole, "Temporary roles"},
	{model.ActionRevokeRole, "Temporary roles revoked"},
}

// GenerateModerationStatsEmbed summarises the moderation log of one guild
// over the window ending at now.
func GenerateModerationStatsEmbed(db *sqlx.DB, guildID string, window time.Duration, now time.Time) (*discordgo.MessageEmbed, error) {
	since := now.Add(-window)
	stats, err := database.GetModeratorStats(db, guildID, since)
	if err != nil {
		return nil, err
	}
	actions, err := database.GetActionCounts(db, guildID, since)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, n := range actions {
		total += n
	}

	var sortedModerators []string
	for moderatorID := range stats {
		sortedModerators = append(sortedModerators, moderatorID)
	}
	sort.Slice(sortedModerators, func(i, j int) bool {
		if stats[sortedModerators[i]] != stats[sortedModerators[j]] {
			return stats[sortedModerators[i]] > stats[sortedModerators[j]]
		}
		return sortedModerators[i] < sortedModerators[j]
	})

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("### Last %s\n", duration.Format(window)))
	builder.WriteString(fmt.Sprintf("**Total: %d**\n", total))
	for _, a := range actionLabels {
		builder.WriteString(fmt.Sprintf("%s: %d\n", a.label, actions[a.action]))
	}
	if len(sortedModerators) > 0 {
		builder.WriteString("\n**Moderators:**\n")
	}
	for i, moderatorID := range sortedModerators {
		builder.WriteString(fmt.Sprintf("%d. <@%s>: %d\n", i+1, moderatorID, stats[moderatorID]))
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Moderation report",
		Description: builder.String(),
		Timestamp:   now.Format(time.RFC3339),
		Color:       0x00ff00,
	}
	return embed, nil
}

// PostModerationStats sends the report for every enabled guild that has a
// stats channel configured.
func PostModerationStats(s utils.MessageSender, db *sqlx.DB, cfg *model.Config, now time.Time) {
	window := cfg.Settings.StatsWindow
	if window <= 0 {
		return
	}
	for _, guild := range cfg.Settings.Guilds {
		if !guild.Enable || guild.StatsChannelID == "" {
			continue
		}
		embed, err := GenerateModerationStatsEmbed(db, guild.GuildID, window, now)
		if err != nil {
			log.Printf("Failed to generate moderation stats embed for guild %s: %v", guild.GuildID, err)
			continue
		}
		if _, err := s.ChannelMessageSendEmbed(guild.StatsChannelID, embed); err != nil {
			log.Printf("Failed to send moderation stats message to channel %s: %v", guild.StatsChannelID, err)
		}
	}
}
