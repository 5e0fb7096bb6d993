package admin

import (
	"fmt"
	"log"

	"timeout-helper/bot"
	"timeout-helper/utils"

	"github.com/bwmarrin/discordgo"
)

func HandleReloadConfig(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	cfg := b.GetConfig()
	if i.Member == nil || i.Member.User == nil {
		utils.SendErrorResponse(s, i, "This command can only be used in a server.")
		return
	}
	guild, _ := cfg.Guild(i.GuildID)
	permissionLevel := utils.CheckPermission(i.Member.Roles, i.Member.User.ID, guild, cfg.DeveloperUserIDs)
	if !utils.HasPermission(permissionLevel, utils.AdminPermission) {
		utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
		return
	}

	if err := b.ReloadConfig(); err != nil {
		utils.SendErrorResponse(s, i, fmt.Sprintf("Failed to reload configuration: %v", err))
		return
	}
	if err := utils.LogInfo(s, b.GetConfig().LogChannelID, "Config", "Reload", fmt.Sprintf("Reloaded by <@%s>", i.Member.User.ID)); err != nil {
		log.Printf("Failed to send reload log: %v", err)
	}
	utils.SendSimpleResponse(s, i, "✅ Configuration reloaded.")
}
