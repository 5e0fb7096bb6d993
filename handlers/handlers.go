package handlers

import (
	"log"

	"timeout-helper/bot"
	"timeout-helper/handlers/admin"
	"timeout-helper/handlers/moderation"
	"timeout-helper/utils"

	"github.com/bwmarrin/discordgo"
)

func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)
	addHandlers(b)
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"timeout": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			moderation.HandleTimeout(s, i, b)
		},
		"untimeout": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			moderation.HandleUntimeout(s, i, b)
		},
		"temprole": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			moderation.HandleTempRole(s, i, b)
		},
		"untemprole": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			moderation.HandleUntempRole(s, i, b)
		},
		"history": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			moderation.HandleHistory(s, i, b)
		},
		"case": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			moderation.HandleCase(s, i, b)
		},
		"duration": moderation.HandleDurationPreview,
		"system-info": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			SystemInfoHandler(s, i, b)
		},
		"reload-config": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			admin.HandleReloadConfig(s, i, b)
		},
	}
}

func addHandlers(b *bot.Bot) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", r.User.Username, r.User.Discriminator)
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		name := i.ApplicationCommandData().Name
		h, ok := b.CommandHandlers[name]
		if !ok {
			log.Printf("No handler registered for command %q", name)
			return
		}
		if guild, ok := b.GetConfig().Guild(i.GuildID); !ok || !guild.Enable {
			utils.SendErrorResponse(s, i, "This bot is not enabled in this server.")
			return
		}
		h(s, i)
	})
}
