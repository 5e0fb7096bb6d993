package commands

import (
	"timeout-helper/commands/defs"

	"github.com/bwmarrin/discordgo"
)

// GenerateCommands returns the slash commands registered in every enabled guild.
func GenerateCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		defs.Timeout,
		defs.Untimeout,
		defs.TempRole,
		defs.UntempRole,
		defs.History,
		defs.Case,
		defs.Duration,
		defs.SystemInfo,
		defs.ReloadConfig,
	}
}
