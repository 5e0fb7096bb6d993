package defs

import "github.com/bwmarrin/discordgo"

var Duration = &discordgo.ApplicationCommand{
	Name:        "duration",
	Description: "Check how a duration string is understood",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "时长预览",
		discordgo.ChineseTW: "時長預覽",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "text",
			Description: "Duration such as 1y 1mo 1w 1d 1h 1m 1s 1ms",
			Required:    true,
			MaxLength:   64,
		},
	},
}

var SystemInfo = &discordgo.ApplicationCommand{
	Name:        "system-info",
	Description: "Display bot and system status information",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "系统信息",
		discordgo.ChineseTW: "系統資訊",
	},
}

var ReloadConfig = &discordgo.ApplicationCommand{
	Name:        "reload-config",
	Description: "Reload the bot configuration",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "重载配置",
		discordgo.ChineseTW: "重載配置",
	},
}
