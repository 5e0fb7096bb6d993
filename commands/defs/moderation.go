package defs

import "github.com/bwmarrin/discordgo"

var durationOption = &discordgo.ApplicationCommandOption{
	Type:        discordgo.ApplicationCommandOptionString,
	Name:        "duration",
	Description: "Duration such as 3d6h, 1w 2d or 90m",
	DescriptionLocalizations: map[discordgo.Locale]string{
		discordgo.ChineseCN: "时长，例如 3d6h、1w 2d 或 90m",
		discordgo.ChineseTW: "時長，例如 3d6h、1w 2d 或 90m",
	},
	MaxLength: 64,
}

var reasonOption = &discordgo.ApplicationCommandOption{
	Type:        discordgo.ApplicationCommandOptionString,
	Name:        "reason",
	Description: "Reason shown in the moderation log",
	DescriptionLocalizations: map[discordgo.Locale]string{
		discordgo.ChineseCN: "记录在日志中的原因",
		discordgo.ChineseTW: "記錄在日誌中的原因",
	},
	MaxLength: 512,
}

func userOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: description,
		Required:    true,
	}
}

func required(opt *discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	c := *opt
	c.Required = true
	return &c
}

var Timeout = &discordgo.ApplicationCommand{
	Name:        "timeout",
	Description: "Time out a member for a shorthand duration",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "禁言",
		discordgo.ChineseTW: "禁言",
	},
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "按指定时长禁言成员",
		discordgo.ChineseTW: "按指定時長禁言成員",
	},
	Options: []*discordgo.ApplicationCommandOption{
		userOption("Member to time out"),
		durationOption,
		reasonOption,
	},
}

var Untimeout = &discordgo.ApplicationCommand{
	Name:        "untimeout",
	Description: "Lift a member's timeout",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "解除禁言",
		discordgo.ChineseTW: "解除禁言",
	},
	Options: []*discordgo.ApplicationCommandOption{
		userOption("Member whose timeout to lift"),
		reasonOption,
	},
}

var TempRole = &discordgo.ApplicationCommand{
	Name:        "temprole",
	Description: "Give a member a role that is removed after a duration",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "临时身份组",
		discordgo.ChineseTW: "臨時身份組",
	},
	Options: []*discordgo.ApplicationCommandOption{
		userOption("Member to receive the role"),
		{
			Type:        discordgo.ApplicationCommandOptionRole,
			Name:        "role",
			Description: "Role to grant",
			Required:    true,
		},
		required(durationOption),
		reasonOption,
	},
}

var History = &discordgo.ApplicationCommand{
	Name:        "history",
	Description: "Show a member's moderation history",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "处罚记录",
		discordgo.ChineseTW: "處罰記錄",
	},
	Options: []*discordgo.ApplicationCommandOption{
		userOption("Member to look up"),
	},
}

var UntempRole = &discordgo.ApplicationCommand{
	Name:        "untemprole",
	Description: "Remove a temporary role before it expires",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "移除临时身份组",
		discordgo.ChineseTW: "移除臨時身份組",
	},
	Options: []*discordgo.ApplicationCommandOption{
		userOption("Member holding the role"),
		{
			Type:        discordgo.ApplicationCommandOptionRole,
			Name:        "role",
			Description: "Role to remove",
			Required:    true,
		},
		reasonOption,
	},
}

var Case = &discordgo.ApplicationCommand{
	Name:        "case",
	Description: "Look up a moderation case by its ID",
	NameLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "案件",
		discordgo.ChineseTW: "案件",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "id",
			Description: "Case ID, the short form from a reply is enough",
			Required:    true,
			MinLength:   &caseIDMinLength,
			MaxLength:   36,
		},
	},
}

var caseIDMinLength = 4
