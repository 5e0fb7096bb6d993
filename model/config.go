package model

import "time"

// GuildConfig holds the per-guild settings from the settings file.
type GuildConfig struct {
	GuildID          string        `mapstructure:"-"`
	Name             string        `mapstructure:"name"`
	Enable           bool          `mapstructure:"enable"`
	AdminRoleIDs     []string      `mapstructure:"admin_role_ids"`
	ModeratorRoleIDs []string      `mapstructure:"moderator_role_ids"`
	MaxTimeout       time.Duration `mapstructure:"max_timeout"`
	StatsChannelID   string        `mapstructure:"stats_channel_id"`
}

// Settings is the reloadable part of the configuration, read from the
// settings file. Duration fields accept shorthand strings such as "28d".
type Settings struct {
	MaxTimeout     time.Duration          `mapstructure:"max_timeout"`
	DefaultTimeout time.Duration          `mapstructure:"default_timeout"`
	MaxTempRole    time.Duration          `mapstructure:"max_temp_role"`
	HistoryLimit   int                    `mapstructure:"history_limit"`
	StatsInterval  time.Duration          `mapstructure:"stats_interval"`
	StatsWindow    time.Duration          `mapstructure:"stats_window"`
	NotifyMembers  bool                   `mapstructure:"notify_members"`
	Guilds         map[string]GuildConfig `mapstructure:"guilds"`
}

// Config 存储应用程序的配置
type Config struct {
	BotToken          string
	AppID             string
	LogChannelID      string
	DeveloperUserIDs  []string
	DatabasePath      string
	SettingsPath      string
	RoleSweepInterval time.Duration
	RequestTimeout    time.Duration
	Settings          Settings
}

// Guild returns the settings for guildID.
func (c *Config) Guild(guildID string) (GuildConfig, bool) {
	g, ok := c.Settings.Guilds[guildID]
	return g, ok
}

// WithSettings returns a copy of c carrying s.
func (c *Config) WithSettings(s Settings) *Config {
	next := *c
	next.Settings = s
	return &next
}
