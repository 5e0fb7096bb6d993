package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"reflect"
	"strings"
	"time"

	"timeout-helper/model"
	"timeout-helper/utils/duration"

	"github.com/caarlos0/env/v11"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// environment is the part of the configuration that comes from the process
// environment or a .env file.
type environment struct {
	BotToken          string        `env:"BOT_TOKEN,required,notEmpty"`
	AppID             string        `env:"APP_ID,required,notEmpty"`
	LogChannelID      string        `env:"LOG_CHANNEL_ID"`
	DeveloperUserIDs  []string      `env:"DEVELOPER_USER_IDS" envSeparator:","`
	DatabasePath      string        `env:"DATABASE_PATH" envDefault:"data/timeout_helper.db"`
	SettingsPath      string        `env:"SETTINGS_PATH" envDefault:"data/settings.yaml"`
	RoleSweepInterval time.Duration `env:"ROLE_SWEEP_INTERVAL" envDefault:"5m"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT" envDefault:"1m"`
}

var durationType = reflect.TypeOf(time.Duration(0))

// Load loads the configuration from environment variables and the settings file.
func Load() (*model.Config, error) {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	var e environment
	err := env.ParseWithOptions(&e, env.Options{
		FuncMap: map[reflect.Type]env.ParserFunc{
			durationType: func(v string) (interface{}, error) {
				return duration.Parse(v)
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if e.RoleSweepInterval <= 0 {
		return nil, fmt.Errorf("parse env: ROLE_SWEEP_INTERVAL must be positive, got %s", e.RoleSweepInterval)
	}
	if e.LogChannelID == "" {
		log.Println("Warning: LOG_CHANNEL_ID not set, logging will be disabled")
	}

	settings, err := LoadSettings(e.SettingsPath)
	if err != nil {
		return nil, err
	}

	return &model.Config{
		BotToken:          e.BotToken,
		AppID:             e.AppID,
		LogChannelID:      e.LogChannelID,
		DeveloperUserIDs:  compact(e.DeveloperUserIDs),
		DatabasePath:      e.DatabasePath,
		SettingsPath:      e.SettingsPath,
		RoleSweepInterval: e.RoleSweepInterval,
		RequestTimeout:    e.RequestTimeout,
		Settings:          settings,
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("max_timeout", "28d")
	v.SetDefault("default_timeout", "1h")
	v.SetDefault("max_temp_role", "1y")
	v.SetDefault("history_limit", 10)
	v.SetDefault("stats_interval", "1d")
	v.SetDefault("stats_window", "1d")
	v.SetDefault("notify_members", true)
}

// LoadSettings reads the settings file at path. A missing file yields the
// defaults; any other read or decode failure is returned.
func LoadSettings(path string) (model.Settings, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return model.Settings{}, fmt.Errorf("read settings: %w", err)
		}
		log.Printf("Warning: Settings file not found at %s, using defaults.", path)
	}
	return decodeSettings(v)
}

func decodeSettings(v *viper.Viper) (model.Settings, error) {
	var s model.Settings
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		ShorthandDurationHook(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&s, hook); err != nil {
		return model.Settings{}, fmt.Errorf("decode settings: %w", err)
	}

	if s.HistoryLimit <= 0 {
		s.HistoryLimit = 10
	}
	for name, d := range map[string]time.Duration{
		"max_timeout":     s.MaxTimeout,
		"default_timeout": s.DefaultTimeout,
		"max_temp_role":   s.MaxTempRole,
		"stats_interval":  s.StatsInterval,
		"stats_window":    s.StatsWindow,
	} {
		if d < 0 {
			return model.Settings{}, fmt.Errorf("decode settings: %s must not be negative", name)
		}
	}

	guilds := make(map[string]model.GuildConfig, len(s.Guilds))
	for id, g := range s.Guilds {
		g.GuildID = id
		g.AdminRoleIDs = compact(g.AdminRoleIDs)
		g.ModeratorRoleIDs = compact(g.ModeratorRoleIDs)
		guilds[id] = g
	}
	s.Guilds = guilds
	return s, nil
}

// ShorthandDurationHook decodes strings such as "1w 2d" into time.Duration.
// Bare numbers are rejected for duration fields since they carry no unit.
func ShorthandDurationHook() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t != durationType {
			return data, nil
		}
		switch f.Kind() {
		case reflect.String:
			return duration.Parse(reflect.ValueOf(data).String())
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			return nil, fmt.Errorf("%w: %v has no unit, write it as a string such as \"1h\"", duration.ErrInvalidDuration, data)
		}
		return data, nil
	}
}

func compact(ids []string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}
