package bot

import (
	"fmt"
	"log"
	"sync/atomic"

	"timeout-helper/commands"
	"timeout-helper/config"
	"timeout-helper/model"
	"timeout-helper/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

type Bot struct {
	Session         *discordgo.Session
	config          atomic.Value // *model.Config
	CommandHandlers map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
	DB              *sqlx.DB
	scheduler       *Scheduler
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

func (b *Bot) GetDB() *sqlx.DB {
	return b.DB
}

func (b *Bot) GetSession() *discordgo.Session {
	return b.Session
}

func New(cfg *model.Config, db *sqlx.DB) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers
	dg.Client = utils.NewHTTPClient(cfg.RequestTimeout)

	b := &Bot{
		Session: dg,
		DB:      db,
	}
	b.config.Store(cfg)
	b.scheduler = NewScheduler(b)
	return b, nil
}

func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	b.scheduler.Stop()
	if err := b.Session.Close(); err != nil {
		log.Printf("Error closing session: %v", err)
	}
	if err := b.DB.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}
}

// CommandRegistrar is the part of *discordgo.Session used to register commands.
type CommandRegistrar interface {
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// RefreshCommands overwrites the guild's slash commands with the current set.
func RefreshCommands(r CommandRegistrar, cfg *model.Config, guildID string) error {
	guild, ok := cfg.Guild(guildID)
	if !ok {
		return fmt.Errorf("could not find guild config for guild: %s", guildID)
	}

	cmds := commands.GenerateCommands()
	log.Printf("Registering %d commands for guild %s (%s)...", len(cmds), guild.GuildID, guild.Name)
	if _, err := r.ApplicationCommandBulkOverwrite(cfg.AppID, guild.GuildID, cmds); err != nil {
		return fmt.Errorf("cannot update commands for guild '%s': %w", guild.GuildID, err)
	}
	return nil
}

// RefreshEnabledGuilds registers commands in every enabled guild, one at a
// time. It returns how many guilds failed.
func RefreshEnabledGuilds(r CommandRegistrar, cfg *model.Config) int {
	failed := 0
	for _, guild := range cfg.Settings.Guilds {
		if !guild.Enable {
			continue
		}
		if err := RefreshCommands(r, cfg, guild.GuildID); err != nil {
			log.Println(err)
			failed++
		}
	}
	return failed
}

// UpdateSettings swaps in new settings while keeping the environment part
// of the configuration.
func (b *Bot) UpdateSettings(s model.Settings) {
	b.config.Store(b.GetConfig().WithSettings(s))
}

func (b *Bot) ReloadConfig() error {
	log.Println("Reloading configuration...")
	newCfg, err := config.Load()
	if err != nil {
		log.Printf("Error reloading config: %v", err)
		return err
	}

	b.config.Store(newCfg)
	log.Println("Configuration reloaded successfully.")

	log.Println("Refreshing commands for enabled guilds...")
	if failed := RefreshEnabledGuilds(b.Session, newCfg); failed > 0 {
		return fmt.Errorf("configuration reloaded but commands failed to refresh in %d guild(s)", failed)
	}
	return nil
}
