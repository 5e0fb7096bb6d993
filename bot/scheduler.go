package bot

import (
	"log"
	"os"
	"sync"
	"time"

	"timeout-helper/config"
	"timeout-helper/model"
	"timeout-helper/scanner"
	"timeout-helper/tasks"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

// BotProvider defines the methods the scheduler needs from the Bot.
type BotProvider interface {
	GetConfig() *model.Config
	GetDB() *sqlx.DB
	GetSession() *discordgo.Session
	UpdateSettings(model.Settings)
}

// Scheduler manages all background tasks.
type Scheduler struct {
	bot  BotProvider
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewScheduler creates a new scheduler.
func NewScheduler(bot BotProvider) *Scheduler {
	return &Scheduler{
		bot:  bot,
		done: make(chan struct{}),
	}
}

// Start begins all background tasks.
func (s *Scheduler) Start() {
	cfg := s.bot.GetConfig()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		scanner.RunRoleRemover(s.bot.GetSession(), s.bot.GetDB(), cfg.RoleSweepInterval, cfg.LogChannelID, s.done)
	}()

	if cfg.Settings.StatsInterval > 0 {
		s.wg.Add(1)
		go s.startStatsReports(cfg.Settings.StatsInterval)
	}

	if _, err := os.Stat(cfg.SettingsPath); err == nil {
		if err := config.WatchSettings(cfg.SettingsPath, s.bot.UpdateSettings, s.done); err != nil {
			log.Printf("[Config] Could not watch %s: %v", cfg.SettingsPath, err)
		}
	}
}

// Stop terminates the background goroutines and waits for them. The
// settings watcher stops applying changes but its goroutine lives on.
func (s *Scheduler) Stop() {
	s.once.Do(func() {
		log.Println("Stopping scheduler...")
		close(s.done)
		s.wg.Wait()
		log.Println("Scheduler stopped.")
	})
}

func (s *Scheduler) startStatsReports(interval time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			log.Println("Posting moderation stats...")
			tasks.PostModerationStats(s.bot.GetSession(), s.bot.GetDB(), s.bot.GetConfig(), time.Now())
		case <-s.done:
			return
		}
	}
}
