package handlers

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"timeout-helper/bot"
	"timeout-helper/utils"
	"timeout-helper/utils/database"
	"timeout-helper/utils/duration"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

var startedAt = time.Now()

func SystemInfoHandler(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	cfg := b.GetConfig()
	if i.Member == nil || i.Member.User == nil {
		utils.SendErrorResponse(s, i, "This command can only be used in a server.")
		return
	}
	guild, _ := cfg.Guild(i.GuildID)
	if utils.CheckPermission(i.Member.Roles, i.Member.User.ID, guild, cfg.DeveloperUserIDs) != utils.DeveloperPermission {
		utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
		return
	}

	cpuCount, _ := cpu.Counts(true)
	cpuUsage := "n/a"
	if cpuPercent, err := cpu.Percent(0, false); err == nil && len(cpuPercent) > 0 {
		cpuUsage = fmt.Sprintf("%.1f%%", cpuPercent[0])
	}

	memory := "n/a"
	if vm, err := mem.VirtualMemory(); err == nil {
		memory = fmt.Sprintf("%.1f%% (%d MB / %d MB)", vm.UsedPercent, vm.Used/1024/1024, vm.Total/1024/1024)
	}

	platform, kernel := "n/a", "n/a"
	if hostInfo, err := host.Info(); err == nil {
		platform = fmt.Sprintf("%s %s", hostInfo.Platform, hostInfo.PlatformVersion)
		kernel = hostInfo.KernelVersion
	}

	dbSize := "n/a"
	if info, err := os.Stat(cfg.DatabasePath); err == nil {
		dbSize = fmt.Sprintf("%.2f MB", float64(info.Size())/1024/1024)
	}

	pending, err := database.CountTimedTasks(b.GetDB())
	if err != nil {
		log.Printf("Failed to count timed tasks: %v", err)
	}

	embed := &discordgo.MessageEmbed{
		Title: "System info",
		Color: 0x5865F2, // Discord Blurple
		Fields: []*discordgo.MessageEmbedField{
			{Name: "💻 OS", Value: platform, Inline: true},
			{Name: "🔧 Kernel", Value: kernel, Inline: true},
			{Name: "🐹 Go", Value: runtime.Version(), Inline: true},
			{Name: "🔼 CPUs", Value: fmt.Sprintf("%d", cpuCount), Inline: true},
			{Name: "🔥 CPU usage", Value: cpuUsage, Inline: true},
			{Name: "🧠 Memory", Value: memory, Inline: true},
			{Name: "🗃️ Database", Value: dbSize, Inline: true},
			{Name: "⏳ Pending role removals", Value: fmt.Sprintf("%d", pending), Inline: true},
			{Name: "⏱️ WebSocket latency", Value: s.HeartbeatLatency().String(), Inline: true},
			{Name: "🚀 Goroutines", Value: fmt.Sprintf("%d", runtime.NumGoroutine()), Inline: true},
			{Name: "🕰️ Uptime", Value: duration.Shorthand(time.Since(startedAt)), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("System monitor · %s", time.Now().Format("15:04")),
		},
	}

	utils.SendEmbedResponse(s, i, embed, true)
}
