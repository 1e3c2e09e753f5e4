package notify

import (
	"context"
	"fmt"
	"os"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/msmahdinejad/smart-monitoring-system/internal/config"
	"github.com/msmahdinejad/smart-monitoring-system/internal/models"
	"github.com/msmahdinejad/smart-monitoring-system/internal/monitor"
)

// HistorySource lists recent monitoring records for the /history command.
type HistorySource interface {
	List(ctx context.Context, limit int) ([]models.Record, error)
}

// Bot serves remote control commands over Telegram long polling:
// /status, /capture, /stop and /history.
type Bot struct {
	telegram   *Telegram
	monitor    *monitor.Service
	history    HistorySource
	authorized map[int64]bool
}

func NewBot(cfg *config.Config, telegram *Telegram, mon *monitor.Service, history HistorySource) *Bot {
	authorized := make(map[int64]bool, len(cfg.AuthorizedChats)+1)
	if cfg.TelegramChatID != 0 {
		authorized[cfg.TelegramChatID] = true
	}
	for _, id := range cfg.AuthorizedChats {
		authorized[id] = true
	}

	return &Bot{
		telegram:   telegram,
		monitor:    mon,
		history:    history,
		authorized: authorized,
	}
}

// Run polls for commands until the context is cancelled. No-op when the
// underlying bot is disabled.
func (b *Bot) Run(ctx context.Context) {
	if !b.telegram.Enabled() {
		return
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.telegram.bot.GetUpdatesChan(u)

	log.Info().Msg("Telegram command bot started")
	for {
		select {
		case <-ctx.Done():
			b.telegram.bot.StopReceivingUpdates()
			log.Info().Msg("Telegram command bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			b.handleCommand(ctx, update.Message)
		}
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if !b.authorized[chatID] {
		log.Warn().Int64("chat_id", chatID).Str("command", msg.Command()).Msg("Unauthorized bot command")
		b.reply(chatID, "⛔ You are not authorized to use this bot.")
		return
	}

	log.Info().Int64("chat_id", chatID).Str("command", msg.Command()).Msg("Bot command received")

	switch msg.Command() {
	case "status":
		b.handleStatus(chatID)
	case "capture":
		b.handleCapture(ctx, chatID)
	case "stop":
		b.handleStop(chatID)
	case "history":
		b.handleHistory(ctx, chatID)
	case "start", "help":
		b.reply(chatID, "Commands:\n/status - monitoring state\n/capture - take a snapshot\n/stop - stop monitoring\n/history - recent results")
	default:
		b.reply(chatID, "Unknown command. Try /help.")
	}
}

func (b *Bot) handleStatus(chatID int64) {
	state := b.monitor.State()
	if !state.Active {
		b.reply(chatID, "💤 Monitoring is <b>inactive</b>.")
		return
	}
	b.reply(chatID, fmt.Sprintf("🟢 Monitoring is <b>active</b>.\n🔗 Session: <code>%s</code>", state.SessionID))
}

func (b *Bot) handleCapture(ctx context.Context, chatID int64) {
	captureCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	image, err := b.monitor.CaptureNow(captureCtx)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("❌ Capture failed: %v", err))
		return
	}

	path := fmt.Sprintf("%s/manual_%s.jpg", os.TempDir(), time.Now().Format("20060102_150405"))
	if err := os.WriteFile(path, image, 0644); err != nil {
		b.reply(chatID, "❌ Could not store the captured image.")
		return
	}
	defer os.Remove(path)

	b.telegram.SendPhoto(path, fmt.Sprintf("📸 Manual capture\n🕒 %s", time.Now().Format("2006-01-02 15:04:05")), false)
}

func (b *Bot) handleStop(chatID int64) {
	if !b.monitor.State().Active {
		b.reply(chatID, "No active monitoring session to stop.")
		return
	}
	b.monitor.Stop()
	if b.monitor.WaitForInactive(3 * time.Second) {
		b.reply(chatID, "🛑 Monitoring stopped.")
	} else {
		b.reply(chatID, "⏳ Stop requested, monitoring is shutting down.")
	}
}

func (b *Bot) handleHistory(ctx context.Context, chatID int64) {
	records, err := b.history.List(ctx, 5)
	if err != nil || len(records) == 0 {
		b.reply(chatID, "No monitoring records yet.")
		return
	}

	text := "📜 <b>Recent results</b>\n"
	for _, rec := range records {
		text += fmt.Sprintf("\n• %s - %s (threat %d/10)\n  <i>%s</i>",
			rec.Timestamp.Format("01-02 15:04"), rec.Status, rec.ThreatLevel, rec.Summary)
	}
	b.reply(chatID, text)
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.telegram.bot.Send(msg); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("Bot reply failed")
	}
}
