// Package notify relays monitoring results and remote commands through a
// Telegram bot. All sends are best-effort: failures are logged and
// swallowed, never surfaced to the monitoring loop.
package notify

import (
	"fmt"
	"os"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/msmahdinejad/smart-monitoring-system/internal/config"
	"github.com/msmahdinejad/smart-monitoring-system/internal/models"
)

// Telegram bot hard limits.
const (
	maxPhotoSize = 5 * 1024 * 1024
	maxVideoSize = 50 * 1024 * 1024
)

// Telegram sends monitoring notifications to a configured chat, filtered by
// status allow-list and a minimum threat level.
type Telegram struct {
	cfg     *config.Config
	bot     *tgbotapi.BotAPI
	chatID  int64
	enabled bool
}

// NewTelegram connects the bot. A connection failure disables the notifier
// rather than failing startup; monitoring runs fine without it.
func NewTelegram(cfg *config.Config) *Telegram {
	t := &Telegram{cfg: cfg, chatID: cfg.TelegramChatID}

	if !cfg.TelegramEnabled {
		log.Info().Msg("Telegram notifications disabled")
		return t
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Warn().Err(err).Msg("Telegram bot disabled due to configuration errors")
		return t
	}

	t.bot = bot
	t.enabled = true
	log.Info().Str("bot", bot.Self.UserName).Msg("Telegram bot initialized")
	return t
}

// Enabled reports whether the notifier is operational.
func (t *Telegram) Enabled() bool {
	return t.enabled
}

// SendResult forwards one cycle result: a captioned photo of the current
// frame, plus the recorded video when the threat level reaches the video
// threshold. Returns whether anything was sent.
func (t *Telegram) SendResult(rec *models.Record) bool {
	if !t.enabled {
		return false
	}

	if !t.statusAllowed(rec.Status) {
		log.Debug().Str("status", rec.Status).Msg("Skipping notification for status")
		return false
	}
	if rec.ThreatLevel < t.cfg.SendOnThreatLevel {
		log.Debug().Int("threat_level", rec.ThreatLevel).Msg("Skipping notification below threat threshold")
		return false
	}

	caption := t.formatResult(rec)
	silent := rec.Status == models.StatusNormal

	sent := false
	if t.cfg.SendImages && fileExists(rec.CurrentPath) {
		sent = t.SendPhoto(rec.CurrentPath, caption, silent)
	} else {
		sent = t.SendMessage(caption, silent)
	}

	if rec.VideoPath != "" && fileExists(rec.VideoPath) && rec.ThreatLevel >= t.cfg.VideoThreatThreshold {
		videoCaption := fmt.Sprintf("🎥 <b>Security Video</b>\n📊 Threat Level: %d/10\n🕒 Session: <code>%s</code>",
			rec.ThreatLevel, rec.SessionID)
		t.SendVideo(rec.VideoPath, videoCaption)
	}

	if sent {
		log.Info().Str("status", rec.Status).Msg("Telegram notification sent")
	}
	return sent
}

// SendMessage sends a plain HTML-formatted text message.
func (t *Telegram) SendMessage(text string, silent bool) bool {
	if !t.enabled {
		return false
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableNotification = silent
	if _, err := t.bot.Send(msg); err != nil {
		log.Error().Err(err).Msg("Telegram message failed")
		return false
	}
	return true
}

// SendPhoto uploads an image with a caption.
func (t *Telegram) SendPhoto(path, caption string, silent bool) bool {
	if !t.enabled {
		return false
	}
	if size := fileSize(path); size > maxPhotoSize {
		log.Warn().Int64("size", size).Str("path", path).Msg("Image too large for Telegram")
		return false
	}
	photo := tgbotapi.NewPhoto(t.chatID, tgbotapi.FilePath(path))
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeHTML
	photo.DisableNotification = silent
	if _, err := t.bot.Send(photo); err != nil {
		log.Error().Err(err).Str("path", path).Msg("Telegram photo failed")
		return false
	}
	return true
}

// SendVideo uploads a recorded video with a caption.
func (t *Telegram) SendVideo(path, caption string) bool {
	if !t.enabled {
		return false
	}
	if size := fileSize(path); size > maxVideoSize {
		log.Warn().Int64("size", size).Str("path", path).Msg("Video too large for Telegram")
		return false
	}
	video := tgbotapi.NewVideo(t.chatID, tgbotapi.FilePath(path))
	video.Caption = caption
	video.ParseMode = tgbotapi.ModeHTML
	if _, err := t.bot.Send(video); err != nil {
		log.Error().Err(err).Str("path", path).Msg("Telegram video failed")
		return false
	}
	return true
}

// TestConnection verifies the bot token against the Telegram API.
func (t *Telegram) TestConnection() (bool, string) {
	if !t.enabled {
		return false, "Telegram bot is disabled"
	}
	user, err := t.bot.GetMe()
	if err != nil {
		return false, err.Error()
	}
	return true, fmt.Sprintf("Connected to bot: @%s", user.UserName)
}

func (t *Telegram) statusAllowed(status string) bool {
	for _, allowed := range t.cfg.SendOnStatus {
		if status == allowed {
			return true
		}
	}
	return false
}

func (t *Telegram) formatResult(rec *models.Record) string {
	statusEmoji := map[string]string{
		models.StatusNormal:  "✅",
		models.StatusWarning: "⚠️",
		models.StatusDanger:  "🚨",
	}
	emoji, ok := statusEmoji[rec.Status]
	if !ok {
		emoji = "❓"
	}

	threatEmoji := "✅"
	switch {
	case rec.ThreatLevel >= 8:
		threatEmoji = "🚨🚨"
	case rec.ThreatLevel >= 5:
		threatEmoji = "⚠️"
	}

	return fmt.Sprintf(`🎥 <b>Smart Monitoring System</b>

%s <b>Status:</b> %s
📊 <b>Confidence:</b> %.1f%%
%s <b>Threat Level:</b> %d/10

📋 <b>Type:</b> %s
📄 <b>Summary:</b> %s

🔗 <b>Session:</b> <code>%s</code>
🕒 <b>Time:</b> %s`,
		emoji, rec.Status,
		rec.Confidence,
		threatEmoji, rec.ThreatLevel,
		titleCase(rec.MonitoringType),
		rec.Summary,
		rec.SessionID,
		rec.Timestamp.Format("2006-01-02 15:04:05"))
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
