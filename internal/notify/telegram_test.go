package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/msmahdinejad/smart-monitoring-system/internal/config"
	"github.com/msmahdinejad/smart-monitoring-system/internal/models"
)

func disabledTelegram(cfg *config.Config) *Telegram {
	cfg.TelegramEnabled = false
	return NewTelegram(cfg)
}

func TestDisabledNotifierNeverSends(t *testing.T) {
	tg := disabledTelegram(&config.Config{})

	if tg.Enabled() {
		t.Fatal("notifier enabled without configuration")
	}
	if tg.SendResult(&models.Record{Status: models.StatusDanger, ThreatLevel: 10}) {
		t.Error("SendResult reported success while disabled")
	}
	if tg.SendMessage("hello", false) {
		t.Error("SendMessage reported success while disabled")
	}
	if ok, _ := tg.TestConnection(); ok {
		t.Error("TestConnection reported success while disabled")
	}
}

func TestStatusAllowList(t *testing.T) {
	tg := disabledTelegram(&config.Config{
		SendOnStatus: []string{models.StatusWarning, models.StatusDanger},
	})

	if tg.statusAllowed(models.StatusNormal) {
		t.Error("NORMAL allowed despite not being on the list")
	}
	if !tg.statusAllowed(models.StatusWarning) || !tg.statusAllowed(models.StatusDanger) {
		t.Error("listed statuses rejected")
	}
	if tg.statusAllowed("UNKNOWN") {
		t.Error("unknown status allowed")
	}
}

func TestFormatResult(t *testing.T) {
	tg := disabledTelegram(&config.Config{})
	rec := &models.Record{
		Timestamp:      time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC),
		SessionID:      "abc123def456",
		MonitoringType: "security",
		Status:         models.StatusWarning,
		Confidence:     92.5,
		ThreatLevel:    6,
		Summary:        "Movement detected",
	}

	text := tg.formatResult(rec)
	for _, want := range []string{
		"WARNING",
		"92.5%",
		"6/10",
		"Security",
		"Movement detected",
		"abc123def456",
		"2025-06-01 14:30:00",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("formatted result missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "**") {
		t.Error("markdown formatting leaked into HTML message")
	}
}

func TestFormatResultUnknownStatus(t *testing.T) {
	tg := disabledTelegram(&config.Config{})
	text := tg.formatResult(&models.Record{Status: "WEIRD", MonitoringType: "custom"})
	if !strings.Contains(text, "WEIRD") {
		t.Error("unknown status dropped from message")
	}
}

func TestTitleCase(t *testing.T) {
	cases := map[string]string{
		"security": "Security",
		"CUSTOM":   "CUSTOM",
		"":         "",
		"x":        "X",
	}
	for in, want := range cases {
		if got := titleCase(in); got != want {
			t.Errorf("titleCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFileHelpers(t *testing.T) {
	if fileExists("") {
		t.Error("fileExists true for empty path")
	}
	if fileExists("/does/not/exist.jpg") {
		t.Error("fileExists true for missing file")
	}
	if fileSize("/does/not/exist.jpg") != 0 {
		t.Error("fileSize nonzero for missing file")
	}
}
