package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		MinInterval:          5,
		MaxInterval:          3600,
		RecorderFPS:          20,
		MinEncodeFPS:         5,
		MaxEncodeFPS:         60,
		StopCheckInterval:    50 * time.Millisecond,
		ThreatLevelThreshold: 5,
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != 5000 {
		t.Errorf("Port = %d, want 5000", cfg.Port)
	}
	if cfg.MinInterval != 5 || cfg.MaxInterval != 3600 {
		t.Errorf("interval bounds = [%d, %d]", cfg.MinInterval, cfg.MaxInterval)
	}
	if cfg.RecorderFPS != 20 {
		t.Errorf("RecorderFPS = %d, want 20", cfg.RecorderFPS)
	}
	if cfg.StopCheckInterval != 50*time.Millisecond {
		t.Errorf("StopCheckInterval = %v", cfg.StopCheckInterval)
	}
	if cfg.MinEncodeFPS != 5 || cfg.MaxEncodeFPS != 60 {
		t.Errorf("encode FPS bounds = [%d, %d]", cfg.MinEncodeFPS, cfg.MaxEncodeFPS)
	}
	if cfg.MaxRecords != 10000 {
		t.Errorf("MaxRecords = %d, want 10000", cfg.MaxRecords)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("RECORDER_FPS", "30")
	t.Setenv("STOP_CHECK_INTERVAL", "25ms")
	t.Setenv("TELEGRAM_SEND_ON_STATUS", "WARNING, DANGER")
	t.Setenv("TELEGRAM_AUTHORIZED_CHATS", "123, 456")

	cfg := Load()
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.RecorderFPS != 30 {
		t.Errorf("RecorderFPS = %d, want 30", cfg.RecorderFPS)
	}
	if cfg.StopCheckInterval != 25*time.Millisecond {
		t.Errorf("StopCheckInterval = %v", cfg.StopCheckInterval)
	}
	if len(cfg.SendOnStatus) != 2 || cfg.SendOnStatus[0] != "WARNING" || cfg.SendOnStatus[1] != "DANGER" {
		t.Errorf("SendOnStatus = %v", cfg.SendOnStatus)
	}
	if len(cfg.AuthorizedChats) != 2 || cfg.AuthorizedChats[0] != 123 || cfg.AuthorizedChats[1] != 456 {
		t.Errorf("AuthorizedChats = %v", cfg.AuthorizedChats)
	}
}

func TestInvalidEnvFallsBackToDefault(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	t.Setenv("AI_TEMPERATURE", "warm")

	cfg := Load()
	if cfg.Port != 5000 {
		t.Errorf("Port = %d, want default on parse failure", cfg.Port)
	}
	if cfg.AITemperature != 0.1 {
		t.Errorf("AITemperature = %v, want default on parse failure", cfg.AITemperature)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(c *Config) {}, true},
		{"zero min interval", func(c *Config) { c.MinInterval = 0 }, false},
		{"max below min", func(c *Config) { c.MaxInterval = 1 }, false},
		{"zero fps", func(c *Config) { c.RecorderFPS = 0 }, false},
		{"inverted encode bounds", func(c *Config) { c.MaxEncodeFPS = 1 }, false},
		{"zero stop check", func(c *Config) { c.StopCheckInterval = 0 }, false},
		{"threat threshold out of range", func(c *Config) { c.ThreatLevelThreshold = 11 }, false},
		{"telegram enabled without token", func(c *Config) { c.TelegramEnabled = true }, false},
		{"telegram fully configured", func(c *Config) {
			c.TelegramEnabled = true
			c.TelegramToken = "token"
			c.TelegramChatID = 42
		}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tc.ok && err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}
