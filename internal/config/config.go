package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// Application
	Version     string
	Environment string
	Port        int
	LogLevel    string

	// Logdy (lightweight web log viewer)
	LogdyEnabled bool
	LogdyHost    string
	LogdyPort    int

	// Camera (HTTP snapshot endpoint + MJPEG stream)
	CameraURL        string
	CameraTimeout    time.Duration
	CameraRetryCount int
	CameraRetryDelay time.Duration

	// Monitoring session
	DefaultInterval int // seconds
	MinInterval     int
	MaxInterval     int

	// AI analysis (OpenAI-compatible endpoint)
	AIEnabled     bool
	TestMode      bool
	TestPattern   string // "fixed", "random" or "sequential"
	FixedResponse string // used when TestPattern is "fixed"
	AIBaseURL     string
	AIAPIKey      string
	AIModel       string
	AIMaxTokens   int
	AITemperature float64
	AITimeout     time.Duration

	// Alert thresholds. ThreatLevelThreshold drives log emphasis and NATS
	// alert publishing; VideoThreatThreshold gates attaching video to a
	// notification. Kept independently configurable.
	ThreatLevelThreshold int
	VideoThreatThreshold int

	// Video recording
	RecorderFPS       int
	StopCheckInterval time.Duration
	RecorderBuffer    int
	MaxRecordDuration time.Duration
	MinEncodeFPS      int
	MaxEncodeFPS      int
	FrameWidth        int
	FrameHeight       int
	TranscodeTimeout  time.Duration

	// Storage
	ImagesDir  string
	VideosDir  string
	DBPath     string
	MaxRecords int

	// Telegram notifications
	TelegramEnabled   bool
	TelegramToken     string
	TelegramChatID    int64
	SendImages        bool
	SendBaseline      bool
	SendOnStatus      []string
	SendOnThreatLevel int
	AuthorizedChats   []int64

	// NATS (alert bus)
	NatsURL            string
	NatsConnectTimeout time.Duration
	NatsReconnectWait  time.Duration
	NatsMaxReconnects  int
	NatsDrainTimeout   time.Duration
	AlertsSubject      string

	// Graceful Shutdown
	ShutdownTimeout time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file found, using environment variables and defaults")
	} else {
		log.Info().Msg("Loaded configuration from .env file")
	}

	return &Config{
		// Application
		Version:     getEnv("VERSION", "1.0.0"),
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnvInt("PORT", 5000),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Logdy
		LogdyEnabled: getEnvBool("LOGDY_ENABLED", false),
		LogdyHost:    getEnv("LOGDY_HOST", "localhost"),
		LogdyPort:    getEnvInt("LOGDY_PORT", 8080),

		// Camera
		CameraURL:        getEnv("CAMERA_URL", "http://192.168.1.100"),
		CameraTimeout:    getEnvDuration("CAMERA_TIMEOUT", 10*time.Second),
		CameraRetryCount: getEnvInt("CAMERA_RETRY_COUNT", 3),
		CameraRetryDelay: getEnvDuration("CAMERA_RETRY_DELAY", 2*time.Second),

		// Monitoring session
		DefaultInterval: getEnvInt("DEFAULT_INTERVAL", 15),
		MinInterval:     getEnvInt("MIN_INTERVAL", 5),
		MaxInterval:     getEnvInt("MAX_INTERVAL", 3600),

		// AI analysis
		AIEnabled:     getEnvBool("AI_ENABLED", true),
		TestMode:      getEnvBool("TEST_MODE", false),
		TestPattern:   getEnv("TEST_PATTERN", "random"),
		FixedResponse: getEnv("FIXED_TEST_RESPONSE", "normal"),
		AIBaseURL:     getEnv("AI_BASE_URL", "https://api.avalai.ir/v1"),
		AIAPIKey:      getEnv("AI_API_KEY", ""),
		AIModel:       getEnv("AI_MODEL", "gpt-4o"),
		AIMaxTokens:   getEnvInt("AI_MAX_TOKENS", 400),
		AITemperature: getEnvFloat("AI_TEMPERATURE", 0.1),
		AITimeout:     getEnvDuration("AI_TIMEOUT", 45*time.Second),

		ThreatLevelThreshold: getEnvInt("THREAT_LEVEL_THRESHOLD", 5),
		VideoThreatThreshold: getEnvInt("VIDEO_THREAT_THRESHOLD", 5),

		// Video recording
		RecorderFPS:       getEnvInt("RECORDER_FPS", 20),
		StopCheckInterval: getEnvDuration("STOP_CHECK_INTERVAL", 50*time.Millisecond),
		RecorderBuffer:    getEnvInt("RECORDER_BUFFER_SIZE", 1),
		MaxRecordDuration: getEnvDuration("MAX_RECORD_DURATION", 5*time.Minute),
		MinEncodeFPS:      getEnvInt("MIN_ENCODE_FPS", 5),
		MaxEncodeFPS:      getEnvInt("MAX_ENCODE_FPS", 60),
		FrameWidth:        getEnvInt("FRAME_WIDTH", 800),
		FrameHeight:       getEnvInt("FRAME_HEIGHT", 600),
		TranscodeTimeout:  getEnvDuration("TRANSCODE_TIMEOUT", 60*time.Second),

		// Storage
		ImagesDir:  getEnv("IMAGES_DIR", "static/images"),
		VideosDir:  getEnv("VIDEOS_DIR", "static/images/videos"),
		DBPath:     getEnv("DB_PATH", "monitoring.db"),
		MaxRecords: getEnvInt("MAX_RECORDS", 10000),

		// Telegram
		TelegramEnabled:   getEnvBool("TELEGRAM_ENABLED", false),
		TelegramToken:     getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:    getEnvInt64("TELEGRAM_CHAT_ID", 0),
		SendImages:        getEnvBool("TELEGRAM_SEND_IMAGES", true),
		SendBaseline:      getEnvBool("TELEGRAM_SEND_BASELINE", false),
		SendOnStatus:      getEnvList("TELEGRAM_SEND_ON_STATUS", []string{"NORMAL", "WARNING", "DANGER"}),
		SendOnThreatLevel: getEnvInt("TELEGRAM_SEND_ON_THREAT_LEVEL", 0),
		AuthorizedChats:   getEnvInt64List("TELEGRAM_AUTHORIZED_CHATS", nil),

		// NATS
		NatsURL:            getEnv("NATS_URL", ""),
		NatsConnectTimeout: getEnvDuration("NATS_CONNECT_TIMEOUT", 10*time.Second),
		NatsReconnectWait:  getEnvDuration("NATS_RECONNECT_WAIT", 2*time.Second),
		NatsMaxReconnects:  getEnvInt("NATS_MAX_RECONNECTS", -1),
		NatsDrainTimeout:   getEnvDuration("NATS_DRAIN_TIMEOUT", 5*time.Second),
		AlertsSubject:      getEnv("ALERTS_SUBJECT", "monitoring.alerts"),

		// Graceful Shutdown
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

// Validate checks bounds once at startup so the core receives already
// validated values and never re-derives them.
func (c *Config) Validate() error {
	if c.MinInterval <= 0 {
		return fmt.Errorf("MIN_INTERVAL must be positive, got %d", c.MinInterval)
	}
	if c.MaxInterval < c.MinInterval {
		return fmt.Errorf("MAX_INTERVAL (%d) must be >= MIN_INTERVAL (%d)", c.MaxInterval, c.MinInterval)
	}
	if c.RecorderFPS <= 0 {
		return fmt.Errorf("RECORDER_FPS must be positive, got %d", c.RecorderFPS)
	}
	if c.MinEncodeFPS <= 0 || c.MaxEncodeFPS < c.MinEncodeFPS {
		return fmt.Errorf("invalid encode FPS bounds [%d, %d]", c.MinEncodeFPS, c.MaxEncodeFPS)
	}
	if c.StopCheckInterval <= 0 {
		return fmt.Errorf("STOP_CHECK_INTERVAL must be positive")
	}
	if c.ThreatLevelThreshold < 0 || c.ThreatLevelThreshold > 10 {
		return fmt.Errorf("THREAT_LEVEL_THRESHOLD must be in [0, 10], got %d", c.ThreatLevelThreshold)
	}
	if c.TelegramEnabled && (c.TelegramToken == "" || c.TelegramChatID == 0) {
		return fmt.Errorf("TELEGRAM_ENABLED requires TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID")
	}
	return nil
}

// EnsureDirs creates the image and video output directories.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.ImagesDir, c.VideosDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

func getEnvInt64List(key string, defaultValue []int64) []int64 {
	if value := os.Getenv(key); value != "" {
		var out []int64
		for _, p := range strings.Split(value, ",") {
			if parsed, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64); err == nil {
				out = append(out, parsed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
