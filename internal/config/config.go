package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Models names the model used at each pipeline stage. Stages are tuned
// independently so the high-volume vision stages can run on cheaper models.
type Models struct {
	Transcription string
	Observation   string
	Insight       string
	Format        string
	Synthesis     string
}

type Config struct {
	Port            int
	CaptureDir      string
	UserName        string
	DatabaseURL     string
	NatsURL         string
	NatsToken       string
	LogLevel        string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	StatePath       string
	SinceLastRun    bool

	WindowSize   int
	ContextSize  int
	SessionGap   time.Duration
	InsightLimit int

	Models Models
}

func Load() Config {
	return Config{
		Port:            envInt("INSIGHTD_PORT", 8810),
		CaptureDir:      envStr("INSIGHTD_CAPTURE_DIR", defaultCaptureDir()),
		UserName:        envStr("INSIGHTD_USER_NAME", ""),
		DatabaseURL:     envStr("DATABASE_URL", ""),
		NatsURL:         envStr("NATS_URL", ""),
		NatsToken:       envStr("NATS_TOKEN", ""),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		OpenAIAPIKey:    envStr("OPENAI_API_KEY", ""),
		AnthropicAPIKey: envStr("ANTHROPIC_API_KEY", ""),
		StatePath:       envStr("INSIGHTD_STATE_PATH", defaultStatePath()),
		SinceLastRun:    envBool("INSIGHTD_SINCE_LAST_RUN", false),

		WindowSize:   envInt("INSIGHTD_WINDOW_SIZE", 10),
		ContextSize:  envInt("INSIGHTD_CONTEXT_SIZE", 5),
		SessionGap:   envDuration("INSIGHTD_SESSION_GAP", time.Hour),
		InsightLimit: envInt("INSIGHTD_INSIGHT_LIMIT", 5),

		Models: Models{
			Transcription: envStr("INSIGHTD_MODEL_TRANSCRIPTION", "gpt-5-mini"),
			Observation:   envStr("INSIGHTD_MODEL_OBSERVATION", "gpt-4.1"),
			Insight:       envStr("INSIGHTD_MODEL_INSIGHT", "claude-4.5-sonnet"),
			Format:        envStr("INSIGHTD_MODEL_FORMAT", "gpt-4.1"),
			Synthesis:     envStr("INSIGHTD_MODEL_SYNTHESIS", "claude-4.5-sonnet"),
		},
	}
}

func defaultCaptureDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cache/recordr"
	}
	return filepath.Join(home, ".cache", "recordr")
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cache/insightd-state.json"
	}
	return filepath.Join(home, ".cache", "insightd-state.json")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
