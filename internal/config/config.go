// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token      string  `yaml:"token"`
	WebhookURL string  `yaml:"webhook_url"` // empty -> long polling
	Workers    int     `yaml:"workers"`     // update workers
	AdminIDs   []int64 `yaml:"admin_ids"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type HTTPConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"` // empty -> in-memory session state
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AIConfig struct {
	GeminiKey       string   `yaml:"gemini_key"`
	OpenAIKey       string   `yaml:"openai_key"`
	ModelCandidates []string `yaml:"model_candidates"`
	MaxOutputTokens int      `yaml:"max_output_tokens"`
}

type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Log      LogConfig      `yaml:"log"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	AI       AIConfig       `yaml:"ai"`

	Runtime RuntimeConfig `yaml:"-"`
}

// DefaultModelCandidates is the preference-ordered probe list used when the
// config does not name its own.
var DefaultModelCandidates = []string{
	"gemini-2.0-flash",
	"gemini-1.5-flash",
	"gemini-1.5-pro",
}

const defaultPort = 8443

// LoadConfig reads the YAML file (if present), then applies environment
// overrides so the bot can run from env alone on hosts like Railway.
// A .env file in the working directory is honored via godotenv.
func LoadConfig(path string, dev bool) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if b, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	applyEnv(&cfg)

	// defaults
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = defaultPort
	}
	if len(cfg.AI.ModelCandidates) == 0 {
		cfg.AI.ModelCandidates = DefaultModelCandidates
	}
	if cfg.AI.MaxOutputTokens <= 0 {
		cfg.AI.MaxOutputTokens = 1024
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = 15 * time.Minute
	}

	// Minimal validation: presence only. Persistence is required before the
	// runtime begins serving, so a missing database URL refuses to start.
	// Dev mode may run without a token; the noop telegram adapter takes over.
	if cfg.Bot.Token == "" && !dev {
		return nil, errors.New("bot.token is required (TELEGRAM_BOT_TOKEN)")
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required (DATABASE_URL)")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Bot.Token = v
	}
	if v := os.Getenv("WEBHOOK_URL"); v != "" {
		cfg.Bot.WebhookURL = v
	}
	if v := os.Getenv("ADMIN_IDS"); v != "" {
		cfg.Bot.AdminIDs = ParseAdminIDs(v)
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.AI.GeminiKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.AI.OpenAIKey = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			cfg.HTTP.Port = p
		}
	}
}

// ParseAdminIDs turns a comma-separated id list into int64s, skipping blanks
// and junk entries rather than failing the whole load.
func ParseAdminIDs(s string) []int64 {
	var out []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}
