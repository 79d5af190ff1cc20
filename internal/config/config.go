package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port            int           `yaml:"port"`
	LogLevel        string        `yaml:"log_level"`
	FeedbackLogPath string        `yaml:"feedback_log_path"`
	LLMProvider     string        `yaml:"llm_provider"`
	GoogleAPIKey    string        `yaml:"google_api_key"`
	GeminiModel     string        `yaml:"gemini_model"`
	AnthropicAPIKey string        `yaml:"anthropic_api_key"`
	AnthropicModel  string        `yaml:"anthropic_model"`
	AnthropicTokens int           `yaml:"anthropic_max_tokens"`
	BedrockRegion   string        `yaml:"bedrock_region"`
	BedrockModel    string        `yaml:"bedrock_model"`
	OracleTimeout   time.Duration `yaml:"oracle_timeout"`
	SampleSeed      uint64        `yaml:"sample_seed"`
	MaxSamples      int           `yaml:"max_samples"`
	DatabaseURL     string        `yaml:"database_url"`
	NatsURL         string        `yaml:"nats_url"`
	NatsToken       string        `yaml:"nats_token"`
	SlackBotToken   string        `yaml:"slack_bot_token"`
	SlackChannel    string        `yaml:"slack_alerts_channel"`
	APIToken        string        `yaml:"api_token"`
}

func defaults() Config {
	return Config{
		Port:            8760,
		LogLevel:        "info",
		FeedbackLogPath: "feedback_log.csv",
		LLMProvider:     "gemini",
		GeminiModel:     "gemini-2.5-flash",
		AnthropicModel:  "claude-sonnet-4-20250514",
		AnthropicTokens: 1024,
		BedrockRegion:   "us-east-1",
		BedrockModel:    "anthropic.claude-3-5-sonnet-20240620-v1:0",
		OracleTimeout:   60 * time.Second,
		SampleSeed:      42,
		MaxSamples:      5,
	}
}

// Load reads configuration from the environment over built-in defaults.
func Load() Config {
	cfg := defaults()
	applyEnv(&cfg)
	return cfg
}

// LoadFile decodes the YAML file at path over the defaults, then applies
// environment overrides. An empty path behaves like Load.
func LoadFile(path string) (Config, error) {
	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(c *Config) {
	c.Port = envInt("STEWARD_PORT", c.Port)
	c.LogLevel = envStr("LOG_LEVEL", c.LogLevel)
	c.FeedbackLogPath = envStr("FEEDBACK_LOG_PATH", c.FeedbackLogPath)
	c.LLMProvider = envStr("LLM_PROVIDER", c.LLMProvider)
	c.GoogleAPIKey = envStr("GOOGLE_API_KEY", c.GoogleAPIKey)
	c.GeminiModel = envStr("GEMINI_MODEL", c.GeminiModel)
	c.AnthropicAPIKey = envStr("ANTHROPIC_API_KEY", c.AnthropicAPIKey)
	c.AnthropicModel = envStr("ANTHROPIC_MODEL", c.AnthropicModel)
	c.AnthropicTokens = envInt("ANTHROPIC_MAX_TOKENS", c.AnthropicTokens)
	c.BedrockRegion = envStr("BEDROCK_REGION", c.BedrockRegion)
	c.BedrockModel = envStr("BEDROCK_MODEL", c.BedrockModel)
	c.OracleTimeout = envDuration("ORACLE_TIMEOUT", c.OracleTimeout)
	c.SampleSeed = envUint("SAMPLE_SEED", c.SampleSeed)
	c.MaxSamples = envInt("MAX_SAMPLES", c.MaxSamples)
	c.DatabaseURL = envStr("DATABASE_URL", c.DatabaseURL)
	c.NatsURL = envStr("NATS_URL", c.NatsURL)
	c.NatsToken = envStr("NATS_TOKEN", c.NatsToken)
	c.SlackBotToken = envStr("SLACK_BOT_TOKEN", c.SlackBotToken)
	c.SlackChannel = envStr("SLACK_ALERTS_CHANNEL", c.SlackChannel)
	c.APIToken = envStr("STEWARD_API_TOKEN", c.APIToken)
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

func envUint(key string, fallback uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
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
