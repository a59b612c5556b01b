package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/shubh-37/x-ghostwriter/internal/apperr"
	"github.com/shubh-37/x-ghostwriter/internal/logging"
	"github.com/shubh-37/x-ghostwriter/internal/models"
)

const (
	DefaultPostingSchedule = "09:00,14:00,19:00"
	DefaultOpenAIModel     = "gpt-4.1-mini"
	DefaultOpenAIBaseURL   = "https://api.openai.com/v1"
	DefaultTwitterAPIURL   = "https://api.twitter.com/2"
	DefaultUserContextPath = "user_context.json"
	DefaultHistoryPath     = "post_history.json"
	DefaultLogFile         = "bot.log"
	DefaultRequestTimeout  = 30 * time.Second
)

type Config struct {
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string

	TwitterBearerToken       string
	TwitterConsumerKey       string
	TwitterConsumerSecret    string
	TwitterAccessToken       string
	TwitterAccessTokenSecret string
	TwitterAPIURL            string

	PostingSchedule string
	Timezone        string
	MaxPostLength   int

	UserContextPath string
	HistoryPath     string
	RequestTimeout  time.Duration

	LogLevel string
	LogFile  string

	SlackToken     string
	SlackChannelID string
	MetricsAddr    string
}

// LoadEnv loads a .env file if present. A missing file is only worth a warning.
func LoadEnv(logger logging.Logger) {
	if err := godotenv.Load(); err != nil && logger != nil {
		logger.Debugf("No .env file loaded, using process environment: %v", err)
	}
}

// LoadConfig reads configuration from environment variables.
// Call LoadEnv first to pick up a local .env file.
func LoadConfig() *Config {
	return &Config{
		OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", DefaultOpenAIModel),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", DefaultOpenAIBaseURL),

		TwitterBearerToken:       getEnv("TWITTER_BEARER_TOKEN", ""),
		TwitterConsumerKey:       getEnv("TWITTER_CONSUMER_KEY", ""),
		TwitterConsumerSecret:    getEnv("TWITTER_CONSUMER_SECRET", ""),
		TwitterAccessToken:       getEnv("TWITTER_ACCESS_TOKEN", ""),
		TwitterAccessTokenSecret: getEnv("TWITTER_ACCESS_TOKEN_SECRET", ""),
		TwitterAPIURL:            getEnv("TWITTER_API_URL", DefaultTwitterAPIURL),

		PostingSchedule: getEnv("POSTING_SCHEDULE", DefaultPostingSchedule),
		Timezone:        getEnv("POSTING_TIMEZONE", ""),
		MaxPostLength:   models.MaxPostLength,

		UserContextPath: getEnv("USER_CONTEXT_PATH", DefaultUserContextPath),
		HistoryPath:     getEnv("POST_HISTORY_PATH", DefaultHistoryPath),
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", DefaultRequestTimeout),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnvAllowEmpty("LOG_FILE", DefaultLogFile),

		SlackToken:     getEnv("SLACK_BOT_TOKEN", ""),
		SlackChannelID: getEnv("SLACK_CHANNEL_ID", ""),
		MetricsAddr:    getEnv("METRICS_ADDR", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty distinguishes "unset" from "set to empty" so LOG_FILE= disables file logging.
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

// MissingRequired lists every required variable that is not set.
func (c *Config) MissingRequired() []string {
	required := []struct {
		name  string
		value string
	}{
		{"OPENAI_API_KEY", c.OpenAIKey},
		{"TWITTER_BEARER_TOKEN", c.TwitterBearerToken},
		{"TWITTER_CONSUMER_KEY", c.TwitterConsumerKey},
		{"TWITTER_CONSUMER_SECRET", c.TwitterConsumerSecret},
		{"TWITTER_ACCESS_TOKEN", c.TwitterAccessToken},
		{"TWITTER_ACCESS_TOKEN_SECRET", c.TwitterAccessTokenSecret},
	}

	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.name)
		}
	}
	return missing
}

func (c *Config) Validate() error {
	if missing := c.MissingRequired(); len(missing) > 0 {
		return apperr.Newf(apperr.KindConfiguration, "validate config",
			"missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if c.MaxPostLength <= 0 {
		return apperr.Newf(apperr.KindConfiguration, "validate config", "max post length must be positive")
	}
	if _, err := c.Location(); err != nil {
		return apperr.New(apperr.KindConfiguration, "validate config", err)
	}
	return nil
}

// Location resolves POSTING_TIMEZONE, defaulting to the machine's local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid POSTING_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// NotificationsEnabled reports whether Slack notifications are configured.
func (c *Config) NotificationsEnabled() bool {
	return c.SlackToken != "" && c.SlackChannelID != ""
}
