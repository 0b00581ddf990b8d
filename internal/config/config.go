// Package config provides configuration for the form bot.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Media backends.
const (
	MediaBackendSQLite = "sqlite"
	MediaBackendFile   = "file"
)

// Config holds the bot configuration.
type Config struct {
	// Server settings
	HTTPPort int `yaml:"http_port"`

	// Database
	DatabaseURL string `yaml:"database_url"`

	// Media reference store
	MediaBackend   string            `yaml:"media_backend"`
	MediaStorePath string            `yaml:"media_store_path"`
	DefaultMedia   map[string]string `yaml:"default_media"`

	// Auth settings
	APIKey     string `yaml:"api_key"`     // admin HTTP API
	AuthSecret string `yaml:"auth_secret"` // signs the user tokens checked at hello

	// Reviewers seeded into an empty reviewer table, primary first.
	Reviewers []int64 `yaml:"reviewers"`

	// Category keyboard options
	JobTypes []string `yaml:"job_types"`

	// WebSocket settings
	PingInterval   time.Duration `yaml:"ping_interval"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	MaxMessageSize int64         `yaml:"max_message_size"`

	// Inbound event queue depth
	EventQueueSize int `yaml:"event_queue_size"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

// DefaultJobTypes is the category keyboard used when none is configured.
var DefaultJobTypes = []string{"Sotuvchi", "Marketolog", "HR", "Omborchi", "Boshqa"}

// Load reads the configuration with Read and validates it.
func Load() (*Config, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Read loads configuration from environment variables, then overlays the
// YAML file named by CONFIG_FILE when set. The result is not validated.
func Read() (*Config, error) {
	cfg := &Config{
		HTTPPort:       getEnvInt("HTTP_PORT", 8080),
		DatabaseURL:    getEnv("DATABASE_URL", "file:anketa.db?cache=shared&mode=rwc"),
		MediaBackend:   getEnv("MEDIA_BACKEND", MediaBackendSQLite),
		MediaStorePath: getEnv("MEDIA_STORE_PATH", "media_store.json"),
		DefaultMedia:   map[string]string{},
		APIKey:         getEnv("API_KEY", ""),
		AuthSecret:     getEnv("AUTH_SECRET", ""),
		JobTypes:       getEnvList("JOB_TYPES", DefaultJobTypes),
		PingInterval:   time.Duration(getEnvInt("WS_PING_INTERVAL_MS", 30000)) * time.Millisecond,
		WriteTimeout:   time.Duration(getEnvInt("WS_WRITE_TIMEOUT_MS", 10000)) * time.Millisecond,
		ReadTimeout:    time.Duration(getEnvInt("WS_READ_TIMEOUT_MS", 60000)) * time.Millisecond,
		MaxMessageSize: int64(getEnvInt("WS_MAX_MESSAGE_SIZE", 1<<20)),
		EventQueueSize: getEnvInt("EVENT_QUEUE_SIZE", 256),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
	reviewers, err := getEnvIDs("REVIEWERS")
	if err != nil {
		return nil, err
	}
	cfg.Reviewers = reviewers

	for _, key := range []string{"start_video", "q9_voice_prompt", "q11_video_prompt"} {
		if v := os.Getenv("MEDIA_" + strings.ToUpper(key)); v != "" {
			cfg.DefaultMedia[key] = v
		}
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadFile overlays the YAML file at path. Fields absent from the file keep
// their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	var media map[string]string
	prev := c.DefaultMedia
	c.DefaultMedia = nil
	if err := yaml.Unmarshal(data, c); err != nil {
		c.DefaultMedia = prev
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	media, c.DefaultMedia = c.DefaultMedia, prev
	if c.DefaultMedia == nil {
		c.DefaultMedia = map[string]string{}
	}
	for k, v := range media {
		c.DefaultMedia[k] = v
	}
	return nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.MediaBackend {
	case MediaBackendSQLite, MediaBackendFile:
	default:
		return fmt.Errorf("unknown media backend %q", c.MediaBackend)
	}
	if c.APIKey == "" {
		return fmt.Errorf("api_key must be set")
	}
	if c.AuthSecret == "" {
		return fmt.Errorf("auth_secret must be set")
	}
	if len(c.JobTypes) == 0 {
		return fmt.Errorf("job_types must not be empty")
	}
	for _, id := range c.Reviewers {
		if id <= 0 {
			return fmt.Errorf("invalid reviewer id %d", id)
		}
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvList(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return append([]string(nil), defaultVal...)
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvIDs(key string) ([]int64, error) {
	var out []int64
	for _, item := range getEnvList(key, nil) {
		id, err := strconv.ParseInt(item, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s entry %q", key, item)
		}
		out = append(out, id)
	}
	return out, nil
}
