// Package config loads server settings from defaults, the environment and an
// optional config file.
package config

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Transports
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// Session stores
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Notifiers
const (
	NotifierMock  = "mock"
	NotifierFCM   = "fcm"
	NotifierRedis = "redis"
)

const redacted = "********"

// Config holds the server settings resolved from defaults, an optional
// config file and the environment.
type Config struct {
	MockMode          bool          `mapstructure:"MOCK_MODE" yaml:"MOCK_MODE"`
	Transport         string        `mapstructure:"TRANSPORT" yaml:"TRANSPORT"`
	SSEAddr           string        `mapstructure:"SSE_ADDR" yaml:"SSE_ADDR"`
	SSEBaseURL        string        `mapstructure:"SSE_BASE_URL" yaml:"SSE_BASE_URL"`
	SessionStore      string        `mapstructure:"SESSION_STORE" yaml:"SESSION_STORE"`
	RedisAddr         string        `mapstructure:"REDIS_ADDR" yaml:"REDIS_ADDR"`
	RedisPassword     string        `mapstructure:"REDIS_PASSWORD" yaml:"REDIS_PASSWORD"`
	SessionTTL        time.Duration `mapstructure:"SESSION_TTL" yaml:"SESSION_TTL"`
	Notifier          string        `mapstructure:"NOTIFIER" yaml:"NOTIFIER"`
	FirebaseServerKey string        `mapstructure:"FIREBASE_SERVER_KEY" yaml:"FIREBASE_SERVER_KEY"`
	FCMEndpoint       string        `mapstructure:"FCM_ENDPOINT" yaml:"FCM_ENDPOINT"`
	NotifyTimeout     time.Duration `mapstructure:"NOTIFY_TIMEOUT" yaml:"NOTIFY_TIMEOUT"`
	UserAgent         string        `mapstructure:"USER_AGENT" yaml:"USER_AGENT"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("MOCK_MODE", true)
	v.SetDefault("TRANSPORT", TransportStdio)
	v.SetDefault("SSE_ADDR", ":8080")
	v.SetDefault("SSE_BASE_URL", "")
	v.SetDefault("SESSION_STORE", StoreMemory)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("SESSION_TTL", 24*time.Hour)
	v.SetDefault("NOTIFIER", NotifierMock)
	v.SetDefault("FIREBASE_SERVER_KEY", "")
	v.SetDefault("FCM_ENDPOINT", "")
	v.SetDefault("NOTIFY_TIMEOUT", 5*time.Second)
	v.SetDefault("USER_AGENT", "")
}

// Load reads the configuration. Environment variables override values from
// file, which override defaults. An empty file skips the config file.
func Load(file string) (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated settings and the credentials they require.
func (c Config) Validate() error {
	var errs []error
	switch c.Transport {
	case TransportStdio, TransportSSE:
	default:
		errs = append(errs, fmt.Errorf("TRANSPORT must be %s or %s, got %q", TransportStdio, TransportSSE, c.Transport))
	}
	switch c.SessionStore {
	case StoreMemory, StoreRedis:
	default:
		errs = append(errs, fmt.Errorf("SESSION_STORE must be %s or %s, got %q", StoreMemory, StoreRedis, c.SessionStore))
	}
	switch c.Notifier {
	case NotifierMock, NotifierRedis:
	case NotifierFCM:
		if c.FirebaseServerKey == "" {
			errs = append(errs, errors.New("FIREBASE_SERVER_KEY is required for the fcm notifier"))
		}
	default:
		errs = append(errs, fmt.Errorf("NOTIFIER must be %s, %s or %s, got %q", NotifierMock, NotifierFCM, NotifierRedis, c.Notifier))
	}
	if c.Transport == TransportSSE && c.SSEAddr == "" {
		errs = append(errs, errors.New("SSE_ADDR is required for the sse transport"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.NotifyTimeout <= 0 {
		errs = append(errs, errors.New("NOTIFY_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

// NeedsRedis reports whether any component talks to Redis.
func (c Config) NeedsRedis() bool {
	return c.SessionStore == StoreRedis || c.Notifier == NotifierRedis
}

// Redacted returns a copy with secrets masked.
func (c Config) Redacted() Config {
	if c.RedisPassword != "" {
		c.RedisPassword = redacted
	}
	if c.FirebaseServerKey != "" {
		c.FirebaseServerKey = redacted
	}
	return c
}

// WriteYAML renders the configuration with secrets masked.
func (c Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c.Redacted()); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
