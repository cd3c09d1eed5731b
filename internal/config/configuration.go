package config

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	// WebServer Configuration
	WebServerPort int `mapstructure:"WEBSERVER_PORT"`

	// Database Configuration
	DatabaseDSN     string `mapstructure:"DATABASE_DSN" validate:"required"`
	DatabaseRetries int    `mapstructure:"DATABASE_RETRIES"`

	// Session cookie signing key. Must be long enough to resist brute
	// force; 32+ random bytes recommended.
	SessionSecret string `mapstructure:"SESSION_SECRET" validate:"required,min=32"`

	// Maximum accepted size for a single uploaded file, in bytes.
	MaxUploadBytes int64 `mapstructure:"MAX_UPLOAD_BYTES" validate:"gt=0"`

	// Storage roots. Each owner gets a namespace directory beneath these,
	// keyed by the owner's storage id (never the username).
	UploadRoot    string `mapstructure:"UPLOAD_ROOT" validate:"required"`
	ThumbnailRoot string `mapstructure:"THUMBNAIL_ROOT" validate:"required"`

	// Derived-media pipeline
	TranscodeTimeoutSeconds  int `mapstructure:"TRANSCODE_TIMEOUT_SECONDS" validate:"gte=0"`
	ReconcileIntervalSeconds int `mapstructure:"RECONCILE_INTERVAL_SECONDS" validate:"gte=0"`
	TaskWorkers              int `mapstructure:"TASK_WORKERS"`

	// Transcription
	TranscribeEnabled        bool   `mapstructure:"TRANSCRIBE_ENABLED"`
	TranscribeTimeoutSeconds int    `mapstructure:"TRANSCRIBE_TIMEOUT_SECONDS" validate:"gte=0"`
	WhisperCmd               string `mapstructure:"WHISPER_CMD"`
	WhisperModel             string `mapstructure:"WHISPER_MODEL"`
	WhisperLanguage          string `mapstructure:"WHISPER_LANGUAGE"`
}

// use reflect to bind environment variables based on mapstructure tags
func bindEnv(c Config) {
	val := reflect.ValueOf(c)
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag != "" {
			viper.BindEnv(tag)
		}
	}
}

func LoadConfig(ctx context.Context) (*Config, error) {
	bindEnv(Config{})
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("WEBSERVER_PORT", 8080)
	viper.SetDefault("DATABASE_RETRIES", 10)
	viper.SetDefault("MAX_UPLOAD_BYTES", int64(8<<30))
	viper.SetDefault("TRANSCODE_TIMEOUT_SECONDS", 600)
	viper.SetDefault("RECONCILE_INTERVAL_SECONDS", 60)
	viper.SetDefault("TASK_WORKERS", 2)
	viper.SetDefault("TRANSCRIBE_ENABLED", true)
	viper.SetDefault("TRANSCRIBE_TIMEOUT_SECONDS", 3600)
	viper.SetDefault("WHISPER_CMD", "whisper")
	viper.SetDefault("WHISPER_MODEL", "small")

	cfg := Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	logCfg := cfg
	if logCfg.SessionSecret != "" {
		logCfg.SessionSecret = "[redacted]"
	}
	slog.Info("Loaded configuration", "config", logCfg)

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// TranscodeTimeout returns the transcode timeout as a duration.
func (c *Config) TranscodeTimeout() time.Duration {
	return time.Duration(c.TranscodeTimeoutSeconds) * time.Second
}

// ReconcileInterval returns the reconciliation sweep interval as a duration.
func (c *Config) ReconcileInterval() time.Duration {
	return time.Duration(c.ReconcileIntervalSeconds) * time.Second
}

// TranscribeTimeout returns the transcription timeout as a duration.
func (c *Config) TranscribeTimeout() time.Duration {
	return time.Duration(c.TranscribeTimeoutSeconds) * time.Second
}
