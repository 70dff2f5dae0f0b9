// Package config defines client configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Durations are stored as integer milliseconds and exposed through helpers.
// - External errors must be wrapped with this package's sentinel errors.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// LogFile receives log records while the interactive UI owns the terminal.
	LogFile string `koanf:"log_file"`

	// BaseURL is the insight backend root, e.g. "http://127.0.0.1:8000".
	BaseURL string `koanf:"base_url" validate:"required,url"`

	// RequestTimeoutMS bounds every backend request.
	RequestTimeoutMS int `koanf:"request_timeout_ms" validate:"gt=0"`

	// CredentialsFile stores the access token between runs.
	CredentialsFile string `koanf:"credentials_file" validate:"required"`

	// MetricsAddr exposes /metrics when non-empty, e.g. "127.0.0.1:9090".
	MetricsAddr string `koanf:"metrics_addr" validate:"omitempty,hostname_port"`

	// QueueSize bounds the event loop task queue.
	QueueSize int `koanf:"queue_size" validate:"gt=0"`

	// FrameIntervalMS is the animation frame period.
	FrameIntervalMS int `koanf:"frame_interval_ms" validate:"gt=0,lte=1000"`

	// AnimationDurationMS is the score count-up duration on hover.
	AnimationDurationMS int `koanf:"animation_duration_ms" validate:"gt=0"`

	// ExpandDurationMS and ContentDelayMS shape the accordion transition.
	ExpandDurationMS int `koanf:"expand_duration_ms" validate:"gt=0"`
	ContentDelayMS   int `koanf:"content_delay_ms" validate:"gte=0"`

	// UploadProgressDelayMS is the delay before the second upload progress message.
	UploadProgressDelayMS int `koanf:"upload_progress_delay_ms" validate:"gte=0"`

	// MaxUploadBytes caps the size of an uploaded document.
	MaxUploadBytes int64 `koanf:"max_upload_bytes" validate:"gt=0"`

	// RefetchOnlyWhenVisible defers history refetches until the history view is active.
	RefetchOnlyWhenVisible bool `koanf:"refetch_only_when_visible"`

	// DiscardStaleHistory drops history responses older than the newest applied one.
	DiscardStaleHistory bool `koanf:"discard_stale_history"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFile:               filepath.Join(configDir(), "resumeinsight.log"),
		BaseURL:               "http://127.0.0.1:8000",
		RequestTimeoutMS:      30_000,
		CredentialsFile:       filepath.Join(configDir(), "credentials.yaml"),
		QueueSize:             1024,
		FrameIntervalMS:       16,
		AnimationDurationMS:   800,
		ExpandDurationMS:      350,
		ContentDelayMS:        100,
		UploadProgressDelayMS: 1200,
		MaxUploadBytes:        10 << 20,
	}
}

func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".resumeinsight"
	}
	return filepath.Join(dir, "resumeinsight")
}

// RequestTimeout returns the backend request timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// FrameInterval returns the animation frame period.
func (c *Config) FrameInterval() time.Duration {
	return time.Duration(c.FrameIntervalMS) * time.Millisecond
}

// AnimationDuration returns the score count-up duration.
func (c *Config) AnimationDuration() time.Duration {
	return time.Duration(c.AnimationDurationMS) * time.Millisecond
}

// ExpandDuration returns the accordion expand window.
func (c *Config) ExpandDuration() time.Duration {
	return time.Duration(c.ExpandDurationMS) * time.Millisecond
}

// ContentDelay returns the accordion content reveal delay.
func (c *Config) ContentDelay() time.Duration {
	return time.Duration(c.ContentDelayMS) * time.Millisecond
}

// UploadProgressDelay returns the delay before the analysis progress message.
func (c *Config) UploadProgressDelay() time.Duration {
	return time.Duration(c.UploadProgressDelayMS) * time.Millisecond
}
