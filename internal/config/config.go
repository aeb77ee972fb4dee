// Package config defines service configuration and its validation.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Source names accepted by the Source field.
const (
	SourceSynthetic = "synthetic"
	SourceGitHub    = "github"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Source selects where contributions come from: synthetic or github.
	Source string `koanf:"source"`

	// GitHubEndpoint, GitHubLogin and GitHubToken configure the live source.
	GitHubEndpoint string `koanf:"github_endpoint"`
	GitHubLogin    string `koanf:"github_login"`
	GitHubToken    string `koanf:"github_token"`

	// FetchTimeoutMS bounds the population fetch. On expiry the model fails.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// Synthetic generator parameters. SyntheticSeed 0 means time-seeded.
	SyntheticSeed      int64  `koanf:"synthetic_seed"`
	SyntheticStartDate string `koanf:"synthetic_start_date"`
	SyntheticWeeks     int    `koanf:"synthetic_weeks"`
	SyntheticMinCount  int    `koanf:"synthetic_min_count"`
	SyntheticMaxCount  int    `koanf:"synthetic_max_count"`

	// FrameRate is the number of frames per second the loop runs at.
	FrameRate int `koanf:"frame_rate"`

	// InputQueueSize bounds the pending grab requests.
	InputQueueSize int `koanf:"input_queue_size"`

	// DedupeSize sets how many grab request IDs are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxGrabsPerFrame bounds the grab requests applied in one frame.
	MaxGrabsPerFrame int `koanf:"max_grabs_per_frame"`

	// Layout dimensions in meters.
	UnitHeight    float64 `koanf:"unit_height"`
	ColumnSpacing float64 `koanf:"column_spacing"`
	RowSpacing    float64 `koanf:"row_spacing"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		Source:             SourceSynthetic,
		GitHubEndpoint:     "https://api.github.com/graphql",
		FetchTimeoutMS:     30_000,
		SyntheticStartDate: "2022-01-01",
		SyntheticWeeks:     52,
		SyntheticMinCount:  -30,
		SyntheticMaxCount:  60,
		FrameRate:          60,
		InputQueueSize:     1024,
		DedupeSize:         10_000,
		MaxGrabsPerFrame:   64,
		UnitHeight:         0.08,
		ColumnSpacing:      0.1,
		RowSpacing:         0.1,
	}
}

// FetchTimeout returns FetchTimeoutMS as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

// StartDate parses SyntheticStartDate.
func (c *Config) StartDate() (time.Time, error) {
	t, err := time.Parse("2006-01-02", c.SyntheticStartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: synthetic_start_date %q: %w", ErrInvalidConfig, c.SyntheticStartDate, err)
	}
	return t, nil
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...)
	}

	if c.Addr == "" {
		return invalid("addr must not be empty")
	}
	switch strings.ToLower(c.Source) {
	case SourceSynthetic:
		if _, err := c.StartDate(); err != nil {
			return err
		}
		if c.SyntheticWeeks < 0 {
			return invalid("synthetic_weeks must not be negative, got %d", c.SyntheticWeeks)
		}
		if c.SyntheticMaxCount <= c.SyntheticMinCount {
			return invalid("synthetic_max_count %d must exceed synthetic_min_count %d", c.SyntheticMaxCount, c.SyntheticMinCount)
		}
	case SourceGitHub:
		if c.GitHubLogin == "" {
			return invalid("github_login is required for the github source")
		}
		if c.GitHubEndpoint == "" {
			return invalid("github_endpoint must not be empty")
		}
	default:
		return invalid("unknown source %q", c.Source)
	}
	if c.FetchTimeoutMS <= 0 {
		return invalid("fetch_timeout_ms must be positive, got %d", c.FetchTimeoutMS)
	}
	if c.FrameRate <= 0 {
		return invalid("frame_rate must be positive, got %d", c.FrameRate)
	}
	if c.InputQueueSize <= 0 {
		return invalid("input_queue_size must be positive, got %d", c.InputQueueSize)
	}
	if c.MaxGrabsPerFrame <= 0 {
		return invalid("max_grabs_per_frame must be positive, got %d", c.MaxGrabsPerFrame)
	}
	if c.UnitHeight <= 0 || c.ColumnSpacing <= 0 || c.RowSpacing <= 0 {
		return invalid("layout dimensions must be positive")
	}
	return nil
}
