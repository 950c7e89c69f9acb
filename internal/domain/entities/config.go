package entities

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Timer     TimerConfig     `toml:"timer"`
	Recording RecordingConfig `toml:"recording"`
	Vault     VaultConfig     `toml:"vault"`
	Watcher   WatcherConfig   `toml:"watcher"`
	Storage   StorageConfig   `toml:"storage"`
	Logging   LoggingConfig   `toml:"logging"`
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Timer.Validate(); err != nil {
		return fmt.Errorf("timer config: %w", err)
	}

	if err := c.Recording.Validate(); err != nil {
		return fmt.Errorf("recording config: %w", err)
	}

	if err := c.Vault.Validate(); err != nil {
		return fmt.Errorf("vault config: %w", err)
	}

	if err := c.Watcher.Validate(); err != nil {
		return fmt.Errorf("watcher config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// ServerConfig contains presenter server configuration
type ServerConfig struct {
	Host            string   `toml:"host"`
	Port            int      `toml:"port"`
	ReadTimeout     int      `toml:"read_timeout"`
	WriteTimeout    int      `toml:"write_timeout"`
	ShutdownTimeout int      `toml:"shutdown_timeout"`
	MaxUploadMB     int      `toml:"max_upload_mb"`
	Environment     string   `toml:"environment"`
	CORSOrigins     []string `toml:"cors_origins"`
}

// Validate validates server configuration
func (s ServerConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Port, validation.Min(0), validation.Max(65535)),
		validation.Field(&s.Host, validation.By(func(value interface{}) error {
			if strings.ContainsAny(value.(string), " !") {
				return errors.New("must not contain spaces")
			}
			return nil
		})),
		validation.Field(&s.ReadTimeout, validation.Min(0)),
		validation.Field(&s.WriteTimeout, validation.Min(0)),
		validation.Field(&s.ShutdownTimeout, validation.Min(0)),
		validation.Field(&s.MaxUploadMB, validation.Min(0)),
		validation.Field(&s.Environment, validation.In("", "development", "production")),
		validation.Field(&s.CORSOrigins, validation.Each(validation.Required, validation.By(validateOrigin))),
	)
}

func validateOrigin(value interface{}) error {
	origin, _ := value.(string)
	if origin == "*" {
		return nil
	}
	if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
		return fmt.Errorf("invalid CORS origin format: %s (must start with http:// or https://)", origin)
	}
	return nil
}

// GetReadTimeout returns the read timeout as a duration
func (s ServerConfig) GetReadTimeout() time.Duration {
	if s.ReadTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.ReadTimeout) * time.Second
}

// GetWriteTimeout returns the write timeout as a duration
func (s ServerConfig) GetWriteTimeout() time.Duration {
	if s.WriteTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.WriteTimeout) * time.Second
}

// GetShutdownTimeout returns the shutdown timeout as a duration
func (s ServerConfig) GetShutdownTimeout() time.Duration {
	if s.ShutdownTimeout <= 0 {
		return 5 * time.Second
	}
	return time.Duration(s.ShutdownTimeout) * time.Second
}

// GetMaxUploadBytes returns the recording upload limit in bytes
func (s ServerConfig) GetMaxUploadBytes() int64 {
	if s.MaxUploadMB <= 0 {
		return 512 << 20
	}
	return int64(s.MaxUploadMB) << 20
}

// GetCORSOrigins returns CORS origins with defaults if empty
func (s ServerConfig) GetCORSOrigins() []string {
	if len(s.CORSOrigins) == 0 {
		return []string{
			"http://localhost:4242",
			"http://127.0.0.1:4242",
		}
	}
	return s.CORSOrigins
}

// IsDevelopment returns true if the server is running in development mode
func (s ServerConfig) IsDevelopment() bool {
	return s.Environment == "development" || s.Environment == ""
}

// TimerConfig holds the fallback timer thresholds and speaking rate
type TimerConfig struct {
	TargetMinutes  float64 `toml:"target_minutes"`
	WarningMinutes float64 `toml:"warning_minutes"`
	WrapUpMinutes  float64 `toml:"wrap_up_minutes"`
	WordsPerMinute int     `toml:"words_per_minute"`
}

// Validate validates timer configuration
func (t TimerConfig) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.TargetMinutes, validation.Required, validation.Min(0.0).Exclusive()),
		validation.Field(&t.WarningMinutes, validation.Min(0.0)),
		validation.Field(&t.WrapUpMinutes, validation.Min(0.0)),
		validation.Field(&t.WordsPerMinute, validation.Required, validation.Min(1)),
	)
}

// Settings returns the thresholds as TimerSettings
func (t TimerConfig) Settings() TimerSettings {
	return TimerSettings{
		TargetMinutes:  t.TargetMinutes,
		WarningMinutes: t.WarningMinutes,
		WrapUpMinutes:  t.WrapUpMinutes,
	}
}

// RecordingConfig controls where recordings are saved inside the vault
type RecordingConfig struct {
	Folder string `toml:"folder"`

	// AppendLinks is nil when the file does not mention it
	AppendLinks *bool `toml:"append_links"`
}

// ShouldAppendLinks returns the append_links setting, true when unset
func (r RecordingConfig) ShouldAppendLinks() bool {
	return r.AppendLinks == nil || *r.AppendLinks
}

// Validate validates recording configuration
func (r RecordingConfig) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Folder, validation.Required, validation.By(func(value interface{}) error {
			folder := value.(string)
			if filepath.IsAbs(folder) || strings.HasPrefix(filepath.Clean(folder), "..") {
				return errors.New("must be a path inside the vault")
			}
			return nil
		})),
	)
}

// VaultConfig locates the notes vault
type VaultConfig struct {
	Root string `toml:"root"`
}

// Validate validates vault configuration
func (v VaultConfig) Validate() error {
	return validation.ValidateStruct(&v,
		validation.Field(&v.Root, validation.By(func(value interface{}) error {
			root := value.(string)
			if root != "" && !filepath.IsAbs(root) {
				return errors.New("vault root must be an absolute path")
			}
			return nil
		})),
	)
}

// WatcherConfig contains file watcher configuration
type WatcherConfig struct {
	Enabled    *bool `toml:"enabled"`
	IntervalMs int   `toml:"interval_ms"`
	DebounceMs int   `toml:"debounce_ms"`
}

// IsEnabled returns the enabled setting, true when unset
func (w WatcherConfig) IsEnabled() bool {
	return w.Enabled == nil || *w.Enabled
}

// Validate validates watcher configuration
func (w WatcherConfig) Validate() error {
	return validation.ValidateStruct(&w,
		validation.Field(&w.IntervalMs, validation.Min(50).Error("watcher interval must be at least 50ms")),
		validation.Field(&w.DebounceMs, validation.Min(0)),
	)
}

// GetInterval returns the watcher interval as a duration
func (w WatcherConfig) GetInterval() time.Duration {
	if w.IntervalMs <= 0 {
		return 200 * time.Millisecond
	}
	return time.Duration(w.IntervalMs) * time.Millisecond
}

// GetDebounce returns the debounce time as a duration
func (w WatcherConfig) GetDebounce() time.Duration {
	if w.DebounceMs <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(w.DebounceMs) * time.Millisecond
}

// StorageConfig locates the session history database
type StorageConfig struct {
	HistoryPath string `toml:"history_path"`
}

// LogLevel represents logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `toml:"level"`       // debug, info, warn, error
	Verbose    bool   `toml:"verbose"`     // Enable verbose logging
	JSONFormat bool   `toml:"json_format"` // Output logs in JSON format
}

// Validate validates logging configuration
func (l LoggingConfig) Validate() error {
	switch LogLevel(l.Level) {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	case "":
		// Empty is okay, will use default
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", l.Level)
	}
	return nil
}

// GetLevel returns the log level with default
func (l LoggingConfig) GetLevel() LogLevel {
	if l.Level == "" {
		return LogLevelInfo
	}
	return LogLevel(l.Level)
}

// Bool returns a pointer to b, for optional settings
func Bool(b bool) *bool {
	return &b
}
