package config

import (
	"github.com/fredcamaral/lecturelight/internal/domain/entities"
	"github.com/fredcamaral/lecturelight/internal/domain/ports"
)

// ConfigMerger implements the ConfigMerger interface
type ConfigMerger struct{}

// NewConfigMerger creates a new configuration merger
func NewConfigMerger() *ConfigMerger {
	return &ConfigMerger{}
}

// Defaults returns the built-in configuration
func (m *ConfigMerger) Defaults() *entities.Config {
	return GetDefaultConfig()
}

// Merge merges multiple configurations with later configs taking precedence
func (m *ConfigMerger) Merge(configs ...*entities.Config) *entities.Config {
	if len(configs) == 0 {
		return GetDefaultConfig()
	}

	// Start with first config as base
	result := deepCopy(configs[0])
	if result == nil {
		result = GetDefaultConfig()
	}

	// Merge subsequent configs
	for i := 1; i < len(configs); i++ {
		if configs[i] != nil {
			m.mergeInto(result, configs[i])
		}
	}

	return result
}

// ApplyOverrides applies CLI flag overrides to a configuration
func (m *ConfigMerger) ApplyOverrides(config *entities.Config, overrides ports.ConfigOverrides) *entities.Config {
	result := deepCopy(config)

	if overrides.Host != nil && *overrides.Host != "" {
		result.Server.Host = *overrides.Host
	}
	// port 0 binds any free port
	if overrides.Port != nil && *overrides.Port >= 0 {
		result.Server.Port = *overrides.Port
	}
	if overrides.VaultRoot != nil && *overrides.VaultRoot != "" {
		result.Vault.Root = *overrides.VaultRoot
	}
	if overrides.TargetMinutes != nil && *overrides.TargetMinutes > 0 {
		result.Timer.TargetMinutes = *overrides.TargetMinutes
	}
	if overrides.WordsPerMinute != nil && *overrides.WordsPerMinute > 0 {
		result.Timer.WordsPerMinute = *overrides.WordsPerMinute
	}
	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		result.Logging.Level = *overrides.LogLevel
	}
	if overrides.Watch != nil {
		result.Watcher.Enabled = entities.Bool(*overrides.Watch)
	}

	return result
}

// ApplyEnvVars applies LECTURELIGHT_* environment variables to a configuration
func (m *ConfigMerger) ApplyEnvVars(config *entities.Config) *entities.Config {
	result := deepCopy(config)

	// Server configuration from environment
	if host, ok := getEnv("HOST"); ok {
		result.Server.Host = host
	}
	if port, ok := getEnvInt("PORT"); ok && port > 0 {
		result.Server.Port = port
	}
	if environment, ok := getEnv("ENVIRONMENT"); ok {
		result.Server.Environment = environment
	}
	if origins, ok := getEnvSlice("CORS_ORIGINS"); ok {
		result.Server.CORSOrigins = origins
	}

	// Timer configuration from environment
	if target, ok := getEnvFloat("TARGET_MINUTES"); ok && target > 0 {
		result.Timer.TargetMinutes = target
	}
	if warning, ok := getEnvFloat("WARNING_MINUTES"); ok && warning >= 0 {
		result.Timer.WarningMinutes = warning
	}
	if wrapUp, ok := getEnvFloat("WRAP_UP_MINUTES"); ok && wrapUp >= 0 {
		result.Timer.WrapUpMinutes = wrapUp
	}
	if wpm, ok := getEnvInt("WPM"); ok && wpm > 0 {
		result.Timer.WordsPerMinute = wpm
	}

	// Vault and recording configuration from environment
	if root, ok := getEnv("VAULT"); ok {
		result.Vault.Root = root
	}
	if folder, ok := getEnv("RECORDING_FOLDER"); ok {
		result.Recording.Folder = folder
	}
	if appendLinks, ok := getEnvBool("APPEND_LINKS"); ok {
		result.Recording.AppendLinks = entities.Bool(appendLinks)
	}

	// Watcher configuration from environment
	if watch, ok := getEnvBool("WATCH"); ok {
		result.Watcher.Enabled = entities.Bool(watch)
	}
	if interval, ok := getEnvInt("WATCH_INTERVAL"); ok && interval > 0 {
		result.Watcher.IntervalMs = interval
	}
	if debounce, ok := getEnvInt("WATCH_DEBOUNCE"); ok && debounce >= 0 {
		result.Watcher.DebounceMs = debounce
	}

	if historyPath, ok := getEnv("HISTORY_PATH"); ok {
		result.Storage.HistoryPath = historyPath
	}

	// Logging configuration from environment
	if level, ok := getEnv("LOG_LEVEL"); ok {
		result.Logging.Level = level
	}
	if jsonFormat, ok := getEnvBool("LOG_JSON"); ok {
		result.Logging.JSONFormat = jsonFormat
	}

	return result
}

// mergeInto merges source configuration into target configuration
func (m *ConfigMerger) mergeInto(target, source *entities.Config) {
	// Server config
	if source.Server.Port != 0 {
		target.Server.Port = source.Server.Port
	}
	if source.Server.Host != "" {
		target.Server.Host = source.Server.Host
	}
	if source.Server.ReadTimeout != 0 {
		target.Server.ReadTimeout = source.Server.ReadTimeout
	}
	if source.Server.WriteTimeout != 0 {
		target.Server.WriteTimeout = source.Server.WriteTimeout
	}
	if source.Server.ShutdownTimeout != 0 {
		target.Server.ShutdownTimeout = source.Server.ShutdownTimeout
	}
	if source.Server.MaxUploadMB != 0 {
		target.Server.MaxUploadMB = source.Server.MaxUploadMB
	}
	if source.Server.Environment != "" {
		target.Server.Environment = source.Server.Environment
	}
	if len(source.Server.CORSOrigins) > 0 {
		target.Server.CORSOrigins = copyStrings(source.Server.CORSOrigins)
	}

	// Timer config
	if source.Timer.TargetMinutes != 0 {
		target.Timer.TargetMinutes = source.Timer.TargetMinutes
	}
	if source.Timer.WarningMinutes != 0 {
		target.Timer.WarningMinutes = source.Timer.WarningMinutes
	}
	if source.Timer.WrapUpMinutes != 0 {
		target.Timer.WrapUpMinutes = source.Timer.WrapUpMinutes
	}
	if source.Timer.WordsPerMinute != 0 {
		target.Timer.WordsPerMinute = source.Timer.WordsPerMinute
	}

	// Recording config
	if source.Recording.Folder != "" {
		target.Recording.Folder = source.Recording.Folder
	}
	if source.Recording.AppendLinks != nil {
		target.Recording.AppendLinks = entities.Bool(*source.Recording.AppendLinks)
	}

	// Vault config
	if source.Vault.Root != "" {
		target.Vault.Root = source.Vault.Root
	}

	// Watcher config
	if source.Watcher.Enabled != nil {
		target.Watcher.Enabled = entities.Bool(*source.Watcher.Enabled)
	}
	if source.Watcher.IntervalMs != 0 {
		target.Watcher.IntervalMs = source.Watcher.IntervalMs
	}
	if source.Watcher.DebounceMs != 0 {
		target.Watcher.DebounceMs = source.Watcher.DebounceMs
	}

	// Storage config
	if source.Storage.HistoryPath != "" {
		target.Storage.HistoryPath = source.Storage.HistoryPath
	}

	// Logging config; plain booleans can only be switched on by a later file
	if source.Logging.Level != "" {
		target.Logging.Level = source.Logging.Level
	}
	if source.Logging.Verbose {
		target.Logging.Verbose = true
	}
	if source.Logging.JSONFormat {
		target.Logging.JSONFormat = true
	}
}

// deepCopy creates a deep copy of a configuration
func deepCopy(src *entities.Config) *entities.Config {
	if src == nil {
		return nil
	}

	dst := *src
	dst.Server.CORSOrigins = copyStrings(src.Server.CORSOrigins)
	if src.Recording.AppendLinks != nil {
		dst.Recording.AppendLinks = entities.Bool(*src.Recording.AppendLinks)
	}
	if src.Watcher.Enabled != nil {
		dst.Watcher.Enabled = entities.Bool(*src.Watcher.Enabled)
	}

	return &dst
}

func copyStrings(src []string) []string {
	if src == nil {
		return nil
	}
	dst := make([]string, len(src))
	copy(dst, src)
	return dst
}

// Ensure ConfigMerger implements ports.ConfigMerger
var _ ports.ConfigMerger = (*ConfigMerger)(nil)
