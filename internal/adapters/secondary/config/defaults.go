package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fredcamaral/lecturelight/internal/domain/entities"
)

// EnvPrefix prefixes every environment variable the configuration reads
const EnvPrefix = "LECTURELIGHT_"

// DefaultPort is the presenter server port
const DefaultPort = 4242

// GetDefaultConfig returns the built-in configuration
func GetDefaultConfig() *entities.Config {
	return &entities.Config{
		Server: entities.ServerConfig{
			Host:            "localhost",
			Port:            DefaultPort,
			ReadTimeout:     30,
			WriteTimeout:    30,
			ShutdownTimeout: 5,
			MaxUploadMB:     512,
			CORSOrigins: []string{
				"http://localhost:4242",
				"http://127.0.0.1:4242",
			},
		},
		Timer: entities.TimerConfig{
			TargetMinutes:  entities.DefaultTargetMinutes,
			WarningMinutes: entities.DefaultWarningMinutes,
			WrapUpMinutes:  entities.DefaultWrapUpMinutes,
			WordsPerMinute: 130,
		},
		Recording: entities.RecordingConfig{
			Folder:      "LectureLight/Recordings",
			AppendLinks: entities.Bool(true),
		},
		Watcher: entities.WatcherConfig{
			Enabled:    entities.Bool(true),
			IntervalMs: 200,
			DebounceMs: 500,
		},
		Storage: entities.StorageConfig{
			HistoryPath: DefaultHistoryPath(),
		},
		Logging: entities.LoggingConfig{
			Level: string(entities.LogLevelInfo),
		},
	}
}

// ConfigDir is the directory holding the global configuration
func ConfigDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "lecturelight")
}

// DefaultHistoryPath is where session history is kept unless configured
func DefaultHistoryPath() string {
	return filepath.Join(ConfigDir(), "history.db")
}

// getEnv returns the prefixed environment variable and whether it is set
func getEnv(key string) (string, bool) {
	value := strings.TrimSpace(os.Getenv(EnvPrefix + key))
	return value, value != ""
}

// getEnvInt returns the prefixed environment variable as int
func getEnvInt(key string) (int, bool) {
	if value, ok := getEnv(key); ok {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue, true
		}
	}
	return 0, false
}

// getEnvFloat returns the prefixed environment variable as float64
func getEnvFloat(key string) (float64, bool) {
	if value, ok := getEnv(key); ok {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue, true
		}
	}
	return 0, false
}

// getEnvBool returns the prefixed environment variable as bool
func getEnvBool(key string) (bool, bool) {
	if value, ok := getEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue, true
		}
	}
	return false, false
}

// getEnvSlice splits a comma separated environment variable
func getEnvSlice(key string) ([]string, bool) {
	value, ok := getEnv(key)
	if !ok {
		return nil, false
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result, len(result) > 0
}
