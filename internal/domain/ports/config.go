package ports

import (
	"context"

	"github.com/fredcamaral/lecturelight/internal/domain/entities"
)

// ConfigOverrides carries command-line overrides. Nil fields were not set.
type ConfigOverrides struct {
	Host           *string
	Port           *int
	VaultRoot      *string
	TargetMinutes  *float64
	WordsPerMinute *int
	LogLevel       *string
	Watch          *bool
}

// ConfigLoader defines the interface for loading configuration files
type ConfigLoader interface {
	// LoadGlobal loads the global configuration file
	LoadGlobal(ctx context.Context) (*entities.Config, error)

	// LoadLocal loads a local configuration file from the specified directory
	LoadLocal(ctx context.Context, dir string) (*entities.Config, error)

	// CreateDefaults creates a default configuration file at the specified path
	CreateDefaults(ctx context.Context, path string) error

	// GetGlobalPath returns the path to the global configuration file
	GetGlobalPath() string
}

// ConfigMerger defines the interface for merging configurations
type ConfigMerger interface {
	// Defaults returns the built-in configuration
	Defaults() *entities.Config

	// Merge merges multiple configurations with later configs taking precedence
	Merge(configs ...*entities.Config) *entities.Config

	// ApplyOverrides applies CLI flag overrides to a configuration
	ApplyOverrides(config *entities.Config, overrides ConfigOverrides) *entities.Config

	// ApplyEnvVars applies environment variable overrides to a configuration
	ApplyEnvVars(config *entities.Config) *entities.Config
}

// ConfigService defines the interface for the configuration service
type ConfigService interface {
	// LoadConfig loads the complete configuration with hierarchy and overrides
	LoadConfig(ctx context.Context, workingDir string, overrides ConfigOverrides) (*entities.Config, error)

	// ValidateConfig validates a configuration
	ValidateConfig(config *entities.Config) error
}
