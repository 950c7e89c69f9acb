package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/fredcamaral/lecturelight/internal/domain/entities"
	"github.com/fredcamaral/lecturelight/internal/domain/ports"
)

// ConfigService resolves the settings a lecture runs with: built-in timer
// and server defaults, ~/.config/lecturelight/config.toml, a
// lecturelight.toml beside the note, LECTURELIGHT_* variables and finally
// command-line flags.
type ConfigService struct {
	loader ports.ConfigLoader
	merger ports.ConfigMerger
}

// NewConfigService creates a config service
func NewConfigService(loader ports.ConfigLoader, merger ports.ConfigMerger) *ConfigService {
	return &ConfigService{
		loader: loader,
		merger: merger,
	}
}

// LoadConfig resolves the configuration for a note living in noteDir. The
// files may set any subset of keys, so validation only runs on the result.
func (s *ConfigService) LoadConfig(ctx context.Context, noteDir string, overrides ports.ConfigOverrides) (*entities.Config, error) {
	layers, err := s.fileLayers(ctx, noteDir)
	if err != nil {
		return nil, err
	}

	resolved := s.merger.Merge(append([]*entities.Config{s.GetDefaultConfig()}, layers...)...)
	resolved = s.merger.ApplyEnvVars(resolved)
	resolved = s.merger.ApplyOverrides(resolved, overrides)

	if err := s.ValidateConfig(resolved); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return resolved, nil
}

// fileLayers reads the user file (written with defaults on first run) and
// the note-local file, skipping whichever is absent
func (s *ConfigService) fileLayers(ctx context.Context, noteDir string) ([]*entities.Config, error) {
	user, err := s.loader.LoadGlobal(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading global config: %w", err)
	}
	local, err := s.loader.LoadLocal(ctx, noteDir)
	if err != nil {
		return nil, fmt.Errorf("loading local config: %w", err)
	}

	var layers []*entities.Config
	for _, c := range []*entities.Config{user, local} {
		if c != nil {
			layers = append(layers, c)
		}
	}
	return layers, nil
}

// GetDefaultConfig returns the built-in settings (30/5/2 minute timer,
// port 4242, recordings under LectureLight/Recordings)
func (s *ConfigService) GetDefaultConfig() *entities.Config {
	return s.merger.Defaults()
}

// ValidateConfig checks a resolved configuration
func (s *ConfigService) ValidateConfig(config *entities.Config) error {
	if config == nil {
		return errors.New("no configuration")
	}
	return config.Validate()
}

// CreateGlobalConfig writes the default user config file
func (s *ConfigService) CreateGlobalConfig(ctx context.Context) error {
	return s.loader.CreateDefaults(ctx, s.loader.GetGlobalPath())
}

var _ ports.ConfigService = (*ConfigService)(nil)
