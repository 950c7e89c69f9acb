package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/lecturelight/internal/domain/entities"
	"github.com/fredcamaral/lecturelight/internal/domain/ports"
)

// Mock implementations for testing

type MockConfigLoader struct {
	mock.Mock
}

func (m *MockConfigLoader) LoadGlobal(ctx context.Context) (*entities.Config, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Config), args.Error(1)
}

func (m *MockConfigLoader) LoadLocal(ctx context.Context, dir string) (*entities.Config, error) {
	args := m.Called(ctx, dir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Config), args.Error(1)
}

func (m *MockConfigLoader) CreateDefaults(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *MockConfigLoader) GetGlobalPath() string {
	args := m.Called()
	return args.String(0)
}

type MockConfigMerger struct {
	mock.Mock
}

func (m *MockConfigMerger) Defaults() *entities.Config {
	args := m.Called()
	return args.Get(0).(*entities.Config)
}

func (m *MockConfigMerger) Merge(configs ...*entities.Config) *entities.Config {
	args := m.Called(configs)
	return args.Get(0).(*entities.Config)
}

func (m *MockConfigMerger) ApplyOverrides(config *entities.Config, overrides ports.ConfigOverrides) *entities.Config {
	args := m.Called(config, overrides)
	return args.Get(0).(*entities.Config)
}

func (m *MockConfigMerger) ApplyEnvVars(config *entities.Config) *entities.Config {
	args := m.Called(config)
	return args.Get(0).(*entities.Config)
}

func validConfig(port int) *entities.Config {
	return &entities.Config{
		Server: entities.ServerConfig{Host: "localhost", Port: port},
		Timer: entities.TimerConfig{
			TargetMinutes:  30,
			WarningMinutes: 5,
			WrapUpMinutes:  2,
			WordsPerMinute: 130,
		},
		Recording: entities.RecordingConfig{Folder: "LectureLight/Recordings", AppendLinks: entities.Bool(true)},
		Watcher:   entities.WatcherConfig{IntervalMs: 200},
		Logging:   entities.LoggingConfig{Level: "info"},
	}
}

func TestNewConfigService(t *testing.T) {
	loader := &MockConfigLoader{}
	merger := &MockConfigMerger{}

	service := NewConfigService(loader, merger)

	assert.NotNil(t, service)
	assert.Equal(t, loader, service.loader)
	assert.Equal(t, merger, service.merger)
}

func TestConfigService_LoadConfig(t *testing.T) {
	t.Run("merges defaults, global, local, env and overrides", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}

		defaultConfig := validConfig(4242)
		globalConfig := &entities.Config{Server: entities.ServerConfig{Port: 5000}}
		localConfig := &entities.Config{Timer: entities.TimerConfig{TargetMinutes: 45}}
		mergedConfig := validConfig(5000)
		envConfig := validConfig(5001)
		finalConfig := validConfig(6000)

		port := 6000
		overrides := ports.ConfigOverrides{Port: &port}

		merger.On("Defaults").Return(defaultConfig)
		loader.On("LoadGlobal", mock.Anything).Return(globalConfig, nil)
		loader.On("LoadLocal", mock.Anything, "/test/dir").Return(localConfig, nil)
		merger.On("Merge", mock.MatchedBy(func(configs []*entities.Config) bool {
			return len(configs) == 3 && configs[0] == defaultConfig && configs[1] == globalConfig && configs[2] == localConfig
		})).Return(mergedConfig)
		merger.On("ApplyEnvVars", mergedConfig).Return(envConfig)
		merger.On("ApplyOverrides", envConfig, overrides).Return(finalConfig)

		service := NewConfigService(loader, merger)
		result, err := service.LoadConfig(context.Background(), "/test/dir", overrides)

		require.NoError(t, err)
		assert.Equal(t, finalConfig, result)
		loader.AssertExpectations(t)
		merger.AssertExpectations(t)
	})

	t.Run("partial files are not validated on their own", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}

		// A local file that only sets the port has no timer target
		localConfig := &entities.Config{Server: entities.ServerConfig{Port: 9000}}
		merged := validConfig(9000)

		merger.On("Defaults").Return(validConfig(4242))
		loader.On("LoadGlobal", mock.Anything).Return(nil, nil)
		loader.On("LoadLocal", mock.Anything, "/notes").Return(localConfig, nil)
		merger.On("Merge", mock.MatchedBy(func(configs []*entities.Config) bool {
			return len(configs) == 2
		})).Return(merged)
		merger.On("ApplyEnvVars", merged).Return(merged)
		merger.On("ApplyOverrides", merged, ports.ConfigOverrides{}).Return(merged)

		service := NewConfigService(loader, merger)
		result, err := service.LoadConfig(context.Background(), "/notes", ports.ConfigOverrides{})

		require.NoError(t, err)
		assert.Equal(t, 9000, result.Server.Port)
	})

	t.Run("handles global config load error", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}

		merger.On("Defaults").Return(validConfig(4242))
		loader.On("LoadGlobal", mock.Anything).Return(nil, errors.New("global config error"))

		service := NewConfigService(loader, merger)
		_, err := service.LoadConfig(context.Background(), "/test/dir", ports.ConfigOverrides{})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "loading global config")
	})

	t.Run("handles local config load error", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}

		merger.On("Defaults").Return(validConfig(4242))
		loader.On("LoadGlobal", mock.Anything).Return(&entities.Config{}, nil)
		loader.On("LoadLocal", mock.Anything, "/test/dir").Return(nil, errors.New("local config error"))

		service := NewConfigService(loader, merger)
		_, err := service.LoadConfig(context.Background(), "/test/dir", ports.ConfigOverrides{})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "loading local config")
	})

	t.Run("handles validation error", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}

		invalidConfig := validConfig(-1)

		merger.On("Defaults").Return(validConfig(4242))
		loader.On("LoadGlobal", mock.Anything).Return(&entities.Config{}, nil)
		loader.On("LoadLocal", mock.Anything, "/test/dir").Return(nil, nil)
		merger.On("Merge", mock.Anything).Return(validConfig(4242))
		merger.On("ApplyEnvVars", mock.Anything).Return(validConfig(4242))
		merger.On("ApplyOverrides", mock.Anything, mock.Anything).Return(invalidConfig)

		service := NewConfigService(loader, merger)
		_, err := service.LoadConfig(context.Background(), "/test/dir", ports.ConfigOverrides{})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})
}

func TestConfigService_GetDefaultConfig(t *testing.T) {
	loader := &MockConfigLoader{}
	merger := &MockConfigMerger{}

	expected := validConfig(4242)
	merger.On("Defaults").Return(expected)

	service := NewConfigService(loader, merger)

	assert.Equal(t, expected, service.GetDefaultConfig())
	merger.AssertExpectations(t)
}

func TestConfigService_ValidateConfig(t *testing.T) {
	service := NewConfigService(&MockConfigLoader{}, &MockConfigMerger{})

	t.Run("validates valid config", func(t *testing.T) {
		assert.NoError(t, service.ValidateConfig(validConfig(4242)))
	})

	t.Run("rejects nil config", func(t *testing.T) {
		err := service.ValidateConfig(nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no configuration")
	})

	t.Run("rejects invalid port", func(t *testing.T) {
		assert.Error(t, service.ValidateConfig(validConfig(-1)))
	})

	t.Run("rejects missing timer target", func(t *testing.T) {
		config := validConfig(4242)
		config.Timer.TargetMinutes = 0
		err := service.ValidateConfig(config)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "timer config")
	})

	t.Run("rejects recording folder outside the vault", func(t *testing.T) {
		config := validConfig(4242)
		config.Recording.Folder = "../elsewhere"
		assert.Error(t, service.ValidateConfig(config))
	})
}

func TestConfigService_CreateGlobalConfig(t *testing.T) {
	t.Run("creates global config successfully", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}

		globalPath := "/home/user/.config/lecturelight/config.toml"

		loader.On("GetGlobalPath").Return(globalPath)
		loader.On("CreateDefaults", mock.Anything, globalPath).Return(nil)

		service := NewConfigService(loader, merger)
		err := service.CreateGlobalConfig(context.Background())

		assert.NoError(t, err)
		loader.AssertExpectations(t)
	})

	t.Run("handles creation error", func(t *testing.T) {
		loader := &MockConfigLoader{}
		merger := &MockConfigMerger{}

		creationError := errors.New("permission denied")
		loader.On("GetGlobalPath").Return("/invalid/path/config.toml")
		loader.On("CreateDefaults", mock.Anything, "/invalid/path/config.toml").Return(creationError)

		service := NewConfigService(loader, merger)
		err := service.CreateGlobalConfig(context.Background())

		assert.Equal(t, creationError, err)
	})
}
