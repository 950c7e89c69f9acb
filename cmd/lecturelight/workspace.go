package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/lecturelight/internal/adapters/secondary/config"
	"github.com/fredcamaral/lecturelight/internal/adapters/secondary/parser"
	"github.com/fredcamaral/lecturelight/internal/adapters/secondary/vault"
	"github.com/fredcamaral/lecturelight/internal/adapters/secondary/wikilink"
	"github.com/fredcamaral/lecturelight/internal/domain/entities"
	"github.com/fredcamaral/lecturelight/internal/domain/ports"
	"github.com/fredcamaral/lecturelight/internal/domain/services"
)

// workspace is what every note command needs: the merged configuration, a
// logger built from it and the vault the note lives in
type workspace struct {
	config *entities.Config
	logger *slog.Logger
	vault  *vault.Vault
	decks  *services.DeckService

	// notePath is vault-relative when the note is inside the vault
	notePath string

	// noteFile is the absolute note path, which the watcher polls
	noteFile string
}

// loadConfig merges defaults, the global file, a local lecturelight.toml in
// dir, LECTURELIGHT_* variables and overrides
func loadConfig(cmd *cobra.Command, dir string, overrides ports.ConfigOverrides) (*entities.Config, error) {
	loader := config.NewTOMLLoader()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loader = config.NewTOMLLoaderWithPath(path)
	}

	if cmd.Flags().Changed("log-level") {
		level, _ := cmd.Flags().GetString("log-level")
		overrides.LogLevel = &level
	}

	svc := services.NewConfigService(loader, config.NewConfigMerger())
	cfg, err := svc.LoadConfig(cmd.Context(), dir, overrides)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the slog handler described by [logging]. --verbose wins
// over the configured level.
func newLogger(cmd *cobra.Command, cfg *entities.Config) *slog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if !cmd.Flags().Changed("verbose") {
		verbose = cfg.Logging.Verbose
	}

	level := slogLevel(cfg.Logging.GetLevel())
	if verbose {
		level = slog.LevelDebug
	}

	return buildLogger(cmd.ErrOrStderr(), level, cfg.Logging.JSONFormat)
}

func buildLogger(w io.Writer, level slog.Level, jsonFormat bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if jsonFormat {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func slogLevel(level entities.LogLevel) slog.Level {
	switch level {
	case entities.LogLevelDebug:
		return slog.LevelDebug
	case entities.LogLevelWarn:
		return slog.LevelWarn
	case entities.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// openWorkspace loads configuration for the note at notePath and opens its
// vault. The vault root defaults to the note's directory.
func openWorkspace(cmd *cobra.Command, notePath string, overrides ports.ConfigOverrides) (*workspace, error) {
	abs, err := filepath.Abs(notePath)
	if err != nil {
		return nil, fmt.Errorf("resolving note path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("accessing note: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("note path is not a regular file: %s", notePath)
	}

	cfg, err := loadConfig(cmd, filepath.Dir(abs), overrides)
	if err != nil {
		return nil, err
	}
	logger := newLogger(cmd, cfg)

	root := cfg.Vault.Root
	if root == "" {
		root = filepath.Dir(abs)
	}
	v, err := vault.New(root, cfg.Recording.Folder, logger)
	if err != nil {
		return nil, fmt.Errorf("opening vault: %w", err)
	}

	renderer := parser.NewRenderer(nil).WithCache(parser.NewRenderCache(parser.DefaultCacheSize, 0))
	decks := services.NewDeckService(v, parser.FrontmatterSplitter{}, wikilink.NewRewriter(v), parser.New(parser.WithRenderer(renderer)), logger)

	return &workspace{
		config:   cfg,
		logger:   logger,
		vault:    v,
		decks:    decks,
		notePath: vaultRelative(v.Root(), abs),
		noteFile: abs,
	}, nil
}

// vaultRelative returns abs relative to root with forward slashes, or abs
// itself when the note lives outside the vault
func vaultRelative(root, abs string) string {
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return abs
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return abs
	}
	return rel
}

// absFlag makes a path flag absolute, as [vault] root requires
func absFlag(path string) (*string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	return &abs, nil
}
