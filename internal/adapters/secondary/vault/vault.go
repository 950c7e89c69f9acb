// Package vault implements note, link and recording storage on a folder of
// markdown notes
package vault

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fredcamaral/lecturelight/internal/domain/ports"
)

// DefaultRecordingFolder is where recordings go when none is configured
const DefaultRecordingFolder = "LectureLight/Recordings"

// ErrOutsideVault is returned for relative paths that escape the vault root
var ErrOutsideVault = errors.New("path escapes vault root")

// Vault is a filesystem vault rooted at a directory
type Vault struct {
	root            string
	recordingFolder string
	logger          *slog.Logger
}

var (
	_ ports.LinkResolver   = (*Vault)(nil)
	_ ports.NoteRepository = (*Vault)(nil)
	_ ports.RecordingStore = (*Vault)(nil)
)

// New opens the vault at root. recordingFolder is relative to root; empty
// means DefaultRecordingFolder.
func New(root, recordingFolder string, logger *slog.Logger) (*Vault, error) {
	if logger == nil {
		logger = slog.Default()
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving vault root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("opening vault root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault root %s is not a directory", abs)
	}

	if recordingFolder == "" {
		recordingFolder = DefaultRecordingFolder
	}
	recordingFolder = filepath.ToSlash(filepath.Clean(recordingFolder))
	if filepath.IsAbs(recordingFolder) || escapes(recordingFolder) {
		return nil, fmt.Errorf("recording folder %q: %w", recordingFolder, ErrOutsideVault)
	}

	return &Vault{
		root:            abs,
		recordingFolder: recordingFolder,
		logger:          logger.With("adapter", "vault"),
	}, nil
}

// Root returns the absolute vault directory
func (v *Vault) Root() string {
	return v.root
}

// RecordingFolder returns the vault-relative recording folder
func (v *Vault) RecordingFolder() string {
	return v.recordingFolder
}

// abs maps a vault-relative or absolute path to an absolute path. Relative
// paths may not leave the vault.
func (v *Vault) abs(p string) (string, error) {
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	clean := filepath.Clean(filepath.FromSlash(p))
	if escapes(filepath.ToSlash(clean)) {
		return "", fmt.Errorf("%s: %w", p, ErrOutsideVault)
	}
	return filepath.Join(v.root, clean), nil
}

// rel returns the slash-separated vault-relative form of an absolute path
func (v *Vault) rel(abs string) (string, bool) {
	r, err := filepath.Rel(v.root, abs)
	if err != nil {
		return "", false
	}
	r = filepath.ToSlash(r)
	if escapes(r) {
		return "", false
	}
	return r, true
}

func escapes(slashPath string) bool {
	return slashPath == ".." || strings.HasPrefix(slashPath, "../")
}
