package vault

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/fredcamaral/lecturelight/internal/domain/ports"
)

// ReadNote returns the content of a note. path is absolute or vault-relative.
func (v *Vault) ReadNote(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := v.abs(path)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(abs) // #nosec G304 - path is resolved against the vault
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ports.ErrNoteNotFound)
		}
		return nil, fmt.Errorf("reading note: %w", err)
	}
	return content, nil
}

// AppendToNote appends text to an existing note
func (v *Vault) AppendToNote(ctx context.Context, path string, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	abs, err := v.abs(path)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(abs, os.O_WRONLY|os.O_APPEND, 0) // #nosec G304 - path is resolved against the vault
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, ports.ErrNoteNotFound)
		}
		return fmt.Errorf("opening note: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			v.logger.Warn("closing note failed", slog.String("path", abs), slog.String("error", closeErr.Error()))
		}
	}()

	if _, err := f.WriteString(text); err != nil {
		return fmt.Errorf("appending to note: %w", err)
	}

	v.logger.Debug("appended to note", slog.String("path", abs), slog.Int("bytes", len(text)))
	return nil
}
