package vault

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/fredcamaral/lecturelight/internal/domain/ports"
)

var (
	illegalFilenameChars = regexp.MustCompile("[/\\\\:*?\"<>|#%^{}\\[\\]~`]")
	repeatedDashes       = regexp.MustCompile(`-{2,}`)
)

// SanitizeFilename replaces characters that are illegal in vault file names
// on any platform with '-'
func SanitizeFilename(name string) string {
	safe := illegalFilenameChars.ReplaceAllString(name, "-")
	safe = repeatedDashes.ReplaceAllString(safe, "-")
	safe = strings.TrimSpace(safe)
	if safe == "" {
		return "untitled"
	}
	return safe
}

// DateStamp formats t in local time as YYYY-MM-DD-HHmmss
func DateStamp(t time.Time) string {
	return t.Local().Format("2006-01-02-150405")
}

// ExtensionFor maps a recorder MIME type to a file extension
func ExtensionFor(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "audio/mp4"):
		return "m4a"
	case strings.HasPrefix(mimeType, "audio/ogg"):
		return "ogg"
	default:
		return "webm"
	}
}

// SaveRecording writes the audio file and its session log side by side in
// the recording folder. Existing files are never overwritten.
func (v *Vault) SaveRecording(ctx context.Context, files ports.RecordingFiles) (*ports.SavedRecording, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	folder := filepath.Join(v.root, filepath.FromSlash(v.recordingFolder))
	if err := os.MkdirAll(folder, 0o750); err != nil {
		return nil, fmt.Errorf("creating recording folder: %w", err)
	}

	base := SanitizeFilename(files.NoteTitle) + "-" + DateStamp(files.StartedAt)
	saved := &ports.SavedRecording{
		AudioPath: path.Join(v.recordingFolder, base+"."+ExtensionFor(files.MimeType)),
		LogPath:   path.Join(v.recordingFolder, base+".session.json"),
	}

	if err := v.createFile(saved.AudioPath, files.Audio); err != nil {
		return nil, fmt.Errorf("writing audio: %w", err)
	}
	if err := v.createFile(saved.LogPath, files.LogJSON); err != nil {
		return nil, fmt.Errorf("writing session log: %w", err)
	}

	v.logger.Info("saved recording",
		slog.String("audio", saved.AudioPath),
		slog.String("log", saved.LogPath),
		slog.Int("audio_bytes", len(files.Audio)))

	return saved, nil
}

func (v *Vault) createFile(rel string, data []byte) error {
	abs, err := v.abs(rel)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640) // #nosec G304 - path is built inside the recording folder
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
