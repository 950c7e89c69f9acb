package ports

import (
	"context"
	"errors"
	"time"

	"github.com/fredcamaral/lecturelight/internal/domain/entities"
)

// ErrNoteNotFound is returned when a note path does not exist in the vault
var ErrNoteNotFound = errors.New("note not found")

// NoteRepository reads and amends notes in the vault
type NoteRepository interface {
	// ReadNote returns the raw note content
	ReadNote(ctx context.Context, path string) ([]byte, error)

	// AppendToNote appends text to the end of the note
	AppendToNote(ctx context.Context, path string, text string) error
}

// RecordingFiles is what gets written for one saved session
type RecordingFiles struct {
	NoteTitle string
	StartedAt time.Time
	MimeType  string
	Audio     []byte
	LogJSON   []byte
}

// SavedRecording reports the vault-relative paths that were written
type SavedRecording struct {
	AudioPath string `json:"audioPath"`
	LogPath   string `json:"logPath"`
}

// RecordingStore persists audio and session logs next to each other
type RecordingStore interface {
	SaveRecording(ctx context.Context, files RecordingFiles) (*SavedRecording, error)
}

// SessionHistory keeps a queryable record of saved sessions
type SessionHistory interface {
	Record(ctx context.Context, record entities.SessionRecord) error

	// List returns the most recent sessions, optionally filtered by deck title
	List(ctx context.Context, deckTitle string, limit int) ([]entities.SessionRecord, error)

	Close() error
}

// PatchReport describes what a container fix rewrote
type PatchReport struct {
	Normalized      int  `json:"normalizedClusters"`
	DurationPatched bool `json:"durationPatched"`
}

// ContainerPatcher repairs recorder output in place without changing its length
type ContainerPatcher interface {
	Fix(buf []byte, mimeType string, durationMs float64) PatchReport
}
