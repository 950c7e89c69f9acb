package ports

import (
	"context"
	"errors"

	"github.com/fredcamaral/lecturelight/internal/domain/entities"
)

// ErrSessionNotStarted is returned when a session operation needs a running session
var ErrSessionNotStarted = errors.New("session not started")

// DeckService loads notes into decks
type DeckService interface {
	// Load reads the note at path and parses it
	Load(ctx context.Context, path string) (*entities.Deck, error)

	// Parse parses note content that has already been read
	Parse(ctx context.Context, content []byte, sourcePath string) (*entities.Deck, error)

	// Estimate reads the note at path and estimates its speaking time
	Estimate(ctx context.Context, path string, wordsPerMinute int) (*entities.SpeechEstimate, error)
}

// PresenterSync keeps the presenter console and stage displays in step
type PresenterSync interface {
	// Subscribe adds a client to receive sync events
	Subscribe(clientID string, presenter bool) <-chan entities.SyncEvent

	// Unsubscribe removes a client from sync events
	Unsubscribe(clientID string)

	// Navigate moves to another slide (next, prev, goto, first, last)
	Navigate(action string, slide int) error

	// Timer drives the session clock (start, stop, pause, resume, reset)
	Timer(action string) error

	// Marker adds a marker to the running session
	Marker(label string, trigger entities.TriggerType) error

	// SetTheme switches the stage colour scheme
	SetTheme(theme entities.StageTheme) error

	// SetDeck replaces the deck after a reload
	SetDeck(deck *entities.Deck)

	// Deck returns the deck currently presented
	Deck() *entities.Deck

	// GetState returns the current presenter state
	GetState() *entities.PresenterState

	// LastSession returns the most recently finished session log
	LastSession() *entities.SessionLog

	// Stop stops the sync service
	Stop()
}

// SaveRecordingRequest carries a finished recording from the browser
type SaveRecordingRequest struct {
	Audio     []byte
	MimeType  string
	Log       *entities.SessionLog
	NoteTitle string
	NotePath  string
}

// SaveRecordingResult reports what was written and patched
type SaveRecordingResult struct {
	SavedRecording
	PatchReport
	LinksAppended bool `json:"linksAppended"`
	HistoryStored bool `json:"historyStored"`
}

// RecordingService stores recordings with their session logs
type RecordingService interface {
	Save(ctx context.Context, req SaveRecordingRequest) (*SaveRecordingResult, error)
}
