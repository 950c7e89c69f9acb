package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fredcamaral/lecturelight/internal/domain/entities"
	"github.com/fredcamaral/lecturelight/internal/domain/ports"
)

// RecordingService writes finished recordings into the vault with their
// session logs, and links them from the lecture note
type RecordingService struct {
	store       ports.RecordingStore
	notes       ports.NoteRepository
	history     ports.SessionHistory
	patcher     ports.ContainerPatcher
	appendLinks bool
	clock       ports.TimeProvider
	logger      *slog.Logger
}

// RecordingOption configures a RecordingService
type RecordingOption func(*RecordingService)

// WithSessionHistory records every saved session in history
func WithSessionHistory(history ports.SessionHistory) RecordingOption {
	return func(s *RecordingService) {
		s.history = history
	}
}

// WithNoteLinks appends links to the saved files to the lecture note
func WithNoteLinks(notes ports.NoteRepository) RecordingOption {
	return func(s *RecordingService) {
		s.notes = notes
		s.appendLinks = notes != nil
	}
}

// WithClock replaces wall time, used when a log carries no start time
func WithClock(clock ports.TimeProvider) RecordingOption {
	return func(s *RecordingService) {
		s.clock = clock
	}
}

// NewRecordingService creates a new recording service
func NewRecordingService(store ports.RecordingStore, patcher ports.ContainerPatcher, logger *slog.Logger, opts ...RecordingOption) *RecordingService {
	if logger == nil {
		logger = slog.Default()
	}

	s := &RecordingService{
		store:   store,
		patcher: patcher,
		clock:   ports.NewRealTimeProvider(),
		logger:  logger.With("service", "recording"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save repairs the recording, writes it with its session log and, when
// configured, links it from the note and records it in history. Failing
// to link or record does not fail the save.
func (s *RecordingService) Save(ctx context.Context, req ports.SaveRecordingRequest) (*ports.SaveRecordingResult, error) {
	if len(req.Audio) == 0 {
		return nil, errors.New("recording is empty")
	}
	if req.Log == nil {
		return nil, errors.New("session log is required")
	}

	durationMs := 0.0
	if req.Log.Summary != nil {
		durationMs = req.Log.Summary.TotalDurationSeconds * 1000
	}

	result := &ports.SaveRecordingResult{}
	if s.patcher != nil {
		result.PatchReport = s.patcher.Fix(req.Audio, req.MimeType, durationMs)
	}

	logJSON, err := ExportSessionLog(req.Log)
	if err != nil {
		return nil, err
	}

	startedAt := s.startedAt(req.Log)
	saved, err := s.store.SaveRecording(ctx, ports.RecordingFiles{
		NoteTitle: req.NoteTitle,
		StartedAt: startedAt,
		MimeType:  req.MimeType,
		Audio:     req.Audio,
		LogJSON:   logJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("saving recording: %w", err)
	}
	result.SavedRecording = *saved

	if s.appendLinks && req.NotePath != "" {
		if err := s.notes.AppendToNote(ctx, req.NotePath, SessionLinksSection(saved, startedAt)); err != nil {
			s.logger.Warn("failed to link recording from note",
				slog.String("note", req.NotePath),
				slog.String("error", err.Error()))
		} else {
			result.LinksAppended = true
		}
	}

	if s.history != nil {
		if err := s.history.Record(ctx, sessionRecord(req, saved)); err != nil {
			s.logger.Warn("failed to record session history",
				slog.String("session_id", req.Log.SessionID),
				slog.String("error", err.Error()))
		} else {
			result.HistoryStored = true
		}
	}

	s.logger.Info("recording saved",
		slog.String("audio", saved.AudioPath),
		slog.Int("normalized_clusters", result.Normalized),
		slog.Bool("duration_patched", result.DurationPatched))

	return result, nil
}

func (s *RecordingService) startedAt(log *entities.SessionLog) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, log.StartTime); err == nil {
		return t
	}
	return s.clock.Now()
}

// SessionLinksSection is the markdown appended to a note after a save
func SessionLinksSection(saved *ports.SavedRecording, startedAt time.Time) string {
	var b strings.Builder
	b.WriteString("\n## LectureLight session — ")
	b.WriteString(startedAt.Local().Format("January 2, 2006"))
	b.WriteString("\n\n![[")
	b.WriteString(saved.AudioPath)
	b.WriteString("]]\n\n[[")
	b.WriteString(saved.LogPath)
	b.WriteString("]]\n")
	return b.String()
}

func sessionRecord(req ports.SaveRecordingRequest, saved *ports.SavedRecording) entities.SessionRecord {
	record := entities.SessionRecord{
		ID:        req.Log.SessionID,
		DeckTitle: req.NoteTitle,
		StartedAt: req.Log.StartTime,
		AudioPath: saved.AudioPath,
		LogPath:   saved.LogPath,
		Status:    entities.SessionOnTrack,
	}
	if sum := req.Log.Summary; sum != nil {
		record.DurationSeconds = sum.TotalDurationSeconds
		record.SlideCount = sum.SlideCount
		record.MarkerCount = sum.MarkerCount
		record.Status = sum.Status
	}
	return record
}

// Ensure RecordingService implements ports.RecordingService
var _ ports.RecordingService = (*RecordingService)(nil)
