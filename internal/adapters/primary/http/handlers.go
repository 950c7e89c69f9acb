package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fredcamaral/lecturelight/internal/domain/entities"
	"github.com/fredcamaral/lecturelight/internal/domain/ports"
)

// headerNoteTitle optionally overrides the deck title used for file names
const headerNoteTitle = "X-Note-Title"

// defaultRecordingMime is assumed when the upload has no Content-Type
const defaultRecordingMime = "audio/webm"

// maxCommandBytes caps JSON command bodies
const maxCommandBytes = 4 << 10

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string    `json:"error"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// HealthResponse is returned by /healthz
type HealthResponse struct {
	Status  string `json:"status"`
	Slides  int    `json:"slides"`
	Clients int    `json:"clients"`
}

// MetricsResponse is returned by /api/metrics
type MetricsResponse struct {
	ports.MetricsSnapshot

	// Clients is the number of displays connected right now
	Clients int `json:"clients"`
}

// SessionsResponse lists saved sessions
type SessionsResponse struct {
	Sessions []entities.SessionRecord `json:"sessions"`
}

// handleDeck returns the deck; stage clients get slide bodies only
func (s *Server) handleDeck(w http.ResponseWriter, r *http.Request) {
	deck := s.sync.Deck()
	if deck == nil {
		deck = &entities.Deck{Slides: []entities.Slide{}}
	}

	if r.URL.Query().Get("mode") == string(ClientModeStage) {
		deck = stageDeck(deck)
	}

	s.writeJSON(w, http.StatusOK, deck)
}

// stageDeck copies deck without presenter-only text
func stageDeck(deck *entities.Deck) *entities.Deck {
	stage := *deck
	stage.Slides = make([]entities.Slide, len(deck.Slides))
	for i, slide := range deck.Slides {
		slide.Notes = ""
		slide.SpeakerNotesHTML = ""
		slide.RawMarkdown = ""
		stage.Slides[i] = slide
	}
	return &stage
}

// handleState returns the current presenter state
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.sync.GetState())
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	s.handleCommand(w, r, CommandNavigate)
}

func (s *Server) handleTimer(w http.ResponseWriter, r *http.Request) {
	s.handleCommand(w, r, CommandTimer)
}

func (s *Server) handleMarker(w http.ResponseWriter, r *http.Request) {
	s.handleCommand(w, r, CommandMarker)
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	s.handleCommand(w, r, CommandTheme)
}

// handleCommand decodes a JSON command body, applies it and answers with the
// resulting presenter state
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request, commandType string) {
	var cmd PresenterCommand
	if r.ContentLength != 0 {
		body := http.MaxBytesReader(w, r.Body, maxCommandBytes)
		if err := json.NewDecoder(body).Decode(&cmd); err != nil && !errors.Is(err, io.EOF) {
			s.handleError(w, fmt.Errorf("decoding %s command: %w", commandType, err), http.StatusBadRequest)
			return
		}
	}
	cmd.Type = commandType

	if err := dispatch(s.sync, cmd); err != nil {
		s.handleError(w, err, commandStatus(err))
		return
	}

	s.writeJSON(w, http.StatusOK, s.sync.GetState())
}

// commandStatus maps presenter errors onto HTTP status codes
func commandStatus(err error) int {
	if errors.Is(err, ports.ErrSessionNotStarted) {
		return http.StatusConflict
	}
	return http.StatusBadRequest
}

// handleRecording stores an uploaded recording with the last finished session
func (s *Server) handleRecording(w http.ResponseWriter, r *http.Request) {
	if s.recordings == nil {
		s.handleError(w, errors.New("recording is not available"), http.StatusServiceUnavailable)
		return
	}

	body := http.MaxBytesReader(w, r.Body, s.config.GetMaxUploadBytes())
	audio, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.handleError(w, fmt.Errorf("recording exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		s.handleError(w, fmt.Errorf("reading recording: %w", err), http.StatusBadRequest)
		return
	}
	if len(audio) == 0 {
		s.handleError(w, errors.New("recording is empty"), http.StatusBadRequest)
		return
	}

	log := s.sync.LastSession()
	if log == nil {
		s.handleError(w, fmt.Errorf("no finished session to attach: %w", ports.ErrSessionNotStarted), http.StatusConflict)
		return
	}

	mimeType := strings.TrimSpace(r.Header.Get("Content-Type"))
	if mimeType == "" {
		mimeType = defaultRecordingMime
	}

	req := ports.SaveRecordingRequest{
		Audio:    audio,
		MimeType: mimeType,
		Log:      log,
	}
	if deck := s.sync.Deck(); deck != nil {
		req.NoteTitle = deck.Title
		req.NotePath = deck.SourcePath
	}
	if title := noteTitleHeader(r); title != "" {
		req.NoteTitle = title
	}

	result, err := s.recordings.Save(r.Context(), req)
	if err != nil {
		s.handleError(w, err, http.StatusInternalServerError)
		return
	}

	if metrics := s.metricsRecorder(); metrics != nil {
		metrics.RecordRecordingSaved(len(audio))
	}
	s.logger.Info("recording saved",
		slog.String("audio", result.AudioPath),
		slog.Int("normalized_clusters", result.Normalized),
		slog.Bool("duration_patched", result.DurationPatched))

	s.writeJSON(w, http.StatusCreated, result)
}

// noteTitleHeader reads X-Note-Title, which browsers send percent-encoded
// when the title is not ASCII
func noteTitleHeader(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get(headerNoteTitle))
	if raw == "" {
		return ""
	}
	if decoded, err := url.PathUnescape(raw); err == nil {
		return strings.TrimSpace(decoded)
	}
	return raw
}

// handleSessions lists saved sessions, optionally for one deck
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	history := s.history
	s.mu.RUnlock()

	if history == nil {
		s.handleError(w, errors.New("session history is disabled"), http.StatusServiceUnavailable)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.handleError(w, fmt.Errorf("invalid limit %q", raw), http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	records, err := history.List(r.Context(), r.URL.Query().Get("deck"), limit)
	if err != nil {
		s.handleError(w, err, http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, SessionsResponse{Sessions: records})
}

// handleMetrics reports what the server has done since it started
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics := s.metricsRecorder()
	if metrics == nil {
		s.handleError(w, errors.New("metrics are disabled"), http.StatusServiceUnavailable)
		return
	}

	s.writeJSON(w, http.StatusOK, MetricsResponse{
		MetricsSnapshot: metrics.Snapshot(),
		Clients:         s.connMgr.Count(),
	})
}

func (s *Server) metricsRecorder() ports.MetricsRecorder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metrics
}

// handleHealth reports liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Slides:  s.sync.Deck().SlideCount(),
		Clients: s.connMgr.Count(),
	})
}

// handleError writes a JSON error. Server-side failures get a generic
// message; the cause is only logged.
func (s *Server) handleError(w http.ResponseWriter, err error, status int) {
	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = "Internal server error"
		s.logger.Error("HTTP error", slog.Int("status", status), slog.String("error", err.Error()))
	} else {
		s.logger.Debug("HTTP client error", slog.Int("status", status), slog.String("error", err.Error()))
	}

	s.writeJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Time:    time.Now(),
	})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}
