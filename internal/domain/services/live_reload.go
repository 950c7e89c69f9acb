package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fredcamaral/lecturelight/internal/domain/ports"
)

// LiveReloadService re-parses the note when it changes on disk and pushes
// the new deck to every connected display
type LiveReloadService struct {
	watcher     ports.FileWatcher
	server      ports.HTTPServer
	decks       ports.DeckService
	presenter   ports.PresenterSync
	metrics     ports.MetricsRecorder
	logger      *slog.Logger
	mu          sync.Mutex
	watching    bool
	watchCancel context.CancelFunc
	notePath    string
}

// NewLiveReloadService creates a new live reload service
func NewLiveReloadService(
	watcher ports.FileWatcher,
	server ports.HTTPServer,
	decks ports.DeckService,
	presenter ports.PresenterSync,
	logger *slog.Logger,
) *LiveReloadService {
	if logger == nil {
		logger = slog.Default()
	}

	return &LiveReloadService{
		watcher:   watcher,
		server:    server,
		decks:     decks,
		presenter: presenter,
		logger:    logger.With("service", "live_reload"),
	}
}

// SetMetrics records the duration and outcome of every reload
func (s *LiveReloadService) SetMetrics(metrics ports.MetricsRecorder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = metrics
}

// Start starts watching the note at filePath
func (s *LiveReloadService) Start(ctx context.Context, filePath string) error {
	s.mu.Lock()
	if s.watching {
		s.mu.Unlock()
		return errors.New("already watching")
	}
	s.watching = true
	s.notePath = filePath

	watchCtx, cancel := context.WithCancel(ctx)
	s.watchCancel = cancel
	s.mu.Unlock()

	events, err := s.watcher.Watch(watchCtx, filePath)
	if err != nil {
		cancel()
		s.mu.Lock()
		s.watching = false
		s.watchCancel = nil
		s.mu.Unlock()
		return fmt.Errorf("starting watcher: %w", err)
	}

	go s.handleEvents(watchCtx, events)

	return nil
}

// Stop stops the live reload service
func (s *LiveReloadService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.watching {
		return nil
	}

	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}

	s.watching = false
	return nil
}

// IsWatching returns whether the service is currently watching
func (s *LiveReloadService) IsWatching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watching
}

// handleEvents handles file change events
func (s *LiveReloadService) handleEvents(ctx context.Context, events <-chan ports.FileChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}

			s.logger.Info("note changed",
				slog.String("path", event.Path),
				slog.String("type", event.Type.String()),
				slog.Time("timestamp", event.Timestamp),
			)

			if event.Type == ports.Deleted {
				s.notify(ports.UpdateEvent{
					Type:      ports.EventTypeError,
					Timestamp: event.Timestamp,
					Data: map[string]interface{}{
						"file":    event.Path,
						"message": "note was deleted",
					},
				})
				continue
			}

			started := time.Now()
			slides, err := s.reloadDeck(ctx)
			s.recordReload(time.Since(started), err)
			if err != nil {
				s.logger.Error("failed to reload deck",
					slog.String("error", err.Error()),
					slog.String("path", event.Path),
				)
				continue
			}

			s.notify(ports.UpdateEvent{
				Type:      ports.EventTypeReload,
				Timestamp: event.Timestamp,
				Data: map[string]interface{}{
					"file":   event.Path,
					"type":   event.Type.String(),
					"slides": slides,
				},
			})
		}
	}
}

func (s *LiveReloadService) recordReload(duration time.Duration, err error) {
	s.mu.Lock()
	metrics := s.metrics
	s.mu.Unlock()

	if metrics != nil {
		metrics.RecordDeckReload(duration, err)
	}
}

func (s *LiveReloadService) notify(event ports.UpdateEvent) {
	if err := s.server.NotifyClients(event); err != nil {
		s.logger.Warn("failed to notify websocket clients",
			slog.String("error", err.Error()),
			slog.String("event_type", event.Type),
		)
		return
	}
	s.logger.Debug("websocket clients notified", slog.String("event_type", event.Type))
}

// reloadDeck parses the note again and hands the deck to the presenter.
// It returns the new slide count.
func (s *LiveReloadService) reloadDeck(ctx context.Context) (int, error) {
	s.mu.Lock()
	path := s.notePath
	s.mu.Unlock()

	if path == "" {
		return 0, errors.New("no note path set")
	}

	deck, err := s.decks.Load(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("loading deck: %w", err)
	}

	s.presenter.SetDeck(deck)

	s.logger.Info("deck reloaded",
		slog.Int("slides", deck.SlideCount()),
		slog.String("path", path),
	)

	return deck.SlideCount(), nil
}
