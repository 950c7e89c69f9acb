package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fredcamaral/lecturelight/internal/domain/entities"
	"github.com/fredcamaral/lecturelight/internal/domain/ports"
)

// Navigation actions
const (
	NavigateNext  = "next"
	NavigatePrev  = "prev"
	NavigateGoto  = "goto"
	NavigateFirst = "first"
	NavigateLast  = "last"
)

// Timer actions
const (
	TimerStart  = "start"
	TimerStop   = "stop"
	TimerPause  = "pause"
	TimerResume = "resume"
	TimerReset  = "reset"
)

// clientBuffer is the number of events queued per client before drops
const clientBuffer = 32

type subscriber struct {
	events    chan entities.SyncEvent
	presenter bool
}

// PresenterSyncService keeps the presenter console and the stage displays in
// step. It owns the slide position, the session clock and the stage theme.
type PresenterSyncService struct {
	mu       sync.Mutex
	clients  map[string]*subscriber
	deck     *entities.Deck
	fallback entities.TimerSettings
	current  int
	theme    entities.StageTheme

	// session clock
	running     bool
	paused      bool
	startedAt   time.Time
	accumulated time.Duration

	recorder    *SessionRecorder
	lastSession *entities.SessionLog

	clock  ports.TimeProvider
	ticker ports.Ticker
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// NewPresenterSyncService creates a new presenter sync service. fallback is
// used when the deck carries no timer settings of its own.
func NewPresenterSyncService(
	deck *entities.Deck,
	fallback entities.TimerSettings,
	clock ports.TimeProvider,
	recorder *SessionRecorder,
	logger *slog.Logger,
) *PresenterSyncService {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = ports.NewRealTimeProvider()
	}
	if recorder == nil {
		recorder = NewSessionRecorder(clock, nil, logger)
	}
	if deck == nil {
		deck = &entities.Deck{Slides: []entities.Slide{}}
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &PresenterSyncService{
		clients:  make(map[string]*subscriber),
		deck:     deck,
		fallback: fallback,
		theme:    entities.StageThemeDark,
		recorder: recorder,
		clock:    clock,
		logger:   logger.With("service", "presenter_sync"),
		ctx:      ctx,
		cancel:   cancel,
	}

	s.startTicker()

	return s
}

// Subscribe adds a client to receive sync events. Stage clients never see
// presenter-only events.
func (s *PresenterSyncService) Subscribe(clientID string, presenter bool) <-chan entities.SyncEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, exists := s.clients[clientID]; exists {
		close(old.events)
	}

	sub := &subscriber{
		events:    make(chan entities.SyncEvent, clientBuffer),
		presenter: presenter,
	}
	s.clients[clientID] = sub

	// Bring the new client up to date
	if slide, err := s.deck.SlideAt(s.current); err == nil {
		s.sendLocked(clientID, sub, entities.NewSlideChangeEvent(slide, s.current, s.deck.SlideCount()))
	}
	s.sendLocked(clientID, sub, entities.NewThemeChangeEvent(s.theme))
	if presenter {
		s.sendLocked(clientID, sub, s.stateEventLocked())
	}

	return sub.events
}

// Unsubscribe removes a client from sync events
func (s *PresenterSyncService) Unsubscribe(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub, exists := s.clients[clientID]; exists {
		close(sub.events)
		delete(s.clients, clientID)
	}
}

// Navigate moves to another slide. Arriving on the first slide while the
// session clock runs restarts the clock.
func (s *PresenterSyncService) Navigate(action string, slide int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.deck.SlideCount()
	if total == 0 {
		return errors.New("deck has no slides")
	}

	target := s.current
	switch action {
	case NavigateNext:
		if target < total-1 {
			target++
		}
	case NavigatePrev:
		if target > 0 {
			target--
		}
	case NavigateGoto:
		if slide < 0 || slide >= total {
			return fmt.Errorf("slide %d out of range [0,%d)", slide, total)
		}
		target = slide
	case NavigateFirst:
		target = 0
	case NavigateLast:
		target = total - 1
	default:
		return fmt.Errorf("unknown navigation action: %s", action)
	}

	changed := target != s.current
	s.current = target

	if target == 0 && s.running {
		s.resetClockLocked()
	}
	if changed {
		s.recorder.TrackSlideChange(target, s.deck.Slides[target].Label)
	}

	s.broadcastSlideLocked()
	s.broadcastLocked(s.stateEventLocked())
	return nil
}

// Timer drives the session clock. start opens a session log and stop
// finalizes it.
func (s *PresenterSyncService) Timer(action string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()

	switch action {
	case TimerStart:
		if s.running {
			return nil
		}
		s.running = true
		s.paused = false
		s.startedAt = now
		s.accumulated = 0
		settings := s.settingsLocked()
		s.recorder.Start("", &settings)
	case TimerPause:
		if s.running && !s.paused {
			s.accumulated += now.Sub(s.startedAt)
			s.paused = true
		}
	case TimerResume:
		if s.running && s.paused {
			s.startedAt = now
			s.paused = false
		}
	case TimerStop:
		if !s.running {
			return nil
		}
		if !s.paused {
			s.accumulated += now.Sub(s.startedAt)
		}
		s.running = false
		s.paused = false
		if log, ok := s.recorder.Stop(); ok {
			s.lastSession = log
		}
	case TimerReset:
		s.resetClockLocked()
	default:
		return fmt.Errorf("unknown timer action: %s", action)
	}

	s.logger.Debug("timer action", slog.String("action", action))
	s.broadcastLocked(s.timerEventLocked())
	return nil
}

// Marker records a marker in the running session
func (s *PresenterSyncService) Marker(label string, trigger entities.TriggerType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || !s.recorder.Active() {
		return ports.ErrSessionNotStarted
	}

	s.recorder.TrackMarker(label, trigger)

	event := entities.NewSyncEvent(entities.SyncMarker, map[string]interface{}{
		"label":          label,
		"elapsedSeconds": s.elapsedSecondsLocked(),
	})
	event.PresenterOnly = true
	s.broadcastLocked(event)
	return nil
}

// SetTheme switches the stage colour scheme
func (s *PresenterSyncService) SetTheme(theme entities.StageTheme) error {
	if theme != entities.StageThemeDark && theme != entities.StageThemeLight {
		return fmt.Errorf("unknown stage theme: %s", theme)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.theme = theme
	s.broadcastLocked(entities.NewThemeChangeEvent(theme))
	return nil
}

// SetDeck replaces the deck after a reload, keeping the position when it
// still exists
func (s *PresenterSyncService) SetDeck(deck *entities.Deck) {
	if deck == nil {
		deck = &entities.Deck{Slides: []entities.Slide{}}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.deck = deck
	if s.current >= deck.SlideCount() {
		s.current = deck.SlideCount() - 1
	}
	if s.current < 0 {
		s.current = 0
	}

	s.broadcastSlideLocked()
	s.broadcastLocked(s.stateEventLocked())
}

// Deck returns the deck currently presented
func (s *PresenterSyncService) Deck() *entities.Deck {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deck
}

// GetState returns the current presenter state
func (s *PresenterSyncService) GetState() *entities.PresenterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// LastSession returns the most recently finished session log
func (s *PresenterSyncService) LastSession() *entities.SessionLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyLog(s.lastSession)
}

// Recorder returns the session recorder driven by the timer
func (s *PresenterSyncService) Recorder() *SessionRecorder {
	return s.recorder
}

func (s *PresenterSyncService) stateLocked() *entities.PresenterState {
	state := &entities.PresenterState{
		CurrentSlide:  s.current,
		TotalSlides:   s.deck.SlideCount(),
		SessionActive: s.running,
		Paused:        s.paused,
		Timer:         ReadTimer(s.elapsedSecondsLocked(), s.running && !s.paused, s.settingsLocked()),
		StageTheme:    s.theme,
	}

	if slide, err := s.deck.SlideAt(s.current); err == nil {
		state.Label = slide.Label
		state.Notes = slide.Notes
		state.SpeakerNotes = slide.SpeakerNotesHTML
	}
	if next, err := s.deck.SlideAt(s.current + 1); err == nil {
		state.NextSlideLabel = next.Label
	} else {
		state.NextSlideLabel = "End of presentation"
	}
	if log := s.recorder.Log(); log != nil && s.running {
		state.SessionID = log.SessionID
	}

	return state
}

func (s *PresenterSyncService) settingsLocked() entities.TimerSettings {
	return s.deck.ResolveTimerSettings(s.fallback)
}

func (s *PresenterSyncService) elapsedSecondsLocked() int {
	elapsed := s.accumulated
	if s.running && !s.paused {
		elapsed += s.clock.Now().Sub(s.startedAt)
	}
	return int(elapsed / time.Second)
}

func (s *PresenterSyncService) resetClockLocked() {
	s.accumulated = 0
	s.startedAt = s.clock.Now()
}

func (s *PresenterSyncService) stateEventLocked() entities.SyncEvent {
	event := entities.NewSyncEvent(entities.SyncNavigation, map[string]interface{}{
		"state": s.stateLocked(),
	})
	event.PresenterOnly = true
	return event
}

func (s *PresenterSyncService) timerEventLocked() entities.SyncEvent {
	event := entities.NewSyncEvent(entities.SyncTimer, map[string]interface{}{
		"reading":       ReadTimer(s.elapsedSecondsLocked(), s.running && !s.paused, s.settingsLocked()),
		"sessionActive": s.running,
		"paused":        s.paused,
	})
	event.PresenterOnly = true
	return event
}

func (s *PresenterSyncService) broadcastSlideLocked() {
	slide, err := s.deck.SlideAt(s.current)
	if err != nil {
		return
	}
	s.broadcastLocked(entities.NewSlideChangeEvent(slide, s.current, s.deck.SlideCount()))
}

// broadcastLocked sends an event to every eligible client without blocking
func (s *PresenterSyncService) broadcastLocked(event entities.SyncEvent) {
	for clientID, sub := range s.clients {
		if event.PresenterOnly && !sub.presenter {
			continue
		}
		s.sendLocked(clientID, sub, event)
	}
}

func (s *PresenterSyncService) sendLocked(clientID string, sub *subscriber, event entities.SyncEvent) {
	select {
	case sub.events <- event:
	default:
		s.logger.Warn("client is slow, dropping event",
			slog.String("client_id", clientID),
			slog.String("event_type", event.Type))
	}
}

// startTicker pushes a timer reading every second while the clock runs
func (s *PresenterSyncService) startTicker() {
	s.ticker = s.clock.NewTicker(time.Second)

	go func() {
		for {
			select {
			case <-s.ctx.Done():
				return
			case <-s.ticker.C():
				s.mu.Lock()
				if s.running && !s.paused {
					s.broadcastLocked(s.timerEventLocked())
				}
				s.mu.Unlock()
			}
		}
	}()
}

// Stop stops the sync service
func (s *PresenterSyncService) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
	}

	s.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Close all client channels
	for clientID, sub := range s.clients {
		close(sub.events)
		delete(s.clients, clientID)
	}
}

// Ensure PresenterSyncService implements ports.PresenterSync
var _ ports.PresenterSync = (*PresenterSyncService)(nil)
