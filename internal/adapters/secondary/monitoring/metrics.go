// Package monitoring collects request, reload and runtime figures for the
// presenter server.
package monitoring

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/fredcamaral/lecturelight/internal/domain/ports"
)

// DefaultSampleInterval is how often runtime memory figures are refreshed
const DefaultSampleInterval = 30 * time.Second

// Health limits
const (
	maxHealthyMemory     = 500 * 1024 * 1024
	maxHealthyGoroutines = 1000
)

// weight of the newest reload in the moving average
const reloadAlpha = 0.1

// Monitor implements ports.MetricsRecorder
type Monitor struct {
	metrics ports.MetricsSnapshot
	now     func() time.Time
	logger  *slog.Logger

	ticker  *time.Ticker
	stopCh  chan struct{}
	running bool

	mu sync.RWMutex
}

// NewMonitor creates a monitor whose uptime starts now
func NewMonitor(logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Monitor{
		now:    time.Now,
		logger: logger.With("adapter", "monitoring"),
	}
	m.metrics.StartedAt = m.now()
	return m
}

// Start samples runtime figures immediately and then every interval
func (m *Monitor) Start(ctx context.Context, interval time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}
	if interval <= 0 {
		interval = DefaultSampleInterval
	}

	m.running = true
	m.stopCh = make(chan struct{})
	m.ticker = time.NewTicker(interval)
	m.sampleLocked()

	go m.sampleLoop(ctx, m.ticker, m.stopCh)
}

// Stop stops sampling
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	m.running = false
	m.ticker.Stop()
	close(m.stopCh)
}

// IsRunning reports whether the sampler is active
func (m *Monitor) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

func (m *Monitor) sampleLoop(ctx context.Context, ticker *time.Ticker, stop <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			m.mu.Lock()
			m.sampleLocked()
			m.mu.Unlock()
		}
	}
}

func (m *Monitor) sampleLocked() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	m.metrics.MemoryBytes = safeUint64ToInt64(memStats.Alloc)
	m.metrics.HeapBytes = safeUint64ToInt64(memStats.HeapAlloc)
	m.metrics.Goroutines = runtime.NumGoroutine()
	m.metrics.GCCycles = memStats.NumGC
	m.metrics.LastSampledAt = m.now()
}

// RecordHTTPRequest counts a served request; 5xx responses count as errors
func (m *Monitor) RecordHTTPRequest(status int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics.HTTPRequests++
	if status >= http.StatusInternalServerError {
		m.metrics.HTTPErrors++
	}
}

// RecordWebSocketConnection counts an accepted display connection
func (m *Monitor) RecordWebSocketConnection() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics.WebSocketConnections++
}

// RecordDeckReload counts a live reload and folds its duration into the
// moving average. Failed reloads do not move the average.
func (m *Monitor) RecordDeckReload(duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics.DeckReloads++
	if err != nil {
		m.metrics.DeckReloadErrors++
		m.logger.Debug("deck reload failed", slog.String("error", err.Error()))
		return
	}

	ms := float64(duration) / float64(time.Millisecond)
	if m.metrics.AverageReloadMs == 0 {
		m.metrics.AverageReloadMs = ms
		return
	}
	m.metrics.AverageReloadMs = m.metrics.AverageReloadMs*(1-reloadAlpha) + ms*reloadAlpha
}

// RecordRecordingSaved counts a saved recording and its audio size
func (m *Monitor) RecordRecordingSaved(bytes int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics.RecordingsSaved++
	m.metrics.RecordedBytes += int64(bytes)
}

// Snapshot returns a copy of the current metrics
func (m *Monitor) Snapshot() ports.MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := m.metrics
	snapshot.UptimeSeconds = m.now().Sub(m.metrics.StartedAt).Seconds()
	snapshot.Healthy = snapshot.MemoryBytes < maxHealthyMemory &&
		snapshot.Goroutines < maxHealthyGoroutines
	return snapshot
}

// safeUint64ToInt64 safely converts uint64 to int64, capping at max int64 value
func safeUint64ToInt64(val uint64) int64 {
	if val > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(val)
}

// Ensure Monitor implements ports.MetricsRecorder
var _ ports.MetricsRecorder = (*Monitor)(nil)
