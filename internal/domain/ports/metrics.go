package ports

import "time"

// MetricsRecorder counts what the presenter server does while a deck is live
type MetricsRecorder interface {
	RecordHTTPRequest(status int, duration time.Duration)
	RecordWebSocketConnection()
	RecordDeckReload(duration time.Duration, err error)
	RecordRecordingSaved(bytes int)

	Snapshot() MetricsSnapshot
}

// MetricsSnapshot is a point-in-time copy of the collected metrics
type MetricsSnapshot struct {
	StartedAt     time.Time `json:"startedAt"`
	UptimeSeconds float64   `json:"uptimeSeconds"`
	Healthy       bool      `json:"healthy"`

	HTTPRequests         int64 `json:"httpRequests"`
	HTTPErrors           int64 `json:"httpErrors"`
	WebSocketConnections int64 `json:"websocketConnections"`

	DeckReloads      int64   `json:"deckReloads"`
	DeckReloadErrors int64   `json:"deckReloadErrors"`
	AverageReloadMs  float64 `json:"averageReloadMs"`
	RecordingsSaved  int64   `json:"recordingsSaved"`
	RecordedBytes    int64   `json:"recordedBytes"`

	// Runtime figures are refreshed by the sampler
	LastSampledAt time.Time `json:"lastSampledAt"`
	MemoryBytes   int64     `json:"memoryBytes"`
	HeapBytes     int64     `json:"heapBytes"`
	Goroutines    int       `json:"goroutines"`
	GCCycles      uint32    `json:"gcCycles"`
}
