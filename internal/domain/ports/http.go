package ports

import (
	"context"
	"time"
)

// HTTPServer defines the interface for the presenter server
type HTTPServer interface {
	Start(ctx context.Context, port int, host string) error
	Stop(ctx context.Context) error
	NotifyClients(event UpdateEvent) error
	IsRunning() bool
}

// UpdateEvent represents an event sent to WebSocket clients
type UpdateEvent struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`

	// PresenterOnly events are withheld from stage clients
	PresenterOnly bool `json:"-"`
}

// UpdateEvent types that do not originate from presenter sync
const (
	EventTypeConnected = "connected"
	EventTypeReload    = "reload"
	EventTypeError     = "error"
)
