package http

import (
	"context"
	"sync"

	"github.com/fredcamaral/lecturelight/internal/domain/ports"
)

// Connection represents a WebSocket connection
type Connection struct {
	ID        string
	Send      chan ports.UpdateEvent
	Presenter bool
}

// ConnectionManager manages WebSocket connections
type ConnectionManager struct {
	connections map[string]*Connection
	broadcast   chan ports.UpdateEvent
	register    chan *Connection
	unregister  chan string
	mu          sync.RWMutex
	done        chan struct{}
	doneOnce    sync.Once
}

// NewConnectionManager creates a new connection manager
func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]*Connection),
		broadcast:   make(chan ports.UpdateEvent, 256),
		register:    make(chan *Connection),
		unregister:  make(chan string),
		done:        make(chan struct{}),
	}
}

// Run starts the connection manager main loop
func (cm *ConnectionManager) Run(ctx context.Context) {
	defer cm.doneOnce.Do(func() { close(cm.done) })

	for {
		select {
		case <-ctx.Done():
			return
		case conn := <-cm.register:
			cm.mu.Lock()
			cm.connections[conn.ID] = conn
			cm.mu.Unlock()

		case id := <-cm.unregister:
			cm.remove(id)

		case event := <-cm.broadcast:
			cm.deliver(event)
		}
	}
}

func (cm *ConnectionManager) deliver(event ports.UpdateEvent) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for id, conn := range cm.connections {
		if event.PresenterOnly && !conn.Presenter {
			continue
		}
		select {
		case conn.Send <- event:
		default:
			// Client too slow, close connection
			close(conn.Send)
			delete(cm.connections, id)
		}
	}
}

func (cm *ConnectionManager) remove(id string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if conn, ok := cm.connections[id]; ok {
		delete(cm.connections, id)
		close(conn.Send)
	}
}

// RegisterConnection adds a new connection
func (cm *ConnectionManager) RegisterConnection(conn *Connection) {
	select {
	case cm.register <- conn:
	case <-cm.done:
		close(conn.Send)
	}
}

// Unregister removes a connection
func (cm *ConnectionManager) Unregister(connID string) {
	select {
	case cm.unregister <- connID:
	case <-cm.done:
		cm.remove(connID)
	}
}

// Broadcast sends an event to all connections
func (cm *ConnectionManager) Broadcast(event ports.UpdateEvent) {
	select {
	case cm.broadcast <- event:
	case <-cm.done:
		// Manager is shutting down
	}
}

// Count returns the number of registered connections
func (cm *ConnectionManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.connections)
}

// CloseAll closes all connections
func (cm *ConnectionManager) CloseAll() {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for id, conn := range cm.connections {
		close(conn.Send)
		delete(cm.connections, id)
	}
}
