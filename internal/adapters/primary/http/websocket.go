package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/fredcamaral/lecturelight/internal/domain/entities"
	"github.com/fredcamaral/lecturelight/internal/domain/ports"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 1024
)

// ClientMode represents the type of WebSocket client
type ClientMode string

const (
	ClientModeStage     ClientMode = "stage"
	ClientModePresenter ClientMode = "presenter"
)

// WebSocketClient represents a WebSocket client connection
type WebSocketClient struct {
	id      string
	conn    *websocket.Conn
	send    chan ports.UpdateEvent
	events  <-chan entities.SyncEvent
	replies chan ports.UpdateEvent
	done    chan struct{}
	mode    ClientMode
	server  *Server
	logger  *slog.Logger
}

// createUpgrader creates a WebSocket upgrader with origin validation
func (s *Server) createUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.isValidOrigin,
	}
}

// handleWebSocket upgrades stage and presenter clients
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	mode := ClientModeStage
	switch ClientMode(r.URL.Query().Get("mode")) {
	case ClientModePresenter:
		mode = ClientModePresenter
	case ClientModeStage, "":
	default:
		s.handleError(w, fmt.Errorf("unknown client mode %q", r.URL.Query().Get("mode")), http.StatusBadRequest)
		return
	}

	upgrader := s.createUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	id := uuid.New().String()
	client := &WebSocketClient{
		id:      id,
		conn:    conn,
		send:    make(chan ports.UpdateEvent, 64),
		replies: make(chan ports.UpdateEvent, 8),
		done:    make(chan struct{}),
		mode:    mode,
		server:  s,
		logger:  s.logger.With(slog.String("client", id), slog.String("mode", string(mode))),
	}

	s.connMgr.RegisterConnection(&Connection{
		ID:        client.id,
		Send:      client.send,
		Presenter: mode == ClientModePresenter,
	})
	if metrics := s.metricsRecorder(); metrics != nil {
		metrics.RecordWebSocketConnection()
	}

	client.replies <- ports.UpdateEvent{
		Type:      ports.EventTypeConnected,
		Timestamp: time.Now(),
		Data: map[string]string{
			"clientId": client.id,
			"mode":     string(mode),
		},
	}

	// Subscribing replays the current slide and theme
	client.events = s.sync.Subscribe(client.id, mode == ClientModePresenter)

	client.logger.Debug("client connected")

	go client.writePump()
	go client.readPump()
}

// readPump pumps messages from the WebSocket connection
func (c *WebSocketClient) readPump() {
	defer func() {
		close(c.done)
		c.server.connMgr.Unregister(c.id)
		c.server.sync.Unsubscribe(c.id)
		_ = c.conn.Close()
		c.logger.Debug("client disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("WebSocket connection error", slog.String("error", err.Error()))
			}
			return
		}

		if c.mode != ClientModePresenter {
			c.logger.Debug("ignoring message from stage client")
			continue
		}

		var cmd PresenterCommand
		if err := json.Unmarshal(message, &cmd); err != nil {
			c.reply(ports.EventTypeError, map[string]string{"message": "invalid command"})
			continue
		}

		if err := dispatch(c.server.sync, cmd); err != nil {
			c.logger.Debug("presenter command failed", slog.String("type", cmd.Type), slog.String("error", err.Error()))
			c.reply(ports.EventTypeError, map[string]string{
				"command": cmd.Type,
				"message": err.Error(),
			})
		}
	}
}

// reply queues an event for this client only
func (c *WebSocketClient) reply(eventType string, data interface{}) {
	select {
	case c.replies <- ports.UpdateEvent{Type: eventType, Timestamp: time.Now(), Data: data}:
	default:
		c.logger.Warn("reply dropped, client is not reading")
	}
}

// writePump pumps messages to the WebSocket connection
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			if !ok {
				// The connection manager closed the channel
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if !c.write(event) {
				return
			}

		case event, ok := <-c.events:
			if !ok {
				c.events = nil
				continue
			}
			if !c.write(event) {
				return
			}

		case event := <-c.replies:
			if !c.write(event) {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}

func (c *WebSocketClient) write(v interface{}) bool {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(v); err != nil {
		c.logger.Debug("write failed", slog.String("error", err.Error()))
		return false
	}
	return true
}

// isValidOrigin validates WebSocket connection origins based on environment
func (s *Server) isValidOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	// Allow empty origin (same-origin requests)
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		s.logger.Warn("WebSocket connection rejected: invalid origin URL",
			slog.String("origin", origin),
			slog.String("error", err.Error()))
		return false
	}

	if s.isConfiguredOrigin(originURL) {
		return true
	}

	// Development mode: allow loopback and LAN addresses
	if s.config.IsDevelopment() && isLocalOrigin(originURL) {
		return true
	}

	s.logger.Warn("WebSocket connection rejected: origin not allowed",
		slog.String("origin", originURL.String()),
		slog.Any("allowed_origins", s.config.GetCORSOrigins()))
	return false
}

// isConfiguredOrigin checks the configured CORS origins
func (s *Server) isConfiguredOrigin(originURL *url.URL) bool {
	origin := originURL.Scheme + "://" + originURL.Host
	for _, allowed := range s.config.GetCORSOrigins() {
		if allowed == "*" || allowed == origin {
			return true
		}

		// Support wildcard subdomains (*.example.com)
		if strings.HasPrefix(allowed, "*.") {
			domain := strings.TrimPrefix(allowed, "*")
			if strings.HasSuffix(originURL.Hostname(), domain) {
				return true
			}
		}
	}
	return false
}

// isLocalOrigin accepts localhost, loopback and private network hosts
func isLocalOrigin(originURL *url.URL) bool {
	hostname := originURL.Hostname()
	if hostname == "localhost" {
		return true
	}

	ip := net.ParseIP(hostname)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified()
}
