package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fredcamaral/lecturelight/internal/domain/entities"
	"github.com/fredcamaral/lecturelight/internal/domain/ports"
)

// Presenter command types, shared by the REST API and presenter sockets
const (
	CommandNavigate = "navigate"
	CommandTimer    = "timer"
	CommandMarker   = "marker"
	CommandTheme    = "theme"
)

// errUnknownCommand is returned for command types nobody handles
var errUnknownCommand = errors.New("unknown command")

// PresenterCommand is a control message from the presenter console
type PresenterCommand struct {
	Type   string `json:"type"`
	Action string `json:"action,omitempty"`
	Slide  int    `json:"slide,omitempty"`
	Label  string `json:"label,omitempty"`
	Theme  string `json:"theme,omitempty"`
}

// dispatch applies a presenter command to the sync service
func dispatch(sync ports.PresenterSync, cmd PresenterCommand) error {
	switch cmd.Type {
	case CommandNavigate:
		return sync.Navigate(strings.ToLower(strings.TrimSpace(cmd.Action)), cmd.Slide)
	case CommandTimer:
		return sync.Timer(strings.ToLower(strings.TrimSpace(cmd.Action)))
	case CommandMarker:
		return sync.Marker(strings.TrimSpace(cmd.Label), entities.TriggerManual)
	case CommandTheme:
		return sync.SetTheme(entities.StageTheme(strings.ToLower(strings.TrimSpace(cmd.Theme))))
	default:
		return fmt.Errorf("%w: %q", errUnknownCommand, cmd.Type)
	}
}
