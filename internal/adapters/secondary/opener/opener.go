package opener

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"

	"github.com/fredcamaral/lecturelight/internal/domain/ports"
)

// Opener implements the FileOpener interface
type Opener struct {
	handlers []Handler
	lookPath func(file string) (string, error)
	start    func(name string, args ...string) error
	logger   *slog.Logger
}

// Handler is a platform command able to open a file or URL
type Handler struct {
	Name    string
	Command string
	Args    func(target string) []string
}

// New creates an opener for the current platform
func New(logger *slog.Logger) *Opener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Opener{
		handlers: platformHandlers(runtime.GOOS),
		lookPath: exec.LookPath,
		start:    startDetached,
		logger:   logger.With("adapter", "opener"),
	}
}

// Open hands target to the first available handler without waiting for it
func (o *Opener) Open(target string) error {
	if target == "" {
		return errors.New("nothing to open")
	}

	handler, err := o.selectHandler()
	if err != nil {
		return fmt.Errorf("handler selection: %w", err)
	}

	if err := o.start(handler.Command, handler.Args(target)...); err != nil {
		return fmt.Errorf("launching %s: %w", handler.Name, err)
	}
	o.logger.Debug("opened", "target", target, "handler", handler.Name)
	return nil
}

// Detect returns the handler Open would use
func (o *Opener) Detect() (string, error) {
	handler, err := o.selectHandler()
	if err != nil {
		return "", err
	}
	return handler.Name, nil
}

// selectHandler returns the first handler whose executable is in PATH
func (o *Opener) selectHandler() (*Handler, error) {
	if len(o.handlers) == 0 {
		return nil, errors.New("no handlers for this platform")
	}

	for i := range o.handlers {
		if _, err := o.lookPath(o.handlers[i].Command); err == nil {
			return &o.handlers[i], nil
		}
	}

	return nil, errors.New("no supported handler found on this system")
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...) // #nosec G204 - command comes from platformHandlers
	if err := cmd.Start(); err != nil {
		return err
	}

	// Don't wait for the player to exit
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func platformHandlers(goos string) []Handler {
	single := func(target string) []string { return []string{target} }

	switch goos {
	case "darwin":
		return []Handler{
			{Name: "open", Command: "open", Args: single},
		}
	case "linux", "freebsd", "openbsd", "netbsd":
		return []Handler{
			{Name: "xdg-open", Command: "xdg-open", Args: single},
			{
				Name:    "gio",
				Command: "gio",
				Args: func(target string) []string {
					return []string{"open", target}
				},
			},
		}
	case "windows":
		return []Handler{
			{
				Name:    "start",
				Command: "cmd",
				Args: func(target string) []string {
					// the empty argument is the window title start expects first
					return []string{"/c", "start", "", target}
				},
			},
		}
	default:
		return []Handler{}
	}
}

// Ensure Opener implements ports.FileOpener
var _ ports.FileOpener = (*Opener)(nil)
