package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	httpadapter "github.com/fredcamaral/lecturelight/internal/adapters/primary/http"
	"github.com/fredcamaral/lecturelight/internal/adapters/secondary/ebml"
	"github.com/fredcamaral/lecturelight/internal/adapters/secondary/history"
	"github.com/fredcamaral/lecturelight/internal/adapters/secondary/monitoring"
	"github.com/fredcamaral/lecturelight/internal/adapters/secondary/watcher"
	"github.com/fredcamaral/lecturelight/internal/domain/ports"
	"github.com/fredcamaral/lecturelight/internal/domain/services"
)

func newServeCmd() *cobra.Command {
	var (
		port      int
		host      string
		vaultRoot string
		target    float64
		noWatch   bool
	)

	cmd := &cobra.Command{
		Use:   "serve <note>",
		Short: "Serve the presenter console and stage display for a note",
		Long: `Start a local presenter server for a note. Open /ws?mode=presenter from
the console and /ws?mode=stage from the projector; both follow the same
slide and timer. The deck reloads whenever the note changes on disk, and
recordings are saved into the vault next to their session logs.

Example:
  lecturelight serve Lectures/Optics.md
  lecturelight serve Optics.md --port 8080 --vault ~/Notes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var overrides ports.ConfigOverrides
			if cmd.Flags().Changed("port") {
				overrides.Port = &port
			}
			if cmd.Flags().Changed("host") {
				overrides.Host = &host
			}
			if cmd.Flags().Changed("vault") {
				abs, err := absFlag(vaultRoot)
				if err != nil {
					return err
				}
				overrides.VaultRoot = abs
			}
			if cmd.Flags().Changed("target") {
				overrides.TargetMinutes = &target
			}
			if cmd.Flags().Changed("no-watch") {
				watch := !noWatch
				overrides.Watch = &watch
			}

			ws, err := openWorkspace(cmd, args[0], overrides)
			if err != nil {
				return err
			}

			app, err := newPresenterApp(cmd.Context(), ws)
			if err != nil {
				return err
			}
			return app.Run(cmd.Context(), func(addr string) {
				fmt.Fprintf(cmd.OutOrStdout(), "Presenting %q at http://%s\n", app.sync.Deck().Title, addr)
			})
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to serve on (overrides config)")
	cmd.Flags().StringVar(&host, "host", "", "Host to bind to (overrides config)")
	cmd.Flags().StringVar(&vaultRoot, "vault", "", "Vault root (default: the note's directory)")
	cmd.Flags().Float64Var(&target, "target", 0, "Fallback target minutes for decks without a timer block")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not reload the deck when the note changes")

	return cmd
}

// presenterApp wires the presenter server for one note
type presenterApp struct {
	ws         *workspace
	sync       *services.PresenterSyncService
	server     *httpadapter.Server
	history    *history.SQLiteHistory
	liveReload *services.LiveReloadService
	monitor    *monitoring.Monitor
	logger     *slog.Logger
}

func newPresenterApp(ctx context.Context, ws *workspace) (*presenterApp, error) {
	cfg := ws.config
	logger := ws.logger

	// live reload loads the deck by its absolute path, so the first load does too
	deck, err := ws.decks.Load(ctx, ws.noteFile)
	if err != nil {
		return nil, err
	}

	app := &presenterApp{ws: ws, monitor: monitoring.NewMonitor(logger), logger: logger}

	// history is optional; recordings still save without it
	h, err := history.Open(ctx, cfg.Storage.HistoryPath, logger)
	if err != nil {
		logger.Warn("session history unavailable",
			slog.String("path", cfg.Storage.HistoryPath),
			slog.String("error", err.Error()))
	} else {
		app.history = h
	}

	app.sync = services.NewPresenterSyncService(deck, cfg.Timer.Settings(), nil, nil, logger)

	var opts []services.RecordingOption
	if app.history != nil {
		opts = append(opts, services.WithSessionHistory(app.history))
	}
	if cfg.Recording.ShouldAppendLinks() {
		opts = append(opts, services.WithNoteLinks(ws.vault))
	}
	recordings := services.NewRecordingService(ws.vault, ebml.Patcher{}, logger, opts...)

	app.server = httpadapter.NewServer(app.sync, recordings, &cfg.Server, logger)
	app.server.SetVaultRoot(ws.vault.Root())
	app.server.SetMetrics(app.monitor)
	if app.history != nil {
		app.server.SetSessionHistory(app.history)
	}

	if cfg.Watcher.IsEnabled() {
		w := watcher.NewPollingWatcher(cfg.Watcher.GetInterval(), cfg.Watcher.GetDebounce(), logger)
		app.liveReload = services.NewLiveReloadService(w, app.server, ws.decks, app.sync, logger)
		app.liveReload.SetMetrics(app.monitor)
	}

	return app, nil
}

// Start binds the server and starts live reload
func (a *presenterApp) Start(ctx context.Context) error {
	cfg := a.ws.config
	if err := a.server.Start(ctx, cfg.Server.Port, cfg.Server.Host); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	a.monitor.Start(ctx, monitoring.DefaultSampleInterval)

	if a.liveReload != nil {
		if err := a.liveReload.Start(ctx, a.ws.noteFile); err != nil {
			a.logger.Warn("live reload disabled", slog.String("error", err.Error()))
		}
	}

	a.logger.Info("presenter server started",
		slog.String("addr", a.server.Addr()),
		slog.String("note", a.ws.notePath),
		slog.Int("slides", a.sync.Deck().SlideCount()))
	return nil
}

// Shutdown stops everything Start started and closes the history database
func (a *presenterApp) Shutdown() error {
	var errs []error

	if a.liveReload != nil {
		if err := a.liveReload.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stopping live reload: %w", err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.ws.config.Server.GetShutdownTimeout())
	defer cancel()
	if a.server.IsRunning() {
		if err := a.server.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stopping server: %w", err))
		}
	}

	a.sync.Stop()
	a.monitor.Stop()

	if a.history != nil {
		if err := a.history.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing history: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Run starts the app, reports the bound address and blocks until ctx is done
func (a *presenterApp) Run(ctx context.Context, started func(addr string)) error {
	if err := a.Start(ctx); err != nil {
		_ = a.Shutdown()
		return err
	}
	if started != nil {
		started(a.server.Addr())
	}

	<-ctx.Done()
	a.logger.Info("shutting down presenter server")
	return a.Shutdown()
}
