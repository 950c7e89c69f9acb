package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fredcamaral/lecturelight/internal/adapters/secondary/history"
	"github.com/fredcamaral/lecturelight/internal/adapters/secondary/opener"
	"github.com/fredcamaral/lecturelight/internal/domain/entities"
	"github.com/fredcamaral/lecturelight/internal/domain/ports"
)

var sessionColors = map[entities.SessionStatus]*color.Color{
	entities.SessionUnderTime: color.New(color.FgCyan),
	entities.SessionOnTrack:   color.New(color.FgGreen),
	entities.SessionOvertime:  color.New(color.FgRed),
}

// newOpener is replaced in tests
var newOpener = func(logger *slog.Logger) ports.FileOpener {
	return opener.New(logger)
}

func newSessionsCmd() *cobra.Command {
	var (
		deckTitle string
		limit     int
		format    string
		open      bool
	)

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recorded sessions",
		Long: `List the sessions saved from the presenter, newest first.

Example:
  lecturelight sessions
  lecturelight sessions --deck "Optics: Lecture 3" --limit 5
  lecturelight sessions --format json
  lecturelight sessions --deck "Optics: Lecture 3" --open`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "table" && format != formatJSON && format != formatYAML {
				return fmt.Errorf("unknown format %q (must be table, json or yaml)", format)
			}

			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting working directory: %w", err)
			}
			cfg, err := loadConfig(cmd, dir, ports.ConfigOverrides{})
			if err != nil {
				return err
			}
			logger := newLogger(cmd, cfg)

			h, err := history.Open(cmd.Context(), cfg.Storage.HistoryPath, logger)
			if err != nil {
				return fmt.Errorf("opening session history: %w", err)
			}
			defer func() { _ = h.Close() }()

			records, err := h.List(cmd.Context(), deckTitle, limit)
			if err != nil {
				return err
			}

			if open {
				return openLatestRecording(cmd, cfg, records, newOpener(logger))
			}
			if format != "table" {
				return writeValue(cmd.OutOrStdout(), records, format)
			}
			return writeSessionTable(cmd.OutOrStdout(), records)
		},
	}

	cmd.Flags().StringVar(&deckTitle, "deck", "", "Only list sessions of this deck")
	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultListLimit, "Maximum number of sessions")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json or yaml")
	cmd.Flags().BoolVar(&open, "open", false, "Play the newest listed recording with the system player")

	return cmd
}

// openLatestRecording plays the audio of the newest record that has one
func openLatestRecording(cmd *cobra.Command, cfg *entities.Config, records []entities.SessionRecord, o ports.FileOpener) error {
	for _, r := range records {
		if r.AudioPath == "" {
			continue
		}

		path := filepath.FromSlash(r.AudioPath)
		if !filepath.IsAbs(path) {
			root := cfg.Vault.Root
			if root == "" {
				var err error
				if root, err = os.Getwd(); err != nil {
					return fmt.Errorf("getting working directory: %w", err)
				}
			}
			path = filepath.Join(root, path)
		}

		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("recording of session %s: %w", r.ID, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Opening %s\n", path)
		return o.Open(path)
	}
	return errors.New("no recorded audio among the listed sessions")
}

func writeSessionTable(w io.Writer, records []entities.SessionRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No sessions recorded yet")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tDECK\tDURATION\tSLIDES\tMARKERS\tSTATUS\tAUDIO")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			formatStarted(r.StartedAt),
			r.DeckTitle,
			formatSeconds(r.DurationSeconds),
			r.SlideCount,
			r.MarkerCount,
			colorStatus(r.Status),
			r.AudioPath)
	}
	return tw.Flush()
}

func formatStarted(started string) string {
	t, err := time.Parse(time.RFC3339Nano, started)
	if err != nil {
		return started
	}
	return t.Local().Format("2006-01-02 15:04")
}

func formatSeconds(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	return d.String()
}

func colorStatus(status entities.SessionStatus) string {
	if c, ok := sessionColors[status]; ok {
		return c.Sprint(string(status))
	}
	return string(status)
}
