package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fredcamaral/lecturelight/internal/domain/entities"
	"github.com/fredcamaral/lecturelight/internal/domain/ports"
	"github.com/fredcamaral/lecturelight/internal/domain/services"
)

var statusColors = map[entities.TimerStatus]*color.Color{
	entities.TimerStatusGreen:    color.New(color.FgGreen, color.Bold),
	entities.TimerStatusYellow:   color.New(color.FgYellow, color.Bold),
	entities.TimerStatusRed:      color.New(color.FgRed, color.Bold),
	entities.TimerStatusOvertime: color.New(color.FgWhite, color.BgRed, color.Bold),
}

func newTimerCmd() *cobra.Command {
	var (
		target    float64
		stopAfter time.Duration
	)

	cmd := &cobra.Command{
		Use:   "timer <note>",
		Short: "Run the lecture countdown in the terminal",
		Long: `Start a countdown with the note's timer settings (or the configured
defaults) and print it once a second, coloured green, yellow, red or
overtime. Press Ctrl+C to stop.

Example:
  lecturelight timer Optics.md
  lecturelight timer Optics.md --target 45`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, args[0], ports.ConfigOverrides{})
			if err != nil {
				return err
			}

			deck, err := ws.decks.Load(cmd.Context(), ws.notePath)
			if err != nil {
				return err
			}

			settings := deck.ResolveTimerSettings(ws.config.Timer.Settings())
			if cmd.Flags().Changed("target") {
				settings.TargetMinutes = target
			}
			if err := settings.Validate(); err != nil {
				return fmt.Errorf("timer settings: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", deck.Title, formatSettings(services.NormalizeThresholds(settings)))

			ctx := cmd.Context()
			if stopAfter > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, stopAfter)
				defer cancel()
			}

			c := &countdown{
				settings: settings,
				clock:    ports.NewRealTimeProvider(),
				out:      cmd.OutOrStdout(),
			}
			c.Run(ctx)
			return nil
		},
	}

	cmd.Flags().Float64Var(&target, "target", 0, "Target length in minutes (overrides the note)")
	cmd.Flags().DurationVar(&stopAfter, "stop-after", 0, "Stop the countdown after this long (0 runs until interrupted)")

	return cmd
}

// countdown prints a timer reading on every tick until ctx is done
type countdown struct {
	settings entities.TimerSettings
	clock    ports.TimeProvider
	out      io.Writer
}

// Run blocks until ctx is done and returns the last reading
func (c *countdown) Run(ctx context.Context) entities.TimerReading {
	start := c.clock.Now()
	ticker := c.clock.NewTicker(time.Second)
	defer ticker.Stop()

	reading := services.ReadTimer(0, true, c.settings)
	c.print(reading)

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(c.out)
			return reading
		case <-ticker.C():
			elapsed := int(c.clock.Since(start) / time.Second)
			reading = services.ReadTimer(elapsed, true, c.settings)
			c.print(reading)
		}
	}
}

func (c *countdown) print(reading entities.TimerReading) {
	fmt.Fprintf(c.out, "\r%s  %-9s", colorFor(reading.Status).Sprint(reading.Display), reading.Label)
}

func colorFor(status entities.TimerStatus) *color.Color {
	if c, ok := statusColors[status]; ok {
		return c
	}
	return statusColors[entities.TimerStatusGreen]
}

func formatSettings(s entities.TimerSettings) string {
	return fmt.Sprintf("target %g min, warning at %g min left, wrap up at %g min left",
		s.TargetMinutes, s.WarningMinutes, s.WrapUpMinutes)
}
