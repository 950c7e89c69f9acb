package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/lecturelight/internal/domain/ports"
)

func newEstimateCmd() *cobra.Command {
	var wpm int

	cmd := &cobra.Command{
		Use:   "estimate <note>",
		Short: "Estimate how long the teleprompter prose takes to speak",
		Long: `Count the speakable words of a note (slides, presenter notes and the timer
block excluded) and convert them to speaking time.

Example:
  lecturelight estimate Optics.md
  lecturelight estimate Optics.md --wpm 150`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var overrides ports.ConfigOverrides
			if cmd.Flags().Changed("wpm") {
				overrides.WordsPerMinute = &wpm
			}

			ws, err := openWorkspace(cmd, args[0], overrides)
			if err != nil {
				return err
			}

			estimate, err := ws.decks.Estimate(cmd.Context(), ws.notePath, ws.config.Timer.WordsPerMinute)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Words:    %d\n", estimate.Words)
			fmt.Fprintf(out, "Duration: %s (at %d wpm)\n", estimate.Display, estimate.WordsPerMinute)
			return nil
		},
	}

	cmd.Flags().IntVar(&wpm, "wpm", 0, "Speaking rate in words per minute (overrides config)")

	return cmd
}
