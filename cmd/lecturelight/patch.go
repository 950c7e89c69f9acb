package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/lecturelight/internal/adapters/secondary/ebml"
	"github.com/fredcamaral/lecturelight/internal/domain/entities"
)

func newPatchCmd() *cobra.Command {
	var (
		seconds  float64
		logPath  string
		mimeType string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "patch <file>",
		Short: "Repair the timecodes and duration of a WebM recording",
		Long: `Rewrite cluster timecodes so the recording starts at zero and write the
real duration into its header. The file keeps its exact length. The
duration comes from --duration or from the summary of a session log.

Example:
  lecturelight patch "Optics-2026-03-04-090507.webm" --duration 1512.4
  lecturelight patch recording.webm --log recording.session.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			durationSeconds := seconds
			if !cmd.Flags().Changed("duration") {
				if logPath == "" {
					return errors.New("one of --duration or --log is required")
				}
				d, err := durationFromLog(logPath)
				if err != nil {
					return err
				}
				durationSeconds = d
			}
			if !(durationSeconds > 0) {
				return fmt.Errorf("duration must be positive, got %g", durationSeconds)
			}
			if !ebml.IsWebM(mimeType) {
				return fmt.Errorf("only audio/webm recordings can be patched, got %q", mimeType)
			}

			path := args[0]
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("accessing recording: %w", err)
			}
			buf, err := os.ReadFile(path) // #nosec G304 - path is the user's argument
			if err != nil {
				return fmt.Errorf("reading recording: %w", err)
			}

			report := ebml.Fix(buf, mimeType, durationSeconds*1000)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Normalized clusters: %d\n", report.Normalized)
			fmt.Fprintf(out, "Duration patched:    %t\n", report.DurationPatched)

			if !report.Changed() {
				fmt.Fprintln(out, "Nothing to fix")
				return nil
			}
			if dryRun {
				fmt.Fprintln(out, "Dry run, file left untouched")
				return nil
			}

			if err := os.WriteFile(path, buf, info.Mode().Perm()); err != nil {
				return fmt.Errorf("writing recording: %w", err)
			}
			fmt.Fprintf(out, "Wrote %s (%d bytes)\n", path, len(buf))
			return nil
		},
	}

	cmd.Flags().Float64VarP(&seconds, "duration", "d", 0, "Recording length in seconds")
	cmd.Flags().StringVar(&logPath, "log", "", "Session log to read the duration from")
	cmd.Flags().StringVar(&mimeType, "mime", "audio/webm", "Recorder MIME type")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without writing")

	return cmd
}

// durationFromLog reads the total duration of a finished session log
func durationFromLog(path string) (float64, error) {
	raw, err := os.ReadFile(path) // #nosec G304 - path is the user's argument
	if err != nil {
		return 0, fmt.Errorf("reading session log: %w", err)
	}

	var log entities.SessionLog
	if err := json.Unmarshal(raw, &log); err != nil {
		return 0, fmt.Errorf("decoding session log: %w", err)
	}
	if !log.IsFinalized() {
		return 0, fmt.Errorf("session log %s has no summary", path)
	}
	return log.Summary.TotalDurationSeconds, nil
}
