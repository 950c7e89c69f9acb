package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/lecturelight/internal/domain/ports"
)

const opticsNote = `---
title: Optics Lecture
---
:::lecturelight
target: 45
warning: 10
wrapUp: 3
:::

Welcome to the optics lecture today.

:::slide [Intro]
# Optics
:::

Light bends when it enters glass.

:::notes [Intro]
Pass the prism around.
:::

:::slide [Lenses] bleed
![[lens.png]]
:::
`

// isolate points HOME and the history database at a temp dir and returns
// the global config path to pass with --config
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("LECTURELIGHT_HISTORY_PATH", filepath.Join(home, "history.db"))

	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	return filepath.Join(home, "config.toml")
}

// writeVault creates a vault holding the optics note and its image
func writeVault(t *testing.T) (root, note string) {
	t.Helper()
	root = t.TempDir()
	note = filepath.Join(root, "Optics.md")
	require.NoError(t, os.WriteFile(note, []byte(opticsNote), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "lens.png"), []byte("png"), 0o644))
	return root, note
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// subcommand returns a parsed subcommand for calling helpers directly
func subcommand(t *testing.T, name string, args ...string) *cobra.Command {
	t.Helper()
	root := newRootCmd()
	cmd, _, err := root.Find([]string{name})
	require.NoError(t, err)
	require.NoError(t, cmd.ParseFlags(args))
	cmd.SetContext(context.Background())
	cmd.SetErr(io.Discard)
	return cmd
}

func TestRootCommand(t *testing.T) {
	t.Run("lists subcommands", func(t *testing.T) {
		out, err := executeCommand(t, "--help")
		require.NoError(t, err)
		for _, name := range []string{"parse", "estimate", "timer", "patch", "serve", "sessions"} {
			assert.Contains(t, out, name)
		}
	})

	t.Run("version", func(t *testing.T) {
		out, err := executeCommand(t, "--version")
		require.NoError(t, err)
		assert.Contains(t, out, "lecturelight version dev")
		assert.Contains(t, out, "Build Date: unknown")
	})

	t.Run("note commands need exactly one argument", func(t *testing.T) {
		for _, name := range []string{"parse", "estimate", "timer", "serve"} {
			_, err := executeCommand(t, name)
			require.Error(t, err, name)
			assert.Contains(t, err.Error(), "accepts 1 arg(s)", name)
		}
	})

	t.Run("missing note", func(t *testing.T) {
		configPath := isolate(t)
		_, err := executeCommand(t, "parse", filepath.Join(t.TempDir(), "nope.md"), "--config", configPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "accessing note")
	})

	t.Run("invalid log level fails validation", func(t *testing.T) {
		configPath := isolate(t)
		_, note := writeVault(t)
		_, err := executeCommand(t, "parse", note, "--config", configPath, "--log-level", "loud")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestOpenWorkspace(t *testing.T) {
	configPath := isolate(t)
	root, note := writeVault(t)

	t.Run("vault defaults to the note directory", func(t *testing.T) {
		ws, err := openWorkspace(subcommand(t, "parse", "--config", configPath), note, ports.ConfigOverrides{})
		require.NoError(t, err)

		abs, _ := filepath.Abs(root)
		assert.Equal(t, abs, ws.vault.Root())
		assert.Equal(t, "Optics.md", ws.notePath)
		assert.Equal(t, note, ws.noteFile)
		assert.FileExists(t, configPath)
	})

	t.Run("local config is merged", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(root, "lecturelight.toml"),
			[]byte("[timer]\nwords_per_minute = 90\n\n[recording]\nfolder = \"Talks/Audio\"\n"), 0o644))
		t.Cleanup(func() { _ = os.Remove(filepath.Join(root, "lecturelight.toml")) })

		ws, err := openWorkspace(subcommand(t, "parse", "--config", configPath), note, ports.ConfigOverrides{})
		require.NoError(t, err)
		assert.Equal(t, 90, ws.config.Timer.WordsPerMinute)
		assert.Equal(t, "Talks/Audio", ws.vault.RecordingFolder())
	})
}

func TestVaultRelative(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "notes")
	assert.Equal(t, "Lectures/Optics.md", vaultRelative(root, filepath.Join(root, "Lectures", "Optics.md")))

	outside := filepath.Join(string(filepath.Separator), "elsewhere", "Optics.md")
	assert.Equal(t, outside, vaultRelative(root, outside))
}
