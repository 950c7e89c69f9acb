package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fredcamaral/lecturelight/internal/domain/ports"
)

// PollingWatcher watches notes by polling their size, mtime and content hash
type PollingWatcher struct {
	interval  time.Duration
	debounce  time.Duration
	logger    *slog.Logger
	fileInfos map[string]FileInfo
	events    chan ports.FileChangeEvent
	mu        sync.RWMutex
	wg        sync.WaitGroup
	stopped   bool
	stopCh    chan struct{}
}

// FileInfo stores information about a file
type FileInfo struct {
	Size     int64
	ModTime  time.Time
	Checksum string
}

// NewPollingWatcher creates a new polling-based file watcher
func NewPollingWatcher(interval, debounce time.Duration, logger *slog.Logger) *PollingWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &PollingWatcher{
		interval:  interval,
		debounce:  debounce,
		logger:    logger.With("adapter", "watcher"),
		fileInfos: make(map[string]FileInfo),
		events:    make(chan ports.FileChangeEvent, 10),
		stopCh:    make(chan struct{}),
	}
}

// Watch starts watching a file for changes
func (w *PollingWatcher) Watch(ctx context.Context, path string) (<-chan ports.FileChangeEvent, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	w.mu.RLock()
	stopped := w.stopped
	w.mu.RUnlock()
	if stopped {
		return nil, errors.New("watcher stopped")
	}

	// Initial scan
	if err := w.scanFile(absPath); err != nil {
		return nil, fmt.Errorf("initial scan: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.pollLoop(ctx, absPath)
	}()

	w.logger.Debug("watching note", slog.String("path", absPath), slog.Duration("interval", w.interval))
	return w.events, nil
}

// Stop stops the file watcher and closes the event channel
func (w *PollingWatcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	close(w.stopCh)
	w.mu.Unlock()

	w.wg.Wait()
	close(w.events)

	return nil
}

// scanFile scans a file and stores its info
func (w *PollingWatcher) scanFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}

	checksum, err := w.calculateChecksum(path)
	if err != nil {
		return fmt.Errorf("calculate checksum: %w", err)
	}

	w.store(path, info, checksum)
	return nil
}

func (w *PollingWatcher) store(path string, info os.FileInfo, checksum string) {
	w.mu.Lock()
	w.fileInfos[path] = FileInfo{
		Size:     info.Size(),
		ModTime:  info.ModTime(),
		Checksum: checksum,
	}
	w.mu.Unlock()
}

// pollLoop continuously polls for file changes
func (w *PollingWatcher) pollLoop(ctx context.Context, path string) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	lastEventTime := time.Time{}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			change, changed, err := w.checkForChanges(path)
			if err != nil {
				w.logger.Warn("watch error", slog.String("path", path), slog.String("error", err.Error()))
				continue
			}
			if !changed {
				if !pending {
					continue
				}
				change = ports.Modified
			}

			// Deletions always go out; edits inside the debounce window are held
			// until it closes
			if change == ports.Modified && time.Since(lastEventTime) < w.debounce {
				pending = true
				continue
			}
			pending = false

			event := ports.FileChangeEvent{
				Path:      path,
				Type:      change,
				Timestamp: time.Now(),
			}

			select {
			case w.events <- event:
				lastEventTime = event.Timestamp
				w.logger.Debug("note changed", slog.String("path", path), slog.String("type", change.String()))
			case <-ctx.Done():
				return
			case <-w.stopCh:
				return
			}
		}
	}
}

// checkForChanges reports whether the file changed and how
func (w *PollingWatcher) checkForChanges(path string) (ports.ChangeType, bool, error) {
	w.mu.RLock()
	oldInfo, exists := w.fileInfos[path]
	w.mu.RUnlock()

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if !exists {
				return "", false, nil
			}
			w.mu.Lock()
			delete(w.fileInfos, path)
			w.mu.Unlock()
			return ports.Deleted, true, nil
		}
		return "", false, fmt.Errorf("stat file: %w", err)
	}

	// Skip the checksum if size and time are unchanged
	if exists && oldInfo.Size == info.Size() && oldInfo.ModTime.Equal(info.ModTime()) {
		return "", false, nil
	}

	checksum, err := w.calculateChecksum(path)
	if err != nil {
		return "", false, fmt.Errorf("calculate checksum: %w", err)
	}

	// A file that reappears after deletion counts as modified
	if !exists || oldInfo.Checksum != checksum {
		w.store(path, info, checksum)
		return ports.Modified, true, nil
	}

	w.store(path, info, checksum)
	return "", false, nil
}

// calculateChecksum calculates SHA256 checksum of a file
func (w *PollingWatcher) calculateChecksum(path string) (string, error) {
	file, err := os.Open(path) // #nosec G304 - path is the note being presented
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// Ensure PollingWatcher implements ports.FileWatcher
var _ ports.FileWatcher = (*PollingWatcher)(nil)
