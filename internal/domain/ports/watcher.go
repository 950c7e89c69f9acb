package ports

import (
	"context"
	"time"
)

// FileWatcher defines the interface for watching a note for edits
type FileWatcher interface {
	// Watch starts watching a file for changes
	Watch(ctx context.Context, path string) (<-chan FileChangeEvent, error)
	// Stop stops the file watcher
	Stop() error
}

// FileChangeEvent represents a file change event
type FileChangeEvent struct {
	Path      string
	Type      ChangeType
	Timestamp time.Time
}

// ChangeType represents the type of file change
type ChangeType string

const (
	Modified ChangeType = "modified"
	Deleted  ChangeType = "deleted"
)

func (c ChangeType) String() string {
	return string(c)
}
