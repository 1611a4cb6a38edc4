package watcher

import "context"

// Watcher dispatches page files created in a folder to a handler.
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler processes one page file
type EventHandler func(ctx context.Context, filePath string) error
