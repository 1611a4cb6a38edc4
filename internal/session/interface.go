package session

import (
	"context"

	"github.com/nguyentantai21042004/pagedigest/internal/ai"
)

// Manager owns the lifecycle of one generative session: availability,
// download tracking, readiness and loss. Create one per caller context;
// managers share nothing.
type Manager interface {
	// CheckAvailability queries the provider and records the result.
	CheckAvailability(ctx context.Context) State

	// EnsureReady returns a ready session, starting or joining a download
	// when needed, and blocks until the attempt settles or ctx is done.
	// When a download is needed, provider Create is the first blocking call
	// made, so any activation carried by ctx reaches it unexpired. Cancelling
	// ctx stops the wait but never the download.
	EnsureReady(ctx context.Context) (Result, error)

	// Prompt streams a response from the ready session. A failing stream
	// marks the session lost.
	Prompt(ctx context.Context, prompt string, onChunk func(string)) (string, error)

	MarkSessionLost(err error)
	Reset()

	// Restore reloads retry bookkeeping from the store.
	Restore(ctx context.Context) error

	State() State
	LastError() error
	Attempt() (DownloadAttempt, bool)

	// Close releases the session and waits for pending store writes.
	Close() error
}

type Result struct {
	Session ai.Session
	Attempt DownloadAttempt
	// RetryCapExceeded is set when this attempt went past the configured
	// retry limit. The attempt still ran.
	RetryCapExceeded bool
}
