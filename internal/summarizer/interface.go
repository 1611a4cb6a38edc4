package summarizer

import (
	"context"

	"github.com/nguyentantai21042004/pagedigest/internal/ai"
)

// Pipeline summarizes text of any length through a capacity-constrained
// summarizer handle, falling back through cheaper strategies until one
// produces output. Summarize returns a non-empty string for any input that
// is not blank, even when handle is nil or always fails.
type Pipeline interface {
	Summarize(ctx context.Context, text string, handle ai.Summarizer, opts Options) string
}

type Options struct {
	// Exhaustive enables chunked map-reduce after direct and truncated
	// attempts have failed.
	Exhaustive bool
	// Context overrides the configured per-call instructions.
	Context  string
	OnStatus ai.StatusFunc
}
