package ai

import (
	"context"
	"iter"
)

// SessionProvider exposes an on-device generative model that may need a
// one-time download before a session can be created.
type SessionProvider interface {
	Availability(ctx context.Context, opts SessionOptions) (Availability, error)
	Create(ctx context.Context, opts SessionOptions, mon Monitor) (Session, error)
}

// Session is a live generative session.
type Session interface {
	GenerateStreaming(ctx context.Context, prompt string) iter.Seq2[string, error]
	Close() error
}

type SummarizerProvider interface {
	Availability(ctx context.Context) (Availability, error)
	Create(ctx context.Context, cfg SummarizerConfig) (Summarizer, error)
}

// Summarizer is a capacity-constrained summarization handle.
// InputQuota returns the total input budget in tokens; MeasureInputUsage
// reports how many of them text would consume.
type Summarizer interface {
	Summarize(ctx context.Context, text, instructions string) (string, error)
	MeasureInputUsage(ctx context.Context, text string) (int, error)
	InputQuota() int
}

type TranslatorProvider interface {
	Availability(ctx context.Context, source, target string) (Availability, error)
	Create(ctx context.Context, source, target string, onProgress func(ratio float64)) (Translator, error)
}

type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}
