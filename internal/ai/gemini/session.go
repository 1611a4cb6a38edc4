package gemini

import (
	"context"
	"errors"
	"iter"
	"sync/atomic"

	"github.com/nguyentantai21042004/pagedigest/internal/ai"
)

var errSessionClosed = errors.New("session closed")

type sessions struct {
	c *Client
}

func (p *sessions) Availability(ctx context.Context, opts ai.SessionOptions) (ai.Availability, error) {
	return p.c.availability(), nil
}

// Create never downloads, so mon only sees completion.
func (p *sessions) Create(ctx context.Context, opts ai.SessionOptions, mon ai.Monitor) (ai.Session, error) {
	if p.c.availability() == ai.Unavailable {
		return nil, ErrNoAPIKeys
	}
	mon.Complete()
	return &session{c: p.c, system: opts.SystemPrompt}, nil
}

type session struct {
	c      *Client
	system string
	closed atomic.Bool
}

func (s *session) GenerateStreaming(ctx context.Context, prompt string) iter.Seq2[string, error] {
	if s.closed.Load() {
		return func(yield func(string, error) bool) { yield("", errSessionClosed) }
	}
	return s.c.stream(ctx, s.system, prompt)
}

func (s *session) Close() error {
	s.closed.Store(true)
	return nil
}
