package ollama

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync/atomic"

	"github.com/nguyentantai21042004/pagedigest/internal/ai"
)

var errSessionClosed = errors.New("session closed")

type sessions struct {
	c *Client
}

func (p *sessions) Availability(ctx context.Context, opts ai.SessionOptions) (ai.Availability, error) {
	return p.c.availability(ctx)
}

// Create pulls the model when needed, reporting progress to mon, and returns
// a session bound to opts.SystemPrompt.
func (p *sessions) Create(ctx context.Context, opts ai.SessionOptions, mon ai.Monitor) (ai.Session, error) {
	pulled, err := p.c.ensureModel(ctx, mon.Progress)
	if err != nil {
		return nil, err
	}
	if pulled {
		mon.Complete()
	}
	return &session{c: p.c, system: opts.SystemPrompt}, nil
}

type session struct {
	c      *Client
	system string
	closed atomic.Bool
}

func (s *session) GenerateStreaming(ctx context.Context, prompt string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if s.closed.Load() {
			yield("", errSessionClosed)
			return
		}

		stopped := false
		err := s.c.generate(ctx, s.system, prompt, func(chunk string) error {
			if !yield(chunk, nil) {
				stopped = true
				return errStopped
			}
			return nil
		})
		if err != nil && !stopped {
			yield("", fmt.Errorf("generate: %w", err))
		}
	}
}

func (s *session) Close() error {
	s.closed.Store(true)
	return nil
}
