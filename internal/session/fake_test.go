package session

import (
	"context"
	"iter"
	"sync"
	"time"

	"github.com/nguyentantai21042004/pagedigest/internal/ai"
)

type fakeSession struct {
	mu     sync.Mutex
	closed bool
	chunks []string
	err    error
}

func (s *fakeSession) GenerateStreaming(context.Context, string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, c := range s.chunks {
			if !yield(c, nil) {
				return
			}
		}
		if s.err != nil {
			yield("", s.err)
		}
	}
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type createFunc func(ctx context.Context, mon ai.Monitor) (ai.Session, error)

type fakeProvider struct {
	mu           sync.Mutex
	availability ai.Availability
	availErr     error
	availDelay   time.Duration
	create       createFunc
	creates      int
	availOpts    []ai.SessionOptions
	createOpts   []ai.SessionOptions
}

func (p *fakeProvider) Availability(_ context.Context, opts ai.SessionOptions) (ai.Availability, error) {
	p.mu.Lock()
	p.availOpts = append(p.availOpts, opts)
	delay, av, err := p.availDelay, p.availability, p.availErr
	p.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	return av, err
}

func (p *fakeProvider) Create(ctx context.Context, opts ai.SessionOptions, mon ai.Monitor) (ai.Session, error) {
	p.mu.Lock()
	p.creates++
	p.createOpts = append(p.createOpts, opts)
	fn := p.create
	p.mu.Unlock()
	return fn(ctx, mon)
}

func (p *fakeProvider) setCreate(fn createFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.create = fn
}

func (p *fakeProvider) createCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.creates
}

func returns(sess ai.Session, err error) createFunc {
	return func(context.Context, ai.Monitor) (ai.Session, error) { return sess, err }
}

type statusLog struct {
	mu    sync.Mutex
	items []ai.Status
}

func (l *statusLog) record(s ai.Status) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, s)
}

func (l *statusLog) stages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, s := range l.items {
		out = append(out, s.Stage)
	}
	return out
}

func (l *statusLog) count(stage string) int {
	n := 0
	for _, s := range l.stages() {
		if s == stage {
			n++
		}
	}
	return n
}

func (l *statusLog) messages(stage string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, s := range l.items {
		if s.Stage == stage {
			out = append(out, s.Message)
		}
	}
	return out
}
