package session

import (
	"context"
	"fmt"
	"strings"
)

func (m *implManager) Prompt(ctx context.Context, prompt string, onChunk func(string)) (string, error) {
	m.mu.Lock()
	sess := m.session
	ready := m.state == Ready
	m.mu.Unlock()

	if !ready || sess == nil {
		return "", ErrNotReady
	}

	var b strings.Builder
	for chunk, err := range sess.GenerateStreaming(ctx, prompt) {
		if err != nil {
			if ctx.Err() != nil {
				return b.String(), ctx.Err()
			}
			m.MarkSessionLost(err)
			return b.String(), fmt.Errorf("%w: %v", ErrSessionLost, err)
		}
		b.WriteString(chunk)
		if onChunk != nil {
			onChunk(chunk)
		}
	}
	return b.String(), nil
}
