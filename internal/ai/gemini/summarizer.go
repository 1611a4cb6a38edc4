package gemini

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/pagedigest/internal/ai"
	"google.golang.org/genai"
)

const defaultInputLimit = 32768

type summarizers struct {
	c *Client
}

func (p *summarizers) Availability(ctx context.Context) (ai.Availability, error) {
	return p.c.availability(), nil
}

func (p *summarizers) Create(ctx context.Context, cfg ai.SummarizerConfig) (ai.Summarizer, error) {
	if p.c.availability() == ai.Unavailable {
		return nil, ErrNoAPIKeys
	}

	limit := defaultInputLimit
	err := p.c.keys.do(ctx, func(client *genai.Client) error {
		m, err := client.Models.Get(ctx, p.c.model, nil)
		if err != nil {
			return err
		}
		if m.InputTokenLimit > 0 {
			limit = int(m.InputTokenLimit)
		}
		return nil
	})
	if err != nil {
		p.c.logger.Warn(ctx, "gemini: get model %s: %v, assuming %d input tokens", p.c.model, err, limit)
	}

	return &summarizer{c: p.c, system: systemPrompt(cfg), quota: limit}, nil
}

type summarizer struct {
	c      *Client
	system string
	quota  int
}

func (s *summarizer) Summarize(ctx context.Context, text, instructions string) (string, error) {
	prompt := text
	if instructions != "" {
		prompt = fmt.Sprintf("Context: %s\n\nText:\n---\n%s\n---", instructions, text)
	}
	return s.c.generate(ctx, s.system, prompt)
}

// MeasureInputUsage counts the tokens the system prompt and text consume.
func (s *summarizer) MeasureInputUsage(ctx context.Context, text string) (int, error) {
	var total int
	err := s.c.keys.do(ctx, func(client *genai.Client) error {
		resp, err := client.Models.CountTokens(ctx, s.c.model, genai.Text(s.system+"\n\n"+text), nil)
		if err != nil {
			return err
		}
		total = int(resp.TotalTokens)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count tokens: %w", err)
	}
	return total, nil
}

func (s *summarizer) InputQuota() int { return s.quota }
