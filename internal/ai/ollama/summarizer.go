package ollama

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/pagedigest/internal/ai"
	"github.com/nguyentantai21042004/pagedigest/internal/chunker"
)

var lengthHint = map[string]string{
	"short":  "Keep it very brief.",
	"medium": "Keep it to about one short paragraph.",
	"long":   "Cover every important point.",
}

var typeHint = map[string]string{
	"tldr":       "Write a TL;DR summary",
	"key-points": "List the key points as bullet items",
	"teaser":     "Write an intriguing teaser",
	"headline":   "Write a single headline",
}

// Tokens reserved for the answer, by summary length.
var outputReserve = map[string]int{
	"short":  256,
	"medium": 512,
	"long":   1024,
}

// errModelMissing is returned by summarizer creation when the model has not
// been pulled. Pulls go through the session path, which watches them.
var errModelMissing = errors.New("model not pulled")

type summarizers struct {
	c *Client
}

func (p *summarizers) Availability(ctx context.Context) (ai.Availability, error) {
	return p.c.availability(ctx)
}

func (p *summarizers) Create(ctx context.Context, cfg ai.SummarizerConfig) (ai.Summarizer, error) {
	ok, err := p.c.hasModel(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("create summarizer: %s %w", p.c.model, errModelMissing)
	}

	window := p.c.numCtx
	if n, err := p.c.contextLength(ctx); err == nil && n > 0 {
		window = min(window, n)
	} else if err != nil {
		p.c.logger.Warn(ctx, "ollama: %v, assuming %d tokens", err, window)
	}

	reserve, ok := outputReserve[cfg.Length]
	if !ok {
		reserve = outputReserve["medium"]
	}
	return &summarizer{
		c:      p.c,
		system: summarizerPrompt(cfg),
		quota:  max(window-reserve, 0),
	}, nil
}

func summarizerPrompt(cfg ai.SummarizerConfig) string {
	var b strings.Builder
	kind, ok := typeHint[cfg.Type]
	if !ok {
		kind = typeHint["tldr"]
	}
	b.WriteString(kind)
	b.WriteString(" of the text the user provides.")
	if hint, ok := lengthHint[cfg.Length]; ok {
		b.WriteString(" " + hint)
	}
	if cfg.Format == "markdown" {
		b.WriteString(" Format the answer as Markdown.")
	} else {
		b.WriteString(" Answer in plain text without Markdown.")
	}
	if cfg.OutputLanguage != "" {
		fmt.Fprintf(&b, " Write the answer in %s.", languageName(cfg.OutputLanguage))
	}
	if cfg.SharedContext != "" {
		b.WriteString(" " + cfg.SharedContext)
	}
	b.WriteString(" Respond with the summary only.")
	return b.String()
}

type summarizer struct {
	c      *Client
	system string
	quota  int
}

func (s *summarizer) Summarize(ctx context.Context, text, instructions string) (string, error) {
	prompt := text
	if instructions != "" {
		prompt = "Context: " + instructions + "\n\nText:\n" + text
	}
	out, err := s.c.complete(ctx, s.system, prompt)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return out, nil
}

// MeasureInputUsage estimates the prompt cost of text; Ollama has no
// tokenizer endpoint.
func (s *summarizer) MeasureInputUsage(ctx context.Context, text string) (int, error) {
	return chunker.EstimateTokens(s.system) + chunker.EstimateTokens(text), nil
}

func (s *summarizer) InputQuota() int { return s.quota }
