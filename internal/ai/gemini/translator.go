package gemini

import (
	"context"
	"strings"

	"github.com/nguyentantai21042004/pagedigest/internal/ai"
	"golang.org/x/text/language"
)

type translators struct {
	c *Client
}

func (p *translators) Availability(ctx context.Context, source, target string) (ai.Availability, error) {
	if _, err := language.Parse(source); err != nil {
		return ai.Unavailable, nil
	}
	if _, err := language.Parse(target); err != nil {
		return ai.Unavailable, nil
	}
	return p.c.availability(), nil
}

func (p *translators) Create(ctx context.Context, source, target string, onProgress func(ratio float64)) (ai.Translator, error) {
	if p.c.availability() == ai.Unavailable {
		return nil, ErrNoAPIKeys
	}
	if onProgress != nil {
		onProgress(1)
	}
	return &translator{c: p.c, system: translationPrompt(source, target)}, nil
}

type translator struct {
	c      *Client
	system string
}

func (t *translator) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	return t.c.generate(ctx, t.system, text)
}
