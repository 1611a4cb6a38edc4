package ollama

import (
	"context"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/pagedigest/internal/ai"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

type translators struct {
	c *Client
}

// Availability reports the model state for any pair of well-formed tags.
func (p *translators) Availability(ctx context.Context, source, target string) (ai.Availability, error) {
	if _, err := language.Parse(source); err != nil {
		return ai.Unavailable, nil
	}
	if _, err := language.Parse(target); err != nil {
		return ai.Unavailable, nil
	}
	return p.c.availability(ctx)
}

func (p *translators) Create(ctx context.Context, source, target string, onProgress func(ratio float64)) (ai.Translator, error) {
	_, err := p.c.ensureModel(ctx, func(ratio *float64) {
		if ratio != nil && onProgress != nil {
			onProgress(*ratio)
		}
	})
	if err != nil {
		return nil, err
	}
	return &translator{c: p.c, system: translatorPrompt(source, target)}, nil
}

func translatorPrompt(source, target string) string {
	return fmt.Sprintf("Translate the text the user provides from %s to %s. "+
		"Keep the formatting. Respond with the translation only.",
		languageName(source), languageName(target))
}

type translator struct {
	c      *Client
	system string
}

func (t *translator) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	out, err := t.c.complete(ctx, t.system, text)
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	return out, nil
}

// languageName returns the English name of tag, or tag itself when unknown.
func languageName(tag string) string {
	t, err := language.Parse(tag)
	if err != nil {
		return tag
	}
	if name := display.English.Tags().Name(t); name != "" {
		return name
	}
	return tag
}
