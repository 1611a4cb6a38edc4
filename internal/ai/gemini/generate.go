package gemini

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"google.golang.org/genai"
)

var errEmptyResponse = errors.New("empty response from Gemini")

// interruptedError marks a stream that failed after yielding output. It is
// never retried with another key.
type interruptedError struct {
	err error
}

func (e *interruptedError) Error() string { return "stream interrupted: " + e.err.Error() }

func (e *interruptedError) Unwrap() error { return e.err }

func contentConfig(system string) *genai.GenerateContentConfig {
	if system == "" {
		return nil
	}
	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	}
}

func responseText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" && !part.Thought {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

func (c *Client) generate(ctx context.Context, system, prompt string) (string, error) {
	var text string
	err := c.keys.do(ctx, func(client *genai.Client) error {
		result, err := client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), contentConfig(system))
		if err != nil {
			return err
		}
		text = strings.TrimSpace(responseText(result))
		if text == "" {
			return errEmptyResponse
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return text, nil
}

// stream yields response chunks. A rate limited key is rotated only while
// nothing has been yielded yet.
func (c *Client) stream(ctx context.Context, system, prompt string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stopped := false
		err := c.keys.do(ctx, func(client *genai.Client) error {
			sent := false
			for result, err := range client.Models.GenerateContentStream(ctx, c.model, genai.Text(prompt), contentConfig(system)) {
				if err != nil {
					if sent {
						return &interruptedError{err: err}
					}
					return err
				}
				chunk := responseText(result)
				if chunk == "" {
					continue
				}
				sent = true
				if !yield(chunk, nil) {
					stopped = true
					return nil
				}
			}
			return nil
		})
		if err != nil && !stopped {
			yield("", fmt.Errorf("stream content: %w", err))
		}
	}
}
