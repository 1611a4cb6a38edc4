package ollama

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/nguyentantai21042004/pagedigest/internal/ai"
	"github.com/ollama/ollama/api"
)

var (
	errActivationExpired = errors.New("model download requires a fresh user activation")
	errStopped           = errors.New("generation stopped")
	thinkRe              = regexp.MustCompile(`(?s)<think>.*?</think>`)
)

func (c *Client) availability(ctx context.Context) (ai.Availability, error) {
	if err := c.api.Heartbeat(ctx); err != nil {
		return ai.Unavailable, fmt.Errorf("ollama heartbeat: %w", err)
	}
	if c.pulling.Load() {
		return ai.Downloading, nil
	}
	ok, err := c.hasModel(ctx)
	if err != nil {
		return ai.Unavailable, err
	}
	if ok {
		return ai.Available, nil
	}
	return ai.Downloadable, nil
}

func (c *Client) hasModel(ctx context.Context) (bool, error) {
	resp, err := c.api.List(ctx)
	if err != nil {
		return false, fmt.Errorf("list models: %w", err)
	}
	for _, m := range resp.Models {
		name := m.Name
		if name == "" {
			name = m.Model
		}
		if name == c.model || strings.HasPrefix(name, c.model+":") || strings.TrimSuffix(name, ":latest") == c.model {
			return true, nil
		}
	}
	return false, nil
}

// ensureModel pulls the model unless it is already present. progress
// receives the aggregate ratio across layers, or nil while the total is not
// known yet.
func (c *Client) ensureModel(ctx context.Context, progress func(ratio *float64)) (pulled bool, err error) {
	c.pullMu.Lock()
	defer c.pullMu.Unlock()

	ok, err := c.hasModel(ctx)
	if err != nil {
		return false, err
	}
	if ok {
		return false, nil
	}
	if a, ok := ai.ActivationFrom(ctx); ok && !a.Valid(time.Now()) {
		return false, errActivationExpired
	}

	c.pulling.Store(true)
	defer c.pulling.Store(false)

	c.logger.Info(ctx, "ollama: pulling model %s", c.model)
	layers := make(map[string][2]int64)
	err = c.pullAPI.Pull(ctx, &api.PullRequest{Model: c.model}, func(r api.ProgressResponse) error {
		if r.Digest != "" && r.Total > 0 {
			layers[r.Digest] = [2]int64{r.Completed, r.Total}
		}
		var done, total int64
		for _, l := range layers {
			done += l[0]
			total += l[1]
		}
		if total > 0 {
			ratio := float64(done) / float64(total)
			progress(&ratio)
		} else {
			progress(nil)
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("pull %s: %w", c.model, err)
	}
	c.logger.Info(ctx, "ollama: model %s ready", c.model)
	return true, nil
}

// generate streams the response for prompt into fn. Returning errStopped
// from fn ends the request without an error.
func (c *Client) generate(ctx context.Context, system, prompt string, fn func(chunk string) error) error {
	req := &api.GenerateRequest{
		Model:   c.model,
		System:  system,
		Prompt:  prompt,
		Options: map[string]any{"num_ctx": c.numCtx},
	}
	err := c.api.Generate(ctx, req, func(r api.GenerateResponse) error {
		if r.Response == "" {
			return nil
		}
		return fn(r.Response)
	})
	if errors.Is(err, errStopped) {
		return nil
	}
	return err
}

// complete returns the whole response for prompt without any reasoning
// block the model emitted.
func (c *Client) complete(ctx context.Context, system, prompt string) (string, error) {
	var b strings.Builder
	err := c.generate(ctx, system, prompt, func(chunk string) error {
		b.WriteString(chunk)
		return nil
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(thinkRe.ReplaceAllString(b.String(), "")), nil
}

// contextLength reads the model's trained context window from its metadata.
func (c *Client) contextLength(ctx context.Context) (int, error) {
	resp, err := c.api.Show(ctx, &api.ShowRequest{Model: c.model})
	if err != nil {
		return 0, fmt.Errorf("show %s: %w", c.model, err)
	}
	arch, _ := resp.ModelInfo["general.architecture"].(string)
	if arch == "" {
		return 0, fmt.Errorf("show %s: no architecture in model info", c.model)
	}
	switch v := resp.ModelInfo[arch+".context_length"].(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	}
	return 0, fmt.Errorf("show %s: no context length in model info", c.model)
}
