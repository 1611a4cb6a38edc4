// Package ollama runs sessions, summarizers and translators on a local
// Ollama server. Pulling the configured model is the one-time download the
// session manager tracks.
package ollama

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/nguyentantai21042004/pagedigest/internal/ai"
	"github.com/nguyentantai21042004/pagedigest/internal/config"
	"github.com/nguyentantai21042004/pagedigest/internal/logger"
	"github.com/ollama/ollama/api"
)

type Client struct {
	api     *api.Client
	pullAPI *api.Client
	model   string
	numCtx  int
	logger  logger.Logger

	pullMu  sync.Mutex
	pulling atomic.Bool
}

// New creates a client for the server at cfg.BaseURL.
func New(cfg config.OllamaConfig, log logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.Nop()
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse ollama url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("parse ollama url: %q has no scheme or host", cfg.BaseURL)
	}

	numCtx := cfg.ContextLength
	if numCtx <= 0 {
		numCtx = 8192
	}

	return &Client{
		api: api.NewClient(base, &http.Client{Timeout: cfg.Timeout}),
		// Pulls are bounded by the session manager's deadline, not a request timeout.
		pullAPI: api.NewClient(base, &http.Client{}),
		model:   cfg.Model,
		numCtx:  numCtx,
		logger:  log,
	}, nil
}

// Sessions exposes the client as a generative session provider.
func (c *Client) Sessions() ai.SessionProvider { return &sessions{c: c} }

func (c *Client) Summarizers() ai.SummarizerProvider { return &summarizers{c: c} }

func (c *Client) Translators() ai.TranslatorProvider { return &translators{c: c} }
