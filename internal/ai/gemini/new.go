// Package gemini serves sessions, summarizers and translators from the
// Gemini API. Nothing is downloaded, so availability only depends on keys
// being configured.
package gemini

import (
	"os"

	"github.com/nguyentantai21042004/pagedigest/internal/ai"
	"github.com/nguyentantai21042004/pagedigest/internal/config"
	"github.com/nguyentantai21042004/pagedigest/internal/logger"
)

type Client struct {
	keys   *keyring
	model  string
	logger logger.Logger
}

// New reads the key list from the environment variable cfg.APIKeysEnv.
func New(cfg config.GeminiConfig, log logger.Logger) *Client {
	return NewWithKeys(ParseKeys(os.Getenv(cfg.APIKeysEnv)), cfg.Model, log)
}

func NewWithKeys(keys []string, model string, log logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &Client{keys: newKeyring(keys, log), model: model, logger: log}
}

func (c *Client) Sessions() ai.SessionProvider { return &sessions{c: c} }

func (c *Client) Summarizers() ai.SummarizerProvider { return &summarizers{c: c} }

func (c *Client) Translators() ai.TranslatorProvider { return &translators{c: c} }

func (c *Client) availability() ai.Availability {
	if len(c.keys.keys) == 0 {
		return ai.Unavailable
	}
	return ai.Available
}
