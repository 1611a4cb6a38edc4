package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/nguyentantai21042004/pagedigest/internal/logger"
	"google.golang.org/genai"
)

var ErrNoAPIKeys = errors.New("no Gemini API keys configured")

// ParseKeys splits a comma separated key list, dropping blanks.
func ParseKeys(raw string) []string {
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func isRateLimited(err error) bool {
	var interrupted *interruptedError
	if err == nil || errors.As(err, &interrupted) {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

// keyring rotates through API keys when one is rate limited. Clients are
// created once per key.
type keyring struct {
	keys   []string
	logger logger.Logger

	mu      sync.Mutex
	current int
	clients map[string]*genai.Client
}

func newKeyring(keys []string, log logger.Logger) *keyring {
	return &keyring{keys: keys, logger: log, clients: make(map[string]*genai.Client)}
}

func (k *keyring) client(ctx context.Context) (*genai.Client, int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	idx := k.current
	key := k.keys[idx]
	if c, ok := k.clients[key]; ok {
		return c, idx, nil
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, idx, fmt.Errorf("create client: %w", err)
	}
	k.clients[key] = c
	return c, idx, nil
}

// rotate moves past idx unless another caller already did.
func (k *keyring) rotate(idx int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.current == idx {
		k.current = (k.current + 1) % len(k.keys)
	}
}

// do runs fn with each key in turn until one is not rate limited.
func (k *keyring) do(ctx context.Context, fn func(*genai.Client) error) error {
	if len(k.keys) == 0 {
		return ErrNoAPIKeys
	}

	var lastErr error
	for range len(k.keys) {
		c, idx, err := k.client(ctx)
		if err != nil {
			lastErr = err
			k.rotate(idx)
			continue
		}

		err = fn(c)
		if err == nil {
			return nil
		}
		if !isRateLimited(err) {
			return err
		}
		k.logger.Warn(ctx, "gemini: key %d rate limited, rotating...", idx+1)
		k.rotate(idx)
		lastErr = err
	}
	return fmt.Errorf("all API keys exhausted: %w", lastErr)
}
