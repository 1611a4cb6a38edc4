package session

import (
	"sync"
	"time"

	"github.com/nguyentantai21042004/pagedigest/internal/ai"
	"github.com/nguyentantai21042004/pagedigest/internal/config"
	"github.com/nguyentantai21042004/pagedigest/internal/kvstore"
	"github.com/nguyentantai21042004/pagedigest/internal/logger"
	"github.com/nguyentantai21042004/pagedigest/internal/metrics"
)

const (
	defaultStallTimeout        = 2 * time.Minute
	defaultDownloadTimeout     = 15 * time.Minute
	defaultAvailabilityTimeout = time.Second
	defaultMaxRetries          = 3
)

type implManager struct {
	provider ai.SessionProvider
	options  ai.SessionOptions
	cfg      config.SessionConfig
	logger   logger.Logger
	store    kvstore.Store
	metrics  *metrics.Metrics
	status   ai.StatusFunc

	mu          sync.Mutex
	state       State
	lastErr     error
	session     ai.Session
	attempts    int
	current     *attempt
	lastAttempt *DownloadAttempt
	pending     []ai.Status
	storeSeq    uint64

	storeMu      sync.Mutex
	storeApplied uint64

	bg sync.WaitGroup
}

type Option func(*implManager)

func WithStore(s kvstore.Store) Option {
	return func(m *implManager) { m.store = s }
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *implManager) { m.metrics = mt }
}

func WithStatus(fn ai.StatusFunc) Option {
	return func(m *implManager) { m.status = fn }
}

// WithSystemPrompt sets the system prompt sent with every create call.
func WithSystemPrompt(prompt string) Option {
	return func(m *implManager) { m.options.SystemPrompt = prompt }
}

// New creates a Manager. A nil provider yields a manager that always
// reports Unavailable.
func New(provider ai.SessionProvider, cfg config.SessionConfig, log logger.Logger, opts ...Option) Manager {
	if cfg.StallTimeout <= 0 {
		cfg.StallTimeout = defaultStallTimeout
	}
	if cfg.DownloadTimeout <= 0 {
		cfg.DownloadTimeout = defaultDownloadTimeout
	}
	if cfg.AvailabilityTimeout <= 0 {
		cfg.AvailabilityTimeout = defaultAvailabilityTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if log == nil {
		log = logger.Nop()
	}

	m := &implManager{
		provider: provider,
		options: ai.SessionOptions{
			ExpectedInputLanguages:  append([]string(nil), cfg.ExpectedInputLanguages...),
			ExpectedOutputLanguages: append([]string(nil), cfg.ExpectedOutputLanguages...),
		},
		cfg:    cfg,
		logger: log,
		state:  Unknown,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}
