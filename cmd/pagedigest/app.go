package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/nguyentantai21042004/pagedigest/internal/ai"
	"github.com/nguyentantai21042004/pagedigest/internal/ai/gemini"
	"github.com/nguyentantai21042004/pagedigest/internal/ai/ollama"
	"github.com/nguyentantai21042004/pagedigest/internal/config"
	"github.com/nguyentantai21042004/pagedigest/internal/kvstore"
	"github.com/nguyentantai21042004/pagedigest/internal/logger"
	"github.com/nguyentantai21042004/pagedigest/internal/metrics"
	"github.com/nguyentantai21042004/pagedigest/internal/processor"
	"github.com/nguyentantai21042004/pagedigest/internal/session"
	"github.com/nguyentantai21042004/pagedigest/internal/summarizer"
	"github.com/nguyentantai21042004/pagedigest/internal/translation"
	"github.com/nguyentantai21042004/pagedigest/pkg/executor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const askSystemPrompt = "You answer questions about the page the user provides. " +
	"Base every answer on the page text. Say so when the page does not contain the answer."

// app holds the components every command shares.
type app struct {
	cfg      *config.Config
	log      logger.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	exec     executor.Executor

	store       kvstore.Store
	storeCloser io.Closer

	sessions    ai.SessionProvider
	summarizers ai.SummarizerProvider
	translators ai.TranslatorProvider

	manager   session.Manager
	cache     translation.Cache
	pipeline  summarizer.Pipeline
	processor processor.Processor
}

type providers struct {
	sessions    ai.SessionProvider
	summarizers ai.SummarizerProvider
	translators ai.TranslatorProvider
}

func newProviders(cfg config.ProviderConfig, log logger.Logger) (providers, error) {
	switch cfg.Kind {
	case "gemini":
		c := gemini.New(cfg.Gemini, log)
		return providers{c.Sessions(), c.Summarizers(), c.Translators()}, nil
	case "", "ollama":
		c, err := ollama.New(cfg.Ollama, log)
		if err != nil {
			return providers{}, err
		}
		return providers{c.Sessions(), c.Summarizers(), c.Translators()}, nil
	}
	return providers{}, fmt.Errorf("unknown provider %q", cfg.Kind)
}

func newApp(ctx context.Context, cfgPath string, status ai.StatusFunc) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.NewWithWriter(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	store, closer, err := kvstore.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	p, err := newProviders(cfg.Provider, log)
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("create provider: %w", err)
	}

	a := &app{
		cfg:         cfg,
		log:         log,
		registry:    reg,
		metrics:     m,
		exec:        executor.New(),
		store:       store,
		storeCloser: closer,
		sessions:    p.sessions,
		summarizers: p.summarizers,
		translators: p.translators,
	}

	a.manager = session.New(p.sessions, cfg.Session, log,
		session.WithStore(store),
		session.WithMetrics(m),
		session.WithStatus(status),
		session.WithSystemPrompt(askSystemPrompt),
	)
	if err := a.manager.Restore(ctx); err != nil {
		log.Warn(ctx, "Failed to restore download bookkeeping: %v", err)
	}

	a.cache = translation.New(p.translators, cfg.Translation, log, m)
	a.pipeline = summarizer.New(cfg.Summarizer, log, m)
	a.processor = processor.New(cfg, processor.Deps{
		Executor:    a.exec,
		Pipeline:    a.pipeline,
		Summarizers: p.summarizers,
		Translator:  a.cache,
		Metrics:     m,
	}, log)
	return a, nil
}

func (a *app) close() {
	if err := a.manager.Close(); err != nil {
		a.log.Warn(context.Background(), "Failed to close session: %v", err)
	}
	if err := a.cache.Close(); err != nil {
		a.log.Warn(context.Background(), "Failed to close translators: %v", err)
	}
	if err := a.storeCloser.Close(); err != nil {
		a.log.Warn(context.Background(), "Failed to close store: %v", err)
	}
}

// ensureDirectories creates the folders the processor writes into
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.Paths.Input,
		cfg.Paths.Output,
		cfg.Paths.Archived,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
