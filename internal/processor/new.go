package processor

import (
	"sync"

	"github.com/nguyentantai21042004/pagedigest/internal/ai"
	"github.com/nguyentantai21042004/pagedigest/internal/config"
	"github.com/nguyentantai21042004/pagedigest/internal/logger"
	"github.com/nguyentantai21042004/pagedigest/internal/metrics"
	"github.com/nguyentantai21042004/pagedigest/internal/summarizer"
	"github.com/nguyentantai21042004/pagedigest/internal/translation"
	"github.com/nguyentantai21042004/pagedigest/pkg/executor"
)

type implProcessor struct {
	cfg         *config.Config
	executor    executor.Executor
	logger      logger.Logger
	pipeline    summarizer.Pipeline
	summarizers ai.SummarizerProvider
	translator  translation.Cache
	metrics     *metrics.Metrics
	slots       *semaphore

	mu      sync.Mutex
	handles map[string]ai.Summarizer // by output language
}

// Deps groups the collaborators a Processor drives. Summarizers and
// Translator may be nil; summaries then come from the extractive fallback
// and are not translated.
type Deps struct {
	Executor    executor.Executor
	Pipeline    summarizer.Pipeline
	Summarizers ai.SummarizerProvider
	Translator  translation.Cache
	Metrics     *metrics.Metrics
}

// New creates a new Processor instance
func New(cfg *config.Config, deps Deps, log logger.Logger) Processor {
	if log == nil {
		log = logger.Nop()
	}
	if deps.Pipeline == nil {
		deps.Pipeline = summarizer.New(cfg.Summarizer, log, deps.Metrics)
	}
	slots := cfg.Performance.ModelSlots
	if slots <= 0 {
		slots = 1
	}
	return &implProcessor{
		cfg:         cfg,
		executor:    deps.Executor,
		logger:      log,
		pipeline:    deps.Pipeline,
		summarizers: deps.Summarizers,
		translator:  deps.Translator,
		metrics:     deps.Metrics,
		slots:       newSemaphore(slots),
		handles:     make(map[string]ai.Summarizer),
	}
}
