package summarizer

import (
	"errors"

	"github.com/nguyentantai21042004/pagedigest/internal/config"
	"github.com/nguyentantai21042004/pagedigest/internal/logger"
	"github.com/nguyentantai21042004/pagedigest/internal/metrics"
)

var (
	ErrSummarizationTimeout = errors.New("summarization timed out")
	// ErrSummarizationExhausted marks a generative stage that produced
	// nothing. The pipeline never returns it; the extractive stage runs instead.
	ErrSummarizationExhausted = errors.New("summarization exhausted")

	errEmptySummary = errors.New("summarizer returned empty output")
)

type implPipeline struct {
	cfg     config.SummarizerConfig
	logger  logger.Logger
	metrics *metrics.Metrics
}

// New creates a Pipeline. Zero-valued limits in cfg take the same defaults
// as config.Validate.
func New(cfg config.SummarizerConfig, log logger.Logger, m *metrics.Metrics) Pipeline {
	if cfg.StageTimeout <= 0 {
		cfg.StageTimeout = defaultStageTimeout
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 3000
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = 200
	}
	if cfg.MaxChunks <= 0 {
		cfg.MaxChunks = 10
	}
	if cfg.MaxRecursionDepth <= 0 {
		cfg.MaxRecursionDepth = 3
	}
	if cfg.TruncateBudget <= 0 {
		cfg.TruncateBudget = 8000
	}
	if cfg.FallbackLength <= 0 {
		cfg.FallbackLength = 500
	}
	if cfg.Context == "" {
		cfg.Context = DefaultContext
	}
	if log == nil {
		log = logger.Nop()
	}

	return &implPipeline{
		cfg:     cfg,
		logger:  log,
		metrics: m,
	}
}
