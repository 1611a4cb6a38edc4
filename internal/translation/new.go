package translation

import (
	"container/list"
	"errors"
	"sync"

	"github.com/nguyentantai21042004/pagedigest/internal/ai"
	"github.com/nguyentantai21042004/pagedigest/internal/config"
	"github.com/nguyentantai21042004/pagedigest/internal/logger"
	"github.com/nguyentantai21042004/pagedigest/internal/metrics"
	"golang.org/x/sync/singleflight"
)

var ErrTranslationUnavailable = errors.New("translation unavailable")

type implCache struct {
	provider ai.TranslatorProvider
	logger   logger.Logger
	metrics  *metrics.Metrics
	limit    int

	group singleflight.Group

	mu      sync.Mutex
	entries map[pair]*list.Element
	order   *list.List // front is most recently used
}

// New returns a translation cache backed by provider. cfg.MaxTranslators
// bounds the number of live translators; a negative value keeps all of them.
func New(provider ai.TranslatorProvider, cfg config.TranslationConfig, log logger.Logger, m *metrics.Metrics) Cache {
	if log == nil {
		log = logger.Nop()
	}
	return &implCache{
		provider: provider,
		logger:   log,
		metrics:  m,
		limit:    cfg.MaxTranslators,
		entries:  make(map[pair]*list.Element),
		order:    list.New(),
	}
}
