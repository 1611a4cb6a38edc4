package translation

import (
	"container/list"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nguyentantai21042004/pagedigest/internal/ai"
	"golang.org/x/text/language"
)

type pair struct {
	source, target string
}

func (p pair) String() string { return p.source + "->" + p.target }

type entry struct {
	key        pair
	translator ai.Translator
	createdAt  time.Time
}

// Normalize canonicalises a BCP 47 tag. Tags the parser rejects are compared
// by their trimmed lower-case form.
func Normalize(tag string) string {
	tag = strings.TrimSpace(tag)
	t, err := language.Parse(tag)
	if err != nil {
		return strings.ToLower(tag)
	}
	return t.String()
}

func (c *implCache) Translate(ctx context.Context, text, source, target string) string {
	key := pair{source: Normalize(source), target: Normalize(target)}
	if key.source == key.target {
		return text
	}
	if strings.TrimSpace(text) == "" {
		return text
	}

	tr, err := c.translator(ctx, key)
	if err != nil {
		c.logger.Warn(ctx, "translation: no translator for %s: %v", key, err)
		c.metrics.TranslationResult("passthrough")
		return text
	}

	out, err := tr.Translate(ctx, text)
	if err != nil {
		c.logger.Warn(ctx, "translation: translate %s failed: %v", key, err)
		c.metrics.TranslationResult("passthrough")
		return text
	}
	c.metrics.TranslationResult("translated")
	return out
}

// translator returns the cached translator for key or creates it. Concurrent
// callers asking for the same missing pair share a single creation, which
// outlives the cancellation of whichever caller started it.
func (c *implCache) translator(ctx context.Context, key pair) (ai.Translator, error) {
	if tr, ok := c.lookup(key); ok {
		c.metrics.TranslationResult("hit")
		return tr, nil
	}
	c.metrics.TranslationResult("miss")

	v, err, _ := c.group.Do(key.String(), func() (interface{}, error) {
		if tr, ok := c.lookup(key); ok {
			return tr, nil
		}
		tr, err := c.create(context.WithoutCancel(ctx), key)
		if err != nil {
			return nil, err
		}
		c.insert(key, tr)
		return tr, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(ai.Translator), nil
}

func (c *implCache) create(ctx context.Context, key pair) (ai.Translator, error) {
	if c.provider == nil {
		return nil, ErrTranslationUnavailable
	}

	avail, err := c.provider.Availability(ctx, key.source, key.target)
	if err != nil {
		return nil, fmt.Errorf("check availability: %w", err)
	}
	if avail == ai.Unavailable {
		return nil, fmt.Errorf("%w for %s", ErrTranslationUnavailable, key)
	}

	onProgress := func(ratio float64) {
		c.logger.Debug(ctx, "translation: downloading %s model %.0f%%", key, ratio*100)
	}
	tr, err := c.provider.Create(ctx, key.source, key.target, onProgress)
	if err != nil {
		return nil, fmt.Errorf("create translator: %w", err)
	}
	if tr == nil {
		return nil, fmt.Errorf("create translator: %w for %s", ErrTranslationUnavailable, key)
	}
	c.logger.Info(ctx, "translation: created translator %s", key)
	return tr, nil
}

func (c *implCache) lookup(key pair) (ai.Translator, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry).translator, true
}

func (c *implCache) insert(key pair, tr ai.Translator) {
	var evicted []*entry

	c.mu.Lock()
	if el, ok := c.entries[key]; ok {
		el.Value.(*entry).translator = tr
		c.order.MoveToFront(el)
	} else {
		c.entries[key] = c.order.PushFront(&entry{key: key, translator: tr, createdAt: time.Now()})
	}
	for c.limit > 0 && c.order.Len() > c.limit {
		el := c.order.Back()
		e := el.Value.(*entry)
		c.order.Remove(el)
		delete(c.entries, e.key)
		evicted = append(evicted, e)
	}
	c.mu.Unlock()

	for _, e := range evicted {
		c.logger.Debug(context.Background(), "translation: evicted %s after %s", e.key, time.Since(e.createdAt).Round(time.Second))
		c.metrics.TranslationResult("evicted")
		closeTranslator(e.translator)
	}
}

func (c *implCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Close releases every cached translator that holds resources.
func (c *implCache) Close() error {
	c.mu.Lock()
	var all []*entry
	for el := c.order.Front(); el != nil; el = el.Next() {
		all = append(all, el.Value.(*entry))
	}
	c.entries = make(map[pair]*list.Element)
	c.order.Init()
	c.mu.Unlock()

	for _, e := range all {
		closeTranslator(e.translator)
	}
	return nil
}

func closeTranslator(tr ai.Translator) {
	if cl, ok := tr.(io.Closer); ok {
		_ = cl.Close()
	}
}
