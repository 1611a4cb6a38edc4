package session

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

const (
	KeyLastDownloadRetry = "pd:lastDownloadRetry"
	KeyDownloadAttempts  = "pd:downloadAttempts"

	storeTimeout = 5 * time.Second
)

// persistAttempt records a started download without blocking the caller.
// Callers hold m.mu.
func (m *implManager) persistAttempt(ctx context.Context, number int, at time.Time) {
	if m.store == nil {
		return
	}
	values := map[string]string{
		KeyLastDownloadRetry: strconv.FormatInt(at.UnixMilli(), 10),
		KeyDownloadAttempts:  strconv.Itoa(number),
	}
	m.storeLater(ctx, "save", func(ctx context.Context) error {
		return m.store.Set(ctx, values)
	})
}

// clearAttempts drops the bookkeeping after a successful download. Callers
// hold m.mu.
func (m *implManager) clearAttempts() {
	if m.store == nil {
		return
	}
	m.storeLater(context.Background(), "clear", func(ctx context.Context) error {
		return m.store.Remove(ctx, KeyLastDownloadRetry, KeyDownloadAttempts)
	})
}

// storeLater runs a bookkeeping write in the background. Writes are
// numbered under m.mu; one that runs after a newer write has landed is
// skipped, so the store always reflects the latest decision. Failures are
// logged and otherwise ignored.
func (m *implManager) storeLater(ctx context.Context, what string, op func(context.Context) error) {
	m.storeSeq++
	seq := m.storeSeq

	m.bg.Add(1)
	go func() {
		defer m.bg.Done()

		m.storeMu.Lock()
		defer m.storeMu.Unlock()
		if seq < m.storeApplied {
			return
		}
		m.storeApplied = seq

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
		defer cancel()
		if err := op(ctx); err != nil {
			m.logger.Warn(ctx, "Could not %s retry bookkeeping: %v", what, err)
		}
	}()
}

func (m *implManager) Restore(ctx context.Context) error {
	if m.store == nil {
		return nil
	}

	values, err := m.store.Get(ctx, KeyDownloadAttempts, KeyLastDownloadRetry)
	if err != nil {
		return fmt.Errorf("load retry bookkeeping: %w", err)
	}

	raw, ok := values[KeyDownloadAttempts]
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fmt.Errorf("parse %s %q: invalid count", KeyDownloadAttempts, raw)
	}

	m.mu.Lock()
	m.attempts = n
	m.mu.Unlock()

	if last, ok := values[KeyLastDownloadRetry]; ok {
		if ms, err := strconv.ParseInt(last, 10, 64); err == nil {
			m.logger.Debug(ctx, "Restored %d download attempts, last at %s", n, time.UnixMilli(ms).Format(time.RFC3339))
		}
	}
	return nil
}
