package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nguyentantai21042004/pagedigest/internal/ai"
)

// attempt is one in-flight provider Create. Every field is guarded by the
// manager's mutex until done is closed; after that, final, session and err
// are read-only.
type attempt struct {
	info        DownloadAttempt
	capExceeded bool

	stall    *time.Timer
	deadline *time.Timer

	// completed is set once the provider reports the download finished;
	// progress after that no longer rearms the stall timer.
	completed bool
	settled   bool
	done      chan struct{}
	final   DownloadAttempt
	session ai.Session
	err     error
}

// startLocked begins a session creation and returns its attempt. When the
// model is not known to be present the attempt counts as a download: the
// retry counter is bumped and the state moves to Downloading.
func (m *implManager) startLocked(ctx context.Context) *attempt {
	now := time.Now()
	download := m.state != Ready

	number := m.attempts + 1
	if download {
		m.attempts++
		number = m.attempts
	}

	a := &attempt{
		info: DownloadAttempt{
			ID:             uuid.NewString(),
			Number:         number,
			Download:       download,
			StartedAt:      now,
			LastProgressAt: now,
			Deadline:       now.Add(m.cfg.DownloadTimeout),
		},
		capExceeded: download && number > m.cfg.MaxRetries,
		done:        make(chan struct{}),
	}
	m.current = a

	if download {
		m.setState(Downloading)
		if a.capExceeded {
			m.logger.Warn(ctx, "Retry count %d exceeds max %d, starting download anyway", number, m.cfg.MaxRetries)
		}
		m.notify("downloading", "Downloading AI model..."+m.retryText(a), ai.Ratio(0))
	}

	a.stall = time.AfterFunc(m.cfg.StallTimeout, func() { m.onStall(a) })
	a.deadline = time.AfterFunc(m.cfg.DownloadTimeout, func() {
		m.settle(a, nil, &DownloadError{
			Kind: KindTimeout,
			Err:  fmt.Errorf("%w after %s", ErrDownloadTimeout, m.cfg.DownloadTimeout),
		})
	})

	mon := ai.Monitor{
		OnProgress: func(ratio *float64) { m.onProgress(a, ratio) },
		OnComplete: func() { m.onComplete(a) },
		OnFail:     func(err error) { m.settle(a, nil, err) },
	}

	// Values such as the activation survive; cancellation does not, so a
	// caller giving up never aborts the download.
	createCtx := context.WithoutCancel(ctx)
	go func() {
		sess, err := m.provider.Create(createCtx, m.options, mon)
		if err == nil && sess == nil {
			err = errors.New("provider returned no session")
		}
		m.settle(a, sess, err)
	}()

	if download {
		m.persistAttempt(ctx, number, now)
	}
	return a
}

func (m *implManager) retryText(a *attempt) string {
	if a.info.Number <= 1 {
		return ""
	}
	if a.capExceeded {
		return fmt.Sprintf(" (Attempt %d/%d, retry limit exceeded)", a.info.Number, m.cfg.MaxRetries)
	}
	return fmt.Sprintf(" (Attempt %d/%d)", a.info.Number, m.cfg.MaxRetries)
}

func (m *implManager) onProgress(a *attempt, ratio *float64) {
	m.mu.Lock()
	defer m.unlock()

	if a.settled || a.completed {
		return
	}
	a.info.LastProgressAt = time.Now()
	if ratio != nil {
		r := min(max(*ratio, 0), 1)
		a.info.Progress = &r
	}
	a.stall.Reset(m.cfg.StallTimeout)

	if a.info.Download && m.state == Downloading {
		msg := "Downloading AI model..." + m.retryText(a)
		if a.info.Progress != nil {
			msg = fmt.Sprintf("Downloading AI model... %d%%%s", int(*a.info.Progress*100), m.retryText(a))
		}
		m.notify("downloading", msg, a.info.Clone().Progress)
	}
}

func (m *implManager) onComplete(a *attempt) {
	m.mu.Lock()
	defer m.unlock()

	if a.settled || a.completed {
		return
	}
	a.completed = true
	one := 1.0
	a.info.Progress = &one
	a.info.LastProgressAt = time.Now()
	// preparing reports no progress; only the master deadline applies now
	a.stall.Stop()

	if a.info.Download && m.setState(Preparing) {
		m.notify("preparing", "Preparing AI model...", nil)
	}
}

// onStall fires when the stall timer expires. A progress signal that raced
// the timer leaves LastProgressAt inside the window and the firing is stale.
func (m *implManager) onStall(a *attempt) {
	m.mu.Lock()
	if a.settled || a.completed || time.Since(a.info.LastProgressAt) < m.cfg.StallTimeout {
		m.unlock()
		return
	}
	m.settleLocked(a, nil, &DownloadError{
		Kind: KindStalled,
		Err:  fmt.Errorf("%w: no progress for %s", ErrDownloadStalled, m.cfg.StallTimeout),
	})
	m.unlock()
}

func (m *implManager) settle(a *attempt, sess ai.Session, err error) {
	m.mu.Lock()
	defer m.unlock()
	m.settleLocked(a, sess, err)
}

// settleLocked resolves a at most once. Any later signal is dropped, and a
// session arriving after settlement is closed instead of handed out.
func (m *implManager) settleLocked(a *attempt, sess ai.Session, err error) {
	if a.settled {
		if sess != nil {
			m.logger.Debug(context.Background(), "Closing late session from attempt %s", a.info.ID)
			m.closeLater(sess)
		}
		return
	}
	a.settled = true
	a.stall.Stop()
	a.deadline.Stop()
	if m.current == a {
		m.current = nil
	}

	ctx := context.Background()
	if err == nil {
		if m.state == Downloading {
			m.setState(Preparing)
		}
		m.setState(Ready)
		m.session = sess
		m.lastErr = nil
		if a.info.Download {
			m.attempts = 0
			m.clearAttempts()
			m.metrics.DownloadResult("ready")
		}
		m.notify("ready", "AI ready", nil)
		m.logger.Info(ctx, "Session ready after attempt %d", a.info.Number)
	} else {
		de := Classify(err)
		if !m.setState(Failed) {
			m.logger.Warn(ctx, "Attempt %s failed while %s", a.info.ID, m.state)
		}
		m.lastErr = de
		if a.info.Download {
			m.metrics.DownloadResult(string(de.Kind))
		}
		m.notify("failed", UserMessage(de, a.info.Number, m.cfg.MaxRetries), nil)
		m.logger.Error(ctx, "Session attempt %d failed: %v", a.info.Number, de)
	}

	final := a.info.Clone()
	m.lastAttempt = &final
	a.final = a.info.Clone()
	a.session = sess
	a.err = m.lastErr
	close(a.done)
}

// discardLocked settles a without touching manager state, used when the
// manager is reset or closed under a live attempt.
func (m *implManager) discardLocked(a *attempt) {
	if a.settled {
		return
	}
	a.settled = true
	a.stall.Stop()
	a.deadline.Stop()
	m.current = nil
	a.final = a.info.Clone()
	a.err = ErrAttemptDiscarded
	close(a.done)
}
