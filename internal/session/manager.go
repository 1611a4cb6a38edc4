package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/nguyentantai21042004/pagedigest/internal/ai"
)

func (m *implManager) CheckAvailability(ctx context.Context) State {
	if m.provider == nil {
		m.mu.Lock()
		m.forceState(Unavailable)
		m.notify("unavailable", "AI not available on this device", nil)
		m.unlock()
		return Unavailable
	}

	m.status.Emit("checking", "Checking AI availability...", nil)

	next := Unavailable
	av, err := m.provider.Availability(ctx, m.options)
	if err != nil {
		m.logger.Warn(ctx, "Availability check failed: %v", err)
	} else {
		next = fromAvailability(av)
	}

	m.mu.Lock()
	defer m.unlock()

	// a live attempt or session is more current than the provider's view
	if m.current != nil || (m.state == Ready && m.session != nil) {
		return m.state
	}
	if !m.setState(next) {
		m.logger.Debug(ctx, "Ignoring availability %s while %s", next, m.state)
		return m.state
	}
	if next == Unavailable {
		m.notify("unavailable", "AI not available on this device", nil)
	}
	return m.state
}

// fromAvailability maps a provider report onto a manager state. A download
// the provider started on its own is not ours to track yet.
func fromAvailability(av ai.Availability) State {
	switch av {
	case ai.Available:
		return Ready
	case ai.Downloadable, ai.Downloading:
		return Downloadable
	default:
		return Unavailable
	}
}

func (m *implManager) EnsureReady(ctx context.Context) (Result, error) {
	if m.provider == nil {
		m.CheckAvailability(ctx)
		return Result{}, ErrUnavailable
	}

	m.mu.Lock()
	if res, ok := m.readyLocked(); ok {
		m.unlock()
		return res, nil
	}
	if a := m.current; a != nil {
		m.unlock()
		return m.wait(ctx, a)
	}
	state := m.state
	m.unlock()

	if state == Unknown {
		state = m.quickCheck(ctx)
	}
	if state == Unavailable {
		return Result{}, ErrUnavailable
	}

	m.mu.Lock()
	if res, ok := m.readyLocked(); ok {
		m.unlock()
		return res, nil
	}
	a := m.current
	if a == nil {
		a = m.startLocked(ctx)
	}
	m.unlock()

	return m.wait(ctx, a)
}

func (m *implManager) readyLocked() (Result, bool) {
	if m.state != Ready || m.session == nil {
		return Result{}, false
	}
	res := Result{Session: m.session}
	if m.lastAttempt != nil {
		res.Attempt = m.lastAttempt.Clone()
	}
	return res, true
}

// quickCheck is the availability query EnsureReady makes from Unknown. It is
// bounded by the availability timeout; a slow or failing provider is assumed
// to need a download so the create call still happens.
func (m *implManager) quickCheck(ctx context.Context) State {
	m.status.Emit("checking", "Checking AI availability...", nil)

	ctx, cancel := context.WithTimeout(ctx, m.cfg.AvailabilityTimeout)
	defer cancel()

	type result struct {
		av  ai.Availability
		err error
	}
	done := make(chan result, 1)
	go func() {
		av, err := m.provider.Availability(ctx, m.options)
		done <- result{av, err}
	}()

	next := Downloadable
	select {
	case r := <-done:
		if r.err != nil {
			m.logger.Warn(ctx, "Availability check failed, assuming downloadable: %v", r.err)
		} else {
			next = fromAvailability(r.av)
		}
	case <-ctx.Done():
		m.logger.Warn(ctx, "Availability check timed out after %s, assuming downloadable", m.cfg.AvailabilityTimeout)
	}

	m.mu.Lock()
	defer m.unlock()
	if m.state == Unknown {
		m.setState(next)
		if next == Unavailable {
			m.notify("unavailable", "AI not available on this device", nil)
		}
	}
	return m.state
}

func (m *implManager) wait(ctx context.Context, a *attempt) (Result, error) {
	select {
	case <-a.done:
		res := Result{Attempt: a.final, RetryCapExceeded: a.capExceeded}
		if a.err != nil {
			return res, a.err
		}
		res.Session = a.session
		return res, nil
	case <-ctx.Done():
		return Result{RetryCapExceeded: a.capExceeded}, ctx.Err()
	}
}

func (m *implManager) MarkSessionLost(err error) {
	m.mu.Lock()
	defer m.unlock()

	if m.state != Ready {
		return
	}
	if err == nil {
		err = errors.New("session closed")
	}
	sess := m.session
	m.session = nil
	m.setState(Failed)
	m.lastErr = fmt.Errorf("%w: %v", ErrSessionLost, err)
	m.notify("failed", UserMessage(m.lastErr, m.attempts, m.cfg.MaxRetries), nil)
	m.logger.Warn(context.Background(), "Session lost: %v", err)

	if sess != nil {
		m.closeLater(sess)
	}
}

func (m *implManager) Reset() {
	m.mu.Lock()
	defer m.unlock()

	if a := m.current; a != nil {
		m.discardLocked(a)
	}
	if m.session != nil {
		m.closeLater(m.session)
		m.session = nil
	}
	m.forceState(Unknown)
	m.lastErr = nil
}

func (m *implManager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *implManager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Attempt returns the live attempt, or the most recent one once settled.
func (m *implManager) Attempt() (DownloadAttempt, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		return m.current.info.Clone(), true
	}
	if m.lastAttempt != nil {
		return m.lastAttempt.Clone(), true
	}
	return DownloadAttempt{}, false
}

func (m *implManager) Close() error {
	m.mu.Lock()
	if a := m.current; a != nil {
		m.discardLocked(a)
	}
	sess := m.session
	m.session = nil
	m.unlock()

	var err error
	if sess != nil {
		err = sess.Close()
	}
	m.bg.Wait()
	return err
}

// setState applies a transition, reporting false when it is not allowed.
// Callers hold m.mu.
func (m *implManager) setState(next State) bool {
	if m.state == next {
		return true
	}
	if !isValidTransition(m.state, next) {
		return false
	}
	m.forceState(next)
	return true
}

func (m *implManager) forceState(next State) {
	m.logger.Debug(context.Background(), "Session state %s -> %s", m.state, next)
	m.state = next
	m.metrics.SetSessionState(string(next), allStates)
}

// notify queues a status update for delivery once m.mu is released.
func (m *implManager) notify(stage, message string, ratio *float64) {
	m.pending = append(m.pending, ai.Status{Stage: stage, Message: message, Ratio: ratio})
}

// unlock releases m.mu and then delivers queued status updates, so status
// callbacks may call back into the manager.
func (m *implManager) unlock() {
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()

	if m.status == nil {
		return
	}
	for _, s := range pending {
		m.status(s)
	}
}

// closeLater closes a session on a background goroutine tracked by Close.
func (m *implManager) closeLater(sess ai.Session) {
	m.bg.Add(1)
	go func() {
		defer m.bg.Done()
		if err := sess.Close(); err != nil {
			m.logger.Warn(context.Background(), "Failed to close session: %v", err)
		}
	}()
}
