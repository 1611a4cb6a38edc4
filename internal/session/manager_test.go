package session

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/nguyentantai21042004/pagedigest/internal/ai"
	"github.com/nguyentantai21042004/pagedigest/internal/config"
	"github.com/nguyentantai21042004/pagedigest/internal/kvstore"
	"github.com/nguyentantai21042004/pagedigest/internal/logger"
)

func newTestManager(p ai.SessionProvider, cfg config.SessionConfig, opts ...Option) *implManager {
	return New(p, cfg, logger.Nop(), opts...).(*implManager)
}

func TestCheckAvailability(t *testing.T) {
	tests := []struct {
		name string
		av   ai.Availability
		err  error
		want State
	}{
		{"available", ai.Available, nil, Ready},
		{"downloadable", ai.Downloadable, nil, Downloadable},
		{"downloading elsewhere", ai.Downloading, nil, Downloadable},
		{"unavailable", ai.Unavailable, nil, Unavailable},
		{"error fails closed", ai.Available, errors.New("boom"), Unavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(&fakeProvider{availability: tt.av, availErr: tt.err}, config.SessionConfig{})
			if got := m.CheckAvailability(context.Background()); got != tt.want {
				t.Errorf("CheckAvailability() = %v, want %v", got, tt.want)
			}
			if m.State() != tt.want {
				t.Errorf("State() = %v, want %v", m.State(), tt.want)
			}
		})
	}
}

func TestNilProviderIsUnavailable(t *testing.T) {
	m := newTestManager(nil, config.SessionConfig{})

	if got := m.CheckAvailability(context.Background()); got != Unavailable {
		t.Errorf("CheckAvailability() = %v, want unavailable", got)
	}
	if _, err := m.EnsureReady(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("EnsureReady() error = %v, want ErrUnavailable", err)
	}
}

func TestEnsureReadyUnavailable(t *testing.T) {
	p := &fakeProvider{availability: ai.Unavailable}
	m := newTestManager(p, config.SessionConfig{})

	if _, err := m.EnsureReady(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("EnsureReady() error = %v, want ErrUnavailable", err)
	}
	if p.createCount() != 0 {
		t.Errorf("Create called %d times, want 0", p.createCount())
	}
}

func TestEnsureReadyWhenReadyDoesNotRecreate(t *testing.T) {
	sess := &fakeSession{}
	p := &fakeProvider{availability: ai.Available, create: returns(sess, nil)}
	m := newTestManager(p, config.SessionConfig{})
	ctx := context.Background()

	first, err := m.EnsureReady(ctx)
	if err != nil {
		t.Fatalf("EnsureReady() error = %v", err)
	}
	if first.Session != sess {
		t.Fatalf("EnsureReady() session = %v, want fake", first.Session)
	}
	if first.Attempt.Download {
		t.Errorf("model already present, attempt should not count as a download")
	}

	second, err := m.EnsureReady(ctx)
	if err != nil {
		t.Fatalf("second EnsureReady() error = %v", err)
	}
	if second.Session != sess {
		t.Errorf("second session differs")
	}
	if n := p.createCount(); n != 1 {
		t.Errorf("Create called %d times, want 1", n)
	}
}

func TestSameOptionsForAvailabilityAndCreate(t *testing.T) {
	p := &fakeProvider{availability: ai.Downloadable, create: returns(&fakeSession{}, nil)}
	m := newTestManager(p, config.SessionConfig{
		ExpectedInputLanguages:  []string{"en", "es"},
		ExpectedOutputLanguages: []string{"en"},
	}, WithSystemPrompt("be brief"))

	m.CheckAvailability(context.Background())
	if _, err := m.EnsureReady(context.Background()); err != nil {
		t.Fatalf("EnsureReady() error = %v", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.availOpts) != 1 || len(p.createOpts) != 1 {
		t.Fatalf("availability calls %d, create calls %d", len(p.availOpts), len(p.createOpts))
	}
	if !reflect.DeepEqual(p.availOpts[0], p.createOpts[0]) {
		t.Errorf("availability options %+v differ from create options %+v", p.availOpts[0], p.createOpts[0])
	}
	if p.createOpts[0].SystemPrompt != "be brief" {
		t.Errorf("SystemPrompt = %q", p.createOpts[0].SystemPrompt)
	}
}

func TestDownloadProgressToReady(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		sess := &fakeSession{}
		p := &fakeProvider{availability: ai.Downloadable, create: func(_ context.Context, mon ai.Monitor) (ai.Session, error) {
			mon.Progress(ai.Ratio(0.5))
			time.Sleep(time.Minute)
			mon.Progress(ai.Ratio(1))
			time.Sleep(400 * time.Millisecond)
			mon.Complete()
			time.Sleep(time.Second)
			return sess, nil
		}}
		store := kvstore.NewMemory()
		status := &statusLog{}
		m := newTestManager(p, config.SessionConfig{}, WithStore(store), WithStatus(status.record))
		ctx := context.Background()

		if got := m.CheckAvailability(ctx); got != Downloadable {
			t.Fatalf("CheckAvailability() = %v, want downloadable", got)
		}

		res, err := m.EnsureReady(ctx)
		if err != nil {
			t.Fatalf("EnsureReady() error = %v", err)
		}
		if res.Session != sess {
			t.Errorf("session mismatch")
		}
		if m.State() != Ready {
			t.Errorf("State() = %v, want ready", m.State())
		}
		if res.Attempt.Number != 1 || !res.Attempt.Download {
			t.Errorf("Attempt = %+v", res.Attempt)
		}
		if res.Attempt.Progress == nil || *res.Attempt.Progress != 1 {
			t.Errorf("Progress = %v, want 1", res.Attempt.Progress)
		}

		stages := strings.Join(status.stages(), ",")
		if !strings.Contains(stages, "downloading,preparing,ready") {
			t.Errorf("stages = %s", stages)
		}

		if err := m.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		left, _ := store.Get(ctx, KeyDownloadAttempts, KeyLastDownloadRetry)
		if len(left) != 0 {
			t.Errorf("retry bookkeeping not cleared: %v", left)
		}
		if !sess.isClosed() {
			t.Errorf("Close() did not close the session")
		}
	})
}

func TestStallDetection(t *testing.T) {
	const stall = 2 * time.Minute

	t.Run("progress just inside the window", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			sess := &fakeSession{}
			p := &fakeProvider{availability: ai.Downloadable, create: func(_ context.Context, mon ai.Monitor) (ai.Session, error) {
				time.Sleep(stall - time.Millisecond)
				mon.Progress(ai.Ratio(0.4))
				time.Sleep(stall - time.Millisecond)
				mon.Complete()
				return sess, nil
			}}
			m := newTestManager(p, config.SessionConfig{StallTimeout: stall})

			if _, err := m.EnsureReady(context.Background()); err != nil {
				t.Fatalf("EnsureReady() error = %v", err)
			}
			if m.State() != Ready {
				t.Errorf("State() = %v, want ready", m.State())
			}
		})
	})

	t.Run("no progress within the window", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			sess := &fakeSession{}
			p := &fakeProvider{availability: ai.Downloadable, create: func(_ context.Context, mon ai.Monitor) (ai.Session, error) {
				time.Sleep(stall + time.Second)
				mon.Progress(ai.Ratio(0.9))
				return sess, nil
			}}
			m := newTestManager(p, config.SessionConfig{StallTimeout: stall})

			start := time.Now()
			_, err := m.EnsureReady(context.Background())
			if !errors.Is(err, ErrDownloadStalled) {
				t.Fatalf("EnsureReady() error = %v, want ErrDownloadStalled", err)
			}
			if elapsed := time.Since(start); elapsed != stall {
				t.Errorf("stalled after %v, want %v", elapsed, stall)
			}
			if m.State() != Failed {
				t.Errorf("State() = %v, want failed", m.State())
			}

			time.Sleep(2 * time.Second)
			synctest.Wait()
			if !sess.isClosed() {
				t.Errorf("late session was not closed")
			}
			if m.State() != Failed {
				t.Errorf("late signals changed state to %v", m.State())
			}
		})
	})
}

func TestMasterDeadline(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		sess := &fakeSession{}
		p := &fakeProvider{availability: ai.Downloadable, create: func(_ context.Context, mon ai.Monitor) (ai.Session, error) {
			for i := range 20 {
				time.Sleep(time.Minute)
				mon.Progress(ai.Ratio(float64(i) / 20))
			}
			mon.Complete()
			return sess, nil
		}}
		status := &statusLog{}
		m := newTestManager(p, config.SessionConfig{DownloadTimeout: 10 * time.Minute}, WithStatus(status.record))

		start := time.Now()
		_, err := m.EnsureReady(context.Background())
		if !errors.Is(err, ErrDownloadTimeout) {
			t.Fatalf("EnsureReady() error = %v, want ErrDownloadTimeout", err)
		}
		if elapsed := time.Since(start); elapsed != 10*time.Minute {
			t.Errorf("timed out after %v, want 10m", elapsed)
		}

		time.Sleep(11 * time.Minute)
		synctest.Wait()

		if m.State() != Failed {
			t.Errorf("State() = %v, want failed", m.State())
		}
		if n := status.count("failed"); n != 1 {
			t.Errorf("failed status emitted %d times, want 1", n)
		}
		if n := status.count("preparing"); n != 0 {
			t.Errorf("late completion emitted preparing")
		}
		if !sess.isClosed() {
			t.Errorf("late session was not closed")
		}
	})
}

func TestFailureSignalIsClassified(t *testing.T) {
	p := &fakeProvider{availability: ai.Downloadable, create: func(_ context.Context, mon ai.Monitor) (ai.Session, error) {
		mon.Fail(errors.New("net::ERR connection reset"))
		return nil, errors.New("second failure")
	}}
	m := newTestManager(p, config.SessionConfig{})

	_, err := m.EnsureReady(context.Background())
	var de *DownloadError
	if !errors.As(err, &de) || de.Kind != KindNetwork {
		t.Fatalf("EnsureReady() error = %v, want network DownloadError", err)
	}
	if !errors.Is(err, ErrDownloadFailed) {
		t.Errorf("error does not match ErrDownloadFailed")
	}
	if m.State() != Failed {
		t.Errorf("State() = %v, want failed", m.State())
	}
	if !errors.Is(m.LastError(), ErrDownloadFailed) {
		t.Errorf("LastError() = %v", m.LastError())
	}
}

func TestLateSignalsIgnored(t *testing.T) {
	sess := &fakeSession{}
	p := &fakeProvider{availability: ai.Downloadable, create: func(_ context.Context, mon ai.Monitor) (ai.Session, error) {
		mon.Fail(errors.New("storage quota exceeded"))
		mon.Progress(ai.Ratio(0.5))
		mon.Complete()
		mon.Fail(errors.New("network gone"))
		return sess, nil
	}}
	status := &statusLog{}
	m := newTestManager(p, config.SessionConfig{}, WithStatus(status.record))

	_, err := m.EnsureReady(context.Background())
	var de *DownloadError
	if !errors.As(err, &de) || de.Kind != KindDisk {
		t.Fatalf("EnsureReady() error = %v, want disk DownloadError", err)
	}

	if err := m.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if m.State() != Failed {
		t.Errorf("State() = %v, want failed", m.State())
	}
	if n := status.count("failed"); n != 1 {
		t.Errorf("failed status emitted %d times, want 1", n)
	}
	if n := status.count("preparing"); n != 0 {
		t.Errorf("completion after failure emitted preparing")
	}
	if !sess.isClosed() {
		t.Errorf("late session was not closed")
	}
}

func TestSignalsDuringPreparing(t *testing.T) {
	const stall = 2 * time.Minute

	t.Run("progress after completion keeps preparing", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			sess := &fakeSession{}
			p := &fakeProvider{availability: ai.Downloadable, create: func(_ context.Context, mon ai.Monitor) (ai.Session, error) {
				mon.Progress(ai.Ratio(1))
				mon.Complete()
				mon.Progress(ai.Ratio(1))
				mon.Complete()
				time.Sleep(stall + time.Second)
				return sess, nil
			}}
			status := &statusLog{}
			m := newTestManager(p, config.SessionConfig{StallTimeout: stall}, WithStatus(status.record))

			if _, err := m.EnsureReady(context.Background()); err != nil {
				t.Fatalf("EnsureReady() error = %v", err)
			}
			synctest.Wait()

			if m.State() != Ready {
				t.Errorf("State() = %v, want ready", m.State())
			}
			if sess.isClosed() {
				t.Errorf("session was closed as a late result")
			}
			if n := status.count("preparing"); n != 1 {
				t.Errorf("preparing status emitted %d times, want 1", n)
			}
			if n := status.count("failed"); n != 0 {
				t.Errorf("failed status emitted %d times, want 0", n)
			}
		})
	})

	t.Run("deadline still applies while preparing", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			sess := &fakeSession{}
			p := &fakeProvider{availability: ai.Downloadable, create: func(_ context.Context, mon ai.Monitor) (ai.Session, error) {
				mon.Complete()
				mon.Progress(ai.Ratio(1))
				time.Sleep(20 * time.Minute)
				return sess, nil
			}}
			m := newTestManager(p, config.SessionConfig{StallTimeout: stall, DownloadTimeout: 10 * time.Minute})

			start := time.Now()
			_, err := m.EnsureReady(context.Background())
			if !errors.Is(err, ErrDownloadTimeout) {
				t.Fatalf("EnsureReady() error = %v, want ErrDownloadTimeout", err)
			}
			if elapsed := time.Since(start); elapsed != 10*time.Minute {
				t.Errorf("timed out after %v, want 10m", elapsed)
			}

			time.Sleep(11 * time.Minute)
			synctest.Wait()
			if !sess.isClosed() {
				t.Errorf("late session was not closed")
			}
		})
	})

	t.Run("signals after a failure while preparing", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			sess := &fakeSession{}
			p := &fakeProvider{availability: ai.Downloadable, create: func(_ context.Context, mon ai.Monitor) (ai.Session, error) {
				mon.Complete()
				time.Sleep(time.Minute)
				mon.Fail(errors.New("connection reset"))
				mon.Progress(ai.Ratio(1))
				mon.Complete()
				time.Sleep(stall + time.Second)
				return sess, nil
			}}
			status := &statusLog{}
			m := newTestManager(p, config.SessionConfig{StallTimeout: stall}, WithStatus(status.record))

			_, err := m.EnsureReady(context.Background())
			var de *DownloadError
			if !errors.As(err, &de) || de.Kind != KindNetwork {
				t.Fatalf("EnsureReady() error = %v, want network DownloadError", err)
			}

			time.Sleep(stall + time.Minute)
			synctest.Wait()

			if m.State() != Failed {
				t.Errorf("State() = %v, want failed", m.State())
			}
			if n := status.count("failed"); n != 1 {
				t.Errorf("failed status emitted %d times, want 1", n)
			}
			if n := status.count("preparing"); n != 1 {
				t.Errorf("preparing status emitted %d times, want 1", n)
			}
			if !sess.isClosed() {
				t.Errorf("late session was not closed")
			}
		})
	})
}

func TestActivationRequired(t *testing.T) {
	requireActivation := func(ctx context.Context, _ ai.Monitor) (ai.Session, error) {
		a, ok := ai.ActivationFrom(ctx)
		if !ok || !a.Valid(time.Now()) {
			return nil, errors.New("Requires a user gesture to download the model")
		}
		return &fakeSession{}, nil
	}
	p := &fakeProvider{availability: ai.Downloadable, create: requireActivation}
	m := newTestManager(p, config.SessionConfig{})

	_, err := m.EnsureReady(context.Background())
	if !errors.Is(err, ErrActivationRequired) {
		t.Fatalf("EnsureReady() error = %v, want ErrActivationRequired", err)
	}
	if msg := UserMessage(err, 1, 3); !strings.Contains(msg, "User action required") {
		t.Errorf("UserMessage() = %q", msg)
	}

	ctx := ai.WithActivation(context.Background(), ai.Activation{GrantedAt: time.Now(), Window: 5 * time.Second})
	if _, err := m.EnsureReady(ctx); err != nil {
		t.Fatalf("EnsureReady() with activation error = %v", err)
	}
	if m.State() != Ready {
		t.Errorf("State() = %v, want ready", m.State())
	}
}

func TestRetryCapIsAdvisory(t *testing.T) {
	p := &fakeProvider{availability: ai.Downloadable, create: returns(nil, errors.New("disk full"))}
	status := &statusLog{}
	m := newTestManager(p, config.SessionConfig{MaxRetries: 1}, WithStatus(status.record))

	wantCap := []bool{false, true, true}
	for i, want := range wantCap {
		res, err := m.EnsureReady(context.Background())
		if err == nil {
			t.Fatalf("attempt %d: expected failure", i+1)
		}
		if res.Attempt.Number != i+1 {
			t.Errorf("attempt %d: Number = %d", i+1, res.Attempt.Number)
		}
		if res.RetryCapExceeded != want {
			t.Errorf("attempt %d: RetryCapExceeded = %v, want %v", i+1, res.RetryCapExceeded, want)
		}
	}

	if n := p.createCount(); n != 3 {
		t.Errorf("Create called %d times, want 3", n)
	}

	msgs := status.messages("downloading")
	if len(msgs) != 3 || !strings.Contains(msgs[1], "(Attempt 2/1, retry limit exceeded)") {
		t.Errorf("downloading messages = %q", msgs)
	}
}

func TestConcurrentEnsureReadyAttaches(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		sess := &fakeSession{}
		release := make(chan struct{})
		p := &fakeProvider{availability: ai.Downloadable, create: func(context.Context, ai.Monitor) (ai.Session, error) {
			<-release
			return sess, nil
		}}
		m := newTestManager(p, config.SessionConfig{})

		var wg sync.WaitGroup
		results := make([]Result, 3)
		errs := make([]error, 3)
		for i := range 3 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i], errs[i] = m.EnsureReady(context.Background())
			}()
		}

		synctest.Wait()
		close(release)
		wg.Wait()

		for i := range 3 {
			if errs[i] != nil || results[i].Session != sess {
				t.Errorf("caller %d: session %v, err %v", i, results[i].Session, errs[i])
			}
		}
		if n := p.createCount(); n != 1 {
			t.Errorf("Create called %d times, want 1", n)
		}
	})
}

func TestCallerCancellationDoesNotAbortDownload(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		sess := &fakeSession{}
		p := &fakeProvider{availability: ai.Downloadable, create: func(ctx context.Context, mon ai.Monitor) (ai.Session, error) {
			time.Sleep(30 * time.Second)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			mon.Complete()
			return sess, nil
		}}
		m := newTestManager(p, config.SessionConfig{})

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := m.EnsureReady(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("EnsureReady() error = %v, want deadline exceeded", err)
		}

		time.Sleep(time.Minute)
		synctest.Wait()

		if m.State() != Ready {
			t.Fatalf("State() = %v, want ready", m.State())
		}
		res, err := m.EnsureReady(context.Background())
		if err != nil || res.Session != sess {
			t.Errorf("EnsureReady() = %v, %v", res.Session, err)
		}
		if n := p.createCount(); n != 1 {
			t.Errorf("Create called %d times, want 1", n)
		}
	})
}

func TestUnknownAvailabilityTimeoutAssumesDownloadable(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p := &fakeProvider{availability: ai.Available, availDelay: 10 * time.Second, create: returns(&fakeSession{}, nil)}
		m := newTestManager(p, config.SessionConfig{})

		start := time.Now()
		res, err := m.EnsureReady(context.Background())
		if err != nil {
			t.Fatalf("EnsureReady() error = %v", err)
		}
		if elapsed := time.Since(start); elapsed != time.Second {
			t.Errorf("elapsed = %v, want the 1s availability bound", elapsed)
		}
		if !res.Attempt.Download {
			t.Errorf("attempt should count as a download after an availability timeout")
		}
	})
}

func TestBookkeepingPersistence(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	p := &fakeProvider{availability: ai.Downloadable, create: returns(nil, errors.New("network down"))}

	m := newTestManager(p, config.SessionConfig{}, WithStore(store))
	if _, err := m.EnsureReady(ctx); err == nil {
		t.Fatal("expected failure")
	}
	m.Close()

	got, err := store.Get(ctx, KeyDownloadAttempts, KeyLastDownloadRetry)
	if err != nil {
		t.Fatal(err)
	}
	if got[KeyDownloadAttempts] != "1" || got[KeyLastDownloadRetry] == "" {
		t.Fatalf("bookkeeping = %v", got)
	}

	// a fresh manager continues counting from the stored value
	restored := newTestManager(p, config.SessionConfig{}, WithStore(store))
	if err := restored.Restore(ctx); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	p.setCreate(returns(&fakeSession{}, nil))
	res, err := restored.EnsureReady(ctx)
	if err != nil {
		t.Fatalf("EnsureReady() error = %v", err)
	}
	if res.Attempt.Number != 2 {
		t.Errorf("Attempt.Number = %d, want 2", res.Attempt.Number)
	}
	restored.Close()

	got, _ = store.Get(ctx, KeyDownloadAttempts, KeyLastDownloadRetry)
	if len(got) != 0 {
		t.Errorf("bookkeeping not cleared after success: %v", got)
	}
}

func TestRestoreInvalidCount(t *testing.T) {
	store := kvstore.NewMemory()
	store.Set(context.Background(), map[string]string{KeyDownloadAttempts: "many"})

	m := newTestManager(&fakeProvider{}, config.SessionConfig{}, WithStore(store))
	if err := m.Restore(context.Background()); err == nil {
		t.Error("Restore() should reject a non-numeric count")
	}
}

func TestPrompt(t *testing.T) {
	ctx := context.Background()

	t.Run("not ready", func(t *testing.T) {
		m := newTestManager(&fakeProvider{}, config.SessionConfig{})
		if _, err := m.Prompt(ctx, "hi", nil); !errors.Is(err, ErrNotReady) {
			t.Errorf("Prompt() error = %v, want ErrNotReady", err)
		}
	})

	t.Run("streams chunks", func(t *testing.T) {
		sess := &fakeSession{chunks: []string{"Hel", "lo"}}
		m := newTestManager(&fakeProvider{availability: ai.Available, create: returns(sess, nil)}, config.SessionConfig{})
		if _, err := m.EnsureReady(ctx); err != nil {
			t.Fatal(err)
		}

		var got []string
		out, err := m.Prompt(ctx, "hi", func(c string) { got = append(got, c) })
		if err != nil || out != "Hello" {
			t.Fatalf("Prompt() = %q, %v", out, err)
		}
		if len(got) != 2 {
			t.Errorf("onChunk received %v", got)
		}
	})

	t.Run("failure marks session lost", func(t *testing.T) {
		sess := &fakeSession{chunks: []string{"partial"}, err: errors.New("model crashed")}
		m := newTestManager(&fakeProvider{availability: ai.Available, create: returns(sess, nil)}, config.SessionConfig{})
		if _, err := m.EnsureReady(ctx); err != nil {
			t.Fatal(err)
		}

		if _, err := m.Prompt(ctx, "hi", nil); !errors.Is(err, ErrSessionLost) {
			t.Fatalf("Prompt() error = %v, want ErrSessionLost", err)
		}
		if m.State() != Failed {
			t.Errorf("State() = %v, want failed", m.State())
		}
		if !errors.Is(m.LastError(), ErrSessionLost) {
			t.Errorf("LastError() = %v", m.LastError())
		}
		m.Close()
		if !sess.isClosed() {
			t.Errorf("lost session was not closed")
		}
	})
}

func TestReset(t *testing.T) {
	sess := &fakeSession{}
	m := newTestManager(&fakeProvider{availability: ai.Available, create: returns(sess, nil)}, config.SessionConfig{})
	if _, err := m.EnsureReady(context.Background()); err != nil {
		t.Fatal(err)
	}

	m.Reset()
	if m.State() != Unknown {
		t.Errorf("State() = %v, want unknown", m.State())
	}
	if m.LastError() != nil {
		t.Errorf("LastError() = %v, want nil", m.LastError())
	}
	m.Close()
	if !sess.isClosed() {
		t.Errorf("Reset() did not close the session")
	}
}

func TestResetDiscardsLiveAttempt(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		sess := &fakeSession{}
		release := make(chan struct{})
		p := &fakeProvider{availability: ai.Downloadable, create: func(context.Context, ai.Monitor) (ai.Session, error) {
			<-release
			return sess, nil
		}}
		m := newTestManager(p, config.SessionConfig{})

		var err error
		done := make(chan struct{})
		go func() {
			defer close(done)
			_, err = m.EnsureReady(context.Background())
		}()

		synctest.Wait()
		if _, ok := m.Attempt(); !ok {
			t.Fatal("expected a live attempt")
		}
		m.Reset()
		<-done
		if !errors.Is(err, ErrAttemptDiscarded) {
			t.Errorf("EnsureReady() error = %v, want ErrAttemptDiscarded", err)
		}

		close(release)
		synctest.Wait()
		if !sess.isClosed() {
			t.Errorf("session from discarded attempt was not closed")
		}
		if m.State() != Unknown {
			t.Errorf("State() = %v, want unknown", m.State())
		}
	})
}
