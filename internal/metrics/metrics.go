// Package metrics holds the Prometheus collectors shared by the session
// manager, summarization pipeline and translation cache. A nil *Metrics is
// valid and records nothing.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pagedigest"

type Metrics struct {
	StageResults       *prometheus.CounterVec
	StageDuration      *prometheus.HistogramVec
	DownloadResults    *prometheus.CounterVec
	SessionState       *prometheus.GaugeVec
	TranslationResults *prometheus.CounterVec
	PagesProcessed     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg when it is non-nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StageResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summarize_stage_total",
			Help:      "Summarization stage attempts by stage and outcome.",
		}, []string{"stage", "outcome"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "summarize_stage_seconds",
			Help:      "Time spent in each summarization stage.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"stage"}),
		DownloadResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_download_total",
			Help:      "Model download attempts by result.",
		}, []string{"result"}),
		SessionState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_state",
			Help:      "Current session state, 1 for the active state.",
		}, []string{"state"}),
		TranslationResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translation_total",
			Help:      "Translation requests by result.",
		}, []string{"result"}),
		PagesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_processed_total",
			Help:      "Pages processed by result.",
		}, []string{"result"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.StageResults,
			m.StageDuration,
			m.DownloadResults,
			m.SessionState,
			m.TranslationResults,
			m.PagesProcessed,
		)
	}
	return m
}

func (m *Metrics) ObserveStage(stage, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.StageResults.WithLabelValues(stage, outcome).Inc()
	m.StageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

func (m *Metrics) DownloadResult(result string) {
	if m == nil {
		return
	}
	m.DownloadResults.WithLabelValues(result).Inc()
}

// SetSessionState marks current as the only active state among all.
func (m *Metrics) SetSessionState(current string, all []string) {
	if m == nil {
		return
	}
	for _, s := range all {
		v := 0.0
		if s == current {
			v = 1
		}
		m.SessionState.WithLabelValues(s).Set(v)
	}
}

func (m *Metrics) TranslationResult(result string) {
	if m == nil {
		return
	}
	m.TranslationResults.WithLabelValues(result).Inc()
}

func (m *Metrics) PageProcessed(result string) {
	if m == nil {
		return
	}
	m.PagesProcessed.WithLabelValues(result).Inc()
}

// Serve exposes g on addr under /metrics until ctx is cancelled.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
