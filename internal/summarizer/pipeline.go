package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nguyentantai21042004/pagedigest/internal/ai"
	"github.com/nguyentantai21042004/pagedigest/internal/logger"
)

const (
	DefaultContext = "Remove boilerplate and navigation text. Focus on substantive content."
	reduceContext  = "This is a collection of summaries. Create a cohesive, comprehensive summary that combines all the key points."

	defaultStageTimeout = 30 * time.Second

	StageDirect     = "direct"
	StageTruncate   = "truncate"
	StageChunked    = "chunked"
	StageExtractive = "extractive"
)

// job is the per-call state threaded through the strategies.
type job struct {
	source         string
	filtered       string
	depth          int
	chunkSummaries []string

	handle       ai.Summarizer
	instructions string
	status       ai.StatusFunc
}

type strategy struct {
	name string
	run  func(ctx context.Context, j *job) (string, error)
}

func (p *implPipeline) Summarize(ctx context.Context, text string, handle ai.Summarizer, opts Options) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	j := &job{
		source:       text,
		filtered:     filterBoilerplate(text),
		handle:       handle,
		instructions: opts.Context,
		status:       opts.OnStatus,
	}
	if j.instructions == "" {
		j.instructions = p.cfg.Context
	}

	strategies := p.strategies(handle != nil, opts.Exhaustive || p.cfg.Exhaustive)
	for i, s := range strategies {
		last := i == len(strategies)-1
		if !last && ctx.Err() != nil {
			p.logger.Warn(ctx, "Skipping %s summary: %v", s.name, ctx.Err())
			continue
		}

		start := time.Now()
		out, err := s.run(ctx, j)
		out = strings.TrimSpace(out)
		if err == nil && out == "" {
			err = errEmptySummary
		}
		p.metrics.ObserveStage(s.name, outcome(err), time.Since(start))

		if err == nil {
			p.logger.Debug(ctx, "Summary produced by %s stage (%d chars)", s.name, len(out))
			return out
		}
		p.logger.Warn(ctx, "%s summary failed: %v", s.name, err)
	}

	// extractive only fails on blank input, which is rejected above
	return strings.TrimSpace(collapse(text))
}

// strategies lists the stages to try in order. Generative stages need a
// handle; the chunked stage also needs an explicit request.
func (p *implPipeline) strategies(generative, exhaustive bool) []strategy {
	var out []strategy
	if generative {
		out = append(out,
			strategy{StageDirect, p.direct},
			strategy{StageTruncate, p.truncated},
		)
		if exhaustive {
			out = append(out, strategy{StageChunked, p.chunked})
		}
	}
	return append(out, strategy{StageExtractive, p.extractive})
}

func (p *implPipeline) direct(ctx context.Context, j *job) (string, error) {
	j.status.Emit("summarizing", "Generating summary...", nil)
	return p.call(ctx, j.handle, j.filtered, j.instructions)
}

func (p *implPipeline) truncated(ctx context.Context, j *job) (string, error) {
	j.status.Emit("summarizing", "Processing large content...", nil)
	return p.call(ctx, j.handle, truncate(j.source, p.cfg.TruncateBudget), j.instructions)
}

func (p *implPipeline) extractive(_ context.Context, j *job) (string, error) {
	j.status.Emit("summarizing", "Generating fallback summary...", nil)
	return extractive(j.filtered, p.cfg.FallbackLength), nil
}

// call runs one summarizer request raced against the stage timeout. A result
// arriving after the timeout is discarded.
func (p *implPipeline) call(ctx context.Context, handle ai.Summarizer, text, instructions string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.StageTimeout)
	defer cancel()

	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)

	go func() {
		out, err := handle.Summarize(ctx, text, instructions)
		done <- result{out, err}
	}()

	select {
	case r := <-done:
		// an error caused by our own deadline counts as a timeout
		if r.err == nil || !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return finish(r.out, r.err)
		}
	case <-ctx.Done():
		if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", ctx.Err()
		}
	}

	p.logger.Debug(ctx, "Summarizer call exceeded %s on %s", p.cfg.StageTimeout, logger.Preview(text, 60))
	return "", fmt.Errorf("%w after %s", ErrSummarizationTimeout, p.cfg.StageTimeout)
}

func finish(out string, err error) (string, error) {
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", errEmptySummary
	}
	return out, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrSummarizationTimeout):
		return "timeout"
	case errors.Is(err, errEmptySummary):
		return "empty"
	case errors.Is(err, ErrSummarizationExhausted):
		return "exhausted"
	default:
		return "error"
	}
}
