package summarizer

import (
	"context"

	"github.com/nguyentantai21042004/pagedigest/internal/ai"
)

// Probe returns how many input tokens handle can still accept: its quota
// minus the baseline usage of an empty input. ok is false when the handle
// cannot report either figure.
func Probe(ctx context.Context, handle ai.Summarizer) (tokens int, ok bool) {
	if handle == nil {
		return 0, false
	}

	quota := handle.InputQuota()
	if quota <= 0 {
		return 0, false
	}

	baseline, err := handle.MeasureInputUsage(ctx, "")
	if err != nil {
		return 0, false
	}

	available := quota - baseline
	if available <= 0 {
		return 0, false
	}
	return available, true
}
