package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/pagedigest/internal/chunker"
)

const (
	charsPerToken = 4
	capacityShare = 0.8
	minChunkChars = 200
)

// chunked is map-reduce summarization. Chunks are sized to the handle's
// probed capacity and summarized independently; the joined summaries are
// reduced in one more call, or summarized again when still too large.
func (p *implPipeline) chunked(ctx context.Context, j *job) (string, error) {
	capacity, ok := Probe(ctx, j.handle)
	if !ok {
		capacity = p.cfg.ChunkSize / charsPerToken
		p.logger.Debug(ctx, "Capacity unmeasurable, assuming %d tokens", capacity)
	} else {
		p.logger.Debug(ctx, "Summarizer capacity: %d tokens", capacity)
	}

	return p.mapReduce(ctx, j, j.source, capacity)
}

func (p *implPipeline) mapReduce(ctx context.Context, j *job, text string, capacity int) (string, error) {
	size := p.chunkChars(capacity)
	overlap := min(p.cfg.ChunkOverlap, size/2)

	chunks := chunker.Split(text, size, overlap)
	if len(chunks) > p.cfg.MaxChunks {
		p.logger.Warn(ctx, "Limiting to first %d of %d chunks", p.cfg.MaxChunks, len(chunks))
		chunks = chunks[:p.cfg.MaxChunks]
	}

	j.chunkSummaries = j.chunkSummaries[:0]
	for i, c := range chunks {
		if ctx.Err() != nil {
			break
		}
		j.status.Emit("summarizing", fmt.Sprintf("Processing chunk %d/%d...", i+1, len(chunks)), nil)

		out, err := p.call(ctx, j.handle, c.Text, j.instructions)
		if err != nil {
			p.logger.Warn(ctx, "Chunk %d/%d failed: %v", i+1, len(chunks), err)
			continue
		}
		j.chunkSummaries = append(j.chunkSummaries, out)
	}

	if len(j.chunkSummaries) == 0 {
		return "", fmt.Errorf("%w: no chunk summaries at depth %d", ErrSummarizationExhausted, j.depth)
	}

	joined := strings.Join(j.chunkSummaries, "\n\n")

	if float64(chunker.EstimateTokens(joined)) > float64(capacity)*capacityShare {
		if j.depth+1 >= p.cfg.MaxRecursionDepth {
			p.logger.Warn(ctx, "Max recursion depth %d reached, returning %d chunk summaries", p.cfg.MaxRecursionDepth, len(j.chunkSummaries))
			return joined, nil
		}

		j.depth++
		p.logger.Info(ctx, "Recursively summarizing %d summaries (depth %d)", len(j.chunkSummaries), j.depth)
		out, err := p.mapReduce(ctx, j, joined, capacity)
		if err != nil {
			p.logger.Warn(ctx, "Recursive pass failed, returning concatenation: %v", err)
			return joined, nil
		}
		return out, nil
	}

	j.status.Emit("summarizing", "Combining summaries...", nil)
	out, err := p.call(ctx, j.handle, joined, reduceContext)
	if err != nil {
		p.logger.Warn(ctx, "Reduce call failed, returning concatenation: %v", err)
		return joined, nil
	}
	return out, nil
}

// chunkChars converts a token capacity into a chunk size in bytes, capped
// by the configured chunk size.
func (p *implPipeline) chunkChars(capacity int) int {
	size := min(p.cfg.ChunkSize, int(float64(capacity*charsPerToken)*capacityShare))
	return max(size, min(minChunkChars, p.cfg.ChunkSize))
}
