package stream

import (
	"context"
	"iter"
	"time"

	"github.com/hongxuelab/redtutor/pkg/llm"
)

// Completion is the reduction of a full chunk sequence into one result, for
// callers that want a single value instead of incremental snapshots.
type Completion struct {
	// Answer is the final cumulative answer text.
	Answer string

	// Reasoning is the final cumulative reasoning text, if any.
	Reasoning string

	// Citations is the latched citation URL list.
	Citations []string

	// ChunkCount is the number of snapshots the sequence yielded.
	ChunkCount int

	// ResponseTime is the total elapsed time of the request.
	ResponseTime time.Duration

	// Success is false when the stream terminated with an error.
	Success bool

	// ErrMessage carries the terminal error's message when Success is false.
	ErrMessage string
}

// Aggregate drains a chunk sequence and keeps the last-seen value of each
// field. Every accumulator on Chunk is already monotonic, so no merge logic
// is needed.
func Aggregate(seq iter.Seq[Chunk]) *Completion {
	result := &Completion{Success: true}

	for chunk := range seq {
		result.Answer = chunk.FullContent
		result.Reasoning = chunk.ThinkingContent
		if len(chunk.Citations) > 0 {
			result.Citations = chunk.Citations
		}
		result.ChunkCount = chunk.ChunkIndex + 1
		result.ResponseTime = chunk.ResponseTime
		if chunk.Err != nil {
			result.Success = false
			result.ErrMessage = chunk.Err.Error()
		}
	}

	return result
}

// Complete runs one request to completion and returns the aggregated result.
func (a *Adapter) Complete(ctx context.Context, messages []llm.Message, opts Options) *Completion {
	return Aggregate(a.Stream(ctx, messages, opts))
}
