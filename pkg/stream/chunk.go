package stream

import "time"

// Chunk is an immutable snapshot of cumulative stream state at one point in
// the sequence. Across one sequence, FullContent and ThinkingContent grow
// monotonically by concatenation, ChunkIndex runs 0..N−1 with no gaps, and
// Citations once non-empty is never retracted (a later full list replaces
// the earlier one wholesale).
type Chunk struct {
	// Content is the answer text produced by this step; empty for thinking
	// and terminal snapshots.
	Content string

	// FullContent is the cumulative answer text so far.
	FullContent string

	// ThinkingContent is the cumulative reasoning text so far.
	ThinkingContent string

	// Citations is the latched citation URL list; empty until the stream
	// delivers one.
	Citations []string

	// ChunkIndex is the position of this snapshot in the sequence.
	ChunkIndex int

	// IsComplete marks the terminal snapshot. Exactly one snapshot of a
	// completed or cancelled sequence carries it, and it is the last.
	IsComplete bool

	// Err is set on the terminal snapshot of a failed stream.
	Err error

	// ResponseTime is the elapsed time since the request began.
	ResponseTime time.Duration
}
