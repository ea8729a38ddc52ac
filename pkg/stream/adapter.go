package stream

import (
	"context"
	"iter"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/hongxuelab/redtutor/pkg/llm"
)

// Adapter presents the Client's push-based callbacks as an ordered,
// cancellable, pull-based lazy sequence of Chunk snapshots. Each Stream call
// starts a fresh request with its own parser, channel, and producer; nothing
// is shared across concurrent requests.
type Adapter struct {
	client *Client
	logger *slog.Logger
}

// NewAdapter wraps a Client. The adapter logs through the client's logger.
func NewAdapter(client *Client) *Adapter {
	return &Adapter{
		client: client,
		logger: client.logger,
	}
}

// Stream issues one completion request and returns its chunk sequence. The
// sequence is finite and not restartable: ranging over it a second time
// yields nothing.
//
// Cancellation flows through ctx: once cancelled, the network request is
// aborted, queued events are discarded, and the sequence ends with at most
// one terminal "stopped" snapshot (IsComplete true, no error) — or with no
// snapshot at all if cancellation lands before any network byte arrived.
func (a *Adapter) Stream(ctx context.Context, messages []llm.Message, opts Options) iter.Seq[Chunk] {
	var once bool

	return func(yield func(Chunk) bool) {
		if once {
			return
		}
		once = true

		if ctx.Err() != nil {
			return
		}

		startTime := time.Now()
		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		ch := NewEventChannel[event]()
		// Discard any pushes that race past the consumer's exit.
		defer ch.Close()

		go func() {
			a.client.Run(runCtx, messages, channelCallbacks(ch), opts)
			ch.Close()
		}()

		var (
			fullContent     strings.Builder
			thinkingContent strings.Builder
			citations       []string
			index           int
		)

		// snapshot builds the next chunk; the index counter lives here, at
		// yield time, so the externally observed sequence is contiguous no
		// matter how many internal events one network read produced.
		snapshot := func(content string, complete bool, err error) Chunk {
			c := Chunk{
				Content:         content,
				FullContent:     fullContent.String(),
				ThinkingContent: thinkingContent.String(),
				Citations:       citations,
				ChunkIndex:      index,
				IsComplete:      complete,
				Err:             err,
				ResponseTime:    time.Since(startTime),
			}
			index++
			return c
		}

		stopped := func() {
			cancel()
			ch.Close()
			yield(snapshot("", true, nil))
		}

		for {
			events, ok := ch.Pull(ctx)
			if !ok {
				if ctx.Err() != nil {
					stopped()
					return
				}
				// Channel closed without a terminal event: the producer was
				// cancelled through runCtx or returned silently.
				return
			}

			// A batch that raced with cancellation is dropped, not yielded.
			if ctx.Err() != nil {
				stopped()
				return
			}

			for _, ev := range events {
				switch ev.kind {
				case eventThinkingStart, eventThinkingEnd:
					if !yield(snapshot("", false, nil)) {
						return
					}

				case eventThinkingContent:
					thinkingContent.WriteString(ev.text)
					if !yield(snapshot("", false, nil)) {
						return
					}

				case eventContent:
					fullContent.WriteString(ev.text)
					if !yield(snapshot(ev.text, false, nil)) {
						return
					}

				case eventCitations:
					// Latched: a later full list replaces the earlier one,
					// never merged, never retracted.
					citations = slices.Clone(ev.citations)

				case eventDone:
					yield(snapshot("", true, nil))
					return

				case eventError:
					a.logger.Debug("stream ended with error", slog.Any("error", ev.err))
					yield(snapshot("", true, ev.err))
					return
				}
			}
		}
	}
}
