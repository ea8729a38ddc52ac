// Package stream implements the platform's streamed chat transport: a client
// for SSE completion endpoints whose reasoning models interleave
// <think>-delimited reasoning with answer text, plus the adapter that
// re-exposes the resulting push-style callbacks as an ordered, cancellable,
// pull-based sequence of snapshots.
package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hongxuelab/redtutor/pkg/llm"
	"github.com/hongxuelab/redtutor/pkg/logger"
	"github.com/hongxuelab/redtutor/pkg/sse"
	"github.com/hongxuelab/redtutor/pkg/thinktag"
	"github.com/hongxuelab/redtutor/pkg/utils"
)

const (
	completionsPath = "/chat/completions"
	doneSentinel    = "[DONE]"
)

// Config holds the resolved connection parameters for a Client. Credential
// and endpoint resolution happens elsewhere (config file, env, flags); the
// client consumes the final values.
type Config struct {
	// BaseURL is the scheme+host of the completion endpoint,
	// e.g. "https://api.perplexity.ai".
	BaseURL string

	// APIKey is sent as a bearer token.
	APIKey string

	// HTTPClient optionally overrides the default client. The transport
	// carries no timeout of its own: duration policy is composed externally
	// through the request context or a caller-supplied client.
	HTTPClient *http.Client

	// Logger defaults to a nop logger when nil.
	Logger *slog.Logger
}

// Client performs single streaming completion requests against an SSE
// endpoint. A Client is stateless between requests and safe for concurrent
// use; all per-request state lives inside Run.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// Options are the per-request generation parameters.
type Options struct {
	// Model names the completion model.
	Model string

	// MaxTokens caps the output length. Zero means provider default.
	MaxTokens int

	// Temperature, when non-nil, overrides the provider default.
	Temperature *float64

	// StartInThinking makes the tag parser assume the stream opens inside a
	// reasoning block, for models that omit the opening <think> marker.
	StartInThinking bool
}

// NewClient creates a Client from the given resolved configuration.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		logger:     log,
	}
}

// Run performs exactly one streaming completion request and drives it to
// completion or failure, invoking the callback set as the stream progresses.
//
// Contract:
//   - an already-cancelled ctx returns immediately with no callback invoked
//   - a non-success status invokes OnError once with a *TransportError and
//     never starts the streaming loop
//   - cancellation mid-flight terminates silently; it is not an error
//   - any other read/parse failure invokes OnError exactly once
//   - the response body is released exactly once on every exit path
func (c *Client) Run(ctx context.Context, messages []llm.Message, cb Callbacks, opts Options) {
	if ctx.Err() != nil {
		return
	}

	log := c.logger.With(
		slog.String("request_id", uuid.NewString()),
		slog.String("model", opts.Model),
	)

	httpResp, err := c.send(ctx, messages, opts)
	if err != nil {
		if isCancellation(ctx, err) {
			return
		}
		log.Debug("completion request failed", slog.Any("error", err))
		cb.err(&UpstreamError{Err: err})
		return
	}

	// Idempotent release of the response reader: both the normal exit path
	// and a racing cancellation may attempt it.
	var closeOnce sync.Once
	cleanup := func() {
		closeOnce.Do(func() {
			_ = httpResp.Body.Close()
		})
	}
	defer cleanup()

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(httpResp.Body)
		transportErr := newTransportError(httpResp.StatusCode, body)
		log.Debug("upstream returned error status",
			slog.Int("status", transportErr.StatusCode),
			slog.String("message", transportErr.Message),
		)
		cb.err(transportErr)
		return
	}

	c.consume(ctx, httpResp.Body, cb, opts, log)
}

// send builds and issues the streaming POST.
func (c *Client) send(ctx context.Context, messages []llm.Message, opts Options) (*http.Response, error) {
	reqData := completionRequest{
		Model:       opts.Model,
		Messages:    messages,
		Stream:      true,
		Temperature: opts.Temperature,
	}
	if opts.MaxTokens > 0 {
		reqData.MaxTokens = &opts.MaxTokens
	}

	body, err := json.Marshal(reqData)
	if err != nil {
		return nil, fmt.Errorf("encoding completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating completion request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	return c.httpClient.Do(httpReq)
}

// consume runs the streaming loop: SSE frames in, classified callbacks out.
func (c *Client) consume(ctx context.Context, body io.Reader, cb Callbacks, opts Options, log *slog.Logger) {
	var parserOpts []thinktag.Option
	if opts.StartInThinking {
		parserOpts = append(parserOpts, thinktag.WithStartInThinking())
	}
	parser := thinktag.New(parserOpts...)

	reader := sse.NewReader(body)
	startTime := time.Now()

	// Citations arrive repeatedly with the full list known so far; the last
	// full list wins and is flushed once at stream end.
	var pendingCitations []string

	finish := func() {
		if len(pendingCitations) > 0 {
			cb.citations(pendingCitations)
		}
		cb.done()
		log.Debug("stream complete",
			slog.Int("citations", len(pendingCitations)),
			slog.Duration("duration", time.Since(startTime)),
		)
	}

	for {
		ev, err := reader.Next()
		if err != nil {
			if isCancellation(ctx, err) {
				return
			}
			cb.err(&UpstreamError{Err: err})
			return
		}
		if ev == nil {
			// Body exhausted without a terminator: treat as a normal end.
			finish()
			return
		}

		if ev.Data == doneSentinel {
			// Anything still buffered behind the terminator is discarded.
			finish()
			return
		}

		var chunk completionChunk
		if err := json.Unmarshal([]byte(ev.Data), &chunk); err != nil {
			// One malformed frame never kills the stream.
			log.Debug("skipping malformed stream payload",
				slog.Any("error", err),
				slog.String("data", utils.Truncate(ev.Data, 256)),
			)
			continue
		}

		if len(chunk.Citations) > 0 {
			pendingCitations = chunk.Citations
		}

		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}

		for _, parsed := range parser.Parse(delta) {
			switch parsed.Kind {
			case thinktag.ThinkingStart:
				cb.thinkingStart()
			case thinktag.ThinkingContent:
				cb.thinkingContent(parsed.Text)
			case thinktag.ThinkingEnd:
				cb.thinkingEnd()
			case thinktag.Content:
				cb.content(parsed.Text)
			}
		}
	}
}
