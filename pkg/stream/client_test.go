package stream_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hongxuelab/redtutor/pkg/llm"
	"github.com/hongxuelab/redtutor/pkg/logger"
	"github.com/hongxuelab/redtutor/pkg/stream"
)

// callLog records callback invocations in order for assertion.
type callLog struct {
	mu    sync.Mutex
	calls []string
	errs  []error
}

func (l *callLog) add(call string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

func (l *callLog) addErr(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, "error")
	l.errs = append(l.errs, err)
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

func (l *callLog) callbacks() stream.Callbacks {
	return stream.Callbacks{
		OnThinkingStart:   func() { l.add("thinking-start") },
		OnThinkingContent: func(text string) { l.add("thinking: " + text) },
		OnThinkingEnd:     func() { l.add("thinking-end") },
		OnContent:         func(text string) { l.add("content: " + text) },
		OnCitations:       func(urls []string) { l.add(fmt.Sprintf("citations: %v", urls)) },
		OnDone:            func() { l.add("done") },
		OnError:           l.addErr,
	}
}

// contentEvent formats an SSE frame carrying one content delta.
func contentEvent(delta string) string {
	return fmt.Sprintf("data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", delta)
}

// sseUpstream serves the given frames as a text/event-stream response.
func sseUpstream(frames ...string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, ok := w.(http.Flusher)
		Expect(ok).To(BeTrue())

		for _, frame := range frames {
			fmt.Fprint(w, frame)
			flusher.Flush()
		}
	}))
}

func newTestClient(upstreamURL string) *stream.Client {
	return stream.NewClient(stream.Config{
		BaseURL: upstreamURL,
		APIKey:  "test-key",
		Logger:  logger.Nop(),
	})
}

var questionMessages = []llm.Message{
	llm.NewUserMessage("黛玉葬花的意義是什麼？"),
}

var _ = Describe("Client", func() {
	var (
		upstream *httptest.Server
		log      *callLog
	)

	BeforeEach(func() {
		log = &callLog{}
	})

	AfterEach(func() {
		if upstream != nil {
			upstream.Close()
			upstream = nil
		}
	})

	Context("with a plain content stream", func() {
		It("delivers deltas in order and terminates on [DONE]", func() {
			upstream = sseUpstream(
				contentEvent("A"),
				contentEvent("B"),
				"data: [DONE]\n\n",
			)

			c := newTestClient(upstream.URL)
			c.Run(context.Background(), questionMessages, log.callbacks(), stream.Options{Model: "sonar-reasoning-pro"})

			Expect(log.snapshot()).To(Equal([]string{
				"content: A",
				"content: B",
				"done",
			}))
		})

		It("treats body end without a terminator as a normal end", func() {
			upstream = sseUpstream(contentEvent("only"))

			c := newTestClient(upstream.URL)
			c.Run(context.Background(), questionMessages, log.callbacks(), stream.Options{})

			Expect(log.snapshot()).To(Equal([]string{
				"content: only",
				"done",
			}))
		})

		It("skips malformed payloads without terminating the stream", func() {
			upstream = sseUpstream(
				contentEvent("before"),
				"data: {not json\n\n",
				contentEvent("after"),
				"data: [DONE]\n\n",
			)

			c := newTestClient(upstream.URL)
			c.Run(context.Background(), questionMessages, log.callbacks(), stream.Options{})

			Expect(log.snapshot()).To(Equal([]string{
				"content: before",
				"content: after",
				"done",
			}))
		})
	})

	Context("with embedded thinking markers", func() {
		It("classifies reasoning and answer even when a marker splits across frames", func() {
			upstream = sseUpstream(
				contentEvent("<thi"),
				contentEvent("nk>hello</think>world"),
				"data: [DONE]\n\n",
			)

			c := newTestClient(upstream.URL)
			c.Run(context.Background(), questionMessages, log.callbacks(), stream.Options{})

			Expect(log.snapshot()).To(Equal([]string{
				"thinking-start",
				"thinking: hello",
				"thinking-end",
				"content: world",
				"done",
			}))
		})

		It("honors the start-in-thinking option", func() {
			upstream = sseUpstream(
				contentEvent("reasoning</think>answer"),
				"data: [DONE]\n\n",
			)

			c := newTestClient(upstream.URL)
			c.Run(context.Background(), questionMessages, log.callbacks(), stream.Options{StartInThinking: true})

			Expect(log.snapshot()).To(Equal([]string{
				"thinking: reasoning",
				"thinking-end",
				"content: answer",
				"done",
			}))
		})
	})

	Context("with citations", func() {
		It("flushes the last full citation list once, before done", func() {
			upstream = sseUpstream(
				"data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}],\"citations\":[\"https://one\"]}\n\n",
				"data: {\"choices\":[{\"delta\":{\"content\":\"b\"}}],\"citations\":[\"https://one\",\"https://two\"]}\n\n",
				"data: [DONE]\n\n",
			)

			c := newTestClient(upstream.URL)
			c.Run(context.Background(), questionMessages, log.callbacks(), stream.Options{})

			Expect(log.snapshot()).To(Equal([]string{
				"content: a",
				"content: b",
				"citations: [https://one https://two]",
				"done",
			}))
		})

		It("does not flush when no citation list ever arrived", func() {
			upstream = sseUpstream(contentEvent("x"), "data: [DONE]\n\n")

			c := newTestClient(upstream.URL)
			c.Run(context.Background(), questionMessages, log.callbacks(), stream.Options{})

			Expect(log.snapshot()).NotTo(ContainElement(HavePrefix("citations")))
		})
	})

	Context("when the upstream rejects the request", func() {
		It("invokes OnError exactly once with status and message", func() {
			upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"error":{"message":"bad key"}}`)
			}))

			c := newTestClient(upstream.URL)
			c.Run(context.Background(), questionMessages, log.callbacks(), stream.Options{})

			Expect(log.snapshot()).To(Equal([]string{"error"}))

			var transportErr *stream.TransportError
			Expect(log.errs[0]).To(BeAssignableToTypeOf(transportErr))
			transportErr = log.errs[0].(*stream.TransportError)
			Expect(transportErr.StatusCode).To(Equal(http.StatusUnauthorized))
			Expect(transportErr.Message).To(Equal("bad key"))
		})

		It("falls back to the status text for an empty error body", func() {
			upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			}))

			c := newTestClient(upstream.URL)
			c.Run(context.Background(), questionMessages, log.callbacks(), stream.Options{})

			Expect(log.snapshot()).To(Equal([]string{"error"}))
			transportErr := log.errs[0].(*stream.TransportError)
			Expect(transportErr.Message).To(Equal(http.StatusText(http.StatusServiceUnavailable)))
		})
	})

	Context("with cancellation", func() {
		It("invokes no callback when the context is cancelled up front", func() {
			requested := false
			upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				requested = true
			}))

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			c := newTestClient(upstream.URL)
			c.Run(ctx, questionMessages, log.callbacks(), stream.Options{})

			Expect(log.snapshot()).To(BeEmpty())
			Expect(requested).To(BeFalse())
		})

		It("terminates silently when cancelled mid-stream", func() {
			firstDelta := make(chan struct{})
			upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/event-stream")
				flusher := w.(http.Flusher)

				fmt.Fprint(w, contentEvent("partial"))
				flusher.Flush()

				// Hold the stream open until the client aborts.
				<-r.Context().Done()
			}))

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			cb := log.callbacks()
			cb.OnContent = func(text string) {
				log.add("content: " + text)
				close(firstDelta)
			}

			done := make(chan struct{})
			c := newTestClient(upstream.URL)
			go func() {
				defer close(done)
				c.Run(ctx, questionMessages, cb, stream.Options{})
			}()

			Eventually(firstDelta).Should(BeClosed())
			cancel()
			Eventually(done).Should(BeClosed())

			Expect(log.snapshot()).To(Equal([]string{"content: partial"}))
		})
	})

	Context("when the upstream is unreachable", func() {
		It("surfaces a single upstream error", func() {
			c := newTestClient("http://127.0.0.1:1")
			c.Run(context.Background(), questionMessages, log.callbacks(), stream.Options{})

			Expect(log.snapshot()).To(Equal([]string{"error"}))

			var upstreamErr *stream.UpstreamError
			Expect(log.errs[0]).To(BeAssignableToTypeOf(upstreamErr))
		})
	})
})
