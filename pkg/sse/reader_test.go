package sse

import (
	"io"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// chunkedReader returns at most n bytes per Read call, simulating a network
// stream that fragments frames at arbitrary byte boundaries.
type chunkedReader struct {
	data []byte
	n    int
}

func (c *chunkedReader) Read(p []byte) (int, error) {
	if len(c.data) == 0 {
		return 0, io.EOF
	}
	n := c.n
	if n > len(c.data) {
		n = len(c.data)
	}
	if n > len(p) {
		n = len(p)
	}
	copy(p, c.data[:n])
	c.data = c.data[n:]
	return n, nil
}

var _ = Describe("Reader", func() {
	Describe("Next", func() {
		Context("with standard SSE events", func() {
			It("parses a single event", func() {
				r := NewReader(strings.NewReader("data: hello world\n\n"))

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Data).To(Equal("hello world"))
				Expect(ev.Type).To(BeEmpty())
				Expect(ev.ID).To(BeEmpty())

				ev, err = r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev).To(BeNil())
			})

			It("parses multiple events", func() {
				r := NewReader(strings.NewReader("data: first\n\ndata: second\n\n"))

				ev1, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev1.Data).To(Equal("first"))

				ev2, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev2.Data).To(Equal("second"))

				ev3, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev3).To(BeNil())
			})

			It("parses event type and ID", func() {
				r := NewReader(strings.NewReader("event: delta\nid: 42\ndata: {\"x\":1}\n\n"))

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Type).To(Equal("delta"))
				Expect(ev.ID).To(Equal("42"))
				Expect(ev.Data).To(Equal("{\"x\":1}"))
			})

			It("joins multiple data lines with newline", func() {
				r := NewReader(strings.NewReader("data: line one\ndata: line two\n\n"))

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Data).To(Equal("line one\nline two"))
			})

			It("skips comment lines", func() {
				r := NewReader(strings.NewReader(": keep-alive\ndata: payload\n\n"))

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Data).To(Equal("payload"))
			})

			It("skips leading blank lines", func() {
				r := NewReader(strings.NewReader("\n\ndata: after blanks\n\n"))

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Data).To(Equal("after blanks"))
			})

			It("handles a field value without a space after the colon", func() {
				r := NewReader(strings.NewReader("data:tight\n\n"))

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Data).To(Equal("tight"))
			})
		})

		Context("with completion-style SSE", func() {
			It("parses streaming chunks and the [DONE] sentinel", func() {
				input := "data: {\"choices\":[{\"delta\":{\"content\":\"Hello\"}}]}\n\n" +
					"data: {\"choices\":[{\"delta\":{\"content\":\" world\"}}]}\n\n" +
					"data: [DONE]\n\n"
				r := NewReader(strings.NewReader(input))

				ev1, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev1.Data).To(Equal("{\"choices\":[{\"delta\":{\"content\":\"Hello\"}}]}"))

				ev2, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev2.Data).To(Equal("{\"choices\":[{\"delta\":{\"content\":\" world\"}}]}"))

				ev3, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev3.Data).To(Equal("[DONE]"))
			})
		})

		Context("with fragmented reads", func() {
			It("reassembles frames split at arbitrary byte boundaries", func() {
				input := "data: {\"choices\":[{\"delta\":{\"content\":\"黛玉葬花\"}}]}\n\ndata: [DONE]\n\n"

				for _, n := range []int{1, 2, 3, 5, 7} {
					r := NewReader(&chunkedReader{data: []byte(input), n: n})

					ev, err := r.Next()
					Expect(err).NotTo(HaveOccurred())
					Expect(ev.Data).To(Equal("{\"choices\":[{\"delta\":{\"content\":\"黛玉葬花\"}}]}"))

					ev, err = r.Next()
					Expect(err).NotTo(HaveOccurred())
					Expect(ev.Data).To(Equal("[DONE]"))
				}
			})
		})

		Context("when the stream ends without a trailing blank line", func() {
			It("flushes the in-progress event", func() {
				r := NewReader(strings.NewReader("data: truncated"))

				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev.Data).To(Equal("truncated"))

				ev, err = r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev).To(BeNil())
			})
		})
	})
})
