// Package thinktag incrementally splits a streamed completion into reasoning
// and answer text. Reasoning models emit their chain of thought between
// <think> and </think> markers, and the stream chunks the provider sends can
// split a marker at any byte, so the parser carries partial-marker state
// between calls rather than scanning complete text.
package thinktag

import "strings"

const (
	openMarker  = "<think>"
	closeMarker = "</think>"
)

// EventKind classifies a parse event.
type EventKind int

const (
	// ThinkingStart marks an opening <think>. Carries no text.
	ThinkingStart EventKind = iota

	// ThinkingContent is reasoning text between the markers.
	ThinkingContent

	// ThinkingEnd marks a closing </think>. Carries no text.
	ThinkingEnd

	// Content is answer text outside any thinking block.
	Content
)

// Event is one parse result. Text is set only for the two content kinds.
type Event struct {
	Kind EventKind
	Text string
}

// Parser consumes stream chunks and emits classified events. Text that could
// still be the beginning of a marker stays buffered until the next chunk
// resolves it one way or the other, so no partial marker ever leaks into an
// event and no text is emitted twice.
//
// A Parser is not safe for concurrent use; each stream gets its own.
type Parser struct {
	startInside bool
	inside      bool

	// buf holds consumed-but-unemitted text. Its tail of length matched is
	// always exactly marker[:matched] for the marker currently sought.
	buf     strings.Builder
	matched int
}

// Option configures a Parser.
type Option func(*Parser)

// WithStartInThinking makes the parser treat the stream as already inside a
// thinking block, for models that omit the opening <think> marker and emit
// only the closing one.
func WithStartInThinking() Option {
	return func(p *Parser) {
		p.startInside = true
	}
}

// New creates a Parser in content mode unless configured otherwise.
func New(opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	p.inside = p.startInside
	return p
}

// Reset returns the parser to its configured starting state, discarding any
// buffered partial marker. The start-in-thinking policy is retained.
func (p *Parser) Reset() {
	p.inside = p.startInside
	p.buf.Reset()
	p.matched = 0
}

// Parse consumes one chunk and returns the events it resolves. Marker bytes
// split across chunks produce identical events to the unsplit stream; only a
// trailing prefix of the pending marker is withheld until later input.
func (p *Parser) Parse(text string) []Event {
	var events []Event

	for i := 0; i < len(text); i++ {
		c := text[i]
		p.buf.WriteByte(c)

		marker := p.marker()
		p.matched = nextMatch(marker, p.matched, c)

		if p.matched < len(marker) {
			continue
		}

		// Full marker: emit what preceded it, then the transition.
		buffered := p.buf.String()
		if pre := buffered[:len(buffered)-len(marker)]; pre != "" {
			events = append(events, Event{Kind: p.textKind(), Text: pre})
		}
		if p.inside {
			events = append(events, Event{Kind: ThinkingEnd})
		} else {
			events = append(events, Event{Kind: ThinkingStart})
		}
		p.inside = !p.inside
		p.buf.Reset()
		p.matched = 0
	}

	// Emit everything that can no longer begin a marker; the matched tail is
	// exactly the marker prefix that must wait for more input.
	buffered := p.buf.String()
	if safe := buffered[:len(buffered)-p.matched]; safe != "" {
		events = append(events, Event{Kind: p.textKind(), Text: safe})
		p.buf.Reset()
		p.buf.WriteString(buffered[len(buffered)-p.matched:])
	}

	return events
}

func (p *Parser) marker() string {
	if p.inside {
		return closeMarker
	}
	return openMarker
}

func (p *Parser) textKind() EventKind {
	if p.inside {
		return ThinkingContent
	}
	return Content
}

// nextMatch advances the marker automaton by one byte: given that the last
// matched bytes equal marker[:matched], it returns the length of the longest
// marker prefix that is a suffix of the input after appending c.
func nextMatch(marker string, matched int, c byte) int {
	for matched > 0 && marker[matched] != c {
		matched = fallback(marker, matched)
	}
	if marker[matched] == c {
		return matched + 1
	}
	return 0
}

// fallback returns the length of the longest proper prefix of marker[:matched]
// that is also its suffix. The markers are a handful of bytes, so the naive
// scan beats carrying a prefix table.
func fallback(marker string, matched int) int {
	for k := matched - 1; k > 0; k-- {
		if marker[:k] == marker[matched-k:matched] {
			return k
		}
	}
	return 0
}
