package stream

// Callbacks is the fixed callback set a Client drives while consuming one
// completion stream. Any callback may be nil; nil callbacks are skipped.
//
// Ordering guarantees: callbacks fire in exactly the order the network loop
// produced events. OnDone and OnError are terminal and mutually exclusive;
// at most one of them fires, exactly once, unless the request was cancelled,
// in which case neither fires.
type Callbacks struct {
	OnThinkingStart   func()
	OnThinkingContent func(text string)
	OnThinkingEnd     func()
	OnContent         func(text string)
	OnCitations       func(urls []string)
	OnDone            func()
	OnError           func(err error)
}

func (cb Callbacks) thinkingStart() {
	if cb.OnThinkingStart != nil {
		cb.OnThinkingStart()
	}
}

func (cb Callbacks) thinkingContent(text string) {
	if cb.OnThinkingContent != nil {
		cb.OnThinkingContent(text)
	}
}

func (cb Callbacks) thinkingEnd() {
	if cb.OnThinkingEnd != nil {
		cb.OnThinkingEnd()
	}
}

func (cb Callbacks) content(text string) {
	if cb.OnContent != nil {
		cb.OnContent(text)
	}
}

func (cb Callbacks) citations(urls []string) {
	if cb.OnCitations != nil {
		cb.OnCitations(urls)
	}
}

func (cb Callbacks) done() {
	if cb.OnDone != nil {
		cb.OnDone()
	}
}

func (cb Callbacks) err(err error) {
	if cb.OnError != nil {
		cb.OnError(err)
	}
}
