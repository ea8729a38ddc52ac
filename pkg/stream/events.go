package stream

// eventKind discriminates the internal events flowing from the client's
// callback loop into the adapter's channel.
type eventKind int

const (
	eventThinkingStart eventKind = iota
	eventThinkingContent
	eventThinkingEnd
	eventContent
	eventCitations
	eventDone
	eventError
)

// event is the internal wire between Client callbacks and the Adapter's
// consumer loop. The adapter never reorders or drops these except by
// explicit cancellation.
type event struct {
	kind      eventKind
	text      string
	citations []string
	err       error
}

// channelCallbacks binds a callback set to an EventChannel so the client's
// push loop becomes the channel's single producer.
func channelCallbacks(ch *EventChannel[event]) Callbacks {
	return Callbacks{
		OnThinkingStart: func() {
			ch.Push(event{kind: eventThinkingStart})
		},
		OnThinkingContent: func(text string) {
			ch.Push(event{kind: eventThinkingContent, text: text})
		},
		OnThinkingEnd: func() {
			ch.Push(event{kind: eventThinkingEnd})
		},
		OnContent: func(text string) {
			ch.Push(event{kind: eventContent, text: text})
		},
		OnCitations: func(urls []string) {
			ch.Push(event{kind: eventCitations, citations: urls})
		},
		OnDone: func() {
			ch.Push(event{kind: eventDone})
		},
		OnError: func(err error) {
			ch.Push(event{kind: eventError, err: err})
		},
	}
}
