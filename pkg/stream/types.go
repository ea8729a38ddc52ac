package stream

import "github.com/hongxuelab/redtutor/pkg/llm"

// completionRequest is the wire shape of one streaming completion request.
type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	Stream      bool          `json:"stream"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
}

// completionChunk is the wire shape of one streamed SSE data payload.
// Citations, when present, carry the full list known so far; a later list
// replaces an earlier one wholesale.
type completionChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Citations []string `json:"citations,omitempty"`
}
