// Package tutor defines the collaborator surfaces the streaming transport is
// consumed through: prompt construction, chapter lookup, reading progress, and
// question moderation.
package tutor

import (
	"context"

	"github.com/hongxuelab/redtutor/pkg/llm"
)

// PromptBuilder assembles the message history sent upstream for a student
// question.
type PromptBuilder interface {
	Build(question string, history []llm.Message) []llm.Message
}

// ChapterRepository resolves chapter text and metadata for grounding answers.
type ChapterRepository interface {
	Chapter(ctx context.Context, number int) (*Chapter, error)
}

// ProgressLedger records how far a student has read so answers can avoid
// spoiling later chapters.
type ProgressLedger interface {
	Current(ctx context.Context, studentID string) (int, error)
	Advance(ctx context.Context, studentID string, chapter int) error
}

// Moderator screens student questions before they are sent upstream.
type Moderator interface {
	Review(ctx context.Context, question string) error
}

// Chapter is a single chapter of the novel with its display metadata.
type Chapter struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Text   string `json:"text"`
}
