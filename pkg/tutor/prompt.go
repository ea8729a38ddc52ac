package tutor

import (
	"fmt"

	"github.com/hongxuelab/redtutor/pkg/llm"
)

const studySystemPrompt = `You are a patient reading tutor for Dream of the Red Chamber (红楼梦).
Answer questions about the novel's characters, plot, poetry, and historical context.
Ground answers in the text, cite sources where available, and keep explanations
accessible to a first-time reader.`

// StudyPromptBuilder is the default PromptBuilder. It prefixes the
// conversation with the tutor system prompt and optionally pins the student's
// current chapter so answers avoid spoilers.
type StudyPromptBuilder struct {
	// Chapter, when non-zero, tells the tutor the student has read up to
	// this chapter and must not reveal later plot.
	Chapter int
}

func (b *StudyPromptBuilder) Build(question string, history []llm.Message) []llm.Message {
	system := studySystemPrompt
	if b.Chapter > 0 {
		system = fmt.Sprintf("%s\nThe student has read through chapter %d. Do not reveal events from later chapters.", studySystemPrompt, b.Chapter)
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.NewSystemMessage(system))
	messages = append(messages, history...)
	messages = append(messages, llm.NewUserMessage(question))

	return messages
}
