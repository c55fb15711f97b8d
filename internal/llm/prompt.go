package llm

import (
	"encoding/json"
	"strings"

	"github.com/ashureev/campusguide/internal/domain"
)

const assistantIdentity = "You are CampusGuide AI for The New College."

const replyInstructions = `Instructions:
- Answer briefly and clearly
- Use college data for facts
- Keep responses under 150 words
- Use emojis sparingly
`

// BuildPrompt assembles the grounding excerpt, recent turns and the student's
// message into a single prompt.
func BuildPrompt(collegeData string, history []domain.Turn, message string) string {
	if history == nil {
		history = []domain.Turn{}
	}
	recent, err := json.Marshal(history)
	if err != nil {
		// Turns are plain strings; this cannot fail in practice.
		recent = []byte("[]")
	}

	var b strings.Builder
	b.WriteString(assistantIdentity)
	b.WriteString("\n\nCollege Data:\n")
	b.WriteString(collegeData)
	b.WriteString("\n\nRecent Chat:\n")
	b.Write(recent)
	b.WriteString("\n\nUser: ")
	b.WriteString(message)
	b.WriteString("\n\n")
	b.WriteString(replyInstructions)
	return b.String()
}
