package tasks

import (
	"strings"
	"time"

	"github.com/teemow/inboxtasks/internal/gmail"
)

// extractionInstructions is the fixed contract for the language model. The
// reply must be a single JSON object; {"no_task": true} marks messages with
// no actionable item.
const extractionInstructions = `You are a task extraction assistant. Read the email below and decide whether it contains an actionable item for the recipient.

Respond with a single JSON object and nothing else.

If there is an actionable item:
{"description": "<what needs to be done>", "priority": "high|medium|low", "due_date": "YYYY-MM-DD or empty", "context": "<one short note with useful context, or empty>"}

If there is no actionable item:
{"no_task": true}`

// BuildExtractionPrompt formats a message for the extraction contract.
func BuildExtractionPrompt(m gmail.Message) string {
	var b strings.Builder

	b.WriteString(extractionInstructions)
	b.WriteString("\n\n")

	b.WriteString("Subject: ")
	b.WriteString(m.Subject)
	b.WriteString("\n")

	b.WriteString("From: ")
	b.WriteString(m.From)
	b.WriteString("\n")

	b.WriteString("Date: ")
	if !m.Date.IsZero() {
		b.WriteString(m.Date.Format(time.RFC1123Z))
	}
	b.WriteString("\n\n")

	b.WriteString("Body:\n")
	b.WriteString(m.Body)

	return b.String()
}
