package gmail

import "strings"

// promotionalKeywords mark a message as promotional or automated when any of
// them appears in the sender, subject or body. This is a deliberately
// conservative substring heuristic, not a scored classifier; false positives
// on genuine action items that mention a keyword are an accepted tradeoff.
var promotionalKeywords = []string{
	"unsubscribe",
	"newsletter",
	"promotion",
	"sale",
	"discount",
	"offer",
	"deal",
	"no-reply",
	"noreply",
	"automated",
}

// IsPromotional reports whether a message should be excluded from task
// extraction. The match is case-insensitive over the concatenation of the
// From header, the Subject header and the decoded body.
func IsPromotional(from, subject, body string) bool {
	haystack := strings.ToLower(from + " " + subject + " " + body)
	for _, keyword := range promotionalKeywords {
		if strings.Contains(haystack, keyword) {
			return true
		}
	}
	return false
}

// Eligible reports whether a message may be forwarded to the task extractor.
func Eligible(m Message) bool {
	return !IsPromotional(m.From, m.Subject, m.Body)
}
