package dataset

import (
	"regexp"
	"strings"
)

// placeholderPatterns match LaTeX-conversion artifacts left in arXiv abstracts
var placeholderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)@xmath\d+`),
	regexp.MustCompile(`(?i)@xcite\d*`),
	regexp.MustCompile(`(?i)@x(?:ref|eq|fig|tab|sec)\d*`),
	regexp.MustCompile(`(?i)fig\.?\s*\[?\s*fig\s*:\s*\w+\s*\]?`),
	regexp.MustCompile(`(?i)tab\.?\s*\[?\s*tab\s*:\s*\w+\s*\]?`),
	regexp.MustCompile(`(?i)sec\.?\s*\[?\s*sec\s*:\s*\w+\s*\]?`),
	regexp.MustCompile(`(?i)\(eq\s*:\s*\w+\)`),
}

var (
	runOfSpace       = regexp.MustCompile(`\s+`)
	spaceBeforePunct = regexp.MustCompile(`\s+([.,;:!?])`)
	spaceAfterPunct  = regexp.MustCompile(`([.,;:!?])\s+`)
	doublePeriod     = regexp.MustCompile(`\.\s+\.`)
)

// CountPlaceholders returns how many placeholder matches text contains
func CountPlaceholders(text string) int {
	n := 0
	for _, re := range placeholderPatterns {
		n += len(re.FindAllStringIndex(text, -1))
	}
	return n
}

// CleanAbstract removes placeholders and tidies the whitespace they leave behind
func CleanAbstract(text string) string {
	cleaned := text
	for _, re := range placeholderPatterns {
		cleaned = re.ReplaceAllString(cleaned, "")
	}
	cleaned = runOfSpace.ReplaceAllString(cleaned, " ")
	cleaned = spaceBeforePunct.ReplaceAllString(cleaned, "$1")
	cleaned = spaceAfterPunct.ReplaceAllString(cleaned, "$1 ")
	cleaned = doublePeriod.ReplaceAllString(cleaned, ".")
	return strings.TrimSpace(cleaned)
}

// CleanStats summarizes a CleanConversations pass
type CleanStats struct {
	Total        int // conversations read
	Cleaned      int // assistant messages that contained placeholders
	Removed      int // placeholder matches removed
	SkippedEmpty int // conversations dropped because an abstract became empty
	Remaining    int // placeholder matches still present after cleaning
}

// CleanConversations cleans every assistant message. Conversations whose
// abstract is empty after cleaning are dropped. The input is not modified.
func CleanConversations(convs []Conversation) ([]Conversation, CleanStats) {
	var stats CleanStats
	out := make([]Conversation, 0, len(convs))

	for _, conv := range convs {
		stats.Total++

		msgs := make([]Message, len(conv.Messages))
		copy(msgs, conv.Messages)

		keep := true
		for i := range msgs {
			if msgs[i].Role != RoleAssistant {
				continue
			}
			found := CountPlaceholders(msgs[i].Content)
			if found == 0 {
				continue
			}
			cleaned := CleanAbstract(msgs[i].Content)
			if cleaned == "" {
				stats.SkippedEmpty++
				keep = false
				break
			}
			stats.Cleaned++
			stats.Removed += found
			stats.Remaining += CountPlaceholders(cleaned)
			msgs[i].Content = cleaned
		}

		if keep {
			conv.Messages = msgs
			out = append(out, conv)
		}
	}

	return out, stats
}
