// Package extract pulls answers out of free-form model output.
package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	wordInteger     = regexp.MustCompile(`\b(\d+)\b`)
	thinkBlockEnd   = regexp.MustCompile(`(?i)</think>\s*\n+`)
	trailingInteger = regexp.MustCompile(`(\d+)\s*$`)

	conclusionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:therefore|thus|hence|so|answer|output|result|conclusion).*?(\d+)`),
		regexp.MustCompile(`(?i)(?:we output|the answer is|the result is|output|answer).*?(\d+)`),
	}
)

// FirstInteger returns the first standalone integer in text
func FirstInteger(text string) (int, error) {
	m := wordInteger.FindStringSubmatch(text)
	if m == nil {
		return 0, fmt.Errorf("no integer found in response: '%s...'", truncate(text, 50))
	}
	return strconv.Atoi(m[1])
}

// ThinkingLabel extracts the final answer from reasoning-model output. It
// tries, in order: the first integer after a </think> block, an integer
// following a concluding phrase, an integer ending the text, and the last
// integer anywhere.
func ThinkingLabel(text string) (int, error) {
	if loc := thinkBlockEnd.FindStringIndex(text); loc != nil {
		after := strings.TrimSpace(text[loc[1]:])
		if m := wordInteger.FindStringSubmatch(after); m != nil {
			return strconv.Atoi(m[1])
		}
	}

	for _, re := range conclusionPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strconv.Atoi(m[1])
		}
	}

	if m := trailingInteger.FindStringSubmatch(strings.TrimRight(text, " \t\r\n")); m != nil {
		return strconv.Atoi(m[1])
	}

	all := wordInteger.FindAllStringSubmatch(text, -1)
	if len(all) == 0 {
		return 0, fmt.Errorf("no integer found in response: '%s...'", truncate(text, 100))
	}
	return strconv.Atoi(all[len(all)-1][1])
}

// LabelName looks up "<id>: <name>" in a classifier system prompt
func LabelName(id int, systemPrompt string) string {
	re := regexp.MustCompile(`(?m)^\s*` + strconv.Itoa(id) + `:[ \t]*([^\n]+)`)
	if m := re.FindStringSubmatch(systemPrompt); m != nil {
		return strings.TrimSpace(m[1])
	}
	return fmt.Sprintf("Unknown_%d", id)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
