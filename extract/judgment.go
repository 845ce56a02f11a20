package extract

import (
	"regexp"
	"strings"
)

const (
	JudgmentYes     = "Yes"
	JudgmentNo      = "No"
	JudgmentUnknown = "Unknown"
)

// judgmentSearchWindow is how much of a reply is scanned for a verdict
const judgmentSearchWindow = 200

var (
	judgmentMarker = regexp.MustCompile(`(?i)judge?ment:\s*(yes|no)`)
	yesWord        = regexp.MustCompile(`\byes\b`)
	noWord         = regexp.MustCompile(`\bno\b`)

	yesPhrases = []string{
		"meets the minimum quality standards",
		"meets the basic requirements",
		"satisfies the criteria",
		"is of good quality",
	}
	noPhrases = []string{
		"does not meet",
		"fails to meet",
		"violates the core criteria",
		"has significant flaws",
	}
)

// ParseJudgment reads a Yes/No verdict from a judge reply. When the first
// line is the verdict, the explanation is the rest of the reply; otherwise
// it is the whole reply.
func ParseJudgment(reply string) (judgment, explanation string) {
	reply = strings.TrimSpace(reply)
	explanation = reply

	first, rest, hasRest := strings.Cut(reply, "\n")
	switch strings.ToUpper(strings.TrimSpace(first)) {
	case "YES":
		if hasRest {
			explanation = strings.TrimSpace(rest)
		}
		return JudgmentYes, explanation
	case "NO":
		if hasRest {
			explanation = strings.TrimSpace(rest)
		}
		return JudgmentNo, explanation
	}

	search := strings.ToLower(truncate(reply, judgmentSearchWindow))
	yesIdx := firstIndex(yesWord, search)
	noIdx := firstIndex(noWord, search)

	switch {
	case strings.Contains(search, "judgment:") || strings.Contains(search, "judgement:"):
		if m := judgmentMarker.FindStringSubmatch(search); m != nil {
			if m[1] == "yes" {
				return JudgmentYes, explanation
			}
			return JudgmentNo, explanation
		}
		return JudgmentUnknown, explanation
	case yesIdx >= 0 && (noIdx < 0 || noIdx > yesIdx+10):
		return JudgmentYes, explanation
	case noIdx >= 0 && (yesIdx < 0 || yesIdx > noIdx+10):
		return JudgmentNo, explanation
	}

	lower := strings.ToLower(reply)
	for _, p := range yesPhrases {
		if strings.Contains(lower, p) {
			return JudgmentYes, explanation
		}
	}
	for _, p := range noPhrases {
		if strings.Contains(lower, p) {
			return JudgmentNo, explanation
		}
	}
	return JudgmentUnknown, explanation
}

func firstIndex(re *regexp.Regexp, s string) int {
	if loc := re.FindStringIndex(s); loc != nil {
		return loc[0]
	}
	return -1
}
