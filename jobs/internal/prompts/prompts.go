package prompts

import (
	_ "embed"
	"strconv"
	"strings"
)

//go:embed judge_system.md
var JudgeSystem string

//go:embed judge_request.md
var judgeRequestTemplate string

//go:embed explain_system.md
var ExplainSystem string

//go:embed explain_request.md
var explainRequestTemplate string

//go:embed hard_examples_system.md
var HardExamplesSystem string

//go:embed hard_examples_request.md
var hardExamplesRequestTemplate string

// Banking77System is the classifier system prompt listing all 77 intents
//
//go:embed banking77_system.md
var Banking77System string

// JudgeRequest formats the summary judging prompt.
// Placeholders are replaced in one pass so user content is never re-expanded.
func JudgeRequest(request, response string) string {
	return strings.NewReplacer(
		"{{REQUEST}}", request,
		"{{RESPONSE}}", response,
	).Replace(judgeRequestTemplate)
}

// Label is an intent ID with its name
type Label struct {
	ID   int
	Name string
}

// ExplainRequest formats the misclassification explanation prompt
func ExplainRequest(userQuery string, truth, predicted Label, systemPrompt string) string {
	return strings.NewReplacer(
		"{{USER_QUERY}}", userQuery,
		"{{TRUTH_ID}}", strconv.Itoa(truth.ID),
		"{{TRUTH_NAME}}", truth.Name,
		"{{PREDICTED_ID}}", strconv.Itoa(predicted.ID),
		"{{PREDICTED_NAME}}", predicted.Name,
		"{{SYSTEM_PROMPT}}", systemPrompt,
	).Replace(explainRequestTemplate)
}

// HardExamplesRequest formats the prompt asking for count queries per label
func HardExamplesRequest(a, b Label, count int) string {
	return strings.NewReplacer(
		"{{COUNT}}", strconv.Itoa(count),
		"{{LABEL_A_ID}}", strconv.Itoa(a.ID),
		"{{LABEL_A_NAME}}", a.Name,
		"{{LABEL_B_ID}}", strconv.Itoa(b.ID),
		"{{LABEL_B_NAME}}", b.Name,
	).Replace(hardExamplesRequestTemplate)
}
