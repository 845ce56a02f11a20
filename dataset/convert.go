package dataset

import "fmt"

// RequestRecord is the evaluation format consumed by request/response
// inference: the classifier prompt and the query joined into one request,
// with the expected answer kept as metadata
type RequestRecord struct {
	Content  RequestContent  `json:"content"`
	Metadata RequestMetadata `json:"metadata"`
}

type RequestContent struct {
	Request string `json:"request"`
}

type RequestMetadata struct {
	// Label is the assistant answer of the source row, empty when it had none
	Label string `json:"label"`
}

// SkippedRow is a row ToRequestFormat could not convert
type SkippedRow struct {
	Index  int
	Reason string
}

// ToRequestFormat converts chat rows into request records. The request is
// the system prompt and the user query separated by a blank line. Rows
// without a system or user message are skipped. When a role repeats, its
// last message wins.
func ToRequestFormat(convs []Conversation) ([]RequestRecord, []SkippedRow) {
	out := make([]RequestRecord, 0, len(convs))
	var skipped []SkippedRow

	for i := range convs {
		conv := &convs[i]
		system, ok := conv.Content(RoleSystem)
		if !ok {
			skipped = append(skipped, SkippedRow{Index: i, Reason: "missing system message"})
			continue
		}
		user, ok := conv.Content(RoleUser)
		if !ok {
			skipped = append(skipped, SkippedRow{Index: i, Reason: "missing user message"})
			continue
		}
		answer, _ := conv.Content(RoleAssistant)

		out = append(out, RequestRecord{
			Content:  RequestContent{Request: fmt.Sprintf("%s\n\n%s", system, user)},
			Metadata: RequestMetadata{Label: answer},
		})
	}

	return out, skipped
}
