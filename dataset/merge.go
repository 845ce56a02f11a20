package dataset

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var bareInteger = regexp.MustCompile(`^\s*\d+\s*$`)

// ValidLabel returns the label when content is only an integer in [0, maxLabel]
func ValidLabel(content string, maxLabel int) (int, bool) {
	if !bareInteger.MatchString(content) {
		return 0, false
	}
	label, err := strconv.Atoi(strings.TrimSpace(content))
	if err != nil || label < 0 || label > maxLabel {
		return 0, false
	}
	return label, true
}

// HasValidAnswer reports whether the last assistant message is a valid label
func (c *Conversation) HasValidAnswer(maxLabel int) bool {
	answer, ok := c.Content(RoleAssistant)
	if !ok {
		return false
	}
	_, ok = ValidLabel(answer, maxLabel)
	return ok
}

// TrainingRow is either a chat-format conversation or an evaluation-format
// {request, response} record.
type TrainingRow struct {
	Messages []Message `json:"messages,omitempty"`
	Metadata *Metadata `json:"metadata,omitempty"`
	Request  string    `json:"request,omitempty"`
	Response string    `json:"response,omitempty"`
}

// MergeStats summarizes a MergeTraining pass
type MergeStats struct {
	Train         int
	TrainFiltered int
	Extra         int
	ExtraWritten  int
	ExtraFiltered int
	Converted     int
	Skipped       int
}

// MergeTraining appends extra rows to a training set. Conversations missing a
// system message get systemPrompt prepended; {request, response} rows are
// converted to conversations. Rows without a valid label answer are dropped.
func MergeTraining(train []Conversation, extra []TrainingRow, systemPrompt string, maxLabel int) ([]Conversation, MergeStats) {
	var stats MergeStats
	out := make([]Conversation, 0, len(train)+len(extra))

	for _, conv := range train {
		if conv.HasValidAnswer(maxLabel) {
			out = append(out, conv)
			stats.Train++
		} else {
			stats.TrainFiltered++
		}
	}

	for _, row := range extra {
		stats.Extra++

		var conv Conversation
		if len(row.Messages) > 0 {
			conv = Conversation{Messages: row.Messages, Metadata: row.Metadata}
			if _, ok := conv.Content(RoleSystem); !ok {
				conv.Messages = append([]Message{{Role: RoleSystem, Content: systemPrompt}}, conv.Messages...)
				stats.Converted++
			}
		} else {
			label, ok := ValidLabel(row.Response, maxLabel)
			if !ok {
				stats.Skipped++
				continue
			}
			conv = Conversation{
				Messages: []Message{
					{Role: RoleSystem, Content: systemPrompt},
					{Role: RoleUser, Content: row.Request},
					{Role: RoleAssistant, Content: strconv.Itoa(label)},
				},
				Metadata: &Metadata{Label: label, LabelName: fmt.Sprintf("label_%d", label)},
			}
			stats.Converted++
		}

		if !conv.HasValidAnswer(maxLabel) {
			stats.ExtraFiltered++
			continue
		}
		out = append(out, conv)
		stats.ExtraWritten++
	}

	return out, stats
}
