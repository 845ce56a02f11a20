// Package dataset reads and writes the JSON-Lines records curation jobs consume and produce.
package dataset

import "fmt"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Metadata carries the Banking77 ground truth of a conversation
type Metadata struct {
	Label     int    `json:"label"`
	LabelName string `json:"label_name,omitempty"`
}

// Conversation is one chat-format training or inference row
type Conversation struct {
	Messages []Message `json:"messages"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

// Content returns the content of the last message with the given role
func (c *Conversation) Content(role string) (string, bool) {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == role {
			return c.Messages[i].Content, true
		}
	}
	return "", false
}

// LastMessage returns the final message of the conversation
func (c *Conversation) LastMessage() (Message, error) {
	if len(c.Messages) == 0 {
		return Message{}, fmt.Errorf("conversation has no messages")
	}
	return c.Messages[len(c.Messages)-1], nil
}

// Label returns the ground-truth label
func (c *Conversation) Label() (int, error) {
	if c.Metadata == nil {
		return 0, fmt.Errorf("conversation has no metadata")
	}
	return c.Metadata.Label, nil
}

// EvaluationRecord is the request/response/judgment shape used for
// misclassification explanations
type EvaluationRecord struct {
	Request     string `json:"request"`
	Response    string `json:"response"`
	Judgment    bool   `json:"judgment"`
	Explanation string `json:"explanation"`
}

// JudgmentRecord is the verdict for one judged summary
type JudgmentRecord struct {
	Index       int    `json:"index"`
	Judgment    string `json:"judgment"`
	Explanation string `json:"explanation"`
	Prompt      string `json:"prompt,omitempty"`
}

// FailureRecord is one failed batch item
type FailureRecord struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}
