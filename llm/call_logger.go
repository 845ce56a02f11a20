package llm

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"
)

const contentPreviewMaxLen = 200

// CallLogger wraps a Provider and writes one JSONL line per call.
type CallLogger struct {
	next Provider

	mu        sync.Mutex
	file      *os.File
	callCount int
}

// NewCallLogger creates a call logger that writes to the given file path.
func NewCallLogger(next Provider, filename string) (*CallLogger, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	return &CallLogger{next: next, file: f}, nil
}

// Close closes the underlying file.
func (cl *CallLogger) Close() error {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	if cl.file == nil {
		return nil
	}
	err := cl.file.Close()
	cl.file = nil
	return err
}

// callSnapshot is the envelope written per call.
type callSnapshot struct {
	Call         int               `json:"call"`
	Timestamp    string            `json:"timestamp"`
	DurationMS   int64             `json:"duration_ms"`
	Model        string            `json:"model"`
	Temperature  float64           `json:"temperature,omitempty"`
	Messages     []messageSnapshot `json:"messages"`
	Response     string            `json:"response_preview,omitempty"`
	ResponseLen  int               `json:"response_length"`
	InputTokens  int               `json:"input_tokens,omitempty"`
	OutputTokens int               `json:"output_tokens,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// messageSnapshot captures one message without the full payload.
type messageSnapshot struct {
	Role           string `json:"role"`
	ContentPreview string `json:"content_preview,omitempty"`
	ContentLength  int    `json:"content_length"`
}

func (cl *CallLogger) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	start := time.Now()
	resp, err := cl.next.Chat(ctx, req)

	snap := callSnapshot{
		Timestamp:   start.Format(time.RFC3339Nano),
		DurationMS:  time.Since(start).Milliseconds(),
		Model:       req.Model,
		Temperature: req.Temperature,
		Messages:    make([]messageSnapshot, len(req.Messages)),
	}
	for i, msg := range req.Messages {
		snap.Messages[i] = messageSnapshot{
			Role:           string(msg.Role),
			ContentPreview: preview(msg.Content),
			ContentLength:  len(msg.Content),
		}
	}
	if err != nil {
		snap.Error = err.Error()
	} else {
		snap.Response = preview(resp.Content)
		snap.ResponseLen = len(resp.Content)
		snap.InputTokens = resp.Usage.InputTokens
		snap.OutputTokens = resp.Usage.OutputTokens
	}

	cl.write(snap)
	return resp, err
}

func (cl *CallLogger) write(snap callSnapshot) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	if cl.file == nil {
		return
	}
	cl.callCount++
	snap.Call = cl.callCount

	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	cl.file.Write(append(data, '\n'))
}

func preview(text string) string {
	r := []rune(text)
	if len(r) > contentPreviewMaxLen {
		return string(r[:contentPreviewMaxLen]) + "..."
	}
	return text
}
