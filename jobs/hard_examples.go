package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"curator/batch"
	"curator/dataset"
	"curator/extract"
	"curator/jobs/internal/prompts"
	"curator/llm"
)

// labelPair is two intents the classifier confuses
type labelPair struct {
	A prompts.Label
	B prompts.Label
}

type hardExample struct {
	Label int    `json:"label"`
	Query string `json:"query"`
}

type hardExampleReply struct {
	Examples []hardExample `json:"examples"`
}

// generateHardExamples asks the model for boundary queries for each
// configured label pair and turns them into classifier training rows.
func (r *Runner) generateHardExamples(ctx context.Context) (*Report, error) {
	systemPrompt, err := r.classifierPrompt()
	if err != nil {
		return nil, err
	}

	pairs := make([]labelPair, len(r.job.LabelPairs))
	for i, p := range r.job.LabelPairs {
		pairs[i] = labelPair{
			A: prompts.Label{ID: p[0], Name: extract.LabelName(p[0], systemPrompt)},
			B: prompts.Label{ID: p[1], Name: extract.LabelName(p[1], systemPrompt)},
		}
	}

	op := func(ctx context.Context, pair labelPair) ([]dataset.Conversation, error) {
		resp, err := r.chat(ctx,
			llm.NewTextMessage(llm.RoleSystem, prompts.HardExamplesSystem),
			llm.NewTextMessage(llm.RoleUser, prompts.HardExamplesRequest(pair.A, pair.B, r.job.ExamplesPerLabel)),
		)
		if err != nil {
			return nil, err
		}

		examples, err := parseHardExamples(resp.Content, pair)
		if err != nil {
			return nil, err
		}

		names := map[int]string{pair.A.ID: pair.A.Name, pair.B.ID: pair.B.Name}
		convs := make([]dataset.Conversation, len(examples))
		for i, ex := range examples {
			convs[i] = dataset.Conversation{
				Messages: []dataset.Message{
					{Role: dataset.RoleSystem, Content: systemPrompt},
					{Role: dataset.RoleUser, Content: ex.Query},
					{Role: dataset.RoleAssistant, Content: strconv.Itoa(ex.Label)},
				},
				Metadata: &dataset.Metadata{Label: ex.Label, LabelName: names[ex.Label]},
			}
		}
		return convs, nil
	}

	return execute(ctx, r, pairs, op, func(s batch.Success[[]dataset.Conversation]) []dataset.Conversation {
		return s.Value
	}, nil)
}

// parseHardExamples decodes the model's JSON reply. Markdown fences and
// surrounding prose are tolerated; every example must carry one of the
// pair's labels and both labels must be covered.
func parseHardExamples(reply string, pair labelPair) ([]hardExample, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("reply contains no JSON object")
	}

	var parsed hardExampleReply
	if err := json.Unmarshal([]byte(reply[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	if len(parsed.Examples) == 0 {
		return nil, fmt.Errorf("reply has no examples")
	}

	counts := map[int]int{}
	examples := make([]hardExample, 0, len(parsed.Examples))
	for i, ex := range parsed.Examples {
		if ex.Label != pair.A.ID && ex.Label != pair.B.ID {
			return nil, fmt.Errorf("example %d: label %d is not in pair (%d, %d)", i, ex.Label, pair.A.ID, pair.B.ID)
		}
		ex.Query = strings.TrimSpace(ex.Query)
		if ex.Query == "" {
			return nil, fmt.Errorf("example %d: empty query", i)
		}
		counts[ex.Label]++
		examples = append(examples, ex)
	}

	for _, id := range []int{pair.A.ID, pair.B.ID} {
		if counts[id] == 0 {
			return nil, fmt.Errorf("no examples for label %d", id)
		}
	}
	return examples, nil
}
