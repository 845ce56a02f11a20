package jobs

import (
	"context"
	"strings"

	"curator/batch"
	"curator/dataset"
	"curator/extract"
	"curator/jobs/internal/prompts"
	"curator/llm"
)

// explainMisclassifications scores the inference file and asks the model
// why each incorrect prediction went wrong.
func (r *Runner) explainMisclassifications(ctx context.Context) (*Report, error) {
	rows, err := r.readConversations()
	if err != nil {
		return nil, err
	}
	fallbackPrompt, err := r.classifierPrompt()
	if err != nil {
		return nil, err
	}

	strategy := extract.FirstInteger
	if r.job.Thinking {
		strategy = extract.ThinkingLabel
	}
	acc := extract.MeasureAccuracy(rows, strategy)
	r.logger.Info("measured accuracy",
		"accuracy", acc.Accuracy,
		"correct", acc.Correct,
		"total", acc.Total,
		"incorrect", len(acc.Incorrect),
		"unscored", len(acc.Errors))
	for _, e := range acc.Errors {
		r.logger.Debug("row not scored", "index", e.Index, "reason", e.Reason)
	}

	op := func(ctx context.Context, m extract.Misclassification) (dataset.EvaluationRecord, error) {
		row := &rows[m.Index]

		query, ok := row.Content(dataset.RoleUser)
		if !ok {
			return dataset.EvaluationRecord{}, errNoUserMessage
		}
		systemPrompt, ok := row.Content(dataset.RoleSystem)
		if !ok {
			systemPrompt = fallbackPrompt
		}
		last, err := row.LastMessage()
		if err != nil {
			return dataset.EvaluationRecord{}, err
		}

		truthName := ""
		if row.Metadata != nil {
			truthName = row.Metadata.LabelName
		}
		if truthName == "" {
			truthName = extract.LabelName(m.Truth, systemPrompt)
		}

		prompt := prompts.ExplainRequest(query,
			prompts.Label{ID: m.Truth, Name: truthName},
			prompts.Label{ID: m.Predicted, Name: extract.LabelName(m.Predicted, systemPrompt)},
			systemPrompt,
		)
		resp, err := r.chat(ctx,
			llm.NewTextMessage(llm.RoleSystem, prompts.ExplainSystem),
			llm.NewTextMessage(llm.RoleUser, prompt),
		)
		if err != nil {
			return dataset.EvaluationRecord{}, err
		}

		return dataset.EvaluationRecord{
			Request:     query,
			Response:    strings.TrimSpace(last.Content),
			Judgment:    false,
			Explanation: strings.TrimSpace(resp.Content),
		}, nil
	}

	return execute(ctx, r, acc.Incorrect, op, func(s batch.Success[dataset.EvaluationRecord]) []dataset.EvaluationRecord {
		return []dataset.EvaluationRecord{s.Value}
	}, func(i int) int {
		return acc.Incorrect[i].Index
	})
}
