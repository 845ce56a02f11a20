package jobs

import (
	"context"
	"errors"

	"curator/batch"
	"curator/dataset"
	"curator/extract"
	"curator/jobs/internal/prompts"
	"curator/llm"
)

var errMissingRoles = errors.New("conversation must contain both user and assistant messages")

// judgeSummaries asks the model whether each assistant abstract meets the
// quality bar for its paper.
func (r *Runner) judgeSummaries(ctx context.Context) (*Report, error) {
	convs, err := r.readConversations()
	if err != nil {
		return nil, err
	}

	op := func(ctx context.Context, conv dataset.Conversation) (dataset.JudgmentRecord, error) {
		request, hasUser := conv.Content(dataset.RoleUser)
		response, hasAssistant := conv.Content(dataset.RoleAssistant)
		if !hasUser || !hasAssistant {
			return dataset.JudgmentRecord{}, errMissingRoles
		}

		prompt := prompts.JudgeRequest(request, response)
		resp, err := r.chat(ctx,
			llm.NewTextMessage(llm.RoleSystem, prompts.JudgeSystem),
			llm.NewTextMessage(llm.RoleUser, prompt),
		)
		if err != nil {
			return dataset.JudgmentRecord{}, err
		}

		judgment, explanation := extract.ParseJudgment(resp.Content)
		return dataset.JudgmentRecord{
			Judgment:    judgment,
			Explanation: explanation,
			Prompt:      prompt,
		}, nil
	}

	return execute(ctx, r, convs, op, func(s batch.Success[dataset.JudgmentRecord]) []dataset.JudgmentRecord {
		rec := s.Value
		rec.Index = s.Index
		return []dataset.JudgmentRecord{rec}
	}, nil)
}
