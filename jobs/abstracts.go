package jobs

import (
	"context"
	"errors"

	"curator/batch"
	"curator/dataset"
	"curator/llm"
)

var errNoUserMessage = errors.New("conversation has no user message")

// generateAbstracts sends each paper conversation as-is and appends the
// model's abstract as the assistant turn.
func (r *Runner) generateAbstracts(ctx context.Context) (*Report, error) {
	convs, err := r.readConversations()
	if err != nil {
		return nil, err
	}

	op := func(ctx context.Context, conv dataset.Conversation) (dataset.Conversation, error) {
		if _, ok := conv.Content(dataset.RoleUser); !ok {
			return dataset.Conversation{}, errNoUserMessage
		}

		messages := make([]llm.Message, 0, len(conv.Messages))
		for _, m := range conv.Messages {
			messages = append(messages, llm.NewTextMessage(llm.Role(m.Role), m.Content))
		}
		resp, err := r.chat(ctx, messages...)
		if err != nil {
			return dataset.Conversation{}, err
		}

		out := dataset.Conversation{
			Messages: make([]dataset.Message, len(conv.Messages), len(conv.Messages)+1),
			Metadata: conv.Metadata,
		}
		copy(out.Messages, conv.Messages)
		out.Messages = append(out.Messages, dataset.Message{Role: dataset.RoleAssistant, Content: resp.Content})
		return out, nil
	}

	return execute(ctx, r, convs, op, func(s batch.Success[dataset.Conversation]) []dataset.Conversation {
		return []dataset.Conversation{s.Value}
	}, nil)
}
