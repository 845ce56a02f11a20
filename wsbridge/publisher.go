package wsbridge

import (
	"errors"

	"curator/batch"
)

// Publisher implements streamers.BatchHandler by sending each event as an
// Envelope. Send errors are logged and never reach the batch.
type Publisher struct {
	client *Client
}

func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) BatchStarted(job string, total int, workers int) {
	p.publish(Envelope{
		Type: EventBatchStarted,
		Job:  job,
		Data: BatchStartedData{Total: total, Workers: workers},
	})
}

func (p *Publisher) ItemProgress(job string, prog batch.Progress) {
	p.publish(Envelope{
		Type: EventItemProgress,
		Job:  job,
		Data: ItemProgressData{
			Total:     prog.Total,
			Completed: prog.Completed,
			Succeeded: prog.Succeeded,
			Failed:    prog.Failed,
			Index:     prog.Index,
			Reason:    prog.Reason,
		},
	})
}

func (p *Publisher) BatchCompleted(job string, succeeded int, failed int) {
	p.publish(Envelope{
		Type: EventBatchCompleted,
		Job:  job,
		Data: BatchCompletedData{Succeeded: succeeded, Failed: failed},
	})
}

func (p *Publisher) publish(env Envelope) {
	if err := p.client.Send(env); err != nil && !errors.Is(err, ErrBufferFull) {
		p.client.logger.Debug("publish failed", "type", env.Type, "error", err)
	}
}
