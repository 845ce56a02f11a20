package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"curator/batch"
	"curator/config"
	"curator/dataset"
	"curator/store"
)

// execute runs op over items and writes the results. toRecords maps one
// success to the output records it produces, in input order. rowIndex maps a
// batch position to the input row it came from; nil means they are the same.
// Progress events, failure records and stored outcomes all carry row indices.
func execute[T, R, W any](ctx context.Context, r *Runner, items []T, op batch.Operation[T, R], toRecords func(batch.Success[R]) []W, rowIndex func(int) int) (*Report, error) {
	started := time.Now()
	if rowIndex == nil {
		rowIndex = func(i int) int { return i }
	}
	report := &Report{
		Job:      r.job.Name,
		Kind:     r.job.Kind,
		Total:    len(items),
		Output:   r.job.Output,
		Failures: r.job.Failures,
	}

	runID, err := r.createRun(len(items))
	if err != nil {
		return nil, err
	}
	report.RunID = runID

	r.handler.BatchStarted(r.job.Name, len(items), r.job.Workers())
	result, err := batch.Run(ctx, items, op, batch.Options{
		MaxWorkers: r.job.Workers(),
		Logger:     r.logger,
		OnProgress: func(p batch.Progress) {
			p.Index = rowIndex(p.Index)
			if p.Reason != "" {
				r.logger.Debug("item failed", "index", p.Index, "reason", p.Reason)
			}
			r.handler.ItemProgress(r.job.Name, p)
		},
	})
	if err != nil {
		r.finishRun(runID, store.RunSummary{Status: store.StatusFailed, Error: err.Error()})
		return nil, fmt.Errorf("job '%s': %w", r.job.Name, err)
	}
	r.handler.BatchCompleted(r.job.Name, len(result.Successes), len(result.Failures))

	report.Succeeded = len(result.Successes)
	report.Failed = len(result.Failures)

	var records []W
	for _, s := range result.Successes {
		records = append(records, toRecords(s)...)
	}
	report.Written = len(records)

	report.Usage = r.totalUsage()
	report.CostUSD, report.CostKnown = config.EstimateCost(r.apiModel, report.Usage.InputTokens, report.Usage.OutputTokens)

	summary := store.RunSummary{
		Status:       store.StatusCompleted,
		Succeeded:    report.Succeeded,
		Failed:       report.Failed,
		InputTokens:  report.Usage.InputTokens,
		OutputTokens: report.Usage.OutputTokens,
		CostUSD:      report.CostUSD,
	}
	if err := ctx.Err(); err != nil {
		summary.Status = store.StatusCancelled
		summary.Error = err.Error()
	}

	failed := make([]batch.Failure, len(result.Failures))
	for i, f := range result.Failures {
		failed[i] = batch.Failure{Index: rowIndex(f.Index), Reason: f.Reason}
	}

	writeErr := writeResults(r.job, records, failed)
	if writeErr != nil {
		summary.Status = store.StatusFailed
		summary.Error = writeErr.Error()
	}

	recordOutcomes(r, runID, result.Successes, failed, rowIndex)
	r.finishRun(runID, summary)

	report.Duration = time.Since(started)
	if writeErr != nil {
		return report, fmt.Errorf("job '%s': %w", r.job.Name, writeErr)
	}

	r.logger.Info("job finished",
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"written", report.Written,
		"input_tokens", report.Usage.InputTokens,
		"output_tokens", report.Usage.OutputTokens,
		"duration", report.Duration.Round(time.Millisecond))
	return report, nil
}

func writeResults[W any](job *config.Job, records []W, failures []batch.Failure) error {
	if err := dataset.WriteLines(job.Output, records); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if job.Failures == "" {
		return nil
	}

	rows := make([]dataset.FailureRecord, len(failures))
	for i, f := range failures {
		rows[i] = dataset.FailureRecord{Index: f.Index, Reason: f.Reason}
	}
	if err := dataset.WriteLines(job.Failures, rows); err != nil {
		return fmt.Errorf("write failures: %w", err)
	}
	return nil
}

func (r *Runner) createRun(total int) (string, error) {
	if r.runs == nil {
		return "", nil
	}
	id, err := r.runs.CreateRun(r.job.Name, string(r.job.Kind), r.apiModel, total, r.job.Workers())
	if err != nil {
		return "", fmt.Errorf("job '%s': create run: %w", r.job.Name, err)
	}
	r.logger.Debug("run created", "run_id", id)
	return id, nil
}

// recordOutcomes stores one outcome per item. failures already carry row
// indices. Store errors are logged: the output files are already the source
// of truth for the batch.
func recordOutcomes[R any](r *Runner, runID string, successes []batch.Success[R], failures []batch.Failure, rowIndex func(int) int) {
	if r.runs == nil {
		return
	}

	outcomes := make([]store.Outcome, 0, len(successes)+len(failures))
	for _, s := range successes {
		index := rowIndex(s.Index)
		payload, err := json.Marshal(s.Value)
		if err != nil {
			r.logger.Warn("marshal outcome payload", "index", index, "error", err)
		}
		outcomes = append(outcomes, store.Outcome{Index: index, Succeeded: true, PayloadJSON: string(payload)})
	}
	for _, f := range failures {
		outcomes = append(outcomes, store.Outcome{Index: f.Index, Reason: f.Reason})
	}

	if err := r.runs.RecordOutcomes(runID, outcomes); err != nil {
		r.logger.Warn("failed to record outcomes", "run_id", runID, "error", err)
	}
}

func (r *Runner) finishRun(runID string, summary store.RunSummary) {
	if r.runs == nil {
		return
	}
	if err := r.runs.FinishRun(runID, summary); err != nil {
		r.logger.Warn("failed to finish run", "run_id", runID, "error", err)
	}
}
