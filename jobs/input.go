package jobs

import (
	"fmt"

	"curator/dataset"
)

// readConversations loads the job input. Undecodable lines are skipped
// with a warning.
func (r *Runner) readConversations() ([]dataset.Conversation, error) {
	rows, warnings, err := dataset.ReadLines[dataset.Conversation](r.job.Input)
	if err != nil {
		return nil, fmt.Errorf("job '%s': read input: %w", r.job.Name, err)
	}
	for _, w := range warnings {
		r.logger.Warn("skipping input line", "file", r.job.Input, "line", w.Line, "error", w.Err)
	}
	r.logger.Debug("input loaded", "file", r.job.Input, "rows", len(rows), "skipped", len(warnings))
	return rows, nil
}
