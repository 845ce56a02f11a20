package config

import (
	"fmt"
	"strings"
)

// JobKind selects which batch a job runs
type JobKind string

const (
	JobJudgeSummaries            JobKind = "judge_summaries"
	JobGenerateAbstracts         JobKind = "generate_abstracts"
	JobExplainMisclassifications JobKind = "explain_misclassifications"
	JobGenerateHardExamples      JobKind = "generate_hard_examples"
)

var jobKinds = []JobKind{
	JobJudgeSummaries,
	JobGenerateAbstracts,
	JobExplainMisclassifications,
	JobGenerateHardExamples,
}

const (
	DefaultMaxWorkers       = 5
	DefaultLabelCount       = 77
	DefaultExamplesPerLabel = 5
)

// Job is one batch instantiation: a kind, a model and its input/output files
type Job struct {
	Name        string   `hcl:"name,label"`
	Kind        JobKind  `hcl:"kind"`
	Model       string   `hcl:"model"`
	Temperature *float64 `hcl:"temperature,optional"`
	MaxWorkers  *int     `hcl:"max_workers,optional"`
	MaxTokens   int      `hcl:"max_tokens,optional"`

	Input    string `hcl:"input,optional"`
	Output   string `hcl:"output"`
	Failures string `hcl:"failures,optional"`

	ReportFailures *bool `hcl:"report_failures,optional"`

	// Banking77 jobs
	Thinking         bool    `hcl:"thinking,optional"`
	SystemPrompt     string  `hcl:"system_prompt,optional"`
	LabelCount       int     `hcl:"label_count,optional"`
	ExamplesPerLabel int     `hcl:"examples_per_label,optional"`
	LabelPairs       [][]int `hcl:"label_pairs,optional"`
}

// Defaults fills in per-kind defaults for unset fields
func (j *Job) Defaults() {
	if j.Temperature == nil {
		t := 1.0
		if j.Kind == JobGenerateAbstracts || j.Kind == JobGenerateHardExamples {
			t = 0.7
		}
		j.Temperature = &t
	}
	if j.MaxWorkers == nil {
		w := DefaultMaxWorkers
		j.MaxWorkers = &w
	}
	if j.ReportFailures == nil {
		r := true
		j.ReportFailures = &r
	}
	if j.LabelCount == 0 {
		j.LabelCount = DefaultLabelCount
	}
	if j.ExamplesPerLabel == 0 {
		j.ExamplesPerLabel = DefaultExamplesPerLabel
	}
}

// Workers returns the configured worker count
func (j *Job) Workers() int {
	if j.MaxWorkers == nil {
		return DefaultMaxWorkers
	}
	return *j.MaxWorkers
}

// Temp returns the configured sampling temperature
func (j *Job) Temp() float64 {
	if j.Temperature == nil {
		return 0
	}
	return *j.Temperature
}

// ReportsFailures reports whether item failures are printed as they happen
func (j *Job) ReportsFailures() bool {
	return j.ReportFailures == nil || *j.ReportFailures
}

func (j *Job) Validate(models []Model) error {
	known := false
	for _, k := range jobKinds {
		if j.Kind == k {
			known = true
			break
		}
	}
	if !known {
		names := make([]string, len(jobKinds))
		for i, k := range jobKinds {
			names[i] = string(k)
		}
		return fmt.Errorf("unknown kind '%s' (expected one of: %s)", j.Kind, strings.Join(names, ", "))
	}

	if _, _, err := ResolveModelRef(models, j.Model); err != nil {
		return fmt.Errorf("model: %w", err)
	}

	if j.Workers() < 1 {
		return fmt.Errorf("max_workers must be at least 1, got %d", j.Workers())
	}
	if t := j.Temp(); t < 0 || t > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %g", t)
	}
	if j.MaxTokens < 0 {
		return fmt.Errorf("max_tokens cannot be negative")
	}

	if j.Kind != JobGenerateHardExamples && j.Input == "" {
		return fmt.Errorf("input is required for %s jobs", j.Kind)
	}
	if j.Output == "" {
		return fmt.Errorf("output is required")
	}

	if j.LabelCount < 1 {
		return fmt.Errorf("label_count must be at least 1")
	}

	if j.Kind == JobGenerateHardExamples {
		if len(j.LabelPairs) == 0 {
			return fmt.Errorf("label_pairs is required for %s jobs", j.Kind)
		}
		if j.ExamplesPerLabel < 1 {
			return fmt.Errorf("examples_per_label must be at least 1")
		}
		for i, pair := range j.LabelPairs {
			if len(pair) != 2 {
				return fmt.Errorf("label_pairs[%d]: expected 2 labels, got %d", i, len(pair))
			}
			if pair[0] == pair[1] {
				return fmt.Errorf("label_pairs[%d]: labels must differ", i)
			}
			for _, l := range pair {
				if l < 0 || l >= j.LabelCount {
					return fmt.Errorf("label_pairs[%d]: label %d out of range [0, %d]", i, l, j.LabelCount-1)
				}
			}
		}
	}

	return nil
}
