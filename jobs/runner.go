// Package jobs runs configured curation jobs: it reads the job's input,
// builds the per-kind LLM operation, fans it out with the batch orchestrator
// and hands the result to the output files and the run store.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"curator/config"
	"curator/jobs/internal/prompts"
	"curator/llm"
	"curator/store"
	"curator/streamers"
)

// Runner executes one job
type Runner struct {
	cfg      *config.Config
	job      *config.Job
	model    *config.Model
	apiModel string

	provider llm.Provider
	closer   io.Closer
	handler  streamers.BatchHandler
	runs     store.RunStore
	logger   hclog.Logger

	// Debug call capture
	callLogDir string
	callLogger *llm.CallLogger

	usageMu sync.Mutex
	usage   llm.Usage
}

// RunnerOption is a functional option for configuring the Runner
type RunnerOption func(*Runner)

// WithProvider replaces the provider built from the job's model block
func WithProvider(p llm.Provider) RunnerOption {
	return func(r *Runner) {
		r.provider = p
	}
}

// WithHandler sets where batch progress is streamed
func WithHandler(h streamers.BatchHandler) RunnerOption {
	return func(r *Runner) {
		r.handler = h
	}
}

// WithStore records the run and its outcomes
func WithStore(runs store.RunStore) RunnerOption {
	return func(r *Runner) {
		r.runs = runs
	}
}

func WithLogger(l hclog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithCallLog writes one JSONL line per LLM call into dir/calls.jsonl
func WithCallLog(dir string) RunnerOption {
	return func(r *Runner) {
		r.callLogDir = dir
	}
}

// Report summarizes a finished run
type Report struct {
	RunID     string
	Job       string
	Kind      config.JobKind
	Total     int
	Succeeded int
	Failed    int

	// Written is the number of records in the output file
	Written  int
	Output   string
	Failures string

	Usage     llm.Usage
	CostUSD   float64
	CostKnown bool
	Duration  time.Duration
}

// NewRunner resolves the job and its model and builds the provider
func NewRunner(ctx context.Context, cfg *config.Config, jobName string, opts ...RunnerOption) (*Runner, error) {
	job, err := cfg.GetJob(jobName)
	if err != nil {
		return nil, err
	}
	model, apiModel, err := config.ResolveModelRef(cfg.Models, job.Model)
	if err != nil {
		return nil, fmt.Errorf("job '%s': %w", jobName, err)
	}

	r := &Runner{
		cfg:      cfg,
		job:      job,
		model:    model,
		apiModel: apiModel,
		handler:  streamers.Discard{},
		logger:   hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.Named("job").With("job", job.Name, "kind", string(job.Kind))

	if r.provider == nil {
		p, err := llm.NewProvider(ctx, model)
		if err != nil {
			return nil, fmt.Errorf("job '%s': %w", jobName, err)
		}
		r.provider = p
		if c, ok := p.(io.Closer); ok {
			r.closer = c
		}
	}

	if r.callLogDir != "" {
		if err := os.MkdirAll(r.callLogDir, 0755); err != nil {
			return nil, fmt.Errorf("create debug directory: %w", err)
		}
		cl, err := llm.NewCallLogger(r.provider, filepath.Join(r.callLogDir, "calls.jsonl"))
		if err != nil {
			return nil, fmt.Errorf("create call log: %w", err)
		}
		r.callLogger = cl
		r.provider = cl
	}

	return r, nil
}

// Job returns the resolved job
func (r *Runner) Job() *config.Job {
	return r.job
}

// Close releases the provider client and the debug call log
func (r *Runner) Close() error {
	var errs []error
	if r.callLogger != nil {
		errs = append(errs, r.callLogger.Close())
	}
	if r.closer != nil {
		errs = append(errs, r.closer.Close())
	}
	return errors.Join(errs...)
}

// Run executes the job's batch and writes its results
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	r.logger.Info("starting job", "model", r.apiModel, "workers", r.job.Workers())

	r.usageMu.Lock()
	r.usage = llm.Usage{}
	r.usageMu.Unlock()

	switch r.job.Kind {
	case config.JobJudgeSummaries:
		return r.judgeSummaries(ctx)
	case config.JobGenerateAbstracts:
		return r.generateAbstracts(ctx)
	case config.JobExplainMisclassifications:
		return r.explainMisclassifications(ctx)
	case config.JobGenerateHardExamples:
		return r.generateHardExamples(ctx)
	default:
		return nil, fmt.Errorf("job '%s': unknown kind '%s'", r.job.Name, r.job.Kind)
	}
}

// chat sends one request with the job's sampling settings and adds its
// token usage to the run total
func (r *Runner) chat(ctx context.Context, messages ...llm.Message) (*llm.ChatResponse, error) {
	resp, err := r.provider.Chat(ctx, &llm.ChatRequest{
		Model:       r.apiModel,
		Messages:    messages,
		MaxTokens:   r.job.MaxTokens,
		Temperature: r.job.Temp(),
	})
	if err != nil {
		return nil, err
	}

	r.usageMu.Lock()
	r.usage.InputTokens += resp.Usage.InputTokens
	r.usage.OutputTokens += resp.Usage.OutputTokens
	r.usage.CacheReadInputTokens += resp.Usage.CacheReadInputTokens
	r.usage.CachedTokens += resp.Usage.CachedTokens
	r.usageMu.Unlock()

	return resp, nil
}

func (r *Runner) totalUsage() llm.Usage {
	r.usageMu.Lock()
	defer r.usageMu.Unlock()
	return r.usage
}

func (r *Runner) classifierPrompt() (string, error) {
	return LoadClassifierPrompt(r.job.SystemPrompt)
}

// LoadClassifierPrompt reads a Banking77 classifier system prompt from path.
// An empty path selects the built-in prompt listing all 77 intents.
func LoadClassifierPrompt(path string) (string, error) {
	if path == "" {
		return prompts.Banking77System, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read system_prompt: %w", err)
	}
	return string(data), nil
}
