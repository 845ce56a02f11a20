package config_test

import (
	"curator/config"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Job", func() {
	base := minimalVarsHCL() + minimalModelHCL()

	Describe("defaults", func() {
		It("uses temperature 1.0 for judging and five workers", func() {
			cfg := loadValid(base + judgeJobHCL())
			j := cfg.Jobs[0]
			Expect(j.Kind).To(Equal(config.JobJudgeSummaries))
			Expect(j.Temp()).To(Equal(1.0))
			Expect(j.Workers()).To(Equal(5))
			Expect(j.ReportsFailures()).To(BeTrue())
			Expect(j.LabelCount).To(Equal(77))
		})

		It("uses temperature 0.7 for generation", func() {
			cfg := loadValid(base + `
job "gen" {
  kind   = "generate_abstracts"
  model  = models.openai.gpt_4o
  input  = "papers.jsonl"
  output = "abstracts.jsonl"
}
`)
			Expect(cfg.Jobs[0].Temp()).To(Equal(0.7))
		})

		It("keeps explicit values", func() {
			cfg := loadValid(base + `
job "explain" {
  kind            = "explain_misclassifications"
  model           = models.openai.gpt_4o
  input           = "inference.jsonl"
  output          = "explanations.jsonl"
  failures        = "explain_failures.jsonl"
  temperature     = 0
  max_workers     = 12
  max_tokens      = 800
  report_failures = false
  thinking        = true
}
`)
			j := cfg.Jobs[0]
			Expect(j.Temp()).To(BeZero())
			Expect(j.Workers()).To(Equal(12))
			Expect(j.MaxTokens).To(Equal(800))
			Expect(j.Failures).To(Equal("explain_failures.jsonl"))
			Expect(j.ReportsFailures()).To(BeFalse())
			Expect(j.Thinking).To(BeTrue())
		})

		It("decodes label pairs", func() {
			cfg := loadValid(base + `
job "hard" {
  kind               = "generate_hard_examples"
  model              = models.openai.gpt_4o
  output             = "hard.jsonl"
  examples_per_label = 3
  label_pairs        = [[15, 16], [0, 76]]
}
`)
			Expect(cfg.Jobs[0].LabelPairs).To(Equal([][]int{{15, 16}, {0, 76}}))
			Expect(cfg.Jobs[0].ExamplesPerLabel).To(Equal(3))
		})
	})

	Describe("Validate", func() {
		DescribeTable("rejects invalid jobs",
			func(body, want string) {
				err := validateErr(base + `job "bad" {` + "\n" + body + "\n}\n")
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("job 'bad'"))
				Expect(err.Error()).To(ContainSubstring(want))
			},
			Entry("unknown kind", `
  kind   = "summarize"
  model  = models.openai.gpt_4o
  input  = "in.jsonl"
  output = "out.jsonl"`, "unknown kind 'summarize'"),
			Entry("model outside allowed_models", `
  kind   = "judge_summaries"
  model  = "openai.o1"
  input  = "in.jsonl"
  output = "out.jsonl"`, "not in allowed_models"),
			Entry("zero workers", `
  kind        = "judge_summaries"
  model       = models.openai.gpt_4o
  input       = "in.jsonl"
  output      = "out.jsonl"
  max_workers = 0`, "max_workers must be at least 1"),
			Entry("negative workers", `
  kind        = "judge_summaries"
  model       = models.openai.gpt_4o
  input       = "in.jsonl"
  output      = "out.jsonl"
  max_workers = -2`, "max_workers must be at least 1"),
			Entry("temperature out of range", `
  kind        = "judge_summaries"
  model       = models.openai.gpt_4o
  input       = "in.jsonl"
  output      = "out.jsonl"
  temperature = 3.5`, "temperature must be between 0 and 2"),
			Entry("missing input", `
  kind   = "judge_summaries"
  model  = models.openai.gpt_4o
  output = "out.jsonl"`, "input is required"),
			Entry("missing label pairs", `
  kind   = "generate_hard_examples"
  model  = models.openai.gpt_4o
  output = "out.jsonl"`, "label_pairs is required"),
			Entry("pair with one label", `
  kind        = "generate_hard_examples"
  model       = models.openai.gpt_4o
  output      = "out.jsonl"
  label_pairs = [[4]]`, "expected 2 labels"),
			Entry("pair with the same label twice", `
  kind        = "generate_hard_examples"
  model       = models.openai.gpt_4o
  output      = "out.jsonl"
  label_pairs = [[4, 4]]`, "labels must differ"),
			Entry("label out of range", `
  kind        = "generate_hard_examples"
  model       = models.openai.gpt_4o
  output      = "out.jsonl"
  label_pairs = [[4, 77]]`, "label 77 out of range [0, 76]"),
		)

		It("rejects duplicate job names", func() {
			err := validateErr(base + judgeJobHCL() + judgeJobHCL())
			Expect(err).To(MatchError(ContainSubstring("job 'judge': defined more than once")))
		})

		It("does not require input for hard-example jobs", func() {
			loadValid(base + `
job "hard" {
  kind        = "generate_hard_examples"
  model       = models.openai.gpt_4o
  output      = "hard.jsonl"
  label_pairs = [[1, 2]]
}
`)
		})
	})
})
