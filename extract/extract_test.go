package extract_test

import (
	"curator/dataset"
	"curator/extract"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const systemPrompt = `You are a banking intent classifier.

IDs:

0: activate_my_card
1: age_limit
11: card_arrival
12: card_delivery_estimate
`

var _ = Describe("FirstInteger", func() {
	DescribeTable("extracts the first standalone integer",
		func(text string, want int) {
			got, err := extract.FirstInteger(text)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("bare", "41", 41),
		Entry("padded", "  7\n", 7),
		Entry("with reasoning", "The intent is 12 (card_delivery_estimate), not 11.", 12),
	)

	It("fails without an integer", func() {
		_, err := extract.FirstInteger("card_arrival")
		Expect(err).To(MatchError(ContainSubstring("no integer found")))
	})
})

var _ = Describe("ThinkingLabel", func() {
	DescribeTable("picks the final answer",
		func(text string, want int) {
			got, err := extract.ThinkingLabel(text)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("after a think block", "<think>Could be 11 or 12.</think>\n\n41", 41),
		Entry("concluding phrase", "Options 11 and 12 compete. Therefore, we output 12", 12),
		Entry("answer phrase", "The user asks about a card. The answer is 0", 0),
		Entry("trailing integer", "Considering 3 cases...\n\n41", 41),
		Entry("last integer", "I pick 12 (or maybe 11)", 11),
	)

	It("fails without any integer", func() {
		_, err := extract.ThinkingLabel("<think>hmm</think>\n\nnone")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("LabelName", func() {
	It("finds the label line", func() {
		Expect(extract.LabelName(11, systemPrompt)).To(Equal("card_arrival"))
		Expect(extract.LabelName(1, systemPrompt)).To(Equal("age_limit"))
	})

	It("does not match a longer id", func() {
		Expect(extract.LabelName(2, systemPrompt)).To(Equal("Unknown_2"))
	})
})

var _ = Describe("ParseJudgment", func() {
	DescribeTable("verdicts",
		func(reply, want string) {
			got, _ := extract.ParseJudgment(reply)
			Expect(got).To(Equal(want))
		},
		Entry("first line yes", "Yes\n\nFaithfulness: 90", extract.JudgmentYes),
		Entry("first line lowercase no", "no\nCoverage is missing.", extract.JudgmentNo),
		Entry("judgment marker", "After review.\nJudgment: No\nThe summary invents results.", extract.JudgmentNo),
		Entry("judgement spelling", "Overall judgement: yes, it is fine.", extract.JudgmentYes),
		Entry("early yes", "**Yes** - the summary is faithful.", extract.JudgmentYes),
		Entry("early no", "My verdict is no; it hallucinates a dataset.", extract.JudgmentNo),
		Entry("positive phrase", "Overall, the summary meets the minimum quality standards.", extract.JudgmentYes),
		Entry("negative phrase", "The summary fails to meet the coverage bar.", extract.JudgmentNo),
		Entry("nothing usable", "I cannot evaluate this summary.", extract.JudgmentUnknown),
	)

	It("splits the explanation from a first-line verdict", func() {
		j, exp := extract.ParseJudgment("  Yes\n\nClear and concise.  ")
		Expect(j).To(Equal(extract.JudgmentYes))
		Expect(exp).To(Equal("Clear and concise."))
	})

	It("keeps the whole reply as explanation otherwise", func() {
		reply := "Judgment: Yes\nGood coverage."
		_, exp := extract.ParseJudgment(reply)
		Expect(exp).To(Equal(reply))
	})

	It("does not treat words containing no as a verdict", func() {
		j, _ := extract.ParseJudgment("I know nothing about this, cannot evaluate it.")
		Expect(j).To(Equal(extract.JudgmentUnknown))
	})
})

var _ = Describe("MeasureAccuracy", func() {
	row := func(answer string, label int) dataset.Conversation {
		return dataset.Conversation{
			Messages: []dataset.Message{
				{Role: dataset.RoleSystem, Content: systemPrompt},
				{Role: dataset.RoleUser, Content: "where is my card?"},
				{Role: dataset.RoleAssistant, Content: answer},
			},
			Metadata: &dataset.Metadata{Label: label},
		}
	}

	It("counts correct, incorrect and unscorable rows", func() {
		rows := []dataset.Conversation{
			row("11", 11),
			row(" 12 ", 11),
			row("card_arrival", 11),
			{Messages: []dataset.Message{{Role: dataset.RoleAssistant, Content: "0"}}},
			row("0", 0),
		}
		acc := extract.MeasureAccuracy(rows, extract.FirstInteger)
		Expect(acc.Total).To(Equal(5))
		Expect(acc.Correct).To(Equal(2))
		Expect(acc.Accuracy).To(BeNumerically("~", 0.4, 1e-9))
		Expect(acc.Incorrect).To(Equal([]extract.Misclassification{{Index: 1, Predicted: 12, Truth: 11}}))
		Expect(acc.Errors).To(HaveLen(2))
		Expect(acc.Errors[0].Index).To(Equal(2))
		Expect(acc.Errors[1].Index).To(Equal(3))
		Expect(acc.Errors[1].Reason).To(ContainSubstring("missing ground truth"))
	})

	It("uses the thinking strategy", func() {
		rows := []dataset.Conversation{row("<think>11 vs 12</think>\n12", 12)}
		Expect(extract.MeasureAccuracy(rows, extract.ThinkingLabel).Correct).To(Equal(1))
		Expect(extract.MeasureAccuracy(rows, extract.FirstInteger).Correct).To(Equal(0))
	})

	It("reports zero accuracy for no rows", func() {
		acc := extract.MeasureAccuracy(nil, nil)
		Expect(acc.Total).To(BeZero())
		Expect(acc.Accuracy).To(BeZero())
	})
})
