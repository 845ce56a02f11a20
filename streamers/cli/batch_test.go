package cli_test

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"curator/batch"
	"curator/streamers/cli"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BatchHandler", func() {
	var buf *bytes.Buffer

	BeforeEach(func() {
		buf = &bytes.Buffer{}
	})

	It("announces the batch size and worker count", func() {
		h := cli.NewBatchHandlerTo(buf, true)
		h.BatchStarted("judge", 120, 8)
		Expect(buf.String()).To(ContainSubstring("=== Job: judge ==="))
		Expect(buf.String()).To(ContainSubstring("Processing 120 items with 8 workers"))
	})

	It("prints running counts for each item", func() {
		h := cli.NewBatchHandlerTo(buf, true)
		h.ItemProgress("judge", batch.Progress{Total: 4, Completed: 2, Succeeded: 1, Failed: 1, Index: 0})
		out := buf.String()
		Expect(out).To(ContainSubstring("2/4"))
		Expect(out).To(ContainSubstring("1 ok"))
		Expect(out).To(ContainSubstring("1 errors"))
		Expect(out).NotTo(HaveSuffix("\n"))
	})

	It("ends the progress line once every item completed", func() {
		h := cli.NewBatchHandlerTo(buf, false)
		h.ItemProgress("judge", batch.Progress{Total: 1, Completed: 1, Succeeded: 1})
		Expect(buf.String()).To(HaveSuffix("\n"))
	})

	It("reports failures when enabled", func() {
		h := cli.NewBatchHandlerTo(buf, true)
		h.ItemProgress("judge", batch.Progress{Total: 3, Completed: 1, Failed: 1, Index: 2, Reason: "rate limited\nretry later"})
		Expect(buf.String()).To(ContainSubstring("Error on item 2: rate limited retry later"))
	})

	It("stays quiet about failures when disabled", func() {
		h := cli.NewBatchHandlerTo(buf, false)
		h.ItemProgress("judge", batch.Progress{Total: 3, Completed: 1, Failed: 1, Index: 2, Reason: "rate limited"})
		Expect(buf.String()).NotTo(ContainSubstring("Error on item"))
	})

	It("truncates long failure reasons", func() {
		h := cli.NewBatchHandlerTo(buf, true)
		h.ItemProgress("judge", batch.Progress{Total: 1, Completed: 1, Failed: 1, Reason: strings.Repeat("x", 500)})
		Expect(buf.String()).To(ContainSubstring(strings.Repeat("x", 197) + "..."))
		Expect(buf.String()).NotTo(ContainSubstring(strings.Repeat("x", 198)))
	})

	It("truncates multibyte reasons on rune boundaries", func() {
		h := cli.NewBatchHandlerTo(buf, true)
		h.ItemProgress("judge", batch.Progress{Total: 1, Completed: 1, Failed: 1, Reason: strings.Repeat("é", 500)})
		Expect(utf8.ValidString(buf.String())).To(BeTrue())
		Expect(buf.String()).To(ContainSubstring(strings.Repeat("é", 197) + "..."))
		Expect(buf.String()).NotTo(ContainSubstring(strings.Repeat("é", 198)))
	})

	It("summarizes the completed batch", func() {
		h := cli.NewBatchHandlerTo(buf, true)
		h.BatchCompleted("judge", 10, 2)
		Expect(buf.String()).To(ContainSubstring("Completed 'judge': 10 successful, 2 errors"))
	})
})
