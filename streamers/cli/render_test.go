package cli_test

import (
	"bytes"
	"strings"

	"curator/streamers/cli"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Rendering", func() {
	Describe("StatsOf", func() {
		It("counts characters, words and lines", func() {
			s := cli.StatsOf("one two\nthree")
			Expect(s).To(Equal(cli.TextStats{Characters: 13, Words: 3, Lines: 2}))
		})

		It("counts runes rather than bytes", func() {
			Expect(cli.StatsOf("héllo").Characters).To(Equal(5))
		})

		It("reports zero lines for empty text", func() {
			Expect(cli.StatsOf("")).To(Equal(cli.TextStats{}))
		})
	})

	Describe("RenderMessage", func() {
		It("writes a header with stats and the content", func() {
			var buf bytes.Buffer
			err := cli.RenderMessage(&buf, cli.MessageView{Index: 3, Role: "assistant", Content: "The abstract text."})
			Expect(err).NotTo(HaveOccurred())
			Expect(buf.String()).To(ContainSubstring("=== Row 3: ASSISTANT ==="))
			Expect(buf.String()).To(ContainSubstring("Characters: 18 | Words: 3 | Lines: 1"))
			Expect(buf.String()).To(ContainSubstring("abstract"))
		})

		It("cuts content beyond MaxChars", func() {
			var buf bytes.Buffer
			content := strings.Repeat("a", 50) + strings.Repeat("z", 50)
			err := cli.RenderMessage(&buf, cli.MessageView{Role: "user", Content: content, MaxChars: 50})
			Expect(err).NotTo(HaveOccurred())
			Expect(buf.String()).NotTo(ContainSubstring("z"))
			Expect(buf.String()).To(ContainSubstring("(50 more characters)"))
		})
	})
})
