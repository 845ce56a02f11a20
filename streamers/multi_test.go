package streamers_test

import (
	"fmt"

	"curator/batch"
	"curator/streamers"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recorder struct {
	name   string
	events *[]string
}

func (r recorder) BatchStarted(job string, total int, workers int) {
	*r.events = append(*r.events, fmt.Sprintf("%s:start:%s:%d:%d", r.name, job, total, workers))
}

func (r recorder) ItemProgress(job string, p batch.Progress) {
	*r.events = append(*r.events, fmt.Sprintf("%s:item:%d/%d", r.name, p.Completed, p.Total))
}

func (r recorder) BatchCompleted(job string, succeeded int, failed int) {
	*r.events = append(*r.events, fmt.Sprintf("%s:done:%d:%d", r.name, succeeded, failed))
}

var _ = Describe("Multi", func() {
	It("forwards every event to each handler in order", func() {
		var events []string
		m := streamers.Multi{recorder{"a", &events}, recorder{"b", &events}}

		m.BatchStarted("judge", 2, 4)
		m.ItemProgress("judge", batch.Progress{Total: 2, Completed: 1, Succeeded: 1})
		m.BatchCompleted("judge", 1, 1)

		Expect(events).To(Equal([]string{
			"a:start:judge:2:4", "b:start:judge:2:4",
			"a:item:1/2", "b:item:1/2",
			"a:done:1:1", "b:done:1:1",
		}))
	})

	It("is a no-op when empty", func() {
		var m streamers.Multi
		Expect(func() {
			m.BatchStarted("x", 0, 1)
			m.BatchCompleted("x", 0, 0)
		}).NotTo(Panic())
	})

	It("satisfies the handler interface alongside Discard", func() {
		var h streamers.BatchHandler = streamers.Multi{streamers.Discard{}}
		Expect(h).NotTo(BeNil())
	})
})
