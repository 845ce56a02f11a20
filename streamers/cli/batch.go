package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"curator/batch"
)

// BatchHandler implements streamers.BatchHandler for terminal output
type BatchHandler struct {
	mu             sync.Mutex
	out            io.Writer
	reportFailures bool
}

// NewBatchHandler creates a CLI batch handler writing to stdout
func NewBatchHandler(reportFailures bool) *BatchHandler {
	return NewBatchHandlerTo(os.Stdout, reportFailures)
}

// NewBatchHandlerTo creates a CLI batch handler writing to out
func NewBatchHandlerTo(out io.Writer, reportFailures bool) *BatchHandler {
	return &BatchHandler{out: out, reportFailures: reportFailures}
}

func (h *BatchHandler) BatchStarted(job string, total int, workers int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fmt.Fprintf(h.out, "\n%s%s=== Job: %s ===%s\n", ColorBold, ColorCyan, job, ColorReset)
	fmt.Fprintf(h.out, "%sProcessing %d items with %d workers%s\n", ColorGray, total, workers, ColorReset)
}

func (h *BatchHandler) ItemProgress(job string, p batch.Progress) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.reportFailures && p.Reason != "" {
		fmt.Fprintf(h.out, "%s  %sError on item %d: %s%s\n", clearLine, ColorRed, p.Index, truncate(p.Reason, 200), ColorReset)
	}
	fmt.Fprintf(h.out, "%s[%s] %s %d/%d%s  %s%d ok%s  %s%d errors%s",
		clearLine, job, progressBar(p.Completed, p.Total, 20), p.Completed, p.Total, ColorReset,
		ColorGreen, p.Succeeded, ColorReset,
		ColorRed, p.Failed, ColorReset)
	if p.Done() {
		fmt.Fprintln(h.out)
	}
}

func (h *BatchHandler) BatchCompleted(job string, succeeded int, failed int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	color := ColorGreen
	if failed > 0 {
		color = ColorOrange
	}
	fmt.Fprintf(h.out, "%s%s✓ Completed '%s': %d successful, %d errors%s\n", ColorBold, color, job, succeeded, failed, ColorReset)
}

func progressBar(done, total, width int) string {
	filled := width
	if total > 0 {
		filled = done * width / total
	}
	return ColorGreen + strings.Repeat("█", filled) + ColorGray + strings.Repeat("░", width-filled)
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
