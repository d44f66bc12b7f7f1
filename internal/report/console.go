package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/wonny/pdcal/internal/contracts"
)

// Console prints pipeline progress and result tables for a terminal
// ⭐ SSOT: CLI 출력 포맷은 이 패키지에서만
type Console struct {
	mu      sync.Mutex
	w       io.Writer
	maxRows int
	quiet   bool
}

// NewConsole creates a console reporter. maxRows <= 0 prints every row.
func NewConsole(w io.Writer, maxRows int) *Console {
	return &Console{w: w, maxRows: maxRows}
}

// Quiet suppresses table output and keeps progress lines
func (c *Console) Quiet() *Console {
	c.quiet = true
	return c
}

// Progress prints one progress line
// Example: [S1] correlation gate
func (c *Console) Progress(stage contracts.Stage, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "[%s] %s\n", stage.ShortName(), msg)
}

// Table prints a result table under a header
func (c *Console) Table(stage contracts.Stage, t *contracts.Table) {
	if c.quiet {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w)
	fmt.Fprintln(c.w, doubleLine)
	fmt.Fprintf(c.w, "  %s · %s (%d rows)\n", stage.ShortName(), t.Name, t.Len())
	fmt.Fprintln(c.w, singleLine)
	WriteTable(c.w, t, c.maxRows)
}

// RunSummary prints the outcome of a run
func (c *Console) RunSummary(s contracts.RunSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w)
	fmt.Fprintln(c.w, doubleLine)
	fmt.Fprintf(c.w, "  Run ID    : %s\n", s.RunID)
	fmt.Fprintf(c.w, "  Config    : %s\n", shortHash(s.ConfigHash))
	fmt.Fprintf(c.w, "  Duration  : %.2fs\n", s.FinishedAt.Sub(s.StartedAt).Seconds())
	fmt.Fprintln(c.w, singleLine)
	for _, r := range s.Results {
		mark := "✅"
		if !r.Success {
			mark = "❌"
		}
		fmt.Fprintf(c.w, "%s %-3s %-32s %6dms  in=%d out=%d\n",
			mark, r.Stage.ShortName(), r.Stage.Description(), r.Duration, r.InputCount, r.OutputCount)
		if r.Error != "" {
			fmt.Fprintf(c.w, "    %s\n", r.Error)
		}
	}
	fmt.Fprintln(c.w, doubleLine)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
