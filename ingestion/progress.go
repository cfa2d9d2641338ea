package ingestion

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/poiesic/lexcorpus/core"
)

// ProgressTracker prints a status line while units are processed.
// A line is written every interval units and once more on Finish.
type ProgressTracker struct {
	mu       sync.Mutex
	out      io.Writer
	interval int
	total    int
	done     int
	skipped  int
	pending  int
	last     core.Unit
	began    time.Time
	running  bool
}

func NewProgressTracker(out io.Writer, interval int) *ProgressTracker {
	return &ProgressTracker{out: out, interval: max(interval, 1)}
}

// Start resets the tracker for a run of total units.
func (p *ProgressTracker) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.done, p.skipped, p.pending = 0, 0, 0
	p.last = core.Unit{}
	p.began = time.Now()
	p.running = true
}

// UnitDone records one finished unit.
func (p *ProgressTracker) UnitDone(unit core.Unit, skipped bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running || p.done >= p.total {
		return
	}
	p.done++
	p.last = unit
	if skipped {
		p.skipped++
	}
	p.pending++
	if p.pending >= p.interval {
		p.pending = 0
		p.writeLine()
	}
}

// Finish writes the closing status line.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	p.running = false
	p.writeLine()
	fmt.Fprintln(p.out)
}

// Elapsed is zero outside a run.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return 0
	}
	return time.Since(p.began)
}

func (p *ProgressTracker) writeLine() {
	line := fmt.Sprintf("\rIngesting: %d/%d units, %d skipped", p.done, p.total, p.skipped)
	if p.last != (core.Unit{}) {
		line += fmt.Sprintf(", last %s", p.last)
	}
	fmt.Fprintf(p.out, "%s [%s]", line, time.Since(p.began).Round(time.Millisecond))
}
