package output

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
)

// ProgressBar displays upload progress on a terminal line.
type ProgressBar struct {
	w     io.Writer
	title string
	width int

	mu       sync.Mutex
	current  int64
	total    int64
	lastPct  int
	finished bool
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(w io.Writer, title string) *ProgressBar {
	return &ProgressBar{
		w:       w,
		title:   title,
		width:   40,
		lastPct: -1,
	}
}

// Update sets the progress. The line is redrawn only when the whole
// percentage changes. Its signature matches connection.ProgressFunc.
func (p *ProgressBar) Update(current, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finished {
		return
	}
	p.current = current
	p.total = total

	pct := p.percent()
	if total > 0 && pct == p.lastPct {
		return
	}
	p.lastPct = pct
	p.render()
}

// Finish draws the final state and ends the line. Later updates are
// ignored.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finished {
		return
	}
	p.finished = true
	if p.total > 0 {
		p.current = p.total
	}
	p.render()
	fmt.Fprintln(p.w)
}

func (p *ProgressBar) percent() int {
	if p.total <= 0 {
		return 0
	}
	pct := int(p.current * 100 / p.total)
	if pct > 100 {
		pct = 100
	}
	return pct
}

func (p *ProgressBar) render() {
	if p.total <= 0 {
		fmt.Fprintf(p.w, "\r%s %s", p.title, humanize.IBytes(uint64(p.current)))
		return
	}

	pct := p.percent()
	filled := p.width * pct / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", p.width-filled)

	fmt.Fprintf(p.w, "\r%s [%s] %3d%% (%s/%s)",
		p.title,
		bar,
		pct,
		humanize.IBytes(uint64(p.current)),
		humanize.IBytes(uint64(p.total)),
	)
}
