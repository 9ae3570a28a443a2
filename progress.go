package geofilm

import (
	"fmt"
	"io"
)

// Progress rewrites one terminal status line as work advances, in the
// shape "label: 42.00% (21 out of 50)".
type Progress struct {
	w     io.Writer
	label string
	total int
	done  int
}

// NewProgress returns a progress line writing to w. A nil writer or a
// non-positive total silences it.
func NewProgress(w io.Writer, label string, total int) *Progress {
	return &Progress{w: w, label: label, total: total}
}

// Step advances the count by one and redraws the line.
func (p *Progress) Step() {
	p.Set(p.done + 1)
}

// Set moves the count to done and redraws the line.
func (p *Progress) Set(done int) {
	p.done = done
	if p.w == nil || p.total <= 0 {
		return
	}
	pct := float64(p.done) / float64(p.total) * 100
	fmt.Fprintf(p.w, "\r%s: %.2f%% (%d out of %d)", p.label, pct, p.done, p.total)
}

// Done terminates the status line.
func (p *Progress) Done() {
	if p.w == nil || p.total <= 0 {
		return
	}
	fmt.Fprintln(p.w)
}
