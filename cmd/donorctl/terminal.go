package main

import (
	"fmt"
	"io"
	"sync"
)

// terminalDisplay prints each spotlight line and signals Done after limit
// lines. Opacity changes have no terminal equivalent and are ignored.
type terminalDisplay struct {
	out   io.Writer
	limit int

	mu    sync.Mutex
	shown int
	done  chan struct{}
}

func newTerminalDisplay(out io.Writer, limit int) *terminalDisplay {
	return &terminalDisplay{out: out, limit: limit, done: make(chan struct{})}
}

func (d *terminalDisplay) SetOpacity(float64) {}

func (d *terminalDisplay) SetText(s string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.shown >= d.limit {
		return
	}
	fmt.Fprintln(d.out, s)
	d.shown++
	if d.shown == d.limit {
		close(d.done)
	}
}

// Done closes once limit lines have been printed.
func (d *terminalDisplay) Done() <-chan struct{} {
	return d.done
}
