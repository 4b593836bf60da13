// Package rotator cycles the donor spotlight line on a fixed interval.
package rotator

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultInterval = 3 * time.Second
	DefaultFade     = 300 * time.Millisecond
)

// Display receives spotlight transitions.
type Display interface {
	SetOpacity(float64)
	SetText(string)
}

// Rotator is idle until started with at least one line. It owns at most one
// goroutine; Start on a running rotator replaces it.
type Rotator struct {
	interval time.Duration
	fade     time.Duration
	lines    []string
	display  Display

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	index  int
}

func New(lines []string, display Display, interval, fade time.Duration) *Rotator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if fade < 0 || fade >= interval {
		fade = DefaultFade
	}
	return &Rotator{
		interval: interval,
		fade:     fade,
		lines:    append([]string(nil), lines...),
		display:  display,
	}
}

// Start shows the first line immediately and then advances every interval.
// With no lines the rotator stays idle and no timer is armed.
func (r *Rotator) Start(ctx context.Context) {
	r.Stop()
	if len(r.lines) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.index = 0
	r.display.SetText(r.lines[0])
	r.display.SetOpacity(1)
	go r.run(ctx, r.done)
}

// Stop cancels the timer and waits for the goroutine to exit. Safe to call when idle.
func (r *Rotator) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the rotator is cycling.
func (r *Rotator) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

// Index returns the position of the line currently shown.
func (r *Rotator) Index() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index
}

func (r *Rotator) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	idx := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		idx = (idx + 1) % len(r.lines)
		r.display.SetOpacity(0)

		fade := time.NewTimer(r.fade)
		select {
		case <-ctx.Done():
			fade.Stop()
			return
		case <-fade.C:
		}

		r.display.SetText(r.lines[idx])
		r.display.SetOpacity(1)

		r.mu.Lock()
		r.index = idx
		r.mu.Unlock()
	}
}
