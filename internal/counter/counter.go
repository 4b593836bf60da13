// Package counter animates numeric displays from zero to a target.
package counter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"
)

// Mode selects how the step count is derived.
type Mode int

const (
	// ModeTick steps every TickInterval; the step count follows the duration.
	ModeTick Mode = iota
	// ModeSteps uses a fixed step count; the tick follows the duration.
	ModeSteps
)

const (
	TickInterval = 16 * time.Millisecond
	FixedSteps   = 60
	// NavbarSteps is the step count of the running total in the navigation bar.
	NavbarSteps = 125

	// MaxDuration and MaxSteps bound a plan; schedule clamps to them.
	MaxDuration = time.Minute
	MaxSteps    = int(MaxDuration / time.Millisecond)
)

// ErrInvalidPlan is returned by Plan.Validate.
var ErrInvalidPlan = errors.New("invalid counter plan")

// Plan describes one animation.
type Plan struct {
	Target   int64
	Duration time.Duration
	Mode     Mode
	Steps    int // ModeSteps only; zero means FixedSteps
	Prefix   string
	Suffix   string
}

// Validate rejects durations and step counts outside the supported bounds.
func (p Plan) Validate() error {
	if p.Duration <= 0 || p.Duration > MaxDuration {
		return fmt.Errorf("%w: duration %v must be between 0 and %v", ErrInvalidPlan, p.Duration, MaxDuration)
	}
	if p.Mode == ModeSteps && (p.Steps < 0 || p.Steps > MaxSteps) {
		return fmt.Errorf("%w: steps %d must be between 0 and %d", ErrInvalidPlan, p.Steps, MaxSteps)
	}
	return nil
}

// schedule returns the step count and tick for the plan.
func (p Plan) schedule() (int, time.Duration) {
	if p.Duration > MaxDuration {
		p.Duration = MaxDuration
	}
	switch p.Mode {
	case ModeSteps:
		steps := p.Steps
		if steps <= 0 {
			steps = FixedSteps
		}
		if steps > MaxSteps {
			steps = MaxSteps
		}
		tick := p.Duration / time.Duration(steps)
		if tick <= 0 {
			tick = time.Millisecond
		}
		return steps, tick
	default:
		steps := int(p.Duration / TickInterval)
		if steps < 1 {
			steps = 1
		}
		return steps, TickInterval
	}
}

// Frames returns the displayed values in order. Values never decrease, never
// exceed Target, and the last one is exactly Target.
func Frames(p Plan) []int64 {
	target := p.Target
	if target < 0 {
		target = 0
	}
	steps, _ := p.schedule()
	n := int64(steps)
	q, r := target/n, target%n
	out := make([]int64, steps)
	for i := int64(1); i <= n; i++ {
		// floor(target*i/n) without overflowing target*i
		out[i-1] = q*i + r*i/n
	}
	return out
}

// Frame is one rendered step.
type Frame struct {
	Key   string
	Value int64
	Text  string
	Final bool
}

// Sink receives frames in order from the animation goroutine.
type Sink func(Frame)

type run struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Animator tracks in-flight animations by display key so a key never has two
// timers writing to it.
type Animator struct {
	format func(int64) string

	mu       sync.Mutex
	inflight map[string]*run
}

// NewAnimator uses format for the numeric part of each frame. Nil means plain digits.
func NewAnimator(format func(int64) string) *Animator {
	if format == nil {
		format = func(n int64) string { return strconv.FormatInt(n, 10) }
	}
	return &Animator{format: format, inflight: make(map[string]*run)}
}

// Text renders a value the way frames show it.
func (a *Animator) Text(p Plan, v int64) string {
	return p.Prefix + a.format(v) + p.Suffix
}

// Animate cancels any animation running for key, then starts a new one. The
// returned channel closes when the animation ends or is cancelled.
func (a *Animator) Animate(ctx context.Context, key string, p Plan, sink Sink) <-chan struct{} {
	ctx, cancel := context.WithCancel(ctx)
	r := &run{cancel: cancel, done: make(chan struct{})}

	a.mu.Lock()
	prev := a.inflight[key]
	a.inflight[key] = r
	a.mu.Unlock()

	if prev != nil {
		prev.cancel()
		<-prev.done
	}

	go a.run(ctx, key, r, p, sink)
	return r.done
}

func (a *Animator) run(ctx context.Context, key string, r *run, p Plan, sink Sink) {
	defer close(r.done)
	defer func() {
		a.mu.Lock()
		if a.inflight[key] == r {
			delete(a.inflight, key)
		}
		a.mu.Unlock()
		r.cancel()
	}()

	frames := Frames(p)
	_, tick := p.schedule()
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for i, v := range frames {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		sink(Frame{Key: key, Value: v, Text: a.Text(p, v), Final: i == len(frames)-1})
	}
}

// Stop cancels the animation for key and waits for it to finish.
func (a *Animator) Stop(key string) {
	a.mu.Lock()
	r := a.inflight[key]
	a.mu.Unlock()
	if r == nil {
		return
	}
	r.cancel()
	<-r.done
}

// StopAll cancels every in-flight animation and waits for them.
func (a *Animator) StopAll() {
	a.mu.Lock()
	runs := make([]*run, 0, len(a.inflight))
	for _, r := range a.inflight {
		runs = append(runs, r)
	}
	a.mu.Unlock()
	for _, r := range runs {
		r.cancel()
		<-r.done
	}
}

// Active returns the number of in-flight animations.
func (a *Animator) Active() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.inflight)
}
