package counter

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestFramesReachTargetExactly(t *testing.T) {
	tests := []struct {
		name      string
		plan      Plan
		wantSteps int
	}{
		{"tick mode 2s", Plan{Target: 45460, Duration: 2 * time.Second, Mode: ModeTick}, 125},
		{"fixed steps", Plan{Target: 5420, Duration: 2 * time.Second, Mode: ModeSteps}, FixedSteps},
		{"navbar steps", Plan{Target: 125000, Duration: 2 * time.Second, Mode: ModeSteps, Steps: NavbarSteps}, NavbarSteps},
		{"target smaller than steps", Plan{Target: 7, Duration: time.Second, Mode: ModeSteps}, FixedSteps},
		{"zero target", Plan{Target: 0, Duration: time.Second, Mode: ModeTick}, 62},
		{"duration shorter than a tick", Plan{Target: 10, Duration: time.Millisecond, Mode: ModeTick}, 1},
		{"huge target", Plan{Target: math.MaxInt64, Duration: time.Second, Mode: ModeSteps}, FixedSteps},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frames := Frames(tt.plan)
			if len(frames) != tt.wantSteps {
				t.Fatalf("steps = %d, want %d", len(frames), tt.wantSteps)
			}
			var prev int64
			for i, v := range frames {
				if v < prev {
					t.Fatalf("frame %d decreased: %d < %d", i, v, prev)
				}
				if v > tt.plan.Target {
					t.Fatalf("frame %d overshoots: %d > %d", i, v, tt.plan.Target)
				}
				prev = v
			}
			if last := frames[len(frames)-1]; last != tt.plan.Target {
				t.Fatalf("last frame = %d, want %d", last, tt.plan.Target)
			}
		})
	}
}

func TestFramesNegativeTargetClampsToZero(t *testing.T) {
	for _, v := range Frames(Plan{Target: -5, Duration: time.Second, Mode: ModeSteps}) {
		if v != 0 {
			t.Fatalf("negative target produced %d", v)
		}
	}
}

type collector struct {
	mu     sync.Mutex
	frames []Frame
}

func (c *collector) sink(f Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, f)
}

func (c *collector) all() []Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Frame(nil), c.frames...)
}

func TestAnimateFormatsFrames(t *testing.T) {
	a := NewAnimator(nil)
	c := &collector{}
	done := a.Animate(context.Background(), "money", Plan{
		Target: 1200, Duration: 30 * time.Millisecond, Mode: ModeSteps, Steps: 3, Prefix: "$", Suffix: "+",
	}, c.sink)
	<-done

	got := c.all()
	if len(got) != 3 {
		t.Fatalf("frames = %d, want 3", len(got))
	}
	if got[0].Text != "$400+" || got[2].Text != "$1200+" || !got[2].Final {
		t.Fatalf("unexpected frames: %+v", got)
	}
	if a.Active() != 0 {
		t.Fatalf("finished animation still registered")
	}
}

func TestReanimateReplacesInFlight(t *testing.T) {
	a := NewAnimator(nil)
	first := &collector{}
	second := &collector{}

	done1 := a.Animate(context.Background(), "money", Plan{Target: 100, Duration: time.Hour, Mode: ModeSteps, Steps: 2}, first.sink)
	done2 := a.Animate(context.Background(), "money", Plan{Target: 50, Duration: 20 * time.Millisecond, Mode: ModeSteps, Steps: 2}, second.sink)

	select {
	case <-done1:
	default:
		t.Fatal("first animation should be finished before the second starts")
	}
	<-done2

	if len(first.all()) != 0 {
		t.Fatalf("replaced animation kept writing: %+v", first.all())
	}
	if f := second.all(); len(f) != 2 || f[1].Value != 50 {
		t.Fatalf("replacement frames: %+v", f)
	}
}

func TestDifferentKeysRunIndependently(t *testing.T) {
	a := NewAnimator(nil)
	c := &collector{}
	d1 := a.Animate(context.Background(), "money", Plan{Target: 10, Duration: 20 * time.Millisecond, Mode: ModeSteps, Steps: 2}, c.sink)
	d2 := a.Animate(context.Background(), "people", Plan{Target: 20, Duration: 20 * time.Millisecond, Mode: ModeSteps, Steps: 2}, c.sink)
	<-d1
	<-d2
	if len(c.all()) != 4 {
		t.Fatalf("expected 4 frames across both keys, got %d", len(c.all()))
	}
}

func TestStopAndStopAll(t *testing.T) {
	a := NewAnimator(nil)
	slow := Plan{Target: 100, Duration: time.Hour, Mode: ModeSteps, Steps: 2}
	a.Animate(context.Background(), "a", slow, func(Frame) {})
	a.Animate(context.Background(), "b", slow, func(Frame) {})
	a.Animate(context.Background(), "c", slow, func(Frame) {})

	a.Stop("a")
	if a.Active() != 2 {
		t.Fatalf("active = %d after Stop, want 2", a.Active())
	}
	a.Stop("missing")
	a.StopAll()
	if a.Active() != 0 {
		t.Fatalf("active = %d after StopAll, want 0", a.Active())
	}
}

func TestContextCancelEndsAnimation(t *testing.T) {
	a := NewAnimator(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := a.Animate(ctx, "x", Plan{Target: 1, Duration: time.Hour, Mode: ModeSteps, Steps: 2}, func(Frame) {})
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("animation ignored context cancellation")
	}
}

func TestPlanBounds(t *testing.T) {
	if got := len(Frames(Plan{Target: 10, Duration: 1000 * time.Hour, Mode: ModeTick})); got != int(MaxDuration/TickInterval) {
		t.Errorf("oversized tick plan has %d frames, want %d", got, int(MaxDuration/TickInterval))
	}
	if got := len(Frames(Plan{Target: 10, Duration: time.Second, Mode: ModeSteps, Steps: math.MaxInt32})); got != MaxSteps {
		t.Errorf("oversized step plan has %d frames, want %d", got, MaxSteps)
	}

	valid := []Plan{
		{Duration: 2 * time.Second},
		{Duration: MaxDuration, Mode: ModeSteps, Steps: MaxSteps},
	}
	for _, p := range valid {
		if err := p.Validate(); err != nil {
			t.Errorf("Validate(%+v) = %v", p, err)
		}
	}
	invalid := []Plan{
		{Duration: 0},
		{Duration: MaxDuration + time.Millisecond},
		{Duration: time.Second, Mode: ModeSteps, Steps: MaxSteps + 1},
		{Duration: time.Second, Mode: ModeSteps, Steps: -1},
	}
	for _, p := range invalid {
		if err := p.Validate(); !errors.Is(err, ErrInvalidPlan) {
			t.Errorf("Validate(%+v) = %v, want ErrInvalidPlan", p, err)
		}
	}
}
