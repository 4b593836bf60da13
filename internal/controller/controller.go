// Package controller owns the page state: it runs the load, publishes the
// aggregated result, and holds the handles of every timer it starts.
package controller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"charity/internal/core"
	"charity/internal/counter"
	"charity/internal/log"
	"charity/internal/rotator"
	"charity/internal/site"
	"charity/internal/view"
)

// Status is the lifecycle of a load.
type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "loading"
	}
}

// State is an immutable snapshot. Generation increases each time a load completes.
type State struct {
	Status     Status
	Dataset    core.Dataset
	Stats      core.Stats
	Err        error
	Generation uint64
	LoadedAt   time.Time
}

// Done reports whether the load has finished, successfully or not.
func (s State) Done() bool {
	return s.Status != StatusLoading
}

// Loader produces the dataset. *loader.Loader satisfies it.
type Loader interface {
	Load(ctx context.Context) (core.Dataset, error)
}

type Options struct {
	Loader            Loader
	Renderer          *view.Renderer
	Settings          site.Settings
	Backend           string
	SpotlightInterval time.Duration
	SpotlightFade     time.Duration
	CounterDuration   time.Duration
	Logger            *log.Logger
}

type Controller struct {
	loader   Loader
	renderer *view.Renderer
	settings site.Settings
	backend  string

	interval        time.Duration
	fade            time.Duration
	counterDuration time.Duration

	spotlight *rotator.Broadcast
	counters  *counter.Animator
	logger    *log.Logger
	events    *log.StructuredLogger

	state atomic.Pointer[State]

	mu  sync.Mutex // serialises Init and Teardown
	rot *rotator.Rotator
}

func New(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = view.NewRenderer(view.NewFormatter("$", "en-US"))
	}
	if opts.CounterDuration <= 0 {
		opts.CounterDuration = 2 * time.Second
	}
	c := &Controller{
		loader:          opts.Loader,
		renderer:        renderer,
		settings:        opts.Settings,
		backend:         opts.Backend,
		interval:        opts.SpotlightInterval,
		fade:            opts.SpotlightFade,
		counterDuration: opts.CounterDuration,
		spotlight:       rotator.NewBroadcast(),
		counters:        counter.NewAnimator(renderer.Format.Number),
		logger:          logger.WithComponent(log.ComponentApp),
		events:          log.NewStructuredLogger(logger.WithComponent(log.ComponentLoader)),
	}
	c.state.Store(&State{Status: StatusLoading})
	return c
}

// Init loads and aggregates, publishes the result, then starts the spotlight
// when there is at least one named donor. Calling Init again stops the
// previous spotlight before anything else happens.
func (c *Controller) Init(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopSpotlight()
	prev := c.state.Load()
	c.state.Store(&State{Status: StatusLoading, Generation: prev.Generation})

	ds, err := c.loader.Load(ctx)
	next := &State{Generation: prev.Generation + 1, LoadedAt: time.Now()}
	if err != nil {
		next.Status = StatusFailed
		next.Err = err
		c.state.Store(next)
		c.events.LogError(ctx, "Donor data failed to load", err, log.OpLoad, log.NewFields().WithComponent(log.ComponentLoader))
		return err
	}

	next.Status = StatusReady
	next.Dataset = ds
	next.Stats = core.Aggregate(ds)
	c.state.Store(next)
	c.events.LogDatasetLoaded(ctx, c.backend, next.Stats.TotalDonorCount, len(ds.Silent()), next.Stats.GrandTotal.Cents, next.Generation)

	if lines := c.renderer.SpotlightLines(ds); len(lines) > 0 {
		c.rot = rotator.New(lines, c.spotlight, c.interval, c.fade)
		// the spotlight outlives the request that triggered the load
		c.rot.Start(context.WithoutCancel(ctx))
	}
	return nil
}

// Teardown stops the spotlight and every counter animation.
func (c *Controller) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopSpotlight()
	c.counters.StopAll()
	c.logger.Info("Controller stopped", log.FieldOperation, log.OpShutdown)
}

func (c *Controller) stopSpotlight() {
	if c.rot != nil {
		c.rot.Stop()
		c.rot = nil
	}
	c.spotlight.Reset()
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	return *c.state.Load()
}

func (c *Controller) Renderer() *view.Renderer { return c.renderer }

func (c *Controller) Settings() site.Settings { return c.settings }

// Spotlight is the display the rotator writes to; SSE clients subscribe here.
func (c *Controller) Spotlight() *rotator.Broadcast { return c.spotlight }

func (c *Controller) Counters() *counter.Animator { return c.counters }

// SpotlightRunning reports whether the rotator is cycling.
func (c *Controller) SpotlightRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rot != nil && c.rot.Running()
}
