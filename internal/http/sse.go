package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"charity/internal/controller"
	"charity/internal/counter"
	"charity/internal/log"
	"charity/internal/rotator"
)

const (
	keepAliveInterval = 15 * time.Second
	loadingRetry      = time.Second
	// frames waiting to be written for one counter stream
	frameBuffer = 64
)

var errStreamingUnsupported = errors.New("streaming unsupported")

var streamSeq atomic.Uint64

// eventStream writes text/event-stream frames and flushes after each one.
type eventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newEventStream(w http.ResponseWriter) (*eventStream, error) {
	f, ok := w.(http.Flusher)
	if !ok {
		return nil, errStreamingUnsupported
	}
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-store")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	f.Flush()
	return &eventStream{w: w, flusher: f}, nil
}

// retry tells the browser how long to wait before reconnecting.
func (e *eventStream) retry(d time.Duration) error {
	_, err := fmt.Fprintf(e.w, "retry: %d\n\n", d.Milliseconds())
	e.flusher.Flush()
	return err
}

// event sends one named event with a JSON payload.
func (e *eventStream) event(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", name, err)
	}
	if _, err := fmt.Fprintf(e.w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return err
	}
	e.flusher.Flush()
	return nil
}

func (e *eventStream) ping() error {
	_, err := fmt.Fprint(e.w, ": ping\n\n")
	e.flusher.Flush()
	return err
}

type (
	statusEvent struct {
		Status     string `json:"status"`
		Generation uint64 `json:"generation"`
	}

	spotlightEvent struct {
		Text    string   `json:"text,omitempty"`
		Opacity *float64 `json:"opacity,omitempty"`
	}

	counterEvent struct {
		Key   string `json:"key"`
		Value int64  `json:"value"`
		Text  string `json:"text"`
		Final bool   `json:"final"`
	}
)

// handleSpotlightEvents streams rotator transitions. A failed load answers
// 204, which stops the browser from reconnecting.
func (s *Server) handleSpotlightEvents(w http.ResponseWriter, r *http.Request) {
	st := s.ctrl.Snapshot()
	if st.Status == controller.StatusFailed {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	ch, cancel := s.ctrl.Spotlight().Subscribe()
	defer cancel()

	stream, err := newEventStream(w)
	if err != nil {
		InternalServerError(err.Error()).Write(w)
		return
	}

	atomic.AddInt64(&s.appMetrics.spotlightStreams, 1)
	defer atomic.AddInt64(&s.appMetrics.spotlightStreams, -1)

	logger := log.FromContext(r.Context()).WithComponent(log.ComponentSSE)
	logger.DebugContext(r.Context(), "Spotlight stream opened",
		log.FieldSubscribers, s.ctrl.Spotlight().Subscribers())

	if err := stream.retry(3 * time.Second); err != nil {
		return
	}
	if err := stream.event("status", statusEvent{Status: st.Status.String(), Generation: st.Generation}); err != nil {
		return
	}

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			logger.DebugContext(ctx, "Spotlight stream closed")
			return
		case ev := <-ch:
			if err := stream.event(string(ev.Kind), toSpotlightEvent(ev)); err != nil {
				return
			}
		case <-keepAlive.C:
			if err := stream.ping(); err != nil {
				return
			}
		}
	}
}

func toSpotlightEvent(ev rotator.Event) spotlightEvent {
	if ev.Kind == rotator.EventOpacity {
		o := ev.Opacity
		return spotlightEvent{Opacity: &o}
	}
	return spotlightEvent{Text: singleLine(ev.Text)}
}

// handleCounterEvents animates every counter of a page and streams the
// frames, then sends done and closes. While the load is running it only
// sends the status with a short retry so the browser reconnects.
func (s *Server) handleCounterEvents(w http.ResponseWriter, r *http.Request) {
	page, err := ParsePage(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	st := s.ctrl.Snapshot()
	if st.Status == controller.StatusFailed {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	stream, err := newEventStream(w)
	if err != nil {
		InternalServerError(err.Error()).Write(w)
		return
	}
	if st.Status == controller.StatusLoading {
		_ = stream.retry(loadingRetry)
		_ = stream.event("status", statusEvent{Status: st.Status.String(), Generation: st.Generation})
		return
	}

	atomic.AddInt64(&s.appMetrics.counterStreams, 1)
	defer atomic.AddInt64(&s.appMetrics.counterStreams, -1)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	specs := s.ctrl.CounterSpecs(page)
	frames := s.animateCounters(ctx, specs)

	logger := log.FromContext(r.Context()).WithComponent(log.ComponentSSE)
	logger.DebugContext(ctx, "Counter stream opened", "page", page, "counters", len(specs))

	for f := range frames {
		ev := counterEvent{Key: f.Key, Value: f.Value, Text: f.Text, Final: f.Final}
		if err := stream.event("counter", ev); err != nil {
			logger.DebugContext(ctx, "Counter stream write failed", log.FieldError, err)
			return
		}
		atomic.AddInt64(&s.appMetrics.counterFrames, 1)
	}
	if ctx.Err() == nil {
		_ = stream.event("done", statusEvent{Status: st.Status.String(), Generation: st.Generation})
	}
}

// animateCounters starts one animation per counter under a key unique to this
// stream and merges their frames. The channel closes when all of them end.
func (s *Server) animateCounters(ctx context.Context, specs []controller.CounterSpec) <-chan counter.Frame {
	frames := make(chan counter.Frame, frameBuffer)
	prefix := "stream-" + strconv.FormatUint(streamSeq.Add(1), 10) + "/"
	animator := s.ctrl.Counters()

	var wg sync.WaitGroup
	for _, spec := range specs {
		key := spec.Key
		done := animator.Animate(ctx, prefix+key, spec.Plan, func(f counter.Frame) {
			f.Key = key
			select {
			case frames <- f:
			case <-ctx.Done():
			}
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-done
		}()
	}
	go func() {
		wg.Wait()
		close(frames)
	}()
	return frames
}
