package rotator

import "sync"

// EventKind names a spotlight transition.
type EventKind string

const (
	EventOpacity EventKind = "opacity"
	EventText    EventKind = "text"
)

type Event struct {
	Kind    EventKind
	Opacity float64
	Text    string
}

// Broadcast is a Display that fans transitions out to subscribers. A slow
// subscriber misses events instead of blocking the rotator.
type Broadcast struct {
	mu      sync.Mutex
	subs    map[chan Event]struct{}
	text    string
	opacity float64
	dropped uint64
}

const subscriberBuffer = 8

func NewBroadcast() *Broadcast {
	return &Broadcast{subs: make(map[chan Event]struct{})}
}

var _ Display = (*Broadcast)(nil)

func (b *Broadcast) SetOpacity(o float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opacity = o
	b.publish(Event{Kind: EventOpacity, Opacity: o})
}

func (b *Broadcast) SetText(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = s
	b.publish(Event{Kind: EventText, Text: s})
}

// publish must be called with mu held.
func (b *Broadcast) publish(ev Event) {
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.dropped++
		}
	}
}

// Subscribe returns a channel primed with the current text and a cancel func
// that must be called once the subscriber is done.
func (b *Broadcast) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	if b.text != "" {
		ch <- Event{Kind: EventText, Text: b.text}
		ch <- Event{Kind: EventOpacity, Opacity: b.opacity}
	}
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
		})
	}
}

// Current returns the last text shown.
func (b *Broadcast) Current() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

// Reset clears the current text, used when the spotlight goes idle.
func (b *Broadcast) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = ""
	b.opacity = 0
}

func (b *Broadcast) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Dropped counts events not delivered to full subscriber buffers.
func (b *Broadcast) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
