package events

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ErrorDeliveryTimeout bounds how long Emit waits on a full subscriber for a
// serial-error event before dropping it.
const ErrorDeliveryTimeout = 100 * time.Millisecond

// Bus fans events out to any number of subscribers. Each subscriber has its
// own buffered channel; when a subscriber falls behind, serial-message events
// for it are dropped rather than stalling the reader. Serial-error events
// wait up to ErrorDeliveryTimeout for room first.
type Bus struct {
	mu        sync.RWMutex
	subs      map[int]chan Event
	next      int
	dropped   atomic.Uint64
	errorWait time.Duration
	log       *zap.SugaredLogger
}

// NewBus creates a bus. A nil logger disables logging.
func NewBus(log *zap.SugaredLogger) *Bus {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Bus{
		subs:      make(map[int]chan Event),
		errorWait: ErrorDeliveryTimeout,
		log:       log,
	}
}

// Subscribe registers a subscriber with the given buffer size. The returned
// cancel function unregisters it and closes the channel.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Emit delivers e to every subscriber. Serial messages never block; a serial
// error blocks at most ErrorDeliveryTimeout per full subscriber.
func (b *Bus) Emit(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subs {
		if b.deliver(ch, e) {
			continue
		}
		n := b.dropped.Add(1)
		b.log.Debugw("subscriber full, event dropped",
			"subscriber", id, "kind", e.Kind.String(), "dropped_total", n)
	}
}

func (b *Bus) deliver(ch chan Event, e Event) bool {
	select {
	case ch <- e:
		return true
	default:
	}
	if e.Kind != SerialError || b.errorWait <= 0 {
		return false
	}

	timer := time.NewTimer(b.errorWait)
	defer timer.Stop()
	select {
	case ch <- e:
		return true
	case <-timer.C:
		return false
	}
}

// Dropped returns how many deliveries were skipped because a subscriber was full
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// Subscribers returns the number of registered subscribers
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
