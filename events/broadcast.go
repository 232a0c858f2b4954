package events

import (
	"sync"

	"go.uber.org/zap"
)

// SectionChange is emitted once per committed transition
// Progress carries the completed transition's final eased progress (always 1)
type SectionChange struct {
	From     int
	To       int
	Progress float64
}

// Listener receives committed section changes
// Implementations must be idempotent and ignore indices outside their own range
type Listener interface {
	OnSectionChange(ev SectionChange)
}

// ListenerFunc adapts a plain function to Listener
type ListenerFunc func(ev SectionChange)

// OnSectionChange implements Listener
func (f ListenerFunc) OnSectionChange(ev SectionChange) { f(ev) }

// Subscription is the handle returned by Subscribe
type Subscription struct {
	id uint64
	b  *Broadcaster
}

// Unsubscribe detaches the listener. Safe to call more than once and from inside a listener
func (s *Subscription) Unsubscribe() {
	if s == nil || s.b == nil {
		return
	}
	s.b.remove(s.id)
	s.b = nil
}

type entry struct {
	id       uint64
	listener Listener
}

// Broadcaster delivers SectionChange to any number of listeners
// Dispatch is fire-and-forget: zero listeners is fine, a panicking listener is
// recovered and logged, and no acknowledgement is awaited
type Broadcaster struct {
	mu        sync.RWMutex
	listeners []entry
	nextID    uint64
	logger    *zap.Logger
}

// NewBroadcaster creates a broadcaster; nil logger disables panic logging
func NewBroadcaster(logger *zap.Logger) *Broadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broadcaster{logger: logger}
}

// Subscribe registers a listener; listeners are called in subscription order
func (b *Broadcaster) Subscribe(l Listener) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.listeners = append(b.listeners, entry{id: b.nextID, listener: l})
	return &Subscription{id: b.nextID, b: b}
}

// Emit delivers ev to a snapshot of the current listeners
func (b *Broadcaster) Emit(ev SectionChange) {
	b.mu.RLock()
	snapshot := make([]entry, len(b.listeners))
	copy(snapshot, b.listeners)
	b.mu.RUnlock()

	for _, e := range snapshot {
		b.deliver(e, ev)
	}
}

// ListenerCount returns the number of attached listeners
func (b *Broadcaster) ListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

func (b *Broadcaster) deliver(e entry, ev SectionChange) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn("section change listener panicked",
				zap.Uint64("listener", e.id),
				zap.Int("from", ev.From),
				zap.Int("to", ev.To),
				zap.Any("panic", r))
		}
	}()
	e.listener.OnSectionChange(ev)
}

func (b *Broadcaster) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.listeners {
		if e.id == id {
			b.listeners = append(b.listeners[:i:i], b.listeners[i+1:]...)
			return
		}
	}
}
