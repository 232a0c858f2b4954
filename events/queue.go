package events

import (
	"sync/atomic"
	"time"

	"github.com/lixenwraith/heartscroll/constants"
)

type slot struct {
	ev    GameEvent
	ready atomic.Bool // Set after ev is fully written
}

// EventQueue carries app events from background producers to the UI loop
//
// Producers: content fetch goroutines, the content watcher, the audio player
// Consumer: the UI loop, once per frame
//
// Push never blocks. When the ring is full the oldest unread event is lost.
// Consume drops content events already superseded by a newer load generation
// in the same batch.
type EventQueue struct {
	slots [constants.EventQueueSize]slot
	read  atomic.Uint64
	write atomic.Uint64
	stale atomic.Uint64
}

// NewEventQueue creates an empty queue
func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

// Push appends event; safe for concurrent producers
func (eq *EventQueue) Push(event GameEvent) {
	pos := eq.write.Add(1) - 1
	s := &eq.slots[pos&constants.EventBufferMask]
	s.ev = event
	s.ready.Store(true)

	// Full ring: pull the read cursor past the overwritten slot
	for {
		r := eq.read.Load()
		if r >= pos+1 || pos+1-r <= constants.EventQueueSize || eq.read.CompareAndSwap(r, pos+1-constants.EventQueueSize) {
			return
		}
	}
}

// PushContent queues a per-section content notification
func (eq *EventQueue) PushContent(t EventType, p ContentPayload) {
	eq.Push(GameEvent{Type: t, Payload: &p, Timestamp: time.Now()})
}

// PushAudioFailed queues an audio backend failure
func (eq *EventQueue) PushAudioFailed(reason string) {
	eq.Push(GameEvent{
		Type:      EventAudioFailed,
		Payload:   &AudioFailedPayload{Reason: reason},
		Timestamp: time.Now(),
	})
}

// PushSectionChange queues a committed transition stamped with its frame
func (eq *EventQueue) PushSectionChange(change SectionChange, frame int64, at time.Time) {
	eq.Push(GameEvent{Type: EventSectionChange, Payload: &change, Frame: frame, Timestamp: at})
}

// Consume drains pending events in FIFO order; single consumer only
func (eq *EventQueue) Consume() []GameEvent {
	start := eq.read.Load()
	end := eq.write.Load()
	if end == start {
		return nil
	}
	if end-start > constants.EventQueueSize {
		start = end - constants.EventQueueSize
	}

	batch := make([]GameEvent, 0, end-start)
	pos := start
	for ; pos < end; pos++ {
		s := &eq.slots[pos&constants.EventBufferMask]
		if !s.ready.Load() {
			break // Producer still writing
		}
		batch = append(batch, s.ev)
		s.ready.Store(false)
	}

	for {
		r := eq.read.Load()
		if r >= pos || eq.read.CompareAndSwap(r, pos) {
			break
		}
	}

	if len(batch) == 0 {
		return nil
	}
	return eq.coalesce(batch)
}

// coalesce removes content events whose generation is older than the newest
// generation seen in the batch; other events pass through untouched
func (eq *EventQueue) coalesce(batch []GameEvent) []GameEvent {
	var newest int64
	for _, ev := range batch {
		if p, ok := contentPayload(ev); ok && p.Generation > newest {
			newest = p.Generation
		}
	}
	if newest == 0 {
		return batch
	}

	out := batch[:0]
	for _, ev := range batch {
		if p, ok := contentPayload(ev); ok && p.Generation > 0 && p.Generation < newest {
			eq.stale.Add(1)
			continue
		}
		out = append(out, ev)
	}
	return out
}

func contentPayload(ev GameEvent) (*ContentPayload, bool) {
	switch ev.Type {
	case EventContentLoaded, EventContentFailed, EventContentReloaded:
		p, ok := ev.Payload.(*ContentPayload)
		return p, ok && p != nil
	}
	return nil, false
}

// Len reports the number of unconsumed events, approximate under concurrent pushes
func (eq *EventQueue) Len() int {
	n := eq.write.Load() - eq.read.Load()
	if n > constants.EventQueueSize {
		n = constants.EventQueueSize
	}
	return int(n)
}

// Stale returns how many content events Consume dropped as superseded
func (eq *EventQueue) Stale() uint64 {
	return eq.stale.Load()
}
