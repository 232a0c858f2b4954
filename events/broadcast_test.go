package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestBroadcaster_NoListeners(t *testing.T) {
	b := NewBroadcaster(nil)
	assert.NotPanics(t, func() {
		b.Emit(SectionChange{From: 0, To: 1, Progress: 1})
	})
	assert.Equal(t, 0, b.ListenerCount())
}

func TestBroadcaster_DeliversInSubscriptionOrder(t *testing.T) {
	b := NewBroadcaster(nil)

	var order []string
	b.Subscribe(ListenerFunc(func(ev SectionChange) { order = append(order, "first") }))
	b.Subscribe(ListenerFunc(func(ev SectionChange) { order = append(order, "second") }))

	b.Emit(SectionChange{From: 1, To: 2, Progress: 1})
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestBroadcaster_Unsubscribe(t *testing.T) {
	b := NewBroadcaster(nil)

	var got []SectionChange
	sub := b.Subscribe(ListenerFunc(func(ev SectionChange) { got = append(got, ev) }))
	b.Emit(SectionChange{From: 0, To: 1, Progress: 1})

	sub.Unsubscribe()
	sub.Unsubscribe()
	b.Emit(SectionChange{From: 1, To: 2, Progress: 1})

	assert.Equal(t, []SectionChange{{From: 0, To: 1, Progress: 1}}, got)
	assert.Equal(t, 0, b.ListenerCount())
}

func TestBroadcaster_UnsubscribeInsideListener(t *testing.T) {
	b := NewBroadcaster(nil)

	calls := 0
	var sub *Subscription
	sub = b.Subscribe(ListenerFunc(func(ev SectionChange) {
		calls++
		sub.Unsubscribe()
	}))
	other := 0
	b.Subscribe(ListenerFunc(func(ev SectionChange) { other++ }))

	b.Emit(SectionChange{From: 0, To: 1})
	b.Emit(SectionChange{From: 1, To: 2})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, other)
}

func TestBroadcaster_PanickingListenerContained(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	b := NewBroadcaster(zap.New(core))

	b.Subscribe(ListenerFunc(func(ev SectionChange) { panic("boom") }))
	delivered := false
	b.Subscribe(ListenerFunc(func(ev SectionChange) { delivered = true }))

	assert.NotPanics(t, func() {
		b.Emit(SectionChange{From: 2, To: 3, Progress: 1})
	})
	assert.True(t, delivered, "later listeners still receive the event")
	assert.Equal(t, 1, logs.FilterMessage("section change listener panicked").Len())
}
