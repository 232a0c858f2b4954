package events

// Handler consumes one queued event on the UI loop with its owner as ctx
type Handler[T any] func(ctx T, ev GameEvent)

// Router drains the queue once per frame and fans each event out by type
//
// Handlers for one type run in the order they were added. Events of a type
// nobody routes are consumed and counted in Unrouted.
type Router[T any] struct {
	queue    *EventQueue
	routes   map[EventType][]Handler[T]
	unrouted int
}

// NewRouter creates a router draining queue
func NewRouter[T any](queue *EventQueue) *Router[T] {
	return &Router[T]{
		queue:  queue,
		routes: make(map[EventType][]Handler[T]),
	}
}

// On routes every listed type to h and returns the router for chaining
func (r *Router[T]) On(h Handler[T], types ...EventType) *Router[T] {
	for _, t := range types {
		r.routes[t] = append(r.routes[t], h)
	}
	return r
}

// Routes returns how many handlers receive t
func (r *Router[T]) Routes(t EventType) int {
	return len(r.routes[t])
}

// Unrouted returns how many consumed events had no handler
func (r *Router[T]) Unrouted() int {
	return r.unrouted
}

// DispatchAll drains the queue and returns the number of events consumed
func (r *Router[T]) DispatchAll(ctx T) int {
	batch := r.queue.Consume()
	for _, ev := range batch {
		hs := r.routes[ev.Type]
		if len(hs) == 0 {
			r.unrouted++
			continue
		}
		for _, h := range hs {
			h(ctx, ev)
		}
	}
	return len(batch)
}
