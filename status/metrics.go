package status

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// MaxLabelLen bounds stored label values, in bytes
const MaxLabelLen = 32

// Float is an atomic float64; the zero value reads 0
type Float struct {
	bits atomic.Uint64
}

// Set stores v
func (f *Float) Set(v float64) { f.bits.Store(math.Float64bits(v)) }

// Load returns the stored value
func (f *Float) Load() float64 { return math.Float64frombits(f.bits.Load()) }

// Label is an atomic short string; the zero value reads ""
type Label struct {
	ptr atomic.Pointer[string]
}

// Store sets the label, truncated to MaxLabelLen
func (l *Label) Store(v string) {
	if len(v) > MaxLabelLen {
		v = v[:MaxLabelLen]
	}
	l.ptr.Store(&v)
}

// Load returns the label
func (l *Label) Load() string {
	if p := l.ptr.Load(); p != nil {
		return *p
	}
	return ""
}

// table maps names to lazily allocated metrics
// Lookup takes a lock; the returned pointer is written lock-free
type table[T any] struct {
	mu    sync.RWMutex
	items map[string]*T
}

func (t *table[T]) get(name string) *T {
	t.mu.RLock()
	p, ok := t.items[name]
	t.mu.RUnlock()
	if ok {
		return p
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if p, ok := t.items[name]; ok {
		return p
	}
	if t.items == nil {
		t.items = make(map[string]*T)
	}
	p = new(T)
	t.items[name] = p
	return p
}

// each visits metrics in name order
func (t *table[T]) each(fn func(name string, p *T)) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.items))
	for n := range t.items {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fn(n, t.items[n])
	}
}

func (t *table[T]) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.items)
}

// Registry holds named session metrics
// Components look a metric up once and keep the pointer
type Registry struct {
	counters table[atomic.Int64]
	gauges   table[Float]
	labels   table[Label]
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Counter returns the named counter, creating it on first use
func (r *Registry) Counter(name string) *atomic.Int64 { return r.counters.get(name) }

// Gauge returns the named gauge, creating it on first use
func (r *Registry) Gauge(name string) *Float { return r.gauges.get(name) }

// Label returns the named label, creating it on first use
func (r *Registry) Label(name string) *Label { return r.labels.get(name) }

// Len returns the number of registered metrics
func (r *Registry) Len() int {
	return r.counters.len() + r.gauges.len() + r.labels.len()
}

// Fields renders every metric as a zap field, counters first, each group sorted
func (r *Registry) Fields() []zap.Field {
	fields := make([]zap.Field, 0, r.Len())
	r.counters.each(func(n string, p *atomic.Int64) { fields = append(fields, zap.Int64(n, p.Load())) })
	r.gauges.each(func(n string, p *Float) { fields = append(fields, zap.Float64(n, p.Load())) })
	r.labels.each(func(n string, p *Label) { fields = append(fields, zap.String(n, p.Load())) })
	return fields
}
