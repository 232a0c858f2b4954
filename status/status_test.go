package status

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRegistry_PointersAreStable(t *testing.T) {
	r := NewRegistry()
	c := r.Counter("transitions.committed")
	c.Add(2)
	assert.Same(t, c, r.Counter("transitions.committed"))
	assert.Equal(t, int64(2), r.Counter("transitions.committed").Load())

	r.Gauge("tilt.x").Set(0.25)
	assert.Equal(t, 0.25, r.Gauge("tilt.x").Load())

	assert.Equal(t, "", r.Label("section.active").Load())
	assert.Equal(t, 3, r.Len())
}

func TestLabel_Truncates(t *testing.T) {
	var l Label
	l.Store("a-very-long-section-identifier-that-keeps-going")
	assert.Len(t, l.Load(), MaxLabelLen)
}

func TestRegistry_ConcurrentCounters(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Counter("input.accepted").Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(800), r.Counter("input.accepted").Load())
}

func TestRegistry_FieldsOrder(t *testing.T) {
	r := NewRegistry()
	r.Label("section.active").Store("letter")
	r.Counter("b").Add(1)
	r.Counter("a").Add(1)

	fields := r.Fields()
	require.Len(t, fields, 3)
	assert.Equal(t, "a", fields[0].Key)
	assert.Equal(t, "b", fields[1].Key)
	assert.Equal(t, "section.active", fields[2].Key)
}

func TestService_LogsSummaryOnce(t *testing.T) {
	obs, logs := observer.New(zapcore.InfoLevel)
	svc := NewService(zap.New(obs))

	require.NoError(t, svc.Init())
	require.NoError(t, svc.Start())
	svc.Registry().Counter("transitions.committed").Add(3)

	require.NoError(t, svc.Stop())
	require.NoError(t, svc.Stop())

	entries := logs.FilterMessage("session summary").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(3), entries[0].ContextMap()["transitions.committed"])
}
