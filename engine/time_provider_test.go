package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lixenwraith/heartscroll/constants"
)

func TestMonotonicTimeProvider(t *testing.T) {
	provider := NewMonotonicTimeProvider()

	t1 := provider.Now()
	time.Sleep(10 * time.Millisecond)
	t2 := provider.Now()

	assert.True(t, t2.After(t1), "expected t2 after t1, got t1=%v t2=%v", t1, t2)
	assert.GreaterOrEqual(t, t2.Sub(t1), 10*time.Millisecond)
}

func TestMockTimeProvider(t *testing.T) {
	startTime := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock := NewMockTimeProvider(startTime)

	assert.True(t, mock.Now().Equal(startTime))

	mock.Advance(250 * time.Millisecond)
	mock.Advance(750 * time.Millisecond)
	assert.True(t, mock.Now().Equal(startTime.Add(time.Second)))
	assert.Equal(t, time.Second, mock.Elapsed())
	assert.Equal(t, 0, mock.Frames(), "Advance does not count frames")
}

func TestMockTimeProviderStep(t *testing.T) {
	startTime := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock := NewMockTimeProvider(startTime)

	now := mock.Step(3)
	assert.True(t, now.Equal(startTime.Add(3*constants.FrameUpdateInterval)))
	assert.Equal(t, 3, mock.Frames())

	mock.Step(0)
	mock.Step(-2)
	assert.Equal(t, 3, mock.Frames(), "non-positive steps are ignored")

	mock.SetFrameInterval(10 * time.Millisecond)
	mock.Step(2)
	assert.Equal(t, 3*constants.FrameUpdateInterval+20*time.Millisecond, mock.Elapsed())
	assert.Equal(t, 5, mock.Frames())
}

func TestMockTimeProviderConcurrency(t *testing.T) {
	startTime := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock := NewMockTimeProvider(startTime)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = mock.Now()
			}
		}()
	}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				mock.Advance(time.Millisecond)
			}
		}()
	}
	wg.Wait()

	assert.True(t, mock.Now().Equal(startTime.Add(250*time.Millisecond)))
}

func TestTimeProviderInterface(t *testing.T) {
	var _ TimeProvider = &MonotonicTimeProvider{}
	var _ TimeProvider = &MockTimeProvider{}
}
