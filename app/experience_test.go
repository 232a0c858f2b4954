package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/lixenwraith/heartscroll/constants"
	"github.com/lixenwraith/heartscroll/content"
	"github.com/lixenwraith/heartscroll/engine"
	"github.com/lixenwraith/heartscroll/events"
)

type fakeCue struct {
	plays int
	muted bool
}

func (c *fakeCue) PlayTransitionCue() error {
	c.plays++
	return errors.New("no device")
}
func (c *fakeCue) Toggle() bool { c.muted = !c.muted; return c.muted }
func (c *fakeCue) Muted() bool  { return c.muted }

type harness struct {
	x      *Experience
	screen tcell.SimulationScreen
	clock  *engine.MockTimeProvider
	bc     *events.Broadcaster
	queue  *events.EventQueue
	cue    *fakeCue
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(80, 24)
	t.Cleanup(screen.Fini)

	h := &harness{
		screen: screen,
		clock:  engine.NewMockTimeProvider(time.Date(2026, 2, 14, 20, 0, 0, 0, time.UTC)),
		bc:     events.NewBroadcaster(nil),
		queue:  events.NewEventQueue(),
		cue:    &fakeCue{},
	}

	svc := content.NewService(content.NewFileFetcher(""), constants.SectionIDs, content.WithQueue(h.queue))
	require.NoError(t, svc.Load(context.Background()))

	x, err := New(Options{
		Screen:      screen,
		Content:     svc,
		Cue:         h.cue,
		Broadcaster: h.bc,
		Queue:       h.queue,
		Clock:       h.clock,
	})
	require.NoError(t, err)
	t.Cleanup(x.Close)
	h.x = x
	return h
}

func (h *harness) key(k tcell.Key, r rune) bool {
	return h.x.HandleEvent(tcell.NewEventKey(k, r, tcell.ModNone))
}

// settle advances past one transition and runs the committing frame
func (h *harness) settle() {
	h.clock.Advance(constants.TransitionDuration)
	h.x.Step()
}

// find returns the cell position where s starts on screen
func (h *harness) find(s string) (int, int, bool) {
	want := []rune(s)
	w, ht := h.screen.Size()
	for y := 0; y < ht; y++ {
		for x := 0; x+len(want) <= w; x++ {
			match := true
			for i, r := range want {
				got, _, _, _ := h.screen.GetContent(x+i, y)
				if got != r {
					match = false
					break
				}
			}
			if match {
				return x, y, true
			}
		}
	}
	return 0, 0, false
}

func TestNew_RequiresScreen(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestExperience_KeyTransitionCommitsAndBroadcasts(t *testing.T) {
	h := newHarness(t)
	var got []events.SectionChange
	sub := h.bc.Subscribe(events.ListenerFunc(func(ev events.SectionChange) { got = append(got, ev) }))
	defer sub.Unsubscribe()

	h.x.Step()
	require.True(t, h.key(tcell.KeyDown, 0))

	st := h.x.Sequencer().State()
	assert.True(t, st.IsTransitioning)
	assert.Equal(t, 1, st.Target)
	assert.Equal(t, 1, h.cue.plays, "cue fires once per accepted request, errors swallowed")

	h.clock.Advance(constants.TransitionDuration / 2)
	h.x.Step()
	st = h.x.Sequencer().State()
	assert.InDelta(t, 0.5, st.TransitionProgress, 1e-9)
	assert.Empty(t, got)

	h.settle()
	st = h.x.Sequencer().State()
	assert.False(t, st.IsTransitioning)
	assert.Equal(t, 1, st.ActiveSection)
	require.Len(t, got, 1)
	assert.Equal(t, events.SectionChange{From: 0, To: 1, Progress: 1}, got[0])
	assert.Equal(t, 1, h.x.Background().Section())
	assert.Equal(t, int64(1), h.x.Metrics().Counter("transitions.committed").Load())
	assert.Equal(t, constants.SectionBirthday, h.x.Metrics().Label("section.active").Load())
}

func TestExperience_InFlightAndCooldownDropRequests(t *testing.T) {
	h := newHarness(t)
	h.x.Step()

	require.True(t, h.key(tcell.KeyDown, 0))
	h.clock.Advance(200 * time.Millisecond)
	h.x.Step()
	require.True(t, h.key(tcell.KeyDown, 0))
	h.x.HandleEvent(tcell.NewEventMouse(40, 12, tcell.WheelDown, tcell.ModNone))

	st := h.x.Sequencer().State()
	assert.Equal(t, 1, st.Target)
	assert.Equal(t, 1, h.cue.plays)
	assert.Equal(t, int64(1), h.x.Metrics().Counter("input.accepted").Load())
	assert.Equal(t, int64(2), h.x.Metrics().Counter("input.suppressed").Load())

	h.settle()
	assert.Equal(t, 1, h.x.Sequencer().State().ActiveSection)
}

func TestExperience_QuitKey(t *testing.T) {
	h := newHarness(t)
	assert.False(t, h.key(tcell.KeyRune, 'q'))
	assert.False(t, h.key(tcell.KeyEscape, 0))
	assert.True(t, h.key(tcell.KeyRune, 'x'))
}

func TestExperience_MuteToggle(t *testing.T) {
	h := newHarness(t)
	h.key(tcell.KeyRune, 'm')
	assert.True(t, h.cue.muted)
	assert.Equal(t, "sound off", h.x.Status())

	h.key(tcell.KeyRune, 'm')
	assert.False(t, h.cue.muted)
	assert.Equal(t, "sound on", h.x.Status())

	h.clock.Advance(constants.StatusLinger)
	assert.Empty(t, h.x.Status())
}

func TestExperience_ReplayFromFinale(t *testing.T) {
	h := newHarness(t)
	h.x.Step()
	for i := 0; i < constants.TotalSections-1; i++ {
		require.True(t, h.key(tcell.KeyDown, 0))
		h.settle()
	}
	require.Equal(t, constants.TotalSections-1, h.x.Sequencer().State().ActiveSection)

	// Enter activates the finale control
	h.key(tcell.KeyEnter, 0)
	st := h.x.Sequencer().State()
	assert.True(t, st.IsTransitioning)
	assert.Equal(t, 0, st.Target)
	assert.Equal(t, -1, st.Direction)

	h.settle()
	assert.Equal(t, 0, h.x.Sequencer().State().ActiveSection)

	h.key(tcell.KeyEnter, 0)
	assert.False(t, h.x.Sequencer().State().IsTransitioning)
}

func TestExperience_ReplayClick(t *testing.T) {
	h := newHarness(t)
	h.x.Step()
	for i := 0; i < constants.TotalSections-1; i++ {
		require.True(t, h.key(tcell.KeyDown, 0))
		h.settle()
	}

	x, y, ok := h.find("[ replay")
	require.True(t, ok, "replay control drawn on the finale")

	h.x.HandleEvent(tcell.NewEventMouse(x, y, tcell.ButtonPrimary, tcell.ModNone))
	h.x.HandleEvent(tcell.NewEventMouse(x, y, tcell.ButtonNone, tcell.ModNone))

	st := h.x.Sequencer().State()
	assert.True(t, st.IsTransitioning)
	assert.Equal(t, 0, st.Target)
}

func TestExperience_LetterScrollPassesThrough(t *testing.T) {
	h := newHarness(t)
	h.screen.SetSize(80, 16)
	h.x.Step()
	for i := 0; i < 2; i++ {
		require.True(t, h.key(tcell.KeyDown, 0))
		h.settle()
	}
	require.Equal(t, 2, h.x.Sequencer().State().ActiveSection)

	letter := h.x.Renderer().Letter()
	require.True(t, letter.Overflows(), "built-in letter is longer than a short screen")

	box := h.x.Renderer().Box(2)
	cx, cy := box.X+box.W/2, box.Y+box.H/2
	h.clock.Advance(constants.WheelCooldown)
	h.x.HandleEvent(tcell.NewEventMouse(cx, cy, tcell.WheelDown, tcell.ModNone))

	assert.Equal(t, 1, letter.Offset())
	assert.False(t, h.x.Sequencer().State().IsTransitioning)
}

func TestExperience_QueuedEventsUpdateStatus(t *testing.T) {
	h := newHarness(t)

	h.queue.PushContent(events.EventContentFailed, events.ContentPayload{SectionID: constants.SectionLetter, Err: "cms down"})
	h.x.Step()
	assert.Equal(t, "letter unavailable", h.x.Status())

	h.queue.PushAudioFailed("no device")
	h.x.Step()
	assert.Equal(t, "no sound", h.x.Status())
}

func TestExperience_StaleContentEventsSkipped(t *testing.T) {
	h := newHarness(t)
	h.x.Step()

	h.queue.PushContent(events.EventContentFailed, events.ContentPayload{SectionID: constants.SectionLetter, Generation: 5, Err: "timeout"})
	h.queue.PushContent(events.EventContentLoaded, events.ContentPayload{SectionID: constants.SectionLetter, Generation: 6})
	h.x.Step()

	assert.Empty(t, h.x.Status(), "failure from a superseded load is not shown")
	assert.Equal(t, int64(0), h.x.Metrics().Counter("content.failed").Load())
	assert.Equal(t, 1.0, h.x.Metrics().Gauge("events.stale").Load())
}

func TestExperience_LetterPassThroughAfterResize(t *testing.T) {
	h := newHarness(t)
	h.x.Step()
	for i := 0; i < 2; i++ {
		require.True(t, h.key(tcell.KeyDown, 0))
		h.settle()
	}

	h.screen.SetSize(80, 16)
	require.True(t, h.x.HandleEvent(tcell.NewEventResize(80, 16)))
	h.x.Step()

	letter := h.x.Renderer().Letter()
	require.True(t, letter.Overflows())

	box := h.x.Renderer().Box(2)
	h.clock.Advance(constants.WheelCooldown)
	h.x.HandleEvent(tcell.NewEventMouse(box.X+box.W/2, box.Y+box.H/2, tcell.WheelDown, tcell.ModNone))

	assert.Equal(t, 1, letter.Offset(), "the renderer keeps hit testing against the new layout")
	assert.False(t, h.x.Sequencer().State().IsTransitioning)
}

func TestExperience_CloseCancelsInFlight(t *testing.T) {
	h := newHarness(t)
	var got []events.SectionChange
	sub := h.bc.Subscribe(events.ListenerFunc(func(ev events.SectionChange) { got = append(got, ev) }))
	defer sub.Unsubscribe()

	h.x.Step()
	require.True(t, h.key(tcell.KeyDown, 0))
	h.x.Close()
	h.x.Close()

	h.settle()
	st := h.x.Sequencer().State()
	assert.Equal(t, 0, st.ActiveSection)
	assert.False(t, st.IsTransitioning)
	assert.Empty(t, got)
	assert.Equal(t, 1, h.bc.ListenerCount(), "only the test listener remains")
}

func TestExperience_RunStopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	h := newHarness(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.x.Run(ctx) }()

	time.Sleep(3 * constants.FrameUpdateInterval)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop")
	}
	assert.True(t, h.x.Sequencer().Closed())
	assert.Equal(t, 0, h.bc.ListenerCount())
}

func TestExperience_RunStopsOnQuitKey(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	h := newHarness(t)

	done := make(chan error, 1)
	go func() { done <- h.x.Run(context.Background()) }()

	h.screen.InjectKey(tcell.KeyDown, 0, tcell.ModNone)
	h.screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop on quit")
	}
	assert.True(t, h.x.Sequencer().Closed())
}
