package render

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/heartscroll/constants"
	"github.com/lixenwraith/heartscroll/content"
	"github.com/lixenwraith/heartscroll/engine"
	"github.com/lixenwraith/heartscroll/input"
)

type fetchFunc func(ctx context.Context, id string) (content.Section, error)

func (f fetchFunc) Fetch(ctx context.Context, id string) (content.Section, error) { return f(ctx, id) }

func newScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(w, h)
	t.Cleanup(screen.Fini)
	return screen
}

// loadedSnapshot loads the built-in document, failing any id in failed
func loadedSnapshot(t *testing.T, failed ...string) *content.Snapshot {
	t.Helper()
	builtin := content.NewFileFetcher("")
	fetch := fetchFunc(func(ctx context.Context, id string) (content.Section, error) {
		for _, f := range failed {
			if f == id {
				return content.Section{}, errors.New("cms down")
			}
		}
		return builtin.Fetch(ctx, id)
	})
	svc := content.NewService(fetch, constants.SectionIDs)
	require.NoError(t, svc.Load(context.Background()))
	return svc.Snapshot()
}

func screenText(s tcell.SimulationScreen) string {
	w, h := s.Size()
	var b strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, _, _, _ := s.GetContent(x, y)
			b.WriteRune(r)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func rowText(s tcell.SimulationScreen, y int) string {
	return strings.Split(screenText(s), "\n")[y]
}

func idleFrame(active int, snap *content.Snapshot) Frame {
	st := engine.SequencerState{ActiveSection: active, Target: active}
	return Frame{
		State:   st,
		Params:  engine.SectionParams(constants.TotalSections, st, engine.Tilt{}),
		Content: snap,
	}
}

func newTestRenderer(screen tcell.Screen) *Renderer {
	return NewRenderer(screen, constants.SectionIDs, ModeTrueColor, NewHeartField(constants.TotalSections), constants.SectionLetter)
}

func TestRenderer_DrawsActiveSection(t *testing.T) {
	screen := newScreen(t, 80, 24)
	r := newTestRenderer(screen)

	r.Draw(idleFrame(0, loadedSnapshot(t)))
	text := screenText(screen)

	assert.Contains(t, text, "For you, always")
	assert.NotContains(t, text, "Happy Birthday", "parked sections are transparent")
	assert.NotContains(t, text, constants.LoadingText)
	assert.Contains(t, rowText(screen, 23), "q quit")
	assert.Contains(t, text, "●")
	assert.Contains(t, text, "╭")
}

func TestRenderer_LoadingOverlay(t *testing.T) {
	screen := newScreen(t, 80, 24)
	r := newTestRenderer(screen)

	pending := content.NewService(content.NewFileFetcher(""), constants.SectionIDs).Snapshot()
	r.Draw(idleFrame(0, pending))

	assert.Contains(t, rowText(screen, 0), constants.LoadingText)
	assert.Contains(t, screenText(screen), "…")
}

func TestRenderer_FailureIsContainedToSection(t *testing.T) {
	screen := newScreen(t, 80, 24)
	r := newTestRenderer(screen)
	snap := loadedSnapshot(t, constants.SectionBirthday)

	r.Draw(idleFrame(1, snap))
	assert.Contains(t, screenText(screen), "could not be loaded")
	assert.NotContains(t, rowText(screen, 0), constants.LoadingText, "failed is not pending")

	r.Draw(idleFrame(2, snap))
	assert.Contains(t, screenText(screen), "A letter")
}

func TestRenderer_TransitionShowsBothSections(t *testing.T) {
	screen := newScreen(t, 100, 30)
	r := newTestRenderer(screen)

	st := engine.SequencerState{ActiveSection: 0, IsTransitioning: true, TransitionProgress: 0.5, Target: 1, Direction: 1}
	r.Draw(Frame{
		State:   st,
		Params:  engine.SectionParams(constants.TotalSections, st, engine.Tilt{}),
		Content: loadedSnapshot(t),
	})

	active, incoming := r.Box(0), r.Box(1)
	require.NotZero(t, active.W)
	require.NotZero(t, incoming.W)
	assert.Greater(t, active.W, incoming.W, "outgoing grows while incoming rises from depth")
	assert.Zero(t, r.Box(2), "parked section not drawn")
	assert.Contains(t, screenText(screen), "◉")
}

func TestRenderer_ReplayControlHitRegion(t *testing.T) {
	screen := newScreen(t, 80, 24)
	r := newTestRenderer(screen)
	snap := loadedSnapshot(t)

	r.Draw(idleFrame(3, snap))

	var found bool
	w, h := screen.Size()
	for y := 0; y < h && !found; y++ {
		for x := 0; x < w; x++ {
			if tgt := r.TargetAt(x, y); tgt.Kind == input.TargetControl {
				assert.Equal(t, content.ActionReplay, tgt.Name)
				found = true
				break
			}
		}
	}
	assert.True(t, found, "replay control registered")
	assert.Contains(t, screenText(screen), "replay ♥")

	// No hit regions while a transition is in flight
	st := engine.SequencerState{ActiveSection: 3, IsTransitioning: true, TransitionProgress: 0.2, Target: 0, Direction: -1}
	r.Draw(Frame{State: st, Params: engine.SectionParams(constants.TotalSections, st, engine.Tilt{}), Content: snap})
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			require.Equal(t, input.TargetNone, r.TargetAt(x, y).Kind)
		}
	}
}

func TestRenderer_LetterIsScrollable(t *testing.T) {
	screen := newScreen(t, 40, 16)
	r := newTestRenderer(screen)
	snap := loadedSnapshot(t)

	r.Draw(idleFrame(2, snap))
	box := r.Box(2)
	require.NotZero(t, box.W)

	// Somewhere in the middle of the box is the body region
	tgt := r.TargetAt(box.X+box.W/2, box.Y+box.H/2)
	require.Equal(t, input.TargetScrollable, tgt.Kind)
	assert.Same(t, r.Letter(), tgt.Region)

	letter := r.Letter()
	require.True(t, letter.Overflows())
	assert.True(t, letter.AtTop())
	before := screenText(screen)

	tgt.Region.ScrollBy(3)
	r.Draw(idleFrame(2, snap))
	assert.Equal(t, 3, letter.Offset())
	assert.NotEqual(t, before, screenText(screen))
	assert.Contains(t, screenText(screen), "▲")
}

func TestRenderer_HintShowsMuteAndStatus(t *testing.T) {
	screen := newScreen(t, 80, 24)
	r := newTestRenderer(screen)

	f := idleFrame(0, loadedSnapshot(t))
	f.Muted = true
	f.Status = "audio off"
	r.Draw(f)

	hint := rowText(screen, 23)
	assert.Contains(t, hint, "muted")
	assert.Contains(t, hint, "audio off")
}

func TestBoxFor(t *testing.T) {
	area := Rect{X: 3, Y: 1, W: 77, H: 22}

	unit := boxFor(area, engine.RenderParams{Scale: 1})
	half := boxFor(area, engine.RenderParams{Scale: 0.5})
	big := boxFor(area, engine.RenderParams{Scale: 1.5})
	assert.Less(t, half.W, unit.W)
	assert.LessOrEqual(t, big.W, area.W, "clamped to area")

	tilted := boxFor(area, engine.RenderParams{Scale: 1, RotateY: 4})
	assert.Equal(t, unit.X+3, tilted.X)

	tiny := boxFor(Rect{W: 5, H: 3}, engine.RenderParams{Scale: 0.1})
	assert.Equal(t, 5, tiny.W, "minimum clamped by area")
}

func TestBlurGlyph(t *testing.T) {
	assert.Equal(t, 'a', blurGlyph('a', 0, 0, 0))
	assert.Equal(t, ' ', blurGlyph(' ', 0, 0, 100))
	assert.Equal(t, '░', blurGlyph('a', 1, 1, constants.BlurDitherThreshold))
	assert.Equal(t, 'a', blurGlyph('a', 0, 1, constants.BlurDitherThreshold))
	assert.Equal(t, '░', blurGlyph('a', 0, 1, 2*constants.BlurDitherThreshold))
}
