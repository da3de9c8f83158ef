package term

import (
	"math"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"car-arena/input"
	"car-arena/sim"
)

func TestTranslateKey(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want input.Key
		ok   bool
	}{
		{"arrow up", tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), input.KeyArrowUp, true},
		{"arrow left", tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone), input.KeyArrowLeft, true},
		{"space", tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), input.KeySpace, true},
		{"letter", tcell.NewEventKey(tcell.KeyRune, 'w', tcell.ModNone), "w", true},
		{"shifted letter", tcell.NewEventKey(tcell.KeyRune, 'D', tcell.ModNone), "d", true},
		{"function key", tcell.NewEventKey(tcell.KeyF1, 0, tcell.ModNone), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TranslateKey(tt.ev)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeyLatchReleasesQuietKeys(t *testing.T) {
	kb := input.NewKeyboard(nil)
	latch := NewKeyLatch(kb, 100*time.Millisecond)
	t0 := time.Unix(1000, 0)

	latch.Press(input.KeyArrowUp, t0)
	latch.Press(input.KeySpace, t0.Add(80*time.Millisecond))

	latch.Expire(t0.Add(100 * time.Millisecond))
	assert.True(t, kb.Held(input.KeyArrowUp), "release is strictly after the hold window")

	latch.Expire(t0.Add(150 * time.Millisecond))
	assert.False(t, kb.Held(input.KeyArrowUp))
	assert.True(t, kb.Held(input.KeySpace))
	assert.Equal(t, 1, latch.Held())

	latch.Reset()
	assert.False(t, kb.Held(input.KeySpace))
	assert.Equal(t, 0, latch.Held())
}

func TestKeyLatchRepeatRefreshes(t *testing.T) {
	kb := input.NewKeyboard(nil)
	latch := NewKeyLatch(kb, 0)
	t0 := time.Unix(1000, 0)

	latch.Press("w", t0)
	latch.Press("w", t0.Add(DefaultKeyHold))
	latch.Expire(t0.Add(DefaultKeyHold + DefaultKeyHold/2))
	assert.True(t, kb.Held("w"))
	assert.Equal(t, 1.0, kb.Vector().Up)
}

func TestViewCentresCamera(t *testing.T) {
	v := View{CamX: 100, CamY: 100, Cols: 80, Rows: 24, Scale: 4}

	col, row, ok := v.Cell(100, 100)
	require.True(t, ok)
	assert.Equal(t, 40, col)
	assert.Equal(t, 12, row)

	col, row, ok = v.Cell(140, 84)
	require.True(t, ok)
	assert.Equal(t, 50, col)
	assert.Equal(t, 10, row)

	_, _, ok = v.Cell(100+41*4, 100)
	assert.False(t, ok)

	x, y := v.World(50, 10)
	assert.InDelta(t, 140, x, 1e-9)
	assert.InDelta(t, 84, y, 1e-9)
}

func TestViewEdges(t *testing.T) {
	v := View{CamX: 0, CamY: 0, Cols: 20, Rows: 10, Scale: 4}

	vert, horiz := v.edgeAt(10, 5, 100, 100)
	assert.True(t, vert)
	assert.True(t, horiz)

	vert, horiz = v.edgeAt(10, 7, 100, 100)
	assert.True(t, vert)
	assert.False(t, horiz)

	vert, horiz = v.edgeAt(5, 7, 100, 100)
	assert.False(t, vert, "left of the world")
	assert.False(t, horiz)
}

func TestHeadingRune(t *testing.T) {
	assert.Equal(t, '↑', HeadingRune(0))
	assert.Equal(t, '→', HeadingRune(math.Pi/2))
	assert.Equal(t, '↓', HeadingRune(math.Pi))
	assert.Equal(t, '←', HeadingRune(-math.Pi/2))
	assert.Equal(t, '↑', HeadingRune(2*math.Pi+0.1))
}

func TestMouseDragDrivesTouch(t *testing.T) {
	var d mouseDrag
	touch := input.NewTouch()
	apply := func(ops []touchOp) {
		for _, op := range ops {
			op(touch)
		}
	}

	apply(d.update(tcell.Button1, input.Point{X: 10, Y: 10}, 90, 30))
	require.True(t, touch.Active())
	assert.True(t, touch.Vector().IsZero())

	apply(d.update(tcell.Button1, input.Point{X: 40, Y: 10}, 90, 30))
	assert.Equal(t, 1.0, touch.Vector().Right)
	assert.Equal(t, 0.0, touch.Vector().Left)

	apply(d.update(tcell.Button1|tcell.Button2, input.Point{X: 40, Y: 10}, 90, 30))
	assert.Equal(t, 1.0, touch.Vector().Shoot)

	apply(d.update(tcell.Button1, input.Point{X: 40, Y: 10}, 90, 30))
	assert.True(t, touch.Active())
	assert.Equal(t, 0.0, touch.Vector().Shoot)

	apply(d.update(tcell.ButtonNone, input.Point{X: 40, Y: 10}, 90, 30))
	assert.False(t, touch.Active())
	assert.True(t, touch.Vector().IsZero())
}

func TestMouseHoverIgnored(t *testing.T) {
	var d mouseDrag
	assert.Empty(t, d.update(tcell.ButtonNone, input.Point{X: 1, Y: 1}, 90, 30))
	assert.Empty(t, d.update(tcell.Button2, input.Point{X: 1, Y: 1}, 90, 30))
}

type directTarget struct {
	norm *input.Normalizer
}

func (d *directTarget) Do(fn func()) bool { fn(); return true }

func (d *directTarget) Input() *input.Normalizer { return d.norm }

func newSimScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	s.SetSize(80, 24)
	t.Cleanup(s.Fini)
	return s
}

func TestCaptureKeys(t *testing.T) {
	target := &directTarget{norm: input.NewNormalizer(nil, nil)}
	c := NewCapture(newSimScreen(t), target, time.Second, zerolog.Nop())
	quits, leaves := 0, 0
	c.OnQuit = func() { quits++ }
	c.OnDisconnect = func() { leaves++ }

	c.handle(tcell.NewEventKey(tcell.KeyRune, 'w', tcell.ModNone))
	assert.Equal(t, 1.0, target.norm.Controls().Up)

	c.handle(tcell.NewEventKey(tcell.KeyCtrlD, 0, tcell.ModCtrl))
	assert.Equal(t, 1, leaves)
	assert.True(t, target.norm.Controls().IsZero())

	c.handle(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	assert.Equal(t, 1, quits)
}

func TestCaptureMouse(t *testing.T) {
	target := &directTarget{norm: input.NewNormalizer(nil, nil)}
	c := NewCapture(newSimScreen(t), target, time.Second, zerolog.Nop())

	c.handle(tcell.NewEventMouse(10, 10, tcell.Button1, tcell.ModNone))
	c.handle(tcell.NewEventMouse(10, 2, tcell.Button1, tcell.ModNone))
	assert.InDelta(t, 1.0, target.norm.Controls().Up, 1e-9)

	c.handle(tcell.NewEventMouse(10, 2, tcell.ButtonNone, tcell.ModNone))
	assert.True(t, target.norm.Controls().IsZero())
}

type recordedTone struct {
	freqs []float64
}

func (r *recordedTone) Play(freq float64, d time.Duration) {
	r.freqs = append(r.freqs, freq)
}

func snapWith(score, respawns int) sim.Snapshot {
	return sim.Snapshot{
		Width: 1500, Height: 1500,
		Vehicles: []sim.VehiclePose{{Local: true, Score: score, Respawns: respawns}},
	}
}

func TestCues(t *testing.T) {
	tone := &recordedTone{}
	cues := NewCues(tone)

	cues.Observe(snapWith(3, 1))
	assert.Empty(t, tone.freqs, "first snapshot only primes")

	cues.Observe(snapWith(4, 1))
	cues.Observe(snapWith(4, 1))
	cues.Observe(snapWith(4, 2))
	assert.Equal(t, []float64{880, 220}, tone.freqs)
}

func cellRune(s tcell.Screen, col, row int) rune {
	r, _, _, _ := s.GetContent(col, row)
	return r
}

func TestRendererDrawsAroundLocal(t *testing.T) {
	screen := newSimScreen(t)
	tone := &recordedTone{}
	r := NewRenderer(screen, NewCues(tone))
	r.Status = func() string { return "connected" }

	snap := sim.Snapshot{
		Width: 1500, Height: 1500,
		Vehicles: []sim.VehiclePose{
			{ID: "", Name: "me", Local: true, X: 750, Y: 750, Score: 2},
			{ID: "b", Name: "bo", X: 790, Y: 750, Angle: math.Pi / 2, Shot: true},
			{ID: "c", Name: "far", X: 100, Y: 750, Bearing: math.Pi},
		},
		Projectiles: []sim.ProjectilePose{{X: 750, Y: 734, Local: true}},
	}
	r.Render(snap)

	assert.Equal(t, '↑', cellRune(screen, 40, 12))
	assert.Equal(t, '→', cellRune(screen, 50, 12))
	_, _, style, _ := screen.GetContent(50, 12)
	fg, _, _ := style.Decompose()
	assert.Equal(t, tcell.ColorRed, fg)
	assert.Equal(t, 'b', cellRune(screen, 52, 12))
	assert.Equal(t, '•', cellRune(screen, 40, 10))
	assert.Equal(t, '◆', cellRune(screen, 36, 12), "off-screen peer marked along its bearing")

	assert.Equal(t, 'm', cellRune(screen, 1, 0), "leader heads the scoreboard")
	assert.Equal(t, 'c', cellRune(screen, 0, 23))
}

func TestSkidTrailRing(t *testing.T) {
	trail := newSkidTrail(2)
	trail.add(skidMark{x: 1})
	trail.add(skidMark{x: 2})
	trail.add(skidMark{x: 3})
	require.Len(t, trail.marks, 2)
	assert.Equal(t, 3.0, trail.marks[0].x)
	assert.Equal(t, 2.0, trail.marks[1].x)
}
