package sim

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"car-arena/input"
)

type staticControls input.ControlVector

func (s *staticControls) Controls() input.ControlVector { return input.ControlVector(*s) }

type countingPublisher struct {
	calls int
	last  *Vehicle
}

func (p *countingPublisher) PublishIfChanged(v *Vehicle) {
	p.calls++
	p.last = v
}

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestLoopDrainsWholeSteps(t *testing.T) {
	w := newTestWorld()
	l := NewLoop(w, nil, nil, zerolog.Nop())

	assert.Zero(t, l.Sample(epoch).Steps, "first sample only sets the clock")

	now := epoch.Add(3*Step + Step/2)
	assert.Equal(t, 3, l.Sample(now).Steps)

	now = now.Add(Step)
	assert.Equal(t, 1, l.Sample(now).Steps, "remainder carried over")

	now = now.Add(Step / 4)
	assert.Zero(t, l.Sample(now).Steps)
	assert.EqualValues(t, 4, l.Steps())
}

func TestLoopFrameRateIndependent(t *testing.T) {
	run := func(interval time.Duration) (*Vehicle, uint64) {
		w := newTestWorld()
		w.Local().Name = "driver"
		ctl := &staticControls{Up: 1}
		l := NewLoop(w, ctl, nil, zerolog.Nop())

		end := epoch.Add(time.Second)
		for now := epoch; now.Before(end); now = now.Add(interval) {
			l.Sample(now)
		}
		l.Sample(end)
		return w.Local(), l.Steps()
	}

	fast, fastSteps := run(time.Millisecond)
	slow, slowSteps := run(7 * time.Millisecond)

	assert.Equal(t, fastSteps, slowSteps)
	assert.Equal(t, fast.X, slow.X)
	assert.Equal(t, fast.Y, slow.Y)
	assert.Equal(t, fast.Power, slow.Power)
}

func TestLoopSpectatorIgnoresControls(t *testing.T) {
	w := newTestWorld()
	l := NewLoop(w, &staticControls{Up: 1, Shoot: 1}, nil, zerolog.Nop())

	l.Sample(epoch)
	l.Sample(epoch.Add(10 * Step))

	assert.Zero(t, w.Local().Throttling)
	assert.Zero(t, w.Local().Power)
	assert.Empty(t, w.Projectiles())
}

func TestLoopPublishesOnlyOnChange(t *testing.T) {
	w := newTestWorld()
	w.Local().Name = "driver"
	ctl := &staticControls{}
	pub := &countingPublisher{}
	l := NewLoop(w, ctl, pub, zerolog.Nop())

	l.Sample(epoch)
	l.Sample(epoch.Add(Step))
	assert.Zero(t, pub.calls)

	ctl.Up = 0.71
	res := l.Sample(epoch.Add(2 * Step))
	assert.True(t, res.Changed)
	assert.Equal(t, 1, pub.calls)
	assert.Equal(t, 0.7, w.Local().Throttling)
	assert.Same(t, w.Local(), pub.last)

	ctl.Up = 0.69
	l.Sample(epoch.Add(3 * Step))
	assert.Equal(t, 1, pub.calls, "same value after quantization")
}

func TestLoopPublishesAfterHit(t *testing.T) {
	w := newTestWorld()
	local := w.Local()
	local.X, local.Y = 750, 750
	addPeer(t, w, "peer", 750, 762)
	pub := &countingPublisher{}
	l := NewLoop(w, nil, pub, zerolog.Nop())

	l.Sample(epoch)
	res := l.Sample(epoch.Add(Step))

	assert.True(t, res.Changed)
	assert.Equal(t, 1, pub.calls)
	assert.True(t, local.Hit)
}

func TestApplyControlsTurnGating(t *testing.T) {
	v := NewLocalVehicle(0, 0)
	changed := ApplyControls(v, input.ControlVector{Left: 1, Right: 0.5})
	assert.False(t, changed)
	assert.Zero(t, v.TurningLeft)

	v.Power = MaxPower
	changed = ApplyControls(v, input.ControlVector{Left: 1, Right: 0.54})
	assert.True(t, changed)
	assert.Equal(t, 1.0, v.TurningLeft)
	assert.Equal(t, 0.5, v.TurningRight)
}
