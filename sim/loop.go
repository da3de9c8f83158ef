package sim

import (
	"time"

	"github.com/rs/zerolog"

	"car-arena/input"
)

// ControlSource supplies the normalized control vector for a sample
type ControlSource interface {
	Controls() input.ControlVector
}

// Publisher receives the local vehicle whenever it may have changed
type Publisher interface {
	PublishIfChanged(v *Vehicle)
}

// SampleResult describes one Loop.Sample call
type SampleResult struct {
	Steps   int
	Changed bool
}

// Loop is the fixed-timestep driver. Sample is called at any cadence; the
// world always advances in whole Step increments and the sub-step remainder
// carries over to the next sample.
type Loop struct {
	world    *World
	controls ControlSource
	pub      Publisher
	log      zerolog.Logger

	acc     time.Duration
	last    time.Time
	started bool
	steps   uint64
}

// NewLoop creates a loop over world. controls and pub may be nil.
func NewLoop(world *World, controls ControlSource, pub Publisher, log zerolog.Logger) *Loop {
	return &Loop{
		world:    world,
		controls: controls,
		pub:      pub,
		log:      log.With().Str("component", "loop").Logger(),
	}
}

// Steps returns the total number of fixed steps taken
func (l *Loop) Steps() uint64 {
	return l.steps
}

// Sample reads the controls, updates the local intents, drains the
// accumulator and publishes the local vehicle if anything changed.
func (l *Loop) Sample(now time.Time) SampleResult {
	var res SampleResult
	local := l.world.Local()

	var cv input.ControlVector
	if local.Name != "" && l.controls != nil {
		cv = l.controls.Controls()
	}
	res.Changed = ApplyControls(local, cv)

	if l.started {
		if elapsed := now.Sub(l.last); elapsed > 0 {
			l.acc += elapsed
		}
		for l.acc >= Step {
			if l.world.Step(now).Changed() {
				res.Changed = true
			}
			l.acc -= Step
			res.Steps++
		}
	}
	l.last = now
	l.started = true
	l.steps += uint64(res.Steps)

	if res.Steps > 240 {
		l.log.Debug().Int("steps", res.Steps).Msg("catching up after a long pause")
	}
	if res.Changed && l.pub != nil {
		l.pub.PublishIfChanged(local)
	}
	return res
}

// ApplyControls writes the quantized control vector onto v's intents and
// reports whether any of them changed. Turn intents read as zero while the
// vehicle is too slow to steer.
func ApplyControls(v *Vehicle, cv input.ControlVector) bool {
	throttle := Quantize(cv.Up)
	reverse := Quantize(cv.Down)
	shoot := Quantize(cv.Shoot)
	var left, right float64
	if v.CanTurn() {
		left = Quantize(cv.Left)
		right = Quantize(cv.Right)
	}

	changed := false
	set := func(dst *float64, val float64) {
		if *dst != val {
			*dst = val
			changed = true
		}
	}
	set(&v.Throttling, throttle)
	set(&v.Reversing, reverse)
	set(&v.Shooting, shoot)
	set(&v.TurningLeft, left)
	set(&v.TurningRight, right)
	return changed
}
