package sim

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegratePowerRamp(t *testing.T) {
	v := NewLocalVehicle(0, 0)
	v.Throttling = 1

	for n := 1; n <= 120; n++ {
		Integrate(v)
		want := math.Min(MaxPower, float64(n)*PowerFactor)
		require.InDelta(t, want, v.Power, 1e-9, "tick %d", n)
	}
	assert.Equal(t, MaxPower, v.Power)
}

func TestIntegratePartialThrottle(t *testing.T) {
	v := NewLocalVehicle(0, 0)
	v.Throttling = 0.5

	Integrate(v)
	assert.InDelta(t, 0.0005, v.Power, 1e-12)
}

func TestIntegrateClampInvariant(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	v := NewLocalVehicle(750, 750)

	for tick := 0; tick < 20000; tick++ {
		if tick%30 == 0 {
			v.Throttling = Quantize(rng.Float64())
			v.Reversing = Quantize(rng.Float64())
			v.TurningLeft = Quantize(rng.Float64())
			v.TurningRight = Quantize(rng.Float64())
		}
		Integrate(v)
		require.GreaterOrEqual(t, v.Power, 0.0)
		require.LessOrEqual(t, v.Power, MaxPower)
		require.GreaterOrEqual(t, v.Reverse, 0.0)
		require.LessOrEqual(t, v.Reverse, MaxReverse)
	}
}

func TestIntegrateMovesAlongHeading(t *testing.T) {
	v := NewLocalVehicle(100, 100)
	v.Throttling = 1

	Integrate(v)

	// Heading 0 points up the screen.
	assert.InDelta(t, 100.0, v.X, 1e-12)
	assert.InDelta(t, 100-PowerFactor, v.Y, 1e-12)
	assert.InDelta(t, PowerFactor*Drag, v.VY, 1e-12)
}

func TestIntegrateDecaysWithoutIntent(t *testing.T) {
	v := NewLocalVehicle(0, 0)
	v.Power = MaxPower
	v.Reverse = MaxReverse

	Integrate(v)

	assert.InDelta(t, MaxPower-PowerFactor, v.Power, 1e-12)
	assert.InDelta(t, MaxReverse-ReverseFactor, v.Reverse, 1e-12)
}

func TestIntegrateNoTurnAtRest(t *testing.T) {
	v := NewLocalVehicle(0, 0)
	v.TurningLeft = 1
	v.TurningRight = 0.4

	Integrate(v)

	assert.Zero(t, v.AngularVelocity)
	assert.Zero(t, v.Angle)
}

func TestIntegrateTurnDirection(t *testing.T) {
	forward := NewLocalVehicle(0, 0)
	forward.Power = MaxPower
	forward.Throttling = 1
	forward.TurningLeft = 1
	Integrate(forward)
	assert.InDelta(t, -TurnSpeed*AngularDrag, forward.AngularVelocity, 1e-12)

	backward := NewLocalVehicle(0, 0)
	backward.Reverse = MaxReverse
	backward.Reversing = 1
	backward.TurningLeft = 1
	Integrate(backward)
	assert.InDelta(t, TurnSpeed*AngularDrag, backward.AngularVelocity, 1e-12)
}

func TestIntegrateTurnScalesWithMagnitude(t *testing.T) {
	v := NewLocalVehicle(0, 0)
	v.Power = MaxPower
	v.Throttling = 1
	v.TurningRight = 0.3

	Integrate(v)

	assert.InDelta(t, TurnSpeed*0.3*AngularDrag, v.AngularVelocity, 1e-12)
}

func TestWrap(t *testing.T) {
	const eps = 1e-6
	spanX := DefaultWidth + 2*WrapMargin
	spanY := DefaultHeight + 2*WrapMargin
	tests := []struct {
		name    string
		x, y    float64
		dx, dy  float64 // spans added on each axis
		wrapped bool
	}{
		{"inside", 10, 10, 0, 0, false},
		{"on margin", DefaultWidth + WrapMargin, -WrapMargin, 0, 0, false},
		{"past right", DefaultWidth + WrapMargin + eps, 10, -1, 0, true},
		{"past left", -WrapMargin - eps, 10, 1, 0, true},
		{"past bottom", 10, DefaultHeight + WrapMargin + eps, 0, -1, true},
		{"past top", 10, -WrapMargin - eps, 0, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewLocalVehicle(tt.x, tt.y)
			assert.Equal(t, tt.wrapped, Wrap(v, DefaultWidth, DefaultHeight))
			assert.Equal(t, tt.x+tt.dx*spanX, v.X)
			assert.Equal(t, tt.y+tt.dy*spanY, v.Y)
			assert.GreaterOrEqual(t, v.X, -WrapMargin)
			assert.LessOrEqual(t, v.X, DefaultWidth+WrapMargin)
			assert.GreaterOrEqual(t, v.Y, -WrapMargin)
			assert.LessOrEqual(t, v.Y, DefaultHeight+WrapMargin)
		})
	}
}

func TestShootCooldown(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	v := NewLocalVehicle(100, 100)
	v.Shooting = 1

	_, ok := Shoot(v, t0)
	require.True(t, ok)
	_, ok = Shoot(v, t0.Add(59*time.Millisecond))
	assert.False(t, ok, "within cooldown")

	v2 := NewLocalVehicle(100, 100)
	v2.Shooting = 1
	_, ok = Shoot(v2, t0)
	require.True(t, ok)
	_, ok = Shoot(v2, t0.Add(60*time.Millisecond))
	assert.True(t, ok, "cooldown elapsed")
}

func TestShootRequiresIntent(t *testing.T) {
	v := NewLocalVehicle(100, 100)
	_, ok := Shoot(v, time.Now())
	assert.False(t, ok)
}

func TestShootSpawnsAheadWithMuzzleVelocity(t *testing.T) {
	v := NewLocalVehicle(100, 100)
	v.Shooting = 1
	v.VX = 0.5

	p, ok := Shoot(v, time.Now())
	require.True(t, ok)

	assert.InDelta(t, 100.0, p.X, 1e-12)
	assert.InDelta(t, 100-MuzzleOffset, p.Y, 1e-12)
	assert.InDelta(t, 0.5, p.VX, 1e-12)
	assert.InDelta(t, MuzzleVelocity, p.VY, 1e-12)
	assert.True(t, p.OwnedLocally)

	remote := NewRemoteVehicle("peer")
	remote.Shooting = 1
	remote.Angle = math.Pi / 2
	p, ok = Shoot(remote, time.Now())
	require.True(t, ok)
	assert.False(t, p.OwnedLocally)
	assert.InDelta(t, MuzzleOffset, p.X, 1e-9)
	assert.InDelta(t, MuzzleVelocity, p.VX, 1e-9)
}

func TestMoveProjectile(t *testing.T) {
	p := &Projectile{X: 10, Y: 10, VX: 1, VY: 2}
	MoveProjectile(p)
	assert.Equal(t, 11.0, p.X)
	assert.Equal(t, 8.0, p.Y)
}

func TestProjectileExpired(t *testing.T) {
	t0 := time.Now()
	p := &Projectile{SpawnedAt: t0}
	assert.False(t, p.Expired(t0.Add(ProjectileTTL)))
	assert.True(t, p.Expired(t0.Add(ProjectileTTL+time.Millisecond)))
}

func TestSkidding(t *testing.T) {
	v := NewLocalVehicle(0, 0)
	assert.False(t, v.Skidding(), "at rest")

	v.Power = 0.03
	assert.True(t, v.Skidding(), "accelerating")

	v.Power = MaxPower
	assert.False(t, v.Skidding(), "cruising straight")

	v.AngularVelocity = -0.004
	assert.True(t, v.Skidding(), "cruising through a turn")
}
