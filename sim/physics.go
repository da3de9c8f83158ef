package sim

import (
	"math"
	"time"
)

// Integrate advances v by one fixed step using its current intents.
// Heading 0 points up the screen; y grows downwards.
func Integrate(v *Vehicle) {
	if v.Throttling > 0 {
		v.Power += PowerFactor * v.Throttling
	} else {
		v.Power -= PowerFactor
	}
	if v.Reversing > 0 {
		v.Reverse += ReverseFactor
	} else {
		v.Reverse -= ReverseFactor
	}
	v.Power = Clamp(v.Power, 0, MaxPower)
	v.Reverse = Clamp(v.Reverse, 0, MaxReverse)

	if v.CanTurn() {
		direction := -1.0
		if v.Power > v.Reverse {
			direction = 1
		}
		if v.TurningLeft > 0 {
			v.AngularVelocity -= direction * TurnSpeed * v.TurningLeft
		}
		if v.TurningRight > 0 {
			v.AngularVelocity += direction * TurnSpeed * v.TurningRight
		}
	}

	sin, cos := math.Sincos(v.Angle)
	net := v.Power - v.Reverse
	v.VX += sin * net
	v.VY += cos * net

	v.X += v.VX
	v.Y -= v.VY
	v.VX *= Drag
	v.VY *= Drag

	v.Angle += v.AngularVelocity
	v.AngularVelocity *= AngularDrag
}

// Wrap moves v to the opposite edge once it is more than WrapMargin outside
// the world. It reports whether a wrap happened on either axis.
func Wrap(v *Vehicle, width, height float64) bool {
	wrapped := false
	if v.X > width+WrapMargin {
		v.X -= width + 2*WrapMargin
		wrapped = true
	} else if v.X < -WrapMargin {
		v.X += width + 2*WrapMargin
		wrapped = true
	}
	if v.Y > height+WrapMargin {
		v.Y -= height + 2*WrapMargin
		wrapped = true
	} else if v.Y < -WrapMargin {
		v.Y += height + 2*WrapMargin
		wrapped = true
	}
	return wrapped
}

// Shoot spawns a projectile ahead of v if it is shooting and off cooldown.
func Shoot(v *Vehicle, now time.Time) (*Projectile, bool) {
	if v.Shooting <= 0 {
		return nil, false
	}
	if !v.LastShotAt.IsZero() && now.Sub(v.LastShotAt) < ShootCooldown {
		return nil, false
	}
	v.LastShotAt = now

	sin, cos := math.Sincos(v.Angle)
	return &Projectile{
		X:            v.X + sin*MuzzleOffset,
		Y:            v.Y - cos*MuzzleOffset,
		VX:           v.VX + sin*MuzzleVelocity,
		VY:           v.VY + cos*MuzzleVelocity,
		Angle:        v.Angle,
		SpawnedAt:    now,
		OwnedLocally: v.Local,
	}, true
}

// MoveProjectile advances p by one fixed step. Projectiles do not wrap.
func MoveProjectile(p *Projectile) {
	p.X += p.VX
	p.Y -= p.VY
}
