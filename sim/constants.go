package sim

import "time"

// Vehicle tuning. These values are shared by every peer and must match
// across builds for replicated behaviour to line up.
const (
	MaxPower      = 0.075
	MaxReverse    = 0.0375
	PowerFactor   = 0.001
	ReverseFactor = 0.0005
	Drag          = 0.95
	AngularDrag   = 0.95
	TurnSpeed     = 0.002
	TurnThreshold = 0.0025 // power above which steering takes effect
)

const (
	Step          = time.Second / 120
	ShootCooldown = 60 * time.Millisecond
	ProjectileTTL = 600 * time.Millisecond
)

const (
	VehicleRadius    = 7.5
	ProjectileRadius = 2.0
	WrapMargin       = VehicleRadius

	MuzzleOffset   = 10.0 // spawn distance ahead of the vehicle centre
	MuzzleVelocity = 1.25

	DefaultWidth  = 1500.0
	DefaultHeight = 1500.0
)
