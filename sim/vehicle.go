package sim

import (
	"math"
	"time"
)

// Vehicle is one car, either the local one or a replica of a peer's.
//
// Intent fields hold a magnitude in [0,1]. Keyboard input only ever yields
// 0 or 1; analog devices yield anything in between.
type Vehicle struct {
	ID    string // peer identity, empty for the local vehicle
	Local bool
	Name  string

	X, Y            float64
	VX, VY          float64
	Angle           float64
	AngularVelocity float64
	Power           float64
	Reverse         float64

	Throttling   float64
	Reversing    float64
	TurningLeft  float64
	TurningRight float64
	Shooting     float64

	Hit      bool
	Shot     bool
	Score    int
	Respawns int

	LastShotAt time.Time
}

// NewLocalVehicle creates the vehicle driven by this process
func NewLocalVehicle(x, y float64) *Vehicle {
	return &Vehicle{Local: true, X: x, Y: y}
}

// NewRemoteVehicle creates an empty replica for a peer
func NewRemoteVehicle(id string) *Vehicle {
	return &Vehicle{ID: id}
}

// CanTurn reports whether the vehicle is moving enough for steering to bite.
func (v *Vehicle) CanTurn() bool {
	return v.Power > TurnThreshold || v.Reverse > 0
}

// Skidding reports whether the tyres would leave marks this frame: the car
// is moving and is either still accelerating or turning.
func (v *Vehicle) Skidding() bool {
	if !v.CanTurn() {
		return false
	}
	atTopSpeed := v.Power == MaxPower || v.Reverse == MaxReverse
	turning := math.Abs(v.AngularVelocity) >= TurnSpeed
	return !atTopSpeed || turning
}

// Respawn moves the vehicle to (x, y) at rest and clears hit status
func (v *Vehicle) Respawn(x, y float64) {
	v.X = x
	v.Y = y
	v.VX = 0
	v.VY = 0
	v.Hit = false
	v.Shot = false
	v.Respawns++
}
