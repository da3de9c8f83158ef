package replication

import (
	"car-arena/protocol"
	"car-arena/sim"
)

// fieldSet is the publishable state of a vehicle. It is comparable so change
// detection is a single ==.
type fieldSet struct {
	X, Y            float64
	VX, VY          float64
	Power, Reverse  float64
	Angle           float64
	AngularVelocity float64

	Throttling   float64
	Reversing    float64
	Shooting     float64
	TurningLeft  float64
	TurningRight float64

	Hit, Shot bool
	Name      string
	Points    int
}

func capture(v *sim.Vehicle) fieldSet {
	return fieldSet{
		X:               v.X,
		Y:               v.Y,
		VX:              v.VX,
		VY:              v.VY,
		Power:           v.Power,
		Reverse:         v.Reverse,
		Angle:           v.Angle,
		AngularVelocity: v.AngularVelocity,
		Throttling:      sim.Quantize(v.Throttling),
		Reversing:       sim.Quantize(v.Reversing),
		Shooting:        sim.Quantize(v.Shooting),
		TurningLeft:     sim.Quantize(v.TurningLeft),
		TurningRight:    sim.Quantize(v.TurningRight),
		Hit:             v.Hit,
		Shot:            v.Shot,
		Name:            v.Name,
		Points:          v.Score,
	}
}

func (f fieldSet) params() protocol.Params {
	return protocol.Params{
		X:               protocol.Float(f.X),
		Y:               protocol.Float(f.Y),
		XVelocity:       protocol.Float(f.VX),
		YVelocity:       protocol.Float(f.VY),
		Power:           protocol.Float(f.Power),
		Reverse:         protocol.Float(f.Reverse),
		Angle:           protocol.Float(f.Angle),
		AngularVelocity: protocol.Float(f.AngularVelocity),
		IsThrottling:    protocol.Mag(f.Throttling),
		IsReversing:     protocol.Mag(f.Reversing),
		IsShooting:      protocol.Mag(f.Shooting),
		IsTurningLeft:   protocol.Mag(f.TurningLeft),
		IsTurningRight:  protocol.Mag(f.TurningRight),
		IsHit:           protocol.Bool(f.Hit),
		IsShot:          protocol.Bool(f.Shot),
		Name:            protocol.String(f.Name),
		Points:          protocol.Int(f.Points),
	}
}

// apply overwrites exactly the fields present in p
func apply(v *sim.Vehicle, p protocol.Params) {
	setF := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	setM := func(dst *float64, src *protocol.Magnitude) {
		if src != nil {
			*dst = float64(*src)
		}
	}
	setF(&v.X, p.X)
	setF(&v.Y, p.Y)
	setF(&v.VX, p.XVelocity)
	setF(&v.VY, p.YVelocity)
	setF(&v.Power, p.Power)
	setF(&v.Reverse, p.Reverse)
	setF(&v.Angle, p.Angle)
	setF(&v.AngularVelocity, p.AngularVelocity)
	setM(&v.Throttling, p.IsThrottling)
	setM(&v.Reversing, p.IsReversing)
	setM(&v.Shooting, p.IsShooting)
	setM(&v.TurningLeft, p.IsTurningLeft)
	setM(&v.TurningRight, p.IsTurningRight)
	if p.IsHit != nil {
		v.Hit = *p.IsHit
	}
	if p.IsShot != nil {
		v.Shot = *p.IsShot
	}
	if p.Name != nil {
		v.Name = *p.Name
	}
	if p.Points != nil {
		v.Score = *p.Points
	}
}
