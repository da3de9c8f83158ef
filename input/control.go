// Package input turns keyboard, touch-drag and gamepad signals into a single
// ControlVector.
package input

// ControlVector is the per-sample control state. Every axis is in [0,1].
type ControlVector struct {
	Up    float64
	Down  float64
	Left  float64
	Right float64
	Shoot float64
}

// IsZero reports whether every axis is zero
func (c ControlVector) IsZero() bool {
	return c == ControlVector{}
}

func (c ControlVector) clamped() ControlVector {
	return ControlVector{
		Up:    clamp01(c.Up),
		Down:  clamp01(c.Down),
		Left:  clamp01(c.Left),
		Right: clamp01(c.Right),
		Shoot: clamp01(c.Shoot),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func boolAxis(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
