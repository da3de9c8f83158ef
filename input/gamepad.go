package input

import "sort"

// Button is one gamepad button reading
type Button struct {
	Pressed bool
	Value   float64
}

// GamepadState is a snapshot of one pad in the standard layout
type GamepadState struct {
	Index     int
	Connected bool
	Axes      []float64
	Buttons   []Button
}

// GamepadSource enumerates connected gamepads. It is polled, not evented.
type GamepadSource interface {
	Gamepads() []GamepadState
}

// Gamepads polls a GamepadSource and remembers the derived vector per pad
type Gamepads struct {
	source  GamepadSource
	vectors map[int]ControlVector
	order   []int
}

// NewGamepads wraps source; a nil source never reports activity
func NewGamepads(source GamepadSource) *Gamepads {
	return &Gamepads{source: source, vectors: make(map[int]ControlVector)}
}

// Poll refreshes every connected pad
func (g *Gamepads) Poll() {
	clear(g.vectors)
	g.order = g.order[:0]
	if g.source == nil {
		return
	}
	for _, s := range g.source.Gamepads() {
		if !s.Connected {
			continue
		}
		g.vectors[s.Index] = MapGamepad(s)
		g.order = append(g.order, s.Index)
	}
	sort.Ints(g.order)
}

// Active returns the vector of the lowest-indexed pad with any non-zero axis
func (g *Gamepads) Active() (ControlVector, bool) {
	for _, idx := range g.order {
		if v := g.vectors[idx]; !v.IsZero() {
			return v, true
		}
	}
	return ControlVector{}, false
}

// MapGamepad derives a control vector from the standard mapping: face
// buttons and triggers, the d-pad, and both sticks.
func MapGamepad(s GamepadState) ControlVector {
	b := func(i int) float64 {
		if i >= len(s.Buttons) || !s.Buttons[i].Pressed {
			return 0
		}
		return s.Buttons[i].Value
	}
	axis := func(i int) float64 {
		if i >= len(s.Axes) {
			return 0
		}
		return s.Axes[i]
	}
	neg := func(v float64) float64 {
		if v < 0 {
			return -v
		}
		return 0
	}
	pos := func(v float64) float64 {
		if v > 0 {
			return v
		}
		return 0
	}

	shoot := b(2)
	if shoot == 0 {
		shoot = b(5)
	}
	v := ControlVector{
		Up:    max(b(0), b(12), b(7), neg(axis(1)), neg(axis(3))),
		Down:  max(b(1), b(13), b(6), pos(axis(1)), pos(axis(3))),
		Left:  max(b(14), neg(axis(0)), neg(axis(2))),
		Right: max(b(15), pos(axis(0)), pos(axis(2))),
		Shoot: shoot,
	}
	return v.clamped()
}
