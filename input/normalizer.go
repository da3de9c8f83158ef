package input

// Normalizer merges keyboard, touch and gamepad state into one vector.
// An active gamepad wins, then an active touch gesture, then the keyboard.
type Normalizer struct {
	Keyboard *Keyboard
	Touch    *Touch
	Pads     *Gamepads
}

// NewNormalizer creates a Normalizer. pads may be nil.
func NewNormalizer(b Bindings, pads GamepadSource) *Normalizer {
	return &Normalizer{
		Keyboard: NewKeyboard(b),
		Touch:    NewTouch(),
		Pads:     NewGamepads(pads),
	}
}

// PollGamepads refreshes gamepad state. Call it at a fixed rate.
func (n *Normalizer) PollGamepads() {
	n.Pads.Poll()
}

// Controls returns the vector from the highest-priority active source
func (n *Normalizer) Controls() ControlVector {
	if v, ok := n.Pads.Active(); ok {
		return v
	}
	if n.Touch.Active() {
		return n.Touch.Vector()
	}
	return n.Keyboard.Vector()
}
