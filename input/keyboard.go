package input

import (
	"fmt"
	"strings"
)

// Axis names one component of the ControlVector
type Axis int

const (
	AxisUp Axis = iota
	AxisDown
	AxisLeft
	AxisRight
	AxisShoot
)

var axisNames = map[string]Axis{
	"up":    AxisUp,
	"down":  AxisDown,
	"left":  AxisLeft,
	"right": AxisRight,
	"shoot": AxisShoot,
}

func (a Axis) String() string {
	for name, axis := range axisNames {
		if axis == a {
			return name
		}
	}
	return fmt.Sprintf("axis(%d)", int(a))
}

// Key is a device-independent key name
type Key string

const (
	KeyArrowUp    Key = "ArrowUp"
	KeyArrowDown  Key = "ArrowDown"
	KeyArrowLeft  Key = "ArrowLeft"
	KeyArrowRight Key = "ArrowRight"
	KeySpace      Key = "Space"
)

// Bindings maps each axis to the keys that drive it
type Bindings map[Axis][]Key

// DefaultBindings returns the arrow cluster plus WASD, with space to shoot
func DefaultBindings() Bindings {
	return Bindings{
		AxisUp:    {KeyArrowUp, "w"},
		AxisDown:  {KeyArrowDown, "s"},
		AxisLeft:  {KeyArrowLeft, "a"},
		AxisRight: {KeyArrowRight, "d"},
		AxisShoot: {KeySpace},
	}
}

// ParseBindings builds Bindings from axis name to key names, as found in
// configuration files. Axes missing from raw keep their defaults.
func ParseBindings(raw map[string][]string) (Bindings, error) {
	b := DefaultBindings()
	for name, keys := range raw {
		axis, ok := axisNames[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unknown axis %q", name)
		}
		bound := make([]Key, 0, len(keys))
		for _, k := range keys {
			if k == "" {
				continue
			}
			bound = append(bound, Key(k))
		}
		b[axis] = bound
	}
	return b, nil
}

// Keyboard tracks held keys and maps them through Bindings
type Keyboard struct {
	bindings Bindings
	held     map[Key]bool
}

// NewKeyboard creates a Keyboard; nil bindings means DefaultBindings
func NewKeyboard(b Bindings) *Keyboard {
	if b == nil {
		b = DefaultBindings()
	}
	return &Keyboard{bindings: b, held: make(map[Key]bool)}
}

// Press marks key as held
func (k *Keyboard) Press(key Key) {
	k.held[key] = true
}

// Release marks key as no longer held
func (k *Keyboard) Release(key Key) {
	delete(k.held, key)
}

// Held reports whether key is down
func (k *Keyboard) Held(key Key) bool {
	return k.held[key]
}

// Reset releases every key
func (k *Keyboard) Reset() {
	clear(k.held)
}

// Vector returns the digital control vector for the held keys
func (k *Keyboard) Vector() ControlVector {
	return ControlVector{
		Up:    boolAxis(k.axis(AxisUp)),
		Down:  boolAxis(k.axis(AxisDown)),
		Left:  boolAxis(k.axis(AxisLeft)),
		Right: boolAxis(k.axis(AxisRight)),
		Shoot: boolAxis(k.axis(AxisShoot)),
	}
}

func (k *Keyboard) axis(a Axis) bool {
	for _, key := range k.bindings[a] {
		if k.held[key] {
			return true
		}
	}
	return false
}
