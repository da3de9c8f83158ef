package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizerPriority(t *testing.T) {
	pads := fakePads{{Index: 0, Connected: true, Axes: []float64{0, 0, 0, 0}}}
	n := NewNormalizer(nil, pads)

	n.Keyboard.Press("s")
	n.PollGamepads()
	assert.Equal(t, ControlVector{Down: 1}, n.Controls(), "keyboard when nothing else is active")

	n.Touch.Start(Point{}, 300, 300)
	assert.True(t, n.Controls().IsZero(), "touch gesture in progress owns the vector")

	pads[0].Axes[0] = 0.5
	n.PollGamepads()
	assert.Equal(t, ControlVector{Right: 0.5}, n.Controls())

	pads[0].Axes[0] = 0
	n.PollGamepads()
	n.Touch.End()
	assert.Equal(t, ControlVector{Down: 1}, n.Controls())
}

func TestNormalizerPollsOnlyWhenAsked(t *testing.T) {
	pads := fakePads{{Index: 0, Connected: true, Axes: []float64{0, 0, 0, 0}}}
	n := NewNormalizer(nil, pads)
	n.PollGamepads()

	pads[0].Axes[1] = -1
	assert.True(t, n.Controls().IsZero())

	n.PollGamepads()
	assert.Equal(t, ControlVector{Up: 1}, n.Controls())
}
