package input

// Point is a touch position in viewport pixels
type Point struct {
	X, Y float64
}

// Touch maps a drag gesture to analog axes. The drag distance is measured
// against a third of the viewport, so sweeping a third of the screen gives
// full deflection. Values persist until every finger is lifted.
type Touch struct {
	active  bool
	fingers int
	prev    Point
	width   float64
	height  float64
	vec     ControlVector
}

// NewTouch creates an idle touch source
func NewTouch() *Touch {
	return &Touch{}
}

// Start begins or extends a gesture. Only the first finger sets the anchor.
func (t *Touch) Start(p Point, viewportW, viewportH float64) {
	t.fingers++
	if t.active {
		return
	}
	t.active = true
	t.prev = p
	t.width = viewportW
	t.height = viewportH
}

// Move updates the axes from the first finger's displacement since the last
// event. A second finger on the screen holds the trigger.
func (t *Touch) Move(points []Point) {
	if !t.active || len(points) == 0 {
		return
	}
	p := points[0]
	dx := p.X - t.prev.X
	dy := p.Y - t.prev.Y
	t.prev = p

	if t.width > 0 {
		sx := dx / (t.width / 3)
		t.vec.Left -= sx
		t.vec.Right += sx
	}
	if t.height > 0 {
		sy := dy / (t.height / 3)
		t.vec.Up -= sy
		t.vec.Down += sy
	}
	t.vec.Shoot = boolAxis(len(points) > 1)
	t.vec = t.vec.clamped()
}

// End lifts one finger. The gesture ends, and every axis resets, when none
// remain.
func (t *Touch) End() {
	if t.fingers > 0 {
		t.fingers--
	}
	if t.fingers > 0 {
		return
	}
	t.active = false
	t.vec = ControlVector{}
}

// Active reports whether a gesture is in progress
func (t *Touch) Active() bool {
	return t.active
}

// Vector returns the current analog control vector
func (t *Touch) Vector() ControlVector {
	return t.vec
}
