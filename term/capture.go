package term

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"car-arena/input"
)

const (
	eventBufSize  = 100
	latchInterval = 20 * time.Millisecond
)

// Target is where captured input goes. Input must only be touched from
// inside a Do callback.
type Target interface {
	Do(fn func()) bool
	Input() *input.Normalizer
}

// Capture reads terminal events and feeds keys and mouse drags into a
// session's normalizer
type Capture struct {
	screen tcell.Screen
	target Target
	log    zerolog.Logger
	now    func() time.Time

	latch *KeyLatch

	// OnQuit runs on Escape or Ctrl-C
	OnQuit func()
	// OnDisconnect runs on Ctrl-D
	OnDisconnect func()

	drag mouseDrag
}

// NewCapture wires screen events to target. hold is the key latch window.
func NewCapture(screen tcell.Screen, target Target, hold time.Duration, log zerolog.Logger) *Capture {
	return &Capture{
		screen: screen,
		target: target,
		log:    log.With().Str("component", "capture").Logger(),
		now:    time.Now,
		latch:  NewKeyLatch(target.Input().Keyboard, hold),
	}
}

// Run polls the screen until ctx is done or the screen is finalized
func (c *Capture) Run(ctx context.Context) {
	events := make(chan tcell.Event, eventBufSize)
	go func() {
		defer close(events)
		for {
			ev := c.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(latchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.handle(ev)
		case <-ticker.C:
			now := c.now()
			c.target.Do(func() { c.latch.Expire(now) })
		}
	}
}

func (c *Capture) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			if c.OnQuit != nil {
				c.OnQuit()
			}
			return
		case tcell.KeyCtrlD:
			c.target.Do(c.latch.Reset)
			if c.OnDisconnect != nil {
				c.OnDisconnect()
			}
			return
		}
		k, ok := TranslateKey(ev)
		if !ok {
			return
		}
		now := c.now()
		c.target.Do(func() { c.latch.Press(k, now) })

	case *tcell.EventMouse:
		w, h := c.screen.Size()
		x, y := ev.Position()
		ops := c.drag.update(ev.Buttons(), input.Point{X: float64(x), Y: float64(y)}, float64(w), float64(h))
		if len(ops) == 0 {
			return
		}
		c.target.Do(func() {
			touch := c.target.Input().Touch
			for _, op := range ops {
				op(touch)
			}
		})

	case *tcell.EventResize:
		c.screen.Sync()
	}
}

type touchOp func(t *input.Touch)

// mouseDrag turns mouse button state into touch gestures. The primary
// button is the steering finger; any other button adds a second finger,
// which fires.
type mouseDrag struct {
	primary   bool
	secondary bool
}

func (d *mouseDrag) update(buttons tcell.ButtonMask, p input.Point, w, h float64) []touchOp {
	primary := buttons&tcell.Button1 != 0
	secondary := primary && buttons&(tcell.Button2|tcell.Button3) != 0

	var ops []touchOp
	if primary && !d.primary {
		ops = append(ops, func(t *input.Touch) { t.Start(p, w, h) })
	}
	if secondary && !d.secondary {
		ops = append(ops, func(t *input.Touch) { t.Start(p, w, h) })
	}
	if !secondary && d.secondary {
		ops = append(ops, func(t *input.Touch) { t.End() })
	}
	if primary {
		points := []input.Point{p}
		if secondary {
			points = append(points, p)
		}
		ops = append(ops, func(t *input.Touch) { t.Move(points) })
	}
	if !primary && d.primary {
		ops = append(ops, func(t *input.Touch) { t.End() })
	}
	d.primary = primary
	d.secondary = secondary
	return ops
}
