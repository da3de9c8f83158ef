package term

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"car-arena/sim"
)

const (
	skidCapacity = 512
	skidFrames   = 90
)

var (
	styleDefault    = tcell.StyleDefault
	styleBorder     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleSkid       = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	styleLocal      = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleRemote     = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleShot       = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleOwnShell   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleOtherShell = tcell.StyleDefault.Foreground(tcell.ColorFuchsia)
	styleMarker     = tcell.StyleDefault.Foreground(tcell.ColorOlive)
	styleStatus     = tcell.StyleDefault.Reverse(true)
)

type skidMark struct {
	x, y  float64
	frame uint64
}

// skidTrail is a fixed ring of recent skid marks
type skidTrail struct {
	marks []skidMark
	next  int
}

func newSkidTrail(capacity int) *skidTrail {
	return &skidTrail{marks: make([]skidMark, 0, capacity)}
}

func (t *skidTrail) add(m skidMark) {
	if len(t.marks) < cap(t.marks) {
		t.marks = append(t.marks, m)
		return
	}
	t.marks[t.next] = m
	t.next = (t.next + 1) % len(t.marks)
}

// Renderer draws snapshots onto a tcell screen. It is called from the
// session goroutine only.
type Renderer struct {
	screen tcell.Screen
	scale  float64
	skids  *skidTrail
	frame  uint64
	cues   *Cues

	// Status, when set, supplies the bottom line
	Status func() string
}

// NewRenderer draws onto screen. cues may be nil.
func NewRenderer(screen tcell.Screen, cues *Cues) *Renderer {
	return &Renderer{
		screen: screen,
		scale:  DefaultScale,
		skids:  newSkidTrail(skidCapacity),
		cues:   cues,
	}
}

// Render draws one frame
func (r *Renderer) Render(snap sim.Snapshot) {
	r.frame++
	if r.cues != nil {
		r.cues.Observe(snap)
	}

	cols, rows := r.screen.Size()
	view := viewFor(snap, cols, rows, r.scale)

	r.screen.Clear()
	r.drawBorder(view, snap.Width, snap.Height)
	r.drawSkids(view, snap)
	r.drawProjectiles(view, snap.Projectiles)
	r.drawVehicles(view, snap.Vehicles)
	r.drawScoreboard(snap.Scoreboard())
	r.drawStatus(cols, rows)
	r.screen.Show()
}

func (r *Renderer) drawBorder(v View, w, h float64) {
	for row := 0; row < v.Rows; row++ {
		for col := 0; col < v.Cols; col++ {
			vert, horiz := v.edgeAt(col, row, w, h)
			switch {
			case vert && horiz:
				r.screen.SetContent(col, row, '+', nil, styleBorder)
			case vert:
				r.screen.SetContent(col, row, '│', nil, styleBorder)
			case horiz:
				r.screen.SetContent(col, row, '─', nil, styleBorder)
			}
		}
	}
}

func (r *Renderer) drawSkids(v View, snap sim.Snapshot) {
	for _, p := range snap.Vehicles {
		if p.Skidding {
			r.skids.add(skidMark{x: p.X, y: p.Y, frame: r.frame})
		}
	}
	for _, m := range r.skids.marks {
		if r.frame-m.frame > skidFrames {
			continue
		}
		if col, row, ok := v.Cell(m.x, m.y); ok {
			r.screen.SetContent(col, row, '░', nil, styleSkid)
		}
	}
}

func (r *Renderer) drawProjectiles(v View, shells []sim.ProjectilePose) {
	for _, p := range shells {
		col, row, ok := v.Cell(p.X, p.Y)
		if !ok {
			continue
		}
		style := styleOtherShell
		if p.Local {
			style = styleOwnShell
		}
		r.screen.SetContent(col, row, '•', nil, style)
	}
}

func (r *Renderer) drawVehicles(v View, vehicles []sim.VehiclePose) {
	for _, p := range vehicles {
		style := styleRemote
		switch {
		case p.Shot:
			style = styleShot
		case p.Local:
			style = styleLocal
		}

		col, row, ok := v.Cell(p.X, p.Y)
		if !ok {
			if !p.Local {
				dc, dr := markerOffset(p.Bearing)
				r.screen.SetContent(v.Cols/2+dc, v.Rows/2+dr, '◆', nil, styleMarker)
			}
			continue
		}
		r.screen.SetContent(col, row, HeadingRune(p.Angle), nil, style)
		if p.Name != "" {
			r.drawText(col+2, row, p.Name, style)
		}
	}
}

func (r *Renderer) drawScoreboard(entries []sim.ScoreEntry) {
	for i, e := range entries {
		style := styleDefault
		if e.Local {
			style = styleLocal
		}
		r.drawText(1, i, fmt.Sprintf("%-12.12s %4d", e.Name, e.Score), style)
	}
}

func (r *Renderer) drawStatus(cols, rows int) {
	line := "arrows/wasd drive  space fire  drag mouse to steer  ^D leave  esc quit"
	if r.Status != nil {
		line = r.Status() + "  " + line
	}
	for col := 0; col < cols; col++ {
		r.screen.SetContent(col, rows-1, ' ', nil, styleStatus)
	}
	r.drawText(0, rows-1, line, styleStatus)
}

func (r *Renderer) drawText(col, row int, s string, style tcell.Style) {
	for _, ch := range s {
		r.screen.SetContent(col, row, ch, nil, style)
		col++
	}
}
