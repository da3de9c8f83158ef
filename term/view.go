package term

import (
	"math"

	"car-arena/sim"
)

// DefaultScale is world units per terminal column. Rows are twice as tall.
const DefaultScale = 4.0

var headingRunes = [8]rune{'↑', '↗', '→', '↘', '↓', '↙', '←', '↖'}

// View projects world coordinates onto a screen of cells centred on a
// camera position
type View struct {
	CamX, CamY float64
	Cols, Rows int
	Scale      float64
}

func (v View) sx() float64 { return v.Scale }
func (v View) sy() float64 { return v.Scale * 2 }

// Cell returns the cell containing world point (x, y) and whether it is on
// screen
func (v View) Cell(x, y float64) (col, row int, ok bool) {
	col = v.Cols/2 + int(math.Floor((x-v.CamX)/v.sx()+0.5))
	row = v.Rows/2 + int(math.Floor((y-v.CamY)/v.sy()+0.5))
	ok = col >= 0 && col < v.Cols && row >= 0 && row < v.Rows
	return col, row, ok
}

// World returns the world point at the centre of cell (col, row)
func (v View) World(col, row int) (x, y float64) {
	x = v.CamX + float64(col-v.Cols/2)*v.sx()
	y = v.CamY + float64(row-v.Rows/2)*v.sy()
	return x, y
}

// edgeAt reports which world borders fall inside cell (col, row)
func (v View) edgeAt(col, row int, w, h float64) (vertical, horizontal bool) {
	x, y := v.World(col, row)
	hx, hy := v.sx()/2, v.sy()/2
	inX := x+hx >= 0 && x-hx <= w
	inY := y+hy >= 0 && y-hy <= h
	vertical = inY && (spans(x, hx, 0) || spans(x, hx, w))
	horizontal = inX && (spans(y, hy, 0) || spans(y, hy, h))
	return vertical, horizontal
}

func spans(c, half, edge float64) bool {
	return edge >= c-half && edge < c+half
}

// HeadingRune picks an arrow for a vehicle angle. Angle zero points up the
// screen and grows clockwise.
func HeadingRune(angle float64) rune {
	a := sim.NormalizeAngle(angle)
	if a < 0 {
		a += 2 * math.Pi
	}
	idx := int(math.Round(a/(math.Pi/4))) % len(headingRunes)
	return headingRunes[idx]
}

// markerOffset places an off-screen indicator a few cells out from the
// centre along bearing
func markerOffset(bearing float64) (dc, dr int) {
	const rx, ry = 4.0, 2.0
	return int(math.Round(math.Cos(bearing) * rx)), int(math.Round(math.Sin(bearing) * ry))
}

func viewFor(snap sim.Snapshot, cols, rows int, scale float64) View {
	v := View{Cols: cols, Rows: rows, Scale: scale, CamX: snap.Width / 2, CamY: snap.Height / 2}
	if local, ok := snap.Local(); ok {
		v.CamX, v.CamY = local.X, local.Y
	}
	return v
}
