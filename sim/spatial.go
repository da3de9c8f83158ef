package sim

import "math"

const gridCellSize = 32.0

// SpatialGrid is a uniform grid over the world for broad-phase queries.
// Positions outside the world are clamped into the border cells, which only
// ever widens the candidate set.
type SpatialGrid struct {
	cols, rows int
	cells      [][]int
}

// NewSpatialGrid sizes a grid for a width x height world
func NewSpatialGrid(width, height float64) *SpatialGrid {
	cols := int(math.Ceil(width/gridCellSize)) + 1
	rows := int(math.Ceil(height/gridCellSize)) + 1
	return &SpatialGrid{
		cols:  cols,
		rows:  rows,
		cells: make([][]int, cols*rows),
	}
}

// Clear resets all cells (keeps allocated capacity)
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

func (g *SpatialGrid) cellCoord(v float64, n int) int {
	c := int(math.Floor(v / gridCellSize))
	if c < 0 {
		return 0
	}
	if c >= n {
		return n - 1
	}
	return c
}

// Insert adds an index at the given position
func (g *SpatialGrid) Insert(x, y float64, idx int) {
	cx := g.cellCoord(x, g.cols)
	cy := g.cellCoord(y, g.rows)
	i := cy*g.cols + cx
	g.cells[i] = append(g.cells[i], idx)
}

// QueryBuf appends every index stored in cells overlapping the box around
// (x, y) to buf and returns the extended slice.
func (g *SpatialGrid) QueryBuf(x, y, radius float64, buf []int) []int {
	minCX := g.cellCoord(x-radius, g.cols)
	maxCX := g.cellCoord(x+radius, g.cols)
	minCY := g.cellCoord(y-radius, g.rows)
	maxCY := g.cellCoord(y+radius, g.rows)
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			buf = append(buf, g.cells[cy*g.cols+cx]...)
		}
	}
	return buf
}
