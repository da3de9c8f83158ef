package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpatialGridInsertAndQuery(t *testing.T) {
	grid := NewSpatialGrid(DefaultWidth, DefaultHeight)
	grid.Insert(100, 100, 7)

	assert.Contains(t, grid.QueryBuf(100, 100, 10, nil), 7)
	assert.NotContains(t, grid.QueryBuf(1200, 1200, 10, nil), 7)
}

func TestSpatialGridClear(t *testing.T) {
	grid := NewSpatialGrid(DefaultWidth, DefaultHeight)
	grid.Insert(500, 500, 1)
	grid.Clear()

	assert.Empty(t, grid.QueryBuf(500, 500, 50, nil))
}

func TestSpatialGridAcrossCellEdge(t *testing.T) {
	grid := NewSpatialGrid(DefaultWidth, DefaultHeight)
	grid.Insert(gridCellSize-1, gridCellSize-1, 3)

	assert.Contains(t, grid.QueryBuf(gridCellSize+5, gridCellSize+5, 9.5, nil), 3)
}

func TestSpatialGridBoundaryClamp(t *testing.T) {
	grid := NewSpatialGrid(DefaultWidth, DefaultHeight)
	grid.Insert(-10, -10, 0)
	grid.Insert(DefaultWidth+20, DefaultHeight+20, 1)

	assert.Contains(t, grid.QueryBuf(0, 0, 5, nil), 0)
	assert.Contains(t, grid.QueryBuf(DefaultWidth, DefaultHeight, 5, nil), 1)
}
