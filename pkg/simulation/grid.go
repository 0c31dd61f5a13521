package simulation

import (
	"math"
	"slices"

	"github.com/lao-tseu-is-alive/go-boids/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
)

type gridKey struct {
	x, y int
}

// spatialGrid buckets the slots of one population by cell. A query looks at
// the 3x3 block around the cell of pos, so it is complete for any radius up
// to cellSize.
type spatialGrid struct {
	cellSize float64
	cells    map[gridKey][]int
}

func newSpatialGrid(cellSize float64) *spatialGrid {
	// Clamp to a minimum of 10 to avoid tiny grids or div by zero
	return &spatialGrid{
		cellSize: math.Max(cellSize, 10),
		cells:    make(map[gridKey][]int),
	}
}

func (g *spatialGrid) key(p geometry.Vector2D) gridKey {
	return gridKey{
		x: int(math.Floor(p.X / g.cellSize)),
		y: int(math.Floor(p.Y / g.cellSize)),
	}
}

func (g *spatialGrid) rebuild(population []behavior.Agent) {
	// Keep capacity so steady-state ticks do not allocate.
	for k := range g.cells {
		g.cells[k] = g.cells[k][:0]
	}
	for i := range population {
		k := g.key(population[i].Pos)
		g.cells[k] = append(g.cells[k], i)
	}
}

// neighbors returns the same indexes, in the same order, as Neighbors.
func (g *spatialGrid) neighbors(dst []int, self int, pos geometry.Vector2D, population []behavior.Agent, radius float64) []int {
	if radius > g.cellSize {
		return Neighbors(dst, self, pos, population, radius)
	}

	start := len(dst)
	c := g.key(pos)
	for i := c.x - 1; i <= c.x+1; i++ {
		for j := c.y - 1; j <= c.y+1; j++ {
			for _, idx := range g.cells[gridKey{x: i, y: j}] {
				if idx == self || !Within(pos, population[idx].Pos, radius) {
					continue
				}
				dst = append(dst, idx)
			}
		}
	}
	slices.Sort(dst[start:])
	return dst
}
