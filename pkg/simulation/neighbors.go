package simulation

import (
	"github.com/lao-tseu-is-alive/go-boids/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
)

// Within is the single perception test used everywhere: strictly closer
// than radius.
func Within(a, b geometry.Vector2D, radius float64) bool {
	return a.DistanceSquaredTo(b) < radius*radius
}

// Neighbors appends to dst the indexes of the agents of population within
// radius of pos, skipping the slot self (pass -1 when pos is not a member
// of population). Indexes come out in population order.
func Neighbors(dst []int, self int, pos geometry.Vector2D, population []behavior.Agent, radius float64) []int {
	for i := range population {
		if i == self {
			continue
		}
		if Within(pos, population[i].Pos, radius) {
			dst = append(dst, i)
		}
	}
	return dst
}

// NearestWithin returns the index of the agent of population closest to pos
// among those within radius, or -1. Ties keep the lowest index.
func NearestWithin(pos geometry.Vector2D, population []behavior.Agent, radius float64) int {
	best, bestDist := -1, radius*radius
	for i := range population {
		d := pos.DistanceSquaredTo(population[i].Pos)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// nearestOf is NearestWithin restricted to an already filtered index list.
func nearestOf(pos geometry.Vector2D, population []behavior.Agent, idx []int) int {
	best, bestDist := -1, 0.0
	for _, i := range idx {
		d := pos.DistanceSquaredTo(population[i].Pos)
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// gather copies the indexed agents into dst so rules receive plain values.
func gather(dst []behavior.Agent, population []behavior.Agent, idx []int) []behavior.Agent {
	for _, i := range idx {
		dst = append(dst, population[i])
	}
	return dst
}
