package behavior

import "github.com/lao-tseu-is-alive/go-boids/pkg/geometry"

// Centroid returns the center of mass of the agents' positions.
func Centroid(agents []Agent) (geometry.Vector2D, bool) {
	if len(agents) == 0 {
		return geometry.Vector2D{}, false
	}
	var sum geometry.Vector2D
	for i := range agents {
		sum = sum.Add(agents[i].Pos)
	}
	return sum.Div(float64(len(agents))), true
}

// SelectTarget returns the index of the target furthest from the targets'
// centroid: the one that strayed from the protection of its group.
// Ties keep the lowest index. It returns -1 for an empty slice.
func SelectTarget(targets []Agent) int {
	center, ok := Centroid(targets)
	if !ok {
		return -1
	}
	return FurthestFrom(center, targets)
}

// FurthestFrom returns the index of the agent furthest from center, or -1.
func FurthestFrom(center geometry.Vector2D, targets []Agent) int {
	best, bestDist := -1, -1.0
	for i := range targets {
		d := targets[i].Pos.DistanceSquaredTo(center)
		if d > bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// Intercept projects the target's position lookahead ticks ahead.
func Intercept(target Agent, lookahead float64) geometry.Vector2D {
	return target.Pos.Add(target.Vel.Mul(lookahead))
}
