// Package behavior implements the local steering rules of a boid.
//
// Every rule reads the agent and the neighbors or targets it is given and
// adds a velocity change to a.Vel. Rules never look at the rest of the
// world and never keep state between calls. Passing an empty neighbor list
// is always valid and leaves the velocity untouched.
package behavior

import (
	"math"

	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
)

// Cohesion moves the agent toward the center of mass of its neighbors.
// Neighbors sitting exactly on the agent are skipped but still count in the
// average, so a lone coincident neighbor produces no pull at all.
func Cohesion(a *Agent, neighbors []Agent) {
	if len(neighbors) == 0 {
		return
	}

	var sum geometry.Vector2D
	for i := range neighbors {
		n := &neighbors[i]
		if n.Pos == a.Pos {
			continue
		}
		sum = sum.Add(a.Pos.Sub(n.Pos))
	}
	avg := sum.Div(float64(len(neighbors)))

	a.Vel = a.Vel.Sub(avg.Div(a.Weights.Cohesion))
}

// Alignment steers the agent along the mean velocity of its neighbors.
func Alignment(a *Agent, neighbors []Agent) {
	if len(neighbors) == 0 {
		return
	}

	var sum geometry.Vector2D
	for i := range neighbors {
		sum = sum.Add(neighbors[i].Vel)
	}
	mean := sum.Div(float64(len(neighbors)))

	a.Vel = a.Vel.Add(mean.Div(a.Weights.Alignment))
}

// Separation pushes the agent away from neighbors closer than minDistance.
// Per axis the push has magnitude max(|d|-sqrt(minDistance), sqrt(minDistance))
// and points away from the neighbor, so it never turns into attraction and
// is never weaker than sqrt(minDistance) at close range. An axis with no
// difference has no sign to keep and contributes nothing.
func Separation(a *Agent, neighbors []Agent, minDistance float64) {
	if len(neighbors) == 0 {
		return
	}

	reach := math.Sqrt(minDistance)
	var acc geometry.Vector2D
	tooClose := 0
	for i := range neighbors {
		n := &neighbors[i]
		if a.Pos.DistanceTo(n.Pos) >= minDistance {
			continue
		}
		tooClose++
		diff := a.Pos.Sub(n.Pos)
		acc.X += separationAxis(diff.X, reach)
		acc.Y += separationAxis(diff.Y, reach)
	}
	if tooClose == 0 {
		return
	}

	a.Vel = a.Vel.Sub(acc.Div(a.Weights.Separation))
}

// separationAxis returns the term subtracted from the velocity, so its sign
// is opposite to diff.
func separationAxis(diff, reach float64) float64 {
	if diff == 0 {
		return 0
	}
	push := math.Max(math.Abs(diff)-reach, reach)
	return -math.Copysign(push, diff)
}

// AvoidObstacle steers away from the obstacle's center. The caller decides
// whether the obstacle is close enough to matter.
func AvoidObstacle(a *Agent, o Obstacle) {
	away := o.Center().Sub(a.Pos).Neg()
	a.Vel = a.Vel.Add(away.Div(a.Weights.ObstacleAvoidance))
}

// AvoidObstacleHard behaves like AvoidObstacle, except that when the obstacle
// center is closer than hardDistance the velocity is replaced by the full
// unweighted repulsion vector.
func AvoidObstacleHard(a *Agent, o Obstacle, hardDistance float64) {
	center := o.Center()
	if a.Pos.DistanceTo(center) < hardDistance {
		a.Vel = center.Sub(a.Pos).Neg()
		return
	}
	AvoidObstacle(a, o)
}

// Seek pulls the agent toward goal.
func Seek(a *Agent, goal geometry.Vector2D) {
	a.Vel = a.Vel.Add(goal.Sub(a.Pos).Div(a.Weights.Goal))
}

// Flee steers away from where the predator will be after lookahead ticks.
// jitter is called once per axis so the escape is not a straight line.
func Flee(a *Agent, predator Agent, lookahead float64, jitter func() float64) {
	projected := Intercept(predator, lookahead)
	away := projected.Sub(a.Pos).Div(a.Weights.ObstacleAvoidance).Neg()
	a.Vel.X += away.X * jitter()
	a.Vel.Y += away.Y * jitter()
}

// Attack chases the visible target that strayed furthest from the group's
// centroid, aiming at its projected position. With no targets the agent
// heads back toward home instead. It returns the index of the chased
// target, or -1.
func Attack(a *Agent, targets []Agent, lookahead float64, home geometry.Vector2D, homeWeight float64) int {
	idx := SelectTarget(targets)
	if idx < 0 {
		ReturnToCenter(a, home, homeWeight)
		return -1
	}

	aim := Intercept(targets[idx], lookahead)
	a.Vel = a.Vel.Add(aim.Sub(a.Pos).Div(a.Weights.Goal))
	return idx
}

// ReturnToCenter is a mild pull toward the world center.
func ReturnToCenter(a *Agent, center geometry.Vector2D, weight float64) {
	a.Vel = a.Vel.Add(center.Sub(a.Pos).Div(weight))
}
