package behavior

import (
	"fmt"

	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
)

// Role decides which steering rules apply to an agent.
type Role uint8

const (
	RoleFlocker Role = iota
	RolePrey
	RolePredator
)

func (r Role) String() string {
	switch r {
	case RoleFlocker:
		return "flocker"
	case RolePrey:
		return "prey"
	case RolePredator:
		return "predator"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// Weights are divisors applied to each steering rule: a larger value makes
// the rule pull weaker. They must all be strictly positive.
type Weights struct {
	Cohesion          float64
	Alignment         float64
	Separation        float64
	ObstacleAvoidance float64
	Goal              float64
}

// Agent represents a single boid.
// Boids is an artificial life program, developed by Craig Reynolds in 1986,
// which simulates the flocking behaviour of birds, and related group motion.
// The name "boid" corresponds to a shortened version of "bird-oid object".
// https://en.wikipedia.org/wiki/Boids
//
// Agent is a plain value. Agents never point at each other: a neighbor is
// whatever the caller passes in for the current tick.
type Agent struct {
	ID   uint32
	Role Role
	Pos  geometry.Vector2D
	Vel  geometry.Vector2D

	Weights     Weights
	FieldOfView float64 // obstacle and predator/prey perception radius
	MaxSpeed    float64
}

// Speed returns the current velocity magnitude.
func (a *Agent) Speed() float64 {
	return a.Vel.Len()
}

// Obstacle is a static square. Pos is its top-left corner, avoidance always
// works on Center().
type Obstacle struct {
	Pos       geometry.Vector2D
	HalfWidth float64
}

// Center returns the geometric center of the obstacle.
func (o Obstacle) Center() geometry.Vector2D {
	return o.Pos.Add(geometry.Vector2D{X: o.HalfWidth, Y: o.HalfWidth})
}

// Contains reports whether p lies inside the obstacle's box.
func (o Obstacle) Contains(p geometry.Vector2D) bool {
	size := 2 * o.HalfWidth
	return p.X >= o.Pos.X && p.X <= o.Pos.X+size &&
		p.Y >= o.Pos.Y && p.Y <= o.Pos.Y+size
}
