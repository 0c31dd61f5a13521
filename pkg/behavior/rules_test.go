package behavior

import (
	"math"
	"testing"

	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
)

const tolerance = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

func newAgent(x, y, vx, vy float64) Agent {
	return Agent{
		Pos: geometry.Vector2D{X: x, Y: y},
		Vel: geometry.Vector2D{X: vx, Y: vy},
		Weights: Weights{
			Cohesion:          100,
			Alignment:         40,
			Separation:        5,
			ObstacleAvoidance: 10,
			Goal:              100,
		},
		FieldOfView: 60,
		MaxSpeed:    8,
	}
}

func TestCohesion_EmptyIsIdentity(t *testing.T) {
	a := newAgent(10, 10, 1.5, -2)
	before := a.Vel
	Cohesion(&a, nil)
	if a.Vel != before {
		t.Errorf("Cohesion(empty) changed velocity %v -> %v", before, a.Vel)
	}
}

func TestCohesion_CoincidentNeighborIsSkipped(t *testing.T) {
	a := newAgent(50, 50, 1, 1)
	a.Weights.Cohesion = 100
	before := a.Vel
	Cohesion(&a, []Agent{newAgent(50, 50, 3, 3)})
	if a.Vel != before {
		t.Errorf("Cohesion with coincident neighbor changed velocity %v -> %v", before, a.Vel)
	}
}

func TestCohesion_PullsTowardCentroid(t *testing.T) {
	a := newAgent(0, 0, 0, 0)
	neighbors := []Agent{newAgent(10, 0, 0, 0), newAgent(10, 20, 0, 0)}
	Cohesion(&a, neighbors)

	// mean displacement of a relative to the neighbors is (-10, -10)
	want := geometry.Vector2D{X: 10.0 / 100, Y: 10.0 / 100}
	if !a.Vel.Eq(want) {
		t.Errorf("Cohesion velocity = %v; want %v", a.Vel, want)
	}
}

func TestAlignment(t *testing.T) {
	tests := []struct {
		name      string
		neighbors []Agent
		want      geometry.Vector2D
	}{
		{"Empty", nil, geometry.Vector2D{X: 1, Y: 1}},
		{
			"UsesEachAxisMean",
			[]Agent{newAgent(5, 0, 4, -8), newAgent(0, 5, 0, 0)},
			// mean velocity (2, -4), weight 40
			geometry.Vector2D{X: 1 + 2.0/40, Y: 1 - 4.0/40},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAgent(0, 0, 1, 1)
			Alignment(&a, tt.neighbors)
			if !a.Vel.Eq(tt.want) {
				t.Errorf("Alignment velocity = %v; want %v", a.Vel, tt.want)
			}
		})
	}
}

func TestSeparation_NobodyTooCloseIsIdentity(t *testing.T) {
	a := newAgent(0, 0, 2, 3)
	before := a.Vel
	Separation(&a, []Agent{newAgent(30, 0, 0, 0), newAgent(0, -25, 0, 0)}, 20)
	if a.Vel != before {
		t.Errorf("Separation changed velocity %v -> %v with no close neighbor", before, a.Vel)
	}

	Separation(&a, nil, 20)
	if a.Vel != before {
		t.Errorf("Separation(empty) changed velocity %v -> %v", before, a.Vel)
	}
}

func TestSeparation_TwoAgentsPushApart(t *testing.T) {
	left := newAgent(0, 0, 0, 0)
	right := newAgent(10, 0, 0, 0)
	left.Weights.Separation = 5
	right.Weights.Separation = 5

	snapLeft, snapRight := left, right
	Separation(&left, []Agent{snapRight}, 20)
	Separation(&right, []Agent{snapLeft}, 20)

	magnitude := math.Abs((math.Sqrt(20) - 10) / 5)
	if !near(left.Vel.X, -magnitude) {
		t.Errorf("left vx = %v; want %v", left.Vel.X, -magnitude)
	}
	if !near(right.Vel.X, magnitude) {
		t.Errorf("right vx = %v; want %v", right.Vel.X, magnitude)
	}
	if left.Vel.Y != 0 || right.Vel.Y != 0 {
		t.Errorf("separation along X leaked into Y: %v, %v", left.Vel, right.Vel)
	}
}

func TestSeparation_CloseRangeNeverAttracts(t *testing.T) {
	floor := math.Sqrt(20) / 5
	for _, d := range []float64{0.5, 1, 2, 3, 4, math.Sqrt(20), 5, 8} {
		left := newAgent(0, 0, 0, 0)
		right := newAgent(d, 0, 0, 0)

		snapLeft, snapRight := left, right
		Separation(&left, []Agent{snapRight}, 20)
		Separation(&right, []Agent{snapLeft}, 20)

		if left.Vel.X >= 0 || right.Vel.X <= 0 {
			t.Errorf("d=%v: left vx %v, right vx %v; want them pushed apart", d, left.Vel.X, right.Vel.X)
		}
		if math.Abs(left.Vel.X) < floor-tolerance {
			t.Errorf("d=%v: push %v weaker than the close-range floor %v", d, math.Abs(left.Vel.X), floor)
		}
	}

	// diagonal neighbor: both axes repel
	a := newAgent(0, 0, 0, 0)
	Separation(&a, []Agent{newAgent(2, -3, 0, 0)}, 20)
	if a.Vel.X >= 0 || a.Vel.Y <= 0 {
		t.Errorf("diagonal neighbor at (2,-3): velocity %v; want (-, +)", a.Vel)
	}
}

func TestAvoidObstacle_UsesCenter(t *testing.T) {
	o := Obstacle{Pos: geometry.Vector2D{X: 100, Y: 100}, HalfWidth: 15}
	a := newAgent(100, 115, 0, 0) // level with the center, 15 to its left
	a.Weights.ObstacleAvoidance = 10

	AvoidObstacle(&a, o)
	want := geometry.Vector2D{X: -1.5, Y: 0}
	if !a.Vel.Eq(want) {
		t.Errorf("AvoidObstacle velocity = %v; want %v", a.Vel, want)
	}
}

func TestAvoidObstacleHard(t *testing.T) {
	o := Obstacle{Pos: geometry.Vector2D{X: 100, Y: 100}, HalfWidth: 15}

	t.Run("OverridesWhenClose", func(t *testing.T) {
		a := newAgent(105, 115, 7, 7)
		AvoidObstacleHard(&a, o, 45)
		want := geometry.Vector2D{X: -10, Y: 0}
		if !a.Vel.Eq(want) {
			t.Errorf("hard avoidance velocity = %v; want %v", a.Vel, want)
		}
	})

	t.Run("SoftWhenFar", func(t *testing.T) {
		a := newAgent(55, 115, 1, 0)
		AvoidObstacleHard(&a, o, 45)
		want := geometry.Vector2D{X: 1 - 60.0/10, Y: 0}
		if !a.Vel.Eq(want) {
			t.Errorf("soft avoidance velocity = %v; want %v", a.Vel, want)
		}
	})
}

func TestSeek(t *testing.T) {
	a := newAgent(0, 0, 0, 0)
	Seek(&a, geometry.Vector2D{X: 200, Y: -100})
	want := geometry.Vector2D{X: 2, Y: -1}
	if !a.Vel.Eq(want) {
		t.Errorf("Seek velocity = %v; want %v", a.Vel, want)
	}
}

func TestFlee_UsesProjectedPosition(t *testing.T) {
	prey := newAgent(0, 0, 0, 0)
	prey.Weights.ObstacleAvoidance = 10
	predator := newAgent(10, 0, 5, 0) // projected at (20, 0) with lookahead 2

	calls := 0
	Flee(&prey, predator, 2, func() float64 { calls++; return 1.5 })

	if calls != 2 {
		t.Errorf("jitter called %d times; want 2", calls)
	}
	want := geometry.Vector2D{X: -20.0 / 10 * 1.5, Y: 0}
	if !prey.Vel.Eq(want) {
		t.Errorf("Flee velocity = %v; want %v", prey.Vel, want)
	}
}

func TestAttack(t *testing.T) {
	home := geometry.Vector2D{X: 400, Y: 300}

	t.Run("NoTargetsReturnsHome", func(t *testing.T) {
		a := newAgent(100, 300, 0, 0)
		if idx := Attack(&a, nil, 2, home, 150); idx != -1 {
			t.Errorf("Attack(nil) = %d; want -1", idx)
		}
		want := geometry.Vector2D{X: 2, Y: 0}
		if !a.Vel.Eq(want) {
			t.Errorf("fallback velocity = %v; want %v", a.Vel, want)
		}
	})

	t.Run("ChasesStraggler", func(t *testing.T) {
		a := newAgent(0, 0, 0, 0)
		a.Weights.Goal = 50
		targets := []Agent{
			newAgent(100, 100, 0, 0),
			newAgent(102, 100, 0, 0),
			newAgent(100, 102, 0, 0),
			newAgent(160, 100, 1, 1), // straggler
		}
		idx := Attack(&a, targets, 2, home, 150)
		if idx != 3 {
			t.Fatalf("Attack chased %d; want 3", idx)
		}
		want := geometry.Vector2D{X: 162.0 / 50, Y: 102.0 / 50}
		if !a.Vel.Eq(want) {
			t.Errorf("Attack velocity = %v; want %v", a.Vel, want)
		}
	})
}

func TestReturnToCenter(t *testing.T) {
	a := newAgent(0, 600, 0, 0)
	ReturnToCenter(&a, geometry.Vector2D{X: 300, Y: 300}, 150)
	want := geometry.Vector2D{X: 2, Y: -2}
	if !a.Vel.Eq(want) {
		t.Errorf("ReturnToCenter velocity = %v; want %v", a.Vel, want)
	}
}

func TestObstacle(t *testing.T) {
	o := Obstacle{Pos: geometry.Vector2D{X: 10, Y: 20}, HalfWidth: 15}
	if c := o.Center(); !c.Eq(geometry.Vector2D{X: 25, Y: 35}) {
		t.Errorf("Center = %v; want (25, 35)", c)
	}
	if !o.Contains(geometry.Vector2D{X: 39, Y: 49}) {
		t.Error("Contains should accept a point inside the box")
	}
	if o.Contains(geometry.Vector2D{X: 41, Y: 30}) {
		t.Error("Contains should reject a point right of the box")
	}
}

func TestRole_String(t *testing.T) {
	if RolePredator.String() != "predator" || Role(9).String() != "role(9)" {
		t.Errorf("unexpected role names %q, %q", RolePredator, Role(9))
	}
}
