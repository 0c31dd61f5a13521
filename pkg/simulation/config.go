package simulation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/lao-tseu-is-alive/go-boids/pkg/behavior"
)

//go:embed config.schema.json
var configSchema string

// ErrInvalidConfig is returned by Validate and LoadConfig for values the
// engine cannot run with.
var ErrInvalidConfig = errors.New("invalid config")

// BoundaryPolicy decides what happens when an agent reaches the world edge.
type BoundaryPolicy string

const (
	// BoundaryBounce reflects the velocity with a random energy loss.
	BoundaryBounce BoundaryPolicy = "bounce"
	// BoundaryWrap teleports the agent to the opposite edge.
	BoundaryWrap BoundaryPolicy = "wrap"
)

// RoleProfile holds the spawn-time tunables of one role.
type RoleProfile struct {
	CohesionWeight          float64 `json:"cohesionWeight" yaml:"cohesionWeight"`
	AlignmentWeight         float64 `json:"alignmentWeight" yaml:"alignmentWeight"`
	SeparationWeight        float64 `json:"separationWeight" yaml:"separationWeight"`
	ObstacleAvoidanceWeight float64 `json:"obstacleAvoidanceWeight" yaml:"obstacleAvoidanceWeight"` // also scales fleeing
	GoalWeight              float64 `json:"goalWeight" yaml:"goalWeight"`                           // also scales attacking
	FieldOfView             float64 `json:"fieldOfView" yaml:"fieldOfView"`
	MaxSpeed                float64 `json:"maxSpeed" yaml:"maxSpeed"`
}

// Weights converts the profile into per-agent steering weights.
func (p RoleProfile) Weights() behavior.Weights {
	return behavior.Weights{
		Cohesion:          p.CohesionWeight,
		Alignment:         p.AlignmentWeight,
		Separation:        p.SeparationWeight,
		ObstacleAvoidance: p.ObstacleAvoidanceWeight,
		Goal:              p.GoalWeight,
	}
}

type Config struct {
	// World Dimensions
	WorldWidth  float64        `json:"worldWidth" yaml:"worldWidth"`
	WorldHeight float64        `json:"worldHeight" yaml:"worldHeight"`
	Border      float64        `json:"border" yaml:"border"` // bounce margin
	Boundary    BoundaryPolicy `json:"boundary" yaml:"boundary"`

	// Population
	NumFlockers       int     `json:"numFlockers" yaml:"numFlockers"`
	NumPrey           int     `json:"numPrey" yaml:"numPrey"`
	NumPredators      int     `json:"numPredators" yaml:"numPredators"`
	NumObstacles      int     `json:"numObstacles" yaml:"numObstacles"`
	ObstacleHalfWidth float64 `json:"obstacleHalfWidth" yaml:"obstacleHalfWidth"`

	// Perception & steering
	FlockRadius       float64 `json:"flockRadius" yaml:"flockRadius"`             // cohesion/alignment/separation neighborhood
	MinDistance       float64 `json:"minDistance" yaml:"minDistance"`             // separation trigger
	HardAvoidDistance float64 `json:"hardAvoidDistance" yaml:"hardAvoidDistance"` // 0 disables the override
	CaptureRadius     float64 `json:"captureRadius" yaml:"captureRadius"`
	IdleSpeed         float64 `json:"idleSpeed" yaml:"idleSpeed"`
	CenterWeight      float64 `json:"centerWeight" yaml:"centerWeight"`
	Lookahead         float64 `json:"lookahead" yaml:"lookahead"` // ticks of projection for flee/attack
	FleeJitterMin     float64 `json:"fleeJitterMin" yaml:"fleeJitterMin"`
	FleeJitterMax     float64 `json:"fleeJitterMax" yaml:"fleeJitterMax"`
	CollisionRebound  bool    `json:"collisionRebound" yaml:"collisionRebound"`

	Flocker  RoleProfile `json:"flocker" yaml:"flocker"`
	Prey     RoleProfile `json:"prey" yaml:"prey"`
	Predator RoleProfile `json:"predator" yaml:"predator"`

	// Execution
	Seed        uint64 `json:"seed" yaml:"seed"`
	Workers     int    `json:"workers" yaml:"workers"`         // <= 1 runs every tick serially
	SpatialGrid bool   `json:"spatialGrid" yaml:"spatialGrid"` // grid-accelerated neighbor scan
}

func DefaultConfig() *Config {
	return &Config{
		WorldWidth:        1280,
		WorldHeight:       720,
		Border:            30,
		Boundary:          BoundaryBounce,
		NumFlockers:       55,
		NumPrey:           0,
		NumPredators:      0,
		NumObstacles:      17,
		ObstacleHalfWidth: 15,
		FlockRadius:       200,
		MinDistance:       20,
		HardAvoidDistance: 45,
		CaptureRadius:     10,
		IdleSpeed:         2,
		CenterWeight:      150,
		Lookahead:         2,
		FleeJitterMin:     1,
		FleeJitterMax:     2,
		CollisionRebound:  true,
		Flocker: RoleProfile{
			CohesionWeight:          100,
			AlignmentWeight:         40,
			SeparationWeight:        5,
			ObstacleAvoidanceWeight: 10,
			GoalWeight:              100,
			FieldOfView:             60,
			MaxSpeed:                8,
		},
		Prey: RoleProfile{
			CohesionWeight:          100,
			AlignmentWeight:         40,
			SeparationWeight:        5,
			ObstacleAvoidanceWeight: 15,
			GoalWeight:              100,
			FieldOfView:             70,
			MaxSpeed:                8,
		},
		Predator: RoleProfile{
			CohesionWeight:          100,
			AlignmentWeight:         40,
			SeparationWeight:        5,
			ObstacleAvoidanceWeight: 15,
			GoalWeight:              50,
			FieldOfView:             70,
			MaxSpeed:                8.5,
		},
		Seed:    0,
		Workers: 1,
	}
}

// Profile returns the role profile used to spawn agents of role r.
func (c *Config) Profile(r behavior.Role) RoleProfile {
	switch r {
	case behavior.RolePrey:
		return c.Prey
	case behavior.RolePredator:
		return c.Predator
	default:
		return c.Flocker
	}
}

// Validate rejects configurations the engine would divide by zero on or that
// describe an empty world. It runs on every load so steering code never
// has to check.
func (c *Config) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"worldWidth", c.WorldWidth},
		{"worldHeight", c.WorldHeight},
		{"flockRadius", c.FlockRadius},
		{"minDistance", c.MinDistance},
		{"centerWeight", c.CenterWeight},
		{"fleeJitterMin", c.FleeJitterMin},
	}
	for _, p := range positive {
		if !(p.value > 0) {
			return fmt.Errorf("%w: %s must be > 0, got %v", ErrInvalidConfig, p.name, p.value)
		}
	}

	nonNegative := []struct {
		name  string
		value float64
	}{
		{"border", c.Border},
		{"obstacleHalfWidth", c.ObstacleHalfWidth},
		{"hardAvoidDistance", c.HardAvoidDistance},
		{"captureRadius", c.CaptureRadius},
		{"idleSpeed", c.IdleSpeed},
	}
	for _, p := range nonNegative {
		if p.value < 0 {
			return fmt.Errorf("%w: %s must be >= 0, got %v", ErrInvalidConfig, p.name, p.value)
		}
	}

	if 2*c.Border >= c.WorldWidth || 2*c.Border >= c.WorldHeight {
		return fmt.Errorf("%w: border %v leaves no room in a %vx%v world", ErrInvalidConfig, c.Border, c.WorldWidth, c.WorldHeight)
	}
	if c.Lookahead < 1 {
		return fmt.Errorf("%w: lookahead must be >= 1, got %v", ErrInvalidConfig, c.Lookahead)
	}
	if c.FleeJitterMax < c.FleeJitterMin {
		return fmt.Errorf("%w: fleeJitterMax %v is below fleeJitterMin %v", ErrInvalidConfig, c.FleeJitterMax, c.FleeJitterMin)
	}
	switch c.Boundary {
	case BoundaryBounce, BoundaryWrap:
	default:
		return fmt.Errorf("%w: unknown boundary policy %q", ErrInvalidConfig, c.Boundary)
	}
	if c.NumFlockers < 0 || c.NumPrey < 0 || c.NumPredators < 0 || c.NumObstacles < 0 {
		return fmt.Errorf("%w: population sizes must be >= 0", ErrInvalidConfig)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidConfig, c.Workers)
	}

	for _, role := range []behavior.Role{behavior.RoleFlocker, behavior.RolePrey, behavior.RolePredator} {
		if err := c.Profile(role).validate(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, role, err)
		}
	}

	// Bounce only turns an agent around once it is inside the border, so the
	// border must absorb a full tick of travel or the agent leaves the world.
	if c.Boundary == BoundaryBounce {
		if fastest := c.maxSpeed(); c.Border < fastest {
			return fmt.Errorf("%w: bounce border %v is narrower than the max speed %v", ErrInvalidConfig, c.Border, fastest)
		}
	}
	return nil
}

func (c *Config) maxSpeed() float64 {
	return max(c.Flocker.MaxSpeed, c.Prey.MaxSpeed, c.Predator.MaxSpeed)
}

func (p RoleProfile) validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"cohesionWeight", p.CohesionWeight},
		{"alignmentWeight", p.AlignmentWeight},
		{"separationWeight", p.SeparationWeight},
		{"obstacleAvoidanceWeight", p.ObstacleAvoidanceWeight},
		{"goalWeight", p.GoalWeight},
		{"fieldOfView", p.FieldOfView},
		{"maxSpeed", p.MaxSpeed},
	}
	for _, f := range fields {
		if !(f.value > 0) {
			return fmt.Errorf("%s must be > 0, got %v", f.name, f.value)
		}
	}
	return nil
}

// LoadConfig reads a JSON, YAML or TOML file (chosen by extension), validates
// it against the embedded schema and merges it over DefaultConfig.
func LoadConfig(configFile string) (*Config, error) {
	// 1. Compile Schema
	sch, err := jsonschema.CompileString("config.schema.json", configSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	// 2. Read Config File
	raw, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 3. Bring every format down to JSON so one schema and one set of tags apply
	doc, err := toJSON(configFile, raw)
	if err != nil {
		return nil, err
	}

	// 4. Validate
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("%w: schema validation failed: %v", ErrInvalidConfig, err)
	}

	// 5. Unmarshal over the defaults
	cfg := DefaultConfig()
	if err := json.Unmarshal(doc, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func toJSON(name string, raw []byte) ([]byte, error) {
	var v map[string]interface{}
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".json":
		return raw, nil
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("failed to decode config yaml: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(raw), &v); err != nil {
			return nil, fmt.Errorf("failed to decode config toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
	if v == nil {
		v = map[string]interface{}{}
	}
	doc, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to convert config to json: %w", err)
	}
	return doc, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
