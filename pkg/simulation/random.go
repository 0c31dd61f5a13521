package simulation

import (
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-boids/pkg/behavior"
)

// spawnStream keeps the spawn sequence apart from every per-slot stream.
const spawnStream = 0x5eed5eed5eed5eed

// stream is a reseedable PCG source. Each agent slot reseeds it from
// (seed, tick, role, id) before drawing, so what an agent draws depends
// neither on the worker that computes it nor on the order of the slots.
type stream struct {
	src *rand.PCG
	rng *rand.Rand
}

func newStream() *stream {
	src := rand.NewPCG(0, 0)
	return &stream{src: src, rng: rand.New(src)}
}

func (s *stream) reseed(seed, tick uint64, role behavior.Role, id uint32) *rand.Rand {
	s.src.Seed(mix(seed^mix(tick)), uint64(role)<<32|uint64(id))
	return s.rng
}

// mix is the splitmix64 finalizer; it spreads consecutive ticks over the
// whole seed space.
func mix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// uniform draws from [lo, hi).
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
