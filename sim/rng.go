// sim/rng.go
package sim

import (
	"hash/fnv"
	"math/rand"
)

// Subsystem names for partitioned RNG derivation. Keeping each consumer of
// randomness on its own stream means changing how often one subsystem draws
// cannot shift another subsystem's trace for the same seed.
const (
	SubsystemTraffic  = "traffic"  // daily-cycle noise, DDoS rolls
	SubsystemChaos    = "chaos"    // node failure rolls
	SubsystemBalancer = "balancer" // Random load-balancer jitter
)

// PartitionedRNG provides deterministic, isolated RNG instances per
// subsystem. Two engines built from the same seed and identical scenario
// MUST produce identical traces.
//
// Derivation: seed XOR fnv1a64(subsystemName).
// Thread-safety: NOT thread-safe; the engine serializes all access.
type PartitionedRNG struct {
	seed       int64
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a master seed.
func NewPartitionedRNG(seed int64) *PartitionedRNG {
	return &PartitionedRNG{
		seed:       seed,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns the deterministically-seeded RNG for the named
// subsystem. The same name always returns the same *rand.Rand instance.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(p.seed ^ fnv1a64(name)))
	p.subsystems[name] = rng
	return rng
}

// Seed returns the master seed this PartitionedRNG was built from.
func (p *PartitionedRNG) Seed() int64 {
	return p.seed
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
