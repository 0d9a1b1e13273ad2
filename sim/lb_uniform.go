// sim/lb_uniform.go
package sim

import "math/rand"

// roundRobinBalancer weights every healthy child equally.
type roundRobinBalancer struct{}

func (roundRobinBalancer) Weights(stats []ChildStat) []float64 {
	w := make([]float64, len(stats))
	for i := range w {
		w[i] = 1
	}
	return w
}

// randomBalancer starts uniform and perturbs each share by up to ±25%
// multiplicative jitter per tick, so the split wanders around even.
type randomBalancer struct {
	rng *rand.Rand
}

func (b *randomBalancer) Weights(stats []ChildStat) []float64 {
	w := make([]float64, len(stats))
	for i := range w {
		jitter := 1 + (b.rng.Float64()*2-1)*0.25
		w[i] = jitter
	}
	return w
}
