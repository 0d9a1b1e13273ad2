// sim/lb_weighted.go
package sim

import "math"

// weightedRoundRobinBalancer splits by tier capacity, so bigger children
// take proportionally more traffic regardless of load.
type weightedRoundRobinBalancer struct{}

func (weightedRoundRobinBalancer) Weights(stats []ChildStat) []float64 {
	w := make([]float64, len(stats))
	for i, s := range stats {
		cap := s.Capacity
		if cap <= 0 || math.IsInf(cap, 1) {
			cap = 100
		}
		w[i] = cap
	}
	return w
}

// leastConnectionBalancer favors idle children quadratically: a child at
// 10% load outweighs one at 90% by 90²:10².
type leastConnectionBalancer struct{}

func (leastConnectionBalancer) Weights(stats []ChildStat) []float64 {
	w := make([]float64, len(stats))
	for i, s := range stats {
		headroom := math.Max(1, 100-s.Load)
		w[i] = headroom * headroom
	}
	return w
}

// weightedLeastConnectionBalancer combines capacity with remaining headroom.
type weightedLeastConnectionBalancer struct{}

func (weightedLeastConnectionBalancer) Weights(stats []ChildStat) []float64 {
	w := make([]float64, len(stats))
	for i, s := range stats {
		cap := s.Capacity
		if cap <= 0 || math.IsInf(cap, 1) {
			cap = 100
		}
		w[i] = cap * math.Max(0.01, (100-s.Load)/100)
	}
	return w
}

// leastResponseTimeBalancer weights by the inverse of the estimated latency
// at the child's current load, using the same curve the policy engine
// charges per node.
type leastResponseTimeBalancer struct{}

func (leastResponseTimeBalancer) Weights(stats []ChildStat) []float64 {
	w := make([]float64, len(stats))
	for i, s := range stats {
		w[i] = 1000 / math.Max(1, latencyForLoad(s.Load))
	}
	return w
}
