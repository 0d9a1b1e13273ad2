// sim/loadbalancer.go
package sim

import (
	"math/rand"

	"github.com/sirupsen/logrus"
)

// Load-balancing algorithm names, as stored on router nodes and in
// scenario files.
const (
	AlgoRoundRobin              = "round-robin"
	AlgoRandom                  = "random"
	AlgoWeightedRoundRobin      = "weighted-round-robin"
	AlgoLeastConnection         = "least-connection"
	AlgoWeightedLeastConnection = "weighted-least-connection"
	AlgoLeastResponseTime       = "least-response-time"
)

// ChildStat is the balancer's view of one healthy downstream node.
type ChildStat struct {
	Load     float64 // current load percentage
	Capacity float64 // tier capacity
}

// Balancer produces a non-negative weight per healthy child; traffic is
// split proportionally to weight/Σweight. A zero weight sum means the node
// has no usable target this tick and its dynamic volume fails with a 503.
type Balancer interface {
	// Weights returns one weight per entry of stats, same order.
	Weights(stats []ChildStat) []float64
}

// NewBalancer creates a balancer of the specified algorithm. The rng is
// only consumed by AlgoRandom.
func NewBalancer(algorithm string, rng *rand.Rand) Balancer {
	switch algorithm {
	case AlgoRoundRobin:
		return roundRobinBalancer{}
	case AlgoRandom:
		return &randomBalancer{rng: rng}
	case AlgoWeightedRoundRobin:
		return weightedRoundRobinBalancer{}
	case AlgoLeastConnection:
		return leastConnectionBalancer{}
	case AlgoWeightedLeastConnection:
		return weightedLeastConnectionBalancer{}
	case AlgoLeastResponseTime:
		return leastResponseTimeBalancer{}
	default:
		logrus.Panicf("unknown load balancer algorithm: %s", algorithm)
		return nil
	}
}

// AvailableAlgorithms returns the supported load-balancing algorithm names.
func AvailableAlgorithms() []string {
	return []string{
		AlgoRoundRobin,
		AlgoRandom,
		AlgoWeightedRoundRobin,
		AlgoLeastConnection,
		AlgoWeightedLeastConnection,
		AlgoLeastResponseTime,
	}
}

// validAlgorithm reports whether name is a known algorithm.
func validAlgorithm(name string) bool {
	for _, a := range AvailableAlgorithms() {
		if a == name {
			return true
		}
	}
	return false
}
