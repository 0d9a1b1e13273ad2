// Package sim is the traffic flow simulation engine: an infrastructure
// topology modeled as a directed graph, ticked forward by a settlement loop
// that admits, routes, throttles and fails request traffic under capacity,
// policy and failure constraints.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - node.go / topology.go: the data model — nodes, kind payloads, edges
//   - settle.go: the per-tick multi-round relaxation over double buffers
//   - policy.go + route_*.go: per-node admission and kind-specific routing
//   - engine.go: the owning shell, its two clocks and the edit lock
//
// Supporting pieces: traffic.go (ingress generation, waves, DDoS),
// loadbalancer.go + lb_*.go (router weighting policies), chaos.go (outage
// and repair state machine), metrics.go (tick reduction into the read
// model), export.go (Prometheus exposition of the snapshot).
//
// All randomness flows through the partitioned RNG in rng.go; a master
// seed reproduces an entire run.
package sim
