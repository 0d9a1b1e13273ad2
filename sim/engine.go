// sim/engine.go
//
// Engine owns every piece of mutable simulation state: the topology, the
// traffic buffers, the clocks and the metrics. There is no package-level
// state; two engines never share anything but the static config tables.
package sim

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// EngineConfig is the startup configuration of one engine.
type EngineConfig struct {
	Seed         int64
	StartingCash float64
	Speed        float64 // 0 = paused
	Techs        TechFlags
}

// Engine is the traffic flow simulation. All exported methods serialize on
// an internal mutex, so topology edits can never interleave with a running
// settlement pass.
type Engine struct {
	mu sync.Mutex

	rng       *PartitionedRNG
	topo      *Topology
	gen       *TrafficGenerator
	buffers   *flowBuffers
	metrics   *Metrics
	balancers map[string]Balancer

	techs      TechFlags
	cash       float64
	techPoints float64
	speed      float64
	simTime    float64

	simAccum  float64
	billAccum float64
	snapAccum float64

	opexPerSec float64
	nameSeq    map[NodeKind]int

	snapshot Snapshot
}

// NewEngine builds an empty engine; the editor (or a scenario file) adds
// the topology afterwards.
func NewEngine(cfg EngineConfig) *Engine {
	rng := NewPartitionedRNG(cfg.Seed)
	e := &Engine{
		rng:       rng,
		topo:      NewTopology(),
		gen:       NewTrafficGenerator(rng.ForSubsystem(SubsystemTraffic)),
		buffers:   newFlowBuffers(),
		metrics:   NewMetrics(),
		balancers: make(map[string]Balancer),
		techs:     cfg.Techs,
		cash:      cfg.StartingCash,
		speed:     cfg.Speed,
		nameSeq:   make(map[NodeKind]int),
	}
	balancerRNG := rng.ForSubsystem(SubsystemBalancer)
	for _, algo := range AvailableAlgorithms() {
		e.balancers[algo] = NewBalancer(algo, balancerRNG)
	}
	e.rebuildSnapshot()
	return e
}

// Step advances the engine by realDt wall-clock seconds. The render clock
// (chaos, transition countdowns) runs every call; settlement ticks and
// billing fire when their accumulated scaled time crosses the thresholds.
// Speed 0 stops all accumulation.
func (e *Engine) Step(realDt float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.speed <= 0 || realDt <= 0 {
		return
	}
	scaled := realDt * e.speed

	e.stepChaos(scaled)

	e.simAccum += scaled
	for e.simAccum >= TickSeconds {
		e.simAccum -= TickSeconds
		e.tick(TickSeconds)
	}

	e.billAccum += scaled
	for e.billAccum >= BillingSeconds {
		e.billAccum -= BillingSeconds
		e.bill(BillingSeconds)
	}

	e.snapAccum += scaled
	if e.snapAccum >= SnapshotSeconds {
		e.snapAccum = 0
		e.rebuildSnapshot()
	}
}

// RunTicks advances the simulation by exactly n settlement ticks at speed 1,
// render-stepping in tick-sized slices. Headless runs and tests use this to
// get an exact tick count regardless of the configured speed.
func (e *Engine) RunTicks(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := 0; i < n; i++ {
		e.stepChaos(TickSeconds)
		e.tick(TickSeconds)
		e.billAccum += TickSeconds
		for e.billAccum >= BillingSeconds {
			e.billAccum -= BillingSeconds
			e.bill(BillingSeconds)
		}
	}
	e.rebuildSnapshot()
}

// SetSpeed updates the simulation speed multiplier; 0 pauses.
func (e *Engine) SetSpeed(speed float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if speed < 0 {
		speed = 0
	}
	if speed != e.speed {
		logrus.Infof("simulation speed set to %.2fx", speed)
	}
	e.speed = speed
}

// SetTech replaces the unlocked-technology flags.
func (e *Engine) SetTech(t TechFlags) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.techs = t
}

// Cash returns the current balance.
func (e *Engine) Cash() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cash
}

// TechPoints returns the accrued tech-point balance.
func (e *Engine) TechPoints() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.techPoints
}

// Metrics exposes the aggregator for the report writer. The caller must
// not retain it across engine steps.
func (e *Engine) Metrics() *Metrics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.metrics
}
