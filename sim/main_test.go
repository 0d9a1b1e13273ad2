package sim

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestMain(m *testing.M) {
	// Suppress verbose simulation logs during tests to speed up CI
	// Set DEBUG_TESTS=1 to see full logs: DEBUG_TESTS=1 go test ./sim/... -v
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.ErrorLevel)
	}
	os.Exit(m.Run())
}

// --- shared test helpers ---

// testEngine builds an empty engine with plenty of cash and chaos disabled
// by construction (no steps are taken unless a test asks for them).
func testEngine(seed int64) *Engine {
	return NewEngine(EngineConfig{Seed: seed, StartingCash: 1_000_000, Speed: 1})
}

// mustAdd creates a node through the edit path and returns its ID.
func mustAdd(t *testing.T, e *Engine, kind NodeKind, tier string) string {
	t.Helper()
	var id string
	if err := e.Apply(AddNode{Kind: kind, Tier: tier, ID: &id}); err != nil {
		t.Fatalf("AddNode(%s): %v", kind, err)
	}
	return id
}

// mustConnect wires from→to and fails the test on error.
func mustConnect(t *testing.T, e *Engine, from, to string) {
	t.Helper()
	if err := e.Apply(Connect{From: from, To: to}); err != nil {
		t.Fatalf("Connect(%s, %s): %v", from, to, err)
	}
}

// runTick drives exactly one settlement tick without the chaos model, so
// topology tests stay deterministic.
func runTick(e *Engine) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tick(TickSeconds)
}

// addRaw inserts a node with a fixed ID, bypassing the edit path, for tests
// that want readable IDs and no capex accounting.
func addRaw(t *testing.T, e *Engine, id string, kind NodeKind, tier string) *Node {
	t.Helper()
	n := NewNode(id, id, kind, tier)
	if err := e.topo.Add(n); err != nil {
		t.Fatalf("add %s: %v", id, err)
	}
	e.buffers.stale = true
	return n
}

// wire creates the directed edge a→b directly on the topology.
func wire(t *testing.T, e *Engine, from, to string) {
	t.Helper()
	if _, err := e.topo.Toggle(from, to); err != nil {
		t.Fatalf("wire %s->%s: %v", from, to, err)
	}
}

// seedAndSettle buffers mix at node id and runs the settlement rounds,
// returning the resulting tally. Per-node tick counters are reset first.
func seedAndSettle(e *Engine, id string, mix TrafficMix) *tickTally {
	if e.buffers.stale {
		e.buffers.rebuild(e.topo.IDs())
	}
	e.buffers.clearAll()
	e.topo.Each(func(n *Node) {
		n.ProcessedReqs = 0
		n.DroppedReqs = 0
	})
	buf := e.buffers.cur(id)
	for k := RequestKind(0); k < numRequestKinds; k++ {
		buf.Add(k, mix[k])
	}
	tally := newTickTally()
	e.settle(tally)
	return tally
}
