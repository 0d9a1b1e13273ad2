package sim

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildServingStack wires the smallest topology that can serve every
// legitimate request kind: source -> lb -> 2x compute -> {primary, storage}.
// Static falls through the compute tier to object storage.
func buildServingStack(t *testing.T, e *Engine) {
	t.Helper()
	addRaw(t, e, "internet", KindSource, "")
	addRaw(t, e, "lb-1", KindLoadBalancer, "")
	addRaw(t, e, "web-1", KindCompute, "cluster")
	addRaw(t, e, "web-2", KindCompute, "cluster")
	addRaw(t, e, "sql-p", KindSQLDatabase, "")
	addRaw(t, e, "store-1", KindStorage, "")

	wire(t, e, "internet", "lb-1")
	wire(t, e, "lb-1", "web-1")
	wire(t, e, "lb-1", "web-2")
	wire(t, e, "web-1", "sql-p")
	wire(t, e, "web-2", "sql-p")
	wire(t, e, "web-1", "store-1")
	wire(t, e, "web-2", "store-1")
}

func TestSettle_ConservesIngress(t *testing.T) {
	// GIVEN a stack that can serve everything
	e := testEngine(7)
	buildServingStack(t, e)

	// WHEN the simulation runs well short of the first possible DDoS
	for i := 0; i < 200; i++ {
		runTick(e)
	}

	// THEN every unit of ingress resolved as either a success or a
	// failure; only sub-threshold settlement crumbs may go missing
	m := e.Metrics()
	resolved := m.TotalSuccessful + m.TotalFailed
	require.Greater(t, m.TotalIncoming, 0.0)
	assert.InDelta(t, m.TotalIncoming, resolved, 0.01*m.TotalIncoming,
		"incoming=%.1f resolved=%.1f", m.TotalIncoming, resolved)
}

func TestSettle_EmptyBuffersIsNoOp(t *testing.T) {
	e := testEngine(1)
	buildServingStack(t, e)
	e.buffers.rebuild(e.topo.IDs())

	tally := newTickTally()
	e.settle(tally)

	assert.Zero(t, tally.codes.C200)
	assert.Zero(t, tally.codes.C503)
	for k := RequestKind(0); k < numRequestKinds; k++ {
		assert.Zero(t, tally.success[k])
		assert.Zero(t, tally.failed[k])
	}
}

func TestSettle_SubThresholdVolumeIsDropped(t *testing.T) {
	// Volume below the routable threshold never starts a round
	e := testEngine(1)
	addRaw(t, e, "web-1", KindCompute, "micro")

	var mix TrafficMix
	mix[ReqWeb] = minRoutableVolume / 2
	tally := seedAndSettle(e, "web-1", mix)

	assert.Zero(t, tally.success[ReqWeb])
	assert.Zero(t, tally.failed[ReqWeb])
}

func TestSettle_RoundCapTruncatesAs503(t *testing.T) {
	// GIVEN a routing chain one hop longer than the round budget
	e := testEngine(1)
	for i := 1; i <= maxSettleRounds+1; i++ {
		addRaw(t, e, fmt.Sprintf("lb-%d", i), KindLoadBalancer, "")
	}
	for i := 1; i <= maxSettleRounds; i++ {
		wire(t, e, fmt.Sprintf("lb-%d", i), fmt.Sprintf("lb-%d", i+1))
	}

	// WHEN traffic enters at the head of the chain
	var mix TrafficMix
	mix[ReqWeb] = 100
	tally := seedAndSettle(e, "lb-1", mix)

	// THEN it is still in flight at the cap and resolves as a 503
	assert.InDelta(t, 100.0, tally.codes.C503, 1e-6)
	assert.InDelta(t, 100.0, tally.failed[ReqWeb], 1e-6)
	assert.Zero(t, tally.success[ReqWeb])
}

func TestSettle_RoundRobinSplitsEvenly(t *testing.T) {
	// GIVEN a round-robin balancer over two identical computes
	e := testEngine(1)
	addRaw(t, e, "lb-1", KindLoadBalancer, "")
	addRaw(t, e, "web-1", KindCompute, "standard")
	addRaw(t, e, "web-2", KindCompute, "standard")
	wire(t, e, "lb-1", "web-1")
	wire(t, e, "lb-1", "web-2")

	var mix TrafficMix
	mix[ReqWeb] = 200
	tally := seedAndSettle(e, "lb-1", mix)

	// THEN each backend processes exactly half
	assert.InDelta(t, 100.0, e.topo.Node("web-1").ProcessedReqs, 1e-6)
	assert.InDelta(t, 100.0, e.topo.Node("web-2").ProcessedReqs, 1e-6)
	assert.InDelta(t, 200.0, tally.success[ReqWeb], 1e-6)
}

func TestSettle_MultipleSourcesShareIngress(t *testing.T) {
	// GIVEN two sources feeding separate serving paths
	e := testEngine(3)
	addRaw(t, e, "net-1", KindSource, "")
	addRaw(t, e, "net-2", KindSource, "")
	addRaw(t, e, "web-1", KindCompute, "cluster")
	addRaw(t, e, "web-2", KindCompute, "cluster")
	wire(t, e, "net-1", "web-1")
	wire(t, e, "net-2", "web-2")

	// WHEN a tick runs
	runTick(e)

	// THEN the generated volume is split evenly across the sources
	s1 := e.topo.Node("net-1").ProcessedReqs
	s2 := e.topo.Node("net-2").ProcessedReqs
	require.Greater(t, s1, 0.0)
	assert.InDelta(t, s1, s2, 1e-6)
}

func TestTick_AccruesRevenueAndTechPoints(t *testing.T) {
	e := testEngine(7)
	buildServingStack(t, e)
	cashBefore := e.Cash()

	for i := 0; i < 20; i++ {
		runTick(e)
	}

	// Served traffic earns revenue (ticks do not bill opex) and banks
	// tech points proportional to legit successes
	assert.Greater(t, e.Cash(), cashBefore)
	assert.Greater(t, e.TechPoints(), 0.0)
	assert.InDelta(t, e.Metrics().TotalSuccessful*techPointsPerRequest, e.TechPoints(),
		1e-6*e.TechPoints()+1e-9)
}

func TestTick_PushesLoadHistory(t *testing.T) {
	e := testEngine(7)
	buildServingStack(t, e)

	for i := 0; i < 5; i++ {
		runTick(e)
	}

	web := e.topo.Node("web-1")
	assert.Len(t, web.LoadHistory.Values(), 5)
}
