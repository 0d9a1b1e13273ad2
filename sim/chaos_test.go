package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stepChaosFor(e *Engine, dt float64) {
	e.mu.Lock()
	e.stepChaos(dt)
	e.mu.Unlock()
}

func TestChaos_FailureRepairRebootCycle(t *testing.T) {
	// GIVEN a compute node that just went down
	e := testEngine(1)
	n := addRaw(t, e, "web-1", KindCompute, "standard")
	n.Status = StatusDown
	n.FailureTimeLeft = repairSeconds

	// WHEN the repair window elapses
	stepChaosFor(e, repairSeconds)

	// THEN the node reboots rather than jumping straight back
	require.Equal(t, StatusBooting, n.Status)
	require.NotNil(t, n.Transition)
	assert.Equal(t, TransitionReboot, n.Transition.Kind)
	assert.InDelta(t, bootSeconds, n.Transition.Remaining, 1e-9)

	// WHEN the boot completes
	stepChaosFor(e, bootSeconds)

	// THEN it is serving again with no transition left over
	assert.Equal(t, StatusActive, n.Status)
	assert.Nil(t, n.Transition)
}

func TestChaos_EventuallyFailsUnmanagedNodes(t *testing.T) {
	// GIVEN an unmanaged compute node under the failure model
	e := testEngine(11)
	n := addRaw(t, e, "web-1", KindCompute, "standard")

	// WHEN enough simulated time passes (expected failures >> 1)
	failed := false
	for i := 0; i < 5000 && !failed; i++ {
		stepChaosFor(e, 1.0)
		failed = n.Status != StatusActive
	}

	// THEN at least one outage happened
	assert.True(t, failed, "no failure in 5000 simulated seconds at rate %v/s", failureRatePerSecond)
}

func TestChaos_ExemptionsNeverFail(t *testing.T) {
	// Sources and managed nodes sit outside the failure model entirely
	e := testEngine(11)
	src := addRaw(t, e, "internet", KindSource, "")
	cdn := addRaw(t, e, "cdn-1", KindCDN, "basic")
	store := addRaw(t, e, "store-1", KindStorage, "")

	for i := 0; i < 5000; i++ {
		stepChaosFor(e, 1.0)
	}

	assert.Equal(t, StatusActive, src.Status)
	assert.Equal(t, StatusActive, cdn.Status)
	assert.Equal(t, StatusActive, store.Status)
}

func TestChaos_ManagedDatabasesUnlock(t *testing.T) {
	// GIVEN the managed-databases unlock
	e := testEngine(11)
	e.SetTech(TechFlags{ManagedDatabases: true})
	sql := addRaw(t, e, "sql-1", KindSQLDatabase, "")
	nosql := addRaw(t, e, "nosql-1", KindNoSQLDatabase, "")

	// WHEN a long stretch of chaos runs
	for i := 0; i < 5000; i++ {
		stepChaosFor(e, 1.0)
	}

	// THEN neither database ever went down
	assert.Equal(t, StatusActive, sql.Status)
	assert.Equal(t, StatusActive, nosql.Status)
}

func TestChaos_PartialBootKeepsNodeOut(t *testing.T) {
	e := testEngine(1)
	n := addRaw(t, e, "web-1", KindCompute, "standard")
	n.Status = StatusBooting
	n.Transition = &Transition{Kind: TransitionReboot, Remaining: bootSeconds, Duration: bootSeconds}

	stepChaosFor(e, bootSeconds/2)

	assert.Equal(t, StatusBooting, n.Status)
	assert.InDelta(t, 0.5, n.Transition.Progress(), 1e-9)
}

func TestChaos_BootingWithoutTransitionRecovers(t *testing.T) {
	// An inconsistent Booting-with-no-transition node exits to Active
	// instead of sticking forever
	e := testEngine(1)
	n := addRaw(t, e, "web-1", KindCompute, "standard")
	n.Status = StatusBooting
	n.Transition = nil

	stepChaosFor(e, TickSeconds)

	assert.Equal(t, StatusActive, n.Status)
}

func TestTransitionProgress(t *testing.T) {
	tr := &Transition{Kind: TransitionUpgrade, Remaining: 6, Duration: 8}
	assert.InDelta(t, 0.25, tr.Progress(), 1e-9)

	tr.Remaining = 0
	assert.InDelta(t, 1.0, tr.Progress(), 1e-9)

	tr.Remaining = 10
	assert.Zero(t, tr.Progress())

	zero := &Transition{}
	assert.InDelta(t, 1.0, zero.Progress(), 1e-9)
}
