package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator(seed int64) *TrafficGenerator {
	return NewTrafficGenerator(rand.New(rand.NewSource(seed)))
}

func TestTrafficGenerator_FloorAtMinimum(t *testing.T) {
	// GIVEN a fresh generator at rock-bottom satisfaction
	g := newTestGenerator(1)

	// WHEN many ticks pass with satisfaction 0 (churn factor 0.99/tick)
	var mix TrafficMix
	for i := 0; i < 40; i++ {
		mix = g.Generate(TickSeconds, 0)
	}

	// THEN volume never collapses below the floor
	assert.GreaterOrEqual(t, mix.Total(), minBaseTraffic)
	assert.GreaterOrEqual(t, g.BaseVolume(), minBaseTraffic)
}

func TestTrafficGenerator_MixShares(t *testing.T) {
	g := newTestGenerator(2)
	mix := g.Generate(TickSeconds, 80)

	total := mix.Legit()
	require.Greater(t, total, 0.0)
	assert.InDelta(t, 0.30, mix[ReqWeb]/total, 1e-9)
	assert.InDelta(t, 0.35, mix[ReqDbRead]/total, 1e-9)
	assert.InDelta(t, 0.10, mix[ReqDbWrite]/total, 1e-9)
	assert.InDelta(t, 0.10, mix[ReqDbSearch]/total, 1e-9)
	assert.InDelta(t, 0.15, mix[ReqStatic]/total, 1e-9)
	assert.Zero(t, mix[ReqAttack], "no attack volume outside an episode")
}

func TestTrafficGenerator_DeterministicForSeed(t *testing.T) {
	g1 := newTestGenerator(77)
	g2 := newTestGenerator(77)
	for i := 0; i < 50; i++ {
		m1 := g1.Generate(TickSeconds, 90)
		m2 := g2.Generate(TickSeconds, 90)
		require.Equal(t, m1, m2, "tick %d diverged", i)
	}
}

func TestTrafficGenerator_WaveStartsAfterPeace(t *testing.T) {
	// GIVEN a generator in its initial peace period
	g := newTestGenerator(3)
	phase, _ := g.Phase()
	require.Equal(t, WavePeace, phase)

	// WHEN the peace period elapses
	for s := 0.0; s < peaceSeconds+1; s += TickSeconds {
		g.Generate(TickSeconds, 80)
	}

	// THEN a wave is active and the base ramps toward the wave target
	phase, countdown := g.Phase()
	assert.Equal(t, WaveActive, phase)
	assert.Greater(t, countdown, 0.0)
	assert.Equal(t, 1, g.WaveNumber())
	assert.Greater(t, g.BaseVolume(), minBaseTraffic*2, "ramp should have pulled volume up")
}

func TestTrafficGenerator_WavesEscalate(t *testing.T) {
	g := newTestGenerator(4)
	// Run through two full wave cycles.
	for s := 0.0; s < 2*(peaceSeconds+waveSeconds)+1; s += TickSeconds {
		g.Generate(TickSeconds, 80)
	}
	assert.GreaterOrEqual(t, g.WaveNumber(), 2)
}

func TestTrafficGenerator_AttackMultipliesVolume(t *testing.T) {
	// GIVEN a generator forced into an attack episode
	g := newTestGenerator(5)
	g.attackActive = true
	g.attackEndsAt = 1e9

	mix := g.Generate(TickSeconds, 80)

	// THEN attack volume is layered at 4x the legitimate volume
	legit := mix.Legit()
	require.Greater(t, legit, 0.0)
	assert.InDelta(t, attackMultiplier, mix[ReqAttack]/legit, 1e-9)
	assert.True(t, g.AttackActive())
	assert.Greater(t, g.AttackRemaining(), 0.0)
}

func TestTrafficGenerator_NoAttackBeforeThirdWave(t *testing.T) {
	// Waves 1 and 2 never roll for a DDoS, for any seed.
	for seed := int64(0); seed < 20; seed++ {
		g := newTestGenerator(seed)
		for s := 0.0; s < peaceSeconds+waveSeconds+peaceSeconds+1; s += TickSeconds {
			g.Generate(TickSeconds, 80)
			if g.WaveNumber() >= 3 {
				break
			}
			require.False(t, g.AttackActive(), "seed %d: attack before wave 3", seed)
		}
	}
}
