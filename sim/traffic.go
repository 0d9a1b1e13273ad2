// sim/traffic.go
//
// Per-tick ingress generation: satisfaction-driven churn on a base volume,
// a sinusoidal daily cycle, noise, wave escalation and DDoS episodes. All
// randomness comes from the traffic RNG subsystem so a seed reproduces the
// exact ingress trace.
package sim

import (
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// WavePhase says whether the generator is between waves or inside one.
type WavePhase int

const (
	WavePeace WavePhase = iota
	WaveActive
)

func (p WavePhase) String() string {
	if p == WaveActive {
		return "active"
	}
	return "peace"
}

// TrafficGenerator produces the per-tick ingress volume and its request-kind
// mix. It owns the wave/attack episode timeline.
type TrafficGenerator struct {
	rng *rand.Rand

	base    float64 // churned base volume per tick
	simTime float64 // simulated seconds

	phase       WavePhase
	waveNumber  int
	phaseEndsAt float64

	attackActive  bool
	attackEndsAt  float64
	cooldownUntil float64

	episodes episodeQueue
}

func NewTrafficGenerator(rng *rand.Rand) *TrafficGenerator {
	g := &TrafficGenerator{
		rng:         rng,
		base:        minBaseTraffic,
		phase:       WavePeace,
		phaseEndsAt: peaceSeconds,
	}
	g.episodes.schedule(peaceSeconds, episodeWaveStart)
	return g
}

// Generate advances the generator by dt simulated seconds and returns the
// ingress mix for one tick. The caller splits the mix across Source nodes.
func (g *TrafficGenerator) Generate(dt, satisfaction float64) TrafficMix {
	g.simTime += dt
	g.runEpisodes()
	g.churn(dt, satisfaction)

	volume := g.base + g.dailyCycle() + g.noise()
	if volume < minBaseTraffic {
		volume = minBaseTraffic
	}

	var mix TrafficMix
	for k := RequestKind(0); k < numRequestKinds; k++ {
		mix[k] = volume * legitMixShare[k]
	}
	if g.attackActive {
		mix[ReqAttack] = volume * attackMultiplier
	}
	return mix
}

// churn drifts the base volume toward growth or decline depending on user
// satisfaction, with the drift dampened at large volumes, then ramps toward
// the wave target while a wave is active.
func (g *TrafficGenerator) churn(dt, satisfaction float64) {
	var factor float64
	switch {
	case satisfaction > 95:
		factor = 1.0015
	case satisfaction > 80:
		factor = 1.0005
	case satisfaction > 60:
		factor = 1.0
	case satisfaction > 40:
		factor = 0.9995
	default:
		factor = 0.99
	}

	delta := g.base * (factor - 1)
	switch {
	case g.base > dampenAboveHigh:
		delta *= 0.1
	case g.base > dampenAboveLow:
		delta *= 0.5
	}
	g.base += delta

	if g.phase == WaveActive {
		target := waveBaseVolume * math.Pow(waveGrowth, float64(g.waveNumber))
		step := math.Min(1, dt/waveRampSeconds)
		g.base += (target - g.base) * step
	}

	g.base = math.Min(maxBaseTraffic, math.Max(minBaseTraffic, g.base))
}

func (g *TrafficGenerator) dailyCycle() float64 {
	amp := g.base * (0.10 + 0.05*g.rng.Float64())
	return amp * math.Sin(2*math.Pi*g.simTime/dailyCycleSecs)
}

// noise is a cheap gaussian-like draw (mean of three uniforms) scaled to
// ±5% of the base volume.
func (g *TrafficGenerator) noise() float64 {
	u := (g.rng.Float64() + g.rng.Float64() + g.rng.Float64()) / 3
	return (u - 0.5) * 2 * 0.05 * g.base
}

// runEpisodes fires every scheduled transition whose time has come.
func (g *TrafficGenerator) runEpisodes() {
	for {
		ep, ok := g.episodes.popDue(g.simTime)
		if !ok {
			return
		}
		switch ep.kind {
		case episodeWaveStart:
			g.waveNumber++
			g.phase = WaveActive
			g.phaseEndsAt = ep.at + waveSeconds
			g.episodes.schedule(g.phaseEndsAt, episodeWaveEnd)
			logrus.Infof("wave %d started, target volume %.0f",
				g.waveNumber, waveBaseVolume*math.Pow(waveGrowth, float64(g.waveNumber)))
			g.maybeStartAttack(ep.at)
		case episodeWaveEnd:
			g.phase = WavePeace
			g.phaseEndsAt = ep.at + peaceSeconds
			g.episodes.schedule(g.phaseEndsAt, episodeWaveStart)
			logrus.Infof("wave %d ended", g.waveNumber)
		case episodeAttackEnd:
			g.attackActive = false
			g.cooldownUntil = ep.at + ddosCooldownSecs
			logrus.Infof("ddos episode ended, cooldown until t=%.0fs", g.cooldownUntil)
		}
	}
}

// maybeStartAttack rolls for a DDoS episode at the start of a wave. The
// first two waves never attack, and a cooldown follows each episode.
func (g *TrafficGenerator) maybeStartAttack(now float64) {
	if g.waveNumber <= 2 || g.attackActive || now < g.cooldownUntil {
		return
	}
	if g.rng.Float64() >= ddosChance {
		return
	}
	duration := ddosMinSeconds + g.rng.Float64()*(ddosMaxSeconds-ddosMinSeconds)
	g.attackActive = true
	g.attackEndsAt = now + duration
	g.episodes.schedule(g.attackEndsAt, episodeAttackEnd)
	logrus.Warnf("ddos episode started, %.0fs duration", duration)
}

// AttackActive reports whether a DDoS episode is in progress.
func (g *TrafficGenerator) AttackActive() bool { return g.attackActive }

// AttackRemaining is the seconds left in the current episode, 0 when idle.
func (g *TrafficGenerator) AttackRemaining() float64 {
	if !g.attackActive {
		return 0
	}
	return math.Max(0, g.attackEndsAt-g.simTime)
}

// Phase returns the current wave phase and seconds until it flips.
func (g *TrafficGenerator) Phase() (WavePhase, float64) {
	return g.phase, math.Max(0, g.phaseEndsAt-g.simTime)
}

// WaveNumber is the count of waves started so far.
func (g *TrafficGenerator) WaveNumber() int { return g.waveNumber }

// BaseVolume is the current churned base volume (for the read model).
func (g *TrafficGenerator) BaseVolume() float64 { return g.base }
