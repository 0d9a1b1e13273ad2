// sim/config.go
//
// Static tuning tables for the simulation: tick cadence, tier catalogs,
// traffic mix, security attenuation, revenue rates. These are the knobs the
// rest of the engine reads; none of them change at runtime.
package sim

import "math"

// Clock cadence (scaled seconds).
const (
	TickSeconds     = 0.25 // one settlement pass
	BillingSeconds  = 1.0  // opex charge / revenue-rate sample
	SnapshotSeconds = 0.5  // read-model refresh (~2Hz)
)

// Settlement loop bounds.
const (
	maxSettleRounds   = 6
	minRoutableVolume = 0.1
)

const loadHistoryLen = 60

// Security attenuation: the fraction of attack volume that passes through.
const (
	firewallAttackPass         = 0.2
	wafAttackPass              = 0.001
	firewallAttackPassHardened = 0.05
	wafAttackPassHardened      = 0.0001
)

// Capacity weighting.
const (
	attackLoadWeight    = 10.0 // attack volume outside security nodes
	primaryWriteWeight  = 4.0  // write contention on a SQL primary
	defaultMaxInstances = 8
)

// Autoscaling hysteresis.
const (
	scaleUpLoadPct       = 85.0
	scaleDownLoadPct     = 30.0
	scaleCooldownSeconds = 15.0
)

// Cache / CDN warmup.
const (
	cdnWarmupVolume   = 5000.0
	cacheWarmupVolume = 2000.0
	cacheMinHitRate   = 0.1
	cacheMaxHitRate   = 0.95
	cachePoisonCap    = 0.5
	cacheWritePenalty = 0.01
)

// Latency model.
const (
	baseLatencyMs            = 20.0
	acceleratedBaseLatencyMs = 8.0
	crossZoneLatencyMs       = 15.0
)

// Chaos model.
const (
	failureRatePerSecond = 0.002
	repairSeconds        = 12.0
	bootSeconds          = 5.0
	upgradeSeconds       = 8.0
)

// Traffic generation.
const (
	minBaseTraffic   = 10.0
	maxBaseTraffic   = 1_000_000.0
	dampenAboveHigh  = 50_000.0
	dampenAboveLow   = 10_000.0
	dailyCycleSecs   = 240.0
	peaceSeconds     = 30.0
	waveSeconds      = 45.0
	waveBaseVolume   = 500.0
	waveGrowth       = 1.5
	waveRampSeconds  = 4.0 // time constant of the ramp toward the wave target
	ddosChance       = 0.4
	ddosMinSeconds   = 15.0
	ddosMaxSeconds   = 30.0
	ddosCooldownSecs = 45.0
	attackMultiplier = 4.0 // attack volume layered on top of legitimate volume
)

// Satisfaction dynamics.
const (
	errorRateThreshold    = 0.05
	satisfactionPenalty   = 0.8 // per tick while error rate is above threshold
	satisfactionRecovery  = 0.3 // per tick otherwise, before latency penalty
	latencyPenaltyFloorMs = 200.0
	techPointsPerRequest  = 0.001
)

// RequestKind is the type of one unit of traffic volume.
type RequestKind int

const (
	ReqWeb RequestKind = iota
	ReqDbRead
	ReqDbWrite
	ReqDbSearch
	ReqStatic
	ReqAttack

	numRequestKinds
)

func (k RequestKind) String() string {
	switch k {
	case ReqWeb:
		return "web"
	case ReqDbRead:
		return "db-read"
	case ReqDbWrite:
		return "db-write"
	case ReqDbSearch:
		return "db-search"
	case ReqStatic:
		return "static"
	case ReqAttack:
		return "attack"
	}
	return "unknown"
}

// legitMixShare is the fixed split of legitimate incoming traffic.
var legitMixShare = [numRequestKinds]float64{
	ReqWeb:      0.30,
	ReqDbRead:   0.35,
	ReqDbWrite:  0.10,
	ReqDbSearch: 0.10,
	ReqStatic:   0.15,
	ReqAttack:   0,
}

// revenuePerRequest is credited per successfully served request.
var revenuePerRequest = [numRequestKinds]float64{
	ReqWeb:      0.010,
	ReqDbRead:   0.005,
	ReqDbWrite:  0.020,
	ReqDbSearch: 0.015,
	ReqStatic:   0.002,
	ReqAttack:   0,
}

// TechFlags are the externally-unlocked technologies the engine consults.
// The engine never mutates them; the tech-tree collaborator writes them back
// through Engine.SetTech.
type TechFlags struct {
	SecurityHardened bool // improves firewall/WAF attenuation
	Accelerator      bool // lowers the base latency term
	Serverless       bool // idle compute nodes pay no opex
	ManagedDatabases bool // databases become chaos-exempt
}

// TierSpec is one entry of a sizing catalog.
type TierSpec struct {
	Capex      float64
	OpexPerSec float64
	Capacity   float64
	MaxHitRate float64 // CDN tiers only
}

// computeTiers is the sizing catalog shared by compute nodes and
// autoscaling groups (per instance).
var computeTiers = map[string]TierSpec{
	"micro":       {Capex: 100, OpexPerSec: 0.05, Capacity: 200},
	"standard":    {Capex: 250, OpexPerSec: 0.12, Capacity: 500},
	"performance": {Capex: 600, OpexPerSec: 0.30, Capacity: 1200},
	"cluster":     {Capex: 1500, OpexPerSec: 0.80, Capacity: 3000},
}

var cdnTiers = map[string]TierSpec{
	"basic":  {Capex: 200, OpexPerSec: 0.10, Capacity: 2000, MaxHitRate: 0.60},
	"plus":   {Capex: 500, OpexPerSec: 0.25, Capacity: 5000, MaxHitRate: 0.80},
	"global": {Capex: 1200, OpexPerSec: 0.60, Capacity: 12000, MaxHitRate: 0.92},
}

// kindSpecs covers every kind without a tier catalog. Storage and Source are
// effectively unbounded.
var kindSpecs = map[NodeKind]TierSpec{
	KindSource:        {Capex: 0, OpexPerSec: 0, Capacity: math.Inf(1)},
	KindWAF:           {Capex: 300, OpexPerSec: 0.15, Capacity: 1500},
	KindFirewall:      {Capex: 150, OpexPerSec: 0.08, Capacity: 2000},
	KindLoadBalancer:  {Capex: 200, OpexPerSec: 0.10, Capacity: 3000},
	KindAPIGateway:    {Capex: 250, OpexPerSec: 0.12, Capacity: 1800},
	KindSQLDatabase:   {Capex: 500, OpexPerSec: 0.25, Capacity: 400},
	KindNoSQLDatabase: {Capex: 450, OpexPerSec: 0.22, Capacity: 800},
	KindStorage:       {Capex: 350, OpexPerSec: 0.18, Capacity: math.Inf(1)},
	KindCache:         {Capex: 300, OpexPerSec: 0.15, Capacity: 1500},
}

const (
	defaultComputeTier = "micro"
	defaultCDNTier     = "basic"
)

// tierSpecFor resolves the cost/capacity entry for a node, falling back to
// the kind defaults when the tier name is unknown.
func tierSpecFor(kind NodeKind, tier string) TierSpec {
	switch kind {
	case KindCompute, KindAutoscalingGroup:
		if spec, ok := computeTiers[tier]; ok {
			return spec
		}
		return computeTiers[defaultComputeTier]
	case KindCDN:
		if spec, ok := cdnTiers[tier]; ok {
			return spec
		}
		return cdnTiers[defaultCDNTier]
	default:
		return kindSpecs[kind]
	}
}

// validTier reports whether tier names a catalog entry for the kind.
// The empty tier is always valid and means "kind default".
func validTier(kind NodeKind, tier string) bool {
	if tier == "" {
		return true
	}
	switch kind {
	case KindCompute, KindAutoscalingGroup:
		_, ok := computeTiers[tier]
		return ok
	case KindCDN:
		_, ok := cdnTiers[tier]
		return ok
	}
	return false
}
