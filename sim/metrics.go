// Tracks per-tick traffic outcomes and reduces them into the
// externally-visible aggregates: uptime, latency, revenue, satisfaction.

package sim

import "math"

// responseCode buckets every traffic-resolution failure. Failures are
// never errors in the Go sense; they are volume that got an unhappy answer.
type responseCode int

const (
	code200 responseCode = iota // served
	code403                     // security-filtered
	code429                     // capacity-exceeded
	code500                     // node unavailable
	code503                     // routing/dependency failure
)

// ResponseCodes is the per-tick histogram of traffic outcomes by status
// code. Mismatch failures (wrong request type at a node) carry no code and
// only appear in the per-kind failure counters.
type ResponseCodes struct {
	C200 float64
	C403 float64
	C429 float64
	C500 float64
	C503 float64
}

func (c *ResponseCodes) bump(code responseCode, vol float64) {
	switch code {
	case code200:
		c.C200 += vol
	case code403:
		c.C403 += vol
	case code429:
		c.C429 += vol
	case code500:
		c.C500 += vol
	case code503:
		c.C503 += vol
	}
}

// tickTally accumulates one tick's outcomes while the settlement loop runs.
type tickTally struct {
	success [numRequestKinds]float64
	failed  [numRequestKinds]float64
	codes   ResponseCodes

	incomingLegit  float64
	incomingAttack float64

	latencySum   float64
	latencyNodes int

	maxLoadFactor float64
}

func newTickTally() *tickTally {
	return &tickTally{}
}

func (t *tickTally) succeed(kind RequestKind, vol float64) {
	if vol <= 0 {
		return
	}
	t.success[kind] += vol
	t.codes.bump(code200, vol)
}

func (t *tickTally) failCode(n *Node, kind RequestKind, vol float64, code responseCode) {
	if vol <= 0 {
		return
	}
	t.failed[kind] += vol
	t.codes.bump(code, vol)
	n.DroppedReqs += vol
}

// failSilent records a routing mismatch: a failure with no response code.
func (t *tickTally) failSilent(n *Node, kind RequestKind, vol float64) {
	if vol <= 0 {
		return
	}
	t.failed[kind] += vol
	n.DroppedReqs += vol
}

func (t *tickTally) observeLoad(load float64) {
	if lf := load / 100; lf > t.maxLoadFactor {
		t.maxLoadFactor = lf
	}
}

func (t *tickTally) successLegit() float64 {
	var sum float64
	for k := RequestKind(0); k < numRequestKinds; k++ {
		if k != ReqAttack {
			sum += t.success[k]
		}
	}
	return sum
}

func (t *tickTally) failedLegit() float64 {
	var sum float64
	for k := RequestKind(0); k < numRequestKinds; k++ {
		if k != ReqAttack {
			sum += t.failed[k]
		}
	}
	return sum
}

// Metrics reduces tick tallies into the aggregates the read model exposes.
// Satisfaction is the only field carrying state across ticks; everything
// else is recomputed from the latest tally.
type Metrics struct {
	Satisfaction float64

	Uptime       float64
	AvgLatencyMs float64
	P95LatencyMs float64
	LastRevenue  float64 // credited for the latest tick

	TotalSuccessful float64
	TotalFailed     float64
	TotalIncoming   float64

	SuccessByKind [numRequestKinds]float64
	FailedByKind  [numRequestKinds]float64
	Codes         ResponseCodes // cumulative

	LastCodes ResponseCodes // latest tick only

	// AvgLatencyHistory is the per-tick average latency series, kept for
	// the end-of-run report's observed quantiles.
	AvgLatencyHistory []float64

	Ticks int64
}

func NewMetrics() *Metrics {
	return &Metrics{Satisfaction: 100, Uptime: 100}
}

// reduce folds one settled tick into the aggregates. routable is false when
// no Source node has any child: unroutable ingress is not held against
// uptime or satisfaction, there being nothing deployed to be "down".
func (m *Metrics) reduce(t *tickTally, techs TechFlags, routable bool) {
	m.Ticks++

	successLegit := t.successLegit()
	failedLegit := t.failedLegit()

	for k := RequestKind(0); k < numRequestKinds; k++ {
		m.SuccessByKind[k] += t.success[k]
		m.FailedByKind[k] += t.failed[k]
	}
	m.TotalSuccessful += successLegit
	m.TotalFailed += failedLegit
	m.TotalIncoming += t.incomingLegit + t.incomingAttack

	m.Codes.C200 += t.codes.C200
	m.Codes.C403 += t.codes.C403
	m.Codes.C429 += t.codes.C429
	m.Codes.C500 += t.codes.C500
	m.Codes.C503 += t.codes.C503
	m.LastCodes = t.codes

	// Uptime: the share of legitimate ingress that was served.
	switch {
	case !routable || t.incomingLegit <= 0:
		m.Uptime = 100
	default:
		m.Uptime = math.Min(100, successLegit/t.incomingLegit*100)
	}

	// Latency: a base term plus the mean of the per-node estimates, with a
	// heuristic P95 that spikes once anything saturates.
	base := baseLatencyMs
	if techs.Accelerator {
		base = acceleratedBaseLatencyMs
	}
	mean := 0.0
	if t.latencyNodes > 0 {
		mean = t.latencySum / float64(t.latencyNodes)
	}
	m.AvgLatencyMs = base + mean
	m.P95LatencyMs = m.AvgLatencyMs*1.5 + saturationPenalty(t.maxLoadFactor)
	m.AvgLatencyHistory = append(m.AvgLatencyHistory, m.AvgLatencyMs)

	// Revenue for the tick.
	var revenue float64
	for k := RequestKind(0); k < numRequestKinds; k++ {
		revenue += t.success[k] * revenuePerRequest[k]
	}
	m.LastRevenue = revenue

	m.updateSatisfaction(t, successLegit, failedLegit, routable)
}

// saturationPenalty escalates sharply once any node's load factor passes
// 0.8, feeding the heuristic P95.
func saturationPenalty(maxLoadFactor float64) float64 {
	if maxLoadFactor <= 0.8 {
		return 0
	}
	over := math.Min(1, maxLoadFactor) - 0.8
	return 250 * math.Pow(over/0.2, 3)
}

func (m *Metrics) updateSatisfaction(t *tickTally, successLegit, failedLegit float64, routable bool) {
	if !routable {
		return
	}
	resolved := successLegit + failedLegit
	errRate := 0.0
	if resolved > 0 {
		errRate = failedLegit / resolved
	}
	if errRate > errorRateThreshold {
		m.Satisfaction -= satisfactionPenalty
	} else {
		penalty := 0.0
		if m.AvgLatencyMs > latencyPenaltyFloorMs {
			penalty = (m.AvgLatencyMs - latencyPenaltyFloorMs) / 400
		}
		m.Satisfaction += satisfactionRecovery - penalty
	}
	m.Satisfaction = math.Max(0, math.Min(100, m.Satisfaction))
}
