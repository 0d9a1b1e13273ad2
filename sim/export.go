// sim/export.go
//
// Prometheus exposition of the engine's read model. The collector reads
// the throttled snapshot, never live state, so scrapes cannot contend with
// the settlement loop.
package sim

import "github.com/prometheus/client_golang/prometheus"

var (
	descCash = prometheus.NewDesc(
		"cloudrush_cash", "Current cash balance.", nil, nil)
	descTechPoints = prometheus.NewDesc(
		"cloudrush_tech_points", "Accrued tech points.", nil, nil)
	descUptime = prometheus.NewDesc(
		"cloudrush_uptime_percent", "Share of legitimate traffic served.", nil, nil)
	descSatisfaction = prometheus.NewDesc(
		"cloudrush_satisfaction_percent", "User satisfaction.", nil, nil)
	descAvgLatency = prometheus.NewDesc(
		"cloudrush_latency_avg_ms", "Average request latency estimate.", nil, nil)
	descP95Latency = prometheus.NewDesc(
		"cloudrush_latency_p95_ms", "Heuristic P95 latency estimate.", nil, nil)
	descRevenue = prometheus.NewDesc(
		"cloudrush_revenue_per_second", "Revenue rate.", nil, nil)
	descOpex = prometheus.NewDesc(
		"cloudrush_opex_per_second", "Operating cost rate.", nil, nil)
	descRequests = prometheus.NewDesc(
		"cloudrush_requests_total", "Cumulative requests by kind and outcome.",
		[]string{"kind", "outcome"}, nil)
	descResponseCodes = prometheus.NewDesc(
		"cloudrush_responses_total", "Cumulative responses by status code.",
		[]string{"code"}, nil)
	descNodeLoad = prometheus.NewDesc(
		"cloudrush_node_load_percent", "Per-node load.",
		[]string{"node", "kind"}, nil)
	descNodeUp = prometheus.NewDesc(
		"cloudrush_node_up", "1 when the node is active.",
		[]string{"node", "kind"}, nil)
	descWaveNumber = prometheus.NewDesc(
		"cloudrush_wave_number", "Waves started so far.", nil, nil)
	descAttackActive = prometheus.NewDesc(
		"cloudrush_attack_active", "1 while a DDoS episode is running.", nil, nil)
)

// EngineCollector implements prometheus.Collector over an engine snapshot.
type EngineCollector struct {
	engine *Engine
}

func NewEngineCollector(e *Engine) *EngineCollector {
	return &EngineCollector{engine: e}
}

func (c *EngineCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- descCash
	ch <- descTechPoints
	ch <- descUptime
	ch <- descSatisfaction
	ch <- descAvgLatency
	ch <- descP95Latency
	ch <- descRevenue
	ch <- descOpex
	ch <- descRequests
	ch <- descResponseCodes
	ch <- descNodeLoad
	ch <- descNodeUp
	ch <- descWaveNumber
	ch <- descAttackActive
}

func (c *EngineCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.engine.Snapshot()

	gauge := func(d *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, labels...)
	}
	counter := func(d *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, v, labels...)
	}

	gauge(descCash, s.Cash)
	gauge(descTechPoints, s.TechPoints)
	gauge(descUptime, s.Uptime)
	gauge(descSatisfaction, s.Satisfaction)
	gauge(descAvgLatency, s.AvgLatencyMs)
	gauge(descP95Latency, s.P95LatencyMs)
	gauge(descRevenue, s.RevenuePerSec)
	gauge(descOpex, s.OpexPerSec)
	gauge(descWaveNumber, float64(s.WaveNumber))

	attack := 0.0
	if s.AttackActive {
		attack = 1
	}
	gauge(descAttackActive, attack)

	for k := RequestKind(0); k < numRequestKinds; k++ {
		counter(descRequests, s.SuccessByKind[k], k.String(), "success")
		counter(descRequests, s.FailedByKind[k], k.String(), "failed")
	}
	counter(descResponseCodes, s.Codes.C200, "200")
	counter(descResponseCodes, s.Codes.C403, "403")
	counter(descResponseCodes, s.Codes.C429, "429")
	counter(descResponseCodes, s.Codes.C500, "500")
	counter(descResponseCodes, s.Codes.C503, "503")

	for _, n := range s.Nodes {
		gauge(descNodeLoad, n.Load, n.Name, n.Kind.String())
		up := 0.0
		if n.Status == StatusActive {
			up = 1
		}
		gauge(descNodeUp, up, n.Name, n.Kind.String())
	}
}
