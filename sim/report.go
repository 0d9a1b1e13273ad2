// sim/report.go
package sim

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Report is the end-of-run summary printed by the CLI. The latency
// quantiles here are observed over the per-tick averages, unlike the
// heuristic P95 the live snapshot carries.
type Report struct {
	Ticks           int64
	TotalIncoming   float64
	TotalSuccessful float64
	TotalFailed     float64
	Codes           ResponseCodes
	Uptime          float64
	Satisfaction    float64
	Cash            float64
	TechPoints      float64

	LatencyP50 float64
	LatencyP90 float64
	LatencyP95 float64
	LatencyP99 float64
}

// BuildReport reduces an engine's run into a Report.
func BuildReport(e *Engine) Report {
	m := e.Metrics()
	r := Report{
		Ticks:           m.Ticks,
		TotalIncoming:   m.TotalIncoming,
		TotalSuccessful: m.TotalSuccessful,
		TotalFailed:     m.TotalFailed,
		Codes:           m.Codes,
		Uptime:          m.Uptime,
		Satisfaction:    m.Satisfaction,
		Cash:            e.Cash(),
		TechPoints:      e.TechPoints(),
	}

	if len(m.AvgLatencyHistory) > 0 {
		series := append([]float64(nil), m.AvgLatencyHistory...)
		sort.Float64s(series)
		r.LatencyP50 = stat.Quantile(0.50, stat.Empirical, series, nil)
		r.LatencyP90 = stat.Quantile(0.90, stat.Empirical, series, nil)
		r.LatencyP95 = stat.Quantile(0.95, stat.Empirical, series, nil)
		r.LatencyP99 = stat.Quantile(0.99, stat.Empirical, series, nil)
	}
	return r
}

// Print displays the report at the end of a headless run.
func (r Report) Print() {
	fmt.Println("=== Simulation Report ===")
	fmt.Printf("Ticks                : %d\n", r.Ticks)
	fmt.Printf("Incoming volume      : %.0f\n", r.TotalIncoming)
	fmt.Printf("Served               : %.0f\n", r.TotalSuccessful)
	fmt.Printf("Failed               : %.0f\n", r.TotalFailed)
	fmt.Printf("Responses            : 200=%.0f 403=%.0f 429=%.0f 500=%.0f 503=%.0f\n",
		r.Codes.C200, r.Codes.C403, r.Codes.C429, r.Codes.C500, r.Codes.C503)
	fmt.Printf("Final uptime         : %.1f%%\n", r.Uptime)
	fmt.Printf("Final satisfaction   : %.1f%%\n", r.Satisfaction)
	fmt.Printf("Cash                 : %.2f\n", r.Cash)
	fmt.Printf("Tech points          : %.2f\n", r.TechPoints)
	if r.Ticks > 0 {
		fmt.Printf("Observed avg-latency quantiles (ms): p50=%.1f p90=%.1f p95=%.1f p99=%.1f\n",
			r.LatencyP50, r.LatencyP90, r.LatencyP95, r.LatencyP99)
	}
}
