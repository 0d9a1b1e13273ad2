// sim/economy.go
package sim

// bill charges operating expenses for dt scaled seconds. Revenue is
// credited per tick in tick(); this only handles the cost side. With the
// serverless unlock, compute that served nothing in the latest tick is
// free.
func (e *Engine) bill(dt float64) {
	var perSec float64
	e.topo.Each(func(n *Node) {
		perSec += e.opexFor(n)
	})
	e.opexPerSec = perSec
	e.cash -= perSec * dt
}

func (e *Engine) opexFor(n *Node) float64 {
	idle := n.ProcessedReqs == 0
	switch n.Kind {
	case KindCompute:
		if e.techs.Serverless && idle {
			return 0
		}
		return tierSpecFor(n.Kind, n.Compute.Tier).OpexPerSec
	case KindAutoscalingGroup:
		if e.techs.Serverless && idle {
			return 0
		}
		return tierSpecFor(n.Kind, n.Autoscale.Tier).OpexPerSec * float64(n.Autoscale.Instances)
	case KindCDN:
		return tierSpecFor(n.Kind, n.CDN.Tier).OpexPerSec
	default:
		return kindSpecs[n.Kind].OpexPerSec
	}
}
