// sim/chaos.go
//
// Stochastic node outages and the repair/boot state machine. Runs on the
// render clock, independently of the settlement loop; the policy engine
// only ever sees the resulting status.
package sim

import "github.com/sirupsen/logrus"

// stepChaos advances failure rolls, repair timers and transition
// countdowns by dt scaled seconds.
func (e *Engine) stepChaos(dt float64) {
	rng := e.rng.ForSubsystem(SubsystemChaos)
	e.topo.Each(func(n *Node) {
		switch n.Status {
		case StatusBooting:
			tr := n.Transition
			if tr == nil {
				// Defensive exit from an inconsistent state.
				n.Status = StatusActive
				return
			}
			tr.Remaining -= dt
			if tr.Remaining <= 0 {
				e.completeTransition(n)
			}
		case StatusDown:
			n.FailureTimeLeft -= dt
			if n.FailureTimeLeft <= 0 {
				n.FailureTimeLeft = 0
				n.Status = StatusBooting
				n.Transition = &Transition{
					Kind:      TransitionReboot,
					Remaining: bootSeconds,
					Duration:  bootSeconds,
				}
				logrus.Infof("node %s repaired, rebooting", n.Name)
			}
		case StatusActive:
			if n.chaosExempt(e.techs) {
				return
			}
			if rng.Float64() < failureRatePerSecond*dt {
				n.Status = StatusDown
				n.FailureTimeLeft = repairSeconds
				n.CurrentLoad = 0
				logrus.Warnf("node %s failed, repair in %.0fs", n.Name, repairSeconds)
			}
		}
	})
}

// completeTransition finishes an upgrade or reboot and brings the node back
// into service.
func (e *Engine) completeTransition(n *Node) {
	tr := n.Transition
	if tr.Kind == TransitionUpgrade && tr.PendingTier != "" {
		switch {
		case n.Compute != nil:
			n.Compute.Tier = tr.PendingTier
		case n.CDN != nil:
			n.CDN.Tier = tr.PendingTier
		case n.Autoscale != nil:
			n.Autoscale.Tier = tr.PendingTier
		}
	}
	n.Transition = nil
	n.Status = StatusActive
	logrus.Infof("node %s back in service", n.Name)
}
