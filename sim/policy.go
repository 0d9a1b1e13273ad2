// sim/policy.go
//
// Per-node admission policy: status gate, security filtering, capacity
// throttling and the latency estimate. Kind-specific routing of the admitted
// volume lives in the route_*.go files.
package sim

import "math"

// latencyForLoad estimates a node's response latency in milliseconds from
// its load percentage. Linear up to 85% load, then a steep cubic knee.
// Deliberately heuristic, not queueing theory.
func latencyForLoad(load float64) float64 {
	lf := math.Min(0.99, load/100)
	latency := 5 + 20*lf
	if lf > 0.85 {
		latency += 10 * math.Pow(10*lf-8.5, 3)
	}
	return latency
}

// emitFunc forwards volume from a node into a downstream node's next-round
// buffer.
type emitFunc func(to *Node, kind RequestKind, vol float64)

// processNode drains one node's current-round mix: gate on status, filter
// attack volume at security nodes, throttle to capacity, then route what
// survived. All outcomes land in the tally; forwarded volume goes through
// emit.
func (e *Engine) processNode(n *Node, mix TrafficMix, tally *tickTally, emit emitFunc) {
	total := mix.Total()
	if total <= 0 {
		return
	}

	// Status gate: a node that is not active serves nothing.
	if n.Status != StatusActive {
		for k := RequestKind(0); k < numRequestKinds; k++ {
			tally.failCode(n, k, mix[k], code500)
		}
		return
	}

	// Security filtering.
	if n.Kind == KindFirewall || n.Kind == KindWAF {
		filtered := mix[ReqAttack] * (1 - e.attackPassFactor(n.Kind))
		if filtered > 0 {
			tally.failCode(n, ReqAttack, filtered, code403)
			mix[ReqAttack] -= filtered
			total -= filtered
		}
	}

	// Capacity check.
	capacity := e.nodeCapacity(n)
	weighted := e.weightedInput(n, &mix)
	ratio := 1.0
	if weighted > capacity {
		ratio = capacity / weighted
	}
	if ratio < 1 {
		for k := RequestKind(0); k < numRequestKinds; k++ {
			tally.failCode(n, k, mix[k]*(1-ratio), code429)
		}
		mix.Scale(ratio)
		n.CurrentLoad = 100
	} else if math.IsInf(capacity, 1) {
		n.CurrentLoad = 0
	} else {
		n.CurrentLoad = weighted / capacity * 100
	}
	tally.observeLoad(n.CurrentLoad)

	if n.Kind == KindAutoscalingGroup {
		e.autoscale(n)
	}

	admitted := mix.Total()
	n.ProcessedReqs += admitted

	// Latency estimate; counts toward the tick average only when the node
	// actually processed something.
	n.LatencyMs = latencyForLoad(n.CurrentLoad)
	if admitted > 0 {
		crossed := false
		wrapped := func(to *Node, kind RequestKind, vol float64) {
			if n.Zone != "" && to.Zone != "" && n.Zone != to.Zone {
				crossed = true
			}
			emit(to, kind, vol)
		}
		e.route(n, mix, tally, wrapped)
		if crossed {
			n.LatencyMs += crossZoneLatencyMs
		}
		tally.latencySum += n.LatencyMs
		tally.latencyNodes++
	}
}

// attackPassFactor is the fraction of attack volume a security node lets
// through, improved by the security-hardening unlock.
func (e *Engine) attackPassFactor(kind NodeKind) float64 {
	hardened := e.techs.SecurityHardened
	if kind == KindWAF {
		if hardened {
			return wafAttackPassHardened
		}
		return wafAttackPass
	}
	if hardened {
		return firewallAttackPassHardened
	}
	return firewallAttackPass
}

// nodeCapacity is the admission ceiling for one node this tick.
func (e *Engine) nodeCapacity(n *Node) float64 {
	switch n.Kind {
	case KindCompute:
		return tierSpecFor(n.Kind, n.Compute.Tier).Capacity
	case KindCDN:
		return tierSpecFor(n.Kind, n.CDN.Tier).Capacity
	case KindAutoscalingGroup:
		return tierSpecFor(n.Kind, n.Autoscale.Tier).Capacity * float64(n.Autoscale.Instances)
	default:
		return kindSpecs[n.Kind].Capacity
	}
}

// weightedInput prices the inbound mix against capacity. Attack volume
// costs 10x outside security nodes (which are built to inspect it at par),
// and writes landing on a SQL primary pay a contention premium.
func (e *Engine) weightedInput(n *Node, mix *TrafficMix) float64 {
	security := n.Kind == KindFirewall || n.Kind == KindWAF
	var weighted float64
	for k := RequestKind(0); k < numRequestKinds; k++ {
		v := mix[k]
		switch {
		case k == ReqAttack && !security:
			v *= attackLoadWeight
		case k == ReqDbWrite && n.Kind == KindSQLDatabase && n.SQL.Role == RolePrimary:
			v *= primaryWriteWeight
		}
		weighted += v
	}
	return weighted
}

// autoscale applies hysteresis-gated instance scaling after the load for
// this tick is known.
func (e *Engine) autoscale(n *Node) {
	as := n.Autoscale
	if as.CooldownLeft > 0 {
		return
	}
	switch {
	case n.CurrentLoad > scaleUpLoadPct && as.Instances < as.MaxInstances:
		as.Instances++
		as.CooldownLeft = scaleCooldownSeconds
	case n.CurrentLoad < scaleDownLoadPct && as.Instances > as.MinInstances:
		as.Instances--
		as.CooldownLeft = scaleCooldownSeconds
	}
}

// route dispatches the admitted mix to the kind-specific handler.
func (e *Engine) route(n *Node, mix TrafficMix, tally *tickTally, emit emitFunc) {
	switch n.Kind {
	case KindCDN:
		e.routeCDN(n, mix, tally, emit)
	case KindCompute:
		e.routeCompute(n, mix, tally, emit)
	case KindCache:
		e.routeCache(n, mix, tally)
	case KindSQLDatabase:
		e.routeSQL(n, mix, tally)
	case KindNoSQLDatabase:
		e.routeNoSQL(n, mix, tally)
	case KindStorage:
		e.routeStorage(n, mix, tally)
	default:
		// Source, WAF, Firewall, LoadBalancer, APIGateway and pass-through
		// autoscaling groups all route generically.
		e.routeGeneric(n, mix, tally, emit)
	}
}
