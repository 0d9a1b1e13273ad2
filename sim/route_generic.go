// sim/route_generic.go
package sim

// dynamicKinds are the request kinds routed through a load-balancing
// policy at generic nodes; static takes the CDN-preferring path instead.
var dynamicKinds = []RequestKind{ReqWeb, ReqDbRead, ReqDbWrite, ReqDbSearch, ReqAttack}

// routeGeneric is the pass-through behavior shared by sources, security
// nodes, routers and gateways: static prefers CDN children, dynamic is
// split across healthy children by the node's balancing policy.
func (e *Engine) routeGeneric(n *Node, mix TrafficMix, tally *tickTally, emit emitFunc) {
	children := e.topo.Children(n.ID)

	// Static path: CDNs first, anything else as a fallback.
	if vol := mix[ReqStatic]; vol > 0 {
		cdns := e.topo.ChildrenOfKind(n.ID, KindCDN)
		switch {
		case len(cdns) > 0:
			splitEvenly(cdns, ReqStatic, vol, emit)
		case len(children) > 0:
			splitEvenly(children, ReqStatic, vol, emit)
		default:
			tally.failCode(n, ReqStatic, vol, code503)
		}
	}

	dynamic := mix[ReqWeb] + mix[ReqDbRead] + mix[ReqDbWrite] + mix[ReqDbSearch] + mix[ReqAttack]
	if dynamic <= 0 {
		return
	}

	var healthy []*Node
	for _, c := range children {
		if c.Status == StatusActive {
			healthy = append(healthy, c)
		}
	}
	if len(healthy) == 0 {
		for _, k := range dynamicKinds {
			tally.failCode(n, k, mix[k], code503)
		}
		return
	}

	stats := make([]ChildStat, len(healthy))
	for i, c := range healthy {
		stats[i] = ChildStat{Load: c.CurrentLoad, Capacity: e.nodeCapacity(c)}
	}
	weights := e.balancerFor(n).Weights(stats)

	var sum float64
	for _, w := range weights {
		sum += w
	}
	if sum <= 0 {
		for _, k := range dynamicKinds {
			tally.failCode(n, k, mix[k], code503)
		}
		return
	}

	for i, c := range healthy {
		share := weights[i] / sum
		for _, k := range dynamicKinds {
			emit(c, k, mix[k]*share)
		}
	}
}

// balancerFor picks the node's configured balancing policy; anything
// without an algorithm knob balances round-robin.
func (e *Engine) balancerFor(n *Node) Balancer {
	if n.Router != nil && validAlgorithm(n.Router.Algorithm) {
		return e.balancers[n.Router.Algorithm]
	}
	return e.balancers[AlgoRoundRobin]
}
