// sim/route_cdn.go
package sim

// routeCDN serves static traffic from the edge cache and forwards misses to
// backing storage. A CDN without a Storage child is misconfigured: nothing
// it admits can be served.
func (e *Engine) routeCDN(n *Node, mix TrafficMix, tally *tickTally, emit emitFunc) {
	storage := e.topo.ChildrenOfKind(n.ID, KindStorage)
	n.CDN.HasStorage = len(storage) > 0
	if !n.CDN.HasStorage {
		for k := RequestKind(0); k < numRequestKinds; k++ {
			tally.failCode(n, k, mix[k], code503)
		}
		return
	}

	// Static: split into hits and misses on the warmup curve. Hits are
	// served at the edge; misses fall through to storage.
	if static := mix[ReqStatic]; static > 0 {
		maxHit := tierSpecFor(KindCDN, n.CDN.Tier).MaxHitRate
		hitRate := maxHit * n.CDN.TotalServed / (n.CDN.TotalServed + cdnWarmupVolume)
		hits := static * hitRate
		misses := static - hits
		tally.succeed(ReqStatic, hits)
		splitEvenly(storage, ReqStatic, misses, emit)
		n.CDN.TotalServed += static
	}

	// Dynamic traffic has no business at a CDN, except attack volume,
	// which hammers the origin regardless.
	for _, k := range []RequestKind{ReqWeb, ReqDbRead, ReqDbWrite, ReqDbSearch} {
		tally.failCode(n, k, mix[k], code503)
	}
	splitEvenly(storage, ReqAttack, mix[ReqAttack], emit)
}

// splitEvenly forwards vol in equal shares to every target.
func splitEvenly(targets []*Node, kind RequestKind, vol float64, emit emitFunc) {
	if vol <= 0 || len(targets) == 0 {
		return
	}
	share := vol / float64(len(targets))
	for _, t := range targets {
		emit(t, kind, share)
	}
}
