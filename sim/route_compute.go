// sim/route_compute.go
package sim

// routeCompute fans admitted traffic out to a compute node's data
// dependencies. Web terminates here; database traffic picks targets by
// preference order; static needs storage.
func (e *Engine) routeCompute(n *Node, mix TrafficMix, tally *tickTally, emit emitFunc) {
	children := e.topo.Children(n.ID)
	var caches, primaries, replicas, nosqls, storages []*Node
	for _, c := range children {
		switch c.Kind {
		case KindCache:
			caches = append(caches, c)
		case KindSQLDatabase:
			if c.SQL.Role == RolePrimary {
				primaries = append(primaries, c)
			} else {
				replicas = append(replicas, c)
			}
		case KindNoSQLDatabase:
			nosqls = append(nosqls, c)
		case KindStorage:
			storages = append(storages, c)
		}
	}

	// Web terminates at compute.
	tally.succeed(ReqWeb, mix[ReqWeb])

	// Search prefers a document store, then any read path on SQL.
	if vol := mix[ReqDbSearch]; vol > 0 {
		switch {
		case len(nosqls) > 0:
			splitEvenly(nosqls, ReqDbSearch, vol, emit)
		case len(replicas) > 0:
			splitEvenly(replicas, ReqDbSearch, vol, emit)
		case len(primaries) > 0:
			splitEvenly(primaries, ReqDbSearch, vol, emit)
		default:
			tally.failCode(n, ReqDbSearch, vol, code503)
		}
	}

	// Writes need a primary; a successful write dirties every attached
	// cache.
	if vol := mix[ReqDbWrite]; vol > 0 {
		if len(primaries) == 0 {
			tally.failCode(n, ReqDbWrite, vol, code503)
		} else {
			splitEvenly(primaries, ReqDbWrite, vol, emit)
			for _, c := range caches {
				c.Cache.InvalidationPressure += vol
			}
		}
	}

	// Reads try the cache first at its current hit rate; the remainder
	// spreads across replicas, falling back to the primary.
	if vol := mix[ReqDbRead]; vol > 0 {
		remainder := vol
		if len(caches) > 0 {
			remainder = 0
			share := vol / float64(len(caches))
			for _, c := range caches {
				hit := share * c.Cache.HitRate
				emit(c, ReqDbRead, hit)
				remainder += share - hit
			}
		}
		if remainder > 0 {
			switch {
			case len(replicas) > 0:
				splitEvenly(replicas, ReqDbRead, remainder, emit)
			case len(primaries) > 0:
				splitEvenly(primaries, ReqDbRead, remainder, emit)
			default:
				tally.failCode(n, ReqDbRead, remainder, code503)
			}
		}
	}

	// Static needs object storage.
	if vol := mix[ReqStatic]; vol > 0 {
		if len(storages) == 0 {
			tally.failCode(n, ReqStatic, vol, code503)
		} else {
			splitEvenly(storages, ReqStatic, vol, emit)
		}
	}

	// Attack volume that got this far counts as served (the compute node
	// answered it) but still pounds every attached data target.
	if vol := mix[ReqAttack]; vol > 0 {
		tally.succeed(ReqAttack, vol)
		var targets []*Node
		targets = append(targets, caches...)
		targets = append(targets, primaries...)
		targets = append(targets, replicas...)
		targets = append(targets, nosqls...)
		targets = append(targets, storages...)
		splitEvenly(targets, ReqAttack, vol, emit)
	}
}
