// sim/route_data.go
//
// Terminal handlers for the data tier: cache, SQL, NoSQL and object
// storage. Traffic of a type a node cannot serve is a routing mismatch —
// it fails without a response-code bucket (the upstream router already
// chose wrong; there is no HTTP answer to pin it on).
package sim

import "math"

// routeCache serves reads that were already hit-filtered by the upstream
// compute node, then reprices its hit rate for the next tick from warmup
// minus write-invalidation poisoning.
func (e *Engine) routeCache(n *Node, mix TrafficMix, tally *tickTally) {
	for k := RequestKind(0); k < numRequestKinds; k++ {
		if k == ReqDbRead {
			tally.succeed(k, mix[k])
			continue
		}
		tally.failSilent(n, k, mix[k])
	}
	n.Cache.TotalServed += mix[ReqDbRead]
}

// repriceCache recomputes the cache hit rate consumed next tick. Called
// once per tick, after settlement, so the tick's accumulated invalidation
// pressure is fully in.
func repriceCache(n *Node) {
	c := n.Cache
	warmup := cacheMaxHitRate * c.TotalServed / (c.TotalServed + cacheWarmupVolume)
	poison := math.Min(cachePoisonCap, c.InvalidationPressure*cacheWritePenalty)
	c.HitRate = math.Max(cacheMinHitRate, math.Min(cacheMaxHitRate, warmup-poison))
	c.InvalidationPressure = 0
}

// routeSQL accepts reads and search on any role; writes only on a primary.
func (e *Engine) routeSQL(n *Node, mix TrafficMix, tally *tickTally) {
	replica := n.SQL.Role == RoleReplica
	for k := RequestKind(0); k < numRequestKinds; k++ {
		vol := mix[k]
		switch k {
		case ReqDbRead, ReqDbSearch:
			tally.succeed(k, vol)
		case ReqDbWrite:
			if replica {
				tally.failSilent(n, k, vol)
			} else {
				tally.succeed(k, vol)
			}
		default:
			tally.failSilent(n, k, vol)
		}
	}
}

// routeNoSQL accepts every database operation.
func (e *Engine) routeNoSQL(n *Node, mix TrafficMix, tally *tickTally) {
	for k := RequestKind(0); k < numRequestKinds; k++ {
		switch k {
		case ReqDbRead, ReqDbWrite, ReqDbSearch:
			tally.succeed(k, mix[k])
		default:
			tally.failSilent(n, k, mix[k])
		}
	}
}

// routeStorage serves static objects and nothing else.
func (e *Engine) routeStorage(n *Node, mix TrafficMix, tally *tickTally) {
	for k := RequestKind(0); k < numRequestKinds; k++ {
		if k == ReqStatic {
			tally.succeed(k, mix[k])
			continue
		}
		tally.failSilent(n, k, mix[k])
	}
}
