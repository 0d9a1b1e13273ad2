// sim/settle.go
//
// The per-tick flow settlement loop: seed ingress at the sources, then
// relax in rounds, each round draining every node's current buffer into its
// children's next buffers, until the flow dies out or the round cap hits.
package sim

import "github.com/sirupsen/logrus"

// flowBuffers is the double-buffered per-node traffic state. Two arenas
// indexed by a stable node index plus a ping-pong flip avoid any per-round
// allocation; swapping buffers is the only mutation contract between
// rounds.
type flowBuffers struct {
	index map[string]int
	mixes [2][]TrafficMix
	flip  int
	stale bool
}

func newFlowBuffers() *flowBuffers {
	return &flowBuffers{index: map[string]int{}, stale: true}
}

// rebuild re-indexes the arenas after a topology edit.
func (b *flowBuffers) rebuild(ids []string) {
	b.index = make(map[string]int, len(ids))
	for i, id := range ids {
		b.index[id] = i
	}
	b.mixes[0] = make([]TrafficMix, len(ids))
	b.mixes[1] = make([]TrafficMix, len(ids))
	b.flip = 0
	b.stale = false
}

func (b *flowBuffers) cur(id string) *TrafficMix  { return &b.mixes[b.flip][b.index[id]] }
func (b *flowBuffers) next(id string) *TrafficMix { return &b.mixes[b.flip^1][b.index[id]] }

func (b *flowBuffers) swap() { b.flip ^= 1 }

func (b *flowBuffers) clearNext() {
	side := b.mixes[b.flip^1]
	for i := range side {
		side[i].Clear()
	}
}

func (b *flowBuffers) clearAll() {
	for s := range b.mixes {
		for i := range b.mixes[s] {
			b.mixes[s][i].Clear()
		}
	}
}

// anyAbove reports whether any current buffer still holds non-negligible
// volume.
func (b *flowBuffers) anyAbove(threshold float64) bool {
	for i := range b.mixes[b.flip] {
		if b.mixes[b.flip][i].Total() > threshold {
			return true
		}
	}
	return false
}

// tick runs one full settlement pass: counter reset, ingress seeding,
// relaxation, cache repricing and metrics reduction. dt is the scaled tick
// length in seconds.
func (e *Engine) tick(dt float64) {
	if e.buffers.stale {
		e.buffers.rebuild(e.topo.IDs())
	}

	e.topo.Each(func(n *Node) {
		n.ProcessedReqs = 0
		n.DroppedReqs = 0
		if as := n.Autoscale; as != nil && as.CooldownLeft > 0 {
			as.CooldownLeft -= dt
			if as.CooldownLeft < 0 {
				as.CooldownLeft = 0
			}
		}
	})
	e.buffers.clearAll()

	ingress := e.gen.Generate(dt, e.metrics.Satisfaction)
	tally := newTickTally()

	sources := e.topo.Sources()
	if len(sources) > 0 {
		tally.incomingLegit = ingress.Legit()
		tally.incomingAttack = ingress[ReqAttack]
		share := 1.0 / float64(len(sources))
		for _, src := range sources {
			buf := e.buffers.cur(src.ID)
			for k := RequestKind(0); k < numRequestKinds; k++ {
				buf.Add(k, ingress[k]*share)
			}
		}
	}

	e.settle(tally)

	e.topo.Each(func(n *Node) {
		if n.Kind == KindCache {
			repriceCache(n)
		}
		n.LoadHistory.Push(n.CurrentLoad)
	})

	e.metrics.reduce(tally, e.techs, e.topo.anySourceHasChildren())
	e.cash += e.metrics.LastRevenue
	e.techPoints += tally.successLegit() * techPointsPerRequest
	e.simTime += dt
}

// settle runs the relaxation rounds against whatever is buffered. Calling
// it with empty buffers is a no-op.
func (e *Engine) settle(tally *tickTally) {
	rounds := 0
	for ; rounds < maxSettleRounds; rounds++ {
		if !e.buffers.anyAbove(minRoutableVolume) {
			break
		}
		e.buffers.clearNext()
		for _, id := range e.topo.IDs() {
			n := e.topo.Node(id)
			buf := e.buffers.cur(id)
			mix := *buf
			buf.Clear()
			e.processNode(n, mix, tally, func(to *Node, kind RequestKind, vol float64) {
				e.buffers.next(to.ID).Add(kind, vol)
			})
		}
		e.buffers.swap()
	}

	// Volume still in flight at the round cap is unresolvable this tick.
	// It is recorded as a 503 against its destination so every unit of
	// ingress stays accounted for.
	if rounds == maxSettleRounds && e.buffers.anyAbove(0) {
		var truncated float64
		for _, id := range e.topo.IDs() {
			n := e.topo.Node(id)
			buf := e.buffers.cur(id)
			for k := RequestKind(0); k < numRequestKinds; k++ {
				tally.failCode(n, k, buf[k], code503)
				truncated += buf[k]
			}
			buf.Clear()
		}
		if truncated > 0 {
			logrus.Debugf("settlement truncated %.1f in-flight volume at round cap", truncated)
		}
	}
}
