// sim/mix.go
package sim

// TrafficMix is a per-node volume bucket keyed by request kind. Using a
// fixed array keeps the settlement loop's double buffers allocation-free.
type TrafficMix [numRequestKinds]float64

// Total is the volume across all request kinds.
func (m *TrafficMix) Total() float64 {
	var sum float64
	for _, v := range m {
		sum += v
	}
	return sum
}

// Legit is the volume excluding attack traffic.
func (m *TrafficMix) Legit() float64 {
	return m.Total() - m[ReqAttack]
}

// Add accumulates volume of one kind. Negative volume is a programming
// error upstream and is ignored.
func (m *TrafficMix) Add(kind RequestKind, vol float64) {
	if vol <= 0 {
		return
	}
	m[kind] += vol
}

// Scale multiplies every bucket by ratio.
func (m *TrafficMix) Scale(ratio float64) {
	for k := range m {
		m[k] *= ratio
	}
}

// Clear zeroes the mix in place.
func (m *TrafficMix) Clear() {
	for k := range m {
		m[k] = 0
	}
}
