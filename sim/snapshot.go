// sim/snapshot.go
package sim

// NodeView is the read model of one node. Kind-specific fields are zero
// for kinds they don't apply to.
type NodeView struct {
	ID     string
	Name   string
	Kind   NodeKind
	Status NodeStatus
	Zone   string
	Pos    Position

	Load        float64
	LoadHistory []float64
	Processed   float64
	Dropped     float64
	LatencyMs   float64

	Tier               string
	Instances          int
	HitRate            float64
	HasStorage         bool
	DBRole             string
	Algorithm          string
	TransitionProgress float64 // 0 when in service
}

// Snapshot is the externally-visible read model, rebuilt at a throttled
// rate (~2Hz of scaled time). All values are copies; UI code can hold a
// Snapshot as long as it likes.
type Snapshot struct {
	SimTime float64

	Cash          float64
	TechPoints    float64
	RevenuePerSec float64
	OpexPerSec    float64

	Uptime       float64
	Satisfaction float64
	AvgLatencyMs float64
	P95LatencyMs float64

	SuccessByKind [numRequestKinds]float64
	FailedByKind  [numRequestKinds]float64
	Codes         ResponseCodes
	TickCodes     ResponseCodes

	AttackActive    bool
	AttackRemaining float64
	WavePhase       string
	WaveCountdown   float64
	WaveNumber      int
	BaseVolume      float64

	Nodes []NodeView
}

// Snapshot returns the most recently built read model.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot
}

// rebuildSnapshot refreshes the read model from live state. Caller holds
// the engine lock.
func (e *Engine) rebuildSnapshot() {
	phase, countdown := e.gen.Phase()
	s := Snapshot{
		SimTime:         e.simTime,
		Cash:            e.cash,
		TechPoints:      e.techPoints,
		RevenuePerSec:   e.metrics.LastRevenue / TickSeconds,
		OpexPerSec:      e.opexPerSec,
		Uptime:          e.metrics.Uptime,
		Satisfaction:    e.metrics.Satisfaction,
		AvgLatencyMs:    e.metrics.AvgLatencyMs,
		P95LatencyMs:    e.metrics.P95LatencyMs,
		SuccessByKind:   e.metrics.SuccessByKind,
		FailedByKind:    e.metrics.FailedByKind,
		Codes:           e.metrics.Codes,
		TickCodes:       e.metrics.LastCodes,
		AttackActive:    e.gen.AttackActive(),
		AttackRemaining: e.gen.AttackRemaining(),
		WavePhase:       phase.String(),
		WaveCountdown:   countdown,
		WaveNumber:      e.gen.WaveNumber(),
		BaseVolume:      e.gen.BaseVolume(),
		Nodes:           make([]NodeView, 0, e.topo.Len()),
	}

	e.topo.Each(func(n *Node) {
		v := NodeView{
			ID:          n.ID,
			Name:        n.Name,
			Kind:        n.Kind,
			Status:      n.Status,
			Zone:        n.Zone,
			Pos:         n.Pos,
			Load:        n.CurrentLoad,
			LoadHistory: n.LoadHistory.Values(),
			Processed:   n.ProcessedReqs,
			Dropped:     n.DroppedReqs,
			LatencyMs:   n.LatencyMs,
		}
		switch {
		case n.Compute != nil:
			v.Tier = n.Compute.Tier
		case n.CDN != nil:
			v.Tier = n.CDN.Tier
			v.HasStorage = n.CDN.HasStorage
		case n.Cache != nil:
			v.HitRate = n.Cache.HitRate
		case n.SQL != nil:
			v.DBRole = n.SQL.Role.String()
		case n.Router != nil:
			v.Algorithm = n.Router.Algorithm
		case n.Autoscale != nil:
			v.Tier = n.Autoscale.Tier
			v.Instances = n.Autoscale.Instances
		}
		if n.Transition != nil {
			v.TransitionProgress = n.Transition.Progress()
		}
		s.Nodes = append(s.Nodes, v)
	})

	e.snapshot = s
}
