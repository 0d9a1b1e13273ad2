// sim/node.go
package sim

import "fmt"

// NodeKind identifies what a node is and therefore how the policy engine
// treats traffic that reaches it.
type NodeKind int

const (
	KindSource NodeKind = iota // "Internet" ingress point
	KindCDN
	KindWAF
	KindFirewall
	KindLoadBalancer
	KindAPIGateway
	KindCompute
	KindAutoscalingGroup
	KindSQLDatabase
	KindNoSQLDatabase
	KindStorage
	KindCache
)

var nodeKindNames = map[NodeKind]string{
	KindSource:           "source",
	KindCDN:              "cdn",
	KindWAF:              "waf",
	KindFirewall:         "firewall",
	KindLoadBalancer:     "load-balancer",
	KindAPIGateway:       "api-gateway",
	KindCompute:          "compute",
	KindAutoscalingGroup: "autoscaling-group",
	KindSQLDatabase:      "sql-database",
	KindNoSQLDatabase:    "nosql-database",
	KindStorage:          "storage",
	KindCache:            "cache",
}

func (k NodeKind) String() string {
	if s, ok := nodeKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("node-kind(%d)", int(k))
}

// ParseNodeKind maps the scenario-file spelling of a kind to its NodeKind.
func ParseNodeKind(s string) (NodeKind, error) {
	for k, name := range nodeKindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown node kind %q", s)
}

// NodeStatus gates admission: anything other than StatusActive rejects all
// inbound traffic with a 500.
type NodeStatus int

const (
	StatusActive NodeStatus = iota
	StatusBooting
	StatusDown
)

func (s NodeStatus) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusBooting:
		return "booting"
	case StatusDown:
		return "down"
	}
	return fmt.Sprintf("node-status(%d)", int(s))
}

// DBRole distinguishes SQL primaries (writable) from read replicas.
type DBRole int

const (
	RolePrimary DBRole = iota
	RoleReplica
)

func (r DBRole) String() string {
	if r == RoleReplica {
		return "replica"
	}
	return "primary"
}

// TransitionKind says why a node is temporarily out of service.
type TransitionKind int

const (
	TransitionUpgrade TransitionKind = iota
	TransitionReboot
)

// Transition is the explicit "upgrading or rebooting" phase a node passes
// through before returning to StatusActive. Upgrades carry the tier that is
// applied on completion; reboots follow a repaired failure.
type Transition struct {
	Kind        TransitionKind
	Remaining   float64 // scaled seconds until done
	Duration    float64
	PendingTier string // TransitionUpgrade only
}

// Progress reports completion in [0,1].
func (t *Transition) Progress() float64 {
	if t.Duration <= 0 {
		return 1
	}
	p := 1 - t.Remaining/t.Duration
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Position is where the editor placed the node. The engine never interprets
// it; it is carried for the rendering collaborator.
type Position struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Node is one vertex of the topology. Fields shared by every kind live here;
// kind-specific state lives in exactly one of the payload pointers, so a
// router can never carry a database role.
type Node struct {
	ID      string
	Name    string
	Kind    NodeKind
	Status  NodeStatus
	Zone    string
	Pos     Position
	Managed bool // exempt from the chaos model

	CurrentLoad   float64
	LoadHistory   *LoadRing
	ProcessedReqs float64 // reset each tick
	DroppedReqs   float64 // reset each tick
	LatencyMs     float64 // last per-tick latency estimate

	FailureTimeLeft float64     // >0 while StatusDown, scaled seconds
	Transition      *Transition // non-nil while booting

	Compute   *ComputeState
	CDN       *CDNState
	Cache     *CacheState
	SQL       *SQLState
	Router    *RouterState
	Autoscale *AutoscaleState
}

// ComputeState holds the sizing class of a single compute node.
type ComputeState struct {
	Tier string
}

// CDNState tracks the edge cache's warmup and its storage dependency.
type CDNState struct {
	Tier        string
	TotalServed float64 // lifetime static volume, drives the warmup asymptote
	HasStorage  bool    // recomputed every tick
}

// CacheState tracks hit-rate warmup and write-invalidation poisoning.
type CacheState struct {
	HitRate              float64
	TotalServed          float64
	InvalidationPressure float64 // reset after each tick's hit-rate recompute
}

// SQLState is the primary/replica role of a SQL database.
type SQLState struct {
	Role DBRole
}

// RouterState selects the load-balancing policy of a router node.
type RouterState struct {
	Algorithm string
}

// AutoscaleState sizes an autoscaling group. Capacity is the tier capacity
// multiplied by Instances; scaling decisions are hysteresis-gated by the
// cooldown.
type AutoscaleState struct {
	Tier         string
	Instances    int
	MinInstances int
	MaxInstances int
	CooldownLeft float64 // scaled seconds
}

// NewNode builds a node of the given kind with its payload attached and
// kind-appropriate defaults.
func NewNode(id, name string, kind NodeKind, tier string) *Node {
	n := &Node{
		ID:          id,
		Name:        name,
		Kind:        kind,
		Status:      StatusActive,
		LoadHistory: NewLoadRing(loadHistoryLen),
	}
	switch kind {
	case KindCompute:
		n.Compute = &ComputeState{Tier: tier}
	case KindCDN:
		n.CDN = &CDNState{Tier: tier}
		n.Managed = true
	case KindCache:
		n.Cache = &CacheState{HitRate: cacheMinHitRate}
	case KindSQLDatabase:
		n.SQL = &SQLState{Role: RolePrimary}
	case KindLoadBalancer:
		n.Router = &RouterState{Algorithm: AlgoRoundRobin}
	case KindAutoscalingGroup:
		n.Autoscale = &AutoscaleState{
			Tier:         tier,
			Instances:    1,
			MinInstances: 1,
			MaxInstances: defaultMaxInstances,
		}
	case KindStorage:
		n.Managed = true
	}
	return n
}

// chaosExempt reports whether the chaos model must leave this node alone.
// Sources never fail (they model the outside world), managed nodes are paid
// to not fail, and the managed-database unlock extends that to databases.
func (n *Node) chaosExempt(techs TechFlags) bool {
	if n.Managed || n.Kind == KindSource {
		return true
	}
	if techs.ManagedDatabases && (n.Kind == KindSQLDatabase || n.Kind == KindNoSQLDatabase) {
		return true
	}
	return false
}

// LoadRing is a fixed-length ring of recent load samples, kept for the
// chart-drawing collaborator.
type LoadRing struct {
	samples []float64
	head    int
	filled  bool
}

func NewLoadRing(n int) *LoadRing {
	return &LoadRing{samples: make([]float64, n)}
}

// Push records one load sample, evicting the oldest once full.
func (r *LoadRing) Push(v float64) {
	r.samples[r.head] = v
	r.head++
	if r.head == len(r.samples) {
		r.head = 0
		r.filled = true
	}
}

// Values returns the samples oldest-first.
func (r *LoadRing) Values() []float64 {
	if !r.filled {
		out := make([]float64, r.head)
		copy(out, r.samples[:r.head])
		return out
	}
	out := make([]float64, 0, len(r.samples))
	out = append(out, r.samples[r.head:]...)
	out = append(out, r.samples[:r.head]...)
	return out
}
