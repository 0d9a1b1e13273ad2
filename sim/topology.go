// sim/topology.go
package sim

import "fmt"

type edgeKey struct {
	from, to string
}

// Topology is the node/edge store. Nodes keep a stable insertion order so
// every settlement round iterates deterministically; edges are an ordered
// pair with at most one edge per pair. Cycles are allowed — the settlement
// loop's round cap bounds them.
type Topology struct {
	nodes map[string]*Node
	order []string
	edges map[edgeKey]struct{}
	out   map[string][]string
	in    map[string][]string
}

func NewTopology() *Topology {
	return &Topology{
		nodes: make(map[string]*Node),
		edges: make(map[edgeKey]struct{}),
		out:   make(map[string][]string),
		in:    make(map[string][]string),
	}
}

func (t *Topology) Len() int { return len(t.nodes) }

// Node looks up a node by ID, nil if absent.
func (t *Topology) Node(id string) *Node { return t.nodes[id] }

// Add inserts a node. The ID must be unused.
func (t *Topology) Add(n *Node) error {
	if _, exists := t.nodes[n.ID]; exists {
		return fmt.Errorf("node %s already exists", n.ID)
	}
	t.nodes[n.ID] = n
	t.order = append(t.order, n.ID)
	return nil
}

// Remove deletes a node and every edge touching it.
func (t *Topology) Remove(id string) error {
	if _, ok := t.nodes[id]; !ok {
		return fmt.Errorf("node %s does not exist", id)
	}
	for key := range t.edges {
		if key.from == id || key.to == id {
			t.removeEdge(key)
		}
	}
	delete(t.nodes, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return nil
}

// Toggle connects from→to, or disconnects if the edge already exists.
// Returns true when the edge exists after the call.
func (t *Topology) Toggle(from, to string) (bool, error) {
	if from == to {
		return false, fmt.Errorf("node %s cannot connect to itself", from)
	}
	if _, ok := t.nodes[from]; !ok {
		return false, fmt.Errorf("node %s does not exist", from)
	}
	if _, ok := t.nodes[to]; !ok {
		return false, fmt.Errorf("node %s does not exist", to)
	}
	key := edgeKey{from, to}
	if _, ok := t.edges[key]; ok {
		t.removeEdge(key)
		return false, nil
	}
	t.edges[key] = struct{}{}
	t.out[from] = append(t.out[from], to)
	t.in[to] = append(t.in[to], from)
	return true, nil
}

func (t *Topology) removeEdge(key edgeKey) {
	delete(t.edges, key)
	t.out[key.from] = removeID(t.out[key.from], key.to)
	t.in[key.to] = removeID(t.in[key.to], key.from)
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// HasEdge reports whether from→to exists.
func (t *Topology) HasEdge(from, to string) bool {
	_, ok := t.edges[edgeKey{from, to}]
	return ok
}

// EdgeCount is the number of directed edges.
func (t *Topology) EdgeCount() int { return len(t.edges) }

// Each visits every node in insertion order.
func (t *Topology) Each(fn func(*Node)) {
	for _, id := range t.order {
		fn(t.nodes[id])
	}
}

// IDs returns the node IDs in insertion order.
func (t *Topology) IDs() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Children returns the direct downstream nodes of id, in edge-creation order.
func (t *Topology) Children(id string) []*Node {
	ids := t.out[id]
	out := make([]*Node, 0, len(ids))
	for _, cid := range ids {
		out = append(out, t.nodes[cid])
	}
	return out
}

// ChildrenOfKind filters Children by kind.
func (t *Topology) ChildrenOfKind(id string, kind NodeKind) []*Node {
	var out []*Node
	for _, c := range t.Children(id) {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// Sources returns every Source node in insertion order.
func (t *Topology) Sources() []*Node {
	var out []*Node
	t.Each(func(n *Node) {
		if n.Kind == KindSource {
			out = append(out, n)
		}
	})
	return out
}

// anySourceHasChildren reports whether at least one Source node can route
// traffic anywhere. When false, ingress is unroutable by construction and
// the aggregator does not count it against uptime.
func (t *Topology) anySourceHasChildren() bool {
	for _, src := range t.Sources() {
		if len(t.out[src.ID]) > 0 {
			return true
		}
	}
	return false
}
