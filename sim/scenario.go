// sim/scenario.go
//
// Scenario files describe a starting deployment: seed, cash, techs, nodes
// and edges. The starting topology is installed for free — the scenario is
// the world as found, not a sequence of purchases.
package sim

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// DefaultScenario is a small working deployment used when no scenario file
// is given: internet → load balancer → two compute nodes backed by a SQL
// primary, a replica, a cache and object storage. There is deliberately no
// CDN next to the load balancer: dynamic traffic is split across all of a
// router's healthy children, so a CDN sibling would swallow half of it.
func DefaultScenario() *Scenario {
	return &Scenario{
		Seed:         42,
		StartingCash: 10000,
		Speed:        1,
		Nodes: []ScenarioNode{
			{Name: "internet", Kind: "source"},
			{Name: "lb-1", Kind: "load-balancer", Algorithm: AlgoLeastConnection},
			{Name: "web-1", Kind: "compute", Tier: "standard"},
			{Name: "web-2", Kind: "compute", Tier: "standard"},
			{Name: "cache-1", Kind: "cache"},
			{Name: "sql-primary", Kind: "sql-database"},
			{Name: "sql-replica", Kind: "sql-database", Role: "replica"},
			{Name: "store-1", Kind: "storage"},
		},
		Edges: []ScenarioEdge{
			{From: "internet", To: "lb-1"},
			{From: "lb-1", To: "web-1"},
			{From: "lb-1", To: "web-2"},
			{From: "web-1", To: "cache-1"},
			{From: "web-2", To: "cache-1"},
			{From: "web-1", To: "sql-primary"},
			{From: "web-2", To: "sql-primary"},
			{From: "web-1", To: "sql-replica"},
			{From: "web-2", To: "sql-replica"},
			{From: "web-1", To: "store-1"},
			{From: "web-2", To: "store-1"},
		},
	}
}

// ScenarioNode is one node entry of a scenario file. Nodes are referenced
// by name in the edge list.
type ScenarioNode struct {
	Name      string   `yaml:"name" validate:"required"`
	Kind      string   `yaml:"kind" validate:"required"`
	Tier      string   `yaml:"tier,omitempty"`
	Zone      string   `yaml:"zone,omitempty"`
	Role      string   `yaml:"role,omitempty" validate:"omitempty,oneof=primary replica"`
	Algorithm string   `yaml:"algorithm,omitempty"`
	Position  Position `yaml:"position,omitempty"`
}

// ScenarioEdge is a directed connection between two named nodes.
type ScenarioEdge struct {
	From string `yaml:"from" validate:"required"`
	To   string `yaml:"to" validate:"required"`
}

// ScenarioTechs mirrors TechFlags with YAML spellings.
type ScenarioTechs struct {
	SecurityHardened bool `yaml:"security_hardened"`
	Accelerator      bool `yaml:"accelerator"`
	Serverless       bool `yaml:"serverless"`
	ManagedDatabases bool `yaml:"managed_databases"`
}

// Scenario is a parsed scenario file.
type Scenario struct {
	Seed         int64          `yaml:"seed"`
	StartingCash float64        `yaml:"starting_cash" validate:"gte=0"`
	Speed        float64        `yaml:"speed" validate:"gte=0"`
	Techs        ScenarioTechs  `yaml:"techs"`
	Nodes        []ScenarioNode `yaml:"nodes" validate:"required,min=1,dive"`
	Edges        []ScenarioEdge `yaml:"edges" validate:"dive"`
}

// LoadScenario reads and validates a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := validator.New().Struct(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &s, nil
}

// Build constructs an engine seeded from the scenario.
func (s *Scenario) Build() (*Engine, error) {
	speed := s.Speed
	if speed == 0 {
		speed = 1
	}
	e := NewEngine(EngineConfig{
		Seed:         s.Seed,
		StartingCash: s.StartingCash,
		Speed:        speed,
		Techs: TechFlags{
			SecurityHardened: s.Techs.SecurityHardened,
			Accelerator:      s.Techs.Accelerator,
			Serverless:       s.Techs.Serverless,
			ManagedDatabases: s.Techs.ManagedDatabases,
		},
	})

	ids := make(map[string]string, len(s.Nodes))
	for _, sn := range s.Nodes {
		kind, err := ParseNodeKind(sn.Kind)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", sn.Name, err)
		}
		if !validTier(kind, sn.Tier) {
			return nil, fmt.Errorf("node %q: unknown tier %q", sn.Name, sn.Tier)
		}
		if _, dup := ids[sn.Name]; dup {
			return nil, fmt.Errorf("duplicate node name %q", sn.Name)
		}
		n := NewNode(uuid.NewString(), sn.Name, kind, sn.Tier)
		n.Zone = sn.Zone
		n.Pos = sn.Position
		if sn.Role == "replica" {
			if n.SQL == nil {
				return nil, fmt.Errorf("node %q: role set on non-SQL node", sn.Name)
			}
			n.SQL.Role = RoleReplica
		}
		if sn.Algorithm != "" {
			if n.Router == nil {
				return nil, fmt.Errorf("node %q: algorithm set on non-router node", sn.Name)
			}
			if !validAlgorithm(sn.Algorithm) {
				return nil, fmt.Errorf("node %q: unknown algorithm %q", sn.Name, sn.Algorithm)
			}
			n.Router.Algorithm = sn.Algorithm
		}
		if err := e.topo.Add(n); err != nil {
			return nil, err
		}
		ids[sn.Name] = n.ID
	}

	for _, se := range s.Edges {
		from, ok := ids[se.From]
		if !ok {
			return nil, fmt.Errorf("edge from unknown node %q", se.From)
		}
		to, ok := ids[se.To]
		if !ok {
			return nil, fmt.Errorf("edge to unknown node %q", se.To)
		}
		if _, err := e.topo.Toggle(from, to); err != nil {
			return nil, err
		}
	}

	e.buffers.stale = true
	e.rebuildSnapshot()
	return e, nil
}
