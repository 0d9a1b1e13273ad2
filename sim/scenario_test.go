package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenarioFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultScenario_BuildsAndServes(t *testing.T) {
	// GIVEN the built-in scenario
	e, err := DefaultScenario().Build()
	require.NoError(t, err)

	// The starting deployment is installed as found, not purchased
	assert.InDelta(t, 10000.0, e.Cash(), 1e-9)
	assert.Equal(t, 8, e.topo.Len())
	assert.Equal(t, 11, e.topo.EdgeCount())

	// WHEN a stretch of peacetime runs
	for i := 0; i < 100; i++ {
		runTick(e)
	}

	// THEN the stack serves traffic
	m := e.Metrics()
	assert.Greater(t, m.TotalSuccessful, 0.0)
	assert.Greater(t, m.Uptime, 90.0)
}

func TestLoadScenario_RoundTrip(t *testing.T) {
	path := writeScenarioFile(t, `
seed: 7
starting_cash: 5000
speed: 2
techs:
  security_hardened: true
nodes:
  - name: internet
    kind: source
  - name: fw-1
    kind: firewall
  - name: web-1
    kind: compute
    tier: performance
    zone: eu-west
edges:
  - from: internet
    to: fw-1
  - from: fw-1
    to: web-1
`)

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), s.Seed)
	assert.True(t, s.Techs.SecurityHardened)

	e, err := s.Build()
	require.NoError(t, err)
	assert.InDelta(t, 5000.0, e.Cash(), 1e-9)
	assert.Equal(t, 3, e.topo.Len())
	assert.Equal(t, 2, e.topo.EdgeCount())
	assert.True(t, e.techs.SecurityHardened)
	assert.InDelta(t, 2.0, e.speed, 1e-9)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadScenario_MalformedYAML(t *testing.T) {
	path := writeScenarioFile(t, "nodes: [unclosed")
	_, err := LoadScenario(path)
	assert.Error(t, err)
}

func TestLoadScenario_ValidationRejectsEmptyNodes(t *testing.T) {
	path := writeScenarioFile(t, "seed: 1\nstarting_cash: 100\n")
	_, err := LoadScenario(path)
	assert.Error(t, err, "a scenario without nodes is invalid")
}

func TestLoadScenario_ValidationRejectsBadRole(t *testing.T) {
	path := writeScenarioFile(t, `
nodes:
  - name: sql-1
    kind: sql-database
    role: follower
`)
	_, err := LoadScenario(path)
	assert.Error(t, err)
}

func TestScenarioBuild_Errors(t *testing.T) {
	base := func() *Scenario {
		return &Scenario{
			StartingCash: 100,
			Nodes:        []ScenarioNode{{Name: "web-1", Kind: "compute", Tier: "micro"}},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Scenario)
	}{
		{"unknown kind", func(s *Scenario) { s.Nodes[0].Kind = "mainframe" }},
		{"unknown tier", func(s *Scenario) { s.Nodes[0].Tier = "xxl" }},
		{"role on non-sql", func(s *Scenario) { s.Nodes[0].Role = "replica" }},
		{"algorithm on non-router", func(s *Scenario) { s.Nodes[0].Algorithm = AlgoRandom }},
		{"duplicate name", func(s *Scenario) {
			s.Nodes = append(s.Nodes, ScenarioNode{Name: "web-1", Kind: "cache"})
		}},
		{"edge from unknown node", func(s *Scenario) {
			s.Edges = []ScenarioEdge{{From: "ghost", To: "web-1"}}
		}},
		{"edge to unknown node", func(s *Scenario) {
			s.Edges = []ScenarioEdge{{From: "web-1", To: "ghost"}}
		}},
		{"unknown algorithm", func(s *Scenario) {
			s.Nodes = append(s.Nodes, ScenarioNode{Name: "lb-1", Kind: "load-balancer", Algorithm: "coin-flip"})
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := base()
			tc.mutate(s)
			_, err := s.Build()
			assert.Error(t, err)
		})
	}
}

func TestScenarioBuild_DefaultsSpeedToOne(t *testing.T) {
	s := &Scenario{Nodes: []ScenarioNode{{Name: "internet", Kind: "source"}}}
	e, err := s.Build()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, e.speed, 1e-9)
}

func TestBuildReport_QuantilesFromHistory(t *testing.T) {
	// GIVEN a short run with latency history
	e := testEngine(7)
	buildServingStack(t, e)
	for i := 0; i < 50; i++ {
		runTick(e)
	}

	r := BuildReport(e)

	assert.Equal(t, int64(50), r.Ticks)
	assert.Greater(t, r.LatencyP50, 0.0)
	assert.LessOrEqual(t, r.LatencyP50, r.LatencyP90)
	assert.LessOrEqual(t, r.LatencyP90, r.LatencyP95)
	assert.LessOrEqual(t, r.LatencyP95, r.LatencyP99)
	assert.Equal(t, e.Cash(), r.Cash)
}
