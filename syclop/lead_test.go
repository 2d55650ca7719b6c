package syclop

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineHeuristic(u, goal int) float64 {
	d := u - goal
	if d < 0 {
		d = -d
	}
	return float64(d)
}

func TestBuildLead_TrivialWhenStartEqualsGoal(t *testing.T) {
	g := NewRegionGraph(&lineDecomposition{n: 4})
	lb := NewLeadBuilder(g, lineHeuristic, rand.New(rand.NewSource(1)))
	lead := lb.BuildLead(2, 2, 1.0)
	assert.Equal(t, []int{2}, lead)
}

func TestBuildLead_AStarReachesGoalOnLine(t *testing.T) {
	g := NewRegionGraph(&lineDecomposition{n: 6})
	lb := NewLeadBuilder(g, lineHeuristic, rand.New(rand.NewSource(1)))
	lead := lb.BuildLead(0, 5, 1.0) // probShortestPath=1.0 forces A*
	require.NotEmpty(t, lead)
	assert.Equal(t, 0, lead[0])
	assert.Equal(t, 5, lead[len(lead)-1])
	for i := 0; i+1 < len(lead); i++ {
		assert.True(t, g.HasEdge(lead[i], lead[i+1]))
	}
}

func TestBuildLead_RandomizedDFSReachesGoalOnLine(t *testing.T) {
	g := NewRegionGraph(&lineDecomposition{n: 6})
	lb := NewLeadBuilder(g, lineHeuristic, rand.New(rand.NewSource(7)))
	lead := lb.BuildLead(0, 5, 0.0) // probShortestPath=0 forces randomized DFS
	require.NotEmpty(t, lead)
	assert.Equal(t, 0, lead[0])
	assert.Equal(t, 5, lead[len(lead)-1])
	for i := 0; i+1 < len(lead); i++ {
		assert.True(t, g.HasEdge(lead[i], lead[i+1]))
	}
}

func TestBuildLead_MarksEmptyEdgesWithLeadInclusions(t *testing.T) {
	g := NewRegionGraph(&lineDecomposition{n: 4})
	lb := NewLeadBuilder(g, lineHeuristic, rand.New(rand.NewSource(2)))
	lb.BuildLead(0, 3, 1.0)

	adj, ok := g.Edge(0, 1)
	require.True(t, ok)
	assert.Equal(t, 1, adj.NumLeadInclusions)
}

func TestBuildLead_DeterministicForFixedSeed(t *testing.T) {
	g1 := NewRegionGraph(&lineDecomposition{n: 8})
	g2 := NewRegionGraph(&lineDecomposition{n: 8})
	lb1 := NewLeadBuilder(g1, lineHeuristic, rand.New(rand.NewSource(42)))
	lb2 := NewLeadBuilder(g2, lineHeuristic, rand.New(rand.NewSource(42)))

	lead1 := lb1.BuildLead(0, 7, 0.5)
	lead2 := lb2.BuildLead(0, 7, 0.5)
	assert.Equal(t, lead1, lead2)
}
