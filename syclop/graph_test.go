package syclop

import (
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineDecomposition is a minimal Decomposition over a handful of regions laid
// out on a line, each adjacent to its immediate neighbors. It exists purely to
// drive RegionGraph/LeadBuilder tests without pulling in the decomp package's
// grid math.
type lineDecomposition struct {
	n int
}

func (d *lineDecomposition) NumRegions() int { return d.n }

func (d *lineDecomposition) LocateRegion(state []float64) int {
	idx := int(state[0])
	if idx < 0 {
		idx = 0
	}
	if idx >= d.n {
		idx = d.n - 1
	}
	return idx
}

func (d *lineDecomposition) Neighbors(region int, out *[]int) {
	*out = (*out)[:0]
	if region > 0 {
		*out = append(*out, region-1)
	}
	if region < d.n-1 {
		*out = append(*out, region+1)
	}
}

func (d *lineDecomposition) RegionVolume(region int) float64 { return 1.0 }

func (d *lineDecomposition) Centroid(region int) r3.Vector {
	return r3.Vector{X: float64(region)}
}

type constCoverage struct{ cell int }

func (c constCoverage) LocateCell(state []float64) int { return c.cell }

func TestNewRegionGraph_BuildsSymmetricLineTopology(t *testing.T) {
	g := NewRegionGraph(&lineDecomposition{n: 5})
	require.Len(t, g.Regions, 5)
	assert.True(t, g.HasEdge(0, 1))
	assert.True(t, g.HasEdge(1, 0))
	assert.False(t, g.HasEdge(0, 2))
	assert.ElementsMatch(t, []int{0, 2}, g.Neighbors(1))
}

func TestRegionGraph_UpdateCoverageOnlyGrowsOnNewCell(t *testing.T) {
	g := NewRegionGraph(&lineDecomposition{n: 3})
	grew := g.UpdateCoverage(0, 10)
	assert.True(t, grew)
	grew = g.UpdateCoverage(0, 10)
	assert.False(t, grew)
	grew = g.UpdateCoverage(0, 11)
	assert.True(t, grew)
}

func TestRegionGraph_UpdateConnectionOnlyGrowsOnNewCell(t *testing.T) {
	g := NewRegionGraph(&lineDecomposition{n: 3})
	grew := g.UpdateConnection(0, 1, 5)
	assert.True(t, grew)
	grew = g.UpdateConnection(0, 1, 5)
	assert.False(t, grew)
	assert.False(t, g.UpdateConnection(0, 2, 5)) // no such edge
}

func TestRegionGraph_SetupEstimates_ClassifiesByValidity(t *testing.T) {
	g := NewRegionGraph(&lineDecomposition{n: 3})
	i := 0
	sample := func() []float64 {
		x := float64(i % 3)
		i++
		return []float64{x}
	}
	checker := func(s []float64) bool { return int(s[0]) != 1 } // region 1 always invalid

	require.NoError(t, g.SetupEstimates(300, sample, checker))
	assert.Less(t, g.Regions[1].PercentValidCells, g.Regions[0].PercentValidCells)
	for _, a := range g.Adjacencies {
		assert.True(t, a.Empty)
		assert.Greater(t, a.Cost, 0.0)
	}
}

func TestRegionGraph_SetupEstimates_RejectsNonPositiveSamples(t *testing.T) {
	g := NewRegionGraph(&lineDecomposition{n: 3})
	err := g.SetupEstimates(0, func() []float64 { return []float64{0} }, func([]float64) bool { return true })
	require.Error(t, err)
}

func TestRegionGraph_Clear_KeepsTopologyResetsEstimates(t *testing.T) {
	g := NewRegionGraph(&lineDecomposition{n: 3})
	g.Regions[0].NumSelections = 5
	g.UpdateConnection(0, 1, 7)

	g.Clear()
	assert.Equal(t, 0, g.Regions[0].NumSelections)
	assert.True(t, g.HasEdge(0, 1))
	adj, ok := g.Edge(0, 1)
	require.True(t, ok)
	assert.True(t, adj.Empty)
}
