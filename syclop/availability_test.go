package syclop

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailabilitySampler_EmptyHasNoSample(t *testing.T) {
	s := NewAvailabilitySampler(rand.New(rand.NewSource(1)))
	assert.True(t, s.Empty())
	_, ok := s.Sample()
	assert.False(t, ok)
}

func TestAvailabilitySampler_SamplesOnlyAddedRegions(t *testing.T) {
	s := NewAvailabilitySampler(rand.New(rand.NewSource(1)))
	s.Add(3, 1.0)
	s.Add(7, 2.0)

	seen := map[int]bool{}
	for i := 0; i < 100; i++ {
		r, ok := s.Sample()
		require.True(t, ok)
		seen[r] = true
	}
	assert.Subset(t, []int{3, 7}, keys(seen))
}

func keys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestComputeAvailableRegions_OnlyIncludesRegionsWithMotions(t *testing.T) {
	g := NewRegionGraph(&lineDecomposition{n: 4})
	g.Regions[1].Motions = []any{"m"}
	g.Regions[2].Motions = nil
	g.UpdateRegion(g.Regions[1])

	dist := NewAvailabilitySampler(rand.New(rand.NewSource(3)))
	g.ComputeAvailableRegions([]int{0, 1, 2, 3}, 1.0, rand.New(rand.NewSource(3)), dist)

	assert.False(t, dist.Empty())
	r, ok := dist.Sample()
	require.True(t, ok)
	assert.Equal(t, 1, r)
}

func TestComputeAvailableRegions_EmptyLeadYieldsEmptyDistribution(t *testing.T) {
	g := NewRegionGraph(&lineDecomposition{n: 2})
	dist := NewAvailabilitySampler(rand.New(rand.NewSource(3)))
	g.ComputeAvailableRegions(nil, 1.0, rand.New(rand.NewSource(3)), dist)
	assert.True(t, dist.Empty())
}

func TestSelectRegion_IncrementsSelectionsAndLowersWeight(t *testing.T) {
	g := NewRegionGraph(&lineDecomposition{n: 2})
	g.Regions[0].Motions = []any{"m"}
	g.UpdateRegion(g.Regions[0])
	w0 := g.Regions[0].Weight

	dist := NewAvailabilitySampler(rand.New(rand.NewSource(5)))
	dist.Add(0, g.Regions[0].Weight)

	region, ok := g.SelectRegion(dist)
	require.True(t, ok)
	assert.Equal(t, 0, region)
	assert.Equal(t, 1, g.Regions[0].NumSelections)
	assert.Less(t, g.Regions[0].Weight, w0)
}
