package syclop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegion_DefaultsToUnitFreeVolume(t *testing.T) {
	r := newRegion(3)
	assert.Equal(t, 3, r.Index)
	assert.Equal(t, 1.0, r.FreeVolume)
	assert.Greater(t, r.Weight, 0.0)
	assert.Greater(t, r.Alpha, 0.0)
}

func TestUpdateRegionWeight_FloorsFreeVolume(t *testing.T) {
	r := newRegion(0)
	r.FreeVolume = -5
	updateRegionWeight(r)
	require.GreaterOrEqual(t, r.FreeVolume, minFreeVolume)
}

func TestUpdateRegionWeight_MoreSelectionsLowersWeight(t *testing.T) {
	r := newRegion(0)
	r.FreeVolume = 1.0
	updateRegionWeight(r)
	w0 := r.Weight

	r.NumSelections = 10
	updateRegionWeight(r)
	assert.Less(t, r.Weight, w0)
}

func TestUpdateRegionWeight_MoreCoverageLowersAlphaAndWeight(t *testing.T) {
	r := newRegion(0)
	r.FreeVolume = 1.0
	updateRegionWeight(r)
	a0, w0 := r.Alpha, r.Weight

	r.CovCells[1] = struct{}{}
	r.CovCells[2] = struct{}{}
	updateRegionWeight(r)
	assert.Less(t, r.Alpha, a0)
	assert.Less(t, r.Weight, w0)
}

func TestRegionClear_ResetsSelectionsAndCoverageButKeepsIndex(t *testing.T) {
	r := newRegion(7)
	r.NumSelections = 4
	r.CovCells[9] = struct{}{}
	r.Motions = []any{"m1"}

	r.clear()
	assert.Equal(t, 7, r.Index)
	assert.Equal(t, 0, r.NumSelections)
	assert.Empty(t, r.CovCells)
	assert.Nil(t, r.Motions)
}

func TestDefaultEdgeCostFactor_EmptyEdgeUsesLeadInclusions(t *testing.T) {
	g := &RegionGraph{
		Regions:   []*Region{newRegion(0), newRegion(1)},
		edgeIndex: map[edgeKey]int{{0, 1}: 0},
	}
	adj := newAdjacency(0, 1)
	adj.NumLeadInclusions = 3
	adj.NumSelections = 99 // must be ignored while Empty is true
	g.Adjacencies = []*Adjacency{adj}

	factor := defaultEdgeCostFactor(g, 0, 1)
	assert.Greater(t, factor, 0.0)
	// Both regions have alpha 1 and the edge has no coverage, so the factor is
	// 1+3^2 = 10 (it would be 1+99^2 if NumSelections were used).
	assert.InDelta(t, 10.0, factor, 1e-9)
}
