package decomp

import (
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func xyProjection(state []float64) r3.Vector {
	return r3.Vector{X: state[0], Y: state[1], Z: 0}
}

func TestNewGridDecomposition_Validates(t *testing.T) {
	_, err := NewGridDecomposition(nil, r3.Vector{}, r3.Vector{X: 1, Y: 1, Z: 1}, [3]int{2, 2, 1})
	require.Error(t, err)

	_, err = NewGridDecomposition(xyProjection, r3.Vector{}, r3.Vector{X: 1, Y: 1, Z: 1}, [3]int{0, 2, 1})
	require.Error(t, err)

	_, err = NewGridDecomposition(xyProjection, r3.Vector{X: 2}, r3.Vector{X: 1, Y: 1, Z: 1}, [3]int{2, 2, 1})
	require.Error(t, err)
}

func TestGridDecomposition_LocateRegionAndNeighbors(t *testing.T) {
	d, err := NewGridDecomposition(xyProjection, r3.Vector{}, r3.Vector{X: 4, Y: 4, Z: 1}, [3]int{4, 4, 1})
	require.NoError(t, err)
	assert.Equal(t, 16, d.NumRegions())

	r0 := d.LocateRegion([]float64{0.1, 0.1})
	r1 := d.LocateRegion([]float64{1.1, 0.1})
	assert.NotEqual(t, r0, r1)

	var neighbors []int
	d.Neighbors(r0, &neighbors)
	assert.Contains(t, neighbors, r1)
}

func TestGridDecomposition_LocateRegionClampsOutOfBounds(t *testing.T) {
	d, err := NewGridDecomposition(xyProjection, r3.Vector{}, r3.Vector{X: 4, Y: 4, Z: 1}, [3]int{4, 4, 1})
	require.NoError(t, err)

	r := d.LocateRegion([]float64{-100, -100})
	assert.GreaterOrEqual(t, r, 0)
	assert.Less(t, r, d.NumRegions())
}

func TestGridDecomposition_RegionVolumePositive(t *testing.T) {
	d, err := NewGridDecomposition(xyProjection, r3.Vector{}, r3.Vector{X: 4, Y: 8, Z: 1}, [3]int{4, 4, 1})
	require.NoError(t, err)
	for i := 0; i < d.NumRegions(); i++ {
		assert.Greater(t, d.RegionVolume(i), 0.0)
	}
}

func TestGridCoverage_FinerThanDecomposition(t *testing.T) {
	cov, err := NewGridCoverage(xyProjection, r3.Vector{}, r3.Vector{X: 4, Y: 4, Z: 1}, [3]int{16, 16, 1})
	require.NoError(t, err)

	c0 := cov.LocateCell([]float64{0.1, 0.1})
	c1 := cov.LocateCell([]float64{0.3, 0.1})
	assert.NotEqual(t, c0, c1)
}
