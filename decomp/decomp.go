// Package decomp provides a coarse workspace Decomposition with a
// neighbor relation and per-region volumes, and a finer CoverageGrid used to count
// distinct cells any region or edge has witnessed motions in.
//
// Both interfaces are meant to be supplied by the caller; GridDecomposition and
// GridCoverage are this package's reference implementations, analogous to
// OMPL's own GridDecomposition helper.
package decomp

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Decomposition is the coarse workspace partition RegionGraph overlays.
type Decomposition interface {
	// NumRegions is the number of regions in the decomposition.
	NumRegions() int
	// LocateRegion returns the region index containing state.
	LocateRegion(state []float64) int
	// Neighbors appends region's neighbor indices to *out (out is reset first).
	Neighbors(region int, out *[]int)
	// RegionVolume returns the volume of the given region.
	RegionVolume(region int) float64
	// Centroid returns the projected workspace centroid of a region, used by
	// LeadBuilder's A* heuristic.
	Centroid(region int) r3.Vector
}

// CoverageGrid is a finer-grained grid used only to count distinct cells that a
// region or edge has had motions pass through.
type CoverageGrid interface {
	LocateCell(state []float64) int
}

// Projection maps an ambient state to workspace coordinates. Many planning
// problems plan in a higher-dimensional configuration space than the 2D/3D
// workspace a Decomposition partitions, so this indirection is required.
type Projection func(state []float64) r3.Vector

// GridDecomposition is an axis-aligned grid decomposition over r3.Vector
// workspace coordinates, projected from ambient states via Projection.
type GridDecomposition struct {
	proj       Projection
	min, max   r3.Vector
	cellsPerAx [3]int
	cellSize   r3.Vector
}

// NewGridDecomposition builds a grid decomposition over the axis-aligned box
// [min,max], with cellsPerAxis cells along each of x,y,z (use 1 to collapse an
// axis for 2D workspaces).
func NewGridDecomposition(proj Projection, min, max r3.Vector, cellsPerAxis [3]int) (*GridDecomposition, error) {
	if proj == nil {
		return nil, fmt.Errorf("decomp: projection must not be nil")
	}
	for axis, n := range cellsPerAxis {
		if n <= 0 {
			return nil, fmt.Errorf("decomp: cellsPerAxis[%d] must be positive, got %d", axis, n)
		}
	}
	extent := max.Sub(min)
	if extent.X < 0 || extent.Y < 0 || extent.Z < 0 {
		return nil, fmt.Errorf("decomp: max must be >= min on every axis")
	}
	cellSize := r3.Vector{
		X: extent.X / float64(cellsPerAxis[0]),
		Y: extent.Y / float64(cellsPerAxis[1]),
		Z: extent.Z / float64(cellsPerAxis[2]),
	}
	return &GridDecomposition{
		proj:       proj,
		min:        min,
		max:        max,
		cellsPerAx: cellsPerAxis,
		cellSize:   cellSize,
	}, nil
}

// NumRegions returns the total cell count.
func (g *GridDecomposition) NumRegions() int {
	return g.cellsPerAx[0] * g.cellsPerAx[1] * g.cellsPerAx[2]
}

func (g *GridDecomposition) coordsToIndex(ix, iy, iz int) int {
	return ix + g.cellsPerAx[0]*(iy+g.cellsPerAx[1]*iz)
}

func (g *GridDecomposition) indexToCoords(idx int) (ix, iy, iz int) {
	ix = idx % g.cellsPerAx[0]
	idx /= g.cellsPerAx[0]
	iy = idx % g.cellsPerAx[1]
	iz = idx / g.cellsPerAx[1]
	return
}

func (g *GridDecomposition) cellIndexFor(p r3.Vector) int {
	clampAxis := func(v, lo, hi float64, size float64, n int) int {
		if size <= 0 {
			return 0
		}
		idx := int((v - lo) / size)
		if idx < 0 {
			idx = 0
		}
		if idx >= n {
			idx = n - 1
		}
		return idx
	}
	ix := clampAxis(p.X, g.min.X, g.max.X, g.cellSize.X, g.cellsPerAx[0])
	iy := clampAxis(p.Y, g.min.Y, g.max.Y, g.cellSize.Y, g.cellsPerAx[1])
	iz := clampAxis(p.Z, g.min.Z, g.max.Z, g.cellSize.Z, g.cellsPerAx[2])
	return g.coordsToIndex(ix, iy, iz)
}

// LocateRegion projects state and returns its containing cell.
func (g *GridDecomposition) LocateRegion(state []float64) int {
	return g.cellIndexFor(g.proj(state))
}

// Neighbors appends the axis-adjacent (6-connected) cell indices of region.
func (g *GridDecomposition) Neighbors(region int, out *[]int) {
	*out = (*out)[:0]
	ix, iy, iz := g.indexToCoords(region)
	deltas := [6][3]int{{-1, 0, 0}, {1, 0, 0}, {0, -1, 0}, {0, 1, 0}, {0, 0, -1}, {0, 0, 1}}
	for _, d := range deltas {
		nx, ny, nz := ix+d[0], iy+d[1], iz+d[2]
		if nx < 0 || nx >= g.cellsPerAx[0] {
			continue
		}
		if ny < 0 || ny >= g.cellsPerAx[1] {
			continue
		}
		if nz < 0 || nz >= g.cellsPerAx[2] {
			continue
		}
		*out = append(*out, g.coordsToIndex(nx, ny, nz))
	}
}

// RegionVolume returns the volume (or area/length, for collapsed axes) of a
// single cell. All cells share the same volume in an axis-aligned grid.
func (g *GridDecomposition) RegionVolume(region int) float64 {
	v := 1.0
	if g.cellsPerAx[0] > 1 || g.cellSize.X > 0 {
		v *= nonZero(g.cellSize.X)
	}
	if g.cellsPerAx[1] > 1 || g.cellSize.Y > 0 {
		v *= nonZero(g.cellSize.Y)
	}
	if g.cellsPerAx[2] > 1 || g.cellSize.Z > 0 {
		v *= nonZero(g.cellSize.Z)
	}
	return v
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

// Centroid returns the center point of a cell in workspace coordinates.
func (g *GridDecomposition) Centroid(region int) r3.Vector {
	ix, iy, iz := g.indexToCoords(region)
	return r3.Vector{
		X: g.min.X + (float64(ix)+0.5)*nonZero(g.cellSize.X),
		Y: g.min.Y + (float64(iy)+0.5)*nonZero(g.cellSize.Y),
		Z: g.min.Z + (float64(iz)+0.5)*nonZero(g.cellSize.Z),
	}
}

// GridCoverage is a finer axis-aligned grid used purely to count distinct cells
// visited, independent of the coarser Decomposition above it.
type GridCoverage struct {
	decomp *GridDecomposition
}

// NewGridCoverage builds a coverage grid with its own (typically finer)
// resolution over the same projection and bounds as a Decomposition.
func NewGridCoverage(proj Projection, min, max r3.Vector, cellsPerAxis [3]int) (*GridCoverage, error) {
	d, err := NewGridDecomposition(proj, min, max, cellsPerAxis)
	if err != nil {
		return nil, err
	}
	return &GridCoverage{decomp: d}, nil
}

// LocateCell returns the coverage cell id containing state.
func (g *GridCoverage) LocateCell(state []float64) int {
	return g.decomp.LocateRegion(state)
}
