// Package syclop implements the region graph overlaying a workspace
// Decomposition, lead construction, weighted region selection, and the outer
// driver loop that ties a concrete ExtensionStrategy to the graph to bias tree
// growth, following the design of OMPL's control/planners/syclop package.
package syclop

// minFreeVolume is the ε floor on Region.FreeVolume, matching
// std::numeric_limits<double>::epsilon() in OMPL's Syclop.
const minFreeVolume = 2.220446049250313e-16

// Region is a vertex of a RegionGraph. Motions is a list of opaque references
// the RegionGraph never dereferences — ownership of motions stays with the
// ExtensionStrategy.
type Region struct {
	Index             int
	Volume            float64
	FreeVolume        float64
	PercentValidCells float64
	Alpha             float64
	Weight            float64
	NumSelections     int
	CovCells          map[int]struct{}
	Motions           []any
}

func newRegion(index int) *Region {
	r := &Region{
		Index:             index,
		Volume:            1.0,
		PercentValidCells: 1.0,
		FreeVolume:        1.0,
		CovCells:          make(map[int]struct{}),
	}
	updateRegionWeight(r)
	return r
}

// clear resets per-run estimates while keeping the region's identity, matching
// Syclop::clearGraphDetails's Region::clear().
func (r *Region) clear() {
	r.NumSelections = 0
	r.CovCells = make(map[int]struct{})
	r.Motions = nil
	updateRegionWeight(r)
}

// updateRegionWeight recomputes Alpha and Weight from the region's other fields:
//
//	alpha(R)  = 1 / ((1+cov) * f^4)
//	weight(R) = f^4 / ((1+cov) * (1+numSelections^2))
func updateRegionWeight(r *Region) {
	if r.FreeVolume < minFreeVolume {
		r.FreeVolume = minFreeVolume
	}
	f := r.FreeVolume * r.FreeVolume * r.FreeVolume * r.FreeVolume
	cov := float64(1 + len(r.CovCells))
	r.Alpha = 1.0 / (cov * f)
	sel := float64(r.NumSelections)
	r.Weight = f / (cov * (1 + sel*sel))
}

// Adjacency is the directed edge type between two regions.
type Adjacency struct {
	Source, Target    int
	Cost              float64
	Empty             bool
	NumSelections     int
	NumLeadInclusions int
	CovCells          map[int]struct{}
}

func newAdjacency(source, target int) *Adjacency {
	return &Adjacency{
		Source:   source,
		Target:   target,
		Empty:    true,
		CovCells: make(map[int]struct{}),
	}
}

func (a *Adjacency) clear() {
	a.Empty = true
	a.NumSelections = 0
	a.NumLeadInclusions = 0
	a.CovCells = make(map[int]struct{})
}

// EdgeCostFactor is a pure function (u,v) -> positive cost contribution,
// evaluated lazily by RegionGraph.UpdateEdge. Cost is the product of every
// registered factor, reset to 1.0 before multiplying.
type EdgeCostFactor func(graph *RegionGraph, u, v int) float64

// defaultEdgeCostFactor is Syclop::defaultEdgeCost ported verbatim:
//
//	factor = (1+n^2) / (1+covEdge^2) * alpha(source) * alpha(target)
//	n = numLeadInclusions if edge is empty, else numSelections
func defaultEdgeCostFactor(g *RegionGraph, u, v int) float64 {
	adj := g.adjacency(u, v)
	n := adj.NumSelections
	if adj.Empty {
		n = adj.NumLeadInclusions
	}
	cov := len(adj.CovCells)
	factor := float64(1+n*n) / float64(1+cov*cov)
	factor *= g.Regions[u].Alpha * g.Regions[v].Alpha
	return factor
}
