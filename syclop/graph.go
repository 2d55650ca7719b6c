package syclop

import (
	"fmt"

	"github.com/shaohedu/ompl/decomp"
)

// edgeKey identifies a directed (source,target) pair in the lookup table, an
// arena+index stand-in for OMPL's pointer-valued regionsToEdge_ map.
type edgeKey struct{ u, v int }

// RegionGraph is a directed graph over every region of a Decomposition, with
// an edge (u,v) iff the Decomposition reports v as a neighbor of u.
type RegionGraph struct {
	decomp decomp.Decomposition

	Regions     []*Region
	Adjacencies []*Adjacency
	edgeIndex   map[edgeKey]int

	costFactors []EdgeCostFactor
}

// NewRegionGraph builds the graph's vertex and edge topology once from d. The
// topology is built once and never rebuilt; Clear() resets per-run estimates
// without rebuilding it.
func NewRegionGraph(d decomp.Decomposition) *RegionGraph {
	g := &RegionGraph{
		decomp:    d,
		edgeIndex: make(map[edgeKey]int),
	}
	g.buildGraph()
	g.AddEdgeCostFactor(defaultEdgeCostFactor)
	return g
}

func (g *RegionGraph) buildGraph() {
	n := g.decomp.NumRegions()
	g.Regions = make([]*Region, n)
	for i := 0; i < n; i++ {
		g.Regions[i] = newRegion(i)
	}

	var neighbors []int
	for i := 0; i < n; i++ {
		g.decomp.Neighbors(i, &neighbors)
		for _, j := range neighbors {
			g.addEdge(i, j)
		}
	}
}

func (g *RegionGraph) addEdge(u, v int) {
	key := edgeKey{u, v}
	if _, ok := g.edgeIndex[key]; ok {
		return
	}
	adj := newAdjacency(u, v)
	g.edgeIndex[key] = len(g.Adjacencies)
	g.Adjacencies = append(g.Adjacencies, adj)
}

// adjacency returns the edge (u,v), or nil if none exists.
func (g *RegionGraph) adjacency(u, v int) *Adjacency {
	idx, ok := g.edgeIndex[edgeKey{u, v}]
	if !ok {
		return nil
	}
	return g.Adjacencies[idx]
}

// HasEdge reports whether (u,v) is an edge in the graph.
func (g *RegionGraph) HasEdge(u, v int) bool {
	_, ok := g.edgeIndex[edgeKey{u, v}]
	return ok
}

// Edge returns the edge (u,v) and whether it exists.
func (g *RegionGraph) Edge(u, v int) (*Adjacency, bool) {
	a := g.adjacency(u, v)
	return a, a != nil
}

// Neighbors returns the targets of every outgoing edge from u. Callers that need
// this on a hot path should cache it; RegionGraph recomputes it from the
// underlying Decomposition's neighbor list each call.
func (g *RegionGraph) Neighbors(u int) []int {
	var out []int
	g.decomp.Neighbors(u, &out)
	return out
}

// AddEdgeCostFactor registers an additional cost factor; Cost is the product of
// every registered factor.
func (g *RegionGraph) AddEdgeCostFactor(f EdgeCostFactor) {
	g.costFactors = append(g.costFactors, f)
}

// ClearEdgeCostFactors removes every registered factor, including the default.
func (g *RegionGraph) ClearEdgeCostFactors() {
	g.costFactors = nil
}

// UpdateRegion recomputes r.Alpha and r.Weight from its current fields.
func (g *RegionGraph) UpdateRegion(r *Region) {
	updateRegionWeight(r)
}

// UpdateEdge recomputes a.Cost as the product of every registered cost factor,
// resetting to 1.0 first.
func (g *RegionGraph) UpdateEdge(a *Adjacency) {
	a.Cost = 1.0
	for _, factor := range g.costFactors {
		a.Cost *= factor(g, a.Source, a.Target)
	}
	if a.Cost <= 0 {
		a.Cost = minFreeVolume
	}
}

// UpdateCoverage records that region has had a motion pass through coverage cell
// cell, recomputing its weight if this is a newly-seen cell. Returns whether the
// region's coverage set grew (Syclop::updateCoverageEstimate).
func (g *RegionGraph) UpdateCoverage(region int, cell int) bool {
	r := g.Regions[region]
	if _, seen := r.CovCells[cell]; seen {
		return false
	}
	r.CovCells[cell] = struct{}{}
	g.UpdateRegion(r)
	return true
}

// UpdateConnection records that a motion crossed coverage cell cell while
// traversing edge (u,v), recomputing its cost if this is a newly-seen cell
// (Syclop::updateConnectionEstimate).
func (g *RegionGraph) UpdateConnection(u, v int, cell int) bool {
	adj := g.adjacency(u, v)
	if adj == nil {
		return false
	}
	if _, seen := adj.CovCells[cell]; seen {
		return false
	}
	adj.CovCells[cell] = struct{}{}
	g.UpdateEdge(adj)
	return true
}

// SetupEstimates initializes per-region freeVolume/percentValidCells from
// numFreeVolSamples uniform ambient-space samples, classified valid/invalid by
// checker, and initializes every edge's cost (Syclop::setupRegionEstimates +
// setupEdgeEstimates).
func (g *RegionGraph) SetupEstimates(numFreeVolSamples int, sample func() []float64, checker func([]float64) bool) error {
	if numFreeVolSamples <= 0 {
		return fmt.Errorf("syclop: numFreeVolSamples must be positive, got %d", numFreeVolSamples)
	}
	n := len(g.Regions)
	numTotal := make([]int, n)
	numValid := make([]int, n)

	for i := 0; i < numFreeVolSamples; i++ {
		s := sample()
		rid := g.decomp.LocateRegion(s)
		if rid < 0 || rid >= n {
			continue
		}
		numTotal[rid]++
		if checker(s) {
			numValid[rid]++
		}
	}

	for i, r := range g.Regions {
		r.Volume = g.decomp.RegionVolume(i)
		if numTotal[i] == 0 {
			r.PercentValidCells = 1.0
		} else {
			r.PercentValidCells = float64(numValid[i]) / float64(numTotal[i])
		}
		r.FreeVolume = r.PercentValidCells * r.Volume
		if r.FreeVolume < minFreeVolume {
			r.FreeVolume = minFreeVolume
		}
		g.UpdateRegion(r)
	}

	for _, a := range g.Adjacencies {
		a.Empty = true
		a.NumLeadInclusions = 0
		a.NumSelections = 0
		g.UpdateEdge(a)
	}
	return nil
}

// Clear resets every region's and edge's per-run estimates, keeping the
// vertex/edge topology.
func (g *RegionGraph) Clear() {
	for _, r := range g.Regions {
		r.clear()
	}
	for _, a := range g.Adjacencies {
		a.clear()
	}
}
