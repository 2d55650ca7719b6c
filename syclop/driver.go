package syclop

import (
	"fmt"
	"math/rand"

	"github.com/shaohedu/ompl/decomp"
	"github.com/shaohedu/ompl/internal/log"
	rngutil "github.com/shaohedu/ompl/internal/rng"
	"github.com/shaohedu/ompl/space"
)

// ExtendedMotion is one motion an ExtensionStrategy produced while extending
// the tree rooted in region. Parent is nil for a root motion.
type ExtendedMotion struct {
	Motion any
	State  []float64
	Parent any
}

// ExtensionStrategy is the collaborator that actually owns and grows the
// motion tree. The driver never inspects a Motion's internals beyond the
// State and Parent it is handed back — region membership, coverage-cell
// bookkeeping, and lead-biased sampling all live in the driver, while
// propagation (dynamics, control sampling, collision checking) lives here.
// The driver makes no other assumptions about the underlying tree.
type ExtensionStrategy interface {
	// AddRoot plants a new root motion at state, returning its opaque handle.
	AddRoot(state []float64) (any, error)
	// SelectAndExtend picks a motion already inside region and attempts to
	// extend the tree from it, returning every new motion produced (zero or
	// more; some strategies may fork into several children per call).
	SelectAndExtend(region int) ([]ExtendedMotion, error)
}

// Goal is the subset of goal-region behavior the driver depends on: sampling
// happens through ProblemDefinition, but satisfaction testing and recording a
// found path happen here.
type Goal interface {
	// IsSatisfied reports whether state satisfies the goal, and how far from
	// satisfying it state is (used only for approximate-solution bookkeeping).
	IsSatisfied(state []float64) (satisfied bool, distance float64)
	// AddSolutionPath records path (root-to-tip order) as the planner's result.
	AddSolutionPath(path []PathStep, approximate bool, distance float64)
}

// PathStep is one state along a reconstructed solution path, paired with the
// opaque Motion that produced it.
type PathStep struct {
	Motion any
	State  []float64
}

// ProblemDefinition supplies start/goal states to Solve via an iterative
// nextStart()/nextGoal() start-and-goal-pool pattern rather than a single
// fixed pair.
type ProblemDefinition interface {
	// NextStart returns the next not-yet-added start state, or ok=false once
	// exhausted.
	NextStart() (state []float64, ok bool)
	// NextGoal samples another goal state, polling ptc while it searches.
	// ok is false if ptc fired before a valid goal was found.
	NextGoal(ptc TerminationCondition) (state []float64, ok bool)
	// HaveMoreGoalStates reports whether NextGoal might still succeed.
	HaveMoreGoalStates() bool
	// Goal returns the goal region/test this problem is solving for.
	Goal() Goal
}

// TerminationCondition is polled at every region expansion, tree selection,
// and new-motion classification; Solve returns as soon as it reports true.
type TerminationCondition func() bool

// Options configures a Driver's outer loop.
type Options struct {
	// NumFreeVolSamples is how many ambient-space samples RegionGraph.SetupEstimates
	// draws to estimate per-region free volume.
	NumFreeVolSamples int
	// NumRegionExpansions is how many times the outer loop expands within the
	// current lead before rebuilding it.
	NumRegionExpansions int
	// NumTreeSelections is how many times SelectAndExtend is called per region
	// expansion.
	NumTreeSelections int
	// ProbShortestPath is the chance BuildLead uses A* instead of randomized DFS.
	ProbShortestPath float64
	// ProbKeepAddingToAvail is the per-step continuation probability in
	// ComputeAvailableRegions's goal-to-start walk.
	ProbKeepAddingToAvail float64
	// ProbAbandonLeadEarly is the chance, checked once per region expansion
	// pass, of abandoning the current lead before NumRegionExpansions is spent.
	ProbAbandonLeadEarly float64
}

// DefaultOptions mirrors Syclop's own defaults.
func DefaultOptions() Options {
	return Options{
		NumFreeVolSamples:     10000,
		NumRegionExpansions:   5,
		NumTreeSelections:     10,
		ProbShortestPath:      0.95,
		ProbKeepAddingToAvail: 0.95,
		ProbAbandonLeadEarly:  0.25,
	}
}

func (o Options) validate() error {
	if o.NumFreeVolSamples <= 0 {
		return fmt.Errorf("syclop: NumFreeVolSamples must be positive")
	}
	if o.NumRegionExpansions <= 0 {
		return fmt.Errorf("syclop: NumRegionExpansions must be positive")
	}
	if o.NumTreeSelections <= 0 {
		return fmt.Errorf("syclop: NumTreeSelections must be positive")
	}
	for name, p := range map[string]float64{
		"ProbShortestPath":      o.ProbShortestPath,
		"ProbKeepAddingToAvail": o.ProbKeepAddingToAvail,
		"ProbAbandonLeadEarly":  o.ProbAbandonLeadEarly,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("syclop: %s must be in [0,1], got %f", name, p)
		}
	}
	return nil
}

// motionRecord is what the driver remembers about a motion it was handed
// back, solely to reconstruct a solution path without assuming anything else
// about the tree's internal representation.
type motionRecord struct {
	state  []float64
	parent any
}

// Driver is the outer loop that ties a RegionGraph, a LeadBuilder, and an
// AvailabilitySampler to an ExtensionStrategy, biasing tree growth toward
// regions along a lead from the tree's start region toward its goal region.
type Driver struct {
	ambient         space.AmbientSpace
	decomposition   decomp.Decomposition
	covGrid         decomp.CoverageGrid
	strategy        ExtensionStrategy
	validityChecker func(state []float64) bool

	opts   Options
	rand   *rand.Rand
	logger *log.Logger

	graph       *RegionGraph
	leadBuilder *LeadBuilder
	avail       *AvailabilitySampler

	startRegions *rngutil.Set
	goalRegions  *rngutil.Set

	records map[any]motionRecord

	graphReady bool
}

// NewDriver builds a Driver over decomposition/covGrid, extending the tree
// through strategy and classifying ambient-space samples as free/occupied via
// validityChecker. seed is the single deterministic stream driving every
// randomized choice the loop makes (A*-vs-DFS, DFS successor order, region
// selection): identical seed and identical ProblemDefinition/ExtensionStrategy
// behavior reproduce identical runs.
func NewDriver(
	ambient space.AmbientSpace,
	decomposition decomp.Decomposition,
	covGrid decomp.CoverageGrid,
	strategy ExtensionStrategy,
	validityChecker func(state []float64) bool,
	seed int64,
	opts Options,
) (*Driver, error) {
	if ambient == nil {
		return nil, fmt.Errorf("syclop: ambient must not be nil")
	}
	if decomposition == nil {
		return nil, fmt.Errorf("syclop: decomposition must not be nil")
	}
	if covGrid == nil {
		return nil, fmt.Errorf("syclop: covGrid must not be nil")
	}
	if strategy == nil {
		return nil, fmt.Errorf("syclop: strategy must not be nil")
	}
	if validityChecker == nil {
		return nil, fmt.Errorf("syclop: validityChecker must not be nil")
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	graph := NewRegionGraph(decomposition)
	r := rand.New(rand.NewSource(seed))
	heuristic := func(u, goal int) float64 {
		return decomposition.Centroid(u).Sub(decomposition.Centroid(goal)).Norm()
	}

	return &Driver{
		ambient:         ambient,
		decomposition:   decomposition,
		covGrid:         covGrid,
		strategy:        strategy,
		validityChecker: validityChecker,
		opts:            opts,
		rand:            r,
		logger:          log.Nop(),
		graph:           graph,
		leadBuilder:     NewLeadBuilder(graph, heuristic, r),
		avail:           NewAvailabilitySampler(r),
		startRegions:    rngutil.NewSet(),
		goalRegions:     rngutil.NewSet(),
		records:         make(map[any]motionRecord),
	}, nil
}

// SetLogger attaches a non-nil logger for progress/diagnostic output.
func (d *Driver) SetLogger(l *log.Logger) {
	if l != nil {
		d.logger = l
	}
}

// Clear resets the driver to its just-constructed state: region/edge
// estimates are dropped (topology is kept), start/goal membership is
// forgotten, and the motion-parent ledger is emptied. It does not reset the
// random stream, matching Syclop::clear leaving rng_ untouched.
func (d *Driver) Clear() {
	d.graph.Clear()
	d.startRegions.Clear()
	d.goalRegions.Clear()
	d.records = make(map[any]motionRecord)
	d.graphReady = false
}

// Solve runs the outer loop until ptc fires or a solution is found, mirroring
// Syclop::solve: bootstrap every start/goal state into its region, then
// alternate lead construction, availability computation, and region-biased
// tree extension until ptc fires.
func (d *Driver) Solve(pdef ProblemDefinition, ptc TerminationCondition) (bool, error) {
	if pdef == nil {
		return false, fmt.Errorf("syclop: pdef must not be nil")
	}
	if ptc == nil {
		ptc = func() bool { return false }
	}

	if !d.graphReady {
		if err := d.graph.SetupEstimates(d.opts.NumFreeVolSamples, d.sampleAmbient, d.validityChecker); err != nil {
			return false, err
		}
		d.graphReady = true
	}

	added := 0
	for {
		start, ok := pdef.NextStart()
		if !ok {
			break
		}
		region := d.decomposition.LocateRegion(start)
		motion, err := d.strategy.AddRoot(start)
		if err != nil {
			return false, err
		}
		d.records[motion] = motionRecord{state: start, parent: nil}
		d.graph.Regions[region].Motions = append(d.graph.Regions[region].Motions, motion)
		d.graph.UpdateCoverage(region, d.covGrid.LocateCell(start))
		d.startRegions.Insert(region)
		added++
	}
	if d.startRegions.Len() == 0 {
		d.logger.Error(ErrNoValidStart())
		return false, ErrNoValidStart()
	}

	goal := pdef.Goal()
	if d.goalRegions.Len() == 0 {
		goalState, ok := pdef.NextGoal(ptc)
		if !ok {
			d.logger.Error(ErrNoValidGoal())
			return false, ErrNoValidGoal()
		}
		d.goalRegions.Insert(d.decomposition.LocateRegion(goalState))
	}

	d.logger.Debugf("solve starting with %d root motions, %d start regions, %d goal regions",
		added, d.startRegions.Len(), d.goalRegions.Len())

	solved := false
	var bestApproxMotion any
	bestApproxDist := -1.0

	for !solved && !ptc() {
		startRegion := d.startRegions.SampleUniform(d.rand)
		goalRegion := -1
		if pdef.HaveMoreGoalStates() {
			if goalState, ok := pdef.NextGoal(ptc); ok {
				goalRegion = d.decomposition.LocateRegion(goalState)
				d.goalRegions.Insert(goalRegion)
				d.logger.Debugf("sampled a new goal state in region %d", goalRegion)
			}
		}
		if goalRegion < 0 {
			goalRegion = d.goalRegions.SampleUniform(d.rand)
		}

		lead := d.leadBuilder.BuildLead(startRegion, goalRegion, d.opts.ProbShortestPath)
		leadSet := make(map[int]bool, len(lead))
		for _, r := range lead {
			leadSet[r] = true
		}

		d.graph.ComputeAvailableRegions(lead, d.opts.ProbKeepAddingToAvail, d.rand, d.avail)

		for expansion := 0; !d.avail.Empty() && expansion < d.opts.NumRegionExpansions && !solved && !ptc(); expansion++ {
			improved := false

			for sel := 0; sel < d.opts.NumTreeSelections && !solved && !ptc(); sel++ {
				region, ok := d.graph.SelectRegion(d.avail)
				if !ok {
					break
				}

				motions, err := d.strategy.SelectAndExtend(region)
				if err != nil {
					return false, err
				}

				for _, m := range motions {
					if ptc() {
						break
					}
					d.records[m.Motion] = motionRecord{state: m.State, parent: m.Parent}

					newRegion := d.decomposition.LocateRegion(m.State)
					cell := d.covGrid.LocateCell(m.State)

					if d.graph.UpdateCoverage(newRegion, cell) {
						improved = true
					}

					hadMotions := len(d.graph.Regions[newRegion].Motions) > 0
					d.graph.Regions[newRegion].Motions = append(d.graph.Regions[newRegion].Motions, m.Motion)
					if !hadMotions && leadSet[newRegion] {
						d.avail.Add(newRegion, d.graph.Regions[newRegion].Weight)
					}

					if newRegion != region {
						if adj, ok := d.graph.Edge(region, newRegion); ok {
							adj.Empty = false
							adj.NumSelections++
							d.graph.UpdateEdge(adj)
							if d.graph.UpdateConnection(region, newRegion, cell) {
								improved = true
							}
						}
					}

					satisfied, dist := goal.IsSatisfied(m.State)
					if bestApproxDist < 0 || dist < bestApproxDist {
						bestApproxDist = dist
						bestApproxMotion = m.Motion
					}
					if satisfied {
						path := d.reconstructPath(m.Motion)
						goal.AddSolutionPath(path, false, 0)
						solved = true
						break
					}
				}
				if solved {
					break
				}
			}

			if !solved && !improved && d.rand.Float64() < d.opts.ProbAbandonLeadEarly {
				break
			}
		}
	}

	if !solved && bestApproxMotion != nil {
		path := d.reconstructPath(bestApproxMotion)
		goal.AddSolutionPath(path, true, bestApproxDist)
	}

	return solved, nil
}

// reconstructPath walks the parent chain the driver recorded for every motion
// it was handed, from tip back to a root (Parent == nil), then reverses it
// into root-to-tip order. This is the only place the driver assumes anything
// about tree structure, and it relies solely on the ExtendedMotion.Parent
// values the ExtensionStrategy already reported rather than inspecting Motion
// itself.
func (d *Driver) reconstructPath(tip any) []PathStep {
	var path []PathStep
	m := tip
	for m != nil {
		rec, ok := d.records[m]
		if !ok {
			break
		}
		path = append(path, PathStep{Motion: m, State: rec.state})
		m = rec.parent
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func (d *Driver) sampleAmbient() []float64 {
	s := d.ambient.Alloc()
	d.ambient.SampleUniform(s)
	return s
}
