package space

import (
	"fmt"
	"math"

	"github.com/shaohedu/ompl/constraint"
	"github.com/shaohedu/ompl/internal/log"
)

// DefaultDelta is the library-wide default step size for constrained
// traversal, matching OMPL's CONSTRAINED_STATE_SPACE_DELTA magic constant.
const DefaultDelta = 0.05

// epsilon guards against division by (near-)zero arc length: a geodesic whose
// total length is at most 1e-12 is treated as a single point.
const epsilon = 1e-12

// ConstrainedSpace wraps an AmbientSpace and a Constraint to let any kinodynamic
// planner operate on the constraint's zero set. It exposes the same operations as
// AmbientSpace (delegating alloc/copy/sample) but overrides Interpolate to route
// through discrete geodesic traversal.
type ConstrainedSpace struct {
	ambient    AmbientSpace
	constraint constraint.Constraint
	logger     *log.Logger

	delta                       float64
	longestValidSegmentFraction float64
	setup                       bool

	maxGeodesicSteps int
}

// Option configures a ConstrainedSpace at construction.
type Option func(*ConstrainedSpace)

// WithLogger attaches a logger; defaults to a no-op logger.
func WithLogger(l *log.Logger) Option {
	return func(cs *ConstrainedSpace) { cs.logger = l }
}

// WithMaxGeodesicSteps caps how many delta-sized steps DiscreteGeodesic will take
// before giving up, independent of distance. Zero (the default) derives the cap
// from distance/delta at call time instead of a fixed ceiling.
func WithMaxGeodesicSteps(n int) Option {
	return func(cs *ConstrainedSpace) { cs.maxGeodesicSteps = n }
}

// NewConstrainedSpace builds a ConstrainedSpace over ambient wrapped by c, with
// DefaultDelta unless overridden by a subsequent SetDelta.
func NewConstrainedSpace(ambient AmbientSpace, c constraint.Constraint, opts ...Option) (*ConstrainedSpace, error) {
	if ambient == nil {
		return nil, fmt.Errorf("space: ambient space must not be nil")
	}
	if c == nil {
		return nil, fmt.Errorf("space: constraint must not be nil")
	}
	if c.ManifoldDimension() > ambient.Dimension() {
		return nil, fmt.Errorf("space: manifold dimension %d exceeds ambient dimension %d", c.ManifoldDimension(), ambient.Dimension())
	}
	cs := &ConstrainedSpace{
		ambient:    ambient,
		constraint: c,
		logger:     log.Nop(),
		delta:      DefaultDelta,
	}
	for _, opt := range opts {
		opt(cs)
	}
	return cs, nil
}

// Constraint returns the wrapped constraint.
func (cs *ConstrainedSpace) Constraint() constraint.Constraint { return cs.constraint }

// Dimension delegates to the ambient space.
func (cs *ConstrainedSpace) Dimension() int { return cs.ambient.Dimension() }

// Alloc delegates to the ambient space.
func (cs *ConstrainedSpace) Alloc() []float64 { return cs.ambient.Alloc() }

// Copy delegates to the ambient space.
func (cs *ConstrainedSpace) Copy(dst, src []float64) { cs.ambient.Copy(dst, src) }

// Distance delegates to the ambient space.
func (cs *ConstrainedSpace) Distance(a, b []float64) float64 { return cs.ambient.Distance(a, b) }

// SampleUniform delegates to the ambient space.
func (cs *ConstrainedSpace) SampleUniform(out []float64) { cs.ambient.SampleUniform(out) }

// SampleUniformNear delegates to the ambient space.
func (cs *ConstrainedSpace) SampleUniformNear(out, near []float64, distance float64) {
	cs.ambient.SampleUniformNear(out, near, distance)
}

// MaximumExtent delegates to the ambient space.
func (cs *ConstrainedSpace) MaximumExtent() float64 { return cs.ambient.MaximumExtent() }

// Delta returns the current step size.
func (cs *ConstrainedSpace) Delta() float64 { return cs.delta }

// LongestValidSegmentFraction returns delta/MaximumExtent(), valid once Setup has
// run.
func (cs *ConstrainedSpace) LongestValidSegmentFraction() float64 {
	return cs.longestValidSegmentFraction
}

// SetDelta validates and installs a new step size, propagating it to
// longestValidSegmentFraction if Setup has already run.
func (cs *ConstrainedSpace) SetDelta(delta float64) error {
	if delta <= 0 {
		return fmt.Errorf("space: delta must be positive, got %f", delta)
	}
	cs.delta = delta
	if cs.setup {
		cs.propagateDelta()
	}
	return nil
}

func (cs *ConstrainedSpace) propagateDelta() {
	extent := cs.ambient.MaximumExtent()
	if extent > 0 {
		cs.longestValidSegmentFraction = cs.delta / extent
	}
}

// Setup is idempotent and must be called before DiscreteGeodesic/Interpolate are
// used. It validates delta and propagates it to longestValidSegmentFraction.
//
// OMPL's ambient-stride contiguity check is not re-implemented here (see
// DESIGN.md's "Additional implementation decisions"): []float64 states are
// already dense and unit-stride, so the condition the C++ check guards
// against cannot occur.
func (cs *ConstrainedSpace) Setup() error {
	if cs.setup {
		return nil
	}
	if cs.delta <= 0 {
		return fmt.Errorf("space: delta must be positive before Setup, got %f", cs.delta)
	}
	cs.setup = true
	cs.propagateDelta()
	return nil
}

// DiscreteGeodesicStrategy is the signature of a function that computes a
// sequence of manifold-constrained states joining from toward to.
// ConstrainedSpace does not store or call one: its DiscreteGeodesic method
// (below) always runs the built-in tangent-space walk, and no atlas- or
// chart-based traversal can be substituted.
type DiscreteGeodesicStrategy func(cs *ConstrainedSpace, from, to []float64, interpolate bool, out *[][]float64) bool

// DiscreteGeodesic traverses from from toward to, staying on the constraint
// manifold. When interpolate is true, or out is non-nil, every intermediate state
// visited is appended to *out in traversal order. Returns true iff the last state
// appended is within tolerance of to under the constraint.
//
// from is assumed to already be on-manifold; a failure to converge leaves out
// holding whatever non-empty prefix of progress was made, or empty if none was
// made. This is the default tangent-space-walking strategy: repeatedly step
// delta toward to in the ambient metric and project the result back onto the
// manifold, stopping on success, projection failure, or exhausting the step
// budget.
func (cs *ConstrainedSpace) DiscreteGeodesic(from, to []float64, interpolate bool, out *[][]float64) bool {
	capture := interpolate || out != nil
	var list [][]float64

	maxSteps := cs.maxGeodesicSteps
	if maxSteps == 0 {
		dist := cs.ambient.Distance(from, to)
		maxSteps = int(math.Ceil(dist/cs.delta)) + 2
		if maxSteps < 2 {
			maxSteps = 2
		}
	}

	cur := cs.ambient.Alloc()
	cs.ambient.Copy(cur, from)

	reached := false
	for step := 0; step < maxSteps; step++ {
		dist := cs.ambient.Distance(cur, to)
		if dist <= cs.tolerance() {
			reached = true
			break
		}

		next := cs.ambient.Alloc()
		stepSize := cs.delta
		if dist < stepSize {
			stepSize = dist
		}
		t := stepSize / dist
		cs.ambient.Interpolate(cur, to, t, next)

		if !cs.constraint.Project(next) {
			// Projection failed: no progress made this step, stop with
			// whatever prefix we already captured.
			break
		}

		cur = next
		if capture {
			list = append(list, cur)
		}
	}

	if reached && capture && len(list) == 0 {
		// from == to within tolerance: the prefix is just the start state.
		startCopy := cs.ambient.Alloc()
		cs.ambient.Copy(startCopy, from)
		list = append(list, startCopy)
	}

	if out != nil {
		*out = list
	}
	return reached
}

// tolerance is the distance below which two ambient states are considered
// equivalent for geodesic termination, scaled to delta so it remains meaningful
// across differently-scaled ambient spaces.
func (cs *ConstrainedSpace) tolerance() float64 {
	return cs.delta * 1e-3
}

// Interpolate traverses the geodesic from->to, and returns the sample nearest
// parameter t, or a copy of from if traversal fails entirely.
func (cs *ConstrainedSpace) Interpolate(from, to []float64, t float64, out []float64) {
	var geodesic [][]float64
	reached := cs.DiscreteGeodesic(from, to, true, &geodesic)
	_ = reached

	if len(geodesic) == 0 {
		cs.ambient.Copy(out, from)
		return
	}

	sample := cs.geodesicInterpolate(geodesic, t)
	cs.ambient.Copy(out, sample)
}

// geodesicInterpolate implements arc-length parameterization over the
// captured geodesic states, breaking ties toward the earlier sample.
func (cs *ConstrainedSpace) geodesicInterpolate(geodesic [][]float64, t float64) []float64 {
	n := len(geodesic)
	if n == 1 {
		return geodesic[0]
	}

	d := make([]float64, n)
	d[0] = 0
	for i := 1; i < n; i++ {
		d[i] = d[i-1] + cs.ambient.Distance(geodesic[i-1], geodesic[i])
	}
	last := d[n-1]
	if last <= epsilon {
		return geodesic[0]
	}

	i := 0
	for i < n-1 && d[i+1]/last <= t {
		i++
	}

	t1 := math.Abs(d[i]/last - t)
	var t2 float64
	if i+1 > n-1 {
		t2 = 1
	} else {
		t2 = math.Abs(d[i+1]/last - t)
	}

	if t1 <= t2 {
		return geodesic[i]
	}
	return geodesic[i+1]
}

// SanityChecks samples ten random near-neighbor pairs and checks traversability,
// on-manifold geodesic states, and on-manifold samples. It aggregates every
// distinct failure with multierr rather than stopping at the first, so a
// caller sees the whole picture in one call.
func (cs *ConstrainedSpace) SanityChecks() error {
	return sanityChecks(cs)
}
