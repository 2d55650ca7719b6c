package space

import (
	"errors"

	"go.uber.org/multierr"
)

// errNeverTraversable, errBadGeodesics and errBadSamplers are the three distinct
// manifold-infeasibility conditions SanityChecks can report, returned
// individually or combined via multierr so a caller can see every failure that
// actually occurred rather than just the first.
var (
	errNeverTraversable = errors.New("space: unable to compute a discrete geodesic on the constraint in 10 attempts")
	errBadGeodesics     = errors.New("space: discrete geodesic computation produced off-manifold states")
	errBadSamplers      = errors.New("space: constraint-aware samplers produced off-manifold states")
)

const sanityCheckTrials = 10

// sanityChecks runs ten trials sampling near-neighbor pairs, checking
// traversability, on-manifold geodesic states, and on-manifold samples.
func sanityChecks(cs *ConstrainedSpace) error {
	s1 := cs.ambient.Alloc()
	s2 := cs.ambient.Alloc()

	var anyTraversable, badGeodesicStates, badSamplerStates bool

	for i := 0; i < sanityCheckTrials && !badGeodesicStates; i++ {
		// Constraint-aware sampling: draw from the ambient space, then project.
		cs.ambient.SampleUniform(s1)
		cs.constraint.Project(s1)
		cs.ambient.SampleUniformNear(s2, s1, 10*cs.delta)
		cs.constraint.Project(s2)

		if !cs.constraint.IsSatisfied(s1) || !cs.constraint.IsSatisfied(s2) {
			badSamplerStates = true
		}

		var geodesic [][]float64
		reached := cs.DiscreteGeodesic(s1, s2, true, &geodesic)
		if reached {
			anyTraversable = true
		}
		if len(geodesic) > 0 {
			anyTraversable = anyTraversable || reached
			for _, s := range geodesic {
				if !cs.constraint.IsSatisfied(s) {
					badGeodesicStates = true
				}
			}
		}
	}

	var errs error
	if !anyTraversable {
		errs = multierr.Append(errs, errNeverTraversable)
	}
	if badGeodesicStates {
		errs = multierr.Append(errs, errBadGeodesics)
	}
	if badSamplerStates {
		errs = multierr.Append(errs, errBadSamplers)
	}
	return multierr.Append(errs, checkDistanceMetric(cs))
}

// distance-metric sanity checks: symmetry, bound, and different-states. The
// "respect bounds" and "enforce bounds" checks are not performed: no separate
// bounds-enforcement operation exists beyond sampling.
var (
	errDistanceAsymmetric       = errors.New("space: distance metric is not symmetric")
	errDistanceUnbounded        = errors.New("space: distance metric exceeds maximum extent")
	errDistanceZeroForDifferent = errors.New("space: distance metric returns zero for different states")
)

func checkDistanceMetric(cs *ConstrainedSpace) error {
	a := cs.ambient.Alloc()
	b := cs.ambient.Alloc()
	cs.ambient.SampleUniform(a)
	cs.ambient.SampleUniformNear(b, a, cs.delta)

	dab := cs.ambient.Distance(a, b)
	dba := cs.ambient.Distance(b, a)

	var errs error
	const tol = 1e-9
	if absDiff(dab, dba) > tol {
		errs = multierr.Append(errs, errDistanceAsymmetric)
	}
	if extent := cs.ambient.MaximumExtent(); extent > 0 && dab > extent+tol {
		errs = multierr.Append(errs, errDistanceUnbounded)
	}
	if !statesEqual(a, b) && dab <= tol {
		errs = multierr.Append(errs, errDistanceZeroForDifferent)
	}
	return errs
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

func statesEqual(a, b []float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
