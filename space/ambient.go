// Package space provides the ambient carrier space, the
// constraint-wrapping ConstrainedSpace that computes discrete geodesics, and the
// motion validator built on top of it.
package space

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// AmbientSpace is the carrier space any ConstrainedSpace wraps. States are plain
// []float64 slices, which are dense and unit-stride by construction — the
// stride requirement OMPL's ConstrainedStateSpace::setup() enforces dynamically
// for C++ state objects is structurally guaranteed here (see DESIGN.md).
type AmbientSpace interface {
	// Dimension is n.
	Dimension() int
	// Alloc returns a new zeroed state of the correct dimension.
	Alloc() []float64
	// Copy copies src into dst. Both must already be allocated to Dimension().
	Copy(dst, src []float64)
	// Distance returns a metric distance between a and b.
	Distance(a, b []float64) float64
	// Interpolate writes into out the point a fraction t of the way from from to
	// to, measured however this space defines "fraction".
	Interpolate(from, to []float64, t float64, out []float64)
	// SampleUniform fills out with a uniform sample over the space's bounds.
	SampleUniform(out []float64)
	// SampleUniformNear fills out with a uniform sample within distance of near.
	SampleUniformNear(out, near []float64, distance float64)
	// MaximumExtent is the diameter used to derive longestValidSegmentFraction.
	MaximumExtent() float64
}

// Bound is the inclusive sampling range for one dimension.
type Bound struct {
	Min, Max float64
}

// EuclideanSpace is the default AmbientSpace: R^n with axis-aligned bounds and L2
// distance, matching the defaultDistanceFunc convention of measuring the L2
// norm between input vectors via gonum/floats.
type EuclideanSpace struct {
	bounds []Bound
	rng    uniformSource
}

// uniformSource is the minimal randomness EuclideanSpace needs; satisfied by
// *rand.Rand and by internal/rng.Stream.
type uniformSource interface {
	Float64() float64
}

// NewEuclideanSpace returns an n-dimensional Euclidean space bounded by bounds
// (len(bounds) must equal n) and sampled with rng.
func NewEuclideanSpace(bounds []Bound, rng uniformSource) (*EuclideanSpace, error) {
	if len(bounds) == 0 {
		return nil, fmt.Errorf("space: at least one bound is required")
	}
	for i, b := range bounds {
		if b.Min > b.Max {
			return nil, fmt.Errorf("space: bound %d has Min %f > Max %f", i, b.Min, b.Max)
		}
	}
	if rng == nil {
		return nil, fmt.Errorf("space: rng must not be nil")
	}
	return &EuclideanSpace{bounds: bounds, rng: rng}, nil
}

func (s *EuclideanSpace) Dimension() int { return len(s.bounds) }

func (s *EuclideanSpace) Alloc() []float64 { return make([]float64, len(s.bounds)) }

func (s *EuclideanSpace) Copy(dst, src []float64) { copy(dst, src) }

func (s *EuclideanSpace) Distance(a, b []float64) float64 {
	diff := make([]float64, len(a))
	for i := range a {
		diff[i] = a[i] - b[i]
	}
	return floats.Norm(diff, 2)
}

func (s *EuclideanSpace) Interpolate(from, to []float64, t float64, out []float64) {
	for i := range from {
		out[i] = from[i] + t*(to[i]-from[i])
	}
}

func (s *EuclideanSpace) SampleUniform(out []float64) {
	for i, b := range s.bounds {
		out[i] = b.Min + s.rng.Float64()*(b.Max-b.Min)
	}
}

func (s *EuclideanSpace) SampleUniformNear(out, near []float64, distance float64) {
	for i, b := range s.bounds {
		lo := near[i] - distance
		hi := near[i] + distance
		if lo < b.Min {
			lo = b.Min
		}
		if hi > b.Max {
			hi = b.Max
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		out[i] = lo + s.rng.Float64()*(hi-lo)
	}
}

func (s *EuclideanSpace) MaximumExtent() float64 {
	sumSq := 0.0
	for _, b := range s.bounds {
		d := b.Max - b.Min
		sumSq += d * d
	}
	return math.Sqrt(sumSq)
}
