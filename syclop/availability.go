package syclop

import "math/rand"

// AvailabilitySampler is a weighted discrete distribution over a
// subset of lead regions that already contain motions, backed by a
// cumulative-weight slice with binary search on a single draw (the same idiom
// OMPL's PDF class uses internally for availDist_).
type AvailabilitySampler struct {
	rand    *rand.Rand
	regions []int
	weights []float64
	total   float64
}

// NewAvailabilitySampler returns an empty sampler drawing from rng.
func NewAvailabilitySampler(rng *rand.Rand) *AvailabilitySampler {
	return &AvailabilitySampler{rand: rng}
}

// Clear empties the distribution.
func (s *AvailabilitySampler) Clear() {
	s.regions = s.regions[:0]
	s.weights = s.weights[:0]
	s.total = 0
}

// Add adds region with the given weight. Weight must be positive.
func (s *AvailabilitySampler) Add(region int, weight float64) {
	s.regions = append(s.regions, region)
	s.total += weight
	s.weights = append(s.weights, s.total)
}

// Empty reports whether the distribution has no entries.
func (s *AvailabilitySampler) Empty() bool {
	return len(s.regions) == 0
}

// Sample draws a region index proportional to its weight. ok is false iff the
// distribution is empty.
func (s *AvailabilitySampler) Sample() (region int, ok bool) {
	if len(s.regions) == 0 {
		return 0, false
	}
	if s.total <= 0 {
		// Degenerate (all-zero) weights: fall back to uniform.
		return s.regions[s.rand.Intn(len(s.regions))], true
	}
	target := s.rand.Float64() * s.total
	idx := lowerBound(s.weights, target)
	return s.regions[idx], true
}

// lowerBound returns the smallest index i such that cum[i] > target, assuming
// cum is non-decreasing. Equivalent to a binary search over the cumulative
// weights.
func lowerBound(cum []float64, target float64) int {
	lo, hi := 0, len(cum)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if cum[mid] > target {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// ComputeAvailableRegions walks lead from the goal end toward the start,
// adding every region that already has at least one motion to the
// distribution, stopping after each addition with probability
// 1-probKeepAddingToAvail.
//
// The goal-to-start walk direction matches OMPL's Syclop::computeAvailableRegions
// and is kept as-is; see DESIGN.md for why no alternative direction was
// substituted.
func (g *RegionGraph) ComputeAvailableRegions(
	lead []int,
	probKeepAddingToAvail float64,
	rng *rand.Rand,
	dist *AvailabilitySampler,
) {
	dist.Clear()
	for i := len(lead) - 1; i >= 0; i-- {
		r := g.Regions[lead[i]]
		if len(r.Motions) == 0 {
			continue
		}
		dist.Add(lead[i], r.Weight)
		if rng.Float64() >= probKeepAddingToAvail {
			break
		}
	}
}

// SelectRegion draws a region from dist, incrementing its NumSelections and
// recomputing its Weight (Syclop::selectRegion).
func (g *RegionGraph) SelectRegion(dist *AvailabilitySampler) (int, bool) {
	region, ok := dist.Sample()
	if !ok {
		return 0, false
	}
	r := g.Regions[region]
	r.NumSelections++
	g.UpdateRegion(r)
	return region, true
}
