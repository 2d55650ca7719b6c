// Package constraint provides an implicit equality constraint F(q)=0 together
// with a projection operator onto its zero set.
//
// The exact solver used by Project is deliberately swappable — only the
// contract (converges or reports failure, leaves partial progress on failure)
// matters — but NewtonConstraint supplies a grounded default (damped Newton
// with a pseudo-inverse Jacobian) so the rest of the module has something
// concrete to build and test against.
package constraint

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Constraint is the contract any implicit equality constraint must satisfy.
// Implementations must be deterministic: identical input to
// IsSatisfied/Project always yields identical output.
type Constraint interface {
	// AmbientDimension is n, the dimension of the carrier space.
	AmbientDimension() int
	// ManifoldDimension is k, the dimension of the constraint's zero set. k <= n.
	ManifoldDimension() int
	// IsSatisfied reports whether q lies on the manifold within tolerance.
	IsSatisfied(q []float64) bool
	// Project mutates q in place toward the manifold, returning whether it
	// converged. On failure, q holds whatever partial progress the last
	// completed iteration made.
	Project(q []float64) bool
}

// Func evaluates the constraint's defining equality F(q).
type Func func(q []float64) []float64

// JacobianFunc evaluates the Jacobian of Func at q, an m x n matrix where m is
// len(Func(q)).
type JacobianFunc func(q []float64) *mat.Dense

const (
	// DefaultTolerance is the default convergence tolerance on ||F(q)||.
	DefaultTolerance = 1e-4
	// DefaultMaxIterations bounds Newton's method before it gives up.
	DefaultMaxIterations = 50
	// defaultFiniteDifferenceStep is used by the finite-difference Jacobian
	// fallback when no JacobianFunc is supplied.
	defaultFiniteDifferenceStep = 1e-6
)

// NewtonConstraint is the default Constraint implementation: damped Newton
// iteration on F(q)=0 using the Moore-Penrose pseudo-inverse of the Jacobian.
type NewtonConstraint struct {
	n, k          int
	f             Func
	jac           JacobianFunc
	tolerance     float64
	maxIterations int
	dampingFactor float64
}

// Option configures a NewtonConstraint.
type Option func(*NewtonConstraint)

// WithTolerance overrides DefaultTolerance.
func WithTolerance(tol float64) Option {
	return func(c *NewtonConstraint) { c.tolerance = tol }
}

// WithMaxIterations overrides DefaultMaxIterations.
func WithMaxIterations(n int) Option {
	return func(c *NewtonConstraint) { c.maxIterations = n }
}

// WithDamping scales each Newton step by factor in (0,1]; 1.0 is undamped.
func WithDamping(factor float64) Option {
	return func(c *NewtonConstraint) { c.dampingFactor = factor }
}

// NewNewtonConstraint builds a Constraint over ambient dimension n and manifold
// dimension k from an equality function f. jac may be nil, in which case a
// forward-difference Jacobian is used. Returns a configuration error if k > n or
// either dimension is non-positive.
func NewNewtonConstraint(n, k int, f Func, jac JacobianFunc, opts ...Option) (*NewtonConstraint, error) {
	if n <= 0 || k <= 0 {
		return nil, fmt.Errorf("constraint: ambient dimension %d and manifold dimension %d must be positive", n, k)
	}
	if k > n {
		return nil, fmt.Errorf("constraint: manifold dimension %d cannot exceed ambient dimension %d", k, n)
	}
	if f == nil {
		return nil, fmt.Errorf("constraint: equality function must not be nil")
	}
	c := &NewtonConstraint{
		n:             n,
		k:             k,
		f:             f,
		jac:           jac,
		tolerance:     DefaultTolerance,
		maxIterations: DefaultMaxIterations,
		dampingFactor: 1.0,
	}
	if c.jac == nil {
		c.jac = c.finiteDifferenceJacobian
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// AmbientDimension returns n.
func (c *NewtonConstraint) AmbientDimension() int { return c.n }

// ManifoldDimension returns k.
func (c *NewtonConstraint) ManifoldDimension() int { return c.k }

// IsSatisfied reports whether ||F(q)|| <= tolerance.
func (c *NewtonConstraint) IsSatisfied(q []float64) bool {
	return residualNorm(c.f(q)) <= c.tolerance
}

// Project runs damped Newton iteration on F(q)=0, mutating q in place.
func (c *NewtonConstraint) Project(q []float64) bool {
	for iter := 0; iter < c.maxIterations; iter++ {
		fq := c.f(q)
		if residualNorm(fq) <= c.tolerance {
			return true
		}

		jac := c.jac(q)
		pinv, ok := pseudoInverse(jac)
		if !ok {
			return false
		}

		step := mat.NewVecDense(c.n, nil)
		residual := mat.NewVecDense(len(fq), fq)
		step.MulVec(pinv, residual)

		for i := range q {
			q[i] -= c.dampingFactor * step.AtVec(i)
		}
	}
	return residualNorm(c.f(q)) <= c.tolerance
}

func (c *NewtonConstraint) finiteDifferenceJacobian(q []float64) *mat.Dense {
	f0 := c.f(q)
	m := len(f0)
	jac := mat.NewDense(m, c.n, nil)
	perturbed := make([]float64, c.n)
	for j := 0; j < c.n; j++ {
		copy(perturbed, q)
		perturbed[j] += defaultFiniteDifferenceStep
		f1 := c.f(perturbed)
		for i := 0; i < m; i++ {
			jac.Set(i, j, (f1[i]-f0[i])/defaultFiniteDifferenceStep)
		}
	}
	return jac
}

// pseudoInverse computes the Moore-Penrose pseudo-inverse of j via its SVD.
func pseudoInverse(j *mat.Dense) (*mat.Dense, bool) {
	var svd mat.SVD
	if ok := svd.Factorize(j, mat.SVDThin); !ok {
		return nil, false
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	values := svd.Values(nil)

	rank := len(values)

	// Thin SVD: v is cols x rank and u is rows x rank, so Sigma^+ is rank x rank.
	sigmaInv := mat.NewDense(rank, rank, nil)
	for i := 0; i < rank; i++ {
		if values[i] > 1e-12 {
			sigmaInv.Set(i, i, 1/values[i])
		}
	}

	var vSigma mat.Dense
	vSigma.Mul(&v, sigmaInv)
	var pinv mat.Dense
	pinv.Mul(&vSigma, u.T())
	return &pinv, true
}

func residualNorm(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
