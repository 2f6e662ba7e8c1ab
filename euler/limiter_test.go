package euler

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lwkobe/ryujin/types"
)

func TestLimiter(t *testing.T) {
	var (
		fl = NewFluid(1.4)
	)
	{ // A vanishing correction is never limited
		lm := NewLimiter(fl, types.LimiterEntropyInequality, 3)
		q := fl.ConservedFromPrimitive(1., 0.2, -0.1, 1.)
		b := Bounds{RhoMin: 0.5, RhoMax: 1.5, SMin: 1.e-3, EntAvg: 1., EntFlux: 0.}
		assert.True(t, near(1., lm.Limit(b, q, [4]float64{}, 0., 1.), 1.e-14))
	}
	{ // Density family alone: the linear bound has a closed-form root
		lm := NewLimiter(fl, types.LimiterMinMax, 3)
		q := fl.ConservedFromPrimitive(1., 0., 0., 1.)
		b := Bounds{RhoMin: 0.8, RhoMax: 1.2, SMin: 0.}
		tDown := lm.Limit(b, q, [4]float64{-0.5, 0., 0., 0.}, 0., 1.)
		tUp := lm.Limit(b, q, [4]float64{0.5, 0., 0., 0.}, 0., 1.)
		assert.True(t, near(0.4, tDown, 1.e-12))
		assert.True(t, near(0.4, tUp, 1.e-12))
	}
	{ // LimiterNone passes every correction through
		lm := NewLimiter(fl, types.LimiterNone, 3)
		q := fl.ConservedFromPrimitive(1., 0., 0., 1.)
		b := Bounds{RhoMin: 0.999, RhoMax: 1.001, SMin: 0.}
		assert.True(t, near(1., lm.Limit(b, q, [4]float64{-5., 0., 0., 0.}, 0., 1.), 1.e-14))
	}
	{ // Randomized containment: the limited state respects the density interval
		// and the sufficient quadratic form of the minimum-entropy bound
		lm := NewLimiter(fl, types.LimiterSpecificEntropy, 3)
		rng := rand.New(rand.NewSource(7))
		for trial := 0; trial < 200; trial++ {
			q1 := fl.ConservedFromPrimitive(0.2+rng.Float64(), 2.*rng.Float64()-1., 2.*rng.Float64()-1., 0.2+rng.Float64())
			q2 := fl.ConservedFromPrimitive(0.2+rng.Float64(), 2.*rng.Float64()-1., 2.*rng.Float64()-1., 0.2+rng.Float64())
			b := Bounds{
				RhoMin: math.Min(q1[0], q2[0]),
				RhoMax: math.Max(q1[0], q2[0]),
				SMin:   math.Min(fl.SpecificEntropy(q1), fl.SpecificEntropy(q2)),
			}
			var P [4]float64
			for n := 0; n < 4; n++ {
				P[n] = q2[n] - q1[n] + 0.5*(2.*rng.Float64()-1.)
			}
			tl := lm.Limit(b, q1, P, 0., 1.)
			assert.True(t, tl >= 0. && tl <= 1.)

			var qt [4]float64
			for n := 0; n < 4; n++ {
				qt[n] = q1[n] + tl*P[n]
			}
			assert.True(t, qt[0] >= b.RhoMin-1.e-9)
			assert.True(t, qt[0] <= b.RhoMax+1.e-9)
			c := b.SMin * math.Pow(b.RhoMax, fl.Gamma-1.)
			psi := func(q [4]float64) float64 {
				return q[0]*q[3] - 0.5*(q[1]*q[1]+q[2]*q[2]) - c*q[0]*q[0]
			}
			if psi(q1) >= 0. {
				assert.True(t, psi(qt) >= -1.e-8)
			} else {
				// the sufficient form can reject the provisional state outright
				assert.True(t, near(0., tl, 1.e-14))
			}
		}
	}
	{ // Entropy inequality family: psi at the accepted factor is non-negative
		lm := NewLimiter(fl, types.LimiterEntropyInequality, 3)
		rng := rand.New(rand.NewSource(11))
		for trial := 0; trial < 200; trial++ {
			q1 := fl.ConservedFromPrimitive(0.2+rng.Float64(), 2.*rng.Float64()-1., 2.*rng.Float64()-1., 0.2+rng.Float64())
			q2 := fl.ConservedFromPrimitive(0.2+rng.Float64(), 2.*rng.Float64()-1., 2.*rng.Float64()-1., 0.2+rng.Float64())
			b := lm.PairBounds(q1, q2, 1., 0.)
			var (
				qBar, P [4]float64
			)
			for n := 0; n < 4; n++ {
				qBar[n] = 0.5 * (q1[n] + q2[n])
				P[n] = 0.3 * (q2[n] - q1[n])
			}
			tl := lm.limitEntropyInequality(b, qBar, P, 0., 1.)

			var qt [4]float64
			for n := 0; n < 4; n++ {
				qt[n] = qBar[n] + tl*P[n]
			}
			rho2e := qt[0]*qt[3] - 0.5*(qt[1]*qt[1]+qt[2]*qt[2])
			psi := rho2e - math.Pow(math.Max(b.EntAvg+tl*b.EntFlux, 0.), fl.Gamma+1.)
			assert.True(t, psi >= -1.e-8)
		}
	}
	{ // An infeasible interval rejects the correction outright
		lm := NewLimiter(fl, types.LimiterSpecificEntropy, 3)
		q := fl.ConservedFromPrimitive(1., 0., 0., 0.01)
		b := Bounds{RhoMin: 0.5, RhoMax: 1.5, SMin: 10.} // the state itself violates SMin
		P := [4]float64{0., 0., 0.1, 0.}
		assert.True(t, near(0., lm.Limit(b, q, P, 0., 1.), 1.e-14))
	}
	{ // An infeasible start is rejected even when the bound recovers by tMax
		lm := NewLimiter(fl, types.LimiterSpecificEntropy, 3)
		q := fl.ConservedFromPrimitive(1., 0., 0., 0.01)
		b := Bounds{RhoMin: 0.5, RhoMax: 1.5, SMin: 10.}
		P := [4]float64{0., 0., 0., 50.} // energy growth restores the bound at t=1
		assert.True(t, near(0., lm.Limit(b, q, P, 0., 1.), 1.e-14))
	}
	{ // Same for the entropy inequality family
		lm := NewLimiter(fl, types.LimiterEntropyInequality, 3)
		q := fl.ConservedFromPrimitive(1., 0., 0., 0.01)
		b := Bounds{RhoMin: 0.5, RhoMax: 1.5, SMin: 0., EntAvg: 2., EntFlux: 0.}
		P := [4]float64{0., 0., 0., 50.}
		assert.True(t, near(0., lm.limitEntropyInequality(b, q, P, 0., 1.), 1.e-14))
	}
	{ // Bounds merge widens, never narrows
		b := Bounds{RhoMin: 0.5, RhoMax: 1.0, SMin: 0.3}
		b.Merge(Bounds{RhoMin: 0.7, RhoMax: 1.4, SMin: 0.1})
		assert.True(t, near(0.5, b.RhoMin, 1.e-14))
		assert.True(t, near(1.4, b.RhoMax, 1.e-14))
		assert.True(t, near(0.1, b.SMin, 1.e-14))
	}
}

func TestFirstCrossing(t *testing.T) {
	{ // (1-t)(1+2t): positive at 0, negative past t=1
		tl := firstCrossing(1., 1., -2., 0., 2.)
		assert.True(t, near(1., tl, 1.e-12))
	}
	{ // Nearly linear coefficients fall back to the linear root
		tl := firstCrossing(1., -2., 1.e-30, 0., 1.)
		assert.True(t, near(0.5, tl, 1.e-9))
	}
}
