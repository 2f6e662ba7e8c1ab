package euler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lwkobe/ryujin/mesh"
	"github.com/lwkobe/ryujin/types"
)

func TestIndicator(t *testing.T) {
	var (
		fl = NewFluid(1.4)
	)
	g, err := mesh.Line(32, 0., 1., false, types.BC_None)
	assert.Nil(t, err)
	{ // Uniform data commutes exactly: alpha vanishes on every node
		ind := NewIndicator(fl, types.IndicatorEntropy)
		sol := NewSolution(g.N)
		q := fl.ConservedFromPrimitive(1., 0.3, 0., 1.)
		for i := 0; i < g.N; i++ {
			sol.Set(i, q)
		}
		for i := 0; i < g.N; i++ {
			assert.True(t, near(0., ind.Alpha(g, sol, i), 1.e-12))
		}
	}
	{ // A contact jump drives alpha toward 1 at the interface and leaves the
		// far field untouched
		ind := NewIndicator(fl, types.IndicatorEntropy)
		sol := NewSolution(g.N)
		qL := fl.ConservedFromPrimitive(1., 1., 0., 1.)
		qR := fl.ConservedFromPrimitive(0.125, 1., 0., 0.1)
		for i := 0; i < g.N; i++ {
			if g.X[i] > 0.5 {
				sol.Set(i, qR)
			} else {
				sol.Set(i, qL)
			}
		}
		var alphaJump, alphaFar float64
		for i := 1; i < g.N-1; i++ {
			a := ind.Alpha(g, sol, i)
			assert.True(t, a >= 0. && a <= 1.)
			qPrev, qNext := sol.At(i-1), sol.At(i+1)
			if qPrev[0] != qNext[0] {
				alphaJump = a
			} else if a > alphaFar && i > 2 && i < g.N-3 {
				alphaFar = a
			}
		}
		// the commutator only fails to cancel across the jump
		assert.True(t, alphaJump > 0.02)
		assert.True(t, near(0., alphaFar, 1.e-12))
	}
	{ // IndicatorNone reports zero regardless of the data
		ind := NewIndicator(fl, types.IndicatorNone)
		sol := NewSolution(g.N)
		for i := 0; i < g.N; i++ {
			sol.Set(i, fl.ConservedFromPrimitive(1.+float64(i), 0., 0., 1.))
		}
		for i := 0; i < g.N; i++ {
			assert.True(t, near(0., ind.Alpha(g, sol, i), 1.e-14))
		}
	}
}
