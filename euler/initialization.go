package euler

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/lwkobe/ryujin/InputParameters"
	"github.com/lwkobe/ryujin/types"
	"github.com/lwkobe/ryujin/utils"
)

/*
InitializeSolution populates the published state from the named initial
configuration. All planar cases share the same recipe: a 1-D primitive
state (rho, u, p) is promoted to 2-D by aligning the velocity with the
configuration direction, and the plane through the configured position
splits left from right.
*/
func (c *Euler) InitializeSolution(ip *InputParameters.Parameters) {
	var (
		g      = c.Grid
		fl     = c.Fluid
		dx, dy = ip.InitialDirection[0], ip.InitialDirection[1]
		px, py = ip.InitialPosition[0], ip.InitialPosition[1]
	)
	norm := math.Hypot(dx, dy)
	if !(norm > 0.) {
		panic(fmt.Errorf("initial direction is the zero vector"))
	}
	dx, dy = dx/norm, dy/norm

	from1DState := func(rho, u, p float64) [4]float64 {
		return fl.ConservedFromPrimitive(rho, u*dx, u*dy, p)
	}
	position1D := func(i int) float64 {
		return (g.X[i]-px)*dx + (g.Y[i]-py)*dy
	}

	var state func(i int) [4]float64
	switch c.Case {
	case types.CaseUniform:
		q := from1DState(ip.InitialState[0], ip.InitialState[1], ip.InitialState[2])
		state = func(i int) [4]float64 { return q }

	case types.CaseContrast:
		qR := from1DState(ip.InitialState[0], ip.InitialState[1], ip.InitialState[2])
		qL := from1DState(ip.ContrastState[0], ip.ContrastState[1], ip.ContrastState[2])
		state = func(i int) [4]float64 {
			if position1D(i) > 0. {
				return qR
			}
			return qL
		}

	case types.CaseSod:
		// The Sod shock tube contrast: high pressure on the negative side.
		qL := from1DState(1., 0., 1.)
		qR := from1DState(0.125, 0., 0.1)
		state = func(i int) [4]float64 {
			if position1D(i) > 0. {
				return qR
			}
			return qL
		}

	case types.CaseShockFront:
		// Rankine-Hugoniot relations for a Mach-S front running into the
		// configured right state.
		var (
			rhoR, uR, pR = ip.InitialState[0], ip.InitialState[1], ip.InitialState[2]
			machS        = ip.MachNumber
			aR           = math.Sqrt(fl.Gamma * pR / rhoR)
			machR        = uR / aR
			s3           = machS * aR
			deltaMach    = machR - machS
		)
		rhoL := rhoR * (fl.Gamma + 1.) * deltaMach * deltaMach /
			((fl.Gamma-1.)*deltaMach*deltaMach + 2.)
		uL := (1.-rhoR/rhoL)*s3 + rhoR/rhoL*uR
		pL := pR * (2.*fl.Gamma*deltaMach*deltaMach - fl.GM1) / (fl.Gamma + 1.)
		qR := from1DState(rhoR, uR, pR)
		qL := from1DState(rhoL, uL, pL)
		state = func(i int) [4]float64 {
			if position1D(i) > 0. {
				return qR
			}
			return qL
		}

	case types.CaseVortex:
		// Isentropic vortex advecting with the free stream at the
		// configured Mach number, an exact smooth solution.
		var (
			beta = ip.VortexBeta
			mach = ip.MachNumber
		)
		state = func(i int) [4]float64 {
			var (
				xBar = g.X[i] - px
				yBar = g.Y[i] - py
				r2   = utils.POW(xBar, 2) + utils.POW(yBar, 2)
			)
			factor := beta / (2. * math.Pi) * math.Exp(0.5-0.5*r2)
			T := 1. - fl.GM1/(2.*fl.Gamma)*factor*factor
			u := dx*mach - factor*yBar
			v := dy*mach + factor*xBar
			rho := math.Pow(T, fl.GM1Inv)
			p := math.Pow(rho, fl.Gamma)
			return fl.ConservedFromPrimitive(rho, u, v, p)
		}

	default:
		panic(fmt.Errorf("unknown initial condition %s", c.Case))
	}

	for i := 0; i < g.N; i++ {
		c.Qn.Set(i, state(i))
	}

	if ip.Perturbation != 0. {
		rng := rand.New(rand.NewSource(42))
		for i := 0; i < g.N; i++ {
			q := c.Qn.At(i)
			for n := 0; n < 4; n++ {
				q[n] *= 1. + ip.Perturbation*(2.*rng.Float64()-1.)
			}
			c.Qn.Set(i, q)
		}
	}

	if c.Check && !c.Qn.Admissible(c.Fluid) {
		panic("initial condition is outside the invariant domain")
	}
}
