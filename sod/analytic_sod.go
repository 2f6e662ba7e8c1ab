package sod

import (
	"math"
)

/*
Solution is the closed-form Sod shock tube profile at one instant on the
unit interval with the diaphragm at x = 0.5: from left to right, the
undisturbed left state, the rarefaction fan between X1 and X2, the
post-contact plateau to X3, the post-shock plateau to X4 and the
undisturbed right state.
*/
type Solution struct {
	X, Rho, P, U, E []float64
	X1, X2, X3, X4  float64 // fan head, fan tail, contact, shock
	PPost           float64
}

// SolutionAt evaluates the analytic profile at time t, sampling each
// region boundary from both sides so a piecewise-linear interpolation of
// the returned points reproduces the discontinuities.
func SolutionAt(t float64) (sol *Solution) {
	var (
		xMin, xMax         = 0., 1.
		x0, rhoL, pL, uL   = 0.5 * (xMax + xMin), 1., 1., 0.
		rhoR, pR, uR       = 0.125, 0.1, 0.
		gamma              = 1.4
		mu                 = math.Sqrt((gamma - 1) / (gamma + 1))
		cL                 = math.Sqrt(gamma * pL / rhoL)
		pPost              = fzero(sodFunc, math.Pi)
		vPost              = 2 * (math.Sqrt(gamma) / (gamma - 1)) * (1 - math.Pow(pPost, (gamma-1)/(2*gamma)))
		rhoPost            = rhoR * ((pPost / pR) + mu*mu) / (1 + mu*mu*(pPost/pR))
		vShock             = vPost * (rhoPost / rhoR) / ((rhoPost / rhoR) - 1.)
		rhoMiddle          = rhoL * math.Pow(pPost/pL, 1./gamma)
		// Key positions
		x1 = x0 - cL*t
		x3 = x0 + vPost*t
		x4 = x0 + vShock*t
		// determining x2
		c2 = cL - 0.5*(gamma-1.)*vPost
		x2 = x0 + t*(vPost-c2)
	)
	sol = &Solution{
		X1: x1, X2: x2, X3: x3, X4: x4,
		PPost: pPost,
	}
	tol := 0.00000001
	sol.X = []float64{
		xMin,
		x1 - tol, x1 + tol,
		x2 - tol, x2 + tol,
		x3 - tol, x3 + tol,
		x4 - tol, x4 + tol,
		xMax,
	}
	n := len(sol.X)
	sol.Rho = make([]float64, n)
	sol.P = make([]float64, n)
	sol.U = make([]float64, n)
	sol.E = make([]float64, n)
	for i, x := range sol.X {
		switch {
		case x < x1:
			sol.Rho[i] = rhoL
			sol.P[i] = pL
			sol.U[i] = uL
		case x1 <= x && x <= x2:
			c := mu*mu*((x0-x)/t) + (1.-mu*mu)*cL
			sol.Rho[i] = rhoL * math.Pow(c/cL, 2/(gamma-1))
			sol.P[i] = pL * math.Pow(sol.Rho[i]/rhoL, gamma)
			sol.U[i] = (1. - mu*mu) * ((-(x0 - x) / t) + cL)
		case x2 <= x && x <= x3:
			sol.Rho[i] = rhoMiddle
			sol.P[i] = pPost
			sol.U[i] = vPost
		case x3 <= x && x <= x4:
			sol.Rho[i] = rhoPost
			sol.P[i] = pPost
			sol.U[i] = vPost
		case x4 < x:
			sol.Rho[i] = rhoR
			sol.P[i] = pR
			sol.U[i] = uR
		}
		sol.E[i] = sol.P[i] / ((gamma - 1.) * sol.Rho[i])
	}
	return
}

// fzero is a secant iteration on f from the given start point.
func fzero(f func(P float64) (y float64), start float64) float64 {
	var (
		tol = 0.0000001
		res float64
	)
	startOld := start / 2
	res = f(startOld)
	for math.Abs(res) > tol {
		resNew := f(start)
		deriv := (start - startOld) / (resNew - res)
		startNew := math.Abs(start - 0.01*f(start)/deriv)
		startOld = start
		start = startNew
		res = resNew
	}
	return start
}

// sodFunc vanishes at the post-shock pressure of the standard Sod data.
func sodFunc(P float64) (y float64) {
	var (
		rhoR, pR = 0.125, 0.1
		gamma    = 1.4
		mu       = math.Sqrt((gamma - 1) / (gamma + 1))
		mu2      = mu * mu
	)
	y = (P-pR)*math.Sqrt((1-mu2)/(rhoR*(P+mu2*pR))) -
		2*(math.Sqrt(gamma)/(gamma-1))*(1-math.Pow(P, (gamma-1)/(2*gamma)))
	return
}
