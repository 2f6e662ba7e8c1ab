package euler

import (
	"math"

	"github.com/lwkobe/ryujin/types"
)

// relEps scales the denominator guards of the closed-form bound solves.
const relEps = 1.e-12

/*
Bounds is the admissibility region a limited state must stay inside:
a local density interval, a specific-entropy floor, and the Harten entropy
average/flux pair of the entropy-inequality bound. Bounds are transient,
rebuilt every step from the low-order update.
*/
type Bounds struct {
	RhoMin, RhoMax float64
	SMin           float64
	EntAvg         float64 // average of the Harten entropy across the pair
	EntFlux        float64 // flux of the Harten entropy across the pair
}

// Merge widens b to contain o, for accumulation over a neighborhood.
func (b *Bounds) Merge(o Bounds) {
	b.RhoMin = math.Min(b.RhoMin, o.RhoMin)
	b.RhoMax = math.Max(b.RhoMax, o.RhoMax)
	b.SMin = math.Min(b.SMin, o.SMin)
}

/*
Limiter computes, for a provisional state U, a candidate correction P and
a search interval [tMin, tMax], the largest blending factor t such that
U + t*P satisfies every active bound family. The families are independent;
the answer is the minimum over their individually computed roots, so the
evaluation order cannot affect the result. An infeasible interval (the
provisional state itself violates a bound) returns tMin, rejecting the
correction rather than propagating an invalid state.
*/
type Limiter struct {
	Fluid         *Fluid
	Kind          types.LIMITER
	MaxIterations int // Newton budget of the entropy-inequality root find
	Check         bool
}

func NewLimiter(fl *Fluid, kind types.LIMITER, maxIter int) (lm *Limiter) {
	lm = &Limiter{
		Fluid:         fl,
		Kind:          kind,
		MaxIterations: maxIter,
	}
	return
}

func (lm *Limiter) Limit(b Bounds, q, P [4]float64, tMin, tMax float64) (t float64) {
	t = tMax
	if lm.Kind == types.LimiterNone {
		return
	}
	t = math.Min(t, lm.limitDensity(b, q, P, tMin, tMax))
	if lm.Kind >= types.LimiterSpecificEntropy {
		t = math.Min(t, lm.limitSpecificEntropy(b, q, P, tMin, tMax))
	}
	if lm.Kind >= types.LimiterEntropyInequality {
		t = math.Min(t, lm.limitEntropyInequality(b, q, P, tMin, tMax))
	}
	t = math.Max(tMin, math.Min(t, tMax))
	return
}

// limitDensity enforces rho(t) in [RhoMin, RhoMax]. The constraints are
// linear in t with a single root each; a denominator below the relative
// guard means the density barely moves and imposes no constraint.
func (lm *Limiter) limitDensity(b Bounds, q, P [4]float64, tMin, tMax float64) (t float64) {
	var (
		rho  = q[0]
		prho = P[0]
		eps  = relEps * math.Max(b.RhoMax, math.Abs(rho))
	)
	t = tMax
	if prho < -eps && rho+t*prho < b.RhoMin {
		t = (b.RhoMin - rho) / prho
	} else if prho > eps && rho+t*prho > b.RhoMax {
		t = (b.RhoMax - rho) / prho
	}
	t = math.Max(tMin, math.Min(t, tMax))
	return
}

/*
limitSpecificEntropy enforces the minimum-entropy bound s(t) >= SMin
through the sufficient quadratic condition

	rho^2 e(t) - SMin * RhoMax^(Gamma-1) * rho(t)^2 >= 0

which is exact for Gamma = 2 and conservative otherwise, given that the
density family has already capped rho(t) <= RhoMax. Both sides are
quadratic polynomials in t, so the crossing nearest tMin is found in
closed form.
*/
func (lm *Limiter) limitSpecificEntropy(b Bounds, q, P [4]float64, tMin, tMax float64) (t float64) {
	var (
		fl = lm.Fluid
		c  = b.SMin * math.Pow(b.RhoMax, fl.Gamma-1.)
	)
	// rho^2 e(t) = (rho + t Prho)(E + t PE) - |m + t Pm|^2 / 2
	a0 := q[0]*q[3] - 0.5*(q[1]*q[1]+q[2]*q[2]) - c*q[0]*q[0]
	a1 := q[0]*P[3] + P[0]*q[3] - (q[1]*P[1] + q[2]*P[2]) - 2.*c*q[0]*P[0]
	a2 := P[0]*P[3] - 0.5*(P[1]*P[1]+P[2]*P[2]) - c*P[0]*P[0]

	psi := func(t float64) float64 { return a0 + t*(a1+t*a2) }

	if psi(tMin) < 0. {
		return tMin
	}
	if psi(tMax) >= 0. {
		return tMax
	}
	t = firstCrossing(a0, a1, a2, tMin, tMax)
	return
}

// firstCrossing returns the smallest root of a0 + a1 t + a2 t^2 inside
// [tMin, tMax], assuming the polynomial is non-negative at tMin and
// negative at tMax. Falls back to tMin when roundoff hides the root.
func firstCrossing(a0, a1, a2, tMin, tMax float64) (t float64) {
	t = tMin
	if math.Abs(a2) < relEps*(math.Abs(a0)+math.Abs(a1)+relEps) {
		if a1 != 0. {
			r := -a0 / a1
			if r >= tMin && r <= tMax {
				t = r
			}
		}
		return
	}
	disc := a1*a1 - 4.*a2*a0
	if disc < 0. {
		return
	}
	// Citardauq form avoids cancellation for the small root.
	sq := math.Sqrt(disc)
	qq := -0.5 * (a1 + math.Copysign(sq, a1))
	r1, r2 := qq/a2, a0/qq
	lo, hi := math.Min(r1, r2), math.Max(r1, r2)
	switch {
	case lo >= tMin && lo <= tMax:
		t = lo
	case hi >= tMin && hi <= tMax:
		t = hi
	}
	return
}

/*
limitEntropyInequality enforces the Harten-type entropy inequality

	psi(t) = rho^2 e(t) - (EntAvg + t*EntFlux)^(Gamma+1) >= 0.

psi is concave along t, so a short quadratic Newton on the bracketing pair
converges fast; the safe left bracket is returned after the budget runs
out, never the unverified right end.
*/
func (lm *Limiter) limitEntropyInequality(b Bounds, q, P [4]float64, tMin, tMax float64) (t float64) {
	var (
		fl  = lm.Fluid
		gp1 = fl.Gamma + 1.
	)
	rho2e := func(t float64) float64 {
		return (q[0]+t*P[0])*(q[3]+t*P[3]) - 0.5*((q[1]+t*P[1])*(q[1]+t*P[1])+(q[2]+t*P[2])*(q[2]+t*P[2]))
	}
	psi := func(t float64) float64 {
		return rho2e(t) - math.Pow(math.Max(b.EntAvg+t*b.EntFlux, 0.), gp1)
	}
	dpsi := func(t float64) float64 {
		d := P[0]*(q[3]+t*P[3]) + (q[0]+t*P[0])*P[3] -
			((q[1]+t*P[1])*P[1] + (q[2]+t*P[2])*P[2])
		return d - gp1*b.EntFlux*math.Pow(math.Max(b.EntAvg+t*b.EntFlux, 0.), gp1-1.)
	}

	if psi(tMin) < 0. {
		return tMin
	}
	if psi(tMax) >= 0. {
		return tMax
	}
	// psi(tl) >= 0 and psi(tr) < 0 hold throughout: a candidate replaces a
	// bracket only after its sign is verified, so the returned tl is always
	// on the admissible side of the root.
	tl, tr := tMin, tMax
	for it := 0; it < lm.MaxIterations; it++ {
		if tr-tl <= newtonEps*(math.Abs(tl)+math.Abs(tr)+newtonEps) {
			break
		}
		// -psi is increasing across the bracket, matching the quadratic
		// Newton step's sign convention.
		ql, qr := quadraticNewtonStep(tl, tr, -psi(tl), -psi(tr), -dpsi(tl), -dpsi(tr))
		if psi(qr) >= 0. {
			tl = qr
			break
		}
		tr = qr
		if psi(ql) >= 0. {
			tl = ql
		}
	}
	t = tl
	return
}

// PairBounds builds the bounds contributed by a single neighbor pair of
// low-order states across direction n: the density and entropy ranges of
// the pair plus the entropy average/flux of the projected states.
func (lm *Limiter) PairBounds(qi, qj [4]float64, nx, ny float64) (b Bounds) {
	var (
		fl  = lm.Fluid
		rdL = fl.ProjectOnRiemann(qi, nx, ny)
		rdR = fl.ProjectOnRiemann(qj, nx, ny)
	)
	b.RhoMin = math.Min(rdL.Rho, rdR.Rho)
	b.RhoMax = math.Max(rdL.Rho, rdR.Rho)

	rhoEL := rdL.P * fl.GM1Inv
	rhoER := rdR.P * fl.GM1Inv
	b.SMin = math.Min(rhoEL*math.Pow(rdL.Rho, -fl.Gamma), rhoER*math.Pow(rdR.Rho, -fl.Gamma))

	salphaL := math.Pow(rhoEL*rdL.Rho, fl.GP1Inv)
	salphaR := math.Pow(rhoER*rdR.Rho, fl.GP1Inv)
	b.EntAvg = 0.5 * (salphaL + salphaR)
	b.EntFlux = 0.5 * (rdL.U*salphaL - rdR.U*salphaR)
	return
}
