package euler

import (
	"math"

	"github.com/lwkobe/ryujin/utils"
)

/*
Fluid carries the ideal-gas equation of state and the derived constants
that appear throughout the wave-speed and entropy formulas. Precomputing
the inverses keeps the per-edge hot path free of divisions by Gamma terms.
*/
type Fluid struct {
	Gamma      float64
	GM1        float64 // Gamma - 1
	GInv       float64 // 1 / Gamma
	GM1Inv     float64 // 1 / (Gamma - 1)
	GP1Inv     float64 // 1 / (Gamma + 1)
	GM1OverGP1 float64 // (Gamma - 1) / (Gamma + 1)
}

func NewFluid(Gamma float64) (fl *Fluid) {
	fl = &Fluid{
		Gamma:      Gamma,
		GM1:        Gamma - 1.,
		GInv:       1. / Gamma,
		GM1Inv:     1. / (Gamma - 1.),
		GP1Inv:     1. / (Gamma + 1.),
		GM1OverGP1: (Gamma - 1.) / (Gamma + 1.),
	}
	return
}

// InternalEnergy is rho*e = E - |m|^2/(2 rho), the non-kinetic part of the
// total energy. Admissible states keep it non-negative.
func (fl *Fluid) InternalEnergy(q [4]float64) (rhoE float64) {
	var (
		oorho = 1. / q[0]
	)
	rhoE = q[3] - 0.5*(q[1]*q[1]+q[2]*q[2])*oorho
	return
}

func (fl *Fluid) Pressure(q [4]float64) (p float64) {
	p = fl.GM1 * fl.InternalEnergy(q)
	return
}

func (fl *Fluid) SoundSpeed(q [4]float64) (a float64) {
	a = math.Sqrt(math.Abs(fl.Gamma * fl.Pressure(q) / q[0]))
	return
}

// SpecificEntropy is s = (rho e) * rho^-Gamma, the quantity whose local
// minimum the limiter protects.
func (fl *Fluid) SpecificEntropy(q [4]float64) (s float64) {
	s = fl.InternalEnergy(q) * math.Pow(q[0], -fl.Gamma)
	return
}

// HartenEntropy is eta = (rho^2 e)^(1/(Gamma+1)), a concave entropy used by
// the entropy-inequality bound and the commutator indicator.
func (fl *Fluid) HartenEntropy(q [4]float64) (eta float64) {
	rho2e := q[0]*q[3] - 0.5*(q[1]*q[1]+q[2]*q[2])
	eta = math.Pow(math.Max(rho2e, 0.), fl.GP1Inv)
	return
}

// HartenEntropyGradient is d(eta)/dU in conserved variables:
//
//	d(rho^2 e)/dU = (E, -m_x, -m_y, rho)
func (fl *Fluid) HartenEntropyGradient(q [4]float64) (deta [4]float64) {
	var (
		rho2e = q[0]*q[3] - 0.5*(q[1]*q[1]+q[2]*q[2])
	)
	if rho2e <= 0. {
		return
	}
	factor := fl.GP1Inv * math.Pow(rho2e, fl.GP1Inv-1.)
	deta[0] = factor * q[3]
	deta[1] = -factor * q[1]
	deta[2] = -factor * q[2]
	deta[3] = factor * q[0]
	return
}

// Flux is the Euler flux in both coordinate directions.
func (fl *Fluid) Flux(q [4]float64) (Fx, Fy [4]float64) {
	var (
		rho, rhoU, rhoV, E = q[0], q[1], q[2], q[3]
		oorho              = 1. / rho
		u                  = rhoU * oorho
		v                  = rhoV * oorho
		p                  = fl.Pressure(q)
	)
	Fx = [4]float64{rhoU, rhoU*u + p, rhoU * v, u * (E + p)}
	Fy = [4]float64{rhoV, rhoV * u, rhoV*v + p, v * (E + p)}
	return
}

// FluxDotC projects the flux onto an edge weight vector, F(q).c.
func (fl *Fluid) FluxDotC(q [4]float64, cx, cy float64) (fc [4]float64) {
	Fx, Fy := fl.Flux(q)
	for n := 0; n < 4; n++ {
		fc[n] = Fx[n]*cx + Fy[n]*cy
	}
	return
}

// ConservedFromPrimitive converts (rho, u, v, p) to the conserved tuple.
func (fl *Fluid) ConservedFromPrimitive(rho, u, v, p float64) (q [4]float64) {
	q[0] = rho
	q[1] = rho * u
	q[2] = rho * v
	q[3] = p*fl.GM1Inv + 0.5*rho*(u*u+v*v)
	return
}

/*
RiemannData is the projection of a conserved state onto the local 1-D
Riemann problem in direction n: density, normal velocity, pressure and
sound speed. The kinetic energy carried by the velocity component
perpendicular to n is removed from the total energy before the pressure is
formed, so the projected state is exactly the 1-D state seen by the
interface.
*/
type RiemannData struct {
	Rho, U, P, A float64
}

func (fl *Fluid) ProjectOnRiemann(q [4]float64, nx, ny float64) (rd RiemannData) {
	var (
		oorho = 1. / q[0]
		mn    = q[1]*nx + q[2]*ny
		px    = q[1] - mn*nx
		py    = q[2] - mn*ny
	)
	E1 := q[3] - 0.5*(px*px+py*py)*oorho
	rd.Rho = q[0]
	rd.U = mn * oorho
	rd.P = fl.GM1 * (E1 - 0.5*mn*mn*oorho)
	rd.A = math.Sqrt(math.Abs(fl.Gamma * rd.P * oorho))
	return
}

/*
Solution is the conserved state over all graph nodes, one slice per
component (rho, rho*u, rho*v, E). A step never mutates a published
Solution in place: the new state is assembled into fresh storage and
swapped in whole once every node has committed.
*/
type Solution struct {
	Q [4][]float64
}

func NewSolution(N int) (sol *Solution) {
	sol = &Solution{}
	for n := 0; n < 4; n++ {
		sol.Q[n] = make([]float64, N)
	}
	return
}

func (sol *Solution) At(i int) (q [4]float64) {
	q[0], q[1], q[2], q[3] = sol.Q[0][i], sol.Q[1][i], sol.Q[2][i], sol.Q[3][i]
	return
}

func (sol *Solution) Set(i int, q [4]float64) {
	sol.Q[0][i], sol.Q[1][i], sol.Q[2][i], sol.Q[3][i] = q[0], q[1], q[2], q[3]
}

// MinDensity is used by the progress report and the debug checks.
func (sol *Solution) MinDensity() (rhoMin float64) {
	rhoMin = math.Inf(1)
	for _, rho := range sol.Q[0] {
		if rho < rhoMin {
			rhoMin = rho
		}
	}
	return
}

// Admissible reports whether every node has positive density and
// non-negative internal energy.
func (sol *Solution) Admissible(fl *Fluid) bool {
	for i := range sol.Q[0] {
		q := sol.At(i)
		if !(q[0] > 0.) || fl.InternalEnergy(q) < -utils.NODETOL {
			return false
		}
	}
	return true
}
