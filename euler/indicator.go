package euler

import (
	"math"

	"github.com/lwkobe/ryujin/graph"
	"github.com/lwkobe/ryujin/types"
)

/*
Indicator measures, per node, how far the discrete solution is from
satisfying the entropy identity: the commutator between the entropy
gradient applied to the flux divergence and the divergence of the entropy
flux itself. The normalized magnitude alpha in [0,1] scales the high-order
viscosity d^H = alpha * d, so smooth regions get nearly pure Galerkin
antidiffusion while shocks fall back to the low-order scheme.
*/
type Indicator struct {
	Fluid *Fluid
	Kind  types.INDICATOR
}

func NewIndicator(fl *Fluid, kind types.INDICATOR) (id *Indicator) {
	id = &Indicator{
		Fluid: fl,
		Kind:  kind,
	}
	return
}

// Alpha computes the commutator indicator for node i from the current
// (pre-update) state. Reads only U^n, so it runs inside the gather phase.
func (id *Indicator) Alpha(g *graph.Graph, sol *Solution, i int) (alpha float64) {
	var (
		fl    = id.Fluid
		qi    = sol.At(i)
		detaI = fl.HartenEntropyGradient(qi)
		num   float64
		den   float64
	)
	if id.Kind == types.IndicatorNone {
		return 0.
	}
	for s := g.RowPtr[i]; s < g.RowPtr[i+1]; s++ {
		j := int(g.Col[s])
		cx, cy := g.Cij(s)
		qj := sol.At(j)
		fc := fl.FluxDotC(qj, cx, cy)

		left := detaI[0]*fc[0] + detaI[1]*fc[1] + detaI[2]*fc[2] + detaI[3]*fc[3]

		// Entropy flux q = u * eta projected onto c_ij
		oorho := 1. / qj[0]
		etaJ := fl.HartenEntropy(qj)
		right := etaJ * oorho * (qj[1]*cx + qj[2]*cy)

		num += left - right
		den += math.Abs(left) + math.Abs(right)
	}
	alpha = math.Abs(num) / math.Max(den, math.SmallestNonzeroFloat64)
	if alpha > 1. {
		alpha = 1.
	}
	return
}
