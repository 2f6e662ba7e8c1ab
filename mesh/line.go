package mesh

import (
	"fmt"

	"github.com/lwkobe/ryujin/graph"
	"github.com/lwkobe/ryujin/types"
	"github.com/lwkobe/ryujin/utils"
)

/*
Line builds the connectivity graph of a uniform 1-D interval with K nodes,
the P1 finite element weights written out in closed form: interior edge
weights c_ij = +-1/2 in x, zero diagonal weights except at the two ends,
where c_ii = -+1/2 closes the boundary integral. Lumped masses are the
trapezoid weights h/2 at the ends and h inside, so the total mass is the
interval length.

With periodic set, the two end nodes are glued by a wrap-around edge and
the boundary closure disappears; the graph then has no boundary nodes.
*/
func Line(K int, xMin, xMax float64, periodic bool, bc types.BCFLAG) (g *graph.Graph, err error) {
	if K < 3 {
		return nil, fmt.Errorf("mesh: line needs at least 3 nodes, have %d", K)
	}
	if !(xMax > xMin) {
		return nil, fmt.Errorf("mesh: empty interval [%g,%g]", xMin, xMax)
	}
	var (
		h    = (xMax - xMin) / float64(K-1)
		x    = make([]float64, K)
		y    = make([]float64, K)
		mass = utils.ConstArray(K, h)
	)
	for i := 0; i < K; i++ {
		x[i] = xMin + float64(i)*h
	}

	edges := make([]graph.Edge, 0, K)
	for i := 0; i < K-1; i++ {
		edges = append(edges, graph.Edge{I: int32(i), J: int32(i + 1), Cx: 0.5})
	}

	diagCx := make([]float64, K)
	diagCy := make([]float64, K)
	var bnd []graph.BoundaryNode

	if periodic {
		// Glue the ends: from node 0 the wrap neighbor K-1 lies to the left.
		edges = append(edges, graph.Edge{I: 0, J: int32(K - 1), Cx: -0.5})
	} else {
		mass[0], mass[K-1] = 0.5*h, 0.5*h
		diagCx[0] = -0.5
		diagCx[K-1] = 0.5
		bnd = []graph.BoundaryNode{
			{Node: 0, BC: bc, Nx: -1, Ny: 0},
			{Node: int32(K - 1), BC: bc, Nx: 1, Ny: 0},
		}
	}
	return graph.New(x, y, mass, edges, diagCx, diagCy, bnd)
}
