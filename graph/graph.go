package graph

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/lwkobe/ryujin/types"
)

/*
Graph is the connectivity arena the solver walks every step. It is the
adjacency structure of a symmetric sparse matrix in CSR form: row i spans
RowPtr[i]:RowPtr[i+1] of Col, columns are sorted ascending and always include
the diagonal (self loop). Built once per mesh by an assembly collaborator and
read-only afterwards.

The antisymmetric edge weights c_ij = -c_ji are held once per undirected edge
and reconstructed on read through a per-slot sign, so the two mirrored copies
can never diverge. Diagonal weights c_ii (the boundary closure) have their own
entries in the same value arrays with sign +1.
*/
type Graph struct {
	N      int
	RowPtr []int32
	Col    []int32

	// Per-slot indirection into the undirected value arrays
	EdgeID []int32
	Sign   []float64 // +1 for the stored direction (lower->higher index), -1 for the mirror
	Mirror []int32   // slot index of the transposed entry, self for diagonals
	Diag   []int32   // slot index of the self loop per row

	// One entry per undirected edge plus one per node (diagonals appended last)
	EdgeCX   []float64
	EdgeCY   []float64
	EdgeNorm []float64

	M    []float64 // lumped masses, all positive
	X, Y []float64 // node positions

	Bnd []BoundaryNode
}

// BoundaryNode carries the post-step treatment metadata for one node.
type BoundaryNode struct {
	Node   int32
	BC     types.BCFLAG
	Nx, Ny float64    // outward unit normal
	Value  [4]float64 // prescribed conserved state for BC_Dirichlet
}

// Edge is one undirected input edge with its weight in the I->J direction,
// I < J required.
type Edge struct {
	I, J   int32
	Cx, Cy float64
}

/*
Exchanger fills ghost copies of neighbor values owned by other ranks. The
solver calls Sync after the low-order update and after the final apply, the
only two cross-rank synchronization points per step. The in-process solver
runs single rank and uses NoopExchanger.
*/
type Exchanger interface {
	Sync(fields ...[]float64)
}

type NoopExchanger struct{}

func (NoopExchanger) Sync(fields ...[]float64) {}

/*
New builds the arena from assembly products. Validation is eager: a zero-norm
off-diagonal weight, a non-positive mass, a duplicate edge or an out-of-range
index is a configuration error reported before any step can run.
*/
func New(x, y, mass []float64, edges []Edge, diagCx, diagCy []float64, bnd []BoundaryNode) (g *Graph, err error) {
	var (
		n = len(mass)
	)
	if n == 0 {
		return nil, fmt.Errorf("graph: empty node set")
	}
	if len(x) != n || len(y) != n || len(diagCx) != n || len(diagCy) != n {
		return nil, fmt.Errorf("graph: node array lengths disagree with mass length %d", n)
	}
	for i, m := range mass {
		if !(m > 0) {
			return nil, fmt.Errorf("graph: non-positive lumped mass %g at node %d", m, i)
		}
	}
	// Neighbor lists, one undirected edge id per off-diagonal pair
	adj := make([]map[int32]int32, n) // j -> edge id, per node
	for i := range adj {
		adj[i] = make(map[int32]int32)
	}
	for eid, e := range edges {
		if e.I >= e.J {
			return nil, fmt.Errorf("graph: edge %d not in lower->higher order: (%d,%d)", eid, e.I, e.J)
		}
		if int(e.J) >= n || e.I < 0 {
			return nil, fmt.Errorf("graph: edge %d references node out of range: (%d,%d)", eid, e.I, e.J)
		}
		if _, dup := adj[e.I][e.J]; dup {
			return nil, fmt.Errorf("graph: duplicate edge (%d,%d)", e.I, e.J)
		}
		nrm := math.Hypot(e.Cx, e.Cy)
		if !(nrm > 0) || math.IsInf(nrm, 1) || math.IsNaN(nrm) {
			return nil, fmt.Errorf("graph: edge (%d,%d) has invalid weight norm %g", e.I, e.J, nrm)
		}
		adj[e.I][e.J] = int32(eid)
		adj[e.J][e.I] = int32(eid)
	}

	g = &Graph{
		N:        n,
		RowPtr:   make([]int32, n+1),
		M:        mass,
		X:        x,
		Y:        y,
		EdgeCX:   make([]float64, len(edges)+n),
		EdgeCY:   make([]float64, len(edges)+n),
		EdgeNorm: make([]float64, len(edges)+n),
		Diag:     make([]int32, n),
		Bnd:      bnd,
	}
	for eid, e := range edges {
		g.EdgeCX[eid] = e.Cx
		g.EdgeCY[eid] = e.Cy
		g.EdgeNorm[eid] = math.Hypot(e.Cx, e.Cy)
	}
	for i := 0; i < n; i++ { // diagonal records appended after the undirected edges
		id := len(edges) + i
		g.EdgeCX[id] = diagCx[i]
		g.EdgeCY[id] = diagCy[i]
		g.EdgeNorm[id] = math.Hypot(diagCx[i], diagCy[i])
	}

	nnz := len(edges)*2 + n
	g.Col = make([]int32, nnz)
	g.EdgeID = make([]int32, nnz)
	g.Sign = make([]float64, nnz)
	g.Mirror = make([]int32, nnz)

	slotOf := make([]map[int32]int32, n) // j -> slot, filled as rows are laid out
	var slot int32
	for i := 0; i < n; i++ {
		g.RowPtr[i] = slot
		cols := make([]int, 0, len(adj[i])+1)
		cols = append(cols, i)
		for j := range adj[i] {
			cols = append(cols, int(j))
		}
		sort.Ints(cols)
		slotOf[i] = make(map[int32]int32, len(cols))
		for _, jj := range cols {
			j := int32(jj)
			g.Col[slot] = j
			slotOf[i][j] = slot
			if jj == i {
				g.EdgeID[slot] = int32(len(edges) + i)
				g.Sign[slot] = 1
				g.Diag[i] = slot
			} else {
				g.EdgeID[slot] = adj[i][j]
				if int32(i) < j {
					g.Sign[slot] = 1
				} else {
					g.Sign[slot] = -1
				}
			}
			slot++
		}
	}
	g.RowPtr[n] = slot

	// Mirror slots: the transposed entry of every off-diagonal slot, self for diagonals
	for i := 0; i < n; i++ {
		for s := g.RowPtr[i]; s < g.RowPtr[i+1]; s++ {
			j := g.Col[s]
			if j == int32(i) {
				g.Mirror[s] = s
				continue
			}
			ms, ok := slotOf[j][int32(i)]
			if !ok {
				return nil, fmt.Errorf("graph: missing mirror for edge (%d,%d)", i, j)
			}
			g.Mirror[s] = ms
		}
	}

	for _, b := range bnd {
		if int(b.Node) >= n || b.Node < 0 {
			return nil, fmt.Errorf("graph: boundary node %d out of range", b.Node)
		}
		if b.BC == types.BC_Slip || b.BC == types.BC_Dirichlet {
			if nn := math.Hypot(b.Nx, b.Ny); math.Abs(nn-1) > 1.e-10 {
				return nil, fmt.Errorf("graph: boundary node %d normal is not unit length (%g)", b.Node, nn)
			}
		}
	}
	return g, nil
}

// Cij reconstructs the directed weight for a slot.
func (g *Graph) Cij(slot int32) (cx, cy float64) {
	id := g.EdgeID[slot]
	cx = g.Sign[slot] * g.EdgeCX[id]
	cy = g.Sign[slot] * g.EdgeCY[id]
	return
}

// Norm is the weight magnitude for a slot, shared by both directions.
func (g *Graph) Norm(slot int32) float64 { return g.EdgeNorm[g.EdgeID[slot]] }

// Degree is the neighbor count of node i excluding the self loop.
func (g *Graph) Degree(i int) int { return int(g.RowPtr[i+1]-g.RowPtr[i]) - 1 }

// Nnz is the number of stored slots (directed edges plus diagonals).
func (g *Graph) Nnz() int { return len(g.Col) }

// MeasureOfOmega is the total lumped mass, the measure of the computational domain.
func (g *Graph) MeasureOfOmega() float64 { return floats.Sum(g.M) }
