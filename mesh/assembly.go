package mesh

import (
	"fmt"
	"math"

	"github.com/pradeep-pyro/triangle"
	"gonum.org/v1/gonum/mat"

	"github.com/lwkobe/ryujin/graph"
	"github.com/lwkobe/ryujin/types"
	"github.com/lwkobe/ryujin/utils"
)

/*
Rectangle builds the connectivity graph of a w x h rectangle from a
structured nx x ny point cloud triangulated by constrained Delaunay, then
runs the P1 assembly: per-triangle basis gradients from a 3x3 solve,
c_ij = integral(phi_i grad phi_j) accumulated edge by edge, lumped masses
|T|/3 per incident vertex.

The raw c_ij of a P1 assembly is antisymmetric only in the interior; on
the boundary a surface term remains. The graph stores a single directed
value per edge with a sign convention, so the symmetric remainder of every
pair is folded into the diagonal closure, which keeps row sums exactly
zero and the off-diagonal mirror invariant exact.
*/
func Rectangle(nx, ny int, w, h float64, bc types.BCFLAG) (g *graph.Graph, err error) {
	if nx < 2 || ny < 2 {
		return nil, fmt.Errorf("mesh: rectangle needs at least 2x2 nodes, have %dx%d", nx, ny)
	}
	if !(w > 0.) || !(h > 0.) {
		return nil, fmt.Errorf("mesh: degenerate rectangle %g x %g", w, h)
	}

	pts := make([][2]float64, 0, nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			pts = append(pts, [2]float64{
				w * float64(i) / float64(nx-1),
				h * float64(j) / float64(ny-1),
			})
		}
	}
	segs := perimeterSegments(nx, ny)
	// The triangulator requires at least one hole seed; a seed outside the
	// perimeter marks only the exterior region for removal.
	exterior := [][2]float64{{-1.e9, -1.e9}}
	verts, faces := triangle.ConstrainedDelaunay(pts, segs, exterior)

	n := len(verts)
	x := make([]float64, n)
	y := make([]float64, n)
	for i, v := range verts {
		x[i], y[i] = v[0], v[1]
	}
	return Assemble(x, y, faces, w, h, bc)
}

// perimeterSegments walks the rectangle boundary counterclockwise.
func perimeterSegments(nx, ny int) (segs [][2]int32) {
	idx := func(i, j int) int32 { return int32(j*nx + i) }
	for i := 0; i < nx-1; i++ {
		segs = append(segs, [2]int32{idx(i, 0), idx(i+1, 0)})
	}
	for j := 0; j < ny-1; j++ {
		segs = append(segs, [2]int32{idx(nx-1, j), idx(nx-1, j+1)})
	}
	for i := nx - 1; i > 0; i-- {
		segs = append(segs, [2]int32{idx(i, ny-1), idx(i-1, ny-1)})
	}
	for j := ny - 1; j > 0; j-- {
		segs = append(segs, [2]int32{idx(0, j), idx(0, j-1)})
	}
	return
}

/*
Assemble runs the P1 lumped-mass and edge-weight assembly over an
arbitrary triangulation and validates the products before handing them to
graph construction: positive masses, vanishing row sums, and total mass
equal to the domain measure.
*/
func Assemble(x, y []float64, faces [][3]int32, w, h float64, bc types.BCFLAG) (g *graph.Graph, err error) {
	var (
		n     = len(x)
		cx    = utils.NewDOK(n, n)
		cy    = utils.NewDOK(n, n)
		mass  = make([]float64, n)
		share = make(map[types.EdgeKey]int)
	)
	for _, f := range faces {
		var (
			a, b, c = int(f[0]), int(f[1]), int(f[2])
			gradX   [3]float64
			gradY   [3]float64
		)
		area := 0.5 * math.Abs((x[b]-x[a])*(y[c]-y[a])-(x[c]-x[a])*(y[b]-y[a]))
		if !(area > 0.) {
			return nil, fmt.Errorf("mesh: degenerate triangle (%d,%d,%d)", a, b, c)
		}
		for _, pair := range [3][2]int{{a, b}, {b, c}, {c, a}} {
			key := types.NewEdgeKey(pair)
			share[key]++
			if share[key] > 2 {
				return nil, fmt.Errorf("mesh: edge (%d,%d) shared by more than two triangles", pair[0], pair[1])
			}
		}
		// Basis gradients: solve [1 x y] coefficients for each vertex basis
		A := mat.NewDense(3, 3, []float64{
			1, x[a], y[a],
			1, x[b], y[b],
			1, x[c], y[c],
		})
		var coef mat.Dense
		if err = coef.Solve(A, eye3()); err != nil {
			return nil, fmt.Errorf("mesh: singular triangle (%d,%d,%d): %w", a, b, c, err)
		}
		for v := 0; v < 3; v++ {
			gradX[v] = coef.At(1, v)
			gradY[v] = coef.At(2, v)
		}
		verts := [3]int{a, b, c}
		for i := 0; i < 3; i++ {
			mass[verts[i]] += area / 3.
			for j := 0; j < 3; j++ {
				// integral(phi_i grad phi_j) over T = |T|/3 * grad phi_j
				cx.Accumulate(verts[i], verts[j], area/3.*gradX[j])
				cy.Accumulate(verts[i], verts[j], area/3.*gradY[j])
			}
		}
	}

	csrX := cx.ToCSR()
	csrY := cy.ToCSR()

	// Antisymmetrize the off-diagonal entries; fold the symmetric boundary
	// remainder of each pair into the two diagonal closures.
	var (
		edges  []graph.Edge
		diagCx = make([]float64, n)
		diagCy = make([]float64, n)
	)
	for i := 0; i < n; i++ {
		diagCx[i] = csrX.At(i, i)
		diagCy[i] = csrY.At(i, i)
	}
	csrX.DoNonZero(func(i, j int, v float64) {
		if i >= j {
			return
		}
		ax := 0.5 * (csrX.At(i, j) - csrX.At(j, i))
		ay := 0.5 * (csrY.At(i, j) - csrY.At(j, i))
		sx := 0.5 * (csrX.At(i, j) + csrX.At(j, i))
		sy := 0.5 * (csrY.At(i, j) + csrY.At(j, i))
		diagCx[i] += sx
		diagCy[i] += sy
		diagCx[j] += sx
		diagCy[j] += sy
		if math.Hypot(ax, ay) > utils.NODETOL {
			edges = append(edges, graph.Edge{I: int32(i), J: int32(j), Cx: ax, Cy: ay})
		}
	})

	if err = validateAssembly(mass, edges, diagCx, diagCy, n, w*h); err != nil {
		return nil, err
	}
	bnd := boundaryNodes(x, y, w, h, bc)
	return graph.New(x, y, mass, edges, diagCx, diagCy, bnd)
}

func eye3() *mat.Dense {
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
}

func validateAssembly(mass []float64, edges []graph.Edge, diagCx, diagCy []float64, n int, measure float64) error {
	var total float64
	for i, m := range mass {
		if !(m > 0.) {
			return fmt.Errorf("mesh: non-positive lumped mass %g at node %d", m, i)
		}
		total += m
	}
	if math.Abs(total-measure) > 1.e-8*measure {
		return fmt.Errorf("mesh: total mass %g disagrees with domain measure %g", total, measure)
	}
	rowX := make([]float64, n)
	rowY := make([]float64, n)
	copy(rowX, diagCx)
	copy(rowY, diagCy)
	for _, e := range edges {
		rowX[e.I] += e.Cx
		rowY[e.I] += e.Cy
		rowX[e.J] -= e.Cx
		rowY[e.J] -= e.Cy
	}
	for i := 0; i < n; i++ {
		if math.Abs(rowX[i]) > 1.e-10 || math.Abs(rowY[i]) > 1.e-10 {
			return fmt.Errorf("mesh: row %d weight sum does not vanish: (%g,%g)", i, rowX[i], rowY[i])
		}
	}
	return nil
}

// boundaryNodes classifies nodes on the rectangle edges by coordinates;
// corners get the normalized diagonal normal.
func boundaryNodes(x, y []float64, w, h float64, bc types.BCFLAG) (bnd []graph.BoundaryNode) {
	for i := range x {
		var nx, ny float64
		if x[i] < utils.NODETOL {
			nx -= 1.
		}
		if x[i] > w-utils.NODETOL {
			nx += 1.
		}
		if y[i] < utils.NODETOL {
			ny -= 1.
		}
		if y[i] > h-utils.NODETOL {
			ny += 1.
		}
		if nx == 0. && ny == 0. {
			continue
		}
		norm := math.Hypot(nx, ny)
		bnd = append(bnd, graph.BoundaryNode{
			Node: int32(i),
			BC:   bc,
			Nx:   nx / norm,
			Ny:   ny / norm,
		})
	}
	return
}
