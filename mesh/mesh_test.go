package mesh

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lwkobe/ryujin/InputParameters"
	"github.com/lwkobe/ryujin/types"
)

func TestLine(t *testing.T) {
	{ // Closed-form P1 weights on the interval
		K := 11
		g, err := Line(K, 0., 1., false, types.BC_Slip)
		assert.Nil(t, err)
		assert.Equal(t, K, g.N)
		assert.True(t, near(1., g.MeasureOfOmega(), 1.e-12))

		// trapezoid masses: h/2 at the ends, h inside
		h := 1. / float64(K-1)
		assert.True(t, near(0.5*h, g.M[0], 1.e-12))
		assert.True(t, near(h, g.M[K/2], 1.e-12))

		// interior degree 2, end degree 1
		assert.Equal(t, 1, g.Degree(0))
		assert.Equal(t, 2, g.Degree(K/2))
		assert.Equal(t, 1, g.Degree(K-1))

		// row sums of the directed weights vanish, diagonal closure included
		for i := 0; i < g.N; i++ {
			var sumX, sumY float64
			for s := g.RowPtr[i]; s < g.RowPtr[i+1]; s++ {
				cx, cy := g.Cij(s)
				sumX += cx
				sumY += cy
			}
			assert.True(t, near(0., sumX, 1.e-14))
			assert.True(t, near(0., sumY, 1.e-14))
		}

		// two boundary nodes with opposite unit normals
		assert.Equal(t, 2, len(g.Bnd))
		assert.True(t, near(-1., g.Bnd[0].Nx, 1.e-14))
		assert.True(t, near(1., g.Bnd[1].Nx, 1.e-14))
	}
	{ // Periodic gluing removes the boundary entirely
		K := 11
		g, err := Line(K, 0., 1., true, types.BC_None)
		assert.Nil(t, err)
		assert.Equal(t, 0, len(g.Bnd))
		for i := 0; i < g.N; i++ {
			assert.Equal(t, 2, g.Degree(i))
		}
		assert.True(t, near(1.+1./float64(K-1), g.MeasureOfOmega(), 1.e-12))
	}
	{ // Degenerate configurations are rejected eagerly
		_, err := Line(2, 0., 1., false, types.BC_None)
		assert.NotNil(t, err)
		_, err = Line(10, 1., 1., false, types.BC_None)
		assert.NotNil(t, err)
	}
}

func TestRectangle(t *testing.T) {
	nx, ny := 6, 6
	w, h := 1., 1.
	g, err := Rectangle(nx, ny, w, h, types.BC_Slip)
	assert.Nil(t, err)
	assert.Equal(t, nx*ny, g.N)
	{ // Lumped masses tile the domain measure
		assert.True(t, near(w*h, g.MeasureOfOmega(), 1.e-10))
	}
	{ // The stored weights satisfy the mirror invariant c_ij = -c_ji exactly
		for i := 0; i < g.N; i++ {
			for s := g.RowPtr[i]; s < g.RowPtr[i+1]; s++ {
				if int(g.Col[s]) == i {
					continue
				}
				cx, cy := g.Cij(s)
				mx, my := g.Cij(g.Mirror[s])
				assert.True(t, cx == -mx && cy == -my)
				assert.True(t, near(g.Norm(s), g.Norm(g.Mirror[s]), 1.e-15))
			}
		}
	}
	{ // Row sums vanish, so a constant flux field telescopes to zero
		for i := 0; i < g.N; i++ {
			var sumX, sumY float64
			for s := g.RowPtr[i]; s < g.RowPtr[i+1]; s++ {
				cx, cy := g.Cij(s)
				sumX += cx
				sumY += cy
			}
			assert.True(t, near(0., sumX, 1.e-10))
			assert.True(t, near(0., sumY, 1.e-10))
		}
	}
	{ // Perimeter nodes carry unit normals, corners the diagonal one
		assert.Equal(t, 2*nx+2*ny-4, len(g.Bnd))
		for _, b := range g.Bnd {
			assert.True(t, near(1., math.Hypot(b.Nx, b.Ny), 1.e-12))
		}
		var corner bool
		for _, b := range g.Bnd {
			if g.X[b.Node] < 1.e-12 && g.Y[b.Node] < 1.e-12 {
				corner = true
				assert.True(t, near(-math.Sqrt2/2., b.Nx, 1.e-12))
				assert.True(t, near(-math.Sqrt2/2., b.Ny, 1.e-12))
			}
		}
		assert.True(t, corner)
	}
}

func TestFromParameters(t *testing.T) {
	{ // The line is the default mesh kind
		g, err := FromParameters(InputParameters.MeshParameters{K: 16, XMax: 2.})
		assert.Nil(t, err)
		assert.Equal(t, 16, g.N)
	}
	{ // Rectangle defaults: square cross-section, slip walls
		g, err := FromParameters(InputParameters.MeshParameters{Kind: "rectangle", K: 5, XMax: 1.})
		assert.Nil(t, err)
		assert.Equal(t, 25, g.N)
		assert.True(t, len(g.Bnd) > 0)
		for _, b := range g.Bnd {
			assert.Equal(t, types.BC_Slip, b.BC)
		}
	}
	{ // Unknown kinds are rejected
		_, err := FromParameters(InputParameters.MeshParameters{Kind: "torus", K: 16})
		assert.NotNil(t, err)
	}
}

func nearVec(a, b []float64, tol float64) (l bool) {
	for i, val := range a {
		if !near(b[i], val, tol) {
			fmt.Printf("Diff = %v, Left[%d] = %v, Right[%d] = %v\n", math.Abs(val-b[i]), i, val, i, b[i])
			return false
		}
	}
	return true
}

func near(a, b float64, tolI ...float64) (l bool) {
	var (
		tol float64
	)
	if len(tolI) == 0 {
		tol = 1.e-08
	} else {
		tol = tolI[0]
	}
	bound := math.Max(tol, tol*math.Abs(a))
	if math.Abs(a-b) <= bound {
		l = true
	}
	return
}
