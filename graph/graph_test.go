package graph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lwkobe/ryujin/types"
)

func TestGraph(t *testing.T) {
	// 3-node chain with a diagonal closure at both ends
	var (
		x      = []float64{0., 1., 2.}
		y      = []float64{0., 0., 0.}
		mass   = []float64{0.5, 1., 0.5}
		edges  = []Edge{{I: 0, J: 1, Cx: 0.5}, {I: 1, J: 2, Cx: 0.5}}
		diagCx = []float64{-0.5, 0., 0.5}
		diagCy = []float64{0., 0., 0.}
		bnd    = []BoundaryNode{
			{Node: 0, BC: types.BC_Slip, Nx: -1},
			{Node: 2, BC: types.BC_Slip, Nx: 1},
		}
	)
	g, err := New(x, y, mass, edges, diagCx, diagCy, bnd)
	assert.Nil(t, err)
	{ // Arena layout: every row holds its diagonal, columns sorted
		assert.Equal(t, 3, g.N)
		assert.Equal(t, 2*2+3, g.Nnz())
		assert.Equal(t, []int32{0, 2, 5, 7}, g.RowPtr)
		assert.Equal(t, []int32{0, 1, 0, 1, 2, 1, 2}, g.Col)
		assert.Equal(t, 1, g.Degree(0))
		assert.Equal(t, 2, g.Degree(1))
	}
	{ // Sign-on-read keeps the two directions of an edge exact negatives
		for i := 0; i < g.N; i++ {
			for s := g.RowPtr[i]; s < g.RowPtr[i+1]; s++ {
				if int(g.Col[s]) == i {
					assert.Equal(t, s, g.Mirror[s])
					assert.Equal(t, s, g.Diag[i])
					continue
				}
				cx, cy := g.Cij(s)
				mx, my := g.Cij(g.Mirror[s])
				assert.True(t, cx == -mx && cy == -my)
				assert.Equal(t, s, g.Mirror[g.Mirror[s]])
			}
		}
	}
	{ // Directed weights read out of row 1: -0.5 toward node 0, +0.5 toward node 2
		cx, _ := g.Cij(g.RowPtr[1])
		assert.True(t, math.Abs(cx+0.5) < 1.e-15)
		cx, _ = g.Cij(g.RowPtr[1] + 2)
		assert.True(t, math.Abs(cx-0.5) < 1.e-15)
	}
	{ // Diagonal closure carries sign +1
		cx, _ := g.Cij(g.Diag[0])
		assert.True(t, math.Abs(cx+0.5) < 1.e-15)
		cx, _ = g.Cij(g.Diag[2])
		assert.True(t, math.Abs(cx-0.5) < 1.e-15)
	}
	assert.True(t, math.Abs(g.MeasureOfOmega()-2.) < 1.e-15)
}

func TestGraphValidation(t *testing.T) {
	var (
		x    = []float64{0., 1.}
		y    = []float64{0., 0.}
		mass = []float64{1., 1.}
		diag = []float64{0., 0.}
	)
	{ // Edge order must be lower -> higher
		_, err := New(x, y, mass, []Edge{{I: 1, J: 0, Cx: 0.5}}, diag, diag, nil)
		assert.NotNil(t, err)
	}
	{ // Duplicate edges are a configuration error
		_, err := New(x, y, mass, []Edge{{I: 0, J: 1, Cx: 0.5}, {I: 0, J: 1, Cx: 0.25}}, diag, diag, nil)
		assert.NotNil(t, err)
	}
	{ // Zero-norm weights cannot produce a direction
		_, err := New(x, y, mass, []Edge{{I: 0, J: 1}}, diag, diag, nil)
		assert.NotNil(t, err)
	}
	{ // Masses must be positive
		_, err := New(x, y, []float64{1., 0.}, []Edge{{I: 0, J: 1, Cx: 0.5}}, diag, diag, nil)
		assert.NotNil(t, err)
	}
	{ // Slip boundary normals must be unit length
		bnd := []BoundaryNode{{Node: 0, BC: types.BC_Slip, Nx: 2.}}
		_, err := New(x, y, mass, []Edge{{I: 0, J: 1, Cx: 0.5}}, diag, diag, bnd)
		assert.NotNil(t, err)
	}
	{ // Out-of-range references are caught
		_, err := New(x, y, mass, []Edge{{I: 0, J: 5, Cx: 0.5}}, diag, diag, nil)
		assert.NotNil(t, err)
	}
}
