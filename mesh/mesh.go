package mesh

import (
	"fmt"

	"github.com/lwkobe/ryujin/InputParameters"
	"github.com/lwkobe/ryujin/graph"
	"github.com/lwkobe/ryujin/types"
)

// FromParameters dispatches to the reference mesh producers from the Mesh
// section of the input file. The "walls" entry of the BCs map selects the
// treatment of every non-periodic boundary node.
func FromParameters(mp InputParameters.MeshParameters) (g *graph.Graph, err error) {
	bc := types.BC_None
	if token, ok := mp.BCs["walls"]; ok {
		bc = types.NewBCTAG(token).GetFLAG()
	}
	switch mp.Kind {
	case "line", "":
		g, err = Line(mp.K, mp.XMin, mp.XMax, mp.Periodic, bc)
	case "rectangle":
		if bc == types.BC_None {
			bc = types.BC_Slip
		}
		ny := mp.NY
		if ny == 0 {
			ny = mp.K
		}
		height := mp.Height
		if height == 0. {
			height = mp.XMax - mp.XMin
		}
		g, err = Rectangle(mp.K, ny, mp.XMax-mp.XMin, height, bc)
	default:
		err = fmt.Errorf("mesh: unknown kind %q", mp.Kind)
	}
	return
}
