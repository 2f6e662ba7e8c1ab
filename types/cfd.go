package types

import "strings"

//go:generate stringer -type=BCFLAG

// BCFLAG selects the post-step treatment applied to a boundary node.
type BCFLAG uint8

const (
	BC_None BCFLAG = iota // do-nothing, the interior closure term is the whole treatment
	BC_Periodic           // glued to a partner node during graph construction
	BC_Slip               // normal momentum removed after each step
	BC_Dirichlet          // state reset to a prescribed value after each step
)

var BCNameMap = map[string]BCFLAG{
	"none":       BC_None,
	"do-nothing": BC_None,
	"periodic":   BC_Periodic,
	"slip":       BC_Slip,
	"wall":       BC_Slip,
	"dirichlet":  BC_Dirichlet,
	"prescribed": BC_Dirichlet,
}

var bcFlagNames = []string{"do-nothing", "periodic", "slip", "dirichlet"}

func (bf BCFLAG) String() string {
	if int(bf) >= len(bcFlagNames) {
		return "unknown"
	}
	return bcFlagNames[bf]
}

/*
BCTAG is a boundary condition name token from the input file, optionally
suffixed with a label to distinguish multiple boundaries of the same kind,
eg: "slip-top", "dirichlet-inlet", "periodic-1"
*/
type BCTAG string

func NewBCTAG(token string) (bt BCTAG) {
	bt = BCTAG(strings.ToLower(strings.TrimSpace(token)))
	return
}

func (bt BCTAG) GetFLAG() (bf BCFLAG) {
	var (
		ok   bool
		base = string(bt)
	)
	if ind := strings.Index(base, "-"); ind > 0 {
		base = base[:ind]
	}
	if bf, ok = BCNameMap[base]; !ok {
		bf = BC_None
	}
	return
}

func (bt BCTAG) GetLabel() (label string) {
	if ind := strings.Index(string(bt), "-"); ind > 0 {
		label = string(bt)[ind+1:]
	}
	return
}
