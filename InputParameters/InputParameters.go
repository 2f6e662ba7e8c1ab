package InputParameters

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ghodss/yaml"

	"github.com/lwkobe/ryujin/types"
)

// Parameters obtained from the YAML input file
type Parameters struct {
	Title            string         `yaml:"Title"`
	CFL              float64        `yaml:"CFL"`
	FinalTime        float64        `yaml:"FinalTime"`
	Gamma            float64        `yaml:"Gamma"`
	InitType         string         `yaml:"InitType"`
	Limiter          string         `yaml:"Limiter"`
	Indicator        string         `yaml:"Indicator"`
	NewtonIterations int            `yaml:"NewtonIterations"`
	GreedyDij        bool           `yaml:"GreedyDij"`
	GreedyThreshold  float64        `yaml:"GreedyThreshold"`
	ParallelDegree   int            `yaml:"ParallelDegree"`
	MaxIterations    int            `yaml:"MaxIterations"`
	CheckBounds      bool           `yaml:"CheckBounds"`
	InitialDirection [2]float64     `yaml:"InitialDirection"`
	InitialPosition  [2]float64     `yaml:"InitialPosition"`
	InitialState     [3]float64     `yaml:"InitialState"`  // rho, u, p
	ContrastState    [3]float64     `yaml:"ContrastState"` // rho, u, p of the far side
	MachNumber       float64        `yaml:"MachNumber"`
	VortexBeta       float64        `yaml:"VortexBeta"`
	Perturbation     float64        `yaml:"Perturbation"`
	Mesh             MeshParameters `yaml:"Mesh"`
}

// MeshParameters describe the built-in reference mesh producers; a driver
// wired to its own assembly collaborator ignores this section.
type MeshParameters struct {
	Kind     string            `yaml:"Kind"` // line or rectangle
	K        int               `yaml:"K"`    // node count along x
	NY       int               `yaml:"NY"`   // node count along y (rectangle)
	XMin     float64           `yaml:"XMin"`
	XMax     float64           `yaml:"XMax"`
	Height   float64           `yaml:"Height"`
	Periodic bool              `yaml:"Periodic"`
	BCs      map[string]string `yaml:"BCs"` // boundary label -> kind token
}

// DefaultParameters is the Sod shock tube on a unit line mesh.
func DefaultParameters() (ip *Parameters) {
	ip = &Parameters{
		Title:            "Sod Shock Tube",
		CFL:              0.5,
		FinalTime:        0.2,
		Gamma:            1.4,
		InitType:         "sod",
		Limiter:          "specific-entropy",
		Indicator:        "entropy",
		NewtonIterations: 2,
		GreedyThreshold:  0.95,
		ParallelDegree:   4,
		InitialDirection: [2]float64{1, 0},
		InitialPosition:  [2]float64{0.5, 0},
		InitialState:     [3]float64{1.4, 0, 1},
		MachNumber:       2.,
		VortexBeta:       5.,
		Mesh: MeshParameters{
			Kind: "line",
			K:    400,
			XMin: 0.,
			XMax: 1.,
		},
	}
	return
}

func (ip *Parameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *Parameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("%8.5f\t\t= CFL\n", ip.CFL)
	fmt.Printf("%8.5f\t\t= FinalTime\n", ip.FinalTime)
	fmt.Printf("%8.5f\t\t= Gamma\n", ip.Gamma)
	fmt.Printf("[%s]\t\t\t= InitType\n", ip.InitType)
	fmt.Printf("[%s]\t\t= Limiter\n", ip.Limiter)
	fmt.Printf("[%s]\t\t\t= Indicator\n", ip.Indicator)
	fmt.Printf("[%d]\t\t\t\t= Newton Iterations\n", ip.NewtonIterations)
	fmt.Printf("[%v]\t\t\t= Greedy Viscosity\n", ip.GreedyDij)
	fmt.Printf("[%s %d x %d]\t\t= Mesh\n", ip.Mesh.Kind, ip.Mesh.K, ip.Mesh.NY)
	keys := make([]string, len(ip.Mesh.BCs))
	i := 0
	for k := range ip.Mesh.BCs {
		keys[i] = k
		i++
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("BCs[%s] = %v\n", key, ip.Mesh.BCs[key])
	}
}

// Validate is the eager configuration check: every fatal setup error is
// reported here, before any step executes.
func (ip *Parameters) Validate() error {
	if !(ip.CFL > 0.) {
		return fmt.Errorf("CFL must be positive, have %g", ip.CFL)
	}
	if !(ip.Gamma > 1.) {
		return fmt.Errorf("Gamma must exceed 1, have %g", ip.Gamma)
	}
	if !(ip.FinalTime >= 0.) {
		return fmt.Errorf("FinalTime must be non-negative, have %g", ip.FinalTime)
	}
	if ip.NewtonIterations < 0 {
		return fmt.Errorf("NewtonIterations must be non-negative, have %d", ip.NewtonIterations)
	}
	if _, ok := types.CaseNameMap[strings.ToLower(ip.InitType)]; !ok {
		return fmt.Errorf("unknown InitType %q", ip.InitType)
	}
	if _, ok := types.LimiterNameMap[strings.ToLower(ip.Limiter)]; !ok {
		return fmt.Errorf("unknown Limiter %q", ip.Limiter)
	}
	if _, ok := types.IndicatorNameMap[strings.ToLower(ip.Indicator)]; !ok {
		return fmt.Errorf("unknown Indicator %q", ip.Indicator)
	}
	if math.Hypot(ip.InitialDirection[0], ip.InitialDirection[1]) == 0. {
		return fmt.Errorf("InitialDirection is the zero vector")
	}
	if strings.ToLower(ip.InitType) == "contrast" {
		if !(ip.ContrastState[0] > 0.) || !(ip.ContrastState[2] > 0.) {
			return fmt.Errorf("ContrastState needs positive density and pressure, have %v", ip.ContrastState)
		}
	}
	if ip.GreedyDij && !(ip.GreedyThreshold > 0. && ip.GreedyThreshold <= 1.) {
		return fmt.Errorf("GreedyThreshold must lie in (0,1], have %g", ip.GreedyThreshold)
	}
	switch ip.Mesh.Kind {
	case "line", "rectangle", "":
	default:
		return fmt.Errorf("unknown mesh kind %q", ip.Mesh.Kind)
	}
	for label, token := range ip.Mesh.BCs {
		base := strings.ToLower(strings.TrimSpace(token))
		if _, ok := types.BCNameMap[base]; ok {
			continue
		}
		if ind := strings.Index(base, "-"); ind > 0 {
			base = base[:ind]
		}
		if _, ok := types.BCNameMap[base]; !ok {
			return fmt.Errorf("unknown boundary kind %q for boundary %q", token, label)
		}
	}
	return nil
}
