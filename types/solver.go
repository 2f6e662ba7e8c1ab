package types

// LIMITER selects how much of the admissibility bound family is enforced
// when blending the high-order correction. The families are cumulative:
// each level enforces everything below it.
type LIMITER uint8

const (
	LimiterNone LIMITER = iota
	LimiterMinMax
	LimiterSpecificEntropy
	LimiterEntropyInequality
)

var LimiterNameMap = map[string]LIMITER{
	"none":               LimiterNone,
	"minmax":             LimiterMinMax,
	"specific-entropy":   LimiterSpecificEntropy,
	"entropy-inequality": LimiterEntropyInequality,
}

var limiterNames = []string{"None", "Local Min/Max", "Specific Entropy", "Entropy Inequality"}

func (lt LIMITER) String() string {
	if int(lt) >= len(limiterNames) {
		return "unknown"
	}
	return limiterNames[lt]
}

// INDICATOR selects the smoothness measure that scales the high-order
// viscosity down toward the low-order one.
type INDICATOR uint8

const (
	IndicatorNone INDICATOR = iota // pure Galerkin antidiffusion
	IndicatorEntropy
)

var IndicatorNameMap = map[string]INDICATOR{
	"none":    IndicatorNone,
	"entropy": IndicatorEntropy,
}

var indicatorNames = []string{"None (Galerkin)", "Entropy Commutator"}

func (it INDICATOR) String() string {
	if int(it) >= len(indicatorNames) {
		return "unknown"
	}
	return indicatorNames[it]
}

// CASE names an initial condition configuration.
type CASE uint8

const (
	CaseUniform CASE = iota
	CaseContrast
	CaseSod
	CaseShockFront
	CaseVortex
)

var CaseNameMap = map[string]CASE{
	"uniform":    CaseUniform,
	"contrast":   CaseContrast,
	"sod":        CaseSod,
	"shockfront": CaseShockFront,
	"vortex":     CaseVortex,
}

var caseNames = []string{"Uniform Flow", "Planar Contrast", "Sod Shock Tube", "Moving Shock Front", "Isentropic Vortex"}

func (ct CASE) String() string {
	if int(ct) >= len(caseNames) {
		return "unknown"
	}
	return caseNames[ct]
}
