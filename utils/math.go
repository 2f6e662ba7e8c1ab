package utils

import (
	"math"
)

func ConstArray(N int, val float64) (v []float64) {
	v = make([]float64, N)
	for i := range v {
		v[i] = val
	}
	return
}

// POW is an integer-exponent power, cheaper than math.Pow for the small
// exponents that dominate the flux and entropy formulas.
func POW(x float64, pp int) (y float64) {
	if pp > 8 || pp < -8 {
		return math.Pow(x, float64(pp))
	}
	var (
		p = pp
	)
	if p < 0 {
		p = -p
	}
	y = 1.
	for ; p > 0; p-- {
		y *= x
	}
	if pp < 0 {
		y = 1. / y
	}
	return
}
