package utils

import "math"

// POW is x^p for integer p, by repeated squaring for small |p|
func POW(x float64, p int) (y float64) {
	if p > 16 || p < -16 {
		return math.Pow(x, float64(p))
	}
	n := p
	if n < 0 {
		n = -n
	}
	y = 1
	for base := x; n > 0; n >>= 1 {
		if n&1 == 1 {
			y *= base
		}
		base *= base
	}
	if p < 0 {
		y = 1. / y
	}
	return
}
