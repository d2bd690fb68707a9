package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPOW(t *testing.T) {
	for _, x := range []float64{-2.5, -1, 0.3, 1, 1.7} {
		for p := -20; p <= 20; p++ {
			if x == 0 && p < 0 {
				continue
			}
			assert.InDelta(t, math.Pow(x, float64(p)), POW(x, p), 1e-12*math.Max(1, math.Abs(math.Pow(x, float64(p)))))
		}
	}
	assert.Equal(t, 1., POW(0, 0))
}
