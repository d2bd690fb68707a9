package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestElementTypes(t *testing.T) {
	assert.Equal(t, Tet, SimplexOfDimension(3))
	assert.Equal(t, Triangle, SimplexOfDimension(2))
	assert.Equal(t, Unknown, SimplexOfDimension(4))
	assert.True(t, Tet.IsLinearSimplex())
	assert.False(t, Tet10.IsLinearSimplex())
	assert.Equal(t, 3, Tet.GetDimension())
	assert.Equal(t, 10, Tet10.GetNumNodes())
	{ // Facet i is opposite vertex i
		v := []int{10, 11, 12, 13}
		for i, f := range GetSimplexFacets(Tet, v) {
			assert.Len(t, f, 3)
			assert.NotContains(t, f, v[i])
		}
		for i, f := range GetSimplexFacets(Triangle, v[:3]) {
			assert.Len(t, f, 2)
			assert.NotContains(t, f, v[i])
		}
	}
}
