package fem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLattice(t *testing.T) {
	assert.Equal(t, 10, NumNodes(3, 2))
	assert.Equal(t, 10, NumNodes(2, 3))
	assert.Equal(t, 35, NumNodes(3, 4))
	idx := MultiIndices(3, 2)
	require.Len(t, idx, 6)
	assert.Equal(t, []int{2, 0, 0}, idx[0])
	assert.Equal(t, []int{0, 2, 0}, idx[1])
	assert.Equal(t, []int{0, 0, 2}, idx[2])
	for _, a := range idx {
		assert.Equal(t, 2, a[0]+a[1]+a[2])
	}
	assert.Equal(t, [][]int{{0, 0}}, MultiIndices(2, 0))
	exps := Exponents(2, 2)
	assert.Len(t, exps, 6)
	assert.Equal(t, []int{0, 0}, exps[0])
}

func TestLagrangeBasis(t *testing.T) {
	for dim := 1; dim <= 3; dim++ {
		for order := 1; order <= 4; order++ {
			lb, err := NewLagrangeBasis(dim, order)
			require.NoError(t, err)
			Np := lb.Np
			assert.Equal(t, NumNodes(dim, order), Np)
			{ // Vertices come first, at the origin and the unit vectors
				for v := range lb.VertexNodes() {
					for k := 0; k < dim; k++ {
						want := 0.
						if v == k+1 {
							want = 1
						}
						assert.Equal(t, want, lb.R[v][k])
					}
				}
			}
			{ // Nodal
				// phi_i(r_n) = sum_j C(j,i) m_j(r_n) = delta_in
				for n := 0; n < Np; n++ {
					for i := 0; i < Np; i++ {
						var val float64
						for j, e := range lb.Exps {
							val += lb.C.At(j, i) * monomial(lb.R[n], e)
						}
						want := 0.
						if i == n {
							want = 1
						}
						assert.InDelta(t, want, val, 1e-9)
					}
				}
			}
			{ // Differentiation is exact on linear functions, zero on constants
				for k := 0; k < dim; k++ {
					for n := 0; n < Np; n++ {
						var dConst, dLin float64
						for i := 0; i < Np; i++ {
							dConst += lb.Dr[k].At(n, i)
							dLin += lb.Dr[k].At(n, i) * lb.R[i][k]
						}
						assert.InDelta(t, 0, dConst, 1e-9)
						assert.InDelta(t, 1, dLin, 1e-9)
					}
				}
			}
			{ // Stiffness blocks: S[k][s] = S[s][k]^T, constants in the kernel
				for k := 0; k < dim; k++ {
					for s := 0; s < dim; s++ {
						for i := 0; i < Np; i++ {
							var row float64
							for l := 0; l < Np; l++ {
								row += lb.S[k][s].At(i, l)
								assert.InDelta(t, lb.S[k][s].At(i, l), lb.S[s][k].At(l, i), 1e-9)
							}
							assert.InDelta(t, 0, row, 1e-9)
						}
					}
				}
			}
		}
	}
	{ // Linear triangle, phi = (1-r-s, r, s) on an area 1/2 simplex
		lb, err := NewLagrangeBasis(2, 1)
		require.NoError(t, err)
		want := [][]float64{{0.5, -0.5, 0}, {-0.5, 0.5, 0}, {0, 0, 0}}
		for i := 0; i < 3; i++ {
			for l := 0; l < 3; l++ {
				assert.InDelta(t, want[i][l], lb.S[0][0].At(i, l), 1e-14)
			}
		}
	}
	{ // Out of range
		_, err := NewLagrangeBasis(4, 1)
		assert.Error(t, err)
		_, err = NewLagrangeBasis(2, 0)
		assert.Error(t, err)
		_, err = NewLagrangeBasis(2, MaxOrder+1)
		assert.Error(t, err)
	}
}

func TestSimplexMonomialIntegral(t *testing.T) {
	assert.InDelta(t, 1., simplexMonomialIntegral([]int{0}), 1e-15)
	assert.InDelta(t, 0.5, simplexMonomialIntegral([]int{0, 0}), 1e-15)
	assert.InDelta(t, 1./6, simplexMonomialIntegral([]int{0, 0, 0}), 1e-15)
	// integral of x over the unit triangle is 1/6
	assert.InDelta(t, 1./6, simplexMonomialIntegral([]int{1, 0}), 1e-15)
	// integral of x*y*z over the unit tet is 1/720
	assert.InDelta(t, 1./720, simplexMonomialIntegral([]int{1, 1, 1}), 1e-15)
}
