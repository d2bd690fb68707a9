package fem

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/efield/utils"
)

// MaxOrder bounds the polynomial order: the nodal basis is built from an
// equispaced monomial Vandermonde matrix whose conditioning degrades quickly
// past this
const MaxOrder = 6

// LagrangeBasis is the nodal H1 basis of order Order on the unit simplex of
// dimension Dim, with vertices at the origin and the unit vectors
type LagrangeBasis struct {
	Dim, Order, Np int
	Lattice        [][]int     // [Np][Dim+1] barycentric coordinates of the nodes, times Order
	R              [][]float64 // [Np][Dim] reference node coordinates
	Exps           [][]int     // [Np][Dim] monomial exponents
	C              *mat.Dense  // phi_i = sum_j C(j,i) * m_j
	Dr             []*mat.Dense
	S              [][]*mat.Dense
}

// NewLagrangeBasis builds the nodal basis together with:
//
//	Dr[k](n,i)   = d(phi_i)/dr_k at node n
//	S[k][s](i,l) = integral over the reference simplex of d(phi_i)/dr_k * d(phi_l)/dr_s
//
// The integrals are exact, computed monomial by monomial.
func NewLagrangeBasis(dim, order int) (lb *LagrangeBasis, err error) {
	if dim < 1 || dim > 3 {
		return nil, fmt.Errorf("simplex dimension must be 1, 2 or 3, have %d", dim)
	}
	if order < 1 || order > MaxOrder {
		return nil, fmt.Errorf("polynomial order must be between 1 and %d, have %d", MaxOrder, order)
	}
	lb = &LagrangeBasis{
		Dim:     dim,
		Order:   order,
		Np:      NumNodes(dim, order),
		Lattice: MultiIndices(dim+1, order),
		Exps:    Exponents(dim, order),
	}
	Np := lb.Np
	lb.R = make([][]float64, Np)
	for n, a := range lb.Lattice {
		lb.R[n] = make([]float64, dim)
		for k := 0; k < dim; k++ {
			lb.R[n][k] = float64(a[k+1]) / float64(order)
		}
	}

	V := mat.NewDense(Np, Np, nil)
	for n := 0; n < Np; n++ {
		for j, e := range lb.Exps {
			V.Set(n, j, monomial(lb.R[n], e))
		}
	}
	lb.C = mat.NewDense(Np, Np, nil)
	if err = lb.C.Inverse(V); err != nil {
		return nil, fmt.Errorf("singular Vandermonde matrix for order %d: %v", order, err)
	}

	lb.Dr = make([]*mat.Dense, dim)
	for k := 0; k < dim; k++ {
		Vk := mat.NewDense(Np, Np, nil)
		for n := 0; n < Np; n++ {
			for j, e := range lb.Exps {
				Vk.Set(n, j, dMonomial(lb.R[n], e, k))
			}
		}
		lb.Dr[k] = mat.NewDense(Np, Np, nil)
		lb.Dr[k].Mul(Vk, lb.C)
	}

	lb.S = make([][]*mat.Dense, dim)
	for k := 0; k < dim; k++ {
		lb.S[k] = make([]*mat.Dense, dim)
		for s := 0; s < dim; s++ {
			D := mat.NewDense(Np, Np, nil)
			for a, ea := range lb.Exps {
				if ea[k] == 0 {
					continue
				}
				for b, eb := range lb.Exps {
					if eb[s] == 0 {
						continue
					}
					e := make([]int, dim)
					for i := range e {
						e[i] = ea[i] + eb[i]
					}
					e[k]--
					e[s]--
					D.Set(a, b, float64(ea[k]*eb[s])*simplexMonomialIntegral(e))
				}
			}
			var tmp mat.Dense
			tmp.Mul(lb.C.T(), D)
			lb.S[k][s] = mat.NewDense(Np, Np, nil)
			lb.S[k][s].Mul(&tmp, lb.C)
		}
	}
	return
}

// VertexNodes returns the local node numbers of the simplex vertices
func (lb *LagrangeBasis) VertexNodes() []int {
	v := make([]int, lb.Dim+1)
	for i := range v {
		v[i] = i
	}
	return v
}

func monomial(r []float64, e []int) float64 {
	val := 1.
	for k, p := range e {
		val *= utils.POW(r[k], p)
	}
	return val
}

func dMonomial(r []float64, e []int, dir int) float64 {
	if e[dir] == 0 {
		return 0
	}
	val := float64(e[dir])
	for k, p := range e {
		if k == dir {
			p--
		}
		val *= utils.POW(r[k], p)
	}
	return val
}

// simplexMonomialIntegral integrates prod r_k^e_k over the unit simplex:
// prod(e_k!) / (sum(e_k) + d)!
func simplexMonomialIntegral(e []int) float64 {
	var (
		num   = 1.
		total = len(e)
	)
	for _, p := range e {
		num *= factorial(p)
		total += p
	}
	return num / factorial(total)
}

func factorial(n int) float64 {
	f := 1.
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}
