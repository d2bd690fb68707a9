package fem

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ElementGeometry holds the affine map x = x0 + J r of one element
type ElementGeometry struct {
	DetJ  float64    // signed, |DetJ| = element volume * Dim!
	JinvT *mat.Dense // J^-T, maps reference gradients to physical gradients
	G     *mat.Dense // J^-1 J^-T
}

// Geometry computes the affine map of element k. Degenerate elements are an
// error.
func (sp *Space) Geometry(k int) (geo ElementGeometry, err error) {
	var (
		d     = sp.Basis.Dim
		verts = sp.Mesh.EtoV[k]
		x0    = sp.Mesh.Vertices[verts[0]]
		J     = mat.NewDense(d, d, nil)
		hmax  float64
	)
	for c := 0; c < d; c++ {
		xc := sp.Mesh.Vertices[verts[c+1]]
		var h2 float64
		for r := 0; r < d; r++ {
			J.Set(r, c, xc[r]-x0[r])
			h2 += (xc[r] - x0[r]) * (xc[r] - x0[r])
		}
		hmax = math.Max(hmax, math.Sqrt(h2))
	}
	geo.DetJ = mat.Det(J)
	if math.Abs(geo.DetJ) <= 1e-12*math.Pow(hmax, float64(d)) {
		err = fmt.Errorf("element %d is degenerate: det(J) = %g", k, geo.DetJ)
		return
	}
	var Jinv mat.Dense
	if err = Jinv.Inverse(J); err != nil {
		err = fmt.Errorf("element %d: %v", k, err)
		return
	}
	geo.JinvT = mat.DenseCopyOf(Jinv.T())
	geo.G = mat.NewDense(d, d, nil)
	geo.G.Mul(&Jinv, geo.JinvT)
	return
}

// ElementStiffness returns the local diffusion matrix of element k with
// constant coefficient eps, row major [Np*Np]:
//
//	K(i,l) = eps * |det J| * sum_{k,s} G(k,s) * S[k][s](i,l)
func (sp *Space) ElementStiffness(geo ElementGeometry, eps float64) (K []float64) {
	var (
		lb    = sp.Basis
		Np    = lb.Np
		scale = eps * math.Abs(geo.DetJ)
	)
	K = make([]float64, Np*Np)
	for k := 0; k < lb.Dim; k++ {
		for s := 0; s < lb.Dim; s++ {
			g := scale * geo.G.At(k, s)
			if g == 0 {
				continue
			}
			S := lb.S[k][s].RawMatrix()
			for i := 0; i < Np; i++ {
				row := S.Data[i*S.Stride : i*S.Stride+Np]
				for l, v := range row {
					K[i*Np+l] += g * v
				}
			}
		}
	}
	return
}

// ElementGradients returns the physical gradient of the field u (one value
// per global DOF) at every local node of element k, [Np][3]
func (sp *Space) ElementGradients(k int, geo ElementGeometry, u []float64) (grad [][3]float64) {
	var (
		lb   = sp.Basis
		Np   = lb.Np
		dofs = sp.ElemDofs[k]
		gr   = make([]float64, lb.Dim)
	)
	grad = make([][3]float64, Np)
	for n := 0; n < Np; n++ {
		for r := 0; r < lb.Dim; r++ {
			var sum float64
			for i := 0; i < Np; i++ {
				sum += lb.Dr[r].At(n, i) * u[dofs[i]]
			}
			gr[r] = sum
		}
		for c := 0; c < lb.Dim; c++ {
			var sum float64
			for r := 0; r < lb.Dim; r++ {
				sum += geo.JinvT.At(c, r) * gr[r]
			}
			grad[n][c] = sum
		}
	}
	return
}
