package electrostatics

import (
	"github.com/notargets/efield/fem"
	"gonum.org/v1/gonum/floats"
)

// DeriveField computes E = -grad V at every DOF and its magnitude. The
// gradient is evaluated in each element containing the DOF and averaged
// over those elements.
func DeriveField(sp *fem.Space, V []float64) (E [][3]float64, Emag []float64, err error) {
	var (
		count = make([]int, sp.NDofs)
	)
	E = make([][3]float64, sp.NDofs)
	for k := 0; k < sp.Mesh.NumElements; k++ {
		geo, err := sp.Geometry(k)
		if err != nil {
			return nil, nil, &MeshIntegrityError{Reason: err.Error()}
		}
		for n, g := range sp.ElementGradients(k, geo, V) {
			dof := sp.ElemDofs[k][n]
			for d := 0; d < 3; d++ {
				E[dof][d] -= g[d]
			}
			count[dof]++
		}
	}
	Emag = make([]float64, sp.NDofs)
	for dof := range E {
		if count[dof] > 1 {
			for d := 0; d < 3; d++ {
				E[dof][d] /= float64(count[dof])
			}
		}
		Emag[dof] = floats.Norm(E[dof][:], 2)
	}
	return
}
