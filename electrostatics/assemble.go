package electrostatics

import (
	"fmt"

	"github.com/notargets/efield/fem"
	"github.com/notargets/efield/utils"
)

// LinearSystem is the discrete problem restricted to the free DOFs:
//
//	A' x = b',  b' = b - A(free, fixed) * V(fixed)
type LinearSystem struct {
	A       utils.CSR
	B       []float64
	Free    []int // reduced index -> global DOF
	Reduced []int // global DOF -> reduced index, -1 for a constrained DOF
}

func (ls *LinearSystem) Size() int { return len(ls.Free) }

// AssembleReduced assembles the diffusion operator weighted by eps and
// eliminates the constrained DOFs. V must already hold the prescribed
// voltages on the constrained DOFs.
//
// Element matrices are computed in parallel, one partition of the element
// range per goroutine, each partition accumulating into its own matrix. The
// partition matrices are then summed in partition order, so the result does
// not depend on goroutine scheduling.
//
// The load vector is zero: there is no volume charge. Charge density and flux
// (Neumann/Robin) boundary terms would be added to b here.
func AssembleReduced(sp *fem.Space, eps Permittivity, c *Constraints, V []float64, threads int) (ls *LinearSystem, err error) {
	var (
		m     = sp.Mesh
		Np    = sp.Basis.Np
		nFree int
	)
	ls = &LinearSystem{Reduced: make([]int, sp.NDofs)}
	for dof := 0; dof < sp.NDofs; dof++ {
		if c.IsFixed(dof) {
			ls.Reduced[dof] = -1
			continue
		}
		ls.Reduced[dof] = nFree
		ls.Free = append(ls.Free, dof)
		nFree++
	}
	ls.B = make([]float64, nFree)
	if nFree == 0 {
		return
	}

	var (
		pm      = utils.NewPartitionMap(min(threads, m.NumElements), m.NumElements)
		NP      = pm.ParallelDegree
		partA   = make([]utils.DOK, NP)
		partB   = make([][]float64, NP)
		partErr = make([]error, NP)
	)
	pm.ParallelFor(func(np, kMin, kMax int) {
		A := utils.NewDOK(nFree, nFree, fmt.Sprintf("A[%d]", np))
		b := make([]float64, nFree)
		for k := kMin; k < kMax; k++ {
			region := m.ElementTags[k]
			if region < 1 || region > eps.MaxRegion() || !(eps.At(region) > 0) {
				partErr[np] = &UnresolvedRegionError{Regions: []int{region}}
				return
			}
			geo, err := sp.Geometry(k)
			if err != nil {
				partErr[np] = &MeshIntegrityError{Reason: err.Error()}
				return
			}
			Ke := sp.ElementStiffness(geo, eps.At(region))
			dofs := sp.ElemDofs[k]
			for i := 0; i < Np; i++ {
				ri := ls.Reduced[dofs[i]]
				if ri < 0 {
					continue
				}
				for l := 0; l < Np; l++ {
					if rl := ls.Reduced[dofs[l]]; rl >= 0 {
						A.AddAt(ri, rl, Ke[i*Np+l])
					} else {
						b[ri] -= Ke[i*Np+l] * V[dofs[l]]
					}
				}
			}
		}
		partA[np], partB[np] = A, b
	})
	for _, err = range partErr {
		if err != nil {
			return nil, err
		}
	}

	A := utils.NewDOK(nFree, nFree, "A")
	for np := 0; np < NP; np++ {
		if partA[np].M == nil {
			continue
		}
		raw := partA[np].ToCSR().RawMatrix()
		for i := 0; i < nFree; i++ {
			for k := raw.Indptr[i]; k < raw.Indptr[i+1]; k++ {
				A.AddAt(i, raw.Ind[k], raw.Data[k])
			}
		}
		for i, v := range partB[np] {
			ls.B[i] += v
		}
	}
	ls.A = A.ToCSR()
	if r, cl := ls.A.Dims(); r != nFree || cl != nFree {
		panic(fmt.Errorf("reduced operator is %dx%d, expected %dx%d", r, cl, nFree, nFree))
	}
	return
}
