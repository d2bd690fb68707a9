package electrostatics

import (
	"fmt"
	"time"

	"github.com/notargets/efield/fem"
	"github.com/notargets/efield/mesh"
	"github.com/notargets/efield/utils"
)

// Result holds everything one solve produced. All fields are read only.
type Result struct {
	Space        *fem.Space
	Permittivity Permittivity
	Constraints  *Constraints
	Potential    []float64    // V, one value per DOF
	E            [][3]float64 // -grad V per DOF
	Emag         []float64    // |E| per DOF
	Iterations   int
	Residual     float64
}

// Field is a named nodal field over the DOFs of the space, in the layout the
// writers consume: Values[dof][component]
type Field struct {
	Name   string
	Values [][]float64
}

// Fields returns the potential, the electric field and its magnitude
func (r *Result) Fields() []Field {
	n := len(r.Potential)
	V := make([][]float64, n)
	E := make([][]float64, n)
	Emag := make([][]float64, n)
	for i := 0; i < n; i++ {
		V[i] = []float64{r.Potential[i]}
		E[i] = []float64{r.E[i][0], r.E[i][1], r.E[i][2]}
		Emag[i] = []float64{r.Emag[i]}
	}
	return []Field{
		{Name: "V", Values: V},
		{Name: "E", Values: E},
		{Name: "Emag", Values: Emag},
	}
}

// CheckMesh verifies the preconditions the solve needs from the mesh
func CheckMesh(m *mesh.Mesh) error {
	if m == nil || m.NumElements == 0 {
		return &MeshIntegrityError{Reason: "mesh has no elements"}
	}
	if len(m.BoundaryElements) == 0 {
		return &MeshIntegrityError{Reason: "mesh has no boundary attributes"}
	}
	for _, r := range m.RegionIDs() {
		if r < 1 {
			return &MeshIntegrityError{Reason: fmt.Sprintf("region id %d is not positive", r)}
		}
	}
	for _, s := range m.SurfaceIDs() {
		if s < 1 {
			return &MeshIntegrityError{Reason: fmt.Sprintf("surface id %d is not positive", s)}
		}
	}
	return nil
}

// Solve runs the field-solve pipeline in sequence: permittivity resolution,
// Dirichlet constraints, assembly and solve, field derivation. Each stage
// only sees its own part of the configuration.
func Solve(m *mesh.Mesh, materials []Material, boundaries []Boundary, p SolverParameters) (r *Result, err error) {
	if err = CheckMesh(m); err != nil {
		return
	}
	if err = p.Validate(); err != nil {
		return
	}
	var (
		out   = p.out()
		start = time.Now()
	)
	r = &Result{}
	if r.Permittivity, err = ResolvePermittivity(m.RegionIDs(), materials); err != nil {
		return nil, err
	}
	if r.Space, err = fem.NewSpace(m, p.Order); err != nil {
		return nil, err
	}
	if r.Constraints, err = BuildConstraints(r.Space, boundaries); err != nil {
		return nil, err
	}
	if p.PrintLevel >= 1 {
		fmt.Fprintf(out, "Electrostatics in %d dimensions\n", m.Dimension)
		fmt.Fprintf(out, "Using %d go routines in parallel\n", p.threads())
		fmt.Fprintf(out, "Polynomial Degree N = %d, Num Elements K = %d, DOFs = %d\n",
			p.Order, m.NumElements, r.Space.NDofs)
		fmt.Fprintf(out, "Dirichlet surfaces %v fix %d DOFs\n", r.Constraints.Surfaces, r.Constraints.NumFixed())
		for _, bc := range boundaries {
			if bc.Kind != utils.BCDirichlet {
				fmt.Fprintf(out, "\tboundary %q (surface %d): %s condition treated as natural boundary\n",
					bc.Name, bc.SurfaceID, bc.Kind)
			}
		}
	}
	V, res, err := SolvePotential(r.Space, r.Permittivity, r.Constraints, p)
	if err != nil {
		return nil, fmt.Errorf("potential solve: %w", err)
	}
	r.Potential, r.Iterations, r.Residual = V, res.Iterations, res.Residual
	if r.E, r.Emag, err = DeriveField(r.Space, r.Potential); err != nil {
		return nil, err
	}
	if p.PrintLevel >= 1 {
		fmt.Fprintf(out, "Solve finished in %v, %s\n", time.Since(start), utils.GetMemUsage())
	}
	return
}
