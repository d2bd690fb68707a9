package electrostatics

import (
	"sort"
	"strconv"

	"github.com/notargets/efield/fem"
	"github.com/notargets/efield/utils"
)

// DirichletSurfaces validates the boundary table against the surface ids of
// the mesh and returns the surfaces tagged Dirichlet (sorted) with the
// voltage prescribed on each. Surfaces missing from the table, and Neumann or
// Robin surfaces, are left to the natural boundary condition.
func DirichletSurfaces(surfaceIDs []int, boundaries []Boundary) (surfaces []int, voltage map[int]float64, err error) {
	var maxSurface int
	for _, s := range surfaceIDs {
		if s > maxSurface {
			maxSurface = s
		}
	}
	bcs := make([]Boundary, len(boundaries))
	copy(bcs, boundaries)
	sort.SliceStable(bcs, func(i, j int) bool {
		if bcs[i].SurfaceID != bcs[j].SurfaceID {
			return bcs[i].SurfaceID < bcs[j].SurfaceID
		}
		return bcs[i].Name < bcs[j].Name
	})

	voltage = make(map[int]float64)
	owner := make(map[int]string)
	for _, bc := range bcs {
		if bc.SurfaceID <= 0 {
			return nil, nil, &InvalidBoundaryError{Name: bc.Name, SurfaceID: bc.SurfaceID,
				Reason: "surface id must be a positive integer"}
		}
		switch bc.Kind {
		case utils.BCDirichlet, utils.BCNeumann, utils.BCRobin:
		default:
			return nil, nil, &InvalidBoundaryError{Name: bc.Name, SurfaceID: bc.SurfaceID,
				Reason: "unknown boundary condition kind " + bc.Kind.String()}
		}
		if bc.SurfaceID > maxSurface {
			return nil, nil, &ConfigRangeError{Kind: "boundary", Name: bc.Name, ID: bc.SurfaceID, Max: maxSurface}
		}
		if bc.Kind != utils.BCDirichlet {
			continue
		}
		if other, ok := owner[bc.SurfaceID]; ok {
			return nil, nil, &InvalidBoundaryError{Name: bc.Name, SurfaceID: bc.SurfaceID,
				Reason: "surface already constrained by boundary " + other}
		}
		owner[bc.SurfaceID] = bc.Name
		voltage[bc.SurfaceID] = bc.Value
		surfaces = append(surfaces, bc.SurfaceID)
	}
	return
}

// Constraints is the set of DOFs fixed by Dirichlet surfaces and the voltage
// imposed at each
type Constraints struct {
	Surfaces []int           // Dirichlet surface ids, sorted
	Voltage  map[int]float64 // surface id -> voltage
	Dofs     []int           // constrained global DOFs, sorted
	Values   []float64       // voltage of Dofs[i]
	fixed    []bool          // [NDofs]
}

// BuildConstraints collects every DOF on the closure of a facet of a
// Dirichlet surface. A DOF shared by two Dirichlet surfaces takes the voltage
// of the surface with the larger id.
func BuildConstraints(sp *fem.Space, boundaries []Boundary) (c *Constraints, err error) {
	m := sp.Mesh
	c = &Constraints{fixed: make([]bool, sp.NDofs)}
	if c.Surfaces, c.Voltage, err = DirichletSurfaces(m.SurfaceIDs(), boundaries); err != nil {
		return nil, err
	}
	value := make(map[int]float64)
	for _, s := range c.Surfaces {
		v := c.Voltage[s]
		for _, be := range m.BoundaryElements {
			if be.SurfaceID != s {
				continue
			}
			dofs, err := sp.FacetDofs(be.Nodes)
			if err != nil {
				return nil, &MeshIntegrityError{Reason: "surface " + strconv.Itoa(s) + ": " + err.Error()}
			}
			for _, dof := range dofs {
				c.fixed[dof] = true
				value[dof] = v
			}
		}
	}
	for dof, isFixed := range c.fixed {
		if isFixed {
			c.Dofs = append(c.Dofs, dof)
			c.Values = append(c.Values, value[dof])
		}
	}
	return
}

// IsFixed reports whether a global DOF is constrained
func (c *Constraints) IsFixed(dof int) bool { return c.fixed[dof] }

// NumFixed is the number of constrained DOFs
func (c *Constraints) NumFixed() int { return len(c.Dofs) }

// Apply writes the prescribed voltages into V
func (c *Constraints) Apply(V []float64) {
	for i, dof := range c.Dofs {
		V[dof] = c.Values[i]
	}
}
