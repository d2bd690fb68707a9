package electrostatics

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSingularSystem is returned when no degree of freedom is constrained:
// with natural boundaries everywhere the potential is only defined up to a
// constant
var ErrSingularSystem = errors.New("singular system: no Dirichlet boundary constrains the potential")

// ConfigRangeError reports a material or boundary entry whose identifier is
// outside the range carried by the mesh
type ConfigRangeError struct {
	Kind string // "material" or "boundary"
	Name string
	ID   int
	Max  int
}

func (e *ConfigRangeError) Error() string {
	return fmt.Sprintf("%s %q: id %d is outside the mesh range [1,%d]", e.Kind, e.Name, e.ID, e.Max)
}

// UnresolvedRegionError lists mesh regions left without a permittivity when
// no default material is given
type UnresolvedRegionError struct {
	Regions []int
}

func (e *UnresolvedRegionError) Error() string {
	ids := make([]string, len(e.Regions))
	for i, r := range e.Regions {
		ids[i] = strconv.Itoa(r)
	}
	return fmt.Sprintf("no permittivity for mesh region(s) %s and no default material",
		strings.Join(ids, ", "))
}

type InvalidBoundaryError struct {
	Name      string
	SurfaceID int
	Reason    string
}

func (e *InvalidBoundaryError) Error() string {
	return fmt.Sprintf("boundary %q (surface %d): %s", e.Name, e.SurfaceID, e.Reason)
}

type InvalidMaterialError struct {
	Name   string
	Reason string
}

func (e *InvalidMaterialError) Error() string {
	return fmt.Sprintf("material %q: %s", e.Name, e.Reason)
}

// ConvergenceError is returned when the iteration limit is reached before
// either tolerance is met. The partially iterated field is discarded.
type ConvergenceError struct {
	Iterations      int
	Residual        float64
	InitialResidual float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("solver did not converge in %d iterations: residual %g (initial %g)",
		e.Iterations, e.Residual, e.InitialResidual)
}

type MeshIntegrityError struct {
	Reason string
}

func (e *MeshIntegrityError) Error() string {
	return "mesh integrity: " + e.Reason
}
