package electrostatics

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/notargets/efield/fem"
	"github.com/notargets/efield/utils"
)

// Material assigns a relative permittivity to a mesh region. RegionID 0
// marks the default entry, applied to every region not assigned explicitly.
type Material struct {
	Name         string
	RegionID     int
	Permittivity float64
}

func (m Material) IsDefault() bool { return m.RegionID == 0 }

// Boundary assigns a condition to a mesh surface. Only BCDirichlet entries
// act on the solve; BCNeumann and BCRobin are accepted and treated as the
// natural (zero flux) boundary.
type Boundary struct {
	Name      string
	SurfaceID int
	Kind      utils.BCType
	Value     float64
}

// SolverParameters is the part of the configuration the assembler and the
// iterative solver see
type SolverParameters struct {
	Order      int     // polynomial order of the H1 space
	AbsTol     float64 // absolute residual tolerance
	RelTol     float64 // residual tolerance relative to the initial residual
	MaxIter    int
	PrintLevel int       // 0 silent, 1 summary, 2 per-iteration residuals
	Threads    int       // parallel degree of the element kernels, <1 means NumCPU
	Out        io.Writer // progress output, defaults to os.Stdout
}

func (p SolverParameters) Validate() error {
	if p.Order < 1 || p.Order > fem.MaxOrder {
		return fmt.Errorf("polynomial order must be between 1 and %d, have %d", fem.MaxOrder, p.Order)
	}
	if p.AbsTol < 0 || p.RelTol < 0 {
		return fmt.Errorf("tolerances must be non-negative, have atol = %g, rtol = %g", p.AbsTol, p.RelTol)
	}
	if p.MaxIter < 1 {
		return fmt.Errorf("maximum iteration count must be positive, have %d", p.MaxIter)
	}
	return nil
}

func (p SolverParameters) out() io.Writer {
	if p.Out == nil {
		return os.Stdout
	}
	return p.Out
}

func (p SolverParameters) threads() int {
	if p.Threads < 1 {
		return runtime.NumCPU()
	}
	return p.Threads
}

func (p SolverParameters) pcg() utils.PCGParams {
	return utils.PCGParams{
		AbsTol:     p.AbsTol,
		RelTol:     p.RelTol,
		MaxIter:    p.MaxIter,
		PrintLevel: p.PrintLevel,
		Out:        p.out(),
	}
}
