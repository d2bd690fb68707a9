package electrostatics

import (
	"fmt"

	"github.com/notargets/efield/fem"
	"github.com/notargets/efield/utils"
)

// SolvePotential solves div(eps grad V) = 0 with the Dirichlet data in c and
// returns V on every DOF. The reduced system is solved with conjugate
// gradients preconditioned by its diagonal. A solve that stops at the
// iteration limit returns a ConvergenceError and no field.
func SolvePotential(sp *fem.Space, eps Permittivity, c *Constraints, p SolverParameters) (V []float64, res utils.PCGResult, err error) {
	if err = p.Validate(); err != nil {
		return
	}
	if c.NumFixed() == 0 {
		err = ErrSingularSystem
		return
	}
	V = make([]float64, sp.NDofs)
	c.Apply(V)

	var ls *LinearSystem
	if ls, err = AssembleReduced(sp, eps, c, V, p.threads()); err != nil {
		return nil, res, err
	}
	if ls.Size() == 0 {
		res.Converged = true
		return
	}
	if p.PrintLevel >= 1 {
		fmt.Fprintf(p.out(), "Reduced system: %d free DOFs, %d non-zeros\n", ls.Size(), ls.A.NNZ())
	}
	var Minv []float64
	if Minv, err = utils.JacobiInverse(ls.A.Diagonal()); err != nil {
		return nil, res, err
	}
	x := make([]float64, ls.Size())
	if res, err = utils.PCG(ls.A, Minv, ls.B, x, p.pcg()); err != nil {
		return nil, res, err
	}
	if !res.Converged {
		return nil, res, &ConvergenceError{
			Iterations:      res.Iterations,
			Residual:        res.Residual,
			InitialResidual: res.InitialResidual,
		}
	}
	if utils.IsNan(x) {
		return nil, res, fmt.Errorf("%w: NaN in the solution", utils.ErrCGBreakdown)
	}
	for i, dof := range ls.Free {
		V[dof] = x[i]
	}
	return
}
