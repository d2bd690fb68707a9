package utils

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"
)

// ErrCGBreakdown is returned when a search direction has non-positive
// curvature, meaning the operator is not positive definite
var ErrCGBreakdown = errors.New("conjugate gradient breakdown: operator is not positive definite")

// LinearOperator is anything that can apply itself to a vector
type LinearOperator interface {
	Dims() (r, c int)
	MulVec(dst, x []float64)
}

// PCGParams controls the preconditioned conjugate gradient iteration.
// The iteration stops when sqrt(r'M^-1 r) <= max(AbsTol, RelTol*sqrt(r0'M^-1 r0)).
type PCGParams struct {
	AbsTol, RelTol float64
	MaxIter        int
	PrintLevel     int       // 0 = silent, 1 = summary, 2 = every iteration
	Out            io.Writer // defaults to os.Stdout
}

type PCGResult struct {
	Iterations      int
	InitialResidual float64 // preconditioned residual norm at iteration 0
	Residual        float64 // preconditioned residual norm at exit
	Converged       bool
}

// PCG solves A x = b with the conjugate gradient method using the diagonal
// preconditioner Minv (the inverse of diag(A)). x holds the initial guess on
// entry and the solution on return. Not converging within MaxIter is not an
// error here, the caller inspects PCGResult.Converged.
func PCG(A LinearOperator, Minv, b, x []float64, p PCGParams) (res PCGResult, err error) {
	var (
		n, nc = A.Dims()
		out   = p.Out
	)
	if out == nil {
		out = os.Stdout
	}
	if n != nc {
		err = fmt.Errorf("PCG needs a square operator, have %dx%d", n, nc)
		return
	}
	if len(b) != n || len(x) != n || len(Minv) != n {
		err = fmt.Errorf("PCG dimension mismatch: n = %d, len(b) = %d, len(x) = %d, len(Minv) = %d",
			n, len(b), len(x), len(Minv))
		return
	}
	var (
		r = make([]float64, n)
		z = make([]float64, n)
		d = make([]float64, n)
		h = make([]float64, n)
	)
	// r = b - A x
	A.MulVec(r, x)
	floats.SubTo(r, b, r)
	floats.MulTo(z, Minv, r)
	copy(d, z)
	nom := floats.Dot(z, r)
	if nom < 0 || math.IsNaN(nom) {
		err = fmt.Errorf("%w: preconditioner is not positive definite (r'z = %g)", ErrCGBreakdown, nom)
		return
	}
	res.InitialResidual = math.Sqrt(nom)
	res.Residual = res.InitialResidual
	stop := math.Max(p.AbsTol*p.AbsTol, p.RelTol*p.RelTol*nom)
	if p.PrintLevel >= 2 {
		fmt.Fprintf(out, "    iter       residual\n")
		fmt.Fprintf(out, "%8d %14.6e\n", 0, res.Residual)
	}
	if nom <= stop {
		res.Converged = true
		p.summary(out, res)
		return
	}
	for i := 1; i <= p.MaxIter; i++ {
		A.MulVec(h, d)
		den := floats.Dot(d, h)
		if den <= 0 {
			res.Iterations = i
			err = fmt.Errorf("%w: d'Ad = %g at iteration %d", ErrCGBreakdown, den, i)
			return
		}
		alpha := nom / den
		floats.AddScaled(x, alpha, d)
		floats.AddScaled(r, -alpha, h)
		floats.MulTo(z, Minv, r)
		betanom := floats.Dot(r, z)
		if betanom < 0 {
			res.Iterations = i
			err = fmt.Errorf("%w: r'z = %g at iteration %d", ErrCGBreakdown, betanom, i)
			return
		}
		res.Iterations = i
		res.Residual = math.Sqrt(betanom)
		if p.PrintLevel >= 2 {
			fmt.Fprintf(out, "%8d %14.6e\n", i, res.Residual)
		}
		if betanom <= stop {
			res.Converged = true
			break
		}
		beta := betanom / nom
		// d = z + beta * d
		floats.Scale(beta, d)
		floats.Add(d, z)
		nom = betanom
	}
	p.summary(out, res)
	return
}

func (p PCGParams) summary(out io.Writer, res PCGResult) {
	if p.PrintLevel < 1 {
		return
	}
	if res.Converged {
		fmt.Fprintf(out, "PCG converged in %d iterations, residual %10.4e (initial %10.4e)\n",
			res.Iterations, res.Residual, res.InitialResidual)
	} else {
		fmt.Fprintf(out, "PCG did not converge in %d iterations, residual %10.4e (initial %10.4e)\n",
			res.Iterations, res.Residual, res.InitialResidual)
	}
}

// JacobiInverse returns 1/diag, failing on a non-positive diagonal entry
func JacobiInverse(diag []float64) (Minv []float64, err error) {
	Minv = make([]float64, len(diag))
	for i, v := range diag {
		if !(v > 0) {
			err = fmt.Errorf("%w: diagonal entry %d is %g", ErrCGBreakdown, i, v)
			return nil, err
		}
		Minv[i] = 1. / v
	}
	return
}
