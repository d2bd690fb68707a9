package utils

import (
	"fmt"
	"sort"

	"github.com/james-bowman/sparse"
	"github.com/james-bowman/sparse/blas"
	"gonum.org/v1/gonum/mat"
)

// DOK is the assembly-time storage of a sparse operator: entries are
// accumulated in a dictionary of keys and converted to CSR once assembly ends
type DOK struct {
	M    *sparse.DOK
	name string
}

func NewDOK(nr, nc int, name ...string) (R DOK) {
	R = DOK{
		M:    sparse.NewDOK(nr, nc),
		name: "unnamed",
	}
	if len(name) != 0 {
		R.name = name[0]
	}
	return
}

// Dims and At minimally satisfy the mat.Matrix interface, together with T
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix       { return m.M.T() }
func (m DOK) Name() string        { return m.name }

// AddAt accumulates val into entry (i,j)
func (m DOK) AddAt(i, j int, val float64) {
	m.M.Set(i, j, m.M.At(i, j)+val)
}

// ToCSR compresses the matrix. Column indices are sorted within each row so
// that row reductions happen in the same order on every run.
func (m DOK) ToCSR() CSR {
	R := CSR{
		M:    m.M.ToCSR(),
		name: m.name,
	}
	R.sortRows()
	return R
}

type CSR struct {
	M    *sparse.CSR
	name string
}

func (m CSR) Dims() (r, c int)              { return m.M.Dims() }
func (m CSR) At(i, j int) float64           { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix                 { return m.M.T() }
func (m CSR) RawMatrix() *blas.SparseMatrix { return m.M.RawMatrix() }
func (m CSR) Name() string                  { return m.name }
func (m CSR) NNZ() int                      { return len(m.RawMatrix().Data) }

// MulVec computes dst = M * x
func (m CSR) MulVec(dst, x []float64) {
	var (
		raw    = m.RawMatrix()
		nr, nc = m.Dims()
	)
	if len(x) != nc || len(dst) != nr {
		panic(fmt.Errorf("dimension mismatch in %s MulVec: matrix is %dx%d, len(x) = %d, len(dst) = %d",
			m.name, nr, nc, len(x), len(dst)))
	}
	for i := 0; i < nr; i++ {
		var sum float64
		for k := raw.Indptr[i]; k < raw.Indptr[i+1]; k++ {
			sum += raw.Data[k] * x[raw.Ind[k]]
		}
		dst[i] = sum
	}
}

// Diagonal returns a copy of the main diagonal
func (m CSR) Diagonal() (diag []float64) {
	var (
		raw    = m.RawMatrix()
		nr, nc = m.Dims()
	)
	diag = make([]float64, min(nr, nc))
	for i := range diag {
		for k := raw.Indptr[i]; k < raw.Indptr[i+1]; k++ {
			if raw.Ind[k] == i {
				diag[i] += raw.Data[k]
			}
		}
	}
	return
}

// IsSymmetric checks A == A^T entry by entry within tol
func (m CSR) IsSymmetric(tol float64) bool {
	var (
		raw    = m.RawMatrix()
		nr, nc = m.Dims()
	)
	if nr != nc {
		return false
	}
	for i := 0; i < nr; i++ {
		for k := raw.Indptr[i]; k < raw.Indptr[i+1]; k++ {
			j := raw.Ind[k]
			d := raw.Data[k] - m.At(j, i)
			if d > tol || d < -tol {
				return false
			}
		}
	}
	return true
}

func (m CSR) sortRows() {
	var (
		raw = m.RawMatrix()
		nr  = raw.I
	)
	for i := 0; i < nr; i++ {
		row := csrRow{
			ind:  raw.Ind[raw.Indptr[i]:raw.Indptr[i+1]],
			data: raw.Data[raw.Indptr[i]:raw.Indptr[i+1]],
		}
		if !sort.IsSorted(row) {
			sort.Sort(row)
		}
	}
}

type csrRow struct {
	ind  []int
	data []float64
}

func (r csrRow) Len() int           { return len(r.ind) }
func (r csrRow) Less(i, j int) bool { return r.ind[i] < r.ind[j] }
func (r csrRow) Swap(i, j int) {
	r.ind[i], r.ind[j] = r.ind[j], r.ind[i]
	r.data[i], r.data[j] = r.data[j], r.data[i]
}
