package fem

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/efield/mesh"
	"github.com/notargets/efield/utils"
)

func TestSpaceNumbering(t *testing.T) {
	{ // Structured meshes: the DOFs form the refined lattice
		m, err := mesh.NewRectMesh(2, 2, 1, 1, nil)
		require.NoError(t, err)
		for order, want := range map[int]int{1: 9, 2: 25, 3: 49} {
			sp, err := NewSpace(m, order)
			require.NoError(t, err)
			assert.Equal(t, want, sp.NDofs, "order %d", order)
			assert.Equal(t, order, sp.Order())
		}
		bm, err := mesh.NewBoxMesh(1, 1, 1, 1, 1, 1, nil)
		require.NoError(t, err)
		sp, err := NewSpace(bm, 2)
		require.NoError(t, err)
		assert.Equal(t, 27, sp.NDofs)
	}
	{ // Vertex DOFs come first, in vertex order
		m, err := mesh.NewBoxMesh(2, 1, 1, 2, 1, 1, nil)
		require.NoError(t, err)
		sp, err := NewSpace(m, 3)
		require.NoError(t, err)
		for v, dof := range sp.VertexDof {
			assert.Equal(t, v, dof)
			assert.Equal(t, m.Vertices[v], sp.DofCoords[dof])
		}
		// Shared DOFs sit at the same place seen from every element
		for k := range m.EtoV {
			for n, dof := range sp.ElemDofs[k] {
				x := sp.latticePoint(m.EtoV[k], sp.Basis.Lattice[n])
				for d := 0; d < 3; d++ {
					assert.InDelta(t, sp.DofCoords[dof][d], x[d], 1e-14)
				}
			}
		}
	}
	{ // Unused vertices carry no DOF
		m := mesh.NewMesh()
		m.Dimension = 2
		for i, xy := range [][]float64{{0, 0}, {1, 0}, {0, 1}, {5, 5}} {
			m.AddNode(i+1, xy)
		}
		require.NoError(t, m.AddElement(utils.Triangle, 1, []int{0, 1, 2}))
		sp, err := NewSpace(m, 2)
		require.NoError(t, err)
		assert.Equal(t, 6, sp.NDofs)
		assert.Equal(t, []int{0, 1, 2, -1}, sp.VertexDof)
	}
	{ // Only the simplex of the mesh dimension
		m := mesh.NewMesh()
		m.Dimension = 3
		for i, xy := range [][]float64{{0, 0}, {1, 0}, {0, 1}} {
			m.AddNode(i+1, xy)
		}
		require.NoError(t, m.AddElement(utils.Triangle, 1, []int{0, 1, 2}))
		_, err := NewSpace(m, 1)
		assert.Error(t, err)
		_, err = NewSpace(mesh.NewMesh(), 1)
		assert.Error(t, err)
	}
}

func TestFacetDofs(t *testing.T) {
	m, err := mesh.NewBoxMesh(1, 1, 1, 1, 1, 1, nil)
	require.NoError(t, err)
	sp, err := NewSpace(m, 2)
	require.NoError(t, err)
	for _, be := range m.BoundaryElements {
		dofs, err := sp.FacetDofs(be.Nodes)
		require.NoError(t, err)
		assert.Len(t, dofs, 6)
		for _, v := range be.Nodes {
			assert.Contains(t, dofs, sp.VertexDof[v])
		}
		// Every facet DOF lies on the box side of the facet
		for _, dof := range dofs {
			x := sp.DofCoords[dof]
			var onSide bool
			for d := 0; d < 3; d++ {
				if x[d] == 0 || x[d] == 1 {
					onSide = true
				}
			}
			assert.True(t, onSide)
		}
	}
	// 1-2 is not an edge of the Kuhn split, so this is not a face
	_, err = sp.FacetDofs([]int{0, 1, 2})
	assert.Error(t, err)
	_, err = sp.FacetDofs([]int{0, 1})
	assert.Error(t, err)
	{ // At order 1 every facet DOF is a vertex DOF, the facet itself must exist
		rm, err := mesh.NewRectMesh(2, 2, 1, 1, nil)
		require.NoError(t, err)
		rsp, err := NewSpace(rm, 1)
		require.NoError(t, err)
		_, err = rsp.FacetDofs([]int{0, 8})
		assert.Error(t, err)
		for _, be := range rm.BoundaryElements {
			dofs, err := rsp.FacetDofs(be.Nodes)
			require.NoError(t, err)
			assert.Len(t, dofs, 2)
		}
	}
}

func TestElementOperators(t *testing.T) {
	m, err := mesh.NewBoxMesh(2, 2, 2, 1, 2, 3, nil)
	require.NoError(t, err)
	for order := 1; order <= 3; order++ {
		sp, err := NewSpace(m, order)
		require.NoError(t, err)
		Np := sp.Basis.Np
		var (
			u      = make([]float64, sp.NDofs) // linear
			q      = make([]float64, sp.NDofs) // quadratic
			energy float64
			volume float64
		)
		for dof, x := range sp.DofCoords {
			u[dof] = 2*x[0] - x[1] + 0.5*x[2] + 1
			q[dof] = x[0]*x[1] + x[2]
		}
		for k := 0; k < m.NumElements; k++ {
			geo, err := sp.Geometry(k)
			require.NoError(t, err)
			volume += math.Abs(geo.DetJ) / 6
			K := sp.ElementStiffness(geo, 2)
			for i := 0; i < Np; i++ {
				var row float64
				for l := 0; l < Np; l++ {
					row += K[i*Np+l]
					assert.InDelta(t, K[i*Np+l], K[l*Np+i], 1e-12)
					energy += u[sp.ElemDofs[k][i]] * K[i*Np+l] * u[sp.ElemDofs[k][l]]
				}
				assert.InDelta(t, 0, row, 1e-11)
			}
			for _, g := range sp.ElementGradients(k, geo, u) {
				assert.InDelta(t, 2, g[0], 1e-10)
				assert.InDelta(t, -1, g[1], 1e-10)
				assert.InDelta(t, 0.5, g[2], 1e-10)
			}
			if order >= 2 {
				for n, g := range sp.ElementGradients(k, geo, q) {
					x := sp.DofCoords[sp.ElemDofs[k][n]]
					assert.InDelta(t, x[1], g[0], 1e-9)
					assert.InDelta(t, x[0], g[1], 1e-9)
					assert.InDelta(t, 1, g[2], 1e-9)
				}
			}
		}
		assert.InDelta(t, 6, volume, 1e-12)
		// u'Ku = eps |grad u|^2 volume
		assert.InDelta(t, 2*(4+1+0.25)*6, energy, 1e-9)
	}
}

func TestDegenerateElement(t *testing.T) {
	m := mesh.NewMesh()
	m.Dimension = 2
	for i, xy := range [][]float64{{0, 0}, {1, 1}, {2, 2}} {
		m.AddNode(i+1, xy)
	}
	require.NoError(t, m.AddElement(utils.Triangle, 1, []int{0, 1, 2}))
	sp, err := NewSpace(m, 1)
	require.NoError(t, err)
	_, err = sp.Geometry(0)
	assert.Error(t, err)
}
