package fem

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/notargets/efield/mesh"
	"github.com/notargets/efield/utils"
)

// Space is the continuous order p Lagrange space over a simplex mesh. A
// degree of freedom sits on every lattice node of every element; nodes shared
// between elements are identified through the mesh vertices they are built
// from, so neighboring elements see the same global DOF.
//
// Numbering: the vertex DOFs come first, in vertex order, then the edge, face
// and interior DOFs in order of first appearance in the element loop.
type Space struct {
	Mesh      *mesh.Mesh
	Basis     *LagrangeBasis
	NDofs     int
	ElemDofs  [][]int     // [K][Np] local to global map
	DofCoords [][]float64 // [NDofs][3] physical position of every DOF
	VertexDof []int       // [NumVertices] global DOF of a vertex, -1 if no element uses it
	dofKeys   map[string]int
	faces     map[string]struct{} // element faces by mesh.FaceKey
}

// NewSpace builds the order p space on m. Every element must be the linear
// simplex matching the mesh dimension.
func NewSpace(m *mesh.Mesh, order int) (sp *Space, err error) {
	if m.NumElements == 0 {
		return nil, fmt.Errorf("mesh has no elements")
	}
	simplex := utils.SimplexOfDimension(m.Dimension)
	for k, et := range m.ElementTypes {
		if et != simplex {
			return nil, fmt.Errorf("element %d is a %s, a %d dimensional mesh needs %s elements",
				k, et, m.Dimension, simplex)
		}
	}
	sp = &Space{
		Mesh:     m,
		ElemDofs: make([][]int, m.NumElements),
		dofKeys:  make(map[string]int),
		faces:    make(map[string]struct{}),
	}
	if sp.Basis, err = NewLagrangeBasis(m.Dimension, order); err != nil {
		return nil, err
	}

	// Vertex DOFs first
	sp.VertexDof = make([]int, m.NumVertices)
	for i := range sp.VertexDof {
		sp.VertexDof[i] = -1
	}
	for _, verts := range m.EtoV {
		for _, v := range verts {
			sp.VertexDof[v] = 0
		}
	}
	for v, used := range sp.VertexDof {
		if used == 0 {
			sp.VertexDof[v] = sp.NDofs
			sp.dofKeys[latticeKey([]int{v}, []int{order})] = sp.NDofs
			sp.DofCoords = append(sp.DofCoords, append([]float64{}, m.Vertices[v]...))
			sp.NDofs++
		}
	}

	for k, verts := range m.EtoV {
		for _, f := range utils.GetSimplexFacets(m.ElementTypes[k], verts) {
			sp.faces[mesh.FaceKey(f)] = struct{}{}
		}
		sp.ElemDofs[k] = make([]int, sp.Basis.Np)
		for n, a := range sp.Basis.Lattice {
			key := latticeKey(verts, a)
			dof, ok := sp.dofKeys[key]
			if !ok {
				dof = sp.NDofs
				sp.dofKeys[key] = dof
				sp.DofCoords = append(sp.DofCoords, sp.latticePoint(verts, a))
				sp.NDofs++
			}
			sp.ElemDofs[k][n] = dof
		}
	}
	return
}

// Order is the polynomial order of the space
func (sp *Space) Order() int { return sp.Basis.Order }

// FacetDofs returns the global DOFs lying on the closure of a boundary facet,
// given its vertices. The facet must be a face of some element.
func (sp *Space) FacetDofs(facet []int) (dofs []int, err error) {
	if len(facet) != sp.Mesh.Dimension {
		return nil, fmt.Errorf("facet %v has %d vertices, a %d dimensional mesh needs %d",
			facet, len(facet), sp.Mesh.Dimension, sp.Mesh.Dimension)
	}
	if _, ok := sp.faces[mesh.FaceKey(facet)]; !ok {
		return nil, fmt.Errorf("facet %v is not a face of any element", facet)
	}
	for _, a := range MultiIndices(len(facet), sp.Basis.Order) {
		dofs = append(dofs, sp.dofKeys[latticeKey(facet, a)])
	}
	sort.Ints(dofs)
	return
}

func (sp *Space) latticePoint(verts, a []int) []float64 {
	x := make([]float64, 3)
	p := float64(sp.Basis.Order)
	for i, v := range verts {
		if a[i] == 0 {
			continue
		}
		w := float64(a[i]) / p
		for d := 0; d < 3; d++ {
			x[d] += w * sp.Mesh.Vertices[v][d]
		}
	}
	return x
}

// latticeKey identifies a lattice node by the (vertex, weight) pairs with
// non-zero weight, sorted by vertex
func latticeKey(verts, a []int) string {
	type pair struct{ v, w int }
	pairs := make([]pair, 0, len(verts))
	for i, v := range verts {
		if a[i] != 0 {
			pairs = append(pairs, pair{v, a[i]})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].v < pairs[j].v })
	var sb strings.Builder
	for i, pr := range pairs {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(strconv.Itoa(pr.v))
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(pr.w))
	}
	return sb.String()
}
