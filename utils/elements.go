package utils

// ElementType represents the finite element shapes a mesh file can carry
type ElementType int

const (
	Unknown ElementType = iota
	// 0D elements
	Point
	// 1D elements
	Line
	Line3 // 3-node line (quadratic)
	// 2D elements
	Triangle
	Quad
	Triangle6 // 6-node triangle (quadratic)
	// 3D elements
	Tet
	Hex
	Prism
	Pyramid
	Tet10 // 10-node tetrahedron (quadratic)
)

func (e ElementType) String() string {
	names := []string{
		"Unknown",
		"Point",
		"Line", "Line3",
		"Triangle", "Quad", "Triangle6",
		"Tet", "Hex", "Prism", "Pyramid", "Tet10",
	}
	if int(e) < len(names) {
		return names[e]
	}
	return "Invalid"
}

// GetDimension returns the spatial dimension of the element
func (e ElementType) GetDimension() int {
	switch e {
	case Point:
		return 0
	case Line, Line3:
		return 1
	case Triangle, Quad, Triangle6:
		return 2
	case Tet, Hex, Prism, Pyramid, Tet10:
		return 3
	default:
		return -1
	}
}

// GetNumNodes returns the number of nodes for each element type
func (e ElementType) GetNumNodes() int {
	switch e {
	case Point:
		return 1
	case Line:
		return 2
	case Line3, Triangle:
		return 3
	case Quad, Tet:
		return 4
	case Pyramid:
		return 5
	case Triangle6, Prism:
		return 6
	case Hex:
		return 8
	case Tet10:
		return 10
	default:
		return 0
	}
}

// IsLinearSimplex reports whether the element is a straight-sided simplex, the
// only shape the H1 space is built on
func (e ElementType) IsLinearSimplex() bool {
	switch e {
	case Point, Line, Triangle, Tet:
		return true
	}
	return false
}

// SimplexOfDimension returns the linear simplex type spanning dim dimensions
func SimplexOfDimension(dim int) ElementType {
	switch dim {
	case 0:
		return Point
	case 1:
		return Line
	case 2:
		return Triangle
	case 3:
		return Tet
	}
	return Unknown
}

// GetSimplexFacets returns the facets of a linear simplex as vertex lists.
// Facet i is the facet opposite local vertex i.
func GetSimplexFacets(elemType ElementType, vertices []int) [][]int {
	v := vertices
	switch elemType {
	case Line:
		return [][]int{{v[1]}, {v[0]}}
	case Triangle:
		return [][]int{
			{v[1], v[2]},
			{v[2], v[0]},
			{v[0], v[1]},
		}
	case Tet:
		return [][]int{
			{v[1], v[2], v[3]},
			{v[0], v[3], v[2]},
			{v[0], v[1], v[3]},
			{v[0], v[2], v[1]},
		}
	default:
		return [][]int{}
	}
}
