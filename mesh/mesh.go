package mesh

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/notargets/efield/utils"
)

// Face represents a face of an element
type Face struct {
	Vertices []int // Sorted vertex indices
	Element  int   // Parent element
	LocalID  int   // Local face ID within element
}

// BoundaryElement is a tagged facet on the mesh boundary
type BoundaryElement struct {
	ElementType utils.ElementType
	Nodes       []int // Vertex indices (0-based, into Mesh.Vertices)
	SurfaceID   int   // Physical tag of the surface the facet belongs to
}

// Mesh is an unstructured simplex mesh. Elements carry a region id (the
// physical tag of the volume they belong to), boundary facets carry a surface
// id. Once loaded it is treated as read only.
type Mesh struct {
	Dimension int

	// Geometry
	Vertices [][]float64 // Vertex coordinates [nvertices][3]

	// Element data
	EtoV         [][]int             // Element to vertex connectivity [nelems][nverts_per_elem]
	ElementTypes []utils.ElementType // Element type for each element
	ElementTags  []int               // Region id for each element

	BoundaryElements []BoundaryElement
	PhysicalNames    map[int]string // Physical tag -> name, from the mesh file

	// Connectivity (built by BuildConnectivity)
	EToE    [][]int        // Element to element connectivity, -1 on the boundary
	EToF    [][]int        // Neighbor's local face index, -1 on the boundary
	Faces   []Face         // All unique faces in mesh
	FaceMap map[string]int // Map from sorted vertex string to face ID

	// File node ID -> array index
	NodeIDMap map[int]int

	FormatVersion string

	NumElements int
	NumVertices int
	NumFaces    int
}

func NewMesh() *Mesh {
	return &Mesh{
		PhysicalNames: make(map[int]string),
		FaceMap:       make(map[string]int),
		NodeIDMap:     make(map[int]int),
	}
}

// AddNode appends a vertex carrying the file's node ID
func (m *Mesh) AddNode(nodeID int, coords []float64) {
	xyz := make([]float64, 3)
	copy(xyz, coords)
	m.NodeIDMap[nodeID] = len(m.Vertices)
	m.Vertices = append(m.Vertices, xyz)
	m.NumVertices = len(m.Vertices)
}

// GetNodeIndex maps a file node ID to the vertex array index
func (m *Mesh) GetNodeIndex(nodeID int) (idx int, ok bool) {
	idx, ok = m.NodeIDMap[nodeID]
	return
}

// AddElement appends a volume element given vertex indices
func (m *Mesh) AddElement(etype utils.ElementType, regionID int, verts []int) error {
	if len(verts) != etype.GetNumNodes() {
		return fmt.Errorf("element of type %s needs %d vertices, got %d",
			etype, etype.GetNumNodes(), len(verts))
	}
	for _, v := range verts {
		if v < 0 || v >= len(m.Vertices) {
			return fmt.Errorf("element vertex %d out of range [0,%d)", v, len(m.Vertices))
		}
	}
	m.EtoV = append(m.EtoV, verts)
	m.ElementTypes = append(m.ElementTypes, etype)
	m.ElementTags = append(m.ElementTags, regionID)
	m.NumElements = len(m.EtoV)
	return nil
}

func (m *Mesh) AddBoundaryElement(be BoundaryElement) {
	m.BoundaryElements = append(m.BoundaryElements, be)
}

// RegionIDs returns the sorted, unique region ids carried by the elements
func (m *Mesh) RegionIDs() []int {
	return uniqueSorted(m.ElementTags)
}

// SurfaceIDs returns the sorted, unique surface ids carried by boundary facets
func (m *Mesh) SurfaceIDs() []int {
	tags := make([]int, len(m.BoundaryElements))
	for i, be := range m.BoundaryElements {
		tags[i] = be.SurfaceID
	}
	return uniqueSorted(tags)
}

func (m *Mesh) MaxRegionID() int {
	ids := m.RegionIDs()
	if len(ids) == 0 {
		return 0
	}
	return ids[len(ids)-1]
}

func (m *Mesh) MaxSurfaceID() int {
	ids := m.SurfaceIDs()
	if len(ids) == 0 {
		return 0
	}
	return ids[len(ids)-1]
}

// BoundaryCounts returns the number of boundary facets per surface id
func (m *Mesh) BoundaryCounts() map[int]int {
	counts := make(map[int]int)
	for _, be := range m.BoundaryElements {
		counts[be.SurfaceID]++
	}
	return counts
}

// BuildConnectivity builds element-to-element and face connectivity
func (m *Mesh) BuildConnectivity() {
	m.EToE = make([][]int, m.NumElements)
	m.EToF = make([][]int, m.NumElements)
	m.Faces = m.Faces[:0]
	m.FaceMap = make(map[string]int)

	for elemID := 0; elemID < m.NumElements; elemID++ {
		faceVertices := utils.GetSimplexFacets(m.ElementTypes[elemID], m.EtoV[elemID])

		m.EToE[elemID] = make([]int, len(faceVertices))
		m.EToF[elemID] = make([]int, len(faceVertices))
		for i := range m.EToE[elemID] {
			m.EToE[elemID][i] = -1
			m.EToF[elemID][i] = -1
		}

		for localFaceID, faceVerts := range faceVertices {
			key := FaceKey(faceVerts)
			if faceID, exists := m.FaceMap[key]; exists {
				// Face already exists - this is an interior face
				face := &m.Faces[faceID]
				neighborElem := face.Element
				neighborLocalID := face.LocalID

				m.EToE[elemID][localFaceID] = neighborElem
				m.EToE[neighborElem][neighborLocalID] = elemID

				m.EToF[elemID][localFaceID] = neighborLocalID
				m.EToF[neighborElem][neighborLocalID] = localFaceID
			} else {
				sorted := make([]int, len(faceVerts))
				copy(sorted, faceVerts)
				sort.Ints(sorted)
				m.FaceMap[key] = len(m.Faces)
				m.Faces = append(m.Faces, Face{
					Vertices: sorted,
					Element:  elemID,
					LocalID:  localFaceID,
				})
			}
		}
	}
	m.NumFaces = len(m.Faces)
}

// ExteriorFaces returns the faces that have no neighbor, BuildConnectivity
// must have been called
func (m *Mesh) ExteriorFaces() (faces []Face) {
	for _, f := range m.Faces {
		if m.EToE[f.Element][f.LocalID] == -1 {
			faces = append(faces, f)
		}
	}
	return
}

// PrintStatistics writes mesh statistics, including the boundary facet
// count of every surface id
func (m *Mesh) PrintStatistics(w io.Writer) {
	fmt.Fprintf(w, "Mesh Statistics:\n")
	fmt.Fprintf(w, "  Dimension: %d\n", m.Dimension)
	fmt.Fprintf(w, "  Vertices: %d\n", m.NumVertices)
	fmt.Fprintf(w, "  Elements: %d\n", m.NumElements)
	fmt.Fprintf(w, "  Boundary elements: %d\n", len(m.BoundaryElements))
	fmt.Fprintf(w, "  Region ids: %s\n", joinInts(m.RegionIDs()))
	surfaces := m.SurfaceIDs()
	fmt.Fprintf(w, "  Boundary ids (max=%d): %s\n", m.MaxSurfaceID(), joinInts(surfaces))
	counts := m.BoundaryCounts()
	for _, s := range surfaces {
		name := m.PhysicalNames[s]
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(w, "    surface %4d %-20s facets = %d\n", s, name, counts[s])
	}
}

// FaceKey is the lookup key of a face, independent of vertex order
func FaceKey(verts []int) string {
	sorted := make([]int, len(verts))
	copy(sorted, verts)
	sort.Ints(sorted)
	var sb strings.Builder
	for i, v := range sorted {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(v))
	}
	return sb.String()
}

func uniqueSorted(vals []int) (out []int) {
	seen := make(map[int]bool, 8)
	for _, v := range vals {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return
}

func joinInts(vals []int) string {
	s := make([]string, len(vals))
	for i, v := range vals {
		s[i] = strconv.Itoa(v)
	}
	return strings.Join(s, " ")
}
