package mesh

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/notargets/efield/utils"
)

// gmshElementType22 maps Gmsh 2.2 element type numbers to our ElementType
var gmshElementType22 = map[int]utils.ElementType{
	1:  utils.Line,      // 2-node line
	2:  utils.Triangle,  // 3-node triangle
	3:  utils.Quad,      // 4-node quadrangle
	4:  utils.Tet,       // 4-node tetrahedron
	5:  utils.Hex,       // 8-node hexahedron
	6:  utils.Prism,     // 6-node prism
	7:  utils.Pyramid,   // 5-node pyramid
	8:  utils.Line3,     // 3-node line
	9:  utils.Triangle6, // 6-node triangle
	11: utils.Tet10,     // 10-node tetrahedron
	15: utils.Point,     // 1-node point
}

// ReadMeshFile reads a mesh file based on extension
func ReadMeshFile(filename string) (*Mesh, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".msh":
		return ReadGmsh22(filename)
	case ".su2":
		return ReadSU2(filename)
	default:
		return nil, fmt.Errorf("unsupported mesh format: %s", ext)
	}
}

type rawElement struct {
	id    int
	etype utils.ElementType
	tags  []int
	nodes []int // file node IDs
}

// ReadGmsh22 reads a Gmsh MSH file in ASCII format version 2.2. The elements
// of the highest dimension become volume elements tagged with their physical
// tag (the region id), the elements one dimension lower become boundary
// facets tagged with their physical tag (the surface id).
func ReadGmsh22(filename string) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	// Increase scanner buffer for large files
	const maxScanTokenSize = 1024 * 1024 * 10 // 10MB
	scanner.Buffer(make([]byte, 64*1024), maxScanTokenSize)

	msh := NewMesh()
	var raw []rawElement

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch line {
		case "$MeshFormat":
			if err = readMeshFormat22(scanner, msh); err != nil {
				return nil, err
			}
		case "$PhysicalNames":
			if err = readPhysicalNames(scanner, msh); err != nil {
				return nil, err
			}
		case "$Nodes":
			if err = readNodes22(scanner, msh); err != nil {
				return nil, err
			}
		case "$Elements":
			if raw, err = readElements22(scanner); err != nil {
				return nil, err
			}
		default:
			if strings.HasPrefix(line, "$") && !strings.HasPrefix(line, "$End") {
				// Skip sections we do not use ($Periodic, $NodeData, ...)
				endMarker := "$End" + line[1:]
				for scanner.Scan() {
					if strings.TrimSpace(scanner.Text()) == endMarker {
						break
					}
				}
			}
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %v", err)
	}
	if msh.FormatVersion == "" {
		return nil, fmt.Errorf("%s: no $MeshFormat section found", filename)
	}
	if err = msh.classifyElements(raw); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	msh.BuildConnectivity()
	return msh, nil
}

func readMeshFormat22(scanner *bufio.Scanner, msh *Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in MeshFormat")
	}
	parts := strings.Fields(scanner.Text())
	if len(parts) < 3 {
		return fmt.Errorf("invalid MeshFormat line")
	}
	if !strings.HasPrefix(parts[0], "2.") {
		return fmt.Errorf("unsupported Gmsh format version: %s (export the mesh as version 2.2)", parts[0])
	}
	if parts[1] != "0" {
		return fmt.Errorf("binary Gmsh files are not supported, export the mesh as ASCII")
	}
	msh.FormatVersion = parts[0]
	return skipTo(scanner, "$EndMeshFormat")
}

// readPhysicalNames reads physical group names
func readPhysicalNames(scanner *bufio.Scanner, msh *Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in PhysicalNames")
	}
	numNames, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return fmt.Errorf("invalid PhysicalNames count: %v", err)
	}
	if numNames < 0 {
		return fmt.Errorf("invalid PhysicalNames count: %d", numNames)
	}
	for i := 0; i < numNames; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading physical names")
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) < 3 {
			continue
		}
		tag, err := strconv.Atoi(parts[1])
		if err != nil {
			return fmt.Errorf("physical name %d: invalid tag: %v", i, err)
		}
		// Join remaining parts if name contains spaces
		name := strings.Trim(strings.Join(parts[2:], " "), "\"")
		msh.PhysicalNames[tag] = name
	}
	return skipTo(scanner, "$EndPhysicalNames")
}

func readNodes22(scanner *bufio.Scanner, msh *Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Nodes")
	}
	numNodes, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return fmt.Errorf("invalid node count: %v", err)
	}
	if numNodes < 0 {
		return fmt.Errorf("invalid node count: %d", numNodes)
	}
	msh.Vertices = make([][]float64, 0, numNodes)
	for i := 0; i < numNodes; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading nodes")
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) < 4 {
			return fmt.Errorf("invalid node line: %s", scanner.Text())
		}
		nodeID, err := strconv.Atoi(parts[0])
		if err != nil {
			return fmt.Errorf("invalid node id %q", parts[0])
		}
		var xyz [3]float64
		for j := 0; j < 3; j++ {
			if xyz[j], err = strconv.ParseFloat(parts[1+j], 64); err != nil {
				return fmt.Errorf("node %d: invalid coordinate %q", nodeID, parts[1+j])
			}
		}
		msh.AddNode(nodeID, xyz[:])
	}
	return skipTo(scanner, "$EndNodes")
}

func readElements22(scanner *bufio.Scanner) (raw []rawElement, err error) {
	if !scanner.Scan() {
		return nil, fmt.Errorf("unexpected EOF in Elements")
	}
	numElements, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return nil, fmt.Errorf("invalid element count: %v", err)
	}
	if numElements < 0 {
		return nil, fmt.Errorf("invalid element count: %d", numElements)
	}
	raw = make([]rawElement, 0, numElements)
	for i := 0; i < numElements; i++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("unexpected EOF reading elements")
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) < 3 {
			return nil, fmt.Errorf("invalid element line: %s", scanner.Text())
		}
		elemID, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid element id: %v", err)
		}
		gmshType, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("element %d: invalid element type: %v", elemID, err)
		}
		numTags, err := strconv.Atoi(parts[2])
		if err != nil {
			return nil, fmt.Errorf("element %d: invalid number of tags: %v", elemID, err)
		}
		if numTags < 0 || len(parts) < 3+numTags {
			return nil, fmt.Errorf("element %d: invalid element tags", elemID)
		}
		etype, ok := gmshElementType22[gmshType]
		if !ok {
			return nil, fmt.Errorf("element %d: unsupported Gmsh element type %d", elemID, gmshType)
		}
		tags := make([]int, numTags)
		for j := 0; j < numTags; j++ {
			if tags[j], err = strconv.Atoi(parts[3+j]); err != nil {
				return nil, fmt.Errorf("element %d: invalid tag: %v", elemID, err)
			}
		}
		nodeStart := 3 + numTags
		expectedNodes := etype.GetNumNodes()
		if len(parts) < nodeStart+expectedNodes {
			return nil, fmt.Errorf("element %d: expected %d nodes, got %d",
				elemID, expectedNodes, len(parts)-nodeStart)
		}
		nodes := make([]int, expectedNodes)
		for j := 0; j < expectedNodes; j++ {
			if nodes[j], err = strconv.Atoi(parts[nodeStart+j]); err != nil {
				return nil, fmt.Errorf("element %d: invalid node id: %v", elemID, err)
			}
		}
		raw = append(raw, rawElement{id: elemID, etype: etype, tags: tags, nodes: nodes})
	}
	return raw, skipTo(scanner, "$EndElements")
}

// classifyElements splits the raw elements into volume elements and boundary
// facets once the mesh dimension is known
func (m *Mesh) classifyElements(raw []rawElement) error {
	for _, re := range raw {
		if d := re.etype.GetDimension(); d > m.Dimension {
			m.Dimension = d
		}
	}
	for _, re := range raw {
		dim := re.etype.GetDimension()
		if dim < m.Dimension-1 {
			continue
		}
		var physicalTag int
		if len(re.tags) > 0 {
			physicalTag = re.tags[0]
		}
		if !re.etype.IsLinearSimplex() {
			return fmt.Errorf("element %d: element type %s is not supported, only linear simplices",
				re.id, re.etype)
		}
		verts := make([]int, len(re.nodes))
		for j, nodeID := range re.nodes {
			idx, ok := m.GetNodeIndex(nodeID)
			if !ok {
				return fmt.Errorf("element %d references unknown node %d", re.id, nodeID)
			}
			verts[j] = idx
		}
		if dim == m.Dimension {
			if physicalTag <= 0 {
				return fmt.Errorf("element %d has no positive physical tag (region id)", re.id)
			}
			if err := m.AddElement(re.etype, physicalTag, verts); err != nil {
				return fmt.Errorf("element %d: %w", re.id, err)
			}
			continue
		}
		// Untagged facets are left out: they are natural boundaries
		if physicalTag <= 0 {
			continue
		}
		m.AddBoundaryElement(BoundaryElement{
			ElementType: re.etype,
			Nodes:       verts,
			SurfaceID:   physicalTag,
		})
	}
	return nil
}

func skipTo(scanner *bufio.Scanner, endMarker string) error {
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == endMarker {
			return nil
		}
	}
	return fmt.Errorf("missing %s", endMarker)
}
