package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/notargets/efield/electrostatics"
	"github.com/notargets/efield/fem"
	"github.com/notargets/efield/mesh"
	"github.com/notargets/efield/utils"
)

// Gmsh 2.2 element type numbers for the element types the reader accepts
var gmshType22 = map[utils.ElementType]int{
	utils.Point:    15,
	utils.Line:     1,
	utils.Triangle: 2,
	utils.Tet:      4,
}

// WriteMesh writes m as an ASCII Gmsh 2.2 file: volume elements carry their
// region id, boundary facets their surface id, both as physical and
// elementary tag. Node ids are 1-based vertex indices.
func WriteMesh(w io.Writer, m *mesh.Mesh) (err error) {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "$MeshFormat\n2.2 0 8\n$EndMeshFormat\n")
	if len(m.PhysicalNames) > 0 {
		tags := make([]int, 0, len(m.PhysicalNames))
		for tag := range m.PhysicalNames {
			tags = append(tags, tag)
		}
		sort.Ints(tags)
		dims := physicalDims(m)
		fmt.Fprintf(bw, "$PhysicalNames\n%d\n", len(tags))
		for _, tag := range tags {
			dim, ok := dims[tag]
			if !ok {
				dim = m.Dimension - 1
			}
			fmt.Fprintf(bw, "%d %d \"%s\"\n", dim, tag, m.PhysicalNames[tag])
		}
		fmt.Fprintf(bw, "$EndPhysicalNames\n")
	}
	fmt.Fprintf(bw, "$Nodes\n%d\n", m.NumVertices)
	for i, xyz := range m.Vertices {
		fmt.Fprintf(bw, "%d %s %s %s\n", i+1, ftoa(xyz[0]), ftoa(xyz[1]), ftoa(xyz[2]))
	}
	fmt.Fprintf(bw, "$EndNodes\n")
	fmt.Fprintf(bw, "$Elements\n%d\n", len(m.BoundaryElements)+m.NumElements)
	id := 1
	writeElement := func(et utils.ElementType, tag int, verts []int) error {
		gt, ok := gmshType22[et]
		if !ok {
			return fmt.Errorf("element type %s has no Gmsh 2.2 equivalent", et)
		}
		fmt.Fprintf(bw, "%d %d 2 %d %d", id, gt, tag, tag)
		for _, v := range verts {
			fmt.Fprintf(bw, " %d", v+1)
		}
		fmt.Fprintln(bw)
		id++
		return nil
	}
	for _, be := range m.BoundaryElements {
		if err = writeElement(be.ElementType, be.SurfaceID, be.Nodes); err != nil {
			return
		}
	}
	for k, verts := range m.EtoV {
		if err = writeElement(m.ElementTypes[k], m.ElementTags[k], verts); err != nil {
			return
		}
	}
	fmt.Fprintf(bw, "$EndElements\n")
	return bw.Flush()
}

// ftoa is the shortest representation that reads back to the same float64
func ftoa(x float64) string { return strconv.FormatFloat(x, 'g', -1, 64) }

func physicalDims(m *mesh.Mesh) map[int]int {
	dims := make(map[int]int)
	for _, r := range m.RegionIDs() {
		dims[r] = m.Dimension
	}
	// PhysicalNames is keyed by tag alone, surfaces win a shared tag
	for _, s := range m.SurfaceIDs() {
		dims[s] = m.Dimension - 1
	}
	return dims
}

// WriteNodeData appends a $NodeData block sampling a DOF field at the mesh
// vertices. values is indexed [dof][component]; vertices no element uses get
// zeros.
func WriteNodeData(w io.Writer, sp *fem.Space, name string, values [][]float64) error {
	if len(values) != sp.NDofs {
		return fmt.Errorf("field %q has %d values, space has %d DOFs", name, len(values), sp.NDofs)
	}
	nc := 1
	if len(values) > 0 {
		nc = len(values[0])
	}
	if nc != 1 && nc != 3 {
		return fmt.Errorf("field %q has %d components, Gmsh node data needs 1 or 3", name, nc)
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "$NodeData\n1\n\"%s\"\n1\n0.0\n3\n0\n%d\n%d\n", name, nc, sp.Mesh.NumVertices)
	zero := make([]float64, nc)
	for v, dof := range sp.VertexDof {
		vals := zero
		if dof >= 0 {
			vals = values[dof]
		}
		fmt.Fprintf(bw, "%d", v+1)
		for _, x := range vals {
			fmt.Fprintf(bw, " %s", ftoa(x))
		}
		fmt.Fprintln(bw)
	}
	fmt.Fprintf(bw, "$EndNodeData\n")
	return bw.Flush()
}

// WriteFieldFile writes the mesh followed by one field's node data
func WriteFieldFile(filename string, sp *fem.Space, f electrostatics.Field) (err error) {
	var file *os.File
	if file, err = os.Create(filename); err != nil {
		return
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	if err = WriteMesh(file, sp.Mesh); err != nil {
		return
	}
	return WriteNodeData(file, sp, f.Name, f.Values)
}

// Paths maps the outputs of a solve to file names, empty names are skipped
type Paths struct {
	Mesh, V, E, Emag string
}

// SaveResult writes the mesh and the three solution fields
func SaveResult(r *electrostatics.Result, paths Paths) (err error) {
	if paths.Mesh != "" {
		var file *os.File
		if file, err = os.Create(paths.Mesh); err != nil {
			return
		}
		err = WriteMesh(file, r.Space.Mesh)
		if cerr := file.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return
		}
	}
	target := map[string]string{"V": paths.V, "E": paths.E, "Emag": paths.Emag}
	for _, f := range r.Fields() {
		if target[f.Name] == "" {
			continue
		}
		if err = WriteFieldFile(target[f.Name], r.Space, f); err != nil {
			return fmt.Errorf("writing %s: %w", f.Name, err)
		}
	}
	return
}
