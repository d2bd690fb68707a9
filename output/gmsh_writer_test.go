package output

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/efield/electrostatics"
	"github.com/notargets/efield/fem"
	"github.com/notargets/efield/mesh"
	"github.com/notargets/efield/utils"
)

func TestWriteMeshRoundTrip(t *testing.T) {
	for _, build := range []func() (*mesh.Mesh, error){
		func() (*mesh.Mesh, error) {
			return mesh.NewBoxMesh(2, 1, 3, 1, 2, 3, func(c []float64) int {
				if c[2] < 1.5 {
					return 1
				}
				return 3
			})
		},
		func() (*mesh.Mesh, error) { return mesh.NewRectMesh(3, 2, 1, 1, nil) },
	} {
		m, err := build()
		require.NoError(t, err)
		fileName := filepath.Join(t.TempDir(), "mesh.msh")
		f, err := os.Create(fileName)
		require.NoError(t, err)
		require.NoError(t, WriteMesh(f, m))
		require.NoError(t, f.Close())

		rm, err := mesh.ReadGmsh22(fileName)
		require.NoError(t, err)
		assert.Equal(t, m.Dimension, rm.Dimension)
		assert.Equal(t, m.NumVertices, rm.NumVertices)
		assert.Equal(t, m.NumElements, rm.NumElements)
		assert.Equal(t, m.Vertices, rm.Vertices)
		assert.Equal(t, m.EtoV, rm.EtoV)
		assert.Equal(t, m.ElementTags, rm.ElementTags)
		assert.Equal(t, m.BoundaryCounts(), rm.BoundaryCounts())
		assert.Equal(t, m.PhysicalNames, rm.PhysicalNames)
		assert.Equal(t, m.NumFaces, rm.NumFaces)
	}
}

func TestWriteMeshUnsupportedElement(t *testing.T) {
	m := mesh.NewMesh()
	m.Dimension = 2
	for i, xy := range [][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}} {
		m.AddNode(i+1, xy)
	}
	require.NoError(t, m.AddElement(utils.Quad, 1, []int{0, 1, 2, 3}))
	assert.Error(t, WriteMesh(io.Discard, m))
}

func TestWriteNodeData(t *testing.T) {
	m, err := mesh.NewRectMesh(2, 1, 2, 1, nil)
	require.NoError(t, err)
	sp, err := fem.NewSpace(m, 2)
	require.NoError(t, err)
	values := make([][]float64, sp.NDofs)
	for dof, x := range sp.DofCoords {
		values[dof] = []float64{x[0] + 10*x[1]}
	}
	var buf bytes.Buffer
	require.NoError(t, WriteNodeData(&buf, sp, "V", values))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "$NodeData", lines[0])
	assert.Equal(t, `"V"`, lines[2])
	// component count, then sample count
	assert.Equal(t, "1", lines[7])
	assert.Equal(t, strconv.Itoa(m.NumVertices), lines[8])
	assert.Equal(t, "$EndNodeData", lines[len(lines)-1])
	samples := lines[9 : len(lines)-1]
	require.Len(t, samples, m.NumVertices)
	for v, line := range samples {
		fields := strings.Fields(line)
		require.Len(t, fields, 2)
		assert.Equal(t, strconv.Itoa(v+1), fields[0])
		val, err := strconv.ParseFloat(fields[1], 64)
		require.NoError(t, err)
		assert.Equal(t, m.Vertices[v][0]+10*m.Vertices[v][1], val)
	}

	assert.Error(t, WriteNodeData(io.Discard, sp, "short", values[1:]))
	pairs := make([][]float64, sp.NDofs)
	for i := range pairs {
		pairs[i] = []float64{1, 2}
	}
	assert.Error(t, WriteNodeData(io.Discard, sp, "pairs", pairs))
}

func TestSaveResult(t *testing.T) {
	m, err := mesh.NewBoxMesh(2, 2, 2, 1, 1, 1, nil)
	require.NoError(t, err)
	r, err := electrostatics.Solve(m,
		[]electrostatics.Material{{Name: "vacuum", Permittivity: 1}},
		[]electrostatics.Boundary{
			{Name: "Cathode", SurfaceID: mesh.SurfaceZMin, Kind: utils.BCDirichlet, Value: 0},
			{Name: "Anode", SurfaceID: mesh.SurfaceZMax, Kind: utils.BCDirichlet, Value: 2},
		},
		electrostatics.SolverParameters{Order: 2, RelTol: 1e-12, MaxIter: 1000, Out: io.Discard})
	require.NoError(t, err)
	dir := t.TempDir()
	paths := Paths{
		Mesh: filepath.Join(dir, "mesh.msh"),
		V:    filepath.Join(dir, "V.msh"),
		E:    filepath.Join(dir, "E.msh"),
		Emag: filepath.Join(dir, "Emag.msh"),
	}
	require.NoError(t, SaveResult(r, paths))
	for _, fileName := range []string{paths.Mesh, paths.V, paths.E, paths.Emag} {
		rm, err := mesh.ReadGmsh22(fileName)
		require.NoError(t, err, fileName)
		assert.Equal(t, m.NumElements, rm.NumElements)
	}
	{ // The field file carries the 3 component view
		f, err := os.Open(paths.E)
		require.NoError(t, err)
		defer f.Close()
		var (
			scanner = bufio.NewScanner(f)
			inData  bool
			header  []string
		)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "$NodeData" {
				inData = true
				continue
			}
			if inData && len(header) < 8 {
				header = append(header, line)
			}
		}
		require.Len(t, header, 8)
		assert.Equal(t, `"E"`, header[1])
		assert.Equal(t, "3", header[6])
	}
	{ // Empty paths are skipped
		dir := t.TempDir()
		require.NoError(t, SaveResult(r, Paths{V: filepath.Join(dir, "V.msh")}))
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	}
}
