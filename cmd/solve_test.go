package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/efield/electrostatics"
	"github.com/notargets/efield/mesh"
)

const unitSquareSU2 = `NDIME= 2
NELEM= 2
5 0 1 2 0
5 0 2 3 1
NPOIN= 4
0 0 0
1 0 1
1 1 2
0 1 3
NMARK= 2
MARKER_TAG= bottom
MARKER_ELEMS= 1
3 0 1
MARKER_TAG= top
MARKER_ELEMS= 1
3 2 3
`

func writeDeck(t *testing.T, dir, body string) string {
	deck := fmt.Sprintf(`%s
solver:
  order: 2
  atol: 0
  rtol: 1.0e-12
  printlevel: 0
  mesh_save_path: %s
  V_solution_path: %s
  E_solution_path: %s
  Emag_solution_path: %s
`, body, filepath.Join(dir, "mesh.msh"), filepath.Join(dir, "V.msh"),
		filepath.Join(dir, "E.msh"), filepath.Join(dir, "Emag.msh"))
	fileName := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(fileName, []byte(deck), 0644))
	return fileName
}

func TestRunSolveQuickMesh(t *testing.T) {
	dir := t.TempDir()
	mes := &ModelES{InputFile: writeDeck(t, dir, `
debug: {debug: true, quick_mesh: true}
device: {threads: 3}
materials:
  vacuum: {epsilon_r: 1}
boundaries:
  bottom: {bdr_id: 5, value: 0}
  top:    {bdr_id: 6, value: 1}
`)}
	var buf bytes.Buffer
	require.NoError(t, RunSolve(mes, &buf))
	out := buf.String()
	assert.Contains(t, out, "[Geometry] Loaded mesh with 384 elements and 6 boundary attributes.")
	assert.Contains(t, out, "Boundary ids (max=6): 1 2 3 4 5 6")
	for _, name := range []string{"mesh.msh", "V.msh", "E.msh", "Emag.msh"} {
		m, err := mesh.ReadGmsh22(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Equal(t, 384, m.NumElements)
	}
}

func TestRunSolveSU2(t *testing.T) {
	dir := t.TempDir()
	meshFile := filepath.Join(dir, "square.su2")
	require.NoError(t, os.WriteFile(meshFile, []byte(unitSquareSU2), 0644))
	mes := &ModelES{
		InputFile: writeDeck(t, dir, `
mesh: {path: does-not-exist.msh}
materials:
  vacuum: {}
boundaries:
  bottom: {bdr_id: 1, value: 0}
  top:    {bdr_id: 2, type: essential, value: 1}
`),
		MeshFile: meshFile,
		Threads:  2,
	}
	var buf bytes.Buffer
	require.NoError(t, RunSolve(mes, &buf))
	assert.Contains(t, buf.String(), "[Geometry] Loaded mesh with 2 elements and 2 boundary attributes.")
	_, err := os.Stat(filepath.Join(dir, "Emag.msh"))
	assert.NoError(t, err)
}

func TestRunSolveErrors(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, RunSolve(&ModelES{InputFile: filepath.Join(dir, "missing.yaml")}, &bytes.Buffer{}))

	mes := &ModelES{InputFile: writeDeck(t, dir, `
debug: {quick_mesh: true}
materials:
  vacuum: {}
boundaries:
  wall: {bdr_id: 1, type: neumann}
`)}
	err := RunSolve(mes, &bytes.Buffer{})
	assert.True(t, errors.Is(err, electrostatics.ErrSingularSystem))

	mes = &ModelES{InputFile: writeDeck(t, dir, `
debug: {quick_mesh: true}
materials:
  vacuum: {}
boundaries:
  far: {bdr_id: 9}
`)}
	var cre *electrostatics.ConfigRangeError
	assert.True(t, errors.As(RunSolve(mes, &bytes.Buffer{}), &cre))
}

func TestRunWritesProfileOnError(t *testing.T) {
	dir := t.TempDir()
	mes := &ModelES{
		InputFile:  filepath.Join(dir, "missing.yaml"),
		Profile:    true,
		ProfileDir: dir,
	}
	assert.Error(t, mes.Run(&bytes.Buffer{}))
	assert.FileExists(t, filepath.Join(dir, "cpu.pprof"))
}

func TestWriteBoxMesh(t *testing.T) {
	dir := t.TempDir()
	for _, dim := range []int{2, 3} {
		fileName := filepath.Join(dir, fmt.Sprintf("box%d.msh", dim))
		require.NoError(t, WriteBoxMesh(fileName, dim, 3, 2))
		m, err := mesh.ReadGmsh22(fileName)
		require.NoError(t, err)
		assert.Equal(t, dim, m.Dimension)
		assert.Len(t, m.SurfaceIDs(), 2*dim)
	}
	assert.Error(t, WriteBoxMesh(filepath.Join(dir, "bad.msh"), 4, 3, 2))
	assert.Error(t, WriteBoxMesh(filepath.Join(dir, "bad.msh"), 3, 0, 2))
}
