package mesh

import (
	"fmt"

	"github.com/notargets/efield/utils"
)

// RegionFunc assigns a region id from an element centroid
type RegionFunc func(centroid []float64) int

// Surface ids of the structured generators
const (
	SurfaceXMin = 1 + iota
	SurfaceXMax
	SurfaceYMin
	SurfaceYMax
	SurfaceZMin
	SurfaceZMax
)

// NewBoxMesh builds a structured tetrahedral mesh of [0,lx]x[0,ly]x[0,lz]
// with nx*ny*nz cubes, each split into six tetrahedra around the main
// diagonal so that neighboring cubes match. The six box faces are tagged
// SurfaceXMin..SurfaceZMax. A nil region function tags every element 1.
func NewBoxMesh(nx, ny, nz int, lx, ly, lz float64, region RegionFunc) (*Mesh, error) {
	if nx < 1 || ny < 1 || nz < 1 {
		return nil, fmt.Errorf("box mesh needs at least one cell per direction, have %dx%dx%d", nx, ny, nz)
	}
	if !(lx > 0 && ly > 0 && lz > 0) {
		return nil, fmt.Errorf("box mesh needs positive extents, have %g x %g x %g", lx, ly, lz)
	}
	var (
		m     = NewMesh()
		n     = [3]int{nx, ny, nz}
		l     = [3]float64{lx, ly, lz}
		vid   = func(i, j, k int) int { return i + (nx+1)*(j+(ny+1)*k) }
		ijk   [][3]int
		perms = [6][3]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}
	)
	m.Dimension = 3
	m.FormatVersion = "2.2"
	for k := 0; k <= nz; k++ {
		for j := 0; j <= ny; j++ {
			for i := 0; i <= nx; i++ {
				idx := [3]int{i, j, k}
				var xyz [3]float64
				for d := 0; d < 3; d++ {
					xyz[d] = l[d] * float64(idx[d]) / float64(n[d])
				}
				m.AddNode(len(m.Vertices)+1, xyz[:])
				ijk = append(ijk, idx)
			}
		}
	}
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				for _, p := range perms {
					cur := [3]int{i, j, k}
					verts := []int{vid(cur[0], cur[1], cur[2])}
					for _, axis := range p {
						cur[axis]++
						verts = append(verts, vid(cur[0], cur[1], cur[2]))
					}
					if err := m.AddElement(utils.Tet, m.regionOf(region, verts), verts); err != nil {
						return nil, err
					}
				}
			}
		}
	}
	m.BuildConnectivity()
	m.tagExteriorFaces(utils.Triangle, func(face []int) int {
		return sideOf(face, ijk, n[:])
	})
	return m, nil
}

// NewRectMesh is the two dimensional counterpart of NewBoxMesh: each of the
// nx*ny squares of [0,lx]x[0,ly] is split into two triangles, the edges are
// tagged SurfaceXMin..SurfaceYMax
func NewRectMesh(nx, ny int, lx, ly float64, region RegionFunc) (*Mesh, error) {
	if nx < 1 || ny < 1 {
		return nil, fmt.Errorf("rectangle mesh needs at least one cell per direction, have %dx%d", nx, ny)
	}
	if !(lx > 0 && ly > 0) {
		return nil, fmt.Errorf("rectangle mesh needs positive extents, have %g x %g", lx, ly)
	}
	var (
		m   = NewMesh()
		n   = [2]int{nx, ny}
		vid = func(i, j int) int { return i + (nx+1)*j }
		ijk [][3]int
	)
	m.Dimension = 2
	m.FormatVersion = "2.2"
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			m.AddNode(len(m.Vertices)+1, []float64{lx * float64(i) / float64(nx), ly * float64(j) / float64(ny), 0})
			ijk = append(ijk, [3]int{i, j, 0})
		}
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			v00, v10, v11, v01 := vid(i, j), vid(i+1, j), vid(i+1, j+1), vid(i, j+1)
			for _, verts := range [][]int{{v00, v10, v11}, {v00, v11, v01}} {
				if err := m.AddElement(utils.Triangle, m.regionOf(region, verts), verts); err != nil {
					return nil, err
				}
			}
		}
	}
	m.BuildConnectivity()
	m.tagExteriorFaces(utils.Line, func(face []int) int {
		return sideOf(face, ijk, n[:])
	})
	return m, nil
}

func (m *Mesh) regionOf(region RegionFunc, verts []int) int {
	if region == nil {
		return 1
	}
	c := make([]float64, 3)
	for _, v := range verts {
		for d := 0; d < 3; d++ {
			c[d] += m.Vertices[v][d] / float64(len(verts))
		}
	}
	return region(c)
}

func (m *Mesh) tagExteriorFaces(facetType utils.ElementType, tag func(face []int) int) {
	for _, f := range m.ExteriorFaces() {
		if s := tag(f.Vertices); s > 0 {
			m.AddBoundaryElement(BoundaryElement{
				ElementType: facetType,
				Nodes:       f.Vertices,
				SurfaceID:   s,
			})
		}
	}
	for s, name := range []string{"xmin", "xmax", "ymin", "ymax", "zmin", "zmax"}[:2*m.Dimension] {
		m.PhysicalNames[s+1] = name
	}
}

// sideOf finds the box side that holds every vertex of the face, from the
// integer lattice position of the vertices
func sideOf(face []int, ijk [][3]int, n []int) int {
	for d := range n {
		for side, plane := range [2]int{0, n[d]} {
			onPlane := true
			for _, v := range face {
				if ijk[v][d] != plane {
					onPlane = false
					break
				}
			}
			if onPlane {
				return 1 + 2*d + side
			}
		}
	}
	return 0
}
