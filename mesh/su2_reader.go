package mesh

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/efield/utils"
)

// From here: https://su2code.github.io/docs_v7/Mesh-File/
type SU2ElementType uint8

const (
	ELType_LINE          SU2ElementType = 3
	ELType_Triangle      SU2ElementType = 5
	ELType_Quadrilateral SU2ElementType = 9
	ELType_Tetrahedral   SU2ElementType = 10
	ELType_Hexahedral    SU2ElementType = 12
	ELType_Prism         SU2ElementType = 13
	ELType_Pyramid       SU2ElementType = 14
)

var su2ElementType = map[SU2ElementType]utils.ElementType{
	ELType_LINE:          utils.Line,
	ELType_Triangle:      utils.Triangle,
	ELType_Quadrilateral: utils.Quad,
	ELType_Tetrahedral:   utils.Tet,
	ELType_Hexahedral:    utils.Hex,
	ELType_Prism:         utils.Prism,
	ELType_Pyramid:       utils.Pyramid,
}

// ReadSU2 reads an ASCII SU2 mesh. SU2 carries no volume tags, so every
// element is put in region 1. Markers become surfaces numbered 1, 2, ... in
// file order, with the marker tag as physical name.
func ReadSU2(filename string) (msh *Mesh, err error) {
	var file *os.File
	if file, err = os.Open(filename); err != nil {
		return nil, err
	}
	defer file.Close()
	r := &su2Reader{scanner: bufio.NewScanner(file)}
	r.scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	msh = NewMesh()
	msh.FormatVersion = "su2"
	if msh.Dimension, err = r.readNumber("NDIME"); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if msh.Dimension != 2 && msh.Dimension != 3 {
		return nil, fmt.Errorf("%s: NDIME = %d, must be 2 or 3", filename, msh.Dimension)
	}
	var elements [][]int
	if elements, err = r.readElements("NELEM"); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if err = r.readVertices(msh); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	simplex := utils.SimplexOfDimension(msh.Dimension)
	for k, el := range elements {
		et := su2ElementType[SU2ElementType(el[0])]
		if et != simplex {
			return nil, fmt.Errorf("%s: element %d is a %s, only %s elements are supported",
				filename, k, et, simplex)
		}
		if err = msh.AddElement(et, 1, el[1:]); err != nil {
			return nil, fmt.Errorf("%s: element %d: %w", filename, k, err)
		}
	}
	if err = r.readMarkers(msh); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	msh.BuildConnectivity()
	return
}

type su2Reader struct {
	scanner *bufio.Scanner
}

// nextLine skips blank lines and % comments
func (r *su2Reader) nextLine() (line string, err error) {
	for r.scanner.Scan() {
		line = strings.TrimSpace(r.scanner.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		return
	}
	if err = r.scanner.Err(); err == nil {
		err = fmt.Errorf("unexpected end of file")
	}
	return
}

func (r *su2Reader) readToken(key string) (token string, err error) {
	var line string
	if line, err = r.nextLine(); err != nil {
		return
	}
	ind := strings.Index(line, "=")
	if ind < 0 {
		return "", fmt.Errorf("badly formed input line [%s], should have an =", line)
	}
	if got := strings.TrimSpace(line[:ind]); got != key {
		return "", fmt.Errorf("expected %s, found %s", key, got)
	}
	return strings.TrimSpace(line[ind+1:]), nil
}

func (r *su2Reader) readNumber(key string) (num int, err error) {
	var token string
	if token, err = r.readToken(key); err != nil {
		return
	}
	if num, err = strconv.Atoi(token); err != nil {
		return 0, fmt.Errorf("unable to read %s from token: [%s]", key, token)
	}
	return
}

func (r *su2Reader) readCount(key string) (n int, err error) {
	if n, err = r.readNumber(key); err != nil {
		return
	}
	if n < 0 {
		return 0, fmt.Errorf("%s = %d, must not be negative", key, n)
	}
	return
}

// readElements returns the element type followed by the vertex indices
func (r *su2Reader) readElements(key string) (elements [][]int, err error) {
	var n int
	if n, err = r.readCount(key); err != nil {
		return
	}
	elements = make([][]int, n)
	for i := 0; i < n; i++ {
		var line string
		if line, err = r.nextLine(); err != nil {
			return
		}
		fields := strings.Fields(line)
		if len(fields) < 1 {
			return nil, fmt.Errorf("%s: empty element line", key)
		}
		nType, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%s: invalid element type %q", key, fields[0])
		}
		et, ok := su2ElementType[SU2ElementType(nType)]
		if !ok {
			return nil, fmt.Errorf("%s: unsupported SU2 element type %d", key, nType)
		}
		nv := et.GetNumNodes()
		// a trailing element index is optional
		if len(fields) < 1+nv {
			return nil, fmt.Errorf("%s: element line [%s] needs %d vertices", key, line, nv)
		}
		el := make([]int, 1+nv)
		el[0] = nType
		for j := 1; j <= nv; j++ {
			if el[j], err = strconv.Atoi(fields[j]); err != nil {
				return nil, fmt.Errorf("%s: invalid vertex index %q", key, fields[j])
			}
		}
		elements[i] = el
	}
	return
}

func (r *su2Reader) readVertices(msh *Mesh) (err error) {
	var n int
	if n, err = r.readCount("NPOIN"); err != nil {
		return
	}
	d := msh.Dimension
	for i := 0; i < n; i++ {
		var line string
		if line, err = r.nextLine(); err != nil {
			return
		}
		fields := strings.Fields(line)
		if len(fields) < d {
			return fmt.Errorf("unable to read coordinates from [%s]", line)
		}
		xyz := make([]float64, 3)
		for j := 0; j < d; j++ {
			if xyz[j], err = strconv.ParseFloat(fields[j], 64); err != nil {
				return fmt.Errorf("point %d: invalid coordinate %q", i, fields[j])
			}
		}
		msh.AddNode(i, xyz)
	}
	return
}

func (r *su2Reader) readMarkers(msh *Mesh) (err error) {
	var nMark int
	if nMark, err = r.readCount("NMARK"); err != nil {
		return
	}
	facet := utils.SimplexOfDimension(msh.Dimension - 1)
	for s := 1; s <= nMark; s++ {
		var label string
		if label, err = r.readToken("MARKER_TAG"); err != nil {
			return
		}
		msh.PhysicalNames[s] = label
		var facets [][]int
		if facets, err = r.readElements("MARKER_ELEMS"); err != nil {
			return
		}
		for _, f := range facets {
			if et := su2ElementType[SU2ElementType(f[0])]; et != facet {
				return fmt.Errorf("marker %s: boundary element is a %s, expected %s", label, et, facet)
			}
			for _, v := range f[1:] {
				if v < 0 || v >= msh.NumVertices {
					return fmt.Errorf("marker %s: vertex %d out of range", label, v)
				}
			}
			msh.AddBoundaryElement(BoundaryElement{
				ElementType: facet,
				Nodes:       f[1:],
				SurfaceID:   s,
			})
		}
	}
	return
}
