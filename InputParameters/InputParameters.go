package InputParameters

import (
	"fmt"
	"io"
	"runtime"
	"sort"
	"strings"

	"github.com/ghodss/yaml"

	"github.com/notargets/efield/electrostatics"
	"github.com/notargets/efield/utils"
)

type MeshParameters struct {
	Path string `json:"path"`
}

type DeviceParameters struct {
	Threads int `json:"threads"`
}

type DebugParameters struct {
	Debug     bool `json:"debug"`
	QuickMesh bool `json:"quick_mesh"`
}

type SolverParameters struct {
	Order            int     `json:"order"`
	AbsTol           float64 `json:"atol"`
	RelTol           float64 `json:"rtol"`
	MaxIter          int     `json:"maxiter"`
	PrintLevel       int     `json:"printlevel"`
	MeshSavePath     string  `json:"mesh_save_path"`
	VSolutionPath    string  `json:"V_solution_path"`
	ESolutionPath    string  `json:"E_solution_path"`
	EmagSolutionPath string  `json:"Emag_solution_path"`
}

// MaterialParameters without an attr_id is the default material
type MaterialParameters struct {
	AttrID   *int     `json:"attr_id,omitempty"`
	EpsilonR *float64 `json:"epsilon_r,omitempty"`
}

type BoundaryParameters struct {
	BdrID int     `json:"bdr_id"`
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

// Parameters obtained from the YAML input file
type InputParametersES struct {
	Mesh       MeshParameters                `json:"mesh"`
	Device     DeviceParameters              `json:"device"`
	Debug      DebugParameters               `json:"debug"`
	Solver     SolverParameters              `json:"solver"`
	Materials  map[string]MaterialParameters `json:"materials"`
	Boundaries map[string]BoundaryParameters `json:"boundaries"`
}

func NewInputParameters() *InputParametersES {
	return &InputParametersES{
		Mesh:   MeshParameters{Path: "geometry.msh"},
		Device: DeviceParameters{Threads: runtime.NumCPU()},
		Solver: SolverParameters{
			Order:            3,
			AbsTol:           1.0,
			RelTol:           0.0,
			MaxIter:          100000,
			PrintLevel:       1,
			MeshSavePath:     "simulation_mesh.msh",
			VSolutionPath:    "solution_V.msh",
			ESolutionPath:    "solution_E.msh",
			EmagSolutionPath: "solution_Emag.msh",
		},
	}
}

// Parse overlays the deck on the current values, normally the defaults
func (ip *InputParametersES) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, ip); err != nil {
		return
	}
	if ip.Device.Threads < 1 {
		ip.Device.Threads = runtime.NumCPU()
	}
	return ip.Validate()
}

func (ip *InputParametersES) Validate() error {
	for _, name := range ip.boundaryNames() {
		bp := ip.Boundaries[name]
		if bp.BdrID <= 0 {
			return &electrostatics.InvalidBoundaryError{Name: name, SurfaceID: bp.BdrID,
				Reason: "bdr_id must be a positive integer"}
		}
		if _, err := boundaryKind(bp.Type); err != nil {
			return &electrostatics.InvalidBoundaryError{Name: name, SurfaceID: bp.BdrID,
				Reason: err.Error()}
		}
	}
	var defaultName string
	for _, name := range ip.materialNames() {
		mp := ip.Materials[name]
		if mp.EpsilonR != nil && *mp.EpsilonR <= 0 {
			return &electrostatics.InvalidMaterialError{Name: name,
				Reason: fmt.Sprintf("epsilon_r must be positive, have %g", *mp.EpsilonR)}
		}
		if mp.AttrID == nil {
			if defaultName != "" {
				return &electrostatics.InvalidMaterialError{Name: name,
					Reason: fmt.Sprintf("second default material, %q is already the default", defaultName)}
			}
			defaultName = name
			continue
		}
		if *mp.AttrID <= 0 {
			return &electrostatics.InvalidMaterialError{Name: name,
				Reason: fmt.Sprintf("attr_id must be a positive integer, have %d", *mp.AttrID)}
		}
	}
	return ip.SolverParameters(nil).Validate()
}

func boundaryKind(name string) (utils.BCType, error) {
	if strings.TrimSpace(name) == "" {
		return utils.BCDirichlet, nil
	}
	bc := utils.ParseBCName(name)
	if bc == utils.BCNone {
		return bc, fmt.Errorf("unknown boundary type %q", name)
	}
	return bc, nil
}

func (ip *InputParametersES) materialNames() (names []string) {
	for k := range ip.Materials {
		names = append(names, k)
	}
	sort.Strings(names)
	return
}

func (ip *InputParametersES) boundaryNames() (names []string) {
	for k := range ip.Boundaries {
		names = append(names, k)
	}
	sort.Strings(names)
	return
}

// MaterialTable returns the materials in name order
func (ip *InputParametersES) MaterialTable() (mt []electrostatics.Material) {
	for _, name := range ip.materialNames() {
		mp := ip.Materials[name]
		m := electrostatics.Material{Name: name, Permittivity: 1}
		if mp.AttrID != nil {
			m.RegionID = *mp.AttrID
		}
		if mp.EpsilonR != nil {
			m.Permittivity = *mp.EpsilonR
		}
		mt = append(mt, m)
	}
	return
}

// BoundaryTable returns the boundaries in name order. Call after Validate,
// unknown types map to BCNone.
func (ip *InputParametersES) BoundaryTable() (bt []electrostatics.Boundary) {
	for _, name := range ip.boundaryNames() {
		bp := ip.Boundaries[name]
		kind, _ := boundaryKind(bp.Type)
		bt = append(bt, electrostatics.Boundary{
			Name:      name,
			SurfaceID: bp.BdrID,
			Kind:      kind,
			Value:     bp.Value,
		})
	}
	return
}

func (ip *InputParametersES) SolverParameters(out io.Writer) electrostatics.SolverParameters {
	return electrostatics.SolverParameters{
		Order:      ip.Solver.Order,
		AbsTol:     ip.Solver.AbsTol,
		RelTol:     ip.Solver.RelTol,
		MaxIter:    ip.Solver.MaxIter,
		PrintLevel: ip.Solver.PrintLevel,
		Threads:    ip.Device.Threads,
		Out:        out,
	}
}

func (ip *InputParametersES) Print(w io.Writer) {
	fmt.Fprintf(w, "\"%s\"\t\t= Mesh\n", ip.Mesh.Path)
	fmt.Fprintf(w, "[%d]\t\t\t\t= Polynomial Order\n", ip.Solver.Order)
	fmt.Fprintf(w, "%8.5g\t\t= Absolute Tolerance\n", ip.Solver.AbsTol)
	fmt.Fprintf(w, "%8.5g\t\t= Relative Tolerance\n", ip.Solver.RelTol)
	fmt.Fprintf(w, "[%d]\t\t\t= Max Iterations\n", ip.Solver.MaxIter)
	fmt.Fprintf(w, "[%d]\t\t\t\t= Threads\n", ip.Device.Threads)
	if ip.Debug.QuickMesh {
		fmt.Fprintf(w, "[quick_mesh]\t\t= Mesh Source\n")
	}
	for _, m := range ip.MaterialTable() {
		if m.IsDefault() {
			fmt.Fprintf(w, "Materials[%s] = default, epsilon_r %g\n", m.Name, m.Permittivity)
			continue
		}
		fmt.Fprintf(w, "Materials[%s] = attr %d, epsilon_r %g\n", m.Name, m.RegionID, m.Permittivity)
	}
	for _, bc := range ip.BoundaryTable() {
		fmt.Fprintf(w, "Boundaries[%s] = bdr %d, %s, value %g\n", bc.Name, bc.SurfaceID, bc.Kind, bc.Value)
	}
}
