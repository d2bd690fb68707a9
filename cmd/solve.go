/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/efield/InputParameters"
	"github.com/notargets/efield/electrostatics"
	"github.com/notargets/efield/mesh"
	"github.com/notargets/efield/output"
)

type ModelES struct {
	InputFile    string
	MeshFile     string // overrides mesh.path of the input deck
	Threads      int    // overrides device.threads when positive
	Profile      bool
	ProfileDir   string // CPU profile directory, the working directory when empty
	PerfCounters bool
}

// SolveCmd represents the solve command
var SolveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve for the electrostatic potential and field of a device",
	Long: `
Reads the YAML input deck, loads the mesh, solves for the potential and
writes the mesh, V, E and |E| in Gmsh format.

efield solve -I config/config.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		mes := &ModelES{}
		mes.InputFile, _ = cmd.Flags().GetString("inputConditionsFile")
		mes.MeshFile, _ = cmd.Flags().GetString("meshFile")
		mes.Threads = viper.GetInt("threads")
		mes.Profile, _ = cmd.Flags().GetBool("profile")
		mes.PerfCounters, _ = cmd.Flags().GetBool("perfCounters")
		if err := mes.Run(os.Stdout); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

// Run solves the deck, optionally under the CPU profiler or the instruction
// counter. The profile is written before Run returns, on error too.
func (mes *ModelES) Run(out io.Writer) error {
	if mes.Profile {
		dir := mes.ProfileDir
		if dir == "" {
			dir = "."
		}
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(dir), profile.Quiet, profile.NoShutdownHook).Stop()
	}
	run := func() error { return RunSolve(mes, out) }
	if mes.PerfCounters {
		return withInstructionCount(out, run)
	}
	return run()
}

func init() {
	rootCmd.AddCommand(SolveCmd)
	SolveCmd.Flags().StringP("inputConditionsFile", "I", "config/config.yaml", "YAML input deck with mesh, solver, materials and boundaries")
	SolveCmd.Flags().StringP("meshFile", "F", "", "Gmsh 2.2 ASCII mesh file, overrides mesh.path of the input deck")
	SolveCmd.Flags().IntP("threads", "t", 0, "number of go routines for the element kernels, overrides device.threads")
	SolveCmd.Flags().Bool("profile", false, "write a CPU profile to the current directory")
	SolveCmd.Flags().Bool("perfCounters", false, "report the CPU instruction count of the solve (linux only)")
	_ = viper.BindPFlag("threads", SolveCmd.Flags().Lookup("threads"))
}

func processInput(mes *ModelES) (ip *InputParameters.InputParametersES, err error) {
	var data []byte
	if data, err = os.ReadFile(mes.InputFile); err != nil {
		return nil, fmt.Errorf("reading input deck: %w", err)
	}
	ip = InputParameters.NewInputParameters()
	if err = ip.Parse(data); err != nil {
		return nil, fmt.Errorf("%s: %w", mes.InputFile, err)
	}
	if mes.MeshFile != "" {
		ip.Mesh.Path = mes.MeshFile
	}
	if mes.Threads > 0 {
		ip.Device.Threads = mes.Threads
	}
	return
}

func loadMesh(ip *InputParameters.InputParametersES) (*mesh.Mesh, error) {
	if ip.Debug.QuickMesh {
		return mesh.NewBoxMesh(4, 4, 4, 1, 1, 1, nil)
	}
	return mesh.ReadMeshFile(ip.Mesh.Path)
}

// RunSolve executes the whole pipeline for one input deck
func RunSolve(mes *ModelES, out io.Writer) (err error) {
	var (
		ip  *InputParameters.InputParametersES
		msh *mesh.Mesh
		res *electrostatics.Result
	)
	if ip, err = processInput(mes); err != nil {
		return
	}
	fmt.Fprintf(out, "[Config] Loading from: %s\n", mes.InputFile)
	if ip.Solver.PrintLevel >= 1 {
		ip.Print(out)
	}
	if msh, err = loadMesh(ip); err != nil {
		return
	}
	if err = electrostatics.CheckMesh(msh); err != nil {
		return
	}
	fmt.Fprintf(out, "[Geometry] Loaded mesh with %d elements and %d boundary attributes.\n",
		msh.NumElements, len(msh.SurfaceIDs()))
	if ip.Debug.Debug {
		msh.PrintStatistics(out)
	}
	if res, err = electrostatics.Solve(msh, ip.MaterialTable(), ip.BoundaryTable(), ip.SolverParameters(out)); err != nil {
		return
	}
	return output.SaveResult(res, output.Paths{
		Mesh: ip.Solver.MeshSavePath,
		V:    ip.Solver.VSolutionPath,
		E:    ip.Solver.ESolutionPath,
		Emag: ip.Solver.EmagSolutionPath,
	})
}
