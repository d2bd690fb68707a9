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
	"os"

	"github.com/spf13/cobra"

	"github.com/notargets/efield/mesh"
	"github.com/notargets/efield/output"
)

// MeshCmd represents the mesh command
var MeshCmd = &cobra.Command{
	Use:   "mesh",
	Short: "Write a structured box (3D) or rectangle (2D) mesh in Gmsh 2.2 format",
	Long: `
Generates a structured simplex mesh with the box sides tagged 1..6
(xmin, xmax, ymin, ymax, zmin, zmax), usable as a smoke test input.

efield mesh -n 8 -o box.msh`,
	Run: func(cmd *cobra.Command, args []string) {
		dim, _ := cmd.Flags().GetInt("dim")
		n, _ := cmd.Flags().GetInt("n")
		l, _ := cmd.Flags().GetFloat64("length")
		fileName, _ := cmd.Flags().GetString("output")
		if err := WriteBoxMesh(fileName, dim, n, l); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", fileName)
	},
}

func init() {
	rootCmd.AddCommand(MeshCmd)
	MeshCmd.Flags().IntP("dim", "d", 3, "mesh dimension, 2 or 3")
	MeshCmd.Flags().IntP("n", "n", 4, "number of cells along each side")
	MeshCmd.Flags().Float64P("length", "l", 1, "side length")
	MeshCmd.Flags().StringP("output", "o", "box.msh", "output file")
}

func WriteBoxMesh(fileName string, dim, n int, l float64) (err error) {
	var msh *mesh.Mesh
	switch dim {
	case 2:
		msh, err = mesh.NewRectMesh(n, n, l, l, nil)
	case 3:
		msh, err = mesh.NewBoxMesh(n, n, n, l, l, l, nil)
	default:
		err = fmt.Errorf("mesh dimension must be 2 or 3, have %d", dim)
	}
	if err != nil {
		return
	}
	var file *os.File
	if file, err = os.Create(fileName); err != nil {
		return
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	return output.WriteMesh(file, msh)
}
