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
	"io/ioutil"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/lwkobe/ryujin/InputParameters"
	"github.com/lwkobe/ryujin/euler"
	"github.com/lwkobe/ryujin/mesh"
)

// solveCmd represents the solve command
var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Run the solver to the configured final time",
	Long: `
Reads the simulation parameters from a YAML input file, builds the mesh
and connectivity graph, and advances the solution to the final time,

ryujin solve -I input.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		ms := &ModelSolve{}
		ms.InputFile, _ = cmd.Flags().GetString("input")
		ms.Graph, _ = cmd.Flags().GetBool("graph")
		ms.PlotSteps, _ = cmd.Flags().GetInt("plotSteps")
		dly, _ := cmd.Flags().GetInt("delay")
		ms.Delay = time.Duration(dly) * time.Millisecond
		ms.Profile, _ = cmd.Flags().GetBool("profile")

		ip := InputParameters.DefaultParameters()
		if len(ms.InputFile) != 0 {
			var data []byte
			if data, err = ioutil.ReadFile(ms.InputFile); err != nil {
				panic(err)
			}
			if err = ip.Parse(data); err != nil {
				panic(err)
			}
		}
		if cfl, _ := cmd.Flags().GetFloat64("CFL"); cfl != 0. {
			ip.CFL = cfl
		}
		if ft, _ := cmd.Flags().GetFloat64("finalTime"); ft != 0. {
			ip.FinalTime = ft
		}
		if k, _ := cmd.Flags().GetInt("k"); k != 0 {
			ip.Mesh.K = k
		}
		if pd, _ := cmd.Flags().GetInt("procLimit"); pd != 0 {
			ip.ParallelDegree = pd
		}
		if err = ip.Validate(); err != nil {
			panic(err)
		}
		ip.Print()
		RunSolve(ms, ip)
	},
}

func init() {
	rootCmd.AddCommand(solveCmd)
	solveCmd.Flags().StringP("input", "I", "", "YAML input file with simulation parameters")
	solveCmd.Flags().BoolP("graph", "g", false, "display a graph while computing solution")
	solveCmd.Flags().IntP("plotSteps", "s", 10, "number of steps before plot/print update")
	solveCmd.Flags().IntP("delay", "d", 0, "milliseconds of delay for plotting")
	solveCmd.Flags().IntP("k", "k", 0, "number of nodes along x, overrides input file")
	solveCmd.Flags().IntP("procLimit", "p", 0, "number of parallel goroutines, overrides input file")
	solveCmd.Flags().Float64("CFL", 0., "CFL number, overrides input file")
	solveCmd.Flags().Float64("finalTime", 0., "target end time, overrides input file")
	solveCmd.Flags().Bool("profile", false, "write a CPU profile of the run")
}

type ModelSolve struct {
	InputFile string
	Graph     bool
	PlotSteps int
	Delay     time.Duration
	Profile   bool
}

func RunSolve(ms *ModelSolve, ip *InputParameters.Parameters) {
	if ms.Profile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}
	g, err := mesh.FromParameters(ip.Mesh)
	if err != nil {
		panic(err)
	}
	fmt.Printf("Mesh: %d nodes, %d stored edges\n", g.N, g.Nnz())
	c := euler.NewEuler(ip, g, true)
	c.Run(&euler.PlotMeta{
		Plot:            ms.Graph,
		StepsBeforePlot: ms.PlotSteps,
		Delay:           ms.Delay,
		FieldMin:        -0.1,
		FieldMax:        2.6,
	})
}
