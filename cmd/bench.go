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
	"time"

	"github.com/spf13/cobra"

	"github.com/lwkobe/ryujin/InputParameters"
	"github.com/lwkobe/ryujin/euler"
	"github.com/lwkobe/ryujin/mesh"
)

// benchCmd represents the bench command
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark the time step kernel with hardware counters",
	Long: `
Runs a fixed number of time steps of the Sod problem on a 1D mesh and
reports wall clock time plus, on linux, retired instructions and CPU
cycles per node per step,

ryujin bench -k 10000 -n 50`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			k, _      = cmd.Flags().GetInt("k")
			n, _      = cmd.Flags().GetInt("n")
			pd, _     = cmd.Flags().GetInt("procLimit")
			greedy, _ = cmd.Flags().GetBool("greedy")
		)
		RunBench(k, n, pd, greedy)
	},
}

func init() {
	rootCmd.AddCommand(benchCmd)
	benchCmd.Flags().IntP("k", "k", 10000, "number of mesh nodes")
	benchCmd.Flags().IntP("n", "n", 50, "number of time steps to benchmark")
	benchCmd.Flags().IntP("procLimit", "p", 0, "number of parallel goroutines")
	benchCmd.Flags().Bool("greedy", false, "use greedy graph viscosity")
}

func RunBench(k, n, pd int, greedy bool) {
	ip := InputParameters.DefaultParameters()
	ip.Title = "Bench"
	ip.Mesh.K = k
	ip.MaxIterations = n
	ip.FinalTime = 1000. // run to the step limit, not the final time
	ip.GreedyDij = greedy
	if pd != 0 {
		ip.ParallelDegree = pd
	}
	if err := ip.Validate(); err != nil {
		panic(err)
	}
	g, err := mesh.FromParameters(ip.Mesh)
	if err != nil {
		panic(err)
	}
	c := euler.NewEuler(ip, g, false)
	c.Step(1.e-8) // warm up, touch all scratch storage once

	start := time.Now()
	instructions, cycles, err := euler.CountHardware(func() {
		for i := 0; i < n; i++ {
			c.Step(ip.FinalTime)
		}
	})
	elapsed := time.Since(start)

	work := float64(g.N) * float64(n)
	fmt.Printf("%d nodes, %d steps, %s elapsed, %8.3f ns/node/step\n",
		g.N, n, elapsed.String(), float64(elapsed.Nanoseconds())/work)
	if err != nil {
		fmt.Printf("hardware counters unavailable: %s\n", err.Error())
		return
	}
	// counters cover two passes over f, one per event
	fmt.Printf("%8.2f instructions/node/step, %8.2f cycles/node/step\n",
		float64(instructions)/(2.*work), float64(cycles)/(2.*work))
}
