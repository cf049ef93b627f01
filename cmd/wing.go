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
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wdf-nudtaa/flow5-sub004/InputParameters"
	"github.com/wdf-nudtaa/flow5-sub004/analysis"
)

// WingCmd represents the wing command
var WingCmd = &cobra.Command{
	Use:   "wing",
	Short: "Polar of the wings described in an input file",
	Long: `
Solves the wings of the input file once, then computes the lift, induced drag
and pitching moment coefficients at each angle of attack of the Alphas list.

flow5 wing -I analysis.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
			ops []analysis.OperatingPoint
		)
		defer startProfile()()
		ap := processInput(inputFile(cmd))
		ap.Print()
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if ops, err = RunWing(ctx, ap); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		printPolar(ops)
	},
}

const exampleFile = `
########################################
Title: "Rectangular wing"
Method: VLM2 # VLM1, VLM2 or PANEL4
BC: NEUMANN # DIRICHLET for thick PANEL4 wings
Alphas: [0, 2, 4, 6]
CoG: [0.25, 0, 0]
Mass: 1.5
Wings:
  - Name: main wing
    Span: 2
    Chord: 0.25
    NChord: 6
    NSpan: 20
########################################
`

func inputFile(cmd *cobra.Command) (name string) {
	var err error
	if name, err = cmd.Flags().GetString("inputParametersFile"); err != nil {
		panic(err)
	}
	return
}

func processInput(fileName string) (ap *InputParameters.AnalysisParameters) {
	var (
		err  error
		data []byte
	)
	if len(fileName) == 0 {
		fmt.Printf("error: must supply an input parameters file (-I, --inputParametersFile)\n")
		fmt.Printf("Example File:%s\n", exampleFile)
		os.Exit(1)
	}
	if data, err = os.ReadFile(fileName); err != nil {
		panic(err)
	}
	ap = InputParameters.NewAnalysisParameters()
	if err = ap.Parse(data); err != nil {
		panic(err)
	}
	if threads := viper.GetInt("threads"); threads > 0 {
		ap.Threads = threads
	}
	return
}

// newAnalysis builds the mesh and the analysis of the parameters
func newAnalysis(ap *InputParameters.AnalysisParameters) (pa *analysis.PanelAnalysis, err error) {
	var cfg analysis.Config
	if cfg, err = ap.Config(); err != nil {
		return
	}
	mesh, err := ap.Mesh()
	if err != nil {
		return
	}
	return analysis.New(cfg, mesh)
}

// RunWing solves the analysis of the parameters at each of its angles of attack
func RunWing(ctx context.Context, ap *InputParameters.AnalysisParameters) (ops []analysis.OperatingPoint, err error) {
	var pa *analysis.PanelAnalysis
	if pa, err = newAnalysis(ap); err != nil {
		return
	}
	return pa.Run(ctx, analysis.LUSolver{}, ap.Alphas, ap.CenterOfGravity())
}

func printPolar(ops []analysis.OperatingPoint) {
	fmt.Printf("%8s %10s %10s %10s\n", "alpha", "CL", "CDi", "Cm")
	for _, op := range ops {
		fmt.Printf("%8.3f %10.5f %10.6f %10.5f\n", op.Alpha, op.CL, op.CDi, op.Cm)
	}
}

func init() {
	rootCmd.AddCommand(WingCmd)
	WingCmd.Flags().StringP("inputParametersFile", "I", "", "YAML file for the analysis parameters and the wings")
}
