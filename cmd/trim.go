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

	"github.com/wdf-nudtaa/flow5-sub004/InputParameters"
	"github.com/wdf-nudtaa/flow5-sub004/analysis"
)

// TrimCmd represents the trim command
var TrimCmd = &cobra.Command{
	Use:   "trim",
	Short: "Trimmed flight conditions for the Mass and CoG of an input file",
	Long: `
Finds the angle of attack with zero pitching moment about the CoG of the input
file, then the speed at which the lift balances the weight of Mass, and the
stability derivatives of the trimmed state.

flow5 trim -I analysis.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		defer startProfile()()
		ap := processInput(inputFile(cmd))
		ap.Print()
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		tc, err := RunTrim(ctx, ap)
		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		if !tc.OK {
			fmt.Printf("no trimmed conditions found\n")
			os.Exit(1)
		}
		fmt.Printf("%8.4f\t\t= Trimmed Alpha\n", tc.Alpha)
		fmt.Printf("%8.4f\t\t= Speed (m/s)\n", tc.Speed)
		fmt.Printf("%8.5f\t\t= CL\n", tc.CL)
		printDerivatives(tc.Derivatives)
	},
}

type TrimResult struct {
	Alpha, Speed, CL float64
	OK               bool
	Derivatives      analysis.StabilityDerivatives
}

// RunTrim solves the unit cases then searches the trimmed conditions
func RunTrim(ctx context.Context, ap *InputParameters.AnalysisParameters) (tc TrimResult, err error) {
	var pa *analysis.PanelAnalysis
	if pa, err = newAnalysis(ap); err != nil {
		return
	}
	if ap.Mass <= 0 {
		err = fmt.Errorf("trim requires a positive mass, got %g", ap.Mass)
		return
	}
	cog := ap.CenterOfGravity()
	if _, err = pa.Run(ctx, analysis.LUSolver{}, nil, cog); err != nil {
		return
	}
	if tc.Alpha, tc.Speed, tc.OK = pa.TrimmedConditions(ap.Mass, cog); !tc.OK {
		return
	}
	// the vertical force balances the weight
	tc.CL = 2. * ap.Mass * analysis.Gravity / (pa.Density * tc.Speed * tc.Speed * pa.RefArea)
	tc.Derivatives, err = pa.StabilityDerivatives(tc.Alpha, tc.Speed, ap.Mass)
	return
}

func printDerivatives(sd analysis.StabilityDerivatives) {
	fmt.Printf("Longitudinal derivatives\n")
	fmt.Printf("%10.5f\t= CXu\t%10.5f\t= CZu\t%10.5f\t= Cmu\n", sd.CXu, sd.CZu, sd.Cmu)
	fmt.Printf("%10.5f\t= CXa\t%10.5f\t= CZa\t%10.5f\t= Cma\n", sd.CXa, sd.CZa, sd.Cma)
	fmt.Printf("%10.5f\t= CXq\t%10.5f\t= CZq\t%10.5f\t= Cmq\n", sd.CXq, sd.CZq, sd.Cmq)
	fmt.Printf("%10.5f\t= Neutral point (m)\n", sd.XNP)
	fmt.Printf("Lateral derivatives\n")
	fmt.Printf("%10.5f\t= CYb\t%10.5f\t= Clb\t%10.5f\t= Cnb\n", sd.CYb, sd.Clb, sd.Cnb)
	fmt.Printf("%10.5f\t= CYp\t%10.5f\t= Clp\t%10.5f\t= Cnp\n", sd.CYp, sd.Clp, sd.Cnp)
	fmt.Printf("%10.5f\t= CYr\t%10.5f\t= Clr\t%10.5f\t= Cnr\n", sd.CYr, sd.Clr, sd.Cnr)
}

func init() {
	rootCmd.AddCommand(TrimCmd)
	TrimCmd.Flags().StringP("inputParametersFile", "I", "", "YAML file for the analysis parameters and the wings")
}
