// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sathyanand-dev/Portfolio-Optimizer/common"
	"github.com/sathyanand-dev/Portfolio-Optimizer/data"
	"github.com/sathyanand-dev/Portfolio-Optimizer/optimize"
	"github.com/sathyanand-dev/Portfolio-Optimizer/returns"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	optMethod        string
	optRiskTolerance string
	optLookback      int
	optSimulations   int
	optSeed          int64
)

func init() {
	optimizeCmd.Flags().StringVarP(&optMethod, "method", "m", "mean_variance", "Optimization method (mean_variance, minimum_variance, risk_parity, black_litterman, monte_carlo)")
	optimizeCmd.Flags().StringVarP(&optRiskTolerance, "risk-tolerance", "r", "moderate", "Risk tolerance (conservative, moderate, aggressive)")
	optimizeCmd.Flags().IntVar(&optLookback, "lookback", 252, "Number of trading days of history to use")
	optimizeCmd.Flags().IntVar(&optSimulations, "simulations", 0, "Number of monte carlo simulations")
	optimizeCmd.Flags().Int64Var(&optSeed, "seed", 0, "Random seed for monte carlo simulation")

	rootCmd.AddCommand(optimizeCmd)
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize SYMBOL SYMBOL [SYMBOL...]",
	Short: "Optimize portfolio weights for a list of symbols",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		common.SetupLogging()

		method, err := optimize.ParseMethod(optMethod)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid method")
		}
		tolerance, err := optimize.ParseRiskTolerance(optRiskTolerance)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid risk tolerance")
		}

		symbols := args
		common.ArrToUpper(symbols)

		ctx := context.Background()
		provider := data.NewCache(data.NewYahoo())

		end := time.Now()
		begin := end.AddDate(0, 0, -(optLookback*7/5 + 14))
		prices, err := provider.GetPrices(ctx, symbols, begin, end)
		if err != nil {
			log.Fatal().Err(err).Strs("Symbols", symbols).Msg("could not fetch prices")
		}

		matrix, err := returns.Compute(prices.DropNA().Tail(optLookback + 1))
		if err != nil {
			log.Fatal().Err(err).Msg("could not compute returns")
		}
		sigma, err := matrix.Covariance()
		if err != nil {
			log.Fatal().Err(err).Msg("could not compute covariance")
		}

		result, err := optimize.Optimize(ctx, &optimize.Request{
			Symbols:        matrix.Symbols,
			Method:         method,
			RiskTolerance:  tolerance,
			NumSimulations: optSimulations,
			Seed:           optSeed,
			Mean:           matrix.Mean(),
			Covariance:     sigma,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("optimization failed")
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Symbol", "Weight"})
		for idx, symbol := range result.Symbols {
			table.Append([]string{symbol, fmt.Sprintf("%.4f", result.Weights[idx])})
		}
		table.Render()

		fmt.Printf("Expected return: %.4f\n", result.ExpectedReturn)
		fmt.Printf("Volatility:      %.4f\n", result.ExpectedVolatility)
		fmt.Printf("Sharpe ratio:    %.4f\n", result.SharpeRatio)
	},
}
