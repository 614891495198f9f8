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
	"strconv"
	"strings"
	"time"

	"github.com/sathyanand-dev/Portfolio-Optimizer/backtest"
	"github.com/sathyanand-dev/Portfolio-Optimizer/common"
	"github.com/sathyanand-dev/Portfolio-Optimizer/data"
	"github.com/sathyanand-dev/Portfolio-Optimizer/dataframe"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	btStart     string
	btEnd       string
	btInitial   float64
	btFrequency string
)

func init() {
	backtestCmd.Flags().StringVar(&btStart, "start", "", "Simulation start date (YYYY-MM-DD)")
	backtestCmd.Flags().StringVar(&btEnd, "end", "", "Simulation end date (YYYY-MM-DD, default today)")
	backtestCmd.Flags().Float64Var(&btInitial, "initial", 100000, "Initial investment amount")
	backtestCmd.Flags().StringVar(&btFrequency, "frequency", "monthly", "Rebalance frequency (daily, weekly, monthly, quarterly)")
	backtestCmd.MarkFlagRequired("start")

	rootCmd.AddCommand(backtestCmd)
}

var backtestCmd = &cobra.Command{
	Use:   "backtest SYMBOL=WEIGHT [SYMBOL=WEIGHT...]",
	Short: "Backtest a fixed-weight portfolio over a historical range",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		common.SetupLogging()

		symbols, weights, err := parseAllocations(args)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid allocation")
		}

		start, err := time.Parse("2006-01-02", btStart)
		if err != nil {
			log.Fatal().Err(err).Str("Start", btStart).Msg("could not parse start date")
		}
		end := time.Now()
		if btEnd != "" {
			if end, err = time.Parse("2006-01-02", btEnd); err != nil {
				log.Fatal().Err(err).Str("End", btEnd).Msg("could not parse end date")
			}
		}

		frequency, err := backtest.ParseFrequency(btFrequency)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid rebalance frequency")
		}

		ctx := context.Background()
		provider := data.NewCache(data.NewYahoo())
		prices, err := provider.GetPrices(ctx, symbols, start, end)
		if err != nil {
			log.Fatal().Err(err).Strs("Symbols", symbols).Msg("could not fetch prices")
		}

		bt := &backtest.Backtest{
			Symbols:       symbols,
			Weights:       weights,
			Start:         start,
			End:           end,
			InitialAmount: btInitial,
			Frequency:     frequency,
			Prices:        prices,
		}

		result, err := bt.Run(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("backtest failed")
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Metric", "Value"})
		table.Append([]string{"Total Return", fmt.Sprintf("%.2f%%", result.TotalReturn*100)})
		table.Append([]string{"Annual Return", fmt.Sprintf("%.2f%%", result.AnnualReturn*100)})
		table.Append([]string{"Volatility", fmt.Sprintf("%.2f%%", result.Volatility*100)})
		if result.SharpeRatio != nil {
			table.Append([]string{"Sharpe Ratio", fmt.Sprintf("%.4f", *result.SharpeRatio)})
		} else {
			table.Append([]string{"Sharpe Ratio", "n/a"})
		}
		table.Append([]string{"Max Drawdown", fmt.Sprintf("%.2f%%", result.MaxDrawdown*100)})
		table.Render()

		fmt.Println(equityCurve(result).Tail(10).Table())

		last := result.DailyReturns[len(result.DailyReturns)-1]
		fmt.Printf("Final value on %s: %.2f\n", last.Date.Format("2006-01-02"), last.PortfolioValue)
	},
}

// equityCurve converts the simulation output into a date-indexed frame for
// tabular display
func equityCurve(result *backtest.Result) *dataframe.DataFrame {
	n := len(result.DailyReturns)
	dates := make([]time.Time, n)
	values := make([]float64, n)
	rets := make([]float64, n)
	for idx, day := range result.DailyReturns {
		dates[idx] = day.Date
		values[idx] = day.PortfolioValue
		rets[idx] = day.Return
	}
	return &dataframe.DataFrame{
		Dates:    dates,
		ColNames: []string{"Value", "Return"},
		Vals:     [][]float64{values, rets},
	}
}

// parseAllocations turns RELIANCE.NS=0.6 style arguments into a symbol list
// and weight map
func parseAllocations(args []string) ([]string, map[string]float64, error) {
	symbols := make([]string, 0, len(args))
	weights := make(map[string]float64, len(args))
	for _, arg := range args {
		parts := strings.SplitN(arg, "=", 2)
		if len(parts) != 2 {
			return nil, nil, fmt.Errorf("expected SYMBOL=WEIGHT, got %q", arg)
		}
		symbol := strings.ToUpper(parts[0])
		weight, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("could not parse weight in %q: %w", arg, err)
		}
		symbols = append(symbols, symbol)
		weights[symbol] = weight
	}
	return symbols, weights, nil
}
