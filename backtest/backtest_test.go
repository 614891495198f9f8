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

package backtest_test

import (
	"context"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sathyanand-dev/Portfolio-Optimizer/backtest"
	"github.com/sathyanand-dev/Portfolio-Optimizer/dataframe"
)

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func priceFrame(symbols []string, cols [][]float64) *dataframe.DataFrame {
	dates := make([]time.Time, len(cols[0]))
	dt := testStart
	for idx := range dates {
		dates[idx] = dt
		dt = dt.AddDate(0, 0, 1)
	}
	return &dataframe.DataFrame{Dates: dates, ColNames: symbols, Vals: cols}
}

func constantPrices(price float64, n int) []float64 {
	col := make([]float64, n)
	for idx := range col {
		col[idx] = price
	}
	return col
}

func growthPrices(start, dailyReturn float64, n int) []float64 {
	col := make([]float64, n)
	col[0] = start
	for idx := 1; idx < n; idx++ {
		col[idx] = col[idx-1] * (1 + dailyReturn)
	}
	return col
}

var _ = Describe("Backtest", func() {
	var (
		ctx context.Context
		bt  *backtest.Backtest
	)

	BeforeEach(func() {
		ctx = context.Background()
		bt = &backtest.Backtest{
			Symbols:       []string{"RELIANCE.NS"},
			Weights:       map[string]float64{"RELIANCE.NS": 1},
			Start:         testStart,
			End:           testStart.AddDate(0, 0, 60),
			InitialAmount: 100000,
			Frequency:     backtest.Monthly,
			Prices:        priceFrame([]string{"RELIANCE.NS"}, [][]float64{constantPrices(100, 30)}),
		}
	})

	Describe("validation", func() {
		It("rejects an empty symbol list", func() {
			bt.Symbols = nil
			_, err := bt.Run(ctx)
			Expect(err).To(MatchError(backtest.ErrNoSymbols))
		})

		It("rejects a non-positive initial amount", func() {
			bt.InitialAmount = 0
			_, err := bt.Run(ctx)
			Expect(err).To(MatchError(backtest.ErrInvalidAmount))
		})

		It("rejects an inverted date range", func() {
			bt.End = testStart.AddDate(0, 0, -1)
			_, err := bt.Run(ctx)
			Expect(err).To(MatchError(backtest.ErrTimeInverted))
		})

		It("rejects a missing weight", func() {
			bt.Weights = map[string]float64{"TCS.NS": 1}
			_, err := bt.Run(ctx)
			Expect(err).To(MatchError(backtest.ErrMissingWeight))
		})

		It("rejects weights that do not sum to 1", func() {
			bt.Weights = map[string]float64{"RELIANCE.NS": 0.8}
			_, err := bt.Run(ctx)
			Expect(err).To(MatchError(backtest.ErrWeightSum))
		})

		It("rejects a price history shorter than two days", func() {
			bt.Prices = priceFrame([]string{"RELIANCE.NS"}, [][]float64{{100}})
			_, err := bt.Run(ctx)
			Expect(err).To(MatchError(backtest.ErrInsufficientPrices))
		})

		It("reports the symbol and date of a price gap", func() {
			prices := priceFrame([]string{"RELIANCE.NS"}, [][]float64{constantPrices(100, 30)})
			prices.Vals[0][7] = math.NaN()
			bt.Prices = prices

			_, err := bt.Run(ctx)
			var gap *backtest.DataGapError
			Expect(err).To(BeAssignableToTypeOf(gap))
			gap = err.(*backtest.DataGapError)
			Expect(gap.Symbol).To(Equal("RELIANCE.NS"))
			Expect(gap.Date).To(Equal(testStart.AddDate(0, 0, 7)))
		})
	})

	Context("with a flat price history", func() {
		It("reports zero return, zero volatility, and no sharpe", func() {
			result, err := bt.Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(result.TotalReturn).To(BeNumerically("==", 0))
			Expect(result.AnnualReturn).To(BeNumerically("==", 0))
			Expect(result.Volatility).To(BeNumerically("==", 0))
			Expect(result.MaxDrawdown).To(BeNumerically("==", 0))
			Expect(result.SharpeRatio).To(BeNil())
			Expect(result.DailyReturns).To(HaveLen(30))
		})
	})

	Context("with a steadily growing asset", func() {
		BeforeEach(func() {
			bt.Prices = priceFrame([]string{"RELIANCE.NS"}, [][]float64{growthPrices(100, 0.01, 40)})
		})

		It("ties total return to the final portfolio value", func() {
			result, err := bt.Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			final := result.DailyReturns[len(result.DailyReturns)-1].PortfolioValue
			Expect(result.TotalReturn).To(BeNumerically("~", final/100000-1, 1e-9))
			Expect(result.TotalReturn).To(BeNumerically("~", math.Pow(1.01, 39)-1, 1e-9))
		})

		It("keeps the equity curve continuous", func() {
			result, err := bt.Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			for idx := 1; idx < len(result.DailyReturns); idx++ {
				prev := result.DailyReturns[idx-1].PortfolioValue
				dv := result.DailyReturns[idx]
				Expect(dv.PortfolioValue).To(BeNumerically("~", prev*(1+dv.Return), 1e-9))
			}
		})
	})

	Context("with two assets", func() {
		BeforeEach(func() {
			bt.Symbols = []string{"GROW.NS", "FLAT.NS"}
			bt.Weights = map[string]float64{"GROW.NS": 0.5, "FLAT.NS": 0.5}
			bt.Prices = priceFrame([]string{"GROW.NS", "FLAT.NS"}, [][]float64{
				growthPrices(100, 0.10, 11),
				constantPrices(50, 11),
			})
		})

		It("compounds the blended return when rebalancing daily", func() {
			bt.Frequency = backtest.Daily
			result, err := bt.Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			// rebalancing back to 50/50 every day earns 5% daily
			final := result.DailyReturns[len(result.DailyReturns)-1].PortfolioValue
			Expect(final).To(BeNumerically("~", 100000*math.Pow(1.05, 10), 1e-6))
		})

		It("lets winners run between rebalances", func() {
			bt.Frequency = backtest.Monthly // no rebalance inside 11 days
			result, err := bt.Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			final := result.DailyReturns[len(result.DailyReturns)-1].PortfolioValue
			expected := 100000 * (0.5*math.Pow(1.10, 10) + 0.5)
			Expect(final).To(BeNumerically("~", expected, 1e-6))
		})
	})
})

var _ = Describe("Comparison", func() {
	It("returns aligned results keyed by portfolio name", func() {
		prices := priceFrame([]string{"GROW.NS", "FLAT.NS"}, [][]float64{
			growthPrices(100, 0.02, 30),
			constantPrices(50, 30),
		})

		comparison := &backtest.Comparison{
			Portfolios: []backtest.Portfolio{
				{
					Name:    "all growth",
					Symbols: []string{"GROW.NS"},
					Weights: map[string]float64{"GROW.NS": 1},
				},
				{
					Name:    "all flat",
					Symbols: []string{"FLAT.NS"},
					Weights: map[string]float64{"FLAT.NS": 1},
				},
			},
			Start:         testStart,
			End:           testStart.AddDate(0, 0, 60),
			InitialAmount: 100000,
			Frequency:     backtest.Monthly,
			Prices:        prices,
		}

		results, err := comparison.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveKey("all growth"))
		Expect(results).To(HaveKey("all flat"))

		growth := results["all growth"]
		flat := results["all flat"]
		Expect(growth.DailyReturns).To(HaveLen(len(flat.DailyReturns)))
		for idx := range growth.DailyReturns {
			Expect(growth.DailyReturns[idx].Date).To(Equal(flat.DailyReturns[idx].Date))
		}

		Expect(growth.TotalReturn).To(BeNumerically(">", flat.TotalReturn))
		Expect(flat.SharpeRatio).To(BeNil())
	})

	It("fails when any portfolio fails", func() {
		prices := priceFrame([]string{"GROW.NS"}, [][]float64{growthPrices(100, 0.02, 30)})

		comparison := &backtest.Comparison{
			Portfolios: []backtest.Portfolio{
				{
					Name:    "good",
					Symbols: []string{"GROW.NS"},
					Weights: map[string]float64{"GROW.NS": 1},
				},
				{
					Name:    "bad",
					Symbols: []string{"MISSING.NS"},
					Weights: map[string]float64{"MISSING.NS": 1},
				},
			},
			Start:         testStart,
			End:           testStart.AddDate(0, 0, 60),
			InitialAmount: 100000,
			Frequency:     backtest.Monthly,
			Prices:        prices,
		}

		_, err := comparison.Run(context.Background())
		Expect(err).To(HaveOccurred())
	})
})
