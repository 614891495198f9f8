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

package backtest

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sathyanand-dev/Portfolio-Optimizer/analytics"
	"github.com/sathyanand-dev/Portfolio-Optimizer/dataframe"
	"github.com/sathyanand-dev/Portfolio-Optimizer/observability/opentelemetry"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
)

// Frequency controls how often holdings are reset to target weights
type Frequency string

const (
	Daily     Frequency = "daily"
	Weekly    Frequency = "weekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
)

func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(s) {
	case Daily, Weekly, Monthly, Quarterly:
		return Frequency(s), nil
	case "":
		return Monthly, nil
	}
	return "", fmt.Errorf("unknown rebalance frequency %q", s)
}

// interval is the rebalance period in trading days
func (f Frequency) interval() int {
	switch f {
	case Daily:
		return 1
	case Weekly:
		return 5
	case Quarterly:
		return 63
	default:
		return 21
	}
}

// Backtest simulates holding a fixed-weight portfolio over a price history
type Backtest struct {
	Symbols       []string
	Weights       map[string]float64
	Start         time.Time
	End           time.Time
	InitialAmount float64
	Frequency     Frequency
	Prices        *dataframe.DataFrame
}

// DailyValue is one row of the simulated equity curve
type DailyValue struct {
	Date           time.Time `json:"date"`
	PortfolioValue float64   `json:"portfolio_value"`
	Return         float64   `json:"return"`
}

// Result summarizes a completed simulation. SharpeRatio is nil when the
// curve has zero volatility.
type Result struct {
	TotalReturn  float64      `json:"total_return"`
	AnnualReturn float64      `json:"annual_return"`
	Volatility   float64      `json:"volatility"`
	SharpeRatio  *float64     `json:"sharpe_ratio"`
	MaxDrawdown  float64      `json:"max_drawdown"`
	DailyReturns []DailyValue `json:"daily_returns"`
}

// Run validates the configuration, simulates the portfolio day by day, and
// summarizes the resulting equity curve. Holdings are share counts: between
// rebalances they are fixed and values float with prices; on a rebalance
// boundary they reset to target weights at that day's prices.
func (b *Backtest) Run(ctx context.Context) (*Result, error) {
	_, span := otel.Tracer(opentelemetry.Name).Start(ctx, "backtest.Run")
	defer span.End()

	prices, err := b.validate()
	if err != nil {
		return nil, err
	}

	targets := make([]float64, len(b.Symbols))
	for idx, symbol := range b.Symbols {
		targets[idx] = b.Weights[symbol]
	}

	nDays := prices.Len()
	interval := b.Frequency.interval()

	// holdings are share counts, initialized at the first day's prices
	shares := make([]float64, len(b.Symbols))
	for idx := range b.Symbols {
		shares[idx] = targets[idx] * b.InitialAmount / prices.Vals[idx][0]
	}

	curve := make([]DailyValue, nDays)
	curve[0] = DailyValue{Date: prices.Dates[0], PortfolioValue: b.InitialAmount, Return: 0}

	for day := 1; day < nDays; day++ {
		var value float64
		for idx := range b.Symbols {
			value += shares[idx] * prices.Vals[idx][day]
		}

		curve[day] = DailyValue{
			Date:           prices.Dates[day],
			PortfolioValue: value,
			Return:         value/curve[day-1].PortfolioValue - 1,
		}

		if day%interval == 0 {
			for idx := range b.Symbols {
				shares[idx] = targets[idx] * value / prices.Vals[idx][day]
			}
		}
	}

	log.Debug().
		Strs("Symbols", b.Symbols).
		Int("NumDays", nDays).
		Str("Frequency", string(b.Frequency)).
		Msg("completed backtest simulation")

	return summarize(curve, b.InitialAmount), nil
}

func (b *Backtest) validate() (*dataframe.DataFrame, error) {
	if len(b.Symbols) == 0 {
		return nil, ErrNoSymbols
	}
	if b.InitialAmount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !b.Start.Before(b.End) {
		return nil, ErrTimeInverted
	}

	var weightSum float64
	for _, symbol := range b.Symbols {
		w, ok := b.Weights[symbol]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingWeight, symbol)
		}
		weightSum += w
	}
	if math.Abs(weightSum-1) > 0.01 {
		return nil, fmt.Errorf("%w: got %.4f", ErrWeightSum, weightSum)
	}

	selected, err := b.Prices.Select(b.Symbols)
	if err != nil {
		return nil, fmt.Errorf("price data missing for a requested symbol: %w", err)
	}
	prices := selected.Trim(b.Start, b.End)
	if prices.Len() < 2 {
		return nil, ErrInsufficientPrices
	}

	for colIdx, symbol := range prices.ColNames {
		for rowIdx, v := range prices.Vals[colIdx] {
			if math.IsNaN(v) {
				return nil, &DataGapError{Symbol: symbol, Date: prices.Dates[rowIdx]}
			}
		}
	}

	return prices, nil
}

func summarize(curve []DailyValue, initialAmount float64) *Result {
	returns := make([]float64, len(curve)-1)
	for idx := 1; idx < len(curve); idx++ {
		returns[idx-1] = curve[idx].Return
	}

	values := make([]float64, len(curve))
	for idx := range curve {
		values[idx] = curve[idx].PortfolioValue
	}

	metrics := analytics.Compute(returns, nil, riskFreeRate())

	result := &Result{
		TotalReturn:  curve[len(curve)-1].PortfolioValue/initialAmount - 1,
		AnnualReturn: metrics.AnnualizedReturn,
		Volatility:   metrics.Volatility,
		MaxDrawdown:  analytics.MaxDrawdown(values),
		DailyReturns: curve,
	}

	if !math.IsNaN(metrics.SharpeRatio) {
		sharpe := metrics.SharpeRatio
		result.SharpeRatio = &sharpe
	}

	return result
}

func riskFreeRate() float64 {
	if viper.IsSet("portfolio.risk_free_rate") {
		return viper.GetFloat64("portfolio.risk_free_rate")
	}
	return 0.07
}
