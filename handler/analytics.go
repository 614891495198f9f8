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

package handler

import (
	"fmt"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/sathyanand-dev/Portfolio-Optimizer/analytics"
	"github.com/sathyanand-dev/Portfolio-Optimizer/common"
	"github.com/sathyanand-dev/Portfolio-Optimizer/optimize"
)

type AnalyticsRequest struct {
	Name         string    `json:"name"`
	Symbols      []string  `json:"symbols"`
	Weights      []float64 `json:"weights"`
	CurrentValue float64   `json:"current_value"`
	Period       int       `json:"period"`
	Benchmark    string    `json:"benchmark"`
}

// Analyze computes the risk analytics bundle for a fixed-weight portfolio
func Analyze(c *fiber.Ctx) error {
	var req AnalyticsRequest
	if err := c.BodyParser(&req); err != nil {
		return renderError(c, &optimize.InvalidInputError{Reason: "could not parse request body"})
	}

	if len(req.Symbols) == 0 {
		return renderError(c, &optimize.InvalidInputError{Reason: "at least one symbol is required"})
	}
	if len(req.Weights) != len(req.Symbols) {
		return renderError(c, &optimize.InvalidInputError{
			Reason:  "weights must have one entry per symbol",
			Symbols: req.Symbols,
		})
	}
	var weightSum float64
	for _, w := range req.Weights {
		weightSum += w
	}
	if math.Abs(weightSum-1) > 0.01 {
		return renderError(c, &optimize.InvalidInputError{
			Reason: fmt.Sprintf("weights must sum to 1, got %.4f", weightSum),
		})
	}

	common.ArrToUpper(req.Symbols)

	period := req.Period
	if period <= 0 {
		period = DefaultLookback
	}

	benchmarkSymbol := req.Benchmark
	if benchmarkSymbol == "" {
		benchmarkSymbol = DefaultBenchmark
	}

	matrix, err := loadReturns(c, req.Symbols, period)
	if err != nil {
		return renderError(c, err)
	}

	portfolio := &analytics.Series{
		Dates:   matrix.Dates,
		Returns: matrix.PortfolioReturns(req.Weights),
	}

	// a missing benchmark degrades the response, it does not fail it
	var benchmark *analytics.Series
	if benchMatrix, err := loadBenchmark(c, benchmarkSymbol, period); err != nil {
		log.Warn().Err(err).Str("Benchmark", benchmarkSymbol).Msg("could not load benchmark; relative metrics omitted")
	} else {
		benchmark = benchMatrix
	}

	resp, err := analytics.Analyze(c.UserContext(), &analytics.Request{
		Name:         req.Name,
		Symbols:      req.Symbols,
		Weights:      req.Weights,
		CurrentValue: req.CurrentValue,
		Period:       fmt.Sprintf("%dd", period),
		RiskFree:     optimize.RiskFreeRate(),
		Portfolio:    portfolio,
		Benchmark:    benchmark,
	})
	if err != nil {
		return renderError(c, err)
	}

	return c.JSON(resp)
}

// loadBenchmark fetches the benchmark's own return series; it is aligned
// with the portfolio by date inside the analytics engine
func loadBenchmark(c *fiber.Ctx, symbol string, lookback int) (*analytics.Series, error) {
	end := time.Now()
	begin := end.AddDate(0, 0, -(lookback*7/5 + 14))

	prices, err := priceProvider.GetPrices(c.UserContext(), []string{symbol}, begin, end)
	if err != nil {
		return nil, err
	}

	chg := prices.DropNA().Tail(lookback + 1).PercentChange()
	if chg.Len() == 0 {
		return nil, fmt.Errorf("benchmark %s has no usable history", symbol)
	}

	return &analytics.Series{
		Dates:   chg.Dates,
		Returns: chg.Vals[0],
	}, nil
}
