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
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sathyanand-dev/Portfolio-Optimizer/backtest"
	"github.com/sathyanand-dev/Portfolio-Optimizer/common"
	"github.com/sathyanand-dev/Portfolio-Optimizer/optimize"
)

type BacktestRequest struct {
	Symbols            []string           `json:"symbols"`
	Weights            map[string]float64 `json:"weights"`
	StartDate          string             `json:"start_date"`
	EndDate            string             `json:"end_date"`
	InitialAmount      float64            `json:"initial_amount"`
	RebalanceFrequency string             `json:"rebalance_frequency"`
}

type ComparisonPortfolio struct {
	Name    string             `json:"name"`
	Symbols []string           `json:"symbols"`
	Weights map[string]float64 `json:"weights"`
}

type ComparisonRequest struct {
	Portfolios         []ComparisonPortfolio `json:"portfolios"`
	StartDate          string                `json:"start_date"`
	EndDate            string                `json:"end_date"`
	InitialAmount      float64               `json:"initial_amount"`
	RebalanceFrequency string                `json:"rebalance_frequency"`
}

// RunBacktest simulates one fixed-weight portfolio over a historical range
func RunBacktest(c *fiber.Ctx) error {
	var req BacktestRequest
	if err := c.BodyParser(&req); err != nil {
		return renderError(c, &optimize.InvalidInputError{Reason: "could not parse request body"})
	}

	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return renderError(c, err)
	}

	frequency, err := backtest.ParseFrequency(req.RebalanceFrequency)
	if err != nil {
		return renderError(c, &optimize.InvalidInputError{Reason: err.Error()})
	}

	if len(req.Symbols) == 0 {
		return renderError(c, backtest.ErrNoSymbols)
	}
	common.ArrToUpper(req.Symbols)

	prices, err := priceProvider.GetPrices(c.UserContext(), req.Symbols, start, end)
	if err != nil {
		return renderError(c, err)
	}

	bt := &backtest.Backtest{
		Symbols:       req.Symbols,
		Weights:       upperKeys(req.Weights),
		Start:         start,
		End:           end,
		InitialAmount: req.InitialAmount,
		Frequency:     frequency,
		Prices:        prices,
	}

	result, err := bt.Run(c.UserContext())
	if err != nil {
		return renderError(c, err)
	}

	return c.JSON(result)
}

// Compare backtests several portfolios over one shared range and returns
// date-aligned results keyed by portfolio name
func Compare(c *fiber.Ctx) error {
	var req ComparisonRequest
	if err := c.BodyParser(&req); err != nil {
		return renderError(c, &optimize.InvalidInputError{Reason: "could not parse request body"})
	}

	if len(req.Portfolios) == 0 {
		return renderError(c, &optimize.InvalidInputError{Reason: "at least one portfolio is required"})
	}

	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return renderError(c, err)
	}

	frequency, err := backtest.ParseFrequency(req.RebalanceFrequency)
	if err != nil {
		return renderError(c, &optimize.InvalidInputError{Reason: err.Error()})
	}

	// one fetch covering the union of all portfolios' symbols
	seen := make(map[string]struct{})
	union := make([]string, 0)
	portfolios := make([]backtest.Portfolio, 0, len(req.Portfolios))
	for _, pf := range req.Portfolios {
		common.ArrToUpper(pf.Symbols)
		for _, symbol := range pf.Symbols {
			if _, ok := seen[symbol]; !ok {
				seen[symbol] = struct{}{}
				union = append(union, symbol)
			}
		}
		portfolios = append(portfolios, backtest.Portfolio{
			Name:    pf.Name,
			Symbols: pf.Symbols,
			Weights: upperKeys(pf.Weights),
		})
	}

	prices, err := priceProvider.GetPrices(c.UserContext(), union, start, end)
	if err != nil {
		return renderError(c, err)
	}

	comparison := &backtest.Comparison{
		Portfolios:    portfolios,
		Start:         start,
		End:           end,
		InitialAmount: req.InitialAmount,
		Frequency:     frequency,
		Prices:        prices,
	}

	results, err := comparison.Run(c.UserContext())
	if err != nil {
		return renderError(c, err)
	}

	return c.JSON(results)
}

func parseDateRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, &optimize.InvalidInputError{Reason: "could not parse start_date"}
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return time.Time{}, time.Time{}, &optimize.InvalidInputError{Reason: "could not parse end_date"}
	}
	return start, end, nil
}

func upperKeys(weights map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(weights))
	for symbol, w := range weights {
		out[strings.ToUpper(symbol)] = w
	}
	return out
}
