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
	"github.com/gofiber/fiber/v2"
	"github.com/sathyanand-dev/Portfolio-Optimizer/common"
	"github.com/sathyanand-dev/Portfolio-Optimizer/optimize"
)

type ViewRequest struct {
	Symbol     string  `json:"symbol"`
	Return     float64 `json:"return"`
	Confidence float64 `json:"confidence"`
}

type OptimizationRequest struct {
	Symbols          []string      `json:"symbols"`
	OptimizationType string        `json:"optimization_type"`
	RiskTolerance    string        `json:"risk_tolerance"`
	TargetReturn     *float64      `json:"target_return"`
	RiskAversion     *float64      `json:"risk_aversion"`
	NumSimulations   int           `json:"num_simulations"`
	Seed             int64         `json:"seed"`
	LookbackPeriod   int           `json:"lookback_period"`
	MinWeight        *float64      `json:"min_weight"`
	MaxWeight        *float64      `json:"max_weight"`
	Views            []ViewRequest `json:"views"`
}

// Optimize runs a single portfolio optimization against fresh market data
func Optimize(c *fiber.Ctx) error {
	var req OptimizationRequest
	if err := c.BodyParser(&req); err != nil {
		return renderError(c, &optimize.InvalidInputError{Reason: "could not parse request body"})
	}

	method, err := optimize.ParseMethod(req.OptimizationType)
	if err != nil {
		return renderError(c, err)
	}
	tolerance, err := optimize.ParseRiskTolerance(req.RiskTolerance)
	if err != nil {
		return renderError(c, err)
	}

	if len(req.Symbols) < 2 {
		return renderError(c, &optimize.InvalidInputError{
			Reason:  "at least two symbols are required",
			Symbols: req.Symbols,
		})
	}
	common.ArrToUpper(req.Symbols)

	lookback := req.LookbackPeriod
	if lookback <= 0 {
		lookback = DefaultLookback
	}

	matrix, err := loadReturns(c, req.Symbols, lookback)
	if err != nil {
		return renderError(c, err)
	}

	sigma, err := matrix.Covariance()
	if err != nil {
		return renderError(c, err)
	}

	var bounds []optimize.Bound
	if req.MinWeight != nil || req.MaxWeight != nil {
		bound := optimize.Bound{Lower: 0, Upper: 1}
		if req.MinWeight != nil {
			bound.Lower = *req.MinWeight
		}
		if req.MaxWeight != nil {
			bound.Upper = *req.MaxWeight
		}
		bounds = make([]optimize.Bound, len(matrix.Symbols))
		for idx := range bounds {
			bounds[idx] = bound
		}
	}

	views := make([]optimize.View, 0, len(req.Views))
	for _, view := range req.Views {
		views = append(views, optimize.View{
			Symbol:     view.Symbol,
			Return:     view.Return,
			Confidence: view.Confidence,
		})
	}

	result, err := optimize.Optimize(c.UserContext(), &optimize.Request{
		Symbols:        matrix.Symbols,
		Method:         method,
		RiskTolerance:  tolerance,
		TargetReturn:   req.TargetReturn,
		RiskAversion:   req.RiskAversion,
		NumSimulations: req.NumSimulations,
		Seed:           req.Seed,
		Bounds:         bounds,
		Views:          views,
		Mean:           matrix.Mean(),
		Covariance:     sigma,
	})
	if err != nil {
		return renderError(c, err)
	}

	return c.JSON(result)
}
