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
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/sathyanand-dev/Portfolio-Optimizer/analytics"
	"github.com/sathyanand-dev/Portfolio-Optimizer/backtest"
	"github.com/sathyanand-dev/Portfolio-Optimizer/data"
	"github.com/sathyanand-dev/Portfolio-Optimizer/optimize"
	"github.com/sathyanand-dev/Portfolio-Optimizer/returns"
)

// DefaultBenchmark is the index used when a request names none
const DefaultBenchmark = "^NSEI"

// DefaultLookback is the return-history window in trading days
const DefaultLookback = 252

var priceProvider data.Provider

// Initialize injects the price provider used by all handlers
func Initialize(provider data.Provider) {
	priceProvider = provider
}

type PingResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message" example:"API is alive"`
	Time    string `json:"time" example:"2024-06-19T08:09:10.115924+05:30"`
}

func Ping(c *fiber.Ctx) error {
	now, err := time.Now().MarshalText()
	if err != nil {
		log.Error().Err(err).Msg("error while getting time in ping")
		return c.JSON(PingResponse{
			Status:  "error",
			Message: err.Error(),
		})
	}
	return c.JSON(PingResponse{
		Status:  "success",
		Message: "API is alive",
		Time:    string(now),
	})
}

// renderError maps the engine error taxonomy onto HTTP statuses with
// structured detail for the client
func renderError(c *fiber.Ctx, err error) error {
	var (
		invalidInput *optimize.InvalidInputError
		infeasible   *optimize.InfeasibleConstraintsError
		insufficient *returns.InsufficientDataError
		illCond      *returns.IllConditionedCovarianceError
		dataGap      *backtest.DataGapError
	)

	status := fiber.StatusInternalServerError
	detail := fiber.Map{}

	switch {
	case errors.As(err, &invalidInput):
		status = fiber.StatusBadRequest
		detail["symbols"] = invalidInput.Symbols
	case errors.As(err, &infeasible):
		status = fiber.StatusBadRequest
	case errors.Is(err, backtest.ErrNoSymbols),
		errors.Is(err, backtest.ErrMissingWeight),
		errors.Is(err, backtest.ErrWeightSum),
		errors.Is(err, backtest.ErrTimeInverted),
		errors.Is(err, backtest.ErrInvalidAmount),
		errors.Is(err, analytics.ErrNoReturns),
		errors.Is(err, data.ErrNoSymbols),
		errors.Is(err, data.ErrInvalidTimeRange):
		status = fiber.StatusBadRequest
	case errors.As(err, &insufficient):
		status = fiber.StatusUnprocessableEntity
		detail["symbols"] = insufficient.Symbols
		detail["observations"] = insufficient.Observations
		detail["required"] = insufficient.Required
	case errors.As(err, &illCond):
		status = fiber.StatusUnprocessableEntity
		detail["determinant"] = illCond.Det
		detail["condition_number"] = illCond.Cond
	case errors.As(err, &dataGap):
		status = fiber.StatusUnprocessableEntity
		detail["symbol"] = dataGap.Symbol
		detail["date"] = dataGap.Date.Format("2006-01-02")
	case errors.Is(err, backtest.ErrInsufficientPrices):
		status = fiber.StatusUnprocessableEntity
	case errors.Is(err, data.ErrSymbolNotFound),
		errors.Is(err, data.ErrEmptyResponse):
		status = fiber.StatusNotFound
	case errors.Is(err, data.ErrProviderFailure):
		status = fiber.StatusBadGateway
	}

	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("Path", c.Path()).Msg("request failed")
	} else {
		log.Warn().Err(err).Str("Path", c.Path()).Int("StatusCode", status).Msg("request rejected")
	}

	return c.Status(status).JSON(fiber.Map{
		"error":  err.Error(),
		"detail": detail,
	})
}

// loadReturns fetches prices for the symbols and builds an aligned return
// matrix over the last lookback trading days
func loadReturns(c *fiber.Ctx, symbols []string, lookback int) (*returns.Matrix, error) {
	end := time.Now()
	// calendar cushion: markets trade roughly 5 of every 7 days
	begin := end.AddDate(0, 0, -(lookback*7/5 + 14))

	prices, err := priceProvider.GetPrices(c.UserContext(), symbols, begin, end)
	if err != nil {
		return nil, err
	}

	return returns.Compute(prices.DropNA().Tail(lookback + 1))
}
