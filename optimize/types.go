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

package optimize

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Method selects the optimization algorithm
type Method string

const (
	MeanVariance    Method = "mean_variance"
	MinimumVariance Method = "minimum_variance"
	RiskParity      Method = "risk_parity"
	BlackLitterman  Method = "black_litterman"
	MonteCarlo      Method = "monte_carlo"
)

func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MeanVariance, MinimumVariance, RiskParity, BlackLitterman, MonteCarlo:
		return Method(s), nil
	}
	return "", &InvalidInputError{Reason: fmt.Sprintf("unknown optimization type %q", s)}
}

// RiskTolerance shapes methods that trade return against risk
type RiskTolerance string

const (
	Conservative RiskTolerance = "conservative"
	Moderate     RiskTolerance = "moderate"
	Aggressive   RiskTolerance = "aggressive"
)

func ParseRiskTolerance(s string) (RiskTolerance, error) {
	switch RiskTolerance(s) {
	case Conservative, Moderate, Aggressive:
		return RiskTolerance(s), nil
	case "":
		return Moderate, nil
	}
	return "", &InvalidInputError{Reason: fmt.Sprintf("unknown risk tolerance %q", s)}
}

// riskAversion maps tolerance to the investor risk-aversion coefficient
func (rt RiskTolerance) riskAversion() float64 {
	switch rt {
	case Conservative:
		return 10
	case Aggressive:
		return 2
	default:
		return 5
	}
}

// Bound is a per-symbol weight restriction
type Bound struct {
	Lower float64
	Upper float64
}

// View is an absolute return view on a single symbol used by the
// Black-Litterman posterior. Confidence is in (0, 1]; higher values shrink
// the view's uncertainty.
type View struct {
	Symbol     string
	Return     float64
	Confidence float64
}

// Request carries everything a single optimization needs. Mean and
// Covariance are annualized estimates, typically from the returns engine.
type Request struct {
	Symbols        []string
	Method         Method
	RiskTolerance  RiskTolerance
	TargetReturn   *float64
	RiskAversion   *float64
	NumSimulations int
	Seed           int64
	Bounds         []Bound
	Views          []View
	MarketWeights  []float64
	Mean           *mat.VecDense
	Covariance     *mat.SymDense
}

// Result is the optimized allocation. Weights are in Symbols order and sum
// to 1. Metadata holds per-method detail such as convergence flags.
type Result struct {
	Symbols            []string       `json:"symbols"`
	Weights            []float64      `json:"weights"`
	ExpectedReturn     float64        `json:"expected_return"`
	ExpectedVolatility float64        `json:"expected_volatility"`
	SharpeRatio        float64        `json:"sharpe_ratio"`
	Method             Method         `json:"optimization_type"`
	Metadata           map[string]any `json:"metadata"`
}
