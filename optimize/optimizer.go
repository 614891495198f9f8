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
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"github.com/sathyanand-dev/Portfolio-Optimizer/observability/opentelemetry"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const feasibilityTol = 1e-9

// Optimize dispatches the request to the selected method and computes the
// shared performance figures from the final weights. Every method is a pure
// function of (mean, covariance, bounds); concurrent calls are safe.
func Optimize(ctx context.Context, req *Request) (*Result, error) {
	_, span := otel.Tracer(opentelemetry.Name).Start(ctx, "optimize.Optimize")
	defer span.End()

	bounds, err := validate(req)
	if err != nil {
		return nil, err
	}

	var (
		weights   []float64
		metadata  map[string]any
		lambda    = riskAversionLambda(req)
		riskFree  = RiskFreeRate()
		converged = true
	)

	switch req.Method {
	case MeanVariance:
		weights, converged = solveMeanVariance(req.Mean, req.Covariance, bounds, lambda, req.TargetReturn)
		metadata = map[string]any{"risk_aversion": 1 / lambda}
	case MinimumVariance:
		weights, converged = solveMeanVariance(req.Mean, req.Covariance, bounds, 0, nil)
		metadata = map[string]any{}
	case RiskParity:
		var iterations int
		weights, converged, iterations = solveRiskParity(req.Covariance, bounds)
		metadata = map[string]any{"iterations": iterations}
	case BlackLitterman:
		weights, converged, metadata, err = solveBlackLitterman(req, bounds, lambda)
		if err != nil {
			return nil, err
		}
	case MonteCarlo:
		weights, metadata = solveMonteCarlo(req, bounds, riskFree)
	default:
		return nil, &InvalidInputError{Reason: fmt.Sprintf("unknown optimization type %q", req.Method)}
	}

	metadata["converged"] = converged
	if !converged {
		log.Warn().Str("Method", string(req.Method)).Msg("optimization did not converge; returning best-found weights")
	}

	expectedReturn, expectedVolatility := portfolioStats(weights, req.Mean, req.Covariance)
	sharpe := math.NaN()
	if expectedVolatility > 0 {
		sharpe = (expectedReturn - riskFree) / expectedVolatility
	}

	return &Result{
		Symbols:            req.Symbols,
		Weights:            weights,
		ExpectedReturn:     expectedReturn,
		ExpectedVolatility: expectedVolatility,
		SharpeRatio:        sharpe,
		Method:             req.Method,
		Metadata:           metadata,
	}, nil
}

// RiskFreeRate returns the configured annualized risk-free rate
func RiskFreeRate() float64 {
	if viper.IsSet("portfolio.risk_free_rate") {
		return viper.GetFloat64("portfolio.risk_free_rate")
	}
	return 0.07
}

func riskAversionLambda(req *Request) float64 {
	delta := req.RiskTolerance.riskAversion()
	if req.RiskAversion != nil && *req.RiskAversion > 0 {
		delta = *req.RiskAversion
	}
	return 1 / delta
}

func validate(req *Request) ([]Bound, error) {
	n := len(req.Symbols)
	if n < 2 {
		return nil, &InvalidInputError{Reason: "at least two symbols are required", Symbols: req.Symbols}
	}
	if req.Mean == nil || req.Covariance == nil {
		return nil, &InvalidInputError{Reason: "mean and covariance estimates are required"}
	}
	if req.Mean.Len() != n {
		return nil, &InvalidInputError{Reason: fmt.Sprintf("mean vector has %d entries for %d symbols", req.Mean.Len(), n)}
	}
	if req.Covariance.SymmetricDim() != n {
		return nil, &InvalidInputError{Reason: fmt.Sprintf("covariance matrix is %dx%d for %d symbols",
			req.Covariance.SymmetricDim(), req.Covariance.SymmetricDim(), n)}
	}
	if req.MarketWeights != nil && len(req.MarketWeights) != n {
		return nil, &InvalidInputError{Reason: "market weights must have one entry per symbol"}
	}
	for _, view := range req.Views {
		if indexOf(req.Symbols, view.Symbol) < 0 {
			return nil, &InvalidInputError{Reason: "view references unknown symbol", Symbols: []string{view.Symbol}}
		}
	}

	bounds := req.Bounds
	if len(bounds) == 0 {
		bounds = make([]Bound, n)
		for idx := range bounds {
			bounds[idx] = Bound{Lower: 0, Upper: 1}
		}
	}
	if len(bounds) != n {
		return nil, &InvalidInputError{Reason: "bounds must have one entry per symbol"}
	}

	var lowerSum, upperSum float64
	for idx, b := range bounds {
		if b.Lower > b.Upper {
			return nil, &InvalidInputError{Reason: fmt.Sprintf("lower bound exceeds upper bound for %s", req.Symbols[idx])}
		}
		lowerSum += b.Lower
		upperSum += b.Upper
	}
	if lowerSum > 1+feasibilityTol {
		return nil, &InfeasibleConstraintsError{Reason: fmt.Sprintf("lower bounds sum to %.4f > 1", lowerSum)}
	}
	if upperSum < 1-feasibilityTol {
		return nil, &InfeasibleConstraintsError{Reason: fmt.Sprintf("upper bounds sum to %.4f < 1", upperSum)}
	}

	return bounds, nil
}

func indexOf(symbols []string, symbol string) int {
	for idx, s := range symbols {
		if s == symbol {
			return idx
		}
	}
	return -1
}

func portfolioStats(weights []float64, mu *mat.VecDense, sigma *mat.SymDense) (float64, float64) {
	w := mat.NewVecDense(len(weights), weights)

	expectedReturn := mat.Dot(mu, w)

	var sw mat.VecDense
	sw.MulVec(sigma, w)
	variance := mat.Dot(w, &sw)

	return expectedReturn, math.Sqrt(math.Max(variance, 0))
}

func clampToBounds(x []float64, bounds []Bound) []float64 {
	proj := make([]float64, len(x))
	for idx := range x {
		proj[idx] = math.Max(bounds[idx].Lower, math.Min(bounds[idx].Upper, x[idx]))
	}
	return proj
}

// normalizeWithBounds moves x onto the intersection of the weight-sum
// constraint and the box constraints. The residual is spread evenly across
// coordinates that still have slack; with feasible bounds this terminates
// with the sum exact to machine precision.
func normalizeWithBounds(x []float64, bounds []Bound) []float64 {
	w := clampToBounds(x, bounds)

	for iter := 0; iter < 50; iter++ {
		diff := 1 - floats.Sum(w)
		if math.Abs(diff) <= 1e-12 {
			return w
		}

		free := make([]int, 0, len(w))
		for idx := range w {
			if diff > 0 && w[idx] < bounds[idx].Upper-1e-15 {
				free = append(free, idx)
			} else if diff < 0 && w[idx] > bounds[idx].Lower+1e-15 {
				free = append(free, idx)
			}
		}
		if len(free) == 0 {
			return w
		}

		share := diff / float64(len(free))
		for _, idx := range free {
			w[idx] = math.Max(bounds[idx].Lower, math.Min(bounds[idx].Upper, w[idx]+share))
		}
	}

	return w
}

func equalWeights(n int) []float64 {
	w := make([]float64, n)
	for idx := range w {
		w[idx] = 1 / float64(n)
	}
	return w
}
