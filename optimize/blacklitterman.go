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

const (
	// marketRiskAversion is the δ in π = δΣw_ref
	marketRiskAversion = 2.5

	// tau scales the uncertainty of the equilibrium prior
	tau = 0.05

	defaultViewConfidence = 0.5
)

// solveBlackLitterman blends market-implied equilibrium returns with the
// request's views and feeds the posterior mean into the mean-variance
// solver. Without views the posterior is the equilibrium vector itself.
func solveBlackLitterman(req *Request, bounds []Bound, lambda float64) ([]float64, bool, map[string]any, error) {
	n := len(req.Symbols)
	sigma := req.Covariance

	wRef := req.MarketWeights
	if wRef == nil {
		wRef = equalWeights(n)
	}

	// implied equilibrium returns: π = δΣw_ref
	var pi mat.VecDense
	pi.MulVec(sigma, mat.NewVecDense(n, wRef))
	pi.ScaleVec(marketRiskAversion, &pi)

	muBL := &pi
	if len(req.Views) > 0 {
		posterior, err := posteriorMean(req, sigma, &pi)
		if err != nil {
			return nil, false, nil, err
		}
		muBL = posterior
	}

	weights, converged := solveMeanVariance(muBL, sigma, bounds, lambda, req.TargetReturn)

	metadata := map[string]any{
		"tau":            tau,
		"delta":          marketRiskAversion,
		"num_views":      len(req.Views),
		"posterior_mean": vecToSlice(muBL),
	}
	return weights, converged, metadata, nil
}

// posteriorMean computes μ_BL = [(τΣ)⁻¹ + P'Ω⁻¹P]⁻¹ [(τΣ)⁻¹π + P'Ω⁻¹Q]
// where each view is an absolute view on one symbol, so P picks single
// assets and Ω is diagonal with variance τ·σ_kk scaled by confidence.
func posteriorMean(req *Request, sigma *mat.SymDense, pi *mat.VecDense) (*mat.VecDense, error) {
	n := len(req.Symbols)

	tauSigma := mat.NewDense(n, n, nil)
	tauSigma.Scale(tau, sigma)

	var tauSigmaInv mat.Dense
	if err := tauSigmaInv.Inverse(tauSigma); err != nil {
		return nil, fmt.Errorf("could not invert scaled covariance: %w", err)
	}

	// A = (τΣ)⁻¹ + P'Ω⁻¹P ; b = (τΣ)⁻¹π + P'Ω⁻¹Q
	a := mat.NewDense(n, n, nil)
	a.Copy(&tauSigmaInv)

	var b mat.VecDense
	b.MulVec(&tauSigmaInv, pi)

	for _, view := range req.Views {
		idx := indexOf(req.Symbols, view.Symbol)

		confidence := view.Confidence
		if confidence <= 0 || confidence > 1 {
			confidence = defaultViewConfidence
		}
		omega := tau * sigma.At(idx, idx) / confidence
		if omega <= 0 {
			return nil, &InvalidInputError{Reason: "view variance is not positive", Symbols: []string{view.Symbol}}
		}

		a.Set(idx, idx, a.At(idx, idx)+1/omega)
		b.SetVec(idx, b.AtVec(idx)+view.Return/omega)
	}

	var muBL mat.VecDense
	if err := muBL.SolveVec(a, &b); err != nil {
		return nil, fmt.Errorf("could not solve for posterior returns: %w", err)
	}
	return &muBL, nil
}

func vecToSlice(v *mat.VecDense) []float64 {
	out := make([]float64, v.Len())
	for idx := range out {
		out[idx] = v.AtVec(idx)
	}
	return out
}
