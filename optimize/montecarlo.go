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
	"math"
	"math/rand"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
)

const (
	// DefaultSimulations is the Monte Carlo sample count when the request
	// does not specify one
	DefaultSimulations = 5000

	// conservativeMinReturn filters candidates for conservative investors
	conservativeMinReturn = 0.05

	// moderateTargetVol is the volatility a moderate investor is steered toward
	moderateTargetVol = 0.15

	minReportableWeight = 0.005
)

type candidate struct {
	weights    []float64
	ret        float64
	volatility float64
	sharpe     float64
}

// solveMonteCarlo samples random long-only weight vectors (Dirichlet(1,...,1)
// via normalized exponential draws) and picks the candidate matching the
// request's risk tolerance. A fixed seed makes the draw reproducible.
func solveMonteCarlo(req *Request, bounds []Bound, riskFree float64) ([]float64, map[string]any) {
	n := len(req.Symbols)

	numSims := req.NumSimulations
	if numSims <= 0 {
		numSims = DefaultSimulations
	}

	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	candidates := make([]candidate, 0, numSims)
	for sim := 0; sim < numSims; sim++ {
		draw := make([]float64, n)
		for idx := range draw {
			draw[idx] = rng.ExpFloat64()
		}
		floats.Scale(1/floats.Sum(draw), draw)

		w := normalizeWithBounds(draw, bounds)
		ret, vol := portfolioStats(w, req.Mean, req.Covariance)

		sharpe := math.Inf(-1)
		if vol > 0 {
			sharpe = (ret - riskFree) / vol
		}
		candidates = append(candidates, candidate{weights: w, ret: ret, volatility: vol, sharpe: sharpe})
	}

	chosen := selectCandidate(candidates, req.RiskTolerance)
	weights := cleanWeights(candidates[chosen].weights, bounds)

	// rank 1 is the best Sharpe among all candidates
	rank := 1
	for idx := range candidates {
		if candidates[idx].sharpe > candidates[chosen].sharpe {
			rank++
		}
	}

	metadata := map[string]any{
		"num_simulations": numSims,
		"rank":            rank,
		"risk_tolerance":  string(req.RiskTolerance),
	}
	if req.Seed != 0 {
		metadata["seed"] = req.Seed
	}
	return weights, metadata
}

// selectCandidate applies the per-tolerance selection rule:
// aggressive takes the best Sharpe outright, conservative takes the least
// volatile portfolio that still clears a minimum return, and moderate takes
// the above-median-Sharpe candidate closest to a mid-range volatility.
func selectCandidate(candidates []candidate, tolerance RiskTolerance) int {
	switch tolerance {
	case Aggressive:
		best := 0
		for idx := range candidates {
			if candidates[idx].sharpe > candidates[best].sharpe {
				best = idx
			}
		}
		return best

	case Conservative:
		best := -1
		for idx := range candidates {
			if candidates[idx].ret < conservativeMinReturn {
				continue
			}
			if best < 0 || candidates[idx].volatility < candidates[best].volatility {
				best = idx
			}
		}
		if best >= 0 {
			return best
		}
		// nothing clears the return floor; fall back to least volatile overall
		best = 0
		for idx := range candidates {
			if candidates[idx].volatility < candidates[best].volatility {
				best = idx
			}
		}
		return best

	default: // Moderate
		sharpes := make([]float64, len(candidates))
		for idx := range candidates {
			sharpes[idx] = candidates[idx].sharpe
		}
		sort.Float64s(sharpes)
		median := sharpes[len(sharpes)/2]

		best := -1
		bestDist := math.Inf(1)
		for idx := range candidates {
			if candidates[idx].sharpe < median {
				continue
			}
			dist := math.Abs(candidates[idx].volatility - moderateTargetVol)
			if dist < bestDist {
				best = idx
				bestDist = dist
			}
		}
		if best < 0 {
			best = 0
		}
		return best
	}
}

// cleanWeights zeroes dust positions and renormalizes; skipped for any
// symbol whose lower bound would be violated by zeroing. Renormalization is
// by scaling so a zeroed position stays at zero; if scaling would breach a
// bound the weights are projected instead.
func cleanWeights(weights []float64, bounds []Bound) []float64 {
	cleaned := make([]float64, len(weights))
	copy(cleaned, weights)

	var sum float64
	for idx := range cleaned {
		if cleaned[idx] < minReportableWeight && bounds[idx].Lower == 0 {
			cleaned[idx] = 0
		}
		sum += cleaned[idx]
	}
	if sum <= 0 {
		return normalizeWithBounds(weights, bounds)
	}

	for idx := range cleaned {
		cleaned[idx] /= sum
	}
	for idx := range cleaned {
		if cleaned[idx] < bounds[idx].Lower-1e-12 || cleaned[idx] > bounds[idx].Upper+1e-12 {
			return normalizeWithBounds(cleaned, bounds)
		}
	}
	return cleaned
}
