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
	gooptimize "gonum.org/v1/gonum/optimize"

	"gonum.org/v1/gonum/mat"
)

const penaltyWeight = 1000.0

// solveMeanVariance minimizes w'Σw - λμ'w subject to Σw = 1 and the box
// constraints, via a quadratic-penalty formulation. λ = 0 reduces to the
// minimum-variance problem. An optional target return adds a
// (μ'w - target)² penalty. Returns the weights and a convergence flag;
// non-convergence yields the best-found point, never an error.
func solveMeanVariance(mu *mat.VecDense, sigma *mat.SymDense, bounds []Bound, lambda float64, targetReturn *float64) ([]float64, bool) {
	n := mu.Len()

	problem := gooptimize.Problem{
		Func: func(x []float64) float64 {
			w := clampToBounds(x, bounds)

			var portfolioReturn, variance, sum float64
			for i := 0; i < n; i++ {
				portfolioReturn += mu.AtVec(i) * w[i]
				sum += w[i]
				for j := 0; j < n; j++ {
					variance += w[i] * w[j] * sigma.At(i, j)
				}
			}

			obj := variance - lambda*portfolioReturn
			obj += penaltyWeight * (sum - 1) * (sum - 1)
			if targetReturn != nil {
				miss := portfolioReturn - *targetReturn
				obj += penaltyWeight * miss * miss
			}
			return obj
		},
		Grad: func(grad, x []float64) {
			w := clampToBounds(x, bounds)

			var portfolioReturn, sum float64
			for i := 0; i < n; i++ {
				portfolioReturn += mu.AtVec(i) * w[i]
				sum += w[i]
			}

			for i := 0; i < n; i++ {
				grad[i] = -lambda * mu.AtVec(i)
				for j := 0; j < n; j++ {
					grad[i] += 2 * sigma.At(i, j) * w[j]
				}
				grad[i] += 2 * penaltyWeight * (sum - 1)
				if targetReturn != nil {
					grad[i] += 2 * penaltyWeight * (portfolioReturn - *targetReturn) * mu.AtVec(i)
				}
			}
		},
	}

	initial := equalWeights(n)

	result, err := gooptimize.Minimize(problem, initial, &gooptimize.Settings{}, &gooptimize.BFGS{})
	if err != nil || result == nil || !acceptableStatus(result.Status) {
		fallback, fallbackErr := gooptimize.Minimize(problem, initial, &gooptimize.Settings{}, &gooptimize.NelderMead{})
		if fallbackErr == nil {
			result = fallback
		}
	}

	x := initial
	converged := false
	if result != nil {
		x = result.X
		converged = acceptableStatus(result.Status)
	}

	return normalizeWithBounds(x, bounds), converged
}

func acceptableStatus(status gooptimize.Status) bool {
	switch status {
	case gooptimize.Success, gooptimize.GradientThreshold, gooptimize.FunctionConvergence:
		return true
	}
	return false
}
