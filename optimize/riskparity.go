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

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	riskParityTol     = 1e-6
	riskParityMaxIter = 1000
	riskParityFloor   = 1e-3
)

// solveRiskParity finds weights where every asset contributes equally to
// portfolio variance, w_i(Σw)_i = w_j(Σw)_j, via a damped multiplicative
// fixed-point iteration. Weights stay strictly positive. On hitting the
// iteration cap the best-found weights are returned with converged=false.
func solveRiskParity(sigma *mat.SymDense, bounds []Bound) ([]float64, bool, int) {
	n := sigma.SymmetricDim()
	w := equalWeights(n)

	for iter := 0; iter < riskParityMaxIter; iter++ {
		wVec := mat.NewVecDense(n, w)
		var sw mat.VecDense
		sw.MulVec(sigma, wVec)

		totalVar := mat.Dot(wVec, &sw)
		if totalVar <= 0 {
			// degenerate covariance; equal weight is the only sensible answer
			return normalizeWithBounds(w, bounds), false, iter
		}

		target := totalVar / float64(n)
		spread := 0.0
		for i := 0; i < n; i++ {
			contribution := w[i] * sw.AtVec(i)
			spread = math.Max(spread, math.Abs(contribution/totalVar-1/float64(n)))
		}
		if spread < riskParityTol {
			return normalizeWithBounds(w, bounds), true, iter
		}

		// damped update: w_i <- w_i * sqrt(target / contribution)
		for i := 0; i < n; i++ {
			contribution := math.Max(w[i]*sw.AtVec(i), riskParityFloor*target)
			w[i] *= math.Sqrt(target / contribution)
			w[i] = math.Max(w[i], riskParityFloor)
		}
		floats.Scale(1/floats.Sum(w), w)
	}

	return normalizeWithBounds(w, bounds), false, riskParityMaxIter
}
