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

package returns

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sathyanand-dev/Portfolio-Optimizer/dataframe"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	// TradingDays is the annualization factor for daily observations
	TradingDays = 252

	// MinObservations is the smallest aligned sample a meaningful estimate
	// can be built from
	MinObservations = 20

	maxConditionNumber = 1e12
	minCorrelationDet  = 1e-12
)

// Matrix holds aligned daily simple returns, one column per symbol
type Matrix struct {
	Symbols []string
	Dates   []time.Time
	data    *mat.Dense // T x N, rows ascending by date
}

// Compute builds a return matrix from a close-price frame. Rows where any
// symbol is missing a price are dropped before differencing so every return
// spans the same pair of trading days for every symbol.
func Compute(prices *dataframe.DataFrame) (*Matrix, error) {
	aligned := prices.DropNA()
	if aligned.Len() < MinObservations+1 {
		symbols := prices.NaNCols()
		if len(symbols) == 0 {
			symbols = prices.ColNames
		}
		return nil, &InsufficientDataError{
			Symbols:      symbols,
			Observations: max(aligned.Len()-1, 0),
			Required:     MinObservations,
		}
	}

	chg := aligned.PercentChange()
	nRows := chg.Len()
	nCols := chg.ColCount()

	data := mat.NewDense(nRows, nCols, nil)
	for colIdx := range chg.Vals {
		for rowIdx := range chg.Vals[colIdx] {
			data.Set(rowIdx, colIdx, chg.Vals[colIdx][rowIdx])
		}
	}

	log.Debug().Strs("Symbols", chg.ColNames).Int("NumObservations", nRows).Msg("computed return matrix")

	return &Matrix{
		Symbols: chg.ColNames,
		Dates:   chg.Dates,
		data:    data,
	}, nil
}

// Len returns the number of return observations
func (m *Matrix) Len() int {
	rows, _ := m.data.Dims()
	return rows
}

// NumAssets returns the number of symbols
func (m *Matrix) NumAssets() int {
	_, cols := m.data.Dims()
	return cols
}

// Col returns the daily return series for column idx
func (m *Matrix) Col(idx int) []float64 {
	rows, _ := m.data.Dims()
	col := make([]float64, rows)
	mat.Col(col, idx, m.data)
	return col
}

// Mean returns the annualized arithmetic mean return vector
func (m *Matrix) Mean() *mat.VecDense {
	_, cols := m.data.Dims()
	mu := mat.NewVecDense(cols, nil)
	for idx := 0; idx < cols; idx++ {
		mu.SetVec(idx, stat.Mean(m.Col(idx), nil)*TradingDays)
	}
	return mu
}

// Covariance returns the annualized sample covariance matrix. A singular or
// near-singular matrix is rejected rather than silently regularized; callers
// who want shrinkage use Ridge explicitly.
func (m *Matrix) Covariance() (*mat.SymDense, error) {
	_, cols := m.data.Dims()
	sigma := mat.NewSymDense(cols, nil)
	stat.CovarianceMatrix(sigma, m.data, nil)

	for i := 0; i < cols; i++ {
		for j := i; j < cols; j++ {
			sigma.SetSym(i, j, sigma.At(i, j)*TradingDays)
		}
	}

	det := mat.Det(sigma)
	cond := mat.Cond(sigma, 2)

	// The raw determinant scales as variance^N and shrinks toward zero for
	// any wide universe, so the gate uses the determinant of the correlation
	// matrix instead: near 1 for independent assets at every count, near 0
	// only as columns approach collinearity.
	corrDet := det
	for i := 0; i < cols; i++ {
		variance := sigma.At(i, i)
		if variance <= 0 {
			return nil, &IllConditionedCovarianceError{Det: det, Cond: cond}
		}
		corrDet /= variance
	}
	if corrDet < minCorrelationDet || cond > maxConditionNumber {
		return nil, &IllConditionedCovarianceError{Det: det, Cond: cond}
	}

	return sigma, nil
}

// Ridge returns sigma + epsilon*I; shrinkage for callers that have decided
// to trade bias for an invertible matrix
func Ridge(sigma *mat.SymDense, epsilon float64) *mat.SymDense {
	n := sigma.SymmetricDim()
	out := mat.NewSymDense(n, nil)
	out.CopySym(sigma)
	for i := 0; i < n; i++ {
		out.SetSym(i, i, out.At(i, i)+epsilon)
	}
	return out
}

// PortfolioReturns collapses the matrix into a single daily return series
// for a fixed-weight portfolio
func (m *Matrix) PortfolioReturns(weights []float64) []float64 {
	rows, cols := m.data.Dims()
	out := make([]float64, rows)
	for rowIdx := 0; rowIdx < rows; rowIdx++ {
		var v float64
		for colIdx := 0; colIdx < cols; colIdx++ {
			v += m.data.At(rowIdx, colIdx) * weights[colIdx]
		}
		out[rowIdx] = v
	}
	return out
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
