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

package analytics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	tradingDays = 252

	// minHistoricalSample is the smallest sample the empirical VaR quantile
	// is trusted on; below it the normal approximation is used instead
	minHistoricalSample = 30

	// VaRHistorical and VaRParametric name the method that produced the
	// VaR figures; recorded on results so the fallback is never silent
	VaRHistorical = "historical"
	VaRParametric = "parametric"
)

// Metrics holds the full set of risk and performance statistics for a daily
// return series. Values that cannot be computed are NaN; they serialize as
// null at the API boundary.
type Metrics struct {
	TotalReturn       float64
	AnnualizedReturn  float64
	Volatility        float64
	SharpeRatio       float64
	SortinoRatio      float64
	MaxDrawdown       float64
	CalmarRatio       float64
	Beta              float64
	Alpha             float64
	VaR95             float64
	VaR99             float64
	CVaR95            float64
	CVaR99            float64
	TrackingError     float64
	InformationRatio  float64
	Correlation       float64
	DownsideDeviation float64
	UpsideDeviation   float64
	VaRMethod         string
}

// Compute derives all metrics from a daily return series. benchmark may be
// nil; it must already be date-aligned with portfolio when present —
// relative metrics are NaN otherwise.
func Compute(portfolio, benchmark []float64, riskFree float64) *Metrics {
	m := &Metrics{
		Beta:             math.NaN(),
		Alpha:            math.NaN(),
		TrackingError:    math.NaN(),
		InformationRatio: math.NaN(),
		Correlation:      math.NaN(),
	}

	if len(portfolio) == 0 {
		m.TotalReturn = math.NaN()
		m.AnnualizedReturn = math.NaN()
		m.Volatility = math.NaN()
		m.SharpeRatio = math.NaN()
		m.SortinoRatio = math.NaN()
		m.MaxDrawdown = math.NaN()
		m.CalmarRatio = math.NaN()
		m.VaR95 = math.NaN()
		m.VaR99 = math.NaN()
		m.CVaR95 = math.NaN()
		m.CVaR99 = math.NaN()
		m.DownsideDeviation = math.NaN()
		m.UpsideDeviation = math.NaN()
		return m
	}

	m.TotalReturn = totalReturn(portfolio)
	m.AnnualizedReturn = annualizedReturn(m.TotalReturn, len(portfolio))

	if len(portfolio) > 1 {
		m.Volatility = stat.StdDev(portfolio, nil) * math.Sqrt(tradingDays)
	}

	m.SharpeRatio = math.NaN()
	if m.Volatility > 0 {
		m.SharpeRatio = (m.AnnualizedReturn - riskFree) / m.Volatility
	}

	m.DownsideDeviation = semiDeviation(portfolio, false)
	m.UpsideDeviation = semiDeviation(portfolio, true)

	m.SortinoRatio = math.NaN()
	if m.DownsideDeviation > 0 {
		m.SortinoRatio = (m.AnnualizedReturn - riskFree) / m.DownsideDeviation
	}

	m.MaxDrawdown = MaxDrawdown(equityCurve(portfolio))
	m.CalmarRatio = math.NaN()
	if m.MaxDrawdown < 0 {
		m.CalmarRatio = m.AnnualizedReturn / math.Abs(m.MaxDrawdown)
	}

	m.VaR95, m.VaRMethod = valueAtRisk(portfolio, 0.05)
	m.VaR99, _ = valueAtRisk(portfolio, 0.01)
	m.CVaR95 = conditionalVaR(portfolio, m.VaR95)
	m.CVaR99 = conditionalVaR(portfolio, m.VaR99)

	if len(benchmark) == len(portfolio) && len(benchmark) > 1 {
		m.computeRelative(portfolio, benchmark, riskFree)
	}

	return m
}

func (m *Metrics) computeRelative(portfolio, benchmark []float64, riskFree float64) {
	benchVariance := stat.Variance(benchmark, nil)
	if benchVariance > 0 {
		m.Beta = stat.Covariance(portfolio, benchmark, nil) / benchVariance
		benchAnnualized := annualizedReturn(totalReturn(benchmark), len(benchmark))
		m.Alpha = m.AnnualizedReturn - (riskFree + m.Beta*(benchAnnualized-riskFree))
		m.Correlation = stat.Correlation(portfolio, benchmark, nil)

		diff := make([]float64, len(portfolio))
		for idx := range portfolio {
			diff[idx] = portfolio[idx] - benchmark[idx]
		}
		m.TrackingError = stat.StdDev(diff, nil) * math.Sqrt(tradingDays)
		if m.TrackingError > 0 {
			m.InformationRatio = (m.AnnualizedReturn - benchAnnualized) / m.TrackingError
		}
	}
}

func totalReturn(returns []float64) float64 {
	acc := 1.0
	for _, r := range returns {
		acc *= 1 + r
	}
	return acc - 1
}

func annualizedReturn(total float64, periods int) float64 {
	if periods == 0 {
		return math.NaN()
	}
	return math.Pow(1+total, tradingDays/float64(periods)) - 1
}

// semiDeviation is the annualized root-mean-square of returns on one side
// of zero
func semiDeviation(returns []float64, upside bool) float64 {
	var sum float64
	for _, r := range returns {
		if (upside && r > 0) || (!upside && r < 0) {
			sum += r * r
		}
	}
	return math.Sqrt(sum/float64(len(returns))) * math.Sqrt(tradingDays)
}

// equityCurve rolls daily returns into a growth-of-1 value series
func equityCurve(returns []float64) []float64 {
	curve := make([]float64, len(returns)+1)
	curve[0] = 1
	for idx, r := range returns {
		curve[idx+1] = curve[idx] * (1 + r)
	}
	return curve
}

// MaxDrawdown is the deepest peak-to-trough decline of a value series,
// always <= 0
func MaxDrawdown(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	peak := values[0]
	maxDD := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		dd := v/peak - 1
		if dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// valueAtRisk returns the p-quantile of the daily return distribution.
// Small samples fall back to a normal approximation; the method used is
// returned so callers can surface it.
func valueAtRisk(returns []float64, p float64) (float64, string) {
	if len(returns) >= minHistoricalSample {
		sorted := make([]float64, len(returns))
		copy(sorted, returns)
		sort.Float64s(sorted)
		return stat.Quantile(p, stat.Empirical, sorted, nil), VaRHistorical
	}

	mean := stat.Mean(returns, nil)
	stdev := 0.0
	if len(returns) > 1 {
		stdev = stat.StdDev(returns, nil)
	}
	if stdev == 0 {
		return mean, VaRParametric
	}

	dist := distuv.Normal{Mu: mean, Sigma: stdev}
	return dist.Quantile(p), VaRParametric
}

// conditionalVaR is the mean of returns at or below the VaR threshold
func conditionalVaR(returns []float64, threshold float64) float64 {
	var sum float64
	var count int
	for _, r := range returns {
		if r <= threshold {
			sum += r
			count++
		}
	}
	if count == 0 {
		return threshold
	}
	return sum / float64(count)
}
