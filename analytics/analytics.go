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
	"context"
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sathyanand-dev/Portfolio-Optimizer/observability/opentelemetry"
	"go.opentelemetry.io/otel"
)

var ErrNoReturns = errors.New("portfolio return series is empty")

const baseValue = 100.0

// Series is a date-keyed daily return series
type Series struct {
	Dates   []time.Time
	Returns []float64
}

// Request describes a portfolio to analyze. Benchmark is optional; when the
// two series do not share dates, relative metrics are reported null.
type Request struct {
	Name         string
	Symbols      []string
	Weights      []float64
	CurrentValue float64
	Period       string
	RiskFree     float64
	Portfolio    *Series
	Benchmark    *Series
}

type PortfolioInfo struct {
	Name    string    `json:"name"`
	Symbols []string  `json:"symbols"`
	Weights []float64 `json:"weights"`
}

// PerformancePoint is one row of the cumulative growth series, indexed from
// a base of 100
type PerformancePoint struct {
	Date           time.Time `json:"date"`
	PortfolioValue float64   `json:"portfolio_value"`
	BenchmarkValue *float64  `json:"benchmark_value"`
}

type RiskSummary struct {
	VaR95       *float64 `json:"var_95"`
	VaR99       *float64 `json:"var_99"`
	CVaR95      *float64 `json:"cvar_95"`
	CVaR99      *float64 `json:"cvar_99"`
	VaRMethod   string   `json:"var_method"`
	MaxDrawdown *float64 `json:"max_drawdown"`
}

type BenchmarkPerformance struct {
	TotalReturn      *float64 `json:"total_return"`
	AnnualizedReturn *float64 `json:"annualized_return"`
	Volatility       *float64 `json:"volatility"`
}

type PerformanceAnalysis struct {
	CurrentValue          float64               `json:"current_value"`
	TotalReturn           *float64              `json:"total_return"`
	TotalReturnPercentage *float64              `json:"total_return_percentage"`
	AnnualizedReturn      *float64              `json:"annualized_return"`
	Volatility            *float64              `json:"volatility"`
	SharpeRatio           *float64              `json:"sharpe_ratio"`
	SortinoRatio          *float64              `json:"sortino_ratio"`
	MaxDrawdown           *float64              `json:"max_drawdown"`
	CalmarRatio           *float64              `json:"calmar_ratio"`
	Beta                  *float64              `json:"beta"`
	Alpha                 *float64              `json:"alpha"`
	VaR95                 *float64              `json:"var_95"`
	CVaR95                *float64              `json:"cvar_95"`
	TrackingError         *float64              `json:"tracking_error"`
	InformationRatio      *float64              `json:"information_ratio"`
	DownsideDeviation     *float64              `json:"downside_deviation"`
	UpsideDeviation       *float64              `json:"upside_deviation"`
	Correlation           *float64              `json:"correlation"`
	HistoricalPerformance []PerformancePoint    `json:"historical_performance"`
	BenchmarkPerformance  *BenchmarkPerformance `json:"benchmark_performance,omitempty"`
	RiskMetrics           RiskSummary           `json:"risk_metrics"`
	SectorAllocation      map[string]float64    `json:"sector_allocation"`
	DrawdownPeriods       []DrawdownPeriod      `json:"drawdown_periods"`
}

type Response struct {
	PortfolioInfo       PortfolioInfo       `json:"portfolio_info"`
	PerformanceAnalysis PerformanceAnalysis `json:"performance_analysis"`
	Period              string              `json:"period"`
}

// Analyze computes the full analytics bundle for a portfolio return series
func Analyze(ctx context.Context, req *Request) (*Response, error) {
	_, span := otel.Tracer(opentelemetry.Name).Start(ctx, "analytics.Analyze")
	defer span.End()

	if req.Portfolio == nil || len(req.Portfolio.Returns) == 0 {
		return nil, ErrNoReturns
	}

	dates := req.Portfolio.Dates
	portfolio := req.Portfolio.Returns
	var benchmark []float64

	if req.Benchmark != nil && len(req.Benchmark.Returns) > 0 {
		alignedDates, alignedPortfolio, alignedBenchmark := alignByDate(req.Portfolio, req.Benchmark)
		if len(alignedDates) > 0 {
			dates = alignedDates
			portfolio = alignedPortfolio
			benchmark = alignedBenchmark
		} else {
			log.Warn().Str("Portfolio", req.Name).Msg("benchmark shares no dates with portfolio; relative metrics omitted")
		}
	}

	metrics := Compute(portfolio, benchmark, req.RiskFree)

	history := performanceSeries(dates, portfolio, benchmark)
	values := make([]float64, len(history))
	for idx := range history {
		values[idx] = history[idx].PortfolioValue
	}

	analysis := PerformanceAnalysis{
		CurrentValue:          req.CurrentValue,
		TotalReturn:           nullable(metrics.TotalReturn),
		TotalReturnPercentage: nullable(metrics.TotalReturn * 100),
		AnnualizedReturn:      nullable(metrics.AnnualizedReturn),
		Volatility:            nullable(metrics.Volatility),
		SharpeRatio:           nullable(metrics.SharpeRatio),
		SortinoRatio:          nullable(metrics.SortinoRatio),
		MaxDrawdown:           nullable(metrics.MaxDrawdown),
		CalmarRatio:           nullable(metrics.CalmarRatio),
		Beta:                  nullable(metrics.Beta),
		Alpha:                 nullable(metrics.Alpha),
		VaR95:                 nullable(metrics.VaR95),
		CVaR95:                nullable(metrics.CVaR95),
		TrackingError:         nullable(metrics.TrackingError),
		InformationRatio:      nullable(metrics.InformationRatio),
		DownsideDeviation:     nullable(metrics.DownsideDeviation),
		UpsideDeviation:       nullable(metrics.UpsideDeviation),
		Correlation:           nullable(metrics.Correlation),
		HistoricalPerformance: history,
		RiskMetrics: RiskSummary{
			VaR95:       nullable(metrics.VaR95),
			VaR99:       nullable(metrics.VaR99),
			CVaR95:      nullable(metrics.CVaR95),
			CVaR99:      nullable(metrics.CVaR99),
			VaRMethod:   metrics.VaRMethod,
			MaxDrawdown: nullable(metrics.MaxDrawdown),
		},
		SectorAllocation: SectorAllocation(req.Symbols, req.Weights),
		DrawdownPeriods:  DrawdownPeriods(dates, values),
	}

	if benchmark != nil {
		benchMetrics := Compute(benchmark, nil, req.RiskFree)
		analysis.BenchmarkPerformance = &BenchmarkPerformance{
			TotalReturn:      nullable(benchMetrics.TotalReturn),
			AnnualizedReturn: nullable(benchMetrics.AnnualizedReturn),
			Volatility:       nullable(benchMetrics.Volatility),
		}
	}

	return &Response{
		PortfolioInfo: PortfolioInfo{
			Name:    req.Name,
			Symbols: req.Symbols,
			Weights: req.Weights,
		},
		PerformanceAnalysis: analysis,
		Period:              req.Period,
	}, nil
}

// alignByDate inner-joins two return series on their dates
func alignByDate(portfolio, benchmark *Series) ([]time.Time, []float64, []float64) {
	benchIdx := make(map[time.Time]int, len(benchmark.Dates))
	for idx, dt := range benchmark.Dates {
		benchIdx[dt] = idx
	}

	dates := make([]time.Time, 0, len(portfolio.Dates))
	p := make([]float64, 0, len(portfolio.Dates))
	b := make([]float64, 0, len(portfolio.Dates))

	for idx, dt := range portfolio.Dates {
		if bIdx, ok := benchIdx[dt]; ok {
			dates = append(dates, dt)
			p = append(p, portfolio.Returns[idx])
			b = append(b, benchmark.Returns[bIdx])
		}
	}
	return dates, p, b
}

// performanceSeries rolls daily returns into cumulative value from a base
// of 100
func performanceSeries(dates []time.Time, portfolio, benchmark []float64) []PerformancePoint {
	points := make([]PerformancePoint, len(dates))
	pAcc := baseValue
	bAcc := baseValue
	for idx := range dates {
		pAcc *= 1 + portfolio[idx]
		points[idx] = PerformancePoint{Date: dates[idx], PortfolioValue: pAcc}
		if benchmark != nil {
			bAcc *= 1 + benchmark[idx]
			v := bAcc
			points[idx].BenchmarkValue = &v
		}
	}
	return points
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
