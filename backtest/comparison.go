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

package backtest

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sathyanand-dev/Portfolio-Optimizer/dataframe"
	"github.com/sathyanand-dev/Portfolio-Optimizer/observability/opentelemetry"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

// Portfolio names one candidate allocation in a comparison
type Portfolio struct {
	Name    string
	Symbols []string
	Weights map[string]float64
}

// Comparison backtests several portfolios over one shared date range and
// price history
type Comparison struct {
	Portfolios    []Portfolio
	Start         time.Time
	End           time.Time
	InitialAmount float64
	Frequency     Frequency
	Prices        *dataframe.DataFrame
}

// Run executes one backtest per portfolio concurrently. Each simulation is
// a pure function of its inputs so no coordination is needed beyond the
// errgroup. All equity curves are inner-joined on their common date index
// before returning so every result shares the same date set.
func (c *Comparison) Run(ctx context.Context) (map[string]*Result, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "backtest.Comparison.Run")
	defer span.End()

	results := make([]*Result, len(c.Portfolios))

	eg, egCtx := errgroup.WithContext(ctx)
	for idx := range c.Portfolios {
		idx := idx
		pf := c.Portfolios[idx]
		eg.Go(func() error {
			bt := &Backtest{
				Symbols:       pf.Symbols,
				Weights:       pf.Weights,
				Start:         c.Start,
				End:           c.End,
				InitialAmount: c.InitialAmount,
				Frequency:     c.Frequency,
				Prices:        c.Prices,
			}
			res, err := bt.Run(egCtx)
			if err != nil {
				log.Error().Err(err).Str("Portfolio", pf.Name).Msg("backtest failed in comparison")
				return err
			}
			results[idx] = res
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	alignCurves(results)

	keyed := make(map[string]*Result, len(results))
	for idx, pf := range c.Portfolios {
		keyed[pf.Name] = results[idx]
	}
	return keyed, nil
}

// alignCurves drops curve rows whose date is not present in every result
func alignCurves(results []*Result) {
	if len(results) < 2 {
		return
	}

	counts := make(map[time.Time]int)
	for _, res := range results {
		for _, dv := range res.DailyReturns {
			counts[dv.Date]++
		}
	}

	for _, res := range results {
		aligned := make([]DailyValue, 0, len(res.DailyReturns))
		for _, dv := range res.DailyReturns {
			if counts[dv.Date] == len(results) {
				aligned = append(aligned, dv)
			}
		}
		res.DailyReturns = aligned
	}
}
