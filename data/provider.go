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

package data

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sathyanand-dev/Portfolio-Optimizer/dataframe"
)

var nan = math.NaN()

// Provider retrieves daily close prices for a set of symbols. The returned
// dataframe has one column per symbol in request order and one row per
// trading day between begin and end inclusive. Days on which a symbol did
// not trade hold NaN.
type Provider interface {
	GetPrices(ctx context.Context, symbols []string, begin, end time.Time) (*dataframe.DataFrame, error)
}

// Static is an in-memory Provider backed by a fixed price frame. It is used
// by tests and by anything that already holds prices.
type Static struct {
	frame *dataframe.DataFrame
}

func NewStatic(frame *dataframe.DataFrame) *Static {
	return &Static{frame: frame}
}

func (s *Static) GetPrices(_ context.Context, symbols []string, begin, end time.Time) (*dataframe.DataFrame, error) {
	if len(symbols) == 0 {
		return nil, ErrNoSymbols
	}
	if end.Before(begin) {
		return nil, ErrInvalidTimeRange
	}

	selected, err := s.frame.Select(symbols)
	if err != nil {
		return nil, fmt.Errorf("%w: one of %v", ErrSymbolNotFound, symbols)
	}
	return selected.Trim(begin, end), nil
}

// mergeSeries joins per-symbol quote series into a single frame over the
// union of their dates. Missing observations are NaN.
func mergeSeries(symbols []string, dates map[string][]time.Time, closes map[string][]float64) *dataframe.DataFrame {
	dateSet := make(map[time.Time]struct{})
	for _, symbolDates := range dates {
		for _, dt := range symbolDates {
			dateSet[dt] = struct{}{}
		}
	}

	allDates := make([]time.Time, 0, len(dateSet))
	for dt := range dateSet {
		allDates = append(allDates, dt)
	}
	sort.Slice(allDates, func(i, j int) bool { return allDates[i].Before(allDates[j]) })

	rowIdx := make(map[time.Time]int, len(allDates))
	for idx, dt := range allDates {
		rowIdx[dt] = idx
	}

	df := &dataframe.DataFrame{
		Dates:    allDates,
		ColNames: symbols,
		Vals:     make([][]float64, len(symbols)),
	}

	for colIdx, symbol := range symbols {
		col := make([]float64, len(allDates))
		for idx := range col {
			col[idx] = nan
		}
		for idx, dt := range dates[symbol] {
			col[rowIdx[dt]] = closes[symbol][idx]
		}
		df.Vals[colIdx] = col
	}

	return df
}
