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
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/sathyanand-dev/Portfolio-Optimizer/common"
	"github.com/sathyanand-dev/Portfolio-Optimizer/dataframe"
)

const yahooChartURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// Yahoo retrieves daily close prices from the yahoo finance v8 chart API
type Yahoo struct {
	client *http.Client
}

func NewYahoo() *Yahoo {
	return &Yahoo{
		client: http.DefaultClient,
	}
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (y *Yahoo) GetPrices(ctx context.Context, symbols []string, begin, end time.Time) (*dataframe.DataFrame, error) {
	if len(symbols) == 0 {
		return nil, ErrNoSymbols
	}
	if end.Before(begin) {
		return nil, ErrInvalidTimeRange
	}

	dates := make(map[string][]time.Time, len(symbols))
	closes := make(map[string][]float64, len(symbols))

	for _, symbol := range symbols {
		symbolDates, symbolCloses, err := y.fetchSymbol(ctx, symbol, begin, end)
		if err != nil {
			return nil, err
		}
		dates[symbol] = symbolDates
		closes[symbol] = symbolCloses
	}

	return mergeSeries(symbols, dates, closes), nil
}

func (y *Yahoo) fetchSymbol(ctx context.Context, symbol string, begin, end time.Time) ([]time.Time, []float64, error) {
	reqURL := fmt.Sprintf("%s/%s?period1=%d&period2=%d&interval=1d&events=history",
		yahooChartURL, url.PathEscape(symbol), begin.Unix(), end.Add(24*time.Hour).Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("User-Agent", "portfolio-optimizer/"+common.CurrentVersion)

	resp, err := y.client.Do(req)
	if err != nil {
		log.Error().Err(err).Str("Symbol", symbol).Msg("yahoo chart request failed")
		return nil, nil, fmt.Errorf("%w: %s", ErrProviderFailure, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}
	if resp.StatusCode != http.StatusOK {
		log.Error().Int("StatusCode", resp.StatusCode).Str("Symbol", symbol).Msg("yahoo chart request returned error status")
		return nil, nil, fmt.Errorf("%w: status %d for %s", ErrProviderFailure, resp.StatusCode, symbol)
	}

	var chart yahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrProviderFailure, err.Error())
	}

	if chart.Chart.Error != nil {
		log.Warn().Str("Symbol", symbol).Str("Code", chart.Chart.Error.Code).Msg("yahoo chart API error")
		return nil, nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrEmptyResponse, symbol)
	}

	timestamps := chart.Chart.Result[0].Timestamp
	quotes := chart.Chart.Result[0].Indicators.Quote[0].Close
	if len(timestamps) == 0 || len(quotes) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrEmptyResponse, symbol)
	}

	symbolDates := make([]time.Time, 0, len(timestamps))
	symbolCloses := make([]float64, 0, len(timestamps))
	for idx, ts := range timestamps {
		if idx >= len(quotes) {
			break
		}
		if quotes[idx] == 0 || math.IsNaN(quotes[idx]) {
			continue
		}
		// normalize to midnight UTC so dates from different symbols align
		dt := time.Unix(ts, 0).UTC()
		dt = time.Date(dt.Year(), dt.Month(), dt.Day(), 0, 0, 0, 0, time.UTC)
		symbolDates = append(symbolDates, dt)
		symbolCloses = append(symbolCloses, quotes[idx])
	}

	log.Debug().Str("Symbol", symbol).Int("NumQuotes", len(symbolCloses)).Msg("downloaded quotes")
	return symbolDates, symbolCloses, nil
}
