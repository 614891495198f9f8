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

package data_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sathyanand-dev/Portfolio-Optimizer/data"
	"github.com/sathyanand-dev/Portfolio-Optimizer/dataframe"
)

func testFrame() *dataframe.DataFrame {
	dates := make([]time.Time, 5)
	reliance := make([]float64, 5)
	tcs := make([]float64, 5)
	dt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for idx := range dates {
		dates[idx] = dt
		dt = dt.AddDate(0, 0, 1)
		reliance[idx] = 2900 + float64(idx)*10
		tcs[idx] = 3800 - float64(idx)*5
	}
	return &dataframe.DataFrame{
		Dates:    dates,
		ColNames: []string{"RELIANCE.NS", "TCS.NS"},
		Vals:     [][]float64{reliance, tcs},
	}
}

var _ = Describe("Static provider", func() {
	var (
		provider *data.Static
		ctx      context.Context
	)

	BeforeEach(func() {
		provider = data.NewStatic(testFrame())
		ctx = context.Background()
	})

	It("returns the requested symbols over the requested range", func() {
		prices, err := provider.GetPrices(ctx, []string{"TCS.NS"},
			time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC))
		Expect(err).NotTo(HaveOccurred())
		Expect(prices.ColNames).To(Equal([]string{"TCS.NS"}))
		Expect(prices.Len()).To(Equal(3))
		Expect(prices.Vals[0][0]).To(BeNumerically("==", 3795))
	})

	It("errors when a symbol is unknown", func() {
		_, err := provider.GetPrices(ctx, []string{"HDFCBANK.NS"},
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
		Expect(err).To(MatchError(data.ErrSymbolNotFound))
	})

	It("errors when no symbols are requested", func() {
		_, err := provider.GetPrices(ctx, nil,
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
		Expect(err).To(MatchError(data.ErrNoSymbols))
	})

	It("errors when the range is inverted", func() {
		_, err := provider.GetPrices(ctx, []string{"TCS.NS"},
			time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		Expect(err).To(MatchError(data.ErrInvalidTimeRange))
	})
})
