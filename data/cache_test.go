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
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sathyanand-dev/Portfolio-Optimizer/data"
	"github.com/sathyanand-dev/Portfolio-Optimizer/dataframe"
	"github.com/spf13/viper"
)

// countingProvider counts fetches so cache hits can be observed
type countingProvider struct {
	inner data.Provider
	calls int
}

func (p *countingProvider) GetPrices(ctx context.Context, symbols []string, begin, end time.Time) (*dataframe.DataFrame, error) {
	p.calls++
	return p.inner.GetPrices(ctx, symbols, begin, end)
}

var _ = Describe("Cache", func() {
	var (
		provider *countingProvider
		cache    *data.Cache
		ctx      context.Context
		begin    time.Time
		end      time.Time
	)

	BeforeEach(func() {
		viper.Set("cache.redis", false)
		viper.Set("cache.ttl", time.Minute)

		provider = &countingProvider{inner: data.NewStatic(testFrame())}
		cache = data.NewCache(provider)
		ctx = context.Background()
		begin = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		end = time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	})

	AfterEach(func() {
		viper.Reset()
	})

	It("fetches from the provider on first request", func() {
		prices, err := cache.GetPrices(ctx, []string{"RELIANCE.NS"}, begin, end)
		Expect(err).NotTo(HaveOccurred())
		Expect(prices.Len()).To(Equal(5))
		Expect(provider.calls).To(Equal(1))
	})

	It("serves repeated requests from cache", func() {
		_, err := cache.GetPrices(ctx, []string{"RELIANCE.NS"}, begin, end)
		Expect(err).NotTo(HaveOccurred())

		prices, err := cache.GetPrices(ctx, []string{"RELIANCE.NS"}, begin, end)
		Expect(err).NotTo(HaveOccurred())
		Expect(prices.Len()).To(Equal(5))
		Expect(prices.Vals[0][0]).To(BeNumerically("==", 2900))
		Expect(provider.calls).To(Equal(1))
	})

	It("treats symbol order as irrelevant to the cache key", func() {
		_, err := cache.GetPrices(ctx, []string{"RELIANCE.NS", "TCS.NS"}, begin, end)
		Expect(err).NotTo(HaveOccurred())

		_, err = cache.GetPrices(ctx, []string{"RELIANCE.NS", "TCS.NS"}, begin, end)
		Expect(err).NotTo(HaveOccurred())
		Expect(provider.calls).To(Equal(1))
	})

	It("fetches again for a different date range", func() {
		_, err := cache.GetPrices(ctx, []string{"RELIANCE.NS"}, begin, end)
		Expect(err).NotTo(HaveOccurred())

		_, err = cache.GetPrices(ctx, []string{"RELIANCE.NS"}, begin, end.AddDate(0, 0, -1))
		Expect(err).NotTo(HaveOccurred())
		Expect(provider.calls).To(Equal(2))
	})

	It("does not cache provider errors", func() {
		_, err := cache.GetPrices(ctx, []string{"MISSING.NS"}, begin, end)
		Expect(err).To(MatchError(data.ErrSymbolNotFound))

		_, err = cache.GetPrices(ctx, []string{"MISSING.NS"}, begin, end)
		Expect(err).To(MatchError(data.ErrSymbolNotFound))
		Expect(provider.calls).To(Equal(2))
	})

	It("expires entries after the configured ttl", func() {
		viper.Set("cache.ttl", time.Millisecond)
		cache = data.NewCache(provider)

		_, err := cache.GetPrices(ctx, []string{"RELIANCE.NS"}, begin, end)
		Expect(err).NotTo(HaveOccurred())

		time.Sleep(5 * time.Millisecond)

		_, err = cache.GetPrices(ctx, []string{"RELIANCE.NS"}, begin, end)
		Expect(err).NotTo(HaveOccurred())
		Expect(provider.calls).To(Equal(2))
	})

	It("round-trips missing observations", func() {
		frame := testFrame()
		frame.Vals[0][2] = math.NaN()
		provider = &countingProvider{inner: data.NewStatic(frame)}
		cache = data.NewCache(provider)

		_, err := cache.GetPrices(ctx, []string{"RELIANCE.NS"}, begin, end)
		Expect(err).NotTo(HaveOccurred())

		prices, err := cache.GetPrices(ctx, []string{"RELIANCE.NS"}, begin, end)
		Expect(err).NotTo(HaveOccurred())
		Expect(provider.calls).To(Equal(1))
		Expect(math.IsNaN(prices.Vals[0][2])).To(BeTrue())
		Expect(prices.Vals[0][3]).To(BeNumerically("==", 2930))
	})
})
