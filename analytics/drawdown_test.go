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

package analytics_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sathyanand-dev/Portfolio-Optimizer/analytics"
)

func tradingDates(n int) []time.Time {
	dates := make([]time.Time, n)
	dt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for idx := range dates {
		dates[idx] = dt
		dt = dt.AddDate(0, 0, 1)
	}
	return dates
}

var _ = Describe("DrawdownPeriods", func() {
	It("extracts recovered and open drawdowns in order", func() {
		values := []float64{100, 110, 100, 105, 112, 108, 104}
		dates := tradingDates(len(values))

		periods := analytics.DrawdownPeriods(dates, values)
		Expect(periods).To(HaveLen(2))

		// dipped below the 110 peak and recovered at 112
		Expect(periods[0].StartDate).To(Equal(dates[2]))
		Expect(periods[0].EndDate).To(Equal(dates[4]))
		Expect(periods[0].MaxDrawdown).To(BeNumerically("~", 100.0/110.0-1, 1e-12))
		Expect(periods[0].DurationDays).To(Equal(3))

		// still underwater at series end
		Expect(periods[1].StartDate).To(Equal(dates[5]))
		Expect(periods[1].EndDate).To(Equal(dates[6]))
		Expect(periods[1].MaxDrawdown).To(BeNumerically("~", 104.0/112.0-1, 1e-12))
		Expect(periods[1].DurationDays).To(Equal(2))
	})

	It("yields nothing for a rising series", func() {
		values := []float64{100, 101, 102, 103}
		Expect(analytics.DrawdownPeriods(tradingDates(4), values)).To(BeEmpty())
	})

	It("yields nothing for a flat series", func() {
		values := []float64{100, 100, 100}
		Expect(analytics.DrawdownPeriods(tradingDates(3), values)).To(BeEmpty())
	})

	It("returns empty when dates and values disagree in length", func() {
		Expect(analytics.DrawdownPeriods(tradingDates(2), []float64{100, 90, 80})).To(BeEmpty())
		Expect(analytics.DrawdownPeriods(nil, nil)).To(BeEmpty())
	})
})
