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
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sathyanand-dev/Portfolio-Optimizer/analytics"
)

var _ = Describe("Metrics", func() {
	Context("with a flat return series", func() {
		var m *analytics.Metrics

		BeforeEach(func() {
			m = analytics.Compute(make([]float64, 40), nil, 0.07)
		})

		It("reports zero return and zero volatility", func() {
			Expect(m.TotalReturn).To(BeNumerically("==", 0))
			Expect(m.AnnualizedReturn).To(BeNumerically("==", 0))
			Expect(m.Volatility).To(BeNumerically("==", 0))
			Expect(m.MaxDrawdown).To(BeNumerically("==", 0))
		})

		It("cannot compute ratios that divide by volatility", func() {
			Expect(math.IsNaN(m.SharpeRatio)).To(BeTrue())
			Expect(math.IsNaN(m.SortinoRatio)).To(BeTrue())
			Expect(math.IsNaN(m.CalmarRatio)).To(BeTrue())
		})

		It("reports zero value at risk", func() {
			Expect(m.VaR95).To(BeNumerically("==", 0))
			Expect(m.VaRMethod).To(Equal(analytics.VaRHistorical))
		})
	})

	Context("with a known loss distribution", func() {
		var m *analytics.Metrics

		BeforeEach(func() {
			// 5 crash days of -10% in a sample of 100
			returns := make([]float64, 100)
			for idx := range returns {
				if idx%20 == 0 {
					returns[idx] = -0.10
				} else {
					returns[idx] = 0.01
				}
			}
			m = analytics.Compute(returns, nil, 0.07)
		})

		It("finds the crash days at the 5% quantile", func() {
			Expect(m.VaR95).To(BeNumerically("~", -0.10, 1e-12))
			Expect(m.VaRMethod).To(Equal(analytics.VaRHistorical))
		})

		It("reports expected shortfall at least as severe as VaR", func() {
			Expect(m.CVaR95).To(BeNumerically("<=", m.VaR95+1e-12))
			Expect(m.CVaR99).To(BeNumerically("<=", m.VaR99+1e-12))
		})

		It("orders the quantiles", func() {
			Expect(m.VaR99).To(BeNumerically("<=", m.VaR95))
		})
	})

	Context("with a small sample", func() {
		It("falls back to the normal approximation", func() {
			returns := []float64{0.01, -0.01, 0.01, -0.01, 0.01, -0.01, 0.01, -0.01, 0.01, -0.01}
			m := analytics.Compute(returns, nil, 0.07)

			Expect(m.VaRMethod).To(Equal(analytics.VaRParametric))
			Expect(m.VaR95).To(BeNumerically("<", 0))
			Expect(m.VaR99).To(BeNumerically("<", m.VaR95))
		})
	})

	Context("with a benchmark", func() {
		var benchmark []float64

		BeforeEach(func() {
			benchmark = make([]float64, 50)
			for idx := range benchmark {
				switch idx % 3 {
				case 0:
					benchmark[idx] = 0.01
				case 1:
					benchmark[idx] = -0.006
				default:
					benchmark[idx] = 0.002
				}
			}
		})

		It("reports beta 1 and alpha 0 for the benchmark itself", func() {
			m := analytics.Compute(benchmark, benchmark, 0.07)
			Expect(m.Beta).To(BeNumerically("~", 1, 1e-9))
			Expect(m.Alpha).To(BeNumerically("~", 0, 1e-9))
			Expect(m.Correlation).To(BeNumerically("~", 1, 1e-9))
			Expect(m.TrackingError).To(BeNumerically("~", 0, 1e-9))
		})

		It("reports beta 2 for a levered copy", func() {
			levered := make([]float64, len(benchmark))
			for idx := range benchmark {
				levered[idx] = 2 * benchmark[idx]
			}
			m := analytics.Compute(levered, benchmark, 0.07)
			Expect(m.Beta).To(BeNumerically("~", 2, 1e-9))
			Expect(m.Correlation).To(BeNumerically("~", 1, 1e-9))
		})

		It("omits relative metrics when lengths differ", func() {
			m := analytics.Compute(benchmark, benchmark[:10], 0.07)
			Expect(math.IsNaN(m.Beta)).To(BeTrue())
			Expect(math.IsNaN(m.Correlation)).To(BeTrue())
		})
	})

	Describe("MaxDrawdown", func() {
		It("finds the deepest peak-to-trough decline", func() {
			values := []float64{100, 120, 90, 95, 130, 110}
			Expect(analytics.MaxDrawdown(values)).To(BeNumerically("~", -0.25, 1e-12))
		})

		It("is zero for a rising series", func() {
			Expect(analytics.MaxDrawdown([]float64{100, 101, 102})).To(BeNumerically("==", 0))
		})
	})
})
