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

package dataframe_test

import (
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sathyanand-dev/Portfolio-Optimizer/dataframe"
)

var _ = Describe("DataFrame", func() {
	Context("with no values", func() {
		var df *dataframe.DataFrame

		BeforeEach(func() {
			df = &dataframe.DataFrame{}
		})

		It("has zero length", func() {
			Expect(df.Len()).To(Equal(0))
		})

		It("has zero columns", func() {
			Expect(df.ColCount()).To(Equal(0))
		})

		It("does not error on trim", func() {
			df = df.Trim(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
			Expect(df.Len()).To(Equal(0))
		})

		It("does not error on drop-na", func() {
			Expect(df.DropNA().Len()).To(Equal(0))
		})
	})

	Context("with two columns of values", func() {
		var df *dataframe.DataFrame

		BeforeEach(func() {
			dates := make([]time.Time, 10)
			col1 := make([]float64, 10)
			col2 := make([]float64, 10)
			dt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			for idx := range dates {
				dates[idx] = dt
				dt = dt.AddDate(0, 0, 1)
				col1[idx] = float64(idx + 1)
				col2[idx] = float64(idx + 100)
			}
			df = &dataframe.DataFrame{
				Dates:    dates,
				ColNames: []string{"RELIANCE.NS", "TCS.NS"},
				Vals:     [][]float64{col1, col2},
			}
		})

		It("has the expected shape", func() {
			Expect(df.Len()).To(Equal(10))
			Expect(df.ColCount()).To(Equal(2))
		})

		It("looks columns up by name, case insensitively", func() {
			idx, err := df.ColIndex("tcs.ns")
			Expect(err).NotTo(HaveOccurred())
			Expect(idx).To(Equal(1))
			Expect(df.Col("TCS.NS")[0]).To(BeNumerically("==", 100))
		})

		It("errors for an unknown column", func() {
			_, err := df.ColIndex("HDFCBANK.NS")
			Expect(err).To(MatchError(dataframe.ErrColumnNotFound))
			Expect(df.Col("HDFCBANK.NS")).To(BeNil())
		})

		It("selects columns in the requested order", func() {
			sub, err := df.Select([]string{"TCS.NS", "RELIANCE.NS"})
			Expect(err).NotTo(HaveOccurred())
			Expect(sub.ColNames).To(Equal([]string{"TCS.NS", "RELIANCE.NS"}))
			Expect(sub.Vals[0][0]).To(BeNumerically("==", 100))
			Expect(sub.Vals[1][0]).To(BeNumerically("==", 1))
		})

		It("errors on select of a missing column", func() {
			_, err := df.Select([]string{"RELIANCE.NS", "MISSING"})
			Expect(err).To(MatchError(dataframe.ErrColumnNotFound))
		})

		It("trims to an inclusive date range", func() {
			sub := df.Trim(
				time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
				time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			)
			Expect(sub.Len()).To(Equal(3))
			Expect(sub.Dates[0]).To(Equal(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)))
			Expect(sub.Dates[2]).To(Equal(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)))
			Expect(sub.Vals[0]).To(Equal([]float64{3, 4, 5}))
		})

		It("trims to empty when the range is inverted", func() {
			sub := df.Trim(
				time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
				time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
			)
			Expect(sub.Len()).To(Equal(0))
		})

		It("takes the last n rows with tail", func() {
			sub := df.Tail(3)
			Expect(sub.Len()).To(Equal(3))
			Expect(sub.Vals[0]).To(Equal([]float64{8, 9, 10}))
		})

		It("returns everything when tail exceeds the length", func() {
			Expect(df.Tail(500).Len()).To(Equal(10))
		})

		It("copies without sharing storage", func() {
			cpy := df.Copy()
			cpy.Vals[0][0] = -1
			Expect(df.Vals[0][0]).To(BeNumerically("==", 1))
		})
	})

	Context("with missing values", func() {
		var df *dataframe.DataFrame

		BeforeEach(func() {
			dates := []time.Time{
				time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
				time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
			}
			df = &dataframe.DataFrame{
				Dates:    dates,
				ColNames: []string{"RELIANCE.NS", "TCS.NS"},
				Vals: [][]float64{
					{1, math.NaN(), 3},
					{100, 101, 102},
				},
			}
		})

		It("drops rows containing NaN", func() {
			clean := df.DropNA()
			Expect(clean.Len()).To(Equal(2))
			Expect(clean.Vals[0]).To(Equal([]float64{1, 3}))
			Expect(clean.Vals[1]).To(Equal([]float64{100, 102}))
		})

		It("names the columns containing NaN", func() {
			Expect(df.NaNCols()).To(Equal([]string{"RELIANCE.NS"}))
		})
	})

	Describe("Table", func() {
		It("renders dates and values with column headers", func() {
			df := &dataframe.DataFrame{
				Dates: []time.Time{
					time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
					time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
				},
				ColNames: []string{"RELIANCE.NS"},
				Vals:     [][]float64{{2900.5, 2910.25}},
			}

			out := df.Table()
			Expect(out).To(ContainSubstring("RELIANCE.NS"))
			Expect(out).To(ContainSubstring("2024-01-01"))
			Expect(out).To(ContainSubstring("2900.5000"))
			Expect(out).To(ContainSubstring("2910.2500"))
		})

		It("renders an empty frame as an empty string", func() {
			df := &dataframe.DataFrame{}
			Expect(df.Table()).To(Equal(""))
		})
	})
})
