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

package dataframe

import (
	"time"

	"gonum.org/v1/gonum/floats"
)

// PercentChange returns a new dataframe with the simple percent change of
// every column, v_t/v_{t-1} - 1. The first row is dropped.
func (df *DataFrame) PercentChange() *DataFrame {
	if df.Len() < 2 {
		return &DataFrame{
			ColNames: df.ColNames,
			Dates:    []time.Time{},
			Vals:     make([][]float64, len(df.ColNames)),
		}
	}

	res := &DataFrame{
		ColNames: df.ColNames,
		Dates:    df.Dates[1:],
		Vals:     make([][]float64, len(df.ColNames)),
	}

	for colIdx := range df.Vals {
		col := df.Vals[colIdx]
		chg := make([]float64, len(col)-1)
		for rowIdx := 1; rowIdx < len(col); rowIdx++ {
			chg[rowIdx-1] = col[rowIdx]/col[rowIdx-1] - 1.0
		}
		res.Vals[colIdx] = chg
	}

	return res
}

// MulScalar multiplies all columns by the scalar value and returns a new dataframe
func (df *DataFrame) MulScalar(scalar float64) *DataFrame {
	df = df.Copy()
	for colIdx := range df.Vals {
		floats.Scale(scalar, df.Vals[colIdx])
	}
	return df
}

// CumProd1 returns a new dataframe with the cumulative product of (1 + v)
// for every column; used to roll daily returns up into a growth index
func (df *DataFrame) CumProd1() *DataFrame {
	df = df.Copy()
	for colIdx := range df.Vals {
		acc := 1.0
		for rowIdx := range df.Vals[colIdx] {
			acc *= 1.0 + df.Vals[colIdx][rowIdx]
			df.Vals[colIdx][rowIdx] = acc
		}
	}
	return df
}
