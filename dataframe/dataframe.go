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
	"math"
	"strings"
	"time"
)

// Len returns the number of rows in the dataframe
func (df *DataFrame) Len() int {
	return len(df.Dates)
}

// ColCount returns the number of columns in the dataframe
func (df *DataFrame) ColCount() int {
	return len(df.ColNames)
}

// ColIndex returns the index of the named column
func (df *DataFrame) ColIndex(name string) (int, error) {
	for idx, col := range df.ColNames {
		if strings.EqualFold(col, name) {
			return idx, nil
		}
	}
	return -1, ErrColumnNotFound
}

// Col returns the values of the named column; nil if the column does not exist
func (df *DataFrame) Col(name string) []float64 {
	idx, err := df.ColIndex(name)
	if err != nil {
		return nil
	}
	return df.Vals[idx]
}

// Copy creates a deep copy of the dataframe
func (df *DataFrame) Copy() *DataFrame {
	cpy := &DataFrame{
		Dates:    make([]time.Time, len(df.Dates)),
		ColNames: make([]string, len(df.ColNames)),
		Vals:     make([][]float64, len(df.Vals)),
	}

	copy(cpy.Dates, df.Dates)
	copy(cpy.ColNames, df.ColNames)
	for idx := range df.Vals {
		cpy.Vals[idx] = make([]float64, len(df.Vals[idx]))
		copy(cpy.Vals[idx], df.Vals[idx])
	}

	return cpy
}

// Select returns a new dataframe containing only the requested columns,
// in the requested order
func (df *DataFrame) Select(colNames []string) (*DataFrame, error) {
	res := &DataFrame{
		Dates:    df.Dates,
		ColNames: make([]string, 0, len(colNames)),
		Vals:     make([][]float64, 0, len(colNames)),
	}

	for _, name := range colNames {
		idx, err := df.ColIndex(name)
		if err != nil {
			return nil, err
		}
		res.ColNames = append(res.ColNames, df.ColNames[idx])
		res.Vals = append(res.Vals, df.Vals[idx])
	}

	return res, nil
}

// Trim returns a new dataframe with only rows between begin and end, inclusive
func (df *DataFrame) Trim(begin, end time.Time) *DataFrame {
	res := &DataFrame{
		ColNames: df.ColNames,
		Dates:    []time.Time{},
		Vals:     make([][]float64, len(df.ColNames)),
	}

	// special case: requested range is invalid
	if end.Before(begin) {
		return res
	}

	beginIdx := len(df.Dates)
	endIdx := -1
	for idx, dt := range df.Dates {
		if !dt.Before(begin) {
			beginIdx = idx
			break
		}
	}
	for idx := len(df.Dates) - 1; idx >= 0; idx-- {
		if !df.Dates[idx].After(end) {
			endIdx = idx
			break
		}
	}

	if beginIdx > endIdx {
		return res
	}

	res.Dates = df.Dates[beginIdx : endIdx+1]
	for colIdx := range df.Vals {
		res.Vals[colIdx] = df.Vals[colIdx][beginIdx : endIdx+1]
	}
	return res
}

// Tail returns a new dataframe containing the last n rows
func (df *DataFrame) Tail(n int) *DataFrame {
	if n >= df.Len() {
		return df
	}
	start := df.Len() - n
	res := &DataFrame{
		ColNames: df.ColNames,
		Dates:    df.Dates[start:],
		Vals:     make([][]float64, len(df.Vals)),
	}
	for colIdx := range df.Vals {
		res.Vals[colIdx] = df.Vals[colIdx][start:]
	}
	return res
}

// DropNA returns a new dataframe with all rows containing a NaN removed
func (df *DataFrame) DropNA() *DataFrame {
	res := &DataFrame{
		ColNames: df.ColNames,
		Dates:    make([]time.Time, 0, len(df.Dates)),
		Vals:     make([][]float64, len(df.ColNames)),
	}
	for colIdx := range df.ColNames {
		res.Vals[colIdx] = make([]float64, 0, len(df.Dates))
	}

	for rowIdx := range df.Dates {
		keep := true
		for colIdx := range df.Vals {
			if math.IsNaN(df.Vals[colIdx][rowIdx]) {
				keep = false
				break
			}
		}
		if keep {
			res.Dates = append(res.Dates, df.Dates[rowIdx])
			for colIdx := range df.Vals {
				res.Vals[colIdx] = append(res.Vals[colIdx], df.Vals[colIdx][rowIdx])
			}
		}
	}

	return res
}

// NaNCols returns the names of all columns that contain at least one NaN value
func (df *DataFrame) NaNCols() []string {
	cols := make([]string, 0, len(df.ColNames))
	for colIdx, name := range df.ColNames {
		for _, v := range df.Vals[colIdx] {
			if math.IsNaN(v) {
				cols = append(cols, name)
				break
			}
		}
	}
	return cols
}
