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
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Table renders the dataframe as an ASCII table
func (df *DataFrame) Table() string {
	if df.Len() == 0 {
		return ""
	}

	// construct table header
	tableCols := append([]string{"Date"}, df.ColNames...)

	// initialize table
	out := &strings.Builder{}
	table := tablewriter.NewWriter(out)
	table.SetHeader(tableCols)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")

	for rowIdx, date := range df.Dates {
		row := make([]string, 0, len(df.ColNames)+1)
		row = append(row, date.Format("2006-01-02"))
		for colIdx := range df.Vals {
			row = append(row, fmt.Sprintf("%.4f", df.Vals[colIdx][rowIdx]))
		}
		table.Append(row)
	}

	table.Render()
	return out.String()
}
