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

package analytics

import (
	"time"
)

// DrawdownPeriod describes one peak-to-recovery episode in a value series
type DrawdownPeriod struct {
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	MaxDrawdown  float64   `json:"max_drawdown"`
	DurationDays int       `json:"duration_days"`
}

// DrawdownPeriods extracts every drawdown episode from a dated value
// series. A period starts on the first observation below the running peak
// and ends when the value recovers to a new peak, or at series end. Periods
// are returned in chronological order; a flat or rising series yields none.
func DrawdownPeriods(dates []time.Time, values []float64) []DrawdownPeriod {
	periods := []DrawdownPeriod{}
	if len(values) == 0 || len(dates) != len(values) {
		return periods
	}

	peak := values[0]
	inDrawdown := false
	var start int
	var trough float64

	for idx := 1; idx < len(values); idx++ {
		v := values[idx]

		if !inDrawdown {
			if v < peak {
				inDrawdown = true
				start = idx
				trough = v
			} else {
				peak = v
			}
			continue
		}

		if v < trough {
			trough = v
		}

		if v >= peak {
			// recovered
			periods = append(periods, DrawdownPeriod{
				StartDate:    dates[start],
				EndDate:      dates[idx],
				MaxDrawdown:  trough/peak - 1,
				DurationDays: idx - start + 1,
			})
			inDrawdown = false
			peak = v
		}
	}

	if inDrawdown {
		last := len(values) - 1
		periods = append(periods, DrawdownPeriod{
			StartDate:    dates[start],
			EndDate:      dates[last],
			MaxDrawdown:  trough/peak - 1,
			DurationDays: last - start + 1,
		})
	}

	return periods
}
