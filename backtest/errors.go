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

package backtest

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoSymbols          = errors.New("at least one symbol is required")
	ErrMissingWeight      = errors.New("weight missing for symbol")
	ErrWeightSum          = errors.New("weights must sum to 1")
	ErrTimeInverted       = errors.New("start date must be before end date")
	ErrInvalidAmount      = errors.New("initial amount must be positive")
	ErrInsufficientPrices = errors.New("price data must cover at least two trading days")
)

// DataGapError reports a missing price on a day the simulation needs.
// Interpolating over the gap would misstate returns, so it is a hard error.
type DataGapError struct {
	Symbol string
	Date   time.Time
}

func (e *DataGapError) Error() string {
	return fmt.Sprintf("missing price for %s on %s", e.Symbol, e.Date.Format("2006-01-02"))
}
