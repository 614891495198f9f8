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

package returns

import (
	"fmt"
	"strings"
)

// InsufficientDataError reports that too few aligned observations remain
// after intersecting the per-symbol price histories.
type InsufficientDataError struct {
	Symbols      []string
	Observations int
	Required     int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %d aligned observations, %d required (symbols: %s)",
		e.Observations, e.Required, strings.Join(e.Symbols, ", "))
}

// IllConditionedCovarianceError reports a singular or near-singular
// covariance matrix that would make optimization numerically meaningless.
type IllConditionedCovarianceError struct {
	Det  float64
	Cond float64
}

func (e *IllConditionedCovarianceError) Error() string {
	return fmt.Sprintf("covariance matrix is ill-conditioned: det=%g cond=%g", e.Det, e.Cond)
}
