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

package optimize

import (
	"fmt"
	"strings"
)

// InvalidInputError reports a request that cannot be optimized as stated
type InvalidInputError struct {
	Reason  string
	Symbols []string
}

func (e *InvalidInputError) Error() string {
	if len(e.Symbols) > 0 {
		return fmt.Sprintf("invalid input: %s (symbols: %s)", e.Reason, strings.Join(e.Symbols, ", "))
	}
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

// InfeasibleConstraintsError reports bounds that contradict the sum-to-one
// constraint
type InfeasibleConstraintsError struct {
	Reason string
}

func (e *InfeasibleConstraintsError) Error() string {
	return fmt.Sprintf("infeasible constraints: %s", e.Reason)
}
