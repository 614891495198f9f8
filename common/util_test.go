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

package common_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sathyanand-dev/Portfolio-Optimizer/common"
)

var _ = Describe("ArrToUpper", func() {
	It("uppercases in place", func() {
		arr := []string{"reliance.ns", "TCS.ns", "^nsei"}
		common.ArrToUpper(arr)
		Expect(arr).To(Equal([]string{"RELIANCE.NS", "TCS.NS", "^NSEI"}))
	})
})

var _ = Describe("Compress", func() {
	It("round-trips through lz4", func() {
		original := bytes.Repeat([]byte(`{"dates":["2024-01-01"],"vals":[[2900.5]]}`), 100)

		compressed, err := common.Compress(original)
		Expect(err).NotTo(HaveOccurred())
		Expect(len(compressed)).To(BeNumerically("<", len(original)))

		decompressed, err := common.Decompress(compressed)
		Expect(err).NotTo(HaveOccurred())
		Expect(decompressed).To(Equal(original))
	})

	It("handles empty input", func() {
		compressed, err := common.Compress(nil)
		Expect(err).NotTo(HaveOccurred())

		decompressed, err := common.Decompress(compressed)
		Expect(err).NotTo(HaveOccurred())
		Expect(decompressed).To(BeEmpty())
	})

	It("errors on garbage input", func() {
		_, err := common.Decompress([]byte("not an lz4 frame"))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("GetTimezone", func() {
	It("returns the exchange timezone", func() {
		Expect(common.GetTimezone().String()).To(Equal("Asia/Kolkata"))
	})
})
