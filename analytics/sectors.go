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

// symbolSectors maps NSE tickers to their sector classification. Symbols
// not in the table are reported under Other.
var symbolSectors = map[string]string{
	"RELIANCE.NS":   "Energy",
	"ONGC.NS":       "Energy",
	"COALINDIA.NS":  "Mining",
	"TCS.NS":        "Information Technology",
	"INFY.NS":       "Information Technology",
	"WIPRO.NS":      "Information Technology",
	"HCLTECH.NS":    "Information Technology",
	"TECHM.NS":      "Information Technology",
	"HDFCBANK.NS":   "Financial Services",
	"ICICIBANK.NS":  "Financial Services",
	"SBIN.NS":       "Financial Services",
	"KOTAKBANK.NS":  "Financial Services",
	"AXISBANK.NS":   "Financial Services",
	"BAJFINANCE.NS": "Financial Services",
	"HINDUNILVR.NS": "FMCG",
	"ITC.NS":        "FMCG",
	"NESTLEIND.NS":  "FMCG",
	"BRITANNIA.NS":  "FMCG",
	"BHARTIARTL.NS": "Telecom",
	"LT.NS":         "Construction",
	"ULTRACEMCO.NS": "Cement",
	"GRASIM.NS":     "Cement",
	"MARUTI.NS":     "Automobile",
	"TATAMOTORS.NS": "Automobile",
	"EICHERMOT.NS":  "Automobile",
	"HEROMOTOCO.NS": "Automobile",
	"BAJAJ-AUTO.NS": "Automobile",
	"SUNPHARMA.NS":  "Pharma",
	"DRREDDY.NS":    "Pharma",
	"CIPLA.NS":      "Pharma",
	"DIVISLAB.NS":   "Pharma",
	"APOLLOHOSP.NS": "Healthcare",
	"TITAN.NS":      "Consumer Durables",
	"ASIANPAINT.NS": "Consumer Durables",
	"TATASTEEL.NS":  "Metals",
	"JSWSTEEL.NS":   "Metals",
	"HINDALCO.NS":   "Metals",
	"NTPC.NS":       "Power",
	"POWERGRID.NS":  "Power",
	"ADANIENT.NS":   "Conglomerate",
}

// SectorAllocation rolls portfolio weights up into percent-by-sector
func SectorAllocation(symbols []string, weights []float64) map[string]float64 {
	allocation := make(map[string]float64)
	for idx, symbol := range symbols {
		sector, ok := symbolSectors[symbol]
		if !ok {
			sector = "Other"
		}
		allocation[sector] += weights[idx] * 100
	}
	return allocation
}
