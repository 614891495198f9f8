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

package cmd

import (
	"fmt"
	"os"

	"github.com/sathyanand-dev/Portfolio-Optimizer/common"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Logging configuration
	viper.BindEnv("log.level", "PO_LOG_LEVEL")
	rootCmd.PersistentFlags().String("log-level", "warning", "Logging level")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.BindEnv("log.report_caller", "PO_LOG_REPORT_CALLER")
	rootCmd.PersistentFlags().Bool("log-report-caller", false, "Log function name that called log statement")
	viper.BindPFlag("log.report_caller", rootCmd.PersistentFlags().Lookup("log-report-caller"))

	viper.BindEnv("log.output", "PO_LOG_OUTPUT")
	rootCmd.PersistentFlags().String("log-output", "stderr", "Write logs to specified output one of: file path, `stdout`, or `stderr`")
	viper.BindPFlag("log.output", rootCmd.PersistentFlags().Lookup("log-output"))

	rootCmd.PersistentFlags().Bool("log-pretty", false, "Print colorized human readable logs")
	viper.BindPFlag("log.pretty", rootCmd.PersistentFlags().Lookup("log-pretty"))

	// Portfolio math
	viper.BindEnv("portfolio.risk_free_rate", "PO_RISK_FREE_RATE")
	rootCmd.PersistentFlags().Float64("risk-free-rate", 0.07, "Annualized risk-free rate used by Sharpe and Sortino")
	viper.BindPFlag("portfolio.risk_free_rate", rootCmd.PersistentFlags().Lookup("risk-free-rate"))

	// Price cache
	rootCmd.PersistentFlags().Int("cache-local-size", 128, "Maximum number of price frames held in the local LRU cache")
	viper.BindPFlag("cache.local_size", rootCmd.PersistentFlags().Lookup("cache-local-size"))

	rootCmd.PersistentFlags().Duration("cache-ttl", 0, "Price cache time-to-live (default 15m)")
	viper.BindPFlag("cache.ttl", rootCmd.PersistentFlags().Lookup("cache-ttl"))

	viper.BindEnv("cache.redis_url", "PO_REDIS_URL")
	rootCmd.PersistentFlags().Bool("cache-redis", false, "Use redis as a second cache tier")
	viper.BindPFlag("cache.redis", rootCmd.PersistentFlags().Lookup("cache-redis"))
	rootCmd.PersistentFlags().String("cache-redis-url", "redis://localhost:6379", "Redis connection URL")
	viper.BindPFlag("cache.redis_url", rootCmd.PersistentFlags().Lookup("cache-redis-url"))

	// Tracing
	viper.BindEnv("otlp.endpoint", "OTLP_ENDPOINT")
	rootCmd.PersistentFlags().Bool("otlp-enabled", false, "Export traces over OTLP")
	viper.BindPFlag("otlp.enabled", rootCmd.PersistentFlags().Lookup("otlp-enabled"))
	rootCmd.PersistentFlags().String("otlp-endpoint", "localhost:4317", "OTLP collector endpoint")
	viper.BindPFlag("otlp.endpoint", rootCmd.PersistentFlags().Lookup("otlp-endpoint"))
	rootCmd.PersistentFlags().Bool("otlp-http", false, "Use HTTP(s) instead of gRPC for the OTLP connection")
	viper.BindPFlag("otlp.http", rootCmd.PersistentFlags().Lookup("otlp-http"))
}

var rootCmd = &cobra.Command{
	Use:     "po",
	Version: common.CurrentVersion,
	Short:   "Portfolio Optimizer is a quantitative portfolio engine",
	Long:    `Optimize, analyze, backtest and compare equity portfolios using historical market data.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
