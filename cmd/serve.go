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
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sathyanand-dev/Portfolio-Optimizer/common"
	"github.com/sathyanand-dev/Portfolio-Optimizer/data"
	"github.com/sathyanand-dev/Portfolio-Optimizer/handler"
	"github.com/sathyanand-dev/Portfolio-Optimizer/middleware"
	"github.com/sathyanand-dev/Portfolio-Optimizer/observability/opentelemetry"
	"github.com/sathyanand-dev/Portfolio-Optimizer/router"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	viper.BindEnv("server.port", "PORT")
	serveCmd.Flags().IntP("port", "p", 3000, "Port to run application server on")
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))

	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the portfolio optimizer server",
	Long:  `Run HTTP server that implements the Portfolio Optimizer API`,
	Run: func(cmd *cobra.Command, args []string) {
		common.SetupLogging()
		log.Info().Msg("initialized logging")

		if viper.GetBool("otlp.enabled") {
			shutdownTracing, err := opentelemetry.Setup()
			if err != nil {
				log.Fatal().Err(err).Msg("could not initialize tracing")
			}
			defer shutdownTracing(context.Background())
		}

		// market data: yahoo quotes behind an lru/redis cache
		provider := data.NewCache(data.NewYahoo())
		handler.Initialize(provider)
		log.Info().Msg("initialized data framework")

		app := fiber.New(fiber.Config{
			JSONEncoder: json.Marshal,
			JSONDecoder: json.Unmarshal,
		})

		// shutdown cleanly on interrupt
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt)
		go func() {
			sig := <-quit // block until signal is read
			fmt.Printf("Received signal: '%s'; shutting down...\n", sig.String())
			if err := app.Shutdown(); err != nil {
				log.Fatal().Err(err).Msg("server shutdown failed")
			}
		}()

		app.Use(cors.New(cors.Config{
			AllowOrigins: "*",
			AllowHeaders: "*",
			AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		}))
		app.Use(middleware.NewLogger())
		app.Use(middleware.NewTracer())

		router.SetupRoutes(app)

		if err := app.Listen(":" + viper.GetString("server.port")); err != nil {
			log.Fatal().Err(err).Msg("server exited with error")
		}
	},
}
