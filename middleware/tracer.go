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

package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sathyanand-dev/Portfolio-Optimizer/observability/opentelemetry"
	"go.opentelemetry.io/otel"
)

// NewTracer opens a span per request, tagged with the client attributes.
// Engine spans started from the user context become its children.
func NewTracer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, span := otel.Tracer(opentelemetry.Name).Start(c.UserContext(), c.Method()+" "+c.Path())
		span.SetAttributes(opentelemetry.SpanAttributesFromFiber(c)...)
		c.SetUserContext(ctx)
		defer span.End()

		return c.Next()
	}
}
