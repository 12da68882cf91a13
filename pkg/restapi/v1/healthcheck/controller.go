/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package healthcheck

import (
	"github.com/alexliesenfeld/health"
	"github.com/labstack/echo/v4"

	"github.com/trustbloc/did-ledger/pkg/observability/health/healthutil"
)

const healthCheckPath = "/healthcheck"

type router interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// Controller for health check API.
type Controller struct {
	handler echo.HandlerFunc
}

// NewController registers GET /healthcheck reporting the outcome of checks.
func NewController(router router, checks ...health.Check) *Controller {
	times := healthutil.NewResponseTimes()

	opts := []health.CheckerOption{
		health.WithInterceptors(healthutil.ResponseTimeInterceptor(times)),
	}

	for _, check := range checks {
		opts = append(opts, health.WithCheck(check))
	}

	checker := health.NewChecker(opts...)

	c := &Controller{
		handler: echo.WrapHandler(health.NewHandler(checker,
			health.WithResultWriter(healthutil.NewJSONResultWriter(times)))),
	}

	router.GET(healthCheckPath, c.GetHealthcheck)

	return c
}

// GetHealthcheck returns the health check status.
// GET /healthcheck.
func (c *Controller) GetHealthcheck(ctx echo.Context) error {
	return c.handler(ctx)
}
