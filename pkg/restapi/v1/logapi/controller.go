/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package logapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/did-ledger/internal/logfields"
	"github.com/trustbloc/did-ledger/pkg/restapi/resterr"
	"github.com/trustbloc/did-ledger/pkg/restapi/v1/mw"
	"github.com/trustbloc/did-ledger/pkg/restapi/v1/util"
)

const (
	logLevelsPath  = "/loglevels"
	logLevelsField = "logLevels"
	maxSpecLength  = 1024
)

var logger = log.New("logapi")

type router interface {
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

type Controller struct{}

// NewController registers POST /loglevels, which changes log levels of a running service.
func NewController(router router) *Controller {
	c := &Controller{}

	router.POST(logLevelsPath, c.PostLogLevels)

	return c
}

// PostLogLevels applies the module1=level1:defaultLevel spec sent as the request body.
// (POST /loglevels).
func (c *Controller) PostLogLevels(ctx echo.Context) error {
	body, err := util.ReadRaw(ctx, logLevelsField)
	if err != nil {
		return err
	}

	spec := strings.TrimSpace(string(body))

	if len(spec) > maxSpecLength {
		return resterr.NewInvalidValue(mw.Caller(ctx), logLevelsField,
			fmt.Errorf("spec exceeds %d characters", maxSpecLength))
	}

	if err = log.SetSpec(spec); err != nil {
		return resterr.NewInvalidValue(mw.Caller(ctx), logLevelsField, err)
	}

	logger.Infoc(ctx.Request().Context(), "Log levels modified", logfields.WithUserLogLevel(spec))

	return ctx.NoContent(http.StatusOK)
}
