/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package resterr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/trustbloc/logutil-go/pkg/log"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/trustbloc/did-ledger/internal/logfields"
)

var logger = log.New("rest-err")

// HTTPErrorHandler writes err as a JSON response and records it on the request span.
func HTTPErrorHandler(err error, c echo.Context) {
	span := trace.SpanFromContext(c.Request().Context())
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	code, message := processError(err)

	logError(c, err, code)

	sendResponse(c, code, message)
}

func logError(c echo.Context, err error, status int) {
	ctx := c.Request().Context()
	uri := c.Request().RequestURI

	var e *Error
	if !errors.As(err, &e) {
		logger.Errorc(ctx, "request failed", log.WithURL(uri), log.WithHTTPStatus(status), log.WithError(err))

		return
	}

	fields := []zap.Field{
		log.WithURL(uri),
		log.WithHTTPStatus(status),
		logfields.WithErrorCode(string(e.Code)),
		logfields.WithCallerID(e.Caller.Identifier),
		logfields.WithCallerPolicy(e.Caller.Policy),
		log.WithError(e),
	}

	switch e.Code { //nolint:exhaustive
	case InvalidController:
		logger.Warnc(ctx, "caller is not the controller", fields...)
	case KeyNotConfigured:
		logger.Errorc(ctx, "identifier has no current key", fields...)
	default:
		logger.Debugc(ctx, "request rejected", fields...)
	}
}

func sendResponse(c echo.Context, code int, message interface{}) {
	var err error

	if !c.Response().Committed {
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, message)
		}

		if err != nil {
			logger.Error("write http response", log.WithError(err))
		}
	}
}

func processError(err error) (int, interface{}) {
	var (
		restErr *Error
		httpErr *echo.HTTPError
	)

	switch {
	case errors.As(err, &restErr):
		return restErr.HTTPStatus, restErr
	case errors.As(err, &httpErr):
		message := httpErr.Message
		if httpErr.Internal != nil {
			message = err.Error()
		}

		if s, ok := message.(string); ok {
			return httpErr.Code, map[string]interface{}{"message": s}
		}

		return httpErr.Code, message
	default:
		return http.StatusInternalServerError, map[string]interface{}{
			"code":    "generic-error",
			"message": err.Error(),
		}
	}
}
