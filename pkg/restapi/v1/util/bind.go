/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package util

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trustbloc/did-ledger/pkg/restapi/resterr"
	"github.com/trustbloc/did-ledger/pkg/restapi/v1/mw"
)

// RequestBody names the request body in InvalidValue errors.
const RequestBody = "requestBody"

// MaxBodySize bounds payloads read with ReadRaw.
const MaxBodySize = 1 << 20

// ReadBody decodes a JSON request body into body.
func ReadBody(ctx echo.Context, body interface{}) error {
	err := ctx.Bind(body)
	if err == nil {
		return nil
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) && httpErr.Internal != nil {
		err = httpErr.Internal
	}

	return resterr.NewInvalidValue(mw.Caller(ctx), RequestBody, err)
}

// ReadRaw returns the request body as is. Bodies larger than MaxBodySize are rejected as an
// invalid value of field.
func ReadRaw(ctx echo.Context, field string) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(ctx.Request().Body, MaxBodySize+1))
	if err != nil {
		return nil, resterr.NewInvalidValue(mw.Caller(ctx), field, err)
	}

	if len(b) > MaxBodySize {
		return nil, resterr.NewInvalidValue(mw.Caller(ctx), field,
			fmt.Errorf("body exceeds %d bytes", MaxBodySize))
	}

	return b, nil
}

// WriteOutput writes the output of a service call as JSON with status 200, or passes its error on
// to the error handler.
func WriteOutput(ctx echo.Context) func(output interface{}, err error) error {
	return WriteOutputWithCode(http.StatusOK, ctx)
}

func WriteOutputWithCode(code int, ctx echo.Context) func(output interface{}, err error) error {
	return func(output interface{}, err error) error {
		if err != nil {
			return err
		}

		return ctx.JSON(code, output)
	}
}
