/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mw

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// APIKeyHeader carries the API key of a request.
const APIKeyHeader = "X-API-Key"

// publicPath reports whether a path is served without an API key: health, readiness and version.
func publicPath(c echo.Context) bool {
	path := strings.ToLower(c.Request().URL.Path)

	return strings.HasSuffix(path, "/healthcheck") || strings.HasPrefix(path, "/version") || path == "/ready"
}

// APIKeyAuth rejects requests to the ledger whose X-API-Key header does not hold apiKey.
func APIKeyAuth(apiKey string) echo.MiddlewareFunc {
	return echomw.KeyAuthWithConfig(echomw.KeyAuthConfig{
		Skipper:   publicPath,
		KeyLookup: "header:" + APIKeyHeader,
		Validator: func(key string, _ echo.Context) (bool, error) {
			return subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) == 1, nil
		},
		ErrorHandler: func(error, echo.Context) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
		},
	})
}
