/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mw_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/trustbloc/did-ledger/pkg/restapi/v1/mw"
)

func TestAPIKeyAuth(t *testing.T) {
	const apiKey = "ledger-api-key"

	tests := []struct {
		name       string
		path       string
		key        string
		authorized bool
	}{
		{name: "valid key", path: "/identifiers/count", key: apiKey, authorized: true},
		{name: "wrong key", path: "/identifiers/count", key: "guess"},
		{name: "missing key", path: "/identifiers/did:ledger:example.com:abc/sign"},
		{name: "key is case sensitive", path: "/identifiers", key: "LEDGER-API-KEY"},
		{name: "healthcheck", path: "/healthcheck", authorized: true},
		{name: "readiness", path: "/ready", authorized: true},
		{name: "version", path: "/version", authorized: true},
		{name: "system version", path: "/version/system", authorized: true},
		{name: "log levels", path: "/loglevels"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool

			next := func(c echo.Context) error {
				called = true

				return c.NoContent(http.StatusOK)
			}

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.key != "" {
				req.Header.Set(mw.APIKeyHeader, tt.key)
			}

			err := mw.APIKeyAuth(apiKey)(next)(echo.New().NewContext(req, httptest.NewRecorder()))

			require.Equal(t, tt.authorized, called)

			if tt.authorized {
				require.NoError(t, err)

				return
			}

			var httpErr *echo.HTTPError
			require.True(t, errors.As(err, &httpErr))
			require.Equal(t, http.StatusUnauthorized, httpErr.Code)
			require.Equal(t, "Unauthorized", httpErr.Message)
		})
	}
}
