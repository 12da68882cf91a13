/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mw_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/trustbloc/did-ledger/pkg/auth"
	"github.com/trustbloc/did-ledger/pkg/restapi/v1/mw"
)

func TestCallerIdentity(t *testing.T) {
	run := func(t *testing.T, headers map[string]string) auth.Identity {
		t.Helper()

		var caller auth.Identity

		handler := func(c echo.Context) error {
			caller = mw.Caller(c)
			return c.NoContent(http.StatusOK)
		}

		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/identifiers/count", nil)

		for k, v := range headers {
			req.Header.Set(k, v)
		}

		c := e.NewContext(req, httptest.NewRecorder())

		require.NoError(t, mw.CallerIdentity()(handler)(c))

		return caller
	}

	t.Run("identity and policy", func(t *testing.T) {
		caller := run(t, map[string]string{
			mw.CallerIdentityHeader: "member-1",
			mw.CallerPolicyHeader:   "member_cert",
		})

		require.Equal(t, auth.NewIdentity("member-1", "member_cert"), caller)
		require.True(t, caller.IsAuthenticated())
	})

	t.Run("identity without policy", func(t *testing.T) {
		caller := run(t, map[string]string{mw.CallerIdentityHeader: "member-1"})

		require.Equal(t, "member-1", caller.Identifier)
		require.Equal(t, auth.NoAuthPolicy, caller.Policy)
	})

	t.Run("anonymous", func(t *testing.T) {
		caller := run(t, nil)

		require.Equal(t, auth.Anonymous(), caller)
		require.False(t, caller.IsAuthenticated())
	})

	t.Run("no middleware", func(t *testing.T) {
		c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

		require.Equal(t, auth.Anonymous(), mw.Caller(c))
	})
}
