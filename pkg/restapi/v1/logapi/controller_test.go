/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package logapi_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/did-ledger/pkg/restapi/resterr"
	"github.com/trustbloc/did-ledger/pkg/restapi/v1/logapi"
)

func TestPostLogLevels(t *testing.T) {
	defer log.SetLevel("", log.INFO)
	defer log.SetLevel("identifier-service", log.INFO)

	e := echo.New()
	e.HTTPErrorHandler = resterr.HTTPErrorHandler

	logapi.NewController(e)

	post := func(body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/loglevels", strings.NewReader(body)))

		return rec
	}

	t.Run("default level", func(t *testing.T) {
		rec := post("DEBUG\n")

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, log.DEBUG, log.GetLevel(""))
	})

	t.Run("module level", func(t *testing.T) {
		rec := post("identifier-service=ERROR:INFO")

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, log.ERROR, log.GetLevel("identifier-service"))
		require.Equal(t, log.INFO, log.GetLevel(""))
	})

	t.Run("unknown level", func(t *testing.T) {
		rec := post("LOUD")

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "logLevels")
	})

	t.Run("spec too long", func(t *testing.T) {
		rec := post(strings.Repeat("a", 1025))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "spec exceeds 1024 characters")
	})
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestPostLogLevels_ReadError(t *testing.T) {
	c := logapi.NewController(echo.New())

	req := httptest.NewRequest(http.MethodPost, "/loglevels", failingReader{})

	err := c.PostLogLevels(echo.New().NewContext(req, httptest.NewRecorder()))
	require.True(t, resterr.IsCode(err, resterr.InvalidValue))
	require.ErrorContains(t, err, "connection reset")
}
