/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package identifier

import (
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/trustbloc/did-ledger/pkg/restapi/resterr"
	"github.com/trustbloc/did-ledger/pkg/restapi/v1/mw"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (POST /identifiers)
	PostIdentifiers(ctx echo.Context) error
	// (GET /identifiers/count)
	GetIdentifiersCount(ctx echo.Context) error
	// (GET /identifiers/{id})
	GetIdentifier(ctx echo.Context, id string) error
	// (DELETE /identifiers/{id})
	DeleteIdentifier(ctx echo.Context, id string) error
	// (GET /identifiers/{id}/keys)
	GetKeys(ctx echo.Context, id string) error
	// (GET /identifiers/{id}/keys/{kid})
	GetKey(ctx echo.Context, id, keyID string) error
	// (PATCH /identifiers/{id}/keys/{kid}/revoke)
	PatchRevokeKey(ctx echo.Context, id, keyID string) error
	// (PATCH /identifiers/{id}/keys/roll)
	PatchRollKey(ctx echo.Context, id string) error
	// (POST /identifiers/{id}/sign)
	PostSign(ctx echo.Context, id string) error
	// (POST /identifiers/{id}/verify)
	PostVerify(ctx echo.Context, id string) error
	// (POST /identifiers/{id}/services)
	PostService(ctx echo.Context, id string) error
	// (DELETE /identifiers/{id}/services/{service})
	DeleteService(ctx echo.Context, id, serviceID string) error
}

// EchoRouter is the subset of echo routing used by RegisterHandlers.
type EchoRouter interface {
	DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PATCH(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds each server route to the EchoRouter. Static segments such as
// /identifiers/count and /keys/roll take priority over the parameters next to them.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	router.POST("/identifiers", si.PostIdentifiers)
	router.GET("/identifiers/count", si.GetIdentifiersCount)
	router.GET("/identifiers/:id", withID(si.GetIdentifier))
	router.DELETE("/identifiers/:id", withID(si.DeleteIdentifier))
	router.GET("/identifiers/:id/keys", withID(si.GetKeys))
	router.GET("/identifiers/:id/keys/:kid", withIDAnd("kid", si.GetKey))
	router.PATCH("/identifiers/:id/keys/:kid/revoke", withIDAnd("kid", si.PatchRevokeKey))
	router.PATCH("/identifiers/:id/keys/roll", withID(si.PatchRollKey))
	router.POST("/identifiers/:id/sign", withID(si.PostSign))
	router.POST("/identifiers/:id/verify", withID(si.PostVerify))
	router.POST("/identifiers/:id/services", withID(si.PostService))
	router.DELETE("/identifiers/:id/services/:service", withIDAnd("service", si.DeleteService))
}

func withID(h func(ctx echo.Context, id string) error) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id, err := pathParam(ctx, "id")
		if err != nil {
			return err
		}

		return h(ctx, id)
	}
}

func withIDAnd(name string, h func(ctx echo.Context, id, value string) error) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id, err := pathParam(ctx, "id")
		if err != nil {
			return err
		}

		value, err := pathParam(ctx, name)
		if err != nil {
			return err
		}

		return h(ctx, id, value)
	}
}

// pathParam returns the unescaped value of a path parameter. Key and service ids are
// fragments, so clients send "#" as "%23".
func pathParam(ctx echo.Context, name string) (string, error) {
	v, err := url.PathUnescape(ctx.Param(name))
	if err != nil {
		return "", resterr.NewInvalidValue(mw.Caller(ctx), name, err)
	}

	return v, nil
}
