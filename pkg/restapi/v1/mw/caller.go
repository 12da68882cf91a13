/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mw

import (
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/trustbloc/did-ledger/pkg/auth"
)

const (
	// CallerIdentityHeader carries the member identifier resolved by the fronting gateway.
	CallerIdentityHeader = "X-Caller-Identity"
	// CallerPolicyHeader carries the authentication policy the caller matched.
	CallerPolicyHeader = "X-Caller-Policy"

	callerKey = "caller"
)

// CallerIdentity returns a middleware that stores the caller identity of the request in the echo context.
// Requests without the identity header are served as the anonymous caller.
func CallerIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller := auth.NewIdentity(
				c.Request().Header.Get(CallerIdentityHeader),
				c.Request().Header.Get(CallerPolicyHeader),
			)

			c.Set(callerKey, caller)

			trace.SpanFromContext(c.Request().Context()).SetAttributes(
				attribute.String("caller.identifier", caller.Identifier),
				attribute.String("caller.policy", caller.Policy),
			)

			return next(c)
		}
	}
}

// Caller returns the identity stored by CallerIdentity, or the anonymous caller.
func Caller(c echo.Context) auth.Identity {
	if caller, ok := c.Get(callerKey).(auth.Identity); ok {
		return caller
	}

	return auth.Anonymous()
}
