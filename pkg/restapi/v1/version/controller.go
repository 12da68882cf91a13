/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package version

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trustbloc/did-ledger/pkg/kms"
)

type router interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

type Config struct {
	Version       string
	DIDMethod     string
	DefaultDomain string
}

type Controller struct {
	version       string
	didMethod     string
	defaultDomain string
}

type versionResponse struct {
	Version string `json:"version"`
}

type systemResponse struct {
	Version       string             `json:"version"`
	DIDMethod     string             `json:"didMethod"`
	DefaultDomain string             `json:"defaultDomain"`
	Algorithms    []kms.KeyAlgorithm `json:"algorithms"`
	Curves        []kms.Curve        `json:"curves"`
}

func NewController(router router, cfg Config) *Controller {
	c := &Controller{
		version:       cfg.Version,
		didMethod:     cfg.DIDMethod,
		defaultDomain: cfg.DefaultDomain,
	}

	router.GET("/version", c.Version)
	router.GET("/version/system", c.System)

	return c
}

func (c *Controller) Version(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, versionResponse{Version: c.version})
}

// System reports the build version together with the identifier method and the key types on offer.
func (c *Controller) System(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, systemResponse{
		Version:       c.version,
		DIDMethod:     c.didMethod,
		DefaultDomain: c.defaultDomain,
		Algorithms:    []kms.KeyAlgorithm{kms.EdDSA, kms.ECDSA, kms.RSA},
		Curves:        []kms.Curve{kms.Curve25519, kms.Secp256r1, kms.Secp256k1, kms.Secp384r1},
	})
}
