/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

//go:generate mockgen -destination controller_mocks_test.go -package identifier_test -source=controller.go -mock_names identifierService=MockIdentifierService

package identifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/tidwall/gjson"
	"github.com/trustbloc/logutil-go/pkg/log"
	"go.opentelemetry.io/otel/trace"

	"github.com/trustbloc/did-ledger/internal/logfields"
	"github.com/trustbloc/did-ledger/pkg/auth"
	"github.com/trustbloc/did-ledger/pkg/doc/did"
	"github.com/trustbloc/did-ledger/pkg/keypair"
	"github.com/trustbloc/did-ledger/pkg/kms"
	"github.com/trustbloc/did-ledger/pkg/observability/tracing/attributeutil"
	"github.com/trustbloc/did-ledger/pkg/restapi/resterr"
	"github.com/trustbloc/did-ledger/pkg/restapi/v1/mw"
	"github.com/trustbloc/did-ledger/pkg/restapi/v1/util"
	identifiersvc "github.com/trustbloc/did-ledger/pkg/service/identifier"
)

const (
	algParam    = "alg"
	sizeParam   = "size"
	curveParam  = "curve"
	domainParam = "domain"
	useParam    = "use"

	serviceBody = "service"
)

var logger = log.New("identifier-restapi")

var _ ServerInterface = (*Controller)(nil) // make sure Controller implements ServerInterface

type identifierService interface {
	Create(ctx context.Context, caller auth.Identity, req *identifiersvc.CreateRequest) (*did.Document, error)
	Resolve(ctx context.Context, caller auth.Identity, id string) (*did.Document, error)
	Deactivate(ctx context.Context, caller auth.Identity, id string) error
	ListKeys(ctx context.Context, caller auth.Identity, id string) ([]keypair.KeyPair, error)
	ExportKey(ctx context.Context, caller auth.Identity, id, keyID string) (*identifiersvc.ExportedKey, error)
	RevokeKey(ctx context.Context, caller auth.Identity, id, keyID string) (*did.Document, error)
	RollKey(ctx context.Context, caller auth.Identity, id string,
		opts *identifiersvc.RollOptions) (*did.Document, error)
	Sign(ctx context.Context, caller auth.Identity, id string, payload []byte) (*identifiersvc.Signature, error)
	Verify(ctx context.Context, caller auth.Identity, id string, req *identifiersvc.VerifyRequest) (bool, error)
	AddService(ctx context.Context, caller auth.Identity, id string, svc *did.Service) (*did.Document, error)
	RemoveService(ctx context.Context, caller auth.Identity, id, serviceID string) (*did.Document, error)
	Count(ctx context.Context) (int64, error)
}

type Config struct {
	Service identifierService
}

// Controller for the identifier API.
type Controller struct {
	svc identifierService
}

type keysResponse struct {
	Keys []keypair.KeyPair `json:"keys"`
}

func NewController(config *Config) *Controller {
	return &Controller{svc: config.Service}
}

// PostIdentifiers creates an identifier controlled by the caller.
// POST /identifiers.
func (c *Controller) PostIdentifiers(ctx echo.Context) error {
	caller := mw.Caller(ctx)

	traceParams(ctx, "request.query")

	req := &identifiersvc.CreateRequest{
		Domain: ctx.QueryParam(domainParam),
	}

	var err error

	if req.Algorithm, req.Size, req.Curve, err = keyParams(ctx, caller); err != nil {
		return err
	}

	return util.WriteOutputWithCode(http.StatusCreated, ctx)(c.svc.Create(ctx.Request().Context(), caller, req))
}

// GetIdentifiersCount returns the number of identifiers on the network.
// GET /identifiers/count.
func (c *Controller) GetIdentifiersCount(ctx echo.Context) error {
	return util.WriteOutput(ctx)(c.svc.Count(ctx.Request().Context()))
}

// GetIdentifier resolves the controller document of an identifier.
// GET /identifiers/{id}.
func (c *Controller) GetIdentifier(ctx echo.Context, id string) error {
	return util.WriteOutput(ctx)(c.svc.Resolve(ctx.Request().Context(), mw.Caller(ctx), id))
}

// DeleteIdentifier deactivates an identifier.
// DELETE /identifiers/{id}.
func (c *Controller) DeleteIdentifier(ctx echo.Context, id string) error {
	if err := c.svc.Deactivate(ctx.Request().Context(), mw.Caller(ctx), id); err != nil {
		return err
	}

	return ctx.NoContent(http.StatusOK)
}

// GetKeys lists the keys of an identifier without private key material.
// GET /identifiers/{id}/keys.
func (c *Controller) GetKeys(ctx echo.Context, id string) error {
	keys, err := c.svc.ListKeys(ctx.Request().Context(), mw.Caller(ctx), id)
	if err != nil {
		return err
	}

	return util.WriteOutput(ctx)(&keysResponse{Keys: keys}, nil)
}

// GetKey exports a key of an identifier including its private key, when it still has one.
// GET /identifiers/{id}/keys/{kid}.
func (c *Controller) GetKey(ctx echo.Context, id, keyID string) error {
	return util.WriteOutput(ctx)(c.svc.ExportKey(ctx.Request().Context(), mw.Caller(ctx), id, keyID))
}

// PatchRevokeKey revokes a key of an identifier.
// PATCH /identifiers/{id}/keys/{kid}/revoke.
func (c *Controller) PatchRevokeKey(ctx echo.Context, id, keyID string) error {
	return util.WriteOutput(ctx)(c.svc.RevokeKey(ctx.Request().Context(), mw.Caller(ctx), id, keyID))
}

// PatchRollKey replaces the current key of the requested use.
// PATCH /identifiers/{id}/keys/roll.
func (c *Controller) PatchRollKey(ctx echo.Context, id string) error {
	caller := mw.Caller(ctx)

	traceParams(ctx, "request.query")

	use, err := keypair.ParseUse(ctx.QueryParam(useParam))
	if err != nil {
		return resterr.NewInvalidValue(caller, useParam, err)
	}

	opts := &identifiersvc.RollOptions{Use: use}

	if opts.Algorithm, opts.Size, opts.Curve, err = keyParams(ctx, caller); err != nil {
		return err
	}

	return util.WriteOutputWithCode(http.StatusCreated, ctx)(c.svc.RollKey(ctx.Request().Context(), caller, id, opts))
}

// PostSign signs the text body with the current signing key of an identifier.
// POST /identifiers/{id}/sign.
func (c *Controller) PostSign(ctx echo.Context, id string) error {
	payload, err := util.ReadRaw(ctx, util.RequestBody)
	if err != nil {
		return err
	}

	return util.WriteOutput(ctx)(c.svc.Sign(ctx.Request().Context(), mw.Caller(ctx), id, payload))
}

// PostVerify checks a signature against a key of an identifier.
// POST /identifiers/{id}/verify.
func (c *Controller) PostVerify(ctx echo.Context, id string) error {
	var req identifiersvc.VerifyRequest

	if err := util.ReadBody(ctx, &req); err != nil {
		return err
	}

	return util.WriteOutput(ctx)(c.svc.Verify(ctx.Request().Context(), mw.Caller(ctx), id, &req))
}

// PostService adds a service to the controller document of an identifier, or replaces the
// service with the same id.
// POST /identifiers/{id}/services.
func (c *Controller) PostService(ctx echo.Context, id string) error {
	caller := mw.Caller(ctx)

	body, err := util.ReadRaw(ctx, serviceBody)
	if err != nil {
		return err
	}

	svc, err := parseService(body)
	if err != nil {
		return resterr.NewInvalidValue(caller, serviceBody, err)
	}

	return util.WriteOutput(ctx)(c.svc.AddService(ctx.Request().Context(), caller, id, svc))
}

// DeleteService removes a service from the controller document of an identifier.
// DELETE /identifiers/{id}/services/{service}.
func (c *Controller) DeleteService(ctx echo.Context, id, serviceID string) error {
	return util.WriteOutput(ctx)(c.svc.RemoveService(ctx.Request().Context(), mw.Caller(ctx), id, serviceID))
}

// keyParams reads the optional alg, size and curve query parameters.
func keyParams(ctx echo.Context, caller auth.Identity) (kms.KeyAlgorithm, int, kms.Curve, error) {
	var (
		alg   kms.KeyAlgorithm
		size  int
		curve kms.Curve
		err   error
	)

	if v := ctx.QueryParam(algParam); v != "" {
		if alg, err = kms.ParseKeyAlgorithm(v); err != nil {
			return "", 0, "", resterr.NewInvalidValue(caller, algParam, err)
		}
	}

	if v := ctx.QueryParam(sizeParam); v != "" {
		if size, err = strconv.Atoi(v); err != nil || size <= 0 || size > kms.MaxRSAKeySize {
			if err == nil {
				err = fmt.Errorf("size must be between 1 and %d: %d", kms.MaxRSAKeySize, size)
			}

			return "", 0, "", resterr.NewInvalidValue(caller, sizeParam, err)
		}
	}

	if v := ctx.QueryParam(curveParam); v != "" {
		if curve, err = kms.ParseCurve(v); err != nil {
			return "", 0, "", resterr.NewInvalidValue(caller, curveParam, err)
		}
	}

	return alg, size, curve, nil
}

// parseService reads a service entry leniently so that properties of the wrong type are
// reported by service validation instead of failing the decode. An empty body yields nil.
func parseService(body []byte) (*did.Service, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}

	if !gjson.ValidBytes(body) {
		return nil, errors.New("malformed JSON")
	}

	parsed := gjson.ParseBytes(body)
	if !parsed.IsObject() {
		return nil, errors.New("service must be a JSON object")
	}

	svc := &did.Service{
		ID:   stringProperty(parsed, "id"),
		Type: stringProperty(parsed, "type"),
	}

	endpoint := parsed.Get("serviceEndpoint")

	switch {
	case endpoint.Type == gjson.String:
		svc.ServiceEndpoint.URI = endpoint.Str
	case endpoint.IsObject():
		if props, ok := endpoint.Value().(map[string]interface{}); ok {
			svc.ServiceEndpoint.Properties = props
		}
	}

	return svc, nil
}

func stringProperty(parsed gjson.Result, name string) string {
	v := parsed.Get(name)
	if v.Type != gjson.String {
		return ""
	}

	return v.Str
}

func traceParams(ctx echo.Context, key string) {
	params := ctx.QueryParams()
	if len(params) == 0 {
		return
	}

	trace.SpanFromContext(ctx.Request().Context()).SetAttributes(attributeutil.FormParams(key, params))

	logger.Debugc(ctx.Request().Context(), "Request parameters",
		logfields.WithCallerID(mw.Caller(ctx).Identifier), log.WithURL(ctx.Request().RequestURI))
}
