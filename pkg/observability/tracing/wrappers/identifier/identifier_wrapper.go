/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

//go:generate mockgen -destination gomocks_test.go -package identifier . Service

package identifier

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/trustbloc/did-ledger/pkg/auth"
	"github.com/trustbloc/did-ledger/pkg/doc/did"
	"github.com/trustbloc/did-ledger/pkg/keypair"
	"github.com/trustbloc/did-ledger/pkg/observability/tracing/attributeutil"
	identifiersvc "github.com/trustbloc/did-ledger/pkg/service/identifier"
)

var _ Service = (*Wrapper)(nil) // make sure Wrapper implements identifier.ServiceInterface

type Service identifiersvc.ServiceInterface

type Wrapper struct {
	svc    Service
	tracer trace.Tracer
}

func Wrap(svc Service, tracer trace.Tracer) *Wrapper {
	return &Wrapper{svc: svc, tracer: tracer}
}

func (w *Wrapper) Create(ctx context.Context, caller auth.Identity, req *identifiersvc.CreateRequest) (*did.Document, error) {
	ctx, span := w.tracer.Start(ctx, "identifier.Create")
	defer span.End()

	span.SetAttributes(callerAttribute(caller))
	span.SetAttributes(attributeutil.JSON("request", req))

	doc, err := w.svc.Create(ctx, caller, req)
	if err != nil {
		return nil, recordError(span, err)
	}

	span.SetAttributes(attribute.String("identifier", doc.ID))

	return doc, nil
}

func (w *Wrapper) Resolve(ctx context.Context, caller auth.Identity, id string) (*did.Document, error) {
	ctx, span := w.tracer.Start(ctx, "identifier.Resolve")
	defer span.End()

	span.SetAttributes(callerAttribute(caller), attribute.String("identifier", id))

	doc, err := w.svc.Resolve(ctx, caller, id)
	if err != nil {
		return nil, recordError(span, err)
	}

	return doc, nil
}

func (w *Wrapper) Deactivate(ctx context.Context, caller auth.Identity, id string) error {
	ctx, span := w.tracer.Start(ctx, "identifier.Deactivate")
	defer span.End()

	span.SetAttributes(callerAttribute(caller), attribute.String("identifier", id))

	if err := w.svc.Deactivate(ctx, caller, id); err != nil {
		return recordError(span, err)
	}

	return nil
}

func (w *Wrapper) ListKeys(ctx context.Context, caller auth.Identity, id string) ([]keypair.KeyPair, error) {
	ctx, span := w.tracer.Start(ctx, "identifier.ListKeys")
	defer span.End()

	span.SetAttributes(callerAttribute(caller), attribute.String("identifier", id))

	keys, err := w.svc.ListKeys(ctx, caller, id)
	if err != nil {
		return nil, recordError(span, err)
	}

	span.SetAttributes(attribute.Int("keys", len(keys)))

	return keys, nil
}

func (w *Wrapper) ExportKey(ctx context.Context, caller auth.Identity, id, keyID string) (*identifiersvc.ExportedKey, error) {
	ctx, span := w.tracer.Start(ctx, "identifier.ExportKey")
	defer span.End()

	span.SetAttributes(callerAttribute(caller), attribute.String("identifier", id), attribute.String("key_id", keyID))

	key, err := w.svc.ExportKey(ctx, caller, id, keyID)
	if err != nil {
		return nil, recordError(span, err)
	}

	span.SetAttributes(attributeutil.JSON("key", key,
		attributeutil.WithRedacted("privateKey", "jwk.d", "jwk.p", "jwk.q", "jwk.dp", "jwk.dq", "jwk.qi")))

	return key, nil
}

func (w *Wrapper) RevokeKey(ctx context.Context, caller auth.Identity, id, keyID string) (*did.Document, error) {
	ctx, span := w.tracer.Start(ctx, "identifier.RevokeKey")
	defer span.End()

	span.SetAttributes(callerAttribute(caller), attribute.String("identifier", id), attribute.String("key_id", keyID))

	doc, err := w.svc.RevokeKey(ctx, caller, id, keyID)
	if err != nil {
		return nil, recordError(span, err)
	}

	return doc, nil
}

func (w *Wrapper) RollKey(ctx context.Context, caller auth.Identity, id string, opts *identifiersvc.RollOptions) (*did.Document, error) {
	ctx, span := w.tracer.Start(ctx, "identifier.RollKey")
	defer span.End()

	span.SetAttributes(callerAttribute(caller), attribute.String("identifier", id))
	span.SetAttributes(attributeutil.JSON("opts", opts))

	doc, err := w.svc.RollKey(ctx, caller, id, opts)
	if err != nil {
		return nil, recordError(span, err)
	}

	return doc, nil
}

func (w *Wrapper) Sign(ctx context.Context, caller auth.Identity, id string, payload []byte) (*identifiersvc.Signature, error) {
	ctx, span := w.tracer.Start(ctx, "identifier.Sign")
	defer span.End()

	span.SetAttributes(callerAttribute(caller), attribute.String("identifier", id))
	span.SetAttributes(attribute.Int("payload_size", len(payload)))

	sig, err := w.svc.Sign(ctx, caller, id, payload)
	if err != nil {
		return nil, recordError(span, err)
	}

	span.SetAttributes(attribute.String("key_id", sig.KeyIdentifier))

	return sig, nil
}

func (w *Wrapper) Verify(ctx context.Context, caller auth.Identity, id string, req *identifiersvc.VerifyRequest) (bool, error) {
	ctx, span := w.tracer.Start(ctx, "identifier.Verify")
	defer span.End()

	span.SetAttributes(callerAttribute(caller), attribute.String("identifier", id))
	span.SetAttributes(attributeutil.JSON("request", req, attributeutil.WithRedacted("payload")))

	ok, err := w.svc.Verify(ctx, caller, id, req)
	if err != nil {
		return false, recordError(span, err)
	}

	span.SetAttributes(attribute.Bool("valid", ok))

	return ok, nil
}

func (w *Wrapper) AddService(ctx context.Context, caller auth.Identity, id string, svc *did.Service) (*did.Document, error) {
	ctx, span := w.tracer.Start(ctx, "identifier.AddService")
	defer span.End()

	span.SetAttributes(callerAttribute(caller), attribute.String("identifier", id))
	span.SetAttributes(attributeutil.JSON("service", svc))

	doc, err := w.svc.AddService(ctx, caller, id, svc)
	if err != nil {
		return nil, recordError(span, err)
	}

	return doc, nil
}

func (w *Wrapper) RemoveService(ctx context.Context, caller auth.Identity, id, serviceID string) (*did.Document, error) {
	ctx, span := w.tracer.Start(ctx, "identifier.RemoveService")
	defer span.End()

	span.SetAttributes(callerAttribute(caller), attribute.String("identifier", id),
		attribute.String("service_id", serviceID))

	doc, err := w.svc.RemoveService(ctx, caller, id, serviceID)
	if err != nil {
		return nil, recordError(span, err)
	}

	return doc, nil
}

func (w *Wrapper) Count(ctx context.Context) (int64, error) {
	ctx, span := w.tracer.Start(ctx, "identifier.Count")
	defer span.End()

	n, err := w.svc.Count(ctx)
	if err != nil {
		return 0, recordError(span, err)
	}

	span.SetAttributes(attribute.Int64("count", n))

	return n, nil
}

func callerAttribute(caller auth.Identity) attribute.KeyValue {
	return attribute.String("caller", caller.Identifier)
}

func recordError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	return err
}
