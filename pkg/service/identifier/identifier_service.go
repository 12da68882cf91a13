/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package identifier

import (
	"context"
	_ "embed"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"
	"github.com/samber/lo"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/did-ledger/internal/logfields"
	"github.com/trustbloc/did-ledger/pkg/auth"
	"github.com/trustbloc/did-ledger/pkg/doc/did"
	"github.com/trustbloc/did-ledger/pkg/doc/validator/jsonschema"
	"github.com/trustbloc/did-ledger/pkg/domain"
	"github.com/trustbloc/did-ledger/pkg/identifier"
	"github.com/trustbloc/did-ledger/pkg/keypair"
	"github.com/trustbloc/did-ledger/pkg/kms"
	"github.com/trustbloc/did-ledger/pkg/observability/metrics"
	"github.com/trustbloc/did-ledger/pkg/observability/metrics/noop"
	"github.com/trustbloc/did-ledger/pkg/restapi/resterr"
	"github.com/trustbloc/did-ledger/pkg/storage"
)

var logger = log.New("identifier-service")

const (
	// DefaultMethod is the DID method of created identifiers when none is configured.
	DefaultMethod = "ledger"

	defaultMaxRetries = 5

	serviceSchemaID = "https://trustbloc.github.io/did-ledger/schema/service.json"
)

//go:embed service.schema.json
var serviceSchemaDoc []byte

var serviceSchema = jsonschema.MustCompile(serviceSchemaID, serviceSchemaDoc) //nolint:gochecknoglobals

type identifierStore interface {
	AddOrUpdate(ctx context.Context, identifier *identifier.Identifier) error
	Read(ctx context.Context, id string, caller auth.Identity,
		opts ...identifier.ReadOpt) (*identifier.Identifier, error)
	Remove(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type domainRegistry interface {
	Resolve(ctx context.Context, requested string) (string, error)
	Add(ctx context.Context, name, identifierID string) error
	Remove(ctx context.Context, name, identifierID string) error
}

type keyPairCreator interface {
	Create(alg kms.KeyAlgorithm, use keypair.Use, size int, curve kms.Curve) (*keypair.KeyPair, error)
}

// ServiceInterface is the set of operations on identifiers and their keys.
type ServiceInterface interface {
	Create(ctx context.Context, caller auth.Identity, req *CreateRequest) (*did.Document, error)
	Resolve(ctx context.Context, caller auth.Identity, id string) (*did.Document, error)
	Deactivate(ctx context.Context, caller auth.Identity, id string) error
	ListKeys(ctx context.Context, caller auth.Identity, id string) ([]keypair.KeyPair, error)
	ExportKey(ctx context.Context, caller auth.Identity, id, keyID string) (*ExportedKey, error)
	RevokeKey(ctx context.Context, caller auth.Identity, id, keyID string) (*did.Document, error)
	RollKey(ctx context.Context, caller auth.Identity, id string, opts *RollOptions) (*did.Document, error)
	Sign(ctx context.Context, caller auth.Identity, id string, payload []byte) (*Signature, error)
	Verify(ctx context.Context, caller auth.Identity, id string, req *VerifyRequest) (bool, error)
	AddService(ctx context.Context, caller auth.Identity, id string, svc *did.Service) (*did.Document, error)
	RemoveService(ctx context.Context, caller auth.Identity, id, serviceID string) (*did.Document, error)
	Count(ctx context.Context) (int64, error)
}

var _ ServiceInterface = (*Service)(nil)

type Config struct {
	Store                  identifierStore
	Domains                domainRegistry
	KeyCreator             keyPairCreator
	Crypto                 kms.Crypto
	Metrics                metrics.Metrics
	Method                 string
	Vocab                  string
	SignRequiresController bool
	MaxRetries             uint64
}

type Service struct {
	store                  identifierStore
	domains                domainRegistry
	keyCreator             keyPairCreator
	crypto                 kms.Crypto
	factory                *identifier.Factory
	metrics                metrics.Metrics
	method                 string
	signRequiresController bool
	maxRetries             uint64
}

// CreateRequest holds the key parameters of a new identifier. Both of its key pairs are generated
// with the same parameters.
type CreateRequest struct {
	Algorithm kms.KeyAlgorithm
	Size      int
	Curve     kms.Curve
	Domain    string
}

// RollOptions selects the key to roll and overrides the parameters of its replacement.
type RollOptions struct {
	Use       keypair.Use
	Algorithm kms.KeyAlgorithm
	Size      int
	Curve     kms.Curve
}

// Signature is the result of signing a payload with the current signing key of an identifier.
type Signature struct {
	Signature     string               `json:"signature"`
	Algorithm     kms.SigningAlgorithm `json:"algorithm"`
	KeyIdentifier string               `json:"keyIdentifier"`
}

// VerifyRequest is a payload and its base64url encoded signature. KeyIdentifier optionally names a
// historical signing key to verify against.
type VerifyRequest struct {
	Signature     string `json:"signature"`
	Payload       string `json:"payload"`
	Signer        string `json:"signer"`
	KeyIdentifier string `json:"keyIdentifier,omitempty"`
}

// ExportedKey is a key pair together with its JSON Web Key.
type ExportedKey struct {
	*keypair.KeyPair
	JWK map[string]interface{} `json:"jwk"`
}

func New(config *Config) *Service {
	m := config.Metrics
	if m == nil {
		m = noop.GetMetrics()
	}

	method := config.Method
	if method == "" {
		method = DefaultMethod
	}

	maxRetries := config.MaxRetries
	if maxRetries == 0 {
		maxRetries = defaultMaxRetries
	}

	return &Service{
		store:                  config.Store,
		domains:                config.Domains,
		keyCreator:             config.KeyCreator,
		crypto:                 config.Crypto,
		factory:                identifier.NewFactory(config.Crypto, config.Vocab),
		metrics:                m,
		method:                 method,
		signRequiresController: config.SignRequiresController,
		maxRetries:             maxRetries,
	}
}

// Create generates a signing and an encryption key pair, binds them to a new identifier owned by
// the caller and maps the identifier into the requested domain.
func (s *Service) Create(ctx context.Context, caller auth.Identity, req *CreateRequest) (*did.Document, error) {
	if !caller.IsAuthenticated() {
		return nil, resterr.NewInvalidController(caller, "").
			WithComponent(resterr.IdentifierSvcComponent).WithOperation("Create")
	}

	dom, err := s.domains.Resolve(ctx, req.Domain)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, resterr.NewDomainNotFound(caller, req.Domain)
		}

		return nil, fmt.Errorf("resolve domain: %w", err)
	}

	alg := req.Algorithm
	if alg == "" {
		alg = kms.EdDSA
	}

	signing, err := s.keyCreator.Create(alg, keypair.Signing, req.Size, req.Curve)
	if err != nil {
		return nil, fmt.Errorf("create signing key: %w", err)
	}

	encryption, err := s.keyCreator.Create(alg, keypair.Encryption, req.Size, req.Curve)
	if err != nil {
		return nil, fmt.Errorf("create encryption key: %w", err)
	}

	digest, err := s.crypto.Digest(kms.SHA256, []byte(signing.PublicKey))
	if err != nil {
		return nil, fmt.Errorf("digest signing key: %w", err)
	}

	idf, err := s.factory.Create(signing, encryption,
		[]string{s.method, dom, base64.RawURLEncoding.EncodeToString(digest)}, caller.Identifier, "")
	if err != nil {
		return nil, err
	}

	if err = s.store.AddOrUpdate(ctx, idf); err != nil {
		return nil, fmt.Errorf("store identifier: %w", err)
	}

	if err = s.domains.Add(ctx, dom, idf.ID); err != nil {
		if rmErr := s.store.Remove(ctx, idf.ID); rmErr != nil {
			logger.Errorc(ctx, "Failed to remove unmapped identifier",
				logfields.WithIdentifier(idf.ID), log.WithError(rmErr))
		}

		return nil, fmt.Errorf("map identifier into domain %s: %w", dom, err)
	}

	s.metrics.IdentifierEvent(metrics.EventCreated)

	logger.Infoc(ctx, "Identifier created",
		logfields.WithIdentifier(idf.ID),
		logfields.WithDomain(dom),
		logfields.WithAlgorithm(string(alg)),
		logfields.WithCallerID(caller.Identifier))

	return idf.ControllerDocument, nil
}

// Resolve returns the controller document of an identifier. Any caller may resolve.
func (s *Service) Resolve(ctx context.Context, caller auth.Identity, id string) (*did.Document, error) {
	idf, err := s.read(ctx, caller, id, "Resolve", identifier.WithoutControlCheck())
	if err != nil {
		return nil, err
	}

	return idf.ControllerDocument, nil
}

// Deactivate removes the identifier and its domain mapping.
func (s *Service) Deactivate(ctx context.Context, caller auth.Identity, id string) error {
	if _, err := s.read(ctx, caller, id, "Deactivate"); err != nil {
		return err
	}

	if dom, ok := identifier.DomainOf(id); ok {
		if err := s.domains.Remove(ctx, dom, id); err != nil {
			return fmt.Errorf("unmap identifier from domain %s: %w", dom, err)
		}
	}

	if err := s.store.Remove(ctx, id); err != nil {
		return err
	}

	s.metrics.IdentifierEvent(metrics.EventDeactivated)

	logger.Infoc(ctx, "Identifier deactivated",
		logfields.WithIdentifier(id), logfields.WithCallerID(caller.Identifier))

	return nil
}

// ListKeys returns every key pair of the identifier without private key material.
func (s *Service) ListKeys(ctx context.Context, caller auth.Identity, id string) ([]keypair.KeyPair, error) {
	idf, err := s.read(ctx, caller, id, "ListKeys")
	if err != nil {
		return nil, err
	}

	keys := make([]keypair.KeyPair, 0, len(idf.KeyPairs))

	for _, kp := range idf.KeyPairs {
		keys = append(keys, kp.Redacted())
	}

	return keys, nil
}

// ExportKey returns a key pair of any state. Private key material is only present while the key is Current.
func (s *Service) ExportKey(ctx context.Context, caller auth.Identity, id, keyID string) (*ExportedKey, error) {
	idf, err := s.read(ctx, caller, id, "ExportKey")
	if err != nil {
		return nil, err
	}

	kp, ok := idf.KeyByID(keyID)
	if !ok {
		return nil, resterr.NewKeyNotFound(caller, id, keyID).
			WithComponent(resterr.IdentifierSvcComponent).WithOperation("ExportKey")
	}

	var jwk map[string]interface{}

	if kp.PrivateKey != "" {
		jwk, err = s.crypto.ToJWK(kp.PrivateKey, kp.ID, true)
	} else {
		jwk, err = s.crypto.ToJWK(kp.PublicKey, kp.ID, false)
	}

	if err != nil {
		return nil, fmt.Errorf("export key %s: %w", keyID, err)
	}

	return &ExportedKey{KeyPair: kp, JWK: jwk}, nil
}

// RevokeKey revokes a key pair and removes its verification method from the controller document.
func (s *Service) RevokeKey(ctx context.Context, caller auth.Identity, id, keyID string) (*did.Document, error) {
	idf, err := s.update(ctx, caller, id, "RevokeKey", func(idf *identifier.Identifier) (bool, error) {
		kp, ok := idf.KeyByID(keyID)
		if !ok {
			return false, resterr.NewKeyNotFound(caller, id, keyID).
				WithComponent(resterr.IdentifierSvcComponent).WithOperation("RevokeKey")
		}

		kp.Revoke()
		idf.ControllerDocument.RemoveVerificationMethod(keyID)

		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IdentifierEvent(metrics.EventKeyRevoked)

	logger.Infoc(ctx, "Key revoked",
		logfields.WithIdentifier(id), logfields.WithKeyID(keyID), logfields.WithCallerID(caller.Identifier))

	return idf.ControllerDocument, nil
}

// RollKey retires the Current key of the requested use and replaces it with a freshly generated one.
// The replacement inherits the parameters of the retired key unless they are overridden.
func (s *Service) RollKey(ctx context.Context, caller auth.Identity, id string, opts *RollOptions) (*did.Document, error) {
	use := opts.Use
	if use == "" {
		use = keypair.Signing
	}

	var newKeyID string

	idf, err := s.update(ctx, caller, id, "RollKey", func(idf *identifier.Identifier) (bool, error) {
		current, ok := idf.CurrentKey(use)
		if !ok {
			return false, resterr.NewKeyNotConfigured(caller, id, string(use)).
				WithComponent(resterr.IdentifierSvcComponent).WithOperation("RollKey")
		}

		alg, size, curve := current.Algorithm, current.Size, current.Curve

		if opts.Algorithm != "" && opts.Algorithm != current.Algorithm {
			alg, size, curve = opts.Algorithm, 0, ""
		}

		if opts.Size != 0 {
			size = opts.Size
		}

		if opts.Curve != "" {
			curve = opts.Curve
		}

		newKey, err := s.keyCreator.Create(alg, use, size, curve)
		if err != nil {
			return false, fmt.Errorf("create %s key: %w", use, err)
		}

		vm, err := s.factory.VerificationMethod(newKey)
		if err != nil {
			return false, err
		}

		if err = current.Retire(); err != nil {
			return false, err
		}

		idf.KeyPairs = append(idf.KeyPairs, newKey)
		idf.ControllerDocument.AddVerificationMethod(*vm, identifier.RotationRelationship(use))

		newKeyID = newKey.ID

		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IdentifierEvent(metrics.EventKeyRolled)

	logger.Infoc(ctx, "Key rolled",
		logfields.WithIdentifier(id),
		logfields.WithKeyUse(string(use)),
		logfields.WithKeyID(newKeyID),
		logfields.WithCallerID(caller.Identifier))

	return idf.ControllerDocument, nil
}

// Sign signs payload with the current signing key of the identifier.
func (s *Service) Sign(ctx context.Context, caller auth.Identity, id string, payload []byte) (*Signature, error) {
	if len(payload) == 0 {
		return nil, resterr.NewPayloadNotProvided(caller)
	}

	// Verify receives the payload as a JSON string, so only text payloads can be verified.
	if !utf8.Valid(payload) {
		return nil, resterr.NewInvalidValue(caller, "payload", errors.New("payload is not valid UTF-8 text"))
	}

	var opts []identifier.ReadOpt

	if !s.signRequiresController {
		opts = append(opts, identifier.WithoutControlCheck())
	}

	idf, err := s.read(ctx, caller, id, "Sign", opts...)
	if err != nil {
		return nil, err
	}

	kp, ok := idf.CurrentKey(keypair.Signing)
	if !ok {
		return nil, resterr.NewKeyNotConfigured(caller, id, string(keypair.Signing)).
			WithComponent(resterr.IdentifierSvcComponent).WithOperation("Sign")
	}

	alg := kp.SigningAlgorithm()
	start := time.Now()

	sig, err := s.crypto.Sign(alg, kp.PrivateKey, payload)
	if err != nil {
		return nil, fmt.Errorf("sign payload: %w", err)
	}

	s.metrics.SignTime(time.Since(start))

	return &Signature{
		Signature:     base64.RawURLEncoding.EncodeToString(sig),
		Algorithm:     alg,
		KeyIdentifier: kp.ID,
	}, nil
}

// Verify checks a signature over a payload against the current signing key of the identifier, or against
// the named signing key when the request carries a key identifier. Any caller may verify.
func (s *Service) Verify(ctx context.Context, caller auth.Identity, id string, req *VerifyRequest) (bool, error) {
	switch {
	case req.Signature == "":
		return false, resterr.NewSignatureNotProvided(caller)
	case req.Payload == "":
		return false, resterr.NewPayloadNotProvided(caller)
	case req.Signer == "":
		return false, resterr.NewSignerIdentifierNotProvided(caller)
	}

	idf, err := s.read(ctx, caller, id, "Verify", identifier.WithoutControlCheck())
	if err != nil {
		return false, err
	}

	kp, err := verificationKey(caller, idf, req.KeyIdentifier)
	if err != nil {
		return false, err
	}

	sig, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(req.Signature, "="))
	if err != nil {
		logger.Debugc(ctx, "Malformed signature", logfields.WithIdentifier(id), log.WithError(err))

		return false, nil
	}

	start := time.Now()

	ok, err := s.crypto.Verify(kp.SigningAlgorithm(), kp.PublicKey, sig, []byte(req.Payload))
	if err != nil {
		return false, fmt.Errorf("verify signature: %w", err)
	}

	s.metrics.VerifyTime(time.Since(start))

	return ok, nil
}

func verificationKey(caller auth.Identity, idf *identifier.Identifier, keyID string) (*keypair.KeyPair, error) {
	if keyID == "" {
		kp, ok := idf.CurrentKey(keypair.Signing)
		if !ok {
			return nil, resterr.NewKeyNotConfigured(caller, idf.ID, string(keypair.Signing)).
				WithComponent(resterr.IdentifierSvcComponent).WithOperation("Verify")
		}

		return kp, nil
	}

	kp, ok := idf.KeyByID(keyID)
	if !ok || kp.Use != keypair.Signing || kp.State == keypair.Revoked {
		return nil, resterr.NewKeyNotFound(caller, idf.ID, keyID).
			WithComponent(resterr.IdentifierSvcComponent).WithOperation("Verify")
	}

	return kp, nil
}

// AddService adds a service to the controller document or replaces the service with the same id.
func (s *Service) AddService(ctx context.Context, caller auth.Identity, id string, svc *did.Service) (*did.Document, error) {
	if svc == nil {
		return nil, resterr.NewServiceNotProvided(caller)
	}

	if err := s.validateService(caller, svc); err != nil {
		return nil, err
	}

	idf, err := s.update(ctx, caller, id, "AddService", func(idf *identifier.Identifier) (bool, error) {
		idf.ControllerDocument.AddOrUpdateService(*svc)

		return true, nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infoc(ctx, "Service added",
		logfields.WithIdentifier(id), logfields.WithServiceID(svc.ID), logfields.WithCallerID(caller.Identifier))

	return idf.ControllerDocument, nil
}

func (s *Service) validateService(caller auth.Identity, svc *did.Service) error {
	err := serviceSchema.Validate(svc)
	if err == nil {
		return nil
	}

	var validationErrs jsonschema.ValidationErrors

	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("validate service: %w", err)
	}

	props := validationErrs.Properties()

	for _, p := range []string{"id", "type", "serviceEndpoint"} {
		if lo.Contains(props, p) {
			return resterr.NewInvalidServiceProperty(caller, p).WithCause(err)
		}
	}

	return resterr.NewInvalidServiceProperty(caller, strings.Join(props, ",")).WithCause(err)
}

// RemoveService removes a service from the controller document. Removing an unknown service changes nothing.
func (s *Service) RemoveService(ctx context.Context, caller auth.Identity, id, serviceID string) (*did.Document, error) {
	if serviceID == "" {
		return nil, resterr.NewServiceIdentifierNotProvided(caller)
	}

	idf, err := s.update(ctx, caller, id, "RemoveService", func(idf *identifier.Identifier) (bool, error) {
		return idf.ControllerDocument.RemoveService(serviceID), nil
	})
	if err != nil {
		return nil, err
	}

	return idf.ControllerDocument, nil
}

// Count returns the number of identifiers on the network.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.store.Count(ctx)
}

func (s *Service) read(
	ctx context.Context,
	caller auth.Identity,
	id, operation string,
	opts ...identifier.ReadOpt,
) (*identifier.Identifier, error) {
	if id == "" {
		return nil, resterr.NewIdentifierNotProvided(caller)
	}

	idf, err := s.store.Read(ctx, id, caller, opts...)
	if err != nil {
		switch {
		case errors.Is(err, identifier.ErrNotFound):
			return nil, resterr.NewIdentifierNotFound(caller, id).
				WithComponent(resterr.IdentifierStoreComponent).WithOperation(operation)
		case errors.Is(err, identifier.ErrInvalidController):
			return nil, resterr.NewInvalidController(caller, id).
				WithComponent(resterr.IdentifierSvcComponent).WithOperation(operation)
		default:
			return nil, err
		}
	}

	return idf, nil
}

// update runs one read-modify-write unit of work on an identifier the caller controls. The unit of work is
// re-run from the read when a concurrent commit wins the write.
func (s *Service) update(
	ctx context.Context,
	caller auth.Identity,
	id, operation string,
	mutate func(idf *identifier.Identifier) (bool, error),
) (*identifier.Identifier, error) {
	var result *identifier.Identifier

	err := backoff.Retry(func() error {
		idf, err := s.read(ctx, caller, id, operation)
		if err != nil {
			return backoff.Permanent(err)
		}

		changed, err := mutate(idf)
		if err != nil {
			return backoff.Permanent(err)
		}

		if changed {
			err = s.store.AddOrUpdate(ctx, idf)
			if errors.Is(err, storage.ErrVersionConflict) {
				s.metrics.StoreVersionConflict()

				logger.Debugc(ctx, "Concurrent identifier update, retrying",
					logfields.WithIdentifier(id), logfields.WithOperation(operation))

				return err
			}

			if err != nil {
				return backoff.Permanent(err)
			}
		}

		result = idf

		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(newBackOff(), s.maxRetries), ctx))
	if err != nil {
		return nil, err
	}

	return result, nil
}

func newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 250 * time.Millisecond

	return b
}
