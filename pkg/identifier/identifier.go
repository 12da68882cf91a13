/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package identifier

import (
	"errors"
	"fmt"
	"strings"

	"github.com/trustbloc/did-ledger/pkg/auth"
	"github.com/trustbloc/did-ledger/pkg/doc/did"
	"github.com/trustbloc/did-ledger/pkg/keypair"
	"github.com/trustbloc/did-ledger/pkg/kms"
)

// Scheme prefixes every identifier.
const Scheme = "did"

var (
	ErrNotFound          = errors.New("identifier not found")
	ErrInvalidController = errors.New("caller is not the controller of the identifier")
)

// Identifier is the aggregate of one decentralized identity: its keys and its controller document.
type Identifier struct {
	ID                 string             `json:"id"`
	Controller         string             `json:"controller"`
	ControllerDelegate string             `json:"controllerDelegate,omitempty"`
	ControllerDocument *did.Document      `json:"controllerDocument"`
	KeyPairs           []*keypair.KeyPair `json:"keyPairs"`

	// version observed when the aggregate was read, zero for a new aggregate
	version int64
}

// IsController reports whether caller is the controller or its delegate. The anonymous caller
// never controls an identifier.
func (i *Identifier) IsController(caller auth.Identity) bool {
	if !caller.IsAuthenticated() {
		return false
	}

	return caller.Identifier == i.Controller ||
		(i.ControllerDelegate != "" && caller.Identifier == i.ControllerDelegate)
}

// CurrentKey returns the Current key pair of the given use.
func (i *Identifier) CurrentKey(use keypair.Use) (*keypair.KeyPair, bool) {
	for _, kp := range i.KeyPairs {
		if kp.State == keypair.Current && kp.Use == use {
			return kp, true
		}
	}

	return nil, false
}

// KeyByID returns the key pair with the given id in any state.
func (i *Identifier) KeyByID(id string) (*keypair.KeyPair, bool) {
	for _, kp := range i.KeyPairs {
		if kp.ID == id {
			return kp, true
		}
	}

	return nil, false
}

// Version returns the store version the aggregate was read at.
func (i *Identifier) Version() int64 {
	return i.version
}

// Factory builds identifiers and their verification methods.
type Factory struct {
	crypto kms.Crypto
	vocab  string
}

// NewFactory returns a factory. vocab is the @vocab of created controller documents and may be empty.
func NewFactory(crypto kms.Crypto, vocab string) *Factory {
	return &Factory{crypto: crypto, vocab: vocab}
}

// Create composes an identifier from components and binds both key pairs to a new controller document.
// The signing key is referenced from authentication and assertionMethod, the encryption key from
// keyAgreement. Nothing is persisted.
func (f *Factory) Create(
	signing, encryption *keypair.KeyPair,
	components []string,
	controller, controllerDelegate string,
) (*Identifier, error) {
	if len(components) == 0 {
		return nil, errors.New("identifier components are required")
	}

	id := Scheme + ":" + strings.Join(components, ":")
	doc := did.NewDocument(id, f.vocab)

	for _, kp := range []*keypair.KeyPair{signing, encryption} {
		vm, err := f.VerificationMethod(kp)
		if err != nil {
			return nil, err
		}

		doc.AddVerificationMethod(*vm, RelationshipsOf(kp.Use)...)
	}

	return &Identifier{
		ID:                 id,
		Controller:         controller,
		ControllerDelegate: controllerDelegate,
		ControllerDocument: doc,
		KeyPairs:           []*keypair.KeyPair{signing, encryption},
	}, nil
}

// VerificationMethod returns the public verification method of a key pair. Its id is the key id.
func (f *Factory) VerificationMethod(kp *keypair.KeyPair) (*did.VerificationMethod, error) {
	jwk, err := f.crypto.ToJWK(kp.PublicKey, kp.ID, false)
	if err != nil {
		return nil, fmt.Errorf("convert key %s to jwk: %w", kp.ID, err)
	}

	return &did.VerificationMethod{
		ID:           kp.ID,
		Type:         did.JSONWebKey2020,
		PublicKeyJWK: jwk,
	}, nil
}

// RelationshipsOf returns the relationships a new key of the given use is referenced from.
func RelationshipsOf(use keypair.Use) []did.Relationship {
	if use == keypair.Encryption {
		return []did.Relationship{did.KeyAgreement}
	}

	return []did.Relationship{did.Authentication, did.AssertionMethod}
}

// RotationRelationship returns the relationship a rolled key of the given use is referenced from.
func RotationRelationship(use keypair.Use) did.Relationship {
	if use == keypair.Encryption {
		return did.KeyAgreement
	}

	return did.Authentication
}

// DomainOf returns the domain component of an identifier of the form did:<method>:<domain>:<digest>.
// The domain may itself contain colons, as in a host with a port.
func DomainOf(id string) (string, bool) {
	parts := strings.Split(id, ":")
	if len(parts) < 4 || parts[0] != Scheme {
		return "", false
	}

	d := strings.Join(parts[2:len(parts)-1], ":")
	if d == "" {
		return "", false
	}

	return d, true
}
