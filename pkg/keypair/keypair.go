/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package keypair

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/trustbloc/did-ledger/pkg/kms"
)

const (
	idLength = 12
	// IDPrefix scopes key ids as document fragments.
	IDPrefix = "#"
)

// Use is the single purpose a key pair is valid for.
type Use string

const (
	Signing    Use = "sig"
	Encryption Use = "enc"
)

// ParseUse maps user input onto a key use. Empty input yields Signing.
func ParseUse(s string) (Use, error) {
	switch Use(s) {
	case "", Signing:
		return Signing, nil
	case Encryption:
		return Encryption, nil
	default:
		return "", fmt.Errorf("unsupported key use: %s", s)
	}
}

// State is the lifecycle state of a key pair.
type State string

const (
	Current    State = "current"
	Historical State = "historical"
	Revoked    State = "revoked"
)

var ErrInvalidStateTransition = errors.New("invalid key state transition")

// KeyPair is one asymmetric key of an identifier. PrivateKey is only populated while the key
// is Current.
type KeyPair struct {
	ID         string           `json:"id"`
	Algorithm  kms.KeyAlgorithm `json:"algorithm"`
	Size       int              `json:"size,omitempty"`
	Curve      kms.Curve        `json:"curve,omitempty"`
	Use        Use              `json:"use"`
	State      State            `json:"state"`
	PublicKey  string           `json:"publicKey"`
	PrivateKey string           `json:"privateKey,omitempty"`
}

// NewID returns a fresh random key id scoped as a document fragment.
func NewID() string {
	return IDPrefix + lo.RandomString(idLength, lo.AlphanumericCharset)
}

// Params returns the generation parameters of the key, used to produce a like-for-like replacement.
func (k *KeyPair) Params() kms.KeyParams {
	return kms.KeyParams{Size: k.Size, Curve: k.Curve}
}

// SigningAlgorithm returns the signature descriptor used with this key.
func (k *KeyPair) SigningAlgorithm() kms.SigningAlgorithm {
	return kms.SigningAlgorithm{Name: k.Algorithm, Hash: kms.SHA256}
}

// Retire moves a Current key to Historical and erases its private key.
func (k *KeyPair) Retire() error {
	if k.State != Current {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, k.State, Historical)
	}

	k.State = Historical
	k.PrivateKey = ""

	return nil
}

// Revoke moves the key to the terminal Revoked state and erases its private key.
// Revoking an already revoked key changes nothing.
func (k *KeyPair) Revoke() {
	k.State = Revoked
	k.PrivateKey = ""
}

// Redacted returns a copy of the key pair without private key material.
func (k *KeyPair) Redacted() KeyPair {
	c := *k
	c.PrivateKey = ""

	return c
}
