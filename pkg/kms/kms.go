/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package kms

import (
	"errors"
	"fmt"
	"strings"
)

// KeyAlgorithm is the asymmetric algorithm family of a key pair.
type KeyAlgorithm string

const (
	RSA   KeyAlgorithm = "RSASSA_PKCS1-v1_5"
	ECDSA KeyAlgorithm = "ECDSA"
	EdDSA KeyAlgorithm = "EdDSA"
)

// Curve is the named curve of an ECDSA or EdDSA key.
type Curve string

const (
	Secp256r1  Curve = "secp256r1"
	Secp256k1  Curve = "secp256k1"
	Secp384r1  Curve = "secp384r1"
	Curve25519 Curve = "curve25519"
)

// DigestAlgorithm names a digest function.
type DigestAlgorithm string

const SHA256 DigestAlgorithm = "SHA-256"

const (
	// DefaultRSAKeySize is used when no modulus size is requested for an RSA key.
	DefaultRSAKeySize = 2048
	// MaxRSAKeySize bounds the modulus size so that key generation stays in the request path.
	MaxRSAKeySize = 8192
	minRSAKeySize = 2048
)

var (
	ErrUnsupportedAlgorithm = errors.New("unsupported key algorithm")
	ErrUnsupportedCurve     = errors.New("unsupported curve")
	ErrUnsupportedKeySize   = errors.New("unsupported key size")
	ErrUnsupportedDigest    = errors.New("unsupported digest algorithm")
	ErrInvalidKey           = errors.New("invalid key material")
)

// KeyParams holds the algorithm specific parameters of a key to generate.
type KeyParams struct {
	Size  int
	Curve Curve
}

// SigningAlgorithm describes how a signature is produced: the key algorithm plus a digest.
type SigningAlgorithm struct {
	Name KeyAlgorithm    `json:"name"`
	Hash DigestAlgorithm `json:"hash"`
}

// Crypto is the set of cryptographic primitives the identifier engine consumes.
// Key material crosses this boundary as PEM encoded strings.
type Crypto interface {
	GenerateKeyPair(alg KeyAlgorithm, params KeyParams) (publicKey, privateKey string, err error)
	Digest(alg DigestAlgorithm, data []byte) ([]byte, error)
	Sign(alg SigningAlgorithm, privateKey string, data []byte) ([]byte, error)
	Verify(alg SigningAlgorithm, publicKey string, signature, data []byte) (bool, error)
	ToJWK(key, kid string, includePrivate bool) (map[string]interface{}, error)
}

// ParseKeyAlgorithm maps user input onto a supported algorithm. Short names are accepted.
func ParseKeyAlgorithm(s string) (KeyAlgorithm, error) {
	switch {
	case strings.EqualFold(s, string(RSA)), strings.EqualFold(s, "RSA"):
		return RSA, nil
	case strings.EqualFold(s, string(ECDSA)), strings.EqualFold(s, "EC"):
		return ECDSA, nil
	case strings.EqualFold(s, string(EdDSA)), strings.EqualFold(s, "Ed25519"):
		return EdDSA, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, s)
	}
}

// ParseCurve maps user input onto a supported curve.
func ParseCurve(s string) (Curve, error) {
	for _, c := range []Curve{Secp256r1, Secp256k1, Secp384r1, Curve25519} {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrUnsupportedCurve, s)
}

// CheckRSAKeySize returns ErrUnsupportedKeySize unless size is within the accepted RSA modulus range.
func CheckRSAKeySize(size int) error {
	if size < minRSAKeySize || size > MaxRSAKeySize {
		return fmt.Errorf("%w: rsa modulus of %d bits is outside [%d, %d]",
			ErrUnsupportedKeySize, size, minRSAKeySize, MaxRSAKeySize)
	}

	return nil
}
