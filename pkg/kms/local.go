/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package kms

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	sha256simd "github.com/minio/sha256-simd"
)

const (
	pemPublicKey           = "PUBLIC KEY"
	pemPrivateKey          = "PRIVATE KEY"
	pemSecp256k1PublicKey  = "SECP256K1 PUBLIC KEY"
	pemSecp256k1PrivateKey = "SECP256K1 PRIVATE KEY"
)

// LocalCrypto implements Crypto in process.
type LocalCrypto struct{}

// NewLocalCrypto returns a Crypto backed by the Go crypto packages.
func NewLocalCrypto() *LocalCrypto {
	return &LocalCrypto{}
}

// GenerateKeyPair generates a key pair and returns it as PEM encoded public and private keys.
func (c *LocalCrypto) GenerateKeyPair(alg KeyAlgorithm, params KeyParams) (string, string, error) {
	switch alg {
	case RSA:
		size := params.Size
		if size == 0 {
			size = DefaultRSAKeySize
		}

		if err := CheckRSAKeySize(size); err != nil {
			return "", "", err
		}

		key, err := rsa.GenerateKey(rand.Reader, size)
		if err != nil {
			return "", "", fmt.Errorf("generate rsa key: %w", err)
		}

		return encodePKCS(key.Public(), key)
	case ECDSA:
		return c.generateECDSA(params.Curve)
	case EdDSA:
		if params.Curve != "" && params.Curve != Curve25519 {
			return "", "", fmt.Errorf("%w for EdDSA: %s", ErrUnsupportedCurve, params.Curve)
		}

		pub, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return "", "", fmt.Errorf("generate ed25519 key: %w", err)
		}

		return encodePKCS(pub, priv)
	default:
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, alg)
	}
}

func (c *LocalCrypto) generateECDSA(curve Curve) (string, string, error) {
	var ec elliptic.Curve

	switch curve {
	case Secp256r1, "":
		ec = elliptic.P256()
	case Secp384r1:
		ec = elliptic.P384()
	case Secp256k1:
		key, err := secp256k1.GeneratePrivateKey()
		if err != nil {
			return "", "", fmt.Errorf("generate secp256k1 key: %w", err)
		}

		pub := pem.EncodeToMemory(&pem.Block{Type: pemSecp256k1PublicKey, Bytes: key.PubKey().SerializeCompressed()})
		priv := pem.EncodeToMemory(&pem.Block{Type: pemSecp256k1PrivateKey, Bytes: key.Serialize()})

		return string(pub), string(priv), nil
	default:
		return "", "", fmt.Errorf("%w for ECDSA: %s", ErrUnsupportedCurve, curve)
	}

	key, err := ecdsa.GenerateKey(ec, rand.Reader)
	if err != nil {
		return "", "", fmt.Errorf("generate ecdsa key: %w", err)
	}

	return encodePKCS(key.Public(), key)
}

// Digest computes the digest of data.
func (c *LocalCrypto) Digest(alg DigestAlgorithm, data []byte) ([]byte, error) {
	if alg != SHA256 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDigest, alg)
	}

	sum := sha256simd.Sum256(data)

	return sum[:], nil
}

// Sign signs data with the PEM encoded private key.
func (c *LocalCrypto) Sign(alg SigningAlgorithm, privateKey string, data []byte) ([]byte, error) {
	digest, err := c.Digest(alg.Hash, data)
	if err != nil {
		return nil, err
	}

	key, err := parsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}

	if err = checkAlgorithm(alg.Name, key); err != nil {
		return nil, err
	}

	switch k := key.(type) {
	case *rsa.PrivateKey:
		return rsa.SignPKCS1v15(rand.Reader, k, crypto.SHA256, digest)
	case *ecdsa.PrivateKey:
		return ecdsa.SignASN1(rand.Reader, k, digest)
	case ed25519.PrivateKey:
		return ed25519.Sign(k, data), nil
	case *secp256k1.PrivateKey:
		return secpecdsa.Sign(k, digest).Serialize(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported private key type %T", ErrInvalidKey, key)
	}
}

// Verify checks signature over data with the PEM encoded public key. A signature that
// does not match or cannot be decoded yields false without an error.
func (c *LocalCrypto) Verify(alg SigningAlgorithm, publicKey string, signature, data []byte) (bool, error) {
	digest, err := c.Digest(alg.Hash, data)
	if err != nil {
		return false, err
	}

	key, err := parsePublicKey(publicKey)
	if err != nil {
		return false, err
	}

	if err = checkAlgorithm(alg.Name, key); err != nil {
		return false, err
	}

	switch k := key.(type) {
	case *rsa.PublicKey:
		return rsa.VerifyPKCS1v15(k, crypto.SHA256, digest, signature) == nil, nil
	case *ecdsa.PublicKey:
		return ecdsa.VerifyASN1(k, digest, signature), nil
	case ed25519.PublicKey:
		return ed25519.Verify(k, data, signature), nil
	case *secp256k1.PublicKey:
		sig, parseErr := secpecdsa.ParseDERSignature(signature)
		if parseErr != nil {
			return false, nil
		}

		return sig.Verify(digest, k), nil
	default:
		return false, fmt.Errorf("%w: unsupported public key type %T", ErrInvalidKey, key)
	}
}

func checkAlgorithm(alg KeyAlgorithm, key interface{}) error {
	var expected KeyAlgorithm

	switch key.(type) {
	case *rsa.PrivateKey, *rsa.PublicKey:
		expected = RSA
	case *ecdsa.PrivateKey, *ecdsa.PublicKey, *secp256k1.PrivateKey, *secp256k1.PublicKey:
		expected = ECDSA
	case ed25519.PrivateKey, ed25519.PublicKey:
		expected = EdDSA
	}

	if alg != expected {
		return fmt.Errorf("%w: algorithm %s does not match %s key", ErrUnsupportedAlgorithm, alg, expected)
	}

	return nil
}

func encodePKCS(pub crypto.PublicKey, priv crypto.PrivateKey) (string, string, error) {
	pubDER, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", "", fmt.Errorf("marshal public key: %w", err)
	}

	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return "", "", fmt.Errorf("marshal private key: %w", err)
	}

	return string(pem.EncodeToMemory(&pem.Block{Type: pemPublicKey, Bytes: pubDER})),
		string(pem.EncodeToMemory(&pem.Block{Type: pemPrivateKey, Bytes: privDER})), nil
}

func decodePEM(s string) (*pem.Block, error) {
	block, _ := pem.Decode([]byte(s))
	if block == nil {
		return nil, fmt.Errorf("%w: not PEM encoded", ErrInvalidKey)
	}

	return block, nil
}

func parsePublicKey(s string) (interface{}, error) {
	block, err := decodePEM(s)
	if err != nil {
		return nil, err
	}

	switch block.Type {
	case pemPublicKey:
		key, parseErr := x509.ParsePKIXPublicKey(block.Bytes)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidKey, parseErr.Error())
		}

		return key, nil
	case pemSecp256k1PublicKey:
		key, parseErr := secp256k1.ParsePubKey(block.Bytes)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidKey, parseErr.Error())
		}

		return key, nil
	default:
		return nil, fmt.Errorf("%w: unexpected PEM block %q", ErrInvalidKey, block.Type)
	}
}

func parsePrivateKey(s string) (interface{}, error) {
	block, err := decodePEM(s)
	if err != nil {
		return nil, err
	}

	switch block.Type {
	case pemPrivateKey:
		key, parseErr := x509.ParsePKCS8PrivateKey(block.Bytes)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidKey, parseErr.Error())
		}

		return key, nil
	case pemSecp256k1PrivateKey:
		if len(block.Bytes) != secp256k1.PrivKeyBytesLen {
			return nil, fmt.Errorf("%w: secp256k1 private key must be %d bytes", ErrInvalidKey,
				secp256k1.PrivKeyBytesLen)
		}

		return secp256k1.PrivKeyFromBytes(block.Bytes), nil
	default:
		return nil, fmt.Errorf("%w: unexpected PEM block %q", ErrInvalidKey, block.Type)
	}
}
