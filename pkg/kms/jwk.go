/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package kms

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/go-jose/go-jose/v3"
)

const secp256k1CoordinateLen = 32

// ToJWK converts a PEM encoded key into its JSON Web Key representation. When includePrivate
// is set, key must be the PEM encoded private key and the private members are emitted.
func (c *LocalCrypto) ToJWK(key, kid string, includePrivate bool) (map[string]interface{}, error) {
	var (
		parsed interface{}
		err    error
	)

	if includePrivate {
		parsed, err = parsePrivateKey(key)
	} else {
		parsed, err = parsePublicKey(key)
	}

	if err != nil {
		return nil, err
	}

	switch k := parsed.(type) {
	case *secp256k1.PrivateKey:
		jwk := secp256k1JWK(k.PubKey(), kid)
		jwk["d"] = base64.RawURLEncoding.EncodeToString(k.Serialize())

		return jwk, nil
	case *secp256k1.PublicKey:
		return secp256k1JWK(k, kid), nil
	}

	b, err := json.Marshal(jose.JSONWebKey{Key: parsed, KeyID: kid})
	if err != nil {
		return nil, fmt.Errorf("marshal jwk: %w", err)
	}

	var jwk map[string]interface{}

	if err = json.Unmarshal(b, &jwk); err != nil {
		return nil, fmt.Errorf("unmarshal jwk: %w", err)
	}

	return jwk, nil
}

func secp256k1JWK(pub *secp256k1.PublicKey, kid string) map[string]interface{} {
	// uncompressed form is 0x04 || X || Y
	raw := pub.SerializeUncompressed()

	jwk := map[string]interface{}{
		"kty": "EC",
		"crv": string(Secp256k1),
		"x":   base64.RawURLEncoding.EncodeToString(raw[1 : 1+secp256k1CoordinateLen]),
		"y":   base64.RawURLEncoding.EncodeToString(raw[1+secp256k1CoordinateLen:]),
	}

	if kid != "" {
		jwk["kid"] = kid
	}

	return jwk
}
