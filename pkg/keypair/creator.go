/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package keypair

import (
	"fmt"
	"time"

	"github.com/trustbloc/did-ledger/pkg/kms"
	"github.com/trustbloc/did-ledger/pkg/observability/metrics"
	"github.com/trustbloc/did-ledger/pkg/observability/metrics/noop"
)

// Creator generates new key pairs.
type Creator struct {
	crypto  kms.Crypto
	metrics metrics.Metrics
}

// NewCreator returns a key pair creator. A nil metrics falls back to no-op metrics.
func NewCreator(crypto kms.Crypto, m metrics.Metrics) *Creator {
	if m == nil {
		m = noop.GetMetrics()
	}

	return &Creator{crypto: crypto, metrics: m}
}

// Create generates a Current key pair with a fresh id. Zero size and empty curve select the
// algorithm defaults: 2048 bit RSA, secp256r1 for ECDSA and curve25519 for EdDSA.
func (c *Creator) Create(alg kms.KeyAlgorithm, use Use, size int, curve kms.Curve) (*KeyPair, error) {
	params := kms.KeyParams{}

	switch alg {
	case kms.RSA:
		params.Size = size
		if params.Size == 0 {
			params.Size = kms.DefaultRSAKeySize
		}

		if err := kms.CheckRSAKeySize(params.Size); err != nil {
			return nil, err
		}
	case kms.ECDSA:
		params.Curve = curve
		if params.Curve == "" {
			params.Curve = kms.Secp256r1
		}
	case kms.EdDSA:
		params.Curve = curve
		if params.Curve == "" {
			params.Curve = kms.Curve25519
		}
	default:
		return nil, fmt.Errorf("%w: %s", kms.ErrUnsupportedAlgorithm, alg)
	}

	if use == "" {
		use = Signing
	}

	start := time.Now()

	pub, priv, err := c.crypto.GenerateKeyPair(alg, params)
	if err != nil {
		return nil, fmt.Errorf("generate %s key pair: %w", alg, err)
	}

	c.metrics.KeyGenerationTime(string(alg), time.Since(start))

	return &KeyPair{
		ID:         NewID(),
		Algorithm:  alg,
		Size:       params.Size,
		Curve:      params.Curve,
		Use:        use,
		State:      Current,
		PublicKey:  pub,
		PrivateKey: priv,
	}, nil
}
