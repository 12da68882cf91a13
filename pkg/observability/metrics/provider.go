/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"time"

	"github.com/trustbloc/logutil-go/pkg/log"
)

var Logger = log.New("metrics-provider")

// Namespace prefixes every ledger metric.
const Namespace = "didledger"

// Subsystems and names of the ledger metrics.
const (
	Crypto                    = "crypto"
	CryptoSignTimeMetric      = "sign_seconds"
	CryptoVerifyTimeMetric    = "verify_seconds"
	CryptoKeyGenerationMetric = "key_generation_seconds"

	Store                       = "store"
	StoreVersionConflictsMetric = "version_conflicts_total"

	Identifier             = "identifier"
	IdentifierEventsMetric = "events_total"
)

// LifecycleEvent is a successful change of an identifier or of one of its keys.
type LifecycleEvent string

const (
	EventCreated     LifecycleEvent = "created"
	EventDeactivated LifecycleEvent = "deactivated"
	EventKeyRevoked  LifecycleEvent = "key_revoked"
	EventKeyRolled   LifecycleEvent = "key_rolled"
)

// Provider owns the lifecycle of a metrics backend.
type Provider interface {
	// Create starts exposing metrics. It may block until Destroy is called.
	Create() error
	Destroy() error
	Metrics() Metrics
}

// Metrics records the activity of the ledger.
type Metrics interface {
	SignTime(value time.Duration)
	VerifyTime(value time.Duration)
	KeyGenerationTime(algorithm string, value time.Duration)
	StoreVersionConflict()
	IdentifierEvent(event LifecycleEvent)
}
