/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package noop

import (
	"time"

	"github.com/trustbloc/did-ledger/pkg/observability/metrics"
)

// NoMetrics discards every measurement. It is used when no metrics provider is configured.
type NoMetrics struct{}

func GetMetrics() metrics.Metrics {
	return &NoMetrics{}
}

func (*NoMetrics) SignTime(time.Duration)                  {}
func (*NoMetrics) VerifyTime(time.Duration)                {}
func (*NoMetrics) KeyGenerationTime(string, time.Duration) {}
func (*NoMetrics) StoreVersionConflict()                   {}
func (*NoMetrics) IdentifierEvent(metrics.LifecycleEvent)  {}
