/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package noop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/did-ledger/pkg/observability/metrics"
)

func TestNoMetrics(t *testing.T) {
	m := GetMetrics()
	require.IsType(t, &NoMetrics{}, m)

	require.NotPanics(t, func() {
		m.SignTime(time.Millisecond)
		m.VerifyTime(time.Millisecond)
		m.KeyGenerationTime("EdDSA", time.Millisecond)
		m.StoreVersionConflict()
		m.IdentifierEvent(metrics.EventCreated)
	})
}
