/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package kvstore_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/did-ledger/pkg/storage/mongodb"
	"github.com/trustbloc/did-ledger/pkg/storage/mongodb/kvstore"
	"github.com/trustbloc/did-ledger/pkg/storage/storagetest"
)

func TestStore(t *testing.T) {
	client, err := mongodb.New(storagetest.StartMongoDB(t, "27040"), "kvstore_test", mongodb.WithTimeout(10*time.Second))
	require.NoError(t, err)

	provider := kvstore.NewProvider(client, "didledger_")
	defer func() {
		require.NoError(t, provider.Close())
	}()

	storagetest.TestAll(t, provider)

	t.Run("empty store name", func(t *testing.T) {
		_, err := provider.OpenStore("")
		require.Error(t, err)
	})
}
