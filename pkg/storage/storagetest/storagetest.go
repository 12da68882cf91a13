/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/trustbloc/did-ledger/pkg/storage"
)

// TestAll runs the common store tests against provider.
func TestAll(t *testing.T, provider storage.Provider) {
	t.Helper()

	t.Run("put get delete", func(t *testing.T) { testPutGetDelete(t, provider) })
	t.Run("expected version", func(t *testing.T) { testExpectedVersion(t, provider) })
	t.Run("size", func(t *testing.T) { testSize(t, provider) })
	t.Run("concurrent conditional writes", func(t *testing.T) { testConcurrentWrites(t, provider) })
	t.Run("ping", func(t *testing.T) { require.NoError(t, provider.Ping(context.Background())) })
}

func openStore(t *testing.T, provider storage.Provider) storage.Store {
	t.Helper()

	store, err := provider.OpenStore("store_" + uuid.NewString()[:8])
	require.NoError(t, err)

	return store
}

func testPutGetDelete(t *testing.T, provider storage.Provider) {
	ctx := context.Background()
	store := openStore(t, provider)

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, storage.ErrDataNotFound)

	v, err := store.Put(ctx, "did:ledger:a", []byte(`{"a":1}`))
	require.NoError(t, err)
	require.EqualValues(t, 1, v)

	e, err := store.Get(ctx, "did:ledger:a")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"a":1}`), e.Value)
	require.EqualValues(t, 1, e.Version)

	v, err = store.Put(ctx, "did:ledger:a", []byte(`{"a":2}`))
	require.NoError(t, err)
	require.EqualValues(t, 2, v)

	ok, err := store.Has(ctx, "did:ledger:a")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, store.Delete(ctx, "did:ledger:a"))
	require.NoError(t, store.Delete(ctx, "did:ledger:a"))

	ok, err = store.Has(ctx, "did:ledger:a")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = store.Get(ctx, "did:ledger:a")
	require.ErrorIs(t, err, storage.ErrDataNotFound)
}

func testExpectedVersion(t *testing.T, provider storage.Provider) {
	ctx := context.Background()
	store := openStore(t, provider)

	v, err := store.Put(ctx, "k", []byte("1"), storage.WithExpectedVersion(0))
	require.NoError(t, err)
	require.EqualValues(t, 1, v)

	_, err = store.Put(ctx, "k", []byte("x"), storage.WithExpectedVersion(0))
	require.ErrorIs(t, err, storage.ErrVersionConflict)

	v, err = store.Put(ctx, "k", []byte("2"), storage.WithExpectedVersion(1))
	require.NoError(t, err)
	require.EqualValues(t, 2, v)

	_, err = store.Put(ctx, "k", []byte("stale"), storage.WithExpectedVersion(1))
	require.ErrorIs(t, err, storage.ErrVersionConflict)

	e, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("2"), e.Value)

	_, err = store.Put(ctx, "absent", []byte("x"), storage.WithExpectedVersion(3))
	require.ErrorIs(t, err, storage.ErrVersionConflict)
}

func testSize(t *testing.T, provider storage.Provider) {
	ctx := context.Background()
	store := openStore(t, provider)

	n, err := store.Size(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	for _, k := range []string{"a", "b", "c"} {
		_, err = store.Put(ctx, k, []byte(k))
		require.NoError(t, err)
	}

	require.NoError(t, store.Delete(ctx, "b"))

	n, err = store.Size(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func testConcurrentWrites(t *testing.T, provider storage.Provider) {
	ctx := context.Background()
	store := openStore(t, provider)

	_, err := store.Put(ctx, "k", []byte("0"))
	require.NoError(t, err)

	const writers = 8

	var (
		wg        sync.WaitGroup
		mutex     sync.Mutex
		succeeded int
	)

	for i := 0; i < writers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if _, putErr := store.Put(ctx, "k", []byte("w"), storage.WithExpectedVersion(1)); putErr == nil {
				mutex.Lock()
				succeeded++
				mutex.Unlock()
			}
		}()
	}

	wg.Wait()

	require.Equal(t, 1, succeeded)

	e, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.EqualValues(t, 2, e.Version)
}
