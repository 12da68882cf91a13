/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package identifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/trustbloc/did-ledger/pkg/auth"
	"github.com/trustbloc/did-ledger/pkg/storage"
)

// StoreName is the name of the store holding identifier aggregates.
const StoreName = "identifiers"

// Store is the only writer of identifier aggregates.
type Store struct {
	store storage.Store
}

// NewStore opens the identifier store on provider.
func NewStore(provider storage.Provider) (*Store, error) {
	s, err := provider.OpenStore(StoreName)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", StoreName, err)
	}

	return &Store{store: s}, nil
}

type readOpts struct {
	checkControl bool
}

// ReadOpt configures Read.
type ReadOpt func(opts *readOpts)

// WithoutControlCheck lets any caller read the identifier. Used by resolve and verify.
func WithoutControlCheck() ReadOpt {
	return func(opts *readOpts) {
		opts.checkControl = false
	}
}

// AddOrUpdate writes the full aggregate. An aggregate that was read is written conditionally on the
// version it was read at, so a concurrent commit in between fails with storage.ErrVersionConflict.
func (s *Store) AddOrUpdate(ctx context.Context, identifier *Identifier) error {
	b, err := json.Marshal(identifier)
	if err != nil {
		return fmt.Errorf("marshal identifier: %w", err)
	}

	var opts []storage.PutOption

	if identifier.version > 0 {
		opts = append(opts, storage.WithExpectedVersion(identifier.version))
	}

	version, err := s.store.Put(ctx, identifier.ID, b, opts...)
	if err != nil {
		return fmt.Errorf("put identifier %s: %w", identifier.ID, err)
	}

	identifier.version = version

	return nil
}

// Read returns the identifier. Unless WithoutControlCheck is given, the caller must be its
// controller or delegate.
func (s *Store) Read(ctx context.Context, id string, caller auth.Identity, opts ...ReadOpt) (*Identifier, error) {
	o := &readOpts{checkControl: true}

	for _, fn := range opts {
		fn(o)
	}

	entry, err := s.store.Get(ctx, id)
	if errors.Is(err, storage.ErrDataNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("get identifier %s: %w", id, err)
	}

	identifier := &Identifier{}

	if err = json.Unmarshal(entry.Value, identifier); err != nil {
		return nil, fmt.Errorf("unmarshal identifier %s: %w", id, err)
	}

	identifier.version = entry.Version

	if o.checkControl && !identifier.IsController(caller) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidController, id)
	}

	return identifier, nil
}

// Remove deletes the identifier. Removing a missing identifier is not an error.
func (s *Store) Remove(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete identifier %s: %w", id, err)
	}

	return nil
}

// Count returns the number of identifiers on the network.
func (s *Store) Count(ctx context.Context) (int64, error) {
	n, err := s.store.Size(ctx)
	if err != nil {
		return 0, fmt.Errorf("count identifiers: %w", err)
	}

	return n, nil
}
