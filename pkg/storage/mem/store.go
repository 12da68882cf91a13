/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mem

import (
	"context"
	"sync"

	"github.com/trustbloc/did-ledger/pkg/storage"
)

// Provider keeps stores in process memory.
type Provider struct {
	mutex  sync.Mutex
	stores map[string]*Store
}

// NewProvider returns an in-memory storage provider.
func NewProvider() *Provider {
	return &Provider{stores: map[string]*Store{}}
}

// OpenStore returns the store with the given name, creating it on first use.
func (p *Provider) OpenStore(name string) (storage.Store, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	s, ok := p.stores[name]
	if !ok {
		s = &Store{entries: map[string]storage.Entry{}}
		p.stores[name] = s
	}

	return s, nil
}

func (p *Provider) Ping(context.Context) error {
	return nil
}

func (p *Provider) Close() error {
	return nil
}

// Store is an in-memory versioned key-value store.
type Store struct {
	mutex   sync.RWMutex
	entries map[string]storage.Entry
}

func (s *Store) Get(_ context.Context, key string) (*storage.Entry, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, storage.ErrDataNotFound
	}

	return &storage.Entry{Value: clone(e.Value), Version: e.Version}, nil
}

func (s *Store) Put(_ context.Context, key string, value []byte, opts ...storage.PutOption) (int64, error) {
	o := storage.NewPutOptions(opts...)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	current := s.entries[key].Version

	if o.ExpectedVersion != nil && *o.ExpectedVersion != current {
		return 0, storage.ErrVersionConflict
	}

	e := storage.Entry{Value: clone(value), Version: current + 1}
	s.entries[key] = e

	return e.Version, nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.entries, key)

	return nil
}

func (s *Store) Has(_ context.Context, key string) (bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	_, ok := s.entries[key]

	return ok, nil
}

func (s *Store) Size(context.Context) (int64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return int64(len(s.entries)), nil
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
