/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package storage

import (
	"context"
	"errors"

	"github.com/samber/lo"
)

var (
	// ErrDataNotFound is returned when the requested key does not exist.
	ErrDataNotFound = errors.New("data not found")
	// ErrVersionConflict is returned when a conditional write observes a version other than the expected one.
	ErrVersionConflict = errors.New("version conflict")
)

// Provider opens named key-value stores on one backend.
type Provider interface {
	OpenStore(name string) (Store, error)
	Ping(ctx context.Context) error
	Close() error
}

// Entry is a stored value with the version it was written at. Versions start at 1 and
// increase by one on every write.
type Entry struct {
	Value   []byte
	Version int64
}

// Store is a versioned key-value store. Every call is atomic.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	// Put writes value and returns the new version. Without options the write is unconditional.
	Put(ctx context.Context, key string, value []byte, opts ...PutOption) (int64, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Has(ctx context.Context, key string) (bool, error)
	Size(ctx context.Context) (int64, error)
}

// PutOptions holds the options of a write.
type PutOptions struct {
	// ExpectedVersion, when set, makes the write conditional: 0 requires the key to be absent,
	// any other value requires the stored version to match.
	ExpectedVersion *int64
}

// PutOption configures a write.
type PutOption func(opts *PutOptions)

// WithExpectedVersion makes the write fail with ErrVersionConflict unless the stored version equals v.
func WithExpectedVersion(v int64) PutOption {
	return func(opts *PutOptions) {
		opts.ExpectedVersion = lo.ToPtr(v)
	}
}

// NewPutOptions applies opts.
func NewPutOptions(opts ...PutOption) *PutOptions {
	o := &PutOptions{}

	for _, fn := range opts {
		fn(o)
	}

	return o
}
