/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/trustbloc/did-ledger/pkg/storage"
)

// Provider maps each store name onto one redis hash.
type Provider struct {
	redisClient redisClient
	prefix      string
}

// NewProvider returns a storage provider backed by Redis. Keys are prefixed with prefix.
func NewProvider(redisClient redisClient, prefix string) *Provider {
	return &Provider{redisClient: redisClient, prefix: prefix}
}

func (p *Provider) OpenStore(name string) (storage.Store, error) {
	if name == "" {
		return nil, errors.New("store name is required")
	}

	return &Store{
		redisClient: p.redisClient,
		// the hash tag keeps the values hash and every version key of a store in one cluster slot
		tag: fmt.Sprintf("{%s%s}", p.prefix, name),
	}, nil
}

func (p *Provider) Ping(ctx context.Context) error {
	return p.redisClient.Ping(ctx)
}

func (p *Provider) Close() error {
	return p.redisClient.Close()
}

// Store keeps values in a hash and one version counter per key. Conditional writes WATCH the
// version counter of the key they update.
type Store struct {
	redisClient redisClient
	tag         string
}

func (s *Store) valuesKey() string {
	return s.tag + ":values"
}

func (s *Store) versionKey(key string) string {
	return s.tag + ":version:" + key
}

func (s *Store) Get(ctx context.Context, key string) (*storage.Entry, error) {
	var (
		valueCmd   *redis.StringCmd
		versionCmd *redis.StringCmd
	)

	_, err := s.redisClient.API().Pipelined(ctx, func(pipe redis.Pipeliner) error {
		valueCmd = pipe.HGet(ctx, s.valuesKey(), key)
		versionCmd = pipe.Get(ctx, s.versionKey(key))

		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	value, err := valueCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrDataNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	version, err := versionCmd.Int64()
	if err != nil {
		return nil, fmt.Errorf("redis get version of %s: %w", key, err)
	}

	return &storage.Entry{Value: value, Version: version}, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte, opts ...storage.PutOption) (int64, error) {
	o := storage.NewPutOptions(opts...)
	versionKey := s.versionKey(key)

	var incr *redis.IntCmd

	write := func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.valuesKey(), key, value)
		incr = pipe.Incr(ctx, versionKey)

		return nil
	}

	if o.ExpectedVersion == nil {
		if _, err := s.redisClient.API().TxPipelined(ctx, write); err != nil {
			return 0, fmt.Errorf("redis put %s: %w", key, err)
		}

		return incr.Val(), nil
	}

	err := s.redisClient.API().Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		if current != *o.ExpectedVersion {
			return storage.ErrVersionConflict
		}

		_, err = tx.TxPipelined(ctx, write)

		return err
	}, versionKey)

	switch {
	case errors.Is(err, storage.ErrVersionConflict), errors.Is(err, redis.TxFailedErr):
		return 0, storage.ErrVersionConflict
	case err != nil:
		return 0, fmt.Errorf("redis put %s: %w", key, err)
	}

	return incr.Val(), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.redisClient.API().TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, s.valuesKey(), key)
		pipe.Del(ctx, s.versionKey(key))

		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}

	return nil
}

func (s *Store) Has(ctx context.Context, key string) (bool, error) {
	ok, err := s.redisClient.API().HExists(ctx, s.valuesKey(), key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", key, err)
	}

	return ok, nil
}

func (s *Store) Size(ctx context.Context) (int64, error) {
	n, err := s.redisClient.API().HLen(ctx, s.valuesKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("redis size: %w", err)
	}

	return n, nil
}
