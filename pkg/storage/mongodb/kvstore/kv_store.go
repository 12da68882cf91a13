/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package kvstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trustbloc/did-ledger/pkg/storage"
	"github.com/trustbloc/did-ledger/pkg/storage/mongodb"
)

const (
	idField      = "_id"
	valueField   = "value"
	versionField = "version"
)

type mongoDocument struct {
	ID      string `bson:"_id"`
	Value   []byte `bson:"value"`
	Version int64  `bson:"version"`
}

// Provider opens one collection per store name.
type Provider struct {
	mongoClient *mongodb.Client
	prefix      string
}

// NewProvider returns a storage provider backed by MongoDB. Collection names are prefixed with prefix.
func NewProvider(mongoClient *mongodb.Client, prefix string) *Provider {
	return &Provider{mongoClient: mongoClient, prefix: prefix}
}

func (p *Provider) OpenStore(name string) (storage.Store, error) {
	if name == "" {
		return nil, errors.New("store name is required")
	}

	return &Store{
		mongoClient: p.mongoClient,
		collection:  p.prefix + name,
	}, nil
}

func (p *Provider) Ping(ctx context.Context) error {
	return p.mongoClient.Ping(ctx)
}

func (p *Provider) Close() error {
	return p.mongoClient.Close()
}

// Store manages versioned values in one mongodb collection.
type Store struct {
	mongoClient *mongodb.Client
	collection  string
}

func (s *Store) coll() *mongo.Collection {
	return s.mongoClient.Collection(s.collection)
}

func (s *Store) Get(ctx context.Context, key string) (*storage.Entry, error) {
	doc := &mongoDocument{}

	err := s.coll().FindOne(ctx, bson.M{idField: key}).Decode(doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storage.ErrDataNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("find %s: %w", key, err)
	}

	return &storage.Entry{Value: doc.Value, Version: doc.Version}, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte, opts ...storage.PutOption) (int64, error) {
	o := storage.NewPutOptions(opts...)

	if o.ExpectedVersion != nil && *o.ExpectedVersion == 0 {
		return s.insert(ctx, key, value)
	}

	filter := bson.M{idField: key}
	upsert := true

	if o.ExpectedVersion != nil {
		filter[versionField] = *o.ExpectedVersion
		upsert = false
	}

	update := bson.M{
		"$set": bson.M{valueField: value},
		"$inc": bson.M{versionField: int64(1)},
	}

	doc := &mongoDocument{}

	err := s.coll().FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetUpsert(upsert).SetReturnDocument(options.After),
	).Decode(doc)

	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return 0, storage.ErrVersionConflict
	case mongo.IsDuplicateKeyError(err):
		// concurrent upserts of a new key
		return 0, storage.ErrVersionConflict
	case err != nil:
		return 0, fmt.Errorf("update %s: %w", key, err)
	}

	return doc.Version, nil
}

func (s *Store) insert(ctx context.Context, key string, value []byte) (int64, error) {
	_, err := s.coll().InsertOne(ctx, &mongoDocument{ID: key, Value: value, Version: 1})
	if mongo.IsDuplicateKeyError(err) {
		return 0, storage.ErrVersionConflict
	}

	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", key, err)
	}

	return 1, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.coll().DeleteOne(ctx, bson.M{idField: key})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}

	return nil
}

func (s *Store) Has(ctx context.Context, key string) (bool, error) {
	n, err := s.coll().CountDocuments(ctx, bson.M{idField: key}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count %s: %w", key, err)
	}

	return n > 0, nil
}

func (s *Store) Size(ctx context.Context) (int64, error) {
	n, err := s.coll().CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}

	return n, nil
}
