/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTimeout = 15 * time.Second
	maxPoolSize    = 200
)

// Client is a connection to the database holding the identifier and domain collections.
type Client struct {
	client       *mongo.Client
	databaseName string
	timeout      time.Duration
}

type clientOpts struct {
	timeout       time.Duration
	readPref      *readpref.ReadPref
	traceProvider trace.TracerProvider
}

// ClientOpt configures a Client.
type ClientOpt func(opts *clientOpts)

// WithTimeout bounds connecting, disconnecting and the contexts from ContextWithTimeout.
func WithTimeout(timeout time.Duration) ClientOpt {
	return func(opts *clientOpts) {
		opts.timeout = timeout
	}
}

// WithReadPref overrides the primary read preference. Identifier updates read before they write,
// so a secondary preference can surface stale versions as conflicts.
func WithReadPref(readPref *readpref.ReadPref) ClientOpt {
	return func(opts *clientOpts) {
		opts.readPref = readPref
	}
}

// WithTraceProvider adds a span for every MongoDB command. A nil provider disables tracing.
func WithTraceProvider(traceProvider trace.TracerProvider) ClientOpt {
	return func(opts *clientOpts) {
		opts.traceProvider = traceProvider
	}
}

// New connects to MongoDB. The connection is not verified; call Ping for that.
func New(connString string, databaseName string, opts ...ClientOpt) (*Client, error) {
	if databaseName == "" {
		return nil, errors.New("database name is required")
	}

	o := &clientOpts{
		timeout:  defaultTimeout,
		readPref: readpref.Primary(),
	}

	for _, opt := range opts {
		opt(o)
	}

	mongoOpts := mongooptions.Client().
		ApplyURI(connString).
		SetReadPreference(o.readPref).
		SetMaxPoolSize(maxPoolSize)

	if o.traceProvider != nil {
		mongoOpts.SetMonitor(otelmongo.NewMonitor(otelmongo.WithTracerProvider(o.traceProvider)))
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, mongoOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	return &Client{
		client:       client,
		databaseName: databaseName,
		timeout:      o.timeout,
	}, nil
}

func (c *Client) Database() *mongo.Database {
	return c.client.Database(c.databaseName)
}

// Collection returns a collection of the ledger database.
func (c *Client) Collection(name string) *mongo.Collection {
	return c.Database().Collection(name)
}

func (c *Client) ContextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.timeout)
}

// Ping checks that the primary is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client. Closing twice is not an error.
func (c *Client) Close() error {
	ctx, cancel := c.ContextWithTimeout()
	defer cancel()

	if err := c.client.Disconnect(ctx); err != nil && !errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}

	return nil
}
