/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const defaultTimeout = 15 * time.Second

// Client holds the connection shared by every identifier and domain store.
type Client struct {
	client  redis.UniversalClient
	timeout time.Duration
}

type clientOpts struct {
	masterName    string
	password      string
	db            int
	timeout       time.Duration
	traceProvider trace.TracerProvider
}

// ClientOpt configures a Client.
type ClientOpt func(opts *clientOpts)

// WithMasterName connects through Redis Sentinel to the named master.
func WithMasterName(masterName string) ClientOpt {
	return func(opts *clientOpts) {
		opts.masterName = masterName
	}
}

func WithPassword(password string) ClientOpt {
	return func(opts *clientOpts) {
		opts.password = password
	}
}

// WithDB selects the logical database. Ignored by cluster clients.
func WithDB(db int) ClientOpt {
	return func(opts *clientOpts) {
		opts.db = db
	}
}

// WithTimeout bounds the initial ping.
func WithTimeout(timeout time.Duration) ClientOpt {
	return func(opts *clientOpts) {
		opts.timeout = timeout
	}
}

// WithTraceProvider adds a span for every Redis command. A nil provider disables tracing.
func WithTraceProvider(traceProvider trace.TracerProvider) ClientOpt {
	return func(opts *clientOpts) {
		opts.traceProvider = traceProvider
	}
}

// New connects to Redis and pings it. A sentinel failover client is used when a master name is
// set, a cluster client when more than one address is given, and a single node client otherwise.
func New(addrs []string, opts ...ClientOpt) (*Client, error) {
	if len(addrs) == 0 {
		return nil, errors.New("at least one Redis address is required")
	}

	o := &clientOpts{timeout: defaultTimeout}

	for _, opt := range opts {
		opt(o)
	}

	c := &Client{
		client: redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:                 addrs,
			MasterName:            o.masterName,
			Password:              o.password,
			DB:                    o.db,
			ContextTimeoutEnabled: true,
		}),
		timeout: o.timeout,
	}

	if o.traceProvider != nil {
		if err := redisotel.InstrumentTracing(c.client, redisotel.WithTracerProvider(o.traceProvider)); err != nil {
			_ = c.client.Close()

			return nil, fmt.Errorf("instrument Redis client with tracing: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	if err := c.Ping(ctx); err != nil {
		_ = c.client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return c, nil
}

// API exposes the underlying client to the stores.
func (c *Client) API() redis.UniversalClient {
	return c.client
}

// Ping checks that the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.client.Close()
}
