/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package storagetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	dctest "github.com/ory/dockertest/v3"
	dc "github.com/ory/dockertest/v3/docker"
	redisapi "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	redisImage   = "redis"
	redisTag     = "alpine3.17"
	mongoDBImage = "mongo"
	mongoDBTag   = "4.0.0"

	readyAttempts = 30
	pingTimeout   = 3 * time.Second
)

// StartRedis runs Redis in docker, published on hostPort, and returns its address once it answers
// pings. The test is skipped when docker is unavailable. The container is purged on cleanup.
func StartRedis(t *testing.T, hostPort string) string {
	t.Helper()

	addr := "localhost:" + hostPort

	runContainer(t, redisImage, redisTag, "6379/tcp", hostPort, func() error {
		rdb := redisapi.NewClient(&redisapi.Options{Addr: addr})
		defer rdb.Close() //nolint:errcheck

		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		defer cancel()

		return rdb.Ping(ctx).Err()
	})

	return addr
}

// StartMongoDB runs MongoDB in docker, published on hostPort, and returns its connection string
// once it answers pings. The test is skipped when docker is unavailable.
func StartMongoDB(t *testing.T, hostPort string) string {
	t.Helper()

	connString := "mongodb://localhost:" + hostPort

	runContainer(t, mongoDBImage, mongoDBTag, "27017/tcp", hostPort, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		defer cancel()

		client, err := mongo.Connect(ctx, options.Client().ApplyURI(connString))
		if err != nil {
			return err
		}

		defer client.Disconnect(ctx) //nolint:errcheck

		return client.Ping(ctx, nil)
	})

	return connString
}

func runContainer(t *testing.T, image, tag string, port dc.Port, hostPort string, ping func() error) {
	t.Helper()

	pool, err := dctest.NewPool("")
	if err != nil || pool.Client.Ping() != nil {
		t.Skip("docker is not available")
	}

	resource, err := pool.RunWithOptions(&dctest.RunOptions{
		Repository: image,
		Tag:        tag,
		PortBindings: map[dc.Port][]dc.PortBinding{
			port: {{HostIP: "", HostPort: hostPort}},
		},
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pool.Purge(resource), fmt.Sprintf("failed to purge %s container", image))
	})

	require.NoError(t, backoff.Retry(ping,
		backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Second), readyAttempts)))
}
