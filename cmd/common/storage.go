/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/spf13/cobra"
	cmdutils "github.com/trustbloc/cmdutil-go/pkg/utils/cmd"
	"github.com/trustbloc/logutil-go/pkg/log"
	"go.opentelemetry.io/otel/trace"

	"github.com/trustbloc/did-ledger/internal/logfields"
	"github.com/trustbloc/did-ledger/pkg/storage"
	"github.com/trustbloc/did-ledger/pkg/storage/mem"
	"github.com/trustbloc/did-ledger/pkg/storage/mongodb"
	mongokvstore "github.com/trustbloc/did-ledger/pkg/storage/mongodb/kvstore"
	"github.com/trustbloc/did-ledger/pkg/storage/redis"
	rediskvstore "github.com/trustbloc/did-ledger/pkg/storage/redis/kvstore"
)

const (
	// DatabaseTypeFlagName is the database type.
	DatabaseTypeFlagName = "database-type"
	// DatabaseTypeEnvKey is the database type.
	DatabaseTypeEnvKey = "DATABASE_TYPE"
	// DatabaseTypeFlagUsage describes the usage.
	DatabaseTypeFlagUsage = "The type of database to use for identifiers and domains." +
		" Supported options: mem, mongodb, redis. Defaults to mem." +
		" Alternatively, this can be set with the following environment variable: " + DatabaseTypeEnvKey

	// DatabaseURLFlagName is the database url.
	DatabaseURLFlagName = "database-url"
	// DatabaseURLFlagUsage describes the usage.
	DatabaseURLFlagUsage = "MongoDB connection string, required when the database type is mongodb." +
		" Example: 'mongodb://mongodb.example.com:27017'." +
		" Alternatively, this can be set with the following environment variable: " + DatabaseURLEnvKey
	// DatabaseURLEnvKey is the database url.
	DatabaseURLEnvKey = "DATABASE_URL"

	// DatabaseTimeoutFlagName is the database timeout.
	DatabaseTimeoutFlagName = "database-timeout"
	// DatabaseTimeoutFlagUsage describes the usage.
	DatabaseTimeoutFlagUsage = "Total time in seconds to wait until the datasource is available before giving up." +
		" Default: 30 seconds." +
		" Alternatively, this can be set with the following environment variable: " + DatabaseTimeoutEnvKey
	// DatabaseTimeoutEnvKey is the database timeout.
	DatabaseTimeoutEnvKey = "DATABASE_TIMEOUT"

	// DatabasePrefixFlagName is the storage prefix.
	DatabasePrefixFlagName = "database-prefix"
	// DatabasePrefixEnvKey is the storage prefix.
	DatabasePrefixEnvKey = "DATABASE_PREFIX"
	// DatabasePrefixFlagUsage describes the usage.
	DatabasePrefixFlagUsage = "An optional prefix to be used when creating and retrieving underlying databases. " +
		"Alternatively, this can be set with the following environment variable: " + DatabasePrefixEnvKey

	// RedisAddrsFlagName is the list of redis addresses.
	RedisAddrsFlagName = "redis-addrs"
	// RedisAddrsEnvKey is the list of redis addresses.
	RedisAddrsEnvKey = "REDIS_ADDRS"
	// RedisAddrsFlagUsage describes the usage.
	RedisAddrsFlagUsage = "Comma-separated Redis addresses, required when the database type is redis." +
		" Alternatively, this can be set with the following environment variable: " + RedisAddrsEnvKey

	// RedisPasswordFlagName is the redis password.
	RedisPasswordFlagName = "redis-password"
	// RedisPasswordEnvKey is the redis password.
	RedisPasswordEnvKey = "REDIS_PASSWORD" //nolint:gosec
	// RedisPasswordFlagUsage describes the usage.
	RedisPasswordFlagUsage = "Redis password (optional)." +
		" Alternatively, this can be set with the following environment variable: " + RedisPasswordEnvKey

	// RedisMasterNameFlagName is the sentinel master name.
	RedisMasterNameFlagName = "redis-master-name"
	// RedisMasterNameEnvKey is the sentinel master name.
	RedisMasterNameEnvKey = "REDIS_MASTER_NAME"
	// RedisMasterNameFlagUsage describes the usage.
	RedisMasterNameFlagUsage = "Redis Sentinel master name (optional). When set, redis-addrs lists the sentinels." +
		" Alternatively, this can be set with the following environment variable: " + RedisMasterNameEnvKey

	// DatabaseTimeoutDefault is the default storage timeout.
	DatabaseTimeoutDefault = 30

	// DatabaseTypeMem keeps all data in process memory.
	DatabaseTypeMem = "mem"
	// DatabaseTypeMongoDB stores data in MongoDB.
	DatabaseTypeMongoDB = "mongodb"
	// DatabaseTypeRedis stores data in Redis.
	DatabaseTypeRedis = "redis"

	mongoDatabaseName = "didledger"
)

// DBParameters holds database configuration.
type DBParameters struct {
	Type            string
	URL             string
	Prefix          string
	Timeout         uint64
	RedisAddrs      []string
	RedisPassword   string
	RedisMasterName string
}

// Flags registers common command flags.
func Flags(cmd *cobra.Command) {
	cmd.Flags().StringP(DatabaseTypeFlagName, "", "", DatabaseTypeFlagUsage)
	cmd.Flags().StringP(DatabaseURLFlagName, "", "", DatabaseURLFlagUsage)
	cmd.Flags().StringP(DatabasePrefixFlagName, "", "", DatabasePrefixFlagUsage)
	cmd.Flags().StringP(DatabaseTimeoutFlagName, "", "", DatabaseTimeoutFlagUsage)
	cmd.Flags().StringSliceP(RedisAddrsFlagName, "", []string{}, RedisAddrsFlagUsage)
	cmd.Flags().StringP(RedisPasswordFlagName, "", "", RedisPasswordFlagUsage)
	cmd.Flags().StringP(RedisMasterNameFlagName, "", "", RedisMasterNameFlagUsage)
}

// DBParams fetches the DB parameters configured for this command.
func DBParams(cmd *cobra.Command) (*DBParameters, error) {
	var err error

	params := &DBParameters{
		Type:            cmdutils.GetOptionalString(cmd, DatabaseTypeFlagName, DatabaseTypeEnvKey),
		Prefix:          cmdutils.GetOptionalString(cmd, DatabasePrefixFlagName, DatabasePrefixEnvKey),
		RedisPassword:   cmdutils.GetOptionalString(cmd, RedisPasswordFlagName, RedisPasswordEnvKey),
		RedisMasterName: cmdutils.GetOptionalString(cmd, RedisMasterNameFlagName, RedisMasterNameEnvKey),
	}

	if params.Type == "" {
		params.Type = DatabaseTypeMem
	}

	switch params.Type {
	case DatabaseTypeMem:
	case DatabaseTypeMongoDB:
		params.URL, err = cmdutils.GetUserSetVarFromString(cmd, DatabaseURLFlagName, DatabaseURLEnvKey, false)
		if err != nil {
			return nil, fmt.Errorf("failed to configure dbURL: %w", err)
		}
	case DatabaseTypeRedis:
		params.RedisAddrs, err = cmdutils.GetUserSetCSVVar(cmd, RedisAddrsFlagName, RedisAddrsEnvKey, false)
		if err != nil {
			return nil, fmt.Errorf("failed to configure redis addresses: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported database type: %s", params.Type)
	}

	timeout, err := cmdutils.GetUserSetVarFromString(cmd, DatabaseTimeoutFlagName, DatabaseTimeoutEnvKey, true)
	if err != nil && !strings.Contains(err.Error(), "value is empty") {
		return nil, fmt.Errorf("failed to configure dbTimeout: %w", err)
	}

	if timeout == "" {
		timeout = strconv.Itoa(DatabaseTimeoutDefault)
	}

	params.Timeout, err = strconv.ParseUint(timeout, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dbTimeout %s: %w", timeout, err)
	}

	return params, nil
}

// InitStore opens the storage provider, waiting up to params.Timeout seconds for the backend to
// become reachable. A nil tracerProvider disables database instrumentation.
func InitStore(params *DBParameters, tracerProvider trace.TracerProvider, logger *log.Log) (storage.Provider, error) {
	var provider storage.Provider

	err := retry(
		func() error {
			var openErr error
			provider, openErr = openProvider(params, tracerProvider)
			return openErr
		},
		params.Timeout,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init %s storage provider: %w", params.Type, err)
	}

	logger.Info("Storage provider initialized", logfields.WithDatabaseType(params.Type))

	return provider, nil
}

func openProvider(params *DBParameters, tracerProvider trace.TracerProvider) (storage.Provider, error) {
	switch params.Type {
	case DatabaseTypeMem:
		return mem.NewProvider(), nil
	case DatabaseTypeMongoDB:
		client, err := mongodb.New(params.URL, mongoDatabaseName, mongodb.WithTraceProvider(tracerProvider))
		if err != nil {
			return nil, backoff.Permanent(err)
		}

		ctx, cancel := client.ContextWithTimeout()
		defer cancel()

		if err = client.Ping(ctx); err != nil {
			_ = client.Close()

			return nil, fmt.Errorf("ping MongoDB: %w", err)
		}

		return mongokvstore.NewProvider(client, params.Prefix), nil
	case DatabaseTypeRedis:
		opts := []redis.ClientOpt{redis.WithTraceProvider(tracerProvider)}

		if params.RedisPassword != "" {
			opts = append(opts, redis.WithPassword(params.RedisPassword))
		}

		if params.RedisMasterName != "" {
			opts = append(opts, redis.WithMasterName(params.RedisMasterName))
		}

		client, err := redis.New(params.RedisAddrs, opts...)
		if err != nil {
			return nil, err
		}

		return rediskvstore.NewProvider(client, params.Prefix), nil
	default:
		return nil, backoff.Permanent(fmt.Errorf("unsupported database type: %s", params.Type))
	}
}

func retry(task func() error, numRetries uint64, logger *log.Log) error {
	const sleep = 1 * time.Second

	return backoff.RetryNotify(
		task,
		backoff.WithMaxRetries(backoff.NewConstantBackOff(sleep), numRetries),
		func(retryErr error, t time.Duration) {
			logger.Warn("Failed to connect to storage, will sleep before trying again.",
				logfields.WithSleep(t), log.WithError(retryErr))
		},
	)
}
