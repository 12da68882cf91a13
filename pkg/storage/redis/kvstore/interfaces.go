/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package kvstore

import (
	"context"

	redisapi "github.com/redis/go-redis/v9"
)

type redisClient interface {
	API() redisapi.UniversalClient
	Ping(ctx context.Context) error
	Close() error
}
