/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package healthchecks

import (
	"context"
	"fmt"
	"time"

	"github.com/alexliesenfeld/health"
)

const (
	storageCheckName    = "storage"
	defaultCheckTimeout = 5 * time.Second
)

type pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	// DatabaseType names the backend in check failures.
	DatabaseType string
	Storage      pinger
	Timeout      time.Duration
}

// Get returns the checks reported by the health endpoint.
func Get(config *Config) []health.Check {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = defaultCheckTimeout
	}

	return []health.Check{
		{
			Name:    storageCheckName,
			Timeout: timeout,
			Check: func(ctx context.Context) error {
				if err := config.Storage.Ping(ctx); err != nil {
					return fmt.Errorf("%s storage is unavailable: %w", config.DatabaseType, err)
				}

				return nil
			},
			MaxTimeInError:     1,
			MaxContiguousFails: 1,
		},
	}
}
