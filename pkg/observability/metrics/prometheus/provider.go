/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package prometheus

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/did-ledger/pkg/observability/metrics"
)

var logger = metrics.Logger

var (
	createOnce sync.Once       //nolint:gochecknoglobals
	instance   metrics.Metrics //nolint:gochecknoglobals
)

type promProvider struct {
	httpServer *http.Server
}

// NewPrometheusProvider creates new instance of Prometheus Metrics Provider.
func NewPrometheusProvider(httpServer *http.Server) metrics.Provider {
	return &promProvider{httpServer: httpServer}
}

// Create starts the metrics HTTP server, if one was configured. It blocks until the server is closed.
func (pp *promProvider) Create() error {
	if pp.httpServer == nil {
		return nil
	}

	if err := pp.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start metrics HTTP server: %w", err)
	}

	return nil
}

// Metrics returns supported metrics.
func (pp *promProvider) Metrics() metrics.Metrics {
	return GetMetrics()
}

// Destroy destroys the prometheus metrics provider.
func (pp *promProvider) Destroy() error {
	if pp.httpServer != nil {
		return pp.httpServer.Shutdown(context.Background())
	}

	return nil
}

// GetMetrics returns metrics implementation.
func GetMetrics() metrics.Metrics {
	createOnce.Do(func() {
		instance = NewMetrics()
	})

	return instance
}

// PromMetrics records the ledger metrics in the default Prometheus registry.
type PromMetrics struct {
	signTime          prometheus.Histogram
	verifyTime        prometheus.Histogram
	keyGenerationTime *prometheus.HistogramVec
	versionConflicts  prometheus.Counter
	identifierEvents  *prometheus.CounterVec
}

// NewMetrics creates and registers the ledger metrics. It panics if they are already registered;
// use GetMetrics for the shared instance.
func NewMetrics() metrics.Metrics {
	pm := &PromMetrics{
		signTime: prometheus.NewHistogram(histogramOpts(metrics.Crypto, metrics.CryptoSignTimeMetric,
			"The time (in seconds) it takes to sign a payload with the current signing key.")),
		verifyTime: prometheus.NewHistogram(histogramOpts(metrics.Crypto, metrics.CryptoVerifyTimeMetric,
			"The time (in seconds) it takes to verify a signature.")),
		keyGenerationTime: prometheus.NewHistogramVec(histogramOpts(metrics.Crypto, metrics.CryptoKeyGenerationMetric,
			"The time (in seconds) it takes to generate a key pair."), []string{"algorithm"}),
		versionConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.Store,
			Name:      metrics.StoreVersionConflictsMetric,
			Help:      "The number of identifier writes rejected because of a concurrent update.",
		}),
		identifierEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.Identifier,
			Name:      metrics.IdentifierEventsMetric,
			Help:      "The number of identifiers created and deactivated, and of keys revoked and rolled.",
		}, []string{"event"}),
	}

	prometheus.MustRegister(pm.signTime, pm.verifyTime, pm.keyGenerationTime, pm.versionConflicts, pm.identifierEvents)

	return pm
}

func histogramOpts(subsystem, name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: metrics.Namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
		Buckets:   durationBuckets,
	}
}

// durationBuckets covers fast curve operations up to RSA 4096 key generation.
var durationBuckets = []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint:gochecknoglobals

func (pm *PromMetrics) SignTime(value time.Duration) {
	pm.signTime.Observe(value.Seconds())

	logger.Debug("crypto sign time", log.WithDuration(value))
}

func (pm *PromMetrics) VerifyTime(value time.Duration) {
	pm.verifyTime.Observe(value.Seconds())

	logger.Debug("crypto verify time", log.WithDuration(value))
}

// KeyGenerationTime records the time it took to generate a key pair of the given algorithm.
func (pm *PromMetrics) KeyGenerationTime(algorithm string, value time.Duration) {
	pm.keyGenerationTime.WithLabelValues(algorithm).Observe(value.Seconds())

	logger.Debug("crypto key generation time", log.WithDuration(value))
}

func (pm *PromMetrics) StoreVersionConflict() {
	pm.versionConflicts.Inc()
}

func (pm *PromMetrics) IdentifierEvent(event metrics.LifecycleEvent) {
	pm.identifierEvents.WithLabelValues(string(event)).Inc()
}
