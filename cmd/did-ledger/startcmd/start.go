/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package startcmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"github.com/trustbloc/logutil-go/pkg/log"
	"go.uber.org/multierr"

	"github.com/trustbloc/did-ledger/cmd/common"
	"github.com/trustbloc/did-ledger/internal/logfields"
	"github.com/trustbloc/did-ledger/pkg/domain"
	"github.com/trustbloc/did-ledger/pkg/identifier"
	"github.com/trustbloc/did-ledger/pkg/keypair"
	"github.com/trustbloc/did-ledger/pkg/kms"
	"github.com/trustbloc/did-ledger/pkg/observability/health/healthchecks"
	"github.com/trustbloc/did-ledger/pkg/observability/metrics"
	"github.com/trustbloc/did-ledger/pkg/observability/metrics/noop"
	"github.com/trustbloc/did-ledger/pkg/observability/metrics/prometheus"
	"github.com/trustbloc/did-ledger/pkg/observability/tracing"
	identifiertracing "github.com/trustbloc/did-ledger/pkg/observability/tracing/wrappers/identifier"
	"github.com/trustbloc/did-ledger/pkg/restapi/resterr"
	"github.com/trustbloc/did-ledger/pkg/restapi/v1/healthcheck"
	identifierv1 "github.com/trustbloc/did-ledger/pkg/restapi/v1/identifier"
	"github.com/trustbloc/did-ledger/pkg/restapi/v1/logapi"
	"github.com/trustbloc/did-ledger/pkg/restapi/v1/mw"
	"github.com/trustbloc/did-ledger/pkg/restapi/v1/version"
	identifiersvc "github.com/trustbloc/did-ledger/pkg/service/identifier"
	"github.com/trustbloc/did-ledger/pkg/storage"
)

var logger = log.New("did-ledger")

const readHeaderTimeout = 10 * time.Second

type httpServer interface {
	ListenAndServe() error
	ListenAndServeTLS(certFile, keyFile string) error
	Shutdown(ctx context.Context) error
}

type startOpts struct {
	version string
	server  httpServer
}

// StartOpts configures the start command.
type StartOpts func(opts *startOpts)

// WithVersion sets the version reported by the version endpoints.
func WithVersion(version string) StartOpts {
	return func(opts *startOpts) {
		opts.version = version
	}
}

// WithHTTPServer replaces the HTTP server serving the REST API.
func WithHTTPServer(server httpServer) StartOpts {
	return func(opts *startOpts) {
		opts.server = server
	}
}

// GetStartCmd returns the Cobra start command.
func GetStartCmd(opts ...StartOpts) *cobra.Command {
	startCmd := createStartCmd(opts...)

	createFlags(startCmd)

	return startCmd
}

func createStartCmd(opts ...StartOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start did-ledger",
		Long:  "Start did-ledger, a DID identifier and key lifecycle service",
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := getStartupParameters(cmd)
			if err != nil {
				return fmt.Errorf("failed to get startup parameters: %w", err)
			}

			o := &startOpts{}

			for _, opt := range opts {
				opt(o)
			}

			return startServer(params, o)
		},
	}
}

type app struct {
	echo            *echo.Echo
	store           storage.Provider
	metricsProvider metrics.Provider
	shutdownTracer  func()
}

func (a *app) close() error {
	var err error

	if a.metricsProvider != nil {
		err = multierr.Append(err, a.metricsProvider.Destroy())
	}

	if a.store != nil {
		err = multierr.Append(err, a.store.Close())
	}

	if a.shutdownTracer != nil {
		a.shutdownTracer()
	}

	return err
}

func startServer(params *startupParameters, opts *startOpts) error {
	if params.logLevel != "" {
		common.SetLogLevels(logger, params.logLevel)
	}

	a, err := buildApp(params, opts)
	if a != nil {
		defer func() {
			if closeErr := a.close(); closeErr != nil {
				logger.Warn("Failed to release resources", log.WithError(closeErr))
			}
		}()
	}

	if err != nil {
		return err
	}

	srv := opts.server
	if srv == nil {
		srv = &http.Server{
			Addr:              params.hostURL,
			Handler:           a.echo,
			ReadHeaderTimeout: readHeaderTimeout,
		}
	}

	logger.Info("Starting did-ledger server", log.WithURL(params.hostURL))

	return serve(srv, params)
}

func serve(srv httpServer, params *startupParameters) error {
	errCh := make(chan error, 1)

	go func() {
		if params.tlsServeCertPath != "" && params.tlsServeKeyPath != "" {
			errCh <- srv.ListenAndServeTLS(params.tlsServeCertPath, params.tlsServeKeyPath)
		} else {
			errCh <- srv.ListenAndServe()
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error

	select {
	case err = <-errCh:
	case <-ctx.Done():
		logger.Info("Shutting down did-ledger server", logfields.WithDuration(params.shutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), params.shutdownTimeout)
		defer cancel()

		err = multierr.Append(srv.Shutdown(shutdownCtx), <-errCh)
	}

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

// buildApp wires the services behind the REST API. The returned app is non-nil whenever some
// resource was acquired, even on error, so that the caller can release it.
func buildApp(params *startupParameters, opts *startOpts) (*app, error) {
	tr, err := tracing.Initialize(params.tracingParams.provider, params.tracingParams.serviceName, opts.version)
	if err != nil {
		return nil, fmt.Errorf("initialize tracing: %w", err)
	}

	a := &app{shutdownTracer: tr.Shutdown}

	a.store, err = common.InitStore(params.dbParameters, tr.Provider, logger)
	if err != nil {
		return a, err
	}

	domains, err := createDomainRegistry(params, a.store)
	if err != nil {
		return a, err
	}

	store, err := identifier.NewStore(a.store)
	if err != nil {
		return a, fmt.Errorf("create identifier store: %w", err)
	}

	var m metrics.Metrics

	m, a.metricsProvider = createMetrics(params)

	crypto := kms.NewLocalCrypto()

	var svc identifiersvc.ServiceInterface = identifiersvc.New(&identifiersvc.Config{
		Store:                  store,
		Domains:                domains,
		KeyCreator:             keypair.NewCreator(crypto, m),
		Crypto:                 crypto,
		Metrics:                m,
		Method:                 params.didMethod,
		Vocab:                  params.didVocab,
		SignRequiresController: params.signRequiresController,
		MaxRetries:             params.maxRetries,
	})

	if tr.Enabled() {
		svc = identifiertracing.Wrap(svc, tr.Tracer)
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = resterr.HTTPErrorHandler

	e.Use(echomw.Recover())
	e.Use(mw.CallerIdentity())

	if params.token != "" {
		e.Use(mw.APIKeyAuth(params.token))
	}

	ready := newReadinessController(e)

	healthcheck.NewController(e, healthchecks.Get(&healthchecks.Config{
		DatabaseType: params.dbParameters.Type,
		Storage:      a.store,
	})...)

	version.NewController(e, version.Config{
		Version:       opts.version,
		DIDMethod:     params.didMethod,
		DefaultDomain: params.didDomain,
	})

	logapi.NewController(e)

	identifierv1.RegisterHandlers(e, identifierv1.NewController(&identifierv1.Config{Service: svc}))

	ready.Ready(true)

	a.echo = e

	return a, nil
}

func createDomainRegistry(params *startupParameters, provider storage.Provider) (*domain.Registry, error) {
	registry, err := domain.NewRegistry(provider, params.didDomain)
	if err != nil {
		return nil, fmt.Errorf("create domain registry: %w", err)
	}

	names := params.domains

	if params.domainsFile != "" {
		fromFile, err := domain.LoadFile(params.domainsFile)
		if err != nil {
			return nil, err
		}

		names = append(names, fromFile...)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(params.dbParameters.Timeout)*time.Second)
	defer cancel()

	if err = registry.Seed(ctx, names); err != nil {
		return nil, fmt.Errorf("register domains: %w", err)
	}

	return registry, nil
}

func createMetrics(params *startupParameters) (metrics.Metrics, metrics.Provider) {
	if params.metricsProviderName != metricsProviderPrometheus {
		return noop.GetMetrics(), nil
	}

	var metricsServer *http.Server

	if params.prometheusMetricsURL != "" {
		metricsRouter := echo.New()
		metricsRouter.HideBanner = true
		metricsRouter.GET(prometheus.MetricsPath, echo.WrapHandler(prometheus.Handler()))

		metricsServer = &http.Server{
			Addr:              params.prometheusMetricsURL,
			Handler:           metricsRouter,
			ReadHeaderTimeout: readHeaderTimeout,
		}
	}

	provider := prometheus.NewPrometheusProvider(metricsServer)

	go func() {
		if err := provider.Create(); err != nil {
			logger.Error("Metrics server stopped", log.WithError(err))
		}
	}()

	return provider.Metrics(), provider
}
