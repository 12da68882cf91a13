/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package startcmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	cmdutils "github.com/trustbloc/cmdutil-go/pkg/utils/cmd"

	"github.com/trustbloc/did-ledger/cmd/common"
	"github.com/trustbloc/did-ledger/pkg/domain"
	"github.com/trustbloc/did-ledger/pkg/observability/tracing"
	identifiersvc "github.com/trustbloc/did-ledger/pkg/service/identifier"
)

const (
	commonEnvVarUsageText = "Alternatively, this can be set with the following environment variable: "

	hostURLFlagName      = "host-url"
	hostURLFlagShorthand = "u"
	hostURLFlagUsage     = "URL to run the did-ledger instance on. Format: HostName:Port. " +
		commonEnvVarUsageText + hostURLEnvKey
	hostURLEnvKey = "DID_LEDGER_HOST_URL"

	didMethodFlagName  = "did-method"
	didMethodEnvKey    = "DID_LEDGER_DID_METHOD"
	didMethodFlagUsage = "The DID method of created identifiers. Default: " + identifiersvc.DefaultMethod + ". " +
		commonEnvVarUsageText + didMethodEnvKey

	didDomainFlagName  = "did-domain"
	didDomainEnvKey    = "DID_LEDGER_DID_DOMAIN"
	didDomainFlagUsage = "The default domain of created identifiers, used when a request names none. " +
		commonEnvVarUsageText + didDomainEnvKey

	didVocabFlagName  = "did-vocab"
	didVocabEnvKey    = "DID_LEDGER_DID_VOCAB"
	didVocabFlagUsage = "Optional @vocab added to the context of controller documents. " +
		commonEnvVarUsageText + didVocabEnvKey

	domainsFlagName  = "domains"
	domainsEnvKey    = "DID_LEDGER_DOMAINS"
	domainsFlagUsage = "Comma-separated domains registered at startup in addition to the default domain. " +
		commonEnvVarUsageText + domainsEnvKey

	domainsFileFlagName  = "domains-file"
	domainsFileEnvKey    = "DID_LEDGER_DOMAINS_FILE"
	domainsFileFlagUsage = "Path to a TOML file listing domains registered at startup. " +
		commonEnvVarUsageText + domainsFileEnvKey

	signRequiresControllerFlagName  = "sign-requires-controller"
	signRequiresControllerEnvKey    = "DID_LEDGER_SIGN_REQUIRES_CONTROLLER"
	signRequiresControllerFlagUsage = "Only the controller of an identifier may sign with its keys. Default: false. " +
		commonEnvVarUsageText + signRequiresControllerEnvKey

	maxRetriesFlagName  = "max-retries"
	maxRetriesEnvKey    = "DID_LEDGER_MAX_RETRIES"
	maxRetriesFlagUsage = "Number of times a conflicting identifier update is retried. Default: 5. " +
		commonEnvVarUsageText + maxRetriesEnvKey

	tokenFlagName  = "api-token"
	tokenEnvKey    = "DID_LEDGER_API_TOKEN" //nolint: gosec
	tokenFlagUsage = "Check for the API key in the X-API-Key header (optional). " +
		commonEnvVarUsageText + tokenEnvKey

	metricsProviderFlagName         = "metrics-provider-name"
	metricsProviderEnvKey           = "DID_LEDGER_METRICS_PROVIDER_NAME"
	allowedMetricsProviderFlagUsage = "The metrics provider name (for example: 'prometheus' etc.). " +
		commonEnvVarUsageText + metricsProviderEnvKey

	promHttpUrlFlagName             = "prom-http-url"
	promHttpUrlEnvKey               = "DID_LEDGER_PROM_HTTP_URL"
	allowedPromHttpUrlFlagNameUsage = "URL that exposes the prometheus metrics endpoint. Format: HostName:Port. " +
		commonEnvVarUsageText + promHttpUrlEnvKey

	tracingProviderFlagName  = "tracing-provider"
	tracingProviderEnvKey    = "DID_LEDGER_TRACING_PROVIDER"
	tracingProviderFlagUsage = "The tracing provider (JAEGER or STDOUT). The Jaeger endpoint is read from " +
		tracing.JaegerCollectorEndpointEnvKey + ". " + commonEnvVarUsageText + tracingProviderEnvKey

	tracingServiceNameFlagName  = "tracing-service-name"
	tracingServiceNameEnvKey    = "DID_LEDGER_TRACING_SERVICE_NAME"
	tracingServiceNameFlagUsage = "The name of the tracing service. Default: did-ledger. " +
		commonEnvVarUsageText + tracingServiceNameEnvKey

	tlsCertificateFlagName  = "tls-certificate"
	tlsCertificateFlagUsage = "TLS certificate for the did-ledger server. " + commonEnvVarUsageText + tlsCertificateEnvKey
	tlsCertificateEnvKey    = "DID_LEDGER_TLS_CERTIFICATE"

	tlsKeyFlagName  = "tls-key"
	tlsKeyFlagUsage = "TLS key for the did-ledger server. " + commonEnvVarUsageText + tlsKeyEnvKey
	tlsKeyEnvKey    = "DID_LEDGER_TLS_KEY"

	shutdownTimeoutFlagName  = "shutdown-timeout"
	shutdownTimeoutEnvKey    = "DID_LEDGER_SHUTDOWN_TIMEOUT"
	shutdownTimeoutFlagUsage = "Time to wait for in-flight requests on shutdown. Default: 10s. " +
		commonEnvVarUsageText + shutdownTimeoutEnvKey

	metricsProviderPrometheus = "prometheus"
	defaultTracingServiceName = "did-ledger"
	defaultDomain             = "localhost"
	defaultMaxRetries         = 5
	defaultShutdownTimeout    = 10 * time.Second
)

type startupParameters struct {
	hostURL                string
	didMethod              string
	didDomain              string
	didVocab               string
	domains                []string
	domainsFile            string
	signRequiresController bool
	maxRetries             uint64
	token                  string
	dbParameters           *common.DBParameters
	logLevel               string
	metricsProviderName    string
	prometheusMetricsURL   string
	tracingParams          *tracingParams
	tlsServeCertPath       string
	tlsServeKeyPath        string
	shutdownTimeout        time.Duration
}

type tracingParams struct {
	provider    tracing.SpanExporterType
	serviceName string
}

func getStartupParameters(cmd *cobra.Command) (*startupParameters, error) {
	hostURL, err := cmdutils.GetUserSetVarFromString(cmd, hostURLFlagName, hostURLEnvKey, false)
	if err != nil {
		return nil, err
	}

	didMethod := cmdutils.GetOptionalString(cmd, didMethodFlagName, didMethodEnvKey)
	if didMethod == "" {
		didMethod = identifiersvc.DefaultMethod
	}

	if strings.ContainsAny(didMethod, ": ") {
		return nil, fmt.Errorf("invalid %s: %q", didMethodFlagName, didMethod)
	}

	didDomain := cmdutils.GetOptionalString(cmd, didDomainFlagName, didDomainEnvKey)
	if didDomain == "" {
		didDomain = defaultDomain
	}

	domains, err := cmdutils.GetUserSetCSVVar(cmd, domainsFlagName, domainsEnvKey, true)
	if err != nil {
		return nil, err
	}

	for _, name := range append([]string{didDomain}, domains...) {
		if err = domain.ValidateName(name); err != nil {
			return nil, fmt.Errorf("invalid domain: %w", err)
		}
	}

	signRequiresController, err := getBool(cmd, signRequiresControllerFlagName, signRequiresControllerEnvKey, false)
	if err != nil {
		return nil, err
	}

	maxRetries, err := getUint(cmd, maxRetriesFlagName, maxRetriesEnvKey, defaultMaxRetries)
	if err != nil {
		return nil, err
	}

	dbParams, err := common.DBParams(cmd)
	if err != nil {
		return nil, err
	}

	metricsProviderName := cmdutils.GetOptionalString(cmd, metricsProviderFlagName, metricsProviderEnvKey)
	if metricsProviderName != "" && metricsProviderName != metricsProviderPrometheus {
		return nil, fmt.Errorf("unsupported metrics provider: %s", metricsProviderName)
	}

	tracingParams, err := getTracingParams(cmd)
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := getDuration(cmd, shutdownTimeoutFlagName, shutdownTimeoutEnvKey, defaultShutdownTimeout)
	if err != nil {
		return nil, err
	}

	return &startupParameters{
		hostURL:                hostURL,
		didMethod:              didMethod,
		didDomain:              didDomain,
		didVocab:               cmdutils.GetOptionalString(cmd, didVocabFlagName, didVocabEnvKey),
		domains:                domains,
		domainsFile:            cmdutils.GetOptionalString(cmd, domainsFileFlagName, domainsFileEnvKey),
		signRequiresController: signRequiresController,
		maxRetries:             maxRetries,
		token:                  cmdutils.GetOptionalString(cmd, tokenFlagName, tokenEnvKey),
		dbParameters:           dbParams,
		logLevel:               cmdutils.GetOptionalString(cmd, common.LogLevelFlagName, common.LogLevelEnvKey),
		metricsProviderName:    metricsProviderName,
		prometheusMetricsURL:   cmdutils.GetOptionalString(cmd, promHttpUrlFlagName, promHttpUrlEnvKey),
		tracingParams:          tracingParams,
		tlsServeCertPath:       cmdutils.GetUserSetOptionalVarFromString(cmd, tlsCertificateFlagName, tlsCertificateEnvKey),
		tlsServeKeyPath:        cmdutils.GetUserSetOptionalVarFromString(cmd, tlsKeyFlagName, tlsKeyEnvKey),
		shutdownTimeout:        shutdownTimeout,
	}, nil
}

func getTracingParams(cmd *cobra.Command) (*tracingParams, error) {
	serviceName := cmdutils.GetOptionalString(cmd, tracingServiceNameFlagName, tracingServiceNameEnvKey)
	if serviceName == "" {
		serviceName = defaultTracingServiceName
	}

	params := &tracingParams{
		provider:    strings.ToUpper(cmdutils.GetOptionalString(cmd, tracingProviderFlagName, tracingProviderEnvKey)),
		serviceName: serviceName,
	}

	if !tracing.IsExportedSupported(params.provider) {
		return nil, fmt.Errorf("unsupported tracing provider: %s", params.provider)
	}

	return params, nil
}

func getBool(cmd *cobra.Command, flagName, envKey string, defaultValue bool) (bool, error) {
	str := cmdutils.GetOptionalString(cmd, flagName, envKey)
	if str == "" {
		return defaultValue, nil
	}

	value, err := strconv.ParseBool(str)
	if err != nil {
		return false, fmt.Errorf("invalid value for %s [%s]: %w", flagName, str, err)
	}

	return value, nil
}

func getUint(cmd *cobra.Command, flagName, envKey string, defaultValue uint64) (uint64, error) {
	str := cmdutils.GetOptionalString(cmd, flagName, envKey)
	if str == "" {
		return defaultValue, nil
	}

	value, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s [%s]: %w", flagName, str, err)
	}

	return value, nil
}

func getDuration(cmd *cobra.Command, flagName, envKey string,
	defaultDuration time.Duration) (time.Duration, error) {
	timeoutStr, err := cmdutils.GetUserSetVarFromString(cmd, flagName, envKey, true)
	if err != nil {
		return -1, err
	}

	if timeoutStr == "" {
		return defaultDuration, nil
	}

	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return -1, fmt.Errorf("invalid value [%s]: %w", timeoutStr, err)
	}

	return timeout, nil
}

func createFlags(startCmd *cobra.Command) {
	startCmd.Flags().StringP(hostURLFlagName, hostURLFlagShorthand, "", hostURLFlagUsage)
	startCmd.Flags().StringP(didMethodFlagName, "", "", didMethodFlagUsage)
	startCmd.Flags().StringP(didDomainFlagName, "", "", didDomainFlagUsage)
	startCmd.Flags().StringP(didVocabFlagName, "", "", didVocabFlagUsage)
	startCmd.Flags().StringSliceP(domainsFlagName, "", []string{}, domainsFlagUsage)
	startCmd.Flags().StringP(domainsFileFlagName, "", "", domainsFileFlagUsage)
	startCmd.Flags().StringP(signRequiresControllerFlagName, "", "", signRequiresControllerFlagUsage)
	startCmd.Flags().StringP(maxRetriesFlagName, "", "", maxRetriesFlagUsage)
	startCmd.Flags().StringP(tokenFlagName, "", "", tokenFlagUsage)
	startCmd.Flags().StringP(common.LogLevelFlagName, common.LogLevelFlagShorthand, "", common.LogLevelPrefixFlagUsage)
	startCmd.Flags().StringP(metricsProviderFlagName, "", "", allowedMetricsProviderFlagUsage)
	startCmd.Flags().StringP(promHttpUrlFlagName, "", "", allowedPromHttpUrlFlagNameUsage)
	startCmd.Flags().StringP(tracingProviderFlagName, "", "", tracingProviderFlagUsage)
	startCmd.Flags().StringP(tracingServiceNameFlagName, "", "", tracingServiceNameFlagUsage)
	startCmd.Flags().StringP(tlsCertificateFlagName, "", "", tlsCertificateFlagUsage)
	startCmd.Flags().StringP(tlsKeyFlagName, "", "", tlsKeyFlagUsage)
	startCmd.Flags().StringP(shutdownTimeoutFlagName, "", "", shutdownTimeoutFlagUsage)

	common.Flags(startCmd)
}
