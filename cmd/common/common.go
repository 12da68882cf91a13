/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package common

import (
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/did-ledger/internal/logfields"
)

const (
	// LogLevelFlagName is the flag name used for setting the log levels.
	LogLevelFlagName = "log-level"
	// LogLevelEnvKey is the env var name used for setting the log levels.
	LogLevelEnvKey = "LOG_LEVEL"
	// LogLevelFlagShorthand is the shorthand flag name used for setting the log levels.
	LogLevelFlagShorthand = "l"
	// LogLevelPrefixFlagUsage is the usage text for the log level flag.
	LogLevelPrefixFlagUsage = "Sets logging levels for individual modules as well as the default level. " +
		"The format of the string is as follows: module1=level1:module2=level2:defaultLevel. " +
		"Supported levels are: PANIC, FATAL, ERROR, WARN, INFO, DEBUG. " +
		"Example: identifier-service=DEBUG:rest-err=WARN:INFO. " +
		"Defaults to info if not set. Setting to debug may adversely impact performance. " +
		"Alternatively, this can be set with the following environment variable: " + LogLevelEnvKey
)

// SetLogLevels applies a module1=level1:defaultLevel spec. An invalid spec leaves every module at
// INFO; nothing of it is applied.
func SetLogLevels(logger *log.Log, spec string) {
	if err := log.SetSpec(spec); err != nil {
		logger.Warn("Invalid log level spec, defaulting to info", logfields.WithUserLogLevel(spec), log.WithError(err))

		log.SetLevel("", log.INFO)

		return
	}

	if log.GetLevel("") == log.DEBUG {
		logger.Info(`Log level set to "debug". Performance may be adversely impacted.`)
	}
}
