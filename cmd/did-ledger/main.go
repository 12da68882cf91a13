/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package main runs did-ledger, a REST service that issues DID identifiers and manages the
// lifecycle of their keys and services.
package main

import (
	"github.com/spf13/cobra"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/did-ledger/cmd/did-ledger/startcmd"
)

var logger = log.New("did-ledger")
var Version string // will be embeded during build

func main() {
	rootCmd := &cobra.Command{
		Use: "did-ledger",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	rootCmd.AddCommand(startcmd.GetStartCmd(startcmd.WithVersion(Version)))

	if err := rootCmd.Execute(); err != nil {
		logger.Fatal("Failed to run did-ledger", log.WithError(err))
	}
}
