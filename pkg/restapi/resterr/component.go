/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package resterr

type Component string

const (
	IdentifierSvcComponent   Component = "identifier.service"
	IdentifierStoreComponent Component = "identifier.store"
	DomainRegistryComponent  Component = "domain.registry"
	IdentifierRestComponent  Component = "identifier.rest"
	CryptoComponent          Component = "crypto"
)
