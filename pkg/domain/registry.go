/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package domain

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/did-ledger/internal/logfields"
	"github.com/trustbloc/did-ledger/pkg/storage"
)

var logger = log.New("domain-registry")

const (
	// RegistryStoreName is the store listing pre-registered domains.
	RegistryStoreName = "did_domains"

	memberStorePrefix = "domain_"
)

var (
	// ErrNotFound is returned for a domain that is neither registered nor the local default.
	ErrNotFound = errors.New("domain not found")

	// ErrInvalidName is returned for a domain that cannot appear in a DID.
	ErrInvalidName = errors.New("invalid domain name")
)

// Registry maps identifiers into registered tenancy domains.
type Registry struct {
	provider      storage.Provider
	registered    storage.Store
	defaultDomain string
}

// NewRegistry returns a registry whose implicitly registered domain is defaultDomain.
func NewRegistry(provider storage.Provider, defaultDomain string) (*Registry, error) {
	if err := ValidateName(defaultDomain); err != nil {
		return nil, err
	}

	registered, err := provider.OpenStore(RegistryStoreName)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", RegistryStoreName, err)
	}

	return &Registry{
		provider:      provider,
		registered:    registered,
		defaultDomain: defaultDomain,
	}, nil
}

// Default returns the local domain.
func (r *Registry) Default() string {
	return r.defaultDomain
}

// Register adds a domain to the registry. Registering twice is not an error.
func (r *Registry) Register(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	if _, err := r.registered.Put(ctx, name, []byte(name)); err != nil {
		return fmt.Errorf("register domain %s: %w", name, err)
	}

	logger.Debugc(ctx, "domain registered", logfields.WithDomain(name))

	return nil
}

// Unregister removes a domain from the registry. Identifiers mapped into it are left in place.
func (r *Registry) Unregister(ctx context.Context, name string) error {
	if err := r.registered.Delete(ctx, name); err != nil {
		return fmt.Errorf("unregister domain %s: %w", name, err)
	}

	return nil
}

// IsRegistered reports whether name is the local default domain or was registered.
func (r *Registry) IsRegistered(ctx context.Context, name string) (bool, error) {
	if name == r.defaultDomain {
		return true, nil
	}

	ok, err := r.registered.Has(ctx, name)
	if err != nil {
		return false, fmt.Errorf("lookup domain %s: %w", name, err)
	}

	return ok, nil
}

// Resolve returns the effective domain of a request: the local default when none is requested,
// otherwise the requested domain provided it is registered.
func (r *Registry) Resolve(ctx context.Context, requested string) (string, error) {
	if requested == "" {
		return r.defaultDomain, nil
	}

	ok, err := r.IsRegistered(ctx, requested)
	if err != nil {
		return "", err
	}

	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, requested)
	}

	return requested, nil
}

// Add maps an identifier into a domain.
func (r *Registry) Add(ctx context.Context, name, identifierID string) error {
	members, err := r.members(name)
	if err != nil {
		return err
	}

	if _, err = members.Put(ctx, identifierID, []byte(identifierID)); err != nil {
		return fmt.Errorf("add %s to domain %s: %w", identifierID, name, err)
	}

	return nil
}

// Remove drops the mapping of an identifier into a domain. Removing a missing mapping is not an error.
func (r *Registry) Remove(ctx context.Context, name, identifierID string) error {
	members, err := r.members(name)
	if err != nil {
		return err
	}

	if err = members.Delete(ctx, identifierID); err != nil {
		return fmt.Errorf("remove %s from domain %s: %w", identifierID, name, err)
	}

	return nil
}

// Contains reports whether an identifier is mapped into a domain.
func (r *Registry) Contains(ctx context.Context, name, identifierID string) (bool, error) {
	members, err := r.members(name)
	if err != nil {
		return false, err
	}

	return members.Has(ctx, identifierID)
}

// ValidateName checks that name is made of DID method specific id characters: letters, digits,
// '.', '-', '_', percent-encoded octets and inner colons.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidName)
	}

	if strings.HasPrefix(name, ":") || strings.HasSuffix(name, ":") || strings.Contains(name, "::") {
		return fmt.Errorf("%w: %q has an empty segment", ErrInvalidName, name)
	}

	for i := 0; i < len(name); i++ {
		c := name[i]

		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '.', c == '-', c == '_', c == ':':
		case c == '%' && i+2 < len(name) && isHex(name[i+1]) && isHex(name[i+2]):
			i += 2
		default:
			return fmt.Errorf("%w: %q contains %q", ErrInvalidName, name, c)
		}
	}

	return nil
}

func isHex(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func (r *Registry) members(name string) (storage.Store, error) {
	s, err := r.provider.OpenStore(memberStorePrefix + name)
	if err != nil {
		return nil, fmt.Errorf("open members of domain %s: %w", name, err)
	}

	return s, nil
}

type domainsFile struct {
	Domains []string `toml:"domains"`
}

// LoadFile reads the list of pre-registered domains from a TOML file with a top level
// `domains = [...]` array.
func LoadFile(path string) ([]string, error) {
	b, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("read domains file: %w", err)
	}

	var f domainsFile

	if _, err = toml.Decode(string(b), &f); err != nil {
		return nil, fmt.Errorf("decode domains file %s: %w", path, err)
	}

	return f.Domains, nil
}

// Seed registers every domain in names.
func (r *Registry) Seed(ctx context.Context, names []string) error {
	for _, name := range names {
		if err := r.Register(ctx, name); err != nil {
			return err
		}
	}

	logger.Info("domains registered", logfields.WithCount(len(names)))

	return nil
}
