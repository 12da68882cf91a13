/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package auth

const (
	// Unauthenticated is the identifier reported for callers that matched no authentication policy.
	Unauthenticated = "Unauthenticated"
	// NoAuthPolicy is the policy reported for callers that matched no authentication policy.
	NoAuthPolicy = "no_auth"
)

// Identity is the caller identity established by the host platform for a single request.
// It is trusted as-is; this service never authenticates callers itself.
type Identity struct {
	Identifier string `json:"userMemberIdentifier"`
	Policy     string `json:"matchedPolicy"`
}

// NewIdentity returns the identity for the given principal and policy, falling back to the
// anonymous sentinel when either is empty.
func NewIdentity(identifier, policy string) Identity {
	if identifier == "" {
		return Anonymous()
	}

	if policy == "" {
		policy = NoAuthPolicy
	}

	return Identity{Identifier: identifier, Policy: policy}
}

// Anonymous returns the sentinel identity for unauthenticated callers.
func Anonymous() Identity {
	return Identity{Identifier: Unauthenticated, Policy: NoAuthPolicy}
}

// IsAuthenticated reports whether the identity is something other than the anonymous sentinel.
func (i Identity) IsAuthenticated() bool {
	return i.Identifier != "" && i.Identifier != Unauthenticated
}
