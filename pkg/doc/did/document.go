/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package did

import (
	"encoding/json"
	"fmt"
)

const (
	// ContextV1 is the base JSON-LD context of every controller document.
	ContextV1 = "https://www.w3.org/ns/did/v1"

	// JSONWebKey2020 is the verification method type used for every key.
	JSONWebKey2020 = "JsonWebKey2020"

	contextKey            = "@context"
	idKey                 = "id"
	verificationMethodKey = "verificationMethod"
	serviceKey            = "service"
)

// Relationship is a capability linking verification methods to the identifier.
type Relationship string

const (
	Authentication       Relationship = "authentication"
	AssertionMethod      Relationship = "assertionMethod"
	KeyAgreement         Relationship = "keyAgreement"
	CapabilityInvocation Relationship = "capabilityInvocation"
	CapabilityDelegation Relationship = "capabilityDelegation"
)

// Relationships lists every relationship kind in document order.
var Relationships = []Relationship{ //nolint:gochecknoglobals
	Authentication, AssertionMethod, KeyAgreement, CapabilityInvocation, CapabilityDelegation,
}

// VerificationMethod is a public key entry of a controller document.
type VerificationMethod struct {
	ID           string                 `json:"id"`
	Controller   string                 `json:"controller"`
	Type         string                 `json:"type"`
	PublicKeyJWK map[string]interface{} `json:"publicKeyJwk"`
}

// Document is a controller document. Relationship arrays are kept in Relationships and are
// flattened into top level members when encoded.
type Document struct {
	Context            []interface{}
	ID                 string
	VerificationMethod []VerificationMethod
	Relationships      map[Relationship][]string
	Service            []Service
}

// NewDocument returns an empty controller document. An empty vocab omits the vocabulary context.
func NewDocument(id, vocab string) *Document {
	ctx := []interface{}{ContextV1}
	if vocab != "" {
		ctx = append(ctx, map[string]interface{}{"@vocab": vocab})
	}

	return &Document{
		Context:       ctx,
		ID:            id,
		Relationships: map[Relationship][]string{},
	}
}

// AddVerificationMethod appends vm and references it from each of the given relationships.
// The controller defaults to the document id.
func (d *Document) AddVerificationMethod(vm VerificationMethod, rels ...Relationship) {
	if vm.Controller == "" {
		vm.Controller = d.ID
	}

	if vm.Type == "" {
		vm.Type = JSONWebKey2020
	}

	d.VerificationMethod = append(d.VerificationMethod, vm)

	if d.Relationships == nil {
		d.Relationships = map[Relationship][]string{}
	}

	for _, rel := range rels {
		d.Relationships[rel] = append(d.Relationships[rel], vm.ID)
	}
}

// RemoveVerificationMethod removes the verification method with the given id together with every
// relationship reference to it. It reports whether anything was removed.
func (d *Document) RemoveVerificationMethod(id string) bool {
	removed := false

	methods := d.VerificationMethod[:0]

	for _, vm := range d.VerificationMethod {
		if vm.ID == id {
			removed = true

			continue
		}

		methods = append(methods, vm)
	}

	d.VerificationMethod = methods

	for rel, refs := range d.Relationships {
		kept := make([]string, 0, len(refs))

		for _, ref := range refs {
			if ref == id {
				removed = true

				continue
			}

			kept = append(kept, ref)
		}

		d.Relationships[rel] = kept
	}

	return removed
}

// VerificationMethodByID returns the verification method with the given id.
func (d *Document) VerificationMethodByID(id string) (*VerificationMethod, bool) {
	for i := range d.VerificationMethod {
		if d.VerificationMethod[i].ID == id {
			return &d.VerificationMethod[i], true
		}
	}

	return nil, false
}

// References returns the verification method ids of a relationship.
func (d *Document) References(rel Relationship) []string {
	return d.Relationships[rel]
}

// AddOrUpdateService replaces the service with the same id or appends svc.
func (d *Document) AddOrUpdateService(svc Service) {
	for i := range d.Service {
		if d.Service[i].ID == svc.ID {
			d.Service[i] = svc

			return
		}
	}

	d.Service = append(d.Service, svc)
}

// RemoveService removes the service with the given id and reports whether it was present.
func (d *Document) RemoveService(id string) bool {
	for i := range d.Service {
		if d.Service[i].ID == id {
			d.Service = append(d.Service[:i], d.Service[i+1:]...)

			return true
		}
	}

	return false
}

// HasService reports whether a service with the given id exists.
func (d *Document) HasService(id string) bool {
	for i := range d.Service {
		if d.Service[i].ID == id {
			return true
		}
	}

	return false
}

// MarshalJSON flattens relationships into top level arrays.
func (d Document) MarshalJSON() ([]byte, error) {
	raw := map[string]interface{}{
		contextKey:            d.Context,
		idKey:                 d.ID,
		verificationMethodKey: d.VerificationMethod,
	}

	if d.VerificationMethod == nil {
		raw[verificationMethodKey] = []VerificationMethod{}
	}

	for rel, refs := range d.Relationships {
		raw[string(rel)] = refs
	}

	if len(d.Service) > 0 {
		raw[serviceKey] = d.Service
	}

	return json.Marshal(raw)
}

// UnmarshalJSON restores relationships from the top level arrays.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw struct {
		Context            []interface{}        `json:"@context"`
		ID                 string               `json:"id"`
		VerificationMethod []VerificationMethod `json:"verificationMethod"`
		Service            []Service            `json:"service"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal controller document: %w", err)
	}

	var members map[string]json.RawMessage

	if err := json.Unmarshal(data, &members); err != nil {
		return fmt.Errorf("unmarshal controller document: %w", err)
	}

	d.Context = raw.Context
	d.ID = raw.ID
	d.VerificationMethod = raw.VerificationMethod
	d.Service = raw.Service
	d.Relationships = map[Relationship][]string{}

	for _, rel := range Relationships {
		value, ok := members[string(rel)]
		if !ok {
			continue
		}

		var refs []string

		if err := json.Unmarshal(value, &refs); err != nil {
			return fmt.Errorf("unmarshal %s: %w", rel, err)
		}

		d.Relationships[rel] = refs
	}

	return nil
}
