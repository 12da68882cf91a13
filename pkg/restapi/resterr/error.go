/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package resterr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/trustbloc/did-ledger/pkg/auth"
)

// ErrorCode is the machine readable code of an error response.
type ErrorCode string

const (
	IdentifierNotProvided        ErrorCode = "request.identifier_not_provided"
	IdentifierNotFound           ErrorCode = "request.identifier_not_found"
	InvalidController            ErrorCode = "request.invalid_controller"
	KeyNotFound                  ErrorCode = "key_operation.key_not_found"
	KeyNotConfigured             ErrorCode = "key_operation.signing_key_not_configured"
	PayloadNotProvided           ErrorCode = "request.payload_not_provided"
	SignatureNotProvided         ErrorCode = "request.signature_not_provided"
	SignerIdentifierNotProvided  ErrorCode = "request.signer_identifier_not_provided"
	InvalidService               ErrorCode = "request.invalid_service"
	ServiceNotProvided           ErrorCode = "request.service_not_provided"
	ServiceIdentifierNotProvided ErrorCode = "request.service_identifier_not_provided"
	DomainNotFound               ErrorCode = "request.domain_not_found"
	InvalidValue                 ErrorCode = "request.invalid_value"
)

// Error is an error raised while serving a request on behalf of an authenticated caller.
type Error struct {
	Code           ErrorCode
	Message        string
	HTTPStatus     int
	Caller         auth.Identity
	ErrorComponent Component
	Operation      string
	Err            error
}

type errorBody struct {
	Error errorJSON `json:"error"`
}

type errorJSON struct {
	Code           ErrorCode     `json:"code"`
	Message        string        `json:"message"`
	Authentication auth.Identity `json:"authentication"`
}

func newError(caller auth.Identity, code ErrorCode, status int, msg string) *Error {
	return &Error{
		Code:       code,
		Message:    msg,
		HTTPStatus: status,
		Caller:     caller,
		Err:        errors.New(msg),
	}
}

func (e *Error) Error() string {
	var description []string

	if e.ErrorComponent != "" {
		description = append(description, fmt.Sprintf("component: %s", e.ErrorComponent))
	}

	if e.Operation != "" {
		description = append(description, fmt.Sprintf("operation: %s", e.Operation))
	}

	description = append(description, fmt.Sprintf("caller: %s", e.Caller.Identifier))

	return fmt.Sprintf("%s[%s]: %v", e.Code, strings.Join(description, "; "), e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// MarshalJSON encodes the response body of the error.
func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(&errorBody{
		Error: errorJSON{
			Code:           e.Code,
			Message:        e.Message,
			Authentication: e.Caller,
		},
	})
}

func (e *Error) WithComponent(component Component) *Error {
	e.ErrorComponent = component

	return e
}

func (e *Error) WithOperation(operation string) *Error {
	e.Operation = operation

	return e
}

// WithCause keeps err as the cause of the error while the public message stays unchanged.
func (e *Error) WithCause(err error) *Error {
	e.Err = err

	return e
}

// IsCode reports whether err is an *Error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error

	return errors.As(err, &e) && e.Code == code
}

func NewIdentifierNotProvided(caller auth.Identity) *Error {
	return newError(caller, IdentifierNotProvided, http.StatusBadRequest,
		fmt.Sprintf("member '%s' sent a request without the identifier parameter", caller.Identifier))
}

func NewIdentifierNotFound(caller auth.Identity, id string) *Error {
	return newError(caller, IdentifierNotFound, http.StatusNotFound,
		fmt.Sprintf("identifier '%s' does not exist on the network", id))
}

func NewInvalidController(caller auth.Identity, id string) *Error {
	return newError(caller, InvalidController, http.StatusBadRequest,
		fmt.Sprintf("member '%s' does not control identifier '%s'", caller.Identifier, id))
}

func NewKeyNotFound(caller auth.Identity, id, keyID string) *Error {
	return newError(caller, KeyNotFound, http.StatusBadRequest,
		fmt.Sprintf("key '%s' does not exist on identifier '%s'", keyID, id))
}

func NewKeyNotConfigured(caller auth.Identity, id, use string) *Error {
	return newError(caller, KeyNotConfigured, http.StatusInternalServerError,
		fmt.Sprintf("identifier '%s' has no current '%s' key", id, use))
}

func NewPayloadNotProvided(caller auth.Identity) *Error {
	return newError(caller, PayloadNotProvided, http.StatusBadRequest,
		fmt.Sprintf("member '%s' sent a request without a payload", caller.Identifier))
}

func NewSignatureNotProvided(caller auth.Identity) *Error {
	return newError(caller, SignatureNotProvided, http.StatusBadRequest,
		fmt.Sprintf("member '%s' sent a verification request without a signature; "+
			"signature, payload and signer are required", caller.Identifier))
}

func NewSignerIdentifierNotProvided(caller auth.Identity) *Error {
	return newError(caller, SignerIdentifierNotProvided, http.StatusBadRequest,
		fmt.Sprintf("member '%s' sent a verification request without the signer; "+
			"signature, payload and signer are required", caller.Identifier))
}

func NewInvalidServiceProperty(caller auth.Identity, property string) *Error {
	return newError(caller, InvalidService, http.StatusBadRequest,
		fmt.Sprintf("service sent by member '%s' has a missing or invalid '%s' property, "+
			"see https://www.w3.org/TR/did-core/#services", caller.Identifier, property))
}

func NewServiceNotProvided(caller auth.Identity) *Error {
	return newError(caller, ServiceNotProvided, http.StatusBadRequest,
		fmt.Sprintf("member '%s' sent a request without a service, "+
			"see https://www.w3.org/TR/did-core/#services", caller.Identifier))
}

func NewServiceIdentifierNotProvided(caller auth.Identity) *Error {
	return newError(caller, ServiceIdentifierNotProvided, http.StatusBadRequest,
		fmt.Sprintf("member '%s' sent a request without the service identifier", caller.Identifier))
}

func NewDomainNotFound(caller auth.Identity, name string) *Error {
	return newError(caller, DomainNotFound, http.StatusNotFound,
		fmt.Sprintf("domain '%s' is not registered", name))
}

// NewInvalidValue reports a malformed request parameter.
func NewInvalidValue(caller auth.Identity, param string, err error) *Error {
	return newError(caller, InvalidValue, http.StatusBadRequest,
		fmt.Sprintf("invalid value of '%s': %s", param, err.Error())).WithCause(err)
}
