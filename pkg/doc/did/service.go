/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package did

import (
	"encoding/json"
	"errors"
)

// Service is a service entry of a controller document.
type Service struct {
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	ServiceEndpoint ServiceEndpoint `json:"serviceEndpoint"`
}

// ServiceEndpoint is either a URI or a map of endpoint properties.
type ServiceEndpoint struct {
	URI        string
	Properties map[string]interface{}
}

// IsEmpty reports whether neither a URI nor properties are set.
func (e ServiceEndpoint) IsEmpty() bool {
	return e.URI == "" && len(e.Properties) == 0
}

// MarshalJSON encodes the endpoint as a string or an object.
func (e ServiceEndpoint) MarshalJSON() ([]byte, error) {
	if e.Properties != nil {
		return json.Marshal(e.Properties)
	}

	return json.Marshal(e.URI)
}

// UnmarshalJSON accepts a string or an object.
func (e *ServiceEndpoint) UnmarshalJSON(data []byte) error {
	var uri string

	if err := json.Unmarshal(data, &uri); err == nil {
		e.URI = uri
		e.Properties = nil

		return nil
	}

	var props map[string]interface{}

	if err := json.Unmarshal(data, &props); err != nil {
		return errors.New("service endpoint must be a string or an object")
	}

	e.URI = ""
	e.Properties = props

	return nil
}
