/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jsonschema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/trustbloc/logutil-go/pkg/log"
	"github.com/xeipuuv/gojsonschema"

	"github.com/trustbloc/did-ledger/internal/logfields"
)

var logger = log.New("jsonschema")

// Schema is a compiled JSON schema.
type Schema struct {
	id     string
	schema *gojsonschema.Schema
}

// Compile compiles the given schema document. The document's $id must equal id.
func Compile(id string, doc []byte) (*Schema, error) {
	var header struct {
		ID interface{} `json:"$id"`
	}

	if err := json.Unmarshal(doc, &header); err != nil {
		return nil, fmt.Errorf("unmarshal JSON schema: %w", err)
	}

	switch docID := header.ID.(type) {
	case nil:
		return nil, fmt.Errorf("field '$id' not found in JSON schema")
	case string:
		if docID != id {
			return nil, fmt.Errorf("the value of field '$id' in JSON schema [%s] does not match schema ID [%s]",
				docID, id)
		}
	default:
		return nil, fmt.Errorf("expecting the value of field '$id' in JSON schema to be a string type but was %T",
			header.ID)
	}

	compiled, err := gojsonschema.NewSchemaLoader().Compile(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("compile JSON schema [%s]: %w", id, err)
	}

	logger.Debug("Compiled JSON schema", logfields.WithSchemaID(id))

	return &Schema{id: id, schema: compiled}, nil
}

// MustCompile is like Compile but panics on error. Use it for schemas embedded in the binary.
func MustCompile(id string, doc []byte) *Schema {
	s, err := Compile(id, doc)
	if err != nil {
		panic(err)
	}

	return s
}

func (s *Schema) ID() string {
	return s.id
}

// Validate validates data, which is marshalled the same way it would be on the wire.
// Violations are returned as ValidationErrors.
func (s *Schema) Validate(data interface{}) error {
	result, err := s.schema.Validate(gojsonschema.NewGoLoader(data))
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	if !result.Valid() {
		return fmt.Errorf("validation error: %w", ValidationErrors(result.Errors()))
	}

	return nil
}

// ValidationErrors lists every violation found while validating a document.
type ValidationErrors []gojsonschema.ResultError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))

	for _, re := range e {
		msgs = append(msgs, re.String())
	}

	return "[" + strings.Join(msgs, "; ") + "]"
}

// Properties returns the names of the offending properties. A missing required property is
// reported by its own name rather than by its parent.
func (e ValidationErrors) Properties() []string {
	props := make([]string, 0, len(e))

	for _, re := range e {
		if property, ok := re.Details()["property"].(string); ok && re.Type() == "required" {
			props = append(props, property)

			continue
		}

		props = append(props, re.Field())
	}

	return props
}
